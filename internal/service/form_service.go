package service

import (
	"upload-form-server/config"
	"upload-form-server/internal/model"
	"upload-form-server/internal/ports"
	"upload-form-server/internal/util"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
)

var (
	ErrFormNotPublished = errors.New("форма должна быть опубликована")
)

type FormService struct {
	formRepository       ports.FormRepository
	submissionRepository ports.SubmissionRepository
	cacheRepository      ports.CacheRepository
	now                  func() time.Time
}

func NewFormService(
	formRepository ports.FormRepository,
	submissionRepository ports.SubmissionRepository,
	cacheRepository ports.CacheRepository,
) *FormService {
	return &FormService{
		formRepository:       formRepository,
		submissionRepository: submissionRepository,
		cacheRepository:      cacheRepository,
		now:                  time.Now,
	}
}

// CreateForm : создаёт черновик. Пустая конфигурация засеивается одним
// обязательным полем загрузки — форма без полей не имеет смысла в редакторе
func (s *FormService) CreateForm(ctx context.Context, ownerUUID string, form *model.Form) (*model.Form, error) {
	db, ok := ctx.Value("db").(*config.Database)
	if !ok {
		return nil, fmt.Errorf("[FormService] database connection не найден в context")
	}

	form.UUID = uuid.New().String()
	form.OwnerUUID = ownerUUID
	form.IsPublished = false
	form.IsAccepting = false
	form.ResponseSheetID = ""
	form.LegacySheetID = ""

	if form.AccessLevel == "" {
		form.AccessLevel = model.AccessLevelAnyone
	}
	if form.AccessProtectionType == "" {
		form.AccessProtectionType = model.ProtectionPublic
	}
	if form.CollectEmail == "" {
		form.CollectEmail = model.CollectEmailNone
	}
	if len(form.UploadFields) == 0 {
		form.UploadFields = model.UploadFieldList{{
			ID:            uuid.New().String(),
			Label:         "",
			Required:      true,
			AllowMultiple: true,
		}}
	}

	model.ReconcileEmailQuestion(form)

	if err := s.formRepository.Create(ctx, db, form); err != nil {
		return nil, util.LogError("[FormService] не удалось создать форму", err)
	}

	created, err := s.formRepository.GetOwned(ctx, db, form.UUID, ownerUUID)
	if err != nil {
		return nil, util.LogError("[FormService] не удалось прочитать созданную форму", err)
	}

	log.Printf("[FormService] форма %s создана", created.UUID)
	return created, nil
}

// GetForm : полная форма для владельца, включая секреты
func (s *FormService) GetForm(ctx context.Context, formUUID string, ownerUUID string) (*model.Form, error) {
	db, ok := ctx.Value("db").(*config.Database)
	if !ok {
		return nil, fmt.Errorf("[FormService] database connection не найден в context")
	}

	form, err := s.formRepository.GetOwned(ctx, db, formUUID, ownerUUID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrFormNotFound
		}
		return nil, util.LogError("[FormService] форма не найдена", err)
	}
	return form, nil
}

// GetPublicForm : форма для публичной страницы, кэш-first.
// Черновики наружу не отдаются
func (s *FormService) GetPublicForm(ctx context.Context, formUUID string) (*model.Form, error) {
	db, ok := ctx.Value("db").(*config.Database)
	if !ok {
		return nil, fmt.Errorf("[FormService] database connection не найден в context")
	}

	form, err := s.cacheRepository.GetForm(ctx, formUUID)
	if err != nil {
		log.Printf("[FormService] ошибка кэширования: %v", err)
	}

	if form == nil {
		form, err = s.formRepository.GetByUUID(ctx, db, formUUID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, ErrFormNotFound
			}
			return nil, util.LogError("[FormService] форма не найдена", err)
		}

		if err := s.cacheRepository.SetForm(ctx, form); err != nil {
			log.Printf("[FormService] ошибка кэширования формы: %v", err)
		} else {
			log.Printf("[FormService] форма %s взята из БД и кэширована в Redis", form.UUID)
		}
	} else {
		log.Printf("[FormService] форма %s взята из кэша Redis", form.UUID)
	}

	if !form.IsPublished {
		return nil, ErrFormNotFound
	}
	return form, nil
}

// ListForms : формы владельца со статусом и числом отправок для дашборда
func (s *FormService) ListForms(ctx context.Context, ownerUUID string, limit int) ([]ports.FormListItem, error) {
	db, ok := ctx.Value("db").(*config.Database)
	if !ok {
		return nil, fmt.Errorf("[FormService] database connection не найден в context")
	}

	forms, err := s.formRepository.ListByOwner(ctx, db, ownerUUID, limit)
	if err != nil {
		return nil, util.LogError("[FormService] не удалось получить список форм", err)
	}

	now := s.now()
	items := make([]ports.FormListItem, 0, len(forms))
	for i := range forms {
		count, err := s.submissionRepository.CountByForm(ctx, db, forms[i].UUID)
		if err != nil {
			log.Printf("[FormService] не удалось посчитать отправки формы %s: %v", forms[i].UUID, err)
			count = 0
		}
		items = append(items, ports.FormListItem{
			Form:            forms[i],
			Status:          forms[i].Classify(now),
			SubmissionCount: count,
		})
	}

	return items, nil
}

// UpdateForm : сохраняет конфигурацию черновика.
// Email-вопрос согласуется с режимом защиты перед записью
func (s *FormService) UpdateForm(ctx context.Context, ownerUUID string, form *model.Form) (*model.Form, error) {
	exec, rollback, commit, err := s.formRepository.BeginTX(ctx)
	if err != nil {
		return nil, util.LogError("[FormService] не удалось начать транзакцию", err)
	}
	defer rollback()

	stored, err := s.formRepository.GetOwned(ctx, exec, form.UUID, ownerUUID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrFormNotFound
		}
		return nil, util.LogError("[FormService] форма не найдена", err)
	}

	form.OwnerUUID = stored.OwnerUUID
	model.ReconcileEmailQuestion(form)

	if err := s.formRepository.Update(ctx, exec, form); err != nil {
		return nil, util.LogError("[FormService] не удалось сохранить форму", err)
	}

	updated, err := s.formRepository.GetOwned(ctx, exec, form.UUID, ownerUUID)
	if err != nil {
		return nil, util.LogError("[FormService] не удалось прочитать форму после сохранения", err)
	}

	if err := commit(); err != nil {
		return nil, util.LogError("[FormService] ошибка коммита транзакции", err)
	}

	if err := s.cacheRepository.DeleteForm(ctx, form.UUID); err != nil {
		log.Printf("[FormService] ошибка удаления формы из кэша: %v", err)
	}

	return updated, nil
}

// PublishForm : валидирует форму и публикует её.
// Сообщения всех непройденных проверок собираются вместе, не fail-fast;
// непустой список означает отказ в публикации без ошибки
func (s *FormService) PublishForm(ctx context.Context, formUUID string, ownerUUID string) ([]string, error) {
	db, ok := ctx.Value("db").(*config.Database)
	if !ok {
		return nil, fmt.Errorf("[FormService] database connection не найден в context")
	}

	form, err := s.formRepository.GetOwned(ctx, db, formUUID, ownerUUID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrFormNotFound
		}
		return nil, util.LogError("[FormService] форма не найдена", err)
	}

	issues := model.PublishIssues(form)
	if len(issues) > 0 {
		return issues, nil
	}

	if err := s.formRepository.SetPublished(ctx, db, formUUID, true, true); err != nil {
		return nil, util.LogError("[FormService] не удалось опубликовать форму", err)
	}

	if err := s.cacheRepository.DeleteForm(ctx, formUUID); err != nil {
		log.Printf("[FormService] ошибка удаления формы из кэша: %v", err)
	}

	log.Printf("[FormService] форма %s опубликована", formUUID)
	return nil, nil
}

// SetAccepting : переключает приём ответов.
// Неопубликованную форму включить нельзя; истёкшую — тоже
func (s *FormService) SetAccepting(ctx context.Context, formUUID string, ownerUUID string, accepting bool) error {
	db, ok := ctx.Value("db").(*config.Database)
	if !ok {
		return fmt.Errorf("[FormService] database connection не найден в context")
	}

	form, err := s.formRepository.GetOwned(ctx, db, formUUID, ownerUUID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrFormNotFound
		}
		return util.LogError("[FormService] форма не найдена", err)
	}

	if !form.IsPublished {
		return ErrFormNotPublished
	}
	if accepting && form.IsExpired(s.now()) {
		return ErrFormExpired
	}

	if err := s.formRepository.SetAccepting(ctx, db, formUUID, accepting); err != nil {
		return util.LogError("[FormService] не удалось переключить приём ответов", err)
	}

	if err := s.cacheRepository.DeleteForm(ctx, formUUID); err != nil {
		log.Printf("[FormService] ошибка удаления формы из кэша: %v", err)
	}

	return nil
}

// DeleteForm : мягкое удаление формы и инвалидация кэша
func (s *FormService) DeleteForm(ctx context.Context, formUUID string, ownerUUID string) error {
	exec, rollback, commit, err := s.formRepository.BeginTX(ctx)
	if err != nil {
		return util.LogError("[FormService] ошибка начала транзакции", err)
	}
	defer rollback()

	if err := s.formRepository.Delete(ctx, exec, formUUID, ownerUUID); err != nil {
		return util.LogError("[FormService] не удалось удалить форму", err)
	}

	if err := commit(); err != nil {
		return util.LogError("[FormService] ошибка коммита транзакции", err)
	}

	if err := s.cacheRepository.DeleteForm(ctx, formUUID); err != nil {
		log.Printf("[FormService] ошибка удаления формы из кэша: %v", err)
	}

	log.Printf("[FormService] форма %s удалена", formUUID)
	return nil
}

// DuplicateForm : копия формы как новый черновик.
// Привязки к таблицам и Drive не копируются — у копии своя жизнь
func (s *FormService) DuplicateForm(ctx context.Context, formUUID string, ownerUUID string) (*model.Form, error) {
	db, ok := ctx.Value("db").(*config.Database)
	if !ok {
		return nil, fmt.Errorf("[FormService] database connection не найден в context")
	}

	source, err := s.formRepository.GetOwned(ctx, db, formUUID, ownerUUID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrFormNotFound
		}
		return nil, util.LogError("[FormService] форма не найдена", err)
	}

	duplicate := *source
	duplicate.UUID = uuid.New().String()
	duplicate.Title = source.Title + " (копия)"
	duplicate.IsPublished = false
	duplicate.IsAccepting = false
	duplicate.ResponseSheetID = ""
	duplicate.LegacySheetID = ""
	duplicate.DriveFolderID = ""

	if err := s.formRepository.Create(ctx, db, &duplicate); err != nil {
		return nil, util.LogError("[FormService] не удалось создать копию формы", err)
	}

	created, err := s.formRepository.GetOwned(ctx, db, duplicate.UUID, ownerUUID)
	if err != nil {
		return nil, util.LogError("[FormService] не удалось прочитать копию формы", err)
	}

	log.Printf("[FormService] форма %s скопирована в %s", formUUID, created.UUID)
	return created, nil
}
