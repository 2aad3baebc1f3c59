package editor

import (
	"upload-form-server/internal/client"
	"upload-form-server/internal/model"
	"upload-form-server/internal/model/requestresponse"
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

// placeholderTitle хранится в БД у форм, которым имя ещё не дали.
// В редакторе оно превращается в пустую строку, чтобы поле показывало
// подсказку, а не буквальный текст
const placeholderTitle = "Untitled form"

const defaultAutoSaveDelay = 1500 * time.Millisecond

// Controller владеет черновиком одной формы.
// Каждое изменение конфигурации прогоняется через согласование
// Email-вопроса и планирует отложенное автосохранение
type Controller struct {
	api   client.FormAPI
	delay time.Duration

	mu       sync.Mutex
	formUUID string
	isNew    bool
	draft    *model.Form
	timer    *time.Timer
}

func NewController(api client.FormAPI) *Controller {
	return &Controller{
		api:   api,
		delay: defaultAutoSaveDelay,
	}
}

// Load загружает форму в редактор.
// Идентификатор "new" засеивает черновик одним обязательным полем загрузки
// и одним пустым вопросом; существующая форма загружается с сервера
func (c *Controller) Load(ctx context.Context, formUUID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if formUUID == "new" {
		c.formUUID = ""
		c.isNew = true
		c.draft = &model.Form{
			AccessLevel:          model.AccessLevelAnyone,
			AccessProtectionType: model.ProtectionPublic,
			CollectEmail:         model.CollectEmailNone,
			UploadFields: model.UploadFieldList{{
				ID:            uuid.New().String(),
				Required:      true,
				AllowMultiple: true,
			}},
			CustomQuestions: model.QuestionList{{
				ID:   uuid.New().String(),
				Type: "text",
			}},
		}
		return nil
	}

	form, err := c.api.GetForm(ctx, formUUID)
	if err != nil {
		return fmt.Errorf("не удалось загрузить форму: %w", err)
	}

	draft := &model.Form{
		UUID:                 form.UUID,
		Title:                form.Title,
		Description:          form.Description,
		AccessLevel:          form.AccessLevel,
		AccessProtectionType: form.AccessProtectionType,
		UploadFields:         form.UploadFields,
		CustomQuestions:      form.CustomQuestions,
		CollectEmail:         form.CollectEmail,
		IsPublished:          form.IsPublished,
		IsAccepting:          form.IsAccepting,
		EnableResponseSheet:  form.EnableResponseSheet,
	}
	if draft.Title == placeholderTitle {
		draft.Title = ""
	}
	if form.ExpiryDate != nil {
		// в редакторе дата истечения показывается в локальном времени
		local := form.ExpiryDate.Local()
		draft.ExpiryDate = &local
	}

	c.formUUID = form.UUID
	c.isNew = false
	c.draft = draft
	return nil
}

// Draft возвращает копию текущего черновика
func (c *Controller) Draft() model.Form {
	c.mu.Lock()
	defer c.mu.Unlock()
	return *c.draft
}

// Apply применяет изменение к черновику, согласует Email-вопрос
// и планирует отложенное автосохранение. Новое изменение отменяет
// и перепланирует ещё не сработавшее
func (c *Controller) Apply(change func(form *model.Form)) {
	c.mu.Lock()
	defer c.mu.Unlock()

	change(c.draft)
	model.ReconcileEmailQuestion(c.draft)
	c.scheduleSaveLocked()
}

// вызывать только под c.mu
func (c *Controller) scheduleSaveLocked() {
	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(c.delay, func() {
		// автосохранение — fire-and-forget: отказ логируется, явные
		// кнопки «Сохранить» и «Опубликовать» дают свою обратную связь
		if err := c.Flush(context.Background()); err != nil {
			log.Printf("[Editor] автосохранение не удалось: %v", err)
		}
	})
}

// Flush немедленно сохраняет черновик, отменяя отложенный таймер
func (c *Controller) Flush(ctx context.Context) error {
	c.mu.Lock()
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}

	request := saveRequestFromDraft(c.draft)
	formUUID := c.formUUID
	isNew := c.isNew
	c.mu.Unlock()

	if isNew {
		created, err := c.api.CreateForm(ctx, request)
		if err != nil {
			return fmt.Errorf("не удалось создать форму: %w", err)
		}
		c.mu.Lock()
		c.formUUID = created.UUID
		c.draft.UUID = created.UUID
		c.isNew = false
		c.mu.Unlock()
		return nil
	}

	if _, err := c.api.UpdateForm(ctx, formUUID, request); err != nil {
		return fmt.Errorf("не удалось сохранить форму: %w", err)
	}
	return nil
}

func saveRequestFromDraft(draft *model.Form) *requestresponse.SaveFormRequest {
	return &requestresponse.SaveFormRequest{
		Title:                draft.Title,
		Description:          draft.Description,
		AccessLevel:          draft.AccessLevel,
		AccessProtectionType: draft.AccessProtectionType,
		Password:             draft.Password,
		AllowedDomains:       draft.AllowedDomains,
		AllowedEmails:        draft.AllowedEmails,
		UploadFields:         draft.UploadFields,
		CustomQuestions:      draft.CustomQuestions,
		CollectEmail:         draft.CollectEmail,
		ExpiryDate:           draft.ExpiryDate,
		EnableResponseSheet:  draft.EnableResponseSheet,
	}
}
