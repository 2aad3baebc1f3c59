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
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Типизированные отказы пайплайна отправки — хэндлер мапит их на статус-коды
var (
	ErrFormNotFound           = errors.New("форма не найдена")
	ErrAuthenticationRequired = errors.New("требуется вход через Google")
	ErrAccessDenied           = errors.New("доступ запрещён")
	ErrInvalidPassword        = errors.New("неверный пароль")
	ErrFormClosed             = errors.New("форма не принимает ответы")
	ErrFormExpired            = errors.New("срок действия формы истёк")
	ErrMalformedFile          = errors.New("файл без url или имени")
	ErrNoFiles                = errors.New("не передано ни одного файла")
	ErrSheetSyncDisabled      = errors.New("response-таблица выключена у формы")
)

type SubmissionService struct {
	formRepository       ports.FormRepository
	submissionRepository ports.SubmissionRepository
	sheetSynchronizer    ports.SheetSynchronizer
	now                  func() time.Time
	syncWaitGroup        sync.WaitGroup
}

func NewSubmissionService(
	formRepository ports.FormRepository,
	submissionRepository ports.SubmissionRepository,
	sheetSynchronizer ports.SheetSynchronizer,
) *SubmissionService {
	return &SubmissionService{
		formRepository:       formRepository,
		submissionRepository: submissionRepository,
		sheetSynchronizer:    sheetSynchronizer,
		now:                  time.Now,
	}
}

// Submit : пайплайн приёма отправки. Проверки идут строго по порядку,
// каждая — ранний выход; запись в БД начинается только после всех проверок.
// Возвращает первую созданную строку отправки
func (s *SubmissionService) Submit(ctx context.Context, request *ports.SubmitRequest) (*model.Submission, error) {
	db, ok := ctx.Value("db").(*config.Database)
	if !ok {
		return nil, fmt.Errorf("[SubmissionService] database connection не найден в context")
	}

	// 1. Существование формы
	form, err := s.formRepository.GetByUUID(ctx, db, request.FormUUID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrFormNotFound
		}
		return nil, util.LogError("[SubmissionService] не удалось получить форму", err)
	}

	// 2. Личность отправителя. В GOOGLE-режиме личность берётся только из
	// сессии — поля из тела запроса игнорируются до любых дальнейших проверок
	submitterName := request.SubmitterName
	submitterEmail := request.SubmitterEmail
	if form.RequiresGoogleSignIn() {
		if request.Session == nil || request.Session.Email == "" {
			return nil, ErrAuthenticationRequired
		}
		if err := checkAllowedSubmitter(form, request.Session.Email); err != nil {
			return nil, err
		}
		submitterName = request.Session.Name
		submitterEmail = request.Session.Email
	}

	// 2b. Пароль: точное совпадение строки, без нормализации
	if form.AccessProtectionType == model.ProtectionPassword && form.Password != "" {
		if request.Password != form.Password {
			return nil, ErrInvalidPassword
		}
	}

	// 3. Приём ответов и 4. срок действия — независимые проверки,
	// закрытая форма сообщается раньше истёкшей
	if !form.IsAccepting {
		return nil, ErrFormClosed
	}
	if form.IsExpired(s.now()) {
		return nil, ErrFormExpired
	}

	// 5. Нормализация файлов: files[] либо legacy-поля одного файла
	files, err := normalizeFiles(request)
	if err != nil {
		return nil, err
	}

	// 6. Одна строка на файл. Не атомарно: транзиентная ошибка соединения
	// повторяется один раз, остальные ошибки прерывают операцию
	groupUUID := uuid.New().String()
	answers := model.AnswerList(request.Answers)
	snapshot := model.FileList(files)

	var firstSubmission *model.Submission
	for i := range files {
		submission := &model.Submission{
			UUID:           uuid.New().String(),
			FormUUID:       form.UUID,
			GroupUUID:      groupUUID,
			FileURL:        files[i].URL,
			FileName:       files[i].Name,
			FileType:       files[i].Type,
			FileSize:       files[i].Size,
			FieldID:        files[i].FieldID,
			FieldLabel:     files[i].FieldLabel,
			IsFromFolder:   files[i].IsFromFolder,
			FolderName:     files[i].FolderName,
			RelativePath:   files[i].RelativePath,
			Files:          snapshot,
			Answers:        answers,
			SubmitterName:  submitterName,
			SubmitterEmail: submitterEmail,
			CreatedAt:      s.now(),
		}

		if err := s.submissionRepository.Create(ctx, db, submission); err != nil {
			if !isRetryableDBError(err) {
				return nil, util.LogError("[SubmissionService] не удалось сохранить отправку", err)
			}
			log.Printf("[SubmissionService] транзиентная ошибка БД, повтор записи файла %d: %v", i, err)
			if err := s.submissionRepository.Create(ctx, db, submission); err != nil {
				return nil, util.LogError("[SubmissionService] повторная запись не удалась", err)
			}
		}

		if firstSubmission == nil {
			firstSubmission = submission
		}
	}

	// 7. Зеркалирование в таблицы — строго после коммита строк, в фоне.
	// Ошибки синка логируются и никогда не роняют уже принятую отправку
	s.startSheetSync(form, firstSubmission.UUID, submitterEmail, files)

	log.Printf("[SubmissionService] отправка %s принята: %d файлов", groupUUID, len(files))
	return firstSubmission, nil
}

// checkAllowedSubmitter : проверка email сессии по спискам доступа формы
func checkAllowedSubmitter(form *model.Form, email string) error {
	if len(form.AllowedDomains) > 0 {
		domain := ""
		if at := strings.LastIndex(email, "@"); at >= 0 {
			domain = email[at+1:]
		}
		for _, allowed := range form.AllowedDomains {
			if strings.EqualFold(domain, allowed) {
				return nil
			}
		}
		return ErrAccessDenied
	}

	if len(form.AllowedEmails) > 0 {
		for _, allowed := range form.AllowedEmails {
			if strings.EqualFold(email, allowed) {
				return nil
			}
		}
		return ErrAccessDenied
	}

	return nil
}

// normalizeFiles : приводит запрос к каноническому files[].
// Поддерживается устаревший формат с одним файлом в плоских полях
func normalizeFiles(request *ports.SubmitRequest) ([]model.SubmissionFile, error) {
	var files []model.SubmissionFile

	if len(request.Files) > 0 {
		files = request.Files
	} else if request.FileURL != "" || request.FileName != "" {
		files = []model.SubmissionFile{{
			URL:  request.FileURL,
			Name: request.FileName,
			Type: request.FileType,
			Size: request.FileSize,
		}}
	}

	for i := range files {
		if files[i].URL == "" || files[i].Name == "" {
			return nil, fmt.Errorf("%w: файл %d", ErrMalformedFile, i)
		}
	}

	if len(files) == 0 {
		return nil, ErrNoFiles
	}

	return files, nil
}

// isRetryableDBError : транзиентные ошибки соединения и prepared statement.
// Классы 08 (connection exception) и 26000 (invalid_sql_statement_name)
func isRetryableDBError(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if strings.HasPrefix(string(pqErr.Code), "08") || pqErr.Code == "26000" {
			return true
		}
	}

	message := err.Error()
	return strings.Contains(message, "connection") || strings.Contains(message, "prepared statement")
}

// startSheetSync : fire-and-forget зеркалирование; собственный контекст,
// потому что HTTP-контекст запроса умирает сразу после ответа
func (s *SubmissionService) startSheetSync(form *model.Form, groupUUID string, submitterEmail string, files []model.SubmissionFile) {
	if s.sheetSynchronizer == nil {
		return
	}
	if !form.EnableResponseSheet && form.LegacySheetID == "" {
		return
	}

	s.syncWaitGroup.Add(1)
	go func() {
		defer s.syncWaitGroup.Done()

		syncCtx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()

		if form.EnableResponseSheet {
			sheetID, err := s.sheetSynchronizer.EnsureSheet(syncCtx, form)
			if err != nil {
				log.Printf("[SubmissionService] ошибка создания response-таблицы формы %s: %v", form.UUID, err)
			} else if err := s.sheetSynchronizer.AppendFileRows(syncCtx, sheetID, groupUUID, submitterEmail, files); err != nil {
				log.Printf("[SubmissionService] ошибка записи строк в таблицу %s: %v", sheetID, err)
			}
		}

		if form.LegacySheetID != "" {
			if err := s.sheetSynchronizer.AppendFileRows(syncCtx, form.LegacySheetID, groupUUID, submitterEmail, files); err != nil {
				log.Printf("[SubmissionService] ошибка записи в legacy-таблицу %s: %v", form.LegacySheetID, err)
			}
		}
	}()
}

// WaitForSync : дожидается завершения фоновых синков (graceful shutdown и тесты)
func (s *SubmissionService) WaitForSync() {
	s.syncWaitGroup.Wait()
}

// ResyncSheet : ручная проверка response-таблицы владельцем. В отличие от
// фонового синка выполняется синхронно, чтобы ошибка доступа к Google
// дошла до админки и подсказала переподключить аккаунт
func (s *SubmissionService) ResyncSheet(ctx context.Context, formUUID string, ownerUUID string) (string, error) {
	db, ok := ctx.Value("db").(*config.Database)
	if !ok {
		return "", fmt.Errorf("[SubmissionService] database connection не найден в context")
	}

	form, err := s.formRepository.GetOwned(ctx, db, formUUID, ownerUUID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrFormNotFound
		}
		return "", util.LogError("[SubmissionService] не удалось получить форму", err)
	}

	if s.sheetSynchronizer == nil || !form.EnableResponseSheet {
		return "", ErrSheetSyncDisabled
	}

	sheetID, err := s.sheetSynchronizer.EnsureSheet(ctx, form)
	if err != nil {
		return "", err
	}
	return sheetID, nil
}

// ListByForm : отправки формы для владельца
func (s *SubmissionService) ListByForm(ctx context.Context, formUUID string, ownerUUID string, limit int) ([]model.Submission, error) {
	db, ok := ctx.Value("db").(*config.Database)
	if !ok {
		return nil, fmt.Errorf("[SubmissionService] database connection не найден в context")
	}

	if _, err := s.formRepository.GetOwned(ctx, db, formUUID, ownerUUID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrFormNotFound
		}
		return nil, util.LogError("[SubmissionService] форма не найдена или доступ запрещён", err)
	}

	submissions, err := s.submissionRepository.ListByForm(ctx, db, formUUID, limit)
	if err != nil {
		return nil, util.LogError("[SubmissionService] не удалось получить список отправок", err)
	}
	return submissions, nil
}
