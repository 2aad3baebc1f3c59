package service

import (
	"upload-form-server/config"
	"upload-form-server/internal/model"
	"upload-form-server/internal/ports"
	"upload-form-server/internal/util"
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"google.golang.org/api/googleapi"
)

// ErrSheetsPermission : внешний сервис отказал в доступе — нужна
// переподвязка Google-аккаунта, повторять запрос бессмысленно
var ErrSheetsPermission = errors.New("нет доступа к Google Sheets")

// Фиксированная шапка response-таблицы. Колонки внешнего артефакта —
// на английском, их видит пользователь в Google Sheets
var sheetHeader = []interface{}{
	"Submission ID", "Uploaded At", "Upload Type", "Folder Name", "Relative Path",
	"File Name", "File Size", "File URL", "Field Label", "Uploader Email",
}

const (
	headerBackgroundHex = "#4285F4"
	rowBackgroundHex    = "#FFFFFF"
)

type SheetsService struct {
	spreadsheetAPI ports.SpreadsheetAPI
	driveStore     ports.DriveStore
	formRepository ports.FormRepository
	database       *config.Database
	folderName     string
	now            func() time.Time
}

func NewSheetsService(
	spreadsheetAPI ports.SpreadsheetAPI,
	driveStore ports.DriveStore,
	formRepository ports.FormRepository,
	database *config.Database,
	folderName string,
) *SheetsService {
	return &SheetsService{
		spreadsheetAPI: spreadsheetAPI,
		driveStore:     driveStore,
		formRepository: formRepository,
		database:       database,
		folderName:     folderName,
		now:            time.Now,
	}
}

// EnsureSheet : возвращает ID живой response-таблицы формы, создавая её при
// необходимости. Идемпотентна: повторный вызов возвращает тот же ID и не
// перезаписывает шапку. Если таблица удалена руками, создаётся новая
func (s *SheetsService) EnsureSheet(ctx context.Context, form *model.Form) (string, error) {
	if form.ResponseSheetID != "" {
		exists, err := s.spreadsheetAPI.SpreadsheetExists(ctx, form.ResponseSheetID)
		if err != nil {
			return "", translateSheetsError(err)
		}
		if exists {
			return form.ResponseSheetID, nil
		}
		log.Printf("[SheetsService] таблица %s недоступна, создаём новую", form.ResponseSheetID)
	}

	sheetID, err := s.createResponseSheet(ctx, form.Title)
	if err != nil {
		return "", err
	}

	// Конкурирующие отправки могут создать таблицу одновременно; в БД
	// остаётся ID первого победителя, проигравшая копия — сирота в Drive
	won, err := s.formRepository.SetResponseSheetID(ctx, s.database.DB, form.UUID, sheetID)
	if err != nil {
		return "", util.LogError("[SheetsService] не удалось сохранить ID таблицы", err)
	}
	if !won {
		stored, err := s.formRepository.GetByUUID(ctx, s.database.DB, form.UUID)
		if err != nil {
			return "", util.LogError("[SheetsService] не удалось перечитать форму", err)
		}
		log.Printf("[SheetsService] таблица %s проиграла гонку, используется %s", sheetID, stored.ResponseSheetID)
		form.ResponseSheetID = stored.ResponseSheetID
		return stored.ResponseSheetID, nil
	}

	form.ResponseSheetID = sheetID
	return sheetID, nil
}

func (s *SheetsService) createResponseSheet(ctx context.Context, formTitle string) (string, error) {
	title := fmt.Sprintf("%s - Uploads", formTitle)

	sheetID, err := s.spreadsheetAPI.CreateSpreadsheet(ctx, title)
	if err != nil {
		return "", translateSheetsError(err)
	}

	if err := s.spreadsheetAPI.WriteRange(ctx, sheetID, "A1:J1", [][]interface{}{sheetHeader}); err != nil {
		return "", translateSheetsError(err)
	}

	if err := s.spreadsheetAPI.FormatRows(ctx, sheetID, ports.RowFormat{
		StartRow:      0,
		EndRow:        1,
		Bold:          true,
		BackgroundHex: headerBackgroundHex,
		FreezeHeader:  true,
	}); err != nil {
		return "", translateSheetsError(err)
	}

	// перенос в контейнерную папку — не критичен для синка
	if s.driveStore != nil && s.folderName != "" {
		folderID, err := s.driveStore.EnsureFolder(ctx, s.folderName)
		if err != nil {
			log.Printf("[SheetsService] не удалось найти папку %q: %v", s.folderName, err)
		} else if err := s.driveStore.MoveFile(ctx, sheetID, folderID); err != nil {
			log.Printf("[SheetsService] не удалось перенести таблицу в папку: %v", err)
		}
	}

	log.Printf("[SheetsService] создана response-таблица %s (%s)", sheetID, title)
	return sheetID, nil
}

// AppendFileRows : одна строка на файл, один батч на событие отправки.
// Форматирование применяется ровно к добавленному диапазону, шапка не трогается
func (s *SheetsService) AppendFileRows(ctx context.Context, sheetID string, groupUUID string, submitterEmail string, files []model.SubmissionFile) error {
	if len(files) == 0 {
		return nil
	}

	rows := make([][]interface{}, 0, len(files))
	for i := range files {
		rows = append(rows, s.buildRow(groupUUID, submitterEmail, &files[i]))
	}

	insertedRange, err := s.spreadsheetAPI.AppendRows(ctx, sheetID, "A:J", rows)
	if err != nil {
		return translateSheetsError(err)
	}

	startRow, endRow, err := parseRowRange(insertedRange)
	if err != nil {
		log.Printf("[SheetsService] не удалось разобрать диапазон %q: %v", insertedRange, err)
		return nil
	}

	if err := s.spreadsheetAPI.FormatRows(ctx, sheetID, ports.RowFormat{
		StartRow:      startRow,
		EndRow:        endRow,
		BackgroundHex: rowBackgroundHex,
	}); err != nil {
		return translateSheetsError(err)
	}

	return nil
}

func (s *SheetsService) buildRow(groupUUID string, submitterEmail string, file *model.SubmissionFile) []interface{} {
	uploadType := "file"
	if file.IsFromFolder {
		uploadType = "folder"
	}

	relativePath := file.RelativePath
	if relativePath == "" {
		relativePath = file.Name
	}

	fieldLabel := file.FieldLabel
	if fieldLabel == "" {
		fieldLabel = "Unknown"
	}

	email := submitterEmail
	if email == "" {
		email = "Anonymous"
	}

	return []interface{}{
		groupUUID,
		util.SheetTimestamp(s.now()),
		uploadType,
		file.FolderName,
		relativePath,
		file.Name,
		util.HumanFileSize(file.Size),
		file.URL, // plain text, Sheets сам делает ссылку
		fieldLabel,
		email,
	}
}

// parseRowRange : диапазон A1-нотации вида "Лист1!A5:J7" → (4, 7).
// Возвращает полуинтервал строк [start, end) в 0-based нумерации
func parseRowRange(a1Range string) (int64, int64, error) {
	cells := a1Range
	if idx := strings.LastIndex(a1Range, "!"); idx >= 0 {
		cells = a1Range[idx+1:]
	}

	parts := strings.Split(cells, ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("неожиданный формат диапазона: %q", a1Range)
	}

	start, err := rowNumber(parts[0])
	if err != nil {
		return 0, 0, err
	}
	end, err := rowNumber(parts[1])
	if err != nil {
		return 0, 0, err
	}

	return start - 1, end, nil
}

func rowNumber(cell string) (int64, error) {
	digits := strings.TrimLeftFunc(cell, func(r rune) bool {
		return r < '0' || r > '9'
	})
	if digits == "" {
		return 0, fmt.Errorf("ячейка %q без номера строки", cell)
	}
	return strconv.ParseInt(digits, 10, 64)
}

// translateSheetsError : 403 и permission-флейворные сообщения — отдельная
// ошибка, сигнализирующая о необходимости переподключить аккаунт
func translateSheetsError(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		if apiErr.Code == 403 {
			return fmt.Errorf("%w: %v", ErrSheetsPermission, err)
		}
	}

	message := strings.ToLower(err.Error())
	if strings.Contains(message, "permission") || strings.Contains(message, "insufficient") {
		return fmt.Errorf("%w: %v", ErrSheetsPermission, err)
	}

	return err
}
