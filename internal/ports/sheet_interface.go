package ports

import (
	"context"

	"upload-form-server/internal/model"
)

// RowFormat : запрос форматирования диапазона строк таблицы
type RowFormat struct {
	StartRow      int64 // включительно, 0-based
	EndRow        int64 // не включительно
	Bold          bool
	BackgroundHex string
	FreezeHeader  bool
}

// SpreadsheetAPI : низкоуровневая обёртка удалённого API таблиц.
// Реализация — Google Sheets; в тестах подменяется моком
type SpreadsheetAPI interface {
	CreateSpreadsheet(ctx context.Context, title string) (string, error)
	SpreadsheetExists(ctx context.Context, spreadsheetID string) (bool, error)
	WriteRange(ctx context.Context, spreadsheetID string, writeRange string, values [][]interface{}) error
	AppendRows(ctx context.Context, spreadsheetID string, appendRange string, values [][]interface{}) (string, error)
	FormatRows(ctx context.Context, spreadsheetID string, format RowFormat) error
}

// SheetSynchronizer : зеркалирование файлов отправки в response-таблицу формы
type SheetSynchronizer interface {
	EnsureSheet(ctx context.Context, form *model.Form) (string, error)
	AppendFileRows(ctx context.Context, sheetID string, groupUUID string, submitterEmail string, files []model.SubmissionFile) error
}

// DriveStore : контейнерная папка для создаваемых таблиц
type DriveStore interface {
	EnsureFolder(ctx context.Context, name string) (string, error)
	MoveFile(ctx context.Context, fileID string, folderID string) error
}
