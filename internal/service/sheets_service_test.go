package service_test

import (
	"upload-form-server/config"
	"upload-form-server/internal/model"
	"upload-form-server/internal/ports"
	"upload-form-server/internal/service"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
)

type MockSpreadsheetAPI struct{ mock.Mock }

func (m *MockSpreadsheetAPI) CreateSpreadsheet(ctx context.Context, title string) (string, error) {
	args := m.Called(ctx, title)
	return args.String(0), args.Error(1)
}

func (m *MockSpreadsheetAPI) SpreadsheetExists(ctx context.Context, spreadsheetID string) (bool, error) {
	args := m.Called(ctx, spreadsheetID)
	return args.Bool(0), args.Error(1)
}

func (m *MockSpreadsheetAPI) WriteRange(ctx context.Context, spreadsheetID string, writeRange string, values [][]interface{}) error {
	return m.Called(ctx, spreadsheetID, writeRange, values).Error(0)
}

func (m *MockSpreadsheetAPI) AppendRows(ctx context.Context, spreadsheetID string, appendRange string, values [][]interface{}) (string, error) {
	args := m.Called(ctx, spreadsheetID, appendRange, values)
	return args.String(0), args.Error(1)
}

func (m *MockSpreadsheetAPI) FormatRows(ctx context.Context, spreadsheetID string, format ports.RowFormat) error {
	return m.Called(ctx, spreadsheetID, format).Error(0)
}

type MockDriveStore struct{ mock.Mock }

func (m *MockDriveStore) EnsureFolder(ctx context.Context, name string) (string, error) {
	args := m.Called(ctx, name)
	return args.String(0), args.Error(1)
}

func (m *MockDriveStore) MoveFile(ctx context.Context, fileID string, folderID string) error {
	return m.Called(ctx, fileID, folderID).Error(0)
}

func newTestSheetsService() (*service.SheetsService, *MockSpreadsheetAPI, *MockDriveStore, *MockFormRepository) {
	mockAPI := new(MockSpreadsheetAPI)
	mockDrive := new(MockDriveStore)
	mockFormRepo := new(MockFormRepository)

	svc := service.NewSheetsService(mockAPI, mockDrive, mockFormRepo, &config.Database{}, "Form Uploads")
	return svc, mockAPI, mockDrive, mockFormRepo
}

func sheetForm() *model.Form {
	return &model.Form{
		UUID:                "form1",
		OwnerUUID:           "owner1",
		Title:               "Приём работ",
		EnableResponseSheet: true,
	}
}

func TestEnsureSheet_Idempotent(t *testing.T) {
	svc, mockAPI, _, _ := newTestSheetsService()
	ctx := context.Background()

	form := sheetForm()
	form.ResponseSheetID = "sheet1"
	mockAPI.On("SpreadsheetExists", ctx, "sheet1").Return(true, nil).Twice()

	first, err := svc.EnsureSheet(ctx, form)
	require.NoError(t, err)
	second, err := svc.EnsureSheet(ctx, form)
	require.NoError(t, err)

	assert.Equal(t, "sheet1", first)
	assert.Equal(t, first, second)
	// живая таблица не пересоздаётся и шапка не перезаписывается
	mockAPI.AssertNotCalled(t, "CreateSpreadsheet", mock.Anything, mock.Anything)
	mockAPI.AssertNotCalled(t, "WriteRange", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	mockAPI.AssertExpectations(t)
}

func TestEnsureSheet_CreatesOnFirstUse(t *testing.T) {
	svc, mockAPI, mockDrive, mockFormRepo := newTestSheetsService()
	ctx := context.Background()
	form := sheetForm()

	mockAPI.On("CreateSpreadsheet", ctx, "Приём работ - Uploads").Return("new-sheet", nil)
	mockAPI.On("WriteRange", ctx, "new-sheet", "A1:J1", mock.MatchedBy(func(values [][]interface{}) bool {
		return len(values) == 1 && len(values[0]) == 10 && values[0][0] == "Submission ID"
	})).Return(nil)
	mockAPI.On("FormatRows", ctx, "new-sheet", mock.MatchedBy(func(format ports.RowFormat) bool {
		return format.StartRow == 0 && format.EndRow == 1 && format.Bold && format.FreezeHeader
	})).Return(nil)
	mockDrive.On("EnsureFolder", ctx, "Form Uploads").Return("folder1", nil)
	mockDrive.On("MoveFile", ctx, "new-sheet", "folder1").Return(nil)
	mockFormRepo.On("SetResponseSheetID", ctx, mock.Anything, "form1", "new-sheet").Return(true, nil)

	sheetID, err := svc.EnsureSheet(ctx, form)
	require.NoError(t, err)
	assert.Equal(t, "new-sheet", sheetID)
	assert.Equal(t, "new-sheet", form.ResponseSheetID)

	mockAPI.AssertExpectations(t)
	mockDrive.AssertExpectations(t)
	mockFormRepo.AssertExpectations(t)
}

func TestEnsureSheet_RecreatesWhenDeletedRemotely(t *testing.T) {
	svc, mockAPI, mockDrive, mockFormRepo := newTestSheetsService()
	ctx := context.Background()

	form := sheetForm()
	form.ResponseSheetID = "dead-sheet"

	mockAPI.On("SpreadsheetExists", ctx, "dead-sheet").Return(false, nil)
	mockAPI.On("CreateSpreadsheet", ctx, "Приём работ - Uploads").Return("fresh-sheet", nil)
	mockAPI.On("WriteRange", ctx, "fresh-sheet", "A1:J1", mock.Anything).Return(nil)
	mockAPI.On("FormatRows", ctx, "fresh-sheet", mock.Anything).Return(nil)
	mockDrive.On("EnsureFolder", ctx, "Form Uploads").Return("folder1", nil)
	mockDrive.On("MoveFile", ctx, "fresh-sheet", "folder1").Return(nil)
	mockFormRepo.On("SetResponseSheetID", ctx, mock.Anything, "form1", "fresh-sheet").Return(true, nil)

	sheetID, err := svc.EnsureSheet(ctx, form)
	require.NoError(t, err)
	assert.Equal(t, "fresh-sheet", sheetID)
}

func TestEnsureSheet_LosesCreationRace(t *testing.T) {
	svc, mockAPI, mockDrive, mockFormRepo := newTestSheetsService()
	ctx := context.Background()
	form := sheetForm()

	winner := sheetForm()
	winner.ResponseSheetID = "winner-sheet"

	mockAPI.On("CreateSpreadsheet", ctx, "Приём работ - Uploads").Return("loser-sheet", nil)
	mockAPI.On("WriteRange", ctx, "loser-sheet", "A1:J1", mock.Anything).Return(nil)
	mockAPI.On("FormatRows", ctx, "loser-sheet", mock.Anything).Return(nil)
	mockDrive.On("EnsureFolder", ctx, "Form Uploads").Return("folder1", nil)
	mockDrive.On("MoveFile", ctx, "loser-sheet", "folder1").Return(nil)
	mockFormRepo.On("SetResponseSheetID", ctx, mock.Anything, "form1", "loser-sheet").Return(false, nil)
	mockFormRepo.On("GetByUUID", ctx, mock.Anything, "form1").Return(winner, nil)

	sheetID, err := svc.EnsureSheet(ctx, form)
	require.NoError(t, err)
	// в БД побеждает первый записавший; проигравший ID не используется
	assert.Equal(t, "winner-sheet", sheetID)
	assert.Equal(t, "winner-sheet", form.ResponseSheetID)
}

func TestAppendFileRows(t *testing.T) {
	svc, mockAPI, _, _ := newTestSheetsService()
	ctx := context.Background()

	files := []model.SubmissionFile{
		{URL: "https://files/a.pdf", Name: "a.pdf", Size: 512, FieldLabel: "Отчёт"},
		{URL: "https://files/b/c.txt", Name: "c.txt", Size: 2048, IsFromFolder: true, FolderName: "b", RelativePath: "b/c.txt"},
		{URL: "https://files/d.png", Name: "d.png", Size: 3 * 1024 * 1024},
	}

	var appended [][]interface{}
	mockAPI.On("AppendRows", ctx, "sheet1", "A:J", mock.Anything).
		Run(func(args mock.Arguments) {
			appended = args.Get(3).([][]interface{})
		}).
		Return("Sheet1!A5:J7", nil)
	mockAPI.On("FormatRows", ctx, "sheet1", ports.RowFormat{
		StartRow:      4,
		EndRow:        7,
		BackgroundHex: "#FFFFFF",
	}).Return(nil)

	err := svc.AppendFileRows(ctx, "sheet1", "group1", "ivan@example.com", files)
	require.NoError(t, err)

	require.Len(t, appended, 3)
	// порядок строк повторяет порядок файлов
	assert.Equal(t, "a.pdf", appended[0][5])
	assert.Equal(t, "c.txt", appended[1][5])
	assert.Equal(t, "d.png", appended[2][5])

	first := appended[0]
	assert.Equal(t, "group1", first[0])
	assert.Equal(t, "file", first[2])
	assert.Equal(t, "", first[3])
	assert.Equal(t, "a.pdf", first[4], "без relative path подставляется имя файла")
	assert.Equal(t, "512 B", first[6])
	assert.Equal(t, "https://files/a.pdf", first[7])
	assert.Equal(t, "Отчёт", first[8])
	assert.Equal(t, "ivan@example.com", first[9])

	folderRow := appended[1]
	assert.Equal(t, "folder", folderRow[2])
	assert.Equal(t, "b", folderRow[3])
	assert.Equal(t, "b/c.txt", folderRow[4])
	assert.Equal(t, "2.0 KB", folderRow[6])

	assert.Equal(t, "3.0 MB", appended[2][6])
	assert.Equal(t, "Unknown", appended[2][8], "файл без привязки к полю")

	mockAPI.AssertExpectations(t)
}

func TestAppendFileRows_AnonymousSubmitter(t *testing.T) {
	svc, mockAPI, _, _ := newTestSheetsService()
	ctx := context.Background()

	var appended [][]interface{}
	mockAPI.On("AppendRows", ctx, "sheet1", "A:J", mock.Anything).
		Run(func(args mock.Arguments) {
			appended = args.Get(3).([][]interface{})
		}).
		Return("Sheet1!A2:J2", nil)
	mockAPI.On("FormatRows", ctx, "sheet1", mock.Anything).Return(nil)

	err := svc.AppendFileRows(ctx, "sheet1", "group1", "", []model.SubmissionFile{
		{URL: "https://files/a.pdf", Name: "a.pdf"},
	})
	require.NoError(t, err)
	require.Len(t, appended, 1)
	assert.Equal(t, "Anonymous", appended[0][9])
}

func TestAppendFileRows_PermissionError(t *testing.T) {
	svc, mockAPI, _, _ := newTestSheetsService()
	ctx := context.Background()

	mockAPI.On("AppendRows", ctx, "sheet1", "A:J", mock.Anything).
		Return("", &googleapi.Error{Code: 403, Message: "The caller does not have permission"})

	err := svc.AppendFileRows(ctx, "sheet1", "group1", "ivan@example.com", []model.SubmissionFile{
		{URL: "https://files/a.pdf", Name: "a.pdf"},
	})
	assert.ErrorIs(t, err, service.ErrSheetsPermission)
}

func TestAppendFileRows_OtherErrorsPropagate(t *testing.T) {
	svc, mockAPI, _, _ := newTestSheetsService()
	ctx := context.Background()

	remoteErr := errors.New("backend unavailable")
	mockAPI.On("AppendRows", ctx, "sheet1", "A:J", mock.Anything).Return("", remoteErr)

	err := svc.AppendFileRows(ctx, "sheet1", "group1", "ivan@example.com", []model.SubmissionFile{
		{URL: "https://files/a.pdf", Name: "a.pdf"},
	})
	assert.ErrorIs(t, err, remoteErr)
}
