package repository_test

import (
	"upload-form-server/config"
	"upload-form-server/internal/repository"
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFormRepository(t *testing.T) (*repository.FormRepository, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	sqlxDB := sqlx.NewDb(mockDB, "sqlmock")
	return repository.NewFormRepository(&config.Database{DB: sqlxDB}), mock
}

func formRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"uuid", "owner_uuid", "title", "description", "access_level", "access_protection_type",
		"password", "allowed_domains", "allowed_emails", "upload_fields", "custom_questions",
		"collect_email", "is_published", "is_accepting", "expiry_date", "drive_folder_id",
		"drive_type", "enable_response_sheet", "response_sheet_id", "legacy_sheet_id",
		"created_at", "updated_at", "deleted_at",
	})
}

func TestGetOwned(t *testing.T) {
	repo, mock := newTestFormRepository(t)
	ctx := context.Background()
	now := time.Now()

	rows := formRows().AddRow(
		"form1", "owner1", "Приём работ", "", "ANYONE", "PASSWORD",
		"secret", []byte(`[]`), []byte(`[]`),
		[]byte(`[{"id":"f1","label":"Отчёт","required":true,"allow_multiple":false,"allow_folder":false}]`),
		[]byte(`[{"id":"q1","type":"text","label":"Email","required":true}]`),
		"REQUIRED", true, true, nil, "", "", true, "sheet-1", "",
		now, now, nil,
	)

	mock.ExpectQuery(`SELECT (.+) FROM forms WHERE uuid = \$1 AND owner_uuid = \$2`).
		WithArgs("form1", "owner1").
		WillReturnRows(rows)

	form, err := repo.GetOwned(ctx, repo.DB, "form1", "owner1")
	require.NoError(t, err)

	assert.Equal(t, "form1", form.UUID)
	assert.Equal(t, "secret", form.Password)
	require.Len(t, form.UploadFields, 1)
	assert.Equal(t, "Отчёт", form.UploadFields[0].Label)
	require.Len(t, form.CustomQuestions, 1)
	assert.True(t, form.CustomQuestions[0].IsEmailQuestion())
	assert.Equal(t, "sheet-1", form.ResponseSheetID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetOwned_NotFound(t *testing.T) {
	repo, mock := newTestFormRepository(t)

	mock.ExpectQuery(`SELECT (.+) FROM forms WHERE uuid = \$1 AND owner_uuid = \$2`).
		WithArgs("missing", "owner1").
		WillReturnRows(formRows())

	_, err := repo.GetOwned(context.Background(), repo.DB, "missing", "owner1")
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetResponseSheetID_FirstWriterWins(t *testing.T) {
	repo, mock := newTestFormRepository(t)
	ctx := context.Background()

	tests := []struct {
		name         string
		rowsAffected int64
		expectedWon  bool
	}{
		{name: "first writer", rowsAffected: 1, expectedWon: true},
		{name: "id already set", rowsAffected: 0, expectedWon: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock.ExpectExec(`UPDATE forms\s+SET response_sheet_id = \$2`).
				WithArgs("form1", "sheet-new").
				WillReturnResult(sqlmock.NewResult(0, tt.rowsAffected))

			won, err := repo.SetResponseSheetID(ctx, repo.DB, "form1", "sheet-new")
			require.NoError(t, err)
			assert.Equal(t, tt.expectedWon, won)
		})
	}

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetLegacySheetID_AlreadySet(t *testing.T) {
	repo, mock := newTestFormRepository(t)

	mock.ExpectExec(`UPDATE forms\s+SET legacy_sheet_id = \$2`).
		WithArgs("form1", "legacy-new").
		WillReturnResult(sqlmock.NewResult(0, 0))

	won, err := repo.SetLegacySheetID(context.Background(), repo.DB, "form1", "legacy-new")
	require.NoError(t, err)
	assert.False(t, won)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDelete(t *testing.T) {
	repo, mock := newTestFormRepository(t)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec(`UPDATE forms\s+SET deleted_at = NOW\(\)`).
			WithArgs("form1", "owner1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Delete(ctx, repo.DB, "form1", "owner1")
		assert.NoError(t, err)
	})

	t.Run("Not owner", func(t *testing.T) {
		mock.ExpectExec(`UPDATE forms\s+SET deleted_at = NOW\(\)`).
			WithArgs("form1", "intruder").
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Delete(ctx, repo.DB, "form1", "intruder")
		assert.Error(t, err)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetPublished(t *testing.T) {
	repo, mock := newTestFormRepository(t)

	mock.ExpectExec(`UPDATE forms SET is_published = \$2, is_accepting = \$3`).
		WithArgs("form1", true, true).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.SetPublished(context.Background(), repo.DB, "form1", true, true)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
