package repository

import (
	"upload-form-server/config"
	"upload-form-server/internal/model"
	"upload-form-server/internal/util"
	"context"
	_ "database/sql"

	"github.com/jmoiron/sqlx"
)

type FormRepository struct {
	*config.Database
}

func NewFormRepository(database *config.Database) *FormRepository {
	return &FormRepository{database}
}

const formColumns = `
	uuid, owner_uuid, title, description, access_level, access_protection_type,
	password, allowed_domains, allowed_emails, upload_fields, custom_questions,
	collect_email, is_published, is_accepting, expiry_date, drive_folder_id,
	drive_type, enable_response_sheet, response_sheet_id, legacy_sheet_id,
	created_at, updated_at, deleted_at
`

// Create : сохраняем новую форму
func (r *FormRepository) Create(ctx context.Context, exec sqlx.ExtContext, form *model.Form) error {
	query := `
		INSERT INTO forms (uuid, owner_uuid, title, description, access_level, access_protection_type,
		                   password, allowed_domains, allowed_emails, upload_fields, custom_questions,
		                   collect_email, is_published, is_accepting, expiry_date, drive_folder_id,
		                   drive_type, enable_response_sheet, response_sheet_id, legacy_sheet_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
	`
	_, err := exec.ExecContext(
		ctx,
		query,
		form.UUID,
		form.OwnerUUID,
		form.Title,
		form.Description,
		form.AccessLevel,
		form.AccessProtectionType,
		form.Password,
		form.AllowedDomains,
		form.AllowedEmails,
		form.UploadFields,
		form.CustomQuestions,
		form.CollectEmail,
		form.IsPublished,
		form.IsAccepting,
		form.ExpiryDate,
		form.DriveFolderID,
		form.DriveType,
		form.EnableResponseSheet,
		form.ResponseSheetID,
		form.LegacySheetID)

	if err != nil {
		return util.LogError("[FormRepo] ошибка вставки данных в БД", err)
	}
	return nil
}

// GetByUUID : возвращает форму без проверки владельца — для публичной страницы
func (r *FormRepository) GetByUUID(ctx context.Context, exec sqlx.ExtContext, formUUID string) (*model.Form, error) {
	query := `SELECT ` + formColumns + ` FROM forms WHERE uuid = $1 AND deleted_at IS NULL`

	var form model.Form
	err := sqlx.GetContext(ctx, exec, &form, query, formUUID)
	if err != nil {
		return nil, err
	}
	return &form, nil
}

// GetOwned : возвращает форму, только если юзер — владелец
func (r *FormRepository) GetOwned(ctx context.Context, exec sqlx.ExtContext, formUUID string, ownerUUID string) (*model.Form, error) {
	query := `SELECT ` + formColumns + ` FROM forms WHERE uuid = $1 AND owner_uuid = $2 AND deleted_at IS NULL`

	var form model.Form
	err := sqlx.GetContext(ctx, exec, &form, query, formUUID, ownerUUID)
	if err != nil {
		return nil, err
	}
	return &form, nil
}

// ListByOwner : формы владельца, новые сверху
func (r *FormRepository) ListByOwner(ctx context.Context, exec sqlx.ExtContext, ownerUUID string, limit int) ([]model.Form, error) {
	query := `
		SELECT ` + formColumns + `
		FROM forms
		WHERE owner_uuid = $1 AND deleted_at IS NULL
		ORDER BY created_at DESC
		LIMIT $2
	`

	forms := []model.Form{}
	rows, err := exec.QueryxContext(ctx, query, ownerUUID, limit)
	if err != nil {
		return nil, util.LogError("[FormRepo] не удалось получить список форм", err)
	}
	defer rows.Close()

	for rows.Next() {
		var form model.Form
		if err := rows.StructScan(&form); err != nil {
			return nil, err
		}
		forms = append(forms, form)
	}

	return forms, nil
}

// Update : полная перезапись редактируемых полей формы
func (r *FormRepository) Update(ctx context.Context, exec sqlx.ExtContext, form *model.Form) error {
	query := `
		UPDATE forms
		SET title = $3, description = $4, access_level = $5, access_protection_type = $6,
		    password = $7, allowed_domains = $8, allowed_emails = $9, upload_fields = $10,
		    custom_questions = $11, collect_email = $12, expiry_date = $13,
		    drive_folder_id = $14, drive_type = $15, enable_response_sheet = $16,
		    updated_at = NOW()
		WHERE uuid = $1 AND owner_uuid = $2 AND deleted_at IS NULL
	`
	result, err := exec.ExecContext(
		ctx,
		query,
		form.UUID,
		form.OwnerUUID,
		form.Title,
		form.Description,
		form.AccessLevel,
		form.AccessProtectionType,
		form.Password,
		form.AllowedDomains,
		form.AllowedEmails,
		form.UploadFields,
		form.CustomQuestions,
		form.CollectEmail,
		form.ExpiryDate,
		form.DriveFolderID,
		form.DriveType,
		form.EnableResponseSheet)

	if err != nil {
		return util.LogError("[FormRepo] не удалось обновить форму", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return util.LogError("[FormRepo] не удалось проверить, обновлена ли форма", err)
	}
	if rowsAffected == 0 {
		return util.LogError("[FormRepo] форма не найдена", err)
	}
	return nil
}

// SetPublished : переключает публикацию; при публикации включает приём ответов
func (r *FormRepository) SetPublished(ctx context.Context, exec sqlx.ExtContext, formUUID string, published bool, accepting bool) error {
	query := `UPDATE forms SET is_published = $2, is_accepting = $3, updated_at = NOW() WHERE uuid = $1 AND deleted_at IS NULL`
	_, err := exec.ExecContext(ctx, query, formUUID, published, accepting)
	if err != nil {
		return util.LogError("[FormRepo] не удалось изменить публикацию", err)
	}
	return nil
}

// SetAccepting : переключает приём ответов
func (r *FormRepository) SetAccepting(ctx context.Context, exec sqlx.ExtContext, formUUID string, accepting bool) error {
	query := `UPDATE forms SET is_accepting = $2, updated_at = NOW() WHERE uuid = $1 AND deleted_at IS NULL`
	_, err := exec.ExecContext(ctx, query, formUUID, accepting)
	if err != nil {
		return util.LogError("[FormRepo] не удалось переключить приём ответов", err)
	}
	return nil
}

// SetResponseSheetID : сохраняет ID response-таблицы по принципу «первый победил».
// Две конкурирующие отправки могут одновременно создать таблицу —
// условие в WHERE гарантирует, что в БД останется ровно один ID.
// Возвращает true, если победила текущая запись
func (r *FormRepository) SetResponseSheetID(ctx context.Context, exec sqlx.ExtContext, formUUID string, sheetID string) (bool, error) {
	query := `
		UPDATE forms
		SET response_sheet_id = $2, updated_at = NOW()
		WHERE uuid = $1 AND (response_sheet_id IS NULL OR response_sheet_id = '')
	`
	result, err := exec.ExecContext(ctx, query, formUUID, sheetID)
	if err != nil {
		return false, util.LogError("[FormRepo] не удалось сохранить response_sheet_id", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, util.LogError("[FormRepo] не удалось проверить запись response_sheet_id", err)
	}
	return rowsAffected > 0, nil
}

// SetLegacySheetID : тот же принцип для таблицы старого формата
func (r *FormRepository) SetLegacySheetID(ctx context.Context, exec sqlx.ExtContext, formUUID string, sheetID string) (bool, error) {
	query := `
		UPDATE forms
		SET legacy_sheet_id = $2, updated_at = NOW()
		WHERE uuid = $1 AND (legacy_sheet_id IS NULL OR legacy_sheet_id = '')
	`
	result, err := exec.ExecContext(ctx, query, formUUID, sheetID)
	if err != nil {
		return false, util.LogError("[FormRepo] не удалось сохранить legacy_sheet_id", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, util.LogError("[FormRepo] не удалось проверить запись legacy_sheet_id", err)
	}
	return rowsAffected > 0, nil
}

// Delete : только владелец может удалить форму (soft delete)
func (r *FormRepository) Delete(ctx context.Context, exec sqlx.ExtContext, formUUID string, ownerUUID string) error {
	query := `
		UPDATE forms
		SET deleted_at = NOW()
		WHERE uuid = $1 AND owner_uuid = $2 AND deleted_at IS NULL
	`
	result, err := exec.ExecContext(ctx, query, formUUID, ownerUUID)
	if err != nil {
		return util.LogError("[FormRepo] не удалось удалить форму", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return util.LogError("[FormRepo] не удалось проверить удаление формы", err)
	}
	if rowsAffected == 0 {
		return util.LogError("[FormRepo] форма не найдена", err)
	}
	return nil
}

func (r *FormRepository) BeginTX(ctx context.Context) (sqlx.ExtContext, func() error, func() error, error) {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return nil, nil, nil, err
	}
	return tx, func() error { return tx.Rollback() }, func() error { return tx.Commit() }, nil
}
