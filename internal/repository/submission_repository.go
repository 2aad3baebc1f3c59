package repository

import (
	"upload-form-server/config"
	"upload-form-server/internal/model"
	"upload-form-server/internal/util"
	"context"

	"github.com/jmoiron/sqlx"
)

type SubmissionRepository struct {
	*config.Database
}

func NewSubmissionRepository(database *config.Database) *SubmissionRepository {
	return &SubmissionRepository{database}
}

// Create : сохраняем одну строку отправки (один файл)
func (r *SubmissionRepository) Create(ctx context.Context, exec sqlx.ExtContext, submission *model.Submission) error {
	query := `
		INSERT INTO submissions (uuid, form_uuid, group_uuid, file_url, file_name, file_type,
		                         file_size, field_id, field_label, is_from_folder, folder_name,
		                         relative_path, files_snapshot, answers, submitter_name, submitter_email)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`
	_, err := exec.ExecContext(
		ctx,
		query,
		submission.UUID,
		submission.FormUUID,
		submission.GroupUUID,
		submission.FileURL,
		submission.FileName,
		submission.FileType,
		submission.FileSize,
		submission.FieldID,
		submission.FieldLabel,
		submission.IsFromFolder,
		submission.FolderName,
		submission.RelativePath,
		submission.Files,
		submission.Answers,
		submission.SubmitterName,
		submission.SubmitterEmail)

	return err
}

// ListByForm : отправки формы, новые сверху
func (r *SubmissionRepository) ListByForm(ctx context.Context, exec sqlx.ExtContext, formUUID string, limit int) ([]model.Submission, error) {
	query := `
		SELECT uuid, form_uuid, group_uuid, file_url, file_name, file_type, file_size,
		       field_id, field_label, is_from_folder, folder_name, relative_path,
		       files_snapshot, answers, submitter_name, submitter_email, created_at
		FROM submissions
		WHERE form_uuid = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	submissions := []model.Submission{}
	rows, err := exec.QueryxContext(ctx, query, formUUID, limit)
	if err != nil {
		return nil, util.LogError("[SubmissionRepo] не удалось получить список отправок", err)
	}
	defer rows.Close()

	for rows.Next() {
		var submission model.Submission
		if err := rows.StructScan(&submission); err != nil {
			return nil, err
		}
		submissions = append(submissions, submission)
	}

	return submissions, nil
}

// CountByForm : количество отправок формы (по группам, не по файлам)
func (r *SubmissionRepository) CountByForm(ctx context.Context, exec sqlx.ExtContext, formUUID string) (int, error) {
	var count int
	query := `SELECT COUNT(DISTINCT group_uuid) FROM submissions WHERE form_uuid = $1`
	err := sqlx.GetContext(ctx, exec, &count, query, formUUID)
	if err != nil {
		return 0, util.LogError("[SubmissionRepo] не удалось посчитать отправки", err)
	}
	return count, nil
}
