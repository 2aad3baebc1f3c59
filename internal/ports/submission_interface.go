package ports

import (
	"context"

	"github.com/jmoiron/sqlx"

	"upload-form-server/internal/model"
	"upload-form-server/internal/security"
)

// SubmissionRepository : SQL слой отправок (одна строка = один файл)
type SubmissionRepository interface {
	Create(ctx context.Context, exec sqlx.ExtContext, submission *model.Submission) error
	ListByForm(ctx context.Context, exec sqlx.ExtContext, formUUID string, limit int) ([]model.Submission, error)
	CountByForm(ctx context.Context, exec sqlx.ExtContext, formUUID string) (int, error)
}

// SubmitRequest : входящий запрос публичной отправки.
// Files либо legacy-поля одного файла; Session заполняется из JWT, если
// отправитель авторизован через Google
type SubmitRequest struct {
	FormUUID       string                 `json:"form_uuid"`
	Files          []model.SubmissionFile `json:"files,omitempty"`
	FileURL        string                 `json:"file_url,omitempty"`
	FileName       string                 `json:"file_name,omitempty"`
	FileType       string                 `json:"file_type,omitempty"`
	FileSize       int64                  `json:"file_size,omitempty"`
	Answers        []model.Answer         `json:"answers,omitempty"`
	SubmitterName  string                 `json:"submitter_name,omitempty"`
	SubmitterEmail string                 `json:"submitter_email,omitempty"`
	Password       string                 `json:"password,omitempty"`
	Session        *security.Claims       `json:"-"`
}

type SubmissionService interface {
	Submit(ctx context.Context, request *SubmitRequest) (*model.Submission, error)
	ListByForm(ctx context.Context, formUUID string, ownerUUID string, limit int) ([]model.Submission, error)
	ResyncSheet(ctx context.Context, formUUID string, ownerUUID string) (string, error)
}
