package ports

import (
	"context"

	"github.com/jmoiron/sqlx"

	"upload-form-server/internal/model"
)

// FormRepository : SQL слой форм
type FormRepository interface {
	Create(ctx context.Context, exec sqlx.ExtContext, form *model.Form) error
	GetByUUID(ctx context.Context, exec sqlx.ExtContext, formUUID string) (*model.Form, error)
	GetOwned(ctx context.Context, exec sqlx.ExtContext, formUUID string, ownerUUID string) (*model.Form, error)
	ListByOwner(ctx context.Context, exec sqlx.ExtContext, ownerUUID string, limit int) ([]model.Form, error)
	Update(ctx context.Context, exec sqlx.ExtContext, form *model.Form) error
	SetPublished(ctx context.Context, exec sqlx.ExtContext, formUUID string, published bool, accepting bool) error
	SetAccepting(ctx context.Context, exec sqlx.ExtContext, formUUID string, accepting bool) error
	SetResponseSheetID(ctx context.Context, exec sqlx.ExtContext, formUUID string, sheetID string) (bool, error)
	SetLegacySheetID(ctx context.Context, exec sqlx.ExtContext, formUUID string, sheetID string) (bool, error)
	Delete(ctx context.Context, exec sqlx.ExtContext, formUUID string, ownerUUID string) error
	BeginTX(ctx context.Context) (sqlx.ExtContext, func() error, func() error, error)
}

// FormListItem : форма в листинге дашборда вместе с вычисленным статусом
type FormListItem struct {
	Form            model.Form `json:"form"`
	Status          string     `json:"status"`
	SubmissionCount int        `json:"submission_count"`
}

type FormService interface {
	CreateForm(ctx context.Context, ownerUUID string, form *model.Form) (*model.Form, error)
	GetForm(ctx context.Context, formUUID string, ownerUUID string) (*model.Form, error)
	GetPublicForm(ctx context.Context, formUUID string) (*model.Form, error)
	ListForms(ctx context.Context, ownerUUID string, limit int) ([]FormListItem, error)
	UpdateForm(ctx context.Context, ownerUUID string, form *model.Form) (*model.Form, error)
	PublishForm(ctx context.Context, formUUID string, ownerUUID string) ([]string, error)
	SetAccepting(ctx context.Context, formUUID string, ownerUUID string, accepting bool) error
	DeleteForm(ctx context.Context, formUUID string, ownerUUID string) error
	DuplicateForm(ctx context.Context, formUUID string, ownerUUID string) (*model.Form, error)
}
