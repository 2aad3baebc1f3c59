package ports

import (
	"context"

	"upload-form-server/internal/model"
)

// CacheRepository : Redis слой — кэш опубликованных форм для публичной страницы
type CacheRepository interface {
	SetForm(ctx context.Context, form *model.Form) error
	GetForm(ctx context.Context, uuid string) (*model.Form, error)
	DeleteForm(ctx context.Context, uuid string) error
}
