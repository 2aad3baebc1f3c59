package requestresponse

import (
	"time"

	"upload-form-server/internal/model"
	"upload-form-server/internal/ports"
)

// SaveFormRequest : тело запроса создания/обновления формы
type SaveFormRequest struct {
	Title                string                 `json:"title" example:"Приём курсовых работ"`
	Description          string                 `json:"description" example:"Загрузите PDF до 15 мая"`
	AccessLevel          string                 `json:"access_level" example:"ANYONE"`
	AccessProtectionType string                 `json:"access_protection_type" example:"PUBLIC"`
	Password             string                 `json:"password,omitempty" example:"secret123"`
	AllowedDomains       []string               `json:"allowed_domains,omitempty"`
	AllowedEmails        []string               `json:"allowed_emails,omitempty"`
	UploadFields         []model.UploadField    `json:"upload_fields"`
	CustomQuestions      []model.CustomQuestion `json:"custom_questions"`
	CollectEmail         string                 `json:"collect_email" example:"OPTIONAL"`
	ExpiryDate           *time.Time             `json:"expiry_date,omitempty"`
	EnableResponseSheet  bool                   `json:"enable_response_sheet" example:"true"`
}

// ToModel : собирает model.Form из тела запроса
func (r *SaveFormRequest) ToModel() *model.Form {
	return &model.Form{
		Title:                r.Title,
		Description:          r.Description,
		AccessLevel:          r.AccessLevel,
		AccessProtectionType: r.AccessProtectionType,
		Password:             r.Password,
		AllowedDomains:       r.AllowedDomains,
		AllowedEmails:        r.AllowedEmails,
		UploadFields:         r.UploadFields,
		CustomQuestions:      r.CustomQuestions,
		CollectEmail:         r.CollectEmail,
		ExpiryDate:           r.ExpiryDate,
		EnableResponseSheet:  r.EnableResponseSheet,
	}
}

// FormResponse : форма для JSON-ответа владельцу
type FormResponse struct {
	UUID                 string                 `json:"uuid" example:"b6a1e1c4-4b1d-4f1e-8b29-1234567890ab"`
	Title                string                 `json:"title" example:"Приём курсовых работ"`
	Description          string                 `json:"description"`
	AccessLevel          string                 `json:"access_level" example:"ANYONE"`
	AccessProtectionType string                 `json:"access_protection_type" example:"PASSWORD"`
	UploadFields         []model.UploadField    `json:"upload_fields"`
	CustomQuestions      []model.CustomQuestion `json:"custom_questions"`
	CollectEmail         string                 `json:"collect_email" example:"NONE"`
	IsPublished          bool                   `json:"is_published" example:"true"`
	IsAccepting          bool                   `json:"is_accepting" example:"true"`
	ExpiryDate           *time.Time             `json:"expiry_date,omitempty"`
	EnableResponseSheet  bool                   `json:"enable_response_sheet"`
	ResponseSheetID      string                 `json:"response_sheet_id,omitempty"`
	Status               string                 `json:"status" example:"published"`
	CreatedAt            string                 `json:"created_at" example:"2025-08-23T12:34:56Z"`
	UpdatedAt            string                 `json:"updated_at" example:"2025-08-23T12:34:56Z"`
}

// FormResponseFromModel : конвертирует model.Form в FormResponse
func FormResponseFromModel(form *model.Form, now time.Time) FormResponse {
	return FormResponse{
		UUID:                 form.UUID,
		Title:                form.Title,
		Description:          form.Description,
		AccessLevel:          form.AccessLevel,
		AccessProtectionType: form.AccessProtectionType,
		UploadFields:         form.UploadFields,
		CustomQuestions:      form.CustomQuestions,
		CollectEmail:         form.CollectEmail,
		IsPublished:          form.IsPublished,
		IsAccepting:          form.IsAccepting,
		ExpiryDate:           form.ExpiryDate,
		EnableResponseSheet:  form.EnableResponseSheet,
		ResponseSheetID:      form.ResponseSheetID,
		Status:               form.Classify(now),
		CreatedAt:            form.CreatedAt.Format(time.RFC3339),
		UpdatedAt:            form.UpdatedAt.Format(time.RFC3339),
	}
}

// PublicFormResponse : форма для публичной страницы отправки.
// Пароль, списки доступа и служебные идентификаторы не отдаются
type PublicFormResponse struct {
	UUID                 string                 `json:"uuid"`
	Title                string                 `json:"title"`
	Description          string                 `json:"description"`
	AccessProtectionType string                 `json:"access_protection_type"`
	UploadFields         []model.UploadField    `json:"upload_fields"`
	CustomQuestions      []model.CustomQuestion `json:"custom_questions"`
	CollectEmail         string                 `json:"collect_email"`
	IsAccepting          bool                   `json:"is_accepting"`
	ExpiryDate           *time.Time             `json:"expiry_date,omitempty"`
}

// PublicFormResponseFromModel : конвертирует model.Form в PublicFormResponse
func PublicFormResponseFromModel(form *model.Form) PublicFormResponse {
	return PublicFormResponse{
		UUID:                 form.UUID,
		Title:                form.Title,
		Description:          form.Description,
		AccessProtectionType: form.AccessProtectionType,
		UploadFields:         form.UploadFields,
		CustomQuestions:      form.CustomQuestions,
		CollectEmail:         form.CollectEmail,
		IsAccepting:          form.IsAccepting,
		ExpiryDate:           form.ExpiryDate,
	}
}

// FormListItemResponse : элемент листинга дашборда
type FormListItemResponse struct {
	Form            FormResponse `json:"form"`
	Status          string       `json:"status" example:"draft"`
	SubmissionCount int          `json:"submission_count" example:"12"`
}

// ListFormsResponse : ответ API со списком форм владельца
type ListFormsResponse struct {
	Data struct {
		Forms []FormListItemResponse `json:"forms"`
	} `json:"data"`
	Count int `json:"count" example:"3"`
}

// ListFormsResponseFromItems : конвертирует выдачу сервиса в ответ API
func ListFormsResponseFromItems(items []ports.FormListItem, now time.Time) ListFormsResponse {
	response := ListFormsResponse{Count: len(items)}
	response.Data.Forms = make([]FormListItemResponse, 0, len(items))
	for i := range items {
		response.Data.Forms = append(response.Data.Forms, FormListItemResponse{
			Form:            FormResponseFromModel(&items[i].Form, now),
			Status:          items[i].Status,
			SubmissionCount: items[i].SubmissionCount,
		})
	}
	return response
}

// PublishFormResponse : результат публикации
type PublishFormResponse struct {
	Published bool     `json:"published" example:"false"`
	Issues    []string `json:"issues,omitempty" example:"Form title is required"`
}

// SetAcceptingRequest : тело запроса переключения приёма ответов
type SetAcceptingRequest struct {
	Accepting bool `json:"accepting" example:"true"`
}

// ErrorResponse : общий объект ошибки
type ErrorResponse struct {
	Code int    `json:"code" example:"400"`
	Text string `json:"text" example:"описание ошибки"`
}

// SuccessResponse : стандартный ответ успешного выполнения операции
type SuccessResponse struct {
	Message string `json:"message" example:"Операция выполнена успешно"`
}
