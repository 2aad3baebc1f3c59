package requestresponse

import (
	"time"

	"upload-form-server/internal/model"
)

// SubmitResponse : ответ на успешную отправку
type SubmitResponse struct {
	Data struct {
		GroupUUID string `json:"group_uuid" example:"b6a1e1c4-4b1d-4f1e-8b29-1234567890ab"`
		Files     int    `json:"files" example:"3"`
	} `json:"data"`
}

// SubmissionResponse : отправка для JSON-ответа владельцу формы
type SubmissionResponse struct {
	UUID           string                 `json:"uuid"`
	GroupUUID      string                 `json:"group_uuid"`
	FileURL        string                 `json:"file_url"`
	FileName       string                 `json:"file_name" example:"report.pdf"`
	FileType       string                 `json:"file_type" example:"application/pdf"`
	FileSize       int64                  `json:"file_size" example:"102400"`
	FieldLabel     string                 `json:"field_label,omitempty"`
	FolderName     string                 `json:"folder_name,omitempty"`
	Answers        []model.Answer         `json:"answers,omitempty"`
	SubmitterName  string                 `json:"submitter_name,omitempty"`
	SubmitterEmail string                 `json:"submitter_email,omitempty"`
	Files          []model.SubmissionFile `json:"files,omitempty"`
	CreatedAt      string                 `json:"created_at" example:"2025-08-23T12:34:56Z"`
}

// SubmissionResponseFromModel : конвертирует model.Submission в SubmissionResponse
func SubmissionResponseFromModel(submission *model.Submission) SubmissionResponse {
	return SubmissionResponse{
		UUID:           submission.UUID,
		GroupUUID:      submission.GroupUUID,
		FileURL:        submission.FileURL,
		FileName:       submission.FileName,
		FileType:       submission.FileType,
		FileSize:       submission.FileSize,
		FieldLabel:     submission.FieldLabel,
		FolderName:     submission.FolderName,
		Answers:        submission.Answers,
		SubmitterName:  submission.SubmitterName,
		SubmitterEmail: submission.SubmitterEmail,
		Files:          submission.Files,
		CreatedAt:      submission.CreatedAt.Format(time.RFC3339),
	}
}

// ListSubmissionsResponse : ответ API со списком отправок формы
type ListSubmissionsResponse struct {
	Data struct {
		Submissions []SubmissionResponse `json:"submissions"`
	} `json:"data"`
	Count int `json:"count" example:"10"`
}

// ResyncSheetResponse : результат ручной сверки response-таблицы
type ResyncSheetResponse struct {
	SheetID string `json:"sheet_id"`
}

// UploadSlotRequest : запрос presigned-ссылки для загрузки файла в хранилище
type UploadSlotRequest struct {
	FileName string `json:"file_name" example:"report.pdf"`
	FileType string `json:"file_type" example:"application/pdf"`
}

// UploadSlotResponse : presigned-ссылка и итоговый URL объекта
type UploadSlotResponse struct {
	UploadURL string `json:"upload_url"`
	FileURL   string `json:"file_url"`
	ExpiresIn string `json:"expires_in" example:"15m"`
}
