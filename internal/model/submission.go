package model

import "time"

// SubmissionFile : один загруженный файл в составе отправки
type SubmissionFile struct {
	URL          string `json:"url"`
	Name         string `json:"name"`
	Type         string `json:"type,omitempty"`
	Size         int64  `json:"size,omitempty"`
	FieldID      string `json:"field_id,omitempty"`
	FieldLabel   string `json:"field_label,omitempty"`
	IsFromFolder bool   `json:"is_from_folder,omitempty"`
	FolderName   string `json:"folder_name,omitempty"`
	RelativePath string `json:"relative_path,omitempty"`
}

// Answer : ответ на дополнительный вопрос формы
type Answer struct {
	QuestionID string `json:"question_id"`
	Answer     string `json:"answer"`
}

// Submission : одна строка на один загруженный файл.
// GroupUUID общий для всех файлов одного действия пользователя;
// Files — денормализованная копия всего набора файлов события
// (избыточна, но именно по ней строятся строки response-таблицы)
type Submission struct {
	UUID           string     `db:"uuid" json:"uuid"`
	FormUUID       string     `db:"form_uuid" json:"form_uuid"`
	GroupUUID      string     `db:"group_uuid" json:"group_uuid"`
	FileURL        string     `db:"file_url" json:"file_url"`
	FileName       string     `db:"file_name" json:"file_name"`
	FileType       string     `db:"file_type" json:"file_type"`
	FileSize       int64      `db:"file_size" json:"file_size"`
	FieldID        string     `db:"field_id" json:"field_id,omitempty"`
	FieldLabel     string     `db:"field_label" json:"field_label,omitempty"`
	IsFromFolder   bool       `db:"is_from_folder" json:"is_from_folder"`
	FolderName     string     `db:"folder_name" json:"folder_name,omitempty"`
	RelativePath   string     `db:"relative_path" json:"relative_path,omitempty"`
	Files          FileList   `db:"files_snapshot" json:"files"`
	Answers        AnswerList `db:"answers" json:"answers"`
	SubmitterName  string     `db:"submitter_name" json:"submitter_name"`
	SubmitterEmail string     `db:"submitter_email" json:"submitter_email"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
}
