package model

import (
	"strings"
	"time"
)

// Уровни доступа и режимы защиты публичной страницы формы
const (
	AccessLevelAnyone  = "ANYONE"
	AccessLevelInvited = "INVITED"

	ProtectionPublic   = "PUBLIC"
	ProtectionPassword = "PASSWORD"
	ProtectionGoogle   = "GOOGLE"

	CollectEmailNone     = "NONE"
	CollectEmailOptional = "OPTIONAL"
	CollectEmailRequired = "REQUIRED"
)

// Статусы формы — вычисляются, никогда не хранятся
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
	StatusExpired   = "expired"
)

// UploadField : одно поле загрузки файлов внутри формы
// ID стабилен между правками — на него ссылаются submissions
type UploadField struct {
	ID            string   `json:"id"`
	Label         string   `json:"label"`
	AllowedTypes  []string `json:"allowed_types,omitempty"`
	Required      bool     `json:"required"`
	AllowMultiple bool     `json:"allow_multiple"`
	AllowFolder   bool     `json:"allow_folder"`
	MaxFileSize   int64    `json:"max_file_size,omitempty"`
}

// CustomQuestion : дополнительный вопрос формы
type CustomQuestion struct {
	ID         string   `json:"id"`
	Type       string   `json:"type"`
	Label      string   `json:"label"`
	Required   bool     `json:"required"`
	Options    []string `json:"options,omitempty"`
	AllowOther bool     `json:"allow_other,omitempty"`
}

// IsBlank : вопрос без текста и вариантов ответа
func (q CustomQuestion) IsBlank() bool {
	return strings.TrimSpace(q.Label) == "" && len(q.Options) == 0
}

// IsEmailQuestion : вопрос, буквально озаглавленный "Email"
func (q CustomQuestion) IsEmailQuestion() bool {
	return strings.EqualFold(strings.TrimSpace(q.Label), "email")
}

type Form struct {
	UUID                 string          `db:"uuid" json:"uuid"`
	OwnerUUID            string          `db:"owner_uuid" json:"owner_uuid"`
	Title                string          `db:"title" json:"title"`
	Description          string          `db:"description" json:"description"`
	AccessLevel          string          `db:"access_level" json:"access_level"`
	AccessProtectionType string          `db:"access_protection_type" json:"access_protection_type"`
	Password             string          `db:"password" json:"-"`
	AllowedDomains       StringList      `db:"allowed_domains" json:"allowed_domains,omitempty"`
	AllowedEmails        StringList      `db:"allowed_emails" json:"allowed_emails,omitempty"`
	UploadFields         UploadFieldList `db:"upload_fields" json:"upload_fields"`
	CustomQuestions      QuestionList    `db:"custom_questions" json:"custom_questions"`
	CollectEmail         string          `db:"collect_email" json:"collect_email"`
	IsPublished          bool            `db:"is_published" json:"is_published"`
	IsAccepting          bool            `db:"is_accepting" json:"is_accepting"`
	ExpiryDate           *time.Time      `db:"expiry_date" json:"expiry_date,omitempty"`
	DriveFolderID        string          `db:"drive_folder_id" json:"drive_folder_id,omitempty"`
	DriveType            string          `db:"drive_type" json:"drive_type,omitempty"`
	EnableResponseSheet  bool            `db:"enable_response_sheet" json:"enable_response_sheet"`
	ResponseSheetID      string          `db:"response_sheet_id" json:"response_sheet_id,omitempty"`
	LegacySheetID        string          `db:"legacy_sheet_id" json:"legacy_sheet_id,omitempty"`
	CreatedAt            time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt            time.Time       `db:"updated_at" json:"updated_at"`
	DeletedAt            *time.Time      `db:"deleted_at" json:"deleted_at,omitempty"`
}

// IsExpired : истёк ли срок формы — всегда пересчитывается, флага в БД нет
func (f *Form) IsExpired(now time.Time) bool {
	return f.ExpiryDate != nil && now.After(*f.ExpiryDate)
}

// RequiresGoogleSignIn : режим GOOGLE эквивалентен accessLevel == INVITED
func (f *Form) RequiresGoogleSignIn() bool {
	return f.AccessProtectionType == ProtectionGoogle || f.AccessLevel == AccessLevelInvited
}

// Classify : раскладывает форму ровно в одну из корзин draft/published/expired
// Используется и листингом дашборда, и пайплайном отправки
func (f *Form) Classify(now time.Time) string {
	if !f.IsPublished {
		return StatusDraft
	}
	if f.IsExpired(now) {
		return StatusExpired
	}
	return StatusPublished
}
