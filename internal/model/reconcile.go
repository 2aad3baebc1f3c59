package model

import "github.com/google/uuid"

// ReconcileEmailQuestion : выравнивает вопрос "Email" с режимом защиты
// и настройкой сбора email. Вызывается после каждого изменения конфигурации
// (и редактором, и сервером при сохранении), поэтому должна быть идемпотентной.
//
// Правила:
//   - режим GOOGLE: verified email приходит из сессии, поэтому вопрос "Email"
//     удаляется (на позиции 0 — заменяется пустым, чтобы не сдвигать id
//     последующих вопросов), а сбор email принудительно выключается;
//   - сбор email OPTIONAL/REQUIRED вне GOOGLE: существующему вопросу "Email"
//     только обновляется флаг required; если вопроса нет — он вставляется
//     на позицию 0 (вместо пустого первого вопроса) или на позицию 1.
func ReconcileEmailQuestion(f *Form) {
	if f.RequiresGoogleSignIn() {
		removeEmailQuestion(f)
		f.CollectEmail = CollectEmailNone
		return
	}

	if f.CollectEmail != CollectEmailOptional && f.CollectEmail != CollectEmailRequired {
		return
	}

	required := f.CollectEmail == CollectEmailRequired
	for i, q := range f.CustomQuestions {
		if q.IsEmailQuestion() {
			f.CustomQuestions[i].Required = required
			return
		}
	}

	emailQuestion := CustomQuestion{
		ID:       uuid.New().String(),
		Type:     "text",
		Label:    "Email",
		Required: required,
	}

	switch {
	case len(f.CustomQuestions) == 0:
		f.CustomQuestions = QuestionList{emailQuestion}
	case f.CustomQuestions[0].IsBlank():
		// пустой первый вопрос уступает место, порядок остальных не меняется
		f.CustomQuestions[0] = emailQuestion
	default:
		rest := make(QuestionList, 0, len(f.CustomQuestions)+1)
		rest = append(rest, f.CustomQuestions[0], emailQuestion)
		rest = append(rest, f.CustomQuestions[1:]...)
		f.CustomQuestions = rest
	}
}

func removeEmailQuestion(f *Form) {
	for i, q := range f.CustomQuestions {
		if !q.IsEmailQuestion() {
			continue
		}
		if i == 0 {
			// замена пустым вопросом сохраняет позиции остальных —
			// на них могут ссылаться уже собранные ответы
			f.CustomQuestions[0] = CustomQuestion{
				ID:   uuid.New().String(),
				Type: "text",
			}
		} else {
			f.CustomQuestions = append(f.CustomQuestions[:i], f.CustomQuestions[i+1:]...)
		}
		return
	}
}
