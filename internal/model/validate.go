package model

import (
	"fmt"
	"strings"
)

// Типы вопросов, у которых обязателен список вариантов
var choiceQuestionTypes = map[string]bool{
	"select":   true,
	"dropdown": true,
	"radio":    true,
	"checkbox": true,
}

// PublishIssues : три независимых валидатора перед публикацией.
// Все ошибки собираются в один список — админ видит сразу все пробелы,
// а не по одному за попытку
func PublishIssues(f *Form) []string {
	var issues []string

	if strings.TrimSpace(f.Title) == "" {
		issues = append(issues, "Form title is required")
	}

	hasLabeledField := false
	for _, field := range f.UploadFields {
		if strings.TrimSpace(field.Label) != "" {
			hasLabeledField = true
			break
		}
	}
	if !hasLabeledField {
		issues = append(issues, "At least one file upload field with a label is required")
	}

	for i, q := range f.CustomQuestions {
		if !q.Required {
			continue
		}
		if strings.TrimSpace(q.Label) == "" {
			issues = append(issues, fmt.Sprintf("Required question %d is missing a label", i+1))
			continue
		}
		if choiceQuestionTypes[q.Type] && !hasNonEmptyOption(q.Options) {
			issues = append(issues, fmt.Sprintf("Required question %q must have at least one option", q.Label))
		}
	}

	return issues
}

func hasNonEmptyOption(options []string) bool {
	for _, opt := range options {
		if strings.TrimSpace(opt) != "" {
			return true
		}
	}
	return false
}
