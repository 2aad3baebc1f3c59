package model_test

import (
	"upload-form-server/internal/model"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormClassify(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)

	tests := []struct {
		name string
		form model.Form
		want string
	}{
		{
			name: "Unpublished is draft",
			form: model.Form{},
			want: model.StatusDraft,
		},
		{
			name: "Unpublished with past expiry is still draft",
			form: model.Form{ExpiryDate: &past},
			want: model.StatusDraft,
		},
		{
			name: "Published without expiry",
			form: model.Form{IsPublished: true},
			want: model.StatusPublished,
		},
		{
			name: "Published before expiry",
			form: model.Form{IsPublished: true, ExpiryDate: &future},
			want: model.StatusPublished,
		},
		{
			name: "Published past expiry",
			form: model.Form{IsPublished: true, ExpiryDate: &past},
			want: model.StatusExpired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.form.Classify(now))
		})
	}
}

func TestFormIsExpired(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	form := model.Form{}
	assert.False(t, form.IsExpired(now), "без даты истечения форма вечная")

	form.ExpiryDate = &now
	assert.False(t, form.IsExpired(now), "ровно в момент истечения ещё не истекла")

	past := now.Add(-time.Second)
	form.ExpiryDate = &past
	assert.True(t, form.IsExpired(now))
}

func TestRequiresGoogleSignIn(t *testing.T) {
	assert.True(t, (&model.Form{AccessProtectionType: model.ProtectionGoogle}).RequiresGoogleSignIn())
	assert.True(t, (&model.Form{AccessLevel: model.AccessLevelInvited}).RequiresGoogleSignIn())
	assert.False(t, (&model.Form{
		AccessLevel:          model.AccessLevelAnyone,
		AccessProtectionType: model.ProtectionPassword,
	}).RequiresGoogleSignIn())
}

func TestCustomQuestionHelpers(t *testing.T) {
	assert.True(t, model.CustomQuestion{Label: " EMAIL "}.IsEmailQuestion())
	assert.False(t, model.CustomQuestion{Label: "Email address"}.IsEmailQuestion())

	assert.True(t, model.CustomQuestion{Label: "  "}.IsBlank())
	assert.False(t, model.CustomQuestion{Options: []string{"a"}}.IsBlank())
}
