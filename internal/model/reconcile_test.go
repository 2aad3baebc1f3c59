package model_test

import (
	"upload-form-server/internal/model"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconcileEmailQuestion_GoogleModeRemovesQuestion(t *testing.T) {
	t.Run("At position zero replaced with blank", func(t *testing.T) {
		form := &model.Form{
			AccessProtectionType: model.ProtectionGoogle,
			CollectEmail:         model.CollectEmailRequired,
			CustomQuestions: model.QuestionList{
				{ID: "q1", Type: "text", Label: "Email", Required: true},
				{ID: "q2", Type: "text", Label: "Группа"},
			},
		}

		model.ReconcileEmailQuestion(form)

		// позиции остальных вопросов не сдвигаются
		require.Len(t, form.CustomQuestions, 2)
		assert.Empty(t, form.CustomQuestions[0].Label)
		assert.NotEqual(t, "q1", form.CustomQuestions[0].ID)
		assert.Equal(t, "q2", form.CustomQuestions[1].ID)
		assert.Equal(t, model.CollectEmailNone, form.CollectEmail)
	})

	t.Run("Elsewhere removed outright", func(t *testing.T) {
		form := &model.Form{
			AccessLevel:  model.AccessLevelInvited,
			CollectEmail: model.CollectEmailOptional,
			CustomQuestions: model.QuestionList{
				{ID: "q1", Type: "text", Label: "Группа"},
				{ID: "q2", Type: "text", Label: "email"},
				{ID: "q3", Type: "text", Label: "Комментарий"},
			},
		}

		model.ReconcileEmailQuestion(form)

		require.Len(t, form.CustomQuestions, 2)
		assert.Equal(t, "q1", form.CustomQuestions[0].ID)
		assert.Equal(t, "q3", form.CustomQuestions[1].ID)
		assert.Equal(t, model.CollectEmailNone, form.CollectEmail)
	})
}

func TestReconcileEmailQuestion_InsertsQuestion(t *testing.T) {
	t.Run("Empty form gets question at position zero", func(t *testing.T) {
		form := &model.Form{CollectEmail: model.CollectEmailRequired}

		model.ReconcileEmailQuestion(form)

		require.Len(t, form.CustomQuestions, 1)
		assert.Equal(t, "Email", form.CustomQuestions[0].Label)
		assert.Equal(t, "text", form.CustomQuestions[0].Type)
		assert.True(t, form.CustomQuestions[0].Required)
		assert.NotEmpty(t, form.CustomQuestions[0].ID)
	})

	t.Run("Blank first question gives up its slot", func(t *testing.T) {
		form := &model.Form{
			CollectEmail: model.CollectEmailOptional,
			CustomQuestions: model.QuestionList{
				{ID: "q1", Type: "text"},
				{ID: "q2", Type: "text", Label: "Группа"},
			},
		}

		model.ReconcileEmailQuestion(form)

		require.Len(t, form.CustomQuestions, 2)
		assert.Equal(t, "Email", form.CustomQuestions[0].Label)
		assert.False(t, form.CustomQuestions[0].Required)
		assert.Equal(t, "q2", form.CustomQuestions[1].ID)
	})

	t.Run("Non-blank first question keeps its slot", func(t *testing.T) {
		form := &model.Form{
			CollectEmail: model.CollectEmailRequired,
			CustomQuestions: model.QuestionList{
				{ID: "q1", Type: "text", Label: "ФИО"},
				{ID: "q2", Type: "text", Label: "Группа"},
			},
		}

		model.ReconcileEmailQuestion(form)

		require.Len(t, form.CustomQuestions, 3)
		assert.Equal(t, "q1", form.CustomQuestions[0].ID)
		assert.Equal(t, "Email", form.CustomQuestions[1].Label)
		assert.Equal(t, "q2", form.CustomQuestions[2].ID)
	})
}

func TestReconcileEmailQuestion_UpdatesRequiredFlagOnly(t *testing.T) {
	form := &model.Form{
		CollectEmail: model.CollectEmailRequired,
		CustomQuestions: model.QuestionList{
			{ID: "q1", Type: "text", Label: "ФИО"},
			{ID: "q2", Type: "text", Label: " Email ", Required: false},
		},
	}

	model.ReconcileEmailQuestion(form)

	// существующий вопрос остаётся на месте, дубликат не вставляется
	require.Len(t, form.CustomQuestions, 2)
	assert.Equal(t, "q2", form.CustomQuestions[1].ID)
	assert.True(t, form.CustomQuestions[1].Required)
}

func TestReconcileEmailQuestion_CollectNoneLeavesFormAlone(t *testing.T) {
	form := &model.Form{
		CollectEmail: model.CollectEmailNone,
		CustomQuestions: model.QuestionList{
			{ID: "q1", Type: "text", Label: "Email", Required: true},
		},
	}

	model.ReconcileEmailQuestion(form)

	require.Len(t, form.CustomQuestions, 1)
	assert.Equal(t, "q1", form.CustomQuestions[0].ID)
	assert.Equal(t, "Email", form.CustomQuestions[0].Label)
}

func TestReconcileEmailQuestion_Idempotent(t *testing.T) {
	form := &model.Form{
		CollectEmail: model.CollectEmailRequired,
		CustomQuestions: model.QuestionList{
			{ID: "q1", Type: "text", Label: "ФИО"},
		},
	}

	model.ReconcileEmailQuestion(form)
	afterFirst := make(model.QuestionList, len(form.CustomQuestions))
	copy(afterFirst, form.CustomQuestions)

	model.ReconcileEmailQuestion(form)

	assert.Equal(t, afterFirst, form.CustomQuestions)
}
