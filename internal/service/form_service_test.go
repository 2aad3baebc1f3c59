package service_test

import (
	"upload-form-server/internal/model"
	"upload-form-server/internal/service"
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockCacheRepository struct{ mock.Mock }

func (m *MockCacheRepository) SetForm(ctx context.Context, form *model.Form) error {
	return m.Called(ctx, form).Error(0)
}

func (m *MockCacheRepository) GetForm(ctx context.Context, uuid string) (*model.Form, error) {
	args := m.Called(ctx, uuid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Form), args.Error(1)
}

func (m *MockCacheRepository) DeleteForm(ctx context.Context, uuid string) error {
	return m.Called(ctx, uuid).Error(0)
}

func newTestFormService() (*service.FormService, *MockFormRepository, *MockSubmissionRepository, *MockCacheRepository) {
	mockFormRepo := new(MockFormRepository)
	mockSubRepo := new(MockSubmissionRepository)
	mockCache := new(MockCacheRepository)

	svc := service.NewFormService(mockFormRepo, mockSubRepo, mockCache)
	return svc, mockFormRepo, mockSubRepo, mockCache
}

// expectTX настраивает BeginTX так, чтобы commit/rollback просто считались
func expectTX(mockFormRepo *MockFormRepository) (committed *bool) {
	committed = new(bool)
	var exec *sqlx.DB
	rollback := func() error { return nil }
	commit := func() error {
		*committed = true
		return nil
	}
	mockFormRepo.On("BeginTX", mock.Anything).Return(exec, rollback, commit, nil)
	return committed
}

func TestPublishForm_CollectsAllIssues(t *testing.T) {
	svc, mockFormRepo, _, _ := newTestFormService()
	ctx := testContext()

	form := &model.Form{
		UUID:      "form1",
		OwnerUUID: "owner1",
		Title:     "   ",
		UploadFields: model.UploadFieldList{
			{ID: "f1", Label: ""},
		},
		CustomQuestions: model.QuestionList{
			{ID: "q1", Type: "select", Label: "Курс", Required: true, Options: []string{" "}},
			{ID: "q2", Type: "text", Label: "", Required: true},
		},
	}
	mockFormRepo.On("GetOwned", ctx, mock.Anything, "form1", "owner1").Return(form, nil)

	issues, err := svc.PublishForm(ctx, "form1", "owner1")
	require.NoError(t, err)

	// все провалы собираются вместе, не fail-fast
	assert.Equal(t, []string{
		"Form title is required",
		"At least one file upload field with a label is required",
		"Required question 2 is missing a label",
		`Required question "Курс" must have at least one option`,
	}, issues)
	mockFormRepo.AssertNotCalled(t, "SetPublished", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPublishForm_Success(t *testing.T) {
	svc, mockFormRepo, _, mockCache := newTestFormService()
	ctx := testContext()

	form := &model.Form{
		UUID:      "form1",
		OwnerUUID: "owner1",
		Title:     "Сбор отчётов",
		UploadFields: model.UploadFieldList{
			{ID: "f1", Label: "Resume", Required: true},
		},
	}
	mockFormRepo.On("GetOwned", ctx, mock.Anything, "form1", "owner1").Return(form, nil)
	mockFormRepo.On("SetPublished", ctx, mock.Anything, "form1", true, true).Return(nil)
	mockCache.On("DeleteForm", ctx, "form1").Return(nil)

	issues, err := svc.PublishForm(ctx, "form1", "owner1")
	require.NoError(t, err)
	assert.Empty(t, issues)

	mockFormRepo.AssertExpectations(t)
	mockCache.AssertExpectations(t)
}

func TestPublishForm_NotFound(t *testing.T) {
	svc, mockFormRepo, _, _ := newTestFormService()
	ctx := testContext()

	mockFormRepo.On("GetOwned", ctx, mock.Anything, "missing", "owner1").Return(nil, sql.ErrNoRows)

	_, err := svc.PublishForm(ctx, "missing", "owner1")
	assert.ErrorIs(t, err, service.ErrFormNotFound)
}

func TestSetAccepting(t *testing.T) {
	past := time.Now().Add(-time.Hour)

	tests := []struct {
		name      string
		form      *model.Form
		accepting bool
		wantErr   error
	}{
		{
			name:      "Draft cannot accept responses",
			form:      &model.Form{UUID: "form1", IsPublished: false},
			accepting: true,
			wantErr:   service.ErrFormNotPublished,
		},
		{
			name:      "Expired form cannot be reopened",
			form:      &model.Form{UUID: "form1", IsPublished: true, ExpiryDate: &past},
			accepting: true,
			wantErr:   service.ErrFormExpired,
		},
		{
			name:      "Expired form can still be closed",
			form:      &model.Form{UUID: "form1", IsPublished: true, IsAccepting: true, ExpiryDate: &past},
			accepting: false,
		},
		{
			name:      "Published form toggles",
			form:      &model.Form{UUID: "form1", IsPublished: true},
			accepting: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, mockFormRepo, _, mockCache := newTestFormService()
			ctx := testContext()

			mockFormRepo.On("GetOwned", ctx, mock.Anything, "form1", "owner1").Return(tt.form, nil)
			mockFormRepo.On("SetAccepting", ctx, mock.Anything, "form1", tt.accepting).Return(nil)
			mockCache.On("DeleteForm", ctx, "form1").Return(nil)

			err := svc.SetAccepting(ctx, "form1", "owner1", tt.accepting)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				mockFormRepo.AssertNotCalled(t, "SetAccepting", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			} else {
				require.NoError(t, err)
				mockFormRepo.AssertCalled(t, "SetAccepting", ctx, mock.Anything, "form1", tt.accepting)
			}
		})
	}
}

func TestGetPublicForm_CacheHit(t *testing.T) {
	svc, mockFormRepo, _, mockCache := newTestFormService()
	ctx := testContext()

	cached := &model.Form{UUID: "form1", Title: "Сбор отчётов", IsPublished: true}
	mockCache.On("GetForm", ctx, "form1").Return(cached, nil)

	form, err := svc.GetPublicForm(ctx, "form1")
	require.NoError(t, err)
	assert.Equal(t, "form1", form.UUID)
	// при попадании в кэш до БД не доходим
	mockFormRepo.AssertNotCalled(t, "GetByUUID", mock.Anything, mock.Anything, mock.Anything)
}

func TestGetPublicForm_CacheMissFillsCache(t *testing.T) {
	svc, mockFormRepo, _, mockCache := newTestFormService()
	ctx := testContext()

	stored := &model.Form{UUID: "form1", IsPublished: true}
	mockCache.On("GetForm", ctx, "form1").Return(nil, nil)
	mockFormRepo.On("GetByUUID", ctx, mock.Anything, "form1").Return(stored, nil)
	mockCache.On("SetForm", ctx, stored).Return(nil)

	form, err := svc.GetPublicForm(ctx, "form1")
	require.NoError(t, err)
	assert.Equal(t, "form1", form.UUID)
	mockCache.AssertExpectations(t)
}

func TestGetPublicForm_DraftHidden(t *testing.T) {
	svc, mockFormRepo, _, mockCache := newTestFormService()
	ctx := testContext()

	draft := &model.Form{UUID: "form1", IsPublished: false}
	mockCache.On("GetForm", ctx, "form1").Return(nil, nil)
	mockFormRepo.On("GetByUUID", ctx, mock.Anything, "form1").Return(draft, nil)
	mockCache.On("SetForm", ctx, draft).Return(nil)

	_, err := svc.GetPublicForm(ctx, "form1")
	assert.ErrorIs(t, err, service.ErrFormNotFound)
}

func TestCreateForm_SeedsDefaultUploadField(t *testing.T) {
	svc, mockFormRepo, _, _ := newTestFormService()
	ctx := testContext()

	var created *model.Form
	mockFormRepo.On("Create", ctx, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			created = args.Get(2).(*model.Form)
		}).
		Return(nil)
	mockFormRepo.On("GetOwned", ctx, mock.Anything, mock.Anything, "owner1").
		Return(&model.Form{OwnerUUID: "owner1"}, nil)

	_, err := svc.CreateForm(ctx, "owner1", &model.Form{Title: "Новая форма"})
	require.NoError(t, err)

	require.NotNil(t, created)
	assert.Equal(t, "owner1", created.OwnerUUID)
	assert.False(t, created.IsPublished)
	assert.Equal(t, model.AccessLevelAnyone, created.AccessLevel)
	assert.Equal(t, model.ProtectionPublic, created.AccessProtectionType)
	assert.Equal(t, model.CollectEmailNone, created.CollectEmail)

	require.Len(t, created.UploadFields, 1)
	assert.NotEmpty(t, created.UploadFields[0].ID)
	assert.True(t, created.UploadFields[0].Required)
	assert.True(t, created.UploadFields[0].AllowMultiple)
}

func TestUpdateForm_PreservesOwnerAndInvalidatesCache(t *testing.T) {
	svc, mockFormRepo, _, mockCache := newTestFormService()
	ctx := testContext()
	committed := expectTX(mockFormRepo)

	stored := &model.Form{UUID: "form1", OwnerUUID: "owner1", Title: "Старое имя"}
	update := &model.Form{UUID: "form1", OwnerUUID: "spoofed-owner", Title: "Новое имя"}

	mockFormRepo.On("GetOwned", ctx, mock.Anything, "form1", "owner1").Return(stored, nil)
	mockFormRepo.On("Update", ctx, mock.Anything, update).Return(nil)
	mockCache.On("DeleteForm", ctx, "form1").Return(nil)

	updated, err := svc.UpdateForm(ctx, "owner1", update)
	require.NoError(t, err)

	// подменить владельца через payload нельзя
	assert.Equal(t, "owner1", update.OwnerUUID)
	assert.NotNil(t, updated)
	assert.True(t, *committed)
	mockCache.AssertExpectations(t)
}

func TestDeleteForm(t *testing.T) {
	svc, mockFormRepo, _, mockCache := newTestFormService()
	ctx := testContext()
	committed := expectTX(mockFormRepo)

	mockFormRepo.On("Delete", ctx, mock.Anything, "form1", "owner1").Return(nil)
	mockCache.On("DeleteForm", ctx, "form1").Return(nil)

	err := svc.DeleteForm(ctx, "form1", "owner1")
	require.NoError(t, err)
	assert.True(t, *committed)
	mockCache.AssertExpectations(t)
}

func TestDuplicateForm_ClearsBindings(t *testing.T) {
	svc, mockFormRepo, _, _ := newTestFormService()
	ctx := testContext()

	source := &model.Form{
		UUID:            "form1",
		OwnerUUID:       "owner1",
		Title:           "Сбор отчётов",
		IsPublished:     true,
		IsAccepting:     true,
		ResponseSheetID: "sheet1",
		LegacySheetID:   "legacy1",
		DriveFolderID:   "folder1",
	}
	mockFormRepo.On("GetOwned", ctx, mock.Anything, "form1", "owner1").Return(source, nil).Once()

	var duplicate *model.Form
	mockFormRepo.On("Create", ctx, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			duplicate = args.Get(2).(*model.Form)
		}).
		Return(nil)
	mockFormRepo.On("GetOwned", ctx, mock.Anything, mock.Anything, "owner1").
		Return(&model.Form{OwnerUUID: "owner1"}, nil)

	_, err := svc.DuplicateForm(ctx, "form1", "owner1")
	require.NoError(t, err)

	require.NotNil(t, duplicate)
	assert.NotEqual(t, "form1", duplicate.UUID)
	assert.Equal(t, "Сбор отчётов (копия)", duplicate.Title)
	assert.False(t, duplicate.IsPublished)
	assert.False(t, duplicate.IsAccepting)
	assert.Empty(t, duplicate.ResponseSheetID)
	assert.Empty(t, duplicate.LegacySheetID)
	assert.Empty(t, duplicate.DriveFolderID)
}

func TestListForms(t *testing.T) {
	svc, mockFormRepo, mockSubRepo, _ := newTestFormService()
	ctx := testContext()

	past := time.Now().Add(-time.Hour)
	forms := []model.Form{
		{UUID: "draft1"},
		{UUID: "live1", IsPublished: true},
		{UUID: "old1", IsPublished: true, ExpiryDate: &past},
	}
	mockFormRepo.On("ListByOwner", ctx, mock.Anything, "owner1", 50).Return(forms, nil)
	mockSubRepo.On("CountByForm", ctx, mock.Anything, "draft1").Return(0, nil)
	mockSubRepo.On("CountByForm", ctx, mock.Anything, "live1").Return(7, nil)
	// ошибка подсчёта не валит листинг, форма показывается с нулём
	mockSubRepo.On("CountByForm", ctx, mock.Anything, "old1").Return(0, errors.New("timeout"))

	items, err := svc.ListForms(ctx, "owner1", 50)
	require.NoError(t, err)
	require.Len(t, items, 3)

	assert.Equal(t, model.StatusDraft, items[0].Status)
	assert.Equal(t, model.StatusPublished, items[1].Status)
	assert.Equal(t, model.StatusExpired, items[2].Status)
	assert.Equal(t, 7, items[1].SubmissionCount)
	assert.Equal(t, 0, items[2].SubmissionCount)
}
