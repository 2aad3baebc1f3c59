package dashboard

import (
	"upload-form-server/internal/model"
	"upload-form-server/internal/model/requestresponse"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockFormAPI struct{ mock.Mock }

func (m *MockFormAPI) ListForms(ctx context.Context) ([]requestresponse.FormListItemResponse, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]requestresponse.FormListItemResponse), args.Error(1)
}

func (m *MockFormAPI) GetForm(ctx context.Context, formUUID string) (*requestresponse.FormResponse, error) {
	args := m.Called(ctx, formUUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*requestresponse.FormResponse), args.Error(1)
}

func (m *MockFormAPI) CreateForm(ctx context.Context, request *requestresponse.SaveFormRequest) (*requestresponse.FormResponse, error) {
	args := m.Called(ctx, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*requestresponse.FormResponse), args.Error(1)
}

func (m *MockFormAPI) UpdateForm(ctx context.Context, formUUID string, request *requestresponse.SaveFormRequest) (*requestresponse.FormResponse, error) {
	args := m.Called(ctx, formUUID, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*requestresponse.FormResponse), args.Error(1)
}

func (m *MockFormAPI) PublishForm(ctx context.Context, formUUID string) (*requestresponse.PublishFormResponse, error) {
	args := m.Called(ctx, formUUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*requestresponse.PublishFormResponse), args.Error(1)
}

func (m *MockFormAPI) SetAccepting(ctx context.Context, formUUID string, accepting bool) error {
	return m.Called(ctx, formUUID, accepting).Error(0)
}

func (m *MockFormAPI) DeleteForm(ctx context.Context, formUUID string) error {
	return m.Called(ctx, formUUID).Error(0)
}

func listItem(uuid string, published bool, createdAt string) requestresponse.FormListItemResponse {
	return requestresponse.FormListItemResponse{
		Form: requestresponse.FormResponse{
			UUID:        uuid,
			Title:       "Форма " + uuid,
			IsPublished: published,
			CreatedAt:   createdAt,
		},
	}
}

func loadedController(t *testing.T, mockAPI *MockFormAPI, forms []requestresponse.FormListItemResponse) *Controller {
	t.Helper()
	controller := NewController(mockAPI)
	mockAPI.On("ListForms", mock.Anything).Return(forms, nil).Once()
	require.NoError(t, controller.Load(context.Background()))
	return controller
}

func TestToggleAccepting_DraftRejectedLocally(t *testing.T) {
	mockAPI := new(MockFormAPI)
	controller := loadedController(t, mockAPI, []requestresponse.FormListItemResponse{
		listItem("form1", false, "2025-05-01T10:00:00Z"),
	})

	err := controller.ToggleAccepting(context.Background(), "form1")

	assert.ErrorIs(t, err, ErrMustBePublished)
	assert.Equal(t, "Form must be published before it can accept responses", err.Error())
	// запрос к серверу не отправляется
	mockAPI.AssertNotCalled(t, "SetAccepting", mock.Anything, mock.Anything, mock.Anything)
	assert.False(t, controller.Forms()[0].Form.IsAccepting)
}

func TestToggleAccepting_ExpiredRejectedLocally(t *testing.T) {
	mockAPI := new(MockFormAPI)
	past := time.Now().Add(-time.Hour)
	item := listItem("form1", true, "2025-05-01T10:00:00Z")
	item.Form.ExpiryDate = &past
	controller := loadedController(t, mockAPI, []requestresponse.FormListItemResponse{item})

	err := controller.ToggleAccepting(context.Background(), "form1")

	assert.ErrorIs(t, err, ErrFormHasExpired)
	mockAPI.AssertNotCalled(t, "SetAccepting", mock.Anything, mock.Anything, mock.Anything)
}

func TestToggleAccepting_RollbackOnServerError(t *testing.T) {
	mockAPI := new(MockFormAPI)
	controller := loadedController(t, mockAPI, []requestresponse.FormListItemResponse{
		listItem("form1", true, "2025-05-01T10:00:00Z"),
	})

	mockAPI.On("SetAccepting", mock.Anything, "form1", true).Return(errors.New("server down"))

	err := controller.ToggleAccepting(context.Background(), "form1")

	require.Error(t, err)
	// оптимистичный флаг откатился
	assert.False(t, controller.Forms()[0].Form.IsAccepting)
	assert.NotEmpty(t, controller.LastActionError())
}

func TestToggleAccepting_SuccessRefetchesList(t *testing.T) {
	mockAPI := new(MockFormAPI)
	controller := loadedController(t, mockAPI, []requestresponse.FormListItemResponse{
		listItem("form1", true, "2025-05-01T10:00:00Z"),
	})

	refreshed := listItem("form1", true, "2025-05-01T10:00:00Z")
	refreshed.Form.IsAccepting = true

	mockAPI.On("SetAccepting", mock.Anything, "form1", true).Return(nil)
	mockAPI.On("ListForms", mock.Anything).Return([]requestresponse.FormListItemResponse{refreshed}, nil).Once()

	err := controller.ToggleAccepting(context.Background(), "form1")

	require.NoError(t, err)
	assert.True(t, controller.Forms()[0].Form.IsAccepting)
	mockAPI.AssertExpectations(t)
}

func TestDelete_RemovesImmediately(t *testing.T) {
	mockAPI := new(MockFormAPI)
	controller := loadedController(t, mockAPI, []requestresponse.FormListItemResponse{
		listItem("form1", true, "2025-05-03T10:00:00Z"),
		listItem("form2", true, "2025-05-02T10:00:00Z"),
	})
	controller.RequestDelete("form2")

	mockAPI.On("DeleteForm", mock.Anything, "form2").Return(nil)

	err := controller.Delete(context.Background(), "form2")

	require.NoError(t, err)
	forms := controller.Forms()
	require.Len(t, forms, 1)
	assert.Equal(t, "form1", forms[0].Form.UUID)
	// подтверждение закрывается сразу, не дожидаясь сервера
	assert.Empty(t, controller.PendingDelete())
}

func TestDelete_ReinsertsSortedOnServerError(t *testing.T) {
	mockAPI := new(MockFormAPI)
	controller := loadedController(t, mockAPI, []requestresponse.FormListItemResponse{
		listItem("form1", true, "2025-05-03T10:00:00Z"),
		listItem("form2", true, "2025-05-02T10:00:00Z"),
		listItem("form3", true, "2025-05-01T10:00:00Z"),
	})

	mockAPI.On("DeleteForm", mock.Anything, "form2").Return(errors.New("server down"))

	err := controller.Delete(context.Background(), "form2")

	require.Error(t, err)
	forms := controller.Forms()
	require.Len(t, forms, 3)
	// форма вернулась на своё место по дате создания, от новых к старым
	assert.Equal(t, "form1", forms[0].Form.UUID)
	assert.Equal(t, "form2", forms[1].Form.UUID)
	assert.Equal(t, "form3", forms[2].Form.UUID)
	assert.NotEmpty(t, controller.LastActionError())
}

func TestPublish_ValidationBlocksRequest(t *testing.T) {
	mockAPI := new(MockFormAPI)
	controller := NewController(mockAPI)

	mockAPI.On("GetForm", mock.Anything, "form1").Return(&requestresponse.FormResponse{
		UUID:         "form1",
		Title:        "Сбор отчётов",
		UploadFields: []model.UploadField{},
	}, nil).Once()

	issues, err := controller.Publish(context.Background(), "form1")

	require.NoError(t, err)
	assert.Contains(t, issues, "At least one file upload field with a label is required")
	mockAPI.AssertNotCalled(t, "PublishForm", mock.Anything, mock.Anything)

	// после добавления поля с ярлыком публикация проходит
	mockAPI.On("GetForm", mock.Anything, "form1").Return(&requestresponse.FormResponse{
		UUID:  "form1",
		Title: "Сбор отчётов",
		UploadFields: []model.UploadField{
			{ID: "f1", Label: "Resume"},
		},
	}, nil).Once()
	mockAPI.On("PublishForm", mock.Anything, "form1").Return(&requestresponse.PublishFormResponse{Published: true}, nil)
	mockAPI.On("ListForms", mock.Anything).Return([]requestresponse.FormListItemResponse{}, nil)

	issues, err = controller.Publish(context.Background(), "form1")

	require.NoError(t, err)
	assert.Empty(t, issues)
	mockAPI.AssertCalled(t, "PublishForm", mock.Anything, "form1")
}

func TestStatusOf(t *testing.T) {
	controller := NewController(new(MockFormAPI))
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	controller.now = func() time.Time { return now }

	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)

	assert.Equal(t, model.StatusDraft, controller.StatusOf(&requestresponse.FormResponse{}))
	assert.Equal(t, model.StatusDraft, controller.StatusOf(&requestresponse.FormResponse{ExpiryDate: &past}))
	assert.Equal(t, model.StatusPublished, controller.StatusOf(&requestresponse.FormResponse{IsPublished: true}))
	assert.Equal(t, model.StatusPublished, controller.StatusOf(&requestresponse.FormResponse{IsPublished: true, ExpiryDate: &future}))
	assert.Equal(t, model.StatusExpired, controller.StatusOf(&requestresponse.FormResponse{IsPublished: true, ExpiryDate: &past}))
}
