package client

import (
	"upload-form-server/internal/model/requestresponse"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// FormAPI : серверный API форм глазами админских контроллеров.
// Дашборд и редактор работают только через этот порт — в тестах он мокается
type FormAPI interface {
	ListForms(ctx context.Context) ([]requestresponse.FormListItemResponse, error)
	GetForm(ctx context.Context, formUUID string) (*requestresponse.FormResponse, error)
	CreateForm(ctx context.Context, request *requestresponse.SaveFormRequest) (*requestresponse.FormResponse, error)
	UpdateForm(ctx context.Context, formUUID string, request *requestresponse.SaveFormRequest) (*requestresponse.FormResponse, error)
	PublishForm(ctx context.Context, formUUID string) (*requestresponse.PublishFormResponse, error)
	SetAccepting(ctx context.Context, formUUID string, accepting bool) error
	DeleteForm(ctx context.Context, formUUID string) error
}

// HTTPFormAPI : реализация FormAPI поверх REST API сервера
type HTTPFormAPI struct {
	baseURL     string
	accessToken string
	httpClient  *http.Client
}

func NewHTTPFormAPI(baseURL string, accessToken string) *HTTPFormAPI {
	return &HTTPFormAPI{
		baseURL:     baseURL,
		accessToken: accessToken,
		httpClient:  &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *HTTPFormAPI) ListForms(ctx context.Context) ([]requestresponse.FormListItemResponse, error) {
	var resp requestresponse.ListFormsResponse
	if err := c.doJSON(ctx, http.MethodGet, "/api/forms", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data.Forms, nil
}

func (c *HTTPFormAPI) GetForm(ctx context.Context, formUUID string) (*requestresponse.FormResponse, error) {
	var resp requestresponse.FormResponse
	if err := c.doJSON(ctx, http.MethodGet, "/api/forms/"+formUUID, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPFormAPI) CreateForm(ctx context.Context, request *requestresponse.SaveFormRequest) (*requestresponse.FormResponse, error) {
	var resp requestresponse.FormResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/forms", request, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPFormAPI) UpdateForm(ctx context.Context, formUUID string, request *requestresponse.SaveFormRequest) (*requestresponse.FormResponse, error) {
	var resp requestresponse.FormResponse
	if err := c.doJSON(ctx, http.MethodPut, "/api/forms/"+formUUID, request, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPFormAPI) PublishForm(ctx context.Context, formUUID string) (*requestresponse.PublishFormResponse, error) {
	var resp requestresponse.PublishFormResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/forms/"+formUUID+"/publish", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPFormAPI) SetAccepting(ctx context.Context, formUUID string, accepting bool) error {
	body := requestresponse.SetAcceptingRequest{Accepting: accepting}
	return c.doJSON(ctx, http.MethodPost, "/api/forms/"+formUUID+"/accepting", body, nil)
}

func (c *HTTPFormAPI) DeleteForm(ctx context.Context, formUUID string) error {
	return c.doJSON(ctx, http.MethodDelete, "/api/forms/"+formUUID, nil, nil)
}

// doJSON выполняет запрос с Bearer токеном и декодирует JSON-ответ.
// Не-2xx ответ превращается в ошибку с текстом сервера
func (c *HTTPFormAPI) doJSON(ctx context.Context, method string, path string, body interface{}, target interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("ошибка кодирования запроса: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	request, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("ошибка создания запроса: %w", err)
	}
	request.Header.Set("Authorization", "Bearer "+c.accessToken)
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("ошибка запроса %s %s: %w", method, path, err)
	}
	defer response.Body.Close()

	if response.StatusCode >= 300 {
		var errResp requestresponse.ErrorResponse
		if decodeErr := json.NewDecoder(response.Body).Decode(&errResp); decodeErr == nil && errResp.Text != "" {
			return fmt.Errorf("%s %s: %s (код %d)", method, path, errResp.Text, response.StatusCode)
		}
		return fmt.Errorf("%s %s: код %d", method, path, response.StatusCode)
	}

	if target == nil {
		return nil
	}
	if err := json.NewDecoder(response.Body).Decode(target); err != nil {
		return fmt.Errorf("ошибка декодирования ответа: %w", err)
	}
	return nil
}
