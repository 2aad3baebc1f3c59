package handler

import (
	"upload-form-server/internal/model/requestresponse"
	"upload-form-server/internal/ports"
	"upload-form-server/internal/service"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
)

type FormHandler struct {
	ports.FormService
}

func NewFormHandler(formService ports.FormService) *FormHandler {
	return &FormHandler{formService}
}

// CreateForm godoc
// @Summary Создание формы
// @Description Создаёт новую форму-черновик. Пустая конфигурация получает одно поле загрузки по умолчанию.
// @Tags Forms
// @Accept json
// @Produce json
// @Param body body requestresponse.SaveFormRequest true "Конфигурация формы"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 201 {object} requestresponse.FormResponse
// @Failure 400 {object} requestresponse.ErrorResponse
// @Failure 401 {object} requestresponse.ErrorResponse
// @Failure 500 {object} requestresponse.ErrorResponse
// @Router /api/forms [post]
func (h *FormHandler) CreateForm(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	claims := requireClaims(w, r)
	if claims == nil {
		return
	}

	var req requestresponse.SaveFormRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}

	form, err := h.FormService.CreateForm(r.Context(), claims.UserUUID, req.ToModel())
	if err != nil {
		log.Println(err)
		sendErrorResponse(w, 500, "внутренняя ошибка сервера")
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(requestresponse.FormResponseFromModel(form, time.Now()))
}

// GetForm godoc
// @Summary Получение формы владельцем
// @Description Возвращает полную конфигурацию формы. Доступно только владельцу.
// @Tags Forms
// @Produce json
// @Param uuid path string true "UUID формы"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} requestresponse.FormResponse
// @Failure 401 {object} requestresponse.ErrorResponse
// @Failure 404 {object} requestresponse.ErrorResponse
// @Failure 500 {object} requestresponse.ErrorResponse
// @Router /api/forms/{uuid} [get]
func (h *FormHandler) GetForm(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	claims := requireClaims(w, r)
	if claims == nil {
		return
	}

	form, err := h.FormService.GetForm(r.Context(), chi.URLParam(r, "uuid"), claims.UserUUID)
	if err != nil {
		handleFormError(w, err)
		return
	}

	w.WriteHeader(200)
	json.NewEncoder(w).Encode(requestresponse.FormResponseFromModel(form, time.Now()))
}

// GetPublicForm godoc
// @Summary Публичная страница формы
// @Description Возвращает опубликованную форму без секретов. Авторизация не требуется. Черновики не отдаются.
// @Tags Public
// @Produce json
// @Param uuid path string true "UUID формы"
// @Success 200 {object} requestresponse.PublicFormResponse
// @Failure 404 {object} requestresponse.ErrorResponse
// @Failure 500 {object} requestresponse.ErrorResponse
// @Router /api/public/forms/{uuid} [get]
func (h *FormHandler) GetPublicForm(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	form, err := h.FormService.GetPublicForm(r.Context(), chi.URLParam(r, "uuid"))
	if err != nil {
		handleFormError(w, err)
		return
	}

	w.WriteHeader(200)
	json.NewEncoder(w).Encode(requestresponse.PublicFormResponseFromModel(form))
}

// ListForms godoc
// @Summary Список форм владельца
// @Description Возвращает формы текущего пользователя со статусом и числом отправок.
// @Tags Forms
// @Produce json
// @Param limit query int false "Количество форм в списке" default(50) minimum(1) maximum(100)
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} requestresponse.ListFormsResponse
// @Failure 401 {object} requestresponse.ErrorResponse
// @Failure 500 {object} requestresponse.ErrorResponse
// @Router /api/forms [get]
func (h *FormHandler) ListForms(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	claims := requireClaims(w, r)
	if claims == nil {
		return
	}

	limit := 50
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			if l > 100 {
				limit = 100
			} else {
				limit = l
			}
		}
	}

	items, err := h.FormService.ListForms(r.Context(), claims.UserUUID, limit)
	if err != nil {
		log.Println(err)
		sendErrorResponse(w, 500, "внутренняя ошибка сервера")
		return
	}

	w.WriteHeader(200)
	json.NewEncoder(w).Encode(requestresponse.ListFormsResponseFromItems(items, time.Now()))
}

// UpdateForm godoc
// @Summary Обновление формы
// @Description Сохраняет конфигурацию формы. Email-вопрос согласуется с режимом защиты автоматически.
// @Tags Forms
// @Accept json
// @Produce json
// @Param uuid path string true "UUID формы"
// @Param body body requestresponse.SaveFormRequest true "Конфигурация формы"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} requestresponse.FormResponse
// @Failure 400 {object} requestresponse.ErrorResponse
// @Failure 401 {object} requestresponse.ErrorResponse
// @Failure 404 {object} requestresponse.ErrorResponse
// @Failure 500 {object} requestresponse.ErrorResponse
// @Router /api/forms/{uuid} [put]
func (h *FormHandler) UpdateForm(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	claims := requireClaims(w, r)
	if claims == nil {
		return
	}

	var req requestresponse.SaveFormRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}

	form := req.ToModel()
	form.UUID = chi.URLParam(r, "uuid")

	updated, err := h.FormService.UpdateForm(r.Context(), claims.UserUUID, form)
	if err != nil {
		handleFormError(w, err)
		return
	}

	w.WriteHeader(200)
	json.NewEncoder(w).Encode(requestresponse.FormResponseFromModel(updated, time.Now()))
}

// PublishForm godoc
// @Summary Публикация формы
// @Description Валидирует форму и публикует её. Непройденные проверки возвращаются списком сообщений без публикации.
// @Tags Forms
// @Produce json
// @Param uuid path string true "UUID формы"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} requestresponse.PublishFormResponse
// @Failure 401 {object} requestresponse.ErrorResponse
// @Failure 404 {object} requestresponse.ErrorResponse
// @Failure 500 {object} requestresponse.ErrorResponse
// @Router /api/forms/{uuid}/publish [post]
func (h *FormHandler) PublishForm(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	claims := requireClaims(w, r)
	if claims == nil {
		return
	}

	issues, err := h.FormService.PublishForm(r.Context(), chi.URLParam(r, "uuid"), claims.UserUUID)
	if err != nil {
		handleFormError(w, err)
		return
	}

	resp := requestresponse.PublishFormResponse{
		Published: len(issues) == 0,
		Issues:    issues,
	}

	w.WriteHeader(200)
	json.NewEncoder(w).Encode(resp)
}

// SetAccepting godoc
// @Summary Переключение приёма ответов
// @Description Открывает или закрывает приём ответов. Черновик и истёкшая форма включены быть не могут.
// @Tags Forms
// @Accept json
// @Produce json
// @Param uuid path string true "UUID формы"
// @Param body body requestresponse.SetAcceptingRequest true "Тело запроса"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} requestresponse.SuccessResponse
// @Failure 400 {object} requestresponse.ErrorResponse
// @Failure 401 {object} requestresponse.ErrorResponse
// @Failure 404 {object} requestresponse.ErrorResponse
// @Failure 409 {object} requestresponse.ErrorResponse
// @Failure 410 {object} requestresponse.ErrorResponse
// @Failure 500 {object} requestresponse.ErrorResponse
// @Router /api/forms/{uuid}/accepting [post]
func (h *FormHandler) SetAccepting(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	claims := requireClaims(w, r)
	if claims == nil {
		return
	}

	var req requestresponse.SetAcceptingRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}

	err := h.FormService.SetAccepting(r.Context(), chi.URLParam(r, "uuid"), claims.UserUUID, req.Accepting)
	if err != nil {
		handleFormError(w, err)
		return
	}

	w.WriteHeader(200)
	json.NewEncoder(w).Encode(requestresponse.SuccessResponse{Message: "Операция выполнена успешно"})
}

// DeleteForm godoc
// @Summary Удаление формы
// @Description Мягко удаляет форму владельца.
// @Tags Forms
// @Produce json
// @Param uuid path string true "UUID формы"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 204 "Форма удалена"
// @Failure 401 {object} requestresponse.ErrorResponse
// @Failure 404 {object} requestresponse.ErrorResponse
// @Failure 500 {object} requestresponse.ErrorResponse
// @Router /api/forms/{uuid} [delete]
func (h *FormHandler) DeleteForm(w http.ResponseWriter, r *http.Request) {
	claims := requireClaims(w, r)
	if claims == nil {
		return
	}

	if err := h.FormService.DeleteForm(r.Context(), chi.URLParam(r, "uuid"), claims.UserUUID); err != nil {
		handleFormError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DuplicateForm godoc
// @Summary Дублирование формы
// @Description Создаёт копию формы как новый черновик. Привязки к таблицам не копируются.
// @Tags Forms
// @Produce json
// @Param uuid path string true "UUID формы"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 201 {object} requestresponse.FormResponse
// @Failure 401 {object} requestresponse.ErrorResponse
// @Failure 404 {object} requestresponse.ErrorResponse
// @Failure 500 {object} requestresponse.ErrorResponse
// @Router /api/forms/{uuid}/duplicate [post]
func (h *FormHandler) DuplicateForm(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	claims := requireClaims(w, r)
	if claims == nil {
		return
	}

	form, err := h.FormService.DuplicateForm(r.Context(), chi.URLParam(r, "uuid"), claims.UserUUID)
	if err != nil {
		handleFormError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(requestresponse.FormResponseFromModel(form, time.Now()))
}

// handleFormError переводит ошибки сервиса форм в HTTP-коды
func handleFormError(w http.ResponseWriter, err error) {
	log.Println(err)
	switch {
	case errors.Is(err, service.ErrFormNotFound):
		sendErrorResponse(w, 404, "форма не найдена")
	case errors.Is(err, service.ErrFormNotPublished):
		sendErrorResponse(w, 409, "форма должна быть опубликована")
	case errors.Is(err, service.ErrFormExpired):
		sendErrorResponse(w, 410, "срок приёма ответов истёк")
	default:
		sendErrorResponse(w, 500, "внутренняя ошибка сервера")
	}
}
