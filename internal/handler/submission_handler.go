package handler

import (
	"upload-form-server/config"
	"upload-form-server/internal/model/requestresponse"
	"upload-form-server/internal/ports"
	"upload-form-server/internal/security"
	"upload-form-server/internal/service"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type SubmissionHandler struct {
	ports.SubmissionService
	s3Storage  ports.S3Storage
	jwtService *security.JWTService
	secretKey  []byte
	ttl        *config.TTL
}

func NewSubmissionHandler(
	submissionService ports.SubmissionService,
	s3Storage ports.S3Storage,
	jwtService *security.JWTService,
	secretKey []byte,
	ttl *config.TTL,
) *SubmissionHandler {
	return &SubmissionHandler{
		submissionService,
		s3Storage,
		jwtService,
		secretKey,
		ttl,
	}
}

// CreateUploadSlot godoc
// @Summary Выдача presigned-ссылки для загрузки файла
// @Description Возвращает presigned PUT URL, по которому клиент заливает файл в хранилище напрямую,
// и итоговый URL объекта для последующей отправки формы. Авторизация не требуется.
// @Tags Public
// @Accept json
// @Produce json
// @Param uuid path string true "UUID формы"
// @Param body body requestresponse.UploadSlotRequest true "Имя и тип файла"
// @Success 200 {object} requestresponse.UploadSlotResponse
// @Failure 400 {object} requestresponse.ErrorResponse
// @Failure 500 {object} requestresponse.ErrorResponse
// @Router /api/public/forms/{uuid}/upload-slot [post]
func (h *SubmissionHandler) CreateUploadSlot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var req requestresponse.UploadSlotRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}
	if strings.TrimSpace(req.FileName) == "" {
		sendErrorResponse(w, 400, "file_name обязателен")
		return
	}

	formUUID := chi.URLParam(r, "uuid")
	fileExt := filepath.Ext(req.FileName)
	fileName := strings.TrimSuffix(req.FileName, fileExt)
	storagePath := fmt.Sprintf("forms/%s/uploads/%s-%s%s",
		formUUID,
		url.PathEscape(fileName),
		uuid.New().String()[:8],
		fileExt,
	)

	expire := time.Duration(h.ttl.S3AndRedis) * time.Second

	uploadURL, err := h.s3Storage.GeneratePresignedPutURL(r.Context(), storagePath, expire)
	if err != nil {
		log.Println(err)
		sendErrorResponse(w, 500, "внутренняя ошибка сервера")
		return
	}

	fileURL, err := h.s3Storage.GeneratePresignedGetURL(r.Context(), storagePath, expire)
	if err != nil {
		log.Println(err)
		sendErrorResponse(w, 500, "внутренняя ошибка сервера")
		return
	}

	resp := requestresponse.UploadSlotResponse{
		UploadURL: uploadURL,
		FileURL:   fileURL,
		ExpiresIn: expire.String(),
	}

	w.WriteHeader(200)
	json.NewEncoder(w).Encode(resp)
}

// Submit godoc
// @Summary Публичная отправка формы
// @Description Принимает отправку с файлами и ответами. Авторизация опциональна: для форм в режиме GOOGLE
// личность берётся из Bearer токена, поля запроса при этом игнорируются.
// @Tags Public
// @Accept json
// @Produce json
// @Param uuid path string true "UUID формы"
// @Param body body ports.SubmitRequest true "Файлы, ответы и данные отправителя"
// @Param Authorization header string false "Bearer токен" default(Bearer <access_token>)
// @Success 201 {object} requestresponse.SubmitResponse
// @Failure 400 {object} requestresponse.ErrorResponse "Некорректный файл или пустая отправка"
// @Failure 401 {object} requestresponse.ErrorResponse "Требуется вход через Google или неверный пароль"
// @Failure 403 {object} requestresponse.ErrorResponse "Отправитель не входит в список допущенных"
// @Failure 404 {object} requestresponse.ErrorResponse "Форма не найдена"
// @Failure 409 {object} requestresponse.ErrorResponse "Приём ответов закрыт"
// @Failure 410 {object} requestresponse.ErrorResponse "Срок приёма ответов истёк"
// @Failure 500 {object} requestresponse.ErrorResponse
// @Router /api/public/forms/{uuid}/submissions [post]
func (h *SubmissionHandler) Submit(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var req ports.SubmitRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}

	req.FormUUID = chi.URLParam(r, "uuid")
	req.Session = security.OptionalClaims(r, h.jwtService, h.secretKey)

	submission, err := h.SubmissionService.Submit(r.Context(), &req)
	if err != nil {
		log.Println(err)
		switch {
		case errors.Is(err, service.ErrFormNotFound):
			sendErrorResponse(w, 404, "форма не найдена")
		case errors.Is(err, service.ErrAuthenticationRequired):
			sendErrorResponse(w, 401, "требуется вход через Google")
		case errors.Is(err, service.ErrInvalidPassword):
			sendErrorResponse(w, 401, "неверный пароль")
		case errors.Is(err, service.ErrAccessDenied):
			sendErrorResponse(w, 403, "доступ запрещён")
		case errors.Is(err, service.ErrFormClosed):
			sendErrorResponse(w, 409, "приём ответов закрыт")
		case errors.Is(err, service.ErrFormExpired):
			sendErrorResponse(w, 410, "срок приёма ответов истёк")
		case errors.Is(err, service.ErrMalformedFile), errors.Is(err, service.ErrNoFiles):
			sendErrorResponse(w, 400, "некорректный набор файлов")
		default:
			sendErrorResponse(w, 500, "внутренняя ошибка сервера")
		}
		return
	}

	resp := requestresponse.SubmitResponse{}
	resp.Data.GroupUUID = submission.GroupUUID
	resp.Data.Files = len(submission.Files)

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(resp)
}

// ResyncSheet godoc
// @Summary Ручная сверка response-таблицы
// @Description Проверяет (и при необходимости создаёт заново) response-таблицу формы. 403 означает,
// что Google-аккаунт потерял доступ и его нужно переподключить.
// @Tags Submissions
// @Produce json
// @Param uuid path string true "UUID формы"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} requestresponse.ResyncSheetResponse
// @Failure 401 {object} requestresponse.ErrorResponse
// @Failure 403 {object} requestresponse.ErrorResponse "Нет доступа к Google Sheets, нужна переподвязка аккаунта"
// @Failure 404 {object} requestresponse.ErrorResponse
// @Failure 409 {object} requestresponse.ErrorResponse "Response-таблица выключена у формы"
// @Failure 500 {object} requestresponse.ErrorResponse
// @Router /api/forms/{uuid}/resync-sheet [post]
func (h *SubmissionHandler) ResyncSheet(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	claims := requireClaims(w, r)
	if claims == nil {
		return
	}

	sheetID, err := h.SubmissionService.ResyncSheet(r.Context(), chi.URLParam(r, "uuid"), claims.UserUUID)
	if err != nil {
		log.Println(err)
		switch {
		case errors.Is(err, service.ErrFormNotFound):
			sendErrorResponse(w, 404, "форма не найдена")
		case errors.Is(err, service.ErrSheetSyncDisabled):
			sendErrorResponse(w, 409, "response-таблица выключена у формы")
		case errors.Is(err, service.ErrSheetsPermission):
			sendErrorResponse(w, 403, "нет доступа к Google Sheets, переподключите аккаунт")
		default:
			sendErrorResponse(w, 500, "внутренняя ошибка сервера")
		}
		return
	}

	w.WriteHeader(200)
	json.NewEncoder(w).Encode(requestresponse.ResyncSheetResponse{SheetID: sheetID})
}

// ListSubmissions godoc
// @Summary Список отправок формы
// @Description Возвращает отправки формы, от новых к старым. Доступно только владельцу формы.
// @Tags Submissions
// @Produce json
// @Param uuid path string true "UUID формы"
// @Param limit query int false "Количество отправок в списке" default(100) minimum(1) maximum(500)
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} requestresponse.ListSubmissionsResponse
// @Failure 401 {object} requestresponse.ErrorResponse
// @Failure 404 {object} requestresponse.ErrorResponse
// @Failure 500 {object} requestresponse.ErrorResponse
// @Router /api/forms/{uuid}/submissions [get]
func (h *SubmissionHandler) ListSubmissions(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	claims := requireClaims(w, r)
	if claims == nil {
		return
	}

	limit := 100
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			if l > 500 {
				limit = 500
			} else {
				limit = l
			}
		}
	}

	submissions, err := h.SubmissionService.ListByForm(r.Context(), chi.URLParam(r, "uuid"), claims.UserUUID, limit)
	if err != nil {
		log.Println(err)
		switch {
		case errors.Is(err, service.ErrFormNotFound):
			sendErrorResponse(w, 404, "форма не найдена")
		default:
			sendErrorResponse(w, 500, "внутренняя ошибка сервера")
		}
		return
	}

	resp := requestresponse.ListSubmissionsResponse{Count: len(submissions)}
	resp.Data.Submissions = make([]requestresponse.SubmissionResponse, 0, len(submissions))
	for i := range submissions {
		resp.Data.Submissions = append(resp.Data.Submissions, requestresponse.SubmissionResponseFromModel(&submissions[i]))
	}

	w.WriteHeader(200)
	json.NewEncoder(w).Encode(resp)
}
