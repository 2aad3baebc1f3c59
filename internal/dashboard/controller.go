package dashboard

import (
	"upload-form-server/internal/client"
	"upload-form-server/internal/model"
	"upload-form-server/internal/model/requestresponse"
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"
)

// Сообщения, которые видит админ при отклонённых действиях.
// Проверки выполняются локально, до обращения к серверу
var (
	ErrMustBePublished = errors.New("Form must be published before it can accept responses")
	ErrFormHasExpired  = errors.New("This form has expired and can no longer accept responses")
	ErrFormNotInList   = errors.New("форма не найдена в списке")
)

// Controller держит список форм админа в памяти.
// Все три мутирующих действия оптимистичны: состояние меняется сразу,
// при отказе сервера откатывается назад
type Controller struct {
	api client.FormAPI
	now func() time.Time

	mu              sync.Mutex
	forms           []requestresponse.FormListItemResponse
	pendingDelete   string
	lastActionError string
}

func NewController(api client.FormAPI) *Controller {
	return &Controller{
		api: api,
		now: time.Now,
	}
}

// Load загружает список форм с сервера. Вызывается при открытии дашборда
// и при возврате на него
func (c *Controller) Load(ctx context.Context) error {
	forms, err := c.api.ListForms(ctx)
	if err != nil {
		return fmt.Errorf("не удалось загрузить список форм: %w", err)
	}

	c.mu.Lock()
	c.forms = forms
	c.mu.Unlock()
	return nil
}

// Forms возвращает копию текущего списка
func (c *Controller) Forms() []requestresponse.FormListItemResponse {
	c.mu.Lock()
	defer c.mu.Unlock()

	forms := make([]requestresponse.FormListItemResponse, len(c.forms))
	copy(forms, c.forms)
	return forms
}

// LastActionError : сообщение последнего неудавшегося действия для модалки
func (c *Controller) LastActionError() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastActionError
}

// StatusOf раскладывает форму ровно в одну корзину draft/published/expired.
// Истечение всегда пересчитывается на момент вызова, не хранится
func (c *Controller) StatusOf(form *requestresponse.FormResponse) string {
	if !form.IsPublished {
		return model.StatusDraft
	}
	if form.ExpiryDate != nil && c.now().After(*form.ExpiryDate) {
		return model.StatusExpired
	}
	return model.StatusPublished
}

// ToggleAccepting переключает приём ответов.
// Черновик и истёкшая форма отклоняются локально, без запроса к серверу;
// иначе флаг переворачивается сразу и откатывается при отказе
func (c *Controller) ToggleAccepting(ctx context.Context, formUUID string) error {
	c.mu.Lock()
	index := c.indexOf(formUUID)
	if index < 0 {
		c.mu.Unlock()
		return ErrFormNotInList
	}

	form := &c.forms[index].Form
	status := c.StatusOf(form)

	if !form.IsPublished {
		c.lastActionError = ErrMustBePublished.Error()
		c.mu.Unlock()
		return ErrMustBePublished
	}
	if !form.IsAccepting && status == model.StatusExpired {
		c.lastActionError = ErrFormHasExpired.Error()
		c.mu.Unlock()
		return ErrFormHasExpired
	}

	accepting := !form.IsAccepting
	form.IsAccepting = accepting
	c.mu.Unlock()

	if err := c.api.SetAccepting(ctx, formUUID, accepting); err != nil {
		// откат оптимистичного состояния
		c.mu.Lock()
		if index := c.indexOf(formUUID); index >= 0 {
			c.forms[index].Form.IsAccepting = !accepting
		}
		c.lastActionError = "Failed to update the form. Please try again."
		c.mu.Unlock()
		return fmt.Errorf("не удалось переключить приём ответов: %w", err)
	}

	// сервер мог пересчитать статус/истечение — перечитываем весь список
	if err := c.Load(ctx); err != nil {
		log.Printf("[Dashboard] не удалось обновить список после переключения: %v", err)
	}
	return nil
}

// RequestDelete открывает подтверждение удаления формы
func (c *Controller) RequestDelete(formUUID string) {
	c.mu.Lock()
	c.pendingDelete = formUUID
	c.mu.Unlock()
}

// PendingDelete : форма, ожидающая подтверждения удаления
func (c *Controller) PendingDelete() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pendingDelete
}

// Delete убирает форму из списка и закрывает подтверждение сразу,
// при отказе сервера форма возвращается на место по дате создания
func (c *Controller) Delete(ctx context.Context, formUUID string) error {
	c.mu.Lock()
	index := c.indexOf(formUUID)
	if index < 0 {
		c.mu.Unlock()
		return ErrFormNotInList
	}

	removed := c.forms[index]
	c.forms = append(c.forms[:index], c.forms[index+1:]...)
	c.pendingDelete = ""
	c.mu.Unlock()

	if err := c.api.DeleteForm(ctx, formUUID); err != nil {
		c.mu.Lock()
		c.forms = append(c.forms, removed)
		sort.SliceStable(c.forms, func(i, j int) bool {
			return c.forms[i].Form.CreatedAt > c.forms[j].Form.CreatedAt
		})
		c.lastActionError = "Failed to delete the form. Please try again."
		c.mu.Unlock()
		return fmt.Errorf("не удалось удалить форму: %w", err)
	}

	return nil
}

// Publish валидирует свежую копию формы и публикует её.
// Сообщения всех непройденных проверок возвращаются вместе;
// непустой список означает, что запрос на публикацию не отправлялся
func (c *Controller) Publish(ctx context.Context, formUUID string) ([]string, error) {
	fresh, err := c.api.GetForm(ctx, formUUID)
	if err != nil {
		return nil, fmt.Errorf("не удалось получить форму: %w", err)
	}

	issues := model.PublishIssues(&model.Form{
		Title:           fresh.Title,
		UploadFields:    fresh.UploadFields,
		CustomQuestions: fresh.CustomQuestions,
	})
	if len(issues) > 0 {
		return issues, nil
	}

	resp, err := c.api.PublishForm(ctx, formUUID)
	if err != nil {
		return nil, fmt.Errorf("не удалось опубликовать форму: %w", err)
	}
	if len(resp.Issues) > 0 {
		return resp.Issues, nil
	}

	if err := c.Load(ctx); err != nil {
		log.Printf("[Dashboard] не удалось обновить список после публикации: %v", err)
	}
	return nil, nil
}

// вызывать только под c.mu
func (c *Controller) indexOf(formUUID string) int {
	for i := range c.forms {
		if c.forms[i].Form.UUID == formUUID {
			return i
		}
	}
	return -1
}
