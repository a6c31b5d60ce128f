package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/fastygo/taskmanager/api/transport"
	"github.com/fastygo/taskmanager/domain"
)

const defaultTimeout = 30 * time.Second

type HTTPOption func(*HTTPClient)

// WithTimeout bounds requests whose context carries no deadline.
func WithTimeout(d time.Duration) HTTPOption {
	return func(c *HTTPClient) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithDial replaces the dialer, e.g. with an in-memory listener.
func WithDial(dial fasthttp.DialFunc) HTTPOption {
	return func(c *HTTPClient) { c.client.Dial = dial }
}

// HTTPClient talks to the taskmanager API over fasthttp.
type HTTPClient struct {
	baseURL string
	client  *fasthttp.Client
	tokens  TokenSource
	timeout time.Duration
}

func NewHTTPClient(baseURL string, opts ...HTTPOption) *HTTPClient {
	c := &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &fasthttp.Client{
			Name:                "taskctl",
			MaxIdleConnDuration: 90 * time.Second,
		},
		timeout: defaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithTokens returns a copy that authenticates data calls with tokens.
func (c *HTTPClient) WithTokens(tokens TokenSource) *HTTPClient {
	cp := *c
	cp.tokens = tokens
	return &cp
}

func (c *HTTPClient) token() string {
	if c.tokens == nil {
		return ""
	}
	return c.tokens.Token()
}

func (c *HTTPClient) SignUp(ctx context.Context, email, password, name string) (*domain.User, error) {
	var user domain.User
	body := transport.SignUpRequest{Email: email, Password: password, Name: name}
	if err := c.call(ctx, http.MethodPost, "/api/v1/auth/signup", "", body, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *HTTPClient) SignIn(ctx context.Context, email, password string) (*Credentials, error) {
	var creds Credentials
	body := transport.SignInRequest{Email: email, Password: password}
	if err := c.call(ctx, http.MethodPost, "/api/v1/auth/signin", "", body, &creds); err != nil {
		return nil, err
	}
	return &creds, nil
}

func (c *HTTPClient) SignOut(ctx context.Context, token string) error {
	return c.call(ctx, http.MethodPost, "/api/v1/auth/signout", token, nil, nil)
}

func (c *HTTPClient) CurrentUser(ctx context.Context, token string) (*domain.User, error) {
	var user domain.User
	if err := c.call(ctx, http.MethodGet, "/api/v1/auth/me", token, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *HTTPClient) ListTasks(ctx context.Context) ([]domain.Task, error) {
	var tasks []domain.Task
	if err := c.call(ctx, http.MethodGet, "/api/v1/tasks", c.token(), nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (c *HTTPClient) InsertTask(ctx context.Context, title string, priority domain.Priority) (*domain.Task, error) {
	var task domain.Task
	body := transport.CreateTaskRequest{Title: title, Priority: priority}
	if err := c.call(ctx, http.MethodPost, "/api/v1/tasks", c.token(), body, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *HTTPClient) UpdateTask(ctx context.Context, id string, patch domain.TaskPatch) (*domain.Task, error) {
	var task domain.Task
	body := transport.UpdateTaskRequest{Title: patch.Title, Priority: patch.Priority, Status: patch.Status}
	if err := c.call(ctx, http.MethodPatch, "/api/v1/tasks/"+url.PathEscape(id), c.token(), body, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *HTTPClient) DeleteTask(ctx context.Context, id string) error {
	return c.call(ctx, http.MethodDelete, "/api/v1/tasks/"+url.PathEscape(id), c.token(), nil, nil)
}

func (c *HTTPClient) ListSubtasks(ctx context.Context, parentTaskID string) ([]domain.Subtask, error) {
	var subtasks []domain.Subtask
	path := "/api/v1/tasks/" + url.PathEscape(parentTaskID) + "/subtasks"
	if err := c.call(ctx, http.MethodGet, path, c.token(), nil, &subtasks); err != nil {
		return nil, err
	}
	return subtasks, nil
}

func (c *HTTPClient) InsertSubtask(ctx context.Context, parentTaskID, title string) (*domain.Subtask, error) {
	var subtask domain.Subtask
	path := "/api/v1/tasks/" + url.PathEscape(parentTaskID) + "/subtasks"
	if err := c.call(ctx, http.MethodPost, path, c.token(), transport.CreateSubtaskRequest{Title: title}, &subtask); err != nil {
		return nil, err
	}
	return &subtask, nil
}

func (c *HTTPClient) UpdateSubtask(ctx context.Context, id string, patch domain.SubtaskPatch) (*domain.Subtask, error) {
	var subtask domain.Subtask
	body := transport.UpdateSubtaskRequest{Title: patch.Title, Status: patch.Status}
	if err := c.call(ctx, http.MethodPatch, "/api/v1/subtasks/"+url.PathEscape(id), c.token(), body, &subtask); err != nil {
		return nil, err
	}
	return &subtask, nil
}

func (c *HTTPClient) SetSubtaskOrder(ctx context.Context, id string, index int) (*domain.Subtask, error) {
	var subtask domain.Subtask
	body := transport.SetOrderRequest{OrderIndex: &index}
	if err := c.call(ctx, http.MethodPut, "/api/v1/subtasks/"+url.PathEscape(id)+"/order", c.token(), body, &subtask); err != nil {
		return nil, err
	}
	return &subtask, nil
}

func (c *HTTPClient) DeleteSubtask(ctx context.Context, id string) error {
	return c.call(ctx, http.MethodDelete, "/api/v1/subtasks/"+url.PathEscape(id), c.token(), nil, nil)
}

func (c *HTTPClient) ReorderSubtasks(ctx context.Context, parentTaskID string, orderedIDs []string) ([]domain.Subtask, error) {
	var subtasks []domain.Subtask
	path := "/api/v1/tasks/" + url.PathEscape(parentTaskID) + "/subtasks/order"
	if err := c.call(ctx, http.MethodPut, path, c.token(), transport.ReorderRequest{SubtaskIDs: orderedIDs}, &subtasks); err != nil {
		return nil, err
	}
	return subtasks, nil
}

// GenerateSubtasks uses the function endpoint's own body shape instead of
// the envelope.
func (c *HTTPClient) GenerateSubtasks(ctx context.Context, taskTitle string) ([]string, error) {
	status, raw, err := c.do(ctx, http.MethodPost, "/functions/v1/generate-subtasks", c.token(), transport.GenerateSubtasksRequest{TaskTitle: taskTitle})
	if err != nil {
		return nil, err
	}

	var out transport.GenerateSubtasksResponse
	decodeErr := json.Unmarshal(raw, &out)
	if status < 200 || status >= 300 {
		message := "Failed to generate subtasks"
		if decodeErr == nil && out.Error != "" {
			message = out.Error
		}
		return nil, domain.NewError(codeForStatus(status), message)
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("decode generate-subtasks response: %w", decodeErr)
	}
	return out.Subtasks, nil
}

func (c *HTTPClient) do(ctx context.Context, method, path, token string, body interface{}) (int, []byte, error) {
	if err := ctx.Err(); err != nil {
		return 0, nil, err
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.baseURL + path)
	req.Header.SetMethod(method)
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return 0, nil, err
		}
		req.Header.SetContentType("application/json")
		req.SetBody(payload)
	}

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(c.timeout)
	}
	if err := c.client.DoDeadline(req, resp, deadline); err != nil {
		return 0, nil, fmt.Errorf("%s %s: %w", method, path, err)
	}

	raw := append([]byte(nil), resp.Body()...)
	return resp.StatusCode(), raw, nil
}

// call sends one envelope request and decodes data into out. Error envelopes
// come back as *domain.Error with the server's code and message.
func (c *HTTPClient) call(ctx context.Context, method, path, token string, body, out interface{}) error {
	status, raw, err := c.do(ctx, method, path, token, body)
	if err != nil {
		return err
	}
	if status == http.StatusNoContent {
		return nil
	}

	var env struct {
		Status string          `json:"status"`
		Code   string          `json:"code"`
		Data   json.RawMessage `json:"data"`
		Error  json.RawMessage `json:"error"`
	}
	decodeErr := json.Unmarshal(raw, &env)

	if status < 200 || status >= 300 {
		code := codeForStatus(status)
		message := http.StatusText(status)
		if decodeErr == nil {
			if env.Code != "" {
				code = domain.ErrorCode(env.Code)
			}
			var text string
			if json.Unmarshal(env.Error, &text) == nil && text != "" {
				message = text
			}
		}
		return domain.NewError(code, message)
	}
	if decodeErr != nil {
		return fmt.Errorf("decode response: %w", decodeErr)
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode response data: %w", err)
	}
	return nil
}

func codeForStatus(status int) domain.ErrorCode {
	switch status {
	case http.StatusBadRequest:
		return domain.ErrCodeInvalid
	case http.StatusUnauthorized:
		return domain.ErrCodeUnauthorized
	case http.StatusForbidden:
		return domain.ErrCodeForbidden
	case http.StatusNotFound:
		return domain.ErrCodeNotFound
	case http.StatusConflict:
		return domain.ErrCodeConflict
	default:
		return domain.ErrCodeInternal
	}
}
