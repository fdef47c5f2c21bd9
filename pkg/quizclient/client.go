// Package quizclient 测验应用的 Go 客户端：REST 调用、本地存储、离线队列、历史合并以及视图路由。
package quizclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"quiz_app_backend/internal/model"
)

// AuthUser 登录后保存在本地存储 auth_user 键下
type AuthUser struct {
	Name   string         `json:"name"`
	Email  string         `json:"email"`
	Avatar string         `json:"avatar"`
	Role   model.UserRole `json:"role"`
	Token  string         `json:"token"`
}

func (u *AuthUser) IsAdmin() bool {
	return u != nil && u.Role == model.Admin
}

// APIError 服务端返回的非 2xx 响应
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("quiz api: %d %s", e.Status, e.Message)
}

func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type Client struct {
	BaseURL string
	HTTP    *http.Client
	Token   string
}

func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{BaseURL: strings.TrimRight(baseURL, "/"), HTTP: httpClient}
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil && !errors.Is(err, io.EOF) {
		if resp.StatusCode/100 != 2 {
			return &APIError{Status: resp.StatusCode, Message: resp.Status}
		}
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}

	if resp.StatusCode/100 != 2 {
		msg := env.Message
		if msg == "" {
			msg = resp.Status
		}
		return &APIError{Status: resp.StatusCode, Message: msg}
	}

	if out == nil || len(env.Data) == 0 {
		return nil
	}
	return json.Unmarshal(env.Data, out)
}

func (c *Client) Register(ctx context.Context, name, email, password string) (*AuthUser, error) {
	var u AuthUser
	err := c.do(ctx, http.MethodPost, "/api/register", map[string]string{
		"name": name, "email": email, "password": password,
	}, &u)
	if err != nil {
		return nil, err
	}
	c.Token = u.Token
	return &u, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (*AuthUser, error) {
	var u AuthUser
	err := c.do(ctx, http.MethodPost, "/api/login", map[string]string{
		"email": email, "password": password,
	}, &u)
	if err != nil {
		return nil, err
	}
	c.Token = u.Token
	return &u, nil
}

func (c *Client) Profile(ctx context.Context) (*model.User, error) {
	var u model.User
	return &u, c.do(ctx, http.MethodGet, "/api/profile", nil, &u)
}

func (c *Client) UpdateAvatar(ctx context.Context, avatar string) (string, error) {
	var out struct {
		Avatar string `json:"avatar"`
	}
	err := c.do(ctx, http.MethodPost, "/api/update-avatar", map[string]string{"avatar": avatar}, &out)
	return out.Avatar, err
}

func (c *Client) Quizzes(ctx context.Context) ([]model.Quiz, error) {
	var out []model.Quiz
	return out, c.do(ctx, http.MethodGet, "/api/quizzes", nil, &out)
}

func (c *Client) Questions(ctx context.Context) ([]model.Question, error) {
	var out []model.Question
	return out, c.do(ctx, http.MethodGet, "/api/questions", nil, &out)
}

func (c *Client) QuestionsBySubject(ctx context.Context, subject string) ([]model.Question, error) {
	var out []model.Question
	return out, c.do(ctx, http.MethodGet, "/api/questions/"+url.PathEscape(subject), nil, &out)
}

func (c *Client) Subjects(ctx context.Context) ([]model.Subject, error) {
	var out []model.Subject
	return out, c.do(ctx, http.MethodGet, "/api/subjects", nil, &out)
}

func (c *Client) PostAttempt(ctx context.Context, a *model.Attempt) (*model.Attempt, error) {
	var out model.Attempt
	if err := c.do(ctx, http.MethodPost, "/api/attempts", a, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Attempts(ctx context.Context, email string) ([]model.Attempt, error) {
	var out []model.Attempt
	return out, c.do(ctx, http.MethodGet, "/api/attempts/"+url.PathEscape(email), nil, &out)
}

// 以下为管理员接口

func (c *Client) CreateQuiz(ctx context.Context, q model.Quiz) (*model.Quiz, error) {
	var out model.Quiz
	err := c.do(ctx, http.MethodPost, "/api/quizzes/add", map[string]interface{}{
		"title": q.Title, "subject": q.Subject, "duration": q.Duration, "totalMarks": q.TotalMarks,
	}, &out)
	return &out, err
}

func (c *Client) DeleteQuiz(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/quizzes/"+url.PathEscape(id), nil, nil)
}

func (c *Client) CreateQuestion(ctx context.Context, q model.Question) (*model.Question, error) {
	var out model.Question
	return &out, c.do(ctx, http.MethodPost, "/api/questions/add", q, &out)
}

func (c *Client) DeleteQuestion(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/questions/"+url.PathEscape(id), nil, nil)
}

func (c *Client) CreateSubject(ctx context.Context, name string) (*model.Subject, error) {
	var out model.Subject
	return &out, c.do(ctx, http.MethodPost, "/api/subjects", map[string]string{"name": name}, &out)
}

func (c *Client) RenameSubject(ctx context.Context, id, name string) (*model.Subject, error) {
	var out model.Subject
	return &out, c.do(ctx, http.MethodPut, "/api/subjects/"+url.PathEscape(id), map[string]string{"name": name}, &out)
}

func (c *Client) DeleteSubject(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/subjects/"+url.PathEscape(id), nil, nil)
}

// ReseedResult 各表导入后的记录数
type ReseedResult struct {
	Subjects       int64 `json:"subjects"`
	Quizzes        int64 `json:"quizzes"`
	Questions      int64 `json:"questions"`
	HistoryDropped int64 `json:"historyDropped"`
}

func (c *Client) Reseed(ctx context.Context, secret string, dropHistory bool) (*ReseedResult, error) {
	var out ReseedResult
	err := c.do(ctx, http.MethodPost, "/api/admin/reseed", map[string]interface{}{
		"secret": secret, "dropHistory": dropHistory,
	}, &out)
	return &out, err
}
