package quizclient

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"quiz_app_backend/internal/model"
	"quiz_app_backend/internal/quiz"
	"quiz_app_backend/pkg/logger"

	"go.uber.org/zap"
)

type Catalog struct {
	Quizzes   []model.Quiz
	Questions []model.Question
	Subjects  []model.Subject
}

// State 一个前端实例的全部可变状态，显式在路由、渲染与提交之间传递
type State struct {
	User    *AuthUser
	Catalog Catalog
	Session *quiz.Session
	History []HistoryEntry
}

func sameEmail(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// NewState 从本地存储恢复登录用户
func NewState(store *LocalStore) (*State, error) {
	u, err := store.AuthUser()
	if err != nil {
		return nil, err
	}
	return &State{User: u}, nil
}

func (s *State) Authenticated() bool {
	return s.User != nil && s.User.Token != ""
}

func (s *State) IsAdmin() bool {
	return s.Authenticated() && s.User.IsAdmin()
}

// SignIn 持久化登录信息并让客户端携带 token
func (s *State) SignIn(c *Client, store *LocalStore, u *AuthUser) error {
	if err := store.Set(KeyAuthUser, u); err != nil {
		return err
	}
	s.User = u
	c.Token = u.Token
	return nil
}

func (s *State) SignOut(c *Client, store *LocalStore) error {
	s.User = nil
	s.Session = nil
	s.History = nil
	c.Token = ""
	return store.Remove(KeyAuthUser)
}

// LoadCatalog 任一请求失败只记录警告，对应部分保持为空
func (s *State) LoadCatalog(ctx context.Context, c *Client) {
	var err error
	if s.Catalog.Quizzes, err = c.Quizzes(ctx); err != nil {
		logger.Log.Warn("加载测验列表失败", zap.Error(err))
	}
	if s.Catalog.Questions, err = c.Questions(ctx); err != nil {
		logger.Log.Warn("加载题库失败", zap.Error(err))
	}
	if s.Catalog.Subjects, err = c.Subjects(ctx); err != nil {
		logger.Log.Warn("加载科目失败", zap.Error(err))
	}
}

func (s *State) FindQuiz(id string) (*model.Quiz, bool) {
	for i := range s.Catalog.Quizzes {
		if s.Catalog.Quizzes[i].ID == id {
			return &s.Catalog.Quizzes[i], true
		}
	}
	return nil, false
}

// StartQuiz 覆盖当前会话
func (s *State) StartQuiz(id string, rng *rand.Rand, now time.Time) (*quiz.Session, error) {
	q, ok := s.FindQuiz(id)
	if !ok {
		return nil, fmt.Errorf("quiz %s not found", id)
	}
	s.Session = quiz.NewSession(*q, s.Catalog.Questions, rng, now)
	if len(s.Session.Questions) == 0 {
		s.Session = nil
		return nil, fmt.Errorf("quiz %q has no questions", q.Title)
	}
	return s.Session, nil
}

// SubmitSession 计分、提交并刷新历史；提交后当前会话结束
func (s *State) SubmitSession(ctx context.Context, c *Client, store *LocalStore, now time.Time) (*SubmitResult, error) {
	if s.Session == nil {
		return nil, fmt.Errorf("no quiz in progress")
	}
	if !s.Authenticated() {
		return nil, fmt.Errorf("not signed in")
	}

	a := s.Session.Submit(s.User.Email, now)
	res, err := Submit(ctx, c, store, a)
	if err != nil {
		return nil, err
	}
	s.Session = nil
	s.RefreshHistory(ctx, c, store)
	return res, nil
}

// RefreshHistory 服务端不可用时只展示离线记录
func (s *State) RefreshHistory(ctx context.Context, c *Client, store *LocalStore) {
	if !s.Authenticated() {
		s.History = nil
		return
	}
	server, err := c.Attempts(ctx, s.User.Email)
	if err != nil {
		logger.Log.Warn("加载历史记录失败", zap.Error(err))
		server = nil
	}
	offline, err := store.OfflineAttempts()
	if err != nil {
		logger.Log.Warn("读取离线记录失败", zap.Error(err))
		offline = nil
	}
	s.History = MergeHistory(server, offline, s.User.Email)
}

func (s *State) Review(q ReviewQuery) (*HistoryEntry, error) {
	return FindAttempt(s.History, q)
}
