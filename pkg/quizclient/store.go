package quizclient

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"quiz_app_backend/internal/model"
)

const (
	KeyAuthUser        = "auth_user"
	KeySettings        = "settings"
	KeyOfflineAttempts = "offline_attempts"
)

// Settings 用户本地偏好
type Settings struct {
	Music         bool   `json:"music"`
	QuestionTimer bool   `json:"questionTimer"`
	Avatar        string `json:"avatar,omitempty"`
}

// LocalStore 以单个 JSON 文件模拟浏览器 localStorage，每个键保存一段原始 JSON
type LocalStore struct {
	path string
	mu   sync.Mutex
}

func OpenStore(path string) (*LocalStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return &LocalStore{path: path}, nil
}

func (s *LocalStore) Path() string {
	return s.path
}

func (s *LocalStore) readAll() (map[string]json.RawMessage, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]json.RawMessage{}, nil
	}
	if err != nil {
		return nil, err
	}
	items := map[string]json.RawMessage{}
	if len(data) == 0 {
		return items, nil
	}
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// writeAll 先写临时文件再 rename，避免中途崩溃留下半个文件
func (s *LocalStore) writeAll(items map[string]json.RawMessage) error {
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".store-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}

// Get 键不存在时返回 false
func (s *LocalStore) Get(key string, v interface{}) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.readAll()
	if err != nil {
		return false, err
	}
	raw, ok := items[key]
	if !ok || string(raw) == "null" {
		return false, nil
	}
	return true, json.Unmarshal(raw, v)
}

func (s *LocalStore) Set(key string, v interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setLocked(key, v)
}

func (s *LocalStore) setLocked(key string, v interface{}) error {
	items, err := s.readAll()
	if err != nil {
		return err
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	items[key] = raw
	return s.writeAll(items)
}

func (s *LocalStore) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.readAll()
	if err != nil {
		return err
	}
	if _, ok := items[key]; !ok {
		return nil
	}
	delete(items, key)
	return s.writeAll(items)
}

func (s *LocalStore) AuthUser() (*AuthUser, error) {
	var u AuthUser
	ok, err := s.Get(KeyAuthUser, &u)
	if err != nil || !ok {
		return nil, err
	}
	return &u, nil
}

func (s *LocalStore) Settings() (Settings, error) {
	var st Settings
	_, err := s.Get(KeySettings, &st)
	return st, err
}

func (s *LocalStore) OfflineAttempts() ([]model.Attempt, error) {
	var list []model.Attempt
	_, err := s.Get(KeyOfflineAttempts, &list)
	return list, err
}

// AppendOffline 只追加，不自动清理
func (s *LocalStore) AppendOffline(a model.Attempt) error {
	return s.updateOffline(func(list []model.Attempt) []model.Attempt {
		return append(list, a)
	})
}

func (s *LocalStore) updateOffline(fn func([]model.Attempt) []model.Attempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.readAll()
	if err != nil {
		return err
	}
	var list []model.Attempt
	if raw, ok := items[KeyOfflineAttempts]; ok {
		if err := json.Unmarshal(raw, &list); err != nil {
			return err
		}
	}
	return s.setLocked(KeyOfflineAttempts, fn(list))
}
