package quizclient

import (
	"errors"
	"sort"
	"strings"
	"time"

	"quiz_app_backend/internal/model"
	"quiz_app_backend/internal/quiz"
)

var ErrAttemptNotFound = errors.New("attempt not found")

// HistoryEntry 合并后的历史记录，Key 在合并时确定，之后不再变化
type HistoryEntry struct {
	Attempt model.Attempt `json:"attempt"`
	Key     string        `json:"key"`
	Offline bool          `json:"offline"`
}

// AttemptKey clientId > _id > createdAt > 随机值
func AttemptKey(a model.Attempt) string {
	switch {
	case a.ClientID != "":
		return a.ClientID
	case a.ID != "":
		return a.ID
	case !a.CreatedAt.IsZero():
		return a.CreatedAt.UTC().Format(time.RFC3339Nano)
	default:
		return "local-" + model.GenerateUUID()
	}
}

// MergeHistory 服务端记录在前、同邮箱的离线记录在后，再按 createdAt 倒序稳定排序。
// 离线记录已被服务端收录（clientId 相同）时只保留服务端那条。
func MergeHistory(server, offline []model.Attempt, email string) []HistoryEntry {
	email = strings.ToLower(strings.TrimSpace(email))
	seen := make(map[string]bool, len(server))
	out := make([]HistoryEntry, 0, len(server)+len(offline))

	for _, a := range server {
		if a.ClientID != "" {
			seen[a.ClientID] = true
		}
		out = append(out, HistoryEntry{Attempt: a, Key: AttemptKey(a)})
	}
	for _, a := range offline {
		if strings.ToLower(strings.TrimSpace(a.UserEmail)) != email {
			continue
		}
		if a.ClientID != "" && seen[a.ClientID] {
			continue
		}
		out = append(out, HistoryEntry{Attempt: a, Key: AttemptKey(a), Offline: true})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Attempt.CreatedAt.After(out[j].Attempt.CreatedAt)
	})
	return out
}

// ReviewQuery Key 为主，QuizTitle/TimeText 仅在 Key 失配时使用
type ReviewQuery struct {
	Key       string
	QuizTitle string
	TimeText  string
}

func (e HistoryEntry) matchesKey(key string) bool {
	if key == "" {
		return false
	}
	a := e.Attempt
	if key == e.Key || key == a.ID || key == a.ClientID {
		return true
	}
	return !a.CreatedAt.IsZero() && key == a.CreatedAt.UTC().Format(time.RFC3339Nano)
}

// clockPart "18:30 • 12/10/2025" 取 "18:30"
func clockPart(s string) string {
	if i := strings.Index(s, "•"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

func titleContains(a, b string) bool {
	a, b = quiz.FoldKey(a), quiz.FoldKey(b)
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

func FindAttempt(entries []HistoryEntry, q ReviewQuery) (*HistoryEntry, error) {
	for i := range entries {
		if entries[i].matchesKey(q.Key) {
			return &entries[i], nil
		}
	}

	if q.QuizTitle == "" && q.TimeText == "" {
		return nil, ErrAttemptNotFound
	}

	for i := range entries {
		a := entries[i].Attempt
		if a.QuizTitle == q.QuizTitle && a.TimeText == q.TimeText {
			return &entries[i], nil
		}
	}

	clock := clockPart(q.TimeText)
	for i := range entries {
		a := entries[i].Attempt
		if titleContains(a.QuizTitle, q.QuizTitle) && (clock == "" || clockPart(a.TimeText) == clock) {
			return &entries[i], nil
		}
	}

	// 仅按时间匹配，必须唯一
	if clock != "" {
		var found *HistoryEntry
		for i := range entries {
			if clockPart(entries[i].Attempt.TimeText) != clock {
				continue
			}
			if found != nil {
				return nil, ErrAttemptNotFound
			}
			found = &entries[i]
		}
		if found != nil {
			return found, nil
		}
	}
	return nil, ErrAttemptNotFound
}
