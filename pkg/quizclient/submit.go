package quizclient

import (
	"context"

	"quiz_app_backend/internal/model"
	"quiz_app_backend/pkg/logger"

	"go.uber.org/zap"
)

// SubmitResult Offline 为 true 时 Err 记录了服务端失败的原因
type SubmitResult struct {
	Attempt *model.Attempt
	Offline bool
	Err     error
}

// Submit 提交作答记录，网络或 HTTP 失败时写入离线队列。
// 返回的 error 仅表示本地存储失败。
func Submit(ctx context.Context, c *Client, store *LocalStore, a *model.Attempt) (*SubmitResult, error) {
	if a.ClientID == "" {
		a.ClientID = model.GenerateUUID()
	}

	saved, err := c.PostAttempt(ctx, a)
	if err == nil {
		return &SubmitResult{Attempt: saved}, nil
	}

	logger.Log.Warn("提交作答失败，转存离线队列",
		zap.String("clientId", a.ClientID),
		zap.String("quiz", a.QuizTitle),
		zap.Error(err))

	if serr := store.AppendOffline(*a); serr != nil {
		return nil, serr
	}
	return &SubmitResult{Attempt: a, Offline: true, Err: err}, nil
}

type SyncResult struct {
	Synced    int
	Remaining int
	Errors    []error
}

// SyncOffline 重新提交当前用户的离线记录，成功的从队列移除，服务端按 clientId 去重
func SyncOffline(ctx context.Context, c *Client, store *LocalStore, email string) (*SyncResult, error) {
	// 旧记录可能缺少 clientId，先补齐再提交，保证重试幂等
	var pending []model.Attempt
	err := store.updateOffline(func(list []model.Attempt) []model.Attempt {
		for i := range list {
			if list[i].ClientID == "" {
				list[i].ClientID = model.GenerateUUID()
			}
			if sameEmail(list[i].UserEmail, email) {
				pending = append(pending, list[i])
			}
		}
		return list
	})
	if err != nil {
		return nil, err
	}

	res := &SyncResult{}
	synced := make(map[string]bool)
	for i := range pending {
		if ctx.Err() != nil {
			res.Errors = append(res.Errors, ctx.Err())
			break
		}
		if _, err := c.PostAttempt(ctx, &pending[i]); err != nil {
			res.Errors = append(res.Errors, err)
			continue
		}
		synced[pending[i].ClientID] = true
		res.Synced++
	}

	err = store.updateOffline(func(list []model.Attempt) []model.Attempt {
		kept := list[:0]
		for _, a := range list {
			if !synced[a.ClientID] {
				kept = append(kept, a)
			}
		}
		res.Remaining = len(kept)
		return kept
	})
	if err != nil {
		return nil, err
	}

	logger.Log.Info("离线记录同步完成",
		zap.String("email", email),
		zap.Int("synced", res.Synced),
		zap.Int("remaining", res.Remaining))
	return res, nil
}
