package util

import "errors"

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailRegistered    = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrSubjectNotFound    = errors.New("subject not found")
	ErrSubjectExists      = errors.New("subject already exists")
	ErrQuizNotFound       = errors.New("quiz not found")
	ErrQuestionNotFound   = errors.New("question not found")
	ErrAttemptNotFound    = errors.New("attempt not found")
	ErrInvalidAttempt     = errors.New("invalid attempt")
	ErrInvalidAvatar      = errors.New("invalid avatar")
	ErrReseedForbidden    = errors.New("reseed secret mismatch")
)

// IsNotFound 判断是否为资源不存在类错误
func IsNotFound(err error) bool {
	return errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrSubjectNotFound) ||
		errors.Is(err, ErrQuizNotFound) ||
		errors.Is(err, ErrQuestionNotFound) ||
		errors.Is(err, ErrAttemptNotFound)
}

// IsConflict 判断是否为唯一性冲突
func IsConflict(err error) bool {
	return errors.Is(err, ErrEmailRegistered) || errors.Is(err, ErrSubjectExists)
}
