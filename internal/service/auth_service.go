package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"quiz_app_backend/internal/config"
	"quiz_app_backend/internal/events"
	"quiz_app_backend/internal/model"
	"quiz_app_backend/internal/repository"
	"quiz_app_backend/internal/util"
	"quiz_app_backend/pkg/logger"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthService struct {
	UserRepo *repository.UserRepository
	Storage  *StorageService
	Events   events.Publisher
	Cfg      *config.Config
}

func NewAuthService(userRepo *repository.UserRepository, storage *StorageService, publisher events.Publisher, cfg *config.Config) *AuthService {
	return &AuthService{
		UserRepo: userRepo,
		Storage:  storage,
		Events:   publisher,
		Cfg:      cfg,
	}
}

// AuthResult 登录/注册成功后返回给客户端的用户信息
type AuthResult struct {
	Name   string         `json:"name"`
	Email  string         `json:"email"`
	Avatar string         `json:"avatar"`
	Role   model.UserRole `json:"role"`
	Token  string         `json:"token"`
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func (s *AuthService) issue(user *model.User) (*AuthResult, error) {
	token, err := util.GenerateJWT(user, s.Cfg.JWT.Secret, s.Cfg.JWT.ExpireTime)
	if err != nil {
		return nil, err
	}
	return &AuthResult{
		Name:   user.Name,
		Email:  user.Email,
		Avatar: user.Avatar,
		Role:   user.Role,
		Token:  token,
	}, nil
}

func (s *AuthService) Register(ctx context.Context, name, email, password string) (*AuthResult, error) {
	email = NormalizeEmail(email)

	_, err := s.UserRepo.FindByEmail(email)
	if err == nil {
		return nil, util.ErrEmailRegistered
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hashed, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Name:     strings.TrimSpace(name),
		Email:    email,
		Password: hashed,
		Role:     model.RoleUser,
	}
	if err := s.UserRepo.Create(user); err != nil {
		return nil, err
	}

	if err := s.Events.Publish(ctx, events.New(events.UserRegistered, map[string]interface{}{
		"userId": user.ID,
		"email":  user.Email,
	})); err != nil {
		logger.Log.Warn("publish user.registered failed", zap.Error(err))
	}

	return s.issue(user)
}

func (s *AuthService) Login(email, password string) (*AuthResult, error) {
	user, err := s.UserRepo.FindByEmail(NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, util.ErrInvalidCredentials
	}

	return s.issue(user)
}

func (s *AuthService) GetUser(id string) (*model.User, error) {
	user, err := s.UserRepo.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrUserNotFound
	}
	return user, err
}

// UpdateAvatar emoji 等短字符串直接保存；data URL 图片上传到存储后保存其地址
func (s *AuthService) UpdateAvatar(ctx context.Context, claims *util.Claims, email, avatar string) (string, error) {
	email = NormalizeEmail(email)
	if email == "" {
		email = claims.Email
	}
	if email != claims.Email && !claims.IsAdmin() {
		return "", util.ErrPermissionDenied
	}

	stored := strings.TrimSpace(avatar)
	if util.IsDataURL(stored) {
		mimeType, data, err := util.DecodeImageDataURL(stored, util.MaxAvatarBytes)
		if err != nil {
			return "", fmt.Errorf("%w: %v", util.ErrInvalidAvatar, err)
		}
		url, err := s.Storage.UploadAvatar(ctx, data, mimeType)
		if err != nil {
			return "", err
		}
		stored = url
	} else if len([]rune(stored)) > util.MaxInlineAvatar {
		return "", util.ErrInvalidAvatar
	}

	n, err := s.UserRepo.UpdateAvatar(email, stored)
	if err != nil {
		return "", err
	}
	if n == 0 {
		return "", util.ErrUserNotFound
	}
	return stored, nil
}

// EnsureAdmin 不存在则创建管理员，存在则提升为管理员；返回是否新建
func (s *AuthService) EnsureAdmin(email, password, name string) (bool, error) {
	email = NormalizeEmail(email)

	user, err := s.UserRepo.FindByEmail(email)
	if err == nil {
		if user.Role == model.Admin {
			return false, nil
		}
		user.Role = model.Admin
		return false, s.UserRepo.Update(user)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}

	if password == "" {
		return false, errors.New("admin password is required to create a new admin")
	}
	hashed, err := HashPassword(password)
	if err != nil {
		return false, err
	}
	if name == "" {
		name = "Admin"
	}
	return true, s.UserRepo.Create(&model.User{
		Name:     name,
		Email:    email,
		Password: hashed,
		Role:     model.Admin,
	})
}
