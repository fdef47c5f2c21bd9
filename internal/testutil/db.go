// Package testutil 测试用的数据库与配置构造
package testutil

import (
	"path/filepath"
	"testing"
	"time"

	"quiz_app_backend/internal/config"
	"quiz_app_backend/pkg/database"

	"gorm.io/gorm"
)

// NewDB 在临时目录创建已迁移的 sqlite 库
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := database.InitDB(&config.DatabaseConfig{
		Driver:   "sqlite",
		Path:     filepath.Join(t.TempDir(), "quiz_test.db"),
		LogLevel: "silent",
	})
	if err != nil {
		t.Fatalf("init test db: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func NewConfig(t testing.TB) *config.Config {
	t.Helper()

	return &config.Config{
		Server:   config.ServerConfig{Port: "0", Mode: "test"},
		Database: config.DatabaseConfig{Driver: "sqlite"},
		JWT:      config.JWTConfig{Secret: "test-secret-test-secret-test-secret", ExpireTime: time.Hour},
		Storage:  config.StorageConfig{Type: "local", LocalPath: t.TempDir()},
		Seed: config.SeedConfig{
			FixtureDir:   t.TempDir(),
			ReseedSecret: "reseed",
			AdminEmail:   "admin@gmail.com",
		},
		Events: config.EventsConfig{Enabled: true, Driver: "gochannel", Topic: "quiz.events"},
	}
}
