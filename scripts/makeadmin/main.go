// 把指定账号设为管理员，账号不存在时创建
//
// 用法: go run ./scripts/makeadmin -email admin@gmail.com -password 123456

package main

import (
	"flag"
	"log"

	"quiz_app_backend/internal/config"
	"quiz_app_backend/internal/events"
	"quiz_app_backend/internal/repository"
	"quiz_app_backend/internal/service"
	"quiz_app_backend/pkg/database"
	"quiz_app_backend/pkg/logger"

	"go.uber.org/zap"
)

func main() {
	configDir := flag.String("config", "configs", "配置文件所在目录")
	email := flag.String("email", "", "管理员邮箱，默认取 seed.admin_email")
	password := flag.String("password", "", "新建账号时使用的密码，默认取 seed.admin_password")
	name := flag.String("name", "Admin", "新建账号时使用的姓名")
	flag.Parse()

	cfg, err := config.LoadConfig(*configDir)
	if err != nil {
		log.Fatalf("无法读取配置文件: %v", err)
	}
	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	if *email == "" {
		*email = cfg.Seed.AdminEmail
	}
	if *password == "" {
		*password = cfg.Seed.AdminPassword
	}
	if *email == "" {
		log.Fatal("缺少 -email")
	}

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("数据库连接失败", zap.Error(err))
	}

	auth := service.NewAuthService(repository.NewUserRepository(db), nil, events.NopPublisher{}, cfg)
	created, err := auth.EnsureAdmin(*email, *password, *name)
	if err != nil {
		logger.Log.Fatal("设置管理员失败", zap.String("email", *email), zap.Error(err))
	}

	if created {
		logger.Log.Info("已创建管理员账号", zap.String("email", *email))
	} else {
		logger.Log.Info("已将账号设为管理员", zap.String("email", *email))
	}
}
