// @title Quiz App 后端 API
// @version 1.0
// @description 在线测验应用的后端服务：用户、科目、测验、题目与作答记录。

// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization

package main

import (
	"context"
	"flag"
	"log"

	"quiz_app_backend/internal/app"
	"quiz_app_backend/internal/config"
	"quiz_app_backend/pkg/logger"

	"go.uber.org/zap"
)

func main() {
	// 命令行参数
	configDir := flag.String("config", "configs", "配置文件所在目录")
	seedOnly := flag.Bool("seed-only", false, "只导入种子数据，完成后退出")
	reseed := flag.Bool("reseed", false, "启动时强制重新导入题库（忽略 seed.on_startup）")
	flag.Parse()

	cfg, err := config.LoadConfig(*configDir)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	cfg.ForceReseed = *reseed
	cfg.SeedOnly = *seedOnly

	application := app.NewApp(cfg, *configDir)
	defer logger.Log.Sync()

	if err := application.Bootstrap(context.Background()); err != nil {
		logger.Log.Fatal("Failed to seed database", zap.Error(err))
	}

	// 导入完成后直接退出
	if *seedOnly {
		logger.Log.Info("种子数据导入完成，退出程序")
		return
	}

	application.Run()
}
