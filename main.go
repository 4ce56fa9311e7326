package main

import (
	"exam_review_backend/internal/app"
	"exam_review_backend/internal/config"
	"exam_review_backend/pkg/logger"
	"flag"
	"log"
)

func main() {
	// 命令行参数
	configPath := flag.String("config", "configs", "配置文件目录")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	application := app.NewApp(cfg)
	defer logger.Log.Sync()

	application.Run()
}
