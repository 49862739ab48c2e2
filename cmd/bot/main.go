// botサービスのエントリポイント。
// Telegramからのメッセージを受信し、ホワイトリスト確認のうえで
// gatewayサービスにIMEI照会を中継する。
package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"

	"github.com/nao1215/imeihub/internal/relay"
	"github.com/nao1215/imeihub/pkg/logging"
)

func main() {
	cfg, err := relay.LoadConfig()
	if err != nil {
		log.Fatalf("設定の読み込みに失敗: %v", err)
	}

	logger := logging.New(cfg.LogLevel)

	bot, err := relay.NewBot(cfg, logger)
	if err != nil {
		log.Fatalf("botの初期化に失敗: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := bot.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("botの実行に失敗: %v", err)
	}
}
