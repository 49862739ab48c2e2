package relay

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/nao1215/imeihub/internal/whitelist"
)

// Bot はTelegramからのメッセージを受信してIMEI照会を中継する常駐プロセス。
type Bot struct {
	// api はTelegram Bot APIクライアント。
	api *tgbotapi.BotAPI
	// handler は受信メッセージのハンドラ。
	handler *Handler
	// store はホワイトリストストア。終了時にクローズする。
	store *whitelist.Store
	// logger は構造化ロガー。
	logger *slog.Logger
	// send は応答メッセージの送信関数。テストで差し替える。
	send func(chatID int64, replyToMessageID int, text string) error
}

// NewBot は新しいbotを生成する。
// Telegram Bot APIへの接続確認と、gatewayと共有するSQLiteのオープンを行う。
func NewBot(cfg Config, logger *slog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		return nil, fmt.Errorf("Telegram Bot APIへの接続に失敗: %w", err)
	}

	store, err := whitelist.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("ホワイトリストストアのオープンに失敗: %w", err)
	}

	client := NewClient(cfg.GatewayURL, cfg.GatewayUsername, cfg.GatewayPassword)

	b := &Bot{
		api:     api,
		handler: NewHandler(store, client, logger),
		store:   store,
		logger:  logger,
	}
	b.send = func(chatID int64, replyToMessageID int, text string) error {
		m := tgbotapi.NewMessage(chatID, text)
		m.ReplyToMessageID = replyToMessageID
		_, err := b.api.Send(m)
		return err
	}
	return b, nil
}

// Run はTelegramのロングポーリングを開始し、受信メッセージを処理し続ける。
// ctxのキャンセルで停止し、処理中のメッセージの完了を待ってからストアを閉じる。
func (b *Bot) Run(ctx context.Context) error {
	b.logger.Info("Telegramポーリングを開始します", "bot", b.api.Self.UserName)

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 30
	updates := b.api.GetUpdatesChan(updateConfig)

	go func() {
		<-ctx.Done()
		// 停止時にロングポーリングを止め、updatesチャネルを閉じさせる
		b.api.StopReceivingUpdates()
	}()

	b.processUpdates(ctx, updates)
	b.store.Close()
	return ctx.Err()
}

// processUpdates は受信メッセージを処理し続ける。
// 各メッセージは独立したゴルーチンで処理するため、あるリクエストの
// gateway呼び出し中も他のメッセージの受付は止まらない。
// updatesチャネルが閉じたら、処理中の全ゴルーチンの完了を待ってから戻る。
func (b *Bot) processUpdates(ctx context.Context, updates tgbotapi.UpdatesChannel) {
	var wg sync.WaitGroup
	defer wg.Wait()

	for update := range updates {
		if update.Message == nil || update.Message.From == nil {
			continue
		}
		msg := update.Message
		wg.Add(1)
		go func() {
			defer wg.Done()
			b.handleMessage(ctx, msg)
		}()
	}
}

// handleMessage は1件の受信メッセージを処理する。
func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	reply := func(text string) {
		if err := b.send(msg.Chat.ID, msg.MessageID, text); err != nil {
			b.logger.Error("応答の送信に失敗", "tg_id", msg.From.ID, "error", err)
		}
	}

	b.handler.Handle(ctx, msg.From.ID, msg.Text, reply)
}
