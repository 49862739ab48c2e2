package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/nao1215/imeihub/internal/whitelist"
)

// IMEIとして扱う数字列の長さの範囲。
const (
	imeiMinLength = 8
	imeiMaxLength = 15
)

// ユーザーへの応答メッセージ。
// 失敗時は詳細を含まない定型文のみを返し、生のエラー内容は運用者向けログにだけ出す。
const (
	replyAccessDenied = "❌ この機能を利用する権限がありません。"
	replyChecking     = "🔍 IMEIを確認しています。しばらくお待ちください..."
	replyFailure      = "❌ 確認に失敗しました。時間をおいて再度お試しください。"
	replyNoProperties = "ℹ️ このデバイスのプロパティ情報はありませんでした。"
)

// Handler は受信メッセージをIMEI照会として処理するメッセージハンドラ。
type Handler struct {
	// store はホワイトリストストア。照会前のメンバーシップ確認に使用する。
	store *whitelist.Store
	// client はgateway APIクライアント。
	client *Client
	// logger は障害調査用の構造化ロガー。
	logger *slog.Logger
}

// NewHandler は新しいメッセージハンドラを生成する。
func NewHandler(store *whitelist.Store, client *Client, logger *slog.Logger) *Handler {
	return &Handler{
		store:  store,
		client: client,
		logger: logger,
	}
}

// isDeviceQuery はメッセージ本文をIMEI照会として扱うかどうかを判定する。
// 10進数字のみで構成され、長さが8〜15文字のものだけを対象とする。
func isDeviceQuery(text string) bool {
	if len(text) < imeiMinLength || len(text) > imeiMaxLength {
		return false
	}
	for _, r := range text {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Handle は1件の受信メッセージを処理し、応答をreplyコールバックで送信する。
// IMEI照会の形式でないメッセージは何もせずfalseを返す。
//
// ホワイトリスト確認は外部への照会より先に行い、未許可ユーザーのメッセージでは
// gatewayへのリクエストを一切発生させない。
func (h *Handler) Handle(ctx context.Context, senderID int64, text string, reply func(string)) bool {
	if !isDeviceQuery(text) {
		return false
	}

	// 同一リクエストのログを紐付けるためのID
	requestID := uuid.New().String()

	member, err := h.store.IsMember(ctx, senderID)
	if err != nil {
		h.logger.Error("ホワイトリストの確認に失敗",
			"tg_id", senderID, "request_id", requestID, "error", err)
		reply(replyFailure)
		return true
	}
	if !member {
		reply(replyAccessDenied)
		return true
	}

	reply(replyChecking)

	payload, err := h.client.CheckIMEI(ctx, text)
	if err != nil {
		h.logger.Error("IMEI照会に失敗",
			"tg_id", senderID, "request_id", requestID, "imei", text, "error", err)
		reply(replyFailure)
		return true
	}

	var data map[string]any
	if err := json.Unmarshal(payload, &data); err != nil {
		h.logger.Error("検証バックエンドのレスポンスが解釈できない",
			"tg_id", senderID, "request_id", requestID, "imei", text, "detail", string(payload))
		reply(replyFailure)
		return true
	}

	if _, ok := data["errors"]; ok {
		h.logger.Error("検証バックエンドがエラーを返した",
			"tg_id", senderID, "request_id", requestID, "imei", text, "detail", string(payload))
		reply(replyFailure)
		return true
	}

	reply(formatProperties(data))
	return true
}

// formatProperties は検証結果のpropertiesマップをキーごとに1行の平文に整形する。
// propertiesが存在しないか空の場合は、無応答にせず明示的にその旨を返す。
func formatProperties(data map[string]any) string {
	props, ok := data["properties"].(map[string]any)
	if !ok || len(props) == 0 {
		return replyNoProperties
	}

	keys := make([]string, 0, len(props))
	for key := range props {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("📱 デバイス情報:\n")
	for _, key := range keys {
		fmt.Fprintf(&b, "%s: %v\n", key, props[key])
	}
	return strings.TrimSuffix(b.String(), "\n")
}
