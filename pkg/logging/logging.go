// Package logging はbotサービスで使用する構造化ロガーを提供する。
//
// 障害調査に必要な属性（呼び出し元ID、リクエストID等）を
// キー・バリュー形式で出力するため、slogのJSONハンドラを使用する。
package logging

import (
	"io"
	"log/slog"
	"os"
)

// New は指定されたレベルのJSON形式slogロガーを生成する。
// レベル文字列が不正な場合はinfoレベルにフォールバックする。
func New(level string) *slog.Logger {
	lvl := new(slog.LevelVar)
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl.Set(slog.LevelInfo)
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	return slog.New(handler)
}

// Discard は出力を全て破棄するロガーを返す。テスト用。
func Discard() *slog.Logger {
	handler := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError})
	return slog.New(handler)
}
