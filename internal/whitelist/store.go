// Package whitelist はリレー機能の利用を許可されたTelegramユーザーの
// ホワイトリストを提供する。
//
// gatewayサービスが登録を、botサービスがメンバーシップ確認を行い、
// 両プロセスが同一のSQLiteファイルを共有する。
package whitelist

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

// ErrDuplicate は既に登録済みのTelegram IDを追加しようとした場合のエラー。
var ErrDuplicate = errors.New("whitelist: Telegram IDが既に登録されている")

// スキーマ定義。tg_idの一意制約が重複登録を防ぐ。
const schema = `
CREATE TABLE IF NOT EXISTS tg_users (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    tg_id INTEGER NOT NULL UNIQUE
);
`

// Store はSQLiteに永続化されたホワイトリストへのアクセスを提供する。
type Store struct {
	// db はSQLiteデータベース接続。
	db *sql.DB
}

// Open は指定パスのSQLiteデータベースを開き、スキーマを適用してStoreを生成する。
// スキーマ適用は冪等であり、gatewayとbotの両プロセスが起動時に呼んでも安全。
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("データベース接続に失敗: %w", err)
	}
	return OpenDB(db)
}

// OpenDB は既存のデータベース接続からStoreを生成する。テスト用のインメモリDBにも使用する。
func OpenDB(db *sql.DB) (*Store, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("スキーマの適用に失敗: %w", err)
	}
	return &Store{db: db}, nil
}

// Add はTelegram IDをホワイトリストに追加し、採番された行IDを返す。
// 既に登録済みの場合はErrDuplicateを返す。
func (s *Store) Add(ctx context.Context, tgID int64) (int64, error) {
	result, err := s.db.ExecContext(ctx, "INSERT INTO tg_users (tg_id) VALUES (?)", tgID)
	if err != nil {
		// modernc.org/sqliteは一意制約違反を専用エラー型で公開しないため、
		// メッセージの定型文字列で判定する
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return 0, ErrDuplicate
		}
		return 0, fmt.Errorf("ホワイトリストへの追加に失敗: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("採番されたIDの取得に失敗: %w", err)
	}
	return id, nil
}

// IsMember はTelegram IDがホワイトリストに登録されているかを返す。
func (s *Store) IsMember(ctx context.Context, tgID int64) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, "SELECT 1 FROM tg_users WHERE tg_id = ?", tgID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("ホワイトリストの検索に失敗: %w", err)
	}
	return true, nil
}

// Close はデータベース接続を閉じる。
func (s *Store) Close() error {
	return s.db.Close()
}
