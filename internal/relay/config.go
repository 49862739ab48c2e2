package relay

import (
	"fmt"
	"os"
)

// Config はbotサービスの実行時設定。環境変数から読み込む。
type Config struct {
	// TelegramToken はTelegram Bot APIのトークン。必須。
	TelegramToken string
	// GatewayURL はgatewayサービスのベースURL。
	GatewayURL string
	// GatewayUsername はgatewayへのログインユーザー名。
	GatewayUsername string
	// GatewayPassword はgatewayへのログインパスワード。
	GatewayPassword string
	// DBPath はホワイトリスト用SQLiteデータベースのパス。gatewayと同一ファイルを共有する。
	DBPath string
	// LogLevel は構造化ログの出力レベル。
	LogLevel string
}

// LoadConfig は環境変数からbotサービスの設定を読み込む。
// TELEGRAM_BOT_TOKENは必須であり、欠けている場合はエラーを返す。
func LoadConfig() (Config, error) {
	cfg := Config{
		TelegramToken:   os.Getenv("TELEGRAM_BOT_TOKEN"),
		GatewayURL:      getEnvOr("GATEWAY_URL", "http://localhost:8080"),
		GatewayUsername: getEnvOr("GATEWAY_USERNAME", "admin"),
		GatewayPassword: getEnvOr("GATEWAY_PASSWORD", "adminpass"),
		DBPath:          getEnvOr("DB_PATH", "db.db"),
		LogLevel:        getEnvOr("LOG_LEVEL", "info"),
	}

	if cfg.TelegramToken == "" {
		return Config{}, fmt.Errorf("環境変数TELEGRAM_BOT_TOKENが設定されていない")
	}

	return cfg, nil
}

// getEnvOr は環境変数を取得し、設定されていない場合はデフォルト値を返す。
func getEnvOr(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}
