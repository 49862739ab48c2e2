package gateway

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config はgatewayサービスの実行時設定。環境変数から読み込む。
type Config struct {
	// Port はサーバーのリッスンポート。
	Port string
	// JWTSecret はアクセストークン署名用の秘密鍵。必須。
	JWTSecret string
	// TokenTTL はアクセストークンの有効期間。
	TokenTTL time.Duration
	// LoginUsername はトークン発行を許可する唯一のユーザー名。
	// 固定のユーザー名・パスワード対は本物の認証基盤の代わりとなる
	// プレースホルダであり、実運用ではIDプロバイダに差し替える前提。
	LoginUsername string
	// LoginPassword はトークン発行を許可するパスワード。
	LoginPassword string
	// IMEICheckURL はIMEI検証バックエンドのベースURL。
	IMEICheckURL string
	// IMEICheckToken はIMEI検証バックエンドの認証トークン。必須。
	IMEICheckToken string
	// IMEICheckLang は検証バックエンドへのAccept-Languageヘッダー値。
	IMEICheckLang string
	// DBPath はホワイトリスト用SQLiteデータベースのパス。
	DBPath string
}

// LoadConfig は環境変数からgatewayサービスの設定を読み込む。
// JWT_SECRETとIMEICHECK_TOKENは必須であり、欠けている場合はエラーを返す。
func LoadConfig() (Config, error) {
	cfg := Config{
		Port:           getEnvOr("PORT", "8080"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		TokenTTL:       24 * time.Hour,
		LoginUsername:  getEnvOr("GATEWAY_USERNAME", "admin"),
		LoginPassword:  getEnvOr("GATEWAY_PASSWORD", "adminpass"),
		IMEICheckURL:   getEnvOr("IMEICHECK_URL", "https://api.imeicheck.net"),
		IMEICheckToken: os.Getenv("IMEICHECK_TOKEN"),
		IMEICheckLang:  getEnvOr("IMEICHECK_LANG", "ru"),
		DBPath:         getEnvOr("DB_PATH", "db.db"),
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("環境変数JWT_SECRETが設定されていない")
	}
	if cfg.IMEICheckToken == "" {
		return Config{}, fmt.Errorf("環境変数IMEICHECK_TOKENが設定されていない")
	}

	if v := os.Getenv("TOKEN_EXPIRE_HOURS"); v != "" {
		hours, err := strconv.Atoi(v)
		if err != nil || hours <= 0 {
			return Config{}, fmt.Errorf("環境変数TOKEN_EXPIRE_HOURSが不正: %q", v)
		}
		cfg.TokenTTL = time.Duration(hours) * time.Hour
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
