package gateway

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/nao1215/imeihub/internal/whitelist"
	"github.com/nao1215/imeihub/pkg/middleware"
)

// Server はgatewayサービスのHTTPサーバー。
// アクセストークンの発行・検証と、IMEI検証バックエンドへの中継を担当する。
type Server struct {
	// router はGinのHTTPルーター。
	router *gin.Engine
	// cfg はサービスの実行時設定。
	cfg Config
	// store はTelegramユーザーのホワイトリストストア。
	store *whitelist.Store
	// imeiCheck はIMEI検証バックエンドへのクライアント。
	imeiCheck *imeiCheckClient
}

// NewServer は新しいgatewayサーバーを生成する。
// 環境変数から設定を読み込み、ホワイトリスト用SQLiteのスキーマを初期化する。
func NewServer() (*Server, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("設定の読み込みに失敗: %w", err)
	}

	store, err := whitelist.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("ホワイトリストストアの初期化に失敗: %w", err)
	}

	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(gin.Logger())

	s := &Server{
		router:    router,
		cfg:       cfg,
		store:     store,
		imeiCheck: newIMEICheckClient(cfg.IMEICheckURL, cfg.IMEICheckToken, cfg.IMEICheckLang),
	}
	s.setupRoutes()

	return s, nil
}

// Run はHTTPサーバーを起動する。
func (s *Server) Run() error {
	return s.router.Run(fmt.Sprintf(":%s", s.cfg.Port))
}

// setupRoutes はAPIルーティングを設定する。
// トークン検証はミドルウェアで行い、呼び出し元のホワイトリスト確認は
// botサービス側の責務とする（トークンの有効性と利用者の認可は別の関心事）。
func (s *Server) setupRoutes() {
	// トークン発行エンドポイント（認証不要）
	s.router.POST("/token", s.handleLogin())

	// 認証必須のエンドポイント
	authed := s.router.Group("/")
	authed.Use(middleware.JWTAuth(s.cfg.JWTSecret))
	{
		authed.POST("/imei/", s.handleCheckIMEI())
		authed.POST("/add_tg_user/", s.handleAddTGUser())
	}

	// ヘルスチェック
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "gateway"})
	})
}

// tokenResponse はトークン発行エンドポイントのレスポンス。
type tokenResponse struct {
	// AccessToken は発行されたアクセストークン。
	AccessToken string `json:"access_token"`
	// TokenType はトークン種別。常に "bearer"。
	TokenType string `json:"token_type"`
}

// handleLogin はユーザー名・パスワードを検証してアクセストークンを発行するハンドラを返す。
// 設定された単一のユーザー名・パスワード対のみを受け付ける（認証基盤のプレースホルダ）。
func (s *Server) handleLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		username := c.PostForm("username")
		password := c.PostForm("password")

		if username != s.cfg.LoginUsername || password != s.cfg.LoginPassword {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "ユーザー名またはパスワードが不正です"})
			return
		}

		token, err := middleware.GenerateToken(s.cfg.JWTSecret, username, s.cfg.TokenTTL)
		if err != nil {
			log.Printf("トークン生成エラー: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "トークン生成に失敗しました"})
			return
		}

		c.JSON(http.StatusOK, tokenResponse{
			AccessToken: token,
			TokenType:   "bearer",
		})
	}
}

// deviceRequest はIMEI照会エンドポイントのリクエストボディ。
type deviceRequest struct {
	// IMEI は照会するデバイス識別子。
	IMEI string `json:"imei" binding:"required"`
}

// handleCheckIMEI はIMEIを検証バックエンドに中継するハンドラを返す。
// バックエンドのJSONレスポンスを改変せずそのまま返す。
// バックエンドが空のレスポンスを返した場合は404とする。
// この層ではリトライを行わず、トランスポート障害はそのまま呼び出し元に返す。
func (s *Server) handleCheckIMEI() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req deviceRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "リクエストボディが不正です"})
			return
		}

		payload, err := s.imeiCheck.Check(c.Request.Context(), req.IMEI)
		if err != nil {
			log.Printf("IMEI照会エラー: imei=%s, error=%v", req.IMEI, err)
			c.JSON(http.StatusBadGateway, gin.H{"error": "検証バックエンドとの通信に失敗しました"})
			return
		}

		if isEmptyPayload(payload) {
			c.JSON(http.StatusNotFound, gin.H{"error": "IMEIが見つかりません"})
			return
		}

		c.Data(http.StatusOK, "application/json", payload)
	}
}

// addUserRequest はホワイトリスト登録エンドポイントのリクエストボディ。
type addUserRequest struct {
	// TGID は登録するTelegramユーザーID（数字文字列）。
	TGID string `json:"tg_id" binding:"required,numeric"`
}

// handleAddTGUser はTelegramユーザーをホワイトリストに登録するハンドラを返す。
// 登録済みのIDを再登録しようとした場合は409を返す。
func (s *Server) handleAddTGUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req addUserRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "リクエストボディが不正です"})
			return
		}

		tgID, err := strconv.ParseInt(req.TGID, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "tg_idが数値ではありません"})
			return
		}

		id, err := s.store.Add(c.Request.Context(), tgID)
		if err != nil {
			if errors.Is(err, whitelist.ErrDuplicate) {
				c.JSON(http.StatusConflict, gin.H{"error": "このTelegram IDは登録済みです"})
				return
			}
			log.Printf("ホワイトリスト登録エラー: tg_id=%d, error=%v", tgID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "ユーザー登録に失敗しました"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"id":      id,
			"message": "ユーザーを登録しました",
		})
	}
}
