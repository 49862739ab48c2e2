package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

// TestRecovery はRecoveryミドルウェアを検証する。
func TestRecovery(t *testing.T) {
	t.Parallel()

	// newRecoveredRouter はRecoveryを適用し、照会ハンドラがパニックする
	// ルーターを生成する。
	newRecoveredRouter := func(panicValue any) *gin.Engine {
		router := gin.New()
		router.Use(Recovery())
		router.POST("/imei/", func(_ *gin.Context) {
			panic(panicValue)
		})
		router.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})
		return router
	}

	t.Run("ハンドラのパニックが500のJSONエラーに変換されること", func(t *testing.T) {
		t.Parallel()

		router := newRecoveredRouter("バックエンドクライアントがnil")

		req := httptest.NewRequest(http.MethodPost, "/imei/", strings.NewReader(`{"imei":"123456789012345"}`))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusInternalServerError {
			t.Fatalf("ステータスコード = %d, want %d", w.Code, http.StatusInternalServerError)
		}

		var body map[string]string
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("レスポンスボディのパースに失敗: %v", err)
		}
		if body["error"] == "" {
			t.Error("errorフィールドが空")
		}
		// パニック値の内容がレスポンスに露出しないこと
		if strings.Contains(w.Body.String(), "バックエンドクライアント") {
			t.Errorf("パニック値がレスポンスに露出: %s", w.Body.String())
		}
	})

	t.Run("文字列以外のパニック値でも500が返ること", func(t *testing.T) {
		t.Parallel()

		router := newRecoveredRouter(http.ErrAbortHandler)

		req := httptest.NewRequest(http.MethodPost, "/imei/", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusInternalServerError {
			t.Errorf("ステータスコード = %d, want %d", w.Code, http.StatusInternalServerError)
		}
	})

	t.Run("パニック後も同じルーターが別のリクエストを処理できること", func(t *testing.T) {
		t.Parallel()

		router := newRecoveredRouter("1回目のリクエストで発生するパニック")

		req := httptest.NewRequest(http.MethodPost, "/imei/", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if w.Code != http.StatusInternalServerError {
			t.Fatalf("パニック時のステータスコード = %d, want %d", w.Code, http.StatusInternalServerError)
		}

		req = httptest.NewRequest(http.MethodGet, "/health", nil)
		w = httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Errorf("回復後のステータスコード = %d, want %d", w.Code, http.StatusOK)
		}
	})

	t.Run("パニックしないハンドラには影響しないこと", func(t *testing.T) {
		t.Parallel()

		router := newRecoveredRouter("未使用のパニック値")

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("ステータスコード = %d, want %d", w.Code, http.StatusOK)
		}

		var body map[string]string
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("レスポンスボディのパースに失敗: %v", err)
		}
		if body["status"] != "ok" {
			t.Errorf("status = %q, want %q", body["status"], "ok")
		}
	})
}
