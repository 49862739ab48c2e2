package middleware

import (
	"log"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
)

// Recovery はハンドラ内のパニックを捕捉するGinミドルウェアを返す。
// 捕捉したパニック値とスタックトレースはログに記録し、クライアントには
// パニック内容を含まない500エラーを返す。
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			log.Printf("[PANIC] %s %s from %s: %v\n%s",
				c.Request.Method, c.Request.URL.Path, c.ClientIP(), r, debug.Stack())
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error": "サーバー内部でエラーが発生しました",
			})
		}()
		c.Next()
	}
}
