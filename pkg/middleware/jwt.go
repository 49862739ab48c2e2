package middleware

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Claims はアクセストークンのクレーム（ペイロード）を表す。
// サブジェクト（ログインユーザー名）と有効期限のみを保持する。
type Claims struct {
	jwt.RegisteredClaims
}

// tokenIssuer はトークンのissクレームに設定する発行者名。
const tokenIssuer = "imeihub-gateway"

// GenerateToken はサブジェクトと有効期間からHS256署名付きアクセストークンを生成する。
// gatewayサービスがログイン成功後に呼び出す。
// 発行済みトークンはサーバー側に状態を持たないため、有効期限が切れるまで失効できない。
func GenerateToken(secret, subject string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("トークンの署名に失敗: %w", err)
	}
	return signed, nil
}

// ParseToken はアクセストークンの署名と有効期限を検証し、クレームを返す。
// 署名不一致、形式不正、有効期限切れのいずれもエラーとなる。
func ParseToken(secret, tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(_ *jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("トークンの検証に失敗: %w", err)
	}
	if !token.Valid || claims.Subject == "" {
		return nil, fmt.Errorf("トークンにサブジェクトが含まれていない")
	}
	return claims, nil
}

// JWTAuth はアクセストークンを検証するGinミドルウェアを返す。
// 検証に成功した場合、コンテキストに "subject" を設定する。
func JWTAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Authorizationヘッダーが必要です",
			})
			return
		}

		tokenString, found := strings.CutPrefix(authHeader, "Bearer ")
		if !found {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Bearer トークン形式が不正です",
			})
			return
		}

		claims, err := ParseToken(secret, tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "トークンが無効です",
			})
			return
		}

		c.Set("subject", claims.Subject)
		c.Next()
	}
}

// GetSubject はGinコンテキストから認証済みサブジェクト（ユーザー名）を取得する。
// JWTAuthミドルウェアが事前に適用されている必要がある。
func GetSubject(c *gin.Context) string {
	subject, _ := c.Get("subject")
	if s, ok := subject.(string); ok {
		return s
	}
	return ""
}
