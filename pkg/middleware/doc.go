// Package middleware はGinベースのHTTP APIで使用する共通ミドルウェアを提供する。
//
// アクセストークンの発行・検証とパニックリカバリなど、
// gatewayサービスのHTTP層で共通して使用する処理を含む。
package middleware
