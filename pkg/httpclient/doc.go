// Package httpclient は外部サービスとのHTTP通信を行うクライアントを提供する。
//
// botサービスからgatewayサービスへの呼び出しと、gatewayサービスから
// IMEI検証バックエンドへの呼び出しの両方で使用し、タイムアウト・
// ベアラートークン付与・エラー処理のパターンを統一する。
package httpclient
