// Package gateway はIMEI検証の中継を行うgatewayサービスの内部実装を提供する。
//
// アクセストークンの発行と検証、IMEI検証バックエンドへの認証付き中継、
// Telegramユーザーのホワイトリスト登録を担当する。
// トークンの有効性のみを検証し、利用者単位の認可（ホワイトリスト確認）は
// botサービス側に委ねる。この分離により、トークンが有効かという問いと
// 利用者が許可されているかという問いを独立して検証できる。
package gateway
