// Package relay はTelegram経由のIMEI照会を中継するbotサービスの内部実装を提供する。
//
// 受信メッセージのIMEI形式判定、ホワイトリストによる利用者認可、
// gatewayサービスへの認証付き照会（トークンのキャッシュと透過的な再発行を含む）、
// 照会結果の整形を担当する。gatewayがトークンの有効性を、botが利用者の認可を
// それぞれ検証する二段構成であり、この分離は意図的なもの。
package relay
