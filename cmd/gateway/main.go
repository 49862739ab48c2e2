// gatewayサービスのエントリポイント。
// アクセストークンの発行・検証、IMEI検証バックエンドへの中継、
// ホワイトリスト登録APIを担当する。外部からアクセス可能な唯一のHTTPサービス。
package main

import (
	"log"

	"github.com/nao1215/imeihub/internal/gateway"
)

func main() {
	server, err := gateway.NewServer()
	if err != nil {
		log.Fatalf("gatewayサーバーの初期化に失敗: %v", err)
	}

	log.Println("gatewayサービスを起動します")
	if err := server.Run(); err != nil {
		log.Fatalf("gatewayサービスの起動に失敗: %v", err)
	}
}
