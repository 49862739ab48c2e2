package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"

	"github.com/nao1215/imeihub/pkg/httpclient"
)

// imeiCheckServiceID は検証バックエンドに指定するチェック種別のID。
const imeiCheckServiceID = 12

// imeiCheckClient はIMEI検証バックエンドへの送信クライアント。
type imeiCheckClient struct {
	// client はバックエンドとの通信用HTTPクライアント。
	client *httpclient.Client
	// token はバックエンドの認証トークン。
	token string
}

// newIMEICheckClient は新しいIMEI検証バックエンドクライアントを生成する。
// langはバックエンドに送るAccept-Languageヘッダー値。
func newIMEICheckClient(baseURL, token, lang string) *imeiCheckClient {
	return &imeiCheckClient{
		client: httpclient.New(baseURL, httpclient.WithHeader("Accept-Language", lang)),
		token:  token,
	}
}

// imeiCheckRequest は検証バックエンドへのリクエストボディ。
type imeiCheckRequest struct {
	// DeviceID は照会するIMEI。
	DeviceID string `json:"deviceId"`
	// ServiceID はチェック種別のID。
	ServiceID int `json:"serviceId"`
}

// Check はIMEIを検証バックエンドに照会し、レスポンスJSONをそのまま返す。
// バックエンドはエラーもJSONボディ（errorsキー）で表現するため、
// ステータスコードが2xx以外でもボディが有効なJSONであればそれを返す。
// エラーを返すのはトランスポート障害かボディが解釈不能な場合のみ。
func (c *imeiCheckClient) Check(ctx context.Context, imei string) (json.RawMessage, error) {
	var result json.RawMessage
	err := c.client.PostJSON(ctx, "/v1/checks", c.token, imeiCheckRequest{
		DeviceID:  imei,
		ServiceID: imeiCheckServiceID,
	}, &result)
	if err != nil {
		var statusErr *httpclient.StatusError
		if errors.As(err, &statusErr) && len(statusErr.Body) > 0 && json.Valid(statusErr.Body) {
			return json.RawMessage(statusErr.Body), nil
		}
		return nil, err
	}
	return result, nil
}

// isEmptyPayload はバックエンドのレスポンスが空（情報なし）かどうかを判定する。
// null、false、0、空文字列、空のオブジェクト・配列を「情報なし」として扱う。
func isEmptyPayload(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return true
	}
	var v any
	if err := json.Unmarshal(trimmed, &v); err != nil {
		return false
	}
	switch val := v.(type) {
	case nil:
		return true
	case bool:
		return !val
	case float64:
		return val == 0
	case string:
		return val == ""
	case map[string]any:
		return len(val) == 0
	case []any:
		return len(val) == 0
	}
	return false
}
