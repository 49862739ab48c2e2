package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/nao1215/imeihub/pkg/httpclient"
)

// Client はbotサービスからgatewayサービスを呼び出すAPIクライアント。
// アクセストークンの取得・キャッシュ・再発行を内包し、呼び出し側からは
// トークンのライフサイクルが見えないようにする。
type Client struct {
	// api はgatewayとの通信用HTTPクライアント。
	api *httpclient.Client
	// username はgatewayへのログインユーザー名。
	username string
	// password はgatewayへのログインパスワード。
	password string
	// creds はアクセストークンのキャッシュ。
	creds credentialCache
}

// NewClient は新しいgateway APIクライアントを生成する。
func NewClient(baseURL, username, password string) *Client {
	return &Client{
		api:      httpclient.New(baseURL),
		username: username,
		password: password,
	}
}

// tokenResponse はgatewayのトークン発行エンドポイントのレスポンス。
type tokenResponse struct {
	// AccessToken は発行されたアクセストークン。
	AccessToken string `json:"access_token"`
	// TokenType はトークン種別。
	TokenType string `json:"token_type"`
}

// login はgatewayにログインして新しいアクセストークンを取得する。
func (c *Client) login(ctx context.Context) (string, error) {
	form := url.Values{}
	form.Set("username", c.username)
	form.Set("password", c.password)

	var resp tokenResponse
	if err := c.api.PostForm(ctx, "/token", form, &resp); err != nil {
		return "", fmt.Errorf("トークン発行に失敗: %w", err)
	}
	if resp.AccessToken == "" {
		return "", fmt.Errorf("トークン発行レスポンスにaccess_tokenが含まれていない")
	}
	return resp.AccessToken, nil
}

// deviceRequest はgatewayのIMEI照会エンドポイントのリクエストボディ。
type deviceRequest struct {
	// IMEI は照会するデバイス識別子。
	IMEI string `json:"imei"`
}

// CheckIMEI はIMEIをgateway経由で照会し、検証バックエンドのレスポンスを返す。
//
// キャッシュ済みトークンで1回目の照会を行い、401が返った場合のみトークンを
// 再発行してちょうど1回だけリトライする。2回目の結果は成功・失敗を問わず
// そのまま返し、それ以上のリトライは行わない（最悪レイテンシの上限を保つ）。
func (c *Client) CheckIMEI(ctx context.Context, imei string) (json.RawMessage, error) {
	token := c.creds.get()
	if token == "" {
		var err error
		if token, err = c.creds.renew(ctx, "", c.login); err != nil {
			return nil, err
		}
	}

	payload, err := c.post(ctx, imei, token)
	if httpclient.IsStatus(err, http.StatusUnauthorized) {
		fresh, renewErr := c.creds.renew(ctx, token, c.login)
		if renewErr != nil {
			return nil, renewErr
		}
		return c.post(ctx, imei, fresh)
	}
	return payload, err
}

// post はIMEI照会リクエストを1回だけ実行する。
func (c *Client) post(ctx context.Context, imei, token string) (json.RawMessage, error) {
	var result json.RawMessage
	if err := c.api.PostJSON(ctx, "/imei/", token, deviceRequest{IMEI: imei}, &result); err != nil {
		return nil, err
	}
	return result, nil
}
