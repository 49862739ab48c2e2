package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// defaultTimeout は外部サービスへのリクエストのデフォルトタイムアウト。
// 応答しないバックエンドで呼び出し側が無期限に待つことを防ぐ。
const defaultTimeout = 30 * time.Second

// Client は外部サービス通信用のHTTPクライアント。
// ベースURL、タイムアウト、毎リクエストに付与する固定ヘッダーを保持する。
type Client struct {
	// httpClient は内部で使用するHTTPクライアント。
	httpClient *http.Client
	// baseURL は接続先サービスのベースURL。
	baseURL string
	// header は毎リクエストに付与する固定ヘッダー。
	header http.Header
}

// Option はClientの生成オプション。
type Option func(*Client)

// WithTimeout はリクエストのタイムアウトを設定する。
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithHeader は毎リクエストに付与する固定ヘッダーを追加する。
// 検証バックエンドのAccept-Languageなど、接続先ごとの既定ヘッダーに使用する。
func WithHeader(key, value string) Option {
	return func(c *Client) {
		c.header.Set(key, value)
	}
}

// New は新しい外部サービス通信用HTTPクライアントを生成する。
// baseURLには接続先サービスのベースURL（例: "http://localhost:8080"）を指定する。
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		baseURL: strings.TrimSuffix(baseURL, "/"),
		header:  make(http.Header),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// StatusError は2xx以外のHTTPレスポンスを表すエラー。
// 呼び出し側がステータスコードで分岐（401での再ログイン等）できるよう、
// コードとレスポンスボディを保持する。
type StatusError struct {
	// StatusCode はHTTPステータスコード。
	StatusCode int
	// Body はレスポンスボディ。
	Body []byte
}

// Error はerrorインターフェースを実装する。
func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTPエラー: status=%d, body=%s", e.StatusCode, string(e.Body))
}

// IsStatus はエラーが指定したステータスコードのStatusErrorかどうかを判定する。
func IsStatus(err error, code int) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr) && statusErr.StatusCode == code
}

// PostJSON は指定パスにJSONボディでPOSTリクエストを送信する。
// bearerが空でない場合、Authorizationヘッダーにベアラートークンとして付与する。
// レスポンスボディをresultにデシリアライズする。
func (c *Client) PostJSON(ctx context.Context, path, bearer string, body any, result any) error {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("リクエストボディのシリアライズに失敗: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	return c.do(ctx, path, bodyReader, "application/json", bearer, result)
}

// PostForm は指定パスにフォームエンコードされたボディでPOSTリクエストを送信する。
// トークン発行エンドポイントのようにform-urlencodedを要求するAPIに使用する。
// レスポンスボディをresultにデシリアライズする。
func (c *Client) PostForm(ctx context.Context, path string, form url.Values, result any) error {
	return c.do(ctx, path, strings.NewReader(form.Encode()), "application/x-www-form-urlencoded", "", result)
}

// do はPOSTリクエストを実行する共通処理。
// 2xx以外のステータスはStatusErrorとして返す。
func (c *Client) do(ctx context.Context, path string, bodyReader io.Reader, contentType, bearer string, result any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("HTTPリクエストの作成に失敗: %w", err)
	}

	for key, values := range c.header {
		for _, v := range values {
			req.Header.Set(key, v)
		}
	}
	req.Header.Set("Content-Type", contentType)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTPリクエストの送信に失敗: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("レスポンスボディの読み取りに失敗: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{StatusCode: resp.StatusCode, Body: respBody}
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("レスポンスボディのデシリアライズに失敗: %w", err)
		}
	}
	return nil
}
