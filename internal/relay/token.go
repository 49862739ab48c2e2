package relay

import (
	"context"
	"sync"
)

// credentialCache はgatewayから取得したアクセストークンのプロセス内キャッシュ。
// 保持するトークンは高々1つで、更新時は丸ごと置き換える。
// ミューテックスは更新操作のみを直列化し、期限内のリクエストは並行して進められる。
type credentialCache struct {
	// mu はトークン更新を直列化するミューテックス。
	mu sync.Mutex
	// token はキャッシュ中のアクセストークン。空文字列は未取得または無効化済みを表す。
	token string
}

// get はキャッシュ中のトークンを返す。未取得の場合は空文字列。
func (c *credentialCache) get() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

// renew はトークンを再発行してキャッシュを置き換える。
// staleには呼び出し元が401を観測した時点のトークンを渡す。ロック取得後に
// キャッシュが既にstaleと異なるトークンを保持していれば、他の呼び出しが
// 更新を済ませているため再発行せずそれを返す。これにより同時に複数の
// リクエストが期限切れを観測しても、発行呼び出しはシステム全体で1回に抑えられる。
// 発行自体が失敗した場合はキャッシュを空にし、次の呼び出しが壊れたトークンを
// 使い回さず必ず再発行を試みるようにする。
func (c *credentialCache) renew(ctx context.Context, stale string, issue func(context.Context) (string, error)) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && c.token != stale {
		return c.token, nil
	}

	token, err := issue(ctx)
	if err != nil {
		c.token = ""
		return "", err
	}
	c.token = token
	return token, nil
}
