package generator

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"

	"github.com/shouni/go-briefing-kit/pkg/domain"
)

// CachedImageService は同じプロンプトとアスペクト比の生成結果を再利用する ImageService です。
// 同時に届いた同一リクエストは singleflight で1回の呼び出しにまとめます。
// まとめた生成は呼び出し元のキャンセルから切り離して実行し、各呼び出し元は自分のコンテキストで待機を打ち切ります。
// 失敗はキャッシュしません。
type CachedImageService struct {
	next          ImageService
	cache         *cache.Cache
	ttl           time.Duration
	sharedTimeout time.Duration
	group         singleflight.Group
}

// NewCachedImageService は CachedImageService を生成します。ttl が 0 以下なら DefaultCacheTTL を使います。
func NewCachedImageService(next ImageService, ttl time.Duration) *CachedImageService {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CachedImageService{
		next:          next,
		cache:         cache.New(ttl, DefaultCacheCleanupInterval),
		ttl:           ttl,
		sharedTimeout: DefaultSharedGenerationTimeout,
	}
}

// Generate はキャッシュにあればそのコピーを返し、なければ次の ImageService に委譲します。
func (c *CachedImageService) Generate(ctx context.Context, prompt string, ratio domain.AspectRatio) (*domain.ImageHandle, error) {
	key := cacheKey(prompt, ratio)
	if h, ok := c.lookup(key); ok {
		slog.DebugContext(ctx, "Image cache hit", "key", key[:12])
		return h, nil
	}

	ch := c.group.DoChan(key, func() (interface{}, error) {
		// 待機中に他のゴルーチンが生成を終えている可能性があるため再確認する
		if h, ok := c.lookup(key); ok {
			return h, nil
		}
		// 最初の呼び出し元がキャンセルしても相乗りした呼び出し元には結果を届ける
		sharedCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.sharedTimeout)
		defer cancel()
		h, err := c.next.Generate(sharedCtx, prompt, ratio)
		if err != nil {
			return nil, err
		}
		c.cache.Set(key, h.Clone(), c.ttl)
		return h, nil
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return nil, newGenerationError(prompt, ratio, ctx.Err())
	}
	if res.Err != nil {
		return nil, newGenerationError(prompt, ratio, res.Err)
	}

	h, ok := res.Val.(*domain.ImageHandle)
	if !ok {
		return nil, newGenerationError(prompt, ratio, fmt.Errorf("unexpected return type from singleflight: %T", res.Val))
	}
	if res.Shared {
		slog.DebugContext(ctx, "Image generation shared with concurrent request", "key", key[:12])
	}
	return h.Clone(), nil
}

// Invalidate は指定されたプロンプトのキャッシュを破棄します。強制的に再生成したいときに使います。
func (c *CachedImageService) Invalidate(prompt string, ratio domain.AspectRatio) {
	c.cache.Delete(cacheKey(prompt, ratio))
}

// Len はキャッシュ中のエントリ数を返します。
func (c *CachedImageService) Len() int {
	return c.cache.ItemCount()
}

func (c *CachedImageService) lookup(key string) (*domain.ImageHandle, bool) {
	x, ok := c.cache.Get(key)
	if !ok {
		return nil, false
	}
	h, ok := x.(*domain.ImageHandle)
	if !ok {
		return nil, false
	}
	return h.Clone(), true
}

func cacheKey(prompt string, ratio domain.AspectRatio) string {
	sum := sha256.Sum256([]byte(string(ratio) + "|" + prompt))
	return hex.EncodeToString(sum[:])
}
