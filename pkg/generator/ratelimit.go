package generator

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"github.com/shouni/go-briefing-kit/pkg/domain"
)

// RateLimitedImageService はバックエンドへの呼び出し間隔を制限する ImageService です。
type RateLimitedImageService struct {
	next    ImageService
	limiter *rate.Limiter
}

// NewRateLimitedImageService は interval ごとに1回（バースト burst）まで呼び出しを許可します。
// interval が 0 以下なら制限しません。
func NewRateLimitedImageService(next ImageService, interval time.Duration, burst int) *RateLimitedImageService {
	if burst <= 0 {
		burst = DefaultRateBurst
	}
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &RateLimitedImageService{
		next:    next,
		limiter: rate.NewLimiter(limit, burst),
	}
}

// Generate は自分の番が来るまで待機してから次の ImageService を呼び出します。
// 待機中にコンテキストが終了した場合は *GenerationError を返します。
func (r *RateLimitedImageService) Generate(ctx context.Context, prompt string, ratio domain.AspectRatio) (*domain.ImageHandle, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, newGenerationError(prompt, ratio, err)
	}
	h, err := r.next.Generate(ctx, prompt, ratio)
	if err != nil {
		return nil, newGenerationError(prompt, ratio, err)
	}
	return h, nil
}
