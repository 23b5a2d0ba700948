package generator

import "time"

const (
	// DefaultCacheTTL は生成済み画像をキャッシュに保持する既定の時間です。
	DefaultCacheTTL = 1 * time.Hour
	// DefaultCacheCleanupInterval は期限切れエントリを掃除する間隔です。
	DefaultCacheCleanupInterval = 15 * time.Minute
	// DefaultSharedGenerationTimeout は singleflight でまとめた生成1回あたりの上限時間です。
	DefaultSharedGenerationTimeout = 5 * time.Minute
	// DefaultRateBurst はレートリミッターのバースト数です。
	DefaultRateBurst = 2
)
