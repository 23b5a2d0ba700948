package workflow

import (
	"time"

	"github.com/shouni/go-briefing-kit/pkg/generator"
)

// バックエンドの種類です。
const (
	BackendSimulated = "simulated"
	BackendGemini    = "gemini"
)

// デフォルト値の定義です。
const (
	DefaultImageModel       = "gemini-3-pro-image-preview"
	DefaultRateInterval     = 10 * time.Second
	DefaultRequestTimeout   = 5 * time.Minute
	DefaultBatchConcurrency = 2
	DefaultStyleSuffix      = "cinematic key visual, concept art quality, rich detail, coherent lighting, high resolution"
)

// Config は Studio と画像生成スタックを動作させるための基本設定です。
type Config struct {
	// --- AI Model Settings ---
	GeminiAPIKey string
	ImageModel   string

	// --- Generation Settings ---
	Backend      string // BackendSimulated または BackendGemini
	StyleSuffix  string // システムプロンプトに加えるハウススタイル（プロンプト本体は変更しない）
	RateInterval time.Duration
	RateBurst    int
	CacheTTL     time.Duration // 0 以下ならキャッシュしない

	// --- Timeout & Concurrency ---
	RequestTimeout   time.Duration
	BatchConcurrency int
}

// DefaultConfig は推奨されるデフォルト設定を返すヘルパー関数です。
func DefaultConfig() Config {
	return Config{
		ImageModel:       DefaultImageModel,
		Backend:          BackendSimulated,
		StyleSuffix:      DefaultStyleSuffix,
		RateInterval:     DefaultRateInterval,
		RateBurst:        generator.DefaultRateBurst,
		CacheTTL:         generator.DefaultCacheTTL,
		RequestTimeout:   DefaultRequestTimeout,
		BatchConcurrency: DefaultBatchConcurrency,
	}
}
