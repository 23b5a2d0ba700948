package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shouni/go-utils/envutil"

	"github.com/shouni/go-briefing-kit/pkg/workflow"
)

// デフォルト値の定義なのだ
const (
	DefaultBriefFile  = "examples/dragon.yaml" // 入力ブリーフのデフォルトパスなのだ
	DefaultOutputFile = "output/slide.png"     // 生成画像のデフォルト保存先なのだ
	DefaultOutputDir  = "output/slides"        // deck コマンドの画像保存先なのだ

	DefaultHTTPTimeout = 30 * time.Second // 参照画像を取りに行く HTTP クライアントのタイムアウトなのだ
)

// Config はアプリケーション全体の環境設定（APIキーや生成スタックの設定）を保持する構造体なのだ。
type Config struct {
	Workflow workflow.Config

	Options GenerateOptions
}

// GenerateOptions は CLI フラグから渡される実行時のパラメータなのだ。
type GenerateOptions struct {
	BriefFile  string // --brief-file
	OutputFile string // --output-file
	OutputDir  string // --output-dir
	Backend    string // --backend
	ImageModel string // --image-model
}

// LoadConfig は環境変数から設定を読み込み、構造体を返すのだ！
// 数値や期間の書式が壊れているときは、黙ってデフォルトに戻さずにエラーにするのだ。
func LoadConfig() (*Config, error) {
	def := workflow.DefaultConfig()

	cfg := &Config{
		Workflow: workflow.Config{
			GeminiAPIKey: envutil.GetEnv("GEMINI_API_KEY", ""),
			ImageModel:   envutil.GetEnv("IMAGE_GEMINI_MODEL", def.ImageModel),
			Backend:      strings.ToLower(envutil.GetEnv("IMAGE_BACKEND", def.Backend)),
			StyleSuffix:  envutil.GetEnv("IMAGE_STYLE_SUFFIX", def.StyleSuffix),
		},
	}

	var err error
	w := &cfg.Workflow
	if w.RateInterval, err = durationEnv("IMAGE_RATE_INTERVAL", def.RateInterval); err != nil {
		return nil, err
	}
	if w.CacheTTL, err = durationEnv("IMAGE_CACHE_TTL", def.CacheTTL); err != nil {
		return nil, err
	}
	if w.RequestTimeout, err = durationEnv("IMAGE_REQUEST_TIMEOUT", def.RequestTimeout); err != nil {
		return nil, err
	}
	if w.RateBurst, err = intEnv("IMAGE_RATE_BURST", def.RateBurst); err != nil {
		return nil, err
	}
	if w.BatchConcurrency, err = intEnv("IMAGE_BATCH_CONCURRENCY", def.BatchConcurrency); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyOptions は CLI フラグの値を設定に反映するのだ。空のフラグは環境変数の値を残すのだよ。
func (c *Config) ApplyOptions(opts GenerateOptions) {
	c.Options = opts
	if opts.Backend != "" {
		c.Workflow.Backend = strings.ToLower(opts.Backend)
	}
	if opts.ImageModel != "" {
		c.Workflow.ImageModel = opts.ImageModel
	}
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	raw := envutil.GetEnv(key, "")
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("環境変数 %s の期間 '%s' を解釈できないのだ: %w", key, raw, err)
	}
	return d, nil
}

func intEnv(key string, fallback int) (int, error) {
	raw := envutil.GetEnv(key, "")
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("環境変数 %s の数値 '%s' を解釈できないのだ: %w", key, raw, err)
	}
	return n, nil
}
