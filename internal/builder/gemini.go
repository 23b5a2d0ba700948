package builder

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	imagekit "github.com/shouni/gemini-image-kit/generator"
	"github.com/shouni/gemini-image-kit/ports"
	"github.com/shouni/go-gemini-client/gemini"
	"github.com/shouni/go-http-kit/pkg/httpkit"
	"google.golang.org/genai"

	"github.com/shouni/go-briefing-kit/internal/config"
	"github.com/shouni/go-briefing-kit/pkg/generator"
)

const (
	defaultGeminiTemperature = float32(0.2)
	// 参照画像のキャッシュ設定なのだ。スライド生成では参照画像を送らないので小さめにしておくのだ
	referenceCacheExpiration = 5 * time.Minute
	referenceCacheCleanup    = 15 * time.Minute
)

var _ generator.PanelGenerator = (*imagekit.GeminiGenerator)(nil)

// BuildPanelGenerator は API キーから Gemini の画像生成器を組み立てるのだ。
// ネットワークに出るのは生成を呼んだときだけなのだよ。
func BuildPanelGenerator(ctx context.Context, cfg *config.Config) (generator.PanelGenerator, error) {
	if cfg.Workflow.GeminiAPIKey == "" {
		return nil, fmt.Errorf("環境変数 GEMINI_API_KEY が設定されていません。Gemini バックエンドには必須なのだ")
	}

	aiClient, err := initializeAIClient(ctx, cfg.Workflow.GeminiAPIKey)
	if err != nil {
		return nil, err
	}

	core, err := imagekit.NewGeminiImageCore(
		aiClient,
		localFileReader{},
		httpkit.New(config.DefaultHTTPTimeout),
		cache.New(referenceCacheExpiration, referenceCacheCleanup),
		referenceCacheExpiration,
		false,
	)
	if err != nil {
		return nil, fmt.Errorf("GeminiImageCore の初期化に失敗したのだ: %w", err)
	}

	gen, err := imagekit.NewGeminiGenerator(core)
	if err != nil {
		return nil, fmt.Errorf("GeminiGenerator の初期化に失敗したのだ: %w", err)
	}
	return gen, nil
}

// initializeAIClient は gemini クライアントを初期化するのだ。
func initializeAIClient(ctx context.Context, apiKey string) (gemini.GenerativeModel, error) {
	aiClient, err := gemini.NewClient(ctx, gemini.Config{
		APIKey:      apiKey,
		Temperature: genai.Ptr(defaultGeminiTemperature),
	})
	if err != nil {
		return nil, fmt.Errorf("AIクライアントの初期化に失敗したのだ: %w", err)
	}
	return aiClient, nil
}

// localFileReader はローカルの参照画像を開く ports.ContentReader なのだ。
type localFileReader struct{}

var _ ports.ContentReader = localFileReader{}

func (localFileReader) Open(_ context.Context, uri string) (io.ReadCloser, error) {
	path := strings.TrimPrefix(uri, "file://")
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("参照画像 '%s' を開けないのだ: %w", uri, err)
	}
	return f, nil
}
