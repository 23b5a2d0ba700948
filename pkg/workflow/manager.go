package workflow

import (
	"fmt"
	"log/slog"

	"github.com/shouni/go-briefing-kit/pkg/domain"
	"github.com/shouni/go-briefing-kit/pkg/generator"
	"github.com/shouni/go-briefing-kit/pkg/prompts"
)

// ManagerArgs は Manager の初期化に必要な依存関係です。
type ManagerArgs struct {
	Config Config

	// Schema は任意です。nil の場合は prompts.DefaultSchema を使います。
	Schema *prompts.Schema

	// PanelGenerator は Backend が BackendGemini のときに必須です。
	// gemini-image-kit の画像生成器をそのまま渡せます。
	PanelGenerator generator.PanelGenerator

	// ImageService を指定すると、Backend の設定より優先して基底のサービスとして使います。
	ImageService generator.ImageService
}

// Manager は設定に従って画像生成スタックとコンパイラを組み立て、Studio を払い出します。
type Manager struct {
	cfg      Config
	compiler *prompts.Compiler
	images   generator.ImageService
}

// New は ManagerArgs から Manager を初期化します。
func New(args ManagerArgs) (*Manager, error) {
	base, local, err := initializeBaseService(args)
	if err != nil {
		return nil, err
	}

	return &Manager{
		cfg:      args.Config,
		compiler: prompts.NewCompiler(args.Schema),
		images:   decorate(base, args.Config, local),
	}, nil
}

// Config は Manager の設定を返します。
func (m *Manager) Config() Config {
	return m.cfg
}

// Compiler はプロンプトコンパイラを返します。
func (m *Manager) Compiler() *prompts.Compiler {
	return m.compiler
}

// ImageService は組み立て済みの画像生成サービスを返します。
func (m *Manager) ImageService() generator.ImageService {
	return m.images
}

// NewStudio は deck を操作する Studio を生成します。deck が nil なら空のデッキを作ります。
func (m *Manager) NewStudio(deck *domain.Deck) *Studio {
	if deck == nil {
		deck = domain.NewDeck()
	}
	return NewStudio(deck, m.compiler, m.images,
		WithRequestTimeout(m.cfg.RequestTimeout),
		WithBatchConcurrency(m.cfg.BatchConcurrency),
	)
}

// initializeBaseService は Backend 設定に対応する基底の ImageService を返します。
// local はプロセス内で完結するシミュレーションのときに true になります。
func initializeBaseService(args ManagerArgs) (svc generator.ImageService, local bool, err error) {
	if args.ImageService != nil {
		return args.ImageService, false, nil
	}

	switch args.Config.Backend {
	case "", BackendSimulated:
		return generator.NewSimulatedImageService(), true, nil
	case BackendGemini:
		if args.PanelGenerator == nil {
			return nil, false, fmt.Errorf("backend '%s' には PanelGenerator が必要です", BackendGemini)
		}
		model := args.Config.ImageModel
		if model == "" {
			model = DefaultImageModel
		}
		gemini, err := generator.NewGeminiImageService(args.PanelGenerator, generator.GeminiOptions{
			Model:          model,
			SystemPrompt:   prompts.BuildSystemPrompt(args.Config.StyleSuffix),
			NegativePrompt: prompts.NegativePrompt,
		})
		if err != nil {
			return nil, false, fmt.Errorf("GeminiImageService の初期化に失敗しました: %w", err)
		}
		return gemini, false, nil
	default:
		return nil, false, fmt.Errorf("サポートされていないバックエンド: '%s'。サポートされているのは [%s, %s] です",
			args.Config.Backend, BackendGemini, BackendSimulated)
	}
}

// decorate はレート制限とキャッシュを基底サービスに重ねます。
// レート制限はリモートのバックエンドにだけ掛けます。
// キャッシュは最も外側に置くため、ヒット時はレート制限を通りません。
func decorate(base generator.ImageService, cfg Config, local bool) generator.ImageService {
	svc := base
	rateLimited := !local && cfg.RateInterval > 0
	if rateLimited {
		svc = generator.NewRateLimitedImageService(svc, cfg.RateInterval, cfg.RateBurst)
	}
	if cfg.CacheTTL > 0 {
		svc = generator.NewCachedImageService(svc, cfg.CacheTTL)
	}
	slog.Debug("Image service stack assembled",
		slog.String("backend", cfg.Backend),
		slog.Bool("rate_limited", rateLimited),
		slog.Duration("rate_interval", cfg.RateInterval),
		slog.Duration("cache_ttl", cfg.CacheTTL),
	)
	return svc
}
