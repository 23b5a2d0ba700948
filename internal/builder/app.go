package builder

import (
	"context"
	"fmt"

	"github.com/shouni/go-briefing-kit/internal/config"
	"github.com/shouni/go-briefing-kit/pkg/domain"
	"github.com/shouni/go-briefing-kit/pkg/generator"
	"github.com/shouni/go-briefing-kit/pkg/workflow"
)

// AppContext は、アプリケーション実行に必要な共通コンテキストを保持するのだ。
// これを pipeline の各関数に渡すことで、依存関係の注入を簡素化するのだよ。
type AppContext struct {
	Config  *config.Config         // 環境変数と CLI フラグをまとめた設定なのだ
	Options config.GenerateOptions // CLI から渡された実行時の設定なのだ
	Manager *workflow.Manager      // コンパイラと画像生成スタックを束ねたものなのだ
	Deck    *domain.Deck           // このプロセスで編集するデッキなのだ
	Studio  *workflow.Studio       // Deck を操作する窓口なのだ
}

// BuildAppContext は設定から Manager と Studio を組み立てるのだ。
// panelGen は Gemini バックエンドのときだけ使われるのだ。
// nil なら API キーから gemini-image-kit の生成器を組み立てるのだよ。
func BuildAppContext(ctx context.Context, cfg *config.Config, panelGen generator.PanelGenerator) (*AppContext, error) {
	if cfg.Workflow.Backend == workflow.BackendGemini && panelGen == nil {
		gen, err := BuildPanelGenerator(ctx, cfg)
		if err != nil {
			return nil, err
		}
		panelGen = gen
	}

	mgr, err := workflow.New(workflow.ManagerArgs{
		Config:         cfg.Workflow,
		PanelGenerator: panelGen,
	})
	if err != nil {
		return nil, fmt.Errorf("ワークフローの初期化に失敗したのだ: %w", err)
	}

	deck := domain.NewDeck()
	return &AppContext{
		Config:  cfg,
		Options: cfg.Options,
		Manager: mgr,
		Deck:    deck,
		Studio:  mgr.NewStudio(deck),
	}, nil
}
