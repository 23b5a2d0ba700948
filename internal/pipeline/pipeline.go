package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/shouni/go-briefing-kit/internal/brief"
	"github.com/shouni/go-briefing-kit/internal/builder"
	"github.com/shouni/go-briefing-kit/internal/config"
	"github.com/shouni/go-briefing-kit/pkg/asset"
	"github.com/shouni/go-briefing-kit/pkg/domain"
	"github.com/shouni/go-briefing-kit/pkg/generator"
	"github.com/shouni/go-briefing-kit/pkg/prompts"
	"github.com/shouni/go-briefing-kit/pkg/workflow"
)

// ExecuteSchema は、プロンプト変数の一覧を書き出すのだ。
func ExecuteSchema(w io.Writer) error {
	for _, v := range prompts.DefaultSchema().Variables() {
		line := fmt.Sprintf("%-22s %s", v.Name, v.Label)
		if v.Required {
			line += " (required)"
		}
		switch {
		case v.IsEnum():
			line += fmt.Sprintf(" one of: %s", strings.Join(v.Allowed, " | "))
		case len(v.Suggestions) > 0:
			line += fmt.Sprintf(" e.g. %s", strings.Join(v.Suggestions, ", "))
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// ExecuteCompile は、ブリーフを読み込んでコンパイル済みのプロンプトだけを書き出すのだ。
// 画像生成は行わないので、バックエンドはシミュレーションに固定して組み立てるのだよ。
func ExecuteCompile(ctx context.Context, cfg *config.Config, w io.Writer) error {
	b, err := brief.Load(cfg.Options.BriefFile)
	if err != nil {
		return err
	}

	previewCfg := *cfg
	previewCfg.Workflow.Backend = workflow.BackendSimulated
	appCtx, err := builder.BuildAppContext(ctx, &previewCfg, nil)
	if err != nil {
		return err
	}

	prompt, err := appCtx.Studio.Preview(b.VariableSet())
	if err != nil {
		return fmt.Errorf("プロンプトのコンパイルに失敗したのだ: %w", err)
	}
	_, err = fmt.Fprintln(w, prompt)
	return err
}

// ExecuteGenerate は、ブリーフから1枚のスライドを作り、画像を生成して保存するのだ。
func ExecuteGenerate(ctx context.Context, cfg *config.Config, panelGen generator.PanelGenerator) (domain.Slide, error) {
	b, err := brief.Load(cfg.Options.BriefFile)
	if err != nil {
		return domain.Slide{}, err
	}

	appCtx, err := builder.BuildAppContext(ctx, cfg, panelGen)
	if err != nil {
		return domain.Slide{}, err
	}

	// --- Phase 1: スライドの用意 ---
	if err := appCtx.Studio.Do(func(d *domain.Deck) error {
		id := d.AddSlide()
		return d.UpdateSlideContent(id, &b.Title, &b.Body)
	}); err != nil {
		return domain.Slide{}, fmt.Errorf("スライドの作成に失敗したのだ: %w", err)
	}

	// --- Phase 2: 画像生成 ---
	slide, err := appCtx.Studio.GenerateForSelected(ctx, b.VariableSet())
	if err != nil {
		return domain.Slide{}, fmt.Errorf("画像生成に失敗したのだ: %w", err)
	}

	// --- Phase 3: 保存 ---
	if err := writeImage(cfg.Options.OutputFile, slide.Image); err != nil {
		return domain.Slide{}, err
	}

	slog.Info("スライド画像を保存したのだ！",
		"slide_id", slide.ID.String(),
		"title", slide.Title,
		"output", cfg.Options.OutputFile,
		"mime_type", slide.Image.MimeType)
	return slide, nil
}

// ExecuteDeck は、複数スライドのブリーフからデッキを作り、全スライドの画像をまとめて生成するのだ。
// 1枚でも失敗したら、画像は1枚も保存しないのだよ。
func ExecuteDeck(ctx context.Context, cfg *config.Config, panelGen generator.PanelGenerator) ([]domain.Slide, error) {
	d, err := brief.LoadDeck(cfg.Options.BriefFile)
	if err != nil {
		return nil, err
	}

	appCtx, err := builder.BuildAppContext(ctx, cfg, panelGen)
	if err != nil {
		return nil, err
	}

	// --- Phase 1: スライドの用意 ---
	jobs := make([]workflow.Job, len(d.Slides))
	if err := appCtx.Studio.Do(func(deck *domain.Deck) error {
		for i, b := range d.Slides {
			id := deck.AddSlide()
			if err := deck.UpdateSlideContent(id, &b.Title, &b.Body); err != nil {
				return err
			}
			jobs[i] = workflow.Job{SlideID: id, Variables: b.VariableSet()}
		}
		return nil
	}); err != nil {
		return nil, fmt.Errorf("スライドの作成に失敗したのだ: %w", err)
	}

	// --- Phase 2: 画像生成 ---
	slides, err := appCtx.Studio.GenerateBatch(ctx, jobs)
	if err != nil {
		return nil, fmt.Errorf("画像生成に失敗したのだ: %w", err)
	}

	// --- Phase 3: 保存 ---
	if err := saveDeckImages(cfg.Options.OutputDir, slides); err != nil {
		return nil, err
	}

	slog.Info("デッキの画像をすべて保存したのだ！", "count", len(slides), "output_dir", cfg.Options.OutputDir)
	return slides, nil
}

// saveDeckImages は、全スライドの画像を一時ディレクトリに書き出してから outDir に移すのだ。
// 書き出しに1枚でも失敗したら、outDir には何も置かないのだよ。
// outDir に残っている前回の slide_N.png は、今回のデッキに置き換えるのだ。
func saveDeckImages(outDir string, slides []domain.Slide) (err error) {
	parent := filepath.Dir(filepath.Clean(outDir))
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return fmt.Errorf("出力ディレクトリ '%s' の作成に失敗したのだ: %w", parent, err)
	}
	stage, err := os.MkdirTemp(parent, ".briefing-stage-*")
	if err != nil {
		return fmt.Errorf("一時ディレクトリの作成に失敗したのだ: %w", err)
	}
	defer os.RemoveAll(stage)

	names := make([]string, len(slides))
	for i, slide := range slides {
		path, err := asset.SlideImagePath(stage, i+1)
		if err != nil {
			return err
		}
		if err := writeImage(path, slide.Image); err != nil {
			return err
		}
		names[i] = filepath.Base(path)
		slog.Debug("スライド画像を書き出したのだ", "slide_id", slide.ID.String(), "file", names[i])
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("出力ディレクトリ '%s' の作成に失敗したのだ: %w", outDir, err)
	}
	if err := removeStaleSlides(outDir); err != nil {
		return err
	}

	var moved []string
	defer func() {
		if err == nil {
			return
		}
		for _, p := range moved {
			_ = os.Remove(p)
		}
	}()
	for _, name := range names {
		dst := filepath.Join(outDir, name)
		if err := os.Rename(filepath.Join(stage, name), dst); err != nil {
			return fmt.Errorf("画像ファイル '%s' の配置に失敗したのだ: %w", dst, err)
		}
		moved = append(moved, dst)
	}
	return nil
}

// removeStaleSlides は、dir にある slide_N.png を消すのだ。それ以外のファイルには触らないのだよ。
func removeStaleSlides(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("出力ディレクトリ '%s' を読めないのだ: %w", dir, err)
	}
	for _, e := range entries {
		if e.IsDir() || !asset.SlideFileRegex.MatchString(e.Name()) {
			continue
		}
		if err := os.Remove(filepath.Join(dir, e.Name())); err != nil {
			return fmt.Errorf("古いスライド画像 '%s' の削除に失敗したのだ: %w", e.Name(), err)
		}
	}
	return nil
}

// writeImage は画像のバイト列を path に書き出すのだ。必要ならディレクトリも作るのだよ。
func writeImage(path string, img *domain.ImageHandle) error {
	if img == nil || len(img.Data) == 0 {
		return fmt.Errorf("保存できる画像データがないのだ")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("出力ディレクトリ '%s' の作成に失敗したのだ: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, img.Data, 0o644); err != nil {
		return fmt.Errorf("画像ファイル '%s' の書き込みに失敗したのだ: %w", path, err)
	}
	return nil
}
