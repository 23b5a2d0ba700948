package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/shouni/go-briefing-kit/internal/config"
	"github.com/shouni/go-briefing-kit/internal/pipeline"
)

// generateCmd は、ブリーフから1枚のスライドを作り、16:9 の画像を生成して保存するのだ。
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "ブリーフからスライド画像を生成するのだ。",
	Long: `ブリーフ YAML の変数をプロンプトにコンパイルし、設定されたバックエンドで画像を生成するのだ。
生成した画像は --output-file に保存するのだよ。`,
	Args: cobra.NoArgs,
	RunE: generateCommand,
}

func init() {
	generateCmd.Flags().StringVarP(&opts.OutputFile, "output-file", "o", config.DefaultOutputFile, "生成画像の保存パスなのだ。")
}

func generateCommand(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	slog.Info("スライド画像の生成を起動するのだ！",
		"backend", cfg.Workflow.Backend,
		"image_model", cfg.Workflow.ImageModel,
		"brief", cfg.Options.BriefFile,
		"output", cfg.Options.OutputFile)

	// nil を渡すと、Gemini バックエンドのときは API キーから生成器を組み立てるのだ
	if _, err := pipeline.ExecuteGenerate(ctx, cfg, nil); err != nil {
		return fmt.Errorf("パイプライン実行中にエラーが発生したのだ: %w", err)
	}

	slog.Info("すべての生成工程が完了したのだ！")
	return nil
}
