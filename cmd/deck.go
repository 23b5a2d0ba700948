package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/shouni/go-briefing-kit/internal/config"
	"github.com/shouni/go-briefing-kit/internal/pipeline"
)

// deckCmd は、複数スライドのブリーフから全スライドの画像をまとめて生成するのだ。
var deckCmd = &cobra.Command{
	Use:   "deck",
	Short: "複数スライドのブリーフから画像をまとめて生成するのだ。",
	Long: `ブリーフ YAML の slides を順にデッキへ追加し、すべての画像を並列に生成するのだ。
1枚でも失敗したら何も保存しないのだよ。画像は --output-dir に slide_1.png から順に保存するのだ。
--output-dir に前回の slide_N.png があれば、今回のデッキで置き換えるのだ。`,
	Args: cobra.NoArgs,
	RunE: deckCommand,
}

func init() {
	deckCmd.Flags().StringVar(&opts.OutputDir, "output-dir", config.DefaultOutputDir, "スライド画像を保存するディレクトリなのだ。")
}

func deckCommand(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	slog.Info("デッキの一括生成を起動するのだ！",
		"backend", cfg.Workflow.Backend,
		"image_model", cfg.Workflow.ImageModel,
		"brief", cfg.Options.BriefFile,
		"concurrency", cfg.Workflow.BatchConcurrency)

	if _, err := pipeline.ExecuteDeck(cmd.Context(), cfg, nil); err != nil {
		return fmt.Errorf("パイプライン実行中にエラーが発生したのだ: %w", err)
	}
	return nil
}
