package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/shouni/go-briefing-kit/internal/config"
)

var (
	opts    config.GenerateOptions
	verbose bool
)

// rootCmd は briefing コマンドの親なのだ。サブコマンドを束ねるだけなのだよ。
var rootCmd = &cobra.Command{
	Use:               "briefing",
	Short:             "ブリーフから 16:9 のスライド画像を作るのだ。",
	SilenceUsage:      true,
	PersistentPreRunE: preRunAppE,
}

// addAppFlags は、アプリケーション全般に適用されるグローバルフラグを定義するのだ。
func addAppFlags(rootCmd *cobra.Command) {
	// --- ソース入力関連 ---
	rootCmd.PersistentFlags().StringVarP(&opts.BriefFile, "brief-file", "f", config.DefaultBriefFile, "ブリーフ YAML のパス（'-'で標準入力なのだ）。")

	// --- 画像生成の設定 ---
	rootCmd.PersistentFlags().StringVar(&opts.Backend, "backend", "", "画像生成バックエンド（simulated / gemini）なのだ。未指定なら IMAGE_BACKEND を使うのだ。")
	rootCmd.PersistentFlags().StringVar(&opts.ImageModel, "image-model", "", "使用する Gemini 画像モデル名なのだ。")

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "デバッグログを出すのだ。")
}

// preRunAppE は、コマンド実行前にロガーを整えるのだ。
func preRunAppE(cmd *cobra.Command, args []string) error {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	return nil
}

// loadConfig は環境変数を読み込み、CLI フラグの値を重ねるのだ。
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("設定の読み込みに失敗したのだ: %w", err)
	}
	cfg.ApplyOptions(opts)
	return cfg, nil
}

func init() {
	addAppFlags(rootCmd)
	rootCmd.AddCommand(schemaCmd, compileCmd, generateCmd, deckCmd)
}

// Execute は、アプリケーションのメインエントリポイントなのだ。
// main.go から呼び出されて、cobra のコマンドライン解析を開始するのだよ。
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
