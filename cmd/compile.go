package cmd

import (
	"github.com/spf13/cobra"

	"github.com/shouni/go-briefing-kit/internal/pipeline"
)

// compileCmd は、ブリーフをプロンプトにコンパイルして表示するだけのサブコマンドなのだ。
// 画像は生成しないので、API キーがなくても試せるのだよ。
var compileCmd = &cobra.Command{
	Use:   "compile",
	Short: "ブリーフをプロンプトにコンパイルして表示するのだ。",
	Args:  cobra.NoArgs,
	RunE:  compileCommand,
}

func compileCommand(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	return pipeline.ExecuteCompile(cmd.Context(), cfg, cmd.OutOrStdout())
}
