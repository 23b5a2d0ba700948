package cmd

import (
	"github.com/spf13/cobra"

	"github.com/shouni/go-briefing-kit/internal/pipeline"
)

// schemaCmd は、ブリーフに書けるプロンプト変数の一覧を表示するのだ。
var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "プロンプト変数の一覧を表示するのだ。",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return pipeline.ExecuteSchema(cmd.OutOrStdout())
	},
}
