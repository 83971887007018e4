package main

import (
	"github.com/spf13/cobra"

	"github.com/dhamidi/ncss/java/codebase"
	"github.com/dhamidi/ncss/java/parser"
)

func newLSPCmd() *cobra.Command {
	var privateJavadoc bool

	cmd := &cobra.Command{
		Use:   "lsp",
		Short: "Start a language server showing metrics in the editor",
		RunE: func(cmd *cobra.Command, args []string) error {
			server := codebase.NewLSPServer(version,
				codebase.WithParserOptions(parser.WithPrivateJavadoc(privateJavadoc)),
			)
			return server.RunStdio()
		},
	}

	cmd.Flags().BoolVar(&privateJavadoc, "private-javadoc", false, "count javadoc on private and package-private declarations")

	return cmd
}
