package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/dhamidi/ncss/format"
	"github.com/dhamidi/ncss/java/parser"
)

func newTokensCmd() *cobra.Command {
	var showComments bool

	cmd := &cobra.Command{
		Use:   "tokens <file>",
		Short: "Dump the token stream of a Java file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filename := args[0]
			data, err := os.ReadFile(filename)
			if err != nil {
				return fmt.Errorf("read java file: %w", err)
			}

			tokens, tokErr := parser.Tokenize(data, filename)
			for i := range tokens {
				tok := &tokens[i]
				if showComments {
					specials := tok.Specials()
					for j := len(specials) - 1; j >= 0; j-- {
						s := specials[j]
						fmt.Printf("%s\t%s\t%s\n", s.Pos(), s.Kind, strconv.Quote(s.Literal))
					}
				}
				fmt.Printf("%s\t%s\t%s\n", tok.Pos(), tok.Kind, strconv.Quote(tok.Literal))
			}

			if tokErr != nil {
				fmt.Fprintln(os.Stderr, format.Snippet(tokErr, data))
				return fmt.Errorf("tokenize: %w", tokErr)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&showComments, "comments", true, "show comments before the token they are attached to")

	return cmd
}
