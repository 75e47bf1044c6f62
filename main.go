package main

import (
	"fmt"
	"io"
	"os"

	"github.com/heathj/htmlcore/parser"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {
	var verbose bool
	root := &cobra.Command{
		Use:   "htmlcore",
		Short: "Parse markup into a document tree",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				logrus.SetLevel(logrus.DebugLevel)
			}
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log debugging information")
	root.AddCommand(cmdParse(), cmdTokens())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func cmdParse() *cobra.Command {
	return &cobra.Command{
		Use:   "parse [file]",
		Short: "parse a markup file (or stdin) and print the document tree",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := readInput(args)
			if err != nil {
				return err
			}
			p := parser.NewParser()
			doc := p.Parse(input)
			fmt.Println(doc.String())
			for _, e := range p.Errors() {
				fmt.Fprintf(os.Stderr, "parse error at %s\n", e)
			}
			return nil
		},
	}
}

func cmdTokens() *cobra.Command {
	return &cobra.Command{
		Use:   "tokens [file]",
		Short: "tokenize a markup file (or stdin) and print the token stream",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := readInput(args)
			if err != nil {
				return err
			}
			tokens, parseErrors := parser.Tokenize(input)
			for _, t := range tokens {
				fmt.Println(t.String())
			}
			for _, e := range parseErrors {
				fmt.Fprintf(os.Stderr, "parse error at %s\n", e)
			}
			return nil
		},
	}
}

func readInput(args []string) (string, error) {
	if len(args) == 0 {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", errors.Wrap(err, "read stdin")
		}
		return string(data), nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", errors.Wrap(err, "read input file")
	}
	return string(data), nil
}
