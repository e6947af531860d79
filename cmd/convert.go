package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/satriahrh/isyarat/domain/entities"
	"github.com/satriahrh/isyarat/usecase"
)

type convertOptions struct {
	source string
	json   bool
}

func newConvertCmd(root *rootOptions) *cobra.Command {
	opts := convertOptions{}
	cmd := &cobra.Command{
		Use:   "convert <text>",
		Short: "Translate text to English and print its sign frames",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), root)
			if err != nil {
				return err
			}
			defer a.logger.Sync()

			conversion, err := a.conversion.Convert(cmd.Context(), strings.Join(args, " "), opts.source)
			if err != nil {
				return err
			}
			if opts.json {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(conversion)
			}
			printConversion(cmd.OutOrStdout(), conversion)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.source, "source", entities.AutoLanguage, "Source language code")
	cmd.Flags().BoolVar(&opts.json, "json", false, "Print the conversion as JSON")
	return cmd
}

func printConversion(w io.Writer, c usecase.Conversion) {
	fmt.Fprintf(w, "English: %s\n", c.EnglishText)
	if c.TranslationFailed {
		fmt.Fprintf(w, "Notice: %s\n", c.Notice)
	}
	for i, f := range c.Frames {
		fmt.Fprintln(w, formatFrame(i, f))
	}
}

func formatFrame(index int, f entities.Frame) string {
	return fmt.Sprintf("%3d  %-6s  %s", index, f.Kind, f.Label)
}
