package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/benjaminschreck/go-docxmerge/pkg/merge"
)

func inspectCommand(v *viper.Viper) *cobra.Command {
	var dataFile string

	inspectCmd := &cobra.Command{
		Use:   "inspect TEMPLATE",
		Short: "Lists the placeholders and loops of a template",
		Long: `Lists the placeholders and loop blocks found in each document part of a
template, and the images that can be replaced. With --data, the paths the
data file does not provide are listed as well.

For example:
docxmerge inspect invoice.docx --data invoice.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := merge.ConfigFromViper(v)
			tmpl, err := merge.NewWithConfig(cfg).OpenFile(args[0])
			if err != nil {
				return err
			}

			var bindings *merge.Bindings
			if dataFile != "" {
				if err := tmpl.BindFile(dataFile); err != nil {
					return fmt.Errorf("failed to load data: %w", err)
				}
				bindings = tmpl.Bindings()
			}

			out := cmd.OutOrStdout()
			printInspectTable(out, merge.Inspect(tmpl.Package()), bindings)

			if media := tmpl.Package().MediaEntries(tmpl.Media()); len(media) > 0 {
				fmt.Fprintf(out, "\n%s\n", colorHeader("Replaceable images:"))
				for _, entry := range media {
					fmt.Fprintf(out, "  %s\n", entry)
				}
			}
			return nil
		},
	}

	inspectCmd.Flags().StringVarP(&dataFile, "data", "d", "", "Data file to check the template against")
	return inspectCmd
}

func printInspectTable(w io.Writer, reports []merge.PartReport, bindings *merge.Bindings) {
	header := []string{"Part", "Placeholders", "Loops"}
	if bindings != nil {
		header = append(header, "Unbound")
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoWrapText(false)

	if f, ok := w.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		blueBold := tablewriter.Colors{tablewriter.FgBlueColor, tablewriter.Bold}
		colors := make([]tablewriter.Colors, len(header))
		for i := range colors {
			colors[i] = blueBold
		}
		table.SetHeaderColor(colors...)
	}

	for _, r := range reports {
		row := []string{
			r.Part,
			strings.Join(r.Placeholders(), "\n"),
			strings.Join(r.Loops(), "\n"),
		}
		if bindings != nil {
			row = append(row, colorBad(strings.Join(r.Unbound(bindings), "\n")))
		}
		table.Append(row)
	}
	table.Render()
}
