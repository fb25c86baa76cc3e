package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/benjaminschreck/go-docxmerge/pkg/merge"
)

func renderCommand(v *viper.Viper) *cobra.Command {
	var (
		dataFile string
		outFile  string
		images   []string
		sets     []string
		dryRun   bool
	)

	renderCmd := &cobra.Command{
		Use:   "render TEMPLATE",
		Short: "Renders a template with data",
		Long: `Renders a template with data from a JSON, YAML or TOML file and writes
the result to a new document. Values given with --set are added on top of
the data file. Images in word/media can be replaced with --image.

For example:
docxmerge render invoice.docx --data invoice.json --out invoice-42.docx \
  --set date=2024-01-31 --image image1.png=logo.png`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := merge.ConfigFromViper(v)
			tmpl, err := merge.NewWithConfig(cfg).OpenFile(args[0])
			if err != nil {
				return err
			}

			if dataFile != "" {
				if err := tmpl.BindFile(dataFile); err != nil {
					return fmt.Errorf("failed to load data: %w", err)
				}
			}
			for _, kv := range sets {
				key, value, ok := strings.Cut(kv, "=")
				if !ok {
					return fmt.Errorf("invalid --set %q: expected key=value", kv)
				}
				tmpl.AddPlaceholder(key, value)
			}
			for _, img := range images {
				name, src, err := parseImageFlag(img)
				if err != nil {
					return err
				}
				tmpl.AddImage(name, src)
			}

			if dryRun {
				return printPartDiffs(cmd.OutOrStdout(), tmpl)
			}

			if outFile == "" {
				outFile = defaultOutput(args[0])
			}
			diags, err := tmpl.Save(outFile)
			printDiagnostics(cmd.ErrOrStderr(), diags)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", colorOk("Wrote"), outFile)
			return nil
		},
	}

	flags := renderCmd.Flags()
	flags.StringVarP(&dataFile, "data", "d", "", "Data file (.json, .yaml, .yml or .toml)")
	flags.StringVarP(&outFile, "out", "o", "", "Output file (default TEMPLATE-merged.docx)")
	flags.StringArrayVar(&images, "image", nil, "Replace an image: name=path or name=data:image/png;base64,... (repeatable)")
	flags.StringArrayVar(&sets, "set", nil, "Set a placeholder: key=value (repeatable)")
	flags.Bool("strict", false, "Fail when a loop block cannot be expanded")
	flags.BoolVar(&dryRun, "dry-run", false, "Print the changes to each document part instead of writing a file")
	v.BindPFlag(merge.KeyStrict, flags.Lookup("strict"))

	return renderCmd
}

// parseImageFlag splits name=source. Sources starting with "data:" are
// decoded as data URIs, anything else is a file path.
func parseImageFlag(flag string) (string, merge.MediaSource, error) {
	name, src, ok := strings.Cut(flag, "=")
	if !ok || name == "" || src == "" {
		return "", nil, fmt.Errorf("invalid --image %q: expected name=path", flag)
	}
	if strings.HasPrefix(src, "data:") {
		dataSrc, err := merge.DataURISource(src)
		if err != nil {
			return "", nil, fmt.Errorf("invalid --image %q: %w", name, err)
		}
		return name, dataSrc, nil
	}
	return name, merge.FileSource(src), nil
}

func defaultOutput(template string) string {
	ext := filepath.Ext(template)
	return strings.TrimSuffix(template, ext) + "-merged" + ext
}

func printDiagnostics(w io.Writer, diags merge.Diagnostics) {
	for _, d := range diags {
		fmt.Fprintf(w, "%s %s\n", colorWarn("warning:"), colorDiagnostic(d))
	}
}

// printPartDiffs renders the template in memory and prints a text diff of
// every document part that changed
func printPartDiffs(w io.Writer, tmpl *merge.Template) error {
	results, diags, err := tmpl.RenderParts()
	printDiagnostics(w, diags)
	if err != nil {
		return err
	}

	dmp := diffmatchpatch.New()
	changed := 0
	for _, r := range results {
		original, _ := tmpl.Package().Part(r.Part)
		if !r.Changed(original) {
			continue
		}
		changed++
		fmt.Fprintf(w, "%s (%d placeholders, %d loops)\n", colorHeader(r.Part), r.Resolved, r.Loops)
		diffs := dmp.DiffCleanupSemantic(dmp.DiffMain(original, r.Content, false))
		fmt.Fprintln(w, dmp.DiffPrettyText(diffs))
		fmt.Fprintln(w)
	}

	if images := tmpl.Media().Entries(); len(images) > 0 {
		for _, entry := range images {
			if _, ok := tmpl.Media().Lookup(entry); ok {
				fmt.Fprintf(w, "%s %s\n", colorHeader("replace"), entry)
			} else {
				fmt.Fprintf(w, "%s %s (not an accepted image)\n", colorWarn("skip"), entry)
			}
		}
	}

	if changed == 0 {
		fmt.Fprintln(w, "No document parts would change.")
	}
	return nil
}
