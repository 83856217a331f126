package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/shopmonkeyus/csvexport/internal"
	"github.com/shopmonkeyus/csvexport/internal/exporter"
	"github.com/shopmonkeyus/csvexport/internal/registry"
	"github.com/shopmonkeyus/csvexport/internal/util"
	"github.com/spf13/cobra"

	_ "github.com/shopmonkeyus/csvexport/internal/providers/gormdb"
	_ "github.com/shopmonkeyus/csvexport/internal/providers/sqldb"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "export a table from the data source as a CSV file",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		logger := newLogger(cmd)
		url := mustFlagOrEnvString(cmd, "url", true)
		modelsFile := mustFlagOrEnvString(cmd, "models", true)
		table := mustFlagString(cmd, "table", true)
		only, _ := cmd.Flags().GetStringSlice("only")
		deferred, _ := cmd.Flags().GetStringSlice("defer")
		related := mustFlagBool(cmd, "related", false)
		dataframe := mustFlagBool(cmd, "dataframe", false)
		if related && dataframe {
			logger.Fatal("--related and --dataframe are mutually exclusive")
		}

		models, err := registry.Load(modelsFile)
		if err != nil {
			logger.Fatal("%s", err)
		}
		masked, err := util.MaskURL(url)
		if err != nil {
			logger.Fatal("%s", err)
		}
		logger.Debug("connecting to %s", masked)

		ctx := context.Background()
		provider, err := internal.NewProvider(ctx, logger, url, models)
		if err != nil {
			logger.Fatal("%s", err)
		}
		defer provider.Stop()
		rs, err := provider.RecordSet(table)
		if err != nil {
			logger.Fatal("%s", err)
		}

		var opts exporter.Options
		switch {
		case related:
			opts = exporter.NewRelatedOptions()
		case dataframe:
			opts = exporter.NewDataFrameOptions()
		default:
			opts = exporter.NewOptions()
		}
		opts.Logger = logger
		opts.Only = only
		opts.Defer = deferred
		opts.Verbose = !mustFlagBool(cmd, "no-verbose", false)
		if cmd.Flags().Changed("header") {
			opts.Header = mustFlagBool(cmd, "header", false)
		}
		if filename := mustFlagString(cmd, "filename", false); filename != "" {
			opts.Filename = filename
		}

		sink := exporter.NewBufferSink()
		switch {
		case related:
			err = exporter.ExportRelated(ctx, rs, sink, opts)
		case dataframe:
			err = exporter.ExportDataFrame(ctx, rs, sink, opts)
		default:
			err = exporter.Export(ctx, rs, sink, opts)
		}
		if err != nil {
			logger.Fatal("export failed: %s", err)
		}

		out := mustFlagString(cmd, "out", false)
		if out == "" {
			// the attachment filename doubles as the local filename
			_, out = splitDisposition(sink.Header("Content-Disposition"))
		}
		if out == "-" {
			if _, err := os.Stdout.Write(sink.Bytes()); err != nil {
				logger.Fatal("%s", err)
			}
			return
		}
		if err := os.WriteFile(out, sink.Bytes(), 0644); err != nil {
			logger.Fatal("%s", err)
		}
		fmt.Printf("exported %s to %s (%s)\n", color.CyanString(table), color.GreenString(out), color.WhiteString("%d bytes", sink.Len()))
	},
}

// splitDisposition splits a content-disposition value into its type and
// filename parameter.
func splitDisposition(value string) (string, string) {
	const marker = "; filename="
	for i := 0; i+len(marker) <= len(value); i++ {
		if value[i:i+len(marker)] == marker {
			return value[:i], value[i+len(marker):]
		}
	}
	return value, ""
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().String("table", "", "the table to export")
	exportCmd.Flags().StringSlice("only", nil, "restrict the export to these fields")
	exportCmd.Flags().StringSlice("defer", nil, "exclude these fields from the export")
	exportCmd.Flags().Bool("header", false, "emit a header row")
	exportCmd.Flags().Bool("no-verbose", false, "use raw field names instead of labels in the header row")
	exportCmd.Flags().Bool("related", false, "render related fields via their string representation")
	exportCmd.Flags().Bool("dataframe", false, "use the columnar writer backend")
	exportCmd.Flags().String("filename", "", "the attachment filename")
	exportCmd.Flags().String("out", "", "write the export here instead of the attachment filename, - for stdout")
}
