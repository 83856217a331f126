package cmd

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopmonkeyus/csvexport/internal"
	"github.com/shopmonkeyus/csvexport/internal/exporter"
	"github.com/shopmonkeyus/csvexport/internal/registry"
	"github.com/shopmonkeyus/csvexport/internal/util"
	"github.com/shopmonkeyus/go-common/logger"
	"github.com/shopmonkeyus/go-common/sys"
	"github.com/spf13/cobra"

	_ "github.com/shopmonkeyus/csvexport/internal/providers/gormdb"
	_ "github.com/shopmonkeyus/csvexport/internal/providers/sqldb"
)

// rowCountingSink wraps a sink to count the CSV records written so the
// handler can report row metrics after an export. A newline inside a quoted
// cell does not end a record, so quote state is tracked across writes.
type rowCountingSink struct {
	exporter.Sink
	rows   int
	quoted bool
}

func (s *rowCountingSink) Write(p []byte) (int, error) {
	for _, b := range p {
		switch b {
		case '"':
			s.quoted = !s.quoted
		case '\n':
			if !s.quoted {
				s.rows++
			}
		}
	}
	return s.Sink.Write(p)
}

func queryBool(r *http.Request, name string, def bool) bool {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	val, err := strconv.ParseBool(raw)
	if err != nil {
		return def
	}
	return val
}

func queryList(r *http.Request, name string) []string {
	var res []string
	for _, raw := range r.URL.Query()[name] {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				res = append(res, part)
			}
		}
	}
	return res
}

// exportOptionsFromRequest builds the export options for one request, starting
// from the defaults of the entry point the query parameters select.
func exportOptionsFromRequest(r *http.Request, log logger.Logger) (exporter.Options, bool, bool) {
	related := queryBool(r, "related", false)
	dataframe := !related && queryBool(r, "dataframe", false)
	var opts exporter.Options
	switch {
	case related:
		opts = exporter.NewRelatedOptions()
	case dataframe:
		opts = exporter.NewDataFrameOptions()
	default:
		opts = exporter.NewOptions()
	}
	opts.Logger = log
	opts.Only = queryList(r, "only")
	opts.Defer = queryList(r, "defer")
	opts.Header = queryBool(r, "header", opts.Header)
	opts.Verbose = queryBool(r, "verbose", opts.Verbose)
	opts.Values = queryBool(r, "values", false)
	if filename := r.URL.Query().Get("filename"); filename != "" {
		opts.Filename = filename
	}
	return opts, related, dataframe
}

func exportHandler(log logger.Logger, provider internal.Provider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		table := r.PathValue("table")
		rs, err := provider.RecordSet(table)
		if err != nil {
			internal.ExportCount.WithLabelValues(table, "error").Inc()
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		opts, related, dataframe := exportOptionsFromRequest(r, log)
		exportID := uuid.New().String()
		w.Header().Set("X-Export-Id", exportID)
		sink := &rowCountingSink{Sink: exporter.NewHTTPSink(w)}
		switch {
		case related:
			err = exporter.ExportRelated(r.Context(), rs, sink, opts)
		case dataframe:
			err = exporter.ExportDataFrame(r.Context(), rs, sink, opts)
		default:
			err = exporter.Export(r.Context(), rs, sink, opts)
		}
		if err != nil {
			internal.ExportCount.WithLabelValues(table, "error").Inc()
			log.Error("export %s of %s failed: %s", exportID, table, err)
			// headers may already be out the door, this is best effort
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		rows := sink.rows
		if opts.Header && rows > 0 {
			rows--
		}
		internal.ExportCount.WithLabelValues(table, "success").Inc()
		internal.ExportRows.Observe(float64(rows))
		internal.ExportDuration.Observe(time.Since(started).Seconds())
		log.Debug("export %s of %s served %d rows in %v", exportID, table, rows, time.Since(started))
	}
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "serve table exports over HTTP",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		log := newLogger(cmd)
		defer util.RecoverPanic(log)
		url := mustFlagOrEnvString(cmd, "url", true)
		modelsFile := mustFlagOrEnvString(cmd, "models", true)
		port, _ := cmd.Flags().GetInt("port")

		models, err := registry.Load(modelsFile)
		if err != nil {
			log.Fatal("%s", err)
		}
		masked, err := util.MaskURL(url)
		if err != nil {
			log.Fatal("%s", err)
		}
		log.Debug("connecting to %s", masked)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		provider, err := internal.NewProvider(ctx, log, url, models)
		if err != nil {
			log.Fatal("%s", err)
		}
		defer provider.Stop()

		mux := http.NewServeMux()
		mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
		mux.Handle("/metrics", promhttp.Handler())
		mux.Handle("GET /export/{table}", exportHandler(log, provider))

		server := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
		go func() {
			defer util.RecoverPanic(log)
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatal("failed to start server: %s", err)
			}
		}()
		log.Info("server is running on port %d, version: %v", port, Version)

		select {
		case <-ctx.Done():
		case <-sys.CreateShutdownChannel():
		}

		log.Debug("server is stopping")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Second*10)
		defer shutdownCancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error("error shutting down server: %s", err)
		}
		log.Info("👋 Bye")
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().Int("port", 8080, "the port to listen on")
}
