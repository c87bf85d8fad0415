package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"ifad/internal/adapters/genesapi"
	"ifad/internal/blob"
	"ifad/internal/core"
	"ifad/internal/ingest"
	"ifad/internal/obs"
)

// serveOptions carries the serve subcommand flags.
type serveOptions struct {
	Addr        string
	Genes       string
	Annotations string
}

var serveFlags serveOptions

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve segment queries, exports, and the run archive over HTTP",
	Long: `Serve loads the dataset pair once, then answers segment queries from
the in-memory index. The run archive, export artifact store, and log level
are configured through IFAD_* environment variables.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runServe(cmd, serveFlags)
	},
}

func init() {
	flags := serveCmd.Flags()
	flags.StringVar(&serveFlags.Addr, "addr", ":8080", "listen address")
	flags.StringVar(&serveFlags.Genes, "genes", os.Getenv("IFAD_GENES_FILE"), "the file to read genes from")
	flags.StringVar(&serveFlags.Annotations, "annotations", os.Getenv("IFAD_ANNOTATIONS_FILE"), "the file to read annotations from")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, opts serveOptions) error {
	logger := obs.NewLogger(logLevel)

	if opts.Genes == "" || opts.Annotations == "" {
		return errors.New("both --genes and --annotations are required (or IFAD_GENES_FILE / IFAD_ANNOTATIONS_FILE)")
	}
	bundle, err := ingest.Load(opts.Genes, opts.Annotations)
	if err != nil {
		return err
	}
	logger.Info("datasets loaded",
		"genes", bundle.Genes.Table.Len(),
		"annotations", bundle.Annotations.Table.Len(),
		"segments", len(bundle.Index.Segments()))

	store, err := core.OpenPersistentStore()
	if err != nil {
		return fmt.Errorf("open run archive: %w", err)
	}
	service := core.NewService(store,
		core.WithLogger(logger),
		core.WithMetricsRecorder(obs.NewMetricsRecorder()),
	)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	artifacts, err := blob.Open(ctx)
	if err != nil {
		return fmt.Errorf("open artifact store: %w", err)
	}

	worker := genesapi.NewWorker(bundle, artifacts, service, logger)
	worker.Start()

	handler := genesapi.NewHandler(bundle)
	handler.Runs = service
	handler.Exports = worker

	server := &http.Server{
		Addr:              opts.Addr,
		Handler:           newServeMux(handler),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", opts.Addr, "artifact_driver", string(artifacts.Driver()))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		stopWorker(worker, logger)
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "error", err)
	}
	stopWorker(worker, logger)
	return nil
}

// newServeMux mounts the API handler and the Prometheus endpoint.
func newServeMux(handler *genesapi.Handler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", obs.MetricsHandler())
	mux.Handle("/", handler)
	return mux
}

func stopWorker(worker *genesapi.Worker, logger core.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := worker.Stop(ctx); err != nil {
		logger.Error("worker stop", "error", err)
	}
}
