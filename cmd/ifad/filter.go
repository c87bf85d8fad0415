package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"ifad/internal/core"
	"ifad/internal/ingest"
	"ifad/internal/obs"
	"ifad/pkg/gaf"
	"ifad/pkg/runs"
)

// filterOptions carries the filter subcommand flags. Tests construct it
// directly and call runFilter.
type filterOptions struct {
	Genes          string
	Annotations    string
	GenesOut       string
	AnnotationsOut string
	Query          string
	Filter         string
	Segments       []string
	NoRecord       bool
}

var filterFlags filterOptions

var filterCmd = &cobra.Command{
	Use:   "filter",
	Short: "Run one segment query and write the filtered dataset pair",
	Long: `Filter loads the gene and annotation files, evaluates the segment
query, and writes the matching subset of both files. Records that were not
requested are dropped; everything else, including the leading metadata
lines, is written back byte for byte.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runFilter(cmd, filterFlags)
	},
}

func init() {
	flags := filterCmd.Flags()
	flags.StringVar(&filterFlags.Genes, "genes", "", "the file to read genes from (\"-\" for stdin)")
	flags.StringVar(&filterFlags.Annotations, "annotations", "", "the file to read annotations from (\"-\" for stdin)")
	flags.StringVar(&filterFlags.GenesOut, "genes-out", "", "the file to write filtered genes to")
	flags.StringVar(&filterFlags.AnnotationsOut, "annotations-out", "", "the file to write filtered annotations to")
	flags.StringVar(&filterFlags.Query, "query", string(gaf.ModeUnion), "the query mode (union|intersection)")
	flags.StringVar(&filterFlags.Filter, "filter", string(gaf.GeneFilterAll), "gene output filter (all|include_protein)")
	flags.StringArrayVar(&filterFlags.Segments, "segment", nil, "a query segment as ASPECT,STATUS (repeatable, e.g. F,EXP)")
	flags.BoolVar(&filterFlags.NoRecord, "no-record", false, "do not record this run in the archive")
	for _, name := range []string{"genes", "annotations", "genes-out", "annotations-out"} {
		_ = filterCmd.MarkFlagRequired(name)
	}
	rootCmd.AddCommand(filterCmd)
}

func runFilter(cmd *cobra.Command, opts filterOptions) error {
	logger := obs.NewLogger(logLevel)

	mode, ok := gaf.ParseMode(opts.Query)
	if !ok {
		return fmt.Errorf("unknown query mode %q", opts.Query)
	}
	filter, ok := gaf.ParseGeneFilter(opts.Filter)
	if !ok {
		return fmt.Errorf("unknown gene filter %q", opts.Filter)
	}
	segments := make([]gaf.Segment, 0, len(opts.Segments))
	for _, spec := range opts.Segments {
		segment, err := gaf.ParseSegment(spec)
		if err != nil {
			return err
		}
		segments = append(segments, segment)
	}

	bundle, err := ingest.Load(opts.Genes, opts.Annotations)
	if err != nil {
		return err
	}
	logger.Debug("datasets loaded",
		"genes", bundle.Genes.Table.Len(),
		"annotations", bundle.Annotations.Table.Len())

	result, err := gaf.Evaluate(bundle.Index, segments, mode)
	if err != nil {
		return err
	}
	projection := gaf.Project(bundle.Genes.Table, result).Filter(filter)

	var genesOut bytes.Buffer
	if _, err := bundle.Genes.Dataset(projection.Genes).WriteTo(&genesOut); err != nil {
		return fmt.Errorf("render genes: %w", err)
	}
	var annotationsOut bytes.Buffer
	if _, err := bundle.Annotations.Dataset(projection.Annotations).WriteTo(&annotationsOut); err != nil {
		return fmt.Errorf("render annotations: %w", err)
	}
	if err := writeFileAtomic(opts.GenesOut, genesOut.Bytes()); err != nil {
		return fmt.Errorf("write %s: %w", opts.GenesOut, err)
	}
	if err := writeFileAtomic(opts.AnnotationsOut, annotationsOut.Bytes()); err != nil {
		return fmt.Errorf("write %s: %w", opts.AnnotationsOut, err)
	}

	if !opts.NoRecord {
		recordFilterRun(cmd, logger, mode, result.Segments(), filter, projection)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "matched %d genes and %d annotations (%s over %d segments)\n",
		len(projection.Genes), len(projection.Annotations), mode, len(result.Segments()))
	return nil
}

// recordFilterRun archives the run best-effort. The filtered files are the
// command's contract; an unreachable archive downgrades to a warning.
func recordFilterRun(cmd *cobra.Command, logger core.Logger, mode gaf.Mode, segments []gaf.Segment, filter gaf.GeneFilter, projection gaf.Projection) {
	store, err := core.OpenPersistentStore()
	if err != nil {
		logger.Warn("run archive unavailable", "error", err)
		return
	}
	service := core.NewService(store, core.WithLogger(logger))
	run, err := service.RecordRun(cmd.Context(), runs.FilterRun{
		Source:          runs.SourceCLI,
		Mode:            mode,
		Segments:        segments,
		Filter:          filter,
		Format:          runs.FormatFiles,
		GeneCount:       len(projection.Genes),
		AnnotationCount: len(projection.Annotations),
	})
	if err != nil {
		logger.Warn("record run failed", "error", err)
		return
	}
	logger.Debug("run recorded", "run_id", run.ID)
}

// writeFileAtomic stages content in a temp file next to the target and
// renames it into place, so a failed run never leaves a truncated output.
func writeFileAtomic(path string, content []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	if _, err := tmp.Write(content); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
