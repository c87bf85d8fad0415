// Package runs defines the persistent filter-run archive entities and the
// persistence contract storage backends implement.
package runs

import (
	"time"

	"ifad/pkg/gaf"
)

// RunSource identifies which surface recorded a filter run.
type RunSource string

const (
	// SourceCLI marks runs recorded by the command-line filter.
	SourceCLI RunSource = "cli"
	// SourceAPI marks runs recorded by the HTTP query endpoint.
	SourceAPI RunSource = "api"
	// SourceExport marks runs recorded by the async export worker.
	SourceExport RunSource = "export"
)

// OutputFormat enumerates the serializations a filter run can produce.
type OutputFormat string

const (
	// FormatJSON is the count-and-metadata summary document.
	FormatJSON OutputFormat = "json"
	// FormatGeneCSV is the filtered gene list in its source format.
	FormatGeneCSV OutputFormat = "gene-csv"
	// FormatGAF is the filtered annotation file in its source format.
	FormatGAF OutputFormat = "gaf"
	// FormatFiles is the gene and annotation pair written to disk by the
	// CLI. It is recorded in the archive but not negotiable over HTTP.
	FormatFiles OutputFormat = "files"
)

// ParseOutputFormat validates a format name requested over HTTP.
func ParseOutputFormat(name string) (OutputFormat, bool) {
	switch OutputFormat(name) {
	case FormatJSON, FormatGeneCSV, FormatGAF:
		return OutputFormat(name), true
	}
	return "", false
}

// FilterRun is one recorded execution of a segment query: what was asked,
// which surface asked it, and how large the result was. ArtifactKey points
// at the exported object when the run produced one.
type FilterRun struct {
	ID              string         `json:"id"`
	CreatedAt       time.Time      `json:"created_at"`
	Source          RunSource      `json:"source"`
	Mode            gaf.Mode       `json:"mode"`
	Segments        []gaf.Segment  `json:"segments"`
	Filter          gaf.GeneFilter `json:"filter"`
	Format          OutputFormat   `json:"format"`
	GeneCount       int            `json:"gene_count"`
	AnnotationCount int            `json:"annotation_count"`
	ArtifactKey     string         `json:"artifact_key,omitempty"`
	RequestedBy     string         `json:"requested_by,omitempty"`
}
