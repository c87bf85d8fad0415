package gaf

import (
	"bufio"
	"io"
)

// GeneDataset couples filtered gene records with the metadata and header
// captured from the source file, so exports reproduce the input byte for
// byte apart from the dropped records.
type GeneDataset struct {
	// Metadata holds the "!"-prefixed lines from the top of the source
	// file, verbatim and without trailing newlines.
	Metadata []string
	// Header is the column header row, empty when the source had none.
	Header  string
	Records []GeneRecord
}

// WriteTo emits metadata, header, and record lines in source order, each
// terminated with a newline.
func (d GeneDataset) WriteTo(w io.Writer) (int64, error) {
	bw := bufio.NewWriter(w)
	var n int64
	for _, line := range d.Metadata {
		wrote, err := writeLine(bw, line)
		n += wrote
		if err != nil {
			return n, err
		}
	}
	if d.Header != "" {
		wrote, err := writeLine(bw, d.Header)
		n += wrote
		if err != nil {
			return n, err
		}
	}
	for _, rec := range d.Records {
		wrote, err := writeLine(bw, rec.Raw)
		n += wrote
		if err != nil {
			return n, err
		}
	}
	return n, bw.Flush()
}

// AnnotationDataset couples filtered annotation records with the captured
// source metadata and header for lossless export.
type AnnotationDataset struct {
	Metadata []string
	Header   string
	Records  []AnnotationRecord
}

// WriteTo emits metadata, header, and record lines in source order, each
// terminated with a newline.
func (d AnnotationDataset) WriteTo(w io.Writer) (int64, error) {
	bw := bufio.NewWriter(w)
	var n int64
	for _, line := range d.Metadata {
		wrote, err := writeLine(bw, line)
		n += wrote
		if err != nil {
			return n, err
		}
	}
	if d.Header != "" {
		wrote, err := writeLine(bw, d.Header)
		n += wrote
		if err != nil {
			return n, err
		}
	}
	for _, rec := range d.Records {
		wrote, err := writeLine(bw, rec.Raw)
		n += wrote
		if err != nil {
			return n, err
		}
	}
	return n, bw.Flush()
}

func writeLine(w *bufio.Writer, line string) (int64, error) {
	wrote, err := w.WriteString(line)
	if err != nil {
		return int64(wrote), err
	}
	if err := w.WriteByte('\n'); err != nil {
		return int64(wrote), err
	}
	return int64(wrote) + 1, nil
}
