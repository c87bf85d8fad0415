// Package ingest reads the two dataset files from disk or stdin into the
// engine's typed tables. It peels off the leading "!" metadata block and the
// optional column header of each file before parsing, keeps both for
// lossless export, and maps parse errors back to physical file line numbers.
package ingest

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"ifad/pkg/gaf"
)

// maxLineSize bounds a single input line. Annotation synonym columns grow
// large on real exports.
const maxLineSize = 1 << 20

// source is a dataset file split into its leading metadata block, optional
// header row, and remaining content lines. offset counts the consumed
// leading lines so parser line numbers can be mapped back to the file.
type source struct {
	metadata []string
	header   string
	lines    []string
	offset   int
}

// readSource scans all lines and peels the leading metadata block plus the
// header row when isHeader recognizes the first content line.
func readSource(r io.Reader, isHeader func(string) bool) (*source, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)
	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	src := &source{}
	rest := lines
	for len(rest) > 0 && strings.HasPrefix(rest[0], "!") {
		src.metadata = append(src.metadata, rest[0])
		rest = rest[1:]
		src.offset++
	}
	if len(rest) > 0 && isHeader(rest[0]) {
		src.header = rest[0]
		rest = rest[1:]
		src.offset++
	}
	src.lines = rest
	return src, nil
}

func geneHeader(line string) bool {
	return firstField(line) == "name"
}

func annotationHeader(line string) bool {
	return firstField(line) == "DB"
}

func firstField(line string) string {
	if i := strings.IndexByte(line, '\t'); i >= 0 {
		return line[:i]
	}
	return line
}

// Genes is a parsed gene list together with the captured file preamble.
type Genes struct {
	Table    *gaf.GeneTable
	Metadata []string
	Header   string
}

// Dataset pairs filtered gene records with this file's preamble for export.
func (g *Genes) Dataset(records []gaf.GeneRecord) gaf.GeneDataset {
	return gaf.GeneDataset{Metadata: g.Metadata, Header: g.Header, Records: records}
}

// Annotations is a parsed annotation table together with the captured file
// preamble.
type Annotations struct {
	Table    *gaf.AnnotationTable
	Metadata []string
	Header   string
}

// Dataset pairs filtered annotation records with this file's preamble for
// export.
func (a *Annotations) Dataset(records []gaf.AnnotationRecord) gaf.AnnotationDataset {
	return gaf.AnnotationDataset{Metadata: a.Metadata, Header: a.Header, Records: records}
}

// ReadGenes parses a gene list from a reader. The header row is recognized
// by its first column being "name", as written by genome release exports.
func ReadGenes(r io.Reader) (*Genes, error) {
	src, err := readSource(r, geneHeader)
	if err != nil {
		return nil, err
	}
	table, err := gaf.ParseGenes(src.lines)
	if err != nil {
		return nil, offsetLines(err, src.offset)
	}
	return &Genes{Table: table, Metadata: src.metadata, Header: src.header}, nil
}

// ReadAnnotations parses an annotation file from a reader. The header row is
// recognized by its first column being "DB", the conventional GAF column
// label.
func ReadAnnotations(r io.Reader) (*Annotations, error) {
	src, err := readSource(r, annotationHeader)
	if err != nil {
		return nil, err
	}
	table, err := gaf.ParseAnnotations(src.lines)
	if err != nil {
		return nil, offsetLines(err, src.offset)
	}
	return &Annotations{Table: table, Metadata: src.metadata, Header: src.header}, nil
}

// LoadGenes opens and parses the gene list at path ("-" for stdin, gzip
// transparent). Errors carry the path.
func LoadGenes(path string) (*Genes, error) {
	rc, err := OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open genes %s: %w", path, err)
	}
	defer rc.Close()
	genes, err := ReadGenes(rc)
	if err != nil {
		return nil, fmt.Errorf("genes %s: %w", path, err)
	}
	return genes, nil
}

// LoadAnnotations opens and parses the annotation file at path.
func LoadAnnotations(path string) (*Annotations, error) {
	rc, err := OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open annotations %s: %w", path, err)
	}
	defer rc.Close()
	annotations, err := ReadAnnotations(rc)
	if err != nil {
		return nil, fmt.Errorf("annotations %s: %w", path, err)
	}
	return annotations, nil
}

// Bundle is the fully loaded input pair plus the segment index derived from
// it. It is immutable once built; queries share it freely.
type Bundle struct {
	Genes       *Genes
	Annotations *Annotations
	Index       *gaf.SegmentIndex
}

// Load reads both dataset files and builds the segment index, including the
// derived per-aspect unannotated segments.
func Load(genesPath, annotationsPath string) (*Bundle, error) {
	genes, err := LoadGenes(genesPath)
	if err != nil {
		return nil, err
	}
	annotations, err := LoadAnnotations(annotationsPath)
	if err != nil {
		return nil, err
	}
	return NewBundle(genes, annotations), nil
}

// NewBundle indexes an already-parsed input pair.
func NewBundle(genes *Genes, annotations *Annotations) *Bundle {
	return &Bundle{
		Genes:       genes,
		Annotations: annotations,
		Index:       gaf.BuildIndexWithGenes(genes.Table, annotations.Table),
	}
}

// offsetLines shifts the line number of a parse error by the consumed
// preamble so it points into the physical file.
func offsetLines(err error, offset int) error {
	if offset == 0 {
		return err
	}
	var dup *gaf.DuplicateGeneError
	if errors.As(err, &dup) {
		dup.Line += offset
		return err
	}
	var gene *gaf.MalformedGeneError
	if errors.As(err, &gene) {
		gene.Line += offset
		return err
	}
	var record *gaf.MalformedRecordError
	if errors.As(err, &record) {
		record.Line += offset
		return err
	}
	var aspect *gaf.UnknownAspectError
	if errors.As(err, &aspect) {
		aspect.Line += offset
		return err
	}
	return err
}
