package gaf

import "fmt"

// DuplicateGeneError reports a gene ID appearing twice in the gene list.
type DuplicateGeneError struct {
	GeneID string
	Line   int
}

func (e *DuplicateGeneError) Error() string {
	return fmt.Sprintf("line %d: duplicate gene id %q", e.Line, e.GeneID)
}

// MalformedGeneError reports a gene line whose ID field is empty.
type MalformedGeneError struct {
	Line    int
	Content string
}

func (e *MalformedGeneError) Error() string {
	return fmt.Sprintf("line %d: gene record has empty id: %q", e.Line, e.Content)
}

// MalformedRecordError reports an annotation line with fewer fields than the
// schema requires. Content carries the offending line verbatim.
type MalformedRecordError struct {
	Line    int
	Fields  int
	Content string
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("line %d: annotation record has %d fields, want %d: %q",
		e.Line, e.Fields, AnnotationFieldCount, e.Content)
}

// UnknownAspectError reports an annotation line whose aspect column is not a
// recognized aspect code.
type UnknownAspectError struct {
	Line   int
	Aspect string
}

func (e *UnknownAspectError) Error() string {
	return fmt.Sprintf("line %d: unknown aspect code %q", e.Line, e.Aspect)
}

// EmptyQueryError reports a query with no segments.
type EmptyQueryError struct{}

func (e *EmptyQueryError) Error() string {
	return "query requires at least one segment"
}

// UnknownModeError reports a combination mode outside the recognized set.
type UnknownModeError struct {
	Mode Mode
}

func (e *UnknownModeError) Error() string {
	return fmt.Sprintf("unknown query mode %q", string(e.Mode))
}

// SegmentSpecError reports an unparseable ASPECT,STATUS specification.
type SegmentSpecError struct {
	Spec   string
	Reason string
}

func (e *SegmentSpecError) Error() string {
	return fmt.Sprintf("invalid segment %q: %s", e.Spec, e.Reason)
}
