// Package gaf implements the annotation filtering engine: parsing a gene
// list and a GAF-like annotation file into typed tables, indexing annotation
// records by (aspect, status) segment, evaluating union/intersection queries
// over segments, and projecting both tables down to the matching subset.
//
// The package is pure: it consumes lines, produces records and line subsets,
// and performs no I/O of its own.
package gaf

import "strings"

// Aspect identifies the ontology branch an annotation belongs to.
type Aspect string

// Recognized aspect codes, matching column 9 of the annotation schema.
const (
	// AspectFunction is the molecular function branch (code F).
	AspectFunction Aspect = "F"
	// AspectProcess is the biological process branch (code P).
	AspectProcess Aspect = "P"
	// AspectComponent is the cellular component branch (code C).
	AspectComponent Aspect = "C"
)

// Aspects lists all recognized aspects in canonical order.
func Aspects() []Aspect {
	return []Aspect{AspectFunction, AspectProcess, AspectComponent}
}

// ParseAspect validates a single aspect code.
func ParseAspect(code string) (Aspect, bool) {
	switch Aspect(code) {
	case AspectFunction, AspectProcess, AspectComponent:
		return Aspect(code), true
	}
	return "", false
}

// Status classifies how an annotation's evidence was derived. It is computed
// from the evidence code at parse time, so malformed codes cannot leak into
// query evaluation.
type Status string

const (
	// StatusExp marks annotations backed by experimental evidence codes.
	StatusExp Status = "EXP"
	// StatusOther marks annotations with non-experimental evidence.
	StatusOther Status = "OTHER"
	// StatusUnknown marks annotations whose evidence code is ND.
	StatusUnknown Status = "UNKNOWN"
	// StatusUnannotated is the derived status for genes carrying no
	// annotation in a given aspect. It never appears on parsed records.
	StatusUnannotated Status = "UNANNOTATED"
)

// Statuses lists all queryable statuses in canonical order.
func Statuses() []Status {
	return []Status{StatusExp, StatusOther, StatusUnknown, StatusUnannotated}
}

// ParseStatus validates a status name as used in query specifications.
func ParseStatus(name string) (Status, bool) {
	switch Status(name) {
	case StatusExp, StatusOther, StatusUnknown, StatusUnannotated:
		return Status(name), true
	}
	return "", false
}

// experimentalEvidence holds the evidence codes that classify as EXP.
var experimentalEvidence = map[string]struct{}{
	"EXP": {}, "IDA": {}, "IPI": {}, "IMP": {}, "IGI": {}, "IEP": {},
	"HTP": {}, "HDA": {}, "HMP": {}, "HGI": {}, "HEP": {},
}

// StatusForEvidence derives the annotation status from a raw evidence code.
func StatusForEvidence(code string) Status {
	if _, ok := experimentalEvidence[code]; ok {
		return StatusExp
	}
	if code == "ND" {
		return StatusUnknown
	}
	return StatusOther
}

// AnnotationFieldCount is the number of tab-delimited columns required per
// annotation record.
const AnnotationFieldCount = 17

// AnnotationRecord is a single parsed row of the annotation file. Raw holds
// the original line verbatim so filtered output reproduces input bytes.
type AnnotationRecord struct {
	Db                 string `json:"db"`
	DatabaseID         string `json:"database_id"`
	DbObjectSymbol     string `json:"db_object_symbol"`
	Qualifier          string `json:"qualifier"`
	GoTerm             string `json:"go_term"`
	Reference          string `json:"reference"`
	EvidenceCode       string `json:"evidence_code"`
	AdditionalEvidence string `json:"additional_evidence"`
	Aspect             Aspect `json:"aspect"`
	Status             Status `json:"status"`
	GeneID             string `json:"gene_id"`
	Synonyms           string `json:"synonyms"`
	GeneProductType    string `json:"gene_product_type"`
	Taxon              string `json:"taxon"`
	Date               string `json:"date"`
	AssignedBy         string `json:"assigned_by"`
	AnnotationExt      string `json:"annotation_extension"`
	GeneProductFormID  string `json:"gene_product_form_id"`
	Raw                string `json:"-"`
}

// Segment returns the (aspect, status) segment the record belongs to.
func (r AnnotationRecord) Segment() Segment {
	return Segment{Aspect: r.Aspect, Status: r.Status}
}

// GeneRecord is a single parsed row of the gene list. Raw holds the original
// line verbatim.
type GeneRecord struct {
	ID          string `json:"gene_id"`
	ProductType string `json:"gene_product_type"`
	Raw         string `json:"-"`
}

// Segment is the query unit: one (aspect, status) pair.
type Segment struct {
	Aspect Aspect `json:"aspect"`
	Status Status `json:"status"`
}

// String renders the segment in ASPECT,STATUS form as accepted on the
// command line.
func (s Segment) String() string {
	return string(s.Aspect) + "," + string(s.Status)
}

// ParseSegment parses "ASPECT,STATUS" into a Segment.
func ParseSegment(spec string) (Segment, error) {
	parts := strings.SplitN(spec, ",", 2)
	if len(parts) != 2 {
		return Segment{}, &SegmentSpecError{Spec: spec, Reason: "expected ASPECT,STATUS"}
	}
	aspect, ok := ParseAspect(strings.TrimSpace(parts[0]))
	if !ok {
		return Segment{}, &SegmentSpecError{Spec: spec, Reason: "unknown aspect " + strings.TrimSpace(parts[0])}
	}
	status, ok := ParseStatus(strings.TrimSpace(parts[1]))
	if !ok {
		return Segment{}, &SegmentSpecError{Spec: spec, Reason: "unknown status " + strings.TrimSpace(parts[1])}
	}
	return Segment{Aspect: aspect, Status: status}, nil
}
