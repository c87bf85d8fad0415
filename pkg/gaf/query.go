package gaf

import "sort"

// Mode selects how gene sets from multiple segments combine.
type Mode string

const (
	// ModeUnion keeps genes matched by any requested segment.
	ModeUnion Mode = "union"
	// ModeIntersection keeps genes matched by every requested segment.
	ModeIntersection Mode = "intersection"
)

// ParseMode validates a combination mode name.
func ParseMode(name string) (Mode, bool) {
	switch Mode(name) {
	case ModeUnion, ModeIntersection:
		return Mode(name), true
	}
	return "", false
}

// QueryResult is the outcome of evaluating a segment query: the matched gene
// IDs plus the annotation records retained for them, in the order the
// annotation table listed them.
type QueryResult struct {
	mode        Mode
	segments    []Segment
	geneIDs     map[string]struct{}
	annotations []AnnotationRecord
}

// Mode reports the combination mode the query ran under.
func (r *QueryResult) Mode() Mode { return r.mode }

// Segments reports the deduplicated segments the query evaluated, in request
// order.
func (r *QueryResult) Segments() []Segment {
	return append([]Segment(nil), r.segments...)
}

// GeneIDs returns the matched gene IDs in sorted order.
func (r *QueryResult) GeneIDs() []string {
	out := make([]string, 0, len(r.geneIDs))
	for id := range r.geneIDs {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// HasGene reports whether a gene ID matched the query.
func (r *QueryResult) HasGene(id string) bool {
	_, ok := r.geneIDs[id]
	return ok
}

// GeneCount reports the number of matched genes.
func (r *QueryResult) GeneCount() int { return len(r.geneIDs) }

// Annotations returns the retained annotation records in annotation-table
// order.
func (r *QueryResult) Annotations() []AnnotationRecord {
	return append([]AnnotationRecord(nil), r.annotations...)
}

// AnnotationCount reports the number of retained annotation records.
func (r *QueryResult) AnnotationCount() int { return len(r.annotations) }

// Evaluate runs a segment query against the index. Duplicate segments are
// collapsed before evaluation. The empty query is rejected so callers cannot
// mistake it for a match-nothing or match-everything request.
//
// Gene sets combine per mode; the retained annotation records are those of
// the requested segments whose gene survived the combination, emitted in the
// original annotation-table order. Evaluation either completes fully or
// fails; it never returns a partial result.
func Evaluate(idx *SegmentIndex, segments []Segment, mode Mode) (*QueryResult, error) {
	if len(segments) == 0 {
		return nil, &EmptyQueryError{}
	}
	if _, ok := ParseMode(string(mode)); !ok {
		return nil, &UnknownModeError{Mode: mode}
	}
	seen := make(map[Segment]struct{}, len(segments))
	deduped := make([]Segment, 0, len(segments))
	for _, seg := range segments {
		if _, ok := seen[seg]; ok {
			continue
		}
		seen[seg] = struct{}{}
		deduped = append(deduped, seg)
	}

	genes := combineGeneSets(idx, deduped, mode)

	positions := make(map[int]struct{})
	for _, seg := range deduped {
		for _, pos := range idx.recordPositions(seg) {
			if _, ok := genes[idx.annotations.records[pos].GeneID]; ok {
				positions[pos] = struct{}{}
			}
		}
	}
	ordered := make([]int, 0, len(positions))
	for pos := range positions {
		ordered = append(ordered, pos)
	}
	sort.Ints(ordered)

	retained := make([]AnnotationRecord, 0, len(ordered))
	for _, pos := range ordered {
		retained = append(retained, idx.annotations.records[pos])
	}

	return &QueryResult{
		mode:        mode,
		segments:    deduped,
		geneIDs:     genes,
		annotations: retained,
	}, nil
}

func combineGeneSets(idx *SegmentIndex, segments []Segment, mode Mode) map[string]struct{} {
	out := make(map[string]struct{})
	if mode == ModeUnion {
		for _, seg := range segments {
			for id := range idx.geneSet(seg) {
				out[id] = struct{}{}
			}
		}
		return out
	}
	for id := range idx.geneSet(segments[0]) {
		out[id] = struct{}{}
	}
	for _, seg := range segments[1:] {
		if len(out) == 0 {
			return out
		}
		next := idx.geneSet(seg)
		for id := range out {
			if _, ok := next[id]; !ok {
				delete(out, id)
			}
		}
	}
	return out
}
