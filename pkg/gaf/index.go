package gaf

import "sort"

type segmentBucket struct {
	genes map[string]struct{}
	// positions into the annotation table, ascending by construction
	records []int
}

// SegmentIndex groups annotation records into buckets keyed by
// (aspect, status). A segment that was never observed simply has no bucket;
// lookups against it yield empty sets rather than errors.
type SegmentIndex struct {
	annotations *AnnotationTable
	buckets     map[Segment]*segmentBucket
}

// BuildIndex indexes an annotation table by segment. Unannotated buckets
// stay empty because deriving them requires the gene universe; use
// BuildIndexWithGenes when unannotated segments should be queryable.
func BuildIndex(annotations *AnnotationTable) *SegmentIndex {
	idx := &SegmentIndex{
		annotations: annotations,
		buckets:     make(map[Segment]*segmentBucket),
	}
	for i, rec := range annotations.records {
		b := idx.bucket(rec.Segment())
		b.genes[rec.GeneID] = struct{}{}
		b.records = append(b.records, i)
	}
	return idx
}

// BuildIndexWithGenes indexes the annotation table and additionally derives,
// per aspect, the UNANNOTATED segment: the genes of the gene table carrying
// no annotation record in that aspect. Those buckets contribute gene IDs
// only; they own no annotation records.
func BuildIndexWithGenes(genes *GeneTable, annotations *AnnotationTable) *SegmentIndex {
	idx := BuildIndex(annotations)
	for _, aspect := range Aspects() {
		annotated := make(map[string]struct{})
		for _, status := range []Status{StatusExp, StatusOther, StatusUnknown} {
			if b, ok := idx.buckets[Segment{Aspect: aspect, Status: status}]; ok {
				for id := range b.genes {
					annotated[id] = struct{}{}
				}
			}
		}
		for _, gene := range genes.records {
			if _, ok := annotated[gene.ID]; ok {
				continue
			}
			b := idx.bucket(Segment{Aspect: aspect, Status: StatusUnannotated})
			b.genes[gene.ID] = struct{}{}
		}
	}
	return idx
}

func (idx *SegmentIndex) bucket(seg Segment) *segmentBucket {
	b, ok := idx.buckets[seg]
	if !ok {
		b = &segmentBucket{genes: make(map[string]struct{})}
		idx.buckets[seg] = b
	}
	return b
}

// geneSet returns the internal gene set for a segment, which may be nil.
func (idx *SegmentIndex) geneSet(seg Segment) map[string]struct{} {
	if b, ok := idx.buckets[seg]; ok {
		return b.genes
	}
	return nil
}

// recordPositions returns the segment's annotation positions, which may be
// nil for an absent or derived segment.
func (idx *SegmentIndex) recordPositions(seg Segment) []int {
	if b, ok := idx.buckets[seg]; ok {
		return b.records
	}
	return nil
}

// GeneIDs returns the sorted gene IDs observed in a segment. An absent
// segment yields an empty slice.
func (idx *SegmentIndex) GeneIDs(seg Segment) []string {
	set := idx.geneSet(seg)
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// GeneCount reports the number of distinct genes in a segment.
func (idx *SegmentIndex) GeneCount(seg Segment) int {
	return len(idx.geneSet(seg))
}

// RecordCount reports the number of annotation records in a segment.
func (idx *SegmentIndex) RecordCount(seg Segment) int {
	return len(idx.recordPositions(seg))
}

// Segments lists the populated segments in canonical aspect/status order.
func (idx *SegmentIndex) Segments() []Segment {
	out := make([]Segment, 0, len(idx.buckets))
	for seg := range idx.buckets {
		out = append(out, seg)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Aspect != out[j].Aspect {
			return aspectRank(out[i].Aspect) < aspectRank(out[j].Aspect)
		}
		return statusRank(out[i].Status) < statusRank(out[j].Status)
	})
	return out
}

// Annotations exposes the indexed table.
func (idx *SegmentIndex) Annotations() *AnnotationTable {
	return idx.annotations
}

func aspectRank(a Aspect) int {
	for i, known := range Aspects() {
		if a == known {
			return i
		}
	}
	return len(Aspects())
}

func statusRank(s Status) int {
	for i, known := range Statuses() {
		if s == known {
			return i
		}
	}
	return len(Statuses())
}
