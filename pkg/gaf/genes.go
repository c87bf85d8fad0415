package gaf

import "strings"

// GeneTable holds the parsed gene list in input order with unique IDs.
type GeneTable struct {
	records []GeneRecord
	byID    map[string]int
}

// ParseGenes builds a GeneTable from raw gene-list lines. Every non-blank
// line becomes one record; the gene ID is the trimmed first tab-delimited
// field. A repeated gene ID aborts the parse with DuplicateGeneError, and a
// line without an ID aborts with MalformedGeneError. Line numbers are
// 1-based within the supplied lines.
func ParseGenes(lines []string) (*GeneTable, error) {
	t := &GeneTable{byID: make(map[string]int)}
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		lineNo := i + 1
		fields := strings.SplitN(line, "\t", 3)
		id := strings.TrimSpace(fields[0])
		if id == "" {
			return nil, &MalformedGeneError{Line: lineNo, Content: line}
		}
		if _, exists := t.byID[id]; exists {
			return nil, &DuplicateGeneError{GeneID: id, Line: lineNo}
		}
		rec := GeneRecord{ID: id, Raw: line}
		if len(fields) > 1 {
			rec.ProductType = strings.TrimSpace(fields[1])
		}
		t.byID[id] = len(t.records)
		t.records = append(t.records, rec)
	}
	return t, nil
}

// Records returns all gene records in input order. The slice is shared;
// callers must not mutate it.
func (t *GeneTable) Records() []GeneRecord {
	return t.records
}

// Len reports the number of genes.
func (t *GeneTable) Len() int { return len(t.records) }

// Lookup returns the record for a gene ID.
func (t *GeneTable) Lookup(id string) (GeneRecord, bool) {
	idx, ok := t.byID[id]
	if !ok {
		return GeneRecord{}, false
	}
	return t.records[idx], true
}

// Has reports whether the table contains a gene ID.
func (t *GeneTable) Has(id string) bool {
	_, ok := t.byID[id]
	return ok
}
