package gaf

import "strings"

// AnnotationTable holds parsed annotation records in input order.
type AnnotationTable struct {
	records []AnnotationRecord
}

// ParseAnnotations builds an AnnotationTable from raw annotation lines.
// Blank lines and "!"-prefixed comment lines are skipped. Every other line
// must carry the full tab-delimited schema; short rows abort the parse with
// MalformedRecordError and unrecognized aspect codes with
// UnknownAspectError. The annotation status is derived from the evidence
// code while parsing. No uniqueness is enforced: one gene legitimately
// appears once per GO-term annotation.
func ParseAnnotations(lines []string) (*AnnotationTable, error) {
	t := &AnnotationTable{}
	for i, line := range lines {
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "!") {
			continue
		}
		lineNo := i + 1
		fields := strings.Split(line, "\t")
		if len(fields) < AnnotationFieldCount {
			return nil, &MalformedRecordError{Line: lineNo, Fields: len(fields), Content: line}
		}
		aspect, ok := ParseAspect(fields[8])
		if !ok {
			return nil, &UnknownAspectError{Line: lineNo, Aspect: fields[8]}
		}
		t.records = append(t.records, AnnotationRecord{
			Db:                 fields[0],
			DatabaseID:         fields[1],
			DbObjectSymbol:     fields[2],
			Qualifier:          fields[3],
			GoTerm:             fields[4],
			Reference:          fields[5],
			EvidenceCode:       fields[6],
			AdditionalEvidence: fields[7],
			Aspect:             aspect,
			Status:             StatusForEvidence(fields[6]),
			GeneID:             fields[9],
			Synonyms:           fields[10],
			GeneProductType:    fields[11],
			Taxon:              fields[12],
			Date:               fields[13],
			AssignedBy:         fields[14],
			AnnotationExt:      fields[15],
			GeneProductFormID:  fields[16],
			Raw:                line,
		})
	}
	return t, nil
}

// Records returns all annotation records in input order. The slice is
// shared; callers must not mutate it.
func (t *AnnotationTable) Records() []AnnotationRecord {
	return t.records
}

// Len reports the number of annotation records.
func (t *AnnotationTable) Len() int { return len(t.records) }
