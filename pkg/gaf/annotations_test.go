package gaf

import (
	"errors"
	"strings"
	"testing"
)

// annoLine builds a full-width annotation row for a gene. Shared across the
// package's tests.
func annoLine(gene, symbol string, aspect Aspect, evidence string) string {
	fields := []string{
		"TAIR",
		"locus:" + gene,
		symbol,
		"",
		"GO:0003674",
		"TAIR:Publication:501713238",
		evidence,
		"",
		string(aspect),
		gene,
		symbol + "|" + gene,
		"protein",
		"taxon:3702",
		"20190907",
		"TAIR",
		"",
		"",
	}
	return strings.Join(fields, "\t")
}

func TestParseAnnotations_SkipsCommentsAndBlanks(t *testing.T) {
	table, err := ParseAnnotations([]string{
		"!gaf-version: 2.1",
		"",
		annoLine("AT1G01010", "NAC001", AspectFunction, "IDA"),
		"!generated-by: TAIR",
		annoLine("AT1G01020", "ARV1", AspectComponent, "IEA"),
	})
	if err != nil {
		t.Fatalf("ParseAnnotations: %v", err)
	}
	if table.Len() != 2 {
		t.Fatalf("expected 2 records, got %d", table.Len())
	}
	records := table.Records()
	if records[0].GeneID != "AT1G01010" || records[1].GeneID != "AT1G01020" {
		t.Fatalf("order not preserved: %q, %q", records[0].GeneID, records[1].GeneID)
	}
}

func TestParseAnnotations_FieldMapping(t *testing.T) {
	line := annoLine("AT1G01010", "NAC001", AspectFunction, "IDA")
	table, err := ParseAnnotations([]string{line})
	if err != nil {
		t.Fatalf("ParseAnnotations: %v", err)
	}
	rec := table.Records()[0]
	if rec.Db != "TAIR" {
		t.Fatalf("Db = %q", rec.Db)
	}
	if rec.DatabaseID != "locus:AT1G01010" {
		t.Fatalf("DatabaseID = %q", rec.DatabaseID)
	}
	if rec.GoTerm != "GO:0003674" {
		t.Fatalf("GoTerm = %q", rec.GoTerm)
	}
	if rec.EvidenceCode != "IDA" {
		t.Fatalf("EvidenceCode = %q", rec.EvidenceCode)
	}
	if rec.Aspect != AspectFunction {
		t.Fatalf("Aspect = %q", rec.Aspect)
	}
	if rec.Status != StatusExp {
		t.Fatalf("Status = %q", rec.Status)
	}
	if rec.GeneID != "AT1G01010" {
		t.Fatalf("GeneID = %q", rec.GeneID)
	}
	if rec.Taxon != "taxon:3702" {
		t.Fatalf("Taxon = %q", rec.Taxon)
	}
	if rec.Raw != line {
		t.Fatalf("raw line not preserved: %q", rec.Raw)
	}
	if got := rec.Segment(); got != (Segment{Aspect: AspectFunction, Status: StatusExp}) {
		t.Fatalf("Segment() = %+v", got)
	}
}

func TestParseAnnotations_ShortRecord(t *testing.T) {
	_, err := ParseAnnotations([]string{
		"!gaf-version: 2.1",
		annoLine("AT1G01010", "NAC001", AspectFunction, "IDA"),
		"AT1G01020\tF\tIDA",
	})
	var malformed *MalformedRecordError
	if !errors.As(err, &malformed) {
		t.Fatalf("expected MalformedRecordError, got %v", err)
	}
	if malformed.Line != 3 {
		t.Fatalf("malformed line reported as %d, want 3", malformed.Line)
	}
	if malformed.Fields != 3 {
		t.Fatalf("field count = %d, want 3", malformed.Fields)
	}
	if malformed.Content != "AT1G01020\tF\tIDA" {
		t.Fatalf("offending line not carried: %q", malformed.Content)
	}
}

func TestParseAnnotations_UnknownAspect(t *testing.T) {
	_, err := ParseAnnotations([]string{
		annoLine("AT1G01010", "NAC001", Aspect("Q"), "IDA"),
	})
	var unknown *UnknownAspectError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownAspectError, got %v", err)
	}
	if unknown.Aspect != "Q" {
		t.Fatalf("aspect = %q, want Q", unknown.Aspect)
	}
	if unknown.Line != 1 {
		t.Fatalf("line = %d, want 1", unknown.Line)
	}
}

func TestParseAnnotations_StatusDerivation(t *testing.T) {
	table, err := ParseAnnotations([]string{
		annoLine("AT1G01010", "NAC001", AspectFunction, "IDA"),
		annoLine("AT1G01010", "NAC001", AspectFunction, "ND"),
		annoLine("AT1G01010", "NAC001", AspectFunction, "IEA"),
	})
	if err != nil {
		t.Fatalf("ParseAnnotations: %v", err)
	}
	want := []Status{StatusExp, StatusUnknown, StatusOther}
	for i, rec := range table.Records() {
		if rec.Status != want[i] {
			t.Fatalf("record %d status = %s, want %s", i, rec.Status, want[i])
		}
	}
}

func TestParseAnnotations_RepeatedGeneAllowed(t *testing.T) {
	table, err := ParseAnnotations([]string{
		annoLine("AT1G01010", "NAC001", AspectFunction, "IDA"),
		annoLine("AT1G01010", "NAC001", AspectProcess, "IMP"),
	})
	if err != nil {
		t.Fatalf("one gene per GO term must be legal: %v", err)
	}
	if table.Len() != 2 {
		t.Fatalf("expected 2 records, got %d", table.Len())
	}
}
