package gaf

import (
	"reflect"
	"testing"
)

func TestBuildIndex_Buckets(t *testing.T) {
	table, err := ParseAnnotations([]string{
		annoLine("AT1G01010", "NAC001", AspectFunction, "IDA"),
		annoLine("AT1G01020", "ARV1", AspectFunction, "EXP"),
		annoLine("AT1G01010", "NAC001", AspectProcess, "IEA"),
	})
	if err != nil {
		t.Fatalf("ParseAnnotations: %v", err)
	}
	idx := BuildIndex(table)

	fExp := Segment{Aspect: AspectFunction, Status: StatusExp}
	got := idx.GeneIDs(fExp)
	want := []string{"AT1G01010", "AT1G01020"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("GeneIDs(%s) = %v, want %v", fExp, got, want)
	}
	if idx.GeneCount(fExp) != 2 {
		t.Fatalf("GeneCount = %d, want 2", idx.GeneCount(fExp))
	}
	if idx.RecordCount(fExp) != 2 {
		t.Fatalf("RecordCount = %d, want 2", idx.RecordCount(fExp))
	}
	pOther := Segment{Aspect: AspectProcess, Status: StatusOther}
	if idx.RecordCount(pOther) != 1 {
		t.Fatalf("RecordCount(%s) = %d, want 1", pOther, idx.RecordCount(pOther))
	}
}

func TestBuildIndex_MissingSegmentIsEmpty(t *testing.T) {
	table, err := ParseAnnotations([]string{
		annoLine("AT1G01010", "NAC001", AspectFunction, "IDA"),
	})
	if err != nil {
		t.Fatalf("ParseAnnotations: %v", err)
	}
	idx := BuildIndex(table)
	absent := Segment{Aspect: AspectComponent, Status: StatusUnknown}
	if got := idx.GeneIDs(absent); len(got) != 0 {
		t.Fatalf("GeneIDs for absent segment = %v, want empty", got)
	}
	if idx.GeneCount(absent) != 0 || idx.RecordCount(absent) != 0 {
		t.Fatal("absent segment must count zero")
	}
}

func TestBuildIndexWithGenes_DerivesUnannotated(t *testing.T) {
	genes, err := ParseGenes([]string{
		"AT1G01010\tprotein_coding",
		"AT1G01020\tprotein_coding",
		"AT1G01030\tother_rna",
	})
	if err != nil {
		t.Fatalf("ParseGenes: %v", err)
	}
	annotations, err := ParseAnnotations([]string{
		annoLine("AT1G01010", "NAC001", AspectFunction, "IDA"),
		annoLine("AT1G01020", "ARV1", AspectFunction, "ND"),
	})
	if err != nil {
		t.Fatalf("ParseAnnotations: %v", err)
	}
	idx := BuildIndexWithGenes(genes, annotations)

	fUnannotated := Segment{Aspect: AspectFunction, Status: StatusUnannotated}
	if got := idx.GeneIDs(fUnannotated); !reflect.DeepEqual(got, []string{"AT1G01030"}) {
		t.Fatalf("GeneIDs(%s) = %v", fUnannotated, got)
	}
	pUnannotated := Segment{Aspect: AspectProcess, Status: StatusUnannotated}
	want := []string{"AT1G01010", "AT1G01020", "AT1G01030"}
	if got := idx.GeneIDs(pUnannotated); !reflect.DeepEqual(got, want) {
		t.Fatalf("GeneIDs(%s) = %v, want %v", pUnannotated, got, want)
	}
	if idx.RecordCount(fUnannotated) != 0 {
		t.Fatal("derived segments must own no annotation records")
	}
}

func TestSegmentIndex_SegmentsCanonicalOrder(t *testing.T) {
	table, err := ParseAnnotations([]string{
		annoLine("AT1G01010", "NAC001", AspectComponent, "IEA"),
		annoLine("AT1G01010", "NAC001", AspectFunction, "ND"),
		annoLine("AT1G01010", "NAC001", AspectFunction, "IDA"),
		annoLine("AT1G01010", "NAC001", AspectProcess, "IMP"),
	})
	if err != nil {
		t.Fatalf("ParseAnnotations: %v", err)
	}
	idx := BuildIndex(table)
	want := []Segment{
		{Aspect: AspectFunction, Status: StatusExp},
		{Aspect: AspectFunction, Status: StatusUnknown},
		{Aspect: AspectProcess, Status: StatusExp},
		{Aspect: AspectComponent, Status: StatusOther},
	}
	if got := idx.Segments(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Segments() = %v, want %v", got, want)
	}
}
