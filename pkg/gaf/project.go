package gaf

// Projection is a filtered view of both datasets: the gene records whose ID
// matched a query, in gene-table order, and the query's retained annotation
// records, in annotation-table order.
type Projection struct {
	Genes       []GeneRecord
	Annotations []AnnotationRecord
}

// Project narrows the gene table to the query's matched genes. Matched IDs
// absent from the gene table are dropped silently; cross-file consistency is
// not this layer's concern. The annotation side passes through from the
// result untouched. Project never mutates its inputs.
func Project(genes *GeneTable, result *QueryResult) Projection {
	kept := make([]GeneRecord, 0, result.GeneCount())
	for _, gene := range genes.records {
		if result.HasGene(gene.ID) {
			kept = append(kept, gene)
		}
	}
	return Projection{
		Genes:       kept,
		Annotations: result.Annotations(),
	}
}

// GeneFilter optionally narrows projected gene records by product type.
type GeneFilter string

const (
	// GeneFilterAll keeps every matched gene.
	GeneFilterAll GeneFilter = "all"
	// GeneFilterProtein keeps only protein_coding genes.
	GeneFilterProtein GeneFilter = "include_protein"
)

// ParseGeneFilter validates a gene filter name.
func ParseGeneFilter(name string) (GeneFilter, bool) {
	switch GeneFilter(name) {
	case GeneFilterAll, GeneFilterProtein:
		return GeneFilter(name), true
	}
	return "", false
}

// Filter applies a gene filter to the projection. Annotation records are
// left as is; the filter concerns gene output only.
func (p Projection) Filter(filter GeneFilter) Projection {
	if filter != GeneFilterProtein {
		return p
	}
	return p.FilterProteinCoding()
}

// FilterProteinCoding narrows a projection's gene records to those whose
// product type is protein_coding. Annotation records are left as is.
func (p Projection) FilterProteinCoding() Projection {
	kept := make([]GeneRecord, 0, len(p.Genes))
	for _, gene := range p.Genes {
		if gene.ProductType == "protein_coding" {
			kept = append(kept, gene)
		}
	}
	return Projection{Genes: kept, Annotations: p.Annotations}
}
