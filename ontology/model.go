package ontology

// Namespace is the GO sub-ontology a term belongs to.
type Namespace string

const (
	MolecularFunction Namespace = "molecular_function"
	BiologicalProcess Namespace = "biological_process"
	CellularComponent Namespace = "cellular_component"

	// Unfiltered matches every namespace when selecting terms. Root and
	// administrative terms without a namespace also carry it.
	Unfiltered Namespace = ""
)

// Namespaces lists the three domain categories in reporting order.
var Namespaces = []Namespace{MolecularFunction, BiologicalProcess, CellularComponent}

// Valid reports whether n is one of the domain categories or Unfiltered.
func (n Namespace) Valid() bool {
	switch n {
	case MolecularFunction, BiologicalProcess, CellularComponent, Unfiltered:
		return true
	}
	return false
}

// Matches reports whether a term in namespace other is selected by n.
func (n Namespace) Matches(other Namespace) bool {
	return n == Unfiltered || n == other
}

// RelationKind names a directed edge type between two terms.
type RelationKind string

const (
	IsA                 RelationKind = "is_a"
	PartOf              RelationKind = "part_of"
	HasPart             RelationKind = "has_part"
	OccursIn            RelationKind = "occurs_in"
	Regulates           RelationKind = "regulates"
	PositivelyRegulates RelationKind = "positively_regulates"
	NegativelyRegulates RelationKind = "negatively_regulates"
)

// ancestryKinds are followed by strict ancestry queries.
var ancestryKinds = []RelationKind{IsA, PartOf, OccursIn}

// Header holds the ontology-level tags found before the first stanza.
type Header struct {
	FormatVersion string `json:"format_version,omitempty" yaml:"format_version,omitempty"`
	DataVersion   string `json:"data_version,omitempty" yaml:"data_version,omitempty"`
	Ontology      string `json:"ontology,omitempty" yaml:"ontology,omitempty"`
}

// IntersectionPart is one conjunct of an intersection_of definition.
// An empty Relation marks the genus (a plain class).
type IntersectionPart struct {
	Relation RelationKind `json:"relation,omitempty" yaml:"relation,omitempty"`
	TargetID string       `json:"target_id" yaml:"target_id"`
}

// Term is a single GO concept. Terms are created by the parser and owned by
// a Graph; only slim merging touches them after load.
type Term struct {
	ID             string                    `json:"id" yaml:"id"`
	Name           string                    `json:"name,omitempty" yaml:"name,omitempty"`
	Namespace      Namespace                 `json:"namespace,omitempty" yaml:"namespace,omitempty"`
	AltIDs         []string                  `json:"alt_ids,omitempty" yaml:"alt_ids,omitempty"`
	Definition     string                    `json:"definition,omitempty" yaml:"definition,omitempty"`
	Comment        string                    `json:"comment,omitempty" yaml:"comment,omitempty"`
	Obsolete       bool                      `json:"obsolete,omitempty" yaml:"obsolete,omitempty"`
	ReplacedBy     []string                  `json:"replaced_by,omitempty" yaml:"replaced_by,omitempty"`
	Consider       []string                  `json:"consider,omitempty" yaml:"consider,omitempty"`
	Subsets        []string                  `json:"subsets,omitempty" yaml:"subsets,omitempty"`
	IntersectionOf []IntersectionPart        `json:"intersection_of,omitempty" yaml:"intersection_of,omitempty"`
	Relations      map[RelationKind][]string `json:"relations,omitempty" yaml:"relations,omitempty"`
}

// Parents returns the targets of the given relation kind in file order.
func (t *Term) Parents(kind RelationKind) []string {
	return t.Relations[kind]
}

// HasSubset reports whether the term is tagged with the given subset.
func (t *Term) HasSubset(tag string) bool {
	for _, s := range t.Subsets {
		if s == tag {
			return true
		}
	}
	return false
}

func (t *Term) addRelation(kind RelationKind, target string) {
	if t.Relations == nil {
		t.Relations = make(map[RelationKind][]string, 2)
	}
	t.Relations[kind] = append(t.Relations[kind], target)
}

// addSubset appends tag unless it is already present.
func (t *Term) addSubset(tag string) bool {
	if t.HasSubset(tag) {
		return false
	}
	t.Subsets = append(t.Subsets, tag)
	return true
}
