package ontology

// termIndex is a dense integer handle for a term inside one Graph.
type termIndex uint32

// symbolTable maps primary and alternate ids to dense term indices so the
// traversal can work on integers.
type symbolTable struct {
	primary   map[string]termIndex
	alternate map[string]termIndex
	ids       []string
}

func newSymbolTable(capacity int) *symbolTable {
	return &symbolTable{
		primary:   make(map[string]termIndex, capacity),
		alternate: make(map[string]termIndex, capacity/8),
		ids:       make([]string, 0, capacity),
	}
}

// intern returns the index for a primary id, creating one if needed. The
// second result is false when the id was already present.
func (st *symbolTable) intern(id string) (termIndex, bool) {
	if idx, ok := st.primary[id]; ok {
		return idx, false
	}
	idx := termIndex(len(st.ids))
	st.primary[id] = idx
	st.ids = append(st.ids, id)
	return idx, true
}

// alias registers alt as a secondary name for idx. A primary id always wins
// over an alternate id of the same spelling.
func (st *symbolTable) alias(alt string, idx termIndex) {
	if _, ok := st.primary[alt]; ok {
		return
	}
	st.alternate[alt] = idx
}

// resolve looks up a primary id first and falls back to alternate ids.
func (st *symbolTable) resolve(id string) (termIndex, bool) {
	if idx, ok := st.primary[id]; ok {
		return idx, true
	}
	idx, ok := st.alternate[id]
	return idx, ok
}

func (st *symbolTable) name(idx termIndex) string {
	if int(idx) < len(st.ids) {
		return st.ids[idx]
	}
	return ""
}

func (st *symbolTable) len() int { return len(st.ids) }
