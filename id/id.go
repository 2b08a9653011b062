// Package id implements the symbol/structure identity layer that every
// other package in this module builds on: semantic identifiers, the
// partitioned registry that defines and resolves them, and the fixed
// builtin ids the semtrex pattern language is written against.
package id

import "fmt"

// Kind distinguishes the namespace a Num is unique within, for a given
// Context.
type Kind int

const (
	STRUCTURE Kind = iota
	SYMBOL
	PROCESS
	RECEPTOR
	PROTOCOL
)

func (k Kind) String() string {
	switch k {
	case STRUCTURE:
		return "STRUCTURE"
	case SYMBOL:
		return "SYMBOL"
	case PROCESS:
		return "PROCESS"
	case RECEPTOR:
		return "RECEPTOR"
	case PROTOCOL:
		return "PROTOCOL"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ID is a semantic identifier: a (context, kind, id) triple. Context 0
// is the system context. Equality is component-wise, which makes ID
// safe to use directly as a map key.
type ID struct {
	Context int
	Kind    Kind
	Num     int
}

// NullSymbol and NullStructure are the two sentinel identifiers. They
// are distinct from each other and from every id a registry assigns.
var (
	NullSymbol    = ID{Context: 0, Kind: SYMBOL, Num: 0}
	NullStructure = ID{Context: 0, Kind: STRUCTURE, Num: 0}
)

// IsNull reports whether id is one of the two sentinels.
func (i ID) IsNull() bool {
	return i == NullSymbol || i == NullStructure
}

func (i ID) String() string {
	return fmt.Sprintf("(%d,%s,%d)", i.Context, i.Kind, i.Num)
}

// StructureDef is the definition a structure id resolves to.
type StructureDef struct {
	Label string
	Parts []ID
}

// SymbolDef is the definition a symbol id resolves to.
type SymbolDef struct {
	Label       string
	StructureID ID
}

type partition struct {
	symbols     map[int]SymbolDef
	structures  map[int]StructureDef
	nextSymbol  int
	nextStruct  int
	symbolOrder []int
	structOrder []int
}

func newPartition() *partition {
	return &partition{
		symbols:    make(map[int]SymbolDef),
		structures: make(map[int]StructureDef),
		nextSymbol: 1,
		nextStruct: 1,
	}
}

// Registry is a process-local, context-partitioned table of symbol and
// structure definitions. It is not safe for concurrent use (§5: the
// core is single-threaded).
type Registry struct {
	partitions   map[int]*partition
	contextOrder []int
}

// NewRegistry returns an empty registry. Callers that need the §6
// builtins installed should call RegisterBuiltins immediately after.
func NewRegistry() *Registry {
	return &Registry{partitions: make(map[int]*partition)}
}

func (r *Registry) partitionFor(context int) *partition {
	p, ok := r.partitions[context]
	if !ok {
		p = newPartition()
		r.partitions[context] = p
		r.contextOrder = append(r.contextOrder, context)
	}
	return p
}

// DefineSymbol allocates the next symbol id in context and records its
// label and owning structure. It returns the assigned ID.
func (r *Registry) DefineSymbol(context int, structureID ID, label string) ID {
	p := r.partitionFor(context)
	num := p.nextSymbol
	p.nextSymbol++
	p.symbols[num] = SymbolDef{Label: label, StructureID: structureID}
	p.symbolOrder = append(p.symbolOrder, num)
	return ID{Context: context, Kind: SYMBOL, Num: num}
}

// DefineStructure allocates the next structure id in context and
// records its label and ordered parts.
func (r *Registry) DefineStructure(context int, label string, parts ...ID) ID {
	p := r.partitionFor(context)
	num := p.nextStruct
	p.nextStruct++
	partsCopy := append([]ID(nil), parts...)
	p.structures[num] = StructureDef{Label: label, Parts: partsCopy}
	p.structOrder = append(p.structOrder, num)
	return ID{Context: context, Kind: STRUCTURE, Num: num}
}

// ResolveSymbol looks up a symbol id's definition.
func (r *Registry) ResolveSymbol(sym ID) (SymbolDef, bool) {
	if sym.Kind != SYMBOL {
		return SymbolDef{}, false
	}
	p, ok := r.partitions[sym.Context]
	if !ok {
		return SymbolDef{}, false
	}
	def, ok := p.symbols[sym.Num]
	return def, ok
}

// ResolveStructure looks up a structure id's definition.
func (r *Registry) ResolveStructure(s ID) (StructureDef, bool) {
	if s.Kind != STRUCTURE {
		return StructureDef{}, false
	}
	p, ok := r.partitions[s.Context]
	if !ok {
		return StructureDef{}, false
	}
	def, ok := p.structures[s.Num]
	return def, ok
}

// LabelOf returns the label an id was defined with, if any.
func (r *Registry) LabelOf(i ID) (string, bool) {
	switch i.Kind {
	case SYMBOL:
		def, ok := r.ResolveSymbol(i)
		return def.Label, ok
	case STRUCTURE:
		def, ok := r.ResolveStructure(i)
		return def.Label, ok
	default:
		return "", false
	}
}

// SymbolByName returns the id of the first symbol with that label,
// searching contexts in the deterministic order they were first used.
func (r *Registry) SymbolByName(label string) (ID, bool) {
	for _, ctx := range r.contextOrder {
		p := r.partitions[ctx]
		for _, num := range p.symbolOrder {
			if p.symbols[num].Label == label {
				return ID{Context: ctx, Kind: SYMBOL, Num: num}, true
			}
		}
	}
	return ID{}, false
}

// StructureByName returns the id of the first structure with that
// label, searching contexts in the deterministic order they were first
// used.
func (r *Registry) StructureByName(label string) (ID, bool) {
	for _, ctx := range r.contextOrder {
		p := r.partitions[ctx]
		for _, num := range p.structOrder {
			if p.structures[num].Label == label {
				return ID{Context: ctx, Kind: STRUCTURE, Num: num}, true
			}
		}
	}
	return ID{}, false
}

// LabelSnapshot is an immutable copy of one context's label tables.
// Nothing else in this module calls Snapshot; serialize/text resolves
// labels through SymbolByName and LabelOf instead.
type LabelSnapshot struct {
	Symbols    map[int]string
	Structures map[int]string
}

// Snapshot returns an immutable copy of context's label tables.
func (r *Registry) Snapshot(context int) LabelSnapshot {
	snap := LabelSnapshot{Symbols: map[int]string{}, Structures: map[int]string{}}
	p, ok := r.partitions[context]
	if !ok {
		return snap
	}
	for num, def := range p.symbols {
		snap.Symbols[num] = def.Label
	}
	for num, def := range p.structures {
		snap.Structures[num] = def.Label
	}
	return snap
}

// defineBuiltinSymbol installs a symbol at a fixed id, bypassing the
// monotonic allocator, and bumps the allocator past it. It is only
// ever called from RegisterBuiltins, before any user definitions.
func (p *partition) defineBuiltinSymbol(num int, structureID ID, label string) {
	p.symbols[num] = SymbolDef{Label: label, StructureID: structureID}
	p.symbolOrder = append(p.symbolOrder, num)
	if num+1 > p.nextSymbol {
		p.nextSymbol = num + 1
	}
}

func (p *partition) defineBuiltinStructure(num int, label string, parts ...ID) {
	p.structures[num] = StructureDef{Label: label, Parts: append([]ID(nil), parts...)}
	p.structOrder = append(p.structOrder, num)
	if num+1 > p.nextStruct {
		p.nextStruct = num + 1
	}
}
