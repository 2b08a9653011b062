package id

// Fixed structure ids in context 0, per §6.
const (
	BitNum           = 1
	IntegerNum       = 2
	FloatNum         = 3
	CharNum          = 4
	CStringNum       = 5
	SymbolStructNum  = 6
	BlobNum          = 7
	Integer64Num     = 8
	TreeNum          = 9
	TreePathNum      = 10
)

// Fixed SEMTREX_* symbol ids in context 0, per §6.
const (
	SymbolLiteralNum    = 20
	SymbolLiteralNotNum = 21
	SemtrexSymbolNum    = 22 // bare SEMTREX_SYMBOL
	SymbolSetNum        = 23
	SymbolAnyNum        = 24
	SequenceNum         = 25
	OrNum               = 26
	NotNum              = 27
	ZeroOrMoreNum       = 28
	OneOrMoreNum        = 29
	ZeroOrOneNum        = 30
	ValueLiteralNum     = 31
	ValueLiteralNotNum  = 32
	ValueSetNum         = 33
	GroupNum            = 34
	DescendNum          = 35
	WalkNum             = 36

	MatchNum              = 40
	MatchSymbolNum        = 41
	MatchPathNum          = 42
	MatchSiblingsCountNum = 43

	SemanticMapNum      = 44
	SemanticLinkNum     = 45
	UsageNum            = 46
	ReplacementValueNum = 47
)

// Builtins holds the ids RegisterBuiltins installs, so callers never
// have to re-resolve them by label.
type Builtins struct {
	Bit, Integer, Float, Char, CString, Symbol, Blob, Integer64, Tree, TreePath ID

	SymbolLiteral, SymbolLiteralNot, SymbolSym, SymbolSet, SymbolAny ID
	Sequence, Or, Not                                                ID
	ZeroOrMore, OneOrMore, ZeroOrOne                                 ID
	ValueLiteral, ValueLiteralNot, ValueSet                          ID
	Group, Descend, Walk                                             ID

	Match, MatchSymbol, MatchPath, MatchSiblingsCount ID

	SemanticMap, SemanticLink, Usage, ReplacementValue ID
}

// RegisterBuiltins installs the fixed structure and SEMTREX_* symbol
// ids from §6 into context 0 of r. It must be called before any user
// definitions in that registry, since it writes directly into the
// partition's tables and bumps the allocators past the highest fixed
// id, rather than going through the monotonic DefineSymbol/
// DefineStructure path.
//
// The SEMTREX_* operator symbols are structural tags, not data
// carriers, so they are registered with NullStructure rather than a
// dedicated backing structure.
func RegisterBuiltins(r *Registry) Builtins {
	p := r.partitionFor(0)

	mk := func(num int, label string) ID {
		p.defineBuiltinStructure(num, label)
		return ID{Context: 0, Kind: STRUCTURE, Num: num}
	}

	b := Builtins{
		Bit:       mk(BitNum, "BIT"),
		Integer:   mk(IntegerNum, "INTEGER"),
		Float:     mk(FloatNum, "FLOAT"),
		Char:      mk(CharNum, "CHAR"),
		CString:   mk(CStringNum, "CSTRING"),
		Symbol:    mk(SymbolStructNum, "SYMBOL"),
		Blob:      mk(BlobNum, "BLOB"),
		Integer64: mk(Integer64Num, "INTEGER64"),
		Tree:      mk(TreeNum, "TREE"),
		TreePath:  mk(TreePathNum, "TREE_PATH"),
	}

	sym := func(num int, label string) ID {
		p.defineBuiltinSymbol(num, NullStructure, label)
		return ID{Context: 0, Kind: SYMBOL, Num: num}
	}

	b.SymbolLiteral = sym(SymbolLiteralNum, "SEMTREX_SYMBOL_LITERAL")
	b.SymbolLiteralNot = sym(SymbolLiteralNotNum, "SEMTREX_SYMBOL_LITERAL_NOT")
	b.SymbolSym = sym(SemtrexSymbolNum, "SEMTREX_SYMBOL")
	b.SymbolSet = sym(SymbolSetNum, "SEMTREX_SYMBOL_SET")
	b.SymbolAny = sym(SymbolAnyNum, "SEMTREX_SYMBOL_ANY")
	b.Sequence = sym(SequenceNum, "SEMTREX_SEQUENCE")
	b.Or = sym(OrNum, "SEMTREX_OR")
	b.Not = sym(NotNum, "SEMTREX_NOT")
	b.ZeroOrMore = sym(ZeroOrMoreNum, "SEMTREX_ZERO_OR_MORE")
	b.OneOrMore = sym(OneOrMoreNum, "SEMTREX_ONE_OR_MORE")
	b.ZeroOrOne = sym(ZeroOrOneNum, "SEMTREX_ZERO_OR_ONE")
	b.ValueLiteral = sym(ValueLiteralNum, "SEMTREX_VALUE_LITERAL")
	b.ValueLiteralNot = sym(ValueLiteralNotNum, "SEMTREX_VALUE_LITERAL_NOT")
	b.ValueSet = sym(ValueSetNum, "SEMTREX_VALUE_SET")
	b.Group = sym(GroupNum, "SEMTREX_GROUP")
	b.Descend = sym(DescendNum, "SEMTREX_DESCEND")
	b.Walk = sym(WalkNum, "SEMTREX_WALK")

	b.Match = sym(MatchNum, "SEMTREX_MATCH")
	b.MatchSymbol = sym(MatchSymbolNum, "MATCH_SYMBOL")
	b.MatchPath = sym(MatchPathNum, "MATCH_PATH")
	b.MatchSiblingsCount = sym(MatchSiblingsCountNum, "MATCH_SIBLINGS_COUNT")

	b.SemanticMap = sym(SemanticMapNum, "SEMANTIC_MAP")
	b.SemanticLink = sym(SemanticLinkNum, "SEMANTIC_LINK")
	b.Usage = sym(UsageNum, "USAGE")
	b.ReplacementValue = sym(ReplacementValueNum, "REPLACEMENT_VALUE")

	return b
}
