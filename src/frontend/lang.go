package frontend

type reservedItem struct {
	val string
	typ itemType
}

// rw contains the set of all reserved C-- keywords.
// The index into the first dimension is the length of the word minus one.
// The second dimension is the slice of all words of that length.
// Indexing by length and searching should be faster than using a hash table.
var rw = [...][]reservedItem{
	// One-grams
	{},
	// Two-grams
	{
		{val: "if", typ: IF},
	},
	// Three-grams
	{
		{val: "int", typ: INT},
	},
	// Four-grams
	{
		{val: "void", typ: VOID},
		{val: "else", typ: ELSE},
	},
	// Five-grams
	{
		{val: "while", typ: WHILE},
	},
	// Six-grams
	{
		{val: "return", typ: RETURN},
	},
}

// isKeyword returns true if the string s is a reserved C-- keyword.
// On the return of true the itemType of the keyword is returned.
// On the return of false the itemType is IDENTIFIER.
func isKeyword(s string) (bool, itemType) {
	if len(s) == 0 || len(s) > len(rw) {
		return false, IDENTIFIER
	}
	for _, e1 := range rw[len(s)-1] {
		if e1.val == s {
			return true, e1.typ
		}
	}
	return false, IDENTIFIER
}
