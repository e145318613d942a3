package engine

// fixedSymbols are the non-enemy tiles, in channel order. Horizontal and
// vertical walls share a channel.
var fixedSymbols = [...]byte{
	' ', // unexplored or blank
	'@', // player
	'#', // corridor
	'.', // floor
	'-', // wall ('|' maps here too)
	'%', // stairs
	'+', // door
	'^', // trap
	'!', // potion
	'?', // scroll
	']', // armor
	')', // weapon
	'/', // wand
	'*', // gold
	':', // food
	'=', // ring
	',', // amulet
}

// FixedSymbolCount is the number of symbols present in every dungeon.
const FixedSymbolCount = len(fixedSymbols)

// SymbolTable maps dungeon cell bytes to channel indices: the fixed
// tiles first, then one entry per enemy letter in roster order.
type SymbolTable struct {
	index   [256]int8
	symbols []byte
}

// NewSymbolTable builds a table for the given enemy letters. Duplicate
// letters share a channel.
func NewSymbolTable(enemyLetters []byte) *SymbolTable {
	t := &SymbolTable{}
	for i := range t.index {
		t.index[i] = -1
	}
	add := func(b byte) {
		if t.index[b] >= 0 {
			return
		}
		t.index[b] = int8(len(t.symbols))
		t.symbols = append(t.symbols, b)
	}
	for _, b := range fixedSymbols {
		add(b)
	}
	t.index['|'] = t.index['-']
	for _, b := range enemyLetters {
		add(b)
	}
	return t
}

// Index returns the channel of b.
func (t *SymbolTable) Index(b byte) (int, bool) {
	i := t.index[b]
	if i < 0 {
		return 0, false
	}
	return int(i), true
}

// Count returns the number of channels.
func (t *SymbolTable) Count() int { return len(t.symbols) }

// Symbols returns the channel symbols in order.
func (t *SymbolTable) Symbols() []byte {
	return append([]byte(nil), t.symbols...)
}
