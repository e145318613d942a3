package rogue

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/vovakirdan/rogue-gym/internal/core"
)

// EnemyKind describes one monster type of the roster.
type EnemyKind struct {
	Name   string
	Letter byte
	Level  int // hit dice
	Damage int // max damage per hit
	Exp    int // experience awarded when killed
	Flits  bool
}

// enemyKinds is the monster table, keyed by lower-case name.
var enemyKinds = map[string]EnemyKind{
	"bat":         {Name: "bat", Letter: 'B', Level: 1, Damage: 2, Exp: 1, Flits: true},
	"emu":         {Name: "emu", Letter: 'E', Level: 1, Damage: 2, Exp: 2},
	"hobgoblin":   {Name: "hobgoblin", Letter: 'H', Level: 1, Damage: 8, Exp: 3},
	"ice monster": {Name: "ice monster", Letter: 'I', Level: 1, Damage: 2, Exp: 5},
	"jackal":      {Name: "jackal", Letter: 'J', Level: 1, Damage: 2, Exp: 2},
	"kestrel":     {Name: "kestrel", Letter: 'K', Level: 1, Damage: 4, Exp: 1, Flits: true},
	"snake":       {Name: "snake", Letter: 'S', Level: 1, Damage: 3, Exp: 2},
	"orc":         {Name: "orc", Letter: 'O', Level: 1, Damage: 8, Exp: 5},
	"rattlesnake": {Name: "rattlesnake", Letter: 'R', Level: 2, Damage: 6, Exp: 9},
	"zombie":      {Name: "zombie", Letter: 'Z', Level: 2, Damage: 8, Exp: 6},
	"giant ant":   {Name: "giant ant", Letter: 'A', Level: 2, Damage: 4, Exp: 20},
	"centaur":     {Name: "centaur", Letter: 'C', Level: 4, Damage: 6, Exp: 17},
	"yeti":        {Name: "yeti", Letter: 'Y', Level: 4, Damage: 6, Exp: 50},
	"troll":       {Name: "troll", Letter: 'T', Level: 6, Damage: 8, Exp: 120},
}

// lookupRoster resolves roster names to kinds.
func lookupRoster(names []string) ([]EnemyKind, error) {
	kinds := make([]EnemyKind, 0, len(names))
	for _, name := range names {
		k, ok := enemyKinds[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			return nil, fmt.Errorf("%w: unknown enemy %q", core.ErrInvalidConfiguration, name)
		}
		kinds = append(kinds, k)
	}
	return kinds, nil
}

// rosterLetters returns the distinct letters of a roster in order.
func rosterLetters(kinds []EnemyKind) []byte {
	var letters []byte
	seen := make(map[byte]bool)
	for _, k := range kinds {
		if !seen[k.Letter] {
			seen[k.Letter] = true
			letters = append(letters, k.Letter)
		}
	}
	return letters
}

// Enemy is a live monster on the current floor.
type Enemy struct {
	Kind  EnemyKind
	Pos   core.Point
	HP    int
	Awake bool
}

// newEnemy rolls hit points for a monster of kind k.
func newEnemy(rng *rand.Rand, k EnemyKind, pos core.Point) *Enemy {
	hp := 0
	for range k.Level {
		hp += 1 + rng.Intn(8)
	}
	return &Enemy{Kind: k, Pos: pos, HP: hp}
}
