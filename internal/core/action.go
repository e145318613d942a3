package core

import (
	"fmt"
)

// Action is an index into the fixed keystroke vocabulary.
// The ordering is part of the external contract: index-based callers
// (agents, recorded datasets) depend on it staying stable.
type Action int

const (
	ActionNoop      Action = iota // .
	ActionLeft                    // h
	ActionDown                    // j
	ActionUp                      // k
	ActionRight                   // l
	ActionDownRight               // n
	ActionDownLeft                // b
	ActionUpRight                 // u
	ActionUpLeft                  // y
	ActionDescend                 // >
	ActionSearch                  // s
)

// ActionCount is the size of the vocabulary.
const ActionCount = 11

// vocabulary maps each Action to the keystroke the engine consumes.
var vocabulary = [ActionCount]byte{'.', 'h', 'j', 'k', 'l', 'n', 'b', 'u', 'y', '>', 's'}

var actionNames = [ActionCount]string{
	"Noop", "MoveLeft", "MoveDown", "MoveUp", "MoveRight",
	"MoveDownRight", "MoveDownLeft", "MoveUpRight", "MoveUpLeft",
	"Descend", "Search",
}

// String returns a human-readable name for the action.
func (a Action) String() string {
	if a < 0 || int(a) >= ActionCount {
		return "Unknown"
	}
	return actionNames[a]
}

// Key returns the keystroke for the action.
func (a Action) Key() (byte, error) {
	if a < 0 || int(a) >= ActionCount {
		return 0, fmt.Errorf("%w: index %d out of range [0, %d)", ErrInvalidAction, int(a), ActionCount)
	}
	return vocabulary[a], nil
}

// Keys implements Input.
func (a Action) Keys() ([]byte, error) {
	k, err := a.Key()
	if err != nil {
		return nil, err
	}
	return []byte{k}, nil
}

// Macro is a raw sequence of vocabulary keystrokes issued in one step,
// e.g. "hjk" moves three times.
type Macro string

// Keys implements Input.
func (m Macro) Keys() ([]byte, error) {
	return DecodeString(string(m))
}

// Input is anything an environment can turn into keystrokes.
type Input interface {
	Keys() ([]byte, error)
}

// Vocabulary returns a copy of the keystroke table in action order.
func Vocabulary() []byte {
	out := make([]byte, ActionCount)
	copy(out, vocabulary[:])
	return out
}

// Decode maps an action index to its keystroke sequence.
func Decode(index int) ([]byte, error) {
	return Action(index).Keys()
}

// DecodeString validates a macro string and returns its keystrokes.
func DecodeString(s string) ([]byte, error) {
	if s == "" {
		return nil, fmt.Errorf("%w: empty keystroke sequence", ErrInvalidAction)
	}
	keys := make([]byte, 0, len(s))
	for i, r := range s {
		if r > 0x7f {
			return nil, fmt.Errorf("%w: unrecognized keystroke %q at %d", ErrInvalidAction, r, i)
		}
		if _, err := Encode(byte(r)); err != nil {
			return nil, fmt.Errorf("%w: unrecognized keystroke %q at %d", ErrInvalidAction, r, i)
		}
		keys = append(keys, byte(r))
	}
	return keys, nil
}

// Encode maps a keystroke back to its action.
func Encode(key byte) (Action, error) {
	for i, k := range vocabulary {
		if k == key {
			return Action(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unrecognized keystroke %q", ErrInvalidAction, key)
}

// IsKey reports whether key belongs to the vocabulary.
func IsKey(key byte) bool {
	_, err := Encode(key)
	return err == nil
}
