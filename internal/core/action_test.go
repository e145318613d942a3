package core

import (
	"errors"
	"testing"
)

func TestVocabularyOrder(t *testing.T) {
	expected := ".hjklnbuy>s"
	if got := string(Vocabulary()); got != expected {
		t.Fatalf("Vocabulary() = %q, expected %q", got, expected)
	}
	if len(expected) != ActionCount {
		t.Fatalf("ActionCount = %d, expected %d", ActionCount, len(expected))
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		index   int
		want    byte
		wantErr bool
	}{
		{0, '.', false},
		{1, 'h', false},
		{9, '>', false},
		{10, 's', false},
		{11, 0, true},
		{-1, 0, true},
	}

	for _, tc := range tests {
		keys, err := Decode(tc.index)
		if tc.wantErr {
			if !errors.Is(err, ErrInvalidAction) {
				t.Errorf("Decode(%d) error = %v, expected ErrInvalidAction", tc.index, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("Decode(%d) failed: %v", tc.index, err)
		}
		if len(keys) != 1 || keys[0] != tc.want {
			t.Errorf("Decode(%d) = %q, expected %q", tc.index, keys, tc.want)
		}
	}
}

func TestDecodeString(t *testing.T) {
	keys, err := DecodeString("hjk")
	if err != nil {
		t.Fatalf("DecodeString failed: %v", err)
	}
	if string(keys) != "hjk" {
		t.Errorf("DecodeString = %q, expected \"hjk\"", keys)
	}

	for _, bad := range []string{"", "hxj", "H", "é"} {
		if _, err := DecodeString(bad); !errors.Is(err, ErrInvalidAction) {
			t.Errorf("DecodeString(%q) error = %v, expected ErrInvalidAction", bad, err)
		}
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	for i := 0; i < ActionCount; i++ {
		k, err := Action(i).Key()
		if err != nil {
			t.Fatalf("Key(%d) failed: %v", i, err)
		}
		a, err := Encode(k)
		if err != nil {
			t.Fatalf("Encode(%q) failed: %v", k, err)
		}
		if int(a) != i {
			t.Errorf("Encode(%q) = %d, expected %d", k, a, i)
		}
	}
}

func TestInputImplementations(t *testing.T) {
	var in Input = ActionDescend
	keys, err := in.Keys()
	if err != nil || string(keys) != ">" {
		t.Errorf("ActionDescend.Keys() = %q, %v", keys, err)
	}

	in = Macro("hh>")
	keys, err = in.Keys()
	if err != nil || string(keys) != "hh>" {
		t.Errorf("Macro.Keys() = %q, %v", keys, err)
	}
}

func TestActionString(t *testing.T) {
	if ActionSearch.String() != "Search" {
		t.Errorf("String() = %q", ActionSearch.String())
	}
	if Action(42).String() != "Unknown" {
		t.Errorf("out of range String() = %q", Action(42).String())
	}
}
