package envfile

import "strings"

// LineKind classifies a single line of an env file.
type LineKind int

const (
	KindUnrecognized LineKind = iota
	KindComment
	KindPair
)

func (k LineKind) String() string {
	switch k {
	case KindPair:
		return "pair"
	case KindComment:
		return "comment"
	default:
		return "unrecognized"
	}
}

// Pair is a key and its value. The key never contains '='; the value may.
type Pair struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// String returns the pair in its on-disk form.
func (p Pair) String() string {
	return p.Key + "=" + p.Value
}

// Line is one line of an env file. Raw is the original text and is what gets
// written back when the line is left untouched by a rewrite. Pair is only set
// for KindPair.
type Line struct {
	Kind   LineKind
	Number int
	Raw    string
	Pair   Pair
}

// ParseLine classifies raw. Comments win over pairs so that "# A=1" is never
// matched by key operations.
func ParseLine(raw string) Line {
	if strings.HasPrefix(raw, "#") {
		return Line{Kind: KindComment, Raw: raw}
	}
	if key, value, ok := strings.Cut(raw, "="); ok {
		return Line{Kind: KindPair, Raw: raw, Pair: Pair{Key: key, Value: value}}
	}
	return Line{Kind: KindUnrecognized, Raw: raw}
}
