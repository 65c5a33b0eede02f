package archivist

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Level is a confidentiality level. Levels are totally ordered, from Public
// to TopSecret. The same scale is used for document confidentiality and for
// principal clearance.
type Level string

const (
	Public       Level = "public"
	Internal     Level = "internal"
	Confidential Level = "confidential"
	Restricted   Level = "restricted"
	Secret       Level = "secret"
	TopSecret    Level = "top_secret"
)

// DefaultLevel is the level assumed when none is set, on a principal
// clearance or on a task.
const DefaultLevel = Internal

// Levels lists every level in ascending order.
var Levels = []Level{Public, Internal, Confidential, Restricted, Secret, TopSecret}

// Rank returns the position of l in Levels, or -1 if l is unknown.
func (l Level) Rank() int {
	for i, level := range Levels {
		if level == l {
			return i
		}
	}
	return -1
}

// Valid reports whether l is one of the known levels.
func (l Level) Valid() bool {
	return l.Rank() >= 0
}

// Or returns l, or def if l is empty or unknown.
func (l Level) Or(def Level) Level {
	if !l.Valid() {
		return def
	}
	return l
}

// Label returns the display form of the level, e.g. "Top Secret".
func (l Level) Label() string {
	words := strings.Split(string(l), "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// ParseLevel parses s into a Level. "unclassified" is accepted as an alias
// of public, it is what the correspondence module used to call it.
func ParseLevel(s string) (Level, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.Replace(s, " ", "_", -1)
	if s == "unclassified" {
		return Public, nil
	}

	l := Level(s)
	if !l.Valid() {
		return "", fmt.Errorf("unknown confidentiality level %q", s)
	}
	return l, nil
}

// UnmarshalJSON normalizes known spellings, "Top Secret" or "unclassified".
// Unknown values are kept as is and rejected by validation.
func (l *Level) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	if parsed, err := ParseLevel(s); err == nil {
		*l = parsed
		return nil
	}
	*l = Level(s)
	return nil
}
