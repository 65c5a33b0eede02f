package archivist

import (
	"bytes"
	"database/sql/driver"
	"fmt"

	"github.com/shopspring/decimal"
)

// VersionType is the kind of bump applied when a new version is created.
type VersionType string

const (
	Major VersionType = "major"
	Minor VersionType = "minor"
)

// Valid reports whether t is Major or Minor.
func (t VersionType) Valid() bool {
	return t == Major || t == Minor
}

var (
	one       = decimal.NewFromInt(1)
	minorStep = decimal.New(1, -1)
)

// Version is a document version number with one decimal: 1.0, 1.1, 2.0...
// The zero value is not a valid version, Current resolves it to 1.0.
type Version struct {
	d decimal.Decimal
}

// NewVersion returns the version closest to f, rounded to one decimal.
func NewVersion(f float64) Version {
	return Version{d: decimal.NewFromFloat(f).Round(1)}
}

// ParseVersion parses "2", "2.4" or "3.0".
func ParseVersion(s string) (Version, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Version{}, fmt.Errorf("invalid version %q: %v", s, err)
	}
	if d.Sign() < 0 {
		return Version{}, fmt.Errorf("invalid version %q: negative", s)
	}
	return Version{d: d.Round(1)}, nil
}

// IsZero reports whether the version was never set.
func (v Version) IsZero() bool {
	return v.d.IsZero()
}

// Current returns v, or 1.0 if v is not set.
func (v Version) Current() Version {
	if v.IsZero() {
		return Version{d: one}
	}
	return v
}

// Major returns the next whole version: 2.3 -> 3.0.
func (v Version) Major() Version {
	return Version{d: v.Current().d.Floor().Add(one)}
}

// Minor returns v + 0.1: 2.3 -> 2.4.
func (v Version) Minor() Version {
	return Version{d: v.Current().d.Add(minorStep).Round(1)}
}

// Bump returns the version following v for the given bump type.
func (v Version) Bump(t VersionType) Version {
	if t == Major {
		return v.Major()
	}
	return v.Minor()
}

// Cmp compares v and o, returning -1, 0 or 1.
func (v Version) Cmp(o Version) int {
	return v.d.Cmp(o.d)
}

// Equal reports whether v and o denote the same version.
func (v Version) Equal(o Version) bool {
	return v.Cmp(o) == 0
}

func (v Version) Float64() float64 {
	f, _ := v.d.Float64()
	return f
}

// String formats the version with exactly one decimal.
func (v Version) String() string {
	return v.d.StringFixed(1)
}

func (v Version) MarshalJSON() ([]byte, error) {
	return []byte(v.String()), nil
}

func (v *Version) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)
	if string(data) == "null" || len(data) == 0 {
		*v = Version{}
		return nil
	}

	parsed, err := ParseVersion(string(data))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// Scan implements sql.Scanner.
func (v *Version) Scan(src interface{}) error {
	var d decimal.Decimal
	if err := d.Scan(src); err != nil {
		return err
	}
	v.d = d.Round(1)
	return nil
}

// Value implements driver.Valuer.
func (v Version) Value() (driver.Value, error) {
	return v.String(), nil
}
