package form

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/vango-dev/atom/pkg/atom"
)

var (
	// ErrIndexOutOfRange is returned for edits past the end of Fields.
	ErrIndexOutOfRange = errors.New("form: field index out of range")

	// ErrUnknownSide is returned for a side other than first or last.
	ErrUnknownSide = errors.New("form: unknown field side")
)

// Side selects one half of a Pair.
type Side string

const (
	First Side = "first"
	Last  Side = "last"
)

// Sides lists both sides in render order.
var Sides = []Side{First, Last}

// ParseSide parses "first" or "last".
func ParseSide(s string) (Side, error) {
	switch Side(strings.ToLower(s)) {
	case First:
		return First, nil
	case Last:
		return Last, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSide, s)
}

// Label returns the display label of the field, e.g. "first-3".
func (s Side) Label(index int) string {
	return string(s) + "-" + strconv.Itoa(index)
}

// Pair is one row of the form.
type Pair struct {
	First string `json:"first"`
	Last  string `json:"last"`
}

// Get returns the value of side.
func (p Pair) Get(side Side) string {
	if side == Last {
		return p.Last
	}
	return p.First
}

// With returns a copy of p with side set to value.
func (p Pair) With(side Side, value string) Pair {
	if side == Last {
		p.Last = value
	} else {
		p.First = value
	}
	return p
}

// Fields is the whole form state.
type Fields []Pair

// NewFields returns n empty pairs.
func NewFields(n int) Fields {
	return make(Fields, n)
}

// NewStore creates the form atom with n empty pairs.
func NewStore(n int, opts ...atom.Option) *atom.Atom[Fields] {
	return atom.NewFunc(func() Fields { return NewFields(n) }, opts...)
}

// Count returns the number of pairs. Containers bind to it so they only
// re-render when rows are added or removed.
func Count(f Fields) int {
	return len(f)
}

// Filled returns how many individual fields are non-empty.
func Filled(f Fields) int {
	n := 0
	for _, p := range f {
		if p.First != "" {
			n++
		}
		if p.Last != "" {
			n++
		}
	}
	return n
}

// Field returns a selector for one field. Out-of-range indexes select "".
func Field(index int, side Side) func(Fields) string {
	return func(f Fields) string {
		if index < 0 || index >= len(f) {
			return ""
		}
		return f[index].Get(side)
	}
}

// Edit is a single field change.
type Edit struct {
	Index int    `json:"index"`
	Side  Side   `json:"side"`
	Value string `json:"value"`
}

// Validate checks the edit against a form of n pairs.
func (e Edit) Validate(n int) error {
	if e.Side != First && e.Side != Last {
		return fmt.Errorf("%w: %q", ErrUnknownSide, e.Side)
	}
	if e.Index < 0 || e.Index >= n {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, e.Index, n)
	}
	return nil
}

// Apply returns the complete next Fields with the edit applied.
// The previous slice is never modified.
func (e Edit) Apply(prev Fields) (Fields, error) {
	if err := e.Validate(len(prev)); err != nil {
		return prev, err
	}
	next := slices.Clone(prev)
	next[e.Index] = next[e.Index].With(e.Side, e.Value)
	return next, nil
}

// SetField returns an updater for atom.Update. Invalid edits leave the
// value unchanged (but still produce a notification); use Edit.Apply with
// TryUpdate to surface the error instead.
func SetField(index int, side Side, value string) atom.Updater[Fields] {
	edit := Edit{Index: index, Side: side, Value: value}
	return func(prev Fields) Fields {
		next, err := edit.Apply(prev)
		if err != nil {
			return prev
		}
		return next
	}
}
