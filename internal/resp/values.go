package resp

import "strconv"

// Kind identifies which variant of the wire reply a Value holds.
type Kind int

const (
	KindNil Kind = iota
	KindStatus
	KindError
	KindInteger
	KindBulk
	KindArray
)

func (k Kind) String() string {
	switch k {
	case KindNil:
		return "nil"
	case KindStatus:
		return "status"
	case KindError:
		return "error"
	case KindInteger:
		return "integer"
	case KindBulk:
		return "string"
	case KindArray:
		return "array"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Value is a reply received from the server. The set of implementations is
// closed: Nil, Status, Error, Integer, Bulk and Array.
//
// Values are immutable once parsed. An Array shares its element slice with
// every sub-value handed out by the decoder, so nothing in this package or
// above it may write to Elems.
type Value interface {
	Kind() Kind
	// Text returns the scalar text of the value. Arrays and Nil return "".
	Text() string
	sealed()
}

// Nil is the null bulk string ($-1) or null array (*-1).
type Nil struct{}

func (Nil) Kind() Kind   { return KindNil }
func (Nil) Text() string { return "" }
func (Nil) sealed()      {}

// Status is a simple string reply (+).
type Status struct {
	Value string
}

func (s Status) Kind() Kind   { return KindStatus }
func (s Status) Text() string { return s.Value }
func (Status) sealed()        {}

// Error is an error reply (-) carrying the server message.
type Error struct {
	Value string
}

func (e Error) Kind() Kind   { return KindError }
func (e Error) Text() string { return e.Value }
func (Error) sealed()        {}

// Integer is an integer reply (:).
type Integer struct {
	Value int64
}

func (i Integer) Kind() Kind   { return KindInteger }
func (i Integer) Text() string { return strconv.FormatInt(i.Value, 10) }
func (Integer) sealed()        {}

// Bulk is a binary safe bulk string ($).
type Bulk struct {
	Value string
}

func (b Bulk) Kind() Kind   { return KindBulk }
func (b Bulk) Text() string { return b.Value }
func (Bulk) sealed()        {}

// Array is a multi bulk reply (*). Elements may be any variant, including
// nested arrays.
type Array struct {
	Elems []Value
}

func (a Array) Kind() Kind   { return KindArray }
func (a Array) Text() string { return "" }
func (Array) sealed()        {}

// Len returns the number of elements.
func (a Array) Len() int { return len(a.Elems) }

// Strings builds an Array of bulk strings. Handy for fakes and tests.
func Strings(values ...string) Array {
	elems := make([]Value, len(values))
	for i, v := range values {
		elems[i] = Bulk{Value: v}
	}
	return Array{Elems: elems}
}
