package models

// Wire sentinels. They only appear at the external boundary; inside the
// pipeline absence is carried by Value.
const (
	SentinelMissing = "None"
	SentinelAbsent  = "-"
	SentinelZero    = "- - - -"
)

// Value is a canonical field value that is either present or missing.
type Value struct {
	s  string
	ok bool
}

// Missing is the zero Value.
var Missing = Value{}

func Present(s string) Value { return Value{s: s, ok: true} }

// Get returns the string and whether the value is present.
func (v Value) Get() (string, bool) { return v.s, v.ok }

func (v Value) IsMissing() bool { return !v.ok }

// Wire renders the value for the outside world, mapping Missing to "None".
func (v Value) Wire() string {
	if !v.ok {
		return SentinelMissing
	}
	return v.s
}

func (v Value) String() string { return v.Wire() }

// Usable reports whether a wire string carries a real value, i.e. is not
// one of the absence sentinels.
func Usable(s string) bool {
	return s != SentinelAbsent && s != SentinelMissing
}
