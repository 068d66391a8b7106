package stage

// Result is the sum type a Transform returns in place of the reference
// design's nullable/pointer-equality string: Drop signals "discard this
// item, log the condition, keep going"; Passthrough signals "forward the
// input unchanged, no copy needed"; Owned carries a newly computed string
// whose ownership transfers to the stage. The three constructors are the
// only way to build a Result, so there is no string value that could be
// mistaken for the drop case: unlike a nullable pointer, an empty string
// is always valid data.
type Result struct {
	kind  resultKind
	value string
}

type resultKind int

const (
	kindDrop resultKind = iota
	kindPassthrough
	kindOwned
)

// Drop reports that the transform has nothing to forward for this input.
func Drop() Result { return Result{kind: kindDrop} }

// Passthrough reports that s should be forwarded unchanged.
func Passthrough(s string) Result { return Result{kind: kindPassthrough, value: s} }

// Owned reports that s is a newly computed value to forward.
func Owned(s string) Result { return Result{kind: kindOwned, value: s} }

// Dropped reports whether this Result is the drop case.
func (r Result) Dropped() bool { return r.kind == kindDrop }

// Value returns the string to forward. Only meaningful when !Dropped().
func (r Result) Value() string { return r.value }
