// runner/types.go
package runner

import (
	"fmt"

	"github.com/notargets/fdtransport/field"
)

// Stepper produces the layers of one field into a shared store
type Stepper interface {
	FieldName() string
	// Start registers the field's series and stores its initial layer
	Start(st *field.Store) error
	// Step stores layer tl; layer tl-1 and every dependency layer it reads exist
	Step(tl int, st *field.Store) error
}

// helperLister is implemented by steppers that read other fields through couplings
type helperLister interface {
	Helpers() []string
}

// Mode selects how fields are interleaved in time
type Mode uint8

const (
	// Sequential runs every layer of a field before any field that depends on it
	Sequential Mode = iota
	// Lockstep runs layer tl of every field, in dependency order, before layer tl+1
	Lockstep
)

func (m Mode) String() string {
	switch m {
	case Sequential:
		return "sequential"
	case Lockstep:
		return "lockstep"
	}
	return fmt.Sprintf("Mode(%d)", uint8(m))
}

// DependencyFlags describes which layer of a helper field a dependent reads
type DependencyFlags int

const (
	// No dependency
	NoDependency DependencyFlags = 0
	// Reads helper layer tl while computing layer tl
	SameLayer DependencyFlags = 1 << iota
	// Reads helper layer tl-1 while computing layer tl
	PreviousLayer
)
