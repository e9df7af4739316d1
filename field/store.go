package field

import (
	"fmt"

	"github.com/notargets/fdtransport/utils"
)

// Store is a named registry of series, kept in insertion order
type Store struct {
	order  []string
	series map[string]Series
}

func NewStore() *Store {
	return &Store{series: make(map[string]Series)}
}

// Add registers s; names are unique
func (st *Store) Add(s Series) error {
	if _, exists := st.series[s.Name()]; exists {
		return utils.NewConfigError("", s.Name(), "field defined twice")
	}
	st.series[s.Name()] = s
	st.order = append(st.order, s.Name())
	return nil
}

func (st *Store) Get(name string) (Series, bool) {
	s, ok := st.series[name]
	return s, ok
}

func (st *Store) Names() []string {
	return append([]string(nil), st.order...)
}

// Series1D returns the named 1-D series
func (st *Store) Series1D(name string) (*Series1D, error) {
	s, ok := st.series[name]
	if !ok {
		return nil, fmt.Errorf("field %s is not defined", name)
	}
	s1, ok := s.(*Series1D)
	if !ok {
		return nil, fmt.Errorf("field %s is %v, not 1D", name, s.Dimensions())
	}
	return s1, nil
}

// Series2D returns the named 2-D series
func (st *Store) Series2D(name string) (*Series2D, error) {
	s, ok := st.series[name]
	if !ok {
		return nil, fmt.Errorf("field %s is not defined", name)
	}
	s2, ok := s.(*Series2D)
	if !ok {
		return nil, fmt.Errorf("field %s is %v, not 2D", name, s.Dimensions())
	}
	return s2, nil
}

// Warnings gathers warnings from every series in insertion order
func (st *Store) Warnings() (ws []Warning) {
	for _, name := range st.order {
		ws = append(ws, st.series[name].Warnings()...)
	}
	return
}
