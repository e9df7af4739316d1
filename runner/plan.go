package runner

import (
	"cmp"
	"errors"
	"slices"
	"strings"

	"github.com/notargets/fdtransport/utils"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// Plan validates the field graph and returns the execution order. All
// configuration problems are reported here, before any layer is computed.
func (r *Runner) Plan() ([]string, error) {
	if r.plan != nil {
		return r.plan, nil
	}
	if r.Times < 0 {
		return nil, utils.NewConfigError(r.Model, "times", "must not be negative, got %d", r.Times)
	}
	if len(r.order) == 0 {
		return nil, utils.NewConfigError(r.Model, "fields", "no fields defined")
	}
	for _, name := range r.order {
		if err := r.checkBinding(r.bindings[name]); err != nil {
			return nil, err
		}
	}
	order, err := r.topologicalOrder()
	if err != nil {
		return nil, err
	}
	r.plan = order
	r.Logger.Debug().Str("model", r.Model).Str("mode", r.Mode.String()).Strs("order", order).Msg("plan")
	return order, nil
}

func (r *Runner) checkBinding(b *FieldBinding) error {
	if b.IsPreset() {
		return nil
	}
	if hl, ok := b.Stepper.(helperLister); ok {
		for _, h := range hl.Helpers() {
			if !b.HasDependency(h, SameLayer) {
				return utils.NewConfigError(r.Model, b.Name, "reads %s without declaring a dependency on it", h)
			}
		}
	}
	for _, d := range b.depOrder {
		dep, ok := r.bindings[d]
		if !ok {
			return utils.NewConfigError(r.Model, b.Name, "depends on undefined field %s", d)
		}
		need := b.Times
		if !b.HasDependency(d, SameLayer) {
			need = b.Times - 1
		}
		if dep.LastLayer() < need {
			return utils.NewConfigError(r.Model, b.Name,
				"dependency %s provides layers up to %d, %d required", d, dep.LastLayer(), need)
		}
	}
	return nil
}

// edges reports the helpers that must be ordered before b. Lagged helpers only
// constrain the order in sequential runs.
func (r *Runner) edges(b *FieldBinding) (out []string) {
	for _, d := range b.depOrder {
		if b.HasDependency(d, SameLayer) || r.Mode == Sequential {
			out = append(out, d)
		}
	}
	return
}

// fieldGraph holds one node per field; node IDs are positions in definition order
type fieldGraph struct {
	*simple.DirectedGraph
	names []string
}

func (r *Runner) fieldGraph() *fieldGraph {
	fg := &fieldGraph{DirectedGraph: simple.NewDirectedGraph(), names: r.order}
	ids := make(map[string]int64, len(r.order))
	for i, name := range r.order {
		ids[name] = int64(i)
		fg.AddNode(simple.Node(i))
	}
	for _, name := range r.order {
		for _, d := range r.edges(r.bindings[name]) {
			// a lagged read of the field's own previous layer needs no ordering
			if d == name {
				continue
			}
			fg.SetEdge(simple.Edge{F: simple.Node(ids[d]), T: simple.Node(ids[name])})
		}
	}
	return fg
}

// byDefinition breaks ties by definition order, so unrelated fields keep the
// order they were defined in
func byDefinition(nodes []graph.Node) {
	slices.SortFunc(nodes, func(a, b graph.Node) int { return cmp.Compare(a.ID(), b.ID()) })
}

func (r *Runner) topologicalOrder() ([]string, error) {
	fg := r.fieldGraph()
	sorted, err := topo.SortStabilized(fg, byDefinition)
	if err != nil {
		var cyclic topo.Unorderable
		if errors.As(err, &cyclic) && len(cyclic) > 0 {
			cycle := r.cycleIn(fg, cyclic[0])
			return nil, utils.NewConfigError(r.Model, cycle[0], "dependency cycle %s", strings.Join(cycle, " -> "))
		}
		return nil, err
	}
	order := make([]string, len(sorted))
	for i, n := range sorted {
		order[i] = fg.names[n.ID()]
	}
	return order, nil
}

// cycleIn follows dependencies inside one cyclic component, starting from its
// earliest defined field, until a field repeats
func (r *Runner) cycleIn(fg *fieldGraph, component []graph.Node) []string {
	in := make(map[string]bool, len(component))
	for _, n := range component {
		in[fg.names[n.ID()]] = true
	}
	seen := make(map[string]int, len(component))
	var path []string
	name := fg.names[component[0].ID()]
	for {
		if at, ok := seen[name]; ok {
			return append(path[at:], name)
		}
		seen[name] = len(path)
		path = append(path, name)
		next := name
		for _, d := range r.edges(r.bindings[name]) {
			if in[d] && d != name {
				next = d
				break
			}
		}
		name = next
	}
}
