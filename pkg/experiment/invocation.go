package experiment

import (
	"github.com/Friedrichqi/liberorun/pkg/workloads/libero"
)

// Invocation is one declared evaluation launch: a device assignment, the
// evaluation configuration and whether the line is active. Invocations are
// declared statically and never mutated; the spawned process outlives the
// record.
type Invocation struct {
	Name    string
	Devices []int

	Workload libero.Config

	// Enabled replaces the comment-toggling of shell launch scripts.
	Enabled bool
	// Foreground marks the invocation the launcher waits on. Only honored on
	// the last enabled invocation.
	Foreground bool
}

// Plan is an ordered list of declared invocations. Declaration order is the
// order processes are spawned in.
type Plan struct {
	Name        string
	Invocations []Invocation
}

// Enabled returns the enabled invocations in declaration order.
func (p Plan) Enabled() []Invocation {
	var enabled []Invocation
	for _, invocation := range p.Invocations {
		if invocation.Enabled {
			enabled = append(enabled, invocation)
		}
	}
	return enabled
}
