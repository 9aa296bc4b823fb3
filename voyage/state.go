package voyage

import (
	"fmt"
	"strings"
)

// neverVisited is the sentinel quantized last-visit timestamp meaning a
// port has not yet been called at in this trajectory.
const neverVisited int64 = -1

// inventoryState is the decoded form of the DP state's inventory
// component: per-distinct-port ready-container counts and quantized
// last-visit timestamps (spec.md §3, §9).
type inventoryState struct {
	charged    []int
	lastVisitQ []int64
}

func newInventoryState(distinct []Port) inventoryState {
	s := inventoryState{
		charged:    make([]int, len(distinct)),
		lastVisitQ: make([]int64, len(distinct)),
	}
	for i, p := range distinct {
		s.charged[i] = p.InitialReady
		s.lastVisitQ[i] = neverVisited
	}
	return s
}

// clone returns an independently mutable copy, per the "transitions do not
// mutate keys" discipline (spec.md §9).
func (s inventoryState) clone() inventoryState {
	charged := make([]int, len(s.charged))
	copy(charged, s.charged)
	lastVisitQ := make([]int64, len(s.lastVisitQ))
	copy(lastVisitQ, s.lastVisitQ)
	return inventoryState{charged: charged, lastVisitQ: lastVisitQ}
}

// encode produces a deterministic, comparable byte-string key for the
// inventory component of a DP state (spec.md §9: "keyed by ... an
// inventory-byte-string").
func (s inventoryState) encode() string {
	var b strings.Builder
	for i := range s.charged {
		fmt.Fprintf(&b, "%d:%d;", s.charged[i], s.lastVisitQ[i])
	}
	return b.String()
}

// stateKey uniquely identifies a DP state at a given leg index: the SoC
// level and the inventory encoding.
func stateKey(level int, inv inventoryState) string {
	return fmt.Sprintf("%d#%s", level, inv.encode())
}

// distinctPorts returns the route's ports keyed by distinct name, in
// first-occurrence order, plus a mapping from route index to distinct
// index.
func distinctPorts(route []Port) (ports []Port, routeToDistinct []int) {
	index := make(map[string]int)
	routeToDistinct = make([]int, len(route))
	for i, p := range route {
		if idx, ok := index[p.Name]; ok {
			routeToDistinct[i] = idx
			continue
		}
		idx := len(ports)
		index[p.Name] = idx
		ports = append(ports, p)
		routeToDistinct[i] = idx
	}
	return ports, routeToDistinct
}
