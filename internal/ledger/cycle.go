package ledger

import (
	"fmt"
	"strings"

	"github.com/roach88/cdmledger/internal/record"
)

// supersessionGraph maps record_id → ids it supersedes.
// Only records with a non-empty supersedes list are nodes.
type supersessionGraph struct {
	nodes []string // index insertion order
	edges map[string][]string
}

func buildSupersessionGraph(ix *Index) *supersessionGraph {
	g := &supersessionGraph{edges: make(map[string][]string)}
	for _, id := range ix.IDs() {
		rec, _ := ix.Lookup(id)
		if len(rec.Supersedes) == 0 {
			continue
		}
		g.nodes = append(g.nodes, id)
		g.edges[id] = rec.Supersedes
	}
	return g
}

type color uint8

const (
	white color = iota // unvisited
	gray               // on the current path
	black              // finished
)

// frame is one level of the explicit DFS stack.
type frame struct {
	id   string
	next int // index of the next edge to follow
}

// cycleDetector owns the colouring and path state for one traversal.
type cycleDetector struct {
	graph *supersessionGraph
	color map[string]color
	stack []frame
	pos   map[string]int // stack position of each gray node
}

func newCycleDetector(g *supersessionGraph) *cycleDetector {
	d := &cycleDetector{
		graph: g,
		color: make(map[string]color, len(g.nodes)),
		pos:   make(map[string]int),
	}
	for _, id := range g.nodes {
		d.color[id] = white
	}
	return d
}

// walk runs an iterative depth-first traversal from every unvisited node in
// graph order. Each back edge u → v yields the path v … u v; walk stops as
// soon as found returns false.
func (d *cycleDetector) walk(found func(path []string, from string) bool) {
	for _, root := range d.graph.nodes {
		if d.color[root] != white {
			continue
		}
		d.push(root)
		for len(d.stack) > 0 {
			top := &d.stack[len(d.stack)-1]
			edges := d.graph.edges[top.id]
			if top.next == len(edges) {
				d.pop()
				continue
			}
			next := edges[top.next]
			top.next++

			c, isNode := d.color[next]
			if !isNode {
				continue
			}
			switch c {
			case gray:
				if !found(d.pathFrom(next), top.id) {
					return
				}
			case white:
				d.push(next)
			}
		}
	}
}

func (d *cycleDetector) push(id string) {
	d.color[id] = gray
	d.pos[id] = len(d.stack)
	d.stack = append(d.stack, frame{id: id})
}

func (d *cycleDetector) pop() {
	id := d.stack[len(d.stack)-1].id
	d.stack = d.stack[:len(d.stack)-1]
	delete(d.pos, id)
	d.color[id] = black
}

// pathFrom returns the stack from id's position to the top, closed with id.
func (d *cycleDetector) pathFrom(id string) []string {
	start := d.pos[id]
	path := make([]string, 0, len(d.stack)-start+1)
	for _, f := range d.stack[start:] {
		path = append(path, f.id)
	}
	return append(path, id)
}

// checkCycles verifies the supersession graph is acyclic.
func (r *run) checkCycles(_ []*record.Record) bool {
	keepGoing := true
	d := newCycleDetector(buildSupersessionGraph(r.index))
	d.walk(func(path []string, from string) bool {
		rec, _ := r.index.Lookup(from)
		keepGoing = r.report(&Error{
			Kind:     KindCycle,
			Code:     ErrCodeSupersessionCycle,
			Source:   sourceOf(rec),
			RecordID: from,
			Path:     path,
			Message:  fmt.Sprintf("circular supersession chain detected: %s", strings.Join(path, " -> ")),
		})
		return keepGoing
	})
	return keepGoing
}

// FindCycle returns the first supersession cycle in index order, or nil.
func FindCycle(ix *Index) []string {
	var cycle []string
	newCycleDetector(buildSupersessionGraph(ix)).walk(func(path []string, _ string) bool {
		cycle = path
		return false
	})
	return cycle
}
