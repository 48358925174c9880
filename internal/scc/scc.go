// Copyright 2025 Buf Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package scc implements Tarjan's strongly-connected-components algorithm
// over an arbitrary directed graph.
//
// The module loader (package module) uses this to order forward method
// declarations against the concrete definitions that resolve them: a
// forward that is never joined into a larger component by a resolving
// definition is, by construction, a singleton component with an outgoing
// edge that nothing satisfies, which is exactly the end-of-module
// "unresolved forward" diagnostic required by spec §4.F and scenario S4.
package scc

import (
	"iter"
	"slices"

	"github.com/lifehaxmax35/availtrig/internal/dbg"
)

// Graph is a "local" representation of a directed graph, which exposes the
// outgoing edges (i.e. dependencies) from some node.
type Graph[Node any] func(Node) iter.Seq[Node]

// DAG represents the strongly-connected-component condensation of some
// directed graph, with components in reverse-topological order (a
// component never depends on a component that appears after it).
type DAG[Node comparable] struct {
	keys       map[Node]int
	components []Component[Node]
}

// Component is a strongly-connected component: a maximal set of nodes each
// reachable from every other.
type Component[Node comparable] struct {
	dag     *DAG[Node]
	members []Node
	deps    []int
	index   int
}

// Sort computes the SCC condensation of the graph reachable from root.
func Sort[Node comparable](root Node, graph Graph[Node]) *DAG[Node] {
	out := &DAG[Node]{keys: make(map[Node]int)}
	sorter := &tarjan[Node]{
		graph:    graph,
		dag:      out,
		metadata: make(map[Node]*metadata),
		depset:   make(map[int]struct{}),
	}
	sorter.rec(root)
	return out
}

// ForNode returns the component containing node, or nil if node was never
// visited (i.e. is not reachable from the root passed to Sort).
func (d *DAG[Node]) ForNode(node Node) *Component[Node] {
	idx, ok := d.keys[node]
	if !ok {
		return nil
	}
	return &d.components[idx]
}

// Topological ranges over every component, in reverse-topological order.
func (d *DAG[Node]) Topological() iter.Seq[*Component[Node]] {
	return func(yield func(*Component[Node]) bool) {
		for i := range d.components {
			if !yield(&d.components[i]) {
				return
			}
		}
	}
}

// Singleton reports whether a component has exactly one member. It looks
// only at the member count: a lone node with a self-edge, and a lone node
// with outgoing edges into other components, both count as singletons.
func (c *Component[Node]) Singleton() bool {
	return len(c.members) == 1
}

// Members returns the members of a component.
func (c *Component[Node]) Members() []Node {
	return c.members
}

// Deps ranges over the components this component directly depends on.
func (c *Component[Node]) Deps() iter.Seq[*Component[Node]] {
	return func(yield func(*Component[Node]) bool) {
		for _, i := range c.deps {
			if !yield(&c.dag.components[i]) {
				return
			}
		}
	}
}

// Index returns this component's position in reverse-topological order,
// i.e. the order Topological yields it in.
func (c *Component[Node]) Index() int { return c.index }

// tarjan is the state needed to execute Tarjan's recursive SCC algorithm.
//
// See https://en.wikipedia.org/wiki/Tarjan%27s_strongly_connected_components_algorithm
type tarjan[Node comparable] struct {
	graph Graph[Node]
	dag   *DAG[Node]

	index    int
	stack    []Node
	metadata map[Node]*metadata

	depset map[int]struct{}
}

type metadata struct {
	index, low int
	onStack    bool
}

func (s *tarjan[Node]) rec(node Node) *metadata {
	meta := &metadata{index: s.index, low: s.index, onStack: true}
	dbg.Log("scc", "visit", "node", node, "index", meta.index)

	s.metadata[node] = meta
	s.index++
	offset := len(s.stack)
	s.stack = append(s.stack, node)

	for dep := range s.graph(node) {
		m := s.metadata[dep]
		if m == nil {
			m = s.rec(dep)
			meta.low = min(meta.low, m.low)
			continue
		}
		if m.onStack {
			meta.low = min(meta.low, m.index)
		}
	}

	if meta.index == meta.low {
		comp := Component[Node]{
			dag:     s.dag,
			members: slices.Clone(s.stack[offset:]),
			index:   len(s.dag.components),
		}
		s.stack = s.stack[:offset]

		for _, member := range comp.members {
			s.metadata[member].onStack = false
			s.dag.keys[member] = comp.index

			for dep := range s.graph(member) {
				n, ok := s.dag.keys[dep]
				if ok && n < len(s.dag.components) {
					s.depset[n] = struct{}{}
				}
			}
		}

		comp.deps = make([]int, 0, len(s.depset))
		for i := range s.depset {
			comp.deps = append(comp.deps, i)
		}
		slices.Sort(comp.deps)
		clear(s.depset)

		dbg.Log("scc", "component", "members", comp.members, "deps", comp.deps)
		s.dag.components = append(s.dag.components, comp)
	}

	return meta
}
