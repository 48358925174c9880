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

package tuple

import "github.com/lifehaxmax35/availtrig/object"

// treePayload is a balanced binary concatenation node: two child tuples plus their combined size, used so that
// concatenating two large tuples is O(log n) instead of O(n).
type treePayload struct {
	left, right *object.Object
	size        int
	level       int
}

type treeDescriptor struct {
	mut object.Mutability
}

func (d *treeDescriptor) Representation() string { return "tree-tuple" }
func (d *treeDescriptor) Mutability() object.Mutability { return d.mut }
func (d *treeDescriptor) WithMutability(m object.Mutability) object.Descriptor {
	return &treeDescriptor{mut: m}
}
func (d *treeDescriptor) Equals(self, other *object.Object) bool {
	return StructuralEquals(self, other)
}
func (d *treeDescriptor) Hash(self *object.Object) int32 { return StructuralHash(self) }
func (d *treeDescriptor) Kind(self *object.Object) *object.Object { return nil }
func (d *treeDescriptor) Size(self *object.Object) int {
	return self.Payload().(treePayload).size
}
func (d *treeDescriptor) ElementAt(self *object.Object, i int) *object.Object {
	p := self.Payload().(treePayload)
	leftSize := Size(p.left)
	if i < leftSize {
		return rawElementAt(p.left, i)
	}
	return rawElementAt(p.right, i-leftSize)
}

// levelOf returns a tuple's tree level: 0 for any flat (non-tree)
// representation, 1+max(child levels) for a TreeTuple node.
func levelOf(o *object.Object) int {
	_, ok := o.Descriptor().(*treeDescriptor)
	if !ok {
		return 0
	}
	return o.Payload().(treePayload).level
}

// treeBalanceSlack is the maximum tolerated difference between the levels
// of a TreeTuple node's two children (the "level invariant" of spec
// §4.B). Exceeding it triggers a full rebuild into a balanced shape rather
// than node-local rotation, trading a rarer O(n) rebuild for much simpler,
// obviously-correct code.
const treeBalanceSlack = 1

// newTreeNode builds a single TreeTuple node over left and right without
// checking or restoring balance; callers are responsible for that.
func newTreeNode(left, right *object.Object) *object.Object {
	level := levelOf(left)
	if rl := levelOf(right); rl > level {
		level = rl
	}
	level++
	return object.New(&treeDescriptor{mut: object.Mutable}, nil, nil, treePayload{
		left: left, right: right, size: Size(left) + Size(right), level: level,
	})
}

// buildBalancedTree recursively splits elems in half, producing a tree
// whose two children's levels never differ by more than one -- trivially
// satisfying the level invariant by construction.
func buildBalancedTree(elems []*object.Object) *object.Object {
	if len(elems) <= treeLeafThreshold {
		return FromElements(elems)
	}
	mid := len(elems) / 2
	return newTreeNode(buildBalancedTree(elems[:mid]), buildBalancedTree(elems[mid:]))
}

// treeLeafThreshold caps how small a TreeTuple's leaves are allowed to get
// before it is cheaper (and simpler) to just store them flat.
const treeLeafThreshold = 32

// rawElementAt returns the i'th element without bounds-checking or error
// wrapping, for use by representations (TreeTuple, SpliceTuple) that have
// already established i is valid.
func rawElementAt(o *object.Object, i int) *object.Object {
	return o.Descriptor().(Indexable).ElementAt(o, i)
}
