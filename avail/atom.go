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

// Package avail builds the rest of the Avail value model (Atom, Float32,
// Map, Set, Phrase, Method/Bundle/Definition, Module) on top of the
// object and numeric packages, plus the parts of Component C (type
// lattice helper constructors consumed elsewhere) and Component F (module
// transactions) that are most naturally expressed directly against these
// values.
package avail

import (
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/lifehaxmax35/availtrig/object"
)

// atomPayload is an Atom's identity: a display name plus the module that
// minted it (nil for bootstrap/special atoms) and a process-unique
// identifier used for hashing; equality is Object pointer identity.
type atomPayload struct {
	name          string
	issuingModule *object.Object
	id            uuid.UUID
}

type atomDescriptor struct {
	mut object.Mutability
}

func (d *atomDescriptor) Representation() string { return "atom" }
func (d *atomDescriptor) Mutability() object.Mutability { return d.mut }
func (d *atomDescriptor) WithMutability(m object.Mutability) object.Descriptor {
	return &atomDescriptor{mut: m}
}

// Equals is pure identity: two distinct atoms are never equal even if they
// share a display name, matching Avail's gensym-like atom semantics.
func (d *atomDescriptor) Equals(self, other *object.Object) bool {
	return self == other
}

func (d *atomDescriptor) Hash(self *object.Object) int32 {
	p := self.Payload().(atomPayload)
	b := p.id[:]
	var h int32 = 1000003
	for _, c := range b {
		h = h*31 + int32(c)
	}
	return h
}

func (d *atomDescriptor) Kind(self *object.Object) *object.Object { return nil }

// atomCounter gives every NewAtom call a distinct UUID deterministically
// derived from a monotonic counter rather than crypto/rand, since atom
// identity only needs to be unique within one running image, not globally
// unpredictable.
var atomCounter atomic.Uint64

// NewAtom creates a fresh atom with the given display name, optionally
// recording the module that defined it (nil for special/bootstrap atoms).
func NewAtom(name string, issuingModule *object.Object) *object.Object {
	n := atomCounter.Add(1)
	id := uuid.NewSHA1(uuid.NameSpaceOID, []byte{
		byte(n >> 56), byte(n >> 48), byte(n >> 40), byte(n >> 32),
		byte(n >> 24), byte(n >> 16), byte(n >> 8), byte(n),
	})
	return object.New(&atomDescriptor{mut: object.Mutable}, nil, nil, atomPayload{
		name: name, issuingModule: issuingModule, id: id,
	})
}

// AtomName returns an atom's display name.
func AtomName(o *object.Object) string {
	return o.Payload().(atomPayload).name
}

// AtomIssuingModule returns the module that minted the atom, or nil.
func AtomIssuingModule(o *object.Object) *object.Object {
	return o.Payload().(atomPayload).issuingModule
}

// IsAtom reports whether o is an Atom.
func IsAtom(o *object.Object) bool {
	_, ok := o.Descriptor().(*atomDescriptor)
	return ok
}
