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

import (
	"github.com/lifehaxmax35/availtrig/numeric"
	"github.com/lifehaxmax35/availtrig/object"
)

// byteDescriptor backs both ByteTuple (a tuple of integers 0-255) and
// ByteString (the same physical layout, read as Latin-1 text). The two
// are distinguished only by a label so that Representation()/diagnostics
// can tell them apart; elements and hashing behave identically either way.
type byteDescriptor struct {
	mut    object.Mutability
	string bool
}

func (d *byteDescriptor) Representation() string {
	if d.string {
		return "byte-string"
	}
	return "byte-tuple"
}
func (d *byteDescriptor) Mutability() object.Mutability { return d.mut }
func (d *byteDescriptor) WithMutability(m object.Mutability) object.Descriptor {
	return &byteDescriptor{mut: m, string: d.string}
}
func (d *byteDescriptor) Equals(self, other *object.Object) bool {
	if od, ok := other.Descriptor().(*byteDescriptor); ok {
		return string(self.Payload().([]byte)) == string(od.payloadOf(other))
	}
	return StructuralEquals(self, other)
}
func (d *byteDescriptor) payloadOf(o *object.Object) []byte { return o.Payload().([]byte) }
func (d *byteDescriptor) Hash(self *object.Object) int32     { return StructuralHash(self) }
func (d *byteDescriptor) Kind(self *object.Object) *object.Object { return nil }
func (d *byteDescriptor) Size(self *object.Object) int {
	return len(self.Payload().([]byte))
}
func (d *byteDescriptor) ElementAt(self *object.Object, i int) *object.Object {
	return numeric.NewSmall(int64(self.Payload().([]byte)[i]))
}

// NewByteTuple builds a ByteTuple from raw byte values 0-255.
func NewByteTuple(values []byte) *object.Object {
	buf := make([]byte, len(values))
	copy(buf, values)
	return object.New(&byteDescriptor{mut: object.Mutable}, nil, nil, buf)
}

// NewByteString builds a ByteString (Latin-1 text) from raw bytes.
func NewByteString(s string) *object.Object {
	return object.New(&byteDescriptor{mut: object.Mutable, string: true}, nil, nil, []byte(s))
}

func isByteRepr(o *object.Object) (*byteDescriptor, bool) {
	d, ok := o.Descriptor().(*byteDescriptor)
	return d, ok
}

// AsString returns the contents of a ByteString/TwoByteString as a Go
// string, decoding TwoByteString as UTF-16-ish code points. It returns
// ("", false) for non-string representations.
func AsString(o *object.Object) (string, bool) {
	if d, ok := isByteRepr(o); ok && d.string {
		return string(o.Payload().([]byte)), true
	}
	if _, ok := o.Descriptor().(*twoByteDescriptor); ok {
		units := o.Payload().([]uint16)
		runes := make([]rune, len(units))
		for i, u := range units {
			runes[i] = rune(u)
		}
		return string(runes), true
	}
	return "", false
}
