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

package avail

import (
	"sync"

	"github.com/lifehaxmax35/availtrig/errs"
	"github.com/lifehaxmax35/availtrig/object"
)

// moduleState is a Module's data: the atoms, methods and bundles it (or
// one of its ancestors) has defined, plus the modules it imports. The
// transactional add/rollback behavior required by spec §4.F is built on
// top of these plain mutators by package module, which records inverse
// operations as it goes; Module itself only needs to support point
// mutation and lookup.
type moduleState struct {
	mu       sync.RWMutex
	name     string
	atoms    map[string]*object.Object // name -> Atom
	methods  map[string]*object.Object // message name -> Method
	bundles  map[string]*object.Object // message name -> Bundle
	imports  []*object.Object          // imported Modules
	bindings map[string]*binding       // name -> module-scope variable/constant
	forwards map[string]*object.Object // message name -> unresolved forward Definition
}

// binding is one module-scope variable or constant created by declaration
// hoisting (spec §4.F): a local-variable/local-constant declaration parsed
// at top level is rewritten into one of these.
type binding struct {
	constant bool
	declType *object.Object // the declared type
	value    *object.Object // current value (nil until initialized)
}

type moduleDescriptor struct {
	mut object.Mutability
}

func (d *moduleDescriptor) Representation() string { return "module" }
func (d *moduleDescriptor) Mutability() object.Mutability { return d.mut }
func (d *moduleDescriptor) WithMutability(m object.Mutability) object.Descriptor {
	return &moduleDescriptor{mut: m}
}
func (d *moduleDescriptor) Equals(self, other *object.Object) bool { return self == other }
func (d *moduleDescriptor) Hash(self *object.Object) int32 {
	st := self.Payload().(*moduleState)
	h := int32(1000003)
	for _, c := range st.name {
		h = h*31 + int32(c)
	}
	return h
}
func (d *moduleDescriptor) Kind(self *object.Object) *object.Object { return nil }

// NewModule creates an empty Module with the given fully-qualified name.
func NewModule(name string) *object.Object {
	st := &moduleState{
		name:     name,
		atoms:    make(map[string]*object.Object),
		methods:  make(map[string]*object.Object),
		bundles:  make(map[string]*object.Object),
		bindings: make(map[string]*binding),
		forwards: make(map[string]*object.Object),
	}
	return object.New(&moduleDescriptor{mut: object.Mutable}, nil, nil, st)
}

// ModuleName returns a module's fully-qualified name.
func ModuleName(o *object.Object) string {
	return o.Payload().(*moduleState).name
}

// ModuleAddImport records that module imports imported (its atoms/bundles
// become visible for name resolution, handled by the module loader).
func ModuleAddImport(module, imported *object.Object) {
	st := module.Payload().(*moduleState)
	st.mu.Lock()
	defer st.mu.Unlock()
	st.imports = append(st.imports, imported)
}

// ModuleImports returns the modules directly imported by module.
func ModuleImports(module *object.Object) []*object.Object {
	st := module.Payload().(*moduleState)
	st.mu.RLock()
	defer st.mu.RUnlock()
	out := make([]*object.Object, len(st.imports))
	copy(out, st.imports)
	return out
}

// ModuleDefineAtom records atom as belonging to module's own namespace
// under name. It is an error at a higher layer (not enforced here) to
// redefine an existing name; package module checks that before calling
// this, since it also needs to decide whether the redefinition should be
// rejected or is a legitimate forward-declaration resolution.
func ModuleDefineAtom(module *object.Object, name string, atom *object.Object) {
	st := module.Payload().(*moduleState)
	st.mu.Lock()
	defer st.mu.Unlock()
	st.atoms[name] = atom
}

// ModuleUndefineAtom removes name from module's namespace. Used by the
// transactional loader (package module) to undo ModuleDefineAtom on
// rollback.
func ModuleUndefineAtom(module *object.Object, name string) {
	st := module.Payload().(*moduleState)
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.atoms, name)
}

// ModuleLookupAtom finds an atom previously defined directly in module
// (not searching imports; that search order is the loader's job).
func ModuleLookupAtom(module *object.Object, name string) (*object.Object, bool) {
	st := module.Payload().(*moduleState)
	st.mu.RLock()
	defer st.mu.RUnlock()
	a, ok := st.atoms[name]
	return a, ok
}

// ModuleDefineBundle records bundle under messageName, along with the
// Method it wraps.
func ModuleDefineBundle(module *object.Object, messageName string, bundle *object.Object) {
	st := module.Payload().(*moduleState)
	st.mu.Lock()
	defer st.mu.Unlock()
	st.bundles[messageName] = bundle
	st.methods[messageName] = BundleMethod(bundle)
}

// ModuleUndefineBundle removes messageName's bundle/method mapping. Used
// for transactional rollback.
func ModuleUndefineBundle(module *object.Object, messageName string) {
	st := module.Payload().(*moduleState)
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.bundles, messageName)
	delete(st.methods, messageName)
}

// ModuleLookupBundle finds a bundle previously defined directly in
// module.
func ModuleLookupBundle(module *object.Object, messageName string) (*object.Object, bool) {
	st := module.Payload().(*moduleState)
	st.mu.RLock()
	defer st.mu.RUnlock()
	b, ok := st.bundles[messageName]
	return b, ok
}

// ModuleAllBundles returns every bundle module defines directly.
func ModuleAllBundles(module *object.Object) []*object.Object {
	st := module.Payload().(*moduleState)
	st.mu.RLock()
	defer st.mu.RUnlock()
	out := make([]*object.Object, 0, len(st.bundles))
	for _, b := range st.bundles {
		out = append(out, b)
	}
	return out
}

// ModuleDeclareBinding creates a fresh module-scope variable (constant =
// false) or constant (true) of the given declared type, with no value yet.
// This is how the loader's declaration-hoisting rewrites a top-level
// local-variable/local-constant declaration into a module-scope binding
// (spec §4.F).
func ModuleDeclareBinding(module *object.Object, name string, declType *object.Object, constant bool) {
	st := module.Payload().(*moduleState)
	st.mu.Lock()
	defer st.mu.Unlock()
	st.bindings[name] = &binding{constant: constant, declType: declType}
}

// ModuleInitializeBinding sets name's current value, the synthetic
// initialization statement the hoisting rewrite emits alongside the
// declaration.
func ModuleInitializeBinding(module *object.Object, name string, value *object.Object) error {
	st := module.Payload().(*moduleState)
	st.mu.Lock()
	defer st.mu.Unlock()
	b, ok := st.bindings[name]
	if !ok {
		return errs.New(errs.KeyNotFound)
	}
	b.value = value
	return nil
}

// ModuleBindingValue reads name's current value, failing with
// CannotReadUnassignedVariable if it was declared but never initialized.
func ModuleBindingValue(module *object.Object, name string) (*object.Object, error) {
	st := module.Payload().(*moduleState)
	st.mu.RLock()
	defer st.mu.RUnlock()
	b, ok := st.bindings[name]
	if !ok {
		return nil, errs.New(errs.KeyNotFound)
	}
	if b.value == nil {
		return nil, errs.New(errs.CannotReadUnassignedVariable)
	}
	return b.value, nil
}

// ModuleBindingType returns the declared type of a module-scope binding.
func ModuleBindingType(module *object.Object, name string) (*object.Object, bool) {
	st := module.Payload().(*moduleState)
	st.mu.RLock()
	defer st.mu.RUnlock()
	b, ok := st.bindings[name]
	if !ok {
		return nil, false
	}
	return b.declType, true
}

// ModuleBindingIsConstant reports whether name is a constant binding.
func ModuleBindingIsConstant(module *object.Object, name string) bool {
	st := module.Payload().(*moduleState)
	st.mu.RLock()
	defer st.mu.RUnlock()
	b, ok := st.bindings[name]
	return ok && b.constant
}

// ModuleHasBinding reports whether module declares a module-scope binding
// under name.
func ModuleHasBinding(module *object.Object, name string) bool {
	st := module.Payload().(*moduleState)
	st.mu.RLock()
	defer st.mu.RUnlock()
	_, ok := st.bindings[name]
	return ok
}

// ModuleUndeclareBinding removes a module-scope binding. Used for
// transactional rollback.
func ModuleUndeclareBinding(module *object.Object, name string) {
	st := module.Payload().(*moduleState)
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.bindings, name)
}

// ModuleAddForward records messageName's forward Definition as pending
// resolution. End-of-module checks this set is empty (scenario S4).
func ModuleAddForward(module *object.Object, messageName string, forward *object.Object) {
	st := module.Payload().(*moduleState)
	st.mu.Lock()
	defer st.mu.Unlock()
	st.forwards[messageName] = forward
}

// ModuleResolveForward removes messageName from the pending-forwards set,
// once a concrete definition of matching signature has been parsed.
func ModuleResolveForward(module *object.Object, messageName string) {
	st := module.Payload().(*moduleState)
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.forwards, messageName)
}

// ModulePendingForwards returns the message names with an unresolved
// forward declaration.
func ModulePendingForwards(module *object.Object) []string {
	st := module.Payload().(*moduleState)
	st.mu.RLock()
	defer st.mu.RUnlock()
	out := make([]string, 0, len(st.forwards))
	for name := range st.forwards {
		out = append(out, name)
	}
	return out
}

// IsModule reports whether o is a Module.
func IsModule(o *object.Object) bool {
	_, ok := o.Descriptor().(*moduleDescriptor)
	return ok
}
