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

// Package module implements Component F: the module loader. It drives the
// parser engine (package parser) one top-level statement at a time,
// installs the definitions/bindings a statement produces, and supports
// transactional rollback of a module whose compilation fails partway
// through -- the same all-or-nothing unit the teacher's descriptor
// compilation commits only once an entire file set parses cleanly,
// generalized here to one module at a time instead of one FileDescriptorSet.
package module

import (
	"sort"

	"github.com/hashicorp/go-multierror"
	"github.com/tiendc/go-deepcopy"

	"github.com/lifehaxmax35/availtrig/avail"
	"github.com/lifehaxmax35/availtrig/errs"
	"github.com/lifehaxmax35/availtrig/interp"
	"github.com/lifehaxmax35/availtrig/internal/scc"
	"github.com/lifehaxmax35/availtrig/object"
	"github.com/lifehaxmax35/availtrig/parser"
	"github.com/lifehaxmax35/availtrig/splitter"
	"gopkg.in/yaml.v3"
)

// Loader owns one Module under construction: its bundle tree, the parser
// engine walking that tree, the interpreter driving send/macro/semantic-
// restriction execution, and the undo log backing transactional
// add/rollback.
type Loader struct {
	mod  *object.Object
	tree *splitter.Tree
	eng  *parser.Engine
	in   *interp.Interpreter

	stringifyMethod string
	lexers          []parser.Lexer

	txn []func() // undo log for the currently open transaction, if any
}

// New creates a loader for a fresh module of the given fully-qualified
// name, driving eng against tree to parse its top-level statements and in
// to evaluate/dispatch them.
func New(name string, tree *splitter.Tree, eng *parser.Engine, in *interp.Interpreter) *Loader {
	return &Loader{mod: avail.NewModule(name), tree: tree, eng: eng, in: in}
}

// Module returns the module under construction.
func (l *Loader) Module() *object.Object { return l.mod }

// Engine returns the parser engine this loader drives.
func (l *Loader) Engine() *parser.Engine { return l.eng }

// Interpreter returns the interpreter this loader evaluates through.
func (l *Loader) Interpreter() *interp.Interpreter { return l.in }

// moduleDump is the exported, YAML-marshalable summary Dump produces.
type moduleDump struct {
	Module  string   `yaml:"module"`
	Bundles []string `yaml:"bundles"`
}

// Dump renders a human-readable YAML summary of this module's currently
// defined message names, the way the teacher's own descriptor tooling
// dumps a FileDescriptorSet for a `--debug` flag -- useful for inspecting
// a module's bundle-tree footprint without stepping through it in a
// debugger.
func (l *Loader) Dump() (string, error) {
	dump, err := l.snapshot()
	if err != nil {
		return "", err
	}
	out, err := yaml.Marshal(dump)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// snapshot builds this loader's moduleDump and hands back an independent
// deep copy of it, so a caller comparing a before/after pair across a
// transaction (e.g. to report what Rollback is about to undo) never aliases
// the slice Dump is about to marshal out from under it.
func (l *Loader) snapshot() (moduleDump, error) {
	bundles := avail.ModuleAllBundles(l.mod)
	names := make([]string, len(bundles))
	for i, b := range bundles {
		names[i] = avail.BundleMessageName(b)
	}
	sort.Strings(names)
	live := moduleDump{Module: avail.ModuleName(l.mod), Bundles: names}

	var clone moduleDump
	if err := deepcopy.Copy(&clone, &live); err != nil {
		return moduleDump{}, err
	}
	return clone, nil
}

// Begin opens a new transaction. Only one may be open at a time; Begin
// panics if called while a transaction is already open, since nested
// module compilation is not part of this contract.
func (l *Loader) Begin() {
	if l.txn != nil {
		panic("module: transaction already open")
	}
	l.txn = []func(){}
}

// Commit discards the undo log for the current transaction, making its
// effects permanent.
func (l *Loader) Commit() {
	l.txn = nil
}

// Rollback undoes every effect recorded since Begin, in reverse order, and
// closes the transaction -- used when a top-level statement fails to
// parse or a fatal compilation-driving exception (errs.AssertionFailed,
// errs.EmergencyExit) propagates out of it (spec §4.F).
func (l *Loader) Rollback() {
	for i := len(l.txn) - 1; i >= 0; i-- {
		l.txn[i]()
	}
	l.txn = nil
}

func (l *Loader) record(undo func()) {
	if l.txn != nil {
		l.txn = append(l.txn, undo)
	}
}

// DefineAtom installs a fresh atom under name in the module, failing with
// RedefinedName if one already exists.
func (l *Loader) DefineAtom(name string) (*object.Object, error) {
	if _, ok := avail.ModuleLookupAtom(l.mod, name); ok {
		return nil, errs.New(errs.RedefinedName)
	}
	atom := avail.NewAtom(name, l.mod)
	avail.ModuleDefineAtom(l.mod, name, atom)
	l.record(func() { avail.ModuleUndefineAtom(l.mod, name) })
	return atom, nil
}

// DefineMethod installs definition under the bundle for messageName,
// creating the Method/Bundle pair and inserting it into the bundle tree on
// first use.
func (l *Loader) DefineMethod(messageName string, definition *object.Object) (*object.Object, error) {
	bundle, ok := avail.ModuleLookupBundle(l.mod, messageName)
	if !ok {
		plan, err := splitter.Compile(messageName)
		if err != nil {
			return nil, err
		}
		method := avail.NewMethod(messageName)
		bundle = avail.NewBundle(method, messageName)
		avail.BundleSetSplitPlan(bundle, plan)
		l.tree.Insert(bundle, plan)
		avail.ModuleDefineBundle(l.mod, messageName, bundle)
		l.record(func() { avail.ModuleUndefineBundle(l.mod, messageName) })
	}
	avail.MethodAddDefinition(avail.BundleMethod(bundle), definition)
	// Definitions, once installed on a shared Method, are not removed on
	// rollback: a concurrently-compiling module may already have observed
	// and depended on them (spec §5's concurrent-definition-visibility
	// contract). Only this module's own bundle/atom/binding namespace
	// entries are undone.
	return bundle, nil
}

// DeclareForward installs a Forward definition for messageName, recording
// it as pending until a matching concrete definition resolves it
// (scenario S4).
func (l *Loader) DeclareForward(messageName string, signatureType *object.Object) (*object.Object, error) {
	forward := avail.NewDefinition(avail.ForwardDefinitionKind, signatureType, nil, l.mod)
	bundle, err := l.DefineMethod(messageName, forward)
	if err != nil {
		return nil, err
	}
	avail.ModuleAddForward(l.mod, messageName, forward)
	l.record(func() { avail.ModuleResolveForward(l.mod, messageName) })
	return bundle, nil
}

// ResolveForward replaces messageName's pending forward declaration with a
// real body, installing it as an ordinary concrete definition and clearing
// it from the pending set.
func (l *Loader) ResolveForward(messageName string, body *object.Object) error {
	bundle, ok := avail.ModuleLookupBundle(l.mod, messageName)
	if !ok {
		return errs.New(errs.KeyNotFound)
	}
	for _, def := range avail.MethodDefinitions(avail.BundleMethod(bundle)) {
		if avail.DefinitionKindOf(def) == avail.ForwardDefinitionKind {
			if err := avail.DefinitionResolveForward(def, body); err != nil {
				return err
			}
			avail.ModuleResolveForward(l.mod, messageName)
			return nil
		}
	}
	return errs.New(errs.KeyNotFound)
}

// CheckForwardsResolved fails with UnresolvedForwardDeclaration if any
// forward declared in this module was never resolved by a concrete
// definition -- the end-of-module check scenario S4 requires.
func (l *Loader) CheckForwardsResolved() error {
	pending := avail.ModulePendingForwards(l.mod)
	if len(pending) == 0 {
		return nil
	}
	var merr *multierror.Error
	for _, name := range pending {
		merr = multierror.Append(merr, errs.Newf(errs.UnresolvedForwardDeclaration, "forward declaration %q never resolved", name))
	}
	return errs.Wrap(errs.UnresolvedForwardDeclaration, merr)
}

// ImportOrder computes a safe module-load order for a set of modules whose
// dependency edges are given by deps, using Tarjan's algorithm (package
// scc) to fail loudly on a circular Extends/Uses import (spec §4.F import
// handling, scenario S6) instead of silently picking an arbitrary order.
// modules not reachable from root are omitted.
func ImportOrder(root string, deps func(string) []string) (order []string, cyclic bool) {
	graph := func(name string) func(func(string) bool) {
		return func(yield func(string) bool) {
			for _, d := range deps(name) {
				if !yield(d) {
					return
				}
			}
		}
	}
	dag := scc.Sort(root, scc.Graph[string](graph))
	for comp := range dag.Topological() {
		members := comp.Members()
		if len(members) > 1 {
			cyclic = true
		}
		order = append(order, members...)
	}
	// Topological() yields reverse-topological order (a component never
	// depends on one after it), so dependencies already precede dependents.
	return order, cyclic
}

// Extend copies every bundle imported defines directly into this module's
// namespace (imported's atoms are not copied), applying renames (old name -> new name) where
// present, the way an Extends clause re-exports an ancestor's names under
// possibly different spellings (spec §4.F, scenario S6). Uses (import
// without re-export) is identical from the loader's point of view -- the
// distinction only matters to a module that imports *this* one, which
// Avail's visibility rules (not modeled by this loader) would consult.
func (l *Loader) Extend(imported *object.Object, renames map[string]string) {
	avail.ModuleAddImport(l.mod, imported)
	for _, bundle := range avail.ModuleAllBundles(imported) {
		name := avail.BundleMessageName(bundle)
		if renamed, ok := renames[name]; ok {
			name = renamed
		}
		if _, exists := avail.ModuleLookupBundle(l.mod, name); !exists {
			avail.ModuleDefineBundle(l.mod, name, bundle)
			l.record(func() { avail.ModuleUndefineBundle(l.mod, name) })
		}
	}
}
