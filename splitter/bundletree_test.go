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

package splitter_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lifehaxmax35/availtrig/avail"
	"github.com/lifehaxmax35/availtrig/splitter"
)

func TestBundleTreeMergesSharedPrefix(t *testing.T) {
	tree := splitter.New()

	plusPlan, err := splitter.Compile("_+_")
	require.NoError(t, err)
	minusPlan, err := splitter.Compile("_+_+_")
	require.NoError(t, err)

	plusMethod := avail.NewMethod("_+_")
	plusBundle := avail.NewBundle(plusMethod, "_+_")
	tree.Insert(plusBundle, plusPlan)

	longMethod := avail.NewMethod("_+_+_")
	longBundle := avail.NewBundle(longMethod, "_+_+_")
	tree.Insert(longBundle, minusPlan)

	root := tree.Root()
	argNode, ok := root.Argument()
	require.True(t, ok)

	plusNode, ok := argNode.Keyword("+")
	require.True(t, ok)

	arg2Node, ok := plusNode.Argument()
	require.True(t, ok)

	// "_+_" completes right here.
	require.Len(t, arg2Node.Complete(), 1)

	// "_+_+_" continues past this point, sharing the prefix.
	plus2Node, ok := arg2Node.Keyword("+")
	require.True(t, ok)
	arg3Node, ok := plus2Node.Argument()
	require.True(t, ok)
	require.Len(t, arg3Node.Complete(), 1)
}

func TestBundleTreeGroupRepetition(t *testing.T) {
	tree := splitter.New()
	plan, err := splitter.Compile("«_‡,»")
	require.NoError(t, err)
	method := avail.NewMethod("«_‡,»")
	bundle := avail.NewBundle(method, "«_‡,»")
	tree.Insert(bundle, plan)

	root := tree.Root()
	enter, ok := root.GroupEnter()
	require.True(t, ok)
	after, ok := root.GroupAfter()
	require.True(t, ok)

	// Zero repetitions: the group's after-state completes immediately.
	require.Len(t, after.Complete(), 1)

	// One repetition: enter -> argument -> separator checkpoint -> "," -> loop end.
	argNode, ok := enter.Argument()
	require.True(t, ok)
	sepNode, ok := argNode.Checkpoint()
	require.True(t, ok)
	commaNode, ok := sepNode.Keyword(",")
	require.True(t, ok)

	// commaNode is the body-end node: it should offer both a loop-back (to
	// repeat) and a loop-exit (matching after).
	loopExit, ok := commaNode.LoopExit()
	require.True(t, ok)
	require.Same(t, after, loopExit)

	loopBack, ok := commaNode.LoopBack()
	require.True(t, ok)
	require.Same(t, enter, loopBack)
}

func TestBundleTreeOptionalGroupHasNoLoopBack(t *testing.T) {
	tree := splitter.New()
	plan, err := splitter.Compile("«_»?")
	require.NoError(t, err)
	method := avail.NewMethod("«_»?")
	bundle := avail.NewBundle(method, "«_»?")
	tree.Insert(bundle, plan)

	root := tree.Root()
	optional, _ := root.GroupModifiers()
	require.True(t, optional)

	enter, ok := root.GroupEnter()
	require.True(t, ok)
	argNode, ok := enter.Argument()
	require.True(t, ok)

	_, hasLoopBack := argNode.LoopBack()
	require.False(t, hasLoopBack)
}

func TestGrammaticalRestriction(t *testing.T) {
	tree := splitter.New()
	parent := avail.NewBundle(avail.NewMethod("_+_"), "_+_")
	child := avail.NewBundle(avail.NewMethod("_-_"), "_-_")
	otherChild := avail.NewBundle(avail.NewMethod("_*_"), "_*_")

	require.False(t, tree.IsForbidden(parent, 0, child))
	tree.Forbid(parent, 0, child)
	require.True(t, tree.IsForbidden(parent, 0, child))
	require.False(t, tree.IsForbidden(parent, 0, otherChild))
	require.False(t, tree.IsForbidden(parent, 1, child))
}
