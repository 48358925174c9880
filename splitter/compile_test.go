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

	"github.com/lifehaxmax35/availtrig/splitter"
)

func TestCompileSimpleInfix(t *testing.T) {
	plan, err := splitter.Compile("_+_")
	require.NoError(t, err)
	require.Equal(t, 2, plan.NumArguments)
	require.Equal(t, []splitter.Instruction{
		{Kind: splitter.Argument},
		{Kind: splitter.Keyword, Literal: "+"},
		{Kind: splitter.Argument},
	}, plan.Instructions)
}

func TestCompileKeywordSequence(t *testing.T) {
	plan, err := splitter.Compile("If_then_else_")
	require.NoError(t, err)
	require.Equal(t, 3, plan.NumArguments)
}

func TestCompileRepeatedGroup(t *testing.T) {
	plan, err := splitter.Compile("«_‡,»")
	require.NoError(t, err)
	require.Equal(t, 1, plan.NumArguments)
	require.Equal(t, splitter.GroupStart, plan.Instructions[0].Kind)
	require.Equal(t, splitter.GroupEnd, plan.Instructions[len(plan.Instructions)-1].Kind)
}

func TestCompileCaseInsensitiveKeyword(t *testing.T) {
	plan, err := splitter.Compile("if⁇_then_")
	require.NoError(t, err)
	require.Equal(t, splitter.KeywordCaseInsensitive, plan.Instructions[0].Kind)
	require.Equal(t, "if", plan.Instructions[0].Literal)
}

func TestCompileUnmatchedGroupRejected(t *testing.T) {
	_, err := splitter.Compile("«_")
	require.Error(t, err)

	_, err = splitter.Compile("_»")
	require.Error(t, err)
}

func TestCompileVariableReference(t *testing.T) {
	plan, err := splitter.Compile("_::=↑_")
	require.NoError(t, err)
	require.Equal(t, 2, plan.NumArguments)
	last := plan.Instructions[len(plan.Instructions)-1]
	require.Equal(t, splitter.VariableReference, last.Kind)
}
