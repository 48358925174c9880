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

package splitter

import (
	"unicode"

	"github.com/lifehaxmax35/availtrig/errs"
	"golang.org/x/text/cases"
)

// foldCaser implements keyword⁇'s case-insensitive literal with full
// Unicode case folding instead of an ASCII-only lowercasing, so the
// compiled Literal matches bundletree.go's case-insensitive lookup
// correctly for non-Latin scripts too.
var foldCaser = cases.Fold()

// Compile turns a message name into its parsing-instruction Plan (spec
// §4.D). The grammar recognized:
//
//	_        an argument
//	_!       an argument with no implicit type coercion
//	↑_       an argument that must be a variable reference
//	…        a raw, unparsed lexical token
//	keyword⁇ a keyword matched case-insensitively
//	«...»    a repeatable group
//	«...»?   a group occurring zero or one times
//	«...»#   a group whose parse yields its repetition count, not its elements
//	‡        inside a group, separates the repeated body from its separator
//	§        a checkpoint invoking the bundle's prefix function
func Compile(name string) (*Plan, error) {
	runes := []rune(name)
	var instrs []Instruction
	var argCount int

	i := 0
	for i < len(runes) {
		r := runes[i]
		switch {
		case r == '_':
			i++
			if i < len(runes) && runes[i] == '!' {
				instrs = append(instrs, Instruction{Kind: ArgumentTypeChecked})
				i++
			} else {
				instrs = append(instrs, Instruction{Kind: Argument})
			}
			argCount++

		case r == '↑':
			i++
			if i >= len(runes) || runes[i] != '_' {
				return nil, errs.NewRejected("'↑' must be immediately followed by '_' in message name %q", name)
			}
			i++
			instrs = append(instrs, Instruction{Kind: VariableReference})
			argCount++

		case r == '…':
			instrs = append(instrs, Instruction{Kind: RawToken})
			argCount++
			i++

		case r == '«':
			instrs = append(instrs, Instruction{Kind: GroupStart})
			i++

		case r == '»':
			instrs = append(instrs, Instruction{Kind: GroupEnd})
			i++
			if i < len(runes) {
				switch runes[i] {
				case '?':
					instrs = append(instrs, Instruction{Kind: GroupOptional})
					i++
				case '#':
					instrs = append(instrs, Instruction{Kind: GroupYieldCount})
					i++
				}
			}

		case r == '‡':
			instrs = append(instrs, Instruction{Kind: GroupSeparator})
			i++

		case r == '§':
			instrs = append(instrs, Instruction{Kind: Checkpoint})
			i++

		case unicode.IsSpace(r):
			i++ // whitespace between parts is insignificant

		default:
			start := i
			for i < len(runes) && !isMetacharacter(runes[i]) && !unicode.IsSpace(runes[i]) {
				i++
			}
			text := string(runes[start:i])
			if i < len(runes) && runes[i] == '⁇' {
				instrs = append(instrs, Instruction{Kind: KeywordCaseInsensitive, Literal: foldCaser.String(text)})
				i++
			} else {
				instrs = append(instrs, Instruction{Kind: Keyword, Literal: text})
			}
		}
	}

	if err := validateGroups(instrs); err != nil {
		return nil, err
	}

	return &Plan{Name: name, Instructions: instrs, NumArguments: argCount}, nil
}

func isMetacharacter(r rune) bool {
	switch r {
	case '_', '«', '»', '‡', '§', '?', '#', '!', '⁇', '↑', '…':
		return true
	default:
		return false
	}
}

// validateGroups rejects malformed group nesting.
func validateGroups(instrs []Instruction) error {
	depth := 0
	for _, ins := range instrs {
		switch ins.Kind {
		case GroupStart:
			depth++
		case GroupEnd:
			depth--
			if depth < 0 {
				return errs.NewRejected("unmatched '»' in message name")
			}
		}
	}
	if depth != 0 {
		return errs.NewRejected("unmatched '«' in message name")
	}
	return nil
}
