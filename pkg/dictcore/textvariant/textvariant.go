// Package textvariant enumerates the Cartesian product of applicable text
// transformations over an input string (component A). It walks the input
// rune-by-rune, rewriting each enabled axis in turn and keeping the
// source map in sync.
package textvariant

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/width"

	"github.com/kanjidict/dictcore/pkg/dictcore/sourcemap"
)

// Setting is the tri-state toggle for one transformation axis.
type Setting int

const (
	Off Setting = iota
	On
	Both
)

// Transform is one text transformation axis: an id used to look it up in
// a FinderOptions.TextTransformations map, and the function that rewrites
// a string. Apply must be a pure function of its input (no external
// state) so the generator can run it on either branch of a Both axis.
type Transform struct {
	ID    string
	Apply func(string) string
}

// Replacement is one (pattern, replacement) pair from
// FinderOptions.TextReplacements. The generator only ever returns a
// single variant list for text replacements — the
// generator does not expand them into Both-like alternatives.
type Replacement struct {
	Pattern     *regexp.Regexp
	Replacement string
}

// EmphaticMode controls collapsing of emphatic sequences (e.g. "sooo good"
// → "so good"), a language-specific normalization.
type EmphaticMode int

const (
	EmphaticOff EmphaticMode = iota
	EmphaticOn
	EmphaticFull // collapses more aggressively
)

// Config configures one generator run.
type Config struct {
	TextReplacements          []Replacement
	CollapseEmphaticSequences EmphaticMode
	// Transforms lists the language-specific axes in a fixed order; the
	// generator treats this list as a mixed-radix counter, with the last
	// element changing fastest (least-significant).
	Transforms []Transform
	// Settings maps each Transform.ID to its tri-state setting. Axes
	// absent from this map default to Off.
	Settings map[string]Setting
}

// Variant is one (transformed string, source map) pair.
type Variant struct {
	Text      string
	SourceMap *sourcemap.SourceMap
}

// Generator lazily walks the Cartesian product of enabled axes. It never
// materializes the whole product: each call to Next applies exactly one
// combination of axis outcomes and advances a mixed-radix counter.
type Generator struct {
	original string
	cfg      Config
	axes     []axisPlan
	counter  []int
	done     bool
	first    bool
}

type axisPlan struct {
	transform Transform
	outcomes  []bool // false = don't apply, true = apply
}

// New builds a Generator over text using cfg. The emphatic-sequence
// collapse and the text replacements are applied once, up front (they are
// not part of the Cartesian product — replacements never expand into
// alternatives, and emphatic collapsing runs in the single configured
// mode).
func New(text string, cfg Config) *Generator {
	g := &Generator{original: text, cfg: cfg, first: true}

	for _, t := range cfg.Transforms {
		setting := cfg.Settings[t.ID]
		var outcomes []bool
		switch setting {
		case On:
			outcomes = []bool{true}
		case Both:
			outcomes = []bool{false, true}
		default: // Off
			outcomes = []bool{false}
		}
		g.axes = append(g.axes, axisPlan{transform: t, outcomes: outcomes})
	}

	g.counter = make([]int, len(g.axes))
	return g
}

// Next returns the next variant and true, or a zero Variant and false once
// every combination has been produced.
func (g *Generator) Next() (Variant, bool) {
	if g.done {
		return Variant{}, false
	}

	if g.first {
		g.first = false
	} else if !g.advance() {
		g.done = true
		return Variant{}, false
	}

	text, sm := g.applyPreprocessing(g.original)
	for i, axis := range g.axes {
		if !axis.outcomes[g.counter[i]] {
			continue // outcome "don't apply" for this axis
		}
		applied := axis.transform.Apply(text)
		combineDiff(sm, text, applied)
		text = applied
	}

	if len(g.axes) == 0 {
		g.done = true // single-shot: only one combination exists
	}

	return Variant{Text: text, SourceMap: sm}, true
}

// advance increments the mixed-radix counter, least-significant axis
// (the last one) changing fastest. Returns false once every combination
// has been emitted.
func (g *Generator) advance() bool {
	for i := len(g.axes) - 1; i >= 0; i-- {
		g.counter[i]++
		if g.counter[i] < len(g.axes[i].outcomes) {
			return true
		}
		g.counter[i] = 0
	}
	return false
}

// applyPreprocessing runs the emphatic-sequence collapse and the text
// replacements, producing the starting point for the axis product, along
// with a fresh source map tracking the changes made so far.
func (g *Generator) applyPreprocessing(text string) (string, *sourcemap.SourceMap) {
	sm := sourcemap.New(runeLen(text))

	if g.cfg.CollapseEmphaticSequences != EmphaticOff {
		collapsed := collapseEmphatic(text, g.cfg.CollapseEmphaticSequences == EmphaticFull)
		combineDiff(sm, text, collapsed)
		text = collapsed
	}

	for _, r := range g.cfg.TextReplacements {
		replaced := r.Pattern.ReplaceAllString(text, r.Replacement)
		if replaced == text {
			continue
		}
		combineDiff(sm, text, replaced)
		text = replaced
	}

	return text, sm
}

func runeLen(s string) int {
	return len([]rune(s))
}

// combineDiff localizes a sourcemap update to the minimal rune span a
// transform actually changed: it strips the runs of runes old and new
// agree on at the start and end, then collapses only the differing
// middle span via sm.Combine. A transform of length n -> m over the
// whole string otherwise looks identical to one that only rewrote a
// single character in the middle, which would needlessly merge
// untouched segments and corrupt OriginalPrefixLength for any later,
// unrelated cut through the unaffected region.
func combineDiff(sm *sourcemap.SourceMap, old, new string) {
	o := []rune(old)
	n := []rune(new)

	prefix := 0
	for prefix < len(o) && prefix < len(n) && o[prefix] == n[prefix] {
		prefix++
	}

	maxOldSuffix := len(o) - prefix
	maxNewSuffix := len(n) - prefix
	suffix := 0
	for suffix < maxOldSuffix && suffix < maxNewSuffix && o[len(o)-1-suffix] == n[len(n)-1-suffix] {
		suffix++
	}

	oldSpan := len(o) - prefix - suffix
	newSpan := len(n) - prefix - suffix
	if oldSpan == 0 && newSpan == 0 {
		return // old == new: nothing changed
	}
	sm.Combine(prefix, oldSpan, newSpan)
}

// collapseEmphatic collapses runs of 3+ repeated runes down to 1 (full
// mode) or 2 (default mode) occurrences, e.g. "sooo" → "so" (full) or
// "soo" (default). This mirrors the common "emphatic sequence" notion of
// dropping drawn-out repeated letters used for emphasis ("soooo good").
func collapseEmphatic(s string, full bool) string {
	runes := []rune(s)
	if len(runes) == 0 {
		return s
	}

	var b strings.Builder
	keep := 2
	if full {
		keep = 1
	}

	for i := 0; i < len(runes); {
		j := i + 1
		for j < len(runes) && runes[j] == runes[i] && unicode.IsLetter(runes[i]) {
			j++
		}
		n := j - i
		if n >= 3 {
			n = keep
		}
		for k := 0; k < n; k++ {
			b.WriteRune(runes[i])
		}
		i = j
	}
	return b.String()
}

// Decapitalize is a stock Transform: lowercases the first rune of s.
var Decapitalize = Transform{
	ID: "decapitalize",
	Apply: func(s string) string {
		runes := []rune(s)
		if len(runes) == 0 {
			return s
		}
		runes[0] = unicode.ToLower(runes[0])
		return string(runes)
	},
}

// Capitalize uppercases the first rune of s and leaves the rest as is —
// the inverse of Decapitalize, for dictionaries whose headwords are
// capitalized (proper nouns).
var Capitalize = Transform{
	ID: "capitalize",
	Apply: func(s string) string {
		runes := []rune(s)
		if len(runes) == 0 {
			return s
		}
		runes[0] = unicode.ToUpper(runes[0])
		return string(runes)
	},
}

// Lowercase folds the whole string to lower case.
var Lowercase = Transform{
	ID:    "lowercase",
	Apply: strings.ToLower,
}

// Halfwidth is a stock Transform: folds fullwidth Latin letters, digits
// and punctuation down to their ASCII equivalents — the script conversion
// needed when lookup text arrives from an IME that defaults to fullwidth
// input. width.Fold maps halfwidth katakana the other way, to their
// standard fullwidth forms; fullwidth katakana are left unchanged.
var Halfwidth = Transform{
	ID:    "halfwidth",
	Apply: width.Fold.String,
}

const (
	hiraganaStart = 0x3041
	hiraganaEnd   = 0x3096
	katakanaStart = 0x30a1
	katakanaEnd   = 0x30f6
	kanaShift     = katakanaStart - hiraganaStart
)

// Katakana is a stock Transform: converts hiragana runes to their
// katakana counterparts. The hiragana and katakana blocks are parallel
// ranges of Unicode code points a fixed distance apart, so the
// conversion is a straight rune shift.
var Katakana = Transform{
	ID: "katakana",
	Apply: func(s string) string {
		runes := []rune(s)
		for i, r := range runes {
			if r >= hiraganaStart && r <= hiraganaEnd {
				runes[i] = r + kanaShift
			}
		}
		return string(runes)
	},
}

// Hiragana is the inverse of Katakana: converts katakana runes down to
// hiragana.
var Hiragana = Transform{
	ID: "hiragana",
	Apply: func(s string) string {
		runes := []rune(s)
		for i, r := range runes {
			if r >= katakanaStart && r <= katakanaEnd {
				runes[i] = r - kanaShift
			}
		}
		return string(runes)
	},
}

// StockTransforms returns every built-in Transform, in the fixed order a
// caller should normally pass to a Config.Transforms list: case folding
// first, then script conversions.
func StockTransforms() []Transform {
	return []Transform{Decapitalize, Capitalize, Lowercase, Halfwidth, Katakana, Hiragana}
}
