// Package finder implements component E: it drives the text-variant
// generator (A), the source map (B), the deinflector (C), and the
// database query interface (D) to produce a raw list of assembled hits
// for one span of text.
package finder

import (
	"context"
	"unicode"

	"github.com/kanjidict/dictcore/pkg/dictcore/assemble"
	"github.com/kanjidict/dictcore/pkg/dictcore/deinflect"
	"github.com/kanjidict/dictcore/pkg/dictcore/model"
	"github.com/kanjidict/dictcore/pkg/dictcore/store"
	"github.com/kanjidict/dictcore/pkg/dictcore/tagcache"
	"github.com/kanjidict/dictcore/pkg/dictcore/textvariant"
)

// Mode selects how find_terms groups and merges its results downstream
// (component G). The finder itself never reads it: the engine dispatches
// on it and rejects merge mode without a main dictionary.
type Mode string

const (
	ModeGroup  Mode = "group"
	ModeMerge  Mode = "merge"
	ModeSplit  Mode = "split"
	ModeSimple Mode = "simple"
)

// DeinflectionSource selects which deinflection passes run.
type DeinflectionSource string

const (
	SourceAlgorithm  DeinflectionSource = "algorithm"
	SourceDictionary DeinflectionSource = "dictionary"
	SourceBoth       DeinflectionSource = "both"
)

// SearchResolution selects the stepping granularity of the outer scan.
type SearchResolution string

const (
	ResolutionLetter SearchResolution = "letter"
	ResolutionWord   SearchResolution = "word"
)

// SortDirection selects ascending or descending frequency-based ordering.
type SortDirection string

const (
	SortAscending  SortDirection = "ascending"
	SortDescending SortDirection = "descending"
)

// Options configures one find_terms call, per the "Configuration
// recognised by find_terms options" list.
type Options struct {
	EnabledDictionaryMap         map[string]store.DictionaryDetails
	MainDictionary               string
	MatchType                    model.MatchType
	Deinflect                    bool
	DeinflectionSource           DeinflectionSource
	DeinflectionPOSFilter        bool
	CollapseEmphaticSequences    textvariant.EmphaticMode
	TextReplacements             []textvariant.Replacement
	TextTransformations          map[string]textvariant.Setting
	RemoveNonJapaneseCharacters  bool
	SearchResolution             SearchResolution
	SortFrequencyDictionary      string
	SortFrequencyDictionaryOrder SortDirection
	ExcludeDictionaryDefinitions map[string]struct{}
}

// Result is what find_terms returns to the caller.
type Result struct {
	Entries            []model.TermDictionaryEntry
	OriginalTextLength int
}

// Finder composes the term-finding pipeline. It holds the one piece of
// call-spanning shared state the whole core has: the tag cache.
type Finder struct {
	store       store.Store
	deinflector *deinflect.Deinflector
	tagCache    *tagcache.Cache
	assembler   *assemble.Builder
	transforms  []textvariant.Transform
}

// New builds a Finder. transforms lists the language-specific
// text-variant axes (e.g. textvariant.Decapitalize) available to every
// call's Options.TextTransformations.
func New(st store.Store, deinflector *deinflect.Deinflector, tagCache *tagcache.Cache, transforms []textvariant.Transform) *Finder {
	return &Finder{
		store:       st,
		deinflector: deinflector,
		tagCache:    tagCache,
		assembler:   assemble.New(),
		transforms:  transforms,
	}
}

// candidate is one deinflection-candidate record carried through the
// pipeline, tracking enough provenance to assemble an entry and to run
// the dedup-by-id fold in step 6.
type candidate struct {
	originalText    string
	transformedText string
	deinflectedText string
	ruleMask        uint32
	hypotheses      []model.InflectionHypothesis
	isDictDeinflect bool
}

// FindTerms implements the term-finding algorithm.
func (f *Finder) FindTerms(ctx context.Context, text string, opts Options) (Result, error) {
	if opts.RemoveNonJapaneseCharacters {
		text = truncateAtNonJapanese(text)
	}
	if text == "" {
		return Result{}, nil
	}

	candidates := f.collectCandidates(text, opts)
	if len(candidates) == 0 {
		return Result{}, nil
	}

	hitsByTerm, err := f.bulkLookup(ctx, candidates, opts)
	if err != nil {
		return Result{}, err
	}

	type attached = struct {
		cand candidate
		hit  model.DatabaseEntry
	}
	var primaryHits []attached
	for _, c := range candidates {
		for _, hit := range hitsByTerm[c.deinflectedText] {
			if !fitsRules(opts, c.ruleMask, hit.WordClasses) {
				continue
			}
			primaryHits = append(primaryHits, attached{cand: c, hit: hit})
		}
	}

	var dictDeinflectHits []attached
	if opts.DeinflectionSource != SourceAlgorithm {
		synthesized := synthesizeDictionaryDeinflections(primaryHits)
		if len(synthesized) > 0 {
			lemmaTerms := make([]string, 0, len(synthesized))
			seen := make(map[string]struct{})
			for _, c := range synthesized {
				if _, ok := seen[c.deinflectedText]; ok {
					continue
				}
				seen[c.deinflectedText] = struct{}{}
				lemmaTerms = append(lemmaTerms, c.deinflectedText)
			}
			lemmaHits, err := f.store.FindTermsBulk(ctx, lemmaTerms, opts.EnabledDictionaryMap, opts.MatchType)
			if err != nil {
				return Result{}, err
			}
			byTerm := make(map[string][]model.DatabaseEntry)
			for _, h := range lemmaHits {
				byTerm[lemmaTerms[h.Index]] = append(byTerm[lemmaTerms[h.Index]], h)
			}
			for _, c := range synthesized {
				for _, hit := range byTerm[c.deinflectedText] {
					if !fitsRules(opts, c.ruleMask, hit.WordClasses) {
						continue
					}
					dictDeinflectHits = append(dictDeinflectHits, attached{cand: c, hit: hit})
				}
			}
		}
	}

	entries := make([]model.TermDictionaryEntry, 0, len(primaryHits))
	indexByID := make(map[int64]int)
	originalTextLength := 0

	addHit := func(a attached) {
		hit := a.hit
		if hit.NonLemma || hit.FormOf != "" {
			return // consumed by the dictionary-deinflection pass instead
		}

		if !a.cand.isDictDeinflect {
			if n := len([]rune(a.cand.originalText)); n > originalTextLength {
				originalTextLength = n
			}
		}

		built := f.assembler.Build(assemble.Input{
			Entry:           hit,
			OriginalText:    a.cand.originalText,
			TransformedText: a.cand.transformedText,
			DeinflectedText: a.cand.deinflectedText,
			Hypotheses:      a.cand.hypotheses,
			IsPrimary:       true,
			Enabled:         opts.EnabledDictionaryMap,
		})

		if idx, ok := indexByID[hit.ID]; ok {
			existing := entries[idx]
			if built.MaxTransformedTextLength >= existing.MaxTransformedTextLength {
				mergeHypotheses(&existing, built.InflectionHypotheses)
				entries[idx] = existing
			}
			return
		}

		indexByID[hit.ID] = len(entries)
		entries = append(entries, built)
	}

	for _, a := range primaryHits {
		addHit(a)
	}
	for _, a := range dictDeinflectHits {
		addHit(a)
	}

	return Result{Entries: entries, OriginalTextLength: originalTextLength}, nil
}

// collectCandidates runs the variant loop (step 2) and the deinflection
// step (step 3) over every variant/position pair, skipping sources
// already tried.
func (f *Finder) collectCandidates(text string, opts Options) []candidate {
	cfg := textvariant.Config{
		TextReplacements:          opts.TextReplacements,
		CollapseEmphaticSequences: opts.CollapseEmphaticSequences,
		Transforms:                f.transforms,
		Settings:                  opts.TextTransformations,
	}

	var out []candidate
	tried := make(map[string]struct{})

	gen := textvariant.New(text, cfg)
	for variant, ok := gen.Next(); ok; variant, ok = gen.Next() {
		runes := []rune(variant.Text)
		for i := len(runes); i >= 1; i = stepBack(runes, i, opts.SearchResolution) {
			source := string(runes[:i])
			if _, seen := tried[source]; seen {
				continue
			}
			tried[source] = struct{}{}

			rawPrefixLen := variant.SourceMap.OriginalPrefixLength(i)
			originalText := string([]rune(text)[:rawPrefixLen])

			if opts.Deinflect && opts.DeinflectionSource != SourceDictionary {
				for _, dc := range f.deinflector.Deinflect(source) {
					var hyps []model.InflectionHypothesis
					if len(dc.Reasons) > 0 {
						hyps = []model.InflectionHypothesis{{Source: model.SourceAlgorithm, Inflections: dc.Reasons}}
					}
					out = append(out, candidate{
						originalText:    originalText,
						transformedText: source,
						deinflectedText: dc.Term,
						ruleMask:        dc.Mask,
						hypotheses:      hyps,
					})
				}
			} else {
				out = append(out, candidate{
					originalText:    originalText,
					transformedText: source,
					deinflectedText: source,
				})
			}
		}
	}
	return out
}

// bulkLookup groups candidates by deinflected_text and issues one bulk
// term query for the unique terms (step 4).
func (f *Finder) bulkLookup(ctx context.Context, candidates []candidate, opts Options) (map[string][]model.DatabaseEntry, error) {
	var terms []string
	seen := make(map[string]struct{})
	for _, c := range candidates {
		if _, ok := seen[c.deinflectedText]; ok {
			continue
		}
		seen[c.deinflectedText] = struct{}{}
		terms = append(terms, c.deinflectedText)
	}

	hits, err := f.store.FindTermsBulk(ctx, terms, opts.EnabledDictionaryMap, opts.MatchType)
	if err != nil {
		return nil, err
	}

	byTerm := make(map[string][]model.DatabaseEntry)
	for _, h := range hits {
		byTerm[terms[h.Index]] = append(byTerm[terms[h.Index]], h)
	}
	return byTerm, nil
}

// synthesizeDictionaryDeinflections implements step 5: every hit tagged
// non-lemma becomes a new candidate whose deinflected text is the hit's
// form_of, with hypotheses cross-producted between the algorithm and
// dictionary sources.
func synthesizeDictionaryDeinflections(primaryHits []struct {
	cand candidate
	hit  model.DatabaseEntry
}) []candidate {
	var out []candidate
	for _, a := range primaryHits {
		if !a.hit.NonLemma && a.hit.FormOf == "" {
			continue
		}
		lemma := a.hit.FormOf
		if lemma == "" {
			continue
		}

		dictHyps := a.hit.InflectionHypotheses
		if len(dictHyps) == 0 {
			dictHyps = []model.InflectionHypothesis{{Source: model.SourceDictionary}}
		}

		algoHyps := a.cand.hypotheses
		if len(algoHyps) == 0 {
			algoHyps = []model.InflectionHypothesis{{}}
		}

		for _, dh := range dictHyps {
			for _, ah := range algoHyps {
				combined := model.InflectionHypothesis{
					Source:      model.JoinSource(ah.Source, dh.Source),
					Inflections: append(append([]string(nil), ah.Inflections...), dh.Inflections...),
				}
				out = append(out, candidate{
					originalText:    a.cand.originalText,
					transformedText: a.cand.transformedText,
					deinflectedText: lemma,
					ruleMask:        a.cand.ruleMask,
					hypotheses:      []model.InflectionHypothesis{combined},
					isDictDeinflect: true,
				})
			}
		}
	}
	return out
}

// mergeHypotheses folds newHyps into entry's existing hypothesis list per
// a set-equality rule: a hypothesis already present (same inflection
// set, ignoring order and duplicates, per model.SameInflections) has its
// source joined; otherwise it's appended.
func mergeHypotheses(entry *model.TermDictionaryEntry, newHyps []model.InflectionHypothesis) {
	for _, nh := range newHyps {
		merged := false
		for i, eh := range entry.InflectionHypotheses {
			if model.SameInflections(eh.Inflections, nh.Inflections) {
				entry.InflectionHypotheses[i].Source = model.JoinSource(eh.Source, nh.Source)
				merged = true
				break
			}
		}
		if !merged {
			entry.InflectionHypotheses = append(entry.InflectionHypotheses, nh)
		}
	}
}

// fitsRules applies the rule-mask fit test, gated by
// DeinflectionPOSFilter: when the filter is off every hit fits.
func fitsRules(opts Options, candidateMask uint32, wordClasses []string) bool {
	if !opts.DeinflectionPOSFilter {
		return true
	}
	return deinflect.Fits(candidateMask, deinflect.MaskOfStrings(wordClasses))
}

// stepBack advances the outer i loop (step 7): letter resolution
// decrements by one rune; word resolution jumps back to the nearest
// script-class boundary, approximating "the end of the previous
// non-letter run" for languages (Japanese among them) that have no
// whitespace between words.
func stepBack(runes []rune, i int, resolution SearchResolution) int {
	if resolution != ResolutionWord {
		return i - 1
	}
	if i <= 1 {
		return i - 1
	}
	class := runeClass(runes[i-1])
	j := i - 1
	for j > 0 && runeClass(runes[j-1]) == class {
		j--
	}
	if j == i-1 {
		return i - 1 // no run to skip; fall back to single-step
	}
	return j
}

type scriptClass int

const (
	classOther scriptClass = iota
	classKanji
	classKana
	classLatin
)

func runeClass(r rune) scriptClass {
	switch {
	case unicode.In(r, unicode.Han):
		return classKanji
	case unicode.In(r, unicode.Hiragana, unicode.Katakana):
		return classKana
	case unicode.IsLetter(r):
		return classLatin
	default:
		return classOther
	}
}

// truncateAtNonJapanese implements "remove_non_japanese_characters":
// truncate text at the first code point outside the Japanese Unicode
// blocks (kanji, kana, and the full/half-width punctuation commonly
// embedded in Japanese text).
func truncateAtNonJapanese(text string) string {
	runes := []rune(text)
	for i, r := range runes {
		if !isJapaneseRune(r) {
			return string(runes[:i])
		}
	}
	return text
}

func isJapaneseRune(r rune) bool {
	return unicode.In(r, unicode.Han, unicode.Hiragana, unicode.Katakana) ||
		(r >= 0x3000 && r <= 0x303F) || // CJK symbols and punctuation
		(r >= 0xFF00 && r <= 0xFFEF) // halfwidth/fullwidth forms
}
