// Package assemble implements component F: turning one raw database hit,
// plus the deinflection provenance that led to it, into a standalone term
// dictionary entry with exactly one headword and one definition. The
// grouper (component G) later folds many of these together.
package assemble

import (
	"github.com/kanjidict/dictcore/pkg/dictcore/model"
	"github.com/kanjidict/dictcore/pkg/dictcore/store"
)

// Builder constructs term dictionary entries from database hits.
type Builder struct{}

// New creates an entry builder.
func New() *Builder {
	return &Builder{}
}

// Input bundles everything needed to build one entry from one hit.
type Input struct {
	Entry           model.DatabaseEntry
	OriginalText    string
	TransformedText string
	DeinflectedText string
	Hypotheses      []model.InflectionHypothesis
	IsPrimary       bool
	Enabled         map[string]store.DictionaryDetails
}

// Build assembles one headword and one definition from in:
//
//   - one headword (term, reading-or-term-if-empty, [source],
//     [tag_group(dictionary, term_tags)], word_classes);
//   - one definition (headword_indices=[0], dictionary, dictionary_index,
//     dictionary_priority, id, score, sequences=[sequence_or_-1],
//     is_primary, [tag_group(dictionary, definition_tags)], entries);
//   - source_term_exact_match_count = 1 iff is_primary && deinflected_text
//     == term.
func (b *Builder) Build(in Input) model.TermDictionaryEntry {
	e := in.Entry

	reading := e.Reading
	if reading == "" {
		reading = e.Term
	}

	headword := model.Headword{
		Index:   0,
		Term:    e.Term,
		Reading: reading,
		Sources: []model.Source{{
			OriginalText:    in.OriginalText,
			TransformedText: in.TransformedText,
			DeinflectedText: in.DeinflectedText,
			MatchType:       e.MatchType,
			MatchSource:     e.MatchSource,
			IsPrimary:       in.IsPrimary,
		}},
		WordClasses: e.WordClasses,
	}
	if len(e.TermTags) > 0 {
		headword.TagGroups = []model.TagGroup{{Dictionary: e.Dictionary, Names: e.TermTags}}
	}

	details := in.Enabled[e.Dictionary]

	definition := model.TermDefinition{
		Index:              0,
		HeadwordIndices:    []int{0},
		Dictionary:         e.Dictionary,
		DictionaryIndex:    details.Index,
		DictionaryPriority: details.Priority,
		ID:                 e.ID,
		Score:              e.Score,
		Sequences:          []int64{e.Sequence},
		IsPrimary:          in.IsPrimary,
		Entries:            buildContent(e.Glosses),
	}
	if len(e.DefinitionTags) > 0 {
		definition.TagGroups = []model.TagGroup{{Dictionary: e.Dictionary, Names: e.DefinitionTags}}
	}

	matchCount := 0
	if in.IsPrimary && in.DeinflectedText == e.Term {
		matchCount = 1
	}

	return model.TermDictionaryEntry{
		Kind:                      "term",
		IsPrimary:                 in.IsPrimary,
		InflectionHypotheses:      in.Hypotheses,
		Score:                     e.Score,
		DictionaryIndex:           details.Index,
		DictionaryPriority:        details.Priority,
		SourceTermExactMatchCount: matchCount,
		MaxTransformedTextLength:  runeLen(in.TransformedText),
		Headwords:                 []model.Headword{headword},
		Definitions:               []model.TermDefinition{definition},
	}
}

// buildContent turns the raw glosses a dictionary attached to a database
// entry into the opaque content list a definition carries. Structured
// content (HTML-shaped glosses) is flattened upstream by
// pkg/dictcore/htmlcontent before it ever reaches a DatabaseEntry; here it
// is already plain DefinitionEntry values.
func buildContent(glosses []model.DefinitionEntry) []model.DefinitionEntry {
	if len(glosses) == 0 {
		return nil
	}
	out := make([]model.DefinitionEntry, len(glosses))
	copy(out, glosses)
	return out
}

func runeLen(s string) int {
	return len([]rune(s))
}
