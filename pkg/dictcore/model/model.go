// Package model holds the value types shared by every stage of the
// dictionary lookup pipeline: text transformations, deinflection
// candidates, raw database entries, and the assembled/grouped/enriched
// term dictionary entries returned to callers.
//
// Every type here is a plain value record — no cycles, ownership is
// tree-shaped from the returned result downward.
package model

// MatchType controls how a term/reading is matched against a dictionary
// index.
type MatchType string

const (
	MatchExact  MatchType = "exact"
	MatchPrefix MatchType = "prefix"
	MatchSuffix MatchType = "suffix"
)

// MatchSource records whether a hit matched on the term or the reading.
type MatchSource string

const (
	MatchSourceTerm    MatchSource = "term"
	MatchSourceReading MatchSource = "reading"
)

// HypothesisSource is the join lattice {algorithm, dictionary, both}
// describing where an inflection hypothesis was observed.
type HypothesisSource string

const (
	SourceAlgorithm HypothesisSource = "algorithm"
	SourceDictionary HypothesisSource = "dictionary"
	SourceBoth      HypothesisSource = "both"
)

// JoinSource implements a simple join lattice: conflicting
// observations promote to "both".
func JoinSource(a, b HypothesisSource) HypothesisSource {
	if a == "" {
		return b
	}
	if b == "" {
		return a
	}
	if a == b {
		return a
	}
	return SourceBoth
}

// InflectionHypothesis is one observed chain of inflection rule names,
// tagged with where it was observed.
type InflectionHypothesis struct {
	Source      HypothesisSource
	Inflections []string
}

// SameInflections reports whether two hypotheses carry the same set of
// inflection names, ignoring order and duplicate count.
func SameInflections(a, b []string) bool {
	as := toSet(a)
	bs := toSet(b)
	if len(as) != len(bs) {
		return false
	}
	for k := range as {
		if _, ok := bs[k]; !ok {
			return false
		}
	}
	return true
}

func toSet(xs []string) map[string]struct{} {
	m := make(map[string]struct{}, len(xs))
	for _, x := range xs {
		m[x] = struct{}{}
	}
	return m
}

// DatabaseEntry is a raw hit returned by the dictionary query interface
// (component D), indexed back to the query batch position that produced
// it.
//
// A kanji-bank row (FindKanjiBulk) reuses the same shape under
// kanji-specific field meanings, since kanji banks are positional tuples
// just like term banks: Term is the character, TermTags carries
// onyomi readings, WordClasses carries kunyomi readings, DefinitionTags
// carries kanji tag names, Glosses carries meanings, and Rules carries
// stat records serialized as "name:value" pairs (e.g. "grade:2",
// "strokes:8"); the stat's category is resolved separately through the
// tag cache, keyed on the stat name.
type DatabaseEntry struct {
	ID                    int64
	Index                 int // position in the query batch
	Term                  string
	Reading               string
	DefinitionTags        []string
	TermTags              []string
	WordClasses           []string // rule ids
	Score                 float64
	Dictionary            string
	Sequence              int64 // -1 when absent
	Rules                 []string
	MatchType             MatchType
	MatchSource           MatchSource
	FormOf                string // non-empty marks a "non-lemma" entry
	InflectionHypotheses  []InflectionHypothesis
	NonLemma              bool
	Glosses               []DefinitionEntry // raw definition content, already flattened past the schema boundary
}

// DeinflectionCandidate is one node produced while rewriting a surface
// form back toward a lemma (component C) and carried through the term
// finder (component E).
type DeinflectionCandidate struct {
	OriginalText          string
	TransformedText       string
	DeinflectedText       string
	RuleMask              uint32
	InflectionHypotheses  []InflectionHypothesis
	Hits                  []DatabaseEntry
	IsDictionaryDeinflect bool
}

// Source records where one headword's text came from: the original slice,
// the text after variant transformation, and the text after deinflection.
type Source struct {
	OriginalText    string
	TransformedText string
	DeinflectedText string
	MatchType       MatchType
	MatchSource     MatchSource
	IsPrimary       bool
}

// TagGroup groups tag names contributed by one dictionary for one field
// (term tags or definition tags) on a headword or definition.
type TagGroup struct {
	Dictionary string
	Names      []string
}

// Headword identifies a (term, reading) pair within one entry's headword
// list.
type Headword struct {
	Index       int // position within its containing entry's headword list
	Term        string
	Reading     string // defaults to Term when the dictionary left it empty
	Sources     []Source
	TagGroups   []TagGroup
	WordClasses []string
}

// SameHeadword reports the headword equality rule: two headwords are the same
// iff (term, reading) match.
func SameHeadword(a, b Headword) bool {
	return a.Term == b.Term && a.Reading == b.Reading
}

// TermDefinition is one dictionary's contribution to an entry: the
// headwords it applies to, its provenance, and its opaque content list.
type TermDefinition struct {
	Index              int
	HeadwordIndices     []int // sorted unique
	Dictionary         string
	DictionaryIndex    int
	DictionaryPriority int
	ID                 int64
	Score              float64
	FrequencyOrder     int
	Sequences          []int64
	IsPrimary          bool
	TagGroups          []TagGroup
	Entries            []DefinitionEntry
}

// DefinitionEntry is one opaque content item of a definition: plain text,
// an image reference, or a flattened structured-content payload.
type DefinitionEntry struct {
	Kind string // "text", "image", "structured-content"
	Text string // flattened text for "text" and "structured-content"
	URL  string // present for "image"
}

// PitchAccent is one pitch-accent record for a (reading, headword) pair.
type PitchAccent struct {
	HeadwordIndex   int
	Position        int
	NasalPositions  []int
	DevoicePositions []int
	TagGroups       []TagGroup
	Dictionary      string
	DictionaryIndex int
	DictionaryPriority int
}

// PhoneticTranscription is one IPA transcription record.
type PhoneticTranscription struct {
	HeadwordIndex      int
	IPA                string
	TagGroups          []TagGroup
	Dictionary         string
	DictionaryIndex    int
	DictionaryPriority int
}

// Pronunciation bundles the pitch and IPA records contributed for one
// headword by one dictionary.
type Pronunciation struct {
	Index                  int
	HeadwordIndex          int
	Dictionary             string
	DictionaryIndex        int
	DictionaryPriority     int
	Pitches                []PitchAccent
	PhoneticTranscriptions []PhoneticTranscription
}

// Frequency is one frequency-of-use record contributed for one headword
// by one dictionary.
type Frequency struct {
	Index              int
	HeadwordIndex      int
	Dictionary         string
	DictionaryIndex    int
	DictionaryPriority int
	HasReading         bool
	FrequencyValue     float64
	DisplayValue       string
	DisplayValueParsed bool
}

// TermDictionaryEntry is the fully assembled, grouped, and enriched
// record returned to callers ("Term dictionary entry").
type TermDictionaryEntry struct {
	Kind                        string // always "term"
	IsPrimary                   bool
	InflectionHypotheses        []InflectionHypothesis
	Score                       float64
	FrequencyOrder              int
	DictionaryIndex             int
	DictionaryPriority          int
	SourceTermExactMatchCount   int
	MaxTransformedTextLength    int
	Headwords                   []Headword
	Definitions                 []TermDefinition
	Pronunciations              []Pronunciation
	Frequencies                 []Frequency
	Tags                        []Tag // flattened, deduped, (order, name)-sorted expansion of every tag name referenced anywhere in this entry
}

// Tag is an expanded, user-facing tag record.
type Tag struct {
	Name        string
	Category    string
	Order       int
	Score       float64
	Content     []string
	Dictionaries []string
	Redundant   bool
}

// DefaultTag returns the default tag used when a tag lookup misses: a tag
// record becomes null, and the resulting Tag uses category=default,
// order=0, score=0.
func DefaultTag(name string) Tag {
	return Tag{Name: name, Category: "default", Order: 0, Score: 0}
}

// MergeTag applies the tag merge rule: same (name, category) =>
// order := min, score := max, append dictionaries/content uniquely.
func MergeTag(dst *Tag, src Tag) {
	if src.Order < dst.Order {
		dst.Order = src.Order
	}
	if src.Score > dst.Score {
		dst.Score = src.Score
	}
	dst.Dictionaries = appendUnique(dst.Dictionaries, src.Dictionaries...)
	dst.Content = appendUnique(dst.Content, src.Content...)
}

// KanjiStat is one stat record (stroke count, grade, JLPT level, ...)
// attached to a kanji entry, grouped by tag category per the kanji
// finder's "expand stats by tag metadata grouped by category" step.
type KanjiStat struct {
	Category string
	Name     string
	Value    string
}

// KanjiDictionaryEntry is the fully assembled, enriched record returned
// by FindKanji (component J, "a simpler sibling of E-I for single-
// character entries").
type KanjiDictionaryEntry struct {
	Character          string
	Onyomi             []string
	Kunyomi            []string
	Dictionary         string
	DictionaryIndex    int
	DictionaryPriority int
	TagGroups          []TagGroup
	Tags               []Tag
	Stats              []KanjiStat
	Definitions        []DefinitionEntry
	Frequencies        []Frequency
}

func appendUnique(dst []string, src ...string) []string {
	seen := make(map[string]struct{}, len(dst))
	for _, d := range dst {
		seen[d] = struct{}{}
	}
	for _, s := range src {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		dst = append(dst, s)
	}
	return dst
}
