// Package config loads YAML-described finder defaults: tri-state
// text-transformation toggles, emphatic-sequence mode, text replacement
// lists, enabled-dictionary priority maps, and the sort-frequency
// dictionary — the configuration find_terms recognises.
package config

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/kanjidict/dictcore/pkg/dictcore/deinflect"
	"github.com/kanjidict/dictcore/pkg/dictcore/finder"
	"github.com/kanjidict/dictcore/pkg/dictcore/model"
	"github.com/kanjidict/dictcore/pkg/dictcore/store"
	"github.com/kanjidict/dictcore/pkg/dictcore/textvariant"
)

// DictionaryEntry is one row of the enabled-dictionary priority map.
type DictionaryEntry struct {
	Name                   string `yaml:"name"`
	Index                  int    `yaml:"index"`
	Priority               int    `yaml:"priority"`
	AllowSecondarySearches bool   `yaml:"allow_secondary_searches"`
}

// TextReplacement is one `(pattern, replacement)` pair applied by the
// text-variant generator (component A).
type TextReplacement struct {
	Pattern     string `yaml:"pattern"`
	Replacement string `yaml:"replacement"`
}

// FinderDefaults is the on-disk shape of a finder configuration file: the
// tri-state toggles and dictionary map that seed finder.Options for every
// request, overridable per call.
type FinderDefaults struct {
	EnabledDictionaries        []DictionaryEntry `yaml:"enabled_dictionaries"`
	MainDictionary              string            `yaml:"main_dictionary"`
	MatchType                   string            `yaml:"match_type"`
	Deinflect                   bool              `yaml:"deinflect"`
	DeinflectionSource           string            `yaml:"deinflection_source"`
	DeinflectionPOSFilter        bool              `yaml:"deinflection_pos_filter"`
	TextReplacements             []TextReplacement `yaml:"text_replacements"`
	CollapseEmphaticSequences    string            `yaml:"collapse_emphatic_sequences"`
	TextTransformations          map[string]string `yaml:"text_transformations"`
	RemoveNonJapaneseCharacters  bool              `yaml:"remove_non_japanese_characters"`
	SearchResolution             string            `yaml:"search_resolution"`
	SortFrequencyDictionary       string            `yaml:"sort_frequency_dictionary"`
	SortFrequencyDictionaryOrder string            `yaml:"sort_frequency_dictionary_order"`
	ExcludeDictionaryDefinitions []string          `yaml:"exclude_dictionary_definitions"`
}

// LoadFinderDefaults reads and parses a finder configuration file.
func LoadFinderDefaults(path string) (*FinderDefaults, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var defaults FinderDefaults
	if err := yaml.Unmarshal(data, &defaults); err != nil {
		return nil, err
	}

	return &defaults, nil
}

// ToFinderOptions builds finder.Options from the loaded defaults, with
// the enabled-dictionary map and per-axis settings materialized into
// their runtime representations.
func (d *FinderDefaults) ToFinderOptions() (finder.Options, error) {
	enabled := make(map[string]store.DictionaryDetails, len(d.EnabledDictionaries))
	for _, e := range d.EnabledDictionaries {
		enabled[e.Name] = store.DictionaryDetails{
			Index:                  e.Index,
			Priority:               e.Priority,
			AllowSecondarySearches: e.AllowSecondarySearches,
		}
	}

	replacements, err := d.textReplacements()
	if err != nil {
		return finder.Options{}, err
	}

	settings := make(map[string]textvariant.Setting, len(d.TextTransformations))
	for id, raw := range d.TextTransformations {
		setting, err := parseSetting(raw)
		if err != nil {
			return finder.Options{}, fmt.Errorf("text_transformations[%s]: %w", id, err)
		}
		settings[id] = setting
	}

	exclude := make(map[string]struct{}, len(d.ExcludeDictionaryDefinitions))
	for _, name := range d.ExcludeDictionaryDefinitions {
		exclude[name] = struct{}{}
	}

	return finder.Options{
		EnabledDictionaryMap:         enabled,
		MainDictionary:               d.MainDictionary,
		MatchType:                    parseMatchType(d.MatchType),
		Deinflect:                    d.Deinflect,
		DeinflectionSource:           parseDeinflectionSource(d.DeinflectionSource),
		DeinflectionPOSFilter:        d.DeinflectionPOSFilter,
		TextReplacements:             replacements,
		CollapseEmphaticSequences:    parseEmphaticMode(d.CollapseEmphaticSequences),
		TextTransformations:          settings,
		RemoveNonJapaneseCharacters:  d.RemoveNonJapaneseCharacters,
		SearchResolution:             parseSearchResolution(d.SearchResolution),
		SortFrequencyDictionary:      d.SortFrequencyDictionary,
		SortFrequencyDictionaryOrder: parseSortDirection(d.SortFrequencyDictionaryOrder),
		ExcludeDictionaryDefinitions: exclude,
	}, nil
}

// DeinflectionRule is one on-disk row of a custom deinflection rule table,
// mirroring deinflect.Rule but with rule names spelled out instead of
// pre-interned into a bitset.
type DeinflectionRule struct {
	Name      string   `yaml:"name"`
	RulesIn   []string `yaml:"rules_in"`
	RulesOut  []string `yaml:"rules_out"`
	SuffixIn  string   `yaml:"suffix_in"`
	SuffixOut string   `yaml:"suffix_out"`
}

// LoadDeinflectionRules reads a custom deinflection rule table from a YAML
// file of DeinflectionRule rows and interns it into deinflect.Rule values.
// A deployment that doesn't need rules beyond deinflect.DefaultRules can
// skip calling this entirely.
func LoadDeinflectionRules(path string) ([]deinflect.Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var rows []DeinflectionRule
	if err := yaml.Unmarshal(data, &rows); err != nil {
		return nil, err
	}

	rules := make([]deinflect.Rule, len(rows))
	for i, r := range rows {
		rules[i] = deinflect.Rule{
			Name:      r.Name,
			RulesIn:   deinflect.MaskOfStrings(r.RulesIn),
			RulesOut:  deinflect.MaskOfStrings(r.RulesOut),
			SuffixIn:  r.SuffixIn,
			SuffixOut: r.SuffixOut,
		}
	}
	return rules, nil
}

func (d *FinderDefaults) textReplacements() ([]textvariant.Replacement, error) {
	out := make([]textvariant.Replacement, 0, len(d.TextReplacements))
	for _, r := range d.TextReplacements {
		re, err := regexp.Compile(r.Pattern)
		if err != nil {
			return nil, fmt.Errorf("text_replacements pattern %q: %w", r.Pattern, err)
		}
		out = append(out, textvariant.Replacement{Pattern: re, Replacement: r.Replacement})
	}
	return out, nil
}

func parseSetting(s string) (textvariant.Setting, error) {
	switch s {
	case "off", "":
		return textvariant.Off, nil
	case "on":
		return textvariant.On, nil
	case "both":
		return textvariant.Both, nil
	default:
		return textvariant.Off, fmt.Errorf("unknown setting %q", s)
	}
}

func parseEmphaticMode(s string) textvariant.EmphaticMode {
	switch s {
	case "on":
		return textvariant.EmphaticOn
	case "full":
		return textvariant.EmphaticFull
	default:
		return textvariant.EmphaticOff
	}
}

func parseMatchType(s string) model.MatchType {
	switch s {
	case "prefix":
		return model.MatchPrefix
	case "suffix":
		return model.MatchSuffix
	default:
		return model.MatchExact
	}
}

func parseDeinflectionSource(s string) finder.DeinflectionSource {
	switch s {
	case "dictionary":
		return finder.SourceDictionary
	case "both":
		return finder.SourceBoth
	default:
		return finder.SourceAlgorithm
	}
}

func parseSearchResolution(s string) finder.SearchResolution {
	if s == "word" {
		return finder.ResolutionWord
	}
	return finder.ResolutionLetter
}

func parseSortDirection(s string) finder.SortDirection {
	if s == "descending" {
		return finder.SortDescending
	}
	return finder.SortAscending
}
