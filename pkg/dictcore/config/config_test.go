package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kanjidict/dictcore/pkg/dictcore/finder"
	"github.com/kanjidict/dictcore/pkg/dictcore/model"
	"github.com/kanjidict/dictcore/pkg/dictcore/textvariant"
)

func writeFixture(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "finder.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

const fixtureYAML = `
enabled_dictionaries:
  - name: jmdict
    index: 0
    priority: 5
    allow_secondary_searches: true
main_dictionary: jmdict
match_type: prefix
deinflect: true
deinflection_source: both
deinflection_pos_filter: true
text_replacements:
  - pattern: '\s+'
    replacement: ' '
collapse_emphatic_sequences: full
text_transformations:
  halfwidth: both
remove_non_japanese_characters: true
search_resolution: word
sort_frequency_dictionary: innocent_corpus
sort_frequency_dictionary_order: descending
exclude_dictionary_definitions:
  - forms
`

func TestLoadFinderDefaultsParsesFixture(t *testing.T) {
	path := writeFixture(t, fixtureYAML)

	defaults, err := LoadFinderDefaults(path)
	if err != nil {
		t.Fatalf("LoadFinderDefaults: %v", err)
	}

	if len(defaults.EnabledDictionaries) != 1 || defaults.EnabledDictionaries[0].Name != "jmdict" {
		t.Fatalf("unexpected enabled_dictionaries: %+v", defaults.EnabledDictionaries)
	}
	if defaults.MainDictionary != "jmdict" {
		t.Errorf("expected main_dictionary jmdict, got %q", defaults.MainDictionary)
	}
	if defaults.SortFrequencyDictionary != "innocent_corpus" {
		t.Errorf("expected sort_frequency_dictionary innocent_corpus, got %q", defaults.SortFrequencyDictionary)
	}
}

func TestLoadFinderDefaultsMissingFileReturnsError(t *testing.T) {
	if _, err := LoadFinderDefaults(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}

func TestToFinderOptionsPopulatesEveryField(t *testing.T) {
	path := writeFixture(t, fixtureYAML)
	defaults, err := LoadFinderDefaults(path)
	if err != nil {
		t.Fatalf("LoadFinderDefaults: %v", err)
	}

	opts, err := defaults.ToFinderOptions()
	if err != nil {
		t.Fatalf("ToFinderOptions: %v", err)
	}

	details, ok := opts.EnabledDictionaryMap["jmdict"]
	if !ok || details.Priority != 5 || !details.AllowSecondarySearches {
		t.Errorf("unexpected enabled dictionary map entry: %+v", details)
	}
	if opts.MatchType != model.MatchPrefix {
		t.Errorf("expected MatchPrefix, got %v", opts.MatchType)
	}
	if opts.DeinflectionSource != finder.SourceBoth {
		t.Errorf("expected SourceBoth, got %v", opts.DeinflectionSource)
	}
	if opts.SearchResolution != finder.ResolutionWord {
		t.Errorf("expected ResolutionWord, got %v", opts.SearchResolution)
	}
	if opts.SortFrequencyDictionaryOrder != finder.SortDescending {
		t.Errorf("expected SortDescending, got %v", opts.SortFrequencyDictionaryOrder)
	}
	if opts.CollapseEmphaticSequences != textvariant.EmphaticFull {
		t.Errorf("expected EmphaticFull, got %v", opts.CollapseEmphaticSequences)
	}
	if len(opts.TextReplacements) != 1 || !opts.TextReplacements[0].Pattern.MatchString("a  b") {
		t.Errorf("expected a compiled whitespace replacement pattern, got %+v", opts.TextReplacements)
	}
	if opts.TextTransformations["halfwidth"] != textvariant.Both {
		t.Errorf("expected halfwidth=Both, got %v", opts.TextTransformations["halfwidth"])
	}
	if _, excluded := opts.ExcludeDictionaryDefinitions["forms"]; !excluded {
		t.Errorf("expected 'forms' to be excluded, got %+v", opts.ExcludeDictionaryDefinitions)
	}
}

func TestToFinderOptionsRejectsInvalidTextReplacementPattern(t *testing.T) {
	path := writeFixture(t, `
text_replacements:
  - pattern: '(unterminated'
    replacement: ''
`)
	defaults, err := LoadFinderDefaults(path)
	if err != nil {
		t.Fatalf("LoadFinderDefaults: %v", err)
	}
	if _, err := defaults.ToFinderOptions(); err == nil {
		t.Fatal("expected an error for an invalid regexp pattern")
	}
}

func TestToFinderOptionsRejectsInvalidTextTransformationSetting(t *testing.T) {
	path := writeFixture(t, `
text_transformations:
  halfwidth: sideways
`)
	defaults, err := LoadFinderDefaults(path)
	if err != nil {
		t.Fatalf("LoadFinderDefaults: %v", err)
	}
	if _, err := defaults.ToFinderOptions(); err == nil {
		t.Fatal("expected an error for an unknown text_transformations setting")
	}
}

func TestToFinderOptionsDefaultsAreZeroValueSettings(t *testing.T) {
	path := writeFixture(t, "main_dictionary: jmdict\n")
	defaults, err := LoadFinderDefaults(path)
	if err != nil {
		t.Fatalf("LoadFinderDefaults: %v", err)
	}

	opts, err := defaults.ToFinderOptions()
	if err != nil {
		t.Fatalf("ToFinderOptions: %v", err)
	}
	if opts.MatchType != model.MatchExact {
		t.Errorf("expected default MatchExact, got %v", opts.MatchType)
	}
	if opts.DeinflectionSource != finder.SourceAlgorithm {
		t.Errorf("expected default SourceAlgorithm, got %v", opts.DeinflectionSource)
	}
	if opts.SearchResolution != finder.ResolutionLetter {
		t.Errorf("expected default ResolutionLetter, got %v", opts.SearchResolution)
	}
	if opts.SortFrequencyDictionaryOrder != finder.SortAscending {
		t.Errorf("expected default SortAscending, got %v", opts.SortFrequencyDictionaryOrder)
	}
	if opts.CollapseEmphaticSequences != textvariant.EmphaticOff {
		t.Errorf("expected default EmphaticOff, got %v", opts.CollapseEmphaticSequences)
	}
}

func TestLoadDeinflectionRulesInternsRuleMasks(t *testing.T) {
	path := writeFixture(t, `
- name: past (ichidan)
  rules_out: [v1]
  suffix_in: "た"
  suffix_out: "る"
- name: past (godan-u)
  rules_in: [v5]
  rules_out: [v5]
  suffix_in: "った"
  suffix_out: "う"
`)

	rules, err := LoadDeinflectionRules(path)
	if err != nil {
		t.Fatalf("LoadDeinflectionRules: %v", err)
	}
	if len(rules) != 2 {
		t.Fatalf("expected 2 rules, got %d", len(rules))
	}
	if rules[0].Name != "past (ichidan)" || rules[0].SuffixIn != "た" || rules[0].SuffixOut != "る" {
		t.Errorf("unexpected first rule: %+v", rules[0])
	}
	if rules[1].RulesIn == 0 {
		t.Errorf("expected a nonzero RulesIn mask for godan rule, got %+v", rules[1])
	}
}

func TestLoadDeinflectionRulesMissingFileReturnsError(t *testing.T) {
	if _, err := LoadDeinflectionRules(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}
