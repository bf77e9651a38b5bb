package deinflect

import "strings"

// RuleName is a grammatical word-class name drawn from the small, fixed
// vocabulary used by the dictionary term-bank format: v1 (ichidan),
// v5 (godan), vs (suru), vk (kuru), adj-i (i-adjective). Rule interns
// these into a bitset so "does this deinflected candidate's rule mask fit
// this dictionary entry's word class" is a single AND test.
type RuleName string

const (
	RuleIchidan  RuleName = "v1"    // ichidan verb
	RuleGodan    RuleName = "v5"    // godan verb
	RuleSuru     RuleName = "vs"    // suru verb
	RuleKuru     RuleName = "vk"    // kuru verb
	RuleAdjI     RuleName = "adj-i" // i-adjective
)

// ruleOrder fixes the bit position of every interned rule name.
var ruleOrder = []RuleName{RuleIchidan, RuleGodan, RuleSuru, RuleKuru, RuleAdjI}

var ruleBit = func() map[RuleName]uint32 {
	m := make(map[RuleName]uint32, len(ruleOrder))
	for i, name := range ruleOrder {
		m[name] = 1 << uint(i)
	}
	return m
}()

// MaskOf ORs together the bits for the given rule names. Unknown names are
// ignored (dictionaries may carry word-class strings this engine doesn't
// recognize; they simply never match any rule's mask).
func MaskOf(names ...RuleName) uint32 {
	var mask uint32
	for _, n := range names {
		mask |= ruleBit[n]
	}
	return mask
}

// MaskOfStrings is MaskOf for raw dictionary word-class strings (as stored
// on model.DatabaseEntry.WordClasses).
func MaskOfStrings(names []string) uint32 {
	var mask uint32
	for _, n := range names {
		mask |= ruleBit[RuleName(n)]
	}
	return mask
}

// Fits implements the rule-mask fit test: a deinflection candidate's
// mask fits a dictionary entry's word-class mask when the candidate
// imposes no constraint (candidateMask == 0) or the two masks share a bit.
func Fits(candidateMask, entryMask uint32) bool {
	return candidateMask == 0 || candidateMask&entryMask != 0
}

// Rule is one entry in the deinflector's static rule table:
// whenever a candidate's suffix matches SuffixIn and its current rule
// mask satisfies RulesIn, the rule rewrites the suffix to SuffixOut and
// sets the candidate's mask to RulesOut.
type Rule struct {
	Name      string // inflection name recorded in the reason chain, e.g. "past"
	RulesIn   uint32 // required mask; 0 means "any"
	RulesOut  uint32 // mask after this rule is applied
	SuffixIn  string
	SuffixOut string
}

// DefaultRules returns a small built-in deinflection rule table covering
// common plain/polite, past, negative, and te-form inflections across the
// five recognized word classes. A caller that needs a larger or
// dictionary-specific table builds its own (see
// pkg/dictcore/config.LoadDeinflectionRules) and passes it to
// engine.Options.DeinflectionRules instead.
func DefaultRules() []Rule {
	return []Rule{
		// Ichidan ("-eru"/"-iru" verbs): strip the conjugated ending back
		// to the dictionary form ending in る.
		{Name: "past (ichidan)", RulesOut: MaskOf(RuleIchidan), SuffixIn: "た", SuffixOut: "る"},
		{Name: "negative (ichidan)", RulesOut: MaskOf(RuleIchidan), SuffixIn: "ない", SuffixOut: "る"},
		{Name: "te-form (ichidan)", RulesOut: MaskOf(RuleIchidan), SuffixIn: "て", SuffixOut: "る"},
		{Name: "polite (ichidan)", RulesOut: MaskOf(RuleIchidan), SuffixIn: "ます", SuffixOut: "る"},
		{Name: "polite-past (ichidan)", RulesOut: MaskOf(RuleIchidan), SuffixIn: "ました", SuffixOut: "る"},

		// Godan: past for the う/く/す rows, negative for う/く, te-form
		// for う, and a single polite rule back to う.
		{Name: "past (godan-u)", RulesOut: MaskOf(RuleGodan), SuffixIn: "った", SuffixOut: "う"},
		{Name: "past (godan-ku)", RulesOut: MaskOf(RuleGodan), SuffixIn: "いた", SuffixOut: "く"},
		{Name: "past (godan-su)", RulesOut: MaskOf(RuleGodan), SuffixIn: "した", SuffixOut: "す"},
		{Name: "negative (godan-u)", RulesOut: MaskOf(RuleGodan), SuffixIn: "わない", SuffixOut: "う"},
		{Name: "negative (godan-ku)", RulesOut: MaskOf(RuleGodan), SuffixIn: "かない", SuffixOut: "く"},
		{Name: "te-form (godan-u)", RulesOut: MaskOf(RuleGodan), SuffixIn: "って", SuffixOut: "う"},
		{Name: "polite (godan)", RulesOut: MaskOf(RuleGodan), SuffixIn: "ます", SuffixOut: "う"},

		// Suru and kuru irregulars.
		{Name: "past (suru)", RulesOut: MaskOf(RuleSuru), SuffixIn: "した", SuffixOut: "する"},
		{Name: "negative (suru)", RulesOut: MaskOf(RuleSuru), SuffixIn: "しない", SuffixOut: "する"},
		{Name: "past (kuru)", RulesOut: MaskOf(RuleKuru), SuffixIn: "きた", SuffixOut: "くる"},
		{Name: "negative (kuru)", RulesOut: MaskOf(RuleKuru), SuffixIn: "こない", SuffixOut: "くる"},

		// I-adjectives.
		{Name: "negative (adj-i)", RulesOut: MaskOf(RuleAdjI), SuffixIn: "くない", SuffixOut: "い"},
		{Name: "past (adj-i)", RulesOut: MaskOf(RuleAdjI), SuffixIn: "かった", SuffixOut: "い"},
		{Name: "adverbial (adj-i)", RulesOut: MaskOf(RuleAdjI), SuffixIn: "く", SuffixOut: "い"},
	}
}

// Matches reports whether r can rewrite a candidate with the given
// surface term and rule mask.
func (r Rule) Matches(term string, mask uint32) bool {
	if !strings.HasSuffix(term, r.SuffixIn) {
		return false
	}
	if r.RulesIn != 0 && mask&r.RulesIn == 0 {
		return false
	}
	return true
}

// Apply rewrites term's suffix, assuming Matches(term, mask) already
// reported true.
func (r Rule) Apply(term string) string {
	trimmed := term[:len(term)-len(r.SuffixIn)]
	return trimmed + r.SuffixOut
}
