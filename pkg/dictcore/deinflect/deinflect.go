// Package deinflect implements the rule-tagged deinflection search
// (component C): from a surface form, produce candidate lemmas plus the
// chain of inflection rules applied to reach them.
//
// The search itself is a worklist/frontier walk: pop a node, find every
// rule that can fire from it, push the results, track visited keys to
// avoid re-expanding. The "edges" are suffix-rewrite rules, and the
// visited set is keyed by (term, mask).
package deinflect

// Candidate is one node reached while rewriting a surface form toward a
// lemma: the current term, the rule mask accumulated from the rules
// applied so far, and the ordered chain of rule names that produced it.
type Candidate struct {
	Term    string
	Mask    uint32
	Reasons []string
}

// Deinflector holds the static table of inflection rules.
type Deinflector struct {
	rules []Rule
}

// New builds a Deinflector from a rule table. Callers typically load the
// table once at startup (see pkg/dictcore/config.LoadDeinflectionRules)
// and reuse the Deinflector across requests — it holds no mutable state.
func New(rules []Rule) *Deinflector {
	return &Deinflector{rules: append([]Rule(nil), rules...)}
}

// Deinflect performs the breadth-first rewriting:
//  1. seed the queue with {term: text, mask: 0, reasons: []}
//  2. repeatedly pop a candidate; for every rule whose suffix matches and
//     whose RulesIn fits the candidate's mask, emit a rewritten candidate
//  3. the original text is also emitted unchanged, with empty reasons
//
// Termination is guaranteed because no rule lengthens the term (SuffixOut
// is never longer than SuffixIn for any rule in DefaultRules; several keep
// the length, e.g. た→る) and duplicate (term, mask) pairs are pruned, so
// only finitely many (term, mask) pairs can be reached.
func (d *Deinflector) Deinflect(text string) []Candidate {
	type key struct {
		term string
		mask uint32
	}

	visited := map[key]bool{{text, 0}: true}
	queue := []Candidate{{Term: text, Mask: 0, Reasons: nil}}
	results := []Candidate{{Term: text, Mask: 0, Reasons: nil}} // step 3: original text, unchanged

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, rule := range d.rules {
			if !rule.Matches(current.Term, current.Mask) {
				continue
			}
			newTerm := rule.Apply(current.Term)
			if newTerm == current.Term || newTerm == "" {
				continue // must strictly shorten/change the term
			}

			k := key{newTerm, rule.RulesOut}
			if visited[k] {
				continue
			}
			visited[k] = true

			reasons := make([]string, len(current.Reasons)+1)
			copy(reasons, current.Reasons)
			reasons[len(current.Reasons)] = rule.Name

			next := Candidate{Term: newTerm, Mask: rule.RulesOut, Reasons: reasons}
			queue = append(queue, next)
			results = append(results, next)
		}
	}

	return results
}
