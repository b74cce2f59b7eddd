package grading

import "strings"

// DefaultMaxScale is the common maximum grades are normalized to.
const DefaultMaxScale = 20

// ScalePolicy resolves the maximum scale a subject is scored out of for a
// given level. Injectable so institution policy changes need no code change.
type ScalePolicy interface {
	MaxScale(level, subjectName string) float64
}

// ScaleRule overrides the default maximum for the given levels when the
// subject name contains one of the keywords (case-insensitive).
type ScaleRule struct {
	Levels   []string
	Keywords []string
	Max      float64
}

type RuleTable struct {
	rules []ScaleRule
	def   float64
}

var _ ScalePolicy = RuleTable{}

func NewRuleTable(def float64, rules ...ScaleRule) RuleTable {
	return RuleTable{rules: rules, def: def}
}

func (t RuleTable) MaxScale(level, subjectName string) float64 {
	name := strings.ToLower(subjectName)
	for _, rule := range t.rules {
		if !contains(rule.Levels, level) {
			continue
		}
		for _, kw := range rule.Keywords {
			if strings.Contains(name, kw) {
				return rule.Max
			}
		}
	}
	return t.def
}

// DefaultScalePolicy is the Ivorian primary-school barème: from CE1 up,
// maths, éveil and text-analysis subjects are scored out of 50 while
// orthographe stays out of 20; CP and maternelle levels use /20 throughout.
func DefaultScalePolicy() RuleTable {
	upper := []string{"CE1", "CE2", "CM1", "CM2"}
	return NewRuleTable(DefaultMaxScale,
		ScaleRule{Levels: upper, Keywords: []string{"math"}, Max: 50},
		ScaleRule{Levels: upper, Keywords: []string{"éveil"}, Max: 50},
		ScaleRule{Levels: upper, Keywords: []string{"exploitation", "texte"}, Max: 50},
		ScaleRule{Levels: upper, Keywords: []string{"orthographe"}, Max: 20},
	)
}

func contains(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}
