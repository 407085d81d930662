// Package rules has the classification policy shared by every check.
package rules

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/huangsam/fm301check/schema"
)

// Strategy selects how a section's items are looked up and classified.
type Strategy int

// All check strategies.
const (
	GlobalStrategy Strategy = iota
	FlatGroupStrategy
	PathGroupStrategy
	DatasetStrategy
)

var strategyNames = [...]string{"global", "flat-group", "path-group", "dataset"}

// String implements fmt.Stringer.
func (s Strategy) String() string {
	if s < 0 || int(s) >= len(strategyNames) {
		return "unknown"
	}
	return strategyNames[s]
}

// ResolvesPaths reports whether item names are slash-separated paths that may
// carry the sweep placeholder.
func (s Strategy) ResolvesPaths() bool {
	return s == PathGroupStrategy || s == DatasetStrategy
}

// Check holds everything needed to classify one item or attribute.
type Check struct {
	Applicability schema.Applicability
	Available     bool
	Expected      schema.TypeTag
	ActualType    schema.DataType
	Actual        schema.Value
	Allowed       schema.AllowedValues // nil means no value constraint
	Regex         bool                 // try allowed entries as patterns after literals
	Patterns      *Patterns            // compiled pattern memo; nil compiles per call
}

// Classify applies the decision table:
//
//	not available, mandatory            -> fail_mandatory
//	not available, optional             -> not_used
//	type mismatch                       -> fail_mandatory or fail_optional
//	constrained value mismatch          -> fail_mandatory or fail_optional
//	otherwise                           -> pass
func Classify(c Check) schema.Outcome {
	mandatory := c.Applicability == schema.Mandatory
	if !c.Available {
		if mandatory {
			return schema.FailMandatory
		}
		return schema.NotUsed
	}
	if !TypeMatches(c.Expected, c.ActualType) {
		return failure(mandatory)
	}
	if len(c.Allowed) > 0 && !c.Patterns.ValueMatches(c.Actual, c.Allowed, c.Regex) {
		return failure(mandatory)
	}
	return schema.Pass
}

// ClassifyAttribute classifies a sub-attribute row. Dataset attributes report
// optional failures as not_used.
func (s Strategy) ClassifyAttribute(c Check) schema.Outcome {
	outcome := Classify(c)
	if s == DatasetStrategy && outcome == schema.FailOptional {
		return schema.NotUsed
	}
	return outcome
}

func failure(mandatory bool) schema.Outcome {
	if mandatory {
		return schema.FailMandatory
	}
	return schema.FailOptional
}

// TypeMatches reports whether the runtime type satisfies the expected tag.
func TypeMatches(expected schema.TypeTag, actual schema.DataType) bool {
	return expected.Matches(actual)
}

// ValueMatches reports whether actual equals one of the allowed entries.
// Numbers compare by value at the actual value's precision. With regex set,
// each entry is also tried as a pattern anchored at the start of the value.
// An absent value never matches.
func ValueMatches(actual schema.Value, allowed schema.AllowedValues, regex bool) bool {
	var p *Patterns
	return p.ValueMatches(actual, allowed, regex)
}

// Patterns memoizes compiled allowed-value patterns, invalid ones included.
// The zero value is ready to use and safe for concurrent use.
type Patterns struct {
	mu       sync.Mutex
	compiled map[string]*regexp.Regexp
}

// ValueMatches is the package ValueMatches using p for pattern compilation.
func (p *Patterns) ValueMatches(actual schema.Value, allowed schema.AllowedValues, regex bool) bool {
	if actual.IsNone() {
		return false
	}
	text := actual.String()
	for _, entry := range allowed {
		if entry == text || numericEqual(actual, entry) {
			return true
		}
	}
	if !regex {
		return false
	}
	for _, entry := range allowed {
		if re := p.compile(entry); re != nil && re.MatchString(text) {
			return true
		}
	}
	return false
}

// compile anchors the pattern at the start only. It returns nil for an
// invalid pattern.
func (p *Patterns) compile(pattern string) *regexp.Regexp {
	if p == nil {
		re, _ := regexp.Compile(anchored(pattern))
		return re
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if re, ok := p.compiled[pattern]; ok {
		return re
	}
	if p.compiled == nil {
		p.compiled = make(map[string]*regexp.Regexp)
	}
	re, err := regexp.Compile(anchored(pattern))
	if err != nil {
		re = nil
	}
	p.compiled[pattern] = re
	return re
}

// Len returns the number of memoized patterns.
func (p *Patterns) Len() int {
	if p == nil {
		return 0
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.compiled)
}

func anchored(pattern string) string { return `^(?:` + pattern + `)` }

func numericEqual(actual schema.Value, entry string) bool {
	a, ok := actual.Float()
	if !ok {
		return false
	}
	b, err := strconv.ParseFloat(strings.TrimSpace(entry), 64)
	if err != nil || math.IsNaN(a) || math.IsNaN(b) {
		return false
	}
	if actual.Type == schema.Float32Type {
		return float32(a) == float32(b)
	}
	return a == b
}
