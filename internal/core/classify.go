package core

import "regexp"

// DefaultMinMatches is the number of extracted fields a rule needs when it does not set its own.
const DefaultMinMatches = 2

// NoMatchMessage is reported when no rule accepts a message.
const NoMatchMessage = "no matching parsing patterns found"

// ClassificationRule recognizes one kind of email and the fields it carries.
// A nil Sender or Subject matches everything.
type ClassificationRule struct {
	Name       string
	Sender     *regexp.Regexp
	Subject    *regexp.Regexp
	Fields     []FieldPattern
	Collection Collection
	MinMatches int
}

// Applies reports whether the rule's sender and subject gates both pass.
func (r ClassificationRule) Applies(msg RawMessage) bool {
	if r.Sender != nil && !r.Sender.MatchString(msg.From) {
		return false
	}
	if r.Subject != nil && !r.Subject.MatchString(msg.Subject) {
		return false
	}
	return true
}

func (r ClassificationRule) minMatches() int {
	if r.MinMatches <= 0 {
		return DefaultMinMatches
	}
	return r.MinMatches
}

// Classification is the result of a successful classification.
type Classification struct {
	RuleName   string
	Collection Collection
	Fields     ExtractedFields
}

// Classifier matches messages against an ordered rule table.
// It is safe for concurrent use; the table is never modified after construction.
type Classifier struct {
	rules []ClassificationRule
}

// NewClassifier creates a classifier over a copy of rules.
func NewClassifier(rules []ClassificationRule) *Classifier {
	c := &Classifier{rules: make([]ClassificationRule, len(rules))}
	copy(c.rules, rules)
	return c
}

// Classify returns the first rule, in declaration order, whose gates pass and
// whose field patterns extract at least MinMatches fields from the body.
// The second return value is false when no rule accepts the message.
func (c *Classifier) Classify(msg RawMessage) (Classification, bool) {
	var body string
	bodyReady := false

	for _, rule := range c.rules {
		if !rule.Applies(msg) {
			continue
		}
		if !bodyReady {
			body = msg.Body()
			bodyReady = true
		}
		fields := Extract(body, rule.Fields)
		if len(fields) >= rule.minMatches() {
			return Classification{
				RuleName:   rule.Name,
				Collection: rule.Collection,
				Fields:     fields,
			}, true
		}
	}
	return Classification{}, false
}

// Rules returns a copy of the rule table in declaration order.
func (c *Classifier) Rules() []ClassificationRule {
	out := make([]ClassificationRule, len(c.rules))
	copy(out, c.rules)
	return out
}
