// Package rules loads the email classification rule table.
//
// The default table is embedded from rules.yaml. Deployments may replace it
// with a file of the same shape; either way every rule is validated and its
// patterns compiled before the classifier sees it.
package rules

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/JonMunkholm/hostledger/internal/core"
	"gopkg.in/yaml.v3"
)

//go:embed rules.yaml
var defaultRulesYAML []byte

type ruleFile struct {
	Rules []ruleSpec `yaml:"rules"`
}

type ruleSpec struct {
	Name       string      `yaml:"name"`
	Collection string      `yaml:"collection"`
	Sender     string      `yaml:"sender"`
	Subject    string      `yaml:"subject"`
	MinMatches int         `yaml:"min_matches"`
	Fields     []fieldSpec `yaml:"fields"`
}

type fieldSpec struct {
	Name    string `yaml:"name"`
	Pattern string `yaml:"pattern"`
}

// Default returns the embedded rule table.
func Default() ([]core.ClassificationRule, error) {
	rules, err := Parse(defaultRulesYAML)
	if err != nil {
		return nil, fmt.Errorf("embedded rules: %w", err)
	}
	return rules, nil
}

// Load reads a rule table from path. An empty path returns the embedded table.
func Load(path string) ([]core.ClassificationRule, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules %q: %w", path, err)
	}
	rules, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("rules %q: %w", path, err)
	}
	return rules, nil
}

// Parse decodes and validates a rule table, keeping declaration order.
// Every problem found is reported, not just the first.
func Parse(data []byte) ([]core.ClassificationRule, error) {
	var f ruleFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse rules: %w", err)
	}
	if len(f.Rules) == 0 {
		return nil, errors.New("no rules defined")
	}

	var errs []string
	seen := make(map[string]bool, len(f.Rules))
	out := make([]core.ClassificationRule, 0, len(f.Rules))

	for i, spec := range f.Rules {
		rule, problems := compile(spec)
		label := spec.Name
		if label == "" {
			label = fmt.Sprintf("#%d", i+1)
		} else if seen[spec.Name] {
			problems = append(problems, "duplicate rule name")
		}
		seen[spec.Name] = true

		for _, p := range problems {
			errs = append(errs, fmt.Sprintf("rule %s: %s", label, p))
		}
		out = append(out, rule)
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("invalid rules:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return out, nil
}

// compile turns one spec into a rule, collecting every problem.
func compile(spec ruleSpec) (core.ClassificationRule, []string) {
	var problems []string
	rule := core.ClassificationRule{
		Name:       spec.Name,
		Collection: core.Collection(spec.Collection),
		MinMatches: spec.MinMatches,
	}

	if spec.Name == "" {
		problems = append(problems, "name is required")
	}
	if !core.KnownCollection(rule.Collection) {
		problems = append(problems, fmt.Sprintf("unknown collection %q", spec.Collection))
	}
	if rule.MinMatches <= 0 {
		rule.MinMatches = core.DefaultMinMatches
	}
	if len(spec.Fields) < rule.MinMatches {
		problems = append(problems, fmt.Sprintf("has %d fields, needs at least min_matches (%d)", len(spec.Fields), rule.MinMatches))
	}

	var err error
	if rule.Sender, err = compilePattern("sender", spec.Sender); err != nil {
		problems = append(problems, err.Error())
	}
	if rule.Subject, err = compilePattern("subject", spec.Subject); err != nil {
		problems = append(problems, err.Error())
	}

	names := make(map[string]bool, len(spec.Fields))
	for _, fs := range spec.Fields {
		if fs.Name == "" {
			problems = append(problems, "field name is required")
			continue
		}
		if names[fs.Name] {
			problems = append(problems, fmt.Sprintf("duplicate field %q", fs.Name))
			continue
		}
		names[fs.Name] = true

		re, err := compilePattern("field "+fs.Name, fs.Pattern)
		if err != nil {
			problems = append(problems, err.Error())
			continue
		}
		rule.Fields = append(rule.Fields, core.FieldPattern{Name: fs.Name, Pattern: re})
	}

	return rule, problems
}

func compilePattern(what, pattern string) (*regexp.Regexp, error) {
	if pattern == "" {
		return nil, fmt.Errorf("%s pattern is required", what)
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("%s pattern: %w", what, err)
	}
	return re, nil
}
