package chat

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

//go:embed rules.yaml
var defaultRules []byte

// Rule maps any of its keywords to a canned answer.
type Rule struct {
	Topic    string   `yaml:"topic"`
	Keywords []string `yaml:"keywords"`
	Answer   string   `yaml:"answer"`
}

// RuleSet is an ordered list of rules plus the answer used when none match.
type RuleSet struct {
	Rules   []Rule `yaml:"rules"`
	Default string `yaml:"default"`
}

// ParseRules decodes and validates a YAML rule set.
func ParseRules(data []byte) (*RuleSet, error) {
	var rs RuleSet
	if err := yaml.Unmarshal(data, &rs); err != nil {
		return nil, fmt.Errorf("parse chat rules: %w", err)
	}
	if strings.TrimSpace(rs.Default) == "" {
		return nil, errors.New("chat rules: default answer is required")
	}
	for i := range rs.Rules {
		r := &rs.Rules[i]
		if strings.TrimSpace(r.Answer) == "" {
			return nil, fmt.Errorf("chat rules: rule %d (%s) has no answer", i+1, r.Topic)
		}
		kept := r.Keywords[:0]
		for _, k := range r.Keywords {
			if k = normalizeQuery(k); k != "" {
				kept = append(kept, k)
			}
		}
		if len(kept) == 0 {
			return nil, fmt.Errorf("chat rules: rule %d (%s) has no keywords", i+1, r.Topic)
		}
		r.Keywords = kept
	}
	return &rs, nil
}

// DefaultRules returns the built-in rule set.
func DefaultRules() *RuleSet {
	rs, err := ParseRules(defaultRules)
	if err != nil {
		panic(err)
	}
	return rs
}

// LoadRules reads a rule set from disk. An empty path gives the built-in rules.
func LoadRules(path string) (*RuleSet, error) {
	if path == "" {
		return DefaultRules(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read chat rules: %w", err)
	}
	return ParseRules(data)
}

// KeywordResponder answers from a RuleSet without any network access.
type KeywordResponder struct {
	rules *RuleSet
}

// NewKeywordResponder creates a local responder. A nil rule set uses the
// built-in rules.
func NewKeywordResponder(rules *RuleSet) *KeywordResponder {
	if rules == nil {
		rules = DefaultRules()
	}
	return &KeywordResponder{rules: rules}
}

// Name implements Responder.
func (k *KeywordResponder) Name() string { return NameLocal }

// Respond implements Responder. It never fails.
func (k *KeywordResponder) Respond(_ context.Context, query string) (string, error) {
	return k.Match(query), nil
}

// Match returns the answer of the first rule with a keyword in query.
func (k *KeywordResponder) Match(query string) string {
	q := normalizeQuery(query)
	for _, r := range k.rules.Rules {
		for _, kw := range r.Keywords {
			if strings.Contains(q, kw) {
				return r.Answer
			}
		}
	}
	return k.rules.Default
}

// normalizeQuery composes diacritics so precomposed and decomposed input
// compare equal, then lowercases.
func normalizeQuery(s string) string {
	return strings.ToLower(strings.TrimSpace(norm.NFC.String(s)))
}
