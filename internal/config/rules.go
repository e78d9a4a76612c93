package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/nuclearlighters/diskmon/internal/metrics"
	"github.com/nuclearlighters/diskmon/internal/udisk"
)

// loadRules reads the threshold rules from the configured YAML file or
// inline JSON value and validates each one. Rule validation lives here
// so the evaluator never has to fail at runtime.
func loadRules(s *Settings) ([]metrics.Rule, error) {
	var rules []metrics.Rule
	switch {
	case s.MetricsFile != "":
		data, err := os.ReadFile(s.MetricsFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read metrics file: %w", err)
		}
		if err := yaml.Unmarshal(data, &rules); err != nil {
			return nil, fmt.Errorf("failed to parse metrics file: %w", err)
		}
	case s.MetricsJSON != "":
		// Accept either a single rule object or a list of them.
		raw := strings.TrimSpace(s.MetricsJSON)
		if strings.HasPrefix(raw, "[") {
			if err := json.Unmarshal([]byte(raw), &rules); err != nil {
				return nil, fmt.Errorf("failed to parse metrics value: %w", err)
			}
		} else {
			var rule metrics.Rule
			if err := json.Unmarshal([]byte(raw), &rule); err != nil {
				return nil, fmt.Errorf("failed to parse metrics value: %w", err)
			}
			rules = []metrics.Rule{rule}
		}
	}

	for i := range rules {
		rules[i].EqualMatch = coerceMatch(rules[i].EqualMatch)
		if err := validateRule(rules[i]); err != nil {
			return nil, fmt.Errorf("invalid metric %d: %w", i, err)
		}
	}
	return rules, nil
}

// coerceMatch turns a string equal_match into its natural type so that
// values arriving through env vars compare like YAML-typed ones.
func coerceMatch(v any) any {
	s, ok := v.(string)
	if !ok {
		return v
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	switch strings.ToLower(s) {
	case "true":
		return true
	case "false":
		return false
	}
	return s
}

func validateRule(r metrics.Rule) error {
	kind, ok := udisk.AttributeKinds[r.Attribute]
	if !ok {
		return fmt.Errorf("unknown attribute %q", r.Attribute)
	}
	if r.MinThreshold == nil && r.MaxThreshold == nil && r.EqualMatch == nil {
		return fmt.Errorf("attribute %q needs at least one of min_threshold, max_threshold or equal_match", r.Attribute)
	}
	numeric := kind == udisk.KindInt || kind == udisk.KindFloat
	if (r.MinThreshold != nil || r.MaxThreshold != nil) && !numeric {
		return fmt.Errorf("attribute %q is not numeric, thresholds do not apply", r.Attribute)
	}
	if r.EqualMatch != nil {
		if err := checkMatchType(kind, r.EqualMatch); err != nil {
			return fmt.Errorf("attribute %q: %w", r.Attribute, err)
		}
	}
	return nil
}

func checkMatchType(kind udisk.Kind, match any) error {
	switch match.(type) {
	case bool:
		if kind != udisk.KindBool {
			return fmt.Errorf("equal_match %v should not be a boolean", match)
		}
	case int, int64, float64:
		if kind != udisk.KindInt && kind != udisk.KindFloat {
			return fmt.Errorf("equal_match %v should not be a number", match)
		}
	case string:
		if kind != udisk.KindString {
			return fmt.Errorf("equal_match %q should not be a string", match)
		}
	default:
		return fmt.Errorf("equal_match %v has unsupported type %T", match, match)
	}
	return nil
}
