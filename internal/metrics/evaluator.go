// Package metrics applies user-configured threshold rules against disk
// attributes and produces alert text for notification dispatch.
package metrics

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/nuclearlighters/diskmon/internal/udisk"
)

// Rule is one threshold check against a named SMART attribute. A rule
// with no condition set never fires; requiring at least one condition
// is a config-time concern, not the evaluator's.
type Rule struct {
	Attribute    string   `yaml:"attribute" json:"attribute"`
	MinThreshold *float64 `yaml:"min_threshold,omitempty" json:"min_threshold,omitempty"`
	MaxThreshold *float64 `yaml:"max_threshold,omitempty" json:"max_threshold,omitempty"`
	EqualMatch   any      `yaml:"equal_match,omitempty" json:"equal_match,omitempty"`
}

// Evaluate applies every rule to one disk and returns the alert lines.
// The disk is never mutated. A missing or null attribute fails no
// threshold. The three checks are independent; all of them may fire for
// the same rule.
func Evaluate(d udisk.Disk, rules []Rule) []string {
	var alerts []string
	for _, rule := range rules {
		raw, ok := d.Attributes[rule.Attribute]
		if !ok {
			continue
		}
		v := udisk.ParseValue(raw)
		if v.IsNull() {
			continue
		}
		num, isNum := v.Number()
		if rule.MaxThreshold != nil && isNum && num >= *rule.MaxThreshold {
			alerts = append(alerts, fmt.Sprintf("%s for %s is >= %s at %s",
				rule.Attribute, d.ID, formatNumber(*rule.MaxThreshold), v))
		}
		if rule.MinThreshold != nil && isNum && num <= *rule.MinThreshold {
			alerts = append(alerts, fmt.Sprintf("%s for %s is <= %s at %s",
				rule.Attribute, d.ID, formatNumber(*rule.MinThreshold), v))
		}
		if rule.EqualMatch != nil && !matches(v, rule.EqualMatch) {
			alerts = append(alerts, fmt.Sprintf("%s for %s IS NOT %v at %s",
				rule.Attribute, d.ID, rule.EqualMatch, v))
		}
	}
	return alerts
}

// Aggregate evaluates every disk and joins all alerts into the single
// message handed to notification dispatch. Each alert is also logged.
func Aggregate(disks []udisk.Disk, rules []Rule) (string, bool) {
	var all []string
	for _, d := range disks {
		for _, alert := range Evaluate(d, rules) {
			log.Error().Str("disk", d.ID).Msg(alert)
			all = append(all, alert)
		}
	}
	if len(all) == 0 {
		return "", false
	}
	return strings.Join(all, "\n"), true
}

// matches compares an attribute value against a rule's expected match,
// coercing numerics so YAML integers compare equal to dump floats.
func matches(v udisk.Value, want any) bool {
	switch w := want.(type) {
	case bool:
		return v.Kind == udisk.KindBool && v.Bool == w
	case int:
		n, ok := v.Number()
		return ok && n == float64(w)
	case int64:
		n, ok := v.Number()
		return ok && n == float64(w)
	case float64:
		n, ok := v.Number()
		return ok && n == w
	case string:
		return v.String() == w
	}
	return false
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
