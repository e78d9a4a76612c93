package udisk

import (
	"strconv"
	"strings"
)

// Kind tags the dynamic type of a dump value.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
)

// Value is a dump attribute interpreted into its natural type. Absent
// and present-but-empty keys both map to KindNull, so callers treat the
// two identically.
type Value struct {
	Kind  Kind
	Str   string
	Int   int64
	Float float64
	Bool  bool
}

// ParseValue interprets a raw dump string. Booleans and numbers are
// recognized literally; everything else stays a string.
func ParseValue(raw string) Value {
	s := strings.TrimSpace(raw)
	switch s {
	case "", "(null)":
		return Value{Kind: KindNull}
	case "true":
		return Value{Kind: KindBool, Bool: true}
	case "false":
		return Value{Kind: KindBool}
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return Value{Kind: KindInt, Int: i}
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return Value{Kind: KindFloat, Float: f}
	}
	return Value{Kind: KindString, Str: s}
}

// IsNull reports whether the value carries no data.
func (v Value) IsNull() bool { return v.Kind == KindNull }

// Number returns the value as a float64 when it is numeric.
func (v Value) Number() (float64, bool) {
	switch v.Kind {
	case KindInt:
		return float64(v.Int), true
	case KindFloat:
		return v.Float, true
	}
	return 0, false
}

// String renders the value the way it appeared in the dump.
func (v Value) String() string {
	switch v.Kind {
	case KindBool:
		return strconv.FormatBool(v.Bool)
	case KindInt:
		return strconv.FormatInt(v.Int, 10)
	case KindFloat:
		return strconv.FormatFloat(v.Float, 'f', -1, 64)
	case KindString:
		return v.Str
	}
	return "null"
}

// AttributeKinds maps every SMART attribute a drive section can carry to
// its expected kind. Threshold rule validation checks against this set.
var AttributeKinds = map[string]Kind{
	"AamEnabled":                        KindBool,
	"AamSupported":                      KindBool,
	"AamVendorRecommendedValue":         KindInt,
	"ApmEnabled":                        KindBool,
	"ApmSupported":                      KindBool,
	"PmEnabled":                         KindBool,
	"PmSupported":                       KindBool,
	"ReadLookaheadEnabled":              KindBool,
	"ReadLookaheadSupported":            KindBool,
	"SecurityEnhancedEraseUnitMinutes":  KindInt,
	"SecurityEraseUnitMinutes":          KindInt,
	"SecurityFrozen":                    KindBool,
	"SmartEnabled":                      KindBool,
	"SmartFailing":                      KindBool,
	"SmartNumAttributesFailedInThePast": KindInt,
	"SmartNumAttributesFailing":         KindInt,
	"SmartNumBadSectors":                KindInt,
	"SmartPowerOnSeconds":               KindInt,
	"SmartSelftestPercentRemaining":     KindInt,
	"SmartSelftestStatus":               KindString,
	"SmartSupported":                    KindBool,
	"SmartTemperature":                  KindFloat,
	"SmartUpdated":                      KindInt,
	"WriteCacheEnabled":                 KindBool,
	"WriteCacheSupported":               KindBool,
}
