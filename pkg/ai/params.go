package ai

import (
	"encoding/json"
	"log/slog"
	"math"
	"reflect"
	"slices"
	"sort"
	"strings"
)

// Generation parameter names accepted by the completion endpoint.
const (
	ParamMaxTokens         = "max_tokens"
	ParamTemperature       = "temperature"
	ParamTopP              = "top_p"
	ParamTopK              = "top_k"
	ParamRepetitionPenalty = "repetition_penalty"
	ParamFrequencyPenalty  = "frequency_penalty"
	ParamPresencePenalty   = "presence_penalty"
	ParamStream            = "stream"
	ParamStop              = "stop"
	ParamSeed              = "seed"
)

type paramKind int

const (
	kindInt paramKind = iota
	kindFloat
	kindBool
	kindStop
)

type paramRule struct {
	kind       paramKind
	constraint string
	inRange    func(float64) bool
}

var parameterRules = map[string]paramRule{
	ParamMaxTokens:         {kindInt, "integer between 1 and 32768", between(1, 32768)},
	ParamTemperature:       {kindFloat, "number between 0.0 and 2.0", between(0, 2)},
	ParamTopP:              {kindFloat, "number between 0.0 and 1.0", between(0, 1)},
	ParamTopK:              {kindInt, "integer >= 0", atLeast(0)},
	ParamRepetitionPenalty: {kindFloat, "number > 0.0", func(v float64) bool { return v > 0 }},
	ParamFrequencyPenalty:  {kindFloat, "number between -2.0 and 2.0", between(-2, 2)},
	ParamPresencePenalty:   {kindFloat, "number between -2.0 and 2.0", between(-2, 2)},
	ParamStream:            {kind: kindBool, constraint: "boolean"},
	ParamStop:              {kind: kindStop, constraint: "non-empty string or non-empty list of non-empty strings"},
	ParamSeed:              {kindInt, "integer >= 0", atLeast(0)},
}

func between(lo, hi float64) func(float64) bool {
	return func(v float64) bool { return v >= lo && v <= hi }
}

func atLeast(lo float64) func(float64) bool {
	return func(v float64) bool { return v >= lo }
}

// SupportedParameters returns the whitelisted parameter names, sorted.
func SupportedParameters() []string {
	names := make([]string, 0, len(parameterRules))
	for name := range parameterRules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ValidatedParameters is an immutable set of whitelisted generation
// parameters. Integers are stored as int64, floats as float64 and stop
// sequences as []string. The zero value is an empty set.
type ValidatedParameters struct {
	values map[string]any
}

// ValidateParameters checks candidate against the parameter whitelist and
// returns the normalized set. Keys are checked in sorted order so the
// reported key is deterministic.
func ValidateParameters(candidate map[string]any) (ValidatedParameters, error) {
	keys := make([]string, 0, len(candidate))
	for key := range candidate {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	values := make(map[string]any, len(candidate))
	for _, key := range keys {
		raw := candidate[key]
		rule, ok := parameterRules[key]
		if !ok {
			return ValidatedParameters{}, unsupported(key, raw)
		}
		v, ok := rule.normalize(raw)
		if !ok {
			return ValidatedParameters{}, invalidValue(key, raw, rule.constraint)
		}
		values[key] = v
	}
	return ValidatedParameters{values: values}, nil
}

func (r paramRule) normalize(raw any) (any, bool) {
	switch r.kind {
	case kindInt:
		n, ok := asInt(raw)
		if !ok || !r.inRange(float64(n)) {
			return nil, false
		}
		return n, true
	case kindFloat:
		f, ok := asFloat(raw)
		if !ok || !r.inRange(f) {
			return nil, false
		}
		return f, true
	case kindBool:
		b, ok := raw.(bool)
		return b, ok
	case kindStop:
		return asStop(raw)
	}
	return nil, false
}

func asInt(raw any) (int64, bool) {
	switch v := raw.(type) {
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n, true
		}
		f, err := v.Float64()
		if err != nil {
			return 0, false
		}
		return integralFloat(f)
	case float32:
		return integralFloat(float64(v))
	case float64:
		return integralFloat(v)
	}

	rv := reflect.ValueOf(raw)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return 0, false
		}
		return int64(u), true
	}
	return 0, false
}

func integralFloat(f float64) (int64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

func asFloat(raw any) (float64, bool) {
	var f float64
	switch v := raw.(type) {
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case float32:
		f = float64(v)
	case float64:
		f = v
	default:
		n, ok := asInt(raw)
		if !ok {
			return 0, false
		}
		f = float64(n)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func asStop(raw any) (any, bool) {
	switch v := raw.(type) {
	case string:
		if v == "" {
			return nil, false
		}
		return []string{v}, true
	case []string:
		if len(v) == 0 || slices.Contains(v, "") {
			return nil, false
		}
		return slices.Clone(v), true
	case []any:
		if len(v) == 0 {
			return nil, false
		}
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok || s == "" {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	}
	return nil, false
}

// Len returns the number of parameters in the set.
func (p ValidatedParameters) Len() int {
	return len(p.values)
}

// Keys returns the parameter names present, sorted.
func (p ValidatedParameters) Keys() []string {
	keys := make([]string, 0, len(p.values))
	for key := range p.values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Get returns the normalized value for key. Slices are copied.
func (p ValidatedParameters) Get(key string) (any, bool) {
	v, ok := p.values[key]
	if s, isSlice := v.([]string); isSlice {
		return slices.Clone(s), ok
	}
	return v, ok
}

// Int returns an integer parameter.
func (p ValidatedParameters) Int(key string) (int64, bool) {
	v, ok := p.values[key].(int64)
	return v, ok
}

// Float returns a float parameter.
func (p ValidatedParameters) Float(key string) (float64, bool) {
	v, ok := p.values[key].(float64)
	return v, ok
}

// Bool returns a boolean parameter.
func (p ValidatedParameters) Bool(key string) (bool, bool) {
	v, ok := p.values[key].(bool)
	return v, ok
}

// Stop returns the stop sequences, if set.
func (p ValidatedParameters) Stop() ([]string, bool) {
	v, ok := p.values[ParamStop].([]string)
	return slices.Clone(v), ok
}

// Map returns a copy of the parameters as a plain map.
func (p ValidatedParameters) Map() map[string]any {
	out := make(map[string]any, len(p.values))
	for key := range p.values {
		out[key], _ = p.Get(key)
	}
	return out
}

// recheck verifies every key is still whitelisted.
func (p ValidatedParameters) recheck() error {
	for _, key := range p.Keys() {
		if _, ok := parameterRules[key]; !ok {
			return unsupported(key, p.values[key])
		}
	}
	return nil
}

func (p ValidatedParameters) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(p.values))
	for _, key := range p.Keys() {
		v, _ := p.Get(key)
		if s, ok := v.([]string); ok {
			attrs = append(attrs, slog.String(key, strings.Join(s, "|")))
			continue
		}
		attrs = append(attrs, slog.Any(key, v))
	}
	return slog.GroupValue(attrs...)
}
