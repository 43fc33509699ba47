package domain

import (
	"strconv"
	"strings"
)

// LatestToken is the literal the OpenF1 API accepts in place of a numeric session or meeting key.
const LatestToken = "latest"

// ValueKind identifies how a query value was supplied.
type ValueKind uint8

const (
	ValueUnknown ValueKind = iota
	ValueNumber
	ValueString
	ValueLatest
)

var valueKindNames = map[ValueKind]string{
	ValueUnknown: "unknown",
	ValueNumber:  "number",
	ValueString:  "string",
	ValueLatest:  "latest",
}

func (k ValueKind) String() string {
	if name, ok := valueKindNames[k]; ok {
		return name
	}
	return valueKindNames[ValueUnknown]
}

// Value is a single query parameter value: a number, a string or the "latest" sentinel.
type Value struct {
	kind   ValueKind
	number float64
	text   string
}

func NumberValue(n float64) Value {
	return Value{kind: ValueNumber, number: n}
}

func StringValue(s string) Value {
	return Value{kind: ValueString, text: s}
}

func LatestValue() Value {
	return Value{kind: ValueLatest}
}

func (v Value) Kind() ValueKind {
	return v.kind
}

func (v Value) IsZero() bool {
	return v.kind == ValueUnknown
}

// String renders the value the way it appears in a query string, before escaping.
func (v Value) String() string {
	switch v.kind {
	case ValueNumber:
		return strconv.FormatFloat(v.number, 'f', -1, 64)
	case ValueString:
		return v.text
	case ValueLatest:
		return LatestToken
	default:
		return ""
	}
}

// ParseNumberValue accepts a decimal number or the latest token when allowLatest is set.
func ParseNumberValue(raw string, allowLatest bool) (Value, bool) {
	trimmed := strings.TrimSpace(raw)
	if allowLatest && strings.EqualFold(trimmed, LatestToken) {
		return LatestValue(), true
	}
	n, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return Value{}, false
	}
	return NumberValue(n), true
}

// Params maps parameter names to values for one request.
type Params map[string]Value

// Clone returns an independent copy of the parameter set.
func (p Params) Clone() Params {
	cloned := make(Params, len(p))
	for key, value := range p {
		cloned[key] = value
	}
	return cloned
}

// Merge returns a copy of p with every entry of overrides applied on top.
func (p Params) Merge(overrides Params) Params {
	merged := p.Clone()
	for key, value := range overrides {
		merged[key] = value
	}
	return merged
}
