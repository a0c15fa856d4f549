package core

// infer.go classifies spreadsheet columns into semantic types.
//
// The inference is intentionally all-or-nothing: a rule claims a column only
// when every non-empty value satisfies it, so mixed-quality data degrades to
// "text" instead of silently coercing the outliers. Rules are an ordered
// strategy list; adding a type means adding an entry, not touching control
// flow.

import (
	"regexp"
	"strings"
)

// phoneRegex matches an international-looking number: optional leading +,
// first digit 1-9, up to 15 further digits. Deliberately a generic
// approximation with no locale rules; tightening it would change which
// uploads are accepted.
var phoneRegex = regexp.MustCompile(`^\+?[1-9]\d{0,15}$`)

// inferenceRule pairs a type label with its per-value predicate.
type inferenceRule struct {
	label ColumnType
	match func(string) bool
}

// inferenceRules is evaluated in order; the first rule whose predicate holds
// for every non-empty value in the column wins.
var inferenceRules = []inferenceRule{
	{TypeNumber, isNumeric},
	{TypeDate, isDate},
	{TypeEmail, isEmail},
	{TypePhone, isPhone},
}

func isEmail(s string) bool {
	return strings.Contains(s, "@") && strings.Contains(s, ".")
}

func isPhone(s string) bool {
	return phoneRegex.MatchString(s)
}

// InferColumnType classifies all observed values of one column into a single
// semantic type. A column whose values are all blank is "empty"; a single
// value that disqualifies a rule pushes the whole column down the list,
// bottoming out at "text".
func InferColumnType(values []string) ColumnType {
	nonEmpty := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			nonEmpty = append(nonEmpty, v)
		}
	}

	if len(nonEmpty) == 0 {
		return TypeEmpty
	}

	for _, rule := range inferenceRules {
		if allMatch(nonEmpty, rule.match) {
			return rule.label
		}
	}
	return TypeText
}

func allMatch(values []string, match func(string) bool) bool {
	for _, v := range values {
		if !match(v) {
			return false
		}
	}
	return true
}

// InferColumns classifies every column of a dataset, in header order.
func InferColumns(ds *Dataset) []InferredColumn {
	cols := make([]InferredColumn, len(ds.Headers))
	for i, h := range ds.Headers {
		values := make([]string, 0, len(ds.Rows))
		for _, row := range ds.Rows {
			values = append(values, row[h])
		}
		cols[i] = InferredColumn{Name: h, Type: InferColumnType(values)}
	}
	return cols
}
