// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package filters

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/apex/log"
	"github.com/dustin/go-humanize"
)

// DelimEnvVar overrides the "," between filter expressions.
const DelimEnvVar = "NCDIFF_FILTER_DELIM"

// filterRegex splits an expression into key, optional operator (with optional
// negation) and target. Operators are one of = ^ ~ < > @ or /, optionally
// prefixed with '!'. Examples: "status=created", "name!^.", "delta>1MiB".
var filterRegex = regexp.MustCompile(`^([^!?=^~<>@/]*)(!?[=^~<>@/])?(.*)$`)

// Filter is a single parsed --filter expression.
type Filter struct {
	Key     string `yaml:"key" json:"Key"`
	Negate  bool   `yaml:"negate" json:"Negate"`
	Operand string `yaml:"operand" json:"Operand"`
	Value   string `yaml:"value" json:"Value"`
}

// Candidate is anything filters can be checked against. Field returns the
// value under key and whether the candidate has it at all. Values are strings
// or int64s.
type Candidate interface {
	Field(key string) (any, bool)
}

// BuildFilters parses a filter specification string into a slice of Filter.
// Malformed expressions are logged and skipped.
func BuildFilters(spec string) []Filter {
	//nolint:prealloc
	var filters []Filter

	if spec == "" {
		return filters
	}

	// Default delimiter is ",", allow an override for situations where the value
	// contains commas.
	delim := ","
	if d, ok := os.LookupEnv(DelimEnvVar); ok && d != "" {
		delim = d
	}

	for _, filterSpec := range strings.Split(spec, delim) {
		filterSpec = strings.TrimSpace(filterSpec)
		if filterSpec == "" {
			continue
		}

		parts := filterRegex.FindStringSubmatch(filterSpec)
		if parts == nil {
			log.Error("invalid filter: " + filterSpec)
			continue
		}

		key := strings.TrimSpace(parts[1])
		operand := parts[2]
		if key == "" {
			log.Error("invalid filter: empty key in " + filterSpec)
			continue
		}
		if operand == "" {
			log.Error("invalid filter: no operator in " + filterSpec)
			continue
		}

		negate := strings.HasPrefix(operand, "!")
		filters = append(filters, Filter{
			Key:     key,
			Negate:  negate,
			Operand: strings.TrimPrefix(operand, "!"),
			Value:   parts[3],
		})
	}

	return filters
}

// Match reports whether c passes every filter. A filter whose key c does not
// know is reported and ignored. A known key with no value (e.g. the old size
// of a created entry) fails the filter.
func Match(c Candidate, filters []Filter) bool {
	for _, filter := range filters {
		value, known := c.Field(filter.Key)
		if !known {
			msg := fmt.Sprintf("filter key not found: %s", filter.Key)
			log.Error(msg)
			continue
		}
		if value == nil {
			return false
		}

		var result bool
		switch v := value.(type) {
		case string:
			result = checkStringOperand(v, filter)
		case int64:
			result = checkNumericOperand(v, filter)
		case int:
			result = checkNumericOperand(int64(v), filter)
		default:
			result = checkStringOperand(fmt.Sprintf("%v", v), filter)
		}
		if !result {
			return false
		}
	}

	return true
}

// checkNumericOperand compares a size-like value against the filter value.
// The target may carry a unit ("1MiB", "-10k"). Supported operands are =, >
// and <, each negatable.
func checkNumericOperand(value int64, filter Filter) bool {
	tgt, err := parseSize(filter.Value)
	if err != nil {
		log.Error("invalid numeric value: " + filter.Value)
		return false
	}

	switch filter.Operand {
	case "=":
		return (value == tgt) == !filter.Negate
	case ">":
		return (value > tgt) == !filter.Negate
	case "<":
		return (value < tgt) == !filter.Negate
	default:
		log.Error("unsupported numeric operand: " + filter.Operand)
		return false
	}
}

// parseSize accepts plain integers and humanized byte sizes, either signed.
func parseSize(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}

	sign := int64(1)
	switch {
	case strings.HasPrefix(s, "-"):
		sign, s = -1, s[1:]
	case strings.HasPrefix(s, "+"):
		s = s[1:]
	}
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, err
	}
	return sign * int64(n), nil
}

// checkStringOperand evaluates a string comparison style filter against the
// provided value using the operand semantics.
func checkStringOperand(value string, filter Filter) bool {
	switch filter.Operand {
	case "=":
		return value == filter.Value == !filter.Negate
	case "~":
		return strings.EqualFold(value, filter.Value) == !filter.Negate
	case "^":
		return strings.HasPrefix(value, filter.Value) == !filter.Negate
	case ">":
		return value > filter.Value == !filter.Negate
	case "<":
		return value < filter.Value == !filter.Negate
	case "@":
		return strings.Contains(value, filter.Value) == !filter.Negate
	case "/":
		matched, err := regexp.MatchString(filter.Value, value)
		if err != nil {
			log.Error("invalid regex: " + filter.Value)
			return false
		}
		return matched == !filter.Negate
	default:
		log.Error("unsupported filtering operand: " + filter.Operand)
		return false
	}
}
