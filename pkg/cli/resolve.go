package cli

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/neoul/jcmd/pkg/cmdtree"
)

// resolveArgs merges supplied values with declared defaults and validates
// range and enum constraints. Multi-valued arguments are validated
// element-wise. On success every declared argument is present in the result;
// supplied keys with no declaration pass through untouched.
func resolveArgs(supplied Args, specs []*cmdtree.ArgSpec) (Args, error) {
	out := make(Args, len(supplied)+len(specs))
	for k, v := range supplied {
		out[k] = v
	}
	for _, spec := range specs {
		v, ok := out[spec.Name]
		if !ok {
			if spec.Default == nil {
				return nil, &MissingArgumentError{Name: spec.Name}
			}
			out[spec.Name] = Value(spec.Default)
			continue
		}
		if spec.Range != "" {
			if err := checkRange(spec, v); err != nil {
				return nil, err
			}
		}
		if len(spec.Enum) > 0 {
			for _, item := range v {
				if !slices.Contains(spec.Enum, item) {
					return nil, &EnumError{Name: spec.Name, Value: item}
				}
			}
		}
	}
	return out, nil
}

func checkRange(spec *cmdtree.ArgSpec, v Value) error {
	lo, hi, err := parseRange(spec.Range)
	if err != nil {
		return &RangeError{Name: spec.Name, Value: v.Text(), Range: spec.Range}
	}
	for _, item := range v {
		num, err := strconv.Atoi(item)
		if err != nil || num < lo || num > hi {
			return &RangeError{Name: spec.Name, Value: item, Range: spec.Range}
		}
	}
	return nil
}

// parseRange parses a "<lo-hi>" bound. The separator is the last '-', so a
// negative lower bound ("<-5-5>") parses; a negative upper bound does not.
func parseRange(s string) (lo, hi int, err error) {
	inner := strings.TrimSuffix(strings.TrimPrefix(s, "<"), ">")
	idx := strings.LastIndexByte(inner, '-')
	if idx < 1 {
		return 0, 0, fmt.Errorf("invalid range %q", s)
	}
	lo, err = strconv.Atoi(inner[:idx])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid range %q", s)
	}
	hi, err = strconv.Atoi(inner[idx+1:])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid range %q", s)
	}
	if lo > hi {
		return 0, 0, fmt.Errorf("invalid range %q", s)
	}
	return lo, hi, nil
}
