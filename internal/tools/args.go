package tools

import (
	"fmt"
	"strconv"
	"strings"
)

// StringArg returns the trimmed string argument key, or "" when absent.
func StringArg(args map[string]any, key string) (string, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return "", nil
	}
	s, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("%s must be a string", key)
	}
	return strings.TrimSpace(s), nil
}

// RequiredStringArg is StringArg for arguments that must be non-empty.
func RequiredStringArg(args map[string]any, key string) (string, error) {
	s, err := StringArg(args, key)
	if err != nil {
		return "", err
	}
	if s == "" {
		return "", fmt.Errorf("%s is required", key)
	}
	return s, nil
}

// StringSliceArg reads an array of strings. A single comma separated
// string is accepted as well. Empty entries are dropped.
func StringSliceArg(args map[string]any, key string) ([]string, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return nil, nil
	}

	var items []string
	switch v := raw.(type) {
	case []any:
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%s must be an array of strings", key)
			}
			items = append(items, s)
		}
	case []string:
		items = v
	case string:
		items = strings.Split(v, ",")
	default:
		return nil, fmt.Errorf("%s must be an array of strings", key)
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out, nil
}

// BoolArg reads a boolean argument, accepting "true"/"false" strings from
// clients that stringify parameters. Absent means def.
func BoolArg(args map[string]any, key string, def bool) (bool, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return def, nil
	}
	switch v := raw.(type) {
	case bool:
		return v, nil
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return false, fmt.Errorf("%s must be a boolean", key)
		}
		return b, nil
	default:
		return false, fmt.Errorf("%s must be a boolean", key)
	}
}
