package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/alecthomas/kong"
	"github.com/pkg/errors"
)

// TOMLLoader resolves flags from a TOML document. Keys use the flag name with
// dashes or underscores. Command flags can also go in a table named after the
// command, which takes precedence over top level keys.
func TOMLLoader(r io.Reader) (kong.Resolver, error) {
	values := map[string]any{}
	_, err := toml.NewDecoder(r).Decode(&values)
	if err != nil {
		return nil, errors.Wrap(err, "error parsing configuration")
	}

	var f kong.ResolverFunc = func(context *kong.Context, parent *kong.Path, flag *kong.Flag) (any, error) {
		if node := parent.Node(); node != nil && node.Type == kong.CommandNode {
			if table, ok := values[node.Name].(map[string]any); ok {
				if raw, ok := lookup(table, flag.Name); ok {
					return toFlagValue(raw), nil
				}
			}
		}

		if raw, ok := lookup(values, flag.Name); ok {
			return toFlagValue(raw), nil
		}

		return nil, nil
	}

	return f, nil
}

func lookup(values map[string]any, name string) (any, bool) {
	for _, key := range []string{name, strings.ReplaceAll(name, "-", "_")} {
		raw, ok := values[key]
		if ok {
			if _, isTable := raw.(map[string]any); !isTable {
				return raw, true
			}
		}
	}

	return nil, false
}

func toFlagValue(raw any) string {
	switch v := raw.(type) {
	case string:
		return v
	case time.Time:
		return v.Format(time.RFC3339)
	case []any:
		parts := make([]string, len(v))
		for i, p := range v {
			parts[i] = toFlagValue(p)
		}
		return strings.Join(parts, ",")
	default:
		return fmt.Sprint(v)
	}
}
