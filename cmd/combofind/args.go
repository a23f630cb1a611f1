package main

import (
	"fmt"
	"slices"
	"strings"
)

type parsedArgs struct {
	pos    []string
	values map[string]string
	bools  map[string]bool
}

// parseArgs splits args into positionals and flags. Value flags accept
// "--flag value" and "--flag=value"; flags may appear anywhere.
func parseArgs(args, valueFlags, boolFlags []string) (parsedArgs, error) {
	a := parsedArgs{
		values: make(map[string]string),
		bools:  make(map[string]bool),
	}

	for i := 0; i < len(args); i++ {
		arg := args[i]
		if !strings.HasPrefix(arg, "--") {
			a.pos = append(a.pos, arg)
			continue
		}

		name, value, hasValue := strings.Cut(arg, "=")
		switch {
		case slices.Contains(valueFlags, name):
			if !hasValue {
				if i+1 >= len(args) {
					return a, fmt.Errorf("%s needs a value", name)
				}
				i++
				value = args[i]
			}
			a.values[name] = value

		case slices.Contains(boolFlags, name):
			if hasValue {
				return a, fmt.Errorf("%s takes no value", name)
			}
			a.bools[name] = true

		default:
			return a, fmt.Errorf("unknown flag %s", name)
		}
	}
	return a, nil
}
