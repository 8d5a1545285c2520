// Package shellparse turns host command templates into argument vectors.
//
// Word splitting follows POSIX shell quoting via github.com/google/shlex.
// Placeholders such as {path} are substituted after splitting, so a value
// containing spaces always stays a single argument.
package shellparse

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/shlex"
)

var (
	// ErrMalformed is returned for unclosed quotes or a trailing escape
	ErrMalformed = errors.New("malformed command string")

	// ErrEmptyCommand is returned when a template has no words
	ErrEmptyCommand = errors.New("empty command")
)

// Split parses a command string into arguments, handling quotes and escapes.
//
//	Split(`cmd "arg with spaces"`) => ["cmd", "arg with spaces"]
//	Split(`cmd arg\ two`)          => ["cmd", "arg two"]
func Split(input string) ([]string, error) {
	args, err := shlex.Split(input)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	if args == nil {
		args = []string{}
	}
	return args, nil
}

// Expand splits template and replaces every {name} placeholder in each word
// with vars[name]. Unknown placeholders are left untouched.
func Expand(template string, vars map[string]string) ([]string, error) {
	args, err := Split(template)
	if err != nil {
		return nil, err
	}
	if len(args) == 0 {
		return nil, ErrEmptyCommand
	}

	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	sort.Strings(names)

	pairs := make([]string, 0, 2*len(names))
	for _, name := range names {
		pairs = append(pairs, "{"+name+"}", vars[name])
	}
	r := strings.NewReplacer(pairs...)

	for i, arg := range args {
		args[i] = r.Replace(arg)
	}
	return args, nil
}
