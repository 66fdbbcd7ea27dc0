package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alexanderramin/riff/internal/domain"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrAmbiguous = errors.New("ambiguous")
)

// resolve finds the item named by input, trying in order: exact id, exact
// name (case-insensitive), then a unique id prefix.
func resolve[T any](items []T, id, name func(T) string, kind, input string) (T, error) {
	var zero T
	input = strings.TrimSpace(input)
	if input == "" {
		return zero, fmt.Errorf("%s is required", kind)
	}

	for _, it := range items {
		if id(it) == input {
			return it, nil
		}
	}

	var byName []T
	for _, it := range items {
		if strings.EqualFold(name(it), input) {
			byName = append(byName, it)
		}
	}
	switch len(byName) {
	case 1:
		return byName[0], nil
	case 0:
	default:
		return zero, fmt.Errorf("%s name %q is %w (%d matches), use an id", kind, input, ErrAmbiguous, len(byName))
	}

	var byPrefix []T
	for _, it := range items {
		if strings.HasPrefix(id(it), input) {
			byPrefix = append(byPrefix, it)
		}
	}
	switch len(byPrefix) {
	case 0:
		return zero, fmt.Errorf("%s %w: %q", kind, ErrNotFound, input)
	case 1:
		return byPrefix[0], nil
	default:
		return zero, fmt.Errorf("%s id prefix %q is %w (%d matches)", kind, input, ErrAmbiguous, len(byPrefix))
	}
}

func resolveExercise(data domain.AppData, input string) (domain.Exercise, error) {
	return resolve(data.Exercises,
		func(e domain.Exercise) string { return e.ID },
		func(e domain.Exercise) string { return e.Name },
		"exercise", input)
}

func resolveRoutine(data domain.AppData, input string) (domain.Routine, error) {
	return resolve(data.Routines,
		func(r domain.Routine) string { return r.ID },
		func(r domain.Routine) string { return r.Name },
		"routine", input)
}
