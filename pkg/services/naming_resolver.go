package services

import (
	"fmt"
	"strconv"

	"github.com/jinzhu/inflection"

	"github.com/ekaya-inc/ekaya-modeler/pkg/apperrors"
)

// NamingResolver picks collision-free names for synthesized navigation columns.
type NamingResolver interface {
	// Resolve returns baseName (pluralized when isCollection) if it is not among
	// existingNames, otherwise the first free name with a numeric suffix starting at 2.
	Resolve(baseName string, isCollection bool, existingNames []string) (string, error)
}

type namingResolver struct {
	inflect bool
	// maxSuffix caps the suffix search; 0 means len(existingNames)+2, which always
	// leaves at least one free candidate.
	maxSuffix int
}

// NewNamingResolver creates a NamingResolver. With inflect set, collections are named
// with the English plural of the base name ("order" -> "orders", "orders" stays
// "orders"); otherwise a literal "s" is appended.
func NewNamingResolver(inflect bool) NamingResolver {
	return &namingResolver{inflect: inflect}
}

func (r *namingResolver) Resolve(baseName string, isCollection bool, existingNames []string) (string, error) {
	candidate := baseName
	if isCollection {
		candidate = r.plural(baseName)
	}

	taken := make(map[string]struct{}, len(existingNames))
	for _, name := range existingNames {
		taken[name] = struct{}{}
	}

	if _, ok := taken[candidate]; !ok {
		return candidate, nil
	}

	limit := r.maxSuffix
	if limit == 0 {
		limit = len(existingNames) + 2
	}
	for i := 2; i <= limit; i++ {
		name := candidate + strconv.Itoa(i)
		if _, ok := taken[name]; !ok {
			return name, nil
		}
	}

	return "", fmt.Errorf("resolve name for %q after %d attempts: %w", candidate, limit-1, apperrors.ErrNamingExhaustion)
}

func (r *namingResolver) plural(name string) string {
	if r.inflect {
		return inflection.Plural(name)
	}
	return name + "s"
}
