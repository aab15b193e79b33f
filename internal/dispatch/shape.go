package dispatch

import (
	"fmt"
	"strings"

	"github.com/voco-sh/voco/internal/coerce"
)

// Kind types one positional argument slot: its coercion tag, and whether the
// slot carries an ordered collection of that tag.
type Kind struct {
	Tag        coerce.Tag
	Collection bool
}

func (k Kind) String() string {
	if k.Collection {
		return "[]" + string(k.Tag)
	}
	return string(k.Tag)
}

// ParseKind reads a vocabulary param string such as "float64" or "[]string".
func ParseKind(s string) (Kind, error) {
	s = strings.TrimSpace(s)
	collection := false
	if strings.HasPrefix(s, "[]") {
		collection = true
		s = s[2:]
	}
	tag, err := coerce.ParseTag(s)
	if err != nil {
		return Kind{}, err
	}
	return Kind{Tag: tag, Collection: collection}, nil
}

// Shape is the ordered type list of one accepted positional call form.
type Shape []Kind

// ParseShape reads a vocabulary param list into a call shape.
func ParseShape(params []string) (Shape, error) {
	if len(params) == 0 {
		return nil, nil
	}
	shape := make(Shape, 0, len(params))
	for i, param := range params {
		kind, err := ParseKind(param)
		if err != nil {
			return nil, fmt.Errorf("param %d: %w", i, err)
		}
		shape = append(shape, kind)
	}
	return shape, nil
}

// Equal reports exact positional type equality.
func (s Shape) Equal(other Shape) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

func (s Shape) String() string {
	parts := make([]string, 0, len(s))
	for _, kind := range s {
		parts = append(parts, kind.String())
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
