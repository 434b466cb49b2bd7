package content

import (
	"errors"
	"fmt"
	"strings"
)

var ErrMalformedTypeTag = errors.New("malformed content type tag")

// Ref is a polymorphic reference to a content object living in an external
// store: a type tag in "app.model" form plus the object's numeric id.
type Ref struct {
	Type     string `json:"type"`
	ObjectID uint64 `json:"object_id"`
}

func (r Ref) String() string {
	return fmt.Sprintf("%s #%d", r.Type, r.ObjectID)
}

// ParseTypeTag splits an "app.model" tag into its two halves. Both halves
// must be non-empty and consist of lowercase letters, digits or underscores.
func ParseTypeTag(tag string) (app, model string, err error) {
	app, model, ok := strings.Cut(tag, ".")
	if !ok || !validTagPart(app) || !validTagPart(model) {
		return "", "", fmt.Errorf("%w: %q", ErrMalformedTypeTag, tag)
	}
	return app, model, nil
}

func validTagPart(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= '0' && r <= '9':
		case r == '_':
		default:
			return false
		}
	}
	return true
}
