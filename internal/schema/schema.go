// Package schema defines the declarative rule set a DY document is
// validated against.
//
// A Schema maps key names to KeyRules. It is immutable after construction
// and safe to share across concurrent document checks.
package schema

import (
	"fmt"
	"slices"
)

// RootKey is the marker used in a rule's allowed-parent set for keys that
// may appear at the top level of a document.
const RootKey = "root"

// ShapeKind classifies the value constraint of a key.
type ShapeKind int

const (
	// ShapeText accepts any value text, including none.
	ShapeText ShapeKind = iota
	// ShapeEnum restricts the value to a fixed set of strings.
	ShapeEnum
	// ShapeNone forbids a value: the key must stand alone on its line.
	ShapeNone
)

// String returns the shape kind name as used in schema files.
func (k ShapeKind) String() string {
	switch k {
	case ShapeText:
		return "text"
	case ShapeEnum:
		return "enum"
	case ShapeNone:
		return "none"
	default:
		return fmt.Sprintf("ShapeKind(%d)", int(k))
	}
}

// ValueShape is the value constraint attached to a key rule.
type ValueShape struct {
	Kind ShapeKind
	// Enum lists the accepted values when Kind is ShapeEnum.
	Enum []string
}

// KeyRule declares how one key may be used.
type KeyRule struct {
	// Key is the identifier starting the line, like "course" or "exit".
	Key string
	// Desc documents the key for spec documentation and editor surfaces.
	Desc string
	// Parents lists the keys this one may appear under; RootKey marks the
	// document root. Empty is invalid.
	Parents []string
	// Container reports whether this key opens a nesting scope for
	// subsequent keys.
	Container bool
	// MinCount and MaxCount bound occurrences of the key within one parent
	// scope. MaxCount 0 means unbounded.
	MinCount int
	MaxCount int
	// RequiredChildren lists child keys that must be present among the
	// direct children of every node with this key.
	RequiredChildren []string
	// Shape constrains the value text.
	Shape ValueShape
	// ValueRequired reports whether the key must carry a non-empty value.
	ValueRequired bool
}

// AllowsParent reports whether the rule accepts the given parent key.
func (r KeyRule) AllowsParent(parentKey string) bool {
	return slices.Contains(r.Parents, parentKey)
}

// Schema is an immutable, internally consistent set of key rules.
type Schema struct {
	rules map[string]KeyRule
	order []string
}

// New validates the rule set for internal consistency and returns the
// resulting schema. Rules keep their declaration order for deterministic
// iteration.
func New(rules []KeyRule) (*Schema, error) {
	if len(rules) == 0 {
		return nil, fmt.Errorf("schema: no key rules")
	}

	byKey := make(map[string]KeyRule, len(rules))
	order := make([]string, 0, len(rules))
	for _, r := range rules {
		if r.Key == "" {
			return nil, fmt.Errorf("schema: rule with empty key")
		}
		if r.Key == RootKey {
			return nil, fmt.Errorf("schema: key name %q is reserved", RootKey)
		}
		if _, dup := byKey[r.Key]; dup {
			return nil, fmt.Errorf("schema: duplicated key %q", r.Key)
		}
		byKey[r.Key] = r
		order = append(order, r.Key)
	}

	for _, r := range rules {
		if len(r.Parents) == 0 {
			return nil, fmt.Errorf("schema: key %q has no allowed parents", r.Key)
		}
		for _, parent := range r.Parents {
			if parent == RootKey {
				continue
			}
			parentRule, ok := byKey[parent]
			if !ok {
				return nil, fmt.Errorf("schema: key %q names unknown parent %q", r.Key, parent)
			}
			if !parentRule.Container {
				return nil, fmt.Errorf("schema: key %q names parent %q which is not a container", r.Key, parent)
			}
		}
		if r.MinCount < 0 || r.MaxCount < 0 {
			return nil, fmt.Errorf("schema: key %q has a negative occurrence bound", r.Key)
		}
		if r.MaxCount > 0 && r.MaxCount < r.MinCount {
			return nil, fmt.Errorf("schema: key %q has max %d below min %d", r.Key, r.MaxCount, r.MinCount)
		}
		if r.Shape.Kind == ShapeEnum && len(r.Shape.Enum) == 0 {
			return nil, fmt.Errorf("schema: key %q has an empty enum shape", r.Key)
		}
		if r.Shape.Kind == ShapeNone && r.ValueRequired {
			return nil, fmt.Errorf("schema: key %q requires a value but has shape none", r.Key)
		}
		if len(r.RequiredChildren) > 0 && !r.Container {
			return nil, fmt.Errorf("schema: key %q requires children but is not a container", r.Key)
		}
		for _, child := range r.RequiredChildren {
			childRule, ok := byKey[child]
			if !ok {
				return nil, fmt.Errorf("schema: key %q requires unknown child %q", r.Key, child)
			}
			if !childRule.AllowsParent(r.Key) {
				return nil, fmt.Errorf("schema: key %q requires child %q which does not allow it as parent", r.Key, child)
			}
		}
	}

	return &Schema{rules: byKey, order: order}, nil
}

// MustNew is like New but panics on an invalid rule set. Intended for
// schemas declared as program constants.
func MustNew(rules []KeyRule) *Schema {
	s, err := New(rules)
	if err != nil {
		panic(err)
	}
	return s
}

// RuleFor returns the rule for the given key, if declared.
func (s *Schema) RuleFor(key string) (KeyRule, bool) {
	r, ok := s.rules[key]
	return r, ok
}

// IsValidChild reports whether childKey may appear directly under parentKey.
// Use RootKey as parentKey for the document root.
func (s *Schema) IsValidChild(parentKey, childKey string) bool {
	r, ok := s.rules[childKey]
	if !ok {
		return false
	}
	return r.AllowsParent(parentKey)
}

// Keys returns the declared key names in declaration order.
func (s *Schema) Keys() []string {
	return slices.Clone(s.order)
}
