// Package subject provides a named-attribute target for potions.
package subject

import (
	"maps"
	"sort"
)

// Subject is a target whose state is a set of named numeric attributes.
type Subject struct {
	id    string
	attrs map[string]float64
}

// New returns a subject with a copy of attrs.
func New(id string, attrs map[string]float64) *Subject {
	copied := make(map[string]float64, len(attrs))
	maps.Copy(copied, attrs)
	return &Subject{id: id, attrs: copied}
}

// TargetID returns the subject id.
func (s *Subject) TargetID() string {
	return s.id
}

// Get returns the named attribute and whether it is set.
func (s *Subject) Get(name string) (float64, bool) {
	value, ok := s.attrs[name]
	return value, ok
}

// Value returns the named attribute, zero when unset.
func (s *Subject) Value(name string) float64 {
	return s.attrs[name]
}

// Set overwrites the named attribute.
func (s *Subject) Set(name string, value float64) {
	s.attrs[name] = value
}

// Add increments the named attribute by delta, starting from zero.
func (s *Subject) Add(name string, delta float64) {
	s.attrs[name] += delta
}

// Multiply scales the named attribute by factor.
func (s *Subject) Multiply(name string, factor float64) {
	s.attrs[name] *= factor
}

// Attributes returns a copy of every attribute.
func (s *Subject) Attributes() map[string]float64 {
	return maps.Clone(s.attrs)
}

// Names returns the attribute names in lexical order.
func (s *Subject) Names() []string {
	names := make([]string, 0, len(s.attrs))
	for name := range s.attrs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// State is the captured attribute set of a subject.
type State map[string]float64

// Snapshot returns an independent copy of every attribute.
func (s *Subject) Snapshot() any {
	return State(maps.Clone(s.attrs))
}

// Restore replaces every attribute with a copy of snapshot. Attributes not
// present in the snapshot are removed. Snapshots of another type are
// ignored.
func (s *Subject) Restore(snapshot any) {
	state, ok := snapshot.(State)
	if !ok {
		return
	}
	restored := make(map[string]float64, len(state))
	maps.Copy(restored, state)
	s.attrs = restored
}
