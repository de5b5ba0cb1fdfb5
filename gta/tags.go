package gta

import (
	"fmt"
	"strings"
)

// Tag is one string-keyed metadata attribute.
type Tag struct {
	Name  string
	Value string
}

// TagList is an ordered, open set of tags attached to an array, a
// dimension, or a component. The zero value is an empty list.
type TagList struct {
	tags []Tag
}

// Len returns the number of tags.
func (l *TagList) Len() int {
	return len(l.tags)
}

// At returns the tag at index i.
func (l *TagList) At(i int) Tag {
	return l.tags[i]
}

// Get returns the value of the named tag.
func (l *TagList) Get(name string) (string, bool) {
	for _, t := range l.tags {
		if t.Name == name {
			return t.Value, true
		}
	}
	return "", false
}

// Set adds or replaces the named tag. Tag names must be non-empty and
// must not contain '=' or control characters.
func (l *TagList) Set(name, value string) error {
	if err := checkTagName(name); err != nil {
		return err
	}
	for i, t := range l.tags {
		if t.Name == name {
			l.tags[i].Value = value
			return nil
		}
	}
	l.tags = append(l.tags, Tag{Name: name, Value: value})
	return nil
}

// Unset removes the named tag and reports whether it was present.
func (l *TagList) Unset(name string) bool {
	for i, t := range l.tags {
		if t.Name == name {
			l.tags = append(l.tags[:i], l.tags[i+1:]...)
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the list.
func (l *TagList) Clone() TagList {
	if len(l.tags) == 0 {
		return TagList{}
	}
	c := make([]Tag, len(l.tags))
	copy(c, l.tags)
	return TagList{tags: c}
}

func checkTagName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidTagName)
	}
	if strings.ContainsAny(name, "=") {
		return fmt.Errorf("%w: %q contains '='", ErrInvalidTagName, name)
	}
	for _, r := range name {
		if r < 0x20 || r == 0x7f {
			return fmt.Errorf("%w: %q contains control characters", ErrInvalidTagName, name)
		}
	}
	return nil
}
