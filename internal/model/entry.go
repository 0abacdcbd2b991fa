package model

import (
	"errors"
	"strings"
	"unicode/utf8"
)

var (
	// ErrEmptyName is returned when an entry name is empty after trimming.
	ErrEmptyName = errors.New("entry name is empty")
	// ErrInvalidName is returned for names that are not valid UTF-8. JSON
	// would replace the bad bytes, so the stored name would differ.
	ErrInvalidName = errors.New("entry name is not valid UTF-8")
)

// Entry is one line of a day's checklist.
// ID is the only correlation key for toggle/delete; Name never changes.
type Entry struct {
	ID   string `json:"id" validate:"required"`
	Name string `json:"name" validate:"notblank"`
	Done bool   `json:"done"`
}

// NewEntry builds a pending entry. The name is trimmed.
func NewEntry(id, name string) (Entry, error) {
	if !utf8.ValidString(name) {
		return Entry{}, ErrInvalidName
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return Entry{}, ErrEmptyName
	}
	return Entry{ID: id, Name: name}, nil
}

// The helpers below never modify the slice they are given; callers may keep
// rendering from an old snapshot while a new one is being persisted.

// Append returns a copy of list with e at the end.
func Append(list []Entry, e Entry) []Entry {
	out := make([]Entry, 0, len(list)+1)
	out = append(out, list...)
	return append(out, e)
}

// Find returns the index of the entry with the given id.
func Find(list []Entry, id string) (int, bool) {
	for i, e := range list {
		if e.ID == id {
			return i, true
		}
	}
	return -1, false
}

// Toggle flips Done on the entry with the given id.
// When nothing matches, list itself is returned with false.
func Toggle(list []Entry, id string) ([]Entry, bool) {
	i, ok := Find(list, id)
	if !ok {
		return list, false
	}
	out := make([]Entry, len(list))
	copy(out, list)
	out[i].Done = !out[i].Done
	return out, true
}

// Remove drops the entry with the given id, keeping the order of the rest.
// When nothing matches, list itself is returned with false.
func Remove(list []Entry, id string) ([]Entry, bool) {
	i, ok := Find(list, id)
	if !ok {
		return list, false
	}
	out := make([]Entry, 0, len(list)-1)
	out = append(out, list[:i]...)
	return append(out, list[i+1:]...), true
}

// Stats counts done and pending entries.
func Stats(list []Entry) (done, pending int) {
	for _, e := range list {
		if e.Done {
			done++
		} else {
			pending++
		}
	}
	return
}
