// Package codec converts a day's entries to and from the stored document:
// a JSON array of {"id", "name", "done"} objects.
package codec

import (
	"encoding/json"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"

	"github.com/idilsaglam/daylist/internal/model"
)

var (
	// ErrMalformed marks a stored document that is not a valid entry list.
	ErrMalformed = errors.New("malformed checklist document")
	// ErrNotUTF8 marks an entry whose id or name would not survive encoding.
	ErrNotUTF8 = errors.New("entry text is not valid UTF-8")
)

type document struct {
	Entries []model.Entry `validate:"unique=ID,dive"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(err)
	}
	return v
}

// Encode serializes entries. A nil list is written as []. Entries with
// invalid UTF-8 are refused rather than rewritten.
func Encode(entries []model.Entry) ([]byte, error) {
	if entries == nil {
		entries = []model.Entry{}
	}
	for i, e := range entries {
		if !utf8.ValidString(e.ID) || !utf8.ValidString(e.Name) {
			return nil, fmt.Errorf("entry %d: %w", i, ErrNotUTF8)
		}
	}
	b, err := json.Marshal(entries)
	if err != nil {
		return nil, fmt.Errorf("json marshal: %w", err)
	}
	return b, nil
}

// Decode parses a stored document. Syntax errors, wrong shapes, entries
// without id or name and duplicate ids all fail with ErrMalformed.
func Decode(b []byte) ([]model.Entry, error) {
	var entries []model.Entry
	if err := json.Unmarshal(b, &entries); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	if entries == nil {
		return []model.Entry{}, nil
	}
	if err := validate.Struct(document{Entries: entries}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	return entries, nil
}
