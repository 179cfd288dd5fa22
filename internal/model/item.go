package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Item is the domain model for a todo entry.
// ID and CreatedAt are assigned by the store and never change afterwards.
type Item struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"createdAt"`
}

// ErrImmutableField is returned when a patch names id or createdAt.
var ErrImmutableField = errors.New("immutable field")

// Patch lists the fields an update may change. Nil means "keep".
type Patch struct {
	Text      *string `json:"text,omitempty"`
	Completed *bool   `json:"completed,omitempty"`
}

// SetText returns a patch that only replaces the text.
func SetText(text string) Patch { return Patch{Text: &text} }

// SetCompleted returns a patch that only replaces the completion flag.
func SetCompleted(done bool) Patch { return Patch{Completed: &done} }

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool { return p.Text == nil && p.Completed == nil }

// Apply merges p over it and returns the result. Unset fields are retained.
func (p Patch) Apply(it Item) Item {
	if p.Text != nil {
		it.Text = *p.Text
	}
	if p.Completed != nil {
		it.Completed = *p.Completed
	}
	return it
}

// DecodePatch parses a partial update received over the wire.
// Objects naming id or createdAt are rejected with ErrImmutableField,
// other unknown keys with a plain decode error.
func DecodePatch(raw []byte) (Patch, error) {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(raw, &keys); err != nil {
		return Patch{}, fmt.Errorf("decode patch: %w", err)
	}
	for _, k := range []string{"id", "createdAt"} {
		if _, ok := keys[k]; ok {
			return Patch{}, fmt.Errorf("patch sets %q: %w", k, ErrImmutableField)
		}
	}

	var p Patch
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&p); err != nil {
		return Patch{}, fmt.Errorf("decode patch: %w", err)
	}
	return p, nil
}
