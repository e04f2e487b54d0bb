package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// ID is an identifier handed out by the archive. The archive sends numbers, but
// string ids are accepted and written back out as strings.
type ID struct {
	value  string
	quoted bool
}

// NumericID returns an ID for a numeric identifier.
func NumericID(n int64) ID {
	return ID{value: strconv.FormatInt(n, 10)}
}

// StringID returns an ID for a string identifier.
func StringID(s string) ID {
	return ID{value: s, quoted: true}
}

// IsZero reports whether the id is missing. Null, 0 and "" all count as missing.
func (id ID) IsZero() bool {
	if id.value == "" {
		return true
	}
	if id.quoted {
		return false
	}
	f, err := strconv.ParseFloat(id.value, 64)
	return err == nil && f == 0
}

func (id ID) String() string {
	return id.value
}

// UnmarshalJSON accepts numbers and strings. Any other value, booleans
// included, leaves the id missing so that only the element carrying it is
// skipped.
func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		*id = ID{}
		return nil
	}
	switch b[0] {
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = StringID(s)
		return nil
	case 'n', 't', 'f', '{', '[':
		*id = ID{}
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("invalid id %s: %w", b, err)
	}
	*id = ID{value: n.String()}
	return nil
}

func (id ID) MarshalJSON() ([]byte, error) {
	switch {
	case id.value == "":
		return []byte("null"), nil
	case id.quoted:
		return json.Marshal(id.value)
	}
	return []byte(id.value), nil
}

// Page is one page of an edition as listed by the archive.
type Page struct {
	PageID ID `json:"PageId"`
}

func (p *Page) UnmarshalJSON(b []byte) error {
	id, err := exactID(b, "PageId")
	if err != nil {
		return err
	}
	p.PageID = id
	return nil
}

// Story is one story placed on a page.
type Story struct {
	StoryID ID `json:"storyid"`
}

func (s *Story) UnmarshalJSON(b []byte) error {
	id, err := exactID(b, "storyid")
	if err != nil {
		return err
	}
	s.StoryID = id
	return nil
}

// exactID reads the id stored under key, matched case-sensitively. Elements
// that are not objects carry no id.
func exactID(b []byte, key string) (ID, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(b, &fields); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return ID{}, nil
		}
		return ID{}, err
	}

	var id ID
	raw, ok := fields[key]
	if !ok {
		return id, nil
	}
	if err := id.UnmarshalJSON(raw); err != nil {
		return ID{}, err
	}
	return id, nil
}

// StoryDetail is the full story payload as returned by the archive.
type StoryDetail struct {
	Object
}

// IsEmpty reports whether the detail carries no story text: the payload is
// empty, StoryContent is missing or empty, or its first element has no Body or
// an empty one. A null Body is not empty.
func (d StoryDetail) IsEmpty() bool {
	if d.Len() == 0 {
		return true
	}
	first, ok := d.firstContent()
	if !ok {
		return true
	}
	body, ok := first.Get("Body")
	if !ok {
		return true
	}
	s, isString := body.(string)
	return isString && s == ""
}

// Body returns the first content element's body text, if any.
func (d StoryDetail) Body() string {
	first, ok := d.firstContent()
	if !ok {
		return ""
	}
	body, _ := first.Get("Body")
	s, _ := body.(string)
	return s
}

func (d StoryDetail) firstContent() (*Object, bool) {
	v, ok := d.Get("StoryContent")
	if !ok {
		return nil, false
	}
	list, ok := v.([]any)
	if !ok || len(list) == 0 {
		return nil, false
	}
	first, ok := list[0].(*Object)
	return first, ok
}
