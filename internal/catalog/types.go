package catalog

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ContentType categorizes items within a subject. The slug is what the
// remote API expects in its URL path.
type ContentType string

const (
	TypeLectures ContentType = "lectures"
	TypeNotes    ContentType = "notes"
	TypeDPPs     ContentType = "dpps"
)

// ContentTypes is the fixed traversal order for a scan cycle. Channel
// readers rely on the roughly chronological order this produces, so keep
// it stable.
var ContentTypes = []ContentType{TypeLectures, TypeNotes, TypeDPPs}

// Label returns the human singular form ("lectures" -> "Lecture").
// Unknown types degrade to a capitalized, de-pluralized slug.
func (t ContentType) Label() string {
	switch t {
	case TypeLectures:
		return "Lecture"
	case TypeNotes:
		return "Note"
	case TypeDPPs:
		return "DPP"
	}
	s := strings.TrimSpace(string(t))
	if s == "" {
		return "Content"
	}
	s = strings.TrimSuffix(s, "s")
	return strings.ToUpper(s[:1]) + s[1:]
}

type Subject struct {
	ID   string
	Name string
}

// Item is one piece of published content. IDs are globally unique across
// subjects and types; the completion ledger keys on ID alone.
type Item struct {
	ID     string
	Title  string
	RawURL string
}

// UnmarshalJSON tolerates the remote API's loose field naming: ids may be
// numbers or strings, titles arrive as "title" or "name", and the link
// comes from the first non-empty of url/originalUrl/baseUrl.
func (it *Item) UnmarshalJSON(b []byte) error {
	var raw struct {
		ID          json.RawMessage `json:"id"`
		Title       string          `json:"title"`
		Name        string          `json:"name"`
		URL         string          `json:"url"`
		OriginalURL string          `json:"originalUrl"`
		BaseURL     string          `json:"baseUrl"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	it.ID = flexibleID(raw.ID)
	it.Title = firstNonEmpty(raw.Title, raw.Name)
	it.RawURL = firstNonEmpty(raw.URL, raw.OriginalURL, raw.BaseURL)
	return nil
}

func (s *Subject) UnmarshalJSON(b []byte) error {
	var raw struct {
		ID   json.RawMessage `json:"id"`
		Name string          `json:"name"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	s.ID = flexibleID(raw.ID)
	s.Name = raw.Name
	return nil
}

func flexibleID(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		return str
	}
	var num json.Number
	if err := json.Unmarshal(raw, &num); err == nil {
		return num.String()
	}
	return strings.Trim(string(raw), `"`)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// FetchError wraps a failed catalog call with what was being fetched.
type FetchError struct {
	Op  string // "subjects" or a content-type slug
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("catalog fetch %s: %v", e.Op, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }
