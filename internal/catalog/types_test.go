package catalog

import (
	"encoding/json"
	"testing"
)

func TestContentTypeLabel(t *testing.T) {
	t.Parallel()
	tests := []struct {
		typ  ContentType
		want string
	}{
		{TypeLectures, "Lecture"},
		{TypeNotes, "Note"},
		{TypeDPPs, "DPP"},
		{ContentType("quizzes"), "Quizze"},
		{ContentType(""), "Content"},
	}
	for _, tt := range tests {
		if got := tt.typ.Label(); got != tt.want {
			t.Errorf("Label(%q) = %q, want %q", tt.typ, got, tt.want)
		}
	}
}

func TestItemUnmarshalFallbacks(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		in   string
		want Item
	}{
		{
			name: "canonical fields",
			in:   `{"id":"L1","title":"Kinematics","url":"https://x/a.m3u8"}`,
			want: Item{ID: "L1", Title: "Kinematics", RawURL: "https://x/a.m3u8"},
		},
		{
			name: "numeric id and name field",
			in:   `{"id":1042,"name":"Algebra","originalUrl":"https://x/b.pdf"}`,
			want: Item{ID: "1042", Title: "Algebra", RawURL: "https://x/b.pdf"},
		},
		{
			name: "baseUrl is the last resort",
			in:   `{"id":"N7","baseUrl":"https://x/c"}`,
			want: Item{ID: "N7", RawURL: "https://x/c"},
		},
		{
			name: "missing everything",
			in:   `{}`,
			want: Item{},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var got Item
			if err := json.Unmarshal([]byte(tt.in), &got); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if got != tt.want {
				t.Fatalf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestSubjectUnmarshal(t *testing.T) {
	t.Parallel()
	var s Subject
	if err := json.Unmarshal([]byte(`{"id":7,"name":"Physics"}`), &s); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if s.ID != "7" || s.Name != "Physics" {
		t.Fatalf("got %+v", s)
	}
}
