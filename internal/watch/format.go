package watch

import (
	"strings"

	"coursewatch/internal/catalog"
)

// Rendered is a transport-neutral notification. The delivery sink owns
// turning it into platform markup.
type Rendered struct {
	Title     string
	Subject   string
	TypeLabel string
	// Link is the optional action URL (already normalized). Empty means
	// the notification carries no clickable action.
	Link string
}

// Format renders one item into a Rendered message. It is pure and cannot
// fail: malformed input degrades to placeholder text.
func Format(subject catalog.Subject, item catalog.Item, typ catalog.ContentType, link string) Rendered {
	title := strings.TrimSpace(item.Title)
	if title == "" {
		title = "Untitled"
	}
	return Rendered{
		Title:     title,
		Subject:   subject.Name,
		TypeLabel: typ.Label(),
		Link:      link,
	}
}
