package watch

import (
	"fmt"
	"time"

	"coursewatch/internal/catalog"
)

// Report summarizes one cycle. It is ephemeral: produced fresh each
// cycle and handed to the observability sink.
type Report struct {
	Started time.Time
	Took    time.Duration

	Discovered int // items seen in the catalog
	Delivered  int // sent and (attempted to be) recorded
	Skipped    int // already in the ledger snapshot
	Failed     int // send failed; deferred to the next cycle

	FetchFailures  []FetchFailure
	SendFailures   []ItemFailure
	LedgerFailures []ItemFailure // delivered but not recorded; will repeat

	// Fatal is set when the cycle aborted before processing items
	// (ledger load or subject list failure, or a panic).
	Fatal string
}

type FetchFailure struct {
	Subject string
	Type    catalog.ContentType
	Err     string
}

type ItemFailure struct {
	ItemID string
	Err    string
}

func (r Report) Summary() string {
	if r.Fatal != "" {
		return fmt.Sprintf("cycle aborted after %s: %s", r.Took.Round(time.Millisecond), r.Fatal)
	}
	return fmt.Sprintf("discovered=%d delivered=%d skipped=%d failed=%d fetch_errors=%d took=%s",
		r.Discovered, r.Delivered, r.Skipped, r.Failed, len(r.FetchFailures), r.Took.Round(time.Millisecond))
}
