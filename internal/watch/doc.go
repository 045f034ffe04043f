// Package watch implements the scan cycle: discover newly published
// catalog items, diff them against the completion ledger, deliver each
// pending item to the channel sink, and record successful deliveries.
//
// Failure containment is the whole point here: a failed item fetch skips
// one (subject, content-type) pair, a failed send skips one item, and
// only a ledger-load or subject-list failure aborts a cycle.
package watch
