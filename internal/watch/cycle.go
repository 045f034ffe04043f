package watch

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync/atomic"
	"time"

	"coursewatch/internal/catalog"
	"coursewatch/internal/ledger"
	logx "coursewatch/pkg/logx"
)

// ErrCycleRunning is returned when a trigger arrives while a cycle is
// still in flight. Overlapping cycles would break both the ledger
// snapshot semantics and the send pacing, so they are rejected.
var ErrCycleRunning = errors.New("a scan cycle is already running")

// Source is the catalog surface the watcher needs.
type Source interface {
	ListSubjects(ctx context.Context, batchID string) ([]catalog.Subject, error)
	ListItems(ctx context.Context, batchID, subjectID string, typ catalog.ContentType) ([]catalog.Item, error)
}

// Sink delivers one rendered notification. No retry happens at this
// layer; a failed send leaves the item unmarked so the next cycle picks
// it up again.
type Sink interface {
	Deliver(ctx context.Context, msg Rendered) error
}

type Config struct {
	BatchID    string
	PlayerBase string
	// SendDelay is imposed after every send attempt (success or failure)
	// to respect the channel's rate limits. Default 2s.
	SendDelay time.Duration
}

// Watcher drives the scan cycle. At most one cycle runs at a time.
type Watcher struct {
	cfg    Config
	source Source
	ledger ledger.Store
	sink   Sink
	log    logx.Logger

	running atomic.Bool
}

func New(cfg Config, source Source, led ledger.Store, sink Sink, log logx.Logger) *Watcher {
	if cfg.SendDelay <= 0 {
		cfg.SendDelay = 2 * time.Second
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Watcher{cfg: cfg, source: source, ledger: led, sink: sink, log: log}
}

// Run executes one full cycle and reports its outcome. It returns
// ErrCycleRunning without doing any work if a cycle is already active.
// Any other error is cycle-fatal (ledger load, subject list, panic);
// the returned Report carries the detail either way.
func (w *Watcher) Run(ctx context.Context) (Report, error) {
	if !w.running.CompareAndSwap(false, true) {
		return Report{}, ErrCycleRunning
	}
	defer w.running.Store(false)

	rep := Report{Started: time.Now()}
	w.log.Info("starting scan cycle", logx.String("batch", w.cfg.BatchID))

	err := w.runCycle(ctx, &rep)
	rep.Took = time.Since(rep.Started)
	if err != nil {
		rep.Fatal = err.Error()
		w.log.Error("scan cycle aborted", logx.Err(err), logx.Duration("took", rep.Took))
	} else {
		w.log.Info("scan cycle completed",
			logx.Int("discovered", rep.Discovered),
			logx.Int("delivered", rep.Delivered),
			logx.Int("skipped", rep.Skipped),
			logx.Int("failed", rep.Failed),
			logx.Int("fetch_errors", len(rep.FetchFailures)),
			logx.Duration("took", rep.Took))
	}
	return rep, err
}

func (w *Watcher) runCycle(ctx context.Context, rep *Report) (err error) {
	// Anything unanticipated escaping the per-stage isolation is caught
	// here; the process lives on to await the next trigger.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in scan cycle: %v", r)
			w.log.Error("panic in scan cycle", logx.Any("panic", r),
				logx.String("stack", string(debug.Stack())))
		}
	}()

	done, err := w.ledger.Load(ctx)
	if err != nil {
		return fmt.Errorf("load ledger: %w", err)
	}

	subjects, err := w.source.ListSubjects(ctx, w.cfg.BatchID)
	if err != nil {
		return fmt.Errorf("list subjects: %w", err)
	}
	w.log.Info("scanning for content", logx.Int("subjects", len(subjects)))

	for _, subject := range subjects {
		for _, typ := range catalog.ContentTypes {
			items, err := w.source.ListItems(ctx, w.cfg.BatchID, subject.ID, typ)
			if err != nil {
				// One remote outage must not block unrelated content.
				rep.FetchFailures = append(rep.FetchFailures, FetchFailure{
					Subject: subject.Name, Type: typ, Err: err.Error(),
				})
				w.log.Warn("item fetch failed",
					logx.String("subject", subject.Name),
					logx.String("type", string(typ)),
					logx.Err(err))
				continue
			}

			pending := make([]catalog.Item, 0, len(items))
			for _, item := range items {
				rep.Discovered++
				if _, ok := done[item.ID]; ok {
					rep.Skipped++
					continue
				}
				pending = append(pending, item)
			}
			if len(pending) == 0 {
				continue
			}
			w.log.Info("processing new items",
				logx.Int("count", len(pending)),
				logx.String("subject", subject.Name),
				logx.String("type", string(typ)))

			for _, item := range pending {
				w.deliverItem(ctx, rep, subject, typ, item)
				// Pace sends after every attempt, success or failure.
				sleepCtx(ctx, w.cfg.SendDelay)
			}
		}
	}
	return nil
}

func (w *Watcher) deliverItem(ctx context.Context, rep *Report, subject catalog.Subject, typ catalog.ContentType, item catalog.Item) {
	link := NormalizeLink(item.RawURL, w.cfg.PlayerBase)
	msg := Format(subject, item, typ, link)

	if err := w.sink.Deliver(ctx, msg); err != nil {
		rep.Failed++
		rep.SendFailures = append(rep.SendFailures, ItemFailure{ItemID: item.ID, Err: err.Error()})
		w.log.Warn("send failed; item deferred to next cycle",
			logx.String("item", item.ID), logx.Err(err))
		return
	}

	if err := w.ledger.MarkDone(ctx, item.ID); err != nil {
		// The item went out but is not confirmed done; it will be sent
		// again next cycle. Accepted over-delivery, never silent.
		rep.Delivered++
		rep.LedgerFailures = append(rep.LedgerFailures, ItemFailure{ItemID: item.ID, Err: err.Error()})
		w.log.Error("ledger write failed; item will repeat next cycle",
			logx.String("item", item.ID), logx.Err(err))
		return
	}
	rep.Delivered++
}

func sleepCtx(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
