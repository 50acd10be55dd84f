// Package share implements the publish flow: snapshotting the active
// schedule under a generated identifier so a read-only client view can
// retrieve it later.
package share

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/hearthside/tourplan/internal/tour"
	"github.com/hearthside/tourplan/internal/tracing"
)

// Link is a published share link.
type Link struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// Publisher keeps the current share link in step with the active
// schedule: every time the property list changes while non-empty, the
// schedule is republished under a fresh timestamp id. An empty schedule
// has no share link.
type Publisher struct {
	store   *tour.Store
	baseURL string
	now     func() time.Time

	mu      sync.Mutex
	current *Link
}

// NewPublisher creates a publisher over the given store. baseURL is the
// externally visible origin the view route hangs off, e.g.
// "https://tours.example.com".
func NewPublisher(store *tour.Store, baseURL string, now func() time.Time) *Publisher {
	if now == nil {
		now = time.Now
	}
	return &Publisher{
		store:   store,
		baseURL: strings.TrimRight(baseURL, "/"),
		now:     now,
	}
}

// Publish snapshots the current schedule under a fresh share id and
// returns the link. Publishing an empty schedule returns (nil, nil):
// there is nothing to share.
func (p *Publisher) Publish(ctx context.Context) (link *Link, err error) {
	ctx, end := tracing.StartSpan(ctx, "publish_tour")
	defer func() { end(err) }()

	sched := p.store.Schedule()
	if len(sched.Properties) == 0 {
		p.mu.Lock()
		p.current = nil
		p.mu.Unlock()
		return nil, nil
	}

	id := tour.NewShareID(p.now())
	if err := p.store.ShareTour(ctx, id); err != nil {
		return nil, fmt.Errorf("publish tour: %w", err)
	}

	link = &Link{ID: id, URL: p.baseURL + "/view/" + id}
	p.mu.Lock()
	p.current = link
	p.mu.Unlock()
	return link, nil
}

// Current returns the most recently published link, or nil when the
// schedule is empty or nothing has been published yet.
func (p *Publisher) Current() *Link {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil {
		return nil
	}
	link := *p.current
	return &link
}

// Run republishes whenever the property list changes, until ctx is
// canceled. Intended to run in its own goroutine from main. Publishing is
// itself a store mutation, so change signals are filtered against a
// fingerprint of the property list to keep the loop from feeding back.
func (p *Publisher) Run(ctx context.Context) {
	changes := p.store.Subscribe()
	last := fingerprint(p.store.Schedule())
	for {
		select {
		case <-ctx.Done():
			return
		case <-changes:
			fp := fingerprint(p.store.Schedule())
			if fp == last {
				continue
			}
			last = fp
			if _, err := p.Publish(ctx); err != nil {
				slog.Error("failed to republish tour", "error", err)
			}
		}
	}
}

// fingerprint identifies the property list by its ids and viewing times.
func fingerprint(sched tour.Schedule) string {
	var b strings.Builder
	for _, prop := range sched.Properties {
		b.WriteString(prop.ID)
		b.WriteByte('@')
		b.WriteString(prop.ViewingTime)
		b.WriteByte(';')
	}
	return b.String()
}
