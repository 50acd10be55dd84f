package share

import (
	"context"
	"testing"
	"time"

	"github.com/hearthside/tourplan/internal/tour"
)

func newTestStore(t *testing.T) *tour.Store {
	t.Helper()
	store, err := tour.NewStore(context.Background(), tour.NewInMemoryRepository(), nil)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	return store
}

// TestPublish_EmptySchedule tests that an empty schedule yields no link.
func TestPublish_EmptySchedule(t *testing.T) {
	pub := NewPublisher(newTestStore(t), "https://tours.example.com", nil)

	link, err := pub.Publish(context.Background())
	if err != nil {
		t.Fatalf("failed to publish: %v", err)
	}
	if link != nil {
		t.Errorf("expected no link for empty schedule, got %+v", link)
	}
	if pub.Current() != nil {
		t.Error("expected no current link")
	}
}

// TestPublish_SnapshotRetrievable tests the publish-then-retrieve path.
func TestPublish_SnapshotRetrievable(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	if err := store.AddProperty(ctx, tour.Property{ID: "a", Address: "12 Oak Lane"}); err != nil {
		t.Fatalf("failed to add property: %v", err)
	}

	fixed := time.Date(2025, 6, 14, 10, 0, 0, 0, time.UTC)
	pub := NewPublisher(store, "https://tours.example.com/", func() time.Time { return fixed })

	link, err := pub.Publish(ctx)
	if err != nil {
		t.Fatalf("failed to publish: %v", err)
	}
	if link == nil {
		t.Fatal("expected a share link")
	}
	if link.ID != tour.NewShareID(fixed) {
		t.Errorf("expected timestamp share id, got %s", link.ID)
	}
	if link.URL != "https://tours.example.com/view/"+link.ID {
		t.Errorf("unexpected share URL %s", link.URL)
	}

	snap := store.TourByID(link.ID)
	if snap == nil {
		t.Fatal("expected published snapshot")
	}
	if snap.Properties[0].Address != "12 Oak Lane" {
		t.Errorf("unexpected snapshot contents: %+v", snap.Properties[0])
	}

	current := pub.Current()
	if current == nil || current.ID != link.ID {
		t.Errorf("expected current link %s, got %+v", link.ID, current)
	}
}

// TestRun_RepublishesOnListChange tests the automatic republish loop.
func TestRun_RepublishesOnListChange(t *testing.T) {
	store := newTestStore(t)
	pub := NewPublisher(store, "https://tours.example.com", nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go pub.Run(ctx)

	if err := store.AddProperty(context.Background(), tour.Property{ID: "a", ViewingTime: "10:00"}); err != nil {
		t.Fatalf("failed to add property: %v", err)
	}

	deadline := time.After(2 * time.Second)
	for pub.Current() == nil {
		select {
		case <-deadline:
			t.Fatal("expected a published link after list change")
		case <-time.After(10 * time.Millisecond):
		}
	}

	link := pub.Current()
	if store.TourByID(link.ID) == nil {
		t.Error("expected published snapshot for current link")
	}
}
