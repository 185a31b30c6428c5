package notify

import (
	"sync"
	"testing"
	"time"

	"github.com/balkashynov/floortrack/internal/metrics"
)

func dataset(rows int) metrics.Dataset {
	return metrics.Dataset{Series: make([]metrics.Row, rows)}
}

func TestSubscribeReplaysLatest(t *testing.T) {
	t.Parallel()

	h := NewHub(nil)
	h.Publish(dataset(3))

	sub := h.Subscribe()
	select {
	case ds := <-sub.C:
		if len(ds.Series) != 3 {
			t.Errorf("Expected replay of 3 rows, got %d", len(ds.Series))
		}
	default:
		t.Fatal("Expected latest dataset to be waiting on subscribe")
	}
}

func TestSubscribeBeforePublishIsEmpty(t *testing.T) {
	t.Parallel()

	h := NewHub(nil)
	sub := h.Subscribe()
	select {
	case ds := <-sub.C:
		t.Fatalf("Unexpected dataset %+v", ds)
	default:
	}
	if _, ok := h.Latest(); ok {
		t.Error("Latest should be empty before the first publish")
	}
}

func TestPublishNeverBlocksAndKeepsNewest(t *testing.T) {
	t.Parallel()

	h := NewHub(nil)
	slow := h.Subscribe()

	done := make(chan struct{})
	go func() {
		for i := 1; i <= 100; i++ {
			h.Publish(dataset(i))
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked on a slow subscriber")
	}

	ds := <-slow.C
	if len(ds.Series) != 100 {
		t.Errorf("Expected the newest dataset, got %d rows", len(ds.Series))
	}
}

func TestFanOut(t *testing.T) {
	t.Parallel()

	h := NewHub(nil)
	subs := []*Subscription{h.Subscribe(), h.Subscribe(), h.Subscribe()}
	if h.Count() != 3 {
		t.Errorf("Expected 3 subscribers, got %d", h.Count())
	}
	if subs[0].ID == subs[1].ID {
		t.Errorf("Subscription ids must be unique")
	}

	h.Publish(dataset(2))
	var wg sync.WaitGroup
	for _, sub := range subs {
		wg.Add(1)
		go func(sub *Subscription) {
			defer wg.Done()
			select {
			case ds := <-sub.C:
				if len(ds.Series) != 2 {
					t.Errorf("Subscriber %s got %d rows", sub.ID, len(ds.Series))
				}
			case <-time.After(time.Second):
				t.Errorf("Subscriber %s got nothing", sub.ID)
			}
		}(sub)
	}
	wg.Wait()
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	t.Parallel()

	h := NewHub(nil)
	sub := h.Subscribe()
	h.Unsubscribe(sub)
	h.Unsubscribe(sub)

	if _, ok := <-sub.C; ok {
		t.Error("Expected closed channel")
	}
	if h.Count() != 0 {
		t.Errorf("Expected 0 subscribers, got %d", h.Count())
	}
	h.Publish(dataset(1))
}

func TestClose(t *testing.T) {
	t.Parallel()

	h := NewHub(nil)
	sub := h.Subscribe()
	h.Close()

	if _, ok := <-sub.C; ok {
		t.Error("Expected closed channel after hub Close")
	}
	late := h.Subscribe()
	if _, ok := <-late.C; ok {
		t.Error("Subscriptions on a closed hub should be closed")
	}
	h.Publish(dataset(1))
	h.Unsubscribe(sub)
}
