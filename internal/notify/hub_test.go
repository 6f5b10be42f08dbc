package notify

import (
	"testing"
	"time"
)

func testNotification(id string) Notification {
	return Notification{
		ID:       id,
		Kind:     KindInfo,
		Title:    "title " + id,
		Duration: DefaultDuration(KindInfo),
	}
}

func TestAppendPreservesInsertionOrder(t *testing.T) {
	hub := NewHub(nil)
	ids := []string{"a", "b", "c", "d"}
	for _, id := range ids {
		if !hub.Append(testNotification(id)) {
			t.Fatalf("append %q rejected", id)
		}
	}

	snap := hub.Snapshot()
	if len(snap) != len(ids) {
		t.Fatalf("expected %d notifications, got %d", len(ids), len(snap))
	}
	for i, id := range ids {
		if snap[i].ID != id {
			t.Fatalf("position %d: expected %q, got %q", i, id, snap[i].ID)
		}
	}
}

func TestAppendDuplicateIDKeepsExisting(t *testing.T) {
	hub := NewHub(nil)
	original := testNotification("dup")
	original.Title = "original"
	hub.Append(original)
	hub.Append(testNotification("other"))

	replacement := testNotification("dup")
	replacement.Title = "replacement"
	if hub.Append(replacement) {
		t.Fatal("expected duplicate append to be rejected")
	}

	snap := hub.Snapshot()
	if len(snap) != 2 {
		t.Fatalf("duplicate append changed list length: %d", len(snap))
	}
	if snap[0].ID != "dup" || snap[1].ID != "other" {
		t.Fatalf("duplicate append reordered entries: %v", snap)
	}
	if snap[0].Title != "original" {
		t.Fatalf("duplicate append replaced existing record: %q", snap[0].Title)
	}
}

func TestRemoveAbsentIDIsNoOpButNotifies(t *testing.T) {
	hub := NewHub(nil)
	hub.Append(testNotification("keep"))

	calls := 0
	unsub := hub.Subscribe(func() { calls++ })
	defer unsub()

	if hub.Remove("missing") {
		t.Fatal("expected remove of missing id to report false")
	}
	if calls != 1 {
		t.Fatalf("expected fan-out on remove of missing id, got %d calls", calls)
	}

	snap := hub.Snapshot()
	if len(snap) != 1 || snap[0].ID != "keep" {
		t.Fatalf("remove of missing id disturbed list: %v", snap)
	}
}

func TestListenerInvokedOncePerMutation(t *testing.T) {
	hub := NewHub(nil)

	calls := 0
	unsub := hub.Subscribe(func() { calls++ })

	hub.Append(testNotification("a"))
	hub.Append(testNotification("b"))
	hub.Remove("a")
	if calls != 3 {
		t.Fatalf("expected 3 fan-outs, got %d", calls)
	}

	unsub()
	hub.Append(testNotification("c"))
	if calls != 3 {
		t.Fatalf("listener invoked after unsubscribe: %d", calls)
	}
}

func TestUnsubscribeIsIdempotentAndScoped(t *testing.T) {
	hub := NewHub(nil)

	var first, second int
	listener := func() { first++ }
	unsubFirst := hub.Subscribe(listener)
	unsubSecond := hub.Subscribe(func() { second++ })

	// Same function subscribed twice is a distinct registration.
	var duplicate int
	dupFn := func() { duplicate++ }
	unsubDupA := hub.Subscribe(dupFn)
	unsubDupB := hub.Subscribe(dupFn)

	hub.Append(testNotification("x"))
	if first != 1 || second != 1 || duplicate != 2 {
		t.Fatalf("unexpected counts first=%d second=%d duplicate=%d", first, second, duplicate)
	}

	unsubDupA()
	hub.Append(testNotification("y"))
	if duplicate != 3 {
		t.Fatalf("expected the second registration to survive, got %d", duplicate)
	}

	unsubFirst()
	unsubFirst() // idempotent
	hub.Append(testNotification("z"))
	if first != 1 {
		t.Fatalf("listener invoked after double unsubscribe: %d", first)
	}
	if second != 3 {
		t.Fatalf("unrelated listener affected by unsubscribe: %d", second)
	}

	unsubSecond()
	unsubDupB()
}

func TestSnapshotIsCallerOwned(t *testing.T) {
	hub := NewHub(nil)
	hub.Append(testNotification("a"))
	hub.Append(testNotification("b"))

	snap := hub.Snapshot()
	snap[0] = testNotification("mutated")
	snap = snap[:1]

	fresh := hub.Snapshot()
	if len(fresh) != 2 || fresh[0].ID != "a" || fresh[1].ID != "b" {
		t.Fatalf("mutating a snapshot leaked into the hub: %v", fresh)
	}
}

func TestListenerMayMutateHubReentrantly(t *testing.T) {
	hub := NewHub(nil)

	appended := false
	unsub := hub.Subscribe(func() {
		if !appended {
			appended = true
			hub.Append(testNotification("from-listener"))
		}
	})
	defer unsub()

	hub.Append(testNotification("trigger"))

	snap := hub.Snapshot()
	if len(snap) != 2 {
		t.Fatalf("expected 2 notifications after reentrant append, got %d", len(snap))
	}
}

func TestDefaultDurations(t *testing.T) {
	cases := map[Kind]time.Duration{
		KindSuccess: 4000 * time.Millisecond,
		KindError:   5000 * time.Millisecond,
		KindWarning: 4000 * time.Millisecond,
		KindInfo:    4000 * time.Millisecond,
	}
	for kind, want := range cases {
		if got := DefaultDuration(kind); got != want {
			t.Fatalf("kind %s: expected %v, got %v", kind, want, got)
		}
	}
}
