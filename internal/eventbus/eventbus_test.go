// ABOUTME: Tests for the ordered typed event bus
// ABOUTME: Covers subscribe, publish order, unsubscribe, and concurrent access

package eventbus

import (
	"sync"
	"testing"
)

func TestBus_PublishSubscribe(t *testing.T) {
	t.Parallel()

	bus := New[string]()
	var received string

	bus.Subscribe(func(s string) {
		received = s
	})

	bus.Publish("hello")

	if received != "hello" {
		t.Errorf("received = %q, want %q", received, "hello")
	}
}

func TestBus_DeliversInSubscriptionOrder(t *testing.T) {
	t.Parallel()

	bus := New[int]()
	var order []string

	bus.Subscribe(func(int) { order = append(order, "first") })
	bus.Subscribe(func(int) { order = append(order, "second") })
	bus.Subscribe(func(int) { order = append(order, "third") })

	bus.Publish(1)

	want := []string{"first", "second", "third"}
	if len(order) != len(want) {
		t.Fatalf("got %d deliveries, want %d", len(order), len(want))
	}
	for i, w := range want {
		if order[i] != w {
			t.Errorf("delivery[%d] = %q, want %q", i, order[i], w)
		}
	}
}

func TestBus_Unsubscribe(t *testing.T) {
	t.Parallel()

	bus := New[string]()
	called := false

	unsub := bus.Subscribe(func(_ string) {
		called = true
	})

	unsub()
	bus.Publish("test")

	if called {
		t.Error("handler should not be called after unsubscribe")
	}
}

func TestBus_UnsubscribeTwiceHarmless(t *testing.T) {
	t.Parallel()

	bus := New[int]()
	bus.Subscribe(func(int) {})
	unsub := bus.Subscribe(func(int) {})

	unsub()
	unsub()

	if bus.Count() != 1 {
		t.Errorf("Count() = %d, want 1", bus.Count())
	}
}

func TestBus_UnsubscribeMiddlePreservesOrder(t *testing.T) {
	t.Parallel()

	bus := New[int]()
	var order []string

	bus.Subscribe(func(int) { order = append(order, "a") })
	unsubB := bus.Subscribe(func(int) { order = append(order, "b") })
	bus.Subscribe(func(int) { order = append(order, "c") })

	unsubB()
	bus.Publish(1)

	if len(order) != 2 || order[0] != "a" || order[1] != "c" {
		t.Errorf("order = %v, want [a c]", order)
	}
}

func TestBus_Count(t *testing.T) {
	t.Parallel()

	bus := New[int]()

	unsub1 := bus.Subscribe(func(_ int) {})
	bus.Subscribe(func(_ int) {})

	if bus.Count() != 2 {
		t.Errorf("Count() = %d, want 2", bus.Count())
	}

	unsub1()
	if bus.Count() != 1 {
		t.Errorf("Count() = %d, want 1", bus.Count())
	}
}

func TestBus_ConcurrentPublishSubscribe(t *testing.T) {
	t.Parallel()

	bus := New[int]()
	var mu sync.Mutex
	total := 0

	bus.Subscribe(func(n int) {
		mu.Lock()
		total += n
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				bus.Publish(1)
			}
		}()
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	if total != 800 {
		t.Errorf("total = %d, want 800", total)
	}
}
