package lockmap

import (
	"sync"
	"testing"
)

func TestLockSerialisesSameKey(t *testing.T) {
	t.Parallel()

	m := New()
	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := m.Lock("alice")
			defer unlock()
			v := counter
			v++
			counter = v
		}()
	}
	wg.Wait()

	if counter != 50 {
		t.Errorf("Expected counter 50, got %d", counter)
	}
	if m.Len() != 0 {
		t.Errorf("Expected lock map to be empty after release, got %d", m.Len())
	}
}

func TestLockDistinctKeysDoNotBlock(t *testing.T) {
	t.Parallel()

	m := New()
	unlockA := m.Lock("a")
	defer unlockA()

	done := make(chan struct{})
	go func() {
		unlock := m.Lock("b")
		unlock()
		close(done)
	}()
	<-done
}
