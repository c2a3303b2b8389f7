package query

import (
	"testing"
	"time"
)

func TestDebouncer_BurstDeliversFinalValueOnly(t *testing.T) {
	// Changes every 40ms with a 120ms window: output must stay silent
	// until 120ms after the last change, then deliver only the final value.
	d := NewDebouncer[string](120 * time.Millisecond)
	defer d.Stop()

	start := time.Now()
	for _, v := range []string{"a", "ab", "abc", "abcd"} {
		d.Set(v)
		time.Sleep(40 * time.Millisecond)
	}
	lastSet := time.Now()

	select {
	case got := <-d.C():
		elapsed := time.Since(lastSet) + 40*time.Millisecond // last sleep overlaps the window
		if got != "abcd" {
			t.Errorf("debounced value = %q, want %q", got, "abcd")
		}
		// Delivery must come at least one full window after the last Set
		if time.Since(start) < 3*40*time.Millisecond+120*time.Millisecond-20*time.Millisecond {
			t.Errorf("delivered too early: %v after start", time.Since(start))
		}
		_ = elapsed
	case <-time.After(2 * time.Second):
		t.Fatal("debounced value never delivered")
	}

	// No second delivery for the same burst
	select {
	case got := <-d.C():
		t.Errorf("unexpected second delivery: %q", got)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestDebouncer_SingleValue(t *testing.T) {
	d := NewDebouncer[int](20 * time.Millisecond)
	defer d.Stop()

	d.Set(42)

	select {
	case got := <-d.C():
		if got != 42 {
			t.Errorf("debounced value = %d, want 42", got)
		}
	case <-time.After(1 * time.Second):
		t.Fatal("debounced value never delivered")
	}
}

func TestDebouncer_ZeroDelayStillDefers(t *testing.T) {
	d := NewDebouncer[string](0)
	defer d.Stop()

	d.Set("now")

	// Zero delay is passthrough, but still asynchronous: nothing is on
	// the channel synchronously from Set itself.
	select {
	case got := <-d.C():
		if got != "now" {
			t.Errorf("debounced value = %q, want %q", got, "now")
		}
	case <-time.After(1 * time.Second):
		t.Fatal("zero-delay value never delivered")
	}
}

func TestDebouncer_StopCancelsPending(t *testing.T) {
	d := NewDebouncer[string](30 * time.Millisecond)

	d.Set("pending")
	d.Stop()

	select {
	case got := <-d.C():
		t.Errorf("delivery after Stop: %q", got)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestDebouncer_LatestWinsWhenReceiverIsSlow(t *testing.T) {
	d := NewDebouncer[string](5 * time.Millisecond)
	defer d.Stop()

	d.Set("first")
	time.Sleep(30 * time.Millisecond)
	// "first" now sits undelivered in the buffer
	d.Set("second")
	time.Sleep(30 * time.Millisecond)

	select {
	case got := <-d.C():
		if got != "second" {
			t.Errorf("debounced value = %q, want %q (latest wins)", got, "second")
		}
	default:
		t.Fatal("no value buffered")
	}
}
