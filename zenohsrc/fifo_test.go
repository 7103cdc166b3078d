package zenohsrc

import (
	"testing"
	"time"

	"github.com/e7canasta/gst-plugin-zenoh/stats"
	"github.com/e7canasta/gst-plugin-zenoh/transport"
)

func TestFifoPushPop(t *testing.T) {
	var st stats.Counters
	f := newFifo(4, &st)

	f.push(transport.Sample{Payload: []byte("a")})
	s, pr := f.pop(time.Second)
	if pr != popOK {
		t.Fatalf("pop = %v, want popOK", pr)
	}
	if string(s.Payload) != "a" {
		t.Errorf("payload = %q, want %q", s.Payload, "a")
	}
}

func TestFifoPopTimesOutWhenEmpty(t *testing.T) {
	var st stats.Counters
	f := newFifo(4, &st)

	_, pr := f.pop(10 * time.Millisecond)
	if pr != popTimeout {
		t.Fatalf("pop = %v, want popTimeout", pr)
	}
}

func TestFifoPushDropsWhenFullAndCountsIt(t *testing.T) {
	var st stats.Counters
	f := newFifo(1, &st)

	f.push(transport.Sample{Payload: []byte("a")})
	f.push(transport.Sample{Payload: []byte("b")}) // dropped, FIFO full

	if got := st.Snapshot().Dropped; got != 1 {
		t.Errorf("Dropped = %d, want 1", got)
	}
}

func TestFifoCloseWakesBlockedPopImmediately(t *testing.T) {
	var st stats.Counters
	f := newFifo(4, &st)

	done := make(chan popResult, 1)
	go func() {
		_, pr := f.pop(10 * time.Second)
		done <- pr
	}()

	time.Sleep(10 * time.Millisecond)
	f.close()

	select {
	case pr := <-done:
		if pr != popShutdown {
			t.Errorf("pop = %v, want popShutdown", pr)
		}
	case <-time.After(time.Second):
		t.Fatal("close did not wake blocked pop promptly")
	}
}

func TestFifoCloseIsIdempotent(t *testing.T) {
	var st stats.Counters
	f := newFifo(4, &st)
	f.close()
	f.close() // must not panic
}
