package zenohdemux

import (
	"context"
	"sync"
	"testing"

	"github.com/e7canasta/gst-plugin-zenoh/config"
	"github.com/e7canasta/gst-plugin-zenoh/session"
	"github.com/e7canasta/gst-plugin-zenoh/transport"
	"github.com/e7canasta/gst-plugin-zenoh/transport/loopback"
)

func TestStartStopLifecycle(t *testing.T) {
	reg := session.NewRegistry()
	cfg := config.DefaultDemuxConfig()
	cfg.KeyExpr = "t/**"
	e := New(cfg)

	if err := e.Start(reg, loopback.Open); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := e.Activate(); err != nil {
		t.Fatalf("Activate: %v", err)
	}
	if err := e.Play(); err != nil {
		t.Fatalf("Play: %v", err)
	}
	if err := e.Pause(); err != nil {
		t.Fatalf("Pause: %v", err)
	}
	if err := e.Deactivate(); err != nil {
		t.Fatalf("Deactivate: %v", err)
	}
	if err := e.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
}

// TestElementScenarioS3 drives the four-name, two-port scenario through
// the full Element (not the pure Route function), verifying pads-created
// and per-port buffer counts end to end over the loopback transport.
func TestElementScenarioS3(t *testing.T) {
	reg := session.NewRegistry()
	cfg := config.DefaultDemuxConfig()
	cfg.KeyExpr = "t/**"
	cfg.SessionGroup = "g"
	cfg.PadNaming = config.PadNamingLastSegment
	e := New(cfg)

	var mu sync.Mutex
	buffersByPort := map[string]int{}
	portsAdded := []string{}
	e.OnRoute = func(r RouteResult) {
		mu.Lock()
		defer mu.Unlock()
		if r.PortCreated {
			portsAdded = append(portsAdded, r.PortName)
		}
		if r.Buffer != nil {
			buffersByPort[r.PortName]++
		}
	}

	if err := e.Start(reg, loopback.Open); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer e.Stop()

	handle, err := reg.Acquire(cfg.SessionGroup, transport.Config{}, loopback.Open)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	defer handle.Release()

	qos := transport.QoS{Priority: 4, Reliability: transport.ReliabilityReliable, Congestion: transport.CongestionBlock}
	for _, name := range []string{"t/a/v", "t/b/v", "t/a/a", "t/b/a"} {
		pub, err := handle.Session.DeclarePublisher(name, qos)
		if err != nil {
			t.Fatalf("DeclarePublisher(%s): %v", name, err)
		}
		if err := pub.Put(context.Background(), []byte("x"), "gst.version=1.0\n"); err != nil {
			t.Fatalf("Put(%s): %v", name, err)
		}
		pub.Undeclare()
	}

	// Loopback delivery is synchronous within Put, so by now all four
	// samples have already been routed.
	mu.Lock()
	defer mu.Unlock()

	if len(portsAdded) != 2 {
		t.Errorf("ports added = %v, want 2 distinct ports", portsAdded)
	}
	if buffersByPort["v"] != 2 {
		t.Errorf("buffers on v = %d, want 2", buffersByPort["v"])
	}
	if buffersByPort["a"] != 2 {
		t.Errorf("buffers on a = %d, want 2", buffersByPort["a"])
	}
	if got := e.Stats.Snapshot().PadsCreated; got != 2 {
		t.Errorf("PadsCreated = %d, want 2", got)
	}
	if got := e.PortCount(); got != 2 {
		t.Errorf("PortCount = %d, want 2", got)
	}
}

func TestSetConfigRejectsKeyExprChangeOnceReady(t *testing.T) {
	reg := session.NewRegistry()
	cfg := config.DefaultDemuxConfig()
	cfg.KeyExpr = "t/**"
	e := New(cfg)

	if err := e.Start(reg, loopback.Open); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer e.Stop()

	changed := cfg
	changed.KeyExpr = "other/**"
	if err := e.SetConfig(changed); err == nil {
		t.Fatal("SetConfig changing KeyExpr once Ready: err = nil, want error")
	}
}

func TestSetConfigAllowsPadNamingChangeAnyState(t *testing.T) {
	cfg := config.DefaultDemuxConfig()
	cfg.KeyExpr = "t/**"
	e := New(cfg)

	changed := cfg
	changed.PadNaming = config.PadNamingHash
	if err := e.SetConfig(changed); err != nil {
		t.Fatalf("SetConfig: %v", err)
	}
	if e.Config().PadNaming != config.PadNamingHash {
		t.Errorf("PadNaming = %v, want hash", e.Config().PadNaming)
	}
}

func TestPortCountIsZeroBeforeAnySample(t *testing.T) {
	reg := session.NewRegistry()
	cfg := config.DefaultDemuxConfig()
	cfg.KeyExpr = "t/**"
	e := New(cfg)
	if err := e.Start(reg, loopback.Open); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer e.Stop()

	if got := e.PortCount(); got != 0 {
		t.Errorf("PortCount before any sample = %d, want 0", got)
	}
}
