package zenohsrc

import (
	"context"
	"testing"
	"time"

	"github.com/e7canasta/gst-plugin-zenoh/config"
	"github.com/e7canasta/gst-plugin-zenoh/session"
	"github.com/e7canasta/gst-plugin-zenoh/transport"
	"github.com/e7canasta/gst-plugin-zenoh/transport/loopback"
)

func TestStartCreateStopLifecycle(t *testing.T) {
	reg := session.NewRegistry()
	cfg := config.DefaultSubscriberConfig()
	cfg.KeyExpr = "t/s"
	cfg.SessionGroup = "g"
	cfg.ReceiveTimeoutMS = 50
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

	// Publish directly on the same session so the FIFO has something
	// for Create to pop.
	handle, err := reg.Acquire(cfg.SessionGroup, transport.Config{}, loopback.Open)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	defer handle.Release()
	pub, err := handle.Session.DeclarePublisher("t/s", transport.QoS{Priority: 4, Reliability: transport.ReliabilityReliable, Congestion: transport.CongestionBlock})
	if err != nil {
		t.Fatalf("DeclarePublisher: %v", err)
	}
	defer pub.Undeclare()

	if err := pub.Put(context.Background(), []byte("payload"), ""); err != nil {
		t.Fatalf("Put: %v", err)
	}

	res, err := e.Create()
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if res.TryAgain || res.Done || res.Buffer == nil {
		t.Fatalf("Create result = %+v, want a buffer", res)
	}
	if string(res.Buffer.Payload) != "payload" {
		t.Errorf("payload = %q, want %q", res.Buffer.Payload, "payload")
	}
	if got := e.Stats.Snapshot().MessagesReceived; got != 1 {
		t.Errorf("MessagesReceived = %d, want 1", got)
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

func TestCreateTriesAgainOnEmptyFifo(t *testing.T) {
	reg := session.NewRegistry()
	cfg := config.DefaultSubscriberConfig()
	cfg.KeyExpr = "t/empty"
	cfg.ReceiveTimeoutMS = 10
	e := New(cfg)

	if err := e.Start(reg, loopback.Open); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer e.Stop()

	res, err := e.Create()
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !res.TryAgain {
		t.Errorf("TryAgain = false, want true on empty FIFO after timeout")
	}
}

func TestCreateWithoutStartIsStateConflict(t *testing.T) {
	cfg := config.DefaultSubscriberConfig()
	cfg.KeyExpr = "t/s"
	e := New(cfg)
	if _, err := e.Create(); err == nil {
		t.Fatal("Create before Start: err = nil, want error")
	}
}

func TestCreateSurfacesFeatureMissingAlongsideRawBuffer(t *testing.T) {
	reg := session.NewRegistry()
	cfg := config.DefaultSubscriberConfig()
	cfg.KeyExpr = "t/s6"
	cfg.SessionGroup = "g"
	cfg.ReceiveTimeoutMS = 50
	e := New(cfg)

	if err := e.Start(reg, loopback.Open); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer e.Stop()

	handle, err := reg.Acquire(cfg.SessionGroup, transport.Config{}, loopback.Open)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	defer handle.Release()
	pub, err := handle.Session.DeclarePublisher("t/s6", transport.QoS{Priority: 4, Reliability: transport.ReliabilityReliable, Congestion: transport.CongestionBlock})
	if err != nil {
		t.Fatalf("DeclarePublisher: %v", err)
	}
	defer pub.Undeclare()

	// Simulates a build that lacks this tag's codec (scenario S6) by using
	// a tag this build does not recognize at all.
	if err := pub.Put(context.Background(), []byte("zeros"), "gst.version=1.0\ngst.compression=brotli\n"); err != nil {
		t.Fatalf("Put: %v", err)
	}

	res, err := e.Create()
	if err == nil {
		t.Fatal("Create: err = nil, want FeatureMissing surfaced per scenario S6")
	}
	if res.Buffer == nil {
		t.Fatalf("Create result = %+v, want the raw buffer passed through alongside the error", res)
	}
	if got := e.Stats.Snapshot().Errors; got != 1 {
		t.Errorf("Errors = %d, want 1", got)
	}
}

func TestStopUnblocksInFlightCreate(t *testing.T) {
	reg := session.NewRegistry()
	cfg := config.DefaultSubscriberConfig()
	cfg.KeyExpr = "t/s"
	cfg.ReceiveTimeoutMS = 10000
	e := New(cfg)

	if err := e.Start(reg, loopback.Open); err != nil {
		t.Fatalf("Start: %v", err)
	}

	done := make(chan CreateResult, 1)
	go func() {
		res, _ := e.Create()
		done <- res
	}()

	time.Sleep(20 * time.Millisecond)
	if err := e.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}

	select {
	case res := <-done:
		if !res.Done {
			t.Errorf("Create result = %+v, want Done", res)
		}
	case <-time.After(time.Second):
		t.Fatal("Stop did not unblock the in-flight Create promptly")
	}
}
