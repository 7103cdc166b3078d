package zenohsink

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/e7canasta/gst-plugin-zenoh/config"
	"github.com/e7canasta/gst-plugin-zenoh/envelope"
	"github.com/e7canasta/gst-plugin-zenoh/transport"
)

type fakePublisher struct {
	puts    []fakePut
	failNTh int // if > 0, the n-th Put (1-indexed) fails
	calls   int
}

type fakePut struct {
	payload    []byte
	attachment string
}

func (p *fakePublisher) Put(ctx context.Context, payload []byte, attachment string) error {
	p.calls++
	if p.failNTh > 0 && p.calls == p.failNTh {
		return errors.New("transport put failed")
	}
	p.puts = append(p.puts, fakePut{payload: append([]byte{}, payload...), attachment: attachment})
	return nil
}

func (p *fakePublisher) Undeclare() error { return nil }

func i64(n int64) *int64 { return &n }

func TestRenderPublishesWithVersionOnly(t *testing.T) {
	pub := &fakePublisher{}
	cfg := config.DefaultPublisherConfig()
	cfg.SendCaps = false
	cfg.SendBufferMeta = false
	var caps CapsState

	out := render(context.Background(), pub, cfg, &caps, time.Now(), RenderInput{Payload: []byte("x")})
	if !out.published {
		t.Fatalf("render: not published, err=%v", out.publishErr)
	}
	if len(pub.puts) != 1 || pub.puts[0].attachment != "gst.version=1.0\n" {
		t.Errorf("puts = %+v, want single version-only attachment", pub.puts)
	}
}

func TestRenderSendsBufferMetaWhenEnabled(t *testing.T) {
	pub := &fakePublisher{}
	cfg := config.DefaultPublisherConfig()
	cfg.SendCaps = false
	cfg.SendBufferMeta = true
	var caps CapsState

	render(context.Background(), pub, cfg, &caps, time.Now(), RenderInput{
		Payload: []byte("x"),
		Meta:    BufferMeta{PTS: i64(42)},
	})

	env := envelope.Decode(pub.puts[0].attachment)
	if env.PTS == nil || *env.PTS != 42 {
		t.Errorf("decoded PTS = %v, want 42", env.PTS)
	}
}

func TestRenderSendsCapsOnFirstBuffer(t *testing.T) {
	pub := &fakePublisher{}
	cfg := config.DefaultPublisherConfig()
	cfg.SendCaps = true
	var caps CapsState

	render(context.Background(), pub, cfg, &caps, time.Now(), RenderInput{Payload: []byte("x"), Caps: "video/x-raw"})

	env := envelope.Decode(pub.puts[0].attachment)
	if env.Caps == nil || *env.Caps != "video/x-raw" {
		t.Errorf("decoded Caps = %v, want video/x-raw", env.Caps)
	}
}

func TestRenderOmitsCapsWhenUnchangedAndIntervalNotElapsed(t *testing.T) {
	pub := &fakePublisher{}
	cfg := config.DefaultPublisherConfig()
	cfg.SendCaps = true
	cfg.CapsIntervalSeconds = 100
	var caps CapsState
	now := time.Now()

	render(context.Background(), pub, cfg, &caps, now, RenderInput{Payload: []byte("a"), Caps: "video/x-raw"})
	render(context.Background(), pub, cfg, &caps, now.Add(time.Second), RenderInput{Payload: []byte("b"), Caps: "video/x-raw"})

	env := envelope.Decode(pub.puts[1].attachment)
	if env.Caps != nil {
		t.Errorf("second buffer carried caps %v, want none (unchanged, interval not elapsed)", env.Caps)
	}
}

func TestRenderResendsCapsOnChange(t *testing.T) {
	pub := &fakePublisher{}
	cfg := config.DefaultPublisherConfig()
	cfg.SendCaps = true
	cfg.CapsIntervalSeconds = 100
	var caps CapsState
	now := time.Now()

	render(context.Background(), pub, cfg, &caps, now, RenderInput{Payload: []byte("a"), Caps: "video/x-raw,width=8"})
	render(context.Background(), pub, cfg, &caps, now.Add(time.Second), RenderInput{Payload: []byte("b"), Caps: "video/x-raw,width=16"})

	env := envelope.Decode(pub.puts[1].attachment)
	if env.Caps == nil || *env.Caps != "video/x-raw,width=16" {
		t.Errorf("second buffer Caps = %v, want changed caps resent", env.Caps)
	}
}

func TestRenderResendsCapsAfterInterval(t *testing.T) {
	pub := &fakePublisher{}
	cfg := config.DefaultPublisherConfig()
	cfg.SendCaps = true
	cfg.CapsIntervalSeconds = 2
	var caps CapsState
	now := time.Now()

	render(context.Background(), pub, cfg, &caps, now, RenderInput{Payload: []byte("a"), Caps: "video/x-raw"})
	render(context.Background(), pub, cfg, &caps, now.Add(3*time.Second), RenderInput{Payload: []byte("b"), Caps: "video/x-raw"})

	env := envelope.Decode(pub.puts[1].attachment)
	if env.Caps == nil {
		t.Errorf("second buffer carried no caps, want interval-triggered resend")
	}
}

func TestRenderCompressesAndTagsPayload(t *testing.T) {
	pub := &fakePublisher{}
	cfg := config.DefaultPublisherConfig()
	cfg.Compression = envelope.CompressionZstd
	cfg.CompressionLevel = 3
	var caps CapsState

	payload := make([]byte, 4096)
	render(context.Background(), pub, cfg, &caps, time.Now(), RenderInput{Payload: payload})

	env := envelope.Decode(pub.puts[0].attachment)
	if env.Compression != envelope.CompressionZstd {
		t.Errorf("Compression = %v, want zstd", env.Compression)
	}
	if len(pub.puts[0].payload) >= len(payload) {
		t.Errorf("published payload not smaller than input: %d vs %d", len(pub.puts[0].payload), len(payload))
	}
}

func TestRenderFailOpenOnUnknownCompressionTag(t *testing.T) {
	pub := &fakePublisher{}
	cfg := config.DefaultPublisherConfig()
	cfg.Compression = envelope.Compression("brotli")
	var caps CapsState

	out := render(context.Background(), pub, cfg, &caps, time.Now(), RenderInput{Payload: []byte("hello")})
	if !out.published {
		t.Fatalf("render with unknown compression tag did not publish: %v", out.publishErr)
	}
	env := envelope.Decode(pub.puts[0].attachment)
	if env.Compression != "" && env.Compression != envelope.CompressionNone {
		t.Errorf("Compression = %v, want omitted (fail-open)", env.Compression)
	}
	if string(pub.puts[0].payload) != "hello" {
		t.Errorf("payload = %q, want uncompressed original", pub.puts[0].payload)
	}
}

func TestRenderPublishFailureUnderBlockSurfacesError(t *testing.T) {
	pub := &fakePublisher{failNTh: 1}
	cfg := config.DefaultPublisherConfig()
	cfg.QoS.Congestion = transport.CongestionBlock
	var caps CapsState

	out := render(context.Background(), pub, cfg, &caps, time.Now(), RenderInput{Payload: []byte("x")})
	if out.surfaceErr == nil {
		t.Errorf("surfaceErr = nil under block policy, want error")
	}
	if out.publishErr == nil {
		t.Errorf("publishErr = nil, want error (always counted)")
	}
}

func TestRenderPublishFailureUnderDropSwallowsError(t *testing.T) {
	pub := &fakePublisher{failNTh: 1}
	cfg := config.DefaultPublisherConfig()
	cfg.QoS.Congestion = transport.CongestionDrop
	var caps CapsState

	out := render(context.Background(), pub, cfg, &caps, time.Now(), RenderInput{Payload: []byte("x")})
	if out.surfaceErr != nil {
		t.Errorf("surfaceErr = %v under drop policy, want nil", out.surfaceErr)
	}
	if out.publishErr == nil {
		t.Errorf("publishErr = nil, want error (always counted even under drop)")
	}
}
