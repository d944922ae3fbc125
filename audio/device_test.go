package audio

import "testing"

func TestFindDevice(t *testing.T) {
	ctx := NewFakeContext(nil)

	if d := FindDevice(ctx, "fake"); d == nil || d.Name != "fake" {
		t.Fatalf("FindDevice(fake) = %v, want the fake device", d)
	}
	if d := FindDevice(ctx, "unplugged headset"); d != nil {
		t.Fatalf("FindDevice(missing) = %v, want nil", d)
	}
	if d := FindDevice(ctx, ""); d != nil {
		t.Fatalf("FindDevice(empty) = %v, want nil", d)
	}
}

func TestFakeContextCapture(t *testing.T) {
	pcm := make([]byte, 4096)
	ctx := NewFakeContext(pcm)

	dev, err := ctx.NewCapture(nil, CaptureConfig{SampleRate: SampleRate, Channels: Channels})
	if err != nil {
		t.Fatalf("NewCapture() error = %v", err)
	}
	defer dev.Close()

	c := NewController(dev, SampleRate, nil)
	if err := c.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	sess := c.Stop()
	if sess == nil {
		t.Fatal("Stop() returned no session")
	}
	if len(sess.PCM()) != len(pcm) {
		t.Fatalf("captured %d bytes, want %d", len(sess.PCM()), len(pcm))
	}
}
