package beep

import "testing"

func TestToneLengthAndEnvelope(t *testing.T) {
	samples := tone(1000, 0.1, 0.5, 50)
	if want := int(sampleRate * 0.1); len(samples) != want {
		t.Fatalf("tone length = %d, want %d", len(samples), want)
	}

	// Peak near the start should dominate the tail.
	var headMax, tailMax int16
	for _, s := range samples[:len(samples)/10] {
		if s > headMax {
			headMax = s
		}
	}
	for _, s := range samples[len(samples)*9/10:] {
		if s > tailMax {
			tailMax = s
		}
	}
	if headMax == 0 {
		t.Fatal("tone is silent")
	}
	if tailMax >= headMax {
		t.Fatalf("envelope does not decay: head %d, tail %d", headMax, tailMax)
	}
}

func TestDoubleToneHasSilentGap(t *testing.T) {
	samples := doubleTone(400, 0.05, 0.03, 0.5, 30)
	burstLen := int(sampleRate * 0.05)
	gapLen := int(sampleRate * 0.03)
	if want := burstLen*2 + gapLen; len(samples) != want {
		t.Fatalf("double tone length = %d, want %d", len(samples), want)
	}
	for i := burstLen; i < burstLen+gapLen; i++ {
		if samples[i] != 0 {
			t.Fatalf("gap sample %d = %d, want silence", i, samples[i])
		}
	}
}

func TestStereoInterleaves(t *testing.T) {
	mono := []int16{1, -2, 3}
	st := stereo(mono)
	if len(st) != 6 {
		t.Fatalf("stereo length = %d, want 6", len(st))
	}
	for i, s := range mono {
		if st[i*2] != s || st[i*2+1] != s {
			t.Fatalf("sample %d not duplicated: %v", i, st)
		}
	}
}
