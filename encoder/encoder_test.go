package encoder

import (
	"encoding/binary"
	"testing"
)

func TestFlacEncoder(t *testing.T) {
	enc, err := NewFlac()
	if err != nil {
		t.Fatalf("NewFlac: %v", err)
	}

	samples := make([]int16, BlockSize*3+100)
	for i := range samples {
		samples[i] = int16(i % 1000)
	}

	var totalFed uint64
	for i := 0; i < len(samples); i += BlockSize {
		end := i + BlockSize
		if end > len(samples) {
			end = len(samples)
		}
		block := samples[i:end]
		if err := enc.EncodeBlock(block); err != nil {
			t.Fatalf("EncodeBlock at offset %d: %v", i, err)
		}
		totalFed += uint64(len(block))
	}

	if err := enc.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if enc.TotalFrames() != totalFed {
		t.Errorf("TotalFrames = %d, want %d", enc.TotalFrames(), totalFed)
	}

	flacData := enc.Bytes()
	if len(flacData) < 4 || string(flacData[:4]) != "fLaC" {
		t.Fatal("output does not start with FLAC magic")
	}
}

func TestFlacEncoderEmpty(t *testing.T) {
	enc, err := NewFlac()
	if err != nil {
		t.Fatalf("NewFlac: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("Close on empty encoder: %v", err)
	}
	if enc.TotalFrames() != 0 {
		t.Errorf("TotalFrames = %d, want 0", enc.TotalFrames())
	}
	if len(enc.Bytes()) == 0 {
		t.Error("expected non-empty FLAC output (at least header)")
	}
}

func TestWavEncoder(t *testing.T) {
	enc := NewWav()
	samples := make([]int16, 1000)
	for i := range samples {
		samples[i] = int16(i)
	}
	if err := enc.EncodeBlock(samples); err != nil {
		t.Fatal(err)
	}
	if err := enc.Close(); err != nil {
		t.Fatal(err)
	}

	data := enc.Bytes()
	if len(data) != wavHeaderSize+len(samples)*2 {
		t.Fatalf("wav size = %d, want %d", len(data), wavHeaderSize+len(samples)*2)
	}
	if string(data[:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		t.Fatal("missing RIFF/WAVE magic")
	}
	if got := binary.LittleEndian.Uint32(data[24:]); got != SampleRate {
		t.Errorf("sample rate = %d, want %d", got, SampleRate)
	}
	if got := binary.LittleEndian.Uint32(data[40:]); got != uint32(len(samples)*2) {
		t.Errorf("data chunk size = %d, want %d", got, len(samples)*2)
	}
}

func TestEncodeWholeBuffer(t *testing.T) {
	pcm := make([]byte, BlockSize*2*2+64)
	for _, format := range []string{"flac", "wav"} {
		out, err := Encode(pcm, format)
		if err != nil {
			t.Fatalf("Encode(%s): %v", format, err)
		}
		if len(out) == 0 {
			t.Fatalf("Encode(%s): empty output", format)
		}
	}
	if _, err := Encode(pcm, "ogg"); err == nil {
		t.Fatal("expected error for unknown format")
	}
}
