// Package beep plays short audio cues for recording start, stop, and
// failure. Playback never blocks the caller and failures are silent;
// a missing output device must not break dictation.
package beep

import "math"

var disabled bool

func Disable() { disabled = true }

const (
	sampleRate = 44100

	startFreq   = 1320
	startVolume = 0.45
	startDecay  = 55
	startDur    = 0.18

	endFreq   = 880
	endVolume = 0.45
	endDecay  = 35
	endDur    = 0.18

	errorFreq   = 330
	errorVolume = 0.6
	errorDecay  = 28
	errorDur    = 0.08
	errorGap    = 0.05
)

// tone synthesizes a mono sine burst with an exponential decay
// envelope so the cue sounds like a tick, not a dial tone.
func tone(freq, duration, volume, decay float64) []int16 {
	n := int(sampleRate * duration)
	samples := make([]int16, n)
	for i := 0; i < n; i++ {
		t := float64(i) / sampleRate
		envelope := math.Exp(-t * decay)
		samples[i] = int16(math.Sin(2*math.Pi*freq*t) * 32767 * volume * envelope)
	}
	return samples
}

// doubleTone is two bursts with a silent gap, used for the error cue.
func doubleTone(freq, burstDur, gapDur, volume, decay float64) []int16 {
	burst := tone(freq, burstDur, volume, decay)
	gap := make([]int16, int(sampleRate*gapDur))
	out := make([]int16, 0, len(burst)*2+len(gap))
	out = append(out, burst...)
	out = append(out, gap...)
	out = append(out, burst...)
	return out
}

// stereo duplicates each sample into interleaved L/R pairs for sinks
// that only accept two channels.
func stereo(mono []int16) []int16 {
	out := make([]int16, len(mono)*2)
	for i, s := range mono {
		out[i*2] = s
		out[i*2+1] = s
	}
	return out
}
