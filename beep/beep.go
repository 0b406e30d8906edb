// Package beep plays short audible cues when shortcuts start and stop being
// blocked.
package beep

import "math"

var disabled bool

func Disable() { disabled = true }

const (
	sampleRate = 44100

	// Start: rising pair, blocking is on
	startLow    = 660
	startHigh   = 990
	startVolume = 0.45
	startDecay  = 50

	// End: single mid tick, shortcuts are back
	endFreq   = 880
	endVolume = 0.45
	endDecay  = 40

	// Error: low double beep, the tap could not be installed
	errorFreq   = 330
	errorVolume = 0.6
	errorDecay  = 30
)

// tone renders a decaying sine as little-endian signed 16-bit mono PCM.
func tone(freq, duration, volume, decay float64) []byte {
	n := int(sampleRate * duration)
	buf := make([]byte, n*2)
	for i := 0; i < n; i++ {
		t := float64(i) / sampleRate
		envelope := math.Exp(-t * decay)
		sample := int16(math.Sin(2*math.Pi*freq*t) * 32767 * volume * envelope)
		buf[i*2] = byte(sample)
		buf[i*2+1] = byte(sample >> 8)
	}
	return buf
}

func silence(duration float64) []byte {
	return make([]byte, int(sampleRate*duration)*2)
}

func concat(parts ...[]byte) []byte {
	var n int
	for _, p := range parts {
		n += len(p)
	}
	out := make([]byte, 0, n)
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func startCue() []byte {
	return concat(
		tone(startLow, 0.05, startVolume, startDecay),
		silence(0.02),
		tone(startHigh, 0.05, startVolume, startDecay),
	)
}

func endCue() []byte {
	return tone(endFreq, 0.06, endVolume, endDecay)
}

func errorCue() []byte {
	b := tone(errorFreq, 0.08, errorVolume, errorDecay)
	return concat(b, silence(0.05), b)
}
