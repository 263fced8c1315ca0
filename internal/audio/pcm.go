package audio

import (
	"encoding/binary"
	"math"
	"time"
)

// RMS returns the root-mean-square level of s16le PCM, normalized to [0,1].
func RMS(pcm []byte) float64 {
	samples := len(pcm) / 2
	if samples == 0 {
		return 0
	}
	var sum float64
	for i := 0; i+1 < len(pcm); i += 2 {
		v := float64(int16(binary.LittleEndian.Uint16(pcm[i:]))) / 32768
		sum += v * v
	}
	return math.Sqrt(sum / float64(samples))
}

// Float32 converts s16le PCM to samples in [-1,1).
func Float32(pcm []byte) []float32 {
	out := make([]float32, len(pcm)/2)
	for i := range out {
		out[i] = float32(int16(binary.LittleEndian.Uint16(pcm[2*i:]))) / 32768
	}
	return out
}

// Ints converts s16le PCM to integer samples.
func Ints(pcm []byte) []int {
	out := make([]int, len(pcm)/2)
	for i := range out {
		out[i] = int(int16(binary.LittleEndian.Uint16(pcm[2*i:])))
	}
	return out
}

// Duration reports how long n bytes of 16kHz mono s16 audio last.
func Duration(n int) time.Duration {
	return time.Duration(n/2) * time.Second / SampleRate
}
