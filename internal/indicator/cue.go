package indicator

import (
	"math"
	"time"
)

const cueSampleRate = 16000

// note is one pitch in a chime; zero hz is a rest.
type note struct {
	hz     float64
	length time.Duration
}

type chime struct {
	notes []note
	gain  float64
}

const (
	cueGain = 0.18
	cueRest = 22 * time.Millisecond
	fadeCap = 5 * time.Millisecond
)

var cueChimes = map[cueKind]chime{
	// rising pair
	cueListen: {gain: cueGain, notes: []note{{880, 70 * time.Millisecond}, {0, cueRest}, {1175, 70 * time.Millisecond}}},
	cueHeard:  {gain: cueGain, notes: []note{{740, 65 * time.Millisecond}, {0, cueRest}, {988, 90 * time.Millisecond}}},
	// falling pair
	cueError: {gain: cueGain, notes: []note{{480, 75 * time.Millisecond}, {0, cueRest}, {360, 90 * time.Millisecond}}},
}

var renderedCues = func() map[cueKind][]int16 {
	out := make(map[cueKind][]int16, len(cueChimes))
	for kind, c := range cueChimes {
		out[kind] = c.render()
	}
	return out
}()

func cueSamples(kind cueKind) []int16 {
	return renderedCues[kind]
}

func (c chime) render() []int16 {
	var pcm []int16
	for _, n := range c.notes {
		if n.hz <= 0 {
			pcm = append(pcm, make([]int16, sampleCount(n.length))...)
			continue
		}
		pcm = append(pcm, tone(n.hz, n.length, c.gain)...)
	}
	return pcm
}

// tone renders a sine with a short linear fade at both ends so it starts and ends on zero.
func tone(hz float64, length time.Duration, gain float64) []int16 {
	n := sampleCount(length)
	if n <= 0 || hz <= 0 || gain <= 0 {
		return nil
	}
	fade := float64(min(max(n/10, 1), sampleCount(fadeCap)))

	pcm := make([]int16, n)
	step := 2 * math.Pi * hz / cueSampleRate
	for i := range pcm {
		edge := float64(min(i, n-1-i))
		level := gain * math.Min(1, edge/fade)
		pcm[i] = int16(math.Round(math.Sin(step*float64(i)) * level * math.MaxInt16))
	}
	return pcm
}

func sampleCount(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(math.Round(d.Seconds() * cueSampleRate))
}
