package audio

// framer slices arbitrary PCM writes into chunkSizeBytes frames.
type framer struct {
	pending []byte
}

func (f *framer) push(p []byte) [][]byte {
	f.pending = append(f.pending, p...)
	frames := make([][]byte, 0, len(f.pending)/chunkSizeBytes)
	for len(f.pending) >= chunkSizeBytes {
		frame := make([]byte, chunkSizeBytes)
		copy(frame, f.pending)
		f.pending = f.pending[chunkSizeBytes:]
		frames = append(frames, frame)
	}
	return frames
}

// flush returns the partial tail frame, if any.
func (f *framer) flush() []byte {
	if len(f.pending) == 0 {
		return nil
	}
	tail := make([]byte, len(f.pending))
	copy(tail, f.pending)
	f.pending = nil
	return tail
}
