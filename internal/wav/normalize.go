package wav

// To16Bit converts little-endian integer PCM at bitsPerSample to 16-bit
// little-endian PCM by keeping the two most significant bytes of each
// sample. There is no rounding or dither. Trailing bytes that do not form
// a whole sample are dropped. 16-bit input is returned as a copy.
func To16Bit(samples []byte, bitsPerSample uint16) ([]byte, error) {
	switch bitsPerSample {
	case 16:
		out := make([]byte, len(samples))
		copy(out, samples)
		return out, nil
	case 24:
		return keepTopBytes(samples, 3), nil
	case 32:
		return keepTopBytes(samples, 4), nil
	default:
		return nil, newError(ErrUnsupportedBitDepth, "%d bits per sample, want 16, 24 or 32", bitsPerSample)
	}
}

// keepTopBytes emits the last two bytes of every width-byte sample.
func keepTopBytes(samples []byte, width int) []byte {
	n := len(samples) / width
	out := make([]byte, n*2)
	for i := 0; i < n; i++ {
		src := i*width + width - 2
		out[i*2] = samples[src]
		out[i*2+1] = samples[src+1]
	}
	return out
}
