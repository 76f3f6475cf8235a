package wav

// Decoded is canonical 16-bit PCM plus the metadata a playback backend needs.
type Decoded struct {
	NumChannels   uint16
	SampleRate    uint32
	BitsPerSample uint16  // depth of the source data chunk
	Duration      float32 // seconds
	PCM16         []byte
}

// Decode runs Parse, To16Bit and DurationSeconds in sequence with a
// default parser.
func Decode(b []byte) (Decoded, error) {
	return NewParser().Decode(b)
}

// Decode runs Parse, To16Bit and DurationSeconds in sequence. Either the
// whole result or an error is returned.
func (p *Parser) Decode(b []byte) (Decoded, error) {
	log := p.log()

	res, err := p.Parse(b)
	if err != nil {
		return Decoded{}, err
	}

	pcm16, err := To16Bit(res.PCM, res.Format.BitsPerSample)
	if err != nil {
		log.Warn("PCM conversion failed", "bits_per_sample", res.Format.BitsPerSample, "error", err)
		return Decoded{}, err
	}
	if res.Format.BitsPerSample != 16 {
		log.Debug("converted PCM to 16-bit",
			"from_bits", res.Format.BitsPerSample,
			"in_bytes", len(res.PCM),
			"out_bytes", len(pcm16))
	}

	duration, err := DurationSeconds(len(pcm16), res.Format.SampleRate, res.Format.NumChannels)
	if err != nil {
		log.Warn("invalid format parameters", "error", err)
		return Decoded{}, err
	}

	return Decoded{
		NumChannels:   res.Format.NumChannels,
		SampleRate:    res.Format.SampleRate,
		BitsPerSample: res.Format.BitsPerSample,
		Duration:      duration,
		PCM16:         pcm16,
	}, nil
}
