package wav

// DurationSeconds returns the playback length of a 16-bit PCM buffer.
func DurationSeconds(pcmLen int, sampleRate uint32, numChannels uint16) (float32, error) {
	if sampleRate == 0 || numChannels == 0 {
		return 0, newError(ErrInvalidFormatParameters, "sample rate %d, channels %d", sampleRate, numChannels)
	}
	bytesPerSecond := float64(sampleRate) * float64(numChannels) * 2
	return float32(float64(pcmLen) / bytesPerSecond), nil
}
