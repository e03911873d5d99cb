package audio

// CopyFile re-encodes in as 16 bit PCM and returns the source's frame count
// and sample rate
func CopyFile(in, out string) (frames, rate int, err error) {
	a, err := Read(in)
	if err != nil {
		return 0, 0, err
	}
	if err := Write(out, a); err != nil {
		return 0, 0, err
	}
	return a.Frames(), a.SampleRate, nil
}

// ResampleFile writes in at rate into out and returns the written frame count
func ResampleFile(in, out string, rate int) (int, error) {
	a, err := Read(in)
	if err != nil {
		return 0, err
	}
	resampled := Resample(a, rate)
	if err := Write(out, resampled); err != nil {
		return 0, err
	}
	return resampled.Frames(), nil
}

// StereoToMonoFile writes the channel average of in into out
func StereoToMonoFile(in, out string) error {
	a, err := Read(in)
	if err != nil {
		return err
	}
	return Write(out, ToMono(a))
}

// NormalizeFile writes the peak normalized in into out
func NormalizeFile(in, out string) error {
	a, err := Read(in)
	if err != nil {
		return err
	}
	return Write(out, NormalizePeak(a))
}

// RemoveSilenceFile writes the trimmed in into out and returns the new
// duration in seconds
func RemoveSilenceFile(in, out string, opts SilenceOptions) (float64, error) {
	a, err := Read(in)
	if err != nil {
		return 0, err
	}
	trimmed, err := RemoveSilence(a, opts)
	if err != nil {
		return 0, err
	}
	if err := Write(out, trimmed); err != nil {
		return 0, err
	}
	return trimmed.Duration(), nil
}
