package audio

import (
	"fmt"
	"time"
)

// bytesPerSample is fixed: all clips are 16-bit mono linear PCM.
const bytesPerSample = 2

// Clip holds raw PCM samples for one synthesized script segment. A clip is
// owned by the assembly step that produced it and does not outlive one
// workflow run.
type Clip struct {
	pcm        []byte
	sampleRate int
}

// NewClip wraps raw 16-bit mono PCM bytes at the given sample rate. Odd
// trailing bytes are truncated to keep sample alignment.
func NewClip(pcm []byte, sampleRate int) (Clip, error) {
	if sampleRate <= 0 {
		return Clip{}, fmt.Errorf("audio clip: invalid sample rate %d", sampleRate)
	}
	if len(pcm)%bytesPerSample != 0 {
		pcm = pcm[:len(pcm)-len(pcm)%bytesPerSample]
	}
	return Clip{pcm: pcm, sampleRate: sampleRate}, nil
}

// SampleRate returns the clip's sample rate in Hz.
func (c Clip) SampleRate() int { return c.sampleRate }

// Samples returns the number of PCM samples in the clip.
func (c Clip) Samples() int { return len(c.pcm) / bytesPerSample }

// Duration returns the playback duration of the clip.
func (c Clip) Duration() time.Duration {
	if c.sampleRate <= 0 {
		return 0
	}
	return time.Duration(c.Samples()) * time.Second / time.Duration(c.sampleRate)
}
