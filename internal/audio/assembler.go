package audio

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"time"
)

// SegmentGap is the fixed silence inserted between consecutive clips. It is
// never added before the first clip or after the last.
const SegmentGap = 500 * time.Millisecond

// Assembler concatenates per-segment clips into one track.
type Assembler struct {
	sampleRate int
}

// NewAssembler constructs an assembler for clips at the given sample rate.
func NewAssembler(sampleRate int) (*Assembler, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("audio assembler: invalid sample rate %d", sampleRate)
	}
	return &Assembler{sampleRate: sampleRate}, nil
}

// Concat joins clips strictly in order with SegmentGap of silence between
// consecutive clips. Every clip must match the assembler's sample rate.
func (a *Assembler) Concat(clips []Clip) (Clip, error) {
	if len(clips) == 0 {
		return Clip{}, errors.New("audio assembler: no clips to concatenate")
	}

	gapBytes := a.gapSampleCount() * bytesPerSample
	total := gapBytes * (len(clips) - 1)
	for _, clip := range clips {
		if clip.sampleRate != a.sampleRate {
			return Clip{}, fmt.Errorf("audio assembler: clip sample rate %d does not match %d", clip.sampleRate, a.sampleRate)
		}
		total += len(clip.pcm)
	}

	combined := make([]byte, 0, total)
	silence := make([]byte, gapBytes)
	for i, clip := range clips {
		if i > 0 {
			combined = append(combined, silence...)
		}
		combined = append(combined, clip.pcm...)
	}
	return Clip{pcm: combined, sampleRate: a.sampleRate}, nil
}

func (a *Assembler) gapSampleCount() int {
	return int(SegmentGap * time.Duration(a.sampleRate) / time.Second)
}

// ExportWAV writes the clip to path as a 16-bit mono PCM WAV file.
func ExportWAV(path string, clip Clip) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export wav: create %s: %w", path, err)
	}
	writer := bufio.NewWriter(file)
	if err := WriteWAV(writer, clip); err != nil {
		_ = file.Close()
		return err
	}
	if err := writer.Flush(); err != nil {
		_ = file.Close()
		return fmt.Errorf("export wav: flush: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("export wav: close: %w", err)
	}
	return nil
}

// WriteWAV writes the clip as a canonical 44-byte-header WAV stream.
func WriteWAV(w io.Writer, clip Clip) error {
	if clip.sampleRate <= 0 {
		return errors.New("write wav: clip has no sample rate")
	}
	const (
		numChannels   = 1
		bitsPerSample = 16
	)
	dataLen := uint32(len(clip.pcm))
	byteRate := uint32(clip.sampleRate * numChannels * bytesPerSample)
	blockAlign := uint16(numChannels * bytesPerSample)

	var header [44]byte
	copy(header[0:4], "RIFF")
	binary.LittleEndian.PutUint32(header[4:8], 36+dataLen)
	copy(header[8:12], "WAVE")
	copy(header[12:16], "fmt ")
	binary.LittleEndian.PutUint32(header[16:20], 16)
	binary.LittleEndian.PutUint16(header[20:22], 1) // PCM
	binary.LittleEndian.PutUint16(header[22:24], numChannels)
	binary.LittleEndian.PutUint32(header[24:28], uint32(clip.sampleRate))
	binary.LittleEndian.PutUint32(header[28:32], byteRate)
	binary.LittleEndian.PutUint16(header[32:34], blockAlign)
	binary.LittleEndian.PutUint16(header[34:36], bitsPerSample)
	copy(header[36:40], "data")
	binary.LittleEndian.PutUint32(header[40:44], dataLen)

	if _, err := w.Write(header[:]); err != nil {
		return fmt.Errorf("write wav: header: %w", err)
	}
	if _, err := w.Write(clip.pcm); err != nil {
		return fmt.Errorf("write wav: samples: %w", err)
	}
	return nil
}
