package audio

import (
	"os"
	"path/filepath"
	"testing"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// ampSpan describes a stretch of constant-amplitude samples, amplitude in
// [0, 1] of full scale.
type ampSpan struct {
	Amplitude float64
	Samples   int
}

// writeTestWAV renders the spans as mono 16-bit PCM and writes a WAV file
// into the test's temp dir, returning its path.
func writeTestWAV(t *testing.T, sampleRate int, spans ...ampSpan) string {
	t.Helper()

	var data []int
	for _, span := range spans {
		amp := span.Amplitude
		if amp > 1 {
			amp = 1
		}
		if amp < 0 {
			amp = 0
		}
		value := int(amp * 32767)
		for i := 0; i < span.Samples; i++ {
			data = append(data, value)
		}
	}

	path := filepath.Join(t.TempDir(), "scratch.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create test WAV: %v", err)
	}

	enc := wav.NewEncoder(f, sampleRate, 16, 1, 1)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		f.Close()
		t.Fatalf("write test WAV: %v", err)
	}
	if err := enc.Close(); err != nil {
		f.Close()
		t.Fatalf("close test WAV encoder: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close test WAV: %v", err)
	}
	return path
}

// writeStereoWAV writes a two-channel WAV for the channel-count guard test.
func writeStereoWAV(t *testing.T, sampleRate, frames int) string {
	t.Helper()

	data := make([]int, 2*frames)
	for i := range data {
		data[i] = 1000
	}

	path := filepath.Join(t.TempDir(), "stereo.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create test WAV: %v", err)
	}

	enc := wav.NewEncoder(f, sampleRate, 16, 2, 1)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 2, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		f.Close()
		t.Fatalf("write test WAV: %v", err)
	}
	if err := enc.Close(); err != nil {
		f.Close()
		t.Fatalf("close test WAV encoder: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close test WAV: %v", err)
	}
	return path
}
