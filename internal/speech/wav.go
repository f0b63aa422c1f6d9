package speech

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const (
	bitDepth      = 16
	pcmFormat     = 1
	monoChannels  = 1
	wavTempPrefix = "interview-answer-*.wav"
)

// EncodeWAV renders the recording as a 16-bit mono PCM WAV file.
func EncodeWAV(rec *Recording) ([]byte, error) {
	if rec == nil || len(rec.Samples) == 0 {
		return nil, errors.New("recording is empty")
	}

	// The encoder seeks back to patch the header sizes, so it needs a file.
	f, err := os.CreateTemp("", wavTempPrefix)
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(f.Name())
	defer f.Close()

	data := make([]int, len(rec.Samples))
	for i, s := range rec.Samples {
		data[i] = int(s)
	}

	enc := wav.NewEncoder(f, rec.SampleRate, bitDepth, monoChannels, pcmFormat)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: monoChannels, SampleRate: rec.SampleRate},
		Data:           data,
		SourceBitDepth: bitDepth,
	}

	if err := enc.Write(buf); err != nil {
		return nil, fmt.Errorf("write samples: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("finalize wav: %w", err)
	}

	return os.ReadFile(f.Name())
}
