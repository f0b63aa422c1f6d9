// Package mic captures audio from the default input device through PortAudio.
package mic

import (
	"errors"
	"fmt"

	"github.com/gordonklaus/portaudio"

	"github.com/spigell/voice-interviewer/internal/speech"
)

const (
	DefaultSampleRate      = 16000
	DefaultFramesPerBuffer = 1024
)

// Microphone is the default system input device.
type Microphone struct {
	sampleRate      int
	framesPerBuffer int
}

func New(sampleRate, framesPerBuffer int) *Microphone {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	if framesPerBuffer <= 0 {
		framesPerBuffer = DefaultFramesPerBuffer
	}
	return &Microphone{sampleRate: sampleRate, framesPerBuffer: framesPerBuffer}
}

func (m *Microphone) SampleRate() int {
	return m.sampleRate
}

// Open starts a mono capture stream. Each stream holds a PortAudio
// initialization until it is closed.
func (m *Microphone) Open() (speech.Stream, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("initialize portaudio: %w", err)
	}

	buf := make([]int16, m.framesPerBuffer)
	stream, err := portaudio.OpenDefaultStream(1, 0, float64(m.sampleRate), len(buf), buf)
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("open input stream: %w", err)
	}

	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return nil, fmt.Errorf("start input stream: %w", err)
	}

	return &inputStream{stream: stream, buf: buf}, nil
}

type inputStream struct {
	stream *portaudio.Stream
	buf    []int16
}

func (s *inputStream) ReadFrame() ([]int16, error) {
	// An overflow only means samples were dropped while we were busy.
	if err := s.stream.Read(); err != nil && !errors.Is(err, portaudio.InputOverflowed) {
		return nil, err
	}

	frame := make([]int16, len(s.buf))
	copy(frame, s.buf)
	return frame, nil
}

func (s *inputStream) Close() error {
	return errors.Join(s.stream.Stop(), s.stream.Close(), portaudio.Terminate())
}
