package speech

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-audio/wav"
	"github.com/stretchr/testify/require"
)

const (
	testRate  = 1000
	frameSize = 100 // 100ms at testRate
)

type fakeMic struct {
	frames  [][]int16
	openErr error
	read    int
	reads   int
	closed  bool
}

func (m *fakeMic) SampleRate() int { return testRate }

func (m *fakeMic) Open() (Stream, error) {
	if m.openErr != nil {
		return nil, m.openErr
	}
	return m, nil
}

func (m *fakeMic) ReadFrame() ([]int16, error) {
	m.reads++
	if m.read >= len(m.frames) {
		return constant(10), nil
	}
	frame := m.frames[m.read]
	m.read++
	return frame, nil
}

func (m *fakeMic) Close() error {
	m.closed = true
	return nil
}

func constant(level int16) []int16 {
	frame := make([]int16, frameSize)
	for i := range frame {
		if i%2 == 0 {
			frame[i] = level
		} else {
			frame[i] = -level
		}
	}
	return frame
}

func repeat(frame []int16, n int) [][]int16 {
	frames := make([][]int16, n)
	for i := range frames {
		frames[i] = frame
	}
	return frames
}

func testConfig() ListenConfig {
	return ListenConfig{
		Calibration: 200 * time.Millisecond,
		Timeout:     time.Second,
		PhraseLimit: 3 * time.Second,
		Pause:       300 * time.Millisecond,
		MinEnergy:   100,
	}
}

func TestListenerRecordsUntilPause(t *testing.T) {
	var frames [][]int16
	frames = append(frames, repeat(constant(10), 2)...)   // calibration
	frames = append(frames, repeat(constant(10), 3)...)   // waiting
	frames = append(frames, repeat(constant(2000), 5)...) // speech
	frames = append(frames, repeat(constant(10), 3)...)   // pause

	mic := &fakeMic{frames: frames}
	rec, err := NewListener(mic, testConfig()).Record(context.Background())
	require.NoError(t, err)
	require.True(t, mic.closed)
	require.Equal(t, testRate, rec.SampleRate)
	require.Equal(t, 8*frameSize, len(rec.Samples))
	require.Equal(t, 800*time.Millisecond, rec.Duration())
	require.InDelta(t, 100, rec.Threshold, 0.001)
}

func TestListenerThresholdFollowsAmbientNoise(t *testing.T) {
	var frames [][]int16
	frames = append(frames, repeat(constant(1000), 2)...)
	// Loud enough for the floor but below 1.5x the ambient level.
	frames = append(frames, repeat(constant(1200), 10)...)

	_, err := NewListener(&fakeMic{frames: frames}, testConfig()).Record(context.Background())
	require.ErrorIs(t, err, ErrNoSpeech)
}

func TestListenerTimesOutWithoutSpeech(t *testing.T) {
	mic := &fakeMic{}
	_, err := NewListener(mic, testConfig()).Record(context.Background())
	require.ErrorIs(t, err, ErrNoSpeech)
	// 2 calibration frames plus 10 frames of waiting.
	require.Equal(t, 12, mic.reads)
}

func TestListenerStopsAtPhraseLimit(t *testing.T) {
	var frames [][]int16
	frames = append(frames, repeat(constant(10), 2)...)
	frames = append(frames, repeat(constant(3000), 100)...)

	rec, err := NewListener(&fakeMic{frames: frames}, testConfig()).Record(context.Background())
	require.NoError(t, err)
	require.Equal(t, 3*time.Second, rec.Duration())
}

func TestListenerDeviceErrors(t *testing.T) {
	_, err := NewListener(&fakeMic{openErr: errors.New("no default input device")}, testConfig()).Record(context.Background())
	require.ErrorIs(t, err, ErrServiceUnavailable)

	_, err = NewListener(failingMic{}, testConfig()).Record(context.Background())
	require.ErrorIs(t, err, ErrServiceUnavailable)

	_, err = NewListener(nil, testConfig()).Record(context.Background())
	require.ErrorIs(t, err, ErrServiceUnavailable)
}

type failingMic struct{}

func (failingMic) SampleRate() int { return testRate }

func (failingMic) Open() (Stream, error) { return failingMic{}, nil }

func (failingMic) ReadFrame() ([]int16, error) { return nil, errors.New("device lost") }

func (failingMic) Close() error { return nil }

func TestListenerHonoursCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewListener(&fakeMic{}, testConfig()).Record(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestEncodeWAV(t *testing.T) {
	rec := &Recording{SampleRate: 16000, Samples: []int16{0, 100, -100, 32767, -32768}}

	data, err := EncodeWAV(rec)
	require.NoError(t, err)
	require.Equal(t, "RIFF", string(data[:4]))

	dec := wav.NewDecoder(bytes.NewReader(data))
	require.True(t, dec.IsValidFile())

	buf, err := dec.FullPCMBuffer()
	require.NoError(t, err)
	require.Equal(t, 16000, buf.Format.SampleRate)
	require.Equal(t, 1, buf.Format.NumChannels)
	require.Equal(t, []int{0, 100, -100, 32767, -32768}, buf.Data)

	_, err = EncodeWAV(&Recording{SampleRate: 16000})
	require.Error(t, err)
}
