package speech

import (
	"context"
	"fmt"
	"math"
	"time"
)

const (
	DefaultCalibration = time.Second
	DefaultTimeout     = 15 * time.Second
	DefaultPhraseLimit = 60 * time.Second
	DefaultPause       = 800 * time.Millisecond
	DefaultMinEnergy   = 300

	energyRatio = 1.5
)

// Stream is an open capture of mono 16-bit samples.
type Stream interface {
	ReadFrame() ([]int16, error)
	Close() error
}

// Microphone opens capture streams on an input device.
type Microphone interface {
	Open() (Stream, error)
	SampleRate() int
}

// ListenConfig bounds one capture. Durations are measured in captured audio,
// not wall clock time.
type ListenConfig struct {
	Calibration time.Duration `mapstructure:"calibration"`
	Timeout     time.Duration `mapstructure:"timeout"`
	PhraseLimit time.Duration `mapstructure:"phrase-limit"`
	Pause       time.Duration `mapstructure:"pause"`
	MinEnergy   float64       `mapstructure:"min-energy"`
}

func (c ListenConfig) withDefaults() ListenConfig {
	if c.Calibration <= 0 {
		c.Calibration = DefaultCalibration
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.PhraseLimit <= 0 {
		c.PhraseLimit = DefaultPhraseLimit
	}
	if c.Pause <= 0 {
		c.Pause = DefaultPause
	}
	if c.MinEnergy <= 0 {
		c.MinEnergy = DefaultMinEnergy
	}
	return c
}

// Recording is one captured utterance.
type Recording struct {
	SampleRate int
	Samples    []int16
	// Threshold is the energy level calibrated from ambient noise.
	Threshold float64
}

func (r *Recording) Duration() time.Duration {
	if r == nil || r.SampleRate <= 0 {
		return 0
	}
	return frameDuration(len(r.Samples), r.SampleRate)
}

// Listener calibrates against ambient noise, waits for speech and records it
// until a pause.
type Listener struct {
	mic Microphone
	cfg ListenConfig
}

func NewListener(mic Microphone, cfg ListenConfig) *Listener {
	return &Listener{mic: mic, cfg: cfg.withDefaults()}
}

func (l *Listener) Record(ctx context.Context) (*Recording, error) {
	if l.mic == nil {
		return nil, fmt.Errorf("%w: no microphone", ErrServiceUnavailable)
	}

	rate := l.mic.SampleRate()
	if rate <= 0 {
		return nil, fmt.Errorf("%w: invalid sample rate %d", ErrServiceUnavailable, rate)
	}

	stream, err := l.mic.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: opening microphone: %v", ErrServiceUnavailable, err)
	}
	defer stream.Close()

	read := func() ([]int16, time.Duration, error) {
		if err := ctx.Err(); err != nil {
			return nil, 0, err
		}
		frame, err := stream.ReadFrame()
		if err != nil {
			return nil, 0, fmt.Errorf("%w: reading microphone: %v", ErrServiceUnavailable, err)
		}
		if len(frame) == 0 {
			return nil, 0, fmt.Errorf("%w: microphone returned an empty frame", ErrServiceUnavailable)
		}
		return frame, frameDuration(len(frame), rate), nil
	}

	var (
		ambient  float64
		frames   int
		measured time.Duration
	)
	for measured < l.cfg.Calibration {
		frame, d, err := read()
		if err != nil {
			return nil, err
		}
		ambient += energy(frame)
		frames++
		measured += d
	}

	threshold := math.Max(l.cfg.MinEnergy, ambient/float64(frames)*energyRatio)

	var (
		waited time.Duration
		first  []int16
	)
	for {
		frame, d, err := read()
		if err != nil {
			return nil, err
		}
		if energy(frame) > threshold {
			first = frame
			break
		}
		waited += d
		if waited >= l.cfg.Timeout {
			return nil, fmt.Errorf("%w within %s", ErrNoSpeech, l.cfg.Timeout)
		}
	}

	samples := append([]int16(nil), first...)
	recorded := frameDuration(len(first), rate)
	var silence time.Duration
	for recorded < l.cfg.PhraseLimit {
		frame, d, err := read()
		if err != nil {
			return nil, err
		}

		samples = append(samples, frame...)
		recorded += d

		if energy(frame) > threshold {
			silence = 0
			continue
		}

		silence += d
		if silence >= l.cfg.Pause {
			break
		}
	}

	return &Recording{SampleRate: rate, Samples: samples, Threshold: threshold}, nil
}

// energy is the root mean square amplitude of frame.
func energy(frame []int16) float64 {
	if len(frame) == 0 {
		return 0
	}

	var sum float64
	for _, s := range frame {
		v := float64(s)
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(frame)))
}

func frameDuration(samples, rate int) time.Duration {
	return time.Duration(samples) * time.Second / time.Duration(rate)
}
