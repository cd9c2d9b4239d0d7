package speech

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

// Playback is a handle to one in-flight playback. Starting playback for a
// new message implies stopping the previous handle first; that single-owner
// policy is enforced by the caller, not here.
type Playback interface {
	Stop()
}

// Player abstracts the target environment's audio output. Implementations
// vary per platform; the synthesizer contract does not depend on the
// choice.
type Player interface {
	PlayPCM(pcm []byte, sampleRate int) (Playback, error)
}

// Listener abstracts the target environment's speech capture. Start blocks
// until an utterance has been transcribed to text.
type Listener interface {
	Start(ctx context.Context) (string, error)
	Stop()
}

// TypedListener satisfies Listener with typed lines instead of captured
// audio. It stands in for speech recognition on targets without a
// microphone; each Start returns the next line of input.
type TypedListener struct {
	In io.Reader

	once sync.Once
	r    *bufio.Reader
}

func (l *TypedListener) Start(ctx context.Context) (string, error) {
	l.once.Do(func() {
		l.r = bufio.NewReader(l.In)
	})

	type result struct {
		line string
		err  error
	}

	ch := make(chan result, 1)
	go func() {
		line, err := l.r.ReadString('\n')
		ch <- result{line: strings.TrimSpace(line), err: err}
	}()

	select {
	case res := <-ch:
		if res.line == "" && res.err != nil {
			return "", res.err
		}
		return res.line, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (l *TypedListener) Stop() {}

// WAVFilePlayer renders each utterance to a WAV file instead of an audio
// device. Useful on headless targets and for the CLI.
type WAVFilePlayer struct {
	Path string
}

func (p *WAVFilePlayer) PlayPCM(pcm []byte, sampleRate int) (Playback, error) {
	audio := &Audio{PCM: pcm, SampleRate: sampleRate, Channels: 1}
	if err := os.WriteFile(p.Path, WAV(audio), 0o644); err != nil {
		return nil, fmt.Errorf("speech: write %s: %w", p.Path, err)
	}
	return noopPlayback{}, nil
}

type noopPlayback struct{}

func (noopPlayback) Stop() {}
