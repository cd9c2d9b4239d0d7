package speech

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"
)

// Default values for speech synthesis.
const (
	DefaultModel = "gemini-2.5-flash-preview-tts"
	DefaultVoice = "Kore"

	// SampleRate is the fixed output rate the service produces.
	SampleRate = 24000
	// BitsPerSample of the signed little-endian PCM output.
	BitsPerSample = 16
)

// GenerationError reports a failed synthesis request or a response that
// carried no audio payload.
type GenerationError struct {
	Reason string
	Err    error
}

func (e *GenerationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("speech: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("speech: %s", e.Reason)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// Audio is raw 16-bit signed little-endian mono PCM. Playback is entirely
// the caller's responsibility; the synthesizer never manages it.
type Audio struct {
	PCM        []byte
	SampleRate int
	Channels   int
}

// Duration of the clip.
func (a *Audio) Duration() time.Duration {
	bytesPerSecond := a.SampleRate * a.Channels * BitsPerSample / 8
	if bytesPerSecond == 0 {
		return 0
	}
	return time.Duration(len(a.PCM)) * time.Second / time.Duration(bytesPerSecond)
}

// Synthesizer converts assistant text into playable audio samples using a
// single prebuilt voice.
type Synthesizer struct {
	client *genai.Client
	model  string
	voice  string
}

func NewSynthesizer(client *genai.Client, model, voice string) *Synthesizer {
	if model == "" {
		model = DefaultModel
	}
	if voice == "" {
		voice = DefaultVoice
	}
	return &Synthesizer{client: client, model: model, voice: voice}
}

// Speak issues one synthesis request and returns the decoded PCM samples.
// Markdown emphasis markers are stripped first so the voice does not read
// formatting characters aloud.
func (s *Synthesizer) Speak(ctx context.Context, text string) (*Audio, error) {
	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: StripMarkdown(text)},
			},
		},
	}

	cfg := &genai.GenerateContentConfig{
		ResponseModalities: []string{"AUDIO"},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{
					VoiceName: s.voice,
				},
			},
		},
	}

	resp, err := s.client.Models.GenerateContent(ctx, s.model, contents, cfg)
	if err != nil {
		return nil, &GenerationError{Reason: "generate audio", Err: err}
	}

	pcm := firstAudioPayload(resp)
	if len(pcm) == 0 {
		return nil, &GenerationError{Reason: "no audio payload in response"}
	}

	return &Audio{PCM: pcm, SampleRate: SampleRate, Channels: 1}, nil
}

// firstAudioPayload walks the response parts for inline audio data. The SDK
// has already base64-decoded the blob by the time it lands here.
func firstAudioPayload(resp *genai.GenerateContentResponse) []byte {
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				return part.InlineData.Data
			}
		}
	}
	return nil
}

var markdownStripper = strings.NewReplacer("*", "", "#", "", "_", "", "`", "")

// StripMarkdown removes emphasis markers before the text is sent for
// synthesis.
func StripMarkdown(text string) string {
	return markdownStripper.Replace(text)
}
