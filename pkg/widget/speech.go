package widget

import "context"

// SpeechToText captures one utterance and returns its transcript.
// Cancel aborts an in-flight capture.
type SpeechToText interface {
	Capture(ctx context.Context) (string, error)
	Cancel()
}

// TextToSpeech plays a reply aloud. Speak replaces any current
// playback; it never queues. Cancel stops playback immediately.
type TextToSpeech interface {
	Speak(text string)
	Cancel()
}

// NoopSpeech is the fallback when the platform offers no speech
// capability. Capture reports unavailability, playback is silent.
type NoopSpeech struct{}

func (NoopSpeech) Capture(ctx context.Context) (string, error) {
	return "", ErrSpeechUnavailable
}

func (NoopSpeech) Cancel() {}

func (NoopSpeech) Speak(text string) {}
