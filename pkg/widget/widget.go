// Package widget implements the chat-widget session logic headlessly:
// a linear transcript, the free-tier message gate, and speech capture
// and playback behind capability interfaces. The transport, counter
// store and speech engines are all injectable, so the widget behaves
// identically in a browser shell, a CLI, or a test.
package widget

import (
	"context"
	"errors"
	"sync"
)

// DefaultFreeLimit is the anonymous free-tier ceiling.
const DefaultFreeLimit = 3

// ApologyReply replaces the assistant turn when a request fails.
// A failed turn carries no images and is never spoken.
const ApologyReply = "Sorry, I couldn't get a response. Please try again."

var (
	ErrBusy              = errors.New("widget: a request is already in flight")
	ErrLoginRequired     = errors.New("widget: free message limit reached, login required")
	ErrSpeechUnavailable = errors.New("widget: speech capture is not available")
)

// State is the widget's turn-cycle state.
type State int

const (
	StateIdle State = iota
	StateAwaiting
	StateListening
	StateLoginPrompt
)

// Message is one transcript entry.
type Message struct {
	Role   string // "user" or "assistant"
	Text   string
	Images []string
}

// Reply is what the transport returns for one user turn.
type Reply struct {
	Text   string
	Images []string
}

// Sender is the widget's network transport.
type Sender interface {
	Send(ctx context.Context, message string) (*Reply, error)
}

// CounterStore persists the count of user turns across widget
// instances, mirroring the browser-storage counter. Counts only grow.
type CounterStore interface {
	Count() int
	Increment()
}

// MemoryCounter is the default in-process CounterStore.
type MemoryCounter struct {
	mu    sync.Mutex
	count int
}

func (c *MemoryCounter) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}

func (c *MemoryCounter) Increment() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.count++
}

// Widget holds one chat session's client-side state.
type Widget struct {
	mu sync.Mutex

	sender  Sender
	counter CounterStore
	stt     SpeechToText
	tts     TextToSpeech

	freeLimit  int // 0 means unlimited
	muted      bool
	state      State
	transcript []Message
}

type Option func(*Widget)

// WithFreeLimit sets the anonymous ceiling; 0 disables the gate, as
// for authenticated contexts.
func WithFreeLimit(limit int) Option {
	return func(w *Widget) { w.freeLimit = limit }
}

func WithCounter(counter CounterStore) Option {
	return func(w *Widget) { w.counter = counter }
}

func WithSpeech(stt SpeechToText, tts TextToSpeech) Option {
	return func(w *Widget) {
		if stt != nil {
			w.stt = stt
		}
		if tts != nil {
			w.tts = tts
		}
	}
}

func New(sender Sender, opts ...Option) *Widget {
	w := &Widget{
		sender:    sender,
		counter:   &MemoryCounter{},
		stt:       NoopSpeech{},
		tts:       NoopSpeech{},
		freeLimit: DefaultFreeLimit,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *Widget) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Transcript returns a copy of the message history.
func (w *Widget) Transcript() []Message {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]Message, len(w.transcript))
	copy(out, w.transcript)
	return out
}

// Submit runs one user turn: gate check, transcript append, request,
// reply append, playback. At or above the ceiling no network call is
// made and the widget enters the login prompt instead.
func (w *Widget) Submit(ctx context.Context, text string) error {
	w.mu.Lock()
	if w.state == StateAwaiting || w.state == StateListening {
		w.mu.Unlock()
		return ErrBusy
	}
	if w.freeLimit > 0 && w.counter.Count() >= w.freeLimit {
		w.state = StateLoginPrompt
		w.mu.Unlock()
		return ErrLoginRequired
	}

	w.transcript = append(w.transcript, Message{Role: "user", Text: text})
	w.counter.Increment()
	w.state = StateAwaiting
	w.mu.Unlock()

	reply, err := w.sender.Send(ctx, text)

	w.mu.Lock()
	w.state = StateIdle
	if err != nil {
		w.transcript = append(w.transcript, Message{Role: "assistant", Text: ApologyReply})
		w.mu.Unlock()
		return err
	}

	w.transcript = append(w.transcript, Message{
		Role:   "assistant",
		Text:   reply.Text,
		Images: reply.Images,
	})
	w.mu.Unlock()

	w.speakLatest()
	return nil
}

// Listen captures one utterance and, on success, submits the
// transcript as if typed.
func (w *Widget) Listen(ctx context.Context) error {
	w.mu.Lock()
	if w.state != StateIdle {
		w.mu.Unlock()
		return ErrBusy
	}
	w.state = StateListening
	w.tts.Cancel()
	w.mu.Unlock()

	text, err := w.stt.Capture(ctx)

	w.mu.Lock()
	w.state = StateIdle
	w.mu.Unlock()

	if err != nil {
		return err
	}
	return w.Submit(ctx, text)
}

// AcknowledgeLoginPrompt dismisses the login call-to-action.
func (w *Widget) AcknowledgeLoginPrompt() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state == StateLoginPrompt {
		w.state = StateIdle
	}
}

// SetAuthenticated removes the free-tier gate after a login.
func (w *Widget) SetAuthenticated() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.freeLimit = 0
	if w.state == StateLoginPrompt {
		w.state = StateIdle
	}
}

// SetMuted toggles playback. Muting cancels any current speech.
func (w *Widget) SetMuted(muted bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.muted = muted
	if muted {
		w.tts.Cancel()
	}
}

// speakLatest plays the newest assistant turn, cancelling rather than
// queueing behind any playback already running. Skipped while muted or
// listening.
func (w *Widget) speakLatest() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.muted || w.state == StateListening {
		return
	}
	for i := len(w.transcript) - 1; i >= 0; i-- {
		if w.transcript[i].Role == "assistant" {
			w.tts.Cancel()
			w.tts.Speak(w.transcript[i].Text)
			return
		}
	}
}
