package speech

import (
	"context"
	"log/slog"
	"time"

	"github.com/harunnryd/mimir/internal/storage"
)

type Synthesizer interface {
	Synthesize(ctx context.Context, text string) []byte
}

type ObjectStore interface {
	Upload(ctx context.Context, name string, audio []byte, chatID string, ts time.Time) bool
	Presign(ctx context.Context, name string) (string, bool)
}

// Narrator speaks a reply, uploads the audio and returns a playable link.
type Narrator struct {
	synth Synthesizer
	store ObjectStore
	now   func() time.Time
}

func NewNarrator(synth Synthesizer, store ObjectStore) *Narrator {
	return &Narrator{synth: synth, store: store, now: time.Now}
}

// Narrate returns the presigned link for text spoken aloud. The bool is false
// whenever any step is unavailable or fails; the chat reply is unaffected.
func (n *Narrator) Narrate(ctx context.Context, chatID, text string) (string, bool) {
	if n == nil || n.synth == nil || n.store == nil {
		return "", false
	}

	audio := n.synth.Synthesize(ctx, text)
	if len(audio) == 0 {
		return "", false
	}

	name := storage.NewAudioObjectName()
	if !n.store.Upload(ctx, name, audio, chatID, n.now()) {
		return "", false
	}

	link, ok := n.store.Presign(ctx, name)
	if !ok {
		return "", false
	}

	slog.Info("Audio reply ready", "chat_id", chatID, "object", name)
	return link, true
}
