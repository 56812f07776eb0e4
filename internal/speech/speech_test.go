package speech

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/harunnryd/mimir/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestSynthesize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/text-to-speech/voice-1", r.URL.Path)
		assert.Equal(t, "key-123", r.Header.Get("xi-api-key"))
		assert.Equal(t, "audio/mpeg", r.Header.Get("Accept"))

		var body ttsRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "hello there", body.Text)
		assert.Equal(t, "model-1", body.ModelID)

		w.Header().Set("Content-Type", "audio/mpeg")
		_, _ = w.Write([]byte("ID3audio"))
	}))
	defer srv.Close()

	e, err := NewElevenLabs(config.SpeechConfig{BaseURL: srv.URL + "/", APIKey: "key-123", VoiceID: "voice-1", ModelID: "model-1"})
	require.NoError(t, err)

	assert.Equal(t, []byte("ID3audio"), e.Synthesize(context.Background(), "hello there"))
}

func TestSynthesize_ReturnsNilOnFailure(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail":"invalid key"}`))
	}))
	defer srv.Close()

	e, err := NewElevenLabs(config.SpeechConfig{BaseURL: srv.URL, APIKey: "bad"})
	require.NoError(t, err)
	assert.Nil(t, e.Synthesize(context.Background(), "hello"))
	assert.Nil(t, e.Synthesize(context.Background(), "   "))
	assert.Equal(t, int32(1), hits.Load())

	keyless, err := NewElevenLabs(config.SpeechConfig{BaseURL: srv.URL})
	require.NoError(t, err)
	assert.False(t, keyless.Configured())
	assert.Nil(t, keyless.Synthesize(context.Background(), "hello"))
	assert.Equal(t, int32(1), hits.Load())
}

func TestNewElevenLabs_BadTimeout(t *testing.T) {
	_, err := NewElevenLabs(config.SpeechConfig{Timeout: "soon"})
	assert.Error(t, err)
}

type MockSynth struct{ mock.Mock }

func (m *MockSynth) Synthesize(ctx context.Context, text string) []byte {
	args := m.Called(ctx, text)
	if b := args.Get(0); b != nil {
		return b.([]byte)
	}
	return nil
}

type MockStore struct{ mock.Mock }

func (m *MockStore) Upload(ctx context.Context, name string, audio []byte, chatID string, ts time.Time) bool {
	return m.Called(ctx, name, audio, chatID, ts).Bool(0)
}

func (m *MockStore) Presign(ctx context.Context, name string) (string, bool) {
	args := m.Called(ctx, name)
	return args.String(0), args.Bool(1)
}

func TestNarrate(t *testing.T) {
	ctx := context.Background()
	fixed := time.Unix(1700000000, 0)
	isMP3 := mock.MatchedBy(func(name string) bool { return strings.HasSuffix(name, ".mp3") })

	synth := &MockSynth{}
	synth.On("Synthesize", ctx, "hi").Return([]byte("audio"))
	store := &MockStore{}
	store.On("Upload", ctx, isMP3, []byte("audio"), "chat-1", fixed).Return(true)
	store.On("Presign", ctx, isMP3).Return("https://bucket/link.mp3", true)

	n := NewNarrator(synth, store)
	n.now = func() time.Time { return fixed }

	link, ok := n.Narrate(ctx, "chat-1", "hi")
	require.True(t, ok)
	assert.Equal(t, "https://bucket/link.mp3", link)
	synth.AssertExpectations(t)
	store.AssertExpectations(t)
}

func TestNarrate_StopsAtFirstFailure(t *testing.T) {
	ctx := context.Background()

	silent := &MockSynth{}
	silent.On("Synthesize", ctx, "hi").Return(nil)
	store := &MockStore{}
	_, ok := NewNarrator(silent, store).Narrate(ctx, "chat-1", "hi")
	assert.False(t, ok)
	store.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)

	synth := &MockSynth{}
	synth.On("Synthesize", ctx, "hi").Return([]byte("audio"))
	failing := &MockStore{}
	failing.On("Upload", ctx, mock.Anything, []byte("audio"), "chat-1", mock.Anything).Return(false)
	_, ok = NewNarrator(synth, failing).Narrate(ctx, "chat-1", "hi")
	assert.False(t, ok)
	failing.AssertNotCalled(t, "Presign", mock.Anything, mock.Anything)

	var nilNarrator *Narrator
	_, ok = nilNarrator.Narrate(ctx, "chat-1", "hi")
	assert.False(t, ok)
}
