package ingest

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/harunnryd/mimir/internal/concurrency"
	"github.com/harunnryd/mimir/internal/config"
	mimirErrors "github.com/harunnryd/mimir/internal/errors"
	"github.com/harunnryd/mimir/internal/store"

	"github.com/google/uuid"
)

const (
	SourceWebsite = "website"
	SourceYouTube = "youtube"
)

// Embedder turns text into a vector with the named model.
type Embedder interface {
	RouteEmbedding(ctx context.Context, model string, text string) ([]float32, error)
}

// VectorStore is the slice of store.Worker ingestion needs.
type VectorStore interface {
	Upsert(ctx context.Context, collection string, docs []store.Document) error
	Search(ctx context.Context, collection string, vector []float32, limit int) ([]store.VectorResult, error)
	TrimSource(ctx context.Context, collection, sourceURL string, from int, idFor func(int) string) (int, error)
	CheckAndMarkKey(key string, ttl time.Duration) bool
	ForgetKey(key string)
}

// Service fetches websites and video transcripts and stores them as embedded chunks.
type Service struct {
	embedder       Embedder
	store          VectorStore
	client         *http.Client
	locks          *concurrency.KeyedMutex
	web            config.WebToolConfig
	youtube        config.YouTubeToolConfig
	collection     string
	embeddingModel string
	chunkSize      int
	chunkOverlap   int
	webTimeout     time.Duration
	youtubeTimeout time.Duration
	ttl            time.Duration
}

type Option func(*Service)

// WithHTTPClient replaces the client used for every outbound fetch.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Service) {
		if c != nil {
			s.client = c
		}
	}
}

func NewService(cfg *config.Config, embedder Embedder, vectors VectorStore, opts ...Option) (*Service, error) {
	if cfg == nil {
		return nil, mimirErrors.InvalidInput("ingest: config is required")
	}
	if embedder == nil || vectors == nil {
		return nil, mimirErrors.InvalidInput("ingest: embedder and store are required")
	}

	webTimeout, err := config.DurationOrDefault(cfg.Tools.Web.Timeout, config.DefaultWebToolTimeout)
	if err != nil {
		return nil, fmt.Errorf("tools.web.timeout: %w", err)
	}
	ytTimeout, err := config.DurationOrDefault(cfg.Tools.YouTube.Timeout, config.DefaultYouTubeTimeout)
	if err != nil {
		return nil, fmt.Errorf("tools.youtube.timeout: %w", err)
	}
	ttl, err := config.DurationOrDefault(cfg.Vector.IngestTTL, config.DefaultVectorIngestTTL)
	if err != nil {
		return nil, fmt.Errorf("vector.ingest_ttl: %w", err)
	}

	s := &Service{
		embedder:       embedder,
		store:          vectors,
		client:         &http.Client{},
		locks:          concurrency.NewKeyedMutex(),
		web:            cfg.Tools.Web,
		youtube:        cfg.Tools.YouTube,
		collection:     orDefault(cfg.Vector.Collection, config.DefaultVectorCollection),
		embeddingModel: orDefault(cfg.Models.Embedding, config.DefaultModelEmbedding),
		chunkSize:      cfg.Vector.ChunkSize,
		chunkOverlap:   cfg.Vector.ChunkOverlap,
		webTimeout:     webTimeout,
		youtubeTimeout: ytTimeout,
		ttl:            ttl,
	}
	if s.chunkSize <= 0 {
		s.chunkSize = config.DefaultVectorChunkSize
	}
	if s.web.MaxContentLength <= 0 {
		s.web.MaxContentLength = config.DefaultWebToolMaxContentLength
	}
	if s.web.UserAgent == "" {
		s.web.UserAgent = config.DefaultWebToolUserAgent
	}
	s.youtube.OEmbedURL = orDefault(s.youtube.OEmbedURL, config.DefaultYouTubeOEmbedURL)
	s.youtube.TranscriptURL = orDefault(s.youtube.TranscriptURL, config.DefaultYouTubeTranscriptURL)
	s.youtube.Language = orDefault(s.youtube.Language, config.DefaultYouTubeLanguage)

	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// IngestWebsite downloads a page, extracts its visible text and stores it.
func (s *Service) IngestWebsite(ctx context.Context, websiteURL string) (string, error) {
	target, err := validateWebsiteURL(websiteURL)
	if err != nil {
		return "", err
	}

	return s.ingest(ctx, "website:"+target, target, func(ctx context.Context) (string, string, error) {
		body, err := s.get(ctx, target, s.webTimeout, int64(s.web.MaxContentLength))
		if err != nil {
			return "", "", err
		}
		title, text, err := ExtractText(bytes.NewReader(body))
		if err != nil {
			return "", "", fmt.Errorf("parse html: %w", err)
		}
		if title == "" {
			title = target
		}
		return title, text, nil
	}, SourceWebsite)
}

// IngestVideo stores the transcript of a YouTube video.
func (s *Service) IngestVideo(ctx context.Context, youtubeURL string) (string, error) {
	videoID, err := ParseVideoID(youtubeURL)
	if err != nil {
		return "", err
	}
	source := watchURL(videoID)

	return s.ingest(ctx, "youtube:"+videoID, source, func(ctx context.Context) (string, string, error) {
		title, err := s.fetchVideoTitle(ctx, videoID)
		if err != nil {
			slog.Warn("Video title lookup failed", "video_id", videoID, "error", err)
		}
		if title == "" {
			title = videoID
		}
		transcript, err := s.fetchTranscript(ctx, videoID)
		if err != nil {
			return "", "", err
		}
		return title, transcript, nil
	}, SourceYouTube)
}

type fetchFunc func(ctx context.Context) (title, text string, err error)

func (s *Service) ingest(ctx context.Context, key, source string, fetch fetchFunc, sourceType string) (string, error) {
	unlock := s.locks.Lock(key)
	defer unlock()

	if !s.store.CheckAndMarkKey(key, s.ttl) {
		slog.Info("Skipping recently ingested source", "source", source)
		return fmt.Sprintf("%s was already ingested recently; skipping.", source), nil
	}

	msg, err := s.ingestFresh(ctx, source, fetch, sourceType)
	if err != nil {
		s.store.ForgetKey(key)
		slog.Error("Ingestion failed", "source", source, "type", sourceType, "error", err)
		return "", err
	}
	return msg, nil
}

func (s *Service) ingestFresh(ctx context.Context, source string, fetch fetchFunc, sourceType string) (string, error) {
	title, text, err := fetch(ctx)
	if err != nil {
		return "", err
	}

	chunks := Chunk(text, s.chunkSize, s.chunkOverlap)
	if len(chunks) == 0 {
		return "", mimirErrors.NotFound(fmt.Sprintf("no text content at %s", source))
	}

	docs := make([]store.Document, 0, len(chunks))
	for i, chunk := range chunks {
		vec, err := s.embedder.RouteEmbedding(ctx, s.embeddingModel, chunk)
		if err != nil {
			return "", fmt.Errorf("embed chunk %d: %w", i, err)
		}
		docs = append(docs, store.Document{
			ID:      ChunkID(source, i),
			Vector:  vec,
			Content: chunk,
			Metadata: map[string]string{
				store.MetaSourceURL:  source,
				store.MetaSourceType: sourceType,
				store.MetaTitle:      title,
				store.MetaChunk:      strconv.Itoa(i),
			},
		})
	}

	// Ids are stable per index, so the upsert overwrites earlier chunks in
	// place and only a longer previous version leaves a tail behind.
	if err := s.store.Upsert(ctx, s.collection, docs); err != nil {
		return "", fmt.Errorf("store chunks: %w", err)
	}
	stale, err := s.store.TrimSource(ctx, s.collection, source, len(docs), func(i int) string { return ChunkID(source, i) })
	if err != nil {
		return "", fmt.Errorf("trim previous chunks: %w", err)
	}

	slog.Info("Ingested source", "source", source, "type", sourceType, "chunks", len(docs), "trimmed", stale)
	return fmt.Sprintf("Ingested %q (%s) into the knowledge base as %d chunks.", title, source, len(docs)), nil
}

// ChunkID is stable for a source and chunk index.
func ChunkID(source string, index int) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(source+"#"+strconv.Itoa(index))).String()
}

func validateWebsiteURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "", mimirErrors.InvalidInput(fmt.Sprintf("invalid website URL %q", raw))
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", mimirErrors.InvalidInput(fmt.Sprintf("unsupported URL scheme %q", u.Scheme))
	}
	if IsYouTubeURL(raw) {
		return "", mimirErrors.InvalidInput("YouTube links must be ingested as videos")
	}
	u.Fragment = ""
	return u.String(), nil
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
