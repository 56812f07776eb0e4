// Package tool defines the closed set of functions the chat loop can advertise
// to a model, decodes model-emitted calls into typed payloads and dispatches them.
package tool

import (
	"context"
)

const (
	NameIngestYouTubeVideo = "ingest_youtube_video"
	NameIngestWebsite      = "ingest_website"
)

// Call is a decoded, validated tool invocation. The set of implementations is
// closed: only IngestVideo and IngestWebsite satisfy it.
type Call interface {
	ToolName() string
	sealed()
}

// IngestVideo asks for a YouTube video transcript to be added to the knowledge base.
type IngestVideo struct {
	YouTubeURL string `json:"youtube_url"`
}

func (IngestVideo) ToolName() string { return NameIngestYouTubeVideo }
func (IngestVideo) sealed()          {}

// IngestWebsite asks for a web page's visible text to be added to the knowledge base.
type IngestWebsite struct {
	WebsiteURL string `json:"website_url"`
}

func (IngestWebsite) ToolName() string { return NameIngestWebsite }
func (IngestWebsite) sealed()          {}

// Ingestor performs the work behind the ingestion tools.
type Ingestor interface {
	IngestVideo(ctx context.Context, youtubeURL string) (string, error)
	IngestWebsite(ctx context.Context, websiteURL string) (string, error)
}
