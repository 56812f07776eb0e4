package tool

import (
	"encoding/json"
	"strings"

	mimirErrors "github.com/harunnryd/mimir/internal/errors"
	"github.com/harunnryd/mimir/internal/model/contract"
)

// Decode resolves a model-emitted call against the advertised tool set,
// validates its arguments and returns the typed payload. It is the only place
// tool names are looked up.
func Decode(call *contract.ToolCall) (Call, error) {
	if call == nil {
		return nil, mimirErrors.InvalidInput("nil tool call")
	}

	name := strings.TrimSpace(call.Name)
	schema, ok := compiled[name]
	if !ok {
		return nil, mimirErrors.UnknownTool(call.Name)
	}

	raw := strings.TrimSpace(call.Input)
	if raw == "" {
		raw = "{}"
	}

	var generic interface{}
	if err := json.Unmarshal([]byte(raw), &generic); err != nil {
		return nil, mimirErrors.InvalidToolArguments(name, err)
	}
	if err := schema.Validate(generic); err != nil {
		return nil, mimirErrors.InvalidToolArguments(name, err)
	}

	switch name {
	case NameIngestYouTubeVideo:
		var c IngestVideo
		if err := json.Unmarshal([]byte(raw), &c); err != nil {
			return nil, mimirErrors.InvalidToolArguments(name, err)
		}
		c.YouTubeURL = strings.TrimSpace(c.YouTubeURL)
		return c, nil
	case NameIngestWebsite:
		var c IngestWebsite
		if err := json.Unmarshal([]byte(raw), &c); err != nil {
			return nil, mimirErrors.InvalidToolArguments(name, err)
		}
		c.WebsiteURL = strings.TrimSpace(c.WebsiteURL)
		return c, nil
	default:
		return nil, mimirErrors.UnknownTool(call.Name)
	}
}
