package agent

import (
	"github.com/harunnryd/mimir/internal/model/contract"
)

// MissingMessage is the content Extract reports when no reply can be found.
const MissingMessage = "Error finding message"

// Extraction is the final answer of a transcript and, when a tool ran, its result.
type Extraction struct {
	Content        string
	ToolContext    string
	HasToolContext bool
}

// Extract picks the reply out of a transcript. A final assistant message that
// directly follows a tool result carries that result as tool context.
func Extract(messages []contract.Message) Extraction {
	n := len(messages)
	if n == 0 {
		return Extraction{Content: MissingMessage}
	}

	last := messages[n-1]
	if last.Role == contract.RoleAssistant && n >= 2 && messages[n-2].Role == contract.RoleTool {
		return Extraction{
			Content:        last.Content,
			ToolContext:    messages[n-2].Content,
			HasToolContext: true,
		}
	}

	if last.Role != "" {
		return Extraction{Content: last.Content}
	}

	return Extraction{Content: MissingMessage}
}
