package agent

import (
	"testing"

	"github.com/harunnryd/mimir/internal/model/contract"

	"github.com/stretchr/testify/assert"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name     string
		messages []contract.Message
		want     Extraction
	}{
		{
			name:     "empty transcript",
			messages: nil,
			want:     Extraction{Content: MissingMessage},
		},
		{
			name: "plain reply",
			messages: []contract.Message{
				{Role: contract.RoleSystem, Content: "sys"},
				{Role: contract.RoleUser, Content: "hi"},
				{Role: contract.RoleAssistant, Content: "hello"},
			},
			want: Extraction{Content: "hello"},
		},
		{
			name: "follow-up after tool",
			messages: []contract.Message{
				{Role: contract.RoleUser, Content: "ingest"},
				{Role: contract.RoleAssistant, ToolCalls: []*contract.ToolCall{{ID: "1", Name: "ingest_website"}}},
				{Role: contract.RoleTool, ToolCallID: "1", Content: "Website ingested"},
				{Role: contract.RoleAssistant, Content: "Done, I read it."},
			},
			want: Extraction{Content: "Done, I read it.", ToolContext: "Website ingested", HasToolContext: true},
		},
		{
			name: "pending tool call",
			messages: []contract.Message{
				{Role: contract.RoleUser, Content: "ingest"},
				{Role: contract.RoleAssistant, ToolCalls: []*contract.ToolCall{{ID: "1", Name: "ingest_website"}}},
			},
			want: Extraction{Content: ""},
		},
		{
			name: "unrecognized shape",
			messages: []contract.Message{
				{Role: contract.RoleUser, Content: "hi"},
				{},
			},
			want: Extraction{Content: MissingMessage},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				assert.Equal(t, tt.want, Extract(tt.messages))
			})
		})
	}
}

func TestConversationReply(t *testing.T) {
	var conv *Conversation
	assert.Equal(t, MissingMessage, conv.Reply().Content)

	conv = &Conversation{Messages: []contract.Message{{Role: contract.RoleAssistant, Content: "ok"}}}
	assert.Equal(t, Extraction{Content: "ok"}, conv.Reply())
}
