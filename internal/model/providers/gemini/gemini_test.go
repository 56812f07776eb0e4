package gemini

import (
	"testing"

	"github.com/harunnryd/mimir/internal/model/contract"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToContents(t *testing.T) {
	system, contents := toContents([]contract.Message{
		{Role: contract.RoleSystem, Content: "persona"},
		{Role: contract.RoleUser, Content: "ingest this"},
		{Role: contract.RoleAssistant, ToolCalls: []*contract.ToolCall{{ID: "call_1", Name: "ingest_website", Input: `{"website_url":"https://go.dev"}`}}},
		{Role: contract.RoleTool, ToolCallID: "call_1", Name: "ingest_website", Content: "Website ingested"},
	})

	require.NotNil(t, system)
	assert.Equal(t, "persona", system.Parts[0].Text)

	require.Len(t, contents, 3)
	assert.Equal(t, "user", contents[0].Role)

	assert.Equal(t, "model", contents[1].Role)
	call := contents[1].Parts[0].FunctionCall
	require.NotNil(t, call)
	assert.Equal(t, "ingest_website", call.Name)
	assert.Equal(t, "https://go.dev", call.Args["website_url"])

	resp := contents[2].Parts[0].FunctionResponse
	require.NotNil(t, resp)
	assert.Equal(t, "ingest_website", resp.Name)
	assert.Equal(t, "Website ingested", resp.Response["output"])
}

func TestToContents_NoSystem(t *testing.T) {
	system, contents := toContents([]contract.Message{{Role: contract.RoleUser, Content: "hi"}})
	assert.Nil(t, system)
	assert.Len(t, contents, 1)
}

func TestToTools(t *testing.T) {
	assert.Nil(t, toTools(nil))

	tools := toTools([]contract.ToolDef{{Name: "ingest_website", Description: "d", Parameters: map[string]interface{}{"type": "object"}}})
	require.Len(t, tools, 1)
	require.Len(t, tools[0].FunctionDeclarations, 1)
	assert.Equal(t, "ingest_website", tools[0].FunctionDeclarations[0].Name)
	assert.NotNil(t, tools[0].FunctionDeclarations[0].ParametersJsonSchema)
}
