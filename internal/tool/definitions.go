package tool

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/harunnryd/mimir/internal/model/contract"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

type definition struct {
	name        string
	description string
	schema      string
}

var definitions = []definition{
	{
		name:        NameIngestYouTubeVideo,
		description: "Given a YouTube URL, add the video's transcript to the knowledge base.",
		schema: `{
			"type": "object",
			"properties": {
				"youtube_url": {
					"type": "string",
					"minLength": 1,
					"description": "The URL of the YouTube video. Should start with https://www.youtube.com/watch?v="
				}
			},
			"required": ["youtube_url"]
		}`,
	},
	{
		name:        NameIngestWebsite,
		description: "Given a website URL that is NOT YouTube, add its HTML contents to the knowledge base.",
		schema: `{
			"type": "object",
			"properties": {
				"website_url": {
					"type": "string",
					"minLength": 1,
					"description": "A website url."
				}
			},
			"required": ["website_url"]
		}`,
	},
}

var compiled = mustCompile(definitions)

// Definitions returns the advertised tool set, in a fixed order.
func Definitions() []contract.ToolDef {
	defs := make([]contract.ToolDef, 0, len(definitions))
	for _, d := range definitions {
		var params map[string]interface{}
		if err := json.Unmarshal([]byte(d.schema), &params); err != nil {
			panic(fmt.Sprintf("tool: schema for %s: %v", d.name, err))
		}
		defs = append(defs, contract.ToolDef{
			Name:        d.name,
			Description: d.description,
			Parameters:  params,
		})
	}
	return defs
}

func mustCompile(defs []definition) map[string]*jsonschema.Schema {
	out := make(map[string]*jsonschema.Schema, len(defs))
	for _, d := range defs {
		c := jsonschema.NewCompiler()
		c.Draft = jsonschema.Draft2020
		schemaURL := fmt.Sprintf("https://mimir.schemas.local/tools/%s.schema.json", d.name)
		if err := c.AddResource(schemaURL, strings.NewReader(d.schema)); err != nil {
			panic(fmt.Sprintf("tool: schema load for %s: %v", d.name, err))
		}
		schema, err := c.Compile(schemaURL)
		if err != nil {
			panic(fmt.Sprintf("tool: schema compile for %s: %v", d.name, err))
		}
		out[d.name] = schema
	}
	return out
}
