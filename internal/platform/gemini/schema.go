package gemini

import "google.golang.org/genai"

// documentSkeletonSchema is the strict response schema for stage-1
// structured-document calls: a titled document with ordered sections,
// each carrying a title, content lines, and an optional image prompt.
// The field names must match what the pipeline parses.
func documentSkeletonSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"title": {Type: genai.TypeString},
			"sections": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"title": {Type: genai.TypeString},
						"content": {
							Type:  genai.TypeArray,
							Items: &genai.Schema{Type: genai.TypeString},
						},
						"image_prompt": {Type: genai.TypeString},
					},
					Required: []string{"title", "content"},
				},
			},
		},
		Required: []string{"title", "sections"},
	}
}
