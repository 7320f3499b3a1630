package fusion

import "fmt"

// SystemPrompt fixes the output schema and the authoring rules for the model.
const SystemPrompt = `You are a research synthesis assistant. Your job is to analyze
interview transcripts and other research documents, then generate structured
mind maps based on the user's analytical focus.

You MUST return ONLY valid JSON with no additional text, markdown, or explanation.
The JSON must follow this exact structure:
{
  "title": "descriptive title for this view",
  "nodes": [
    {"id": "unique_id", "label": "short label", "description": "brief description"}
  ],
  "edges": [
    {"source": "node_id", "target": "node_id", "relationship": "describes the connection"}
  ]
}

Guidelines:
- Create meaningful hierarchical relationships
- Use the edge "relationship" field to explain WHY nodes connect
- Limit to 30-50 nodes for readability
- Group related concepts under parent nodes
- Node IDs should be simple strings like "node1", "node2", etc.
- Every edge must reference existing node IDs
- "description" and "relationship" are optional; "id", "label", "source" and "target" are required`

// UserMessage embeds the corpus and the analytical request.
func UserMessage(corpus, prompt string) string {
	return fmt.Sprintf(`I have uploaded research documents. Here is the combined content:

---
%s
---

My request: %s

Generate a mind map that addresses my request. Return ONLY valid JSON.`, corpus, prompt)
}
