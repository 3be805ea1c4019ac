// internal/workers/voice-command/classify-voice-command/prompt.go
package classifyvoicecommand

import (
	"strings"

	"google.golang.org/genai"

	"voice-command-workers/internal/models"
)

const promptHeader = `You are a voice command interpreter for a farming marketplace. Understand the user's spoken command and translate it into a structured action.

Respond with JSON only: { "action": "...", "target": "...", "payload": {...}, "feedback": "..." }

Actions:
1. "navigate": a navigation request. "target" must be one of the valid navigation targets below.
2. "addProduct": a request to add a product. "target" is the product name that was spoken.
3. "filter": a request to view a subset of data on a page. "target" is the data type (for example "orders") and "payload" holds the criteria (for example { "status": "Pending" }).
4. "unknown": the command is unclear or unrelated. Leave "target" and "payload" empty and ask the user to try again in "feedback".

Valid navigation targets:
`

const promptExamples = `
Examples:
- "Go to my products" -> { "action": "navigate", "target": "/farmer/products", "feedback": "Navigating to your products page." }
- "Show me my pending orders" -> { "action": "filter", "target": "orders", "payload": { "status": "Pending" }, "feedback": "Showing pending orders." }
- "Add a new product called Organic Bananas" -> { "action": "addProduct", "target": "Organic Bananas", "feedback": "Understood. Please fill in the rest of the details for Organic Bananas." }
- "What's the weather like?" -> { "action": "unknown", "target": "", "feedback": "Sorry, I can't help with that. Please state a valid command related to the app." }

Analyze the attached audio command and return the JSON.`

// BuildPrompt renders the classifier instruction for the given routes.
func BuildPrompt(routes []models.Route) string {
	var b strings.Builder
	b.WriteString(promptHeader)
	for _, r := range routes {
		b.WriteString("- ")
		b.WriteString(r.Path)
		b.WriteString(" (")
		b.WriteString(r.Label)
		b.WriteString(")\n")
	}
	b.WriteString(promptExamples)
	return b.String()
}

// responseSchema constrains Gemini output to the intent shape. The payload
// lists the filter criteria the host pages understand.
var responseSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"action": {
			Type: genai.TypeString,
			Enum: []string{"navigate", "addProduct", "filter", "unknown"},
		},
		"target": {Type: genai.TypeString},
		"payload": {
			Type:     genai.TypeObject,
			Nullable: genai.Ptr(true),
			Properties: map[string]*genai.Schema{
				"status":  {Type: genai.TypeString},
				"crop":    {Type: genai.TypeString},
				"product": {Type: genai.TypeString},
			},
		},
		"feedback": {Type: genai.TypeString},
	},
	Required: []string{"action", "target", "feedback"},
}
