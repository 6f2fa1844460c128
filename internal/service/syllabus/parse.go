package syllabus

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sandevgo/syllabot/internal/core"
)

// MalformedOutputMessage is shown to the caller when the model reply cannot
// be turned into topics.
const MalformedOutputMessage = "The AI couldn't analyze the syllabus properly. Please ensure the content is clear and contains educational information."

type topicCandidate struct {
	Title       *string `json:"title" validate:"required,notblank"`
	Importance  *string `json:"importance" validate:"required,oneof=high medium low"`
	Description *string `json:"description" validate:"required"`
}

// parseTopics finds the outermost bracketed span of the reply and decodes it.
// Without any span the whole reply is tried. Elements are not coerced: one
// bad element rejects the reply.
func parseTopics(reply string) ([]core.TopicDraft, error) {
	raw := extractJSONArray(reply)
	if raw == "" {
		raw = strings.TrimSpace(reply)
	}

	var items []topicCandidate
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, malformed(fmt.Errorf("decode topics: %w", err))
	}
	if items == nil {
		return nil, malformed(fmt.Errorf("reply is not a JSON array"))
	}

	drafts := make([]core.TopicDraft, 0, len(items))
	for i, item := range items {
		if err := validateStruct(item); err != nil {
			return nil, malformed(fmt.Errorf("topic %d: %w", i, err))
		}
		drafts = append(drafts, core.TopicDraft{
			Title:       *item.Title,
			Importance:  core.Importance(*item.Importance),
			Description: *item.Description,
		})
	}
	return drafts, nil
}

func extractJSONArray(content string) string {
	start := strings.Index(content, "[")
	if start == -1 {
		return ""
	}

	end := strings.LastIndex(content[start:], "]")
	if end == -1 {
		return ""
	}

	return content[start : start+end+1]
}

func malformed(err error) error {
	return core.Wrap(core.ErrMalformedModelOutput, MalformedOutputMessage, err)
}
