package syllabus

import (
	"fmt"

	"github.com/sandevgo/syllabot/internal/core"
)

const extractionSystemPrompt = `You are an educational AI assistant that analyzes syllabus content and extracts important topics. 
            Analyze the syllabus and identify 5-8 most important topics that students should focus on.
            For each topic, determine its importance level (high, medium, or low) and provide a brief description.
            Format your response as a JSON array of objects with fields: title, importance, description.
            Example: [{"title": "Algebra Basics", "importance": "high", "description": "Foundation of mathematical operations"}]`

const chatSystemPrompt = `You are a helpful educational AI assistant. Answer questions about the following syllabus in a simple, clear, and understandable way. Use analogies and examples when helpful. Break down complex concepts into easy-to-understand explanations.
            
Syllabus Title: %s
Syllabus Content:
%s`

func buildExtractionMessages(content string) []core.Message {
	return []core.Message{
		{Role: core.RoleSystem, Content: extractionSystemPrompt},
		{Role: core.RoleUser, Content: "Analyze this syllabus and extract important topics:\n\n" + content},
	}
}

// buildChatMessages embeds the syllabus verbatim. fmt verbs inside title or
// content are not interpreted since they are passed as arguments.
func buildChatMessages(syl core.Syllabus, message string) []core.Message {
	return []core.Message{
		{Role: core.RoleSystem, Content: fmt.Sprintf(chatSystemPrompt, syl.Title, syl.Content)},
		{Role: core.RoleUser, Content: message},
	}
}
