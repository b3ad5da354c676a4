// internal/advisor/prompt.go
package advisor

import (
	"fmt"

	"github.com/jclermont/advisor/internal/llm"
)

// systemPrompt encodes the grounding contract: the model recommends only from
// the supplied context, cites course codes, reasons about prerequisite
// chains, and admits when nothing relevant exists.
const systemPrompt = `You are a helpful course advisor assistant. Your role is to help students find the right courses based on their interests, goals, and background.

IMPORTANT RULES:
1. ONLY recommend courses from the provided context. Never make up courses.
2. Always cite course codes (e.g., CPSC 340) when mentioning courses.
3. Consider prerequisites when making recommendations.
4. Be encouraging but realistic about course difficulty.
5. If the context doesn't contain relevant courses, say so honestly.

When recommending courses:
- Explain WHY each course fits the student's needs
- Mention prerequisites if relevant
- Suggest a logical order if recommending multiple courses
- Note the course level (First Year, Graduate, etc.) to set expectations

Keep responses concise but informative. Use bullet points for multiple recommendations.`

// buildMessages assembles the full chat sequence: system instructions, prior
// turns oldest-first, then the current question with its retrieved context.
func buildMessages(contextBlock string, turns []Turn, question string) []llm.ChatMessage {
	messages := make([]llm.ChatMessage, 0, 2*len(turns)+2)
	messages = append(messages, llm.ChatMessage{Role: "system", Content: systemPrompt})

	for _, turn := range turns {
		messages = append(messages,
			llm.ChatMessage{Role: "user", Content: turn.Question},
			llm.ChatMessage{Role: "assistant", Content: turn.Answer},
		)
	}

	userPrompt := fmt.Sprintf(`Based on the following courses, please help answer the student's question.

AVAILABLE COURSES:
%s

STUDENT'S QUESTION: %s

Provide a helpful response recommending relevant courses from the list above.`, contextBlock, question)

	return append(messages, llm.ChatMessage{Role: "user", Content: userPrompt})
}
