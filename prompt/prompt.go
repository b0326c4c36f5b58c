// Package prompt builds the message sequences sent to the answering model.
// Construction is pure so the same inputs always produce the same request.
package prompt

import (
	"fmt"

	"screen-assistant/llm"
	"screen-assistant/session"
)

const systemPrompt = `You are an expert programming assistant. You help solve coding questions, assignments, and assessments.

Your response guidelines:
- Be brief and concise - focus on the solution
- Format your response in Markdown
- Use proper code blocks with language specification for syntax highlighting (e.g., ` + "```python, ```java, ```cpp" + `)
- Include only essential explanations
- If the question has multiple parts, address each briefly
- Prioritize working code over lengthy explanations`

const userPromptFormat = `Solve the following coding question/assignment. Provide a brief, working solution in Markdown format with properly formatted code blocks.

Question/Assignment:
%s

Solution:`

// Build assembles the full chat context: system prompt, prior exchanges as
// alternating user/assistant turns, then the current question.
func Build(extractedText string, history []session.Exchange) []llm.Message {
	messages := make([]llm.Message, 0, 2+2*len(history))
	messages = append(messages, llm.TextMessage("system", systemPrompt))

	for _, exchange := range history {
		messages = append(messages,
			llm.TextMessage("user", fmt.Sprintf(userPromptFormat, exchange.Question)),
			llm.TextMessage("assistant", exchange.Answer),
		)
	}

	messages = append(messages, llm.TextMessage("user", fmt.Sprintf(userPromptFormat, extractedText)))
	return messages
}
