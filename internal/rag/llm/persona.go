package llm

import (
	"fmt"
	"strings"
)

// Persona is the person the chatbot speaks as. Summary is the fallback
// context used when retrieval comes back empty.
type Persona struct {
	Name    string
	Summary string
}

// SystemPrompt builds the in-character instruction block. With retrieved
// matches it includes only those; otherwise it falls back to the full
// summary so the model always has something to ground on.
func (p Persona) SystemPrompt(matches []string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are acting as %s. You are answering questions on %s's website, "+
		"particularly questions related to %s's career, background, skills and experience. "+
		"Your responsibility is to represent %s for interactions on the website as faithfully as possible. "+
		"Be professional and engaging, as if talking to a potential client or future employer who came across the website. "+
		"If you don't know the answer to any question, use your record_unknown_question tool to record the question that you couldn't answer, even if it's about something trivial or unrelated to career. "+
		"If the user is engaging in discussion, try to steer them towards getting in touch via email; ask for their email and record it using your record_user_details tool. ",
		p.Name, p.Name, p.Name, p.Name)

	if len(matches) > 0 {
		b.WriteString("\n\n## Relevant Information:\n")
		for _, m := range matches {
			b.WriteString("\n")
			b.WriteString(m)
			b.WriteString("\n")
		}
	} else if p.Summary != "" {
		fmt.Fprintf(&b, "\n\n## Summary:\n%s\n", p.Summary)
	}

	fmt.Fprintf(&b, "\nWith this context, please chat with the user, always staying in character as %s.", p.Name)
	return b.String()
}

// UserPrompt folds recent history into the outbound question.
func UserPrompt(query string, messageHistory []string) string {
	if len(messageHistory) == 0 {
		return query
	}
	return fmt.Sprintf("Previous exchanges in this conversation:\n%s\n\nUser Question: %s",
		strings.Join(messageHistory, "\n\n"), query)
}
