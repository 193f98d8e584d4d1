package assistant

import (
	"strings"

	"github.com/sagecampus/sage-assistant-go/internal/genai"
	"github.com/sagecampus/sage-assistant-go/internal/lang"
	"github.com/sagecampus/sage-assistant-go/internal/storage"
)

// Assemble builds the message list for one completion call. The social
// persona always carries an explicit language directive; the academic
// persona adds one only on the language repair attempt. History is
// windowed to the last historyWindow turns and copied verbatim; the
// input slice is never mutated. The user turn is the raw text, or text
// plus a blank line plus the non-empty context blocks in domain order.
func Assemble(persona Persona, tag lang.Tag, history []storage.Message, userText string, blocks []string, historyWindow int, retry bool) []genai.Message {
	msgs := make([]genai.Message, 0, len(history)+3)
	msgs = append(msgs, genai.SystemMessage(systemPrompt(persona, tag)))

	switch {
	case retry:
		msgs = append(msgs, genai.SystemMessage(retryDirective(tag)))
	case persona == Social:
		msgs = append(msgs, genai.SystemMessage(languageDirective(tag)))
	}

	recent := history
	if historyWindow > 0 && len(recent) > historyWindow {
		recent = recent[len(recent)-historyWindow:]
	}
	for _, msg := range recent {
		switch msg.Role {
		case storage.RoleAssistant:
			msgs = append(msgs, genai.AssistantMessage(msg.Content))
		case storage.RoleUser:
			msgs = append(msgs, genai.UserMessage(msg.Content))
		}
	}

	msgs = append(msgs, genai.UserMessage(userTurn(userText, blocks)))
	return msgs
}

// userTurn joins the raw input with the non-empty context blocks. With no
// context, the turn equals the raw text with no trailing appendage.
func userTurn(userText string, blocks []string) string {
	var kept []string
	for _, block := range blocks {
		if block != "" {
			kept = append(kept, block)
		}
	}
	if len(kept) == 0 {
		return userText
	}
	return userText + "\n\n" + strings.Join(kept, "\n\n")
}
