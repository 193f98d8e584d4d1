package assistant

import (
	"regexp"
	"strings"

	"github.com/sagecampus/sage-assistant-go/internal/storage"
)

// courseCodePattern matches course codes like "CMPE 113" inside assistant
// turns.
var courseCodePattern = regexp.MustCompile(`\b[A-Z]{2,4}\s*\d{3}\b`)

// maxCodesPerTurn caps how many course codes one assistant turn
// contributes to the expanded query.
const maxCodesPerTurn = 2

// ExpandQuery folds recent conversation history into the retrieval query
// so follow-up questions ("who teaches this course?") still retrieve the
// course under discussion. User turns contribute their raw text;
// assistant turns contribute up to two course codes. The expanded string
// is used for retrieval only and never reaches the completion prompt.
func ExpandQuery(current string, history []storage.Message, window int) string {
	if window <= 0 || len(history) == 0 {
		return current
	}

	recent := history
	if len(recent) > window {
		recent = recent[len(recent)-window:]
	}

	var parts []string
	for _, msg := range recent {
		switch msg.Role {
		case storage.RoleUser:
			parts = append(parts, msg.Content)
		case storage.RoleAssistant:
			codes := courseCodePattern.FindAllString(msg.Content, maxCodesPerTurn)
			parts = append(parts, codes...)
		}
	}

	if len(parts) == 0 {
		return current
	}

	return strings.Join(parts, " ") + " " + current
}
