package assistant

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sagecampus/sage-assistant-go/internal/storage"
)

func userMsg(content string) storage.Message {
	return storage.Message{Role: storage.RoleUser, Content: content}
}

func assistantMsg(content string) storage.Message {
	return storage.Message{Role: storage.RoleAssistant, Content: content}
}

func TestExpandQueryNoHistory(t *testing.T) {
	assert.Equal(t, "who teaches it?", ExpandQuery("who teaches it?", nil, 3))
}

func TestExpandQueryZeroWindow(t *testing.T) {
	history := []storage.Message{userMsg("tell me about CMPE 113")}
	assert.Equal(t, "who teaches it?", ExpandQuery("who teaches it?", history, 0))
}

func TestExpandQueryFollowUpCarriesCourseCode(t *testing.T) {
	history := []storage.Message{
		userMsg("tell me about CMPE 113"),
		assistantMsg("CMPE 113 is Fundamentals of Programming, taught in Python."),
	}

	expanded := ExpandQuery("who teaches this course?", history, 3)

	assert.Contains(t, expanded, "CMPE 113")
	assert.True(t, strings.HasSuffix(expanded, "who teaches this course?"))
}

func TestExpandQueryAssistantTurnCapsAtTwoCodes(t *testing.T) {
	history := []storage.Message{
		assistantMsg("Consider CMPE 113, MATH 101, and PHYS 100 this term."),
	}

	expanded := ExpandQuery("which is easiest?", history, 3)

	assert.Contains(t, expanded, "CMPE 113")
	assert.Contains(t, expanded, "MATH 101")
	assert.NotContains(t, expanded, "PHYS 100")
}

func TestExpandQueryWindowLimitsHistory(t *testing.T) {
	history := []storage.Message{
		assistantMsg("Old turn mentioning HIST 201."),
		userMsg("thanks"),
		assistantMsg("You're welcome."),
		userMsg("and electives?"),
	}

	expanded := ExpandQuery("anything else?", history, 3)

	assert.NotContains(t, expanded, "HIST 201")
	assert.Contains(t, expanded, "thanks")
	assert.Contains(t, expanded, "and electives?")
}

func TestExpandQueryAssistantTurnsWithoutCodesContributeNothing(t *testing.T) {
	history := []storage.Message{
		assistantMsg("Sure, happy to help with anything."),
	}

	assert.Equal(t, "what about exams?", ExpandQuery("what about exams?", history, 3))
}
