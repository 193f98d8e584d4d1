package assistant

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagecampus/sage-assistant-go/internal/genai"
	"github.com/sagecampus/sage-assistant-go/internal/lang"
	"github.com/sagecampus/sage-assistant-go/internal/storage"
)

func TestAssembleAcademicFirstAttemptNoDirective(t *testing.T) {
	msgs := Assemble(Academic, lang.English, nil, "what is CMPE 113?", nil, 10, false)

	require.Len(t, msgs, 2)
	assert.Equal(t, genai.RoleSystem, msgs[0].Role)
	assert.Equal(t, genai.RoleUser, msgs[1].Role)
	assert.Equal(t, "what is CMPE 113?", msgs[1].Content)
}

func TestAssembleSocialAlwaysCarriesDirective(t *testing.T) {
	msgs := Assemble(Social, lang.Turkish, nil, "kafe öner", nil, 10, false)

	require.Len(t, msgs, 3)
	assert.Equal(t, genai.RoleSystem, msgs[1].Role)
	assert.Contains(t, msgs[1].Content, "STRICTLY: Respond only in Turkish")
}

func TestAssembleRetryUsesUrgentDirective(t *testing.T) {
	for _, persona := range []Persona{Academic, Social} {
		msgs := Assemble(persona, lang.Turkish, nil, "merhaba", nil, 10, true)

		require.Len(t, msgs, 3, "persona %s", persona)
		assert.Contains(t, msgs[1].Content, "URGENT: Reply only in Turkish")
	}
}

func TestAssembleHistoryWindow(t *testing.T) {
	var history []storage.Message
	for i := 0; i < 15; i++ {
		history = append(history, storage.Message{
			Role:    storage.RoleUser,
			Content: fmt.Sprintf("turn %d", i),
		})
	}

	msgs := Assemble(Academic, lang.English, history, "latest", nil, 10, false)

	// system + 10 history turns + user turn
	require.Len(t, msgs, 12)
	assert.Equal(t, "turn 5", msgs[1].Content)
	assert.Equal(t, "turn 14", msgs[10].Content)
}

func TestAssembleContextAppendage(t *testing.T) {
	blocks := []string{"", "NEARBY VENUES (from database):\n\ndetails", ""}
	msgs := Assemble(Social, lang.English, nil, "any cafes?", blocks, 10, false)

	userTurnMsg := msgs[len(msgs)-1]
	assert.Equal(t, "any cafes?\n\nNEARBY VENUES (from database):\n\ndetails", userTurnMsg.Content)
}

func TestAssembleAllBlocksEmptyEqualsRawText(t *testing.T) {
	msgs := Assemble(Social, lang.English, nil, "any cafes?", []string{"", ""}, 10, false)

	userTurnMsg := msgs[len(msgs)-1]
	assert.Equal(t, "any cafes?", userTurnMsg.Content)
}

func TestAssembleDoesNotMutateHistory(t *testing.T) {
	history := []storage.Message{
		{Role: storage.RoleUser, Content: "original"},
		{Role: storage.RoleAssistant, Content: "reply"},
	}
	snapshot := make([]storage.Message, len(history))
	copy(snapshot, history)

	_ = Assemble(Academic, lang.English, history, "next", []string{"ctx"}, 10, false)

	assert.Equal(t, snapshot, history)
}
