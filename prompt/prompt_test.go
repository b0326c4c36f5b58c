package prompt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"screen-assistant/session"
)

func TestBuild(t *testing.T) {
	messages := Build("reverse a linked list", nil)

	require.Len(t, messages, 2)
	assert.Equal(t, "system", messages[0].Role)
	assert.Contains(t, messages[0].Content[0].Text, "expert programming assistant")
	assert.Equal(t, "user", messages[1].Role)
	assert.Contains(t, messages[1].Content[0].Text, "reverse a linked list")
	assert.Contains(t, messages[1].Content[0].Text, "Solution:")
}

func TestBuildWithHistory(t *testing.T) {
	history := []session.Exchange{
		{Question: "first question", Answer: "first answer"},
		{Question: "second question", Answer: "second answer"},
	}
	messages := Build("third question", history)

	require.Len(t, messages, 6)
	assert.Equal(t, "system", messages[0].Role)
	assert.Equal(t, "user", messages[1].Role)
	assert.Contains(t, messages[1].Content[0].Text, "first question")
	assert.Equal(t, "assistant", messages[2].Role)
	assert.Equal(t, "first answer", messages[2].Content[0].Text)
	assert.Equal(t, "user", messages[3].Role)
	assert.Equal(t, "assistant", messages[4].Role)
	assert.Equal(t, "user", messages[5].Role)
	assert.Contains(t, messages[5].Content[0].Text, "third question")
}

func TestBuildDeterministic(t *testing.T) {
	history := []session.Exchange{{Question: "q", Answer: "a"}}
	first := Build("text", history)
	second := Build("text", history)
	assert.Equal(t, first, second)
}
