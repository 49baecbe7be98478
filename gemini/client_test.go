package gemini_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sujumayas/dockstream"
	"github.com/sujumayas/dockstream/gemini"
)

func TestConvertMessages(t *testing.T) {
	t.Parallel()
	msgs := []dockstream.Message{
		{Role: dockstream.RoleSystem, Content: "You are helpful."},
		{Role: dockstream.RoleUser, Content: "hi"},
		{Role: dockstream.RoleAssistant, Content: "hello!"},
		{Role: dockstream.RoleUser, Content: "how are you?"},
	}

	contents, system := gemini.ConvertMessages(msgs)

	assert.Equal(t, "You are helpful.", system)
	require.Len(t, contents, 3, "system messages leave the content list")

	assert.Equal(t, "user", contents[0].Role)
	assert.Equal(t, "hi", contents[0].Parts[0].Text)
	assert.Equal(t, "model", contents[1].Role)
	assert.Equal(t, "hello!", contents[1].Parts[0].Text)
	assert.Equal(t, "user", contents[2].Role)
}

func TestConvertMessages_MultipleSystemPrompts(t *testing.T) {
	t.Parallel()
	msgs := []dockstream.Message{
		{Role: dockstream.RoleSystem, Content: "Be brief."},
		{Role: dockstream.RoleSystem, Content: "Use English."},
		{Role: dockstream.RoleUser, Content: "hi"},
	}

	contents, system := gemini.ConvertMessages(msgs)

	assert.Equal(t, "Be brief.\nUse English.", system)
	require.Len(t, contents, 1)
}

func TestConvertMessages_Empty(t *testing.T) {
	t.Parallel()
	contents, system := gemini.ConvertMessages(nil)
	assert.Empty(t, contents)
	assert.Empty(t, system)
}
