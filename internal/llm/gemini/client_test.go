package gemini

import (
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/rental-ledger/internal/llm"
)

func TestPromptPartsIncludeSchema(t *testing.T) {
	contract := llm.NewContract("Casa", "a.pdf")
	require.NotNil(t, contract.Schema)

	parts := promptParts(contract, "doc text")
	require.Len(t, parts, 3)

	assert.Equal(t, genai.Text(llm.BuildSystemPrompt(contract)), parts[0])
	schema, ok := parts[1].(genai.Text)
	require.True(t, ok)
	assert.Contains(t, string(schema), "JSON Schema:\n")
	assert.Contains(t, string(schema), `"reservations"`)
	assert.Equal(t, genai.Text(llm.BuildUserPrompt(contract, "doc text")), parts[2])
}

func TestPromptPartsWithoutSchema(t *testing.T) {
	contract := llm.NewContract("Casa", "a.pdf")
	contract.Schema = nil

	parts := promptParts(contract, "doc text")
	require.Len(t, parts, 2)
	for _, p := range parts {
		assert.NotContains(t, string(p.(genai.Text)), "JSON Schema:")
	}
}
