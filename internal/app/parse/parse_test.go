package parse_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soulscript/persona-api/internal/app/parse"
)

func TestCleanStripsFences(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain", `{"a": 1}`, `{"a": 1}`},
		{"fenced", "```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"fenced no tag", "```\n{\"a\": 1}\n```", `{"a": 1}`},
		{"markdown fence", "```markdown\n# Title\n```", "# Title"},
		{"whitespace", "  \n{\"a\": 1}\n  ", `{"a": 1}`},
		{"plain text untouched", "just some prose", "just some prose"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, parse.Clean(tc.in))
		})
	}
}

func TestDecodeFencedAndPlainAreEquivalent(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}

	var plain, fenced payload
	require.Nil(t, parse.Decode(`{"name": "x"}`, &plain))
	require.Nil(t, parse.Decode("```json\n{\"name\": \"x\"}\n```", &fenced))

	assert.Equal(t, plain, fenced)
}

func TestDecodeRecoversEmbeddedObject(t *testing.T) {
	raw := `Here is the result you asked for: {"score": 7} hope that helps!`

	var out map[string]any
	fail := parse.Decode(raw, &out)

	require.Nil(t, fail)
	assert.Equal(t, float64(7), out["score"])
}

func TestDecodeSkipsBracesInsideStrings(t *testing.T) {
	raw := `{"note": "use {curly} braces", "n": 2}`

	var out map[string]any
	fail := parse.Decode(raw, &out)

	require.Nil(t, fail)
	assert.Equal(t, "use {curly} braces", out["note"])
}

func TestDecodeFailureKeepsRawText(t *testing.T) {
	raw := "the model refused to answer"

	var out map[string]any
	fail := parse.Decode(raw, &out)

	require.NotNil(t, fail)
	assert.Equal(t, raw, fail.Raw)
}

func TestJSONObjectFailureOnUnbalancedBraces(t *testing.T) {
	obj, fail := parse.JSONObject(`{"open": `)

	require.NotNil(t, fail)
	assert.Nil(t, obj)
}
