package fusion

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecoverJSON_Strict(t *testing.T) {
	obj, stage, err := RecoverJSON(`  {"title":"T","nodes":[],"edges":[]}` + "\n")
	require.NoError(t, err)
	assert.Equal(t, StageStrict, stage)
	assert.Equal(t, "T", obj["title"])
}

func TestRecoverJSON_ProseAndFences(t *testing.T) {
	cases := map[string]string{
		"prose":  `Here is your map: {"title":"T","nodes":[],"edges":[]} Hope it helps!`,
		"fenced": "```json\n{\"title\":\"T\",\"nodes\":[],\"edges\":[]}\n```",
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			obj, stage, err := RecoverJSON(raw)
			require.NoError(t, err)
			assert.Equal(t, StageBraces, stage)
			assert.Equal(t, "T", obj["title"])
		})
	}
}

func TestRecoverJSON_Malformed(t *testing.T) {
	for _, raw := range []string{"", "no json here", "{not json}", "} backwards {", "null", "[1,2]"} {
		_, _, err := RecoverJSON(raw)
		require.Error(t, err, raw)
		assert.True(t, errors.Is(err, ErrMalformedResponse), raw)
	}
}

func TestRecoverJSON_SnippetIsBounded(t *testing.T) {
	raw := strings.Repeat("x", 1000)
	_, _, err := RecoverJSON(raw)
	var me *MalformedResponseError
	require.ErrorAs(t, err, &me)
	assert.Len(t, me.Snippet, snippetLen)
}

func TestExtractObject_OuterSpan(t *testing.T) {
	obj, err := ExtractObject(`prefix {"a":{"b":1}} suffix`)
	require.NoError(t, err)
	assert.Contains(t, obj, "a")
}
