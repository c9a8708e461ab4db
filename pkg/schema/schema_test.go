package schema

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func messageEntity() Entity {
	return Entity{
		Version: "2024-06-01",
		Fields: map[string]Field{
			"text":      {Kind: KindText, Required: true},
			"thread_ts": {Kind: KindText},
			"pinned":    {Kind: KindBoolean},
			"reactions": {Kind: KindInteger},
			"score":     {Kind: KindNumber},
			"posted_at": {Kind: KindTimestamp},
			"blocks":    {Kind: KindArray},
			"metadata":  {Kind: KindObject},
		},
	}
}

func TestEntityValidateAccepts(t *testing.T) {
	e := messageEntity()

	err := e.Validate(map[string]any{
		"text":      "hi",
		"pinned":    true,
		"reactions": float64(3), // JSON numbers decode as float64
		"score":     0.5,
		"posted_at": "2026-08-29T10:00:00Z",
		"blocks":    []any{"a", "b"},
		"metadata":  map[string]any{"k": "v"},
	})
	assert.NoError(t, err)

	// time.Time values are accepted directly.
	assert.NoError(t, e.Validate(map[string]any{
		"text":      "hi",
		"posted_at": time.Now(),
	}))
}

func TestEntityValidateRejects(t *testing.T) {
	e := messageEntity()

	cases := map[string]map[string]any{
		"missing required":    {"pinned": true},
		"undeclared field":    {"text": "hi", "color": "red"},
		"wrong kind":          {"text": 42},
		"fractional integer":  {"text": "hi", "reactions": 1.5},
		"malformed timestamp": {"text": "hi", "posted_at": "yesterday"},
		"array for object":    {"text": "hi", "metadata": []any{}},
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			require.ErrorIs(t, e.Validate(data), ErrSchemaValidation)
		})
	}
}

func TestSchemaHasServices(t *testing.T) {
	withServices := Schema{Name: "slack", Services: map[string]Entity{"messages": messageEntity()}}
	assert.True(t, withServices.HasServices())

	// A plugin with no stored entities leaves Services nil.
	bare := Schema{Name: "resend"}
	assert.False(t, bare.HasServices())
}

func TestKindRoundTrip(t *testing.T) {
	for _, k := range KindValues() {
		parsed, err := KindString(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, parsed)
	}

	_, err := KindString("blob")
	assert.Error(t, err)
}
