package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSettingPairs(t *testing.T) {
	updates, err := parseSettingPairs([]string{
		"beat_open=false",
		"beat_interval=8",
		"theme=dark",
	})
	require.NoError(t, err)

	// JSON-parseable values keep their type; the rest stay strings.
	assert.Equal(t, false, updates["beat_open"])
	assert.Equal(t, float64(8), updates["beat_interval"])
	assert.Equal(t, "dark", updates["theme"])
}

func TestParseSettingPairsRejectsMalformed(t *testing.T) {
	_, err := parseSettingPairs([]string{"beat_open"})
	assert.Error(t, err)

	_, err = parseSettingPairs([]string{"=true"})
	assert.Error(t, err)
}

func TestParseSettingPairsValueWithEquals(t *testing.T) {
	// Only the first "=" splits; the value keeps the rest.
	updates, err := parseSettingPairs([]string{"note=a=b"})
	require.NoError(t, err)
	assert.Equal(t, "a=b", updates["note"])
}
