package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("README_ONLY")
	require.NoError(t, err)
	assert.Equal(t, FormatReadmeOnly, f)

	// Case and whitespace are forgiven.
	f, err = ParseFormat("  aicac_selective ")
	require.NoError(t, err)
	assert.Equal(t, FormatAICaCSelective, f)

	_, err = ParseFormat("MARKDOWN")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MARKDOWN")
	assert.Contains(t, err.Error(), "README_ONLY")
}

func TestCategoryPrefix(t *testing.T) {
	assert.Equal(t, "IR", Question{ID: "IR-001"}.CategoryPrefix())
	assert.Equal(t, "AU", Question{ID: "AU-005"}.CategoryPrefix())
	assert.Equal(t, "CW", Question{ID: "CW-010-extended"}.CategoryPrefix())
	// No dash: the whole ID acts as the prefix.
	assert.Equal(t, "MISC", Question{ID: "MISC"}.CategoryPrefix())
}

func TestFormatNames(t *testing.T) {
	assert.Equal(t, "README_ONLY, AICAC", FormatNames([]Format{FormatReadmeOnly, FormatAICaC}))
}
