package roster

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	roster := New(42).Generate(100)
	require.Len(t, roster, 100)

	idPattern := regexp.MustCompile(`^SP-\d{4}$`)
	seen := make(map[string]bool)
	for _, sp := range roster {
		assert.Regexp(t, idPattern, sp.ID)
		assert.False(t, seen[sp.ID], "duplicate id %s", sp.ID)
		seen[sp.ID] = true

		assert.NotEmpty(t, sp.Name)
		assert.GreaterOrEqual(t, sp.ExperienceYears, 1)
		assert.LessOrEqual(t, sp.ExperienceYears, 20)
		assert.Contains(t, expertiseList, sp.Expertise)
		assert.Contains(t, italianCities, sp.Location)
	}
}

func TestGenerateDeterministicWithSeed(t *testing.T) {
	a := New(7).Generate(10)
	b := New(7).Generate(10)
	assert.Equal(t, a, b)
}

func TestGenerateDifferentSeeds(t *testing.T) {
	a := New(1).Generate(10)
	b := New(2).Generate(10)
	assert.NotEqual(t, a, b)
}
