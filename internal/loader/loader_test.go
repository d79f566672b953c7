package loader

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"techsel/pkg/apperror"
	"techsel/pkg/domain"
)

func TestParse(t *testing.T) {
	input := `3 2
pottery 2 6
writing 0 4
currency 10 2
writing -> pottery
currency -> writing
`

	plan, err := Parse(strings.NewReader(input))
	require.NoError(t, err)

	require.Len(t, plan.Technologies, 3)
	assert.Equal(t, domain.Technology{Name: "pottery", Profit: 6, Cost: 2}, plan.Technologies[0])
	assert.Equal(t, domain.Technology{Name: "writing", Profit: 4, Cost: 0}, plan.Technologies[1])
	assert.Equal(t, domain.Technology{Name: "currency", Profit: 2, Cost: 10}, plan.Technologies[2])

	require.Len(t, plan.Dependencies, 2)
	assert.Equal(t, domain.Dependency{From: "writing", To: "pottery"}, plan.Dependencies[0])
	assert.Equal(t, domain.Dependency{From: "currency", To: "writing"}, plan.Dependencies[1])
}

func TestParse_NoDependencies(t *testing.T) {
	input := "1 0\nsolo 3 5\n"

	plan, err := Parse(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, 1, plan.TechnologyCount())
	assert.Equal(t, 0, plan.DependencyCount())
}

func TestParse_SkipsBlankLines(t *testing.T) {
	input := "\n\n2 1\n\na 1 2\n\nb 3 4\n\nb -> a\n\n"

	plan, err := Parse(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, 2, plan.TechnologyCount())
	assert.Equal(t, 1, plan.DependencyCount())
}

func TestParse_EmptyInput(t *testing.T) {
	_, err := Parse(strings.NewReader(""))
	require.Error(t, err)
	assert.Equal(t, apperror.CodeEmptyPlan, apperror.Code(err))
	assert.True(t, apperror.IsWarning(err))
}

func TestParse_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"header_one_field", "3\n"},
		{"header_not_integer", "a b\n"},
		{"negative_header", "-1 0\n"},
		{"short_technology_section", "2 0\nonly 1 2\n"},
		{"technology_missing_field", "1 0\nname 5\n"},
		{"technology_bad_cost", "1 0\nname x 5\n"},
		{"technology_bad_profit", "1 0\nname 5 x\n"},
		{"short_dependency_section", "1 1\na 1 2\n"},
		{"dependency_bad_separator", "2 1\na 1 2\nb 3 4\na => b\n"},
		{"dependency_missing_target", "2 1\na 1 2\nb 3 4\na ->\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.Equal(t, apperror.CodeMalformedPlan, apperror.Code(err))
		})
	}
}

func TestParse_ReferenceFixture(t *testing.T) {
	input := `9 7
bronze 2 6
iron 6 6
archery 3 2
horseback-riding 2 10
horse-archer 6 0
knights 12 6
mathematics 0 6
construction 4 8
currency 10 2
iron -> bronze
horse-archer -> archery
horse-archer -> horseback-riding
knights -> horseback-riding
knights -> iron
construction -> mathematics
currency -> mathematics
`

	plan, err := Parse(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, 9, plan.TechnologyCount())
	assert.Equal(t, 7, plan.DependencyCount())
	assert.Equal(t, int64(46), plan.TotalProfit())
	assert.Equal(t, int64(45), plan.TotalCost())
	assert.True(t, plan.Validate().IsValid())
}
