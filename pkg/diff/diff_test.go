package diff

import (
	"testing"

	"dlbuild/pkg/build"
	"dlbuild/pkg/model"
	"dlbuild/pkg/test"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompareWithDefaults_Unchanged(t *testing.T) {
	diffs := CompareWithDefaults(model.DefaultRecipe())
	require.Len(t, diffs, 2)

	for _, d := range diffs {
		assert.False(t, d.Changed(), d.Step)
		assert.Empty(t, d.Summary(), d.Step)
	}
	assert.Equal(t, "compile", diffs[0].Step)
	assert.Equal(t, "link", diffs[1].Step)
}

func TestCompareWithDefaults_Changed(t *testing.T) {
	diffs := CompareWithDefaults(test.SampleRecipe())
	require.Len(t, diffs, 2)

	link := diffs[1]
	assert.True(t, link.Changed())
	assert.Equal(t, "g++ -o sample -ldl main.o", link.Stock)
	assert.Equal(t, "clang++ -o demo -ldl demo.o -rdynamic", link.Configured)

	summary := link.Summary()
	assert.Contains(t, summary, "- g++")
	assert.Contains(t, summary, "+ clang++")
	assert.Contains(t, summary, "- sample")
	assert.Contains(t, summary, "+ demo")
	assert.Contains(t, summary, "+ -rdynamic")
	assert.NotContains(t, summary, "- -ldl")
	assert.NotContains(t, summary, "+ -ldl")
}

func TestCommandDiff_Pretty(t *testing.T) {
	d := CommandDiff{Step: "link", Stock: "g++ -o sample", Configured: "g++ -o demo"}

	pretty := d.Pretty()
	assert.Contains(t, pretty, "g++ -o ")
	assert.Contains(t, pretty, "demo")
	assert.Contains(t, pretty, "\x1b[32m", "insertions are colored green")
}

func TestCompare_StepMissingFromStock(t *testing.T) {
	stock := build.Plan(model.DefaultRecipe())[:1]
	diffs := Compare(stock, build.Plan(model.DefaultRecipe()))
	require.Len(t, diffs, 2)

	assert.False(t, diffs[0].Changed())
	assert.Equal(t, "", diffs[1].Stock)
	assert.True(t, diffs[1].Changed())
}

func TestCommandDiff_SummaryWithoutStock(t *testing.T) {
	d := CommandDiff{Step: "strip", Configured: "strip sample"}
	assert.Equal(t, []string{"+ strip", "+ sample"}, d.Summary())
}
