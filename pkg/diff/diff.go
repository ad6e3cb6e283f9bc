package diff

import (
	"strings"

	"dlbuild/pkg/build"
	"dlbuild/pkg/model"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// CommandDiff pairs the stock command of a step with the configured one.
type CommandDiff struct {
	Step       string `json:"step"`
	Stock      string `json:"stock"`
	Configured string `json:"configured"`
}

// Changed reports whether the configured command differs from stock.
func (d CommandDiff) Changed() bool {
	return d.Stock != d.Configured
}

// Pretty renders a character-level diff of the two command lines.
// Insertions and deletions are colored with ANSI escapes.
func (d CommandDiff) Pretty() string {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(d.Stock, d.Configured, false)
	diffs = dmp.DiffCleanupSemantic(diffs)
	return dmp.DiffPrettyText(diffs)
}

// Summary renders the diff as a +/- list of arguments, without colors.
func (d CommandDiff) Summary() []string {
	dmp := diffmatchpatch.New()
	a, b, words := dmp.DiffLinesToChars(joinLines(argv(d.Stock)), joinLines(argv(d.Configured)))
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), words)

	var out []string
	for _, diff := range diffs {
		for _, word := range splitLines(diff.Text) {
			switch diff.Type {
			case diffmatchpatch.DiffInsert:
				out = append(out, "+ "+word)
			case diffmatchpatch.DiffDelete:
				out = append(out, "- "+word)
			}
		}
	}
	return out
}

// Compare pairs up the steps of the stock plan and the configured plan by name.
func Compare(stock, configured []build.Step) []CommandDiff {
	byName := make(map[string]build.Step, len(stock))
	for _, step := range stock {
		byName[step.Name()] = step
	}

	var result []CommandDiff
	for _, step := range configured {
		d := CommandDiff{Step: step.Name(), Configured: step.Command().String()}
		if s, ok := byName[step.Name()]; ok {
			d.Stock = s.Command().String()
		}
		result = append(result, d)
	}
	return result
}

// CompareWithDefaults diffs a recipe's plan against the default recipe's plan.
func CompareWithDefaults(recipe *model.Recipe) []CommandDiff {
	return Compare(build.Plan(model.DefaultRecipe()), build.Plan(recipe))
}

func argv(line string) []string {
	cmd, err := model.ParseCommand(line)
	if err != nil {
		return nil
	}
	return cmd.Argv()
}

func joinLines(words []string) string {
	if len(words) == 0 {
		return ""
	}
	return strings.Join(words, "\n") + "\n"
}

func splitLines(text string) []string {
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}
