package cmd

import "dlbuild/pkg/diff"

// stepForJSON is a struct used for marshaling a build step to JSON for machine-readable output.
type stepForJSON struct {
	Type        string            `json:"type"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Command     string            `json:"command"`
	Dir         string            `json:"dir,omitempty"`
	Details     []string          `json:"details"`
	Diff        *diff.CommandDiff `json:"diff,omitempty"`
}
