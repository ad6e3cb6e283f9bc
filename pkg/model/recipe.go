package model

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Default recipe values. Paths are relative to the directory the build runs in.
const (
	DefaultCompiler = "g++"
	DefaultSource   = "main.cpp"
	DefaultObject   = "main.o"
	DefaultOutput   = "sample"
	DefaultLibrary  = "dl"
)

// DefaultIncludeDir sits two levels above the build directory.
var DefaultIncludeDir = filepath.Join("..", "..", "include")

// Recipe describes how to compile and link the sample executable.
type Recipe struct {
	Includes          []string `yaml:"includes,omitempty" toml:"includes,omitempty" json:"-"`
	Compiler          string   `yaml:"compiler,omitempty" toml:"compiler,omitempty" json:"compiler"`
	IncludeDir        string   `yaml:"include-dir,omitempty" toml:"include-dir,omitempty" json:"include_dir"`
	Source            string   `yaml:"source,omitempty" toml:"source,omitempty" json:"source"`
	Object            string   `yaml:"object,omitempty" toml:"object,omitempty" json:"object"`
	Output            string   `yaml:"output,omitempty" toml:"output,omitempty" json:"output"`
	Library           string   `yaml:"library,omitempty" toml:"library,omitempty" json:"library"`
	ExtraCompileFlags []string `yaml:"extra-compile-flags,omitempty" toml:"extra-compile-flags,omitempty" json:"extra_compile_flags,omitempty"`
	ExtraLinkFlags    []string `yaml:"extra-link-flags,omitempty" toml:"extra-link-flags,omitempty" json:"extra_link_flags,omitempty"`
	WorkDir           string   `yaml:"work-dir,omitempty" toml:"work-dir,omitempty" json:"work_dir,omitempty"`
	FailFast          *bool    `yaml:"fail-fast,omitempty" toml:"fail-fast,omitempty" json:"fail_fast,omitempty"`
}

// DefaultRecipe returns the stock compile and link settings.
func DefaultRecipe() *Recipe {
	return &Recipe{
		Compiler:   DefaultCompiler,
		IncludeDir: DefaultIncludeDir,
		Source:     DefaultSource,
		Object:     DefaultObject,
		Output:     DefaultOutput,
		Library:    DefaultLibrary,
	}
}

// StopOnFailure reports whether a failed step should stop the build.
func (r *Recipe) StopOnFailure() bool {
	return r.FailFast != nil && *r.FailFast
}

// ArtifactPath resolves an artifact name against the work directory.
func (r *Recipe) ArtifactPath(name string) string {
	if r.WorkDir == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(r.WorkDir, name)
}

func (r *Recipe) Validate() ValidationErrors {
	var errs ValidationErrors

	for i, include := range r.Includes {
		if strings.TrimSpace(include) == "" {
			errs = append(errs, ValidationError{Field: fmt.Sprintf("includes[%d]", i), Message: "include path cannot be empty"})
		}
	}

	required := []struct {
		field string
		value string
	}{
		{"compiler", r.Compiler},
		{"include-dir", r.IncludeDir},
		{"source", r.Source},
		{"object", r.Object},
		{"output", r.Output},
		{"library", r.Library},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			errs = append(errs, ValidationError{Field: f.field, Message: "cannot be empty"})
			continue
		}
		if hasControlChars(f.value) {
			errs = append(errs, ValidationError{Field: f.field, Message: "contains control characters"})
		}
	}

	if strings.HasPrefix(r.Library, "-l") {
		errs = append(errs, ValidationError{Field: "library", Message: "give the bare library name, the -l prefix is added automatically"})
	}
	if r.Object != "" && r.Object == r.Source {
		errs = append(errs, ValidationError{Field: "object", Message: "object file would overwrite the source file"})
	}
	if r.Output != "" && r.Output == r.Source {
		errs = append(errs, ValidationError{Field: "output", Message: "output executable would overwrite the source file"})
	}
	if r.Output != "" && r.Output == r.Object {
		errs = append(errs, ValidationError{Field: "output", Message: "output executable would overwrite the object file"})
	}

	for i, flag := range r.ExtraCompileFlags {
		if strings.TrimSpace(flag) == "" || hasControlChars(flag) {
			errs = append(errs, ValidationError{Field: fmt.Sprintf("extra-compile-flags[%d]", i), Message: "flag is empty or contains control characters"})
		}
	}
	for i, flag := range r.ExtraLinkFlags {
		if strings.TrimSpace(flag) == "" || hasControlChars(flag) {
			errs = append(errs, ValidationError{Field: fmt.Sprintf("extra-link-flags[%d]", i), Message: "flag is empty or contains control characters"})
		}
	}

	return errs
}

func hasControlChars(s string) bool {
	for _, r := range s {
		if r < 32 || r == 127 {
			return true
		}
	}
	return false
}
