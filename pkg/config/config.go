package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"dlbuild/pkg/log"
	"dlbuild/pkg/model"
	"dlbuild/pkg/system"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is looked up in the working directory when no --config is given.
const DefaultConfigFile = "dlbuild.yaml"

// LoadConfig reads filename, resolves its includes and merges the result over
// base. The merged recipe is validated before it is returned.
func LoadConfig(filename string, base *model.Recipe, logger log.Logger) (*model.Recipe, error) {
	layer, err := loadLayer(filename, logger)
	if err != nil {
		return nil, err
	}

	return finalize(mergeRecipes(base, layer, logger))
}

func finalize(cfg *model.Recipe) (*model.Recipe, error) {
	cfg.Includes = nil
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, errs
	}
	return cfg, nil
}

// loadLayer loads one file together with everything it includes.
func loadLayer(filename string, logger log.Logger) (*model.Recipe, error) {
	cfg, err := loadConfigFile(filename)
	if err != nil {
		return nil, err
	}

	if errs := validateIncludes(cfg.Includes); len(errs) > 0 {
		return nil, errs
	}

	if len(cfg.Includes) > 0 {
		cfg, err = processIncludes(cfg, filename, logger)
		if err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// processIncludes loads and merges included files depth first. The including
// file always wins over what it includes.
func processIncludes(cfg *model.Recipe, baseFile string, logger log.Logger) (*model.Recipe, error) {
	visited := make(map[string]bool) // For cycle detection
	return processIncludesRecursive(cfg, baseFile, visited, logger)
}

func processIncludesRecursive(cfg *model.Recipe, baseFile string, visited map[string]bool, logger log.Logger) (*model.Recipe, error) {
	result := &model.Recipe{}

	absBase, err := filepath.Abs(baseFile)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve absolute path for %s: %w", baseFile, err)
	}
	if visited[absBase] {
		return nil, fmt.Errorf("circular include detected: %s", baseFile)
	}
	visited[absBase] = true
	defer delete(visited, absBase)

	for _, includePath := range cfg.Includes {
		resolvedPath := resolveIncludePath(baseFile, includePath)

		includedCfg, err := loadConfigFile(resolvedPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load include '%s': %w", includePath, err)
		}

		if len(includedCfg.Includes) > 0 {
			includedCfg, err = processIncludesRecursive(includedCfg, resolvedPath, visited, logger)
			if err != nil {
				return nil, err
			}
		}

		logger.Debug("Merging included recipe", "include", resolvedPath, "from", baseFile)
		result = mergeRecipes(result, includedCfg, logger)
	}

	return mergeRecipes(result, cfg, logger), nil
}

func loadConfigFile(filename string) (*model.Recipe, error) {
	f, err := afero.ReadFile(system.AppFs, filename)
	if err != nil {
		return nil, err
	}

	return decodeRecipe(filename, f)
}

// decodeRecipe parses TOML for .toml files and YAML for everything else.
// Unknown keys are rejected so typos do not silently fall back to defaults.
func decodeRecipe(filename string, data []byte) (*model.Recipe, error) {
	var cfg model.Recipe

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".toml":
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", filename, err)
		}
	default:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("parse %s: %w", filename, err)
		}
	}

	return &cfg, nil
}

func resolveIncludePath(baseFile, includePath string) string {
	if filepath.IsAbs(includePath) {
		return includePath
	}

	// Relative to the directory containing baseFile
	return filepath.Join(filepath.Dir(baseFile), includePath)
}

// mergeRecipes layers override on top of base:
// - scalar fields: last non-empty value wins
// - flag lists: appended in order, since flags such as -Xlinker come in pairs
// - fail-fast: last explicit value wins
func mergeRecipes(base, override *model.Recipe, logger log.Logger) *model.Recipe {
	result := &model.Recipe{}

	result.Compiler = mergeField("compiler", base.Compiler, override.Compiler, logger)
	result.IncludeDir = mergeField("include-dir", base.IncludeDir, override.IncludeDir, logger)
	result.Source = mergeField("source", base.Source, override.Source, logger)
	result.Object = mergeField("object", base.Object, override.Object, logger)
	result.Output = mergeField("output", base.Output, override.Output, logger)
	result.Library = mergeField("library", base.Library, override.Library, logger)
	result.WorkDir = mergeField("work-dir", base.WorkDir, override.WorkDir, logger)

	result.ExtraCompileFlags = mergeFlags(base.ExtraCompileFlags, override.ExtraCompileFlags)
	result.ExtraLinkFlags = mergeFlags(base.ExtraLinkFlags, override.ExtraLinkFlags)

	switch {
	case override.FailFast != nil:
		v := *override.FailFast
		result.FailFast = &v
	case base.FailFast != nil:
		v := *base.FailFast
		result.FailFast = &v
	}

	// Note: Includes are NOT merged (already processed)

	return result
}

func mergeField(name, base, override string, logger log.Logger) string {
	if override == "" {
		return base
	}
	if base != "" && base != override {
		logger.Debug("Recipe field overridden", "field", name, "was", base, "now", override)
	}
	return override
}

func mergeFlags(base, override []string) []string {
	if len(base) == 0 && len(override) == 0 {
		return nil
	}
	result := make([]string, 0, len(base)+len(override))
	result = append(result, base...)
	return append(result, override...)
}

func validateIncludes(includes []string) model.ValidationErrors {
	var errs model.ValidationErrors
	for i, include := range includes {
		if strings.TrimSpace(include) == "" {
			errs = append(errs, model.ValidationError{Field: fmt.Sprintf("includes[%d]", i), Message: "include path cannot be empty"})
		}
	}
	return errs
}
