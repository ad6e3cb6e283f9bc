package config

import (
	"fmt"
	"path/filepath"

	"dlbuild/pkg/log"
	"dlbuild/pkg/model"
	"dlbuild/pkg/system"

	"github.com/adrg/xdg"
)

// UserConfigName is the file read from the user config directory.
const UserConfigName = "config.yaml"

// Loader layers the default recipe, the user config and a project config.
type Loader struct {
	UserConfigDir string // empty disables the user layer
	logger        log.Logger
}

// NewLoader creates a Loader reading user settings from $XDG_CONFIG_HOME/dlbuild.
func NewLoader(logger log.Logger) *Loader {
	return &Loader{
		UserConfigDir: DefaultUserConfigDir(),
		logger:        logger,
	}
}

// DefaultUserConfigDir returns the per-user config directory.
func DefaultUserConfigDir() string {
	if xdg.ConfigHome == "" {
		return ""
	}
	return filepath.Join(xdg.ConfigHome, "dlbuild")
}

// Load returns the merged recipe: defaults <- user config <- filename.
// A missing filename is only an error when required is set.
func (l *Loader) Load(filename string, required bool) (*model.Recipe, error) {
	cfg := model.DefaultRecipe()

	if l.UserConfigDir != "" {
		userFile := filepath.Join(l.UserConfigDir, UserConfigName)
		if system.FileExists(userFile) {
			layer, err := loadLayer(userFile, l.logger)
			if err != nil {
				return nil, fmt.Errorf("user config %s: %w", userFile, err)
			}
			l.logger.Debug("Loaded user config", "path", userFile)
			cfg = mergeRecipes(cfg, layer, l.logger)
		}
	}

	if !required && !system.FileExists(filename) {
		l.logger.Debug("No project config found, using defaults", "path", filename)
		return finalize(cfg)
	}

	l.logger.Debug("Loading project config", "path", filename)
	return LoadConfig(filename, cfg, l.logger)
}
