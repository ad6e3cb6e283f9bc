package build

import (
	"fmt"
	"os"

	"dlbuild/pkg/log"
	"dlbuild/pkg/model"
	"dlbuild/pkg/system"
)

// Clean removes the object file and the executable a recipe produces.
// Artifacts that do not exist are skipped. It returns the removed paths.
func Clean(recipe *model.Recipe, logger log.Logger) ([]string, error) {
	var removed []string
	for _, name := range []string{recipe.Object, recipe.Output} {
		path := recipe.ArtifactPath(name)
		if err := system.AppFs.Remove(path); err != nil {
			if os.IsNotExist(err) {
				logger.Debug("Artifact not present", "path", path)
				continue
			}
			return removed, fmt.Errorf("remove %s: %w", path, err)
		}
		logger.Info("Removed artifact", "path", path)
		removed = append(removed, path)
	}
	return removed, nil
}
