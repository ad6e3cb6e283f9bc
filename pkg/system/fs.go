package system

import "github.com/spf13/afero"

// AppFs is the filesystem used for config files and build artifacts.
// Tests swap it for an in-memory filesystem.
var AppFs = afero.NewOsFs()

// FileExists reports whether path exists on AppFs.
func FileExists(path string) bool {
	ok, err := afero.Exists(AppFs, path)
	return err == nil && ok
}
