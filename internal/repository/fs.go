package repository

import "github.com/spf13/afero"

// FileSystemRepository is the filesystem port used for path validation, key
// file permissions and the log sink.
type FileSystemRepository interface {
	afero.Fs
}
