package zstream

import (
	"io/fs"
	"os"
)

// osFS is the operating-system FileSystem.
type osFS struct{}

// NewOSFS returns a FileSystem backed by the operating system.
func NewOSFS() FileSystem {
	return osFS{}
}

func (osFS) Open(name string) (File, error) {
	return os.Open(name)
}

func (osFS) Create(name string) (File, error) {
	return os.Create(name)
}

func (osFS) Stat(name string) (fs.FileInfo, error) {
	return os.Stat(name)
}
