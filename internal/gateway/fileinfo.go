package gateway

import (
	"os"
	"time"

	"github.com/nimbusdepot/gatesftp/internal/namespace"
)

// fileInfo adapts a namespace.Entry to os.FileInfo, the shape
// github.com/pkg/sftp expects from Filelist (via sftp.ListerAt, see
// listerat.go).
type fileInfo struct {
	name    string
	size    int64
	modTime time.Time
	isDir   bool
}

func entryFileInfo(e namespace.Entry) fileInfo {
	return fileInfo{name: e.Name, size: e.Size, modTime: e.ModTime, isDir: e.IsDir}
}

func (f fileInfo) Name() string       { return f.name }
func (f fileInfo) Size() int64        { return f.size }
func (f fileInfo) ModTime() time.Time { return f.modTime }
func (f fileInfo) IsDir() bool        { return f.isDir }
func (f fileInfo) Sys() interface{}   { return nil }

func (f fileInfo) Mode() os.FileMode {
	if f.isDir {
		return os.ModeDir | 0o755
	}
	return 0o644
}
