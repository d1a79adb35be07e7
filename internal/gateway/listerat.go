package gateway

import (
	"io"
	"os"
)

// listerAt adapts a slice of os.FileInfo to sftp.ListerAt: ListAt copies
// into the caller's slice starting at offset and reports io.EOF when
// offset is past the end or fewer than len(dst) entries were left to copy.
type listerAt []os.FileInfo

func (l listerAt) ListAt(dst []os.FileInfo, offset int64) (int, error) {
	if offset >= int64(len(l)) {
		return 0, io.EOF
	}
	n := copy(dst, l[offset:])
	if n < len(dst) {
		return n, io.EOF
	}
	return n, nil
}
