package telemetry

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
)

// MessageOutput receives the full text of every http exchange an instrumented client makes.
type MessageOutput interface {
	Write(id string, contents string)
}

// FilesystemOutput writes every message to its own file in a directory, files are numbered
// in the order they were written.
type FilesystemOutput struct {
	directory string
	seq       *uint64
}

// NewFilesystemOutput clears `dir` and creates it anew.
func NewFilesystemOutput(dir string) (FilesystemOutput, error) {
	err := os.RemoveAll(dir)
	if err != nil {
		return FilesystemOutput{}, err
	}
	err = os.MkdirAll(dir, 0777)
	if err != nil {
		return FilesystemOutput{}, err
	}
	var seq uint64
	return FilesystemOutput{directory: dir, seq: &seq}, nil
}

func (o FilesystemOutput) Write(id string, contents string) {
	n := atomic.AddUint64(o.seq, 1)
	name := fmt.Sprintf("%04d-%s.txt", n, id)
	err := os.WriteFile(filepath.Join(o.directory, name), []byte(contents), 0600)
	if err != nil {
		slog.Warn("failed to write message info file", "id", id, "err", err)
	}
}
