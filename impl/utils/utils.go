package utils

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
)

// OpenLogFile opens logFile for writing, creating its parent directories.
// An empty path means stderr.
func OpenLogFile(logFile string) (io.WriteCloser, error) {
	if logFile == "" {
		return nopCloser{os.Stderr}, nil
	}

	dir, _ := filepath.Split(logFile)
	if dir != "" {
		if e := os.MkdirAll(dir, os.ModePerm); e != nil {
			return nil, fmt.Errorf("could not create parent directories for %s: %w", logFile, e)
		}
	}

	f, e := os.Create(logFile)
	if e != nil {
		return nil, fmt.Errorf("could not open file %s to write logs into: %w", logFile, e)
	}
	return f, nil
}

func NewLogger(w io.Writer) *log.Logger {
	return log.New(w, "", log.LstdFlags)
}

// ExitWithError logs msg and terminates the process with a non-zero status.
func ExitWithError(logger *log.Logger, msg string) {
	logger.Println(msg)
	os.Exit(1)
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error {
	return nil
}
