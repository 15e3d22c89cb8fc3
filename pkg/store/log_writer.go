package store

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
)

const defaultBufferSize = 64 * 1024

// LogWriter replaces the contents of a record file.
type LogWriter struct {
	config LogWriterConfig
}

// NewLogWriter creates a new log writer with the given configuration
func NewLogWriter(config LogWriterConfig) (*LogWriter, error) {
	if config.FilePath == "" {
		return nil, ErrEmptyPath
	}
	if config.BufferSize <= 0 {
		config.BufferSize = defaultBufferSize
	}
	return &LogWriter{config: config}, nil
}

// Path returns the file path
func (w *LogWriter) Path() string {
	return w.config.FilePath
}

// Rewrite replaces the file with data. By default the bytes go to a
// temporary file in the same directory which is synced and renamed over the
// target, so readers see either the old or the new contents. The target's
// permission bits and, where supported, ownership are carried over.
func (w *LogWriter) Rewrite(data []byte) error {
	info, err := os.Stat(w.config.FilePath)
	if err != nil {
		return err
	}

	if w.config.InPlace {
		return w.overwrite(data, info.Mode().Perm())
	}

	dir, base := filepath.Split(w.config.FilePath)
	if dir == "" {
		dir = "."
	}
	tmp, err := os.CreateTemp(dir, "."+base+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if err := w.writeAndSync(tmp, data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, info.Mode().Perm()); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := copyOwner(tmpPath, info); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to set owner: %w", err)
	}
	if err := os.Rename(tmpPath, w.config.FilePath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace %s: %w", w.config.FilePath, err)
	}

	return nil
}

func (w *LogWriter) overwrite(data []byte, perm os.FileMode) error {
	file, err := os.OpenFile(w.config.FilePath, os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	if err := w.writeAndSync(file, data); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

func (w *LogWriter) writeAndSync(file *os.File, data []byte) error {
	writer := bufio.NewWriterSize(file, w.config.BufferSize)
	if _, err := writer.Write(data); err != nil {
		return fmt.Errorf("failed to write records: %w", err)
	}
	if err := writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush records: %w", err)
	}
	return file.Sync()
}
