package log

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// ConsoleOutput writes entries to stdout, or stderr for errors.
type ConsoleOutput struct {
	mu        sync.Mutex
	out       io.Writer
	errOut    io.Writer
	splitErrs bool
}

// ConsoleOutputOption configures a ConsoleOutput.
type ConsoleOutputOption func(*ConsoleOutput)

// WithWriter sends all entries to w.
func WithWriter(w io.Writer) ConsoleOutputOption {
	return func(o *ConsoleOutput) {
		o.out = w
		o.splitErrs = false
	}
}

// WithStderr sends all entries to stderr. CLI commands use it so stdout only
// carries command output.
func WithStderr() ConsoleOutputOption {
	return func(o *ConsoleOutput) {
		o.out = os.Stderr
		o.splitErrs = false
	}
}

// NewConsoleOutput creates a console output that writes errors to stderr and
// everything else to stdout.
func NewConsoleOutput(options ...ConsoleOutputOption) *ConsoleOutput {
	o := &ConsoleOutput{out: os.Stdout, errOut: os.Stderr, splitErrs: true}
	for _, option := range options {
		option(o)
	}
	return o
}

// Write implements Output.
func (o *ConsoleOutput) Write(entry *Entry, formatted []byte) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	w := o.out
	if o.splitErrs && entry.Level >= ErrorLevel {
		w = o.errOut
	}
	_, err := w.Write(formatted)
	return err
}

// Close implements Output.
func (o *ConsoleOutput) Close() error {
	return nil
}

// FileOutput appends entries to a file and rotates it once it grows past MaxSize.
type FileOutput struct {
	mu         sync.Mutex
	filename   string
	maxSize    int64
	maxBackups int
	file       *os.File
	size       int64
}

// NewFileOutput creates a file output. A maxSize of zero disables rotation.
func NewFileOutput(filename string, maxSize int64, maxBackups int) *FileOutput {
	return &FileOutput{filename: filename, maxSize: maxSize, maxBackups: maxBackups}
}

// Write implements Output.
func (o *FileOutput) Write(entry *Entry, formatted []byte) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.file == nil {
		if err := o.open(); err != nil {
			return err
		}
	}
	if o.maxSize > 0 && o.size+int64(len(formatted)) > o.maxSize {
		if err := o.rotate(); err != nil {
			return err
		}
	}

	n, err := o.file.Write(formatted)
	o.size += int64(n)
	return err
}

// Close implements Output.
func (o *FileOutput) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.file == nil {
		return nil
	}
	err := o.file.Close()
	o.file = nil
	return err
}

func (o *FileOutput) open() error {
	if err := os.MkdirAll(filepath.Dir(o.filename), 0o755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(o.filename, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return err
	}
	o.file = f
	o.size = info.Size()
	return nil
}

func (o *FileOutput) rotate() error {
	if err := o.file.Close(); err != nil {
		return err
	}
	o.file = nil

	backup := fmt.Sprintf("%s.%s", o.filename, time.Now().Format("20060102T150405.000"))
	if err := os.Rename(o.filename, backup); err != nil && !os.IsNotExist(err) {
		return err
	}
	if o.maxBackups > 0 {
		backups, err := filepath.Glob(o.filename + ".*")
		if err != nil {
			return err
		}
		// backup names sort by timestamp, oldest first
		sort.Strings(backups)
		for len(backups) > o.maxBackups {
			if err := os.Remove(backups[0]); err != nil {
				return err
			}
			backups = backups[1:]
		}
	}
	return o.open()
}

// NullOutput discards all entries.
type NullOutput struct{}

// Write implements Output.
func (NullOutput) Write(*Entry, []byte) error { return nil }

// Close implements Output.
func (NullOutput) Close() error { return nil }
