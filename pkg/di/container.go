// Package di provides dependency injection container
package di

import (
	"io"
	"os"

	"github.com/ssargent/utmptrace/pkg/metrics"
	"github.com/ssargent/utmptrace/pkg/storage"
)

// ArchiveOpener opens the removed-record archive rooted at dir
type ArchiveOpener interface {
	Open(dir string) (*storage.Archive, error)
}

type pebbleArchiveOpener struct{}

func (pebbleArchiveOpener) Open(dir string) (*storage.Archive, error) {
	return storage.OpenArchive(dir)
}

// NewArchiveOpener returns the default archive opener
func NewArchiveOpener() ArchiveOpener {
	return pebbleArchiveOpener{}
}

// Container holds all the dependencies for the application
type Container struct {
	archiveOpener ArchiveOpener
	metrics       *metrics.Metrics
	stdin         io.Reader
	stdout        io.Writer
	stderr        io.Writer
}

// NewContainer creates a new dependency injection container
func NewContainer() *Container {
	return &Container{
		archiveOpener: NewArchiveOpener(),
		metrics:       metrics.NewMetrics(),
		stdin:         os.Stdin,
		stdout:        os.Stdout,
		stderr:        os.Stderr,
	}
}

// GetArchiveOpener returns the archive opener
func (c *Container) GetArchiveOpener() ArchiveOpener {
	return c.archiveOpener
}

// SetArchiveOpener allows overriding the archive opener (for testing)
func (c *Container) SetArchiveOpener(opener ArchiveOpener) {
	c.archiveOpener = opener
}

// GetMetrics returns the run metrics
func (c *Container) GetMetrics() *metrics.Metrics {
	return c.metrics
}

// Stdin returns the input stream used for confirmations
func (c *Container) Stdin() io.Reader {
	return c.stdin
}

// Stdout returns the stream results are rendered to
func (c *Container) Stdout() io.Writer {
	return c.stdout
}

// Stderr returns the stream logs are written to
func (c *Container) Stderr() io.Writer {
	return c.stderr
}

// SetStreams replaces the standard streams (for testing)
func (c *Container) SetStreams(in io.Reader, out, errOut io.Writer) {
	c.stdin = in
	c.stdout = out
	c.stderr = errOut
}
