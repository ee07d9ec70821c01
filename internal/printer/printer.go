// Package printer carries verbose notices about index changes to the user.
package printer

import (
	"fmt"
	"io"
	"sync"
)

// Printer receives verbose-only notices such as added, overwritten, dropped and ignored repositories.
type Printer interface {
	Printf(format string, args ...any)
}

type writerPrinter struct {
	writer io.Writer
	mutex  sync.Mutex
}

type discardPrinter struct{}

// NewWriterPrinter constructs a Printer writing to writer when verbose is set.
// A non-verbose or writer-less printer discards every notice.
func NewWriterPrinter(writer io.Writer, verbose bool) Printer {
	if !verbose || writer == nil || writer == io.Discard {
		return discardPrinter{}
	}
	return &writerPrinter{writer: writer}
}

// Discard returns a Printer that drops every notice.
func Discard() Printer {
	return discardPrinter{}
}

// Printf formats the notice and flushes the underlying writer when it buffers.
func (printer *writerPrinter) Printf(format string, args ...any) {
	printer.mutex.Lock()
	defer printer.mutex.Unlock()

	if _, writeError := fmt.Fprintf(printer.writer, format, args...); writeError != nil {
		return
	}
	if flushableWriter, implementsFlush := printer.writer.(interface{ Flush() error }); implementsFlush {
		_ = flushableWriter.Flush()
	}
}

func (discardPrinter) Printf(string, ...any) {}
