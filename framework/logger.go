package framework

import (
	"bytes"
	"fmt"
	"io"
	"sync"
	"time"
)

const timestampFormat = "2006-01-02 15:04:05.000"

// Logger is the minimal logging interface used throughout the harness. The standard library's
// *log.Logger satisfies it.
type Logger interface {
	Printf(message string, args ...interface{})
}

type nullLogger struct{}

func (n nullLogger) Printf(message string, args ...interface{}) {}

// NullLogger returns a Logger that discards everything.
func NullLogger() Logger { return nullLogger{} }

type prefixedLogger struct {
	target Logger
	prefix string
}

func (p prefixedLogger) Printf(message string, args ...interface{}) {
	p.target.Printf("%s%s", p.prefix, fmt.Sprintf(message, args...))
}

// PrefixedLogger returns a Logger that adds a prefix to every message before passing it on.
func PrefixedLogger(target Logger, prefix string) Logger {
	if target == nil {
		return NullLogger()
	}
	return prefixedLogger{target: target, prefix: prefix}
}

type CapturedMessage struct {
	Time    time.Time
	Message string
}

type CapturedOutput []CapturedMessage

// CapturingLogger accumulates messages in memory so that they can be shown only if a test
// fails. It is safe for concurrent use.
type CapturingLogger struct {
	output []CapturedMessage
	lock   sync.Mutex
}

func (l *CapturingLogger) Printf(message string, args ...interface{}) {
	l.lock.Lock()
	l.output = append(l.output, CapturedMessage{Time: time.Now(), Message: fmt.Sprintf(message, args...)})
	l.lock.Unlock()
}

func (l *CapturingLogger) Output() CapturedOutput {
	l.lock.Lock()
	ret := append([]CapturedMessage(nil), l.output...)
	l.lock.Unlock()
	return ret
}

func (output CapturedOutput) Dump(dest io.Writer, prefix string) {
	for _, m := range output {
		fmt.Fprintf(dest, "%s[%s] %s\n",
			prefix,
			m.Time.Format(timestampFormat),
			m.Message,
		)
	}
}

// LineWriter is an io.Writer that passes each complete line of output to a Logger. It is used
// for streaming the output of a child process into the debug log.
type LineWriter struct {
	logger  Logger
	pending []byte
	lock    sync.Mutex
}

func NewLineWriter(logger Logger) *LineWriter {
	if logger == nil {
		logger = NullLogger()
	}
	return &LineWriter{logger: logger}
}

func (w *LineWriter) Write(data []byte) (int, error) {
	w.lock.Lock()
	defer w.lock.Unlock()
	w.pending = append(w.pending, data...)
	for {
		pos := bytes.IndexByte(w.pending, '\n')
		if pos < 0 {
			break
		}
		line := bytes.TrimRight(w.pending[:pos], "\r")
		w.logger.Printf("%s", string(line))
		w.pending = w.pending[pos+1:]
	}
	return len(data), nil
}

// Flush logs any trailing partial line.
func (w *LineWriter) Flush() {
	w.lock.Lock()
	defer w.lock.Unlock()
	if len(w.pending) > 0 {
		w.logger.Printf("%s", string(w.pending))
		w.pending = nil
	}
}
