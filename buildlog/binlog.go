package buildlog

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/willibrandon/projsys/logmodel"
)

// Binary log layout: a header followed by a stream of msgpack-encoded
// logmodel.Event values.
const (
	binlogMagic   = "PROJSYS-BINLOG"
	binlogVersion = 1
)

// ErrNotBinaryLog is returned when a file does not start with a binary log header.
var ErrNotBinaryLog = errors.New("not a binary build log")

type header struct {
	Magic   string `msgpack:"magic"`
	Version int    `msgpack:"version"`
}

// Writer appends events to a binary log.
type Writer struct {
	f   *os.File
	buf *bufio.Writer
	enc *msgpack.Encoder
	n   int
}

// Create creates (or truncates) a binary log at path and writes the header.
func Create(path string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create build log: %w", err)
	}
	buf := bufio.NewWriter(f)
	w := &Writer{f: f, buf: buf, enc: msgpack.NewEncoder(buf)}
	if err := w.enc.Encode(header{Magic: binlogMagic, Version: binlogVersion}); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("write build log header: %w", err)
	}
	return w, nil
}

// Write appends one event.
func (w *Writer) Write(e logmodel.Event) error {
	if err := w.enc.Encode(&e); err != nil {
		return fmt.Errorf("encode %s event: %w", e.Kind, err)
	}
	w.n++
	return nil
}

// Count returns the number of events written.
func (w *Writer) Count() int {
	return w.n
}

// Close flushes buffered events and closes the file.
func (w *Writer) Close() error {
	flushErr := w.buf.Flush()
	closeErr := w.f.Close()
	if flushErr != nil {
		return fmt.Errorf("flush build log: %w", flushErr)
	}
	return closeErr
}

// Decode reads every event from r.
func Decode(r io.Reader) ([]logmodel.Event, error) {
	dec := msgpack.NewDecoder(bufio.NewReader(r))

	var h header
	if err := dec.Decode(&h); err != nil || h.Magic != binlogMagic {
		return nil, ErrNotBinaryLog
	}
	if h.Version != binlogVersion {
		return nil, fmt.Errorf("unsupported build log version %d", h.Version)
	}

	var events []logmodel.Event
	for {
		var e logmodel.Event
		if err := dec.Decode(&e); err != nil {
			if errors.Is(err, io.EOF) {
				return events, nil
			}
			return nil, fmt.Errorf("decode event %d: %w", len(events), err)
		}
		e.Timestamp = e.Timestamp.UTC()
		events = append(events, e)
	}
}

// ReadEvents reads every event from the binary log at path.
func ReadEvents(path string) ([]logmodel.Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open build log: %w", err)
	}
	defer f.Close()

	events, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return events, nil
}
