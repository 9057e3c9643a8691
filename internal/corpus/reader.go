// Package corpus streams thread records from line-delimited JSON.
package corpus

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"threadpack/internal/model"
)

// MalformedError reports a corpus line that is not a thread object.
type MalformedError struct {
	Line int
	Err  error
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("corpus: malformed record on line %d: %v", e.Line, e.Err)
}

func (e *MalformedError) Unwrap() error { return e.Err }

var errNotObject = errors.New("record is not a JSON object")

// Reader yields one thread per non-blank line. The first malformed line ends
// the stream with a *MalformedError.
type Reader struct {
	br     *bufio.Reader
	closer io.Closer
	line   int
	err    error
}

// NewReader wraps r. Lines may be of any length.
func NewReader(r io.Reader) *Reader {
	return &Reader{br: bufio.NewReaderSize(r, 64*1024)}
}

// Open opens a JSONL file for streaming.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open corpus: %w", err)
	}
	r := NewReader(f)
	r.closer = f
	return r, nil
}

// Next returns the next thread, or io.EOF once the stream is exhausted.
func (r *Reader) Next() (model.Thread, error) {
	if r.err != nil {
		return model.Thread{}, r.err
	}
	for {
		raw, err := r.br.ReadBytes('\n')
		if len(raw) > 0 {
			r.line++
			trimmed := bytes.TrimSpace(raw)
			if len(trimmed) > 0 {
				return r.decode(trimmed)
			}
		}
		if errors.Is(err, io.EOF) {
			r.err = io.EOF
			return model.Thread{}, io.EOF
		}
		if err != nil {
			r.err = fmt.Errorf("read corpus: %w", err)
			return model.Thread{}, r.err
		}
	}
}

func (r *Reader) decode(b []byte) (model.Thread, error) {
	var t model.Thread
	if b[0] != '{' {
		r.err = &MalformedError{Line: r.line, Err: errNotObject}
		return t, r.err
	}
	if err := json.Unmarshal(b, &t); err != nil {
		r.err = &MalformedError{Line: r.line, Err: err}
		return model.Thread{}, r.err
	}
	return t, nil
}

// Line is the number of the last line consumed.
func (r *Reader) Line() int { return r.line }

// Close releases the underlying file, if any.
func (r *Reader) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer.Close()
}

// Each calls fn for every thread until the stream ends or fn fails.
func Each(r interface {
	Next() (model.Thread, error)
}, fn func(model.Thread) error) error {
	for {
		t, err := r.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := fn(t); err != nil {
			return err
		}
	}
}
