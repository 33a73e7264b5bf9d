// Package codec reads and writes combat events as JSON Lines: one JSON
// object per line, discriminated by its "type" field.
package codec

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/okian/skirmish/internal/domain/model"
)

const maxLineBytes = 1 << 20

// Decoder reads events one line at a time. Blank lines are skipped.
type Decoder struct {
	scanner *bufio.Scanner
	line    int
}

// NewDecoder returns a decoder reading from r.
func NewDecoder(r io.Reader) *Decoder {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	return &Decoder{scanner: s}
}

// Line returns the number of the last line read.
func (d *Decoder) Line() int { return d.line }

// Decode returns the next event, or io.EOF when the input is exhausted.
// Malformed lines yield a *LineError.
func (d *Decoder) Decode() (model.Event, error) {
	for d.scanner.Scan() {
		d.line++
		text := strings.TrimSpace(d.scanner.Text())
		if text == "" {
			continue
		}

		var r record
		if err := json.Unmarshal([]byte(text), &r); err != nil {
			return nil, &LineError{Line: d.line, Err: fmt.Errorf("%w: %w", ErrSyntax, err)}
		}
		e, err := r.event()
		if err != nil {
			return nil, &LineError{Line: d.line, Err: err}
		}
		return e, nil
	}
	if err := d.scanner.Err(); err != nil {
		return nil, &LineError{Line: d.line + 1, Err: fmt.Errorf("%w: %w", ErrSyntax, err)}
	}
	return nil, io.EOF
}

// ReadAll decodes every event in r.
func ReadAll(r io.Reader) ([]model.Event, error) {
	d := NewDecoder(r)
	var events []model.Event
	for {
		e, err := d.Decode()
		if errors.Is(err, io.EOF) {
			return events, nil
		}
		if err != nil {
			return events, err
		}
		events = append(events, e)
	}
}

// Encoder writes events one per line.
type Encoder struct {
	enc *json.Encoder
}

// NewEncoder returns an encoder writing to w.
func NewEncoder(w io.Writer) *Encoder {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return &Encoder{enc: enc}
}

// Encode writes e followed by a newline.
func (e *Encoder) Encode(ev model.Event) error {
	if err := e.enc.Encode(model.Visit[record](ev, encoder{})); err != nil {
		return fmt.Errorf("encode event %s: %w", ev.Meta().ID, err)
	}
	return nil
}

// WriteAll encodes every event to w.
func WriteAll(w io.Writer, events []model.Event) error {
	enc := NewEncoder(w)
	for _, ev := range events {
		if err := enc.Encode(ev); err != nil {
			return err
		}
	}
	return nil
}
