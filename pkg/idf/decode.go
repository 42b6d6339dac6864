package idf

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"

	"idfworkspace/pkg/domain"
)

const handleDirective = "handle"

// SyntaxError reports malformed input.
type SyntaxError struct {
	Line int
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("idf: line %d: %s", e.Line, e.Msg)
}

// Decoder reads records from an input stream.
type Decoder struct {
	scanner *bufio.Scanner
	line    int

	pendingHandle string
	current       *domain.StreamRecord
	token         strings.Builder
	out           []domain.StreamRecord
}

// NewDecoder returns a decoder reading from r.
func NewDecoder(r io.Reader) *Decoder {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	return &Decoder{scanner: s}
}

// Decode reads every record until EOF.
func (d *Decoder) Decode() ([]domain.StreamRecord, error) {
	for d.scanner.Scan() {
		d.line++
		if err := d.consume(d.scanner.Text()); err != nil {
			return nil, err
		}
	}
	if err := d.scanner.Err(); err != nil {
		return nil, fmt.Errorf("idf: read: %w", err)
	}
	if d.current != nil || strings.TrimSpace(d.token.String()) != "" {
		return nil, &SyntaxError{Line: d.line, Msg: "unterminated record"}
	}
	if d.pendingHandle != "" {
		return nil, &SyntaxError{Line: d.line, Msg: "handle directive without a record"}
	}
	return d.out, nil
}

func (d *Decoder) consume(line string) error {
	trimmed := strings.TrimSpace(line)
	if strings.HasPrefix(trimmed, "!") {
		return d.directive(strings.TrimSpace(trimmed[1:]))
	}
	if i := strings.IndexByte(line, '!'); i >= 0 {
		line = line[:i]
	}
	for _, r := range line {
		switch r {
		case ',':
			if err := d.emit(false); err != nil {
				return err
			}
		case ';':
			if err := d.emit(true); err != nil {
				return err
			}
		default:
			d.token.WriteRune(r)
		}
	}
	// a field never spans lines
	if d.current != nil && strings.TrimSpace(d.token.String()) != "" {
		return &SyntaxError{Line: d.line, Msg: "field is not terminated by ',' or ';'"}
	}
	if d.current == nil && strings.TrimSpace(d.token.String()) != "" {
		return &SyntaxError{Line: d.line, Msg: "object type is not terminated by ',' or ';'"}
	}
	d.token.Reset()
	return nil
}

func (d *Decoder) directive(text string) error {
	keyword, value, ok := strings.Cut(text, " ")
	if !ok || keyword != handleDirective {
		return nil
	}
	if d.current != nil {
		return &SyntaxError{Line: d.line, Msg: "handle directive inside a record"}
	}
	value = strings.TrimSpace(value)
	if _, err := domain.ParseHandle(value); err != nil {
		return &SyntaxError{Line: d.line, Msg: err.Error()}
	}
	d.pendingHandle = value
	return nil
}

func (d *Decoder) emit(end bool) error {
	tok := strings.TrimSpace(d.token.String())
	d.token.Reset()
	if d.current == nil {
		if tok == "" {
			return &SyntaxError{Line: d.line, Msg: "missing object type"}
		}
		d.current = &domain.StreamRecord{Handle: d.pendingHandle, Type: tok}
		d.pendingHandle = ""
	} else {
		d.current.Fields = append(d.current.Fields, tok)
	}
	if end {
		d.out = append(d.out, *d.current)
		d.current = nil
	}
	return nil
}

// Unmarshal decodes data.
func Unmarshal(data []byte) ([]domain.StreamRecord, error) {
	return NewDecoder(bytes.NewReader(data)).Decode()
}
