package idf

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"

	"idfworkspace/pkg/domain"
	"idfworkspace/pkg/schema"
)

const commentColumn = 27

// Encoder writes records to an output stream.
type Encoder struct {
	w        *bufio.Writer
	provider schema.Provider
	handles  bool
}

// EncoderOption configures an Encoder.
type EncoderOption func(*Encoder)

// WithSchema annotates every field with its name from provider.
func WithSchema(provider schema.Provider) EncoderOption {
	return func(e *Encoder) { e.provider = provider }
}

// WithHandles controls whether "! handle" directives are written. They are by default.
func WithHandles(on bool) EncoderOption {
	return func(e *Encoder) { e.handles = on }
}

// NewEncoder returns an encoder writing to w.
func NewEncoder(w io.Writer, opts ...EncoderOption) *Encoder {
	e := &Encoder{w: bufio.NewWriter(w), handles: true}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Encode writes stream, one blank line between records.
func (e *Encoder) Encode(stream []domain.StreamRecord) error {
	for i, sr := range stream {
		if i > 0 {
			e.w.WriteByte('\n')
		}
		if err := e.encodeRecord(sr); err != nil {
			return err
		}
	}
	return e.w.Flush()
}

func (e *Encoder) encodeRecord(sr domain.StreamRecord) error {
	if err := checkText(sr.Type); err != nil || strings.TrimSpace(sr.Type) == "" {
		return fmt.Errorf("idf: object type %q cannot be written", sr.Type)
	}
	var def *schema.TypeDef
	if e.provider != nil {
		def, _ = e.provider.ObjectType(sr.Type)
	}
	if e.handles && sr.Handle != "" {
		fmt.Fprintf(e.w, "! %s %s\n", handleDirective, sr.Handle)
	}
	if len(sr.Fields) == 0 {
		fmt.Fprintf(e.w, "%s;\n", sr.Type)
		return nil
	}
	fmt.Fprintf(e.w, "%s,\n", sr.Type)
	for i, f := range sr.Fields {
		if err := checkText(f); err != nil {
			return fmt.Errorf("idf: %s field %d: %w", sr.Type, i, err)
		}
		sep := ","
		if i == len(sr.Fields)-1 {
			sep = ";"
		}
		line := "  " + f + sep
		if def != nil {
			if fd, ok := def.Field(i); ok {
				line = pad(line) + "!- " + fd.Name
			}
		}
		e.w.WriteString(line)
		e.w.WriteByte('\n')
	}
	return nil
}

func pad(s string) string {
	if len(s) >= commentColumn {
		return s + " "
	}
	return s + strings.Repeat(" ", commentColumn-len(s))
}

func checkText(s string) error {
	if strings.ContainsAny(s, ",;!\n\r") {
		return fmt.Errorf("value %q contains a reserved character", s)
	}
	if strings.TrimSpace(s) != s {
		return fmt.Errorf("value %q has surrounding whitespace", s)
	}
	return nil
}

// Marshal encodes stream, annotating fields from provider when it is not nil.
func Marshal(stream []domain.StreamRecord, provider schema.Provider) ([]byte, error) {
	var buf bytes.Buffer
	var opts []EncoderOption
	if provider != nil {
		opts = append(opts, WithSchema(provider))
	}
	if err := NewEncoder(&buf, opts...).Encode(stream); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
