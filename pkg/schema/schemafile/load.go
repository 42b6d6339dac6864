// Package schemafile loads a schema.Static catalog from YAML.
//
//	types:
//	  - name: Zone
//	    named: true
//	    references: [ZoneNames]
//	    fields:
//	      - {name: Name, kind: alpha, required: true}
//	      - {name: Multiplier, kind: numeric, keys: [autocalculate]}
//	      - {name: Construction, kind: reference, object_lists: [ConstructionNames], on_remove: forbidden}
package schemafile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"idfworkspace/pkg/schema"
)

type fileDoc struct {
	Types []typeDoc `yaml:"types"`
}

type typeDoc struct {
	Name        string     `yaml:"name"`
	Named       bool       `yaml:"named"`
	Unique      bool       `yaml:"unique"`
	Required    bool       `yaml:"required"`
	DefaultName string     `yaml:"default_name"`
	References  []string   `yaml:"references"`
	MinGroups   int        `yaml:"min_groups"`
	MaxGroups   int        `yaml:"max_groups"`
	Fields      []fieldDoc `yaml:"fields"`
	Extensible  []fieldDoc `yaml:"extensible"`
}

type fieldDoc struct {
	Name        string   `yaml:"name"`
	Kind        string   `yaml:"kind"`
	Required    bool     `yaml:"required"`
	ObjectLists []string `yaml:"object_lists"`
	References  []string `yaml:"references"`
	Keys        []string `yaml:"keys"`
	OnRemove    string   `yaml:"on_remove"`
}

// Load decodes a YAML schema document. Unknown keys are rejected.
func Load(r io.Reader) (*schema.Static, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var doc fileDoc
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("schema document is empty")
		}
		return nil, fmt.Errorf("decode schema: %w", err)
	}
	defs := make([]schema.TypeDef, 0, len(doc.Types))
	for _, td := range doc.Types {
		def, err := td.toTypeDef()
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	return schema.NewStatic(defs...)
}

// LoadFile reads and decodes the schema at path.
func LoadFile(path string) (*schema.Static, error) {
	// #nosec G304 -- schema path is supplied by the operator
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema %s: %w", path, err)
	}
	s, err := Load(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

func (td typeDoc) toTypeDef() (schema.TypeDef, error) {
	def := schema.TypeDef{
		Name:        td.Name,
		Named:       td.Named,
		Unique:      td.Unique,
		Required:    td.Required,
		DefaultName: td.DefaultName,
		References:  td.References,
		MinGroups:   td.MinGroups,
		MaxGroups:   td.MaxGroups,
	}
	for _, fd := range td.Fields {
		f, err := fd.toFieldDef()
		if err != nil {
			return schema.TypeDef{}, fmt.Errorf("object type %q: %w", td.Name, err)
		}
		def.Fields = append(def.Fields, f)
	}
	for _, fd := range td.Extensible {
		f, err := fd.toFieldDef()
		if err != nil {
			return schema.TypeDef{}, fmt.Errorf("object type %q extensible: %w", td.Name, err)
		}
		def.Extensible = append(def.Extensible, f)
	}
	return def, nil
}

func (fd fieldDoc) toFieldDef() (schema.FieldDef, error) {
	f := schema.FieldDef{
		Name:        fd.Name,
		Required:    fd.Required,
		ObjectLists: fd.ObjectLists,
		References:  fd.References,
		Keys:        fd.Keys,
	}
	switch strings.ToLower(fd.Kind) {
	case "", "alpha":
		f.Kind = schema.KindAlpha
	case "numeric", "real", "integer":
		f.Kind = schema.KindNumeric
	case "reference", "object-list":
		f.Kind = schema.KindReference
	default:
		return schema.FieldDef{}, fmt.Errorf("field %q: unknown kind %q", fd.Name, fd.Kind)
	}
	switch strings.ToLower(fd.OnRemove) {
	case "", "nulls":
		f.OnRemove = schema.RemovalNulls
	case "forbidden":
		f.OnRemove = schema.RemovalForbidden
	default:
		return schema.FieldDef{}, fmt.Errorf("field %q: unknown on_remove %q", fd.Name, fd.OnRemove)
	}
	return f, nil
}
