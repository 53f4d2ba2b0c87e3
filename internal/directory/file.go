package directory

import (
	"context"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/SkylineCommunications/idpcheck/internal/core"
)

// Snapshot is the YAML document the file directory reads and writes.
//
//	elements:
//	  - {agent: 1, id: 12, name: Encoder 12, properties: {IDP: "true"}}
//	views:
//	  Encoders: ["1/12"]
//	tables:
//	  - {element: DataMiner IDP, table: 1100, column: 1104, rows: {"1/12": Encoder 12}}
//	parameters:
//	  - {element: DataMiner IDP, parameter: 72}
type Snapshot struct {
	Elements   []SnapshotElement   `yaml:"elements"`
	Views      map[string][]string `yaml:"views,omitempty"`
	Tables     []SnapshotTable     `yaml:"tables"`
	Parameters []SnapshotParameter `yaml:"parameters"`
	Triggers   []TriggerCall       `yaml:"triggers,omitempty"`
}

type SnapshotElement struct {
	core.Element `yaml:",inline"`
	Properties   map[string]string `yaml:"properties"`
}

type SnapshotTable struct {
	Element string            `yaml:"element"`
	Table   int               `yaml:"table"`
	Column  int               `yaml:"column"`
	Rows    map[string]string `yaml:"rows"`
}

type SnapshotParameter struct {
	Element   string `yaml:"element"`
	Parameter int    `yaml:"parameter"`
}

// File is a directory backed by a YAML snapshot. Reads are served from
// memory; every property write and trigger is persisted back to the file.
type File struct {
	Path string

	fs    core.FileSystem
	mem   *Memory
	doc   Snapshot
	index map[string]int // element key -> position in doc.Elements
}

// OpenFile loads the snapshot at path.
func OpenFile(fs core.FileSystem, path string) (*File, error) {
	data, err := fs.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read directory snapshot: %w", err)
	}

	var doc Snapshot
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("yaml parse error in %s: %w", path, err)
	}

	f := &File{
		Path:  path,
		fs:    fs,
		mem:   NewMemory(),
		doc:   doc,
		index: make(map[string]int, len(doc.Elements)),
	}

	for i, e := range doc.Elements {
		key := e.Key()
		if _, dup := f.index[key]; dup {
			return nil, fmt.Errorf("%s: duplicate element %s", path, key)
		}
		f.index[key] = i
		f.mem.AddElement(e.Element, e.Properties)
		if f.doc.Elements[i].Properties == nil {
			f.doc.Elements[i].Properties = make(map[string]string)
		}
	}
	for view, keys := range doc.Views {
		f.mem.AddToView(view, keys...)
	}
	for _, t := range doc.Tables {
		f.mem.SetTable(core.TableRef{Element: t.Element, Table: t.Table, Column: t.Column}, t.Rows)
	}
	for _, p := range doc.Parameters {
		f.mem.AddParameter(core.ParameterRef{Element: p.Element, Parameter: p.Parameter})
	}

	return f, nil
}

func (f *File) ListElements(ctx context.Context, view string) ([]core.Element, error) {
	return f.mem.ListElements(ctx, view)
}

func (f *File) GetProperty(ctx context.Context, key, name string) (string, error) {
	return f.mem.GetProperty(ctx, key, name)
}

func (f *File) SetProperty(ctx context.Context, key, name, value string) error {
	if err := f.mem.SetProperty(ctx, key, name, value); err != nil {
		return err
	}
	f.doc.Elements[f.index[key]].Properties[name] = value
	return f.save()
}

func (f *File) ReadTable(ctx context.Context, ref core.TableRef) (map[string]string, error) {
	return f.mem.ReadTable(ctx, ref)
}

func (f *File) Trigger(ctx context.Context, ref core.ParameterRef, value string) error {
	if err := f.mem.Trigger(ctx, ref, value); err != nil {
		return err
	}
	f.doc.Triggers = append(f.doc.Triggers, TriggerCall{Element: ref.Element, Parameter: ref.Parameter, Value: value})
	return f.save()
}

func (f *File) save() error {
	data, err := yaml.Marshal(&f.doc)
	if err != nil {
		return err
	}
	if err := f.fs.WriteFile(f.Path, data, 0644); err != nil {
		return fmt.Errorf("could not write directory snapshot: %w", err)
	}
	return nil
}

var _ core.Directory = (*File)(nil)
