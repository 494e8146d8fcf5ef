// Package production provides file persistence for attribute tables and
// notification of saved tables.
package production

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/comalice/ravecore/internal/attrtable"
	"github.com/comalice/ravecore/internal/object"
)

var ErrInvalidID = errors.New("invalid table id")

// Persister stores attribute tables by id.
type Persister interface {
	Save(ctx context.Context, id string, t *attrtable.Table) error
	// Load returns a new table the caller owns.
	Load(ctx context.Context, id string) (*attrtable.Table, error)
}

type codec struct {
	ext       string
	marshal   func(any) ([]byte, error)
	unmarshal func([]byte, any) error
}

var (
	jsonCodec = codec{
		ext:       ".json",
		marshal:   func(v any) ([]byte, error) { return json.MarshalIndent(v, "", "  ") },
		unmarshal: json.Unmarshal,
	}
	yamlCodec = codec{
		ext:       ".yaml",
		marshal:   yaml.Marshal,
		unmarshal: yaml.Unmarshal,
	}
)

// filePersister writes one snapshot file per id into dir.
type filePersister struct {
	dir       string
	codec     codec
	opts      []attrtable.Option
	publisher *ChannelPublisher
}

func newFilePersister(dir string, c codec, opts []Option) (*filePersister, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", dir, err)
	}
	p := &filePersister{dir: dir, codec: c}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Option configures a file persister.
type Option func(*filePersister)

// WithTableOptions sets the options loaded tables are created with.
func WithTableOptions(opts ...attrtable.Option) Option {
	return func(p *filePersister) {
		p.opts = append(p.opts, opts...)
	}
}

// WithPublisher announces every successful save on pub.
func WithPublisher(pub *ChannelPublisher) Option {
	return func(p *filePersister) {
		p.publisher = pub
	}
}

func (p *filePersister) path(id string) (string, error) {
	if id == "" || strings.ContainsAny(id, `/\`) || id == "." || id == ".." {
		return "", fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return filepath.Join(p.dir, id+p.codec.ext), nil
}

func (p *filePersister) save(ctx context.Context, id string, t *attrtable.Table) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	fn, err := p.path(id)
	if err != nil {
		return err
	}
	snap := t.Snapshot()
	data, err := p.codec.marshal(snap)
	if err != nil {
		return fmt.Errorf("%s marshal: %w", p.codec.ext[1:], err)
	}
	if err := os.WriteFile(fn, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", fn, err)
	}
	if p.publisher != nil {
		return p.publisher.Publish(ctx, SavedTable{
			ID:         id,
			Path:       fn,
			Revision:   snap.Revision,
			Attributes: len(snap.Attributes),
		})
	}
	return nil
}

func (p *filePersister) load(ctx context.Context, id string) (*attrtable.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	fn, err := p.path(id)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(fn)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("table %q: %w", id, os.ErrNotExist)
		}
		return nil, fmt.Errorf("read %s: %w", fn, err)
	}

	var snap attrtable.Snapshot
	if err := p.codec.unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("%s unmarshal: %w", p.codec.ext[1:], err)
	}
	t, err := attrtable.New(p.opts...)
	if err != nil {
		return nil, err
	}
	if err := t.Restore(snap); err != nil {
		object.Release(t)
		return nil, fmt.Errorf("table %q: %w", id, err)
	}
	return t, nil
}

// JSONPersister stores tables as indented JSON snapshots.
type JSONPersister struct {
	*filePersister
}

// NewJSONPersister creates a JSONPersister, ensuring the directory exists.
func NewJSONPersister(dir string, opts ...Option) (*JSONPersister, error) {
	p, err := newFilePersister(dir, jsonCodec, opts)
	if err != nil {
		return nil, err
	}
	return &JSONPersister{p}, nil
}

func (p *JSONPersister) Save(ctx context.Context, id string, t *attrtable.Table) error {
	return p.save(ctx, id, t)
}

func (p *JSONPersister) Load(ctx context.Context, id string) (*attrtable.Table, error) {
	return p.load(ctx, id)
}

// YAMLPersister stores tables as YAML snapshots.
type YAMLPersister struct {
	*filePersister
}

// NewYAMLPersister creates a YAMLPersister, ensuring the directory exists.
func NewYAMLPersister(dir string, opts ...Option) (*YAMLPersister, error) {
	p, err := newFilePersister(dir, yamlCodec, opts)
	if err != nil {
		return nil, err
	}
	return &YAMLPersister{p}, nil
}

func (p *YAMLPersister) Save(ctx context.Context, id string, t *attrtable.Table) error {
	return p.save(ctx, id, t)
}

func (p *YAMLPersister) Load(ctx context.Context, id string) (*attrtable.Table, error) {
	return p.load(ctx, id)
}

var (
	_ Persister = (*JSONPersister)(nil)
	_ Persister = (*YAMLPersister)(nil)
)
