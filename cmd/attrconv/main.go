// Command attrconv converts ODIM attribute documents between revisions.
//
//	attrconv -in attrs.yaml -from 2.3 -to 2.4 [-out file] [-strict] [-v]
//
// The input is a YAML list of {name, format, value} documents, or a snapshot
// mapping with revision and attributes keys. The output is a snapshot at the
// target revision.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/comalice/ravecore/internal/attribute"
	"github.com/comalice/ravecore/internal/attrtable"
	"github.com/comalice/ravecore/internal/object"
	"github.com/comalice/ravecore/internal/production"
)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, errUsage) {
			if !errors.Is(err, flag.ErrHelp) {
				fmt.Fprintln(os.Stderr, "attrconv:", err)
			}
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, "attrconv:", err)
		os.Exit(1)
	}
}

// errUsage marks command-line errors, which exit with status 2.
var errUsage = errors.New("usage")

type options struct {
	in, out  string
	from, to attrtable.Revision
	strict   bool
	verbose  bool
	store    string
	id       string
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var o options
	fs := flag.NewFlagSet("attrconv", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.in, "in", "-", "input document (- for stdin)")
	fs.StringVar(&o.out, "out", "-", "output file (- for stdout)")
	from := fs.String("from", "", "revision the input is written at (default: snapshot revision, else latest)")
	to := fs.String("to", attrtable.RevisionLatest.String(), "revision to write")
	fs.BoolVar(&o.strict, "strict", false, "fail on attributes whose shape does not match their rule")
	fs.BoolVar(&o.verbose, "v", false, "debug logging")
	fs.StringVar(&o.store, "store", "", "also save the canonical table into this directory")
	fs.StringVar(&o.id, "id", "", "table id used with -store (default: input base name)")
	if err := fs.Parse(args); err != nil {
		return o, fmt.Errorf("%w: %w", errUsage, err)
	}

	o.from = attrtable.RevisionUndefined
	if *from != "" {
		r, err := attrtable.ParseRevision(*from)
		if err != nil {
			return o, fmt.Errorf("%w: -from: %w", errUsage, err)
		}
		o.from = r
	}
	r, err := attrtable.ParseRevision(*to)
	if err != nil {
		return o, fmt.Errorf("%w: -to: %w", errUsage, err)
	}
	o.to = r
	return o, nil
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	o, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	level := slog.LevelInfo
	if o.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	data, err := readInput(o.in, stdin)
	if err != nil {
		return err
	}
	snap, err := decodeInput(data)
	if err != nil {
		return fmt.Errorf("decode %s: %w", o.in, err)
	}
	if o.from != attrtable.RevisionUndefined {
		snap.Revision = o.from
	}
	if snap.Revision == attrtable.RevisionUndefined {
		snap.Revision = attrtable.RevisionLatest
	}

	tbl, err := attrtable.New(
		attrtable.WithRevision(o.to),
		attrtable.WithStrictShapes(o.strict),
		attrtable.WithLogger(logger),
	)
	if err != nil {
		return err
	}
	defer object.Release(tbl)

	if err := tbl.Import(snap); err != nil {
		return err
	}
	logger.Debug("imported attributes", "count", len(snap.Attributes), "from", snap.Revision.String())

	out, err := tbl.SnapshotVersion(o.to)
	if err != nil {
		return err
	}
	b, err := yaml.Marshal(out)
	if err != nil {
		return fmt.Errorf("yaml marshal: %w", err)
	}
	if err := writeOutput(o.out, stdout, b); err != nil {
		return err
	}
	logger.Info("converted", "attributes", len(out.Attributes), "from", snap.Revision.String(), "to", o.to.String())

	if o.store != "" {
		return store(ctx, o, tbl, logger)
	}
	return nil
}

// decodeInput accepts either a bare list of attribute documents or a snapshot.
func decodeInput(data []byte) (attrtable.Snapshot, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return attrtable.Snapshot{}, err
	}
	snap := attrtable.Snapshot{Revision: attrtable.RevisionUndefined}
	if len(node.Content) == 0 {
		return snap, nil
	}
	root := node.Content[0]
	switch root.Kind {
	case yaml.SequenceNode:
		var docs []attribute.Document
		if err := root.Decode(&docs); err != nil {
			return snap, err
		}
		snap.Attributes = docs
	case yaml.MappingNode:
		if err := root.Decode(&snap); err != nil {
			return snap, err
		}
	default:
		return snap, fmt.Errorf("expected a list or a mapping, got %s", root.ShortTag())
	}
	return snap, nil
}

func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return b, nil
}

func writeOutput(path string, stdout io.Writer, b []byte) error {
	if path == "-" {
		_, err := stdout.Write(b)
		return err
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func store(ctx context.Context, o options, tbl *attrtable.Table, logger *slog.Logger) error {
	id := o.id
	if id == "" {
		id = strings.TrimSuffix(filepath.Base(o.in), filepath.Ext(o.in))
	}
	if id == "-" || id == "" {
		id = "stdin"
	}

	saved := make(chan production.SavedTable, 1)
	pub := production.NewChannelPublisher(saved)
	defer pub.Close()

	p, err := production.NewYAMLPersister(o.store, production.WithPublisher(pub))
	if err != nil {
		return err
	}
	if err := p.Save(ctx, id, tbl); err != nil {
		return err
	}
	select {
	case ev := <-saved:
		logger.Info("stored canonical table", "id", ev.ID, "path", ev.Path, "attributes", ev.Attributes)
	default:
	}
	return nil
}
