package catalog

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/parquet-go/parquet-go"
	"gopkg.in/yaml.v3"

	"logomatch/internal/failures"
	"logomatch/internal/logging"
)

const (
	jsonlMaxLine     = 1024 * 1024
	parquetBatchSize = 256
)

// Load reads the catalog at path, choosing the decoder from the extension.
// Any failure is an enumeration error: nothing can be resolved without the
// catalog.
func Load(ctx context.Context, path string, logger *slog.Logger) (*Catalog, error) {
	logger = logging.NewComponentLogger(logger, "catalog")

	var (
		entries []Entry
		err     error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		entries, err = loadJSON(path)
	case ".jsonl", ".ndjson":
		entries, err = loadJSONL(ctx, path)
	case ".yaml", ".yml":
		entries, err = loadYAML(path)
	case ".parquet":
		entries, err = loadParquet(ctx, path)
	default:
		err = fmt.Errorf("unsupported file format %q", ext)
	}
	if err != nil {
		return nil, failures.Wrap(failures.ErrEnumeration, "catalog", "load", path, err)
	}

	cat := New(entries)
	if cat.Len() == 0 {
		return nil, failures.Wrap(failures.ErrEnumeration, "catalog", "load", path, errors.New("catalog has no named entries"))
	}
	if cat.Dropped() > 0 {
		logging.WarnWithContext(logger, "catalog entries without a name were skipped", "catalog_entries_dropped",
			logging.Int("dropped", cat.Dropped()),
			logging.String("path", path),
			logging.String(logging.FieldErrorHint, "give every entry a NAME value"),
			logging.String(logging.FieldImpact, "skipped entries cannot be matched"))
	}
	logger.Info("loaded catalog",
		logging.String("path", path),
		logging.Int("entries", cat.Len()),
		logging.Int("duplicate_names", cat.Duplicates()))
	return cat, nil
}

func loadJSON(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parseJSON(data)
}

// parseJSON accepts a bare array or an object wrapping the array under
// "entries" or "schools".
func parseJSON(data []byte) ([]Entry, error) {
	data = bytes.TrimSpace(bytes.TrimPrefix(data, []byte("\xEF\xBB\xBF")))
	if len(data) == 0 {
		return nil, nil
	}
	if data[0] == '{' {
		var wrapper struct {
			Entries []Entry `json:"entries"`
			Schools []Entry `json:"schools"`
		}
		if err := json.Unmarshal(data, &wrapper); err != nil {
			return nil, fmt.Errorf("parse json: %w", err)
		}
		return append(wrapper.Entries, wrapper.Schools...), nil
	}
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}
	return entries, nil
}

func loadJSONL(ctx context.Context, path string) ([]Entry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var entries []Entry
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 64*1024), jsonlMaxLine)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		if lineNum%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var entry Entry
		if err := json.Unmarshal(line, &entry); err != nil {
			return nil, fmt.Errorf("parse line %d: %w", lineNum, err)
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read line %d: %w", lineNum+1, err)
	}
	return entries, nil
}

func loadYAML(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	if len(doc.Content) == 0 {
		return nil, nil
	}
	root := doc.Content[0]
	if root.Kind == yaml.MappingNode {
		root = yamlSequence(root)
		if root == nil {
			return nil, errors.New("parse yaml: expected a list or an entries/schools key")
		}
	}
	var rows []map[string]any
	if err := root.Decode(&rows); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	entries := make([]Entry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, entryFromFields(row))
	}
	return entries, nil
}

func yamlSequence(mapping *yaml.Node) *yaml.Node {
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		switch strings.ToLower(mapping.Content[i].Value) {
		case "entries", "schools":
			return mapping.Content[i+1]
		}
	}
	return nil
}

// entryFromFields maps keys case-insensitively so hand-written YAML can use
// either the dataset's upper-case keys or lower-case ones.
func entryFromFields(fields map[string]any) Entry {
	var entry Entry
	for key, raw := range fields {
		if raw == nil {
			continue
		}
		value := fmt.Sprint(raw)
		switch strings.ToLower(strings.TrimSpace(key)) {
		case "name":
			entry.Name = value
		case "city":
			entry.City = value
		case "state":
			entry.State = value
		case "alias":
			entry.Alias = value
		case "website":
			entry.Website = value
		}
	}
	return entry
}

func loadParquet(ctx context.Context, path string) ([]Entry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat parquet: %w", err)
	}
	pf, err := parquet.OpenFile(file, info.Size())
	if err != nil {
		return nil, fmt.Errorf("open parquet: %w", err)
	}

	reader := parquet.NewGenericReader[Entry](pf)
	defer reader.Close()

	entries := make([]Entry, 0, pf.NumRows())
	rows := make([]Entry, parquetBatchSize)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		n, err := reader.Read(rows)
		entries = append(entries, rows[:n]...)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read parquet rows: %w", err)
		}
		if n == 0 {
			break
		}
	}
	return entries, nil
}
