// Package corpus loads case records from the file-per-case store and builds
// the immutable per-run snapshot used for cross-record comparison.
package corpus

import (
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/legalgapdb/gapcheck/internal/model"
)

// LoadError records a case file that could not be parsed. Parse failures are
// per-case findings, not run failures: the file is surfaced as a structural
// failure downstream while the rest of the corpus proceeds.
type LoadError struct {
	Path string
	Err  error
}

// LoadDir walks root and strict-parses every case file (.json, .yaml, .yml)
// into typed records, sorted by case ID. An unreadable root is a pipeline
// error; individual malformed files come back in the second return value.
func LoadDir(root string) ([]model.CaseRecord, []LoadError, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, nil, eris.Wrapf(err, "corpus: stat %s", root)
	}
	if !info.IsDir() {
		return nil, nil, eris.Errorf("corpus: %s is not a directory", root)
	}

	var records []model.CaseRecord
	var loadErrs []LoadError

	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !isCaseFile(path) {
			return nil
		}

		rec, err := LoadFile(path)
		if err != nil {
			zap.L().Warn("corpus: skipping unparseable case file",
				zap.String("path", path),
				zap.Error(err),
			)
			loadErrs = append(loadErrs, LoadError{Path: path, Err: err})
			return nil
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			rel = path
		}
		rec.SourcePath = rel
		records = append(records, *rec)
		return nil
	})
	if walkErr != nil {
		return nil, nil, eris.Wrapf(walkErr, "corpus: walk %s", root)
	}

	sort.Slice(records, func(i, j int) bool { return records[i].ID < records[j].ID })
	return records, loadErrs, nil
}

// LoadFile parses a single case file into a typed record. Unknown JSON
// fields are rejected so schema drift surfaces at load time instead of as
// silently-ignored data.
func LoadFile(path string) (*model.CaseRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "corpus: read %s", path)
	}

	var rec model.CaseRecord
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		dec := json.NewDecoder(strings.NewReader(string(data)))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&rec); err != nil {
			return nil, eris.Wrapf(err, "corpus: parse %s", path)
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(strings.NewReader(string(data)))
		dec.KnownFields(true)
		if err := dec.Decode(&rec); err != nil {
			return nil, eris.Wrapf(err, "corpus: parse %s", path)
		}
	default:
		return nil, eris.Errorf("corpus: unsupported case file %s", path)
	}

	rec.SourcePath = filepath.Base(path)
	return &rec, nil
}

// FindByID scans root for the case file matching id, relying on the
// filename-matches-ID convention.
func FindByID(root, id string) (*model.CaseRecord, error) {
	var found string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !isCaseFile(path) {
			return nil
		}
		base := filepath.Base(path)
		if strings.TrimSuffix(base, filepath.Ext(base)) == id {
			found = path
			return fs.SkipAll
		}
		return nil
	})
	if err != nil {
		return nil, eris.Wrapf(err, "corpus: walk %s", root)
	}
	if found == "" {
		return nil, eris.Errorf("corpus: case %s not found under %s", id, root)
	}
	return LoadFile(found)
}

func isCaseFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	}
	return false
}
