package history

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sourcegraph/conc/pool"
)

// artifactVersion is incremented when the on-disk artifact format changes.
const artifactVersion = 1

// artifactFormat is the on-disk representation of a ".hist" artifact.
type artifactFormat struct {
	Version   int
	CreatedAt int64
	Trials    map[string][]Record
}

// Save writes h to path using encoding/gob. The write is atomic: a temp file
// is created next to path and renamed on success.
func Save(path string, h History) error {
	if path == "" {
		return fmt.Errorf("empty artifact path")
	}

	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}

	tmpFile, err := os.CreateTemp(dir, filepath.Base(path)+".tmp.*")
	if err != nil {
		return fmt.Errorf("create temp artifact: %w", err)
	}
	tmpName := tmpFile.Name()
	defer func() {
		tmpFile.Close()
		_ = os.Remove(tmpName)
	}()

	af := artifactFormat{
		Version:   artifactVersion,
		CreatedAt: time.Now().Unix(),
		Trials:    make(map[string][]Record, len(h)),
	}
	for name, t := range h {
		af.Trials[name] = t.Records
	}

	if err := gob.NewEncoder(tmpFile).Encode(&af); err != nil {
		return fmt.Errorf("encode artifact: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("close temp artifact: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename temp artifact to %s: %w", path, err)
	}
	return nil
}

// Load reads a single ".hist" artifact. Every trial gets the run suffix of
// path and its records sorted by step.
func Load(path string) (History, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open artifact %s: %w", path, err)
	}
	defer fh.Close()

	var af artifactFormat
	if err := gob.NewDecoder(fh).Decode(&af); err != nil {
		return nil, fmt.Errorf("decode artifact %s: %w", path, err)
	}
	if af.Version != artifactVersion {
		return nil, fmt.Errorf("artifact %s version mismatch: artifact=%d expected=%d", path, af.Version, artifactVersion)
	}

	suffix := RunSuffix(path)
	h := make(History, len(af.Trials))
	for name, records := range af.Trials {
		t := &Trial{Name: name, Suffix: suffix, Records: records}
		t.Sort()
		h[name] = t
	}
	return h, nil
}

// LoadAll reads the artifacts at paths concurrently and merges them in the
// order of paths (see History.Merge).
func LoadAll(paths []string, log logrus.FieldLogger) (History, error) {
	loaded := make([]History, len(paths))

	p := pool.New().WithErrors()
	for i, path := range paths {
		p.Go(func() error {
			h, err := load(path)
			if err != nil {
				return err
			}
			loaded[i] = h
			log.WithFields(logrus.Fields{
				"path":   path,
				"trials": len(h),
			}).Debug("loaded history artifact")
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return nil, err
	}

	merged := make(History)
	for i, h := range loaded {
		merged.Merge(h, RunSuffix(paths[i]))
	}
	log.WithFields(logrus.Fields{
		"artifacts": len(paths),
		"trials":    len(merged),
	}).Info("histories loaded")
	return merged, nil
}

// load dispatches on the file extension: ".csv" files are imported with
// LoadCSV, everything else is read as a gob artifact.
func load(path string) (History, error) {
	if filepath.Ext(path) == ".csv" {
		return LoadCSV(path)
	}
	return Load(path)
}

// Discover returns the ".hist" artifacts found directly in dir, falling back
// to ".csv" files when there are none. Paths are sorted.
func Discover(dir string) ([]string, error) {
	for _, ext := range []string{"*.hist", "*.csv"} {
		matches, err := filepath.Glob(filepath.Join(dir, ext))
		if err != nil {
			return nil, err
		}
		if len(matches) > 0 {
			sort.Strings(matches)
			return matches, nil
		}
	}
	return nil, fmt.Errorf("no history artifacts found in %s", dir)
}
