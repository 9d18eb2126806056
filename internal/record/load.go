package record

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"
)

// ErrNotFolder is returned by Load when the path is missing or not a directory.
var ErrNotFolder = errors.New("provided path is not a folder")

// LoadOptions configures Load.
type LoadOptions struct {
	// ModelVersion overrides SupportedModelVersion when non-empty.
	ModelVersion string
	// Workers bounds concurrent file parsing. Zero means GOMAXPROCS.
	Workers int
}

// Skip records a candidate file that was not treated as a record.
type Skip struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// LoadResult contains the records found under a folder.
type LoadResult struct {
	Records   []*Record
	Skipped   []Skip
	FileCount int // Number of *.json files found
}

// Load reads every *.json file under dir (recursively) and returns the files
// that decode to objects carrying the supported model_version, in
// lexicographic path order. Files that fail to read or parse, or that declare
// another version, are returned in Skipped rather than as errors.
func Load(ctx context.Context, dir string, opts LoadOptions) (*LoadResult, error) {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotFolder, dir)
	}

	files, err := FindRecordFiles(dir)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", dir, err)
	}

	version := opts.ModelVersion
	if version == "" {
		version = SupportedModelVersion
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	// Slots are filled by index so the output keeps path order.
	records := make([]*Record, len(files))
	reasons := make([]string, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, path := range files {
		i, path := i, path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rec, reason := loadFile(path, version)
			records[i] = rec
			reasons[i] = reason
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &LoadResult{FileCount: len(files)}
	for i, rec := range records {
		if rec == nil {
			result.Skipped = append(result.Skipped, Skip{Path: files[i], Reason: reasons[i]})
			continue
		}
		result.Records = append(result.Records, rec)
	}
	return result, nil
}

// loadFile returns either a record or the reason the file is not one.
func loadFile(path, version string) (*Record, string) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Sprintf("read failed: %v", err)
	}
	rec, err := Decode(data, path)
	if err != nil {
		return nil, "not a JSON object"
	}
	if !rec.Has(FieldModelVersion) {
		return nil, "missing model_version"
	}
	if rec.ModelVersion != version {
		return nil, fmt.Sprintf("unsupported model_version %s", rec.Raw(FieldModelVersion))
	}
	return rec, ""
}

// FindRecordFiles walks dir and returns all .json file paths, sorted.
func FindRecordFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && filepath.Ext(path) == ".json" {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}
