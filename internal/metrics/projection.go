package metrics

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"hash/fnv"
	"os"
	"path/filepath"
	"strconv"

	"github.com/balkashynov/floortrack/internal/ledger"
)

// ProjectionHeader is the column row of every derived category file
var ProjectionHeader = []string{"id", "username", "mainCategory", "subCategory", "startTime", "elapsedTime", "endTime", "units", "timePerUnit"}

// ProjectionPath returns <dir>/<slug>/<slug>_data.csv
func ProjectionPath(dir, category string) string {
	return projectionFile(dir, ledger.Slug(category))
}

func projectionFile(dir, slug string) string {
	return filepath.Join(dir, slug, slug+"_data.csv")
}

// projectionSlugs maps each category to its directory name. Names that
// share a slug get a hash suffix each so no two categories write one file.
func projectionSlugs(categories []string) map[string]string {
	bySlug := make(map[string][]string)
	for _, c := range categories {
		slug := ledger.Slug(c)
		bySlug[slug] = append(bySlug[slug], c)
	}

	out := make(map[string]string, len(categories))
	for slug, names := range bySlug {
		if len(names) == 1 {
			out[names[0]] = slug
			continue
		}
		for _, name := range names {
			h := fnv.New32a()
			h.Write([]byte(name))
			out[name] = fmt.Sprintf("%s-%08x", slug, h.Sum32())
		}
	}
	return out
}

// WriteProjections regenerates every per-category file from the dataset.
// Files are replaced whole; categories that no longer have rows are removed.
func WriteProjections(dir string, ds Dataset) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create derived directory: %w", err)
	}

	byCategory := ds.RowsByCategory()
	names := make([]string, 0, len(byCategory))
	for category := range byCategory {
		names = append(names, category)
	}
	slugs := projectionSlugs(names)

	keep := make(map[string]bool)
	for category, rows := range byCategory {
		slug := slugs[category]
		keep[slug] = true
		if err := writeProjection(projectionFile(dir, slug), rows); err != nil {
			return fmt.Errorf("failed to write projection for %s: %w", category, err)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.IsDir() && !keep[e.Name()] {
			if err := os.RemoveAll(filepath.Join(dir, e.Name())); err != nil {
				return fmt.Errorf("failed to remove stale projection %s: %w", e.Name(), err)
			}
		}
	}
	return nil
}

func writeProjection(path string, rows []Row) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(ProjectionHeader); err != nil {
		return err
	}
	for _, r := range rows {
		record := []string{
			strconv.FormatInt(r.ID, 10),
			r.Username,
			r.MainCategory,
			r.SubCategory,
			ledger.FormatTime(r.StartTime),
			strconv.FormatFloat(r.ElapsedSeconds, 'f', 2, 64),
			ledger.FormatTime(r.EndTime),
			strconv.Itoa(r.Units),
			strconv.FormatFloat(r.TimePerUnit, 'f', 2, 64),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return writeFileAtomic(path, buf.Bytes())
}

// writeFileAtomic writes to a temp file in the same directory and renames it
// over path, so readers never see a half-written file
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}
