package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/balkashynov/floortrack/internal/lockmap"
	"github.com/balkashynov/floortrack/internal/models"
)

// FileStore keeps one JSON array per user under BaseDir
type FileStore struct {
	BaseDir string
	locks   *lockmap.Map
}

// NewFileStore creates the directory and returns the store
func NewFileStore(baseDir string) (*FileStore, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create tasks directory: %w", err)
	}
	return &FileStore{BaseDir: baseDir, locks: lockmap.New()}, nil
}

// userFilePath returns the path of a user's collection file
func (s *FileStore) userFilePath(username string) string {
	return filepath.Join(s.BaseDir, username+".json")
}

// load reads a user's records. A missing file is provisioned as empty.
func (s *FileStore) load(username string) ([]models.TaskRecord, error) {
	path := s.userFilePath(username)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			if err := s.save(username, []models.TaskRecord{}); err != nil {
				return nil, err
			}
			return []models.TaskRecord{}, nil
		}
		return nil, fmt.Errorf("failed to read tasks for %s: %w", username, err)
	}

	var records []models.TaskRecord
	if len(strings.TrimSpace(string(data))) == 0 {
		return []models.TaskRecord{}, nil
	}
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to decode tasks for %s: %w", username, err)
	}
	if records == nil {
		records = []models.TaskRecord{}
	}
	return records, nil
}

// save writes the whole collection atomically (temp file + rename)
func (s *FileStore) save(username string, records []models.TaskRecord) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.BaseDir, "."+username+"-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to save tasks for %s: %w", username, err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to save tasks for %s: %w", username, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to save tasks for %s: %w", username, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to save tasks for %s: %w", username, err)
	}
	if err := os.Rename(tmpPath, s.userFilePath(username)); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to save tasks for %s: %w", username, err)
	}
	return nil
}

// Create appends a record to the user's collection
func (s *FileStore) Create(ctx context.Context, username string, rec models.TaskRecord) error {
	if err := ValidateUsername(username); err != nil {
		return err
	}
	unlock := s.locks.Lock(username)
	defer unlock()

	records, err := s.load(username)
	if err != nil {
		return err
	}
	if indexOf(records, rec.ID) >= 0 {
		return fmt.Errorf("%w: #%d", ErrDuplicateID, rec.ID)
	}
	records = append(records, rec)
	return s.save(username, records)
}

// List returns the user's records in stored order
func (s *FileStore) List(ctx context.Context, username string) ([]models.TaskRecord, error) {
	if err := ValidateUsername(username); err != nil {
		return nil, err
	}
	unlock := s.locks.Lock(username)
	defer unlock()

	return s.load(username)
}

// Update mutates one record and persists the collection
func (s *FileStore) Update(ctx context.Context, username string, id int64, mutate func(*models.TaskRecord) error) (models.TaskRecord, error) {
	if err := ValidateUsername(username); err != nil {
		return models.TaskRecord{}, err
	}
	unlock := s.locks.Lock(username)
	defer unlock()

	records, err := s.load(username)
	if err != nil {
		return models.TaskRecord{}, err
	}
	i := indexOf(records, id)
	if i < 0 {
		return models.TaskRecord{}, fmt.Errorf("%w: #%d", ErrNotFound, id)
	}

	updated := records[i]
	if err := mutate(&updated); err != nil {
		return models.TaskRecord{}, err
	}
	// id and owner are immutable
	updated.ID = records[i].ID
	updated.Username = records[i].Username
	records[i] = updated

	if err := s.save(username, records); err != nil {
		return models.TaskRecord{}, err
	}
	return updated, nil
}

// Delete removes a record; unknown ids are ignored
func (s *FileStore) Delete(ctx context.Context, username string, id int64, guard func(models.TaskRecord) error) error {
	if err := ValidateUsername(username); err != nil {
		return err
	}
	unlock := s.locks.Lock(username)
	defer unlock()

	records, err := s.load(username)
	if err != nil {
		return err
	}
	i := indexOf(records, id)
	if i < 0 {
		return nil
	}
	if guard != nil {
		if err := guard(records[i]); err != nil {
			return err
		}
	}

	kept := make([]models.TaskRecord, 0, len(records)-1)
	kept = append(kept, records[:i]...)
	kept = append(kept, records[i+1:]...)
	return s.save(username, kept)
}

// Prune drops every record keep rejects and returns how many were removed
func (s *FileStore) Prune(ctx context.Context, username string, keep func(models.TaskRecord) bool) (int, error) {
	if err := ValidateUsername(username); err != nil {
		return 0, err
	}
	unlock := s.locks.Lock(username)
	defer unlock()

	records, err := s.load(username)
	if err != nil {
		return 0, err
	}
	kept := make([]models.TaskRecord, 0, len(records))
	for _, rec := range records {
		if keep(rec) {
			kept = append(kept, rec)
		}
	}
	removed := len(records) - len(kept)
	if removed == 0 {
		return 0, nil
	}
	return removed, s.save(username, kept)
}

// Users lists usernames that have a collection file
func (s *FileStore) Users(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.BaseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, err
	}

	users := []string{}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, ".json") {
			continue
		}
		users = append(users, strings.TrimSuffix(name, ".json"))
	}
	sort.Strings(users)
	return users, nil
}

// Close is a no-op for the file store
func (s *FileStore) Close() error {
	return nil
}
