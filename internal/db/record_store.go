package db

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/balkashynov/floortrack/internal/lockmap"
	"github.com/balkashynov/floortrack/internal/models"
	"github.com/balkashynov/floortrack/internal/store"
)

// Store is a RecordStore backed by gorm
type Store struct {
	db    *gorm.DB
	locks *lockmap.Map
}

var _ store.RecordStore = (*Store)(nil)

// NewStore wraps an opened database
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db, locks: lockmap.New()}
}

// ensureWorker provisions the user's collection if it does not exist yet
func ensureWorker(tx *gorm.DB, username string) error {
	worker := models.Worker{Username: username}
	return tx.Where(models.Worker{Username: username}).FirstOrCreate(&worker).Error
}

// findRecord loads one record, mapping a miss to store.ErrNotFound
func findRecord(tx *gorm.DB, username string, id int64) (models.TaskRecord, error) {
	var rec models.TaskRecord
	err := tx.Where("username = ? AND id = ?", username, id).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return rec, fmt.Errorf("%w: #%d", store.ErrNotFound, id)
	}
	return rec, err
}

// Create inserts a record for the user
func (s *Store) Create(ctx context.Context, username string, rec models.TaskRecord) error {
	if err := store.ValidateUsername(username); err != nil {
		return err
	}
	unlock := s.locks.Lock(username)
	defer unlock()

	rec.Username = username
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureWorker(tx, username); err != nil {
			return err
		}
		var count int64
		if err := tx.Model(&models.TaskRecord{}).Where("username = ? AND id = ?", username, rec.ID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return fmt.Errorf("%w: #%d", store.ErrDuplicateID, rec.ID)
		}
		return tx.Create(&rec).Error
	})
}

// List returns the user's records ordered by id
func (s *Store) List(ctx context.Context, username string) ([]models.TaskRecord, error) {
	if err := store.ValidateUsername(username); err != nil {
		return nil, err
	}
	unlock := s.locks.Lock(username)
	defer unlock()

	records := []models.TaskRecord{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureWorker(tx, username); err != nil {
			return err
		}
		return tx.Where("username = ?", username).Order("id ASC").Find(&records).Error
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// Update applies mutate to one record inside a transaction
func (s *Store) Update(ctx context.Context, username string, id int64, mutate func(*models.TaskRecord) error) (models.TaskRecord, error) {
	if err := store.ValidateUsername(username); err != nil {
		return models.TaskRecord{}, err
	}
	unlock := s.locks.Lock(username)
	defer unlock()

	var updated models.TaskRecord
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rec, err := findRecord(tx, username, id)
		if err != nil {
			return err
		}
		if err := mutate(&rec); err != nil {
			return err
		}
		rec.ID = id
		rec.Username = username
		if err := tx.Save(&rec).Error; err != nil {
			return err
		}
		updated = rec
		return nil
	})
	if err != nil {
		return models.TaskRecord{}, err
	}
	return updated, nil
}

// Delete removes a record; unknown ids are ignored
func (s *Store) Delete(ctx context.Context, username string, id int64, guard func(models.TaskRecord) error) error {
	if err := store.ValidateUsername(username); err != nil {
		return err
	}
	unlock := s.locks.Lock(username)
	defer unlock()

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rec, err := findRecord(tx, username, id)
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if guard != nil {
			if err := guard(rec); err != nil {
				return err
			}
		}
		return tx.Where("username = ? AND id = ?", username, id).Delete(&models.TaskRecord{}).Error
	})
}

// Prune deletes every record keep rejects
func (s *Store) Prune(ctx context.Context, username string, keep func(models.TaskRecord) bool) (int, error) {
	if err := store.ValidateUsername(username); err != nil {
		return 0, err
	}
	unlock := s.locks.Lock(username)
	defer unlock()

	removed := 0
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var records []models.TaskRecord
		if err := tx.Where("username = ?", username).Find(&records).Error; err != nil {
			return err
		}
		var ids []int64
		for _, rec := range records {
			if !keep(rec) {
				ids = append(ids, rec.ID)
			}
		}
		if len(ids) == 0 {
			return nil
		}
		res := tx.Where("username = ? AND id IN ?", username, ids).Delete(&models.TaskRecord{})
		if res.Error != nil {
			return res.Error
		}
		removed = int(res.RowsAffected)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

// Users lists provisioned usernames
func (s *Store) Users(ctx context.Context) ([]string, error) {
	users := []string{}
	err := s.db.WithContext(ctx).Model(&models.Worker{}).Order("username ASC").Pluck("username", &users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

// Close closes the underlying connection
func (s *Store) Close() error {
	return Close(s.db)
}
