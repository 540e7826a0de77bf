package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	storage "licensedesk.com/licensedesk/core"
	"licensedesk.com/licensedesk/licensing/model"
)

// CreateInput describes a new license. ProgramName may be nil for serials
// that receive their program at activation time. DeviceID and ActivationDate
// restore a binding read back from an export; both are set or neither.
type CreateInput struct {
	SerialNumber   string
	ProgramName    *string
	Status         model.Status
	Notes          *string
	DeviceID       *string
	ActivationDate *time.Time
}

type ListFilter struct {
	Status model.Status
	Query  string
	Page   int
	Size   int
}

// Store is the persistence collaborator of the activation state machine.
// Lookups return (nil, nil) when the serial does not exist.
type Store interface {
	GetBySerial(ctx context.Context, serial string) (*model.License, error)
	CreateSerial(ctx context.Context, input CreateInput) (*model.License, error)
	// AtomicallyBind binds an unbound, valid serial to deviceID in a single
	// conditional update. It returns nil when no row qualified.
	AtomicallyBind(ctx context.Context, serial, deviceID string, programName *string) (*model.License, error)
	ResetBinding(ctx context.Context, serial string) (*model.License, error)
	DeleteBySerial(ctx context.Context, serial string) (bool, error)
	UpdateFields(ctx context.Context, serial string, patch model.LicensePatch) (*model.License, error)
	ListAll(ctx context.Context, filter ListFilter) ([]model.License, int64, error)
}

type GormStore struct {
	dm  *storage.DatabaseManager
	now func() time.Time
}

func NewGormStore(dm *storage.DatabaseManager) *GormStore {
	return &GormStore{dm: dm, now: func() time.Time { return time.Now().UTC() }}
}

func findBySerial(db *gorm.DB, serial string) (*model.License, error) {
	var license model.License
	err := db.Where("serial_number = ?", serial).Take(&license).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil // not found
	}
	if err != nil {
		return nil, err
	}
	return &license, nil
}

func (s *GormStore) GetBySerial(ctx context.Context, serial string) (*model.License, error) {
	var license *model.License
	err := s.dm.Exec(ctx, func(db *gorm.DB) error {
		var err error
		license, err = findBySerial(db, serial)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load license %s: %w", serial, err)
	}
	return license, nil
}

func (s *GormStore) CreateSerial(ctx context.Context, input CreateInput) (*model.License, error) {
	license := model.License{
		SerialNumber: input.SerialNumber,
		ProgramName:  input.ProgramName,
		Status:       input.Status,
		Notes:        input.Notes,
	}
	if input.DeviceID != nil {
		license.DeviceID = input.DeviceID
		license.Active = true
		license.ActivationDate = input.ActivationDate
	}
	if license.Status == "" {
		license.Status = model.StatusValid
	}

	err := s.dm.Transaction(ctx, func(tx *gorm.DB) error {
		existing, err := findBySerial(tx, input.SerialNumber)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrConflict
		}
		return tx.Create(&license).Error
	})
	if errors.Is(err, ErrConflict) || errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, fmt.Errorf("%w: %s", ErrConflict, input.SerialNumber)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create license %s: %w", input.SerialNumber, err)
	}
	return &license, nil
}

func (s *GormStore) AtomicallyBind(ctx context.Context, serial, deviceID string, programName *string) (*model.License, error) {
	var license *model.License
	err := s.dm.Transaction(ctx, func(tx *gorm.DB) error {
		now := s.now()
		updates := map[string]interface{}{
			"device_id":       deviceID,
			"active":          true,
			"activation_date": now,
			"updated_at":      now,
		}
		if programName != nil {
			updates["program_name"] = *programName
		}
		result := tx.Model(&model.License{}).
			Where("serial_number = ? AND device_id IS NULL AND status = ?", serial, model.StatusValid).
			Updates(updates)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return nil
		}
		var err error
		license, err = findBySerial(tx, serial)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to bind license %s: %w", serial, err)
	}
	return license, nil
}

func (s *GormStore) ResetBinding(ctx context.Context, serial string) (*model.License, error) {
	var license *model.License
	err := s.dm.Transaction(ctx, func(tx *gorm.DB) error {
		// mysql reports zero affected rows when nothing changed, so existence
		// is decided by the re-read.
		err := tx.Model(&model.License{}).
			Where("serial_number = ?", serial).
			Updates(map[string]interface{}{
				"device_id":       nil,
				"active":          false,
				"activation_date": nil,
				"updated_at":      s.now(),
			}).Error
		if err != nil {
			return err
		}
		license, err = findBySerial(tx, serial)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to reset license %s: %w", serial, err)
	}
	return license, nil
}

func (s *GormStore) DeleteBySerial(ctx context.Context, serial string) (bool, error) {
	var deleted bool
	err := s.dm.Exec(ctx, func(db *gorm.DB) error {
		result := db.Where("serial_number = ?", serial).Delete(&model.License{})
		if result.Error != nil {
			return result.Error
		}
		deleted = result.RowsAffected > 0
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to delete license %s: %w", serial, err)
	}
	return deleted, nil
}

func (s *GormStore) UpdateFields(ctx context.Context, serial string, patch model.LicensePatch) (*model.License, error) {
	var license *model.License
	err := s.dm.Transaction(ctx, func(tx *gorm.DB) error {
		updates := map[string]interface{}{}
		if patch.ProgramName != nil {
			updates["program_name"] = *patch.ProgramName
		}
		if patch.Status != nil {
			updates["status"] = *patch.Status
		}
		if patch.Notes != nil {
			updates["notes"] = *patch.Notes
		}
		if len(updates) > 0 {
			updates["updated_at"] = s.now()
			if err := tx.Model(&model.License{}).Where("serial_number = ?", serial).Updates(updates).Error; err != nil {
				return err
			}
		}
		var err error
		license, err = findBySerial(tx, serial)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update license %s: %w", serial, err)
	}
	return license, nil
}

func (s *GormStore) ListAll(ctx context.Context, filter ListFilter) ([]model.License, int64, error) {
	var licenses []model.License
	var total int64

	filtered := func(db *gorm.DB) *gorm.DB {
		if filter.Status != "" {
			db = db.Where("status = ?", filter.Status)
		}
		if term := strings.TrimSpace(filter.Query); term != "" {
			like := "%" + strings.ToLower(term) + "%"
			db = db.Where(
				"(LOWER(serial_number) LIKE ? OR LOWER(COALESCE(program_name, '')) LIKE ? OR LOWER(COALESCE(device_id, '')) LIKE ? OR LOWER(COALESCE(notes, '')) LIKE ?)",
				like, like, like, like,
			)
		}
		return db
	}

	err := s.dm.Exec(ctx, func(db *gorm.DB) error {
		if err := db.Model(&model.License{}).Scopes(filtered).Count(&total).Error; err != nil {
			return err
		}

		q := db.Model(&model.License{}).Scopes(filtered).Order("serial_number")
		if filter.Size > 0 {
			page := filter.Page
			if page < 1 {
				page = 1
			}
			q = q.Limit(filter.Size).Offset((page - 1) * filter.Size)
		}
		return q.Find(&licenses).Error
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list licenses: %w", err)
	}
	return licenses, total, nil
}
