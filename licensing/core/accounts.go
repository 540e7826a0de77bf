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
	"licensedesk.com/licensedesk/security"
)

const RoleAdmin = "admin"

// Accounts manages the administrators allowed to use the dashboard API.
type Accounts struct {
	dm  *storage.DatabaseManager
	now func() time.Time
}

func NewAccounts(dm *storage.DatabaseManager) *Accounts {
	return &Accounts{dm: dm, now: func() time.Time { return time.Now().UTC() }}
}

func findUser(db *gorm.DB, username string) (*model.AdminUser, error) {
	var user model.AdminUser
	err := db.Where("username = ?", username).Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Authenticate checks the password and records the login time.
func (a *Accounts) Authenticate(ctx context.Context, username, password string) (*model.AdminUser, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	var user *model.AdminUser
	err := a.dm.Exec(ctx, func(db *gorm.DB) error {
		var err error
		user, err = findUser(db, username)
		if err != nil || user == nil {
			return err
		}
		if !security.CheckPassword(user.PasswordHash, password) {
			user = nil
			return nil
		}
		now := a.now()
		user.LastLogin = &now
		return db.Model(&model.AdminUser{}).Where("id = ?", user.ID).Update("last_login", now).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to authenticate %s: %w", username, err)
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// EnsureAdmin creates the bootstrap administrator, or resets its password
// when it already exists.
func (a *Accounts) EnsureAdmin(ctx context.Context, username, password string) (*model.AdminUser, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password are required", ErrInvalidInput)
	}
	hash, err := security.HashPassword(password)
	if err != nil {
		return nil, err
	}

	var user *model.AdminUser
	err = a.dm.Transaction(ctx, func(tx *gorm.DB) error {
		existing, err := findUser(tx, username)
		if err != nil {
			return err
		}
		if existing != nil {
			existing.PasswordHash = hash
			user = existing
			return tx.Model(existing).Update("password_hash", hash).Error
		}
		user = &model.AdminUser{Username: username, PasswordHash: hash, Role: RoleAdmin}
		return tx.Create(user).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to ensure admin %s: %w", username, err)
	}
	return user, nil
}
