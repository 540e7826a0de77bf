package model

import "time"

type License struct {
	SerialNumber   string     `gorm:"column:serial_number;primaryKey;size:64" json:"serial_number"`
	ProgramName    *string    `gorm:"column:program_name;size:255" json:"program_name"`
	Status         Status     `gorm:"column:status;type:varchar(32);not null;default:valid;index" json:"status"`
	Active         bool       `gorm:"column:active;not null;default:false" json:"active"`
	DeviceID       *string    `gorm:"column:device_id;size:255" json:"device_id"`
	ActivationDate *time.Time `gorm:"column:activation_date" json:"activation_date"`
	Notes          *string    `gorm:"column:notes;type:text" json:"notes"`
	CreatedAt      time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (License) TableName() string {
	return "licenses"
}

// IsBound reports whether the serial is tied to a device.
func (l *License) IsBound() bool {
	return l.DeviceID != nil && *l.DeviceID != ""
}

// IsValid is the validity rule shared by the check endpoint and clients:
// the serial must be bound and administratively valid.
func (l *License) IsValid() bool {
	return l.Active && l.Status == StatusValid
}

// LicensePatch carries the administrative fields an edit may change.
// Nil fields are left untouched.
type LicensePatch struct {
	ProgramName *string `json:"program_name,omitempty"`
	Status      *Status `json:"status,omitempty"`
	Notes       *string `json:"notes,omitempty"`
}

func (p LicensePatch) IsEmpty() bool {
	return p.ProgramName == nil && p.Status == nil && p.Notes == nil
}
