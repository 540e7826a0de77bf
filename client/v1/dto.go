package v1

import (
	"time"

	"licensedesk.com/licensedesk/licensing/model"
)

type SuccessResponse[T any] struct {
	Data T `json:"data"`
}

type SearchResponse[T any] struct {
	Data       []T `json:"data"`
	Pagination struct {
		Total int64 `json:"total"`
	} `json:"pagination"`
}

type CheckResult struct {
	Found          bool       `json:"found"`
	Valid          bool       `json:"valid"`
	Status         string     `json:"status"`
	Active         *bool      `json:"active,omitempty"`
	SerialNumber   string     `json:"serial_number,omitempty"`
	ProgramName    string     `json:"program_name,omitempty"`
	DeviceID       string     `json:"device_id,omitempty"`
	ActivationDate *time.Time `json:"activation_date,omitempty"`
}

type CreateLicense struct {
	SerialNumber string       `json:"serial_number"`
	ProgramName  *string      `json:"program_name,omitempty"`
	Status       model.Status `json:"status,omitempty"`
	Notes        *string      `json:"notes,omitempty"`
}

type GenerateLicense struct {
	ProgramName *string      `json:"program_name,omitempty"`
	Status      model.Status `json:"status,omitempty"`
	Notes       *string      `json:"notes,omitempty"`
}

type ListOptions struct {
	Status model.Status
	Query  string
	Page   int
	Size   int
}
