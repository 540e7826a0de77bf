package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Status is the administrative flag of a license. It is independent of
// whether the serial has been bound to a device.
type Status string

const (
	StatusValid       Status = "valid"
	StatusExpired     Status = "expired"
	StatusSuspended   Status = "suspended"
	StatusUnactivated Status = "unactivated"
)

// Statuses lists every member of the enum in display order.
var Statuses = []Status{StatusValid, StatusExpired, StatusSuspended, StatusUnactivated}

// Label returns the Arabic label shown on the dashboard.
func (s Status) Label() string {
	switch s {
	case StatusValid:
		return "صالح"
	case StatusExpired:
		return "منتهي"
	case StatusSuspended:
		return "موقوف"
	case StatusUnactivated:
		return "غير مفعّل"
	}
	return string(s)
}

func (s Status) IsKnown() bool {
	switch s {
	case StatusValid, StatusExpired, StatusSuspended, StatusUnactivated:
		return true
	}
	return false
}

// ParseStatus accepts either the status code or its Arabic label.
func ParseStatus(value string) (Status, error) {
	v := strings.TrimSpace(value)
	for _, s := range Statuses {
		if strings.EqualFold(v, string(s)) || v == s.Label() {
			return s, nil
		}
	}
	return "", fmt.Errorf("unknown license status %q", value)
}

func (s *Status) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	parsed, err := ParseStatus(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
