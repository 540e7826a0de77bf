package v1

import (
	"context"
	"net/http"
	"net/url"

	"licensedesk.com/licensedesk/licensing/model"
)

type CheckEndpoint struct {
	transport *Transport
}

// Check asks whether serial is valid on deviceID, binding it on first use.
// program may be empty.
func (this *CheckEndpoint) Check(ctx context.Context, serial, deviceID, program string) (*CheckResult, error) {
	query := url.Values{}
	query.Set("serial", serial)
	if deviceID != "" {
		query.Set("device", deviceID)
	}
	if program != "" {
		query.Set("program", program)
	}

	var result CheckResult
	if err := this.transport.Do(ctx, http.MethodGet, "/api/check", query, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (this *CheckEndpoint) Activate(ctx context.Context, serial, deviceID, program string) (*model.License, error) {
	payload := map[string]string{"serial_number": serial, "device_id": deviceID}
	if program != "" {
		payload["program_name"] = program
	}

	var result SuccessResponse[*model.License]
	if err := this.transport.Do(ctx, http.MethodPost, "/api/activate", nil, payload, &result); err != nil {
		return nil, err
	}
	return result.Data, nil
}
