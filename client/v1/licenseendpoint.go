package v1

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"licensedesk.com/licensedesk/licensing/model"
)

type LicenseEndpoint struct {
	transport *Transport
}

func licensePath(serial string) string {
	return "/api/licenses/" + url.PathEscape(serial)
}

func (this *LicenseEndpoint) List(ctx context.Context, opts ListOptions) ([]model.License, int64, error) {
	query := url.Values{}
	if opts.Status != "" {
		query.Set("status", string(opts.Status))
	}
	if opts.Query != "" {
		query.Set("q", opts.Query)
	}
	if opts.Page > 0 {
		query.Set("page", strconv.Itoa(opts.Page))
	}
	if opts.Size > 0 {
		query.Set("size", strconv.Itoa(opts.Size))
	}

	var result SearchResponse[model.License]
	if err := this.transport.Do(ctx, http.MethodGet, "/api/licenses", query, nil, &result); err != nil {
		return nil, 0, err
	}
	return result.Data, result.Pagination.Total, nil
}

func (this *LicenseEndpoint) Get(ctx context.Context, serial string) (*model.License, error) {
	var result SuccessResponse[*model.License]
	if err := this.transport.Do(ctx, http.MethodGet, licensePath(serial), nil, nil, &result); err != nil {
		return nil, err
	}
	return result.Data, nil
}

func (this *LicenseEndpoint) Create(ctx context.Context, dto CreateLicense) (*model.License, error) {
	var result SuccessResponse[*model.License]
	if err := this.transport.Do(ctx, http.MethodPost, "/api/licenses", nil, dto, &result); err != nil {
		return nil, err
	}
	return result.Data, nil
}

func (this *LicenseEndpoint) Generate(ctx context.Context, dto GenerateLicense) (*model.License, error) {
	var result SuccessResponse[*model.License]
	if err := this.transport.Do(ctx, http.MethodPost, "/api/licenses/generate", nil, dto, &result); err != nil {
		return nil, err
	}
	return result.Data, nil
}

func (this *LicenseEndpoint) Update(ctx context.Context, serial string, patch model.LicensePatch) (*model.License, error) {
	var result SuccessResponse[*model.License]
	if err := this.transport.Do(ctx, http.MethodPut, licensePath(serial), nil, patch, &result); err != nil {
		return nil, err
	}
	return result.Data, nil
}

func (this *LicenseEndpoint) Delete(ctx context.Context, serial string) error {
	return this.transport.Do(ctx, http.MethodDelete, licensePath(serial), nil, nil, nil)
}

func (this *LicenseEndpoint) Reset(ctx context.Context, serial string) (*model.License, error) {
	var result SuccessResponse[*model.License]
	if err := this.transport.Do(ctx, http.MethodPost, licensePath(serial)+"/reset", nil, nil, &result); err != nil {
		return nil, err
	}
	return result.Data, nil
}

// Export writes the csv or xlsx export to w.
func (this *LicenseEndpoint) Export(ctx context.Context, format string, w io.Writer) error {
	return this.transport.Download(ctx, "/api/licenses/export", url.Values{"format": {format}}, w)
}
