package license

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	licensing "licensedesk.com/licensedesk/licensing/core"
	"licensedesk.com/licensedesk/licensing/spreadsheet"
	web "licensedesk.com/licensedesk/web/common"
)

const maxUploadSize = 10 << 20

type ExportQuery struct {
	Format string `form:"format" binding:"omitempty,oneof=csv xlsx"`
}

func (ep *Endpoint) Export(c *gin.Context) {
	var query ExportQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, web.NewErrorResponse(web.FormatBindingError(err)))
		return
	}
	if query.Format == "" {
		query.Format = "csv"
	}

	licenses, _, err := ep.activator.List(c.Request.Context(), licensing.ListFilter{})
	if err != nil {
		web.AbortWithError(c, ep.log, err)
		return
	}

	filename := fmt.Sprintf("licenses-%s.%s", time.Now().UTC().Format("20060102"), query.Format)
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))

	switch query.Format {
	case "xlsx":
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		err = spreadsheet.WriteXLSX(c.Writer, licenses)
	default:
		c.Header("Content-Type", "text/csv; charset=utf-8")
		err = spreadsheet.WriteCSV(c.Writer, licenses)
	}
	if err != nil {
		// headers are already sent
		ep.log.Error("failed to write export", zap.String("format", query.Format), zap.Error(err))
	}
}

type ImportResult struct {
	Created int      `json:"created"`
	Skipped int      `json:"skipped"`
	Errors  []string `json:"errors"`
}

// Import creates a license per row of the uploaded file, restoring any
// binding the row carries. Blank rows and existing serials are skipped;
// invalid rows are reported and do not stop the import.
func (ep *Endpoint) Import(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadSize)
	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, web.NewErrorResponse("Field 'file' is required"))
		return
	}

	file, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, web.NewErrorResponse(err.Error()))
		return
	}
	defer file.Close()

	rows, err := spreadsheet.ReadRows(header.Filename, file)
	if err != nil {
		web.AbortWithError(c, ep.log, err)
		return
	}

	result := ImportResult{Errors: []string{}}
	for _, row := range rows {
		if row.Err != nil {
			result.Errors = append(result.Errors, row.Err.Error())
			continue
		}
		if row.Blank() {
			result.Skipped++
			continue
		}

		_, err := ep.activator.Create(c.Request.Context(), row.Input)
		switch {
		case err == nil:
			result.Created++
		case errors.Is(err, licensing.ErrConflict):
			result.Skipped++
		case errors.Is(err, licensing.ErrInvalidInput):
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: %v", row.Line, err))
		default:
			web.AbortWithError(c, ep.log, err)
			return
		}
	}

	ep.log.Info("licenses imported",
		zap.String("file", header.Filename),
		zap.Int("created", result.Created),
		zap.Int("skipped", result.Skipped),
		zap.Int("errors", len(result.Errors)),
	)
	c.JSON(http.StatusOK, web.NewSuccessResponse(result))
}
