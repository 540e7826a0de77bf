package license

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	licensing "licensedesk.com/licensedesk/licensing/core"
	"licensedesk.com/licensedesk/licensing/model"
	web "licensedesk.com/licensedesk/web/common"
)

type Endpoint struct {
	activator *licensing.Activator
	log       *zap.Logger
}

// Register mounts the admin routes. r must already be behind authentication.
func Register(r *gin.RouterGroup, activator *licensing.Activator, log *zap.Logger) {
	endpoint := &Endpoint{activator: activator, log: log}
	r.GET("/licenses", endpoint.List)
	r.POST("/licenses", endpoint.Create)
	r.POST("/licenses/generate", endpoint.Generate)
	r.GET("/licenses/export", endpoint.Export)
	r.POST("/licenses/import", endpoint.Import)
	r.GET("/licenses/:serial", endpoint.Get)
	r.PUT("/licenses/:serial", endpoint.Update)
	r.DELETE("/licenses/:serial", endpoint.Delete)
	r.POST("/licenses/:serial/reset", endpoint.Reset)
}

type ListQuery struct {
	Status string `form:"status"`
	Query  string `form:"q"`
	web.PageQuery
}

func (q ListQuery) filter() (licensing.ListFilter, error) {
	filter := licensing.ListFilter{Query: q.Query, Page: q.Page, Size: q.Size}
	if strings.TrimSpace(q.Status) != "" {
		status, err := model.ParseStatus(q.Status)
		if err != nil {
			return filter, fmt.Errorf("%w: %v", licensing.ErrInvalidInput, err)
		}
		filter.Status = status
	}
	return filter, nil
}

func (ep *Endpoint) List(c *gin.Context) {
	var query ListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, web.NewErrorResponse(web.FormatBindingError(err)))
		return
	}
	filter, err := query.filter()
	if err != nil {
		web.AbortWithError(c, ep.log, err)
		return
	}

	licenses, total, err := ep.activator.List(c.Request.Context(), filter)
	if err != nil {
		web.AbortWithError(c, ep.log, err)
		return
	}
	c.JSON(http.StatusOK, web.NewSearchResponse(licenses, total, filter.Page, filter.Size))
}

type CreateLicenseDTO struct {
	SerialNumber string       `json:"serial_number" binding:"required"`
	ProgramName  *string      `json:"program_name"`
	Status       model.Status `json:"status"`
	Notes        *string      `json:"notes"`
}

func (ep *Endpoint) Create(c *gin.Context) {
	var dto CreateLicenseDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, web.NewErrorResponse(web.FormatBindingError(err)))
		return
	}

	license, err := ep.activator.Create(c.Request.Context(), licensing.CreateInput{
		SerialNumber: dto.SerialNumber,
		ProgramName:  dto.ProgramName,
		Status:       dto.Status,
		Notes:        dto.Notes,
	})
	if err != nil {
		web.AbortWithError(c, ep.log, err)
		return
	}
	c.JSON(http.StatusCreated, web.NewSuccessResponse(license))
}

type GenerateLicenseDTO struct {
	ProgramName *string      `json:"program_name"`
	Status      model.Status `json:"status"`
	Notes       *string      `json:"notes"`
}

func (ep *Endpoint) Generate(c *gin.Context) {
	var dto GenerateLicenseDTO
	// an empty body is allowed under the activation policy
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&dto); err != nil {
			c.JSON(http.StatusBadRequest, web.NewErrorResponse(web.FormatBindingError(err)))
			return
		}
	}

	license, err := ep.activator.Generate(c.Request.Context(), licensing.GenerateInput{
		ProgramName: dto.ProgramName,
		Status:      dto.Status,
		Notes:       dto.Notes,
	})
	if err != nil {
		web.AbortWithError(c, ep.log, err)
		return
	}
	c.JSON(http.StatusCreated, web.NewSuccessResponse(license))
}

func (ep *Endpoint) Get(c *gin.Context) {
	license, err := ep.activator.Get(c.Request.Context(), c.Param("serial"))
	if err != nil {
		web.AbortWithError(c, ep.log, err)
		return
	}
	c.JSON(http.StatusOK, web.NewSuccessResponse(license))
}

func (ep *Endpoint) Update(c *gin.Context) {
	var patch model.LicensePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, web.NewErrorResponse(web.FormatBindingError(err)))
		return
	}
	if patch.IsEmpty() {
		c.JSON(http.StatusBadRequest, web.NewErrorResponse("Nothing to update"))
		return
	}

	license, err := ep.activator.Update(c.Request.Context(), c.Param("serial"), patch)
	if err != nil {
		web.AbortWithError(c, ep.log, err)
		return
	}
	c.JSON(http.StatusOK, web.NewSuccessResponse(license))
}

func (ep *Endpoint) Delete(c *gin.Context) {
	if err := ep.activator.Delete(c.Request.Context(), c.Param("serial")); err != nil {
		web.AbortWithError(c, ep.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (ep *Endpoint) Reset(c *gin.Context) {
	license, err := ep.activator.Reset(c.Request.Context(), c.Param("serial"))
	if err != nil {
		web.AbortWithError(c, ep.log, err)
		return
	}
	c.JSON(http.StatusOK, web.NewSuccessResponse(license))
}
