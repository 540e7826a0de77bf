package license

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	licensing "licensedesk.com/licensedesk/licensing/core"
	web "licensedesk.com/licensedesk/web/common"
)

type PublicEndpoint struct {
	activator *licensing.Activator
	log       *zap.Logger
}

// RegisterPublic mounts the routes client programs call without a token.
func RegisterPublic(r *gin.RouterGroup, activator *licensing.Activator, log *zap.Logger) {
	endpoint := &PublicEndpoint{activator: activator, log: log}
	r.GET("/check", endpoint.Check)
	r.POST("/activate", endpoint.Activate)
}

type CheckQuery struct {
	Serial  string `form:"serial"`
	Device  string `form:"device"`
	Program string `form:"program"`
}

// Check always answers 200 with a CheckResult; unknown serials and
// mismatches are reported in the body.
func (ep *PublicEndpoint) Check(c *gin.Context) {
	var query CheckQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, web.NewErrorResponse(web.FormatBindingError(err)))
		return
	}

	result, err := ep.activator.Check(c.Request.Context(), licensing.CheckRequest{
		Serial:      query.Serial,
		DeviceID:    query.Device,
		ProgramName: query.Program,
	})
	if err != nil {
		web.AbortWithError(c, ep.log, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type ActivateDTO struct {
	SerialNumber string `json:"serial_number" binding:"required"`
	DeviceID     string `json:"device_id" binding:"required"`
	ProgramName  string `json:"program_name"`
}

func (ep *PublicEndpoint) Activate(c *gin.Context) {
	var dto ActivateDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, web.NewErrorResponse(web.FormatBindingError(err)))
		return
	}

	license, err := ep.activator.Activate(c.Request.Context(), licensing.ActivateRequest{
		Serial:      dto.SerialNumber,
		DeviceID:    dto.DeviceID,
		ProgramName: dto.ProgramName,
	})
	if err != nil {
		web.AbortWithError(c, ep.log, err)
		return
	}
	c.JSON(http.StatusOK, web.NewSuccessResponse(license))
}
