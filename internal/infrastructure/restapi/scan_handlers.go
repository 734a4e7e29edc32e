package restapi

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"pulse_tracker/internal/app/port"
	"pulse_tracker/internal/domain/entity"
)

// APIScanResponse defines the response structure of the scan endpoint.
type APIScanResponse struct {
	Data struct {
		Result *entity.ScanResult `json:"result"`
	} `json:"data"`
	StatusMessage string `json:"status_message"`
}

// ScanHandler handles HTTP requests for wallet scans.
type ScanHandler struct {
	scanService port.ScanService
	logger      port.Logger
}

// NewScanHandler creates a new ScanHandler instance.
func NewScanHandler(ss port.ScanService, l port.Logger) *ScanHandler {
	return &ScanHandler{scanService: ss, logger: l}
}

// GetScanHandler handles GET /scan?addresses=a,b,... requests.
func (h *ScanHandler) GetScanHandler(c *gin.Context) {
	ctx := c.Request.Context()

	raw := c.Query("addresses")
	var addresses []string
	for _, address := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(address); trimmed != "" {
			addresses = append(addresses, trimmed)
		}
	}
	if len(addresses) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter 'addresses' is required"})
		return
	}

	result, err := h.scanService.Scan(ctx, addresses)
	if err != nil {
		h.logger.Error("Scan request failed", "addresses", raw, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	response := APIScanResponse{}
	response.Data.Result = result
	switch {
	case len(result.Errors) > 0:
		response.StatusMessage = "Scan completed. Some tokens or positions could not be valued."
	default:
		response.StatusMessage = "Scan completed successfully."
	}
	c.JSON(http.StatusOK, response)
}
