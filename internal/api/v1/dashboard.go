package v1

import (
	"net/http"

	"github.com/billcraft/billcraft/internal/logger"
	"github.com/billcraft/billcraft/internal/service"
	"github.com/gin-gonic/gin"
)

type DashboardHandler struct {
	service service.BillingService
	log     *logger.Logger
}

func NewDashboardHandler(
	service service.BillingService,
	log *logger.Logger,
) *DashboardHandler {
	return &DashboardHandler{
		service: service,
		log:     log,
	}
}

// @Summary Get dashboard stats
// @Description Get tenant-wide billing aggregates for the dashboard
// @Tags Dashboard
// @Produce json
// @Success 200 {object} dto.DashboardStatsResponse
// @Failure 500 {object} middleware.ErrorResponse
// @Router /dashboard/stats [get]
func (h *DashboardHandler) GetStats(c *gin.Context) {
	resp, err := h.service.GetDashboardStats(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
