package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/banachtech/hedger/metrics"
	"github.com/banachtech/hedger/pricer"
	"github.com/gin-gonic/gin"
)

type priceRequest struct {
	Past                  [][]float64 `json:"past" binding:"required,min=1"`
	Time                  *float64    `json:"time" binding:"required,gte=0"`
	MonitoringDateReached bool        `json:"monitoringDateReached"`
}

func (server *Server) heartbeat(c *gin.Context) {
	c.JSON(http.StatusOK, server.info)
}

func (server *Server) price(c *gin.Context) {
	var req priceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err))
		return
	}
	width := len(req.Past[0])
	for i, row := range req.Past {
		if len(row) == 0 || len(row) != width {
			c.JSON(http.StatusBadRequest, errorResponse(fmt.Errorf("past row %d has %d prices, expected %d", i, len(row), width)))
			return
		}
	}

	start := time.Now()
	res, err := server.engine.PriceAndDeltas(req.Past, *req.Time, req.MonitoringDateReached)
	metrics.PricingDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.PricingRequests.WithLabelValues("error").Inc()
		c.JSON(http.StatusInternalServerError, errorResponse(err))
		return
	}

	out := pricer.Response{
		Price:        res.Price,
		PriceStdDev:  res.PriceStdDev,
		Deltas:       res.Deltas,
		DeltasStdDev: res.DeltasStdDev,
	}
	if out.Degenerate() {
		metrics.PricingRequests.WithLabelValues("degenerate").Inc()
	} else {
		metrics.PricingRequests.WithLabelValues("ok").Inc()
	}
	c.JSON(http.StatusOK, out)
}
