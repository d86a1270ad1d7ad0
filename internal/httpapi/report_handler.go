package httpapi

import (
	"net/http"
	"time"

	"greeneats-be/internal/report"

	"github.com/gin-gonic/gin"
)

type ReportHandler struct {
	reports report.Service
}

func NewReportHandler(reports report.Service) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// dateRange parses the start/end query parameters, accepted either as
// RFC 3339 timestamps or plain dates. A date-only end is widened to the end
// of that day.
func dateRange(c *gin.Context) (time.Time, time.Time, bool) {
	parse := func(v string) (time.Time, bool, error) {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			return t, false, nil
		}
		t, err := time.Parse("2006-01-02", v)
		return t, true, err
	}

	start, _, err := parse(c.Query("start"))
	if err != nil {
		badRequest(c, "invalid start date")
		return time.Time{}, time.Time{}, false
	}
	end, dateOnly, err := parse(c.Query("end"))
	if err != nil {
		badRequest(c, "invalid end date")
		return time.Time{}, time.Time{}, false
	}
	if dateOnly {
		end = end.Add(24*time.Hour - time.Nanosecond)
	}
	if end.Before(start) {
		badRequest(c, "end date precedes start date")
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

func (h *ReportHandler) Revenue(c *gin.Context) {
	start, end, ok := dateRange(c)
	if !ok {
		return
	}

	rep, err := h.reports.Revenue(c.Request.Context(), start, end)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"report": rep})
}

func (h *ReportHandler) ProductDistribution(c *gin.Context) {
	var category *string
	if v, ok := c.GetQuery("category"); ok && v != "" {
		category = &v
	}

	shares, err := h.reports.ProductDistribution(c.Request.Context(), category)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"distribution": shares})
}
