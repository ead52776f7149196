package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/talkgenius/interview-engine/internal/repositories"
	"github.com/talkgenius/interview-engine/internal/services"
	"github.com/talkgenius/interview-engine/internal/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type InterviewHandler struct {
	BaseHandler
	interviews services.InterviewService
	reports    services.ReportService
}

func NewInterviewHandler(interviews services.InterviewService, reports services.ReportService, logger utils.Logger) *InterviewHandler {
	return &InterviewHandler{
		BaseHandler: NewBaseHandler(logger),
		interviews:  interviews,
		reports:     reports,
	}
}

// ===== RESPONSE STRUCTURES =====

type ListInterviewsResponse struct {
	Interviews interface{} `json:"interviews"`
	Total      int64       `json:"total"`
	Limit      int         `json:"limit"`
	Offset     int         `json:"offset"`
}

// ===== ARCHIVE =====

// ListInterviews returns a filtered page of the completed interview archive
func (h *InterviewHandler) ListInterviews(c *gin.Context) {
	filters, ok := h.parseFilters(c)
	if !ok {
		return
	}

	interviews, total, err := h.interviews.List(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, ListInterviewsResponse{
		Interviews: interviews,
		Total:      total,
		Limit:      filters.Limit,
		Offset:     filters.Offset,
	})
}

// GetInterview returns one completed interview with its full transcript
func (h *InterviewHandler) GetInterview(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	interview, err := h.interviews.Get(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	record, err := interview.Record()
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, record)
}

// GetInterviewSummary returns just the narrative summary of an interview
func (h *InterviewHandler) GetInterviewSummary(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	summary, err := h.interviews.GetSummary(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// ===== REPORTS =====

// ExportInterviewReport streams one interview as an Excel workbook
func (h *InterviewHandler) ExportInterviewReport(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	h.LogRequest(c, "Exporting interview report", "interview_id", id)

	data, err := h.reports.ExportInterviewToExcel(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("interview-%s.xlsx", id)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, data)
}

// ExportInterviewsCSV streams the filtered archive as a CSV listing
func (h *InterviewHandler) ExportInterviewsCSV(c *gin.Context) {
	filters, ok := h.parseFilters(c)
	if !ok {
		return
	}

	data, err := h.reports.ExportInterviewsToCSV(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="interviews.csv"`)
	c.Data(http.StatusOK, "text/csv", data)
}

// ===== QUERY PARSING =====

func (h *InterviewHandler) parseFilters(c *gin.Context) (repositories.InterviewFilters, bool) {
	filters := repositories.InterviewFilters{
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}

	if v := c.Query("job_title"); v != "" {
		filters.JobTitle = &v
	}
	if v := c.Query("user_name"); v != "" {
		filters.UserName = &v
	}

	for param, dest := range map[string]**int{
		"min_score": &filters.MinScore,
		"max_score": &filters.MaxScore,
	} {
		if v := c.Query(param); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				c.JSON(http.StatusBadRequest, ErrorResponse{
					Message: "Invalid " + param,
					Details: v,
				})
				return filters, false
			}
			*dest = &n
		}
	}

	for param, dest := range map[string]**time.Time{
		"date_from": &filters.DateFrom,
		"date_to":   &filters.DateTo,
	} {
		if v := c.Query(param); v != "" {
			t, err := parseDate(v)
			if err != nil {
				c.JSON(http.StatusBadRequest, ErrorResponse{
					Message: "Invalid " + param,
					Details: "expected RFC 3339 timestamp or YYYY-MM-DD",
				})
				return filters, false
			}
			*dest = &t
		}
	}

	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filters.Limit = n
		}
	}
	if v := c.Query("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filters.Offset = n
		}
	}

	return filters, true
}

func parseDate(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", value)
}
