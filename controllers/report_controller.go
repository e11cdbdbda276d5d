package controllers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/spotlist/api-go/services"
	"github.com/spotlist/api-go/utils"
)

type ReportController struct {
	reports *services.ReportService
}

type CreateReportRequest struct {
	PostID  uint   `json:"postId" binding:"required"`
	Reason  string `json:"reason" binding:"required"`
	Content string `json:"content"`
}

type AdjudicateReportRequest struct {
	Status string `json:"status" binding:"required"`
}

type DeleteReportsRequest struct {
	IDs []uint `json:"ids" binding:"required,min=1"`
}

func NewReportController(reports *services.ReportService) *ReportController {
	return &ReportController{reports: reports}
}

// CreateReport godoc
// @Summary Report a post
// @Description Files a report against an approved, active post
// @Tags reports
// @Accept json
// @Produce json
// @Param report body CreateReportRequest true "Report"
// @Success 201 {object} models.Report
// @Router /reports [post]
func (rc *ReportController) CreateReport(c *gin.Context) {
	var req CreateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	report, err := rc.reports.Create(c.Request.Context(), utils.GetActor(c), services.CreateReportInput{
		PostID:  req.PostID,
		Reason:  req.Reason,
		Content: req.Content,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, StandardResponse{Success: true, Data: report, Message: "Report submitted"})
}

func (rc *ReportController) GetMyReports(c *gin.Context) {
	reports, err := rc.reports.ListByUser(c.Request.Context(), utils.GetActor(c).ID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, StandardResponse{Success: true, Data: reports})
}

// GetAllReports never fails on storage errors; it answers with an empty list.
func (rc *ReportController) GetAllReports(c *gin.Context) {
	q := services.ReportQuery{
		UserEmail: strings.TrimSpace(c.Query("userEmail")),
		Status:    strings.TrimSpace(c.Query("status")),
	}
	if raw := c.Query("postId"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid postId")
			return
		}
		postID := uint(id)
		q.PostID = &postID
	}

	c.JSON(http.StatusOK, StandardResponse{
		Success: true,
		Data:    rc.reports.ListAll(c.Request.Context(), q),
	})
}

func (rc *ReportController) GetPostReports(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	reports, err := rc.reports.ListByPost(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, StandardResponse{Success: true, Data: reports})
}

// AdjudicateReport godoc
// @Summary Approve or reject a report
// @Description Approving a report deactivates the post and closes every report on it
// @Tags reports
// @Accept json
// @Produce json
// @Param id path string true "Report ID"
// @Param decision body AdjudicateReportRequest true "Decision"
// @Success 200 {object} models.Report
// @Router /admin/reports/{id} [put]
func (rc *ReportController) AdjudicateReport(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req AdjudicateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	report, err := rc.reports.Adjudicate(c.Request.Context(), id, utils.GetActor(c), strings.TrimSpace(req.Status))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, StandardResponse{
		Success: true,
		Data:    report,
		Message: fmt.Sprintf("Report %s", report.Status),
	})
}

func (rc *ReportController) DeleteReports(c *gin.Context) {
	var req DeleteReportsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	deleted, err := rc.reports.Delete(c.Request.Context(), utils.GetActor(c), req.IDs...)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, StandardResponse{
		Success: true,
		Meta:    gin.H{"deleted": deleted},
		Message: "Reports deleted",
	})
}
