package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/learnhub/lms-service/internal/services"
	"github.com/learnhub/lms-service/internal/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ExportHandler struct {
	BaseHandler
	exportService services.ExportService
}

func NewExportHandler(exportService services.ExportService, logger utils.Logger) *ExportHandler {
	return &ExportHandler{
		BaseHandler:   NewBaseHandler(logger),
		exportService: exportService,
	}
}

// ExportCourses streams the course catalog as an Excel workbook (admin only)
func (h *ExportHandler) ExportCourses(c *gin.Context) {
	h.LogRequest(c, "Exporting courses")

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	data, err := h.exportService.ExportCourses(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.sendWorkbook(c, "courses.xlsx", data)
}

// ExportUsers streams all user accounts as an Excel workbook (admin only)
func (h *ExportHandler) ExportUsers(c *gin.Context) {
	h.LogRequest(c, "Exporting users")

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	data, err := h.exportService.ExportUsers(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.sendWorkbook(c, "users.xlsx", data)
}

// ExportEnrollments streams enrollments as an Excel workbook (admin only).
// An optional course_id query narrows the export to one course.
func (h *ExportHandler) ExportEnrollments(c *gin.Context) {
	h.LogRequest(c, "Exporting enrollments")

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	courseID := uint(h.parseIntQuery(c, "course_id", 0))

	data, err := h.exportService.ExportEnrollments(c.Request.Context(), courseID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.sendWorkbook(c, "enrollments.xlsx", data)
}

func (h *ExportHandler) sendWorkbook(c *gin.Context, filename string, data []byte) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, data)
}
