package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/scuola-app/scuola-api/internal/models"
	"github.com/scuola-app/scuola-api/internal/service"
	appErrors "github.com/scuola-app/scuola-api/pkg/errors"
	"github.com/scuola-app/scuola-api/pkg/response"
)

// CourseHandler exposes the public catalog, instructor submissions and the
// admin moderation queue.
type CourseHandler struct {
	courses *service.CourseService
	logger  *zap.Logger
}

// NewCourseHandler constructs a CourseHandler instance.
func NewCourseHandler(courses *service.CourseService, logger *zap.Logger) *CourseHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseHandler{courses: courses, logger: logger}
}

// PublicCatalog godoc
// @Summary List approved courses
// @Tags courses
// @Produce json
// @Success 200 {array} models.Course
// @Router /courses [get]
func (h *CourseHandler) PublicCatalog(c *gin.Context) {
	courses, err := h.courses.PublicCatalog(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, courses)
}

// PopularCourses godoc
// @Summary List top approved courses by enrollment
// @Tags courses
// @Produce json
// @Success 200 {array} models.Course
// @Router /popularCourses [get]
func (h *CourseHandler) PopularCourses(c *gin.Context) {
	courses, err := h.courses.PopularCourses(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, courses)
}

// AllCourses lists every course for moderation, pending first.
func (h *CourseHandler) AllCourses(c *gin.Context) {
	courses, err := h.courses.AllCourses(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, courses)
}

// Submit godoc
// @Summary Submit a course for moderation
// @Tags courses
// @Accept json
// @Produce json
// @Param payload body service.SubmitCourseRequest true "Course payload"
// @Success 201 {object} models.Course
// @Security BearerAuth
// @Router /courses/instructors [post]
func (h *CourseHandler) Submit(c *gin.Context) {
	var req service.SubmitCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}

	course, err := h.courses.Submit(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, course)
}

// InstructorCourses lists the caller's own submissions.
func (h *CourseHandler) InstructorCourses(c *gin.Context) {
	courses, err := h.courses.InstructorCourses(c.Request.Context(), c.Query("email"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, courses)
}

// Get returns one course by id.
func (h *CourseHandler) Get(c *gin.Context) {
	course, err := h.courses.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, course)
}

// Update overwrites the editable fields of a submission.
func (h *CourseHandler) Update(c *gin.Context) {
	var req models.CourseUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}

	if err := h.courses.Update(c.Request.Context(), c.Param("id"), req); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"modified": true})
}

// Delete removes a submission.
func (h *CourseHandler) Delete(c *gin.Context) {
	if err := h.courses.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"deleted": true})
}

// Approve makes a submission publicly visible.
func (h *CourseHandler) Approve(c *gin.Context) {
	if err := h.courses.Approve(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"modified": true})
}

// Deny rejects a submission.
func (h *CourseHandler) Deny(c *gin.Context) {
	if err := h.courses.Deny(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"modified": true})
}

// Feedback stores admin feedback on a submission.
func (h *CourseHandler) Feedback(c *gin.Context) {
	var req service.FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}

	if err := h.courses.Feedback(c.Request.Context(), c.Param("id"), req); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"modified": true})
}

// InstructorProfile resolves a public instructor page.
func (h *CourseHandler) InstructorProfile(c *gin.Context) {
	profile, err := h.courses.InstructorProfile(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, profile)
}
