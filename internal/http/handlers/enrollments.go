package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/campushub/registrar/internal/authz"
	"github.com/campushub/registrar/internal/config"
	"github.com/campushub/registrar/internal/domain/enrollment"
	"github.com/campushub/registrar/internal/http/middlewares"
	"github.com/campushub/registrar/internal/observability"
	"github.com/gin-gonic/gin"
)

type EnrollmentsStore interface {
	Create(ctx context.Context, userID, courseID int64) (enrollment.Enrollment, error)
	Delete(ctx context.Context, userID, courseID int64) error
	ListForStudent(ctx context.Context, studentID int64) ([]enrollment.RegisteredCourse, error)
	ListForCourse(ctx context.Context, courseID int64) ([]enrollment.RegisteredStudent, error)
}

type EnrollmentsHandler struct {
	repo EnrollmentsStore
	prom *observability.Prom
}

func NewEnrollmentsHandler(repo EnrollmentsStore, prom *observability.Prom) *EnrollmentsHandler {
	return &EnrollmentsHandler{repo: repo, prom: prom}
}

func (h *EnrollmentsHandler) countOutcome(outcome string) {
	if h.prom != nil {
		h.prom.EnrollmentsTotal.WithLabelValues(outcome).Inc()
	}
}

// resolveTarget applies the acting-principal rules: students act on
// themselves, admins must name the target explicitly.
func (h *EnrollmentsHandler) resolveTarget(ctx *gin.Context, requested *int64) (int64, bool) {
	p, ok := middlewares.PrincipalFromContext(ctx)
	if !ok {
		RespondError(ctx, http.StatusUnauthorized, "unauthenticated", "Missing identity", nil)
		return 0, false
	}

	targetID, err := authz.ResolveEnrollmentTarget(p, requested)

	if err != nil {
		switch {
		case errors.Is(err, authz.ErrTargetRequired):
			RespondBadRequest(ctx, "Admin must provide user_id.", nil)
		default:
			RespondForbidden(ctx, "Students can only act on their own registrations.")
		}
		return 0, false
	}

	return targetID, true
}

func (h *EnrollmentsHandler) Register(ctx *gin.Context) {
	var req enrollment.EnrollRequest

	if !BindJSON(ctx, &req) {
		return
	}

	targetID, ok := h.resolveTarget(ctx, req.UserID)
	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	reg, err := h.repo.Create(cctx, targetID, req.CourseID)

	if err != nil {
		switch {
		case errors.Is(err, enrollment.ErrCourseNotFound):
			h.countOutcome("not_found")
			RespondNotFound(ctx, "Course not found")
		case errors.Is(err, enrollment.ErrStudentNotFound):
			h.countOutcome("not_found")
			RespondNotFound(ctx, "Cannot register a non-existent or non-student user.")
		case errors.Is(err, enrollment.ErrAlreadyEnrolled):
			h.countOutcome("duplicate")
			RespondConflict(ctx, "already_registered", "Student is already registered for this course.")
		case errors.Is(err, enrollment.ErrCourseFull):
			h.countOutcome("full")
			RespondError(ctx, http.StatusBadRequest, "course_full", "Course is full. Cannot register.", nil)
		default:
			h.countOutcome("error")
			RespondInternal(ctx, "Could not register for course")
		}
		return
	}

	h.countOutcome("registered")

	ctx.JSON(http.StatusCreated, gin.H{
		"msg":          "Successfully registered for course.",
		"registration": reg,
	})
}

func (h *EnrollmentsHandler) Unregister(ctx *gin.Context) {
	var req enrollment.EnrollRequest

	if !BindJSON(ctx, &req) {
		return
	}

	targetID, ok := h.resolveTarget(ctx, req.UserID)
	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	err := h.repo.Delete(cctx, targetID, req.CourseID)

	if err != nil {
		if errors.Is(err, enrollment.ErrNotFound) {
			RespondNotFound(ctx, "Student not registered for this course.")
			return
		}

		RespondInternal(ctx, "Could not unregister from course")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"msg": "Successfully unregistered from course.",
	})
}

// RegisteredCourses lists a student's enrollments along with the summed
// credits (one decimal) and tuition fees (two decimals).
func (h *EnrollmentsHandler) RegisteredCourses(ctx *gin.Context) {
	studentID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	p, ok := middlewares.PrincipalFromContext(ctx)
	if !ok {
		RespondError(ctx, http.StatusUnauthorized, "unauthenticated", "Missing identity", nil)
		return
	}

	if err := authz.CanViewStudentEnrollments(p, studentID); err != nil {
		RespondForbidden(ctx, "Students can only view their own registered courses.")
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	items, err := h.repo.ListForStudent(cctx, studentID)

	if err != nil {
		RespondInternal(ctx, "Could not fetch registered courses")
		return
	}

	var totalCredits, totalFees float64

	for _, it := range items {
		totalCredits += it.Credits
		totalFees += it.TuitionFees
	}

	ctx.JSON(http.StatusOK, gin.H{
		"msg":                "Registered courses fetched successfully",
		"student_id":         studentID,
		"registered_courses": items,
		"total_credits":      strconv.FormatFloat(totalCredits, 'f', 1, 64),
		"total_tuition_fees": strconv.FormatFloat(totalFees, 'f', 2, 64),
	})
}

// RegisteredStudents returns the roster for a course. The route is
// admin-gated; the authz check keeps the rule visible here too.
func (h *EnrollmentsHandler) RegisteredStudents(ctx *gin.Context) {
	courseID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	p, ok := middlewares.PrincipalFromContext(ctx)
	if !ok {
		RespondError(ctx, http.StatusUnauthorized, "unauthenticated", "Missing identity", nil)
		return
	}

	if err := authz.CanViewCourseRoster(p); err != nil {
		RespondForbidden(ctx, "You do not have permission to view course rosters.")
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	items, err := h.repo.ListForCourse(cctx, courseID)

	if err != nil {
		if errors.Is(err, enrollment.ErrCourseNotFound) {
			RespondNotFound(ctx, "Course not found")
			return
		}

		RespondInternal(ctx, "Could not fetch registered students")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"msg":                 "Registered students fetched successfully",
		"course_id":           courseID,
		"registered_students": items,
	})
}
