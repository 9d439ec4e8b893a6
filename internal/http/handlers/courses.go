package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/campushub/registrar/internal/cache"
	"github.com/campushub/registrar/internal/config"
	"github.com/campushub/registrar/internal/domain/course"
	"github.com/gin-gonic/gin"
)

type CoursesStore interface {
	Create(ctx context.Context, req course.CreateRequest) (course.Course, error)
	List(ctx context.Context) ([]course.Course, error)
	GetByID(ctx context.Context, id int64) (course.Course, error)
	Update(ctx context.Context, id int64, req course.UpdateRequest) (course.Course, error)
	Delete(ctx context.Context, id int64) error
}

type CoursesHandler struct {
	repo    CoursesStore
	catalog cache.CourseCatalog
}

func NewCoursesHandler(repo CoursesStore, catalog cache.CourseCatalog) *CoursesHandler {
	return &CoursesHandler{repo: repo, catalog: catalog}
}

func (h *CoursesHandler) invalidateCatalog(ctx context.Context) {
	if h.catalog != nil {
		h.catalog.Invalidate(ctx)
	}
}

func (h *CoursesHandler) CreateCourse(ctx *gin.Context) {
	var req course.CreateRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	c, err := h.repo.Create(cctx, req)

	if err != nil {
		if errors.Is(err, course.ErrCodeTaken) {
			RespondConflict(ctx, "code_taken", "Course with that code already exists.")
			return
		}

		RespondInternal(ctx, "Could not create course")
		return
	}

	h.invalidateCatalog(cctx)

	ctx.JSON(http.StatusCreated, gin.H{
		"msg":    "Course created successfully",
		"course": c,
	})
}

// ListCourses serves from the catalog cache when warm; admin mutations
// invalidate it.
func (h *CoursesHandler) ListCourses(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	if h.catalog != nil {
		if courses, ok := h.catalog.Get(cctx); ok {
			RespondJSONWithETag(ctx, http.StatusOK, gin.H{
				"msg":     "Courses fetched successfully",
				"count":   len(courses),
				"courses": courses,
			})
			return
		}
	}

	courses, err := h.repo.List(cctx)

	if err != nil {
		RespondInternal(ctx, "Could not list courses")
		return
	}

	if h.catalog != nil {
		h.catalog.Set(cctx, courses)
	}

	RespondJSONWithETag(ctx, http.StatusOK, gin.H{
		"msg":     "Courses fetched successfully",
		"count":   len(courses),
		"courses": courses,
	})
}

func (h *CoursesHandler) GetCourse(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	c, err := h.repo.GetByID(cctx, id)

	if err != nil {
		if errors.Is(err, course.ErrNotFound) {
			RespondNotFound(ctx, "Course not found")
			return
		}

		RespondInternal(ctx, "Could not fetch course")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"msg":    "Course fetched successfully",
		"course": c,
	})
}

func (h *CoursesHandler) UpdateCourse(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req course.UpdateRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	c, err := h.repo.Update(cctx, id, req)

	if err != nil {
		switch {
		case errors.Is(err, course.ErrNotFound):
			RespondNotFound(ctx, "Course not found")
		case errors.Is(err, course.ErrCodeTaken):
			RespondConflict(ctx, "code_taken", "Course with that code already exists.")
		default:
			RespondInternal(ctx, "Could not update course")
		}
		return
	}

	h.invalidateCatalog(cctx)

	ctx.JSON(http.StatusOK, gin.H{
		"msg":    "Course updated successfully",
		"course": c,
	})
}

func (h *CoursesHandler) DeleteCourse(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	err := h.repo.Delete(cctx, id)

	if err != nil {
		if errors.Is(err, course.ErrNotFound) {
			RespondNotFound(ctx, "Course not found")
			return
		}

		RespondInternal(ctx, "Could not delete course")
		return
	}

	h.invalidateCatalog(cctx)

	ctx.JSON(http.StatusOK, gin.H{
		"msg": "Course deleted successfully",
	})
}
