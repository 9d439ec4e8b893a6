package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/campushub/registrar/internal/domain/enrollment"
	"github.com/campushub/registrar/internal/domain/user"
	"github.com/campushub/registrar/internal/http/handlers"
)

type fakeEnrollmentsRepo struct {
	createFn         func(ctx context.Context, userID, courseID int64) (enrollment.Enrollment, error)
	deleteFn         func(ctx context.Context, userID, courseID int64) error
	listForStudentFn func(ctx context.Context, studentID int64) ([]enrollment.RegisteredCourse, error)
	listForCourseFn  func(ctx context.Context, courseID int64) ([]enrollment.RegisteredStudent, error)
}

func (f *fakeEnrollmentsRepo) Create(ctx context.Context, userID, courseID int64) (enrollment.Enrollment, error) {
	if f.createFn != nil {
		return f.createFn(ctx, userID, courseID)
	}
	return enrollment.Enrollment{UserID: userID, CourseID: courseID, RegistrationDate: time.Now()}, nil
}

func (f *fakeEnrollmentsRepo) Delete(ctx context.Context, userID, courseID int64) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, userID, courseID)
	}
	return nil
}

func (f *fakeEnrollmentsRepo) ListForStudent(ctx context.Context, studentID int64) ([]enrollment.RegisteredCourse, error) {
	if f.listForStudentFn != nil {
		return f.listForStudentFn(ctx, studentID)
	}
	return nil, nil
}

func (f *fakeEnrollmentsRepo) ListForCourse(ctx context.Context, courseID int64) ([]enrollment.RegisteredStudent, error) {
	if f.listForCourseFn != nil {
		return f.listForCourseFn(ctx, courseID)
	}
	return nil, nil
}

func TestRegisterForCourseTargets(t *testing.T) {
	student := user.User{ID: 5, Role: user.RoleStudent}
	admin := user.User{ID: 1, Role: user.RoleAdmin}

	tests := []struct {
		name           string
		identity       user.User
		body           string
		wantStatusCode int
		wantTargetID   int64 // 0 means the store must not be reached
	}{
		{
			name:           "student_registers_self",
			identity:       student,
			body:           `{"course_id": 3}`,
			wantStatusCode: http.StatusCreated,
			wantTargetID:   5,
		},
		{
			name:           "student_naming_own_id_is_fine",
			identity:       student,
			body:           `{"user_id": 5, "course_id": 3}`,
			wantStatusCode: http.StatusCreated,
			wantTargetID:   5,
		},
		{
			name:           "student_cannot_register_someone_else",
			identity:       student,
			body:           `{"user_id": 6, "course_id": 3}`,
			wantStatusCode: http.StatusForbidden,
		},
		{
			name:           "admin_registers_on_behalf",
			identity:       admin,
			body:           `{"user_id": 6, "course_id": 3}`,
			wantStatusCode: http.StatusCreated,
			wantTargetID:   6,
		},
		{
			name:           "admin_must_name_a_student",
			identity:       admin,
			body:           `{"course_id": 3}`,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:           "missing_course_id",
			identity:       student,
			body:           `{}`,
			wantStatusCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			var gotTargetID int64

			repo := &fakeEnrollmentsRepo{
				createFn: func(ctx context.Context, userID, courseID int64) (enrollment.Enrollment, error) {
					gotTargetID = userID
					return enrollment.Enrollment{UserID: userID, CourseID: courseID, RegistrationDate: time.Now()}, nil
				},
			}

			h := handlers.NewEnrollmentsHandler(repo, nil)
			r := setupRouterAs(tt.identity, http.MethodPost, "/student-courses/register", h.Register)

			w := doJSON(t, r, http.MethodPost, "/student-courses/register", tt.body)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}

			if gotTargetID != tt.wantTargetID {
				t.Fatalf("store saw target %d, want %d", gotTargetID, tt.wantTargetID)
			}
		})
	}
}

func TestRegisterForCourseErrorMapping(t *testing.T) {
	tests := []struct {
		name           string
		storeErr       error
		wantStatusCode int
		wantCode       string
	}{
		{"course_missing", enrollment.ErrCourseNotFound, http.StatusNotFound, "not_found"},
		{"student_missing", enrollment.ErrStudentNotFound, http.StatusNotFound, "not_found"},
		{"already_registered", enrollment.ErrAlreadyEnrolled, http.StatusConflict, "already_registered"},
		{"course_full", enrollment.ErrCourseFull, http.StatusBadRequest, "course_full"},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeEnrollmentsRepo{
				createFn: func(ctx context.Context, userID, courseID int64) (enrollment.Enrollment, error) {
					return enrollment.Enrollment{}, tt.storeErr
				},
			}

			h := handlers.NewEnrollmentsHandler(repo, nil)
			r := setupRouterAs(user.User{ID: 5, Role: user.RoleStudent}, http.MethodPost, "/student-courses/register", h.Register)

			w := doJSON(t, r, http.MethodPost, "/student-courses/register", `{"course_id": 3}`)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}

			var resp struct {
				Error struct {
					Code string `json:"code"`
				} `json:"error"`
			}
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode: %v", err)
			}

			if resp.Error.Code != tt.wantCode {
				t.Fatalf("got error code %q, want %q", resp.Error.Code, tt.wantCode)
			}
		})
	}
}

func TestUnregisterNotRegistered(t *testing.T) {
	repo := &fakeEnrollmentsRepo{
		deleteFn: func(ctx context.Context, userID, courseID int64) error {
			return enrollment.ErrNotFound
		},
	}

	h := handlers.NewEnrollmentsHandler(repo, nil)
	r := setupRouterAs(user.User{ID: 5, Role: user.RoleStudent}, http.MethodDelete, "/student-courses/unregister", h.Unregister)

	w := doJSON(t, r, http.MethodDelete, "/student-courses/unregister", `{"course_id": 3}`)

	if w.Code != http.StatusNotFound {
		t.Fatalf("got status %d, want 404, body=%s", w.Code, w.Body.String())
	}
}

func TestRegisteredCoursesTotalsFormatting(t *testing.T) {
	tests := []struct {
		name        string
		items       []enrollment.RegisteredCourse
		wantCredits string
		wantFees    string
	}{
		{
			name: "two_courses",
			items: []enrollment.RegisteredCourse{
				{CourseID: 1, CourseCode: "CS-101", Credits: 3, TuitionFees: 500.00},
				{CourseID: 2, CourseCode: "MA-201", Credits: 4, TuitionFees: 750.50},
			},
			wantCredits: "7.0",
			wantFees:    "1250.50",
		},
		{
			name: "half_credit",
			items: []enrollment.RegisteredCourse{
				{CourseID: 1, CourseCode: "PE-100", Credits: 0.5, TuitionFees: 99.9},
			},
			wantCredits: "0.5",
			wantFees:    "99.90",
		},
		{
			name:        "no_courses",
			items:       nil,
			wantCredits: "0.0",
			wantFees:    "0.00",
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeEnrollmentsRepo{
				listForStudentFn: func(ctx context.Context, studentID int64) ([]enrollment.RegisteredCourse, error) {
					return tt.items, nil
				},
			}

			h := handlers.NewEnrollmentsHandler(repo, nil)
			r := setupRouterAs(user.User{ID: 5, Role: user.RoleStudent}, http.MethodGet, "/student-courses/:id/registered-courses", h.RegisteredCourses)

			w := doJSON(t, r, http.MethodGet, "/student-courses/5/registered-courses", "")

			if w.Code != http.StatusOK {
				t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
			}

			var resp struct {
				TotalCredits string `json:"total_credits"`
				TotalFees    string `json:"total_tuition_fees"`
			}
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode: %v", err)
			}

			if resp.TotalCredits != tt.wantCredits {
				t.Errorf("total_credits = %q, want %q", resp.TotalCredits, tt.wantCredits)
			}
			if resp.TotalFees != tt.wantFees {
				t.Errorf("total_tuition_fees = %q, want %q", resp.TotalFees, tt.wantFees)
			}
		})
	}
}

func TestRegisteredCoursesAccess(t *testing.T) {
	h := handlers.NewEnrollmentsHandler(&fakeEnrollmentsRepo{}, nil)

	t.Run("student_cannot_view_other", func(t *testing.T) {
		r := setupRouterAs(user.User{ID: 5, Role: user.RoleStudent}, http.MethodGet, "/student-courses/:id/registered-courses", h.RegisteredCourses)

		w := doJSON(t, r, http.MethodGet, "/student-courses/6/registered-courses", "")

		if w.Code != http.StatusForbidden {
			t.Fatalf("got status %d, want 403, body=%s", w.Code, w.Body.String())
		}
	})

	t.Run("admin_can_view_any", func(t *testing.T) {
		r := setupRouterAs(user.User{ID: 1, Role: user.RoleAdmin}, http.MethodGet, "/student-courses/:id/registered-courses", h.RegisteredCourses)

		w := doJSON(t, r, http.MethodGet, "/student-courses/6/registered-courses", "")

		if w.Code != http.StatusOK {
			t.Fatalf("got status %d, want 200, body=%s", w.Code, w.Body.String())
		}
	})
}

func TestRegisteredStudents(t *testing.T) {
	t.Run("student_denied", func(t *testing.T) {
		h := handlers.NewEnrollmentsHandler(&fakeEnrollmentsRepo{}, nil)
		r := setupRouterAs(user.User{ID: 5, Role: user.RoleStudent}, http.MethodGet, "/student-courses/:id/registered-students", h.RegisteredStudents)

		w := doJSON(t, r, http.MethodGet, "/student-courses/3/registered-students", "")

		if w.Code != http.StatusForbidden {
			t.Fatalf("got status %d, want 403, body=%s", w.Code, w.Body.String())
		}
	})

	t.Run("unknown_course", func(t *testing.T) {
		repo := &fakeEnrollmentsRepo{
			listForCourseFn: func(ctx context.Context, courseID int64) ([]enrollment.RegisteredStudent, error) {
				return nil, enrollment.ErrCourseNotFound
			},
		}

		h := handlers.NewEnrollmentsHandler(repo, nil)
		r := setupRouterAs(user.User{ID: 1, Role: user.RoleAdmin}, http.MethodGet, "/student-courses/:id/registered-students", h.RegisteredStudents)

		w := doJSON(t, r, http.MethodGet, "/student-courses/99/registered-students", "")

		if w.Code != http.StatusNotFound {
			t.Fatalf("got status %d, want 404, body=%s", w.Code, w.Body.String())
		}
	})

	t.Run("admin_gets_roster", func(t *testing.T) {
		repo := &fakeEnrollmentsRepo{
			listForCourseFn: func(ctx context.Context, courseID int64) ([]enrollment.RegisteredStudent, error) {
				return []enrollment.RegisteredStudent{
					{UserID: 5, Username: "jdoe", Email: "jdoe@example.com", RegistrationDate: time.Now()},
				}, nil
			},
		}

		h := handlers.NewEnrollmentsHandler(repo, nil)
		r := setupRouterAs(user.User{ID: 1, Role: user.RoleAdmin}, http.MethodGet, "/student-courses/:id/registered-students", h.RegisteredStudents)

		w := doJSON(t, r, http.MethodGet, "/student-courses/3/registered-students", "")

		if w.Code != http.StatusOK {
			t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
		}

		var resp struct {
			Students []enrollment.RegisteredStudent `json:"registered_students"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(resp.Students) != 1 || resp.Students[0].UserID != 5 {
			t.Fatalf("unexpected roster: %s", w.Body.String())
		}
	})
}
