package enrollment

import (
	"errors"
	"time"
)

type Enrollment struct {
	UserID           int64     `json:"user_id"`
	CourseID         int64     `json:"course_id"`
	RegistrationDate time.Time `json:"registration_date"`
}

var (
	// target course or student does not resolve to an enrollable pair
	ErrCourseNotFound  = errors.New("course not found")
	ErrStudentNotFound = errors.New("student not found")

	ErrAlreadyEnrolled = errors.New("student already registered for this course")
	ErrCourseFull      = errors.New("course is at full capacity")
	ErrNotFound        = errors.New("enrollment not found")
)

// EnrollRequest carries an optional explicit target. Students may only
// act on themselves; admins must always name the target user.
type EnrollRequest struct {
	UserID   *int64 `json:"user_id" binding:"omitempty,min=1"`
	CourseID int64  `json:"course_id" binding:"required,min=1"`
}

// RegisteredCourse is one row of a student's enrollment listing,
// joined with course details.
type RegisteredCourse struct {
	RegistrationDate time.Time `json:"registration_date"`
	CourseID         int64     `json:"course_id"`
	CourseCode       string    `json:"course_code"`
	CourseName       string    `json:"course_name"`
	Description      string    `json:"description,omitempty"`
	Credits          float64   `json:"credits"`
	TuitionFees      float64   `json:"tuition_fees"`
}

// RegisteredStudent is one row of a course roster, joined with user
// details.
type RegisteredStudent struct {
	RegistrationDate time.Time `json:"registration_date"`
	UserID           int64     `json:"user_id"`
	Username         string    `json:"username"`
	Email            string    `json:"email"`
	FirstName        string    `json:"first_name"`
	LastName         string    `json:"last_name"`
}
