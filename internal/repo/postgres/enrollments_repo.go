package postgres

import (
	"context"
	"errors"

	"github.com/campushub/registrar/internal/domain/enrollment"
	"github.com/campushub/registrar/internal/domain/user"
	"github.com/campushub/registrar/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type EnrollmentsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewEnrollmentsRepo(pool *pgxpool.Pool, prom *observability.Prom) *EnrollmentsRepo {
	return &EnrollmentsRepo{pool: pool, prom: prom}
}

func (repo *EnrollmentsRepo) observe(op string, fn func() error) error {
	if repo.prom != nil {
		return repo.prom.ObserveDB(op, fn)
	}
	return fn()
}

// createTx enforces the enrollment invariants inside one transaction.
// The course row is locked FOR UPDATE before anything else, so two
// concurrent registrations against the last open seat serialize and
// only one commits. The composite primary key on (user_id, course_id)
// backstops the duplicate check at commit time.
func (repo *EnrollmentsRepo) createTx(ctx context.Context, tx pgx.Tx, userID, courseID int64) (reg enrollment.Enrollment, err error) {
	// 1) lock the course row
	var capacity int

	err = repo.observe("enrollments.create_tx.capacity_lock", func() error {
		return tx.QueryRow(ctx,
			`SELECT capacity FROM courses WHERE course_id = $1 FOR UPDATE`,
			courseID).Scan(&capacity)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = enrollment.ErrCourseNotFound
		}
		return
	}

	// 2) count taken seats. This must be its own statement: under read
	// committed a statement that blocked on the row lock keeps the
	// snapshot it started with, so folding the count into the locking
	// query would miss enrollments committed while we waited. A fresh
	// statement here sees them.
	var current int

	err = repo.observe("enrollments.create_tx.seat_count", func() error {
		return tx.QueryRow(ctx,
			`SELECT COUNT(*) FROM student_courses WHERE course_id = $1`,
			courseID).Scan(&current)
	})

	if err != nil {
		return
	}

	// 3) target must exist and be a student
	var role string

	err = repo.observe("enrollments.create_tx.student_check", func() error {
		return tx.QueryRow(ctx, `SELECT role FROM users WHERE user_id = $1`, userID).Scan(&role)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = enrollment.ErrStudentNotFound
		}
		return
	}

	if role != user.RoleStudent {
		err = enrollment.ErrStudentNotFound
		return
	}

	// 4) duplicate pair check, before the capacity verdict so a repeat
	// attempt against a full course still reads as a conflict
	var exists bool

	err = repo.observe("enrollments.create_tx.duplicate_check", func() error {
		return tx.QueryRow(ctx, `SELECT EXISTS(
			SELECT 1 FROM student_courses
			WHERE user_id = $1 AND course_id = $2
		)`, userID, courseID).Scan(&exists)
	})

	if err != nil {
		return
	}

	if exists {
		err = enrollment.ErrAlreadyEnrolled
		return
	}

	// 5) capacity
	if current >= capacity {
		err = enrollment.ErrCourseFull
		return
	}

	// 6) insert
	err = repo.observe("enrollments.create_tx.insert", func() error {
		return tx.QueryRow(ctx, `
		INSERT INTO student_courses (user_id, course_id)
		VALUES ($1, $2)
		RETURNING user_id, course_id, registration_date
	`, userID, courseID).Scan(&reg.UserID, &reg.CourseID, &reg.RegistrationDate)
	})

	if err != nil {
		if IsUniqueViolation(err) {
			err = enrollment.ErrAlreadyEnrolled
		}
		return
	}

	return
}

// Create wraps createTx in its own transaction.
func (repo *EnrollmentsRepo) Create(ctx context.Context, userID, courseID int64) (reg enrollment.Enrollment, err error) {
	tx, err := repo.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return
	}

	defer func() {
		_ = tx.Rollback(ctx)
	}()

	reg, err = repo.createTx(ctx, tx, userID, courseID)

	if err != nil {
		return
	}

	err = tx.Commit(ctx)

	return
}

// Delete removes one enrollment. A second call for the same pair
// reports not-found rather than success.
func (repo *EnrollmentsRepo) Delete(ctx context.Context, userID, courseID int64) (err error) {
	err = repo.observe("enrollments.delete", func() error {
		tag, execErr := repo.pool.Exec(ctx,
			`DELETE FROM student_courses WHERE user_id = $1 AND course_id = $2`,
			userID, courseID)

		if execErr != nil {
			return execErr
		}

		if tag.RowsAffected() == 0 {
			return enrollment.ErrNotFound
		}

		return nil
	})

	return err
}

// ListForStudent returns the student's enrollments joined with course
// details, ordered by course code.
func (repo *EnrollmentsRepo) ListForStudent(ctx context.Context, studentID int64) (items []enrollment.RegisteredCourse, err error) {
	var rows pgx.Rows

	err = repo.observe("enrollments.list_for_student", func() error {
		var qerr error
		rows, qerr = repo.pool.Query(ctx, `
		SELECT sc.registration_date,
			c.course_id, c.course_code, c.course_name, c.description, c.credits, c.tuition_fees
		FROM student_courses sc
		JOIN courses c ON sc.course_id = c.course_id
		WHERE sc.user_id = $1
		ORDER BY c.course_code ASC
	`, studentID)
		return qerr
	})

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	items = make([]enrollment.RegisteredCourse, 0)

	for rows.Next() {
		var rc enrollment.RegisteredCourse

		scanErr := rows.Scan(
			&rc.RegistrationDate,
			&rc.CourseID,
			&rc.CourseCode,
			&rc.CourseName,
			&rc.Description,
			&rc.Credits,
			&rc.TuitionFees,
		)

		if scanErr != nil {
			return nil, scanErr
		}
		items = append(items, rc)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return items, nil
}

// ListForCourse returns the enrolled students joined with user details,
// ordered by last then first name.
func (repo *EnrollmentsRepo) ListForCourse(ctx context.Context, courseID int64) (items []enrollment.RegisteredStudent, err error) {
	var rows pgx.Rows

	err = repo.observe("enrollments.list_for_course", func() error {
		var qerr error
		rows, qerr = repo.pool.Query(ctx, `
		SELECT sc.registration_date,
			u.user_id, u.username, u.email, u.first_name, u.last_name
		FROM student_courses sc
		JOIN users u ON sc.user_id = u.user_id
		WHERE sc.course_id = $1
		ORDER BY u.last_name ASC, u.first_name ASC
	`, courseID)
		return qerr
	})

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	items = make([]enrollment.RegisteredStudent, 0)

	for rows.Next() {
		var rs enrollment.RegisteredStudent

		scanErr := rows.Scan(
			&rs.RegistrationDate,
			&rs.UserID,
			&rs.Username,
			&rs.Email,
			&rs.FirstName,
			&rs.LastName,
		)

		if scanErr != nil {
			return nil, scanErr
		}
		items = append(items, rs)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	// an empty roster for a course that does not exist is a 404, not
	// an empty 200
	if len(items) == 0 {
		var dummy int64

		err = repo.observe("enrollments.list_for_course.check_course_exists", func() error {
			return repo.pool.QueryRow(ctx, `SELECT course_id FROM courses WHERE course_id = $1`, courseID).Scan(&dummy)
		})

		if errors.Is(err, pgx.ErrNoRows) {
			return nil, enrollment.ErrCourseNotFound
		}

		if err != nil {
			return nil, err
		}
	}

	return items, nil
}

func (repo *EnrollmentsRepo) CountForCourse(ctx context.Context, courseID int64) (int, error) {
	op := "enrollments.count_for_course"
	var total int
	err := repo.observe(op, func() error {
		return repo.pool.QueryRow(ctx, `SELECT COUNT(*) FROM student_courses WHERE course_id = $1`, courseID).Scan(&total)
	})
	return total, err
}
