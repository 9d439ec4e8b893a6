package postgres

import (
	"context"
	"errors"

	"github.com/campushub/registrar/internal/domain/course"
	"github.com/campushub/registrar/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const courseColumns = `course_id, course_code, course_name, description, credits, tuition_fees, capacity`

type CoursesRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewCoursesRepo(pool *pgxpool.Pool, prom *observability.Prom) *CoursesRepo {
	return &CoursesRepo{pool: pool, prom: prom}
}

func (repo *CoursesRepo) observe(op string, fn func() error) error {
	if repo.prom != nil {
		return repo.prom.ObserveDB(op, fn)
	}
	return fn()
}

func scanCourse(row pgx.Row) (course.Course, error) {
	var c course.Course
	err := row.Scan(
		&c.ID,
		&c.Code,
		&c.Name,
		&c.Description,
		&c.Credits,
		&c.TuitionFees,
		&c.Capacity,
	)
	return c, err
}

func (repo *CoursesRepo) Create(ctx context.Context, req course.CreateRequest) (c course.Course, err error) {
	in := course.NewFromCreateRequest(req)

	err = repo.observe("courses.create", func() error {
		row := repo.pool.QueryRow(ctx,
			`INSERT INTO courses (course_code, course_name, description, credits, tuition_fees, capacity)
			 VALUES ($1,$2,$3,$4,$5,$6)
			 RETURNING `+courseColumns,
			in.Code, in.Name, in.Description, in.Credits, in.TuitionFees, in.Capacity,
		)

		var scanErr error
		c, scanErr = scanCourse(row)
		return scanErr
	})

	if err != nil {
		if IsUniqueViolation(err) {
			err = course.ErrCodeTaken
		}
		return course.Course{}, err
	}

	return c, nil
}

func (repo *CoursesRepo) List(ctx context.Context) (courses []course.Course, err error) {
	var rows pgx.Rows

	err = repo.observe("courses.list", func() error {
		var qerr error
		rows, qerr = repo.pool.Query(ctx,
			`SELECT `+courseColumns+` FROM courses ORDER BY course_code ASC`)
		return qerr
	})

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	courses = make([]course.Course, 0)

	for rows.Next() {
		c, scanErr := scanCourse(rows)

		if scanErr != nil {
			return nil, scanErr
		}
		courses = append(courses, c)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return courses, nil
}

func (repo *CoursesRepo) GetByID(ctx context.Context, id int64) (c course.Course, err error) {
	err = repo.observe("courses.get_by_id", func() error {
		row := repo.pool.QueryRow(ctx,
			`SELECT `+courseColumns+` FROM courses WHERE course_id = $1`, id)

		var scanErr error
		c, scanErr = scanCourse(row)
		return scanErr
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return course.Course{}, course.ErrNotFound
		}
		return course.Course{}, err
	}

	return c, nil
}

// Update is partial: nil fields keep the stored value.
func (repo *CoursesRepo) Update(ctx context.Context, id int64, req course.UpdateRequest) (c course.Course, err error) {
	err = repo.observe("courses.update", func() error {
		row := repo.pool.QueryRow(ctx,
			`UPDATE courses SET
				course_code  = COALESCE($2, course_code),
				course_name  = COALESCE($3, course_name),
				description  = COALESCE($4, description),
				credits      = COALESCE($5, credits),
				tuition_fees = COALESCE($6, tuition_fees),
				capacity     = COALESCE($7, capacity)
			WHERE course_id = $1
			RETURNING `+courseColumns,
			id,
			req.Code,
			req.Name,
			req.Description,
			req.Credits,
			req.TuitionFees,
			req.Capacity,
		)

		var scanErr error
		c, scanErr = scanCourse(row)
		return scanErr
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return course.Course{}, course.ErrNotFound
		}
		if IsUniqueViolation(err) {
			return course.Course{}, course.ErrCodeTaken
		}
		return course.Course{}, err
	}

	return c, nil
}

func (repo *CoursesRepo) Delete(ctx context.Context, id int64) (err error) {
	err = repo.observe("courses.delete", func() error {
		tag, execErr := repo.pool.Exec(ctx, `DELETE FROM courses WHERE course_id = $1`, id)

		if execErr != nil {
			return execErr
		}

		if tag.RowsAffected() == 0 {
			return course.ErrNotFound
		}

		return nil
	})

	return err
}
