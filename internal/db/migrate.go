package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schema is applied at startup. Statements are idempotent so repeated
// boots against the same database are safe.
//
// The composite primary key on student_courses and the FOR UPDATE
// course-row lock taken by the enrollments repo together guarantee
// that a course never ends up over capacity and that a (user, course)
// pair is enrolled at most once, even under concurrent requests.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		user_id       BIGSERIAL PRIMARY KEY,
		username      TEXT NOT NULL UNIQUE,
		email         TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		first_name    TEXT NOT NULL,
		last_name     TEXT NOT NULL,
		telephone     TEXT NOT NULL DEFAULT '',
		address       TEXT NOT NULL DEFAULT '',
		role          TEXT NOT NULL DEFAULT 'student'
			CHECK (role IN ('student', 'admin'))
	)`,
	`CREATE TABLE IF NOT EXISTS courses (
		course_id    BIGSERIAL PRIMARY KEY,
		course_code  TEXT NOT NULL UNIQUE,
		course_name  TEXT NOT NULL,
		description  TEXT NOT NULL DEFAULT '',
		credits      NUMERIC(4,1) NOT NULL CHECK (credits >= 0),
		tuition_fees NUMERIC(10,2) NOT NULL CHECK (tuition_fees >= 0),
		capacity     INT NOT NULL CHECK (capacity >= 0)
	)`,
	`CREATE TABLE IF NOT EXISTS student_courses (
		user_id           BIGINT NOT NULL REFERENCES users(user_id) ON DELETE CASCADE,
		course_id         BIGINT NOT NULL REFERENCES courses(course_id) ON DELETE CASCADE,
		registration_date TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (user_id, course_id)
	)`,
	`CREATE INDEX IF NOT EXISTS student_courses_course_idx
		ON student_courses (course_id)`,
}

func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
