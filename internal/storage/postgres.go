package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/training-portal/internal/config"
)

type Database struct {
	*sqlx.DB
}

func NewDatabase(cfg *config.DatabaseConfig) (*Database, error) {
	db, err := sqlx.Connect("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(time.Hour)

	return &Database{DB: db}, nil
}

func (d *Database) Ping(ctx context.Context) error {
	return d.DB.PingContext(ctx)
}

func (d *Database) Close() error {
	return d.DB.Close()
}

func (d *Database) RunMigrations() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS employees (
			id UUID PRIMARY KEY,
			name VARCHAR(100) NOT NULL,
			surname VARCHAR(100) NOT NULL,
			email VARCHAR(255) UNIQUE NOT NULL,
			password_hash VARCHAR(255),
			role VARCHAR(20) NOT NULL DEFAULT 'employee' CHECK (role IN ('admin', 'employee')),
			created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS teachers (
			id UUID PRIMARY KEY,
			name VARCHAR(100) NOT NULL,
			surname VARCHAR(100) NOT NULL,
			email VARCHAR(255) NOT NULL,
			title VARCHAR(100) NOT NULL DEFAULT '',
			specialization VARCHAR(255) NOT NULL DEFAULT '',
			active BOOLEAN NOT NULL DEFAULT true
		)`,
		`CREATE TABLE IF NOT EXISTS categories (
			id UUID PRIMARY KEY,
			name VARCHAR(100) NOT NULL,
			active BOOLEAN NOT NULL DEFAULT true
		)`,
		`CREATE TABLE IF NOT EXISTS courses (
			id UUID PRIMARY KEY,
			title VARCHAR(255) NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			teacher_id UUID NOT NULL REFERENCES teachers(id),
			category_id UUID REFERENCES categories(id),
			validity_days INTEGER NOT NULL CHECK (validity_days > 0),
			active BOOLEAN NOT NULL DEFAULT true,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
		)`,
		// The UNIQUE pair constraint is what makes concurrent enrollment
		// attempts resolve to exactly one winner; expiry is computed at
		// read time and never stored.
		`CREATE TABLE IF NOT EXISTS enrollments (
			id UUID PRIMARY KEY,
			employee_id UUID NOT NULL REFERENCES employees(id),
			course_id UUID NOT NULL REFERENCES courses(id),
			enrolled_at TIMESTAMP WITH TIME ZONE NOT NULL,
			duration_days_at_enrollment INTEGER NOT NULL CHECK (duration_days_at_enrollment > 0),
			completed_at TIMESTAMP WITH TIME ZONE,
			UNIQUE (employee_id, course_id)
		)`,
		`CREATE TABLE IF NOT EXISTS reset_tokens (
			token VARCHAR(64) PRIMARY KEY,
			employee_id UUID NOT NULL REFERENCES employees(id),
			purpose VARCHAR(20) NOT NULL CHECK (purpose IN ('invite', 'reset')),
			expires_at TIMESTAMP WITH TIME ZONE NOT NULL,
			consumed_at TIMESTAMP WITH TIME ZONE,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_courses_teacher ON courses(teacher_id)`,
		`CREATE INDEX IF NOT EXISTS idx_courses_category ON courses(category_id)`,
		`CREATE INDEX IF NOT EXISTS idx_courses_active ON courses(active)`,
		`CREATE INDEX IF NOT EXISTS idx_enrollments_employee ON enrollments(employee_id)`,
		`CREATE INDEX IF NOT EXISTS idx_enrollments_course ON enrollments(course_id)`,
		`CREATE INDEX IF NOT EXISTS idx_reset_tokens_employee ON reset_tokens(employee_id)`,
	}

	for _, migration := range migrations {
		if _, err := d.Exec(migration); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	return nil
}
