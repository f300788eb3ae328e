package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/training-portal/internal/model"
	"golang.org/x/crypto/bcrypt"
)

type EmployeeRepository struct {
	db *Database
}

func NewEmployeeRepository(db *Database) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

// Create inserts a new employee without a password hash; the account stays
// locked until the invite token is consumed.
func (r *EmployeeRepository) Create(ctx context.Context, req *model.CreateEmployeeRequest) (*model.Employee, error) {
	role := req.Role
	if role == "" {
		role = model.RoleEmployee
	}

	var emp model.Employee
	query := `
		INSERT INTO employees (id, name, surname, email, role)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, name, surname, email, password_hash, role, created_at
	`
	err := r.db.QueryRowxContext(ctx, query, uuid.New().String(), req.Name, req.Surname, req.Email, role).
		StructScan(&emp)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("failed to create employee: %w", err)
	}

	return &emp, nil
}

func (r *EmployeeRepository) FindByEmail(ctx context.Context, email string) (*model.Employee, error) {
	var emp model.Employee
	query := `SELECT id, name, surname, email, password_hash, role, created_at FROM employees WHERE email = $1`
	err := r.db.GetContext(ctx, &emp, query, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find employee by email: %w", err)
	}
	return &emp, nil
}

func (r *EmployeeRepository) FindByID(ctx context.Context, id string) (*model.Employee, error) {
	var emp model.Employee
	query := `SELECT id, name, surname, email, password_hash, role, created_at FROM employees WHERE id = $1`
	err := r.db.GetContext(ctx, &emp, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find employee by ID: %w", err)
	}
	return &emp, nil
}

func (r *EmployeeRepository) List(ctx context.Context) ([]model.Employee, error) {
	employees := []model.Employee{}
	query := `SELECT id, name, surname, email, password_hash, role, created_at FROM employees ORDER BY surname, name`
	if err := r.db.SelectContext(ctx, &employees, query); err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	return employees, nil
}

// ValidatePassword compares a submitted password against the stored hash.
// An employee without a hash (invited, never activated) can never match;
// bcrypt's comparison is constant-time with respect to the hash.
func (r *EmployeeRepository) ValidatePassword(emp *model.Employee, password string) bool {
	if emp.PasswordHash == nil {
		return false
	}
	err := bcrypt.CompareHashAndPassword([]byte(*emp.PasswordHash), []byte(password))
	return err == nil
}

// SetPasswordHash is the only credential mutation path; both invite
// activation and reset go through it.
func (r *EmployeeRepository) SetPasswordHash(ctx context.Context, id, hash string) error {
	query := `UPDATE employees SET password_hash = $1 WHERE id = $2`
	res, err := r.db.ExecContext(ctx, query, hash, id)
	if err != nil {
		return fmt.Errorf("failed to set password hash: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("employee %s not found", id)
	}
	return nil
}

// CreateAdmin provisions an admin account with a usable password, for
// bootstrapping a fresh install.
func (r *EmployeeRepository) CreateAdmin(ctx context.Context, email, password, name string) (*model.Employee, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	var emp model.Employee
	query := `
		INSERT INTO employees (id, name, surname, email, password_hash, role)
		VALUES ($1, $2, '', $3, $4, $5)
		ON CONFLICT (email) DO UPDATE SET role = EXCLUDED.role
		RETURNING id, name, surname, email, password_hash, role, created_at
	`
	err = r.db.QueryRowxContext(ctx, query, uuid.New().String(), name, email, string(hashed), model.RoleAdmin).
		StructScan(&emp)
	if err != nil {
		return nil, fmt.Errorf("failed to create admin: %w", err)
	}

	return &emp, nil
}
