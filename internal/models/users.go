package models

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/bjaus/mvc"
)

const userColumns = `Users.col_id, Users.col_username, Users.col_department, Users.col_role,
	(SELECT col_name FROM tbl_departments WHERE col_id = Users.col_department) AS col_dname,
	(SELECT col_name FROM tbl_roles WHERE col_id = Users.col_role) AS col_rname`

// Users handles tbl_users.
type Users struct {
	db   *sql.DB
	cost int
}

// NewUsers returns a Users store hashing passwords at bcrypt.DefaultCost.
func NewUsers(db *sql.DB) *Users {
	return &Users{db: db, cost: bcrypt.DefaultCost}
}

// WithCost returns a copy of the store hashing passwords at cost.
func (r *Users) WithCost(cost int) *Users {
	return &Users{db: r.db, cost: cost}
}

func (r *Users) fail(err error) error {
	return mvc.PersistenceFailure(userTitle, err)
}

func (r *Users) hash(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), r.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(h), nil
}

// Create inserts a user with a hashed password.
func (r *Users) Create(ctx context.Context, in UserInput) error {
	h, err := r.hash(in.Password)
	if err != nil {
		return r.fail(err)
	}
	_, err = r.db.ExecContext(ctx, `
	INSERT INTO tbl_users (col_username, col_password, col_department, col_role)
	VALUES (?, ?, ?, ?)
	`, in.Username, h, in.DepartmentID, in.RoleID)
	if err != nil {
		return r.fail(err)
	}
	return nil
}

// ReadAll returns every user ordered by id.
func (r *Users) ReadAll(ctx context.Context) ([]User, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+userColumns+` FROM tbl_users AS Users ORDER BY Users.col_id`)
	if err != nil {
		return nil, r.fail(err)
	}
	defer rows.Close()
	var out []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, r.fail(err)
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, r.fail(err)
	}
	return out, nil
}

// ReadSingle returns the user with the given id, or nil if there is none.
func (r *Users) ReadSingle(ctx context.Context, id int64) (*User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM tbl_users AS Users WHERE Users.col_id = ?`, id)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, r.fail(err)
	}
	return &u, nil
}

// Update writes the username, department and role of in.ID. The password is
// replaced only when in.Password is set. The password is hashed before
// anything is written, so a rejected password leaves the row untouched.
func (r *Users) Update(ctx context.Context, in UserInput) error {
	var password sql.NullString
	if in.Password != "" {
		h, err := r.hash(in.Password)
		if err != nil {
			return r.fail(err)
		}
		password = sql.NullString{String: h, Valid: true}
	}
	_, err := r.db.ExecContext(ctx, `
	UPDATE tbl_users
	SET col_username = ?, col_department = ?, col_role = ?, col_password = COALESCE(?, col_password)
	WHERE col_id = ?
	`, in.Username, in.DepartmentID, in.RoleID, password, in.ID)
	if err != nil {
		return r.fail(err)
	}
	return nil
}

// Delete removes the user with the given id.
func (r *Users) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM tbl_users WHERE col_id = ?`, id); err != nil {
		return r.fail(err)
	}
	return nil
}

// CheckName reports whether username is taken.
func (r *Users) CheckName(ctx context.Context, username string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tbl_users WHERE col_username = ?`, username).Scan(&n)
	if err != nil {
		return false, r.fail(err)
	}
	return n > 0, nil
}

// Departments lists the departments a user can be assigned to.
func (r *Users) Departments(ctx context.Context) ([]Department, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT col_id, col_name FROM tbl_departments ORDER BY col_id`)
	if err != nil {
		return nil, r.fail(err)
	}
	defer rows.Close()
	var out []Department
	for rows.Next() {
		var d Department
		if err := rows.Scan(&d.ID, &d.Name); err != nil {
			return nil, r.fail(err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, r.fail(err)
	}
	return out, nil
}

// Roles lists the roles a user can be assigned.
func (r *Users) Roles(ctx context.Context) ([]Role, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT col_id, col_name FROM tbl_roles ORDER BY col_id`)
	if err != nil {
		return nil, r.fail(err)
	}
	defer rows.Close()
	var out []Role
	for rows.Next() {
		var ro Role
		if err := rows.Scan(&ro.ID, &ro.Name); err != nil {
			return nil, r.fail(err)
		}
		out = append(out, ro)
	}
	if err := rows.Err(); err != nil {
		return nil, r.fail(err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(s scanner) (User, error) {
	var (
		u          User
		dept, role sql.NullInt64
		dname      sql.NullString
		rname      sql.NullString
	)
	if err := s.Scan(&u.ID, &u.Username, &dept, &role, &dname, &rname); err != nil {
		return User{}, err
	}
	u.DepartmentID = dept.Int64
	u.RoleID = role.Int64
	u.DepartmentName = dname.String
	u.RoleName = rname.String
	return u, nil
}
