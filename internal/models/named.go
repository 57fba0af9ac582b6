package models

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/bjaus/mvc"
)

// record is satisfied by the single-name entities.
type record interface {
	~struct {
		ID   int64
		Name string
	}
}

type entry struct {
	ID   int64
	Name string
}

// named implements CRUD over a (col_id, col_name) table.
type named[T record] struct {
	db    *sql.DB
	table string
	title string
}

func (r *named[T]) fail(err error) error {
	return mvc.PersistenceFailure(r.title, err)
}

// Create inserts a row with the given name.
func (r *named[T]) Create(ctx context.Context, name string) error {
	_, err := r.db.ExecContext(ctx, fmt.Sprintf(`INSERT INTO %s (col_name) VALUES (?)`, r.table), name)
	if err != nil {
		return r.fail(err)
	}
	return nil
}

// ReadAll returns every row ordered by id.
func (r *named[T]) ReadAll(ctx context.Context) ([]T, error) {
	rows, err := r.db.QueryContext(ctx, fmt.Sprintf(`SELECT col_id, col_name FROM %s ORDER BY col_id`, r.table))
	if err != nil {
		return nil, r.fail(err)
	}
	defer rows.Close()
	var out []T
	for rows.Next() {
		var e entry
		if err := rows.Scan(&e.ID, &e.Name); err != nil {
			return nil, r.fail(err)
		}
		out = append(out, T(e))
	}
	if err := rows.Err(); err != nil {
		return nil, r.fail(err)
	}
	return out, nil
}

// ReadSingle returns the row with the given id, or nil if there is none.
func (r *named[T]) ReadSingle(ctx context.Context, id int64) (*T, error) {
	var e entry
	err := r.db.QueryRowContext(ctx, fmt.Sprintf(`SELECT col_id, col_name FROM %s WHERE col_id = ?`, r.table), id).
		Scan(&e.ID, &e.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, r.fail(err)
	}
	t := T(e)
	return &t, nil
}

// Update renames the row with the given id.
func (r *named[T]) Update(ctx context.Context, id int64, name string) error {
	_, err := r.db.ExecContext(ctx, fmt.Sprintf(`UPDATE %s SET col_name = ? WHERE col_id = ?`, r.table), name, id)
	if err != nil {
		return r.fail(err)
	}
	return nil
}

// Delete removes the row with the given id.
func (r *named[T]) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE col_id = ?`, r.table), id)
	if err != nil {
		return r.fail(err)
	}
	return nil
}

// CheckName reports whether a row with the given name exists.
func (r *named[T]) CheckName(ctx context.Context, name string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE col_name = ?`, r.table), name).Scan(&n)
	if err != nil {
		return false, r.fail(err)
	}
	return n > 0, nil
}

// Departments handles tbl_departments.
type Departments struct {
	named[Department]
}

// NewDepartments returns a Departments store over db.
func NewDepartments(db *sql.DB) *Departments {
	return &Departments{named[Department]{db: db, table: "tbl_departments", title: departmentTitle}}
}

// Roles handles tbl_roles.
type Roles struct {
	named[Role]
}

// NewRoles returns a Roles store over db.
func NewRoles(db *sql.DB) *Roles {
	return &Roles{named[Role]{db: db, table: "tbl_roles", title: roleTitle}}
}
