package controllers

import (
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/bjaus/mvc"
	"github.com/bjaus/mvc/internal/models"
)

// Departments manages tbl_departments.
type Departments struct {
	entry
	store    *models.Departments
	validate *validator.Validate
}

// Index lists every department.
func (d *Departments) Index(c *mvc.Context) error {
	list, err := d.store.ReadAll(c.Context())
	if err != nil {
		return err
	}
	return c.Render("Departments/index.html", map[string]any{"departments": list})
}

// Create shows the new-department form.
func (d *Departments) Create(c *mvc.Context) error {
	return c.Render("Departments/create.html", nil)
}

// CreateDepartment stores a new department. Names must be non-empty and
// unique.
func (d *Departments) CreateDepartment(c *mvc.Context) error {
	var form departmentCreateForm
	if err := bind(c, &form); err != nil {
		return d.fail(err)
	}
	if err := check(d.validate, &form, ""); err != nil {
		return d.fail(err)
	}
	exists, err := d.store.CheckName(c.Context(), form.Name)
	if err != nil {
		return err
	}
	if exists {
		return d.fail(mvc.ValidationFailed("Department exists in database."))
	}
	if err := d.store.Create(c.Context(), form.Name); err != nil {
		return d.storeFailed("Unable to save department", err)
	}
	return d.Index(c)
}

// Update shows the rename form for the department in the id parameter.
func (d *Departments) Update(c *mvc.Context) error {
	dep, err := d.load(c, "Record not found")
	if err != nil {
		return err
	}
	return c.Render("Departments/update.html", map[string]any{"department": dep})
}

// UpdateDepartment renames a department.
func (d *Departments) UpdateDepartment(c *mvc.Context) error {
	var form renameForm
	if err := bind(c, &form); err != nil {
		return d.fail(err)
	}
	if err := check(d.validate, &form, "Department name can not be empty"); err != nil {
		return d.fail(err)
	}
	if err := d.store.Update(c.Context(), form.ID, form.Name); err != nil {
		return d.storeFailed("Unable to update department", err)
	}
	return d.Index(c)
}

// Delete shows the delete confirmation for the department in the id
// parameter.
func (d *Departments) Delete(c *mvc.Context) error {
	dep, err := d.load(c, "Unable to locate record")
	if err != nil {
		return err
	}
	return c.Render("Departments/delete.html", map[string]any{"department": dep})
}

// DeleteDepartment removes a department.
func (d *Departments) DeleteDepartment(c *mvc.Context) error {
	var form deleteForm
	if err := bind(c, &form); err != nil {
		return d.fail(err)
	}
	if err := check(d.validate, &form, "Department ID can not be empty"); err != nil {
		return d.fail(err)
	}
	if err := d.store.Delete(c.Context(), form.ID); err != nil {
		return d.storeFailed("Unable to delete department", err)
	}
	return d.Index(c)
}

func (d *Departments) load(c *mvc.Context, missing string) (*models.Department, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return nil, d.notFound(missing)
	}
	dep, err := d.store.ReadSingle(c.Context(), id)
	if err != nil {
		return nil, err
	}
	if dep == nil {
		return nil, d.notFound(missing)
	}
	return dep, nil
}
