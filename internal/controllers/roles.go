package controllers

import (
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/bjaus/mvc"
	"github.com/bjaus/mvc/internal/models"
)

// Roles manages tbl_roles.
type Roles struct {
	entry
	store    *models.Roles
	validate *validator.Validate
}

// Index lists every role.
func (r *Roles) Index(c *mvc.Context) error {
	list, err := r.store.ReadAll(c.Context())
	if err != nil {
		return err
	}
	return c.Render("Roles/index.html", map[string]any{"roles": list})
}

// Create shows the new-role form.
func (r *Roles) Create(c *mvc.Context) error {
	return c.Render("Roles/create.html", nil)
}

// CreateRole stores a new role. A name that already exists is ignored and
// the index is shown as if it had been added.
func (r *Roles) CreateRole(c *mvc.Context) error {
	var form roleCreateForm
	if err := bind(c, &form); err != nil {
		return r.fail(err)
	}
	if err := check(r.validate, &form, ""); err != nil {
		return r.fail(err)
	}
	exists, err := r.store.CheckName(c.Context(), form.Name)
	if err != nil {
		return err
	}
	if !exists {
		if err := r.store.Create(c.Context(), form.Name); err != nil {
			return r.storeFailed("Unable to save role", err)
		}
	}
	return r.Index(c)
}

// Update shows the rename form for the role in the id parameter.
func (r *Roles) Update(c *mvc.Context) error {
	role, err := r.load(c)
	if err != nil {
		return err
	}
	return c.Render("Roles/update.html", map[string]any{"role": role})
}

// UpdateRole renames a role.
func (r *Roles) UpdateRole(c *mvc.Context) error {
	var form renameForm
	if err := bind(c, &form); err != nil {
		return r.fail(err)
	}
	if err := check(r.validate, &form, "Role name can not be empty."); err != nil {
		return r.fail(err)
	}
	if err := r.store.Update(c.Context(), form.ID, form.Name); err != nil {
		return r.storeFailed("Unable to update role", err)
	}
	return r.Index(c)
}

// Delete shows the delete confirmation for the role in the id parameter.
func (r *Roles) Delete(c *mvc.Context) error {
	role, err := r.load(c)
	if err != nil {
		return err
	}
	return c.Render("Roles/delete.html", map[string]any{"role": role})
}

// DeleteRole removes a role.
func (r *Roles) DeleteRole(c *mvc.Context) error {
	var form deleteForm
	if err := bind(c, &form); err != nil {
		return r.fail(err)
	}
	if err := check(r.validate, &form, "Role ID can not be empty."); err != nil {
		return r.fail(err)
	}
	if err := r.store.Delete(c.Context(), form.ID); err != nil {
		return r.storeFailed("Unable to delete role", err)
	}
	return r.Index(c)
}

func (r *Roles) load(c *mvc.Context) (*models.Role, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return nil, r.notFound("Unable to locate record")
	}
	role, err := r.store.ReadSingle(c.Context(), id)
	if err != nil {
		return nil, err
	}
	if role == nil {
		return nil, r.notFound("Unable to locate record")
	}
	return role, nil
}
