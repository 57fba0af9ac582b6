package controllers

import (
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/bjaus/mvc"
	"github.com/bjaus/mvc/internal/models"
)

// newPassword matches update submissions that carry a replacement password.
var newPassword = mvc.And(
	mvc.HasFields("col_password"),
	mvc.Not(mvc.FieldEquals("col_password", "")),
)

// Users manages tbl_users.
type Users struct {
	entry
	store    *models.Users
	validate *validator.Validate
}

// Index lists every user with department and role names.
func (u *Users) Index(c *mvc.Context) error {
	list, err := u.store.ReadAll(c.Context())
	if err != nil {
		return err
	}
	return c.Render("Users/index.html", map[string]any{"users": list})
}

// Create shows the new-user form with the department and role choices.
func (u *Users) Create(c *mvc.Context) error {
	data, err := u.choices(c)
	if err != nil {
		return err
	}
	return c.Render("Users/create.html", data)
}

// CreateUser stores a new user. Checks run in order: username present,
// username free, password, department, role.
func (u *Users) CreateUser(c *mvc.Context) error {
	var form userCreateForm
	if err := bind(c, &form); err != nil {
		return u.fail(err)
	}

	errs := failures(u.validate, &form)
	if len(errs) > 0 && errs[0].StructField() == "Username" {
		return u.fail(rejected(&form, errs[0], ""))
	}
	taken, err := u.store.CheckName(c.Context(), form.Username)
	if err != nil {
		return err
	}
	if taken {
		return u.fail(mvc.ValidationFailed("Username exists in database"))
	}
	if len(errs) > 0 {
		return u.fail(rejected(&form, errs[0], ""))
	}

	err = u.store.Create(c.Context(), models.UserInput{
		Username:     form.Username,
		Password:     form.Password,
		DepartmentID: form.DepartmentID,
		RoleID:       form.RoleID,
	})
	if err != nil {
		return u.storeFailed("Unable to save user", err)
	}
	return u.Index(c)
}

// Update shows the edit form for the user in the id parameter.
func (u *Users) Update(c *mvc.Context) error {
	user, err := u.load(c)
	if err != nil {
		return err
	}
	data, err := u.choices(c)
	if err != nil {
		return err
	}
	data["user"] = user
	return c.Render("Users/update.html", data)
}

// UpdateUser writes a user's username, department and role, and the
// password when a new one was entered.
func (u *Users) UpdateUser(c *mvc.Context) error {
	var form userUpdateForm
	if err := bind(c, &form); err != nil {
		return u.fail(err)
	}
	if err := check(u.validate, &form, ""); err != nil {
		return u.fail(err)
	}
	in := models.UserInput{
		ID:           form.ID,
		Username:     form.Username,
		DepartmentID: form.DepartmentID,
		RoleID:       form.RoleID,
	}
	if c.Is(newPassword) {
		in.Password = form.Password
	}
	if err := u.store.Update(c.Context(), in); err != nil {
		return u.storeFailed("Unable to update user", err)
	}
	return u.Index(c)
}

// Delete shows the delete confirmation for the user in the id parameter.
func (u *Users) Delete(c *mvc.Context) error {
	user, err := u.load(c)
	if err != nil {
		return err
	}
	return c.Render("Users/delete.html", map[string]any{"user": user})
}

// DeleteUser removes a user.
func (u *Users) DeleteUser(c *mvc.Context) error {
	var form deleteForm
	if err := bind(c, &form); err != nil {
		return u.fail(err)
	}
	if err := check(u.validate, &form, "User ID can not be empty"); err != nil {
		return u.fail(err)
	}
	if err := u.store.Delete(c.Context(), form.ID); err != nil {
		return u.storeFailed("Unable to delete user", err)
	}
	return u.Index(c)
}

func (u *Users) choices(c *mvc.Context) (map[string]any, error) {
	departments, err := u.store.Departments(c.Context())
	if err != nil {
		return nil, err
	}
	roles, err := u.store.Roles(c.Context())
	if err != nil {
		return nil, err
	}
	return map[string]any{"departments": departments, "roles": roles}, nil
}

func (u *Users) load(c *mvc.Context) (*models.User, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return nil, u.notFound("Unable to locate record")
	}
	user, err := u.store.ReadSingle(c.Context(), id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, u.notFound("Unable to locate record")
	}
	return user, nil
}
