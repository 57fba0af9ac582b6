// Package controllers implements the user-manager pages: departments, roles
// and users, each with index, create, update and delete actions.
package controllers

import (
	"errors"
	"net/http"
	"slices"

	"github.com/go-playground/validator/v10"

	"github.com/bjaus/mvc"
	"github.com/bjaus/mvc/internal/models"
)

// Deps are the stores and helpers the controllers are built with.
type Deps struct {
	Departments *models.Departments
	Roles       *models.Roles
	Users       *models.Users

	// Validate defaults to NewValidator. A replacement must come from
	// NewValidator too, since the forms use its maxbytes rule.
	Validate *validator.Validate
}

// Routes adds the application's routing table to r.
func Routes(r *mvc.Router) {
	r.Add("", mvc.Params{"controller": "Home", "action": "index"})
	r.Add("{controller}/{action}", nil)
	r.Add(`{controller}/{action}/{id:\d+}`, nil)
}

// Register adds the routing table and every controller to r.
func Register(r *mvc.Router, d Deps) {
	if d.Validate == nil {
		d.Validate = NewValidator()
	}

	Routes(r)

	mvc.Register(r, "Home", func(*mvc.Context) (*Home, error) {
		return &Home{}, nil
	}, mvc.Actions[*Home]{
		"index": (*Home).Index,
	})

	mvc.Register(r, "Departments", func(*mvc.Context) (*Departments, error) {
		return &Departments{
			entry:    entry{title: "Department Entry Error", mutating: []string{"createDepartment", "updateDepartment", "deleteDepartment"}},
			store:    d.Departments,
			validate: d.Validate,
		}, nil
	}, mvc.Actions[*Departments]{
		"index":            (*Departments).Index,
		"create":           (*Departments).Create,
		"createDepartment": (*Departments).CreateDepartment,
		"update":           (*Departments).Update,
		"updateDepartment": (*Departments).UpdateDepartment,
		"delete":           (*Departments).Delete,
		"deleteDepartment": (*Departments).DeleteDepartment,
	})

	mvc.Register(r, "Roles", func(*mvc.Context) (*Roles, error) {
		return &Roles{
			entry:    entry{title: "Role Entry Error", mutating: []string{"createRole", "updateRole", "deleteRole"}},
			store:    d.Roles,
			validate: d.Validate,
		}, nil
	}, mvc.Actions[*Roles]{
		"index":      (*Roles).Index,
		"create":     (*Roles).Create,
		"createRole": (*Roles).CreateRole,
		"update":     (*Roles).Update,
		"updateRole": (*Roles).UpdateRole,
		"delete":     (*Roles).Delete,
		"deleteRole": (*Roles).DeleteRole,
	})

	mvc.Register(r, "Users", func(*mvc.Context) (*Users, error) {
		return &Users{
			entry:    entry{title: "User Entry Error", mutating: []string{"createUser", "updateUser", "deleteUser"}},
			store:    d.Users,
			validate: d.Validate,
		}, nil
	}, mvc.Actions[*Users]{
		"index":      (*Users).Index,
		"create":     (*Users).Create,
		"createUser": (*Users).CreateUser,
		"update":     (*Users).Update,
		"updateUser": (*Users).UpdateUser,
		"delete":     (*Users).Delete,
		"deleteUser": (*Users).DeleteUser,
	})
}

var postOnly = mvc.Method(http.MethodPost)

// entry holds what the entity controllers share: the title of their error
// page and the actions that change data.
type entry struct {
	title    string
	mutating []string
}

// Before rejects mutating actions that are not POSTed.
func (e entry) Before(c *mvc.Context) error {
	if slices.Contains(e.mutating, c.Target.Action) && !c.Is(postOnly) {
		return e.fail(mvc.MethodNotAllowed("Method not allowed"))
	}
	return nil
}

// fail shows err on the entry-error page.
func (e entry) fail(err error) error {
	return mvc.Titled(e.title, err)
}

// notFound reports a missing record.
func (e entry) notFound(msg string) error {
	return e.fail(mvc.NotFound("%s", msg))
}

// storeFailed passes data-store errors through and reports anything else as
// msg with status 500.
func (e entry) storeFailed(msg string, err error) error {
	var me *mvc.Error
	if errors.As(err, &me) && me.Displayed() {
		return err
	}
	return mvc.Display(e.title, http.StatusInternalServerError, msg).Wrap(err)
}
