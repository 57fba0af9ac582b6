package controllers

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/bjaus/mvc"
)

// NewValidator returns a validator that names fields by their form tag and
// knows the maxbytes rule.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		if name := fld.Tag.Get("form"); name != "" {
			return name
		}
		return fld.Name
	})
	// max counts runes; maxbytes limits the encoded length.
	if err := v.RegisterValidation("maxbytes", maxBytes); err != nil {
		panic(err)
	}
	return v
}

func maxBytes(fl validator.FieldLevel) bool {
	limit, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return len(fl.Field().String()) <= limit
}

// bind copies submitted fields into the string and int64 fields of dst
// tagged with `form:"name"`. Numbers that do not parse are left at zero so
// "required" rejects them.
func bind(c *mvc.Context, dst any) error {
	if _, err := c.Fields(); err != nil {
		return mvc.ValidationFailed("Unable to read submitted data").Wrap(err)
	}
	rv := reflect.ValueOf(dst).Elem()
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		name := rt.Field(i).Tag.Get("form")
		if name == "" {
			continue
		}
		raw := c.Field(name)
		f := rv.Field(i)
		switch f.Kind() {
		case reflect.String:
			f.SetString(raw)
		case reflect.Int64:
			n, err := strconv.ParseInt(raw, 10, 64)
			if err == nil {
				f.SetInt(n)
			}
		default:
			return fmt.Errorf("bind %s: unsupported kind %s", name, f.Kind())
		}
	}
	return nil
}

// check validates form and returns the message of the first failing field,
// in declaration order, as a 406. Messages come from the field's
// `message_<rule>` tag, then its `message` tag, then fallback.
func check(v *validator.Validate, form any, fallback string) error {
	errs := failures(v, form)
	if len(errs) == 0 {
		return nil
	}
	return rejected(form, errs[0], fallback)
}

func failures(v *validator.Validate, form any) validator.ValidationErrors {
	err := v.Struct(form)
	var errs validator.ValidationErrors
	if errors.As(err, &errs) {
		return errs
	}
	return nil
}

func rejected(form any, fe validator.FieldError, fallback string) error {
	msg := fallback
	if msg == "" {
		msg = fe.Error()
	}
	if sf, ok := reflect.TypeOf(form).Elem().FieldByName(fe.StructField()); ok {
		if m := sf.Tag.Get("message_" + fe.Tag()); m != "" {
			msg = m
		} else if m := sf.Tag.Get("message"); m != "" {
			msg = m
		}
	}
	return mvc.ValidationFailed("%s", msg)
}

type departmentCreateForm struct {
	Name string `form:"department" validate:"required" message:"Department name can not be empty"`
}

type roleCreateForm struct {
	Name string `form:"role" validate:"required" message:"Role name can not be empty."`
}

type renameForm struct {
	ID   int64  `form:"col_id"`
	Name string `form:"col_name" validate:"required"`
}

type deleteForm struct {
	ID int64 `form:"col_id" validate:"required"`
}

type userCreateForm struct {
	Username     string `form:"col_username" validate:"required" message:"Username must be provided"`
	Password     string `form:"col_password" validate:"required,maxbytes=72" message:"Password must be provided" message_maxbytes:"Password can not be longer than 72 bytes"`
	DepartmentID int64  `form:"col_department" validate:"required" message:"Department must be provided"`
	RoleID       int64  `form:"col_role" validate:"required" message:"Role must be provided"`
}

type userUpdateForm struct {
	ID           int64  `form:"col_id"`
	Username     string `form:"col_username"`
	Password     string `form:"col_password" validate:"maxbytes=72" message:"Password can not be longer than 72 bytes"`
	DepartmentID int64  `form:"col_department" validate:"required" message:"Department must be provided"`
	RoleID       int64  `form:"col_role" validate:"required" message:"Role must be provided"`
}
