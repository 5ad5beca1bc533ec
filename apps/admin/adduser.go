package main

import (
	"context"

	"github.com/pkg/errors"

	"github.com/ispeaktu/backend/core"
	"github.com/ispeaktu/backend/core/user"
)

// addUser updates or creates a user.User.
func (cli *commandLine) addUser(name, email, pwd string, isAdmin bool) error {
	ctx := context.Background()
	name = core.CleanString(name)
	email = core.CleanString(email, true /* lower */)

	usr, err := cli.usrSvc.GetByName(ctx, name)
	if err != nil {
		if errors.Cause(err) != user.ErrNotFound {
			return err
		}
		usr, err = cli.usrSvc.Register(ctx, user.NewUser{
			Name:            name,
			Email:           email,
			Password:        pwd,
			PasswordConfirm: pwd,
		})
		if err != nil {
			return err
		}
	} else {
		usr.Email = email
		usr.IsActive = true
		if err := usr.SetPassword(pwd); err != nil {
			return err
		}
	}

	if isAdmin {
		usr.Roles = user.AllRoles
	}
	if _, err := cli.usrSvc.Update(ctx, usr, nil); err != nil {
		return err
	}

	logger.Printf("user %q saved (id: %s)", usr.Name, usr.ID)
	return nil
}

func (cli *commandLine) grantTeacher(name string) error {
	ctx := context.Background()

	usr, err := cli.usrSvc.GetByName(ctx, core.CleanString(name))
	if err != nil {
		return err
	}
	usr, err = cli.usrSvc.GrantTeacher(ctx, usr.ID)
	if err != nil {
		return err
	}

	logger.Printf("user %q is now a teacher", usr.Name)
	return nil
}
