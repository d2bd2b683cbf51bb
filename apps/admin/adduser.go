package main

import (
	"context"

	"github.com/fatih/color"
	"github.com/pkg/errors"

	"github.com/aykutjm/ogrencim/core"
	"github.com/aykutjm/ogrencim/core/user"
)

var errInvalidRole = errors.New("invalid role")

// addUser creates an active user.User, or updates the role & password of the one owning email.
func (cli *commandLine) addUser(name, email, pwd, role, institutionID string) error {
	ctx := context.Background()
	name = core.CleanString(name)
	email = core.CleanString(email, true /* lower */)
	if !user.IsValidRole(role) {
		return errInvalidRole
	}

	usr, err := cli.usrSvc.GetByEmail(ctx, email)
	switch {
	case err == nil:
		usr.Name = name
		usr.Role = role
		usr.IsActive = true
		if institutionID != "" {
			usr.InstitutionID = institutionID
		}
		if err = usr.SetPassword(pwd); err != nil {
			return errors.Wrap(err, "setting password")
		}
		if usr, err = cli.usrRepo.UpdateUser(ctx, usr); err != nil {
			return errors.Wrap(err, "updating user")
		}
	case errors.Cause(err) == user.ErrNotFound:
		usr, err = cli.usrSvc.Create(ctx, user.NewUser{
			Name:          name,
			Email:         email,
			Password:      pwd,
			Role:          role,
			InstitutionID: institutionID,
		})
		if err != nil {
			return errors.Wrap(err, "creating user")
		}
	default:
		return err
	}

	color.New(color.FgGreen).Fprintf(cli.out, "%s <%s> is now %s\n", usr.Name, usr.Email, usr.Role)
	return nil
}
