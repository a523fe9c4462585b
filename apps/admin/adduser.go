package main

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/bulletin/core"
	"github.com/trezcool/bulletin/core/user"
)

type addUserArgs struct {
	name, uname, email string
	classID            string
	pwd                string
	roles              []string
}

// addUser updates or creates a user.User
func (cli *commandLine) addUser(a addUserArgs) error {
	ctx := context.Background()
	uname := core.CleanString(a.uname, true /* lower */)
	now := user.NowFunc()

	usr, err := cli.usrRepo.GetUser(ctx, user.GetFilter{Username: uname})
	exists := err == nil
	if err != nil {
		if err != user.ErrNotFound {
			return errors.Wrap(err, "getting user")
		}
		usr = user.User{Username: uname, CreatedAt: now}
	}

	if name := core.CleanString(a.name); name != "" {
		usr.Name = name
	}
	if email := core.CleanString(a.email, true /* lower */); email != "" {
		usr.Email = email
	}
	usr.Roles = a.roles
	if usr.IsStudent() {
		usr.ClassID = core.CleanString(a.classID)
	} else {
		usr.ClassID = ""
	}
	usr.UpdatedAt = now
	usr.SetActive(true)
	if err = usr.SetPassword(a.pwd); err != nil {
		return errors.Wrap(err, "setting password")
	}

	if exists {
		_, err = cli.usrRepo.UpdateUser(ctx, usr)
		return errors.Wrap(err, "updating user")
	}
	_, err = cli.usrRepo.CreateUser(ctx, usr)
	return errors.Wrap(err, "creating user")
}
