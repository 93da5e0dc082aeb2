package main

import (
	"context"
	"fmt"

	"github.com/trezcool/devtracker/core/user"
)

// addUser authorizes a user.User, updating it if the email is already provisioned.
func (cli *commandLine) addUser(nu user.NewUser) error {
	if err := nu.Validate(cli.validate); err != nil {
		return err
	}
	usr, err := cli.usrSvc.Provision(context.Background(), nu)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cli.output(), "user %s (%s, %s) is authorized\n", usr.Email, usr.Role, usr.Timezone)
	return nil
}

func (cli *commandLine) delUser(email string) error {
	ctx := context.Background()
	usr, err := cli.usrSvc.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if _, err = cli.usrSvc.Delete(ctx, usr.ID); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cli.output(), "user %s deleted\n", usr.Email)
	return nil
}
