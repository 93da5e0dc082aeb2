package main

import (
	"context"
	"fmt"

	echoapi "github.com/trezcool/devtracker/apps/api/echo"
)

// token prints a signed session token, for calling the API without the identity provider.
func (cli *commandLine) token(email string) error {
	usr, err := cli.usrSvc.GetByEmail(context.Background(), email)
	if err != nil {
		return err
	}
	tok, err := echoapi.GenerateToken(echoapi.GetUserClaims(usr, cli.conf), cli.conf)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(cli.output(), tok)
	return nil
}
