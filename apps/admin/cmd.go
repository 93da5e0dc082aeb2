package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"

	"github.com/trezcool/devtracker/core"
	"github.com/trezcool/devtracker/core/reminder"
	"github.com/trezcool/devtracker/core/user"
	"github.com/trezcool/devtracker/storage/database"
)

var (
	migrateFunc = database.RunMigrations // mockable
	nowFunc     = time.Now               // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	conf     *core.Config
	db       *sqlx.DB
	validate *validator.Validate
	usrSvc   *user.Service
	runner   *reminder.Runner
	out      io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  adduser -email EMAIL [-name NAME] [-role admin|user] [-timezone TZ] - authorize (or update) a user")
	fmt.Println("  deluser -email EMAIL - revoke a user & delete their activities")
	fmt.Println("  token -email EMAIL - print a session token for a user")
	fmt.Println("  remind - run the reminder routine once")
	fmt.Println("  migrate COMMAND [ARGS] - run a goose migration command (up, down, status, ...)")
}

func (cli *commandLine) output() io.Writer {
	if cli.out != nil {
		return cli.out
	}
	return os.Stdout
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	addUserCmd := flag.NewFlagSet("adduser", flag.ContinueOnError)
	addUserEmail := addUserCmd.String("email", "", "The user's email (required).")
	addUserName := addUserCmd.String("name", "", "The user's display name.")
	addUserRole := addUserCmd.String("role", "", "admin or user (default user).")
	addUserTimezone := addUserCmd.String("timezone", "", "IANA time zone (default from config).")

	delUserCmd := flag.NewFlagSet("deluser", flag.ContinueOnError)
	delUserEmail := delUserCmd.String("email", "", "The user's email (required).")

	tokenCmd := flag.NewFlagSet("token", flag.ContinueOnError)
	tokenEmail := tokenCmd.String("email", "", "The user's email (required).")

	switch args[1] {
	case "adduser":
		if err := addUserCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addUserEmail == "" {
			addUserCmd.Usage()
			return errHelp
		}
		return cli.addUser(user.NewUser{
			Email:    *addUserEmail,
			Name:     *addUserName,
			Role:     *addUserRole,
			Timezone: *addUserTimezone,
		})
	case "deluser":
		if err := delUserCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *delUserEmail == "" {
			delUserCmd.Usage()
			return errHelp
		}
		return cli.delUser(*delUserEmail)
	case "token":
		if err := tokenCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *tokenEmail == "" {
			tokenCmd.Usage()
			return errHelp
		}
		return cli.token(*tokenEmail)
	case "remind":
		return cli.remind()
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	default:
		cli.printUsage()
		return errHelp
	}
}
