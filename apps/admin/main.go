package main

import (
	"log"
	"os"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"

	dig_container "github.com/trezcool/devtracker/apps/api/di/dig"
	"github.com/trezcool/devtracker/core"
	"github.com/trezcool/devtracker/core/reminder"
	"github.com/trezcool/devtracker/core/user"
)

func main() {
	logger := log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	var exitCode int
	err := dig_container.New().Invoke(func(
		conf *core.Config,
		db *sqlx.DB,
		validate *validator.Validate,
		translator ut.Translator,
		usrSvc *user.Service,
		runner *reminder.Runner,
	) {
		defer db.Close()

		core.InitValidators(validate, translator)
		user.InitValidators(validate, translator)

		// start CLI
		cli := commandLine{
			conf:     conf,
			db:       db,
			validate: validate,
			usrSvc:   usrSvc,
			runner:   runner,
		}
		if err := cli.run(os.Args); err != nil {
			if err != errHelp {
				logger.Printf("\nerror: %s\n", err)
			}
			exitCode = 1
		}
	})
	if err != nil {
		logger.Fatal(err)
	}
	os.Exit(exitCode)
}
