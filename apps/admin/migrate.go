package main

import "database/sql"

// migrate runs a goose command over the embedded migrations.
func (cli *commandLine) migrate(args []string) error {
	var db *sql.DB
	if cli.db != nil {
		db = cli.db.DB
	}
	return migrateFunc(db, args[0], args[1:]...)
}
