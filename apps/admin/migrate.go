package main

import (
	"github.com/ispeaktu/backend/storage/database"
)

var migrateFunc = database.MigrateCommand // mockable

func (cli *commandLine) migrate(args []string) error {
	arguments := make([]string, 0)
	if len(args) > 1 {
		arguments = append(arguments, args[1:]...)
	}
	return migrateFunc(cli.db.DB, args[0], arguments...)
}
