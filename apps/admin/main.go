package main

import (
	"log"
	"os"

	"github.com/ispeaktu/backend/core"
	"github.com/ispeaktu/backend/core/catalog"
	"github.com/ispeaktu/backend/core/user"
	"github.com/ispeaktu/backend/storage/database"
	sqlxrepos "github.com/ispeaktu/backend/storage/database/sqlx"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf := core.NewConfig()
	core.InitValidators()

	// set up DB
	db, err := database.Open(conf)
	errAndDie(err)
	defer db.Close()
	errAndDie(database.Ping(db))

	// start CLI
	cli := commandLine{
		db:         db,
		usrSvc:     user.NewService(sqlxrepos.NewUserRepository(db)),
		catalogSvc: catalog.NewService(sqlxrepos.NewCatalogRepository(db), nil, stdLogger{logger}),
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}

// stdLogger adapts the standard logger to core.Logger for CLI use.
type stdLogger struct {
	std *log.Logger
}

var _ core.Logger = stdLogger{}

func (l stdLogger) log(level, msg string, args []interface{}) {
	l.std.Println(level + ": " + msg)
	for _, arg := range args {
		l.std.Printf("%+v\n", arg)
	}
}

func (l stdLogger) Debug(msg string, args ...interface{}) { l.log("DEBUG", msg, args) }
func (l stdLogger) Info(msg string, args ...interface{})  { l.log("INFO", msg, args) }
func (l stdLogger) Warn(msg string, args ...interface{})  { l.log("WARN", msg, args) }
func (l stdLogger) Error(msg string, args ...interface{}) { l.log("ERROR", msg, args) }
func (l stdLogger) Fatal(msg string, args ...interface{}) { l.std.Fatal(msg) }
