package main

import (
	"errors"
	"flag"
	"fmt"
	"syscall"

	"github.com/jmoiron/sqlx"
	"golang.org/x/term"

	"github.com/ispeaktu/backend/core/catalog"
	"github.com/ispeaktu/backend/core/user"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	db         *sqlx.DB
	usrSvc     *user.Service
	catalogSvc *catalog.Service
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  migrate COMMAND [ARGS] - run a migration command (up, down, status, ...)")
	fmt.Println("  adduser -name NAME [-email EMAIL] [-admin] - create or update a user; the password is prompted next")
	fmt.Println("  grantteacher -name NAME - grant the teacher role to an existing user")
	fmt.Println("  importcurriculum -file FILE.xlsx [-sheet SHEET] - import materials, lessons and questions from a spreadsheet")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	addUserCmd := flag.NewFlagSet("adduser", flag.ExitOnError)
	addUserName := addUserCmd.String("name", "", "The user's display name. The password will be prompted next.")
	addUserEmail := addUserCmd.String("email", "", "The user's email address (optional).")
	addUserAdmin := addUserCmd.Bool("admin", false, "Grant all roles to the user.")

	grantTeacherCmd := flag.NewFlagSet("grantteacher", flag.ExitOnError)
	grantTeacherName := grantTeacherCmd.String("name", "", "The user's display name.")

	importCmd := flag.NewFlagSet("importcurriculum", flag.ExitOnError)
	importFile := importCmd.String("file", "", "Path to the curriculum spreadsheet.")
	importSheet := importCmd.String("sheet", "Sheet1", "Name of the sheet to import.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])

	case "adduser":
		if err := addUserCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addUserName == "" {
			addUserCmd.Usage()
			return errHelp
		}
		fmt.Print("Enter password:")
		pwd, err := readPasswordFunc(syscall.Stdin)
		fmt.Println()
		if err != nil {
			return err
		}
		if len(pwd) == 0 {
			addUserCmd.Usage()
			return errHelp
		}
		return cli.addUser(*addUserName, *addUserEmail, string(pwd), *addUserAdmin)

	case "grantteacher":
		if err := grantTeacherCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *grantTeacherName == "" {
			grantTeacherCmd.Usage()
			return errHelp
		}
		return cli.grantTeacher(*grantTeacherName)

	case "importcurriculum":
		if err := importCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *importFile == "" {
			importCmd.Usage()
			return errHelp
		}
		return cli.importCurriculum(*importFile, *importSheet)

	default:
		cli.printUsage()
		return errHelp
	}
}
