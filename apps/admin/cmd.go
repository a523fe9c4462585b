package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"syscall"

	"golang.org/x/term"

	"github.com/trezcool/bulletin/core/bulletin"
	"github.com/trezcool/bulletin/core/class"
	"github.com/trezcool/bulletin/core/user"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp        = errors.New("help provided")
	errNoDatabase  = errors.New("migrations require the postgres engine")
	errNoPassword  = errors.New("empty password")
	errUnknownFlag = errors.New("bad arguments")
)

type commandLine struct {
	db       *sql.DB // nil with in-memory storage
	usrRepo  user.Repository
	clsSvc   class.ServiceInterface
	bltSvc   bulletin.ServiceInterface
	renderer bulletin.Renderer
	out      io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  adduser -username USERNAME [-email EMAIL] [-name NAME] [-teacher|-admin] [-class CLASS_ID] - create or update a user")
	fmt.Fprintln(cli.out, "  resetpassword -username USERNAME - reset user's password")
	fmt.Fprintln(cli.out, "  migrate COMMAND [ARGS] - run goose migrations (up, down, status, ...)")
	fmt.Fprintln(cli.out, "  seed - create the default classes and bulletin templates")
	fmt.Fprintln(cli.out, "  bulletin -username USERNAME [-period PERIOD] [-out FILE] - write a student's bulletin as PDF")
}

// newFlagSet returns a flag set that reports errors instead of exiting.
func (cli *commandLine) newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(cli.out)
	return fs
}

func flagErr(err error) error {
	if err == flag.ErrHelp {
		return errHelp
	}
	return errUnknownFlag
}

func (cli *commandLine) promptPassword() (string, error) {
	fmt.Fprint(cli.out, "Enter password:")
	pwd, err := readPasswordFunc(int(syscall.Stdin))
	fmt.Fprintln(cli.out)
	if err != nil {
		return "", err
	}
	if len(pwd) == 0 {
		return "", errNoPassword
	}
	return string(pwd), nil
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	switch args[1] {
	case "adduser":
		cmd := cli.newFlagSet("adduser")
		uname := cmd.String("username", "", "The user's username. The password will be prompted next.")
		email := cmd.String("email", "", "The user's email.")
		name := cmd.String("name", "", "The user's full name.")
		classID := cmd.String("class", "", "The class of a student.")
		isTeacher := cmd.Bool("teacher", false, "Create a teacher.")
		isAdmin := cmd.Bool("admin", false, "Create an admin (all roles).")
		if err := cmd.Parse(args[2:]); err != nil {
			return flagErr(err)
		}
		if *uname == "" {
			cmd.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword()
		if err == errNoPassword {
			cmd.Usage()
			return errHelp
		} else if err != nil {
			return err
		}
		roles := user.StudentRoles
		switch {
		case *isAdmin:
			roles = user.AllRoles
		case *isTeacher:
			roles = user.TeacherRoles
		}
		return cli.addUser(addUserArgs{
			name:    *name,
			uname:   *uname,
			email:   *email,
			classID: *classID,
			pwd:     pwd,
			roles:   roles,
		})

	case "resetpassword":
		cmd := cli.newFlagSet("resetpassword")
		uname := cmd.String("username", "", "The user's username. The password will be prompted next.")
		if err := cmd.Parse(args[2:]); err != nil {
			return flagErr(err)
		}
		if *uname == "" {
			cmd.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword()
		if err == errNoPassword {
			cmd.Usage()
			return errHelp
		} else if err != nil {
			return err
		}
		return cli.resetPassword(*uname, pwd)

	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])

	case "seed":
		return cli.seed()

	case "bulletin":
		cmd := cli.newFlagSet("bulletin")
		uname := cmd.String("username", "", "The student's username.")
		period := cmd.String("period", "", "The grading period. Defaults to the period of the student's latest grade.")
		out := cmd.String("out", "", "The output file. Defaults to report_card_<username>.pdf")
		if err := cmd.Parse(args[2:]); err != nil {
			return flagErr(err)
		}
		if *uname == "" {
			cmd.Usage()
			return errHelp
		}
		return cli.writeBulletin(*uname, *period, *out)

	default:
		cli.printUsage()
		return errHelp
	}
}
