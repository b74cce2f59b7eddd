package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"syscall"

	"golang.org/x/term"

	"github.com/dkonate/ecolia/core"
	"github.com/dkonate/ecolia/core/grading"
	"github.com/dkonate/ecolia/core/history"
	"github.com/dkonate/ecolia/core/user"
	"github.com/dkonate/ecolia/storage/recorddb"
	"github.com/dkonate/ecolia/storage/seed"
)

var (
	readPasswordFunc = term.ReadPassword // mockable
	seedRunFunc      = seed.Run          // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	conf *core.Config
	log  core.Logger
	db   *recorddb.DB
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  seed                                   - install the default dataset")
	fmt.Println("  resetpassword -username USERNAME       - reset a user's password")
	fmt.Println("  export -out FILE                       - dump all data to FILE")
	fmt.Println("  import -in FILE                        - load a previous dump")
	fmt.Println("  recompute -class CLASS -period PERIOD  - rebuild period averages")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	resetPasswordCmd := flag.NewFlagSet("resetpassword", flag.ExitOnError)
	resetPasswordUname := resetPasswordCmd.String("username", "", "The user's username. The password will be prompted next.")

	exportCmd := flag.NewFlagSet("export", flag.ExitOnError)
	exportOut := exportCmd.String("out", "", "Destination file for the JSON dump.")

	importCmd := flag.NewFlagSet("import", flag.ExitOnError)
	importIn := importCmd.String("in", "", "JSON dump to load.")

	recomputeCmd := flag.NewFlagSet("recompute", flag.ExitOnError)
	recomputeClass := recomputeCmd.String("class", "", "Class id.")
	recomputePeriod := recomputeCmd.String("period", "", "Evaluation period id.")

	switch args[1] {
	case "seed":
		return seedRunFunc(cli.db, cli.log)
	case "resetpassword":
		if err := resetPasswordCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *resetPasswordUname == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		fmt.Print("Enter password:")
		pwd, err := readPasswordFunc(int(syscall.Stdin))
		fmt.Println()
		if err != nil {
			return err
		}
		if len(pwd) == 0 {
			resetPasswordCmd.Usage()
			return errHelp
		}
		return cli.resetPassword(*resetPasswordUname, string(pwd))
	case "export":
		if err := exportCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *exportOut == "" {
			exportCmd.Usage()
			return errHelp
		}
		return cli.exportData(*exportOut)
	case "import":
		if err := importCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *importIn == "" {
			importCmd.Usage()
			return errHelp
		}
		return cli.importData(*importIn)
	case "recompute":
		if err := recomputeCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *recomputeClass == "" || *recomputePeriod == "" {
			recomputeCmd.Usage()
			return errHelp
		}
		return cli.recompute(*recomputeClass, *recomputePeriod)
	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) resetPassword(uname, pwd string) error {
	hist := history.NewService(recorddb.NewHistoryRepository(cli.db))
	usrSvc := user.NewService(recorddb.NewUserRepository(cli.db), cli.conf, hist)
	return usrSvc.ChangePassword(user.PasswordChange{
		Username:        uname,
		Password:        pwd,
		PasswordConfirm: pwd,
	})
}

func (cli *commandLine) exportData(path string) error {
	dump, err := cli.db.Export()
	if err != nil {
		return err
	}
	return os.WriteFile(path, dump, 0o600)
}

func (cli *commandLine) importData(path string) error {
	dump, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return cli.db.Import(dump)
}

func (cli *commandLine) recompute(classID, periodID string) error {
	svc := grading.NewService(recorddb.NewGradingRepository(cli.db), nil, cli.log, nil)
	return svc.RecomputePeriodAverages(classID, periodID)
}
