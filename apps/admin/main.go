package main

import (
	"log"
	"os"
	"path/filepath"

	"github.com/dkonate/ecolia/core"
	logsvc "github.com/dkonate/ecolia/services/logger"
	"github.com/dkonate/ecolia/storage/kv/filekv"
	"github.com/dkonate/ecolia/storage/recorddb"
)

func main() {
	defer os.Exit(0)

	std := log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf, err := core.NewConfig()
	errAndDie(std, err)

	var logger core.Logger
	if conf.Rollbar.Token != "" {
		logger = logsvc.NewRollbarLogger(std, conf)
	} else {
		logger = logsvc.NewStdLogger(std)
	}

	dataDir := conf.DataDir
	if dataDir == "" {
		dataDir = filepath.Join(core.Getwd(), "data")
	}
	store, err := filekv.Open(dataDir)
	errAndDie(std, err)

	cli := commandLine{
		conf: conf,
		log:  logger,
		db:   recorddb.Open(store),
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			std.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(std *log.Logger, err error) {
	if err != nil {
		std.Fatal(err)
	}
}
