package main

import (
	"log"
	"os"

	"github.com/aykutjm/ogrencim/core"
	"github.com/aykutjm/ogrencim/core/student"
	"github.com/aykutjm/ogrencim/core/user"
	emailsvc "github.com/aykutjm/ogrencim/services/email"
	"github.com/aykutjm/ogrencim/storage/database"
	boiledrepos "github.com/aykutjm/ogrencim/storage/database/sqlboiler"
)

var logger *log.Logger

func main() {
	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	conf := core.NewConfig()

	// set up DB
	db, err := database.Open(conf)
	errAndDie(err)
	defer db.Close()
	errAndDie(db.Ping())

	// start CLI
	usrRepo := boiledrepos.NewUserRepository(db)
	cli := commandLine{
		db:      db,
		out:     os.Stdout,
		usrRepo: usrRepo,
		usrSvc:  user.NewService(usrRepo, emailsvc.NewConsoleService(conf), conf),
		studentSvc: student.NewService(
			db,
			boiledrepos.NewStudentRepository(db),
			boiledrepos.NewClassRepository(db),
			boiledrepos.NewGuardianRepository(db),
			conf,
		),
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
