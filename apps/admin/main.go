package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/trezcool/bulletin/core"
	"github.com/trezcool/bulletin/core/bulletin"
	"github.com/trezcool/bulletin/core/class"
	"github.com/trezcool/bulletin/core/user"
	emailsvc "github.com/trezcool/bulletin/services/email"
	logsvc "github.com/trezcool/bulletin/services/logger"
	pdfsvc "github.com/trezcool/bulletin/services/pdf"
	"github.com/trezcool/bulletin/storage/database"
	inmemdb "github.com/trezcool/bulletin/storage/database/inmem"
	sqlxrepos "github.com/trezcool/bulletin/storage/database/sqlx"
)

func main() {
	conf := core.NewConfig()
	conf.AppName += " ADMIN"
	logger := logsvc.NewLogger(logsvc.NewStdLogger(conf), conf)

	os.Exit(run(conf, logger))
}

func run(conf *core.Config, logger *logsvc.Logger) int {
	defer logger.Wait()
	ctx := context.Background()

	var (
		db       *sql.DB
		usrRepo  user.Repository
		clsRepo  class.Repository
		bltStore bulletin.Store
	)
	switch conf.Database.Engine {
	case "memory":
		mem := inmemdb.NewDB()
		usrRepo = inmemdb.NewUserRepository(mem)
		clsRepo = inmemdb.NewClassRepository(mem)
		bltStore = inmemdb.NewBulletinStore(mem)
	default:
		if err := database.CreateIfNotExist(ctx, conf); err != nil {
			logger.Error(fmt.Sprintf("creating database: %v", err), err)
			return 1
		}
		sqlxDB, err := database.Open(ctx, conf)
		if err != nil {
			logger.Error(fmt.Sprintf("opening database: %v", err), err)
			return 1
		}
		defer func() { _ = sqlxDB.Close() }()
		db = sqlxDB.DB
		usrRepo = sqlxrepos.NewUserRepository(sqlxDB)
		clsRepo = sqlxrepos.NewClassRepository(sqlxDB)
		bltStore = sqlxrepos.NewBulletinStore(sqlxDB)
	}

	renderer := pdfsvc.NewRenderer(conf.School)
	if conf.Bulletin.StampPath != "" {
		img, imgType, err := pdfsvc.LoadStamp(conf.Bulletin.StampPath)
		if err != nil {
			logger.Error(fmt.Sprintf("loading stamp: %v", err), err)
			return 1
		}
		renderer = pdfsvc.NewRenderer(conf.School, pdfsvc.WithStamp(img, imgType))
	}

	cli := commandLine{
		db:       db,
		usrRepo:  usrRepo,
		clsSvc:   class.NewService(clsRepo, logger),
		bltSvc:   bulletin.NewService(bltStore, renderer, emailsvc.NewConsoleService(conf, logger), bulletin.NewSettings(conf.Bulletin), conf, logger),
		renderer: renderer,
		out:      os.Stdout,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Error(fmt.Sprintf("error: %s", err), err)
		}
		return 1
	}
	return 0
}
