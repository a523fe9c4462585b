package main

import (
	"context"
	"expvar"
	"fmt"
	"io"
	"net/http"
	_ "net/http/pprof"

	"github.com/pkg/errors"

	echoapi "github.com/trezcool/bulletin/apps/api/echo"
	"github.com/trezcool/bulletin/core"
	"github.com/trezcool/bulletin/core/bulletin"
	"github.com/trezcool/bulletin/core/class"
	"github.com/trezcool/bulletin/core/grade"
	"github.com/trezcool/bulletin/core/user"
	emailsvc "github.com/trezcool/bulletin/services/email"
	logsvc "github.com/trezcool/bulletin/services/logger"
	pdfsvc "github.com/trezcool/bulletin/services/pdf"
	"github.com/trezcool/bulletin/storage/database"
	inmemdb "github.com/trezcool/bulletin/storage/database/inmem"
	sqlxrepos "github.com/trezcool/bulletin/storage/database/sqlx"
)

type storage struct {
	users     user.Repository
	classes   class.Repository
	grades    grade.Repository
	bulletins bulletin.Store
	closer    io.Closer // nil for in-memory storage
}

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	logger := logsvc.NewLogger(logsvc.NewStdLogger(conf), conf)
	defer logger.Wait()

	store, err := setUpStorage(context.Background(), conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up storage: %v", err), err)
	}
	if store.closer != nil {
		defer func() {
			if err := store.closer.Close(); err != nil {
				logger.Error("closing database", err)
			}
		}()
	}

	renderer, err := newRenderer(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up renderer: %v", err), err)
	}

	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf, logger)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}

	usrSvc := user.NewService(store.users, store.classes)
	clsSvc := class.NewService(store.classes, logger)
	grdSvc := grade.NewService(store.grades, store.users)
	bltSvc := bulletin.NewService(store.bulletins, renderer, mailSvc, bulletin.NewSettings(conf.Bulletin), conf, logger)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	translator := core.NewTranslator()
	validate := core.NewValidator(translator)
	user.InitValidators(validate, translator)

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)
	expvar.NewString("storage").Set(conf.Database.Engine)

	if conf.Server.DebugHost != "" {
		go func() {
			if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
				logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
			}
		}()
	}

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(echoapi.ServerDeps{
		Conf:        conf,
		Logger:      logger,
		Validate:    validate,
		Translator:  translator,
		UserSvc:     usrSvc,
		ClassSvc:    clsSvc,
		GradeSvc:    grdSvc,
		BulletinSvc: bltSvc,
	})

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

func setUpStorage(ctx context.Context, conf *core.Config) (storage, error) {
	switch conf.Database.Engine {
	case "memory":
		db := inmemdb.NewDB()
		return storage{
			users:     inmemdb.NewUserRepository(db),
			classes:   inmemdb.NewClassRepository(db),
			grades:    inmemdb.NewGradeRepository(db),
			bulletins: inmemdb.NewBulletinStore(db),
		}, nil

	case "postgres":
		if err := database.CreateIfNotExist(ctx, conf); err != nil {
			return storage{}, err
		}
		db, err := database.Open(ctx, conf)
		if err != nil {
			return storage{}, err
		}
		if err = database.Migrate(db); err != nil {
			_ = db.Close()
			return storage{}, err
		}
		return storage{
			users:     sqlxrepos.NewUserRepository(db),
			classes:   sqlxrepos.NewClassRepository(db),
			grades:    sqlxrepos.NewGradeRepository(db),
			bulletins: sqlxrepos.NewBulletinStore(db),
			closer:    db,
		}, nil
	}
	return storage{}, errors.Errorf("unknown database engine %q", conf.Database.Engine)
}

func newRenderer(conf *core.Config) (*pdfsvc.Renderer, error) {
	if conf.Bulletin.StampPath == "" {
		return pdfsvc.NewRenderer(conf.School), nil
	}
	img, imgType, err := pdfsvc.LoadStamp(conf.Bulletin.StampPath)
	if err != nil {
		return nil, errors.Wrap(err, "loading stamp")
	}
	return pdfsvc.NewRenderer(conf.School, pdfsvc.WithStamp(img, imgType)), nil
}
