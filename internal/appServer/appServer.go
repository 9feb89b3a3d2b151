// launching the HTTP server, store, ingestion pipeline and refresh schedule
package appServer

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/x9sg296jrh-cell/gt-jfc-auditor-clean/config"
	"github.com/x9sg296jrh-cell/gt-jfc-auditor-clean/internal/database"
	"github.com/x9sg296jrh-cell/gt-jfc-auditor-clean/internal/ingest"
	"github.com/x9sg296jrh-cell/gt-jfc-auditor-clean/internal/pkg/foodscan"
	"github.com/x9sg296jrh-cell/gt-jfc-auditor-clean/internal/pkg/timeparse"
	"github.com/x9sg296jrh-cell/gt-jfc-auditor-clean/internal/routing"
	"github.com/x9sg296jrh-cell/gt-jfc-auditor-clean/internal/service"
	"github.com/x9sg296jrh-cell/gt-jfc-auditor-clean/internal/transport"
)

type Server struct {
	httpServer *http.Server
}

func (s *Server) Run(cfg *config.Config, handler http.Handler) error {
	s.httpServer = &http.Server{
		Addr:              cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:           handler,
		MaxHeaderBytes:    1 << 20,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		ReadHeaderTimeout: 3 * time.Second,
	}
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func NewServer(cfg *config.Config) {

	logrus.SetFormatter(new(logrus.JSONFormatter))

	loc, err := time.LoadLocation(cfg.Window.Timezone)
	if err != nil {
		logrus.Warnf("unknown timezone %q, using local", cfg.Window.Timezone)
		loc = time.Local
	}

	repo, err := database.NewSnapshotRepository(cfg.Store)
	if err != nil {
		logrus.Fatalf("store init failed: %s", err.Error())
	}

	source, err := ingest.NewFromConfig(cfg.Ingest)
	if err != nil {
		logrus.Fatalf("ingest init failed: %s", err.Error())
	}

	classifier := foodscan.New(
		foodscan.WithFixedNote(cfg.Classifier.Note),
		foodscan.WithExtraKeywords(cfg.Classifier.ExtraKeywords...),
		foodscan.WithExtraNegations(cfg.Classifier.ExtraNegations...),
	)

	localNow := func() time.Time { return time.Now().In(loc) }
	normalizer := ingest.NewNormalizer(classifier, eventWindow(cfg.Window), localNow)
	driver := ingest.NewDriver(source, normalizer, localNow)

	router := routing.NewFromConfig(cfg.Routing)

	eventService := service.NewEventService(repo, driver, router, &service.EventServiceConfig{
		QueryStart:     cfg.Window.QueryStart,
		QueryEnd:       cfg.Window.QueryEnd,
		Location:       loc,
		RoutingTimeout: cfg.Routing.Timeout,
	})
	eventHandler := transport.NewEventHandler(eventService)

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	if cfg.Ingest.RefreshOnStart {
		go func() {
			if _, err := eventService.Refresh(context.Background()); err != nil {
				logrus.Errorf("initial refresh failed: %s", err.Error())
			}
		}()
	}

	var schedule *cron.Cron
	if cfg.Ingest.Schedule != "" {
		schedule = cron.New()
		_, err := schedule.AddFunc(cfg.Ingest.Schedule, func() {
			if _, err := eventService.Refresh(context.Background()); err != nil {
				logrus.Errorf("scheduled refresh failed: %s", err.Error())
			}
		})
		if err != nil {
			logrus.Fatalf("bad refresh schedule %q: %s", cfg.Ingest.Schedule, err.Error())
		}
		schedule.Start()
		logrus.Infof("refresh schedule active: %s", cfg.Ingest.Schedule)
	}

	srv := new(Server)
	go func() {
		if err := srv.Run(cfg, transport.InitRoutes(eventHandler)); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("error occured while running http server: %s", err.Error())
		}
	}()

	logrus.Print("App Started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	<-quit

	logrus.Print("App Shutting Down")

	if schedule != nil {
		schedule.Stop()
	}

	if err := srv.Shutdown(context.Background()); err != nil {
		logrus.Errorf("error occured on server shutting down: %s", err.Error())
	}
}

// eventWindow converts the configured fallback event window into parser form.
func eventWindow(w config.WindowConfig) timeparse.Window {
	win := timeparse.DefaultWindow
	if t, err := time.Parse("15:04", w.EventStart); err == nil {
		win.StartHour, win.StartMinute = t.Hour(), t.Minute()
	}
	if t, err := time.Parse("15:04", w.EventEnd); err == nil {
		win.EndHour, win.EndMinute = t.Hour(), t.Minute()
	}
	return win
}
