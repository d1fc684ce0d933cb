package server

import (
	"context"
	"database/sql"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"jobassist-backend/internal/docgen"
	"jobassist-backend/internal/monitor"
	"jobassist-backend/internal/notifications"
	"jobassist-backend/internal/profiles"
	"jobassist-backend/internal/shared/config"
	"jobassist-backend/internal/shared/server/middleware"
	"jobassist-backend/internal/shared/server/respond"
	"jobassist-backend/internal/shared/storage/db"
	"jobassist-backend/internal/submit"
	"jobassist-backend/internal/workflow"
)

// NewRouter constructs the Gin engine with middleware and routes registered.
// It also launches the background job-monitoring loop.
func NewRouter(cfg config.Config) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(cfg.CORSAllowOrigin),
		middleware.RateLimit(middleware.RateLimitConfig{
			Rules: map[string]middleware.RateLimitRule{
				"DEFAULT": {Rate: 5, Burst: 20},
				"POLLING": {Rate: 20, Burst: 60},
			},
			GroupFor: func(c *gin.Context) string {
				if c.Request.Method == http.MethodGet && c.FullPath() == "/api/v1/workflows/:id/status" {
					return "POLLING"
				}
				return "DEFAULT"
			},
		}),
	)

	// Dependencies
	var sqlDB *sql.DB
	if cfg.DatabaseURL != "" {
		opts := db.OptionsFromEnv(db.DefaultServerOptions())
		dbConn, err := db.Connect(context.Background(), cfg.DatabaseURL, opts)
		if err != nil {
			log.Printf("failed to connect database, falling back to memory: %v", err)
		} else {
			if err := db.RunMigrations(context.Background(), dbConn); err != nil {
				log.Printf("failed to run migrations, falling back to memory: %v", err)
				dbConn = nil
			}
		}
		sqlDB = dbConn
	}

	// Profiles stay in memory until the knowledge-graph reader lands.
	profileRepo := profiles.NewMemoryRepo()

	var wfRepo workflow.Repo
	if sqlDB != nil {
		wfRepo = &workflow.PGRepo{DB: sqlDB}
	} else {
		wfRepo = workflow.NewMemoryRepo()
	}
	var noteRepo notifications.Repo
	if sqlDB != nil {
		noteRepo = &notifications.PGRepo{DB: sqlDB}
	} else {
		noteRepo = notifications.NewMemoryRepo()
	}
	var records workflow.RecordStore
	if sqlDB != nil {
		records = &submit.PGRecords{DB: sqlDB}
	} else {
		records = submit.NewMemoryRecords()
	}

	wfSvc := &workflow.Service{
		Repo:         wfRepo,
		Generator:    &docgen.TemplateGenerator{Profiles: profileRepo},
		ATS:          docgen.KeywordATS{},
		Submitter:    &submit.DirectSubmitter{},
		Records:      records,
		StageTimeout: cfg.StageTimeout,
	}
	noteSvc := notifications.NewService(noteRepo, wfSvc)
	wfSvc.Notifier = noteSvc

	monSvc := &monitor.Service{
		Profiles:     profileRepo,
		Source:       monitor.NewStaticSource(),
		Sender:       noteSvc,
		ScanInterval: cfg.ScanInterval,
		Defaults: monitor.Preferences{
			MinMatchScore:           cfg.MinMatchScore,
			MaxNotificationsPerScan: cfg.MaxNotifications,
		},
	}
	monSvc.Start()

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})
	profiles.NewHandler(profileRepo).RegisterRoutes(api)
	workflow.NewHandler(wfSvc).RegisterRoutes(api)
	notifications.NewHandler(noteSvc).RegisterRoutes(api)
	monitor.NewHandler(monSvc).RegisterRoutes(api)

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
