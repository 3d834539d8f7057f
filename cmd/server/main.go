package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/vnkhanh/questionnaire-server/config"
	"github.com/vnkhanh/questionnaire-server/controllers"
	"github.com/vnkhanh/questionnaire-server/logger"
	"github.com/vnkhanh/questionnaire-server/middleware"
	"github.com/vnkhanh/questionnaire-server/repository"
	"github.com/vnkhanh/questionnaire-server/routes"
	"github.com/vnkhanh/questionnaire-server/services"
	"github.com/vnkhanh/questionnaire-server/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Init("info", "json")
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	logger.Init(cfg.Log.Level, cfg.Log.Format)

	app := fx.New(
		fx.NopLogger,
		fx.Supply(cfg),

		// Hạ tầng
		fx.Provide(
			NewDatabase,
			NewTokenIssuer,
			NewRateLimiters,
		),

		// Repositories
		fx.Provide(
			repository.NewUserRepository,
			repository.NewQuestionnaireRepository,
			repository.NewSubmissionRepository,
		),

		// Services
		fx.Provide(
			func(users repository.UserRepository, issuer *utils.TokenIssuer, cfg *config.Config) *services.AuthService {
				return services.NewAuthService(users, issuer, cfg.Auth.BcryptCost)
			},
			services.NewQuestionnaireService,
			services.NewSubmissionService,
			services.NewStatsService,
			services.NewExportService,
		),

		// Controllers
		fx.Provide(
			controllers.NewAuthController,
			controllers.NewQuestionnaireController,
			controllers.NewSubmissionController,
			controllers.NewStatsController,
			controllers.NewExportController,
			controllers.NewHealthController,
			NewGinEngine,
		),

		fx.Invoke(StartServer),
	)

	// Run chặn tới khi nhận SIGINT/SIGTERM rồi chạy các OnStop hook
	app.Run()
	log.Info().Msg("Server stopped")
}

// NewDatabase mở pool PostgreSQL và đóng nó khi ứng dụng dừng.
func NewDatabase(lc fx.Lifecycle, cfg *config.Config) (*gorm.DB, error) {
	db, err := config.OpenDatabase(cfg.Database)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("Closing database pool")
			return config.CloseDatabase(db)
		},
	})
	return db, nil
}

func NewTokenIssuer(cfg *config.Config) (*utils.TokenIssuer, error) {
	return utils.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
}

// RateLimiters: một limiter cho đăng ký/đăng nhập, một cho các thao tác ghi.
type RateLimiters struct {
	Auth  *middleware.IPRateLimiter
	Write *middleware.IPRateLimiter
}

func NewRateLimiters(lc fx.Lifecycle, cfg *config.Config) *RateLimiters {
	rl := &RateLimiters{
		Auth:  middleware.NewIPRateLimiter(cfg.RateLimit.AuthPerMinute, cfg.RateLimit.AuthBurst, cfg.RateLimit.TTL),
		Write: middleware.NewIPRateLimiter(cfg.RateLimit.WritePerMinute, cfg.RateLimit.WriteBurst, cfg.RateLimit.TTL),
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			rl.Auth.Stop()
			rl.Write.Stop()
			return nil
		},
	})
	return rl
}

type engineParams struct {
	fx.In

	Config         *config.Config
	Issuer         *utils.TokenIssuer
	Limiters       *RateLimiters
	Auth           *controllers.AuthController
	Questionnaires *controllers.QuestionnaireController
	Submissions    *controllers.SubmissionController
	Stats          *controllers.StatsController
	Export         *controllers.ExportController
	Health         *controllers.HealthController
}

func NewGinEngine(p engineParams) *gin.Engine {
	r := routes.NewEngine(routes.EngineConfig{
		Mode:           p.Config.Server.Mode,
		AllowedOrigins: p.Config.Server.AllowedOrigins,
		DefaultLocale:  p.Config.DefaultLocale,
	})
	routes.SetupRoutes(r, routes.Handlers{
		Issuer:         p.Issuer,
		AuthLimiter:    p.Limiters.Auth,
		WriteLimiter:   p.Limiters.Write,
		Auth:           p.Auth,
		Questionnaires: p.Questionnaires,
		Submissions:    p.Submissions,
		Stats:          p.Stats,
		Export:         p.Export,
		Health:         p.Health,
	})
	return r
}

// StartServer gắn HTTP server vào vòng đời fx, tắt êm khi dừng.
func StartServer(lc fx.Lifecycle, shutdowner fx.Shutdowner, cfg *config.Config, router *gin.Engine) {
	server := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       60 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			// Listen trước để lỗi cổng làm fail lúc start
			ln, err := net.Listen("tcp", server.Addr)
			if err != nil {
				return err
			}
			log.Info().Str("addr", server.Addr).Msg("Questionnaire API listening")
			go func() {
				if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error().Err(err).Msg("HTTP server failed")
					_ = shutdowner.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("Server shutting down...")
			return server.Shutdown(ctx)
		},
	})
}
