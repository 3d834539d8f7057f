package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/questionnaire-server/controllers"
	"github.com/vnkhanh/questionnaire-server/metrics"
	"github.com/vnkhanh/questionnaire-server/middleware"
	"github.com/vnkhanh/questionnaire-server/utils"
)

type EngineConfig struct {
	Mode           string
	AllowedOrigins []string
	DefaultLocale  string
}

// Handlers gom mọi controller, middleware cần cho bảng route.
type Handlers struct {
	Issuer         *utils.TokenIssuer
	AuthLimiter    *middleware.IPRateLimiter
	WriteLimiter   *middleware.IPRateLimiter
	Auth           *controllers.AuthController
	Questionnaires *controllers.QuestionnaireController
	Submissions    *controllers.SubmissionController
	Stats          *controllers.StatsController
	Export         *controllers.ExportController
	Health         *controllers.HealthController
}

// NewEngine tạo gin engine với middleware chung; route được gắn sau bằng SetupRoutes.
func NewEngine(cfg EngineConfig) *gin.Engine {
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}

	r := gin.New()
	if err := r.SetTrustedProxies(nil); err != nil {
		panic(err)
	}

	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.Metrics())
	r.Use(cors.New(corsConfig(cfg.AllowedOrigins)))
	r.Use(middleware.Locale(cfg.DefaultLocale))
	return r
}

func corsConfig(origins []string) cors.Config {
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowed[o] = true
	}

	return cors.Config{
		AllowOriginFunc: func(origin string) bool {
			return allowed["*"] || allowed[origin]
		},
		AllowMethods:  []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", "Accept-Language", middleware.HeaderRequestID},
		ExposeHeaders: []string{"Content-Length", "Content-Disposition", middleware.HeaderRequestID},
		MaxAge:        12 * time.Hour,
	}
}

func SetupRoutes(r *gin.Engine, h Handlers) {
	r.GET("/health", h.Health.Check)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	auth := middleware.AuthJWT(h.Issuer)
	authLimit := middleware.RateLimitByIP(h.AuthLimiter)
	writeLimit := middleware.RateLimitByIP(h.WriteLimiter)

	api := r.Group("/api")
	{
		api.POST("/register", authLimit, h.Auth.Register)
		api.POST("/login", authLimit, h.Auth.Login)

		// Link chia sẻ: xem khảo sát không cần đăng nhập
		api.GET("/questionnaires/:id", h.Questionnaires.Get)

		protected := api.Group("")
		protected.Use(auth)
		{
			protected.GET("/user", h.Auth.Me)
			protected.GET("/user/questionnaires", h.Submissions.ListAnswered)

			protected.POST("/questionnaires", writeLimit, h.Questionnaires.Create)
			protected.GET("/questionnaires", h.Questionnaires.ListMine)
			protected.DELETE("/questionnaires/:id", h.Questionnaires.Delete)

			protected.POST("/questionnaires/:id/submit", writeLimit, h.Submissions.Submit)
			protected.GET("/questionnaires/:id/answers", h.Submissions.ListAnswers)
			protected.GET("/questionnaires/:id/stats", h.Stats.Stats)
			protected.GET("/questionnaires/:id/export", h.Export.Export)
		}
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Not Found"})
	})
}
