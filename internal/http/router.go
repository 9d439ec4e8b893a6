package http

import (
	"context"
	"log/slog"
	"time"

	"github.com/campushub/registrar/internal/auth"
	"github.com/campushub/registrar/internal/cache"
	"github.com/campushub/registrar/internal/config"
	"github.com/campushub/registrar/internal/domain/user"
	"github.com/campushub/registrar/internal/http/handlers"
	"github.com/campushub/registrar/internal/http/middlewares"
	"github.com/campushub/registrar/internal/observability"
	"github.com/campushub/registrar/internal/repo/postgres"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// NewRouter wires repositories, middleware and handlers. rdb may be
// nil, in which case the course catalog cache stays in-process.
func NewRouter(log *slog.Logger, pool *pgxpool.Pool, rdb *redis.Client, cfg config.Config) *gin.Engine {
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// metrics registry
	promRegistry := prometheus.NewRegistry()
	prom := observability.NewProm(promRegistry)

	// middleware
	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(log))
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(cfg.AllowedOrigins))
	r.Use(middlewares.RequireJSON())
	r.Use(middlewares.MaxBodyBytes(1 << 20))
	r.Use(prom.GinHandleMiddleware())

	if cfg.OTLPEndpoint != "" {
		r.Use(otelgin.Middleware("registrar"))
	}

	// health
	ping := func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()

		if pool != nil {
			if err := pool.Ping(ctx); err != nil {
				return err
			}
		}

		if rdb != nil {
			return rdb.Ping(ctx).Err()
		}

		return nil
	}

	h := handlers.NewHealthHandler(ping)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(promRegistry, promhttp.HandlerOpts{})))

	// repositories
	usersRepo := postgres.NewUsersRepo(pool, prom)
	coursesRepo := postgres.NewCoursesRepo(pool, prom)
	enrollmentsRepo := postgres.NewEnrollmentsRepo(pool, prom)

	// course catalog cache: shared when redis is configured
	var catalog cache.CourseCatalog
	if rdb != nil {
		catalog = cache.NewRedisCatalog(rdb, 30*time.Second)
	} else {
		catalog = cache.NewMemoryCatalog(30 * time.Second)
	}

	// auth plumbing
	jwtManager := auth.NewManager(cfg.JWTSecret, cfg.AccessTTL())
	authMw := middlewares.NewAuthMiddleware(jwtManager, usersRepo)

	// handlers
	authHandler := handlers.NewAuthHandler(usersRepo, jwtManager)
	usersHandler := handlers.NewUsersHandler(usersRepo)
	coursesHandler := handlers.NewCoursesHandler(coursesRepo, catalog)
	enrollmentsHandler := handlers.NewEnrollmentsHandler(enrollmentsRepo, prom)

	// credential endpoints are rate limited by client IP
	loginLimiter := middlewares.NewRateLimiter(10, time.Minute)

	authGroup := r.Group("/auth")
	{
		authGroup.POST("/register", loginLimiter.RateLimiterMiddleware(middlewares.KeyByIP), authHandler.Register)
		authGroup.POST("/login", loginLimiter.RateLimiterMiddleware(middlewares.KeyByIP), authHandler.Login)
		authGroup.GET("/profile", authMw.RequireAuth(), authHandler.Profile)
	}

	usersGroup := r.Group("/users", authMw.RequireAuth())
	{
		usersGroup.GET("", authMw.RequireRole(user.RoleAdmin), usersHandler.ListUsers)
		usersGroup.GET("/:id", usersHandler.GetUser)
		usersGroup.PUT("/:id", usersHandler.UpdateUser)
		usersGroup.DELETE("/:id", authMw.RequireRole(user.RoleAdmin), usersHandler.DeleteUser)
	}

	coursesGroup := r.Group("/courses", authMw.RequireAuth())
	{
		coursesGroup.POST("", authMw.RequireRole(user.RoleAdmin), coursesHandler.CreateCourse)
		coursesGroup.GET("", coursesHandler.ListCourses)
		coursesGroup.GET("/:id", coursesHandler.GetCourse)
		coursesGroup.PUT("/:id", authMw.RequireRole(user.RoleAdmin), coursesHandler.UpdateCourse)
		coursesGroup.DELETE("/:id", authMw.RequireRole(user.RoleAdmin), coursesHandler.DeleteCourse)
	}

	enrollGroup := r.Group("/student-courses", authMw.RequireAuth())
	{
		enrollGroup.POST("/register", enrollmentsHandler.Register)
		enrollGroup.DELETE("/unregister", enrollmentsHandler.Unregister)
		// gin requires one param name per segment position, so both
		// routes share :id
		enrollGroup.GET("/:id/registered-courses", enrollmentsHandler.RegisteredCourses)
		enrollGroup.GET("/:id/registered-students", authMw.RequireRole(user.RoleAdmin), enrollmentsHandler.RegisteredStudents)
	}

	return r
}
