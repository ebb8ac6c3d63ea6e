package server

import (
	"backend-xclone/internal/auth"
	"backend-xclone/internal/config"
	"backend-xclone/internal/media"
	"backend-xclone/internal/notification"
	"backend-xclone/internal/post"
	"backend-xclone/internal/shared/apperr"
	"backend-xclone/internal/stream"
	"backend-xclone/internal/user"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

type Server struct {
	App    *fiber.App
	Cfg    config.Config
	DB     *pgxpool.Pool
	Redis  *redis.Client
	Stream *stream.Hub
}

func NewServer(cfg config.Config, db *pgxpool.Pool, redisClient *redis.Client) *Server {
	app := fiber.New(fiber.Config{ErrorHandler: apperr.ErrorHandler})
	app.Use(recover.New())
	app.Use(logger.New())

	s := &Server{
		App:    app,
		Cfg:    cfg,
		DB:     db,
		Redis:  redisClient,
		Stream: stream.NewHub(redisClient),
	}

	registerRoutes(s)
	return s
}

func registerRoutes(s *Server) {
	s.App.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	tokens := auth.NewTokenService(s.Cfg.JWTSecret, s.Cfg.SessionTTLDays)
	gate := auth.CookieAuth(tokens, s.DB)
	mediaStore := media.NewCloudinary(s.Cfg)

	auth.RegisterRoutes(s.App.Group("/auth"), auth.NewService(tokens, s.DB), gate)
	user.RegisterRoutes(s.App.Group("/users"), user.NewService(s.DB, mediaStore, s.Stream), gate)
	post.RegisterRoutes(s.App.Group("/posts"), post.NewService(s.DB, mediaStore, s.Stream), gate)
	notification.RegisterRoutes(s.App.Group("/notifications"), notification.NewService(s.DB), gate)
	stream.RegisterRoutes(s.App.Group("/stream"), s.Stream, gate)
}
