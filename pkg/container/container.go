package container

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"library-backend/internal/config"
	bookHandler "library-backend/internal/domains/book/handler"
	bookRepo "library-backend/internal/domains/book/repository"
	bookService "library-backend/internal/domains/book/service"
	circulationHandler "library-backend/internal/domains/circulation/handler"
	circulationRepo "library-backend/internal/domains/circulation/repository"
	circulationService "library-backend/internal/domains/circulation/service"
	memberHandler "library-backend/internal/domains/member/handler"
	memberRepo "library-backend/internal/domains/member/repository"
	memberService "library-backend/internal/domains/member/service"
	reportHandler "library-backend/internal/domains/report/handler"
	reportService "library-backend/internal/domains/report/service"
	infraCache "library-backend/internal/infrastructure/cache"
	"library-backend/internal/infrastructure/database"
	"library-backend/internal/infrastructure/email"
	"library-backend/pkg/cache"
	"library-backend/pkg/clock"
	"library-backend/pkg/jwt"
)

// Container is the root of the dependency graph. Initialization order is
// config, infrastructure, repositories, services, handlers.
type Container struct {
	Config     *config.Config
	DB         *database.PostgresDB
	Cache      cache.Cache
	JWTManager *jwt.Manager
	Clock      clock.Clock
	Email      email.EmailService

	BookRepo        bookRepo.RepositoryInterface
	MemberRepo      memberRepo.RepositoryInterface
	CirculationRepo circulationRepo.RepositoryInterface

	BookService        bookService.ServiceInterface
	MemberService      memberService.ServiceInterface
	CirculationService circulationService.ServiceInterface
	ReportService      reportService.ServiceInterface

	BookHandler        *bookHandler.Handler
	MemberHandler      *memberHandler.Handler
	CirculationHandler *circulationHandler.Handler
	ReportHandler      *reportHandler.Handler
}

// NewContainer builds the whole dependency graph.
func NewContainer(ctx context.Context) (*Container, error) {
	c := &Container{}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	c.Config = cfg
	log.Info().Str("environment", cfg.App.Environment).Msg("config loaded")

	dbConfig, err := config.LoadDatabaseConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load database config: %w", err)
	}
	c.DB = database.NewPostgresDB(dbConfig)
	if err := c.DB.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Info().Str("host", dbConfig.Host).Msg("database connected")

	redisCache := infraCache.NewRedisCache(cfg.Redis.Host, cfg.Redis.Password, cfg.Redis.DB)
	if err := redisCache.Ping(ctx); err != nil {
		// The cache is an optimization. The API stays up without it.
		log.Warn().Err(err).Msg("redis unreachable, running without cache")
		c.Cache = nil
	} else {
		c.Cache = redisCache
		log.Info().Str("host", cfg.Redis.Host).Msg("redis connected")
	}

	c.JWTManager = jwt.NewManager(cfg.JWT.Secret)
	c.Clock = clock.NewReal()
	c.Email = email.NewSMTPEmailService(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.From)

	c.BookRepo = bookRepo.NewRepository(c.DB.Pool)
	c.MemberRepo = memberRepo.NewRepository(c.DB.Pool)
	c.CirculationRepo = circulationRepo.NewRepository(c.DB.Pool)

	c.BookService = bookService.NewService(c.BookRepo, c.Cache, c.Clock)
	c.MemberService = memberService.NewService(c.MemberRepo, c.Clock)
	c.CirculationService = circulationService.NewService(c.CirculationRepo, c.Cache, c.Clock, circulationService.Config{
		LoanPeriodDays: cfg.Circulation.LoanPeriodDays,
		TxMaxRetries:   cfg.Circulation.TxMaxRetries,
	})
	c.ReportService = reportService.NewService(c.CirculationRepo, c.Clock)

	c.BookHandler = bookHandler.NewHandler(c.BookService)
	c.MemberHandler = memberHandler.NewHandler(c.MemberService)
	c.CirculationHandler = circulationHandler.NewHandler(c.CirculationService)
	c.ReportHandler = reportHandler.NewHandler(c.ReportService)

	log.Info().Msg("container initialized")
	return c, nil
}

// Cleanup releases infrastructure resources in reverse dependency order.
func (c *Container) Cleanup() {
	if closer, ok := c.Cache.(*infraCache.RedisCache); ok && closer != nil {
		if err := closer.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close redis connection")
		}
	}
	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close database pool")
		}
	}
}

// HealthCheck probes the infrastructure dependencies.
func (c *Container) HealthCheck(ctx context.Context) error {
	if err := c.DB.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database unhealthy: %w", err)
	}
	return nil
}
