// Package httpserver manages server creation and api routing.
package httpserver

import (
	"database/sql"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/go-petr/lifemanager/internal/accountdelivery"
	"github.com/go-petr/lifemanager/internal/accountrepo"
	"github.com/go-petr/lifemanager/internal/accountservice"
	"github.com/go-petr/lifemanager/internal/entrydelivery"
	"github.com/go-petr/lifemanager/internal/entryrepo"
	"github.com/go-petr/lifemanager/internal/entryservice"
	"github.com/go-petr/lifemanager/internal/investmentdelivery"
	"github.com/go-petr/lifemanager/internal/investmentrepo"
	"github.com/go-petr/lifemanager/internal/investmentservice"
	"github.com/go-petr/lifemanager/internal/loginservice"
	"github.com/go-petr/lifemanager/internal/middleware"
	"github.com/go-petr/lifemanager/internal/otprepo"
	"github.com/go-petr/lifemanager/internal/pendingrepo"
	"github.com/go-petr/lifemanager/internal/recurringdelivery"
	"github.com/go-petr/lifemanager/internal/recurringrepo"
	"github.com/go-petr/lifemanager/internal/recurringservice"
	"github.com/go-petr/lifemanager/internal/sessiondelivery"
	"github.com/go-petr/lifemanager/internal/sessionrepo"
	"github.com/go-petr/lifemanager/internal/sessionservice"
	"github.com/go-petr/lifemanager/internal/transferdelivery"
	"github.com/go-petr/lifemanager/internal/transferrepo"
	"github.com/go-petr/lifemanager/internal/transferservice"
	"github.com/go-petr/lifemanager/internal/userdelivery"
	"github.com/go-petr/lifemanager/internal/userrepo"
	"github.com/go-petr/lifemanager/internal/userservice"
	"github.com/go-petr/lifemanager/pkg/configpkg"
	"github.com/go-petr/lifemanager/pkg/eventpkg"
	"github.com/go-petr/lifemanager/pkg/lockpkg"
	"github.com/go-petr/lifemanager/pkg/mailpkg"
	"github.com/go-petr/lifemanager/pkg/tokenpkg"
)

// Server holds db connection, handlers router and configuration.
type Server struct {
	DB     *sql.DB
	Engine *gin.Engine
	Config configpkg.Config
}

// ServeHTTP implements the http.Handler interface for the Server type.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Engine.ServeHTTP(w, r)
}

// Dependencies are the outside collaborators of the server.
type Dependencies struct {
	Redis     redis.UniversalClient
	Mailer    mailpkg.Sender
	Publisher eventpkg.Publisher
}

// RegisterValidators adds the custom binding rules used by request structs.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}

	if err := v.RegisterValidation("entrytype", entrydelivery.ValidEntryType); err != nil {
		return fmt.Errorf("cannot register entrytype validator: %w", err)
	}

	if err := v.RegisterValidation("frequency", recurringdelivery.ValidFrequency); err != nil {
		return fmt.Errorf("cannot register frequency validator: %w", err)
	}

	if err := v.RegisterValidation("investmenttype", investmentdelivery.ValidInvestmentType); err != nil {
		return fmt.Errorf("cannot register investmenttype validator: %w", err)
	}

	return nil
}

// NewRecurringService wires the recurring service for the api and the processing command.
func NewRecurringService(conn *sql.DB, rdb redis.UniversalClient) *recurringservice.Service {
	accountService := accountservice.New(accountrepo.NewRepoPGS(conn), entryrepo.NewRepoPGS(conn))

	return recurringservice.New(
		recurringrepo.NewRepoPGS(conn),
		accountService,
		lockpkg.New(rdb, lockpkg.DefaultOptions()),
	)
}

// New creates Server type with instantiated domains and routes.
func New(conn *sql.DB, logger zerolog.Logger, config configpkg.Config, deps Dependencies) (*Server, error) {
	userRepo := userrepo.NewRepoPGS(conn)
	accountRepo := accountrepo.NewRepoPGS(conn)
	entryRepo := entryrepo.NewRepoPGS(conn)
	transferRepo := transferrepo.NewRepoPGS(conn)
	sessionRepo := sessionrepo.NewRepoPGS(conn)
	otpRepo := otprepo.NewRepoPGS(conn)
	pendingRepo := pendingrepo.NewRepoRedis(deps.Redis)

	tokenMaker, err := tokenpkg.New(config.TokenType, config.TokenSymmetricKey)
	if err != nil {
		return nil, fmt.Errorf("cannot create token maker: %w", err)
	}

	publisher := deps.Publisher
	if publisher == nil {
		publisher = eventpkg.LogPublisher{}
	}

	userService := userservice.New(userRepo)
	accountService := accountservice.New(accountRepo, entryRepo)
	entryService := entryservice.New(entryRepo)
	transferService := transferservice.New(transferRepo, accountService, publisher)
	recurringService := NewRecurringService(conn, deps.Redis)
	investmentService := investmentservice.New(investmentrepo.NewRepoPGS(conn))

	sessionService, err := sessionservice.New(sessionRepo, config, tokenMaker)
	if err != nil {
		return nil, fmt.Errorf("cannot initialize session service: %w", err)
	}

	loginService := loginservice.New(userService, sessionService, otpRepo, pendingRepo, deps.Mailer, config.OTPDuration)

	userHandler := userdelivery.NewHandler(userService, loginService)
	sessionHandler := sessiondelivery.NewHandler(sessionService)
	accountHandler := accountdelivery.NewHandler(accountService)
	entryHandler := entrydelivery.NewHandler(entryService)
	transferHandler := transferdelivery.NewHandler(transferService)
	recurringHandler := recurringdelivery.NewHandler(recurringService)
	investmentHandler := investmentdelivery.NewHandler(investmentService)

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(middleware.RequestLogger(logger))

	engine.POST("/users", userHandler.Create)
	engine.POST("/users/login", userHandler.Login)
	engine.POST("/users/otp/verify", userHandler.VerifyOTP)
	engine.POST("/sessions", sessionHandler.RenewAccessToken)

	authRoutes := engine.Group("/").Use(middleware.AuthMiddleware(tokenMaker))

	authRoutes.GET("/users/me", userHandler.Me)
	authRoutes.PUT("/users/me", userHandler.UpdateMe)

	authRoutes.POST("/accounts", accountHandler.Create)
	authRoutes.GET("/accounts", accountHandler.List)
	authRoutes.GET("/accounts/:id", accountHandler.Get)
	authRoutes.DELETE("/accounts/:id", accountHandler.Delete)
	authRoutes.POST("/accounts/:id/deposit", accountHandler.Deposit)
	authRoutes.POST("/accounts/:id/withdraw", accountHandler.Withdraw)

	authRoutes.POST("/entries", entryHandler.Create)
	authRoutes.GET("/entries", entryHandler.List)
	authRoutes.GET("/entries/summary", entryHandler.Summary)
	authRoutes.GET("/entries/:id", entryHandler.Get)
	authRoutes.DELETE("/entries/:id", entryHandler.Delete)

	authRoutes.POST("/transfers", transferHandler.Create)
	authRoutes.GET("/transfers", transferHandler.List)
	authRoutes.GET("/transfers/:id", transferHandler.Get)
	authRoutes.DELETE("/transfers/:id", transferHandler.Delete)

	authRoutes.POST("/recurring", recurringHandler.Create)
	authRoutes.GET("/recurring", recurringHandler.List)

	authRoutes.POST("/investments", investmentHandler.Create)
	authRoutes.GET("/investments", investmentHandler.List)
	authRoutes.GET("/investments/:id", investmentHandler.Get)
	authRoutes.PATCH("/investments/:id", investmentHandler.UpdateCurrentPrice)
	authRoutes.DELETE("/investments/:id", investmentHandler.Delete)

	if err := RegisterValidators(); err != nil {
		return nil, err
	}

	server := &Server{
		DB:     conn,
		Engine: engine,
		Config: config,
	}

	return server, nil
}
