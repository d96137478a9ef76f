package api

import (
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"github.com/runshare/runshare-api/docs"
	v1 "github.com/runshare/runshare-api/internal/api/handler/v1"
	"github.com/runshare/runshare-api/internal/api/middleware"
	"github.com/runshare/runshare-api/internal/config"
	"github.com/runshare/runshare-api/internal/pkg/mailer"
	"github.com/runshare/runshare-api/internal/repository"
	"github.com/runshare/runshare-api/internal/repository/dao"
	"github.com/runshare/runshare-api/internal/service"
)

type Server struct {
	Config *config.AppConfig
	Router *gin.Engine
}

func NewServer(conf *config.AppConfig, db *gorm.DB) *Server {
	gin.SetMode(conf.Gin.Mode)
	engine := gin.New()

	s := &Server{
		Config: conf,
		Router: engine,
	}

	s.MountMiddlewares()

	authHandler := s.initAuthHandler(db)
	userHandler := s.initUserHandler(db)
	runHandler := s.initRunHandler(db)
	messageHandler := s.initMessageHandler(db)
	adminHandler := s.initAdminHandler(db)
	s.MountHandlers(authHandler, userHandler, runHandler, messageHandler, adminHandler)

	return s
}

func (s *Server) initAuthHandler(db *gorm.DB) *v1.AuthHandler {
	userDAO := dao.NewUserDAO(db)
	repo := repository.NewUserRepository(userDAO)
	m := mailer.NewSMTPMailer(mailer.SMTPConfig{
		Host:     s.Config.SMTP.Host,
		Port:     s.Config.SMTP.Port,
		Username: s.Config.SMTP.Username,
		Password: s.Config.SMTP.Password,
		From:     s.Config.SMTP.Sender,
	})
	svc := service.NewAuthService(repo, m, []byte(s.Config.API.JWTSigningKey), s.Config.API.FrontendBaseURL)
	handler := v1.NewAuthHandler(s.Config.API, svc)

	return handler
}

func (s *Server) initUserHandler(db *gorm.DB) *v1.UserHandler {
	userRepo := repository.NewUserRepository(dao.NewUserDAO(db))
	runRepo := repository.NewRunRepository(dao.NewRunDAO(db))
	ratingRepo := repository.NewRatingRepository(dao.NewRatingDAO(db))
	eligibility := service.NewEligibilityService(repository.NewParticipationRepository(dao.NewParticipationDAO(db)))
	svc := service.NewUserService(userRepo, runRepo, ratingRepo, eligibility)
	handler := v1.NewUserHandler(svc, s.Config.API.UploadDir)

	return handler
}

func (s *Server) initRunHandler(db *gorm.DB) *v1.RunHandler {
	runRepo := repository.NewRunRepository(dao.NewRunDAO(db))
	participationRepo := repository.NewParticipationRepository(dao.NewParticipationDAO(db))
	ratingRepo := repository.NewRatingRepository(dao.NewRatingDAO(db))
	svc := service.NewRunService(runRepo, participationRepo, ratingRepo)
	handler := v1.NewRunHandler(svc)

	return handler
}

func (s *Server) initMessageHandler(db *gorm.DB) *v1.MessageHandler {
	messageRepo := repository.NewMessageRepository(dao.NewMessageDAO(db))
	userRepo := repository.NewUserRepository(dao.NewUserDAO(db))
	eligibility := service.NewEligibilityService(repository.NewParticipationRepository(dao.NewParticipationDAO(db)))
	svc := service.NewMessageService(messageRepo, userRepo, eligibility)
	handler := v1.NewMessageHandler(svc)

	return handler
}

func (s *Server) initAdminHandler(db *gorm.DB) *v1.AdminHandler {
	userRepo := repository.NewUserRepository(dao.NewUserDAO(db))
	runRepo := repository.NewRunRepository(dao.NewRunDAO(db))
	participationRepo := repository.NewParticipationRepository(dao.NewParticipationDAO(db))
	ratingRepo := repository.NewRatingRepository(dao.NewRatingDAO(db))

	eligibility := service.NewEligibilityService(participationRepo)
	uSvc := service.NewUserService(userRepo, runRepo, ratingRepo, eligibility)
	rSvc := service.NewRunService(runRepo, participationRepo, ratingRepo)
	m := mailer.NewSMTPMailer(mailer.SMTPConfig{
		Host:     s.Config.SMTP.Host,
		Port:     s.Config.SMTP.Port,
		Username: s.Config.SMTP.Username,
		Password: s.Config.SMTP.Password,
		From:     s.Config.SMTP.Sender,
	})
	aSvc := service.NewAuthService(userRepo, m, []byte(s.Config.API.JWTSigningKey), s.Config.API.FrontendBaseURL)
	handler := v1.NewAdminHandler(uSvc, rSvc, aSvc)

	return handler
}

func (s *Server) MountMiddlewares() {
	// Logger and Recovery are needed unless we use gin.Default().
	s.Router.Use(gin.Logger())
	s.Router.Use(gin.Recovery())
	s.Router.Use(requestid.New())
	s.Router.Use(middleware.ConfigCORS(s.Config.API.AllowedCORSDomains))
}

func (s *Server) MountHandlers(authHandler *v1.AuthHandler, userHandler *v1.UserHandler, runHandler *v1.RunHandler, messageHandler *v1.MessageHandler, adminHandler *v1.AdminHandler) {
	const basePath = "/api/v1"

	authenticator := middleware.NewAuthenticator(s.Config.API.JWTSigningKey)
	authLimiter := middleware.NewRateLimiter(s.Config.API.AuthRatePerMinute, s.Config.API.AuthRateBurst)

	auth := s.Router.Group(basePath, authLimiter.Limit())
	{
		auth.POST("/auth/register", authHandler.HandleRegister)
		auth.POST("/auth/login", authHandler.HandleLogin)
		auth.POST("/auth/forgot-password", authHandler.HandleForgotPassword)
		auth.POST("/auth/reset-password", authHandler.HandleResetPassword)
	}

	// Listing endpoints work anonymously but show more to logged-in
	// callers.
	public := s.Router.Group(basePath, authenticator.OptionalJWT())
	{
		public.GET("/runs", runHandler.HandleListRuns)
		public.GET("/runs/:runID", runHandler.HandleGetRun)
	}

	authed := s.Router.Group(basePath, authenticator.VerifyJWT())
	{
		authed.GET("/auth/profile", authHandler.HandleGetOwnProfile)

		authed.GET("/users/:userID", userHandler.HandleGetUserProfile)
		authed.PUT("/users/profile", userHandler.HandleUpdateProfile)
		authed.POST("/users/profile/picture", userHandler.HandleUploadProfilePicture)
		authed.POST("/users/:userID/rate", userHandler.HandleRateUser)

		authed.POST("/runs", runHandler.HandleCreateRun)
		authed.PUT("/runs/:runID", runHandler.HandleUpdateRun)
		authed.DELETE("/runs/:runID", runHandler.HandleDeleteRun)
		authed.POST("/runs/:runID/join", runHandler.HandleJoinRun)
		authed.POST("/runs/:runID/leave", runHandler.HandleLeaveRun)
		authed.PUT("/runs/:runID/participants/:userID", runHandler.HandleSetParticipantStatus)
		authed.POST("/runs/:runID/rate", runHandler.HandleRateRun)

		authed.POST("/messages", messageHandler.HandleSendMessage)
		authed.GET("/messages/conversations", messageHandler.HandleListConversations)
		authed.GET("/messages/count", messageHandler.HandleCountReceived)
		authed.GET("/messages/:userID", messageHandler.HandleGetConversation)
	}

	admin := s.Router.Group(basePath+"/admin", authenticator.VerifyJWT(), middleware.RequireAdmin())
	{
		admin.GET("/users", adminHandler.HandleListUsers)
		admin.DELETE("/users/:userID", adminHandler.HandleDeleteUser)
		admin.PUT("/users/:userID/role", adminHandler.HandleUpdateRole)
		admin.GET("/runs", adminHandler.HandleListAllRuns)
		admin.DELETE("/runs/:runID", adminHandler.HandleAdminDeleteRun)
	}

	// Uploaded profile pictures are served straight from disk.
	s.Router.Static("/images/profiles", s.Config.API.UploadDir)

	s.Router.GET("/", v1.HandleHealthcheck)

	// Setup Swagger UI.
	docs.SwaggerInfo.Host = s.Config.API.BaseURL
	docs.SwaggerInfo.BasePath = basePath
	docs.SwaggerInfo.Title = "RunShare API"
	docs.SwaggerInfo.Description = "Social platform for organizing group runs."
	docs.SwaggerInfo.Version = "1.0"
	s.Router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))
}
