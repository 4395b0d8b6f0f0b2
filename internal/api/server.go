package api

import (
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"github.com/moitinho/rifa-api/docs"
	v1 "github.com/moitinho/rifa-api/internal/api/handler/v1"
	"github.com/moitinho/rifa-api/internal/api/middleware"
	"github.com/moitinho/rifa-api/internal/config"
	"github.com/moitinho/rifa-api/internal/gateway/abacatepay"
	"github.com/moitinho/rifa-api/internal/gateway/stripecard"
	"github.com/moitinho/rifa-api/internal/repository"
	"github.com/moitinho/rifa-api/internal/repository/dao"
	"github.com/moitinho/rifa-api/internal/service"
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
	raffleHandler := s.initRaffleHandler(db)
	paymentHandler := s.initPaymentHandler(db)
	mediaHandler := s.initMediaHandler(db)
	s.MountHandlers(authHandler, raffleHandler, paymentHandler, mediaHandler)

	return s
}

func (s *Server) initAuthHandler(db *gorm.DB) *v1.AuthHandler {
	userDAO := dao.NewUserDAO(db)
	repo := repository.NewUserRepository(userDAO)
	svc := service.NewAuthService(repo)
	handler := v1.NewAuthHandler(s.Config.API, svc)

	return handler
}

func (s *Server) initRaffleHandler(db *gorm.DB) *v1.RaffleHandler {
	repo := repository.NewRaffleRepository(dao.NewRaffleDAO(db))
	ticketRepo := repository.NewTicketRepository(dao.NewTicketDAO(db))
	mediaRepo := repository.NewMediaRepository(dao.NewMediaDAO(db))
	svc := service.NewRaffleService(repo, ticketRepo, mediaRepo, s.Config.API.PublicBaseURL)
	handler := v1.NewRaffleHandler(svc)

	return handler
}

func (s *Server) initPaymentHandler(db *gorm.DB) *v1.PaymentHandler {
	raffleRepo := repository.NewRaffleRepository(dao.NewRaffleDAO(db))
	ticketRepo := repository.NewTicketRepository(dao.NewTicketDAO(db))
	pix := abacatepay.NewClient(s.Config.AbacatePay.BaseURL, s.Config.AbacatePay.APIKey)

	// The card path stays disabled unless a Stripe key is configured.
	var card service.CardGateway
	if s.Config.Stripe != nil && s.Config.Stripe.SecretKey != "" {
		card = stripecard.NewClient(s.Config.Stripe.SecretKey)
	}

	svc := service.NewPaymentService(raffleRepo, ticketRepo, pix, card, s.Config.AbacatePay.WebhookSecret)
	handler := v1.NewPaymentHandler(svc)

	return handler
}

func (s *Server) initMediaHandler(db *gorm.DB) *v1.MediaHandler {
	raffleRepo := repository.NewRaffleRepository(dao.NewRaffleDAO(db))
	mediaRepo := repository.NewMediaRepository(dao.NewMediaDAO(db))
	svc := service.NewMediaService(raffleRepo, mediaRepo, s.Config.Uploads.Dir)
	handler := v1.NewMediaHandler(svc)

	return handler
}

func (s *Server) MountMiddlewares() {
	// Logger and Recovery are needed unless we use gin.Default().
	s.Router.Use(gin.Logger())
	s.Router.Use(gin.Recovery())
	s.Router.Use(requestid.New())
	s.Router.Use(middleware.ConfigCORS(s.Config.API.AllowedCORSDomains))
}

func (s *Server) MountHandlers(authHandler *v1.AuthHandler, raffleHandler *v1.RaffleHandler, paymentHandler *v1.PaymentHandler, mediaHandler *v1.MediaHandler) {
	const basePath = "/api/v1"

	authenticator := middleware.NewAuthenticator(s.Config.API.JWTSigningKey)

	auth := s.Router.Group(basePath)
	{
		auth.POST("/auth/register", authHandler.HandleRegister)
		auth.POST("/auth/login", authHandler.HandleLogin)
	}

	public := s.Router.Group(basePath)
	{
		public.GET("/raffles/public", raffleHandler.HandleListPublicRaffles)

		public.POST("/payments/pix", paymentHandler.HandleReservePix)
		public.POST("/payments/card", paymentHandler.HandleReserveCard)
		public.POST("/payments/webhook", paymentHandler.HandleWebhook)
		public.GET("/payments/status/:chargeID", paymentHandler.HandleCheckStatus)
		public.GET("/payments/ticket/:code", paymentHandler.HandleViewTicket)
		public.GET("/payments/receipt/:code", paymentHandler.HandleReceipt)
	}

	// Raffle detail is readable anonymously but carries the caller's
	// identity when a valid token is present.
	soft := s.Router.Group(basePath, authenticator.SoftAuth())
	{
		soft.GET("/raffles/:raffleID", raffleHandler.HandleGetRaffle)
	}

	raffles := s.Router.Group(basePath, authenticator.VerifyJWT())
	{
		raffles.POST("/raffles", raffleHandler.HandleCreateRaffle)
		raffles.GET("/raffles", raffleHandler.HandleListOwnedRaffles)
		raffles.PUT("/raffles/:raffleID", raffleHandler.HandleUpdateRaffle)
		raffles.DELETE("/raffles/:raffleID", raffleHandler.HandleDeleteRaffle)

		raffles.GET("/tickets/raffle/:raffleID", raffleHandler.HandleListTickets)

		raffles.POST("/media/raffle/:raffleID", mediaHandler.HandleUpload)
	}

	s.Router.Static("/uploads", s.Config.Uploads.Dir)

	s.Router.GET("/", v1.HandleHealthcheck)

	// Setup Swagger UI.
	docs.SwaggerInfo.Host = s.Config.API.BaseURL
	docs.SwaggerInfo.BasePath = basePath
	docs.SwaggerInfo.Title = "Rifa API"
	docs.SwaggerInfo.Description = "Raffle ticket sales with PIX and card payments."
	docs.SwaggerInfo.Version = "1.0"
	s.Router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))
}
