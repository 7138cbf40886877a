package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/Finanzas-Grupo-6/finanzas-backend/internal/config"
	"github.com/Finanzas-Grupo-6/finanzas-backend/internal/handler"
	"github.com/Finanzas-Grupo-6/finanzas-backend/internal/repository"
	"github.com/Finanzas-Grupo-6/finanzas-backend/internal/service"
)

func main() {
	logger := logrus.New()
	// Nivel de log (Debug para desarrollo, Info para producción)
	logger.SetLevel(logrus.DebugLevel)
	logger.SetFormatter(&logrus.JSONFormatter{})

	// Carga de la configuración de la aplicación
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("Error cargando la configuración: %v", err)
	}

	// Conexión a PostgreSQL
	db, err := sql.Open("postgres", fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName,
	))
	if err != nil {
		logger.Fatalf("Error conectando a la base de datos: %v", err)
	}
	defer db.Close()

	// Verificación de la conexión a la BD
	if err := db.Ping(); err != nil {
		logger.Fatalf("Error verificando la conexión a la BD: %v", err)
	}

	// Inicialización de repositorios
	logger.Info("Inicializando repositorios...")
	userRepo := repository.NewUserRepository(db, logger)
	portfolioRepo := repository.NewPortfolioRepository(db, logger)
	invoiceRepo := repository.NewInvoiceRepository(db, logger)
	emailSender := service.NewEmailSender(logger)

	// Inicialización de servicios
	logger.Info("Inicializando servicios...")
	authService := service.NewAuthService(userRepo, cfg.JWTSecret, cfg.TokenExpiry, logger)
	discountService := service.NewDiscountService(
		userRepo,
		portfolioRepo,
		invoiceRepo,
		emailSender,
		cfg.AtomicDisbursement,
		logger,
	)
	bcrpClient := service.NewBCRPClient(logger)
	portfolioService := service.NewPortfolioService(
		portfolioRepo,
		invoiceRepo,
		discountService,
		bcrpClient,
		cfg.DefaultRateFromBCRP,
		logger,
	)
	invoiceService := service.NewInvoiceService(invoiceRepo, portfolioRepo, logger)
	analyticService := service.NewAnalyticService(invoiceRepo, logger)

	// Inicialización de los handlers HTTP
	logger.Info("Inicializando handlers del API...")
	authHandler := handler.NewAuthHandler(authService, logger)
	portfolioHandler := handler.NewPortfolioHandler(
		portfolioService,
		discountService,
		analyticService,
		logger,
	)
	invoiceHandler := handler.NewInvoiceHandler(invoiceService, analyticService, logger)

	// Configuración del enrutador
	router := mux.NewRouter()

	// 1. Rutas públicas de autenticación
	publicRouter := router.PathPrefix("/auth").Subrouter()
	authHandler.RegisterRoutes(publicRouter) // Registro de /signup y /signin

	// 2. Rutas protegidas del API (requieren token JWT)
	apiRouter := router.PathPrefix("/api").Subrouter()
	apiRouter.Use(handler.AuthMiddleware(authService, logger))

	// Rutas de carteras
	portfolioRouter := apiRouter.PathPrefix("/portfolios").Subrouter()
	portfolioHandler.RegisterRoutes(portfolioRouter)

	// Rutas de facturas
	invoiceRouter := apiRouter.PathPrefix("/invoices").Subrouter()
	invoiceHandler.RegisterRoutes(invoiceRouter)

	// Planificador para refrescar las instantáneas de TCEA de las carteras activas
	logger.Info("Configurando el planificador de instantáneas de TCEA...")
	c := cron.New()
	_, err = c.AddFunc("0 3 * * *", func() {
		logger.Info("Inicio del refresco de instantáneas de TCEA")
		if err := portfolioService.RefreshEffectiveCostRates(context.Background()); err != nil {
			logger.WithError(err).Error("Error refrescando las instantáneas de TCEA")
		} else {
			logger.Info("Refresco de instantáneas de TCEA completado")
		}
	})
	if err != nil {
		logger.Fatalf("Error configurando el planificador: %v", err)
	}
	c.Start()

	// Configuración y arranque del servidor HTTP
	server := &http.Server{
		Addr:    ":8080",
		Handler: router,
	}

	go func() {
		logger.Info("Servidor escuchando en el puerto :8080")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Error del servidor: %v", err)
		}
	}()

	// Espera de señales para el apagado ordenado
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Apagando el servidor...")
	if err := server.Shutdown(context.Background()); err != nil {
		logger.Errorf("Error durante el apagado del servidor: %v", err)
	}
	logger.Info("Servidor detenido con éxito")
}
