package app

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/nekogravitycat/court-reservation/internal/admin"
	"github.com/nekogravitycat/court-reservation/internal/api"
	"github.com/nekogravitycat/court-reservation/internal/auth"
	"github.com/nekogravitycat/court-reservation/internal/booking"
	"github.com/nekogravitycat/court-reservation/internal/court"
	"github.com/nekogravitycat/court-reservation/internal/payment"
	"github.com/nekogravitycat/court-reservation/internal/pkg/storage"
	"github.com/nekogravitycat/court-reservation/internal/ratelimit"
	"github.com/nekogravitycat/court-reservation/internal/receipt"
	"github.com/nekogravitycat/court-reservation/internal/reference"
	"github.com/nekogravitycat/court-reservation/internal/user"
)

// Config holds the dependencies and settings required to start the application.
type Config struct {
	IsProduction bool
	ProdOrigins  string
	DBPool       *pgxpool.Pool
	Logger       *zap.Logger

	// TrustedProxies is passed to the router; see api.Config.
	TrustedProxies []string

	JWTSecret  string
	JWTTTL     time.Duration
	BcryptCost int

	EncryptionKey string
	HourlyRate    int
	// Limiter throttles booking creation. Required.
	Limiter   ratelimit.Limiter
	UploadDir string

	// Now overrides the booking clock. Nil means time.Now.
	Now func() time.Time
}

// Container holds the initialized components that are needed externally.
type Container struct {
	Router         *gin.Engine
	JWTManager     *auth.JWTManager
	PasswordHasher auth.PasswordHasher
	Codec          *reference.Codec
}

// NewContainer initializes all modules and returns the container.
func NewContainer(cfg Config) (*Container, error) {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.Limiter == nil {
		return nil, fmt.Errorf("booking rate limiter is required")
	}

	// Init Components
	passwordHasher := auth.NewBcryptPasswordHasherWithCost(cfg.BcryptCost)
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)

	codec, err := reference.NewCodec(cfg.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("init reference codec: %w", err)
	}

	store, err := storage.NewLocalStorage(cfg.UploadDir)
	if err != nil {
		return nil, fmt.Errorf("init upload storage: %w", err)
	}

	// User & Admin Modules
	userService := user.NewService(user.NewPgxRepository(cfg.DBPool), passwordHasher, log.Named("user"))
	adminService := admin.NewService(admin.NewPgxRepository(cfg.DBPool))

	// Court Module
	courtService := court.NewService(court.NewPgxRepository(cfg.DBPool))

	// Booking Module
	bookingService := booking.NewService(
		booking.NewPgxRepository(cfg.DBPool),
		courtService,
		cfg.Limiter,
		codec,
		booking.Config{HourlyRate: cfg.HourlyRate, Now: cfg.Now},
		log.Named("booking"),
	)

	// Payment Module
	paymentService := payment.NewService(payment.NewPgxRepository(cfg.DBPool), adminService, log.Named("payment"))

	// Receipt Module
	receiptService := receipt.NewService(bookingService, receipt.NewPgxRepository(cfg.DBPool), store, log.Named("receipt"))

	router, err := api.NewRouter(api.Config{
		IsProduction:   cfg.IsProduction,
		ProdOrigins:    cfg.ProdOrigins,
		TrustedProxies: cfg.TrustedProxies,
		Logger:         log.Named("http"),
		CourtService:   courtService,
		BookingService: bookingService,
		PaymentService: paymentService,
		ReceiptService: receiptService,
		UserService:    userService,
		AdminService:   adminService,
		JWTManager:     jwtManager,
	})
	if err != nil {
		return nil, err
	}

	return &Container{
		Router:         router,
		JWTManager:     jwtManager,
		PasswordHasher: passwordHasher,
		Codec:          codec,
	}, nil
}
