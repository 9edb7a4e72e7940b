package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nekogravitycat/court-reservation/internal/admin"
	"github.com/nekogravitycat/court-reservation/internal/auth"
	"github.com/nekogravitycat/court-reservation/internal/booking"
	bookingHttp "github.com/nekogravitycat/court-reservation/internal/booking/http"
	"github.com/nekogravitycat/court-reservation/internal/court"
	courtHttp "github.com/nekogravitycat/court-reservation/internal/court/http"
	"github.com/nekogravitycat/court-reservation/internal/payment"
	paymentHttp "github.com/nekogravitycat/court-reservation/internal/payment/http"
	"github.com/nekogravitycat/court-reservation/internal/pkg/logger"
	"github.com/nekogravitycat/court-reservation/internal/receipt"
	receiptHttp "github.com/nekogravitycat/court-reservation/internal/receipt/http"
	"github.com/nekogravitycat/court-reservation/internal/user"
	userHttp "github.com/nekogravitycat/court-reservation/internal/user/http"
)

// devOrigins are allowed by CORS outside production.
var devOrigins = []string{
	"http://localhost:3000", // Next.js frontend
	"http://localhost:8081", // Swagger
}

// Config carries everything the router needs.
type Config struct {
	IsProduction bool
	ProdOrigins  string
	// TrustedProxies lists the proxy addresses or CIDRs whose forwarding
	// headers name the client IP. Empty means the socket peer is the client.
	TrustedProxies []string
	Logger         *zap.Logger

	CourtService   court.Service
	BookingService booking.Service
	PaymentService payment.Service
	ReceiptService receipt.Service
	UserService    user.Service
	AdminService   admin.Service
	JWTManager     *auth.JWTManager
}

// NewRouter initializes the HTTP router engine.
// It is responsible for assembling middleware (CORS, Logger, Auth) and registering routes for various modules.
func NewRouter(cfg Config) (*gin.Engine, error) {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	r := gin.New()

	// Client IPs key the rate limits, so forwarding headers are only read
	// from configured proxies.
	if err := r.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, fmt.Errorf("invalid trusted proxies: %w", err)
	}

	// Request logging goes through zap; Recovery turns panics into 500s.
	r.Use(logger.Middleware(cfg.Logger), gin.Recovery())

	origins := devOrigins
	if cfg.IsProduction {
		origins = splitOrigins(cfg.ProdOrigins)
	}

	// Configure CORS (Cross-Origin Resource Sharing).
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = origins
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	corsConfig.ExposeHeaders = []string{"Retry-After"}
	corsConfig.MaxAge = 12 * time.Hour
	if len(origins) > 0 {
		r.Use(cors.New(corsConfig))
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authMiddleware := auth.AuthRequired(cfg.JWTManager)
	adminMiddleware := RequireAdmin(cfg.AdminService)
	loginMiddleware := Throttle(loginInterval, loginBurst)

	userHandler := userHttp.NewHandler(cfg.UserService, cfg.AdminService, cfg.JWTManager)
	courtHandler := courtHttp.NewHandler(cfg.CourtService)
	bookingHandler := bookingHttp.NewHandler(cfg.BookingService)
	paymentHandler := paymentHttp.NewHandler(cfg.PaymentService)
	receiptHandler := receiptHttp.NewHandler(cfg.ReceiptService)

	// Register API routes under /v1
	v1 := r.Group("/v1")
	if cfg.IsProduction {
		v1.Use(SameOrigin(origins))
	}
	{
		courtHttp.RegisterRoutes(v1, courtHandler)
		bookingHttp.RegisterRoutes(v1, bookingHandler)
		receiptHttp.RegisterRoutes(v1, receiptHandler)
		userHttp.RegisterRoutes(v1, userHandler, authMiddleware, loginMiddleware)
	}

	adminGroup := v1.Group("/admin", authMiddleware, adminMiddleware)
	{
		bookingHttp.RegisterAdminRoutes(adminGroup, bookingHandler)
		paymentHttp.RegisterAdminRoutes(adminGroup, paymentHandler)
		receiptHttp.RegisterAdminRoutes(adminGroup, receiptHandler)
	}

	return r, nil
}
