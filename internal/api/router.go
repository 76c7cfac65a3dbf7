package api

import (
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/hotel-booking-backend/internal/auth"
	"github.com/nekogravitycat/hotel-booking-backend/internal/booking"
	bookingHttp "github.com/nekogravitycat/hotel-booking-backend/internal/booking/http"
	"github.com/nekogravitycat/hotel-booking-backend/internal/hotel"
	hotelHttp "github.com/nekogravitycat/hotel-booking-backend/internal/hotel/http"
	"github.com/nekogravitycat/hotel-booking-backend/internal/inventory"
	inventoryHttp "github.com/nekogravitycat/hotel-booking-backend/internal/inventory/http"
	"github.com/nekogravitycat/hotel-booking-backend/internal/payment"
	"github.com/nekogravitycat/hotel-booking-backend/internal/room"
	roomHttp "github.com/nekogravitycat/hotel-booking-backend/internal/room/http"
	"github.com/nekogravitycat/hotel-booking-backend/internal/settlement"
	settlementHttp "github.com/nekogravitycat/hotel-booking-backend/internal/settlement/http"
	"github.com/nekogravitycat/hotel-booking-backend/internal/user"
	userHttp "github.com/nekogravitycat/hotel-booking-backend/internal/user/http"
)

// Config carries everything the router needs to assemble middleware and
// module routes.
type Config struct {
	IsProduction bool
	ProdOrigins  string // comma-separated allowed origins in production

	UserService       user.Service
	HotelService      hotel.Service
	InventoryService  inventory.Service
	RoomService       room.Service
	BookingService    booking.Service
	SettlementService settlement.Service
	PaymentGateway    payment.Gateway
	JWTManager        *auth.JWTManager
}

// NewRouter assembles global middleware (logging, recovery, CORS) and
// registers every module's routes under /v1.
func NewRouter(cfg Config) *gin.Engine {
	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	corsConfig := cors.DefaultConfig()
	if cfg.IsProduction {
		corsConfig.AllowOrigins = strings.Split(cfg.ProdOrigins, ",")
	} else {
		corsConfig.AllowOrigins = []string{
			"http://localhost:3000",
			"http://localhost:8081",
		}
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "Stripe-Signature"}
	r.Use(cors.New(corsConfig))

	authMiddleware := auth.AuthRequired(cfg.JWTManager)
	adminMiddleware := RequireAdmin(cfg.UserService)

	userHandler := userHttp.NewHandler(cfg.UserService, cfg.JWTManager)
	hotelHandler := hotelHttp.NewHandler(cfg.HotelService)
	inventoryHandler := inventoryHttp.NewHandler(cfg.InventoryService)
	roomHandler := roomHttp.NewHandler(cfg.RoomService)
	bookingHandler := bookingHttp.NewHandler(cfg.BookingService)
	settlementHandler := settlementHttp.NewHandler(cfg.SettlementService, cfg.PaymentGateway)

	v1 := r.Group("/v1")
	{
		userHttp.RegisterRoutes(v1, userHandler, authMiddleware)
		hotelHttp.RegisterRoutes(v1, hotelHandler, authMiddleware, adminMiddleware)
		inventoryHttp.RegisterRoutes(v1, inventoryHandler, authMiddleware, adminMiddleware)
		roomHttp.RegisterRoutes(v1, roomHandler, authMiddleware, adminMiddleware)
		bookingHttp.RegisterRoutes(v1, bookingHandler, authMiddleware)
		settlementHttp.RegisterRoutes(v1, settlementHandler)
	}

	return r
}
