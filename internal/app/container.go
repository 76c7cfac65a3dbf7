package app

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nekogravitycat/hotel-booking-backend/internal/api"
	"github.com/nekogravitycat/hotel-booking-backend/internal/auth"
	"github.com/nekogravitycat/hotel-booking-backend/internal/booking"
	"github.com/nekogravitycat/hotel-booking-backend/internal/hotel"
	"github.com/nekogravitycat/hotel-booking-backend/internal/inventory"
	"github.com/nekogravitycat/hotel-booking-backend/internal/notification"
	"github.com/nekogravitycat/hotel-booking-backend/internal/payment"
	"github.com/nekogravitycat/hotel-booking-backend/internal/room"
	"github.com/nekogravitycat/hotel-booking-backend/internal/settlement"
	"github.com/nekogravitycat/hotel-booking-backend/internal/user"
)

// Config holds the dependencies and settings required to start the application.
type Config struct {
	IsProduction bool
	ProdOrigins  string
	DBPool       *pgxpool.Pool
	JWTSecret    string
	JWTTTL       time.Duration
	BcryptCost   int
	Gateway      payment.Gateway
	Notifier     notification.Notifier
}

// Container holds the initialized components that are needed externally.
type Container struct {
	Router         *gin.Engine
	JWTManager     *auth.JWTManager
	BookingService booking.Service
}

// NewContainer initializes all modules and returns the container.
func NewContainer(cfg Config) *Container {
	passwordHasher := auth.NewBcryptPasswordHasherWithCost(cfg.BcryptCost)
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)

	// User Module
	userRepo := user.NewPgxRepository(cfg.DBPool)
	userService := user.NewService(userRepo, passwordHasher)

	// Hotel Module
	hotelRepo := hotel.NewPgxRepository(cfg.DBPool)
	hotelService := hotel.NewService(hotelRepo)

	// Inventory Module
	inventoryRepo := inventory.NewPgxRepository(cfg.DBPool)
	inventoryService := inventory.NewService(inventoryRepo, hotelService)

	// Room Module
	roomRepo := room.NewPgxRepository(cfg.DBPool)
	roomService := room.NewService(roomRepo, hotelService, inventoryService)

	// Payment Module
	paymentRepo := payment.NewPgxRepository(cfg.DBPool)

	// Booking Module
	bookingRepo := booking.NewPgxRepository(cfg.DBPool)
	bookingService := booking.NewService(bookingRepo, paymentRepo, roomService, hotelService, inventoryService, cfg.Gateway)

	// Settlement Module
	settlementRepo := settlement.NewPgxRepository(cfg.DBPool)
	settlementService := settlement.NewService(settlementRepo, cfg.Notifier)

	router := api.NewRouter(api.Config{
		IsProduction:      cfg.IsProduction,
		ProdOrigins:       cfg.ProdOrigins,
		UserService:       userService,
		HotelService:      hotelService,
		InventoryService:  inventoryService,
		RoomService:       roomService,
		BookingService:    bookingService,
		SettlementService: settlementService,
		PaymentGateway:    cfg.Gateway,
		JWTManager:        jwtManager,
	})

	return &Container{
		Router:         router,
		JWTManager:     jwtManager,
		BookingService: bookingService,
	}
}
