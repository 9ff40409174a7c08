package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/carhire/internal/container"
	"github.com/joshua-takyi/carhire/internal/handlers"
	"github.com/joshua-takyi/carhire/internal/middleware"
	"github.com/joshua-takyi/carhire/internal/models"
)

// SetupRoutes configures all routes with the dependency container
func SetupRoutes(container *container.Container) *gin.Engine {
	if container.Config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	secure := container.Config.IsProduction()

	r := gin.New()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     container.Config.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(container.Logger))
	r.Use(middleware.ErrorHandler(container.Logger))
	r.Use(gin.Recovery())

	// API version 1
	v1 := r.Group("/api/v1")
	{
		v1.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"status":  "OK",
				"service": "carhire-api",
			})
		})

		auth := v1.Group("/auth")
		auth.POST("/register", handlers.Register(container.UserService, secure))
		auth.POST("/login", handlers.Login(container.UserService, secure))
		auth.POST("/admin/login", handlers.AdminLogin(container.UserService, secure))
		auth.POST("/logout", handlers.Logout(secure))

		v1.GET("/cars", handlers.ListCars(container.CarService))
		v1.GET("/cars/:id", handlers.GetCar(container.CarService))
		v1.GET("/cars/:id/reviews", handlers.ListCarReviews(container.ReviewService))
	}

	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware(container.Tokens, container.Logger))

	protected.GET("/profile", handlers.Profile(container.UserService))

	protected.POST("/cars/:id/reviews", handlers.CreateReview(container.ReviewService))
	protected.DELETE("/reviews/:id", handlers.DeleteReview(container.ReviewService))

	favouriteRoutes := protected.Group("/favourites")
	{
		favouriteRoutes.GET("", handlers.ListFavourites(container.FavouriteService))
		favouriteRoutes.PUT("/:carId", handlers.AddFavourite(container.FavouriteService))
		favouriteRoutes.DELETE("/:carId", handlers.RemoveFavourite(container.FavouriteService))
	}

	bookingRoutes := protected.Group("/bookings")
	{
		bookingRoutes.POST("", handlers.CreateBooking(container.BookingService))
		bookingRoutes.GET("", handlers.ListMyBookings(container.BookingService))
		bookingRoutes.GET("/:id", handlers.GetBooking(container.BookingService))
		bookingRoutes.PUT("/:id", handlers.UpdateBooking(container.BookingService))
		bookingRoutes.DELETE("/:id", handlers.CancelBooking(container.BookingService))
	}

	admin := protected.Group("/admin")
	admin.Use(middleware.RequireRoles(models.RoleAdmin, models.RoleStaff))
	{
		admin.GET("/cars", handlers.AdminListCars(container.CarService))
		admin.POST("/cars", handlers.CreateCar(container.CarService))
		admin.GET("/cars/:id", handlers.GetCar(container.CarService))
		admin.PUT("/cars/:id", handlers.UpdateCar(container.CarService))
		admin.DELETE("/cars/:id", handlers.DeleteCar(container.CarService))

		admin.GET("/agencies", handlers.ListAgencies(container.AgencyService))
		admin.POST("/agencies", middleware.RequireRoles(models.RoleAdmin), handlers.CreateAgency(container.AgencyService))

		admin.GET("/users", handlers.AdminListUsers(container.UserService))
		admin.POST("/users", middleware.RequireRoles(models.RoleAdmin), handlers.AdminCreateUser(container.UserService))

		admin.GET("/bookings", handlers.AdminListBookings(container.BookingService))
		admin.PUT("/bookings/:id/status", handlers.AdminSetBookingStatus(container.BookingService))
	}

	return r
}
