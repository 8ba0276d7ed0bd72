package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"facility-booking-backend/config"
	"facility-booking-backend/controllers"
	"facility-booking-backend/logger"
	"facility-booking-backend/metrics"
	"facility-booking-backend/middleware"
	"facility-booking-backend/validations"
)

// SetupRouter wires the controllers onto the /api routes.
func SetupRouter(
	cfg config.Config,
	log logger.Logger,
	m *metrics.Metrics,
	bc *controllers.BookingController,
	pc *controllers.MemberProductController,
	fc *controllers.FacilityController,
) (*gin.Engine, error) {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := validations.Register(v); err != nil {
			return nil, err
		}
	}

	r := gin.New()
	r.Use(gin.Recovery(), middleware.Logger(log, m))

	origins := cfg.CORSOriginList()
	allowCredentials := true
	for _, origin := range origins {
		if origin == "*" {
			allowCredentials = false
			break
		}
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: allowCredentials,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	api.Use(middleware.JWTAuth(cfg.JWTSecret))
	{
		bookings := api.Group("/bookings")
		{
			bookings.GET("", bc.GetBookings)
			bookings.POST("", bc.CreateBooking)

			// static paths before /:id
			bookings.POST("/bulk-confirm", middleware.RequireRole(cfg.BulkActionRoles...), bc.BulkConfirm)
			bookings.POST("/reorder", bc.Reorder)

			bookings.GET("/:id", bc.GetBooking)
			bookings.PUT("/:id", bc.UpdateBooking)
			bookings.DELETE("/:id", bc.DeleteBooking)
			bookings.POST("/:id/confirm", bc.ConfirmBooking)
			bookings.POST("/:id/complete", bc.CompleteBooking)
			bookings.POST("/:id/cancel", bc.CancelBooking)
			bookings.POST("/:id/copy", bc.CopyBooking)
			bookings.POST("/:id/repeat", bc.RepeatBooking)
		}

		passes := api.Group("/member-products")
		{
			passes.GET("", pc.GetMemberProducts)
			passes.GET("/:id", pc.GetMemberProduct)
			passes.PUT("/:id/extend", pc.ExtendMemberProduct)
		}

		facilities := api.Group("/facilities")
		{
			facilities.GET("", fc.GetFacilities)
			facilities.GET("/:id", fc.GetFacility)
		}

		api.GET("/branches", fc.GetBranches)
	}

	return r, nil
}
