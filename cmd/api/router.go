package main

import (
	"github.com/gin-gonic/gin"

	"library-backend/internal/shared/middleware"
	"library-backend/pkg/container"
)

func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()

	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.CORS(),
	)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthCheckHandler(c))

		setupBookRoutes(v1, c)
		setupMemberRoutes(v1, c)
		setupLoanRoutes(v1, c)
		setupReservationRoutes(v1, c)
		setupReportRoutes(v1, c)
	}

	return router
}

func setupBookRoutes(v1 *gin.RouterGroup, c *container.Container) {
	books := v1.Group("/books")
	books.Use(middleware.Auth(c.JWTManager))
	{
		books.POST("", middleware.RequireStaff(), c.BookHandler.CreateBook)
		books.GET("", c.BookHandler.ListBooks)
		books.GET("/:id", c.BookHandler.GetBookByID)
		books.PUT("/:id", middleware.RequireStaff(), c.BookHandler.UpdateBook)
		books.DELETE("/:id", middleware.RequireStaff(), c.BookHandler.DeleteBook)
	}
}

func setupMemberRoutes(v1 *gin.RouterGroup, c *container.Container) {
	members := v1.Group("/members")
	members.Use(middleware.Auth(c.JWTManager))
	{
		members.POST("", middleware.RequireStaff(), c.MemberHandler.CreateMember)
		members.GET("", c.MemberHandler.ListMembers)
		members.GET("/:id", c.MemberHandler.GetMemberByID)
		members.PUT("/:id", middleware.RequireStaff(), c.MemberHandler.UpdateMember)
		members.DELETE("/:id", middleware.RequireStaff(), c.MemberHandler.DeleteMember)
	}
}

func setupLoanRoutes(v1 *gin.RouterGroup, c *container.Container) {
	loans := v1.Group("/loans")
	loans.Use(middleware.Auth(c.JWTManager))
	{
		loans.POST("", middleware.RequireStaff(), c.CirculationHandler.CreateLoan)
		loans.GET("", c.CirculationHandler.ListLoans)
		loans.GET("/:id", c.CirculationHandler.GetLoanByID)
		loans.POST("/:id/return", middleware.RequireStaff(), c.CirculationHandler.ReturnLoan)
	}
}

func setupReservationRoutes(v1 *gin.RouterGroup, c *container.Container) {
	reservations := v1.Group("/reservations")
	reservations.Use(middleware.Auth(c.JWTManager))
	{
		// Members reserve for themselves; the service enforces it.
		reservations.POST("", c.CirculationHandler.CreateReservation)
		reservations.GET("", c.CirculationHandler.ListReservations)
		reservations.GET("/:id", c.CirculationHandler.GetReservationByID)
		reservations.POST("/:id/fulfill", middleware.RequireStaff(), c.CirculationHandler.FulfillReservation)
	}
}

func setupReportRoutes(v1 *gin.RouterGroup, c *container.Container) {
	reports := v1.Group("/reports")
	reports.Use(middleware.Auth(c.JWTManager))
	{
		reports.GET("/books-on-loan", c.ReportHandler.BooksOnLoan)
		reports.GET("/overdue-books", c.ReportHandler.OverdueBooks)
	}
}
