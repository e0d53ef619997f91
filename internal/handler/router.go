package handler

import "github.com/gin-gonic/gin"

// Handlers groups every HTTP handler. Booking may be nil when the salon
// variant is disabled.
type Handlers struct {
	System      *SystemHandler
	Metrics     *MetricsHandler
	Courses     *CourseHandler
	Enrollments *EnrollmentHandler
	Dashboard   *DashboardHandler
	Exports     *ExportHandler
	Booking     *BookingHandler
}

// Register mounts probes and metrics on r and the API under prefix.
func Register(r gin.IRouter, prefix string, h Handlers) {
	r.GET("/health", h.System.Health)
	r.GET("/ready", h.System.Ready)
	r.GET("/metrics", h.Metrics.Prometheus)

	api := r.Group(prefix)
	api.POST("/refresh", h.System.Refresh)

	api.GET("/courses", h.Courses.List)
	api.GET("/courses/:id", h.Courses.Get)

	api.GET("/enrollments", h.Enrollments.List)
	api.POST("/enrollments", h.Enrollments.Create)
	api.PATCH("/enrollments/:id", h.Enrollments.Update)
	api.DELETE("/enrollments/:id", h.Enrollments.Drop)
	api.GET("/students", h.Enrollments.Students)

	api.GET("/dashboard/student", h.Dashboard.Student)
	api.GET("/dashboard/admin", h.Dashboard.Admin)

	api.GET("/exports/enrollments", h.Exports.Enrollments)

	if h.Booking != nil {
		salon := api.Group("/salon")
		salon.GET("/services", h.Booking.Services)
		salon.GET("/slots", h.Booking.Slots)
		salon.GET("/appointments", h.Booking.Appointments)
		salon.POST("/appointments", h.Booking.Book)
	}
}
