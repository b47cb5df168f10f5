package routes

import (
	"github.com/devxankit/eduvado-backend/handlers/courses"
	"github.com/devxankit/eduvado-backend/middleware"

	"github.com/gin-gonic/gin"
)

func CourseRoutes(r *gin.Engine) {
	courseGroup := r.Group("/api/courses")
	{
		courseGroup.GET("", courses.GetAllCourses)

		courseGroup.GET("/:id", middleware.JWTAuth(), middleware.CheckSubscriptionAccess(), courses.GetCourse)
		courseGroup.POST("/:id/enroll", middleware.JWTAuth(), middleware.CheckEnrollmentAccess(), courses.EnrollCourse)

		courseGroup.POST("", middleware.AdminAuth(), courses.CreateCourse)
	}
}
