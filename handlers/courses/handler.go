package courses

import (
	"net/http"

	"github.com/devxankit/eduvado-backend/db"
	"github.com/devxankit/eduvado-backend/models"
	"github.com/devxankit/eduvado-backend/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// @Summary Get all courses
// @Description Retrieve the catalog of active courses. Public: browsing does not require a subscription.
// @Tags courses
// @Produce json
// @Success 200 {object} map[string]interface{} "courses: course list"
// @Failure 500 {object} map[string]string "error: Error message"
// @Router /api/courses [get]
func GetAllCourses(c *gin.Context) {
	var courses []models.Course

	result := db.DB.Where("is_active = ?", true).Order("created_at DESC").Find(&courses)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": result.Error.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"courses": courses,
	})
}

// @Summary Get a course
// @Description Retrieve the full content of a course. Requires a live subscription.
// @Tags courses
// @Produce json
// @Param id path string true "Course ID"
// @Security BearerAuth
// @Success 200 {object} map[string]interface{} "course: course content"
// @Failure 403 {object} map[string]interface{} "error: Subscription required"
// @Failure 404 {object} map[string]string "error: Course not found"
// @Router /api/courses/{id} [get]
func GetCourse(c *gin.Context) {
	courseID := c.Param("id")

	var course models.Course
	if err := db.DB.First(&course, "id = ? AND is_active = ?", courseID, true).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Course not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"course":  course,
	})
}

// @Summary Enroll in a course
// @Description Enroll the authenticated user in a course. Requires a live subscription.
// @Tags courses
// @Produce json
// @Param id path string true "Course ID"
// @Security BearerAuth
// @Success 200 {object} map[string]interface{} "message: Enrolled successfully"
// @Failure 403 {object} map[string]interface{} "error: Subscription required"
// @Failure 404 {object} map[string]string "error: Course not found"
// @Failure 500 {object} map[string]string "error: Error message"
// @Router /api/courses/{id}/enroll [post]
func EnrollCourse(c *gin.Context) {
	userID, _ := c.Get("user_id")
	courseID := c.Param("id")

	var course models.Course
	if err := db.DB.First(&course, "id = ? AND is_active = ?", courseID, true).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Course not found"})
		return
	}

	err := db.DB.Model(&models.Course{}).Where("id = ?", course.ID).
		Update("enrollment_count", gorm.Expr("enrollment_count + ?", 1)).Error
	if err != nil {
		utils.LogErrorWithUser(userID, err, "Error updating enrollment count in EnrollCourse")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error enrolling in course"})
		return
	}

	utils.LogSuccessWithUser(userID, "User enrolled in course "+course.ID)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Enrolled successfully",
		"course": gin.H{
			"id":    course.ID,
			"title": course.Title,
		},
	})
}

// @Summary Create a course
// @Description Create a new course. Admin only.
// @Tags courses
// @Accept json
// @Produce json
// @Param course body models.Course true "Course information"
// @Security BearerAuth
// @Success 201 {object} models.Course
// @Failure 400 {object} map[string]string "error: Invalid input"
// @Failure 403 {object} map[string]string "error: Access denied"
// @Failure 500 {object} map[string]string "error: Error message"
// @Router /api/courses [post]
func CreateCourse(c *gin.Context) {
	var course models.Course
	if err := c.ShouldBindJSON(&course); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid input: " + err.Error(),
		})
		return
	}

	course.IsActive = true
	course.EnrollmentCount = 0

	result := db.DB.Create(&course)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error creating course: " + result.Error.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, course)
}
