package models

import (
	"time"
)

type CourseLevel string

const (
	LevelBeginner     CourseLevel = "Beginner"
	LevelIntermediate CourseLevel = "Intermediate"
	LevelAdvanced     CourseLevel = "Advanced"
	LevelExpert       CourseLevel = "Expert"
)

// Course is the paid content gated by the subscription middleware.
type Course struct {
	ID              string      `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	Title           string      `json:"title" gorm:"not null" binding:"required"`
	Description     string      `json:"description" gorm:"not null"`
	Price           int         `json:"price" gorm:"not null"`
	Duration        string      `json:"duration"`
	Instructor      string      `json:"instructor"`
	Level           CourseLevel `json:"level" gorm:"type:varchar(20);default:'Beginner'"`
	ImageURL        string      `json:"image"`
	IsActive        bool        `json:"isActive"`
	EnrollmentCount int         `json:"enrollmentCount"`
	CreatedAt       time.Time   `json:"createdAt"`
	UpdatedAt       time.Time   `json:"updatedAt"`
}
