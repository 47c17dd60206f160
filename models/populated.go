package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserSummary is the trimmed user shape embedded in populated task views.
type UserSummary struct {
	ID       primitive.ObjectID `json:"id"`
	Username string             `json:"username"`
	Email    string             `json:"email"`
}

type ProjectSummary struct {
	ID         primitive.ObjectID `json:"id"`
	Name       string             `json:"name"`
	TeamLeader primitive.ObjectID `json:"teamLeader"`
}

type PopulatedAssignment struct {
	ID         primitive.ObjectID `json:"id"`
	AssignedTo *UserSummary       `json:"assignedTo"`
	AssignedBy *UserSummary       `json:"assignedBy"`
	Approved   bool               `json:"approved"`
}

type PopulatedComment struct {
	ID          primitive.ObjectID `json:"id"`
	CommentedBy *UserSummary       `json:"commentedBy"`
	Text        string             `json:"text"`
	Files       []string           `json:"files"`
	CreatedAt   time.Time          `json:"createdAt"`
}

// PopulatedTask is a task with its reference fields resolved to summaries.
type PopulatedTask struct {
	ID          primitive.ObjectID    `json:"id"`
	Project     *ProjectSummary       `json:"project"`
	CreatedBy   *UserSummary          `json:"createdBy"`
	CurrentUser *UserSummary          `json:"currentUser"`
	Title       string                `json:"title"`
	Description string                `json:"description"`
	StartDate   time.Time             `json:"startDate"`
	DueDate     time.Time             `json:"dueDate"`
	Status      TaskStatus            `json:"status"`
	Priority    int                   `json:"priority"`
	Assign      []PopulatedAssignment `json:"assign"`
	Comments    []PopulatedComment    `json:"comments"`
	CreatedAt   time.Time             `json:"createdAt"`
	UpdatedAt   time.Time             `json:"updatedAt"`
}
