package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TaskStatus string

const (
	StatusOpen       TaskStatus = "open"
	StatusInProgress TaskStatus = "in progress"
)

// Task priorities. Higher values are more urgent.
const (
	PriorityLow      = 1
	PriorityMedium   = 2
	PriorityHigh     = 3
	PriorityCritical = 4
)

// PriorityFromKeyword maps a priority filter keyword to its numeric value.
// Unknown keywords (including "low") fall back to 1; existing clients rely
// on that fallback, so it must not be turned into an error.
func PriorityFromKeyword(keyword string) int {
	switch strings.ToLower(keyword) {
	case "critical":
		return PriorityCritical
	case "high":
		return PriorityHigh
	case "medium":
		return PriorityMedium
	default:
		return PriorityLow
	}
}

// Assignment is one entry in a task's assignment history. The current
// assignee of a task always corresponds to an approved entry.
type Assignment struct {
	ID         primitive.ObjectID `json:"id" bson:"_id"`
	AssignedTo primitive.ObjectID `json:"assignedTo" bson:"assignedTo"`
	AssignedBy primitive.ObjectID `json:"assignedBy" bson:"assignedBy"`
	Approved   bool               `json:"approved" bson:"approved"`
}

type Comment struct {
	ID          primitive.ObjectID `json:"id" bson:"_id"`
	CommentedBy primitive.ObjectID `json:"commentedBy" bson:"commentedBy"`
	Text        string             `json:"text" bson:"text"`
	Files       []string           `json:"files" bson:"files"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
}

type Task struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Project     primitive.ObjectID `json:"project" bson:"project"`
	CreatedBy   primitive.ObjectID `json:"createdBy" bson:"createdBy"`
	CurrentUser primitive.ObjectID `json:"currentUser" bson:"currentUser"`
	Title       string             `json:"title" bson:"title"`
	Description string             `json:"description" bson:"description"`
	StartDate   time.Time          `json:"startDate" bson:"startDate"`
	DueDate     time.Time          `json:"dueDate" bson:"dueDate"`
	Status      TaskStatus         `json:"status" bson:"status"`
	Priority    int                `json:"priority" bson:"priority"`
	Assign      []Assignment       `json:"assign" bson:"assign"`
	Comments    []Comment          `json:"comments" bson:"comments"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// AddAssignment appends a pending assignment entry and returns it. The
// current assignee does not change until the entry is approved.
func (t *Task) AddAssignment(assignedTo, assignedBy primitive.ObjectID) Assignment {
	entry := Assignment{
		ID:         primitive.NewObjectID(),
		AssignedTo: assignedTo,
		AssignedBy: assignedBy,
		Approved:   false,
	}
	t.Assign = append(t.Assign, entry)
	t.UpdatedAt = time.Now().UTC()
	return entry
}

// ApproveAssignment marks the assignment entry with the given id as approved
// and promotes its assignee to the task's current user. Returns false if no
// entry with that id exists.
func (t *Task) ApproveAssignment(assignID primitive.ObjectID) bool {
	for i := range t.Assign {
		if t.Assign[i].ID == assignID {
			t.Assign[i].Approved = true
			t.CurrentUser = t.Assign[i].AssignedTo
			t.UpdatedAt = time.Now().UTC()
			return true
		}
	}
	return false
}

// Accept moves the task into "in progress". Accepting an already accepted
// task is a no-op.
func (t *Task) Accept() {
	t.Status = StatusInProgress
	t.UpdatedAt = time.Now().UTC()
}

// AddComment appends a comment with trimmed text and returns it.
func (t *Task) AddComment(commentedBy primitive.ObjectID, text string, files []string) Comment {
	now := time.Now().UTC()
	comment := Comment{
		ID:          primitive.NewObjectID(),
		CommentedBy: commentedBy,
		Text:        strings.TrimSpace(text),
		Files:       files,
		CreatedAt:   now,
	}
	t.Comments = append(t.Comments, comment)
	t.UpdatedAt = now
	return comment
}
