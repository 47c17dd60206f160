package models

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestPriorityFromKeyword(t *testing.T) {
	tests := []struct {
		keyword string
		want    int
	}{
		{"critical", 4},
		{"CRITICAL", 4},
		{"high", 3},
		{"medium", 2},
		{"low", 1},
		{"bogus", 1},
		{"", 1},
	}
	for _, tt := range tests {
		if got := PriorityFromKeyword(tt.keyword); got != tt.want {
			t.Errorf("PriorityFromKeyword(%q) = %d, want %d", tt.keyword, got, tt.want)
		}
	}
}

func TestAddAssignment(t *testing.T) {
	creator := primitive.NewObjectID()
	assignee := primitive.NewObjectID()
	target := primitive.NewObjectID()

	task := Task{
		CreatedBy:   creator,
		CurrentUser: assignee,
		Assign: []Assignment{{
			ID:         primitive.NewObjectID(),
			AssignedTo: assignee,
			AssignedBy: creator,
			Approved:   true,
		}},
	}

	entry := task.AddAssignment(target, creator)

	if len(task.Assign) != 2 {
		t.Fatalf("assign list length = %d, want 2", len(task.Assign))
	}
	if entry.Approved {
		t.Error("new assignment must start unapproved")
	}
	if entry.AssignedTo != target || entry.AssignedBy != creator {
		t.Error("assignment references do not match the request")
	}
	if task.CurrentUser != assignee {
		t.Error("current user must not change until the assignment is approved")
	}
}

func TestApproveAssignment(t *testing.T) {
	creator := primitive.NewObjectID()
	assignee := primitive.NewObjectID()
	target := primitive.NewObjectID()

	task := Task{
		CreatedBy:   creator,
		CurrentUser: assignee,
		Assign: []Assignment{{
			ID:         primitive.NewObjectID(),
			AssignedTo: assignee,
			AssignedBy: creator,
			Approved:   true,
		}},
	}
	entry := task.AddAssignment(target, creator)

	if !task.ApproveAssignment(entry.ID) {
		t.Fatal("ApproveAssignment did not find the pending entry")
	}
	if !task.Assign[1].Approved {
		t.Error("approved flag not set on the matching entry")
	}
	if task.CurrentUser != target {
		t.Errorf("current user = %s, want %s", task.CurrentUser.Hex(), target.Hex())
	}
	// the original entry is untouched
	if !task.Assign[0].Approved || task.Assign[0].AssignedTo != assignee {
		t.Error("approving one entry modified another")
	}
}

func TestApproveAssignment_UnknownID(t *testing.T) {
	task := Task{CurrentUser: primitive.NewObjectID()}
	before := task.CurrentUser

	if task.ApproveAssignment(primitive.NewObjectID()) {
		t.Error("ApproveAssignment reported success for an unknown id")
	}
	if task.CurrentUser != before {
		t.Error("ApproveAssignment changed current user on a miss")
	}
}

func TestAccept_Idempotent(t *testing.T) {
	task := Task{Status: StatusOpen}
	task.Accept()
	if task.Status != StatusInProgress {
		t.Fatalf("status = %q, want %q", task.Status, StatusInProgress)
	}
	task.Accept()
	if task.Status != StatusInProgress {
		t.Errorf("re-accept changed status to %q", task.Status)
	}
}

// Every workflow mutation must refresh UpdatedAt, since its value is what
// gets persisted alongside the change.
func TestMutationsRefreshUpdatedAt(t *testing.T) {
	stale := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	actor := primitive.NewObjectID()

	mutations := []struct {
		name   string
		mutate func(task *Task)
	}{
		{"AddAssignment", func(task *Task) { task.AddAssignment(primitive.NewObjectID(), actor) }},
		{"ApproveAssignment", func(task *Task) {
			entry := task.AddAssignment(primitive.NewObjectID(), actor)
			task.UpdatedAt = stale
			if !task.ApproveAssignment(entry.ID) {
				t.Fatal("ApproveAssignment did not find the entry")
			}
		}},
		{"Accept", func(task *Task) { task.Accept() }},
		{"AddComment", func(task *Task) { task.AddComment(actor, "note", nil) }},
	}
	for _, tt := range mutations {
		t.Run(tt.name, func(t *testing.T) {
			task := &Task{Status: StatusOpen, UpdatedAt: stale}
			tt.mutate(task)
			if !task.UpdatedAt.After(stale) {
				t.Errorf("UpdatedAt = %v, still stale after %s", task.UpdatedAt, tt.name)
			}
		})
	}
}

func TestApproveAssignment_MissLeavesUpdatedAt(t *testing.T) {
	stale := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	task := &Task{UpdatedAt: stale}

	if task.ApproveAssignment(primitive.NewObjectID()) {
		t.Fatal("ApproveAssignment reported success for an unknown id")
	}
	if !task.UpdatedAt.Equal(stale) {
		t.Error("a failed approval must not touch UpdatedAt")
	}
}

func TestAddComment(t *testing.T) {
	commenter := primitive.NewObjectID()
	task := Task{}

	first := task.AddComment(commenter, "  first comment  ", []string{"/uploads/a.pdf"})
	second := task.AddComment(commenter, "second", nil)

	if len(task.Comments) != 2 {
		t.Fatalf("comment count = %d, want 2", len(task.Comments))
	}
	if first.Text != "first comment" {
		t.Errorf("comment text not trimmed: %q", first.Text)
	}
	if task.Comments[0].ID != first.ID || task.Comments[1].ID != second.ID {
		t.Error("comments not stored in call order")
	}
	if len(first.Files) != 1 || first.Files[0] != "/uploads/a.pdf" {
		t.Error("comment files not stored")
	}
}
