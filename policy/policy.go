// Package policy holds the task-workflow authorization rules as named
// predicates over the acting user, the task, and the task's project. Each
// predicate is pure so it can be tested against its truth table in isolation.
package policy

import (
	"github.com/raunak234362/WBT-OneLogin/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Rules selects between the corrected authorization checks and the literal
// behavior of the legacy system. The legacy reassignment and approval checks
// inverted their conditions (they demanded the actor match every role at
// once), which locked out the intended actors; LegacyChecks keeps that exact
// behavior available until product confirms the corrected semantics.
type Rules struct {
	LegacyChecks bool
}

// CanReassign reports whether actor may request a reassignment of the task:
// the current assignee, the task creator, or the project team leader.
func (r Rules) CanReassign(actor primitive.ObjectID, task *models.Task, project *models.Project) bool {
	if r.LegacyChecks {
		// Legacy demanded all three identities simultaneously.
		return task.CurrentUser == actor && task.CreatedBy == actor && project.TeamLeader == actor
	}
	return task.CurrentUser == actor || task.CreatedBy == actor || project.TeamLeader == actor
}

// CanApprove reports whether actor may approve a pending assignment: the
// task creator or the project team leader.
func (r Rules) CanApprove(actor primitive.ObjectID, task *models.Task, project *models.Project) bool {
	if r.LegacyChecks {
		// Legacy demanded creator and team leader at once.
		return task.CreatedBy == actor && project.TeamLeader == actor
	}
	return task.CreatedBy == actor || project.TeamLeader == actor
}

// CanAccept reports whether actor may accept the task: only the current
// assignee. Identical under both rule sets.
func (r Rules) CanAccept(actor primitive.ObjectID, task *models.Task) bool {
	return task.CurrentUser == actor
}

// CanComment reports whether actor may comment. Any authenticated user may;
// the legacy system imposed no relationship check and that is preserved.
func (r Rules) CanComment(actor primitive.ObjectID, task *models.Task) bool {
	return actor != primitive.NilObjectID
}
