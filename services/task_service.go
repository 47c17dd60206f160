package services

import (
	"context"
	"strings"
	"time"

	"github.com/raunak234362/WBT-OneLogin/apperrors"
	"github.com/raunak234362/WBT-OneLogin/logging"
	"github.com/raunak234362/WBT-OneLogin/models"
	"github.com/raunak234362/WBT-OneLogin/policy"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// TaskService implements the task workflow: creation, reassignment requests,
// approval, acceptance, and commenting, together with the populated queries.
type TaskService struct {
	tasks    *mongo.Collection
	projects *mongo.Collection
	users    *mongo.Collection
	rules    policy.Rules
}

func NewTaskService(db *mongo.Database, rules policy.Rules) *TaskService {
	return &TaskService{
		tasks:    db.Collection("tasks"),
		projects: db.Collection("projects"),
		users:    db.Collection("users"),
		rules:    rules,
	}
}

// CreateTaskInput carries the createTask request fields.
type CreateTaskInput struct {
	Project      string `json:"project"`
	AssignedUser string `json:"assignedUser"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	StartDate    string `json:"startDate"`
	DueDate      string `json:"dueDate"`
}

// CreateTask persists a new task for the acting user. The chosen assignee
// becomes the current user immediately: creator-initiated assignments are
// recorded pre-approved.
func (s *TaskService) CreateTask(ctx context.Context, actorID primitive.ObjectID, in CreateTaskInput) (*models.Task, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	if in.Project == "" || in.AssignedUser == "" || in.Title == "" || in.Description == "" || in.StartDate == "" || in.DueDate == "" {
		return nil, apperrors.InvalidInput("all fields are required")
	}

	projectID, err := primitive.ObjectIDFromHex(in.Project)
	if err != nil {
		return nil, apperrors.InvalidInput("invalid project id")
	}
	assigneeID, err := primitive.ObjectIDFromHex(in.AssignedUser)
	if err != nil {
		return nil, apperrors.InvalidInput("invalid assigned user id")
	}
	startDate, err := time.Parse(time.RFC3339, in.StartDate)
	if err != nil {
		return nil, apperrors.InvalidInput("invalid start date")
	}
	dueDate, err := time.Parse(time.RFC3339, in.DueDate)
	if err != nil {
		return nil, apperrors.InvalidInput("invalid due date")
	}

	if err := s.projects.FindOne(ctx, bson.M{"_id": projectID}).Err(); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperrors.NotFound("project not found")
		}
		return nil, apperrors.Internal("failed to look up project", err)
	}
	if err := s.users.FindOne(ctx, bson.M{"_id": assigneeID}).Err(); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperrors.NotFound("assigned user not found")
		}
		return nil, apperrors.Internal("failed to look up assigned user", err)
	}

	now := time.Now().UTC()
	task := &models.Task{
		ID:          primitive.NewObjectID(),
		Project:     projectID,
		CreatedBy:   actorID,
		CurrentUser: assigneeID,
		Title:       in.Title,
		Description: in.Description,
		StartDate:   startDate,
		DueDate:     dueDate,
		Status:      models.StatusOpen,
		Priority:    models.PriorityLow,
		Assign: []models.Assignment{{
			ID:         primitive.NewObjectID(),
			AssignedTo: assigneeID,
			AssignedBy: actorID,
			Approved:   true,
		}},
		Comments:  []models.Comment{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := s.tasks.InsertOne(ctx, task); err != nil {
		return nil, apperrors.Internal("failed to create task", err)
	}

	logging.Logger.Infof("Event ID: TASK_CREATED, Description: Task %s created in project %s, assigned to %s", task.ID.Hex(), projectID.Hex(), assigneeID.Hex())
	return task, nil
}

// AssignTask appends a pending reassignment request for the target user.
// Allowed for the current assignee, the task creator, or the project team
// leader. The current assignee only changes once the request is approved.
func (s *TaskService) AssignTask(ctx context.Context, actorID primitive.ObjectID, taskID, assignedUser string) (*models.Task, error) {
	task, project, err := s.loadTaskAndProject(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if !s.rules.CanReassign(actorID, task, project) {
		return nil, apperrors.Forbidden("you are not allowed to perform this action")
	}

	targetID, err := primitive.ObjectIDFromHex(assignedUser)
	if err != nil {
		return nil, apperrors.InvalidInput("invalid assigned user id")
	}
	if err := s.users.FindOne(ctx, bson.M{"_id": targetID}).Err(); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperrors.NotFound("user not found")
		}
		return nil, apperrors.Internal("failed to look up user", err)
	}

	entry := task.AddAssignment(targetID, actorID)
	update := bson.M{
		"$push": bson.M{"assign": entry},
		"$set":  bson.M{"updatedAt": task.UpdatedAt},
	}
	if _, err := s.tasks.UpdateByID(ctx, task.ID, update); err != nil {
		return nil, apperrors.Internal("failed to assign task", err)
	}

	logging.Logger.Infof("Event ID: TASK_ASSIGN_REQUESTED, Description: Task %s reassignment to %s requested by %s", task.ID.Hex(), targetID.Hex(), actorID.Hex())
	return task, nil
}

// ApproveTask marks the given assignment entry approved and promotes its
// assignee to the task's current user. Allowed for the task creator or the
// project team leader.
func (s *TaskService) ApproveTask(ctx context.Context, actorID primitive.ObjectID, taskID, assignID string) (*models.Task, error) {
	task, project, err := s.loadTaskAndProject(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if !s.rules.CanApprove(actorID, task, project) {
		return nil, apperrors.Forbidden("you are not allowed to perform this action")
	}

	recordID, err := primitive.ObjectIDFromHex(assignID)
	if err != nil {
		return nil, apperrors.InvalidInput("invalid assignment id")
	}
	if !task.ApproveAssignment(recordID) {
		return nil, apperrors.NotFound("task assign request not found")
	}

	update := bson.M{"$set": bson.M{
		"assign.$.approved": true,
		"currentUser":       task.CurrentUser,
		"updatedAt":         task.UpdatedAt,
	}}
	res, err := s.tasks.UpdateOne(ctx, bson.M{"_id": task.ID, "assign._id": recordID}, update)
	if err != nil {
		return nil, apperrors.Internal("failed to approve task", err)
	}
	if res.MatchedCount == 0 {
		return nil, apperrors.NotFound("task assign request not found")
	}

	logging.Logger.Infof("Event ID: TASK_APPROVED, Description: Assignment %s on task %s approved by %s", recordID.Hex(), task.ID.Hex(), actorID.Hex())
	return task, nil
}

// AcceptTask transitions the task to "in progress". Only the current
// assignee may accept; re-accepting is a no-op.
func (s *TaskService) AcceptTask(ctx context.Context, actorID primitive.ObjectID, taskID string) (*models.Task, error) {
	task, err := s.loadTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if !s.rules.CanAccept(actorID, task) {
		return nil, apperrors.Forbidden("you are not allowed to perform this action")
	}

	task.Accept()
	update := bson.M{"$set": bson.M{"status": task.Status, "updatedAt": task.UpdatedAt}}
	if _, err := s.tasks.UpdateByID(ctx, task.ID, update); err != nil {
		return nil, apperrors.Internal("failed to accept task", err)
	}

	logging.Logger.Infof("Event ID: TASK_ACCEPTED, Description: Task %s accepted by %s", task.ID.Hex(), actorID.Hex())
	return task, nil
}

// CommentTask appends a comment with the stored upload paths. Any
// authenticated user may comment.
func (s *TaskService) CommentTask(ctx context.Context, actorID primitive.ObjectID, taskID, text string, files []string) (*models.Task, error) {
	task, err := s.loadTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if !s.rules.CanComment(actorID, task) {
		return nil, apperrors.Forbidden("you are not allowed to perform this action")
	}
	if strings.TrimSpace(text) == "" {
		return nil, apperrors.InvalidInput("comment text is required")
	}

	comment := task.AddComment(actorID, text, files)
	update := bson.M{
		"$push": bson.M{"comments": comment},
		"$set":  bson.M{"updatedAt": task.UpdatedAt},
	}
	if _, err := s.tasks.UpdateByID(ctx, task.ID, update); err != nil {
		return nil, apperrors.Internal("failed to comment on task", err)
	}

	return task, nil
}

// TaskFilter carries the optional getAllTask query filters. Priority is the
// keyword form; it is mapped to its numeric value when present.
type TaskFilter struct {
	Project   string
	CreatedBy string
	Priority  string
	Status    string
}

// GetMyTasks returns the tasks currently assigned to the acting user, most
// urgent first, with references resolved.
func (s *TaskService) GetMyTasks(ctx context.Context, actorID primitive.ObjectID) ([]models.PopulatedTask, error) {
	return s.findPopulated(ctx, bson.M{"currentUser": actorID})
}

// GetAllTasks returns tasks matching the filter, most urgent first, with
// references resolved.
func (s *TaskService) GetAllTasks(ctx context.Context, filter TaskFilter) ([]models.PopulatedTask, error) {
	query := bson.M{}
	if filter.Project != "" {
		projectID, err := primitive.ObjectIDFromHex(filter.Project)
		if err != nil {
			return nil, apperrors.InvalidInput("invalid project id")
		}
		query["project"] = projectID
	}
	if filter.CreatedBy != "" {
		creatorID, err := primitive.ObjectIDFromHex(filter.CreatedBy)
		if err != nil {
			return nil, apperrors.InvalidInput("invalid createdBy id")
		}
		query["createdBy"] = creatorID
	}
	if filter.Priority != "" {
		query["priority"] = models.PriorityFromKeyword(filter.Priority)
	}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	return s.findPopulated(ctx, query)
}

// GetTaskComments returns the task's comments with commenters resolved.
func (s *TaskService) GetTaskComments(ctx context.Context, taskID string) ([]models.PopulatedComment, error) {
	task, err := s.loadTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	userIDs := make(map[primitive.ObjectID]struct{}, len(task.Comments))
	for _, c := range task.Comments {
		userIDs[c.CommentedBy] = struct{}{}
	}
	userMap, err := s.fetchUsers(ctx, userIDs)
	if err != nil {
		return nil, err
	}

	comments := make([]models.PopulatedComment, 0, len(task.Comments))
	for _, c := range task.Comments {
		comments = append(comments, models.PopulatedComment{
			ID:          c.ID,
			CommentedBy: userMap[c.CommentedBy],
			Text:        c.Text,
			Files:       c.Files,
			CreatedAt:   c.CreatedAt,
		})
	}
	return comments, nil
}

func (s *TaskService) loadTask(ctx context.Context, taskID string) (*models.Task, error) {
	id, err := primitive.ObjectIDFromHex(taskID)
	if err != nil {
		return nil, apperrors.InvalidInput("invalid task id")
	}
	var task models.Task
	if err := s.tasks.FindOne(ctx, bson.M{"_id": id}).Decode(&task); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperrors.NotFound("task not found")
		}
		return nil, apperrors.Internal("failed to look up task", err)
	}
	return &task, nil
}

func (s *TaskService) loadTaskAndProject(ctx context.Context, taskID string) (*models.Task, *models.Project, error) {
	task, err := s.loadTask(ctx, taskID)
	if err != nil {
		return nil, nil, err
	}
	var project models.Project
	if err := s.projects.FindOne(ctx, bson.M{"_id": task.Project}).Decode(&project); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil, apperrors.NotFound("project not found")
		}
		return nil, nil, apperrors.Internal("failed to look up project", err)
	}
	return task, &project, nil
}

func (s *TaskService) findPopulated(ctx context.Context, query bson.M) ([]models.PopulatedTask, error) {
	opts := options.Find().SetSort(bson.D{{Key: "priority", Value: -1}})
	cursor, err := s.tasks.Find(ctx, query, opts)
	if err != nil {
		return nil, apperrors.Internal("failed to retrieve tasks", err)
	}
	defer cursor.Close(ctx)

	var tasks []models.Task
	if err := cursor.All(ctx, &tasks); err != nil {
		return nil, apperrors.Internal("failed to decode tasks", err)
	}
	return s.populateTasks(ctx, tasks)
}

// populateTasks resolves every referenced project and user in two $in
// queries and assembles the populated views. Batch fetching after the
// primary query keeps the reference resolution to a fixed number of round
// trips regardless of result size.
func (s *TaskService) populateTasks(ctx context.Context, tasks []models.Task) ([]models.PopulatedTask, error) {
	projectIDs := make(map[primitive.ObjectID]struct{})
	userIDs := make(map[primitive.ObjectID]struct{})
	for _, t := range tasks {
		projectIDs[t.Project] = struct{}{}
		userIDs[t.CreatedBy] = struct{}{}
		userIDs[t.CurrentUser] = struct{}{}
		for _, a := range t.Assign {
			userIDs[a.AssignedTo] = struct{}{}
			userIDs[a.AssignedBy] = struct{}{}
		}
		for _, c := range t.Comments {
			userIDs[c.CommentedBy] = struct{}{}
		}
	}

	projectMap, err := s.fetchProjects(ctx, projectIDs)
	if err != nil {
		return nil, err
	}
	userMap, err := s.fetchUsers(ctx, userIDs)
	if err != nil {
		return nil, err
	}

	populated := make([]models.PopulatedTask, 0, len(tasks))
	for _, t := range tasks {
		pt := models.PopulatedTask{
			ID:          t.ID,
			Project:     projectMap[t.Project],
			CreatedBy:   userMap[t.CreatedBy],
			CurrentUser: userMap[t.CurrentUser],
			Title:       t.Title,
			Description: t.Description,
			StartDate:   t.StartDate,
			DueDate:     t.DueDate,
			Status:      t.Status,
			Priority:    t.Priority,
			Assign:      make([]models.PopulatedAssignment, 0, len(t.Assign)),
			Comments:    make([]models.PopulatedComment, 0, len(t.Comments)),
			CreatedAt:   t.CreatedAt,
			UpdatedAt:   t.UpdatedAt,
		}
		for _, a := range t.Assign {
			pt.Assign = append(pt.Assign, models.PopulatedAssignment{
				ID:         a.ID,
				AssignedTo: userMap[a.AssignedTo],
				AssignedBy: userMap[a.AssignedBy],
				Approved:   a.Approved,
			})
		}
		for _, c := range t.Comments {
			pt.Comments = append(pt.Comments, models.PopulatedComment{
				ID:          c.ID,
				CommentedBy: userMap[c.CommentedBy],
				Text:        c.Text,
				Files:       c.Files,
				CreatedAt:   c.CreatedAt,
			})
		}
		populated = append(populated, pt)
	}
	return populated, nil
}

func (s *TaskService) fetchProjects(ctx context.Context, ids map[primitive.ObjectID]struct{}) (map[primitive.ObjectID]*models.ProjectSummary, error) {
	result := make(map[primitive.ObjectID]*models.ProjectSummary, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	cursor, err := s.projects.Find(ctx, bson.M{"_id": bson.M{"$in": idList(ids)}})
	if err != nil {
		return nil, apperrors.Internal("failed to retrieve projects", err)
	}
	defer cursor.Close(ctx)

	var projects []models.Project
	if err := cursor.All(ctx, &projects); err != nil {
		return nil, apperrors.Internal("failed to decode projects", err)
	}
	for _, p := range projects {
		result[p.ID] = &models.ProjectSummary{ID: p.ID, Name: p.Name, TeamLeader: p.TeamLeader}
	}
	return result, nil
}

func (s *TaskService) fetchUsers(ctx context.Context, ids map[primitive.ObjectID]struct{}) (map[primitive.ObjectID]*models.UserSummary, error) {
	result := make(map[primitive.ObjectID]*models.UserSummary, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	cursor, err := s.users.Find(ctx, bson.M{"_id": bson.M{"$in": idList(ids)}})
	if err != nil {
		return nil, apperrors.Internal("failed to retrieve users", err)
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, apperrors.Internal("failed to decode users", err)
	}
	for _, u := range users {
		result[u.ID] = &models.UserSummary{ID: u.ID, Username: u.Username, Email: u.Email}
	}
	return result, nil
}

func idList(ids map[primitive.ObjectID]struct{}) []primitive.ObjectID {
	list := make([]primitive.ObjectID, 0, len(ids))
	for id := range ids {
		list = append(list, id)
	}
	return list
}
