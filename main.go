package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/raunak234362/WBT-OneLogin/handlers"
	"github.com/raunak234362/WBT-OneLogin/logging"
	"github.com/raunak234362/WBT-OneLogin/middleware"
	"github.com/raunak234362/WBT-OneLogin/policy"
	"github.com/raunak234362/WBT-OneLogin/services"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/sony/gobreaker"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func main() {
	logging.InitLogger()
	logging.Logger.Info("Event ID: SERVICE_START, Description: Starting OneLogin backend...")

	if err := godotenv.Load(".env"); err != nil {
		logging.Logger.Warnf("Event ID: ENV_LOAD_WARNING, Description: No .env file loaded: %v", err)
	}

	if os.Getenv("JWT_SECRET") == "" {
		logging.Logger.Fatalf("Event ID: CONFIG_ERROR, Description: JWT_SECRET is not set in the environment variables.")
	}

	mongoURI := os.Getenv("MONGO_URI")
	mongoDBName := os.Getenv("MONGO_DB_NAME")
	uploadDir := os.Getenv("UPLOAD_DIR")
	if uploadDir == "" {
		uploadDir = "uploads"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		logging.Logger.Fatalf("Event ID: DB_CONNECTION_FAILED, Description: Database connection for MongoDB failed: %v", err)
	}
	defer client.Disconnect(ctx)

	if err := client.Ping(ctx, nil); err != nil {
		logging.Logger.Fatalf("Event ID: DB_PING_FAILED, Description: MongoDB connection ping error: %v", err)
	}
	logging.Logger.Infof("Event ID: DB_CONNECTED, Description: Successfully connected to MongoDB at %s.", mongoURI)

	db := client.Database(mongoDBName)

	mailBreaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "smtp-cb",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Logger.Infof("Event ID: CIRCUIT_BREAKER_STATE_CHANGE, Description: Circuit Breaker '%s' changed from '%s' to '%s'", name, from.String(), to.String())
		},
	})

	rules := policy.Rules{LegacyChecks: os.Getenv("LEGACY_TASK_RULES") == "true"}
	if rules.LegacyChecks {
		logging.Logger.Warn("Event ID: LEGACY_RULES_ENABLED, Description: Running with the legacy task authorization checks")
	}

	companyService := services.NewCompanyService(db, mailBreaker)
	userService := services.NewUserService(db, mailBreaker)
	groupService := services.NewGroupService(db)
	projectService := services.NewProjectService(db)
	fabricatorService := services.NewFabricatorService(db)
	taskService := services.NewTaskService(db, rules)

	companyHandler := handlers.NewCompanyHandler(companyService, uploadDir)
	userHandler := handlers.NewUserHandler(userService, uploadDir)
	groupHandler := handlers.NewGroupHandler(groupService)
	projectHandler := handlers.NewProjectHandler(projectService)
	fabricatorHandler := handlers.NewFabricatorHandler(fabricatorService)
	taskHandler := handlers.NewTaskHandler(taskService, uploadDir)

	auth := middleware.JWTAuthMiddleware(userService.UsersCollection())

	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()

	// Company
	api.HandleFunc("/company/register", companyHandler.Register).Methods(http.MethodPost)
	api.Handle("/company/{companyId}", auth(http.HandlerFunc(companyHandler.GetCompany))).Methods(http.MethodGet)
	api.Handle("/company/{companyId}", auth(http.HandlerFunc(companyHandler.UpdateCompany))).Methods(http.MethodPut)

	// Users
	api.HandleFunc("/user/login", userHandler.Login).Methods(http.MethodPost)
	api.Handle("/user/logout", auth(http.HandlerFunc(userHandler.Logout))).Methods(http.MethodGet)
	api.Handle("/user/verifyOtp", auth(http.HandlerFunc(userHandler.VerifyOTP))).Methods(http.MethodPost)
	api.Handle("/user/newOtp", auth(http.HandlerFunc(userHandler.NewOTP))).Methods(http.MethodGet)
	api.Handle("/user/register/{groupId}", auth(http.HandlerFunc(userHandler.RegisterNewUser))).Methods(http.MethodPost)
	api.Handle("/user", auth(http.HandlerFunc(userHandler.GetUser))).Methods(http.MethodGet)
	api.Handle("/user/all", auth(http.HandlerFunc(userHandler.GetAllUsers))).Methods(http.MethodGet)
	api.Handle("/user/all/{groupId}", auth(http.HandlerFunc(userHandler.GetUsersByGroup))).Methods(http.MethodGet)
	api.Handle("/user/{username}", auth(http.HandlerFunc(userHandler.GetUserByUsername))).Methods(http.MethodGet)
	api.Handle("/user/{username}/update", auth(http.HandlerFunc(userHandler.UpdateUser))).Methods(http.MethodPut)

	// User groups
	api.Handle("/group", auth(http.HandlerFunc(groupHandler.CreateGroup))).Methods(http.MethodPost)
	api.Handle("/group/company/{companyId}", auth(http.HandlerFunc(groupHandler.GetGroupsByCompany))).Methods(http.MethodGet)

	// Projects
	api.Handle("/project", auth(http.HandlerFunc(projectHandler.CreateProject))).Methods(http.MethodPost)
	api.Handle("/project/all", auth(http.HandlerFunc(projectHandler.GetAllProjects))).Methods(http.MethodGet)
	api.Handle("/project/{projectId}", auth(http.HandlerFunc(projectHandler.GetProject))).Methods(http.MethodGet)

	// Fabricators
	api.Handle("/fabricator", auth(http.HandlerFunc(fabricatorHandler.CreateFabricator))).Methods(http.MethodPost)
	api.Handle("/fabricator/all", auth(http.HandlerFunc(fabricatorHandler.GetFabricators))).Methods(http.MethodGet)

	// Tasks
	api.Handle("/task", auth(http.HandlerFunc(taskHandler.CreateTask))).Methods(http.MethodPost)
	api.Handle("/task", auth(http.HandlerFunc(taskHandler.GetTask))).Methods(http.MethodGet)
	api.Handle("/task/all", auth(http.HandlerFunc(taskHandler.GetAllTask))).Methods(http.MethodGet)
	api.Handle("/task/{taskId}/accept", auth(http.HandlerFunc(taskHandler.AcceptTask))).Methods(http.MethodPost)
	api.Handle("/task/{taskId}/approve", auth(http.HandlerFunc(taskHandler.ApproveTask))).Methods(http.MethodPost)
	api.Handle("/task/{taskId}/assign", auth(http.HandlerFunc(taskHandler.AssignTask))).Methods(http.MethodPost)
	api.Handle("/task/{taskId}/comment", auth(http.HandlerFunc(taskHandler.CommentTask))).Methods(http.MethodPost)
	api.Handle("/task/{taskId}/comments", auth(http.HandlerFunc(taskHandler.GetTaskComments))).Methods(http.MethodGet)

	// Stored uploads (logos, profile images, comment attachments)
	r.PathPrefix("/uploads/").Handler(http.StripPrefix("/uploads/", http.FileServer(http.Dir(uploadDir))))

	serverPort := os.Getenv("SERVER_PORT")
	if serverPort == "" {
		logging.Logger.Fatalf("Event ID: CONFIG_ERROR, Description: SERVER_PORT is not set in the environment variables.")
	}

	serverAddress := fmt.Sprintf(":%s", serverPort)
	logging.Logger.Infof("Event ID: SERVER_START_INFO, Description: Server running on http://localhost%s", serverAddress)

	if err := http.ListenAndServe(serverAddress, enableCORS(r)); err != nil {
		logging.Logger.Fatalf("Event ID: SERVER_FATAL_ERROR, Description: Server failed to start: %v", err)
	}
}
