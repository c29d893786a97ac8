package main

import (
	"context"
	stderrors "errors"

	"github.com/sirupsen/logrus"

	"flowspace/internal/auth"
	"flowspace/internal/config"
	"flowspace/internal/db"
	"flowspace/internal/errors"
	"flowspace/internal/logger"
	"flowspace/internal/metrics"
	"flowspace/internal/model"
	"flowspace/internal/repository"
	"flowspace/internal/service"
)

const demoPassword = "pw123456"

type seedTask struct {
	title    string
	priority model.TaskPriority
	status   model.TaskStatus
}

var demoTasks = []seedTask{
	{title: "Write launch announcement", priority: model.PriorityHigh, status: model.TaskStatusTodo},
	{title: "Review pricing page", priority: model.PriorityMedium, status: model.TaskStatusDoing},
	{title: "Set up analytics", priority: model.PriorityLow, status: model.TaskStatusDone},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("config: %v", err)
	}
	log := logger.Setup(cfg.LogLevel)
	log.Info("Starting seed script...")

	gormDB, err := db.Open(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := db.Migrate(gormDB, cfg.ResetDB); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Info("Database migrations completed")

	store := repository.NewStore(gormDB)
	authService := service.NewAuthService(store.Users(), auth.NewJWTService(cfg.JWTSecret, cfg.JWTExpire))
	projectService := service.NewProjectService(store, nil, metrics.Nop{})
	memberService := service.NewMemberService(store, metrics.Nop{})
	taskService := service.NewTaskService(store, nil, metrics.Nop{})
	reportService := service.NewReportService(store, metrics.Nop{})

	ctx := context.Background()

	alice, err := ensureUser(ctx, authService, "alice@x.com", "Alice")
	if err != nil {
		log.Fatalf("seed alice: %v", err)
	}
	bob, err := ensureUser(ctx, authService, "bob@x.com", "Bob")
	if err != nil {
		log.Fatalf("seed bob: %v", err)
	}

	projects, err := projectService.List(ctx, alice.ID)
	if err != nil {
		log.Fatalf("list projects: %v", err)
	}
	for _, p := range projects {
		if p.Name == "Launch" && p.OwnerID == alice.ID {
			log.WithField("project_id", p.ID).Info("Demo data already present, nothing to do")
			return
		}
	}

	description := "Everything needed to ship v1."
	project, err := projectService.Create(ctx, alice.ID, service.CreateProjectInput{
		Name:        "Launch",
		Description: &description,
	})
	if err != nil {
		log.Fatalf("create project: %v", err)
	}

	if _, err := memberService.Add(ctx, alice.ID, project.ID, service.AddMemberInput{
		UserID: &bob.ID,
		Role:   model.RoleMember,
	}); err != nil {
		log.Fatalf("add member: %v", err)
	}

	for _, t := range demoTasks {
		in := service.CreateTaskInput{Title: t.title, Priority: t.priority, Status: t.status}
		if t.status == model.TaskStatusDoing {
			in.AssigneeID = &bob.ID
		}
		if _, err := taskService.Create(ctx, alice.ID, project.ID, in); err != nil {
			log.Fatalf("create task %q: %v", t.title, err)
		}
	}

	if _, err := reportService.Create(ctx, alice.ID, service.CreateReportInput{
		Title:     "Kickoff notes",
		Content:   "Scope agreed. Launch target is end of quarter.",
		Type:      model.ReportTypeNote,
		Status:    model.ReportStatusPublished,
		ProjectID: project.ID,
		Tags:      []string{"kickoff", "planning"},
	}); err != nil {
		log.Fatalf("create report: %v", err)
	}

	log.WithFields(logrus.Fields{
		"project_id": project.ID,
		"tasks":      len(demoTasks),
	}).Infof("Seed completed. Log in as alice@x.com or bob@x.com with password %q", demoPassword)
}

func ensureUser(ctx context.Context, authService service.AuthService, email, name string) (*model.User, error) {
	user, _, err := authService.Register(ctx, email, demoPassword, &name)
	if err == nil {
		return user, nil
	}
	if !stderrors.Is(err, errors.ErrUserAlreadyExists) {
		return nil, err
	}
	user, _, err = authService.Login(ctx, email, demoPassword)
	return user, err
}
