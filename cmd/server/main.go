package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"report-bot/internal/card"
	"report-bot/internal/config"
	"report-bot/internal/handler"
	"report-bot/internal/i18n"
	"report-bot/internal/job"
	"report-bot/internal/logger"
	"report-bot/internal/policy"
	"report-bot/internal/repo"
	"report-bot/internal/scheduler"
	"report-bot/internal/service"
	"report-bot/internal/store"
	"report-bot/internal/store/memory"
	"report-bot/internal/store/sqlstore"
	"report-bot/internal/webhook"
)

type backend struct {
	members repo.Members
	records repo.Records
	cards   repo.Cards
	ping    handler.Pinger
	close   func(ctx context.Context) error
}

func main() {
	configPath := flag.String("config", "", "path to config.yaml")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	logger.Init(cfg.Log)

	if err := i18n.Init(cfg.Locale); err != nil {
		fatal("init i18n", err)
	}
	loc := cfg.Location()

	ctx := context.Background()
	be, err := openBackend(ctx, cfg.Store)
	if err != nil {
		fatal("open store", err)
	}
	defer be.close(context.Background())

	sink := webhook.NewClient(cfg.Notify.Timeout)

	// Services
	recordSvc := service.NewRecordService(be.records, be.members, policy.Rules{
		DayStartHour: cfg.Attendance.DayStartHour,
		Location:     loc,
	}, nil)
	memberSvc := service.NewMemberService(be.members)

	// Jobs
	attendanceJob := job.NewAttendanceJob(be.members, be.records, sink, job.AttendanceConfig{
		WebhookURL:  cfg.Notify.AttendanceWebhook,
		FormURL:     cfg.Notify.AttendanceFormURL,
		MaxAttempts: cfg.Attendance.MaxAttempts,
		RetryDelay:  cfg.Attendance.RetryDelay,
		Location:    loc,
	})
	reportJob := job.NewReportJob(be.members, be.records, be.cards, sink, job.ReportConfig{
		Manager:  card.Manager{Name: cfg.Report.ManagerName, Email: cfg.Report.ManagerEmail},
		Location: loc,
	})
	reminderJob := job.NewReportReminderJob(sink, job.ReportReminderConfig{
		WebhookURL: cfg.Notify.ReportReminderWebhook,
		FormURL:    cfg.Notify.ReportFormURL,
	})

	sched := scheduler.New(loc)
	tasks := []struct {
		name, spec string
		task       scheduler.Task
	}{
		{"attendance", cfg.Schedule.Attendance, func(ctx context.Context) { attendanceJob.Run(ctx) }},
		{"report", cfg.Schedule.Report, func(ctx context.Context) { _, _ = reportJob.Run(ctx) }},
		{"report-reminder", cfg.Schedule.ReportReminder, func(ctx context.Context) { _ = reminderJob.Run(ctx) }},
	}
	for _, t := range tasks {
		if err := sched.Add(t.name, t.spec, t.task); err != nil {
			fatal("schedule job", err)
		}
	}
	sched.Start()

	// Routes
	router := handler.NewRouter(
		handler.NewRecordHandler(recordSvc),
		handler.NewMemberHandler(memberSvc),
		handler.NewJobHandler(sched, be.cards),
		be.ping,
	)

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("report bot started", "addr", cfg.Addr(), "store", cfg.Store.Driver, "timezone", loc.String())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fatal("server error", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http shutdown", "err", err)
	}
	if err := sched.Stop(shutdownCtx); err != nil {
		slog.Error("scheduler shutdown", "err", err)
	}
}

func openBackend(ctx context.Context, cfg config.StoreConfig) (*backend, error) {
	switch cfg.Driver {
	case "postgres":
		db, err := sqlstore.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		return &backend{
			members: db.Members(),
			records: db.Records(),
			cards:   db.Cards(),
			ping:    db,
			close:   func(context.Context) error { return db.Close() },
		}, nil

	case "memory":
		st := memory.New()
		slog.Warn("using in-memory store; data is lost on restart")
		return &backend{
			members: st.Members(),
			records: st.Records(),
			cards:   st.Cards(),
			close:   func(context.Context) error { return nil },
		}, nil
	}

	db, err := store.NewMongoDB(ctx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		return nil, err
	}
	members, err := store.NewMemberStore(ctx, db)
	if err != nil {
		return nil, err
	}
	records, err := store.NewRecordStore(ctx, db)
	if err != nil {
		return nil, err
	}
	cards, err := store.NewCardStore(ctx, db)
	if err != nil {
		return nil, err
	}
	return &backend{members: members, records: records, cards: cards, ping: db, close: db.Close}, nil
}

func fatal(msg string, err error) {
	slog.Error(msg, "err", err)
	os.Exit(1)
}
