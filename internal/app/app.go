// Package app wires configuration into repositories, services and channel
// dispatchers. Both the API server and notifyctl build on it.
package app

import (
	"context"
	"fmt"
	"log/slog"

	firebase "firebase.google.com/go/v4"
	"github.com/cmlabs-hris/hris-notify/internal/config"
	"github.com/cmlabs-hris/hris-notify/internal/domain/advance"
	"github.com/cmlabs-hris/hris-notify/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-notify/internal/domain/channel"
	"github.com/cmlabs-hris/hris-notify/internal/domain/employee"
	"github.com/cmlabs-hris/hris-notify/internal/domain/notification"
	"github.com/cmlabs-hris/hris-notify/internal/domain/notify"
	"github.com/cmlabs-hris/hris-notify/internal/domain/reconciliation"
	"github.com/cmlabs-hris/hris-notify/internal/domain/task"
	"github.com/cmlabs-hris/hris-notify/internal/domain/template"
	"github.com/cmlabs-hris/hris-notify/internal/domain/user"
	"github.com/cmlabs-hris/hris-notify/internal/domain/visit"
	"github.com/cmlabs-hris/hris-notify/internal/pkg/database"
	"github.com/cmlabs-hris/hris-notify/internal/pkg/email"
	"github.com/cmlabs-hris/hris-notify/internal/pkg/fcm"
	"github.com/cmlabs-hris/hris-notify/internal/pkg/firebaseapp"
	"github.com/cmlabs-hris/hris-notify/internal/pkg/identity"
	"github.com/cmlabs-hris/hris-notify/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-notify/internal/pkg/secret"
	"github.com/cmlabs-hris/hris-notify/internal/pkg/sse"
	"github.com/cmlabs-hris/hris-notify/internal/repository/postgresql"
	"github.com/cmlabs-hris/hris-notify/internal/service/dispatch"
	notificationService "github.com/cmlabs-hris/hris-notify/internal/service/notification"
	"github.com/cmlabs-hris/hris-notify/internal/service/notifier"
	"github.com/cmlabs-hris/hris-notify/internal/service/recipient"
	reconciliationService "github.com/cmlabs-hris/hris-notify/internal/service/reconciliation"
	templateService "github.com/cmlabs-hris/hris-notify/internal/service/template"
)

type Repositories struct {
	Users           user.UserRepository
	Employees       employee.EmployeeRepository
	Reconciliations reconciliation.ReconciliationRepository
	Attendance      attendance.AttendanceRepository
	Templates       template.TemplateRepository
	Settings        channel.SettingsRepository
	Notifications   notification.Repository
	Devices         notification.DeviceRepository
	Advances        advance.AdvanceSalaryRepository
	Visits          visit.VisitRepository
	Tasks           task.TaskRepository
}

// App holds the long-lived dependencies of the service.
type App struct {
	Config *config.Config
	DB     *database.DB
	Repos  Repositories

	JWT      jwt.Service
	Verifier identity.Verifier

	Inbox          notification.Service
	Reconciliation reconciliation.ReconciliationService
	Renderer       template.Renderer
	Recipients     notify.RecipientResolver
	Dispatchers    []notify.Dispatcher
	Notifier       notify.Notifier
	Background     *notifier.Detached
}

// New connects to the database and builds every service. Call Close when done.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL())
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	box, err := secret.NewBox(cfg.Secret.SettingsKey)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("settings key: %w", err)
	}

	a := &App{
		Config: cfg,
		DB:     db,
		Repos: Repositories{
			Users:           postgresql.NewUserRepository(db),
			Employees:       postgresql.NewEmployeeRepository(db),
			Reconciliations: postgresql.NewReconciliationRepository(db),
			Attendance:      postgresql.NewAttendanceRepository(db),
			Templates:       postgresql.NewTemplateRepository(db),
			Settings:        postgresql.NewSettingsRepository(db, box),
			Notifications:   postgresql.NewNotificationRepository(db),
			Devices:         postgresql.NewDeviceRepository(db),
			Advances:        postgresql.NewAdvanceSalaryRepository(db),
			Visits:          postgresql.NewVisitRepository(db),
			Tasks:           postgresql.NewTaskRepository(db),
		},
		JWT: jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration),
	}

	fbApp, err := newFirebaseApp(ctx, cfg)
	if err != nil {
		db.Close()
		return nil, err
	}

	if a.Verifier, err = newVerifier(ctx, cfg, a.JWT, fbApp); err != nil {
		db.Close()
		return nil, err
	}

	var push dispatch.PushSender
	if fbApp != nil {
		client, err := fcm.NewClient(ctx, fbApp)
		if err != nil {
			db.Close()
			return nil, err
		}
		push = client
	} else {
		slog.Warn("Firebase not configured, push notifications are inbox-only")
	}

	loc := cfg.Location()
	flags, err := attendance.NewCutoffFlagResolver(cfg.Attendance.LateAfter, cfg.Attendance.HalfDayAfter)
	if err != nil {
		db.Close()
		return nil, err
	}

	a.Inbox = notificationService.NewNotificationService(a.Repos.Notifications, a.Repos.Devices, sse.NewHub(), notificationService.Config{})
	a.Reconciliation = reconciliationService.NewReconciliationService(
		postgresql.NewTransactor(db),
		a.Repos.Reconciliations,
		a.Repos.Attendance,
		a.Repos.Employees,
		flags,
		loc,
	)
	a.Renderer = templateService.NewRenderer(a.Repos.Templates, templateService.Branding{
		AppName:     cfg.Branding.AppName,
		CompanyName: cfg.Branding.CompanyName,
	}, loc)
	a.Recipients = recipient.NewRecipientResolver(a.Repos.Users, a.Repos.Employees)

	ttl := cfg.Notification.SettingsCacheTTL
	parallelism := cfg.Notification.Parallelism
	a.Dispatchers = []notify.Dispatcher{
		dispatch.NewEmailDispatcher(a.Repos.Settings, email.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
			FromName: cfg.SMTP.FromName,
		}, ttl, parallelism),
		dispatch.NewWhatsAppDispatcher(a.Repos.Settings, ttl, parallelism),
		dispatch.NewPushDispatcher(a.Inbox, a.Repos.Devices, push),
		dispatch.NewTelegramDispatcher(a.Repos.Settings, channel.TelegramSettings{
			BotToken:    cfg.Telegram.BotToken,
			GroupChatID: cfg.Telegram.GroupChatID,
			Enabled:     cfg.Telegram.BotToken != "" && cfg.Telegram.GroupChatID != "",
		}, ttl),
	}

	a.Notifier = notifier.NewNotifier(
		a.Repos.Reconciliations,
		a.Repos.Advances,
		a.Repos.Visits,
		a.Repos.Tasks,
		a.Recipients,
		a.Renderer,
		a.Dispatchers,
		notifier.Config{
			Parallelism:  parallelism,
			Location:     loc,
			CurrencyCode: cfg.Branding.CurrencyCode,
		},
	)
	a.Background = notifier.NewDetached(cfg.Notification.DispatchTimeout)

	return a, nil
}

// Dispatcher returns the dispatcher for ch, or nil.
func (a *App) Dispatcher(ch template.Channel) notify.Dispatcher {
	for _, d := range a.Dispatchers {
		if d.Channel() == ch {
			return d
		}
	}
	return nil
}

// Close waits for follow-up notifications, flushes the inbox queue and
// closes the pool, in that order.
func (a *App) Close() {
	a.Background.Wait()
	a.Inbox.Stop()
	a.DB.Close()
}

func newFirebaseApp(ctx context.Context, cfg *config.Config) (*firebase.App, error) {
	if cfg.Firebase.ProjectID == "" {
		return nil, nil
	}
	return firebaseapp.New(ctx, cfg.Firebase.ProjectID, cfg.Firebase.CredentialsFile)
}

func newVerifier(ctx context.Context, cfg *config.Config, jwtService jwt.Service, fbApp *firebase.App) (identity.Verifier, error) {
	if cfg.Auth.Provider != "firebase" {
		return identity.NewJWTVerifier(jwtService), nil
	}
	if fbApp == nil {
		return nil, fmt.Errorf("firebase auth requires FIREBASE_PROJECT_ID")
	}
	client, err := fbApp.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create firebase auth client: %w", err)
	}
	return identity.NewFirebaseVerifier(client), nil
}
