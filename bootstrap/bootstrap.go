package bootstrap

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"licensedesk.com/licensedesk/config"
	"licensedesk.com/licensedesk/core"
	"licensedesk.com/licensedesk/infrastructure/communication"
	"licensedesk.com/licensedesk/infrastructure/devops"
	licensing "licensedesk.com/licensedesk/licensing/core"
	"licensedesk.com/licensedesk/licensing/model"
	"licensedesk.com/licensedesk/metrics"
	"licensedesk.com/licensedesk/web/router"
)

// App holds everything a binary needs once the database is reachable.
type App struct {
	Config    *config.Config
	Logger    *zap.Logger
	DM        *core.DatabaseManager
	Activator *licensing.Activator
	Accounts  *licensing.Accounts
	Metrics   *metrics.Metrics
}

// OpenDatabase resolves the DSN (from SSM when configured), connects and
// migrates.
func OpenDatabase(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*core.DatabaseManager, error) {
	opts := cfg.DatabaseOptions()
	opts.Logger = logger

	if cfg.Database.SSMParameter != "" {
		client, err := devops.NewSSMClient(ctx)
		if err != nil {
			return nil, err
		}
		dsn, err := devops.ResolveDSN(ctx, client, cfg.Database.SSMParameter, cfg.Database.Driver)
		if err != nil {
			return nil, err
		}
		opts.DSN = dsn
	}

	dm, err := core.New(opts)
	if err != nil {
		return nil, err
	}
	if err := dm.Migrate(ctx, &model.License{}, &model.AdminUser{}); err != nil {
		dm.Close()
		return nil, err
	}
	return dm, nil
}

// Notifiers builds the configured Slack and SES notifiers, or nil.
func Notifiers(ctx context.Context, cfg *config.Config, logger *zap.Logger) licensing.Notifier {
	var notifiers communication.Multi
	n := cfg.Notifications
	if n.SlackToken != "" {
		notifiers = append(notifiers, communication.NewSlack(n.SlackToken, communication.SlackOption{
			InfoChannelID:  n.SlackInfoChannel,
			ErrorChannelID: n.SlackErrorChannel,
		}))
	}
	if n.EmailFrom != "" && len(n.EmailTo) > 0 {
		client, err := communication.NewSESClient(ctx)
		if err != nil {
			logger.Warn("email notifications disabled", zap.Error(err))
		} else {
			notifiers = append(notifiers, communication.NewEmail(client, n.EmailFrom, n.EmailTo))
		}
	}
	if len(notifiers) == 0 {
		return nil
	}
	return notifiers
}

func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	dm, err := OpenDatabase(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	app := &App{
		Config:   cfg,
		Logger:   logger,
		DM:       dm,
		Accounts: licensing.NewAccounts(dm),
		Metrics:  metrics.New(),
	}

	opts := []licensing.Option{
		licensing.WithObserver(app.Metrics),
		licensing.WithLogger(logger.Named("licensing")),
	}
	if notifier := Notifiers(ctx, cfg, logger); notifier != nil {
		opts = append(opts, licensing.WithNotifier(notifier))
	}
	app.Activator = licensing.NewActivator(licensing.NewGormStore(dm), cfg.ProgramNamePolicy(), opts...)

	if cfg.Auth.AdminUsername != "" && cfg.Auth.AdminPassword != "" {
		if _, err := app.Accounts.EnsureAdmin(ctx, cfg.Auth.AdminUsername, cfg.Auth.AdminPassword); err != nil {
			dm.Close()
			return nil, err
		}
		logger.Info("admin account ready", zap.String("username", cfg.Auth.AdminUsername))
	}
	return app, nil
}

func (a *App) Router() *gin.Engine {
	return router.Setup(router.Dependencies{
		Config:    a.Config,
		DM:        a.DM,
		Activator: a.Activator,
		Accounts:  a.Accounts,
		Metrics:   a.Metrics,
		Logger:    a.Logger,
	})
}

func (a *App) Close() error {
	return a.DM.Close()
}
