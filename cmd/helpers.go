package cmd

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/osaleh/aidesk/internal/api"
	"github.com/osaleh/aidesk/internal/config"
	"github.com/osaleh/aidesk/internal/credentials"
	"github.com/osaleh/aidesk/internal/datasync"
	"github.com/osaleh/aidesk/internal/session"
)

// appEnv bundles the wired core: config, credential store, backend
// client, session controller. Commands build it once per invocation.
type appEnv struct {
	cfg     *config.Config
	creds   *credentials.Store
	client  *api.Client
	session *session.Controller
	logger  *zap.Logger
}

// newLogger builds the structured logger. Console output for the
// operator goes through fmt; zap carries the diagnostic stream, which
// stays silent unless --verbose is set.
func newLogger() *zap.Logger {
	if !verbose {
		return zap.NewNop()
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// loadConfig loads and validates the config, providing a friendly hint.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `aidesk init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// newAppEnv wires the core and rehydrates the session from the
// credential store, so guard decisions never observe the unknown state.
func newAppEnv() (*appEnv, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	logger := newLogger()

	credsPath := cfg.CredentialsFile
	if credsPath == "" {
		credsPath, err = credentials.DefaultPath()
		if err != nil {
			return nil, err
		}
	}
	creds, err := credentials.Open(credsPath)
	if err != nil {
		return nil, err
	}

	client := api.New(cfg.BackendURL, cfg.Timeout(), creds, logger)
	controller := session.NewController(creds, client, logger)
	controller.Init()

	return &appEnv{
		cfg:     cfg,
		creds:   creds,
		client:  client,
		session: controller,
		logger:  logger,
	}, nil
}

// requireAuth is the route guard at the command boundary: protected
// commands produce no output unless the session is authenticated.
func (e *appEnv) requireAuth() error {
	switch session.Decide(e.session.Status()) {
	case session.DecisionRender:
		return nil
	case session.DecisionLoading:
		return fmt.Errorf("session state not initialized yet, try again")
	default:
		return fmt.Errorf("not logged in: run `aidesk login` first")
	}
}

// syncManager builds the data synchronization layer, delegating auth
// rejections back to the session controller.
func (e *appEnv) syncManager() *datasync.Manager {
	return datasync.NewManager(e.client, e.logger, datasync.Options{
		StatsTTL:       e.cfg.StatsInterval(),
		EngagementTTL:  e.cfg.EngagementInterval(),
		OnAuthRejected: e.session.HandleAuthRejected,
	})
}
