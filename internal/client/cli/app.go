package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"

	"github.com/dvoronkov/petvault/internal/client/config"
	"github.com/dvoronkov/petvault/internal/client/models"
	"github.com/dvoronkov/petvault/internal/client/netmon"
	"github.com/dvoronkov/petvault/internal/client/remote"
	"github.com/dvoronkov/petvault/internal/client/services"
	"github.com/dvoronkov/petvault/internal/client/session"
	"github.com/dvoronkov/petvault/internal/client/store"
	"github.com/dvoronkov/petvault/internal/client/syncer"
	"github.com/dvoronkov/petvault/internal/logging"

	_ "modernc.org/sqlite"
)

// App owns the wired client: local store, sync engine, services, and the
// interactive loop state. Everything works without a remote; sync is an
// add-on selected by configuration.
type App struct {
	config      *config.Config
	store       *store.Store
	engine      *syncer.Engine
	authService services.AuthService
	petService  services.PetService
	log         logging.Logger

	session *models.Session
	reader  *bufio.Reader
}

// NewApp opens the local database, builds the configured remote adapter
// (if any), and wires services and the sync engine around them.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	s, err := store.Open(ctx, c.LocalDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open local store: %w", err)
	}

	var rs remote.Store
	if c.SyncEnabled() {
		switch c.RemoteDriver {
		case config.DriverPostgres:
			rs, err = remote.NewPostgresStore(ctx, c.RemoteEndpoint)
			if err != nil {
				_ = s.Close()
				return nil, fmt.Errorf("failed to init remote store: %w", err)
			}
		case config.DriverHTTP:
			rs = remote.NewHTTPStore(c.RemoteEndpoint, c.RemoteAuthToken)
		default:
			_ = s.Close()
			return nil, fmt.Errorf("unknown remote driver %q", c.RemoteDriver)
		}
	}

	monitor := netmon.New(rs, c.ProbeTimeout, log)
	engine := syncer.New(s, rs, monitor, c.SyncInterval, log)
	sessions := session.New(s.Metadata(), c.SessionFilePath, c.SessionTTL, log)

	return &App{
		config:      c,
		store:       s,
		engine:      engine,
		authService: services.NewAuthService(s, sessions),
		petService:  services.NewPetService(s),
		log:         log,
		reader:      bufio.NewReader(os.Stdin),
	}, nil
}

// Run restores a persisted session, starts the background sync scheduler,
// and hands control to the REPL. It blocks until the user exits or ctx is
// cancelled.
func (a *App) Run(ctx context.Context) {
	defer a.Close()

	if sess, err := a.authService.Restore(ctx); err != nil {
		a.log.Warn(ctx, "failed to restore session", "error", err)
	} else if sess != nil {
		a.setSession(sess)
		printlnFn(fmt.Sprintf("Welcome back, %s!", sess.Username))
	}

	if a.config.SyncEnabled() {
		go a.engine.Run(ctx)
		a.engine.Trigger()
	}

	printlnFn("PetVault CLI (type 'help' for commands)")
	runREPL(ctx, a, a.getStatus, bufio.NewScanner(os.Stdin))
}

// Close releases the local store.
func (a *App) Close() {
	if err := a.store.Close(); err != nil {
		a.log.Error(context.Background(), "failed to close store", "error", err)
	}
}

func (a *App) isLoggedIn() bool {
	return a.session != nil
}

func (a *App) setSession(s *models.Session) {
	a.session = s
	if s != nil {
		a.engine.SetUser(s.UserID)
	} else {
		a.engine.SetUser("")
	}
}

// getStatus renders the prompt suffix: username plus sync state.
func (a *App) getStatus() string {
	s := ""
	if a.session != nil {
		s = a.session.Username + " "
	}
	if a.config.SyncEnabled() {
		if a.engine.Status().Online {
			s += "online"
		} else {
			s += "offline"
		}
	} else {
		s += "local"
	}
	return fmt.Sprintf("(%s)", s)
}
