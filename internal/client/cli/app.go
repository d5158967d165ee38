// Package cli is the terminal front end of the VitalTrack client. It
// plays the roles the mobile UI normally does: a form collector that
// gathers validated field bundles, and a screen router that reacts to
// session state changes.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"

	"github.com/vitaltrack/vitaltrack/internal/client"
	"github.com/vitaltrack/vitaltrack/internal/client/api"
	"github.com/vitaltrack/vitaltrack/internal/client/config"
	"github.com/vitaltrack/vitaltrack/internal/client/repositories/kv"
	"github.com/vitaltrack/vitaltrack/internal/client/session"
	"github.com/vitaltrack/vitaltrack/internal/client/stores"
	"github.com/vitaltrack/vitaltrack/internal/cryptox"
	"github.com/vitaltrack/vitaltrack/internal/logging"
)

// Screen names the destinations the router navigates between.
type Screen string

const (
	ScreenWelcome   Screen = "welcome"
	ScreenDashboard Screen = "dashboard"
)

type App struct {
	config  *config.Config
	session *session.Session
	log     logging.Logger
	reader  *bufio.Reader

	screen Screen
}

// NewApp wires the full client stack: database, stores, gateway, auth
// client, and session, in that order.
func NewApp(cfg *config.Config) (*App, error) {
	ctx := context.Background()
	log := logging.New(cfg.DebugMode)

	db, err := client.InitDatabase(ctx, cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}

	sealer, err := cryptox.NewSealerFromKeyFile(cfg.KeyFilePath)
	if err != nil {
		return nil, fmt.Errorf("init sealer: %w", err)
	}

	secureRepo := kv.NewSQLiteRepository(db, kv.TableSecure)
	localRepo := kv.NewSQLiteRepository(db, kv.TableLocal)

	creds := stores.NewDualStore(
		stores.NewSecureBackend(secureRepo, sealer),
		stores.NewPlainBackend(localRepo),
		log,
	)
	profiles := stores.NewKVProfileStore(localRepo)

	installID, err := stores.EnsureInstallID(ctx, localRepo)
	if err != nil {
		return nil, fmt.Errorf("init install id: %w", err)
	}

	gw := api.NewGateway(cfg.APIBaseURL, cfg.RequestTimeout, creds, profiles, log,
		api.WithClientID(installID))
	authClient := api.NewAuthClient(gw, creds, profiles, log)

	a := &App{
		config: cfg,
		log:    log,
		reader: bufio.NewReader(os.Stdin),
		screen: ScreenWelcome,
	}
	a.session = session.New(authClient, creds, profiles, log,
		session.WithChangeListener(a.route))
	return a, nil
}

// route is the screen router: it reacts to session snapshots and moves
// between the welcome and dashboard screens on auth transitions.
func (a *App) route(snap session.Snapshot) {
	if snap.IsLoading {
		return
	}
	next := ScreenWelcome
	if snap.IsAuthenticated {
		next = ScreenDashboard
	}
	if next != a.screen {
		a.screen = next
		fmt.Printf("Switched to %s screen\n", next)
	}
}

// Run restores any prior session and drops into the command loop.
func (a *App) Run(ctx context.Context) {
	a.session.Initialize(ctx)
	a.Root(ctx)
}
