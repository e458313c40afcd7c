// checkers-server is the matchmaking server: it accepts client connections,
// pairs them, and spawns a match engine per pair.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/aelhage/checkersleague/pkg/server"
	"github.com/pkg/profile"
	"github.com/seekerror/build"
	"github.com/seekerror/logw"
)

var version = build.NewVersion(0, 1, 0)

var (
	port     = flag.Int("port", 2004, "TCP port to listen on")
	timeout  = flag.Duration("timeout", 1500*time.Millisecond, "Per-socket timeout")
	maxGames = flag.Int("max-games", 2, "Maximum number of concurrently running matches")
	players  = flag.Int("players", 2, "Players per match (reported at startup; pairing always uses 2)")
	config   = flag.String("config", "", "Optional TOML config file overlaying the flag defaults")
	doProf   = flag.Bool("profile", false, "Capture a CPU profile for the life of the process")
)

func init() {
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, `usage: checkers-server [options]

checkers-server accepts checkers clients, pairs them into matches and
referees each game until completion.

Options:
`)
		flag.PrintDefaults()
	}
}

func main() {
	flag.Parse()
	ctx := context.Background()

	if *doProf {
		defer profile.Start(profile.CPUProfile).Stop()
	}

	cfg := server.Config{Port: *port, Timeout: *timeout, MaxGames: *maxGames, NumPlayers: *players}
	if *config != "" {
		loaded, err := server.LoadConfigFile(*config, cfg)
		if err != nil {
			logw.Exitf(ctx, "Invalid config file %v: %v", *config, err)
		}
		cfg = loaded
	}

	s, err := server.New(cfg)
	if err != nil {
		logw.Exitf(ctx, "Failed to start server: %v", err)
	}
	logw.Infof(ctx, "checkers-server %v listening on %v, max_games=%v, players=%v, timeout=%v", version, s.Addr(), cfg.MaxGames, cfg.NumPlayers, cfg.Timeout)

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt)
	defer cancel()

	if err := s.Run(ctx); err != nil {
		logw.Exitf(ctx, "Server exited with error: %v", err)
	}
	logw.Infof(ctx, "checkers-server shut down cleanly")
}
