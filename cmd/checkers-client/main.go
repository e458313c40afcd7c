// checkers-client connects to a checkers-server, plays through the
// matchmaking handshake, and drives a local AI for the duration of the
// match.
package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/aelhage/checkersleague/pkg/ai"
	"github.com/aelhage/checkersleague/pkg/client"
	"github.com/aelhage/checkersleague/pkg/wire"
	"github.com/fatih/color"
	"github.com/seekerror/logw"
)

var (
	name    = flag.String("name", "", "Player name (required)")
	host    = flag.String("host", "localhost", "Server host")
	port    = flag.Int("port", 2004, "Server port")
	aiFlag  = flag.String("ai", "minimax", "AI strategy: minimax or random")
	statusC = color.New(color.FgCyan)
	errorC  = color.New(color.FgRed, color.Bold)
	resultC = color.New(color.FgGreen, color.Bold)
)

func init() {
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, `usage: checkers-client -name <name> [options]

checkers-client connects to a checkers-server instance and plays a match
using a local AI.

Options:
`)
		flag.PrintDefaults()
	}
}

func main() {
	flag.Parse()
	ctx := context.Background()

	if *name == "" {
		flag.Usage()
		logw.Exitf(ctx, "-name is required")
	}

	strategy, err := selectAI(*aiFlag)
	if err != nil {
		logw.Exitf(ctx, "%v", err)
	}

	addr := fmt.Sprintf("%v:%v", *host, *port)
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		logw.Exitf(ctx, "Failed to connect to %v: %v", addr, err)
	}

	c, out := client.New(wire.NewConn(conn), *name, strategy)
	go printStatus(out)

	if err := c.Run(ctx); err != nil {
		errorC.Fprintf(os.Stderr, "match ended in error: %v\n", err)
		os.Exit(1)
	}
}

func selectAI(name string) (ai.Search, error) {
	switch name {
	case "minimax":
		return &ai.Minimax{}, nil
	case "random":
		return ai.NewRandomSearch(time.Now().UnixNano()), nil
	default:
		return nil, fmt.Errorf("unknown ai strategy %q", name)
	}
}

func printStatus(out <-chan string) {
	for line := range out {
		switch {
		case strings.HasPrefix(line, "game over"):
			resultC.Println(line)
		case strings.HasPrefix(line, "error"):
			errorC.Println(line)
		default:
			statusC.Println(line)
		}
	}
}
