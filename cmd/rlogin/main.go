// Command rlogin is a terminal client for the rlogin package, mainly
// useful for exercising a server by hand.
package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/charmbracelet/lipgloss/v2"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/rloginhq/rlogin"
	"github.com/rloginhq/rlogin/rlutil"
)

var statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true)

func main() {
	app := &cli.App{
		Name:      "rlogin",
		Usage:     "connect to a remote host over RLOGIN",
		ArgsUsage: "host[:port]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "login", Usage: "remote login name", EnvVars: []string{"USER"}},
			&cli.StringFlag{Name: "term", Value: os.Getenv("TERM"), Usage: "terminal type reported to the server"},
			&cli.IntFlag{Name: "timeout", Value: 10, Usage: "connect timeout, in seconds"},
			&cli.BoolFlag{Name: "debug", Usage: "log protocol traffic to stderr"},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatalln(err)
	}
}

func run(cctx *cli.Context) error {
	if cctx.NArg() != 1 {
		return cli.Exit("syntax: rlogin [options] host[:port]", 1)
	}

	host, port := splitHostPort(cctx.Args().First())
	localUser := os.Getenv("USER")
	if localUser == "" {
		localUser = "unknown"
	}
	serverUser := cctx.String("login")
	if serverUser == "" {
		serverUser = localUser
	}

	props := rlogin.DefaultProperties()
	if w, h, err := term.GetSize(int(os.Stdin.Fd())); err == nil {
		props.Columns, props.Rows = w, h
	}

	conn, err := rlogin.DialProperties(rlogin.Options{
		Host:           host,
		Port:           port,
		ClientUser:     localUser,
		ServerUser:     serverUser,
		TermType:       cctx.String("term"),
		ConnectTimeout: cctx.Int("timeout"),
	}, props)
	if err != nil {
		return err
	}
	defer conn.Close()

	if cctx.Bool("debug") {
		logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
		rlutil.NewDebugLog(conn, logger, rlutil.DebugLogConfig{
			DataLevel:       rlutil.LevelNone,
			ErrorLevel:      slog.LevelError,
			CloseLevel:      slog.LevelInfo,
			ModeChangeLevel: slog.LevelDebug,
		})
	}

	fmt.Fprintln(os.Stderr, statusStyle.Render(fmt.Sprintf("connected to %s:%d", host, port)))

	state, err := term.MakeRaw(int(os.Stdin.Fd()))
	if err != nil {
		return err
	}
	defer term.Restore(int(os.Stdin.Fd()), state)

	conn.OnData(func(data []byte) {
		os.Stdout.Write(data)
	})

	closed := make(chan error, 1)
	conn.OnClose(func(err error) {
		closed <- err
	})

	sigwinch := make(chan os.Signal, 1)
	signal.Notify(sigwinch, syscall.SIGWINCH)
	defer signal.Stop(sigwinch)

	var group errgroup.Group
	group.Go(func() error {
		buf := make([]byte, 4096)
		for {
			n, err := os.Stdin.Read(buf)
			if n > 0 {
				if _, werr := conn.Write(buf[:n]); werr != nil {
					return werr
				}
			}
			if err != nil {
				return conn.End(nil)
			}
		}
	})
	group.Go(func() error {
		for {
			select {
			case <-sigwinch:
				if w, h, err := term.GetSize(int(os.Stdin.Fd())); err == nil {
					p := conn.Properties()
					p.Columns, p.Rows = w, h
					if err := conn.SetProperty(p); err == nil {
						_ = conn.SendWCCS()
					}
				}
			case err := <-closed:
				return err
			}
		}
	})

	return group.Wait()
}

func splitHostPort(arg string) (string, int) {
	host, portStr, found := strings.Cut(arg, ":")
	if !found {
		return arg, 0
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return arg, 0
	}
	return host, port
}
