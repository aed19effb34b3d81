package cmd

import (
	"context"
	"fmt"
	"net/http"
	"syscall"
	"time"

	"git.sr.ht/~mariusor/lw"
	w "git.sr.ht/~mariusor/wrapper"
	"github.com/urfave/cli"

	"git.sr.ht/~pdg/lectern/ical"
)

var Server = cli.Command{
	Name:  "start",
	Usage: "Starts the iCal serving server",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  "debug",
			Usage: "Output debug messages",
		},
		&cli.StringFlag{
			Name:  "host",
			Usage: "Set hostname on which to listen to",
			Value: "localhost",
		},
		&cli.IntFlag{
			Name:  "port",
			Usage: "Set the port on which to listen to",
			Value: 9999,
		},
	},
	Action: serverStart,
}

var wait = 100 * time.Millisecond

func logRequests(l logFn, next http.Handler) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		st := time.Now()
		next.ServeHTTP(rw, r)
		l("%s %s %s", r.Method, r.URL.Path, time.Since(st))
	})
}

func serverStart(c *cli.Context) error {
	listen := fmt.Sprintf("%s:%d", c.String("host"), c.Int("port"))
	logger := lw.Dev()
	logger.Infof("Listening on %s", listen)

	path := c.GlobalString("path")
	routes := logRequests(logger.Infof, ical.Routes(path, AppVersion))
	// Get start/stop functions for the http server
	srvRun, srvStop := w.HttpServer(w.Handler(routes), w.OnTCP(listen))
	w.RegisterSignalHandlers(w.SignalHandlers{
		syscall.SIGHUP: func(_ chan int) {
			logger.Infof("SIGHUP received, reloading configuration")
		},
		syscall.SIGINT: func(exit chan int) {
			logger.Infof("SIGINT received, stopping")
			exit <- 0
		},
		syscall.SIGTERM: func(exit chan int) {
			logger.Infof("SIGTERM received, force stopping")
			exit <- 0
		},
		syscall.SIGQUIT: func(exit chan int) {
			logger.Infof("SIGQUIT received, force stopping with core-dump")
			exit <- 0
		},
	}).Exec(func() error {
		if err := srvRun(); err != nil {
			logger.Errorf("Error: %s", err)
			return err
		}
		var err error
		// Doesn't block if no connections, but will otherwise wait until the timeout deadline.
		go func(e error) {
			ctx, cancel := context.WithTimeout(context.Background(), wait)
			defer cancel()
			if err = srvStop(ctx); err != nil {
				logger.Errorf("Error: %s", err)
			}
		}(err)
		return err
	})

	return nil
}
