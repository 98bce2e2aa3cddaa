package main

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"time"

	system "github.com/kildevaeld/go-system"
	"github.com/kildevaeld/mocker"
	"github.com/kildevaeld/mocker/middlewares/logger"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

const version = "0.1.0"

const shutdownTimeout = 5 * time.Second

func main() {

	if err := system.Run(wrappedMain); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		os.Exit(1)
	}

}

type options struct {
	cfg     mocker.Config
	logFile string
	// done is set when the command line only asked for help or the version.
	done bool
}

// parseArgs reads the command line without the program name. Help and
// version output goes to out.
func parseArgs(name string, args []string, out io.Writer) (options, error) {
	o := options{cfg: mocker.DefaultConfig()}

	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(out)

	fs.StringVarP(&o.cfg.Port, "port", "p", o.cfg.Port, "port to listen on")
	fs.BoolVarP(&o.cfg.Watch, "watch", "w", false, "keep handlers loaded and reload them when files change")
	fs.BoolVarP(&o.cfg.Debug, "debug", "d", false, "log every request")
	fs.BoolVar(&o.cfg.CORS, "cors", false, "send CORS headers")
	fs.StringVar(&o.cfg.MetricsAddress, "metrics", "", "serve prometheus metrics on this address")
	fs.StringVar(&o.logFile, "log-file", "", "write JSON logs to this file")
	help := fs.BoolP("help", "h", false, "show this help")
	showVersion := fs.BoolP("version", "v", false, "show version")

	fs.Usage = func() {
		fmt.Fprintf(out, "Usage: %s [directory] [options]\n\n", name)
		fmt.Fprintf(out, "directory defaults to %q, relative to the working directory.\n\n", mocker.DefaultDir)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return o, err
	}

	switch {
	case *help:
		fs.Usage()
		o.done = true
	case *showVersion:
		fmt.Fprintln(out, version)
		o.done = true
	case fs.NArg() > 1:
		return o, fmt.Errorf("expected one directory, got %d arguments", fs.NArg())
	case fs.NArg() == 1:
		o.cfg.Dir = fs.Arg(0)
	}

	return o, nil
}

func wrappedMain(kill system.KillChannel) error {

	o, err := parseArgs(os.Args[0], os.Args[1:], os.Stdout)
	if err != nil || o.done {
		return err
	}
	cfg := o.cfg

	log := logger.NewLog(o.logFile, cfg.Debug)
	defer log.Sync()
	zap.ReplaceGlobals(log)

	server, err := mocker.NewFromConfig(cfg)
	if err != nil {
		return err
	}

	l, err := net.Listen("tcp", cfg.Address())
	if err != nil {
		server.Close()
		return err
	}

	go func() {
		<-kill
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			zap.L().Error("shutdown", zap.Error(err))
		}
	}()

	fmt.Printf("Mock server is running in http://localhost:%s\n", cfg.Port)
	zap.L().Debug("serving handlers", zap.String("dir", cfg.Dir), zap.Bool("watch", cfg.Watch))

	if err := server.Serve(l); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
