// Command potluck is a terminal client for the potluck board. It talks to
// the entry backend directly, without the HTTP server.
//
//	potluck summary
//	potluck list [-page N] [-size N]
//	potluck submit -name NAME -dish DISH -category CATEGORY [-quantity N]
//	potluck admin export [-out DIR]
//	potluck admin delete -index N [-yes]
//	potluck admin edit -index N [-name ...] [-dish ...] [-category ...] [-quantity N]
//
// Admin commands read the password from -password or POTLUCK_ADMIN_PASSWORD.
package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// streams are the terminal a command talks to.
type streams struct {
	in       io.Reader
	out, err io.Writer
}
