package main

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/Lixing-Zhang/potluck/internal/backend"
	"github.com/Lixing-Zhang/potluck/internal/config"
	"github.com/Lixing-Zhang/potluck/internal/layout"
	"github.com/Lixing-Zhang/potluck/internal/models"
	"github.com/Lixing-Zhang/potluck/internal/potluck"
	"github.com/Lixing-Zhang/potluck/pkg/logger"
)

// EnvAdminPassword is read when -password is not given.
const EnvAdminPassword = "POTLUCK_ADMIN_PASSWORD"

// Exit codes
const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	term := streams{in: stdin, out: stdout, err: stderr}

	fs := flag.NewFlagSet("potluck", flag.ContinueOnError)
	fs.SetOutput(stderr)
	backendURL := fs.String("backend", "", "backend base URL (default $BACKEND_URL)")
	timeout := fs.Duration("timeout", 0, "per-request timeout, 0 for none (default $BACKEND_TIMEOUT seconds)")
	logLevel := fs.String("log-level", "warn", "log level: debug, info, warn or error")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: potluck [flags] summary|list|submit|admin ...")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return exitUsage
	}

	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintln(stderr, err)
		return exitError
	}
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitError
	}
	if *backendURL != "" {
		cfg.Backend.URL = *backendURL
	}
	if *timeout == 0 {
		*timeout = time.Duration(cfg.Backend.Timeout) * time.Second
	}

	log := logger.NewWithFormat(*logLevel, "text", stderr)
	client := backend.NewClient(cfg.Backend.URL, log, backend.WithTimeout(*timeout))
	state := potluck.New(client, cfg.Categories, log)
	if err := state.Load(ctx); err != nil {
		fmt.Fprintln(stderr, "warning: could not load entries:", err)
	}

	cmd, rest := fs.Arg(0), fs.Args()[1:]
	switch cmd {
	case "summary":
		return summaryCmd(state, term)
	case "list":
		return listCmd(state, rest, term)
	case "submit":
		return submitCmd(ctx, state, rest, term)
	case "admin":
		return adminCmd(ctx, state, rest, term)
	default:
		fmt.Fprintf(stderr, "unknown command %q\n", cmd)
		fs.Usage()
		return exitUsage
	}
}

func summaryCmd(state *potluck.State, term streams) int {
	tw := tabwriter.NewWriter(term.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CATEGORY\tSERVING\tTAKEN\tMAX\tREMAINING")
	for _, c := range state.Summary() {
		remaining := fmt.Sprint(c.Remaining)
		if !c.Available {
			remaining = "full"
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\n", c.Name, c.Label, c.Total, c.Max, remaining)
	}
	_ = tw.Flush()
	return exitOK
}

func listCmd(state *potluck.State, args []string, term streams) int {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	fs.SetOutput(term.err)
	page := fs.Int("page", 1, "page to show, most recent entries first")
	size := fs.Int("size", layout.DefaultBreakpoints.Derive(layout.DefaultWidth).PageSize, "entries per page")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	v := state.View(*page, *size)
	if v.TotalEntries == 0 {
		fmt.Fprintln(term.out, "No entries yet.")
		return exitOK
	}

	tw := tabwriter.NewWriter(term.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tNAME\tCATEGORY\tDISH\tQTY")
	for _, row := range v.Entries {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\n", row.Index, row.Name, row.Category, row.Dish, row.Quantity)
	}
	_ = tw.Flush()
	fmt.Fprintf(term.out, "page %d of %d (%d entries)\n", v.Page, v.Pages, v.TotalEntries)
	return exitOK
}

func submitCmd(ctx context.Context, state *potluck.State, args []string, term streams) int {
	fs := flag.NewFlagSet("submit", flag.ContinueOnError)
	fs.SetOutput(term.err)
	name := fs.String("name", "", "your name")
	dish := fs.String("dish", "", "dish you will bring")
	category := fs.String("category", "", "category; must have capacity left")
	quantity := fs.Int("quantity", 1, "servings, capped at what the category has left")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	if err := state.SetForm(potluck.Form{Name: *name, Category: *category, Dish: *dish, Quantity: *quantity}); err != nil {
		fmt.Fprintf(term.err, "%s: %v (available: %s)\n", *category, err, strings.Join(availableNames(state), ", "))
		return exitError
	}
	staged := state.Form().Quantity

	if err := state.Submit(ctx); err != nil {
		if msg := state.FormMessage(); msg != "" {
			fmt.Fprintln(term.err, msg)
		} else {
			fmt.Fprintln(term.err, err)
		}
		return exitError
	}
	if staged != *quantity {
		fmt.Fprintf(term.out, "Quantity reduced to %d.\n", staged)
	}
	fmt.Fprintln(term.out, state.FormMessage())
	return exitOK
}

func availableNames(state *potluck.State) []string {
	return potluck.AvailableCategories(state.Summary())
}

func adminCmd(ctx context.Context, state *potluck.State, args []string, term streams) int {
	if len(args) == 0 {
		fmt.Fprintln(term.err, "usage: potluck admin export|delete|edit [flags]")
		return exitUsage
	}
	sub, args := args[0], args[1:]

	fs := flag.NewFlagSet("admin "+sub, flag.ContinueOnError)
	fs.SetOutput(term.err)
	password := fs.String("password", "", "admin password (default $"+EnvAdminPassword+")")

	var (
		out      *string
		index    *int
		yes      *bool
		name     *string
		dish     *string
		category *string
		quantity *int
	)
	switch sub {
	case "export":
		out = fs.String("out", ".", "directory to write "+potluck.ExportFilename+" into")
	case "delete":
		index = fs.Int("index", -1, "entry number as shown by list")
		yes = fs.Bool("yes", false, "do not ask for confirmation")
	case "edit":
		index = fs.Int("index", -1, "entry number as shown by list")
		name = fs.String("name", "", "new name")
		dish = fs.String("dish", "", "new dish")
		category = fs.String("category", "", "new category")
		quantity = fs.Int("quantity", 0, "new quantity")
	default:
		fmt.Fprintf(term.err, "unknown admin command %q\n", sub)
		return exitUsage
	}
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	if *password == "" {
		*password = os.Getenv(EnvAdminPassword)
	}
	if err := state.Login(ctx, *password); err != nil {
		fmt.Fprintln(term.err, state.AdminMessage())
		return exitError
	}

	switch sub {
	case "export":
		return exportCmd(ctx, state, *out, term)
	case "delete":
		return deleteCmd(ctx, state, *index, *yes, term)
	default:
		set := map[string]bool{}
		fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
		return editCmd(ctx, state, *index, func(e *models.Entry) {
			if set["name"] {
				e.Name = *name
			}
			if set["dish"] {
				e.Dish = *dish
			}
			if set["category"] {
				e.Category = *category
			}
			if set["quantity"] {
				e.Quantity = *quantity
			}
		}, term)
	}
}

func exportCmd(ctx context.Context, state *potluck.State, dir string, term streams) int {
	var buf bytes.Buffer
	filename, err := state.Export(ctx, &buf)
	if err != nil {
		fmt.Fprintln(term.err, state.AdminMessage())
		return exitError
	}

	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		fmt.Fprintf(term.err, "failed to save export: %v\n", err)
		return exitError
	}
	fmt.Fprintf(term.out, "Saved %s (%d bytes)\n", path, buf.Len())
	return exitOK
}

func deleteCmd(ctx context.Context, state *potluck.State, index int, yes bool, term streams) int {
	confirm := func(i int, e models.Entry) bool {
		if yes {
			return true
		}
		fmt.Fprintf(term.out, "Delete #%d %s: %s (%s, %d)? [y/N] ", i, e.Name, e.Dish, e.Category, e.Quantity)
		answer, _ := bufio.NewReader(term.in).ReadString('\n')
		answer = strings.ToLower(strings.TrimSpace(answer))
		return answer == "y" || answer == "yes"
	}

	err := state.Delete(ctx, index, confirm)
	switch {
	case errors.Is(err, potluck.ErrDeleteNotConfirmed):
		fmt.Fprintln(term.out, "Cancelled.")
		return exitOK
	case errors.Is(err, potluck.ErrNoSuchEntry):
		fmt.Fprintf(term.err, "no entry #%d\n", index)
		return exitError
	case err != nil:
		fmt.Fprintln(term.err, state.AdminMessage())
		return exitError
	}
	fmt.Fprintln(term.out, state.AdminMessage())
	return exitOK
}

func editCmd(ctx context.Context, state *potluck.State, index int, apply func(*models.Entry), term streams) int {
	if err := state.BeginEdit(index); err != nil {
		fmt.Fprintf(term.err, "no entry #%d\n", index)
		return exitError
	}
	edit, _ := state.Editing()
	draft := edit.Draft
	apply(&draft)
	if err := state.UpdateDraft(draft); err != nil {
		fmt.Fprintln(term.err, err)
		return exitError
	}

	if err := state.SaveEdit(ctx); err != nil {
		if msg := state.EditMessage(); msg != "" {
			fmt.Fprintln(term.err, msg)
		} else {
			fmt.Fprintln(term.err, err)
		}
		return exitError
	}
	fmt.Fprintln(term.out, state.AdminMessage())
	return exitOK
}
