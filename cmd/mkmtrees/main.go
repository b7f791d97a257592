package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ejrshadbolt/mkmtrees-sub001"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "serve":
		err = runServe()
	case "create-user":
		if len(os.Args) < 5 {
			fmt.Fprintln(os.Stderr, "Usage: mkmtrees create-user <email> <name> <password>")
			os.Exit(1)
		}
		err = runCreateUser(os.Args[2], os.Args[3], os.Args[4])
	case "reconcile-media":
		err = runReconcile()
	case "version":
		fmt.Printf("mkmtrees %s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runServe() error {
	app := mkmtrees.New(mkmtrees.ConfigFromEnv())
	defer app.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() { errc <- app.Start() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return app.Echo.Shutdown(shutdownCtx)
}

func runCreateUser(email, name, password string) error {
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters")
	}
	store, err := mkmtrees.NewStore(mkmtrees.EnvOr("DATABASE_PATH", "data/mkmtrees.db"))
	if err != nil {
		return err
	}
	defer store.Close()

	id, err := store.CreateUser(context.Background(), email, name, password)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	fmt.Printf("Created user %d (%s)\n", id, email)
	return nil
}

func runReconcile() error {
	app := mkmtrees.New(mkmtrees.ConfigFromEnv())
	defer app.Close()

	ctx := context.Background()
	if err := app.Open(ctx); err != nil {
		return err
	}
	rep, err := mkmtrees.ReconcileMedia(ctx, app.Store, app.Blob, func(format string, args ...any) {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
	})
	if err != nil {
		return err
	}
	fmt.Printf("Checked %d media rows, removed %d, %d errors\n", rep.Checked, rep.Removed, rep.Errors)
	return nil
}

func printUsage() {
	fmt.Println(`mkmtrees - site engine for the MKM Trees website

Usage:
  mkmtrees <command> [arguments]

Commands:
  serve                                 Start the web server
  create-user <email> <name> <password> Add an admin user
  reconcile-media                       Remove media rows whose file is missing
  version                               Print the version
  help                                  Show this help message

Configuration is read from the environment and an optional .env file.`)
}
