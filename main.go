package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/launchdarkly/registration-contract-tests/browser"
	"github.com/launchdarkly/registration-contract-tests/config"
	"github.com/launchdarkly/registration-contract-tests/fixtures"
	"github.com/launchdarkly/registration-contract-tests/framework"
	"github.com/launchdarkly/registration-contract-tests/framework/harness"
	"github.com/launchdarkly/registration-contract-tests/framework/ldtest"
	"github.com/launchdarkly/registration-contract-tests/regtests"

	"github.com/spf13/cobra"
)

const interruptedExitCode = 130

// errTestsFailed has already been reported by the time it is returned.
var errTestsFailed = errors.New("tests failed")

func main() {
	if err := newRootCommand().Execute(); err != nil {
		if !errors.Is(err, errTestsFailed) {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		}
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var params commandParams

	root := &cobra.Command{
		Use:   "registration-contract-tests",
		Short: "Browser tests for the user registration form",
		Long: `Runs the registration form scenarios against a running application in a real
browser. By default the application is started with "npm start" and the harness waits for it
to respond before running any tests.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSuite(cmd, &params)
		},
	}
	params.addFlags(root.PersistentFlags())

	root.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List the tests that would run with the current filters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listTests(cmd.OutOrStdout(), &params)
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "check-fixtures",
		Short: "Validate the test data without running any tests",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := params.runConfig(cmd.Flags(), os.Getenv)
			if err != nil {
				return err
			}
			store, err := loadFixtures(cfg)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d scenarios loaded from %s; all %d referenced by the tests are present\n",
				len(store.Names()), store.Source(), len(regtests.ReferencedScenarios()))
			return nil
		},
	})

	return root
}

func runSuite(cmd *cobra.Command, params *commandParams) error {
	cfg, err := params.runConfig(cmd.Flags(), os.Getenv)
	if err != nil {
		return err
	}

	// Bad test data is found before anything is launched.
	store, err := loadFixtures(cfg)
	if err != nil {
		return err
	}

	mainDebugLogger := framework.NullLogger()
	if params.debugAll {
		mainDebugLogger = log.New(os.Stdout, "", log.LstdFlags)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var webServer *harness.WebServer
	if cfg.WebServer != nil {
		webServer, err = harness.StartWebServer(ctx, *cfg.WebServer, mainDebugLogger, os.Stdout)
		if err != nil {
			return fmt.Errorf("application did not start: %w", err)
		}
		defer webServer.Stop()
		if !webServer.Launched() {
			fmt.Printf("Using the application already running at %s\n", cfg.WebServer.URL)
		}
	}

	launcher, err := browser.Launch(cfg, mainDebugLogger)
	if err != nil {
		return err
	}
	defer func() {
		if err := launcher.Close(); err != nil {
			mainDebugLogger.Printf("Error closing browser: %s", err)
		}
	}()

	// The application runs in its own process group, so an interrupt does not reach it.
	finished := make(chan struct{})
	defer close(finished)
	go func() {
		<-ctx.Done()
		select {
		case <-finished:
			return
		default:
		}
		fmt.Fprintln(os.Stderr, "\nInterrupted")
		_ = launcher.Close()
		if webServer != nil {
			webServer.Stop()
		}
		os.Exit(interruptedExitCode)
	}()

	fmt.Println()
	params.filters.Describe(os.Stdout)
	fmt.Printf("Running test suite against %s with %d worker(s)\n", cfg.BaseURL, cfg.Workers)

	testLogger := &ConsoleTestLogger{
		Out:                  os.Stdout,
		DebugOutputOnFailure: params.debug || params.debugAll,
		DebugOutputOnSuccess: params.debugAll,
	}
	results := regtests.RunTestSuite(
		regtests.Environment{Sessions: launcher, Fixtures: store, ExpectTimeout: cfg.ExpectTimeout},
		params.suiteConfig(cfg, testLogger),
	)

	fmt.Println()
	printResults(os.Stdout, results)
	if !results.OK() {
		return errTestsFailed
	}
	return nil
}

func listTests(out io.Writer, params *commandParams) error {
	results := regtests.RunTestSuite(regtests.Environment{}, ldtest.Config{
		Filter:   params.filters.AsFilter,
		ListOnly: true,
	})
	for _, r := range results.Tests {
		fmt.Fprintln(out, r.TestID)
	}
	return nil
}

func loadFixtures(cfg config.RunConfig) (*fixtures.Store, error) {
	var store *fixtures.Store
	var err error
	if cfg.FixturesPath == "" {
		store, err = fixtures.Default()
	} else {
		store, err = fixtures.LoadFile(cfg.FixturesPath)
	}
	if err != nil {
		return nil, err
	}
	if err := store.Require(regtests.ReferencedScenarios()...); err != nil {
		return nil, err
	}
	return store, nil
}
