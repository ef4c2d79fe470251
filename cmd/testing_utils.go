// Package cmd contains testing utilities shared between command tests.
// This file provides common functions for setting up test environments,
// capturing output, and running the CLI in-process.
package cmd

import (
	"bytes"
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/PolarWolf314/xpm/internal/configs"
	"github.com/PolarWolf314/xpm/internal/secrets"

	"github.com/spf13/cobra"
)

// setupTestEnvironment points xpm's data and config directories at a temp
// directory, clears environment overrides, and sets XPM_KEY to a fresh raw
// key, which it returns.
func setupTestEnvironment(t *testing.T, dataDir string) string {
	t.Helper()

	originalSettings := configs.XpmSettings
	configs.XpmSettings = configs.NewSettings(dataDir, filepath.Join(t.TempDir(), "config"))

	_, keyText, err := secrets.GenerateKey()
	if err != nil {
		t.Fatalf("Failed to generate key: %v", err)
	}

	t.Setenv("NO_COLOR", "1")
	t.Setenv(configs.EnvKey, keyText)
	t.Setenv(configs.EnvVault, "")
	t.Setenv(configs.EnvWorkers, "")
	t.Setenv(configs.EnvExportPassword, "")
	t.Setenv(configs.EnvImportPassword, "")

	ResetGlobalState()
	t.Cleanup(func() {
		configs.XpmSettings = originalSettings
		ResetGlobalState()
	})

	return keyText
}

// captureOutput captures both stdout and stderr during function execution.
func captureOutput(fn func() error) (string, error) {
	originalStdout := os.Stdout
	originalStderr := os.Stderr

	stdoutReader, stdoutWriter, _ := os.Pipe()
	stderrReader, stderrWriter, _ := os.Pipe()

	os.Stdout = stdoutWriter
	os.Stderr = stderrWriter

	stdoutChan := make(chan string, 1)
	stderrChan := make(chan string, 1)

	go func() {
		var buf bytes.Buffer
		if _, err := io.Copy(&buf, stdoutReader); err != nil {
			log.Fatalf("Failed to run copy command: %s", err)
		}
		stdoutChan <- buf.String()
	}()

	go func() {
		var buf bytes.Buffer
		if _, err := io.Copy(&buf, stderrReader); err != nil {
			log.Fatalf("Failed to run copy command: %s", err)
		}
		stderrChan <- buf.String()
	}()

	err := fn()

	stdoutWriter.Close()
	stderrWriter.Close()

	os.Stdout = originalStdout
	os.Stderr = originalStderr

	return <-stdoutChan + <-stderrChan, err
}

// createTestCLI creates a complete CLI instance for testing with the given arguments.
func createTestCLI(args ...string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:              "xpm",
		SilenceUsage:     true,
		SilenceErrors:    true,
		PersistentPreRun: PersistentPreRun,
	}
	BindGlobalFlags(rootCmd.PersistentFlags())
	rootCmd.AddCommand(Commands()...)
	rootCmd.SetArgs(args)
	return rootCmd
}

// runCLI executes xpm with args and returns everything it printed.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	ResetGlobalState()
	return captureOutput(func() error {
		return createTestCLI(args...).Execute()
	})
}
