package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/atlaserp/cashledger/internal/infrastructure/config"
	"github.com/atlaserp/cashledger/internal/infrastructure/postgres"
)

var (
	baseURL string
	timeout time.Duration
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "cashledger-cli",
		Short: "Cash ledger CLI tool",
		Long:  `A command line interface for interacting with the cash ledger API.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the cash ledger API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")

	cashboxCmd := &cobra.Command{
		Use:   "cashbox",
		Short: "Cashbox operations",
	}

	balanceCmd := &cobra.Command{
		Use:   "balance <cashbox-id>",
		Short: "Show the current balance of a cashbox",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			getJSON(fmt.Sprintf("/api/v1/cashboxes/%s", args[0]))
		},
	}

	summaryCmd := &cobra.Command{
		Use:   "summary <cashbox-id> [date]",
		Short: "Show the daily summary of a cashbox",
		Args:  cobra.RangeArgs(1, 2),
		Run: func(cmd *cobra.Command, args []string) {
			path := fmt.Sprintf("/api/v1/cashboxes/%s/summary", args[0])
			if len(args) == 2 {
				path += "?date=" + args[1]
			}
			getJSON(path)
		},
	}

	reconcileCmd := &cobra.Command{
		Use:   "reconcile <cashbox-id>",
		Short: "Replay the transaction history and correct balance drift",
		Run: func(cmd *cobra.Command, args []string) {
			postJSON(fmt.Sprintf("/api/v1/cashboxes/%s/reconcile", args[0]))
		},
	}
	reconcileCmd.Args = cobra.ExactArgs(1)

	cashboxCmd.AddCommand(balanceCmd, summaryCmd, reconcileCmd)
	rootCmd.AddCommand(cashboxCmd)

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migrations",
	}

	migrateUpCmd := &cobra.Command{
		Use:   "up [migrations-path]",
		Short: "Apply all pending migrations",
		Args:  cobra.MaximumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			runMigrations(args, postgres.RunMigrations)
		},
	}

	migrateDownCmd := &cobra.Command{
		Use:   "down [migrations-path]",
		Short: "Roll back the last migration",
		Args:  cobra.MaximumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			runMigrations(args, postgres.RunMigrationsDown)
		},
	}

	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd)
	rootCmd.AddCommand(migrateCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func runMigrations(args []string, run func(databaseURL, migrationsPath string) error) {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	path := "migrations"
	if len(args) == 1 {
		path = args[0]
	}

	if err := run(cfg.DatabaseURL, path); err != nil {
		fmt.Printf("Migration failed: %v\n", err)
		os.Exit(1)
	}
}

func getJSON(path string) {
	client := &http.Client{Timeout: timeout}
	resp, err := client.Get(baseURL + path)
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	printResponse(resp)
}

func postJSON(path string) {
	client := &http.Client{Timeout: timeout}
	resp, err := client.Post(baseURL+path, "application/json", nil)
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	printResponse(resp)
}

func printResponse(resp *http.Response) {
	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode >= 400 {
		fmt.Printf("Request FAILED (Status: %d)\nResponse: %s\n", resp.StatusCode, string(body))
		os.Exit(1)
	}

	var pretty map[string]any
	if err := json.Unmarshal(body, &pretty); err != nil {
		fmt.Println(string(body))
		return
	}

	out, _ := json.MarshalIndent(pretty, "", "  ")
	fmt.Println(string(out))
}
