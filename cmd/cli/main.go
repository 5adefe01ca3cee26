package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	baseURL string
	timeout time.Duration
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "duesledger-cli",
		Short: "DuesLedger CLI tool",
		Long:  `A command line interface for interacting with the DuesLedger API.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the DuesLedger API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")

	// Ledger commands
	ledgerCmd := &cobra.Command{
		Use:   "ledger",
		Short: "Ledger operations",
	}
	ledgerCmd.AddCommand(consistencyCmd())
	rootCmd.AddCommand(ledgerCmd)

	// Billing commands
	billingCmd := &cobra.Command{
		Use:   "billing",
		Short: "Recurring billing operations",
	}
	billingCmd.AddCommand(billingRunCmd())
	rootCmd.AddCommand(billingCmd)

	// Charge commands
	chargesCmd := &cobra.Command{
		Use:   "charges",
		Short: "Charge reconciliation operations",
	}
	chargesCmd.AddCommand(chargesSyncCmd())
	rootCmd.AddCommand(chargesCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func consistencyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "consistency",
		Short: "Check that the ledger balances to zero",
		Run: func(cmd *cobra.Command, args []string) {
			checkConsistency()
		},
	}
}

func billingRunCmd() *cobra.Command {
	var today string
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run billing for every member with a plan",
		Run: func(cmd *cobra.Command, args []string) {
			body := map[string]string{}
			if today != "" {
				body["today"] = today
			}
			runPost("/api/v1/billing/run", body, "Billing run")
		},
	}
	cmd.Flags().StringVar(&today, "today", "", "Billing date (YYYY-MM-DD, default today)")
	return cmd
}

func chargesSyncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Reconcile all non-terminal charges with the gateway",
		Run: func(cmd *cobra.Command, args []string) {
			runPost("/api/v1/charges/sync", nil, "Charge sync")
		},
	}
}

func checkConsistency() {
	client := &http.Client{Timeout: timeout}
	resp, err := client.Get(baseURL + "/api/v1/ledger/consistency")
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		fmt.Printf("Consistency check FAILED (Status: %d)\nResponse: %s\n", resp.StatusCode, truncate(string(body), 500))
		os.Exit(1)
	}

	var result map[string]any
	if err := json.Unmarshal(body, &result); err != nil {
		fmt.Printf("Failed to parse response: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Consistency check PASSED\n")
	printJSON(result)
}

func runPost(path string, payload any, label string) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			fmt.Printf("Failed to encode request: %v\n", err)
			os.Exit(1)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequest(http.MethodPost, baseURL+path, body)
	if err != nil {
		fmt.Printf("Error building request: %v\n", err)
		os.Exit(1)
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: timeout}
	resp, err := client.Do(req)
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		fmt.Printf("%s FAILED (Status: %d)\nResponse: %s\n", label, resp.StatusCode, truncate(string(data), 500))
		os.Exit(1)
	}

	var result map[string]any
	if err := json.Unmarshal(data, &result); err != nil {
		fmt.Printf("Failed to parse response: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("%s OK\n", label)
	printJSON(result)
}

func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("Failed to format output: %v\n", err)
		return
	}
	fmt.Println(string(data))
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
