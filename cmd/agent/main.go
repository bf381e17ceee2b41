package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	agent "github.com/ERRORIK404/Session_Calculator/internal/agent_application"
	conv "github.com/ERRORIK404/Session_Calculator/pkg/converter_to_RPN"
)

const requestTimeout = 10 * time.Second

// connect подключается и, если заданы логин и пароль, входит как пользователь
func connect(cmd *cobra.Command) (*agent.Agent, context.Context, context.CancelFunc) {
	addr, _ := cmd.Flags().GetString("addr")
	username, _ := cmd.Flags().GetString("username")
	password, _ := cmd.Flags().GetString("password")
	sessionKey, _ := cmd.Flags().GetString("session-key")

	a, err := agent.Dial(addr)
	if err != nil {
		log.Fatalf("error connecting to %s: %v", addr, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	if username != "" {
		if err := a.Login(ctx, username, password); err != nil {
			cancel()
			log.Fatalf("error logging in: %v", err)
		}
	} else if sessionKey != "" {
		a.SetSessionKey(sessionKey)
	}
	return a, ctx, cancel
}

var rootCmd = &cobra.Command{
	Use:   "agent",
	Short: "gRPC client for the calculator orchestrator",
}

var calcCmd = &cobra.Command{
	Use:   "calc \"12.5 / -4\"",
	Short: "Calculate a binary expression and store it in history",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		operand1, operand2, operator, err := conv.ParseBinary(args[0])
		if err != nil {
			log.Fatalf("error parsing expression: %v", err)
		}
		note, _ := cmd.Flags().GetString("note")

		a, ctx, cancel := connect(cmd)
		defer cancel()
		defer a.Close()

		hadKey := a.SessionKey()
		result, err := a.Calculate(ctx, operand1, operand2, operator, note)
		if err != nil {
			log.Fatalf("error calculating: %v", err)
		}
		fmt.Println(strconv.FormatFloat(result, 'g', -1, 64))
		if key := a.SessionKey(); key != "" && key != hadKey {
			fmt.Fprintf(os.Stderr, "guest session key: %s (pass --session-key to continue)\n", key)
		}
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Print calculation history",
	Run: func(cmd *cobra.Command, args []string) {
		a, ctx, cancel := connect(cmd)
		defer cancel()
		defer a.Close()

		items, err := a.History(ctx)
		if err != nil {
			log.Fatalf("error fetching history: %v", err)
		}
		out, err := json.MarshalIndent(items, "", "  ")
		if err != nil {
			log.Fatalf("failed to marshal history: %v", err)
		}
		fmt.Println(string(out))
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete one history item (requires login)",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			log.Fatalf("invalid id %q: %v", args[0], err)
		}

		a, ctx, cancel := connect(cmd)
		defer cancel()
		defer a.Close()

		if err := a.Delete(ctx, id); err != nil {
			log.Fatalf("error deleting history item: %v", err)
		}
		fmt.Println("History item deleted")
	},
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the whole history (requires login)",
	Run: func(cmd *cobra.Command, args []string) {
		a, ctx, cancel := connect(cmd)
		defer cancel()
		defer a.Close()

		n, err := a.Clear(ctx)
		if err != nil {
			log.Fatalf("error clearing history: %v", err)
		}
		fmt.Printf("History cleared successfully (%d deleted)\n", n)
	},
}

func main() {
	rootCmd.PersistentFlags().String("addr", "localhost:8081", "Orchestrator gRPC address.")
	rootCmd.PersistentFlags().String("username", os.Getenv("CALC_USERNAME"), "Log in as this user.")
	rootCmd.PersistentFlags().String("password", os.Getenv("CALC_PASSWORD"), "Password for --username.")
	rootCmd.PersistentFlags().String("session-key", "", "Continue an existing guest session.")
	calcCmd.Flags().String("note", "", "Optional note for the calculation.")

	rootCmd.AddCommand(calcCmd, historyCmd, deleteCmd, clearCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
