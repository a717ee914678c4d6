package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/1broseidon/wintile/internal/ipc"
	"github.com/1broseidon/wintile/internal/mcp"
)

func printMCPUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: wintile mcp serve")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Start the MCP server on stdio. Tool calls are forwarded to the running")
	fmt.Fprintln(w, "daemon, so start 'wintile daemon' first.")
}

func runMCP(args []string) int {
	if len(args) == 0 {
		printMCPUsage(os.Stderr)
		return 2
	}

	switch args[0] {
	case "serve":
		if len(args) > 1 {
			if isHelp(args[1]) {
				printMCPUsage(os.Stdout)
				return 0
			}
			fmt.Fprintln(os.Stderr, "mcp serve takes no arguments")
			return 2
		}
		return runMCPServe()
	case "help", "-h", "--help":
		printMCPUsage(os.Stdout)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Unknown mcp command: %s\n\n", args[0])
		printMCPUsage(os.Stderr)
		return 2
	}
}

func runMCPServe() int {
	client := ipc.NewClient()
	if err := client.Ping(); err != nil {
		log.Printf("Warning: %v; tool calls will fail until the daemon starts", err)
	}

	server := mcp.NewServer(client)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	if err := server.Run(ctx); err != nil && ctx.Err() == nil {
		log.Printf("MCP server error: %v", err)
		return 1
	}
	return 0
}
