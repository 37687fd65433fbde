// Command raptoctl is an interactive client for a running raptodb server.
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/peterh/liner"
	"github.com/spf13/pflag"

	"raptodb/internal/raptoclient"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := pflag.NewFlagSet("raptoctl", pflag.ExitOnError)
	addr := fs.String("addr", "127.0.0.1:8443", "server address")
	tls := fs.Bool("tls", false, "use the encrypted session layer")
	auth := fs.String("auth", "", "password, if the server requires one")
	name := fs.String("name", "raptoctl", "display name sent to the server")

	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := raptoclient.Dial(raptoclient.Options{
		Addr:         *addr,
		TLS:          *tls,
		AuthPass:     *auth,
		DisplayName:  *name,
		DialTimeout:  5 * time.Second,
		FrameTimeout: 5 * time.Second,
	})
	if err != nil {
		return fmt.Errorf("connecting to %s: %w", *addr, err)
	}
	defer client.Close()

	return (&repl{client: client, addr: *addr}).run()
}

// repl is the interactive command loop, one line in, one response out.
type repl struct {
	client *raptoclient.Client
	addr   string
	liner  *liner.State
}

func historyFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".raptoctl_history")
}

func (r *repl) run() error {
	r.liner = liner.NewLiner()
	defer r.liner.Close()

	r.liner.SetCtrlCAborts(true)

	if f, err := os.Open(historyFile()); err == nil {
		r.liner.ReadHistory(f)
		f.Close()
	}

	fmt.Printf("raptodb %s - type a command, or 'exit' to quit.\n", r.addr)

	for {
		line, err := r.liner.Prompt("raptodb> ")
		if err != nil {
			if err == liner.ErrPromptAborted || err == io.EOF {
				fmt.Println()
				break
			}
			return fmt.Errorf("reading input: %w", err)
		}

		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		r.liner.AppendHistory(line)

		switch strings.ToLower(trimmed) {
		case "exit", "quit":
			r.saveHistory()
			return nil
		}

		if strings.EqualFold(trimmed, "DOWN") {
			// DOWN carries no response: the server takes a final snapshot
			// and closes every connection, so the read that follows is
			// expected to fail rather than return a frame.
			_, _ = r.client.Send(trimmed)
			fmt.Println("server is shutting down")
			r.saveHistory()
			return nil
		}

		resp, err := r.client.Send(trimmed)
		if err != nil {
			fmt.Fprintln(os.Stderr, "connection error:", err)
			r.saveHistory()
			return err
		}

		fmt.Println(resp)
	}

	r.saveHistory()
	return nil
}

func (r *repl) saveHistory() {
	path := historyFile()
	if path == "" {
		return
	}
	if f, err := os.Create(path); err == nil {
		r.liner.WriteHistory(f)
		f.Close()
	}
}
