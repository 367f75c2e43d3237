// hanabi-chat is a terminal REPL for talking to the Hanabi assistant without
// a Matrix homeserver. It keeps everything in memory: no database, no
// persistence across runs.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/bdobrica/Hanabi/internal/hanabi/agent"
	"github.com/bdobrica/Hanabi/internal/hanabi/app"
	"github.com/bdobrica/Hanabi/internal/hanabi/clock"
	"github.com/bdobrica/Hanabi/internal/hanabi/config"
	"github.com/bdobrica/Hanabi/internal/hanabi/convo"
	"github.com/bdobrica/Hanabi/internal/hanabi/llm"
	"github.com/bdobrica/Hanabi/internal/hanabi/memory"
	"github.com/bdobrica/Hanabi/internal/hanabi/moderation"
	"github.com/bdobrica/Hanabi/internal/hanabi/observability"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	observability.Setup(cfg.Log.Level, cfg.Log.Format)

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	clk := clock.System{}
	provider := llm.NewOpenAI(llm.OpenAIConfig{
		APIKey:  cfg.LLM.APIKey,
		BaseURL: cfg.LLM.BaseURL,
		Model:   cfg.LLM.Model,
		Timeout: cfg.LLM.Timeout,
	})

	registry, err := app.BuildRegistry(cfg, clk)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build tool registry: %v\n", err)
		os.Exit(1)
	}

	mem := memory.NewChatMemory(clk)
	summariser := memory.NewSummariser(provider, clk, cfg.LLM.SummaryModel)
	ag := agent.New(provider, registry, mem, summariser, cfg.LLM.Model, slog.Default())
	window := convo.New(cfg.MaxContextMessages)

	var mod *moderation.Client
	if cfg.Moderation.Enabled {
		mod = moderation.New(moderation.Config{
			APIKey: cfg.ModerationAPIKey(),
			Model:  cfg.Moderation.Model,
		}, slog.Default())
	}

	fmt.Println("Hanabi event chat. Type /summary to inspect memory, /reset to start over, /quit to exit.")

	ctx := context.Background()
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("You: ")
		if !scanner.Scan() {
			break
		}
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		switch text {
		case "/quit", "/exit":
			return
		case "/summary":
			fmt.Println("Memory summary:")
			fmt.Println(mem.Summary())
			continue
		case "/reset":
			window.Clear()
			mem.Reset()
			fmt.Println("Conversation and memory cleared.")
			continue
		}

		if mod != nil && mod.IsFlagged(ctx, text) {
			fmt.Println("Hanabi:", app.RefusalMessage)
			continue
		}

		msg := llm.Message{Role: llm.RoleUser, Content: text}
		reply := ag.Process(ctx, msg, window)
		fmt.Println("Hanabi:", reply)
	}

	if err := scanner.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "Error reading input: %v\n", err)
		os.Exit(1)
	}
}
