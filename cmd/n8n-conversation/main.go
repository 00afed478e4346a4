package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/avvvet/n8n-conversation/internal/config"
	"github.com/avvvet/n8n-conversation/internal/exposure"
	"github.com/avvvet/n8n-conversation/internal/handlers"
	"github.com/avvvet/n8n-conversation/internal/hass"
	"github.com/avvvet/n8n-conversation/internal/models"
	"github.com/joho/godotenv"
)

const version = "0.1.0"

func main() {
	// Load .env file if it exists (for development)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(0)
	}

	var err error
	switch os.Args[1] {
	case "version":
		fmt.Printf("n8n-conversation v%s\n", version)
	case "check":
		err = check()
	case "ask":
		err = ask(strings.Join(os.Args[2:], " "))
	case "task":
		if len(os.Args) < 4 {
			printUsage()
			os.Exit(1)
		}
		err = task(os.Args[2], strings.Join(os.Args[3:], " "))
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("n8n-conversation - talk to an n8n webhook the way the assistant does")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  n8n-conversation ask <message>             Send one conversation turn")
	fmt.Println("  n8n-conversation task <name> <instructions> Run a generate-data task")
	fmt.Println("  n8n-conversation check                     Validate the configuration")
	fmt.Println("  n8n-conversation version                   Show version info")
	fmt.Println()
	fmt.Println("Set N8N_INSTALLATION to pick an installation when several are configured.")
}

func check() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	for _, inst := range cfg.Installations {
		fmt.Printf("%s: conversation.%s", inst.Name, inst.Slug())
		if inst.HasAITask() {
			fmt.Printf(", ai_task.%s", inst.Slug())
		}
		fmt.Println()
	}
	return nil
}

func ask(message string) error {
	inst, err := installation()
	if err != nil {
		return err
	}

	response := inst.Converse(context.Background(), &models.ConversationRequest{
		Messages: []models.Message{{Role: models.RoleUser, Content: message}},
	})
	if response.ErrorMessage != nil {
		return fmt.Errorf("%s: %s", *response.ErrorCode, *response.ErrorMessage)
	}

	for _, content := range response.Content {
		fmt.Println(content.Content)
	}
	return nil
}

func task(name, instructions string) error {
	inst, err := installation()
	if err != nil {
		return err
	}

	response := inst.GenerateData(context.Background(), &models.TaskRequest{
		Task: models.Task{Name: name, Instructions: instructions},
	})
	if response.ErrorMessage != nil {
		return fmt.Errorf("%s: %s", *response.ErrorCode, *response.ErrorMessage)
	}

	if text, ok := response.Data.(string); ok {
		fmt.Println(text)
		return nil
	}
	out, err := json.MarshalIndent(response.Data, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func installation() (*handlers.Installation, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	var registry hass.Registry = &hass.Snapshot{}
	if cfg.RedisURL != "" {
		store, err := hass.NewRedisStore(cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		registry = store
	} else if cfg.SnapshotFile != "" {
		snap, err := hass.LoadSnapshot(cfg.SnapshotFile)
		if err != nil {
			return nil, err
		}
		registry = snap
	}

	installations := handlers.NewInstallations(cfg.Installations, exposure.NewCollector(registry))
	if name := os.Getenv("N8N_INSTALLATION"); name != "" {
		inst, ok := installations.Get(name)
		if !ok {
			return nil, fmt.Errorf("unknown installation %q", name)
		}
		return inst, nil
	}

	inst, ok := installations.Default()
	if !ok {
		return nil, fmt.Errorf("several installations configured, set N8N_INSTALLATION")
	}
	return inst, nil
}
