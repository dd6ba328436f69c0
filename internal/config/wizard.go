package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/manifoldco/promptui"
)

// RunWizard runs an interactive configuration wizard, saves the result to
// path and returns it.
func RunWizard(path string) (*Config, error) {
	fmt.Println("Welcome to pharos! Let's configure the claim analysis service.")
	fmt.Println()

	cfg := DefaultConfig()

	// 1. Provider selection.
	providerPrompt := promptui.Select{
		Label: "Select model provider",
		Items: []string{
			"gateway    — OpenAI-compatible AI gateway (default)",
			"openai     — OpenAI API",
			"openrouter — OpenRouter",
			"ollama     — local Ollama",
		},
	}
	idx, _, err := providerPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("provider selection: %w", err)
	}
	providers := []ProviderType{ProviderGateway, ProviderOpenAI, ProviderOpenRouter, ProviderOllama}
	cfg.LLM.ApplyProviderDefaults(providers[idx])

	// 2. Model.
	modelPrompt := promptui.Prompt{
		Label:   "Model identifier",
		Default: cfg.LLM.Model,
	}
	if cfg.LLM.Model, err = modelPrompt.Run(); err != nil {
		return nil, fmt.Errorf("model: %w", err)
	}

	// 3. Port.
	portPrompt := promptui.Prompt{
		Label:    "HTTP port",
		Default:  strconv.Itoa(cfg.Server.Port),
		Validate: validatePort,
	}
	portStr, err := portPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("port: %w", err)
	}
	cfg.Server.Port, _ = strconv.Atoi(portStr)

	// 4. Outbound call timeout.
	timeoutPrompt := promptui.Prompt{
		Label:    "Model call timeout (e.g. 60s, 0 for none)",
		Default:  "0",
		Validate: validateDuration,
	}
	timeoutStr, err := timeoutPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("timeout: %w", err)
	}
	cfg.LLM.Timeout = parseDuration(timeoutStr)

	// 5. Activity log.
	auditPrompt := promptui.Select{
		Label: "Record an activity log of analysis requests?",
		Items: []string{"no", "yes"},
	}
	auditIdx, _, err := auditPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("audit selection: %w", err)
	}
	cfg.Audit.Enabled = auditIdx == 1

	if cfg.LLM.APIKeyEnv != "" && os.Getenv(cfg.LLM.APIKeyEnv) == "" {
		fmt.Printf("\nNote: Set %s in your environment before running pharos server.\n", cfg.LLM.APIKeyEnv)
	}

	if err := cfg.Save(path); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", path)
	return cfg, nil
}

func validatePort(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 || n > 65535 {
		return fmt.Errorf("port must be between 1 and 65535")
	}
	return nil
}

func validateDuration(s string) error {
	s = strings.TrimSpace(s)
	if s == "0" || s == "" {
		return nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		return fmt.Errorf("enter a duration such as 30s or 2m")
	}
	return nil
}

func parseDuration(s string) time.Duration {
	d, _ := time.ParseDuration(strings.TrimSpace(s))
	return d
}
