package main

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const proxyPort = "4000"

// proxyConfig is the subset of the LiteLLM config the assistant depends on.
type proxyConfig struct {
	ModelList []struct {
		ModelName     string                 `yaml:"model_name"`
		LiteLLMParams map[string]interface{} `yaml:"litellm_params"`
	} `yaml:"model_list"`
}

var proxyCheckOnly bool

var proxyCmd = &cobra.Command{
	Use:   "proxy",
	Short: "Validate the LiteLLM config and start the proxy",
	RunE:  runProxy,
}

func init() {
	proxyCmd.Flags().BoolVar(&proxyCheckOnly, "check", false, "Only validate the config file")
}

func runProxy(cmd *cobra.Command, args []string) error {
	path := cfg.LLM.ProxyConfig
	aliases, err := loadProxyAliases(path)
	if err != nil {
		return err
	}

	required := []string{cfg.LLM.FastModel, cfg.LLM.BestModel, cfg.LLM.QueryModel}
	if missing := missingAliases(aliases, required); len(missing) > 0 {
		return fmt.Errorf("%s does not define model aliases: %s", path, strings.Join(missing, ", "))
	}

	out := cmd.OutOrStdout()
	for _, name := range required {
		color.New(color.FgGreen).Fprintf(out, "✓ %s\n", name)
	}
	if proxyCheckOnly {
		return nil
	}

	fmt.Fprintf(out, "🚀 Starting LiteLLM proxy on http://localhost:%s\n", proxyPort)
	proxy := exec.CommandContext(cmd.Context(), "litellm", "--config", path, "--port", proxyPort)
	proxy.Stdout = os.Stdout
	proxy.Stderr = os.Stderr
	return proxy.Run()
}

func loadProxyAliases(path string) (map[string]bool, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config file not found %q: %w", path, err)
	}
	var pc proxyConfig
	if err := yaml.Unmarshal(raw, &pc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	aliases := make(map[string]bool, len(pc.ModelList))
	for _, m := range pc.ModelList {
		aliases[m.ModelName] = true
	}
	return aliases, nil
}

func missingAliases(aliases map[string]bool, required []string) []string {
	var missing []string
	for _, name := range required {
		if !aliases[name] {
			missing = append(missing, name)
		}
	}
	return missing
}
