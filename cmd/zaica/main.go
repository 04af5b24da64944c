// zaica is a terminal coding agent: a REPL that drives an LLM through a
// small fixed tool table (shell, file read/write/list/search, skill
// loading, sub-agent delegation), with session persistence, skills, and
// markdown-defined agent chains.
package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/neolite/zaica/internal/agent"
	"github.com/neolite/zaica/internal/chain"
	"github.com/neolite/zaica/internal/config"
	"github.com/neolite/zaica/internal/lineeditor"
	"github.com/neolite/zaica/internal/llmclient"
	"github.com/neolite/zaica/internal/repl"
	"github.com/neolite/zaica/internal/session"
	"github.com/neolite/zaica/internal/skills"
	"github.com/neolite/zaica/internal/state"
	"github.com/neolite/zaica/internal/term"
	"github.com/neolite/zaica/internal/tools"
)

// version is injected at build time via ldflags.
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "zaica: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "zaica [prompt]",
		Short:   "A terminal coding agent",
		Version: version,
		Args:    cobra.MaximumNArgs(1),
		RunE:    runRoot,
	}

	cmd.Flags().StringP("config", "f", "", "path to a YAML config file")
	cmd.Flags().BoolP("continue", "c", false, "resume the most recent session")
	cmd.Flags().String("session", "", "resume a specific session id")
	cmd.Flags().String("chain", "", "run a markdown chain file instead of the interactive REPL")
	cmd.Flags().Bool("dry-run", false, "with --chain, list the resolved steps/tools instead of running them")
	cmd.Flags().Bool("dump-config", false, "print the resolved configuration as JSON and exit")
	cmd.Flags().Bool("init", false, "write a default config file and exit")
	cmd.Flags().Bool("yolo", false, "pre-approve every tool call without prompting")
	cmd.Flags().Bool("infinity", false, "remove the iteration cap and bash command timeout")

	return cmd
}

func runRoot(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadFile(configPath)
	if err != nil {
		return err
	}
	cfg.Yolo, _ = cmd.Flags().GetBool("yolo")
	cfg.Infinity, _ = cmd.Flags().GetBool("infinity")

	if dump, _ := cmd.Flags().GetBool("dump-config"); dump {
		out, err := cfg.DumpJSON()
		if err != nil {
			return err
		}
		fmt.Println(out)
		return nil
	}

	if doInit, _ := cmd.Flags().GetBool("init"); doInit {
		return writeDefaultConfig(configPath)
	}

	client := llmclient.NewOpenAIClient(os.Getenv("OPENAI_API_KEY"), cfg.BaseURL, cfg.Model)

	sessionsDir, err := config.SessionsDir()
	if err != nil {
		return err
	}
	store, err := session.New(sessionsDir, nil)
	if err != nil {
		return err
	}

	userSkillsDir, err := config.SkillsDir()
	if err != nil {
		return err
	}
	catalog := skills.Load(userSkillsDir, config.ProjectSkillsDir(), nil)

	if chainPath, _ := cmd.Flags().GetString("chain"); chainPath != "" {
		return runChain(cmd, client, chainPath, args)
	}

	return runInteractive(cmd, cfg, client, store, catalog, args)
}

func runInteractive(cmd *cobra.Command, cfg config.Config, client llmclient.Client, store *session.Store, catalog *skills.Catalog, args []string) error {
	driver := repl.New(cfg, client, store, catalog)

	resumeID, _ := cmd.Flags().GetString("session")
	continueFlag, _ := cmd.Flags().GetBool("continue")
	switch {
	case resumeID != "":
		if err := driver.Resume(resumeID); err != nil {
			return err
		}
	case continueFlag:
		id, err := store.MostRecent()
		if err != nil {
			return err
		}
		if id == "" {
			if err := driver.Start(); err != nil {
				return err
			}
		} else if err := driver.Resume(id); err != nil {
			return err
		}
	default:
		if err := driver.Start(); err != nil {
			return err
		}
	}

	if len(args) == 1 {
		return driver.RunOnce(args[0])
	}
	return driver.Run()
}

func runChain(cmd *cobra.Command, client llmclient.Client, chainPath string, args []string) error {
	data, err := os.ReadFile(chainPath)
	if err != nil {
		return fmt.Errorf("read chain file: %w", err)
	}
	spec, err := chain.Parse(data)
	if err != nil {
		return fmt.Errorf("parse chain file: %w", err)
	}

	registry := tools.New(nil)

	if dryRun, _ := cmd.Flags().GetBool("dry-run"); dryRun {
		for _, line := range chain.DryRun(spec, registry) {
			fmt.Println(line)
		}
		return nil
	}

	task := ""
	if len(args) == 1 {
		task = args[0]
	}

	risk := chain.MaxRisk(spec, registry)
	permission, err := promptChainRisk(risk)
	if err != nil {
		return fmt.Errorf("permission prompt: %w", err)
	}
	if permission == state.PermissionNone {
		return fmt.Errorf("chain run declined at the %s risk prompt", risk)
	}

	runID := uuid.NewString()
	fmt.Printf("chain run %s (%d steps)\n", runID, len(spec.Steps))

	outcome := chain.Run(spec, task, registry, client, chainHooks(), nil, permission)
	for _, step := range outcome.Steps {
		fmt.Printf("## %s\n%s\n\n", step.Name, step.Text)
	}
	if outcome.Aborted {
		return fmt.Errorf("chain run %s aborted (%s): %s", runID, outcome.AbortColor, outcome.AbortText)
	}
	return nil
}

// promptChainRisk implements spec §4.H's one-time chainMaxRisk prompt:
// a color-coded risk indicator (the same palette internal/repl/hooks.go
// uses for tool-result coloring) followed by a single keypress read
// through the same lineeditor.ReadPermissionKey machinery the REPL's
// per-turn permission prompt uses. The terminal only needs raw mode for
// the duration of this one keypress.
func promptChainRisk(risk tools.Risk) (state.Permission, error) {
	io := term.New()
	if err := io.Raw(); err != nil {
		return state.PermissionNone, err
	}
	defer io.Cook()

	io.WriteText(fmt.Sprintf("\nThis chain resolves to %s%s%s-risk tools.\n", riskColor(risk), risk, term.Reset))
	io.WriteText("Allow it to run? [y]es all / [s]afe only / [n]o: ")

	reader := lineeditor.NewTTYReader(os.Stdin)
	result, err := lineeditor.ReadPermissionKey(reader)
	if err != nil {
		return state.PermissionNone, err
	}
	return result.Level, nil
}

func riskColor(risk tools.Risk) string {
	switch risk {
	case tools.RiskDangerous:
		return term.Red
	case tools.RiskWrite:
		return term.Yellow
	default:
		return term.Green
	}
}

// chainHooks builds the non-interactive Hooks a chain run uses in batch
// mode: OnToolCalls is left nil, so each step's Loop falls back to the
// permission level runChain already obtained from promptChainRisk, but
// tool activity and streamed text still print to stdout.
func chainHooks() agent.Hooks {
	return agent.Hooks{
		OnToolResult: func(callID, name, result string) {
			_ = callID
			fmt.Printf("-> %s: %s\n", name, result)
		},
		OnChunk: func(text string) {
			fmt.Print(text)
		},
	}
}

func writeDefaultConfig(path string) error {
	if path == "" {
		dir, err := config.ConfigDir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return err
		}
		path = dir + "/config.yaml"
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists: %s", path)
	}
	out, err := yaml.Marshal(config.Default())
	if err != nil {
		return err
	}
	return os.WriteFile(path, out, 0o600)
}
