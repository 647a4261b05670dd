package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cloudwego/eino/components/embedding"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"clarion/internal/agents"
	"clarion/internal/config"
	"clarion/internal/globals"
	"clarion/internal/llm"
	"clarion/internal/schema"
	"clarion/internal/telemetry"
	"clarion/internal/ui"
	"clarion/prompts"
)

var (
	askMaxRounds int
	askJSON      bool
)

var askCmd = &cobra.Command{
	Use:   "ask <query>",
	Short: "Run a clarification session for a query",
	Long: `Ask runs the clarification loop: the agent proposes questions for the
information the query leaves open, answers already in the store are reused,
and new answers are recorded under the key each question names.

With --json, each question is printed as a JSON object on stdout and the
answer is read from the next stdin line, so other programs can drive the
session.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().IntVar(&askMaxRounds, "max-rounds", 0, "maximum questions per session (default 5)")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "machine-readable question/answer exchange")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	query := strings.TrimSpace(strings.Join(args, " "))

	llmCfg, err := config.LoadLLMConfig()
	if err != nil {
		return err
	}

	store, err := openStore()
	if err != nil {
		return fmt.Errorf("open answer store: %w", err)
	}
	defer func() { _ = store.Close() }()

	// The embedder is optional: without one, re-ask detection falls back
	// to exact key matches.
	var embedder embedding.Embedder
	if em, err := llm.NewEmbeddingModel(ctx, llmCfg); err == nil {
		embedder = em
	}
	resolver := globals.NewResolver(store, embedder, config.GetSimilarityThreshold())

	// Prompt overrides are live: the watcher invalidates the loader cache
	// when a template file changes, and the agents re-fetch their prompt
	// through the loader every round.
	loader := prompts.NewLoader(afero.NewOsFs(), config.GetTemplatesDir())
	go func() { _ = loader.Watch(ctx) }()

	agent, ok := agents.CreateAgent("clarification", llmCfg).(*agents.ClarificationAgent)
	if !ok {
		return fmt.Errorf("clarification agent is not registered")
	}
	agent.SetPromptSource(func() (string, error) {
		return loader.Get(prompts.KeyClarification)
	})

	synth, ok := agents.CreateAgent("synthesis", llmCfg).(*agents.SynthesisAgent)
	if !ok {
		return fmt.Errorf("synthesis agent is not registered")
	}
	synth.SetPromptSource(func() (string, error) {
		return loader.Get(prompts.KeyAnswerSynthesis)
	})

	tel := newTelemetryClient()
	defer func() { _ = tel.Close() }()

	var log io.Writer
	if verbose {
		log = cmd.ErrOrStderr()
	}

	maxRounds := askMaxRounds
	if maxRounds == 0 {
		maxRounds = config.GetMaxRounds()
	}

	orchestrator := agents.NewOrchestrator(agent, store, resolver, agents.Options{
		MaxRounds:   maxRounds,
		Synthesizer: synth,
		Telemetry:   tel,
		Log:         log,
	})

	answer := interactiveAnswer()
	if askJSON || !term.IsTerminal(int(os.Stdin.Fd())) {
		answer = pipedAnswer(cmd)
	}

	result, err := orchestrator.Run(ctx, query, answer)
	if err != nil {
		tel.Track(telemetry.EventCommandError, telemetry.Properties{"command": "ask"})
		return err
	}

	return printSessionResult(cmd.OutOrStdout(), result)
}

// interactiveAnswer presents questions with the terminal UI.
func interactiveAnswer() agents.AnswerFunc {
	return func(_ context.Context, msg *schema.ClarificationMessage) (string, error) {
		reply, err := ui.AskClarification(msg)
		if errors.Is(err, ui.ErrCancelled) {
			return "", agents.ErrStopSession
		}
		return reply, err
	}
}

// pipedAnswer writes each question as JSON and reads the answer from the
// next stdin line. A closed stdin ends the session.
func pipedAnswer(cmd *cobra.Command) agents.AnswerFunc {
	reader := bufio.NewReader(cmd.InOrStdin())
	out := cmd.OutOrStdout()
	return func(_ context.Context, msg *schema.ClarificationMessage) (string, error) {
		data, err := json.Marshal(msg)
		if err != nil {
			return "", err
		}
		fmt.Fprintln(out, string(data))

		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return "", agents.ErrStopSession
		}
		return strings.TrimSpace(line), nil
	}
}

// printSessionResult summarizes the session on stdout.
func printSessionResult(out io.Writer, result *agents.SessionResult) error {
	if askJSON {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(data))
		return nil
	}

	if len(result.Rounds) == 0 {
		fmt.Fprintln(out, "No clarifications were needed.")
		return nil
	}
	for _, round := range result.Rounds {
		status := "recorded"
		if round.Resolved {
			status = "already known"
		}
		fmt.Fprintf(out, "%s = %s (%s)\n", round.MatchedKey, round.Answer, status)
	}
	return nil
}
