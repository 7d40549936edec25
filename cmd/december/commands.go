package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"december/internal/articulation"
	"december/internal/types"
)

// classifyCmd classifies a single utterance and prints the result.
var classifyCmd = &cobra.Command{
	Use:   "classify [utterance]",
	Short: "Classify one request and print its disposition",
	Long: `Runs the decision procedure on a single utterance and prints the
disposition, the clarifying questions it would ask, and the assumptions it
would state.

Example:
  december classify "Add authentication to the app"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runClassify,
}

// respondCmd renders the full response a classification produces.
var respondCmd = &cobra.Command{
	Use:   "respond [utterance]",
	Short: "Classify one request and render the response",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runRespond,
}

// examplesCmd queries the example catalog.
var examplesCmd = &cobra.Command{
	Use:   "examples [query]",
	Short: "Look up context documents in the example catalog",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runExamples,
}

// historyCmd prints recent classifications.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent classifications",
	RunE:  runHistory,
}

func runClassify(cmd *cobra.Command, args []string) error {
	rt, err := buildRuntime(cmd.Context())
	if err != nil {
		return err
	}
	defer rt.Close()

	result, err := rt.session.Classify(strings.Join(args, " "))
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	fmt.Printf("disposition: %s (confidence %.2f)\n", result.Disposition, result.Confidence)
	for _, q := range result.Questions {
		fmt.Printf("question [%s]: %s\n", q.Category, q.Question)
		for _, opt := range q.Options {
			fmt.Printf("  - %s\n", opt)
		}
	}
	for _, a := range result.Assumptions {
		marker := "silent"
		if a.Stated {
			marker = "stated"
		}
		fmt.Printf("assumption [%s, %s]: %s (%s)\n", a.Category, marker, a.Assumed, a.Basis)
	}
	return nil
}

func runRespond(cmd *cobra.Command, args []string) error {
	rt, err := buildRuntime(cmd.Context())
	if err != nil {
		return err
	}
	defer rt.Close()

	utterance := strings.Join(args, " ")
	result, err := rt.session.Classify(utterance)
	if err != nil {
		return err
	}

	emitter := articulation.NewEmitter()
	resp, err := emitter.Build(result, proseFor(result), nil)
	if err != nil {
		return err
	}

	rendered := emitter.Render(resp)

	processor := articulation.NewResponseProcessor()
	if _, err := processor.Process(rendered, result.Disposition); err != nil {
		return fmt.Errorf("response violates output contract: %w", err)
	}

	fmt.Print(rendered)
	return nil
}

func proseFor(result types.Classification) string {
	switch result.Disposition {
	case types.DispositionImplement:
		return "Proceeding with the implementation."
	case types.DispositionClarify:
		return "A few details determine how this should be built."
	default:
		return "Here is how that works."
	}
}

func runExamples(cmd *cobra.Command, args []string) error {
	rt, err := buildRuntime(cmd.Context())
	if err != nil {
		return err
	}
	defer rt.Close()

	if rt.catalog == nil {
		return fmt.Errorf("no catalog manifest at %s", rt.cfg.Catalog.ManifestPath)
	}

	entries := rt.catalog.Lookup(strings.Join(args, " "))
	if len(entries) == 0 {
		fmt.Println("no matching entries")
		return nil
	}
	for _, e := range entries {
		fmt.Printf("%s\t%s\n", e.Name, e.Path)
		if e.Description != "" {
			fmt.Printf("\t%s\n", e.Description)
		}
	}
	return nil
}

func runHistory(cmd *cobra.Command, args []string) error {
	rt, err := buildRuntime(cmd.Context())
	if err != nil {
		return err
	}
	defer rt.Close()

	rows, err := rt.store.History(rt.cfg.Store.HistoryLimit)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		fmt.Println("no history yet")
		return nil
	}
	for _, r := range rows {
		fmt.Printf("%s  %-9s  %.2f  %s\n",
			r.CreatedAt.Format("2006-01-02 15:04"), r.Disposition, r.Confidence, r.Utterance)
	}
	return nil
}
