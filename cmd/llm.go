package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/mathlingo/internal/llm"
	"github.com/abhisek/mathlingo/internal/store"
)

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect LLM request/response events",
}

// withEvents opens the store for the duration of fn.
func withEvents(cmd *cobra.Command, fn func(events store.EventRepo, out io.Writer) error) error {
	s, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer s.Close()
	return fn(s.EventRepo(), cmd.OutOrStdout())
}

var llmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent LLM events",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		purpose, _ := cmd.Flags().GetString("purpose")

		return withEvents(cmd, func(events store.EventRepo, out io.Writer) error {
			recs, err := events.QueryLLMEvents(cmd.Context(), store.QueryOpts{Limit: limit})
			if err != nil {
				return fmt.Errorf("query events: %w", err)
			}
			if len(recs) == 0 {
				fmt.Fprintln(out, "No LLM events found.")
				return nil
			}

			fmt.Fprintf(out, "%-5s  %-19s  %-14s  %-28s  %-6s  %-6s  %-7s  %s\n",
				"ID", "Timestamp", "Purpose", "Model", "In", "Out", "Ms", "OK")
			fmt.Fprintln(out, strings.Repeat("─", 100))
			for _, e := range recs {
				if purpose != "" && e.Purpose != purpose {
					continue
				}
				ok := "✓"
				if !e.Success {
					ok = "✗"
				}
				fmt.Fprintf(out, "%-5d  %-19s  %-14s  %-28s  %-6d  %-6d  %-7d  %s\n",
					e.ID,
					e.Timestamp.Local().Format("2006-01-02 15:04:05"),
					e.Purpose,
					truncate(e.Model, 28),
					e.InputTokens,
					e.OutputTokens,
					e.LatencyMs,
					ok,
				)
			}
			return nil
		})
	},
}

var llmViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "View full request/response for an LLM event",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid ID %q: %w", args[0], err)
		}

		return withEvents(cmd, func(events store.EventRepo, out io.Writer) error {
			e, err := events.GetLLMEvent(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("get event: %w", err)
			}
			if e == nil {
				return fmt.Errorf("event %d not found", id)
			}

			fmt.Fprintf(out, "ID:        %d\n", e.ID)
			fmt.Fprintf(out, "Time:      %s\n", e.Timestamp.Local().Format("2006-01-02 15:04:05"))
			fmt.Fprintf(out, "Provider:  %s\n", e.Provider)
			fmt.Fprintf(out, "Model:     %s\n", e.Model)
			fmt.Fprintf(out, "Purpose:   %s\n", e.Purpose)
			fmt.Fprintf(out, "Tokens:    %d in / %d out\n", e.InputTokens, e.OutputTokens)
			fmt.Fprintf(out, "Latency:   %dms\n", e.LatencyMs)
			fmt.Fprintf(out, "Success:   %v\n", e.Success)
			if e.ErrorMessage != "" {
				fmt.Fprintf(out, "Error:     %s\n", e.ErrorMessage)
			}
			fmt.Fprintln(out)
			printSection(out, "REQUEST", e.RequestBody)
			printSection(out, "RESPONSE", e.ResponseBody)
			return nil
		})
	},
}

func printSection(out io.Writer, title, body string) {
	sep := strings.Repeat("─", 60)
	fmt.Fprintln(out, sep)
	fmt.Fprintln(out, title)
	fmt.Fprintln(out, sep)
	if body == "" {
		body = "(not captured)"
	}
	fmt.Fprintln(out, body)
}

var llmStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show aggregated LLM token usage and estimated cost",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEvents(cmd, func(events store.EventRepo, out io.Writer) error {
			ctx := cmd.Context()
			byPurpose, err := events.LLMUsageByPurpose(ctx)
			if err != nil {
				return fmt.Errorf("query usage: %w", err)
			}
			if len(byPurpose) == 0 {
				fmt.Fprintln(out, "No LLM usage recorded yet.")
				return nil
			}
			rule := strings.Repeat("─", 72)

			fmt.Fprintln(out, "Usage by Purpose")
			fmt.Fprintln(out, rule)
			fmt.Fprintf(out, "%-16s  %6s  %10s  %10s  %10s  %8s\n",
				"Purpose", "Calls", "Input", "Output", "Total", "Avg Ms")
			fmt.Fprintln(out, rule)
			var calls, in, outTokens int
			for _, st := range byPurpose {
				fmt.Fprintf(out, "%-16s  %6d  %10d  %10d  %10d  %8d\n",
					st.Purpose, st.Calls, st.InputTokens, st.OutputTokens, st.InputTokens+st.OutputTokens, st.AvgLatencyMs)
				calls += st.Calls
				in += st.InputTokens
				outTokens += st.OutputTokens
			}
			fmt.Fprintln(out, rule)
			fmt.Fprintf(out, "%-16s  %6d  %10d  %10d  %10d\n", "TOTAL", calls, in, outTokens, in+outTokens)

			byModel, err := events.LLMUsageByModel(ctx)
			if err != nil {
				return fmt.Errorf("query model usage: %w", err)
			}
			if len(byModel) == 0 {
				return nil
			}

			fmt.Fprintln(out)
			fmt.Fprintln(out, "Estimated Cost (USD)")
			fmt.Fprintln(out, rule)
			fmt.Fprintf(out, "%-32s  %6s  %10s  %10s  %10s\n", "Model", "Calls", "Input", "Output", "Cost")
			fmt.Fprintln(out, rule)
			var total float64
			var unknown []string
			for _, mu := range byModel {
				cost := "?"
				if mc := llm.LookupCost(mu.Model); mc != nil {
					c := mc.Cost(mu.InputTokens, mu.OutputTokens)
					total += c
					cost = formatCost(c)
				} else {
					unknown = append(unknown, mu.Model)
				}
				fmt.Fprintf(out, "%-32s  %6d  %10d  %10d  %10s\n",
					truncate(mu.Model, 32), mu.Calls, mu.InputTokens, mu.OutputTokens, cost)
			}
			fmt.Fprintln(out, rule)
			label := "TOTAL"
			if len(unknown) > 0 {
				label = "TOTAL (partial)"
			}
			fmt.Fprintf(out, "%-32s  %6s  %10s  %10s  %10s\n", label, "", "", "", formatCost(total))
			if len(unknown) > 0 {
				fmt.Fprintf(out, "\nPricing unavailable for: %s\n", strings.Join(unknown, ", "))
			}
			return nil
		})
	},
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func formatCost(usd float64) string {
	if usd < 0.01 {
		return fmt.Sprintf("$%.4f", usd)
	}
	return fmt.Sprintf("$%.2f", usd)
}

func init() {
	llmListCmd.Flags().IntP("limit", "n", 20, "Number of events to show")
	llmListCmd.Flags().StringP("purpose", "p", "", "Filter by purpose (e.g. "+llm.PurposeDraft+")")

	llmCmd.AddCommand(llmListCmd)
	llmCmd.AddCommand(llmViewCmd)
	llmCmd.AddCommand(llmStatsCmd)
}
