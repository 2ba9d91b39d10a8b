package main

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/YashRaythatha/hackathon-code-validation/internal/pkg/agents"
	"github.com/YashRaythatha/hackathon-code-validation/internal/service/judgeconfig"
)

func newWeightsCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "weights",
		Short: "Show or change judge weights",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the current judge weights",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := judgeconfig.NewStore(g.loadConfig().Judge.ConfigPath)
			if err != nil {
				return err
			}
			printWeights(cmd.OutOrStdout(), store.Document())
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "set <agent=percent>...",
		Short: "Replace the judge weights; values must sum to 100",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			weights, err := parseWeightArgs(args)
			if err != nil {
				return err
			}
			store, err := judgeconfig.NewStore(g.loadConfig().Judge.ConfigPath)
			if err != nil {
				return err
			}
			if err := store.SetWeights(weights); err != nil {
				return err
			}
			printWeights(cmd.OutOrStdout(), store.Document())
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:       "preset <name>",
		Short:     "Apply a named weight preset",
		Args:      cobra.ExactArgs(1),
		ValidArgs: judgeconfig.PresetNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := judgeconfig.NewStore(g.loadConfig().Judge.ConfigPath)
			if err != nil {
				return err
			}
			if err := store.ApplyPreset(args[0]); err != nil {
				return fmt.Errorf("%w (available: %s)", err, strings.Join(judgeconfig.PresetNames(), ", "))
			}
			printWeights(cmd.OutOrStdout(), store.Document())
			return nil
		},
	})
	return cmd
}

// parseWeightArgs 解析 agent=percent 形式的参数
func parseWeightArgs(args []string) (map[string]int, error) {
	weights := make(map[string]int, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok {
			return nil, fmt.Errorf("invalid weight %q, expected agent=percent", arg)
		}
		n, err := strconv.Atoi(strings.TrimSuffix(strings.TrimSpace(value), "%"))
		if err != nil {
			return nil, fmt.Errorf("invalid percent in %q: %w", arg, err)
		}
		weights[strings.TrimSpace(key)] = n
	}
	return weights, nil
}

func printWeights(w io.Writer, doc judgeconfig.Document) {
	ids := make([]string, 0, len(doc.Weights))
	for id := range doc.Weights {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if doc.Weights[ids[i]] == doc.Weights[ids[j]] {
			return ids[i] < ids[j]
		}
		return doc.Weights[ids[i]] > doc.Weights[ids[j]]
	})
	for _, id := range ids {
		fmt.Fprintf(w, "%-22s %-16s %3d%%\n", agents.CategoryName(id), id, doc.Weights[id])
	}
	fmt.Fprintf(w, "%-39s %3d%%\n", "Total", doc.TotalPercentage)
}
