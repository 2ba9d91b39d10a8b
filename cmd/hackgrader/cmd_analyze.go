package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/YashRaythatha/hackathon-code-validation/internal/domain"
	"github.com/YashRaythatha/hackathon-code-validation/internal/pkg/localrepo"
	"github.com/YashRaythatha/hackathon-code-validation/internal/service"
)

var errAnalysisFailed = errors.New("analysis failed")

type analyzeFlags struct {
	agents    []string
	branch    string
	jsonOut   bool
	skipCache bool
	artifacts map[string]string
}

func newAnalyzeCmd(g *globalFlags) *cobra.Command {
	f := &analyzeFlags{}
	cmd := &cobra.Command{
		Use:   "analyze <github-url|directory|context.json>",
		Short: "Score a repository and print the verdict",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, g, f, args[0])
		},
	}
	fl := cmd.Flags()
	fl.StringSliceVar(&f.agents, "agents", nil, "Agents to run (ids or numeric aliases); default all")
	fl.StringVar(&f.branch, "branch", "", "Branch to fetch for GitHub repositories (default main)")
	fl.BoolVar(&f.jsonOut, "json", false, "Print the full report as JSON")
	fl.BoolVar(&f.skipCache, "skip-cache", false, "Ignore cached results")
	fl.StringToStringVar(&f.artifacts, "artifact", nil, "External artifact, e.g. --artifact test_results=\"12 passed\"")
	return cmd
}

func runAnalyze(cmd *cobra.Command, g *globalFlags, f *analyzeFlags, source string) error {
	application, err := g.newApp()
	if err != nil {
		return err
	}
	defer application.Close(cmd.Context())

	var selected []string
	if cmd.Flags().Changed("agents") {
		selected = f.agents
		if selected == nil {
			selected = []string{}
		}
	}
	artifacts := make(map[string]any, len(f.artifacts))
	for k, v := range f.artifacts {
		artifacts[k] = v
	}

	var report *domain.Report
	if isRemote(source) {
		report, err = application.Grader.Grade(cmd.Context(), service.GradeRequest{
			RepoURL:   source,
			Branch:    f.branch,
			Agents:    selected,
			Artifacts: artifacts,
			SkipCache: f.skipCache,
		})
	} else {
		var ec *domain.EvidenceContext
		ec, err = loadLocal(source, artifacts)
		if err != nil {
			return err
		}
		report, err = application.Grader.GradeContext(cmd.Context(), ec, selected)
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if f.jsonOut {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return err
		}
	} else {
		fmt.Fprint(out, renderReport(report))
	}
	if report.Failed() {
		return fmt.Errorf("%w: %s", errAnalysisFailed, report.Error)
	}
	return nil
}

func isRemote(source string) bool {
	return strings.HasPrefix(source, "http://") ||
		strings.HasPrefix(source, "https://") ||
		strings.HasPrefix(source, "git@")
}

// loadLocal 目录按本地仓库加载，文件按 JSON 证据上下文加载，命令行产物覆盖文件中的同名产物
func loadLocal(source string, artifacts map[string]any) (*domain.EvidenceContext, error) {
	info, err := os.Stat(source)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", localrepo.ErrInvalidSource, err)
	}
	if info.IsDir() {
		return localrepo.Load(source, artifacts)
	}
	ec, err := localrepo.LoadContextFile(source)
	if err != nil {
		return nil, err
	}
	if len(artifacts) == 0 {
		return ec, nil
	}
	merged := make(map[string]any, len(ec.Artifacts)+len(artifacts))
	for k, v := range ec.Artifacts {
		merged[k] = v
	}
	for k, v := range artifacts {
		merged[k] = v
	}
	out := domain.NewEvidenceContext(ec.RepositoryIdentity, ec.Branch, ec.FileTree, ec.Readme, merged)
	out.Commit = ec.Commit
	out.UIExecution = ec.UIExecution
	return out, nil
}
