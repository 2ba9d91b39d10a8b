package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"k8s.io/klog/v2"

	"github.com/YashRaythatha/hackathon-code-validation/config"
	"github.com/YashRaythatha/hackathon-code-validation/internal/app"
)

// version 构建时通过 -ldflags 注入
var version = "dev"

// globalFlags 所有子命令共享的参数
type globalFlags struct {
	dataDir       string
	learningStore string
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:   "hackgrader",
		Short: "Score hackathon repositories with heuristic judging agents",
		Long: "hackgrader scores a GitHub repository, a local checkout or an evidence\n" +
			"context file against hackathon judging criteria and prints a weighted verdict.",
		SilenceUsage: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		Version: version,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&g.dataDir, "data-dir", "", "Data directory (database, judge weights, learning state)")
	pf.StringVar(&g.learningStore, "learning-store", "", "Learning state store: memory, file or db")
	pf.AddGoFlagSet(flag.CommandLine)

	root.AddCommand(newAnalyzeCmd(g))
	root.AddCommand(newServeCmd(g))
	root.AddCommand(newWeightsCmd(g))
	return root
}

// loadConfig 读取配置并应用命令行覆盖
func (g *globalFlags) loadConfig() *config.Config {
	cfg := config.GetConfig()
	if g.dataDir != "" {
		cfg = cfg.WithDataDir(g.dataDir)
	}
	if g.learningStore != "" {
		copied := *cfg
		copied.Learning.Store = g.learningStore
		cfg = &copied
	}
	return cfg
}

func (g *globalFlags) newApp() (*app.App, error) {
	return app.New(g.loadConfig())
}

func main() {
	klog.InitFlags(nil)
	defer klog.Flush()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		klog.Flush()
		os.Exit(1)
	}
}
