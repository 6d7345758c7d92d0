// Command treefs is a small driver over the tree package: an
// interactive REPL, a batch script runner, and a concurrency
// benchmark, restoring the original_source/ driver program (main.c)
// that the distilled spec dropped, generalized into a cobra CLI.
package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/hanwen/go-treefs/tree"
)

var (
	verbose    bool
	scriptPath string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "treefs",
		Short: "Drive an in-memory concurrent folder tree",
		Long: "treefs exercises the tree package's List/Create/Remove/Move " +
			"operations from the command line: interactively, from a script " +
			"file, or with a concurrent benchmark workload.",
		RunE: func(cmd *cobra.Command, args []string) error {
			t := newTree()
			defer t.Close()

			if scriptPath != "" {
				f, err := os.Open(scriptPath)
				if err != nil {
					return wrapf(err, "opening script %s", scriptPath)
				}
				defer f.Close()
				return runScript(cmd.OutOrStdout(), f, t)
			}
			return runREPL(cmd.InOrStdin(), cmd.OutOrStdout(), t)
		},
	}

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log at debug level")
	root.PersistentFlags().StringVarP(&scriptPath, "script", "s", "", "run commands from a file instead of stdin")

	root.AddCommand(newBenchCmd())
	return root
}

func newTree() *tree.Tree {
	log := logrus.New()
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetLevel(logrus.WarnLevel)
	}
	t := tree.New()
	t.Log = log
	return t
}
