package cmd

import (
	"fmt"
	"os"

	"github.com/rzbill/cse/pkg/version"
	"github.com/spf13/cobra"
)

var (
	cfgFile         string
	dataDirOverride string
	logLevel        string
	verbose         bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "cse",
	Short: "cse - cluster entity schema tools",
	Long: `cse converts native cluster entities between schema generations,
classifies update requests against the observed cluster, and manages the
local entity store and its schema migrations.`,
	SilenceUsage: true,
	Version:      version.Version,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorPrefix()+err.Error())
		os.Exit(exitCode(err))
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./cse.yaml or /etc/cse/cse.yaml)")
	rootCmd.PersistentFlags().StringVar(&dataDirOverride, "data-dir", "", "data directory holding the entity store")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	rootCmd.AddCommand(newConvertCmd())
	rootCmd.AddCommand(newClassifyCmd())
	rootCmd.AddCommand(newStoreCmd())
	rootCmd.AddCommand(newMigrateCmd())
	rootCmd.AddCommand(newVersionCmd())
}
