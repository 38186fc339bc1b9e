package cmd

import (
	"fmt"
	"os"

	"github.com/ValentinKolb/fsKV/cmd/kv"
	"github.com/spf13/cobra"
)

const (
	Version = "1.0.0"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "fskv",
		Short: "filesystem key-value store",
		Long: fmt.Sprintf(`fsKV (v%s)

A persistent key-value store library written in Go that keeps every
key value pair as a pair of files in a sharded directory tree.`, Version),
		SilenceUsage: true,
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of fsKV",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("fsKV v%s\n", Version)
		},
	}
)

func init() {
	// Add Commands
	RootCmd.AddCommand(kv.KeyValueCommands)
	RootCmd.AddCommand(versionCmd)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
