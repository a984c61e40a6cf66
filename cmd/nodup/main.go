package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"nodup/internal/di"
	"nodup/internal/structures"
)

var flags structures.CliFlags

var rootCmd = &cobra.Command{
	Use:          "nodup",
	Short:        "Repost detection daemon for group conversations",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, cleanup, err := di.InitApp(&flags)
		if err != nil {
			return err
		}
		cleanup()
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flags.ConfigPath, "config", "c", "config.yml", "Path to the YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&flags.DebugMode, "debug", "d", false, "Mirror logs to the console")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
