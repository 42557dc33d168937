package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/web4asset/w4t/logx"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "w4t",
	Short: "W4T token ledger node CLI",
	Long:  "Command line interface for running and managing a W4T token ledger node.",
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config/config.ini", "Path to node configuration file")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logx.Error("CMD", "Command execution failed:", err)
		os.Exit(1)
	}
}
