package cmd

import (
	"fmt"

	cache "github.com/RobsonDevCode/pyninja/internal/caching"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "manage the lookup cache",
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "delete every cached vulnerability and metadata lookup",
	Args:  cobra.NoArgs,
	RunE:  runCacheClear,
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	config, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	diskCache := cache.NewDiskCache(config.CacheDir, config.CacheTtlDuration())
	if !diskCache.Enabled() {
		fmt.Fprintln(cmd.OutOrStdout(), "Cache is disabled, nothing to clear")
		return nil
	}

	if err := diskCache.Clear(); err != nil {
		return err
	}

	fmt.Fprint(cmd.OutOrStdout(), color.GreenString("Cleared cache in %s\n", diskCache.Dir()))
	return nil
}

func init() {
	cacheCmd.AddCommand(cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}
