package main

import (
	"github.com/spf13/cobra"

	"screencheck/pkg/config"
	"screencheck/pkg/server"
)

func newServeCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the analysis HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			srv, err := server.New(cfg)
			if err != nil {
				return err
			}

			printInfo("Upload directory: %s", cfg.UploadDir)
			if cfg.NearDuplicateIndex {
				printInfo("Near-duplicate index enabled")
			}
			printSuccess("Listening on %s", cfg.Listen)

			return srv.ListenAndServe()
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to YAML config file")

	return cmd
}
