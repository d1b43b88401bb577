package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"curator/internal/config"
)

func newConfigCommand() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigInitCommand())
	configCmd.AddCommand(newConfigShowCommand())

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Create a sample configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return fmt.Errorf("determine default config path: %w", err)
				}
				target = defaultPath
			} else {
				expanded, err := config.ExpandPath(target)
				if err != nil {
					return fmt.Errorf("resolve config path: %w", err)
				}
				target = expanded
			}

			dir := filepath.Dir(target)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create config directory %q: %w", dir, err)
			}

			if !overwrite {
				if _, err := os.Stat(target); err == nil {
					return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
				} else if err != nil && !os.IsNotExist(err) {
					return fmt.Errorf("check config path: %w", err)
				}
			}

			if err := os.WriteFile(target, []byte(config.SampleConfig()), 0o644); err != nil {
				return fmt.Errorf("write sample config: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Wrote sample configuration to %s\n", target)
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")
	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "show",
		Short:       "Show the resolved configuration",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, exists, err := config.Load("")
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config path: %s\n", path)
			if !exists {
				fmt.Fprintln(out, "Config file did not exist; defaults are shown")
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Setting", "Value"},
				[][]string{
					{"paths.documents_dir", cfg.Paths.DocumentsDir},
					{"paths.approved_dir", cfg.Paths.ApprovedDir},
					{"paths.rejected_dir", cfg.Paths.RejectedDir},
					{"paths.store_path", cfg.Paths.StorePath},
					{"paths.log_dir", cfg.Paths.LogDir},
					{"curation.base_url", cfg.Curation.BaseURL},
					{"curation.classify_timeout_seconds", fmt.Sprintf("%d", cfg.Curation.ClassifyTimeoutSeconds)},
					{"curation.extract_timeout_seconds", fmt.Sprintf("%d", cfg.Curation.ExtractTimeoutSeconds)},
					{"correlate.overlap_threshold", fmt.Sprintf("%.2f", cfg.Correlate.OverlapThreshold)},
					{"correlate.author_year_score", fmt.Sprintf("%.2f", cfg.Correlate.AuthorYearScore)},
					{"correlate.author_year_override", fmt.Sprintf("%t", cfg.Correlate.AuthorYearOverride)},
					{"correlate.min_token_length", fmt.Sprintf("%d", cfg.Correlate.MinTokenLength)},
					{"batch.workers", fmt.Sprintf("%d", cfg.Batch.Workers)},
					{"search.base_url", cfg.Search.BaseURL},
					{"search.page_limit", fmt.Sprintf("%d", cfg.Search.PageLimit)},
					{"logging.format", cfg.Logging.Format},
					{"logging.level", cfg.Logging.Level},
				},
				[]columnAlignment{alignLeft, alignLeft},
			))
			return nil
		},
	}
}
