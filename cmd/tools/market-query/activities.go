// cmd/tools/market-query/activities.go
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"market-intel/internal/common/config"
	cr "market-intel/internal/workers/market/converse-research"
	rcd "market-intel/internal/workers/market/resolve-competitor-detail"
	rm "market-intel/internal/workers/market/resolve-market"
	"market-intel/pkg/registry"
)

// buildRegistry describes every worker the worker manager registers, with
// the job settings the given configuration would apply.
func buildRegistry(cfg *config.Config) *registry.ActivityRegistry {
	acts := []registry.Activity{rm.Activity(), rcd.Activity(), cr.Activity()}
	for i := range acts {
		wcfg := config.GetWorkerConfig(cfg, acts[i].TaskType)
		acts[i].Timeout = config.GetDuration(wcfg.Timeout).String()
		acts[i].Retries = wcfg.MaxRetries
		acts[i].MaxJobsActive = wcfg.MaxJobsActive
		acts[i].Enabled = wcfg.Enabled
	}
	return registry.New(Version, acts...)
}

func (a *app) activitiesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "activities",
		Short: "Generate or validate the activity registry for process modelers",
	}

	var out string
	generate := &cobra.Command{
		Use:   "generate",
		Short: "Write the registry for the configured workers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig(a.configPath)
			if err != nil {
				return err
			}
			reg := buildRegistry(cfg)
			if err := reg.Validate(); err != nil {
				return err
			}
			if out == "" {
				return writeJSON(cmd.OutOrStdout(), reg)
			}
			if err := reg.Save(out); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d activities to %s\n", len(reg.Activities), out)
			return nil
		},
	}
	generate.Flags().StringVarP(&out, "out", "o", "", "Output file (default stdout)")

	var path string
	validate := &cobra.Command{
		Use:   "validate",
		Short: "Check a registry file against the workers this build registers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := registry.LoadRegistry(path)
			if err != nil {
				return fmt.Errorf("failed to load registry: %w", err)
			}
			if err := reg.Validate(); err != nil {
				return err
			}
			for _, taskType := range []string{rm.TaskType, rcd.TaskType, cr.TaskType} {
				if _, ok := reg.Find(taskType); !ok {
					return fmt.Errorf("registry is missing task type %s", taskType)
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registry validation passed. Found %d activities.\n", len(reg.Activities))
			return nil
		},
	}
	validate.Flags().StringVar(&path, "path", "configs/activity-registry.json", "Path to registry file")

	cmd.AddCommand(generate, validate)
	return cmd
}
