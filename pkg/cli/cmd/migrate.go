package cmd

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rzbill/cse/pkg/log"
	"github.com/rzbill/cse/pkg/migration"
	"github.com/rzbill/cse/pkg/store"
	"github.com/rzbill/cse/pkg/types"
	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	var (
		source     string
		target     string
		filterArgs []string
		dryRun     bool
		schedule   string
		output     string
	)

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Move stored cluster entities to another schema generation",
		Long: `Convert every stored entity of the source type version to the target
generation, write it back and resolve it. An entity that fails to convert or
resolve is reported and the sweep continues with the next one.

With --schedule the sweep runs on a cron schedule until interrupted.`,
		Example: `  cse migrate --from 1.0.0 --to 2.0.0 --dry-run
  cse migrate --schedule "@every 30m"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newEnvironment()
			if err != nil {
				return err
			}
			if source == "" {
				source = env.cfg.Migration.Source
			}
			if target == "" {
				target = env.cfg.Migration.Target
			}
			sourceRef, err := env.typeRef(source)
			if err != nil {
				return err
			}
			gen, err := types.ParseGeneration(target)
			if err != nil {
				return err
			}
			filters, err := store.ParseFilters(filterArgs)
			if err != nil {
				return err
			}

			client, closeStore, err := env.openStore()
			if err != nil {
				return err
			}
			defer closeStore()

			sweeper := migration.NewSweeper(client, sourceRef, gen,
				migration.WithFilters(filters),
				migration.WithDryRun(dryRun),
				migration.WithLogger(env.logger))

			if schedule == "" {
				report, err := sweeper.Run(cmd.Context())
				if err != nil {
					return err
				}
				if output != "text" {
					return writeDocument(cmd.OutOrStdout(), report, output)
				}
				return printReport(cmd.OutOrStdout(), report, dryRun)
			}

			scheduler, err := migration.NewScheduler(sweeper, schedule, env.logger)
			if err != nil {
				return err
			}
			scheduler.Start()
			env.logger.Info("Waiting for scheduled migrations, interrupt to stop", log.Str("schedule", schedule))

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(sigCh)
			select {
			case <-sigCh:
			case <-cmd.Context().Done():
			}
			scheduler.Stop()

			if report := scheduler.LastReport(); report != nil {
				return printReport(cmd.OutOrStdout(), report, dryRun)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&source, "from", "", "Source entity type version (default from config)")
	cmd.Flags().StringVar(&target, "to", "", "Target schema generation (default from config)")
	cmd.Flags().StringArrayVar(&filterArgs, "filter", nil, "Only migrate entities matching path=value (repeatable)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Convert and validate without writing")
	cmd.Flags().StringVar(&schedule, "schedule", "", "Cron schedule; run repeatedly until interrupted")
	cmd.Flags().StringVarP(&output, "output", "o", "text", "Output format (text, json, yaml)")
	return cmd
}

func printReport(w io.Writer, report *migration.Report, dryRun bool) error {
	p := newPalette(w)
	verb := "Migrated"
	if dryRun {
		verb = "Would migrate"
	}
	fmt.Fprintf(w, "%s %d of %d entities from %s to %s",
		verb,
		len(report.Migrated),
		len(report.Migrated)+len(report.Failed),
		report.Source.Version,
		report.Target.Version)
	if !dryRun {
		fmt.Fprintf(w, " (%d resolved)", report.Resolved)
	}
	fmt.Fprintln(w)

	if len(report.Failed) == 0 {
		return nil
	}
	fmt.Fprintln(w, p.err.Sprintf("%d failed:", len(report.Failed)))
	return NewResourceTable(w).RenderFailures(report.Failed)
}
