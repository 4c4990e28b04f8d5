package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/rzbill/cse/pkg/payload"
	"github.com/rzbill/cse/pkg/types"
	"github.com/rzbill/cse/pkg/update"
	"github.com/spf13/cobra"
)

func newClassifyCmd() *cobra.Command {
	var (
		entityFile    string
		entityID      string
		requestFile   string
		defaultPolicy string
		output        string
	)

	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Classify an update request against the observed cluster",
		Long: `Compare an update request with the spec rebuilt from the cluster's observed
status and report whether it is a resize, an upgrade or no change. Requests that
change fixed fields or mix a resize with an upgrade are rejected.

The current cluster is read from --entity, a cluster entity file, or loaded from the
entity store with --id.`,
		Example: `  cse classify --entity cluster.json --request update.yaml
  cse classify --id urn:vcloud:entity:cse:nativeCluster:1234 --request update.json -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if requestFile == "" {
				return errors.New("--request is required")
			}
			if (entityFile == "") == (entityID == "") {
				return errors.New("exactly one of --entity or --id is required")
			}

			env, err := newEnvironment()
			if err != nil {
				return err
			}
			raw, err := readDocument(requestFile, cmd.InOrStdin())
			if err != nil {
				return err
			}

			var plan *update.Plan
			if entityID != "" {
				client, closeStore, err := env.openStore()
				if err != nil {
					return err
				}
				defer closeStore()

				planner := update.NewPlanner(client, env.sizingLookup(defaultPolicy), update.WithLogger(env.logger))
				plan, err = planner.Plan(cmd.Context(), entityID, raw)
				if err != nil {
					return reportRejection(cmd.OutOrStdout(), err)
				}
			} else {
				current, err := readEntity(entityFile, cmd.InOrStdin())
				if err != nil {
					return err
				}
				req, err := payload.Decode(raw)
				if err != nil {
					return err
				}
				planner := update.NewPlanner(nil, env.sizingLookup(defaultPolicy), update.WithLogger(env.logger))
				plan, err = planner.PlanEntity(cmd.Context(), current.Entity, req.Entity)
				if err != nil {
					return reportRejection(cmd.OutOrStdout(), err)
				}
			}

			if output != "text" {
				return writeDocument(cmd.OutOrStdout(), plan, output)
			}
			return printPlan(cmd.OutOrStdout(), plan)
		},
	}

	cmd.Flags().StringVar(&entityFile, "entity", "", "Cluster entity file (JSON or YAML)")
	cmd.Flags().StringVar(&entityID, "id", "", "Load the cluster entity from the store by id")
	cmd.Flags().StringVar(&requestFile, "request", "", "Update request payload file (JSON or YAML, - for stdin)")
	cmd.Flags().StringVar(&defaultPolicy, "default-sizing-policy", "", "Default compute policy name of the datacenter (overrides config)")
	cmd.Flags().StringVarP(&output, "output", "o", "text", "Output format (text, json, yaml)")
	return cmd
}

func printPlan(w io.Writer, plan *update.Plan) error {
	p := newPalette(w)
	fmt.Fprintf(w, "%s %s\n", p.heading.Sprint("Operation:"), operationLabel(plan.Operation))
	if len(plan.Diff) == 0 {
		fmt.Fprintln(w, p.muted.Sprint("Request matches the observed cluster"))
		return nil
	}
	return NewResourceTable(w).RenderDiff(plan.Diff, p)
}

// reportRejection prints the offending fields of a rejected request and returns
// the error unchanged.
func reportRejection(w io.Writer, err error) error {
	var immutable *types.ImmutableFieldError
	if !errors.As(err, &immutable) {
		return err
	}
	p := newPalette(w)
	fmt.Fprintln(w, p.err.Sprint("Request changes fields that cannot be updated:"))
	for _, v := range immutable.Violations {
		fmt.Fprintf(w, "  %s: %s -> %s\n", v.Path,
			p.removed.Sprint(formatValue(v.Expected)),
			p.added.Sprint(formatValue(v.Actual)))
	}
	return err
}
