package cmd

import (
	"github.com/rzbill/cse/pkg/convert"
	"github.com/rzbill/cse/pkg/log"
	"github.com/rzbill/cse/pkg/types"
	"github.com/spf13/cobra"
)

func newConvertCmd() *cobra.Command {
	var (
		target string
		output string
	)

	cmd := &cobra.Command{
		Use:   "convert FILE",
		Short: "Convert a cluster entity to another schema generation",
		Long: `Convert a cluster entity, or a request payload, to another schema generation.
FILE may be JSON or YAML; use "-" to read standard input. Fields that only exist in
the target generation are left at their zero values; fields that only exist in the
source generation are dropped.`,
		Example: `  # Convert a stored generation 1 entity to generation 2
  cse convert cluster.json --to 2.0.0

  # Convert a request payload and print YAML
  cse convert request.yaml --to 1.0.0 -o yaml`,
		Args: requireArgs("FILE"),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newEnvironment()
			if err != nil {
				return err
			}
			gen, err := types.ParseGeneration(target)
			if err != nil {
				return err
			}

			entity, err := readEntityOrPayload(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}
			converted, err := convert.Convert(entity, gen)
			if err != nil {
				return err
			}
			env.logger.Debug("Converted cluster entity",
				log.Str("name", entity.Name),
				log.Str("from", entity.Generation().String()),
				log.Str("to", gen.String()))

			return writeDocument(cmd.OutOrStdout(), converted, output)
		},
	}

	cmd.Flags().StringVar(&target, "to", string(types.Generation2), "Target schema generation (1.0.0, 2.0.0)")
	cmd.Flags().StringVarP(&output, "output", "o", "json", "Output format (json, yaml)")
	return cmd
}
