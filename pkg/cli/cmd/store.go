package cmd

import (
	"fmt"

	"github.com/rzbill/cse/pkg/store"
	"github.com/rzbill/cse/pkg/types"
	"github.com/spf13/cobra"
)

func newStoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Manage the local cluster entity store",
		Long: `Import, list, resolve and delete cluster entities in the local entity store.
Every write keeps the previous version, see "cse store history".`,
	}

	cmd.AddCommand(newStoreListCmd())
	cmd.AddCommand(newStoreGetCmd())
	cmd.AddCommand(newStoreImportCmd())
	cmd.AddCommand(newStoreResolveCmd())
	cmd.AddCommand(newStoreDeleteCmd())
	cmd.AddCommand(newStoreHistoryCmd())
	return cmd
}

func newStoreListCmd() *cobra.Command {
	var (
		typeVersion string
		filterArgs  []string
		pageSize    int
		output      string
	)

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List cluster entities of one type version",
		Example: `  cse store list --type-version 1.0.0
  cse store list --filter entity.metadata.orgName=org1 --filter state=RESOLVED`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newEnvironment()
			if err != nil {
				return err
			}
			ref, err := env.typeRef(typeVersion)
			if err != nil {
				return err
			}
			filters, err := store.ParseFilters(filterArgs)
			if err != nil {
				return err
			}
			if pageSize > 0 {
				env.cfg.Store.PageSize = pageSize
			}

			client, closeStore, err := env.openStore()
			if err != nil {
				return err
			}
			defer closeStore()

			entities := []*types.ClusterEntity{}
			for entity, err := range client.ListByType(cmd.Context(), ref, filters) {
				if err != nil {
					return err
				}
				entities = append(entities, entity)
			}

			if output != "table" {
				return writeDocument(cmd.OutOrStdout(), entities, output)
			}
			return NewResourceTable(cmd.OutOrStdout()).RenderEntities(entities)
		},
	}

	cmd.Flags().StringVar(&typeVersion, "type-version", string(types.Generation2), "Entity type version to list")
	cmd.Flags().StringArrayVar(&filterArgs, "filter", nil, "Filter as path=value on the entity document (repeatable)")
	cmd.Flags().IntVar(&pageSize, "page-size", 0, "Page size used when reading the store (default from config)")
	cmd.Flags().StringVarP(&output, "output", "o", "table", "Output format (table, json, yaml)")
	return cmd
}

func newStoreGetCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "get ID",
		Short: "Show one cluster entity",
		Args:  requireArgs("ID"),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newEnvironment()
			if err != nil {
				return err
			}
			client, closeStore, err := env.openStore()
			if err != nil {
				return err
			}
			defer closeStore()

			entity, err := client.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if output == "table" {
				return NewResourceTable(cmd.OutOrStdout()).RenderEntities([]*types.ClusterEntity{entity})
			}
			return writeDocument(cmd.OutOrStdout(), entity, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "yaml", "Output format (table, json, yaml)")
	return cmd
}

func newStoreImportCmd() *cobra.Command {
	var resolve bool

	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Store a cluster entity or request payload as a new entity",
		Long: `Store a cluster entity envelope, or the body of a request payload, as a new
entity. The store assigns the id and the entity starts in PRE_VALIDATION state
unless --resolve is given.`,
		Args: requireArgs("FILE"),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newEnvironment()
			if err != nil {
				return err
			}
			entity, err := readEntityOrPayload(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}
			entity.ID = ""

			client, closeStore, err := env.openStore()
			if err != nil {
				return err
			}
			defer closeStore()

			created, err := client.Create(cmd.Context(), entity)
			if err != nil {
				return err
			}
			if resolve {
				if created, err = client.Resolve(cmd.Context(), created.ID); err != nil {
					return err
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", created.ID, created.State)
			return nil
		},
	}

	cmd.Flags().BoolVar(&resolve, "resolve", false, "Schema check the entity right after storing it")
	return cmd
}

func newStoreResolveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve ID",
		Short: "Schema check a stored entity and record the outcome",
		Args:  requireArgs("ID"),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newEnvironment()
			if err != nil {
				return err
			}
			client, closeStore, err := env.openStore()
			if err != nil {
				return err
			}
			defer closeStore()

			entity, err := client.Resolve(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", entity.ID, entity.State)
			return nil
		},
	}
}

func newStoreDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete ID",
		Aliases: []string{"rm"},
		Short:   "Delete a stored entity",
		Args:    requireArgs("ID"),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newEnvironment()
			if err != nil {
				return err
			}
			client, closeStore, err := env.openStore()
			if err != nil {
				return err
			}
			defer closeStore()

			if err := client.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s deleted\n", args[0])
			return nil
		},
	}
}

func newStoreHistoryCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "history ID",
		Short: "List the stored versions of an entity, newest first",
		Args:  requireArgs("ID"),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newEnvironment()
			if err != nil {
				return err
			}
			client, closeStore, err := env.openStore()
			if err != nil {
				return err
			}
			defer closeStore()

			versions, err := client.History(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if output != "table" {
				return writeDocument(cmd.OutOrStdout(), versions, output)
			}
			return NewResourceTable(cmd.OutOrStdout()).RenderHistory(versions)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "table", "Output format (table, json, yaml)")
	return cmd
}
