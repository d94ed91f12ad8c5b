package main

import (
	"github.com/scrypster/kindred/internal/engine"
	"github.com/spf13/cobra"
)

func newPathCmd(a *app) *cobra.Command {
	var depth int

	cmd := &cobra.Command{
		Use:     "path <person-a> <person-b>",
		Short:   "Describe how person A is related to person B",
		GroupID: "query",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(cmd.Context(), a.cfg, a.logger)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			req := engine.ResolveRequest{PersonAID: args[0], PersonBID: args[1]}
			if cmd.Flags().Changed("depth") {
				req.MaxDepth = &depth
			}

			res, err := buildKinship(store, a.cfg, a.logger).service.ResolveKinship(cmd.Context(), req)
			if err != nil {
				return err
			}

			if a.jsonOutput {
				return printJSON(a.out, res)
			}
			printResolution(a.out, args[0], args[1], res)
			return nil
		},
	}
	cmd.Flags().IntVar(&depth, "depth", engine.DefaultResolveDepth, "maximum path length to search")
	return cmd
}

func newKinCmd(a *app) *cobra.Command {
	var depth int

	cmd := &cobra.Command{
		Use:     "kin <person>",
		Short:   "List a person's ancestors, descendants, siblings and spouses",
		GroupID: "query",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(cmd.Context(), a.cfg, a.logger)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			req := engine.ClassifyRequest{RootID: args[0]}
			if cmd.Flags().Changed("depth") {
				req.MaxDepth = &depth
			}

			summary, err := buildKinship(store, a.cfg, a.logger).service.ClassifyKin(cmd.Context(), req)
			if err != nil {
				return err
			}

			if a.jsonOutput {
				return printJSON(a.out, summary)
			}
			printKinSummary(a.out, summary)
			return nil
		},
	}
	cmd.Flags().IntVar(&depth, "depth", engine.DefaultClassifyDepth, "generations to search in each direction")
	return cmd
}
