package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"idfworkspace/pkg/domain"
	"idfworkspace/pkg/idf"
	"idfworkspace/pkg/workspace"
)

func (a *app) validateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate MODEL.idf",
		Short: "Report violations of a model at a strictness level",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			provider, err := a.loadSchema()
			if err != nil {
				return err
			}
			level, err := a.strictness()
			if err != nil {
				return err
			}
			ws, err := a.readModel(provider, args[0], domain.StrictnessNone)
			if err != nil {
				return err
			}
			report := ws.ValidityReport(level)
			out := cmd.OutOrStdout()
			if report.Empty() {
				fmt.Fprintf(out, "%s: %d objects, valid at %s\n", args[0], ws.NumObjects(), level)
				return nil
			}
			fmt.Fprintf(out, "%s: %s\n", args[0], report)
			return errViolations
		},
	}
	a.modelFlags(cmd)
	return cmd
}

func (a *app) saveCmd() *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "save MODEL.idf",
		Short: "Store a model as a named snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			provider, err := a.loadSchema()
			if err != nil {
				return err
			}
			level, err := a.strictness()
			if err != nil {
				return err
			}
			ws, err := a.readModel(provider, args[0], level)
			if err != nil {
				return err
			}
			store, err := a.openStore(cmd.Context(), provider)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()
			snap := ws.Snapshot(name, a.now())
			if err := store.Save(cmd.Context(), snap); err != nil {
				return err
			}
			a.log.Info("snapshot saved", "name", name, "objects", len(snap.Records), "strictness", snap.Strictness.String(), "driver", a.cfg.StorageDriver)
			fmt.Fprintf(cmd.OutOrStdout(), "saved %s (%d objects, %s)\n", name, len(snap.Records), snap.Strictness)
			return nil
		},
	}
	a.modelFlags(cmd)
	cmd.Flags().StringVar(&name, "name", "", "snapshot name")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func (a *app) loadCmd() *cobra.Command {
	var name, output string
	cmd := &cobra.Command{
		Use:   "load",
		Short: "Rebuild a snapshot and write it as IDF",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			provider, err := a.loadSchema()
			if err != nil {
				return err
			}
			store, err := a.openStore(cmd.Context(), provider)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()
			snap, err := store.Load(cmd.Context(), name)
			if err != nil {
				return err
			}
			ws, err := workspace.FromSnapshot(provider, snap, a.workspaceOptions(snap.Strictness)...)
			if err != nil {
				return err
			}
			var w io.Writer = cmd.OutOrStdout()
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer func() { _ = f.Close() }()
				w = f
			}
			return idf.NewEncoder(w, idf.WithSchema(provider)).Encode(ws.RecordStream())
		},
	}
	cmd.Flags().StringVar(&a.schemaPath, "schema", "", "YAML schema file")
	cmd.Flags().StringVar(&name, "name", "", "snapshot name")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write IDF to this file instead of stdout")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func (a *app) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored snapshots",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := a.openStore(cmd.Context(), nil)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()
			names, err := store.List(cmd.Context())
			if err != nil {
				return err
			}
			for _, n := range names {
				fmt.Fprintln(cmd.OutOrStdout(), n)
			}
			return nil
		},
	}
}

func (a *app) deleteCmd() *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete a stored snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := a.openStore(cmd.Context(), nil)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()
			ok, err := store.Delete(cmd.Context(), name)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%s: %w", name, domain.ErrSnapshotNotFound)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", name)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "snapshot name")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func (a *app) namesCmd() *cobra.Command {
	var objectType string
	var fillIn bool
	cmd := &cobra.Command{
		Use:   "names MODEL.idf",
		Short: "Print the next free name for an object type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if objectType == "" {
				return errors.New("--type is required")
			}
			provider, err := a.loadSchema()
			if err != nil {
				return err
			}
			ws, err := a.readModel(provider, args[0], domain.StrictnessNone)
			if err != nil {
				return err
			}
			name, err := ws.NextName(objectType, fillIn)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), name)
			return nil
		},
	}
	cmd.Flags().StringVar(&a.schemaPath, "schema", "", "YAML schema file")
	cmd.Flags().StringVar(&objectType, "type", "", "object type")
	cmd.Flags().BoolVar(&fillIn, "fill-in", false, "reuse the lowest free suffix instead of the next after the highest")
	return cmd
}

func (a *app) modelFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&a.schemaPath, "schema", "", "YAML schema file")
	cmd.Flags().StringVar(&a.level, "level", "", "strictness level: none|draft|final (env IDFWS_STRICTNESS)")
}
