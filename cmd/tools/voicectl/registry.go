// cmd/tools/voicectl/registry.go
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"voice-command-workers/pkg/registry"
)

func newRegistryCmd() *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "registry",
		Short: "Maintain the activity registry",
	}
	cmd.PersistentFlags().StringVar(&path, "path", "configs/activity-registry.json", "path to registry file")

	validate := &cobra.Command{
		Use:   "validate",
		Short: "Check the registry for missing fields, duplicates and bad schemas",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := registry.LoadRegistry(path)
			if err != nil {
				return err
			}
			if err := reg.Validate(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registry is valid (%d activities)\n", len(reg.Activities))
			return nil
		},
	}

	var a registry.Activity
	add := &cobra.Command{
		Use:   "add",
		Short: "Add an activity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := registry.LoadRegistry(path)
			if err != nil {
				return err
			}
			if a.TaskType == "" {
				a.TaskType = a.ID
			}
			if err := reg.Add(a); err != nil {
				return err
			}
			if err := reg.Save(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added activity: %s\n", a.ID)
			return nil
		},
	}
	add.Flags().StringVar(&a.ID, "id", "", "activity id")
	add.Flags().StringVar(&a.DisplayName, "display-name", "", "display name")
	add.Flags().StringVar(&a.Description, "description", "", "description")
	add.Flags().StringVar(&a.Category, "category", "", "category (e.g. voice-command)")
	add.Flags().StringVar(&a.TaskType, "task-type", "", "Zeebe task type (defaults to id)")
	add.Flags().StringVar(&a.Version, "version", "1.0.0", "version")
	add.Flags().StringVar(&a.ImplementationStatus, "status", "planned", "implementation status")
	add.Flags().StringVar(&a.Timeout, "timeout", "10s", "job timeout")
	for _, f := range []string{"id", "display-name", "category"} {
		_ = add.MarkFlagRequired(f)
	}

	var id, field, value string
	update := &cobra.Command{
		Use:   "update",
		Short: "Update one field of an activity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := registry.LoadRegistry(path)
			if err != nil {
				return err
			}
			if err := reg.Update(id, field, value); err != nil {
				return err
			}
			if err := reg.Save(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %s.%s = %s\n", id, field, value)
			return nil
		},
	}
	update.Flags().StringVar(&id, "id", "", "activity id")
	update.Flags().StringVar(&field, "field", "", "field to update (status, version, timeout, retries, ...)")
	update.Flags().StringVar(&value, "value", "", "new value")
	for _, f := range []string{"id", "field", "value"} {
		_ = update.MarkFlagRequired(f)
	}

	cmd.AddCommand(validate, add, update)
	return cmd
}
