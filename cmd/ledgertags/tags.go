package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mwhitfield/ledgertags/internal/model"
	"github.com/mwhitfield/ledgertags/internal/tags"
)

func tagsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tags",
		Short: "Inspect and manage tags",
	}

	cmd.AddCommand(tagsShowCmd())
	cmd.AddCommand(tagsAddCmd())
	cmd.AddCommand(tagsFindCmd())
	cmd.AddCommand(tagsDeactivateCmd())
	return cmd
}

func tagsShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <resource-id>",
		Short: "Show active tags for a resource",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resourceType, _ := cmd.Flags().GetString("resource-type")
			typeNames, _ := cmd.Flags().GetStringSlice("type")

			tenantType, tenantID, err := tenantScope()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			tagTypes := make([]model.TagType, 0, len(typeNames))
			for _, name := range typeNames {
				tagTypes = append(tagTypes, model.TagType(strings.ToUpper(name)))
			}

			svc := tags.NewService(store)
			resourceTags, err := svc.ResourceTags(ctx, resourceType, args[0], tenantType, tenantID, tagTypes...)
			if err != nil {
				return err
			}
			if len(resourceTags) == 0 {
				fmt.Println("No tags found.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "TYPE\tKEY\tVALUE\tLABEL\tPRIORITY")
			for _, tag := range resourceTags {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n", tag.Type, tag.Key, tag.Value, tag.Label, tag.Priority)
			}
			return w.Flush()
		},
	}

	cmd.Flags().String("resource-type", "transaction", "resource type (transaction, account, budget)")
	cmd.Flags().StringSlice("type", nil, "filter by tag type (USER, ORGANIZATION, ROLE, CATEGORY, CUSTOM)")
	return cmd
}

func tagsAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <resource-id> <key>=<value>",
		Short: "Attach a custom tag to a resource",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			resourceType, _ := cmd.Flags().GetString("resource-type")
			label, _ := cmd.Flags().GetString("label")
			priority, _ := cmd.Flags().GetInt("priority")

			key, value, found := strings.Cut(args[1], "=")
			if !found || key == "" {
				return fmt.Errorf("invalid tag %q, expected key=value", args[1])
			}

			tenantType, tenantID, err := tenantScope()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			svc := tags.NewService(store)
			tag, err := svc.CreateTag(ctx, tags.CreateTagParams{
				Type:         model.TagTypeCustom,
				Key:          key,
				Value:        value,
				ResourceType: resourceType,
				ResourceID:   args[0],
				TenantType:   tenantType,
				TenantID:     tenantID,
				Label:        label,
				Priority:     priority,
			})
			if err != nil {
				return err
			}

			fmt.Printf("tag %s: %s=%s on %s %s\n", tag.ID, tag.Key, tag.Value, resourceType, args[0])
			return nil
		},
	}

	cmd.Flags().String("resource-type", "transaction", "resource type (transaction, account, budget)")
	cmd.Flags().String("label", "", "display label")
	cmd.Flags().Int("priority", 0, "display priority (higher sorts first)")
	return cmd
}

func tagsFindCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "find <key>=<value> [key=value...]",
		Short: "Find resources matching all tag filters",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resourceType, _ := cmd.Flags().GetString("resource-type")

			filters, err := parseFilters(args)
			if err != nil {
				return err
			}

			tenantType, tenantID, err := tenantScope()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			svc := tags.NewService(store)
			ids, err := svc.TaggedResources(ctx, filters, resourceType, tenantType, tenantID)
			if err != nil {
				return err
			}
			if len(ids) == 0 {
				fmt.Println("No resources match the given filters.")
				return nil
			}
			for _, id := range ids {
				fmt.Println(id)
			}
			return nil
		},
	}

	cmd.Flags().String("resource-type", "transaction", "resource type (transaction, account, budget)")
	return cmd
}

func tagsDeactivateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "deactivate <tag-id>",
		Short: "Deactivate a tag without deleting it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.DeactivateTag(ctx, args[0]); err != nil {
				return err
			}
			fmt.Printf("tag %s deactivated\n", args[0])
			return nil
		},
	}
}
