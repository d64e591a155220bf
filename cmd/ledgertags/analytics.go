package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mwhitfield/ledgertags/internal/analytics"
	"github.com/mwhitfield/ledgertags/internal/cli"
	"github.com/mwhitfield/ledgertags/internal/tags"
)

func analyticsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analytics",
		Short: "Compute metrics over tag-filtered resources",
	}

	cmd.AddCommand(analyticsReportCmd())
	cmd.AddCommand(analyticsSummaryCmd())
	cmd.AddCommand(analyticsViewCmd())
	return cmd
}

func analyticsReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report [key=value...]",
		Short: "Compute metrics for one resource type",
		Long: `Resolve the given tag filters to a resource set and aggregate it.
Filters combine with AND semantics; no filters means no resources.

Examples:
  ledgertags analytics report user_id=alice
  ledgertags analytics report user_id=alice classification=SALARY_INCOME --resource-type transaction`,
		RunE: func(cmd *cobra.Command, args []string) error {
			resourceType, _ := cmd.Flags().GetString("resource-type")
			fromStr, _ := cmd.Flags().GetString("from")
			toStr, _ := cmd.Flags().GetString("to")

			filters, err := parseFilters(args)
			if err != nil {
				return err
			}

			tenantType, tenantID, err := tenantScope()
			if err != nil {
				return err
			}

			query := analytics.Query{
				Filters:      filters,
				ResourceType: resourceType,
				TenantType:   tenantType,
				TenantID:     tenantID,
			}
			if query.PeriodStart, err = parseDate(fromStr); err != nil {
				return err
			}
			if query.PeriodEnd, err = parseDate(toStr); err != nil {
				return err
			}

			ctx := cmd.Context()
			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			engine := analytics.NewEngine(tags.NewService(store), store)
			metrics, err := engine.ComputeTagMetrics(ctx, query)
			if err != nil {
				return err
			}

			fmt.Print(cli.FormatMetrics(metrics))
			return nil
		},
	}

	cmd.Flags().String("resource-type", "transaction", "resource type (transaction, account, budget)")
	cmd.Flags().String("from", "", "period start (YYYY-MM-DD)")
	cmd.Flags().String("to", "", "period end (YYYY-MM-DD)")
	return cmd
}

func analyticsSummaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary [key=value...]",
		Short: "Compute metrics across all resource types",
		RunE: func(cmd *cobra.Command, args []string) error {
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

			engine := analytics.NewEngine(tags.NewService(store), store)
			summary, err := engine.Summary(ctx, tenantType, tenantID, filters)
			if err != nil {
				return err
			}

			fmt.Print(cli.FormatSummary(summary))
			return nil
		},
	}
}

func analyticsViewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view",
		Short: "Manage saved analyses",
	}

	cmd.AddCommand(viewCreateCmd())
	cmd.AddCommand(viewRefreshCmd())
	cmd.AddCommand(viewShowCmd())
	return cmd
}

func viewCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create <name> [key=value...]",
		Short: "Create a saved analysis",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resourceTypes, _ := cmd.Flags().GetStringSlice("resource-types")
			fromStr, _ := cmd.Flags().GetString("from")
			toStr, _ := cmd.Flags().GetString("to")

			filters, err := parseFilters(args[1:])
			if err != nil {
				return err
			}

			tenantType, tenantID, err := tenantScope()
			if err != nil {
				return err
			}

			params := analytics.CreateViewParams{
				Name:          args[0],
				Filters:       filters,
				ResourceTypes: resourceTypes,
				TenantType:    tenantType,
				TenantID:      tenantID,
			}
			if params.PeriodStart, err = parseDate(fromStr); err != nil {
				return err
			}
			if params.PeriodEnd, err = parseDate(toStr); err != nil {
				return err
			}

			ctx := cmd.Context()
			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			engine := analytics.NewEngine(tags.NewService(store), store)
			view, err := engine.CreateView(ctx, params)
			if err != nil {
				return err
			}

			fmt.Printf("view %s created (status: %s)\n", view.ID, view.Status)
			return nil
		},
	}

	cmd.Flags().StringSlice("resource-types", []string{analytics.ResourceTransaction}, "resource types to aggregate")
	cmd.Flags().String("from", "", "period start (YYYY-MM-DD)")
	cmd.Flags().String("to", "", "period end (YYYY-MM-DD)")
	return cmd
}

func viewRefreshCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh <view-id>",
		Short: "Recompute a saved analysis",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			engine := analytics.NewEngine(tags.NewService(store), store)
			view, err := engine.RefreshView(ctx, args[0])
			if err != nil {
				return err
			}

			fmt.Printf("view %s refreshed (status: %s, computed at %s)\n",
				view.ID, view.Status, view.LastComputed.Format(time.RFC3339))
			return nil
		},
	}
}

func viewShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <view-id>",
		Short: "Show a saved analysis",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			view, err := store.GetAnalyticsView(ctx, args[0])
			if err != nil {
				return err
			}

			var b strings.Builder
			b.WriteString(cli.TitleStyle.Render(view.Name))
			b.WriteString("\n")
			fmt.Fprintf(&b, "%s%s\n", cli.LabelStyle.Render("ID"), view.ID)
			fmt.Fprintf(&b, "%s%s\n", cli.LabelStyle.Render("Status"), view.Status)
			fmt.Fprintf(&b, "%s%s\n", cli.LabelStyle.Render("Resource types"), strings.Join(view.ResourceTypes, ", "))
			for key, value := range view.TagFilters {
				fmt.Fprintf(&b, "%s%s=%s\n", cli.LabelStyle.Render("Filter"), key, value)
			}
			if !view.LastComputed.IsZero() {
				fmt.Fprintf(&b, "%s%s\n", cli.LabelStyle.Render("Last computed"), view.LastComputed.Format(time.RFC3339))
			}
			fmt.Print(b.String())
			return nil
		},
	}
}

// parseDate parses an optional YYYY-MM-DD flag value.
func parseDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q, expected YYYY-MM-DD: %w", value, err)
	}
	return &t, nil
}
