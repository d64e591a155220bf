package main

import (
	"fmt"
	"log/slog"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mwhitfield/ledgertags/internal/rules"
	"github.com/mwhitfield/ledgertags/internal/tags"
)

func classifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Classify and tag unprocessed transactions",
		Long: `Assign a classification and category to every transaction that does not
yet carry a classification tag, then attach the standard tag set
(tenant, user, roles) to each one.`,
		RunE: runClassify,
	}

	cmd.Flags().String("user-id", "", "acting user for role tags (defaults to tenant id for user tenants)")
	cmd.Flags().Bool("no-tags", false, "classify only, do not create tags")
	return cmd
}

func runClassify(cmd *cobra.Command, _ []string) error {
	userID, _ := cmd.Flags().GetString("user-id")
	noTags, _ := cmd.Flags().GetBool("no-tags")

	tenantType, tenantID, err := tenantScope()
	if err != nil {
		return err
	}
	userID = resolveUserID(tenantType, tenantID, userID)

	ctx := cmd.Context()
	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	transactions, err := store.GetUnclassifiedTransactions(ctx, tenantType, tenantID)
	if err != nil {
		return fmt.Errorf("failed to load transactions: %w", err)
	}
	if len(transactions) == 0 {
		slog.Info("nothing to classify")
		return nil
	}

	classifier := rules.NewClassifier(rules.DefaultRegistry(), classifierConfig())
	tagger := tags.NewAutoTagger(tags.NewService(store), store, classifier)

	counts := make(map[string]int)
	bar := progressbar.Default(int64(len(transactions)), "classifying")
	for i := range transactions {
		txn := &transactions[i]
		result, _, err := tagger.ProcessTransaction(ctx, txn, userID, !noTags)
		if err != nil {
			return fmt.Errorf("failed to classify transaction %s: %w", txn.ID, err)
		}
		counts[string(result.Classification)]++
		_ = bar.Add(1)
	}

	slog.Info("classification complete", "transactions", len(transactions))
	for label, count := range counts {
		slog.Info("classified", "label", label, "count", count)
	}
	return nil
}

// classifierConfig reads threshold overrides from configuration.
func classifierConfig() rules.Config {
	cfg := rules.Config{}
	if v := viper.GetString("classifier.large_transfer_threshold"); v != "" {
		if d, err := rules.ParseAmount(v); err == nil {
			cfg.LargeTransferThreshold = d
		}
	}
	if v := viper.GetString("classifier.micro_transaction_threshold"); v != "" {
		if d, err := rules.ParseAmount(v); err == nil {
			cfg.MicroTransactionThreshold = d
		}
	}
	return cfg
}
