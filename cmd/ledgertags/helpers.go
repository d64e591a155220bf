package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/mwhitfield/ledgertags/internal/config"
	"github.com/mwhitfield/ledgertags/internal/model"
	"github.com/mwhitfield/ledgertags/internal/storage"
)

// initStorage opens the configured database and brings the schema up to
// date.
func initStorage(ctx context.Context) (*storage.SQLiteStorage, error) {
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = config.DefaultDBPath
	}
	dbPath = config.ExpandPath(dbPath)

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return store, nil
}

// tenantScope reads the tenant configuration required by every command
// that touches records.
func tenantScope() (model.TenantType, string, error) {
	tenantType := model.TenantType(viper.GetString("tenant.type"))
	if err := tenantType.Validate(); err != nil {
		return "", "", err
	}
	tenantID := viper.GetString("tenant.id")
	if strings.TrimSpace(tenantID) == "" {
		return "", "", fmt.Errorf("tenant id is required (--tenant-id or tenant.id in config)")
	}
	return tenantType, tenantID, nil
}

// resolveUserID applies the acting-user default: for user tenants the
// tenant itself acts unless an explicit user is given. Organization
// tenants have no implicit acting user.
func resolveUserID(tenantType model.TenantType, tenantID, userID string) string {
	if userID == "" && tenantType == model.TenantTypeUser {
		return tenantID
	}
	return userID
}

// parseFilters converts key=value pairs into tag filters.
func parseFilters(pairs []string) (map[string]string, error) {
	filters := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, found := strings.Cut(pair, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("invalid filter %q, expected key=value", pair)
		}
		filters[key] = value
	}
	return filters, nil
}
