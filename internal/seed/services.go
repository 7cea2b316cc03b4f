package seed

import (
	"context"
	"fmt"
	"io"
	"time"

	"steprighthomes/internal/catalog"
	"steprighthomes/pkg/types"
)

type serviceRepository interface {
	AllServicesUnfiltered(ctx context.Context) ([]*types.Service, error)
	UpsertService(ctx context.Context, service *types.Service) error
	DeleteService(ctx context.Context, id string) error
}

// SeedServices syncs the services table with catalog.DefaultServices:
// - inserts services that don't exist
// - updates services that have changed
// - deletes services from the table that aren't in the catalog
//
// The service IDs must stay equal to the pricing service types, so adding a
// trade here also needs a base price range in the pricing package.
func SeedServices(ctx context.Context, repo serviceRepository, out io.Writer) error {
	services := catalog.DefaultServices

	fmt.Fprintln(out, "Starting service sync...")
	fmt.Fprintf(out, "  Catalog contains %d services\n", len(services))

	seedIDs := make(map[string]bool)
	for _, s := range services {
		seedIDs[s.ID] = true
	}

	existing, err := repo.AllServicesUnfiltered(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch existing services: %w", err)
	}
	fmt.Fprintf(out, "  Database contains %d services\n", len(existing))

	deletedCount := 0
	for _, e := range existing {
		if !seedIDs[e.ID] {
			fmt.Fprintf(out, "  Deleting service: %s (id: %s)\n", e.Title, e.ID)
			if err := repo.DeleteService(ctx, e.ID); err != nil {
				return fmt.Errorf("failed to delete service %s: %w", e.ID, err)
			}
			deletedCount++
		}
	}

	now := time.Now().UTC()
	upsertedCount := 0
	for _, s := range services {
		s.CreatedAt = now
		fmt.Fprintf(out, "  Upserting service: %s (id: %s)\n", s.Title, s.ID)
		if err := repo.UpsertService(ctx, &s); err != nil {
			return fmt.Errorf("failed to upsert service %s: %w", s.ID, err)
		}
		upsertedCount++
	}

	fmt.Fprintf(out, "\nSync complete: %d upserted, %d deleted\n", upsertedCount, deletedCount)
	return nil
}
