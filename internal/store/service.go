package store

import (
	"context"
	"fmt"

	"steprighthomes/internal/utils"
	"steprighthomes/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
)

const serviceTableName = "steprighthomes.services"

var serviceColumns = utils.Columns(types.Service{})

type ServiceRepository struct {
	pool *pgxpool.Pool
}

func NewServiceRepository(pool *pgxpool.Pool) *ServiceRepository {
	return &ServiceRepository{pool: pool}
}

func (r *ServiceRepository) AllServices(ctx context.Context) ([]*types.Service, error) {
	query, args, err := psql().
		Select(serviceColumns...).
		From(serviceTableName).
		Where(sq.Eq{"is_active": true}).
		OrderBy("display_order ASC", "title ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate services query: %w", err)
	}

	var services []*types.Service
	err = pgxscan.Select(ctx, r.pool, &services, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch services: %w", err)
	}

	return services, nil
}

func (r *ServiceRepository) AllServicesUnfiltered(ctx context.Context) ([]*types.Service, error) {
	query, args, err := psql().
		Select(serviceColumns...).
		From(serviceTableName).
		OrderBy("display_order ASC", "title ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate services query: %w", err)
	}

	var services []*types.Service
	err = pgxscan.Select(ctx, r.pool, &services, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch services: %w", err)
	}

	return services, nil
}

func (r *ServiceRepository) ServiceByID(ctx context.Context, id string) (*types.Service, error) {
	query, args, err := psql().
		Select(serviceColumns...).
		From(serviceTableName).
		Where(sq.Eq{"id": id, "is_active": true}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate service query: %w", err)
	}

	var service types.Service
	err = pgxscan.Get(ctx, r.pool, &service, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrServiceNotFound
		}
		return nil, fmt.Errorf("failed to fetch service: %w", err)
	}

	return &service, nil
}

func (r *ServiceRepository) UpsertService(ctx context.Context, service *types.Service) error {
	serviceMap := utils.ColumnValues(service)

	// id and created_at never change once a row exists
	updateMap := make(map[string]any)
	for k, v := range serviceMap {
		if k != "id" && k != "created_at" {
			updateMap[k] = v
		}
	}

	query, args, err := psql().
		Insert(serviceTableName).
		SetMap(serviceMap).
		Suffix("ON CONFLICT (id) DO UPDATE SET " + buildUpdateClause(updateMap)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate upsert query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to upsert service: %w", err)
	}

	return nil
}

func (r *ServiceRepository) DeleteService(ctx context.Context, id string) error {
	query, args, err := psql().
		Delete(serviceTableName).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate delete query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete service: %w", err)
	}

	return nil
}
