package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gardenhub/backend/domain"
	"github.com/gardenhub/backend/pkg/dates"
	"github.com/gardenhub/backend/repository"
)

type orderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository instantiates a Postgres-backed order repository.
func NewOrderRepository(pool *pgxpool.Pool) repository.OrderRepository {
	return &orderRepository{pool: pool}
}

const orderSelect = `
	SELECT o.id, o.plot_id, o.requester_id, o.start_date, o.end_date, o.canceled,
		COALESCE(array_agg(DISTINCT oc.crop_id) FILTER (WHERE oc.crop_id IS NOT NULL), '{}'),
		o.created_at, o.updated_at
	FROM orders o
	LEFT JOIN order_crops oc ON oc.order_id = o.id
`

const orderGroupBy = ` GROUP BY o.id, o.plot_id, o.requester_id, o.start_date, o.end_date, o.canceled, o.created_at, o.updated_at`

func (r *orderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	query := orderSelect + ` WHERE o.id = $1` + orderGroupBy
	return scanOrder(r.pool.QueryRow(ctx, query, id))
}

func (r *orderRepository) ListByPlot(ctx context.Context, plotID string) ([]domain.Order, error) {
	query := orderSelect + ` WHERE o.plot_id = $1` + orderGroupBy + ` ORDER BY o.start_date`
	return r.queryOrders(ctx, query, plotID)
}

func (r *orderRepository) ListByPlots(ctx context.Context, plotIDs []string) ([]domain.Order, error) {
	if len(plotIDs) == 0 {
		return []domain.Order{}, nil
	}
	query := orderSelect + ` WHERE o.plot_id = ANY($1)` + orderGroupBy + ` ORDER BY o.start_date`
	return r.queryOrders(ctx, query, plotIDs)
}

func (r *orderRepository) ListByGardens(ctx context.Context, gardenIDs []string) ([]domain.Order, error) {
	if len(gardenIDs) == 0 {
		return []domain.Order{}, nil
	}
	query := orderSelect + `
	WHERE o.plot_id IN (SELECT id FROM plots WHERE garden_id = ANY($1))` +
		orderGroupBy + ` ORDER BY o.start_date`
	return r.queryOrders(ctx, query, gardenIDs)
}

func (r *orderRepository) ExistsOpenByPlots(ctx context.Context, plotIDs []string, today time.Time) (bool, error) {
	if len(plotIDs) == 0 {
		return false, nil
	}

	const query = `
	SELECT EXISTS (
		SELECT 1 FROM orders
		WHERE plot_id = ANY($1) AND end_date > $2 AND NOT canceled
	)
	`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, plotIDs, today).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *orderRepository) Create(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	if order == nil {
		return nil, domain.ErrInvalidPayload
	}
	if err := order.Validate(); err != nil {
		return nil, err
	}
	if order.ID == "" {
		order.ID = uuid.NewString()
	}

	const query = `
	INSERT INTO orders (id, plot_id, requester_id, start_date, end_date, canceled)
	VALUES ($1, $2, $3, $4, $5, $6)
	RETURNING created_at, updated_at
	`

	err := r.pool.QueryRow(ctx, query,
		order.ID,
		order.PlotID,
		order.RequesterID,
		order.StartDate.Time(),
		order.EndDate.Time(),
		order.Canceled,
	).Scan(&order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return nil, err
	}

	for _, cropID := range order.CropIDs {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO order_crops (order_id, crop_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			order.ID, cropID)
		if err != nil {
			return nil, err
		}
	}
	return order, nil
}

func (r *orderRepository) Cancel(ctx context.Context, id string) error {
	const query = `
	UPDATE orders
	SET canceled = TRUE, updated_at = NOW()
	WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

func (r *orderRepository) queryOrders(ctx context.Context, query string, args ...interface{}) ([]domain.Order, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := []domain.Order{}
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return orders, nil
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var (
		order     domain.Order
		startDate time.Time
		endDate   time.Time
	)
	err := row.Scan(
		&order.ID,
		&order.PlotID,
		&order.RequesterID,
		&startDate,
		&endDate,
		&order.Canceled,
		&order.CropIDs,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, err
	}
	order.StartDate = dates.FromTime(startDate)
	order.EndDate = dates.FromTime(endDate)
	return &order, nil
}
