package repository

import (
	"context"

	"washtrack-backend/internal/db"
	"washtrack-backend/internal/domain"

	"github.com/jackc/pgx/v5/pgtype"
)

type CustomerRepository struct {
	DB *db.Postgres
}

func (r CustomerRepository) Create(ctx context.Context, name, phone string) (*domain.Customer, error) {
	var c domain.Customer
	err := r.DB.Pool.QueryRow(ctx, `
		INSERT INTO customers (name, phone)
		VALUES ($1,$2)
		RETURNING id, name, phone, created_at
	`, name, phone).Scan(&c.ID, &c.Name, &c.Phone, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r CustomerRepository) List(ctx context.Context, limit int) ([]domain.Customer, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT id, name, phone, created_at
		FROM customers
		WHERE deleted_at IS NULL
		ORDER BY created_at DESC, id DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.Customer
	for rows.Next() {
		var c domain.Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.Phone, &c.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

func (r CustomerRepository) Get(ctx context.Context, id int64) (*domain.Customer, error) {
	var c domain.Customer
	err := r.DB.Pool.QueryRow(ctx, `
		SELECT id, name, phone, created_at
		FROM customers
		WHERE deleted_at IS NULL AND id = $1
	`, id).Scan(&c.ID, &c.Name, &c.Phone, &c.CreatedAt)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

type VehicleRepository struct {
	DB *db.Postgres
}

type VehicleInput struct {
	Plate *string
	Brand *string
	Model *string
	Color *string
}

const vehicleColumns = `id, customer_id, plate, brand, model, color, created_at, updated_at`

func (r VehicleRepository) Create(ctx context.Context, customerID int64, plate, brand, model, color string) (*domain.CustomerVehicle, error) {
	var v domain.CustomerVehicle
	err := r.DB.Pool.QueryRow(ctx, `
		INSERT INTO customer_vehicles (customer_id, plate, brand, model, color)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING `+vehicleColumns+`
	`, customerID, plate, brand, model, color).Scan(
		&v.ID, &v.CustomerID, &v.Plate, &v.Brand, &v.Model, &v.Color, &v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r VehicleRepository) ListByCustomer(ctx context.Context, customerID int64) ([]domain.CustomerVehicle, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT `+vehicleColumns+`
		FROM customer_vehicles
		WHERE deleted_at IS NULL AND customer_id = $1
		ORDER BY created_at DESC, id DESC
	`, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.CustomerVehicle
	for rows.Next() {
		var v domain.CustomerVehicle
		if err := rows.Scan(&v.ID, &v.CustomerID, &v.Plate, &v.Brand, &v.Model, &v.Color, &v.CreatedAt, &v.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, v)
	}
	return items, rows.Err()
}

// Update patches a vehicle. The customer id is part of the predicate so one
// customer cannot touch another's vehicle by id alone.
func (r VehicleRepository) Update(ctx context.Context, id, customerID int64, in VehicleInput) (*domain.CustomerVehicle, error) {
	var v domain.CustomerVehicle
	err := r.DB.Pool.QueryRow(ctx, `
		UPDATE customer_vehicles SET
			plate      = COALESCE($3, plate),
			brand      = COALESCE($4, brand),
			model      = COALESCE($5, model),
			color      = COALESCE($6, color),
			updated_at = now()
		WHERE deleted_at IS NULL AND id = $1 AND customer_id = $2
		RETURNING `+vehicleColumns+`
	`, id, customerID, in.Plate, in.Brand, in.Model, in.Color).Scan(
		&v.ID, &v.CustomerID, &v.Plate, &v.Brand, &v.Model, &v.Color, &v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &v, nil
}

func (r VehicleRepository) SoftDelete(ctx context.Context, id, customerID int64) error {
	tag, err := r.DB.Pool.Exec(ctx, `
		UPDATE customer_vehicles SET deleted_at = now()
		WHERE deleted_at IS NULL AND id = $1 AND customer_id = $2
	`, id, customerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

type PointRepository struct {
	DB *db.Postgres
}

func (r PointRepository) Add(ctx context.Context, customerID int64, branchID *int64, points int, note string) (*domain.PointTransaction, error) {
	var p domain.PointTransaction
	var bid pgtype.Int8
	err := r.DB.Pool.QueryRow(ctx, `
		INSERT INTO point_transactions (customer_id, branch_id, points, note)
		VALUES ($1,$2,$3,$4)
		RETURNING id, customer_id, branch_id, points, note, created_at
	`, customerID, branchID, points, note).Scan(&p.ID, &p.CustomerID, &bid, &p.Points, &p.Note, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	if bid.Valid {
		p.BranchID = &bid.Int64
	}
	return &p, nil
}

// Balance sums a customer's point ledger; no rows yields zero.
func (r PointRepository) Balance(ctx context.Context, customerID int64) (int64, error) {
	var total int64
	err := r.DB.Pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(points), 0)
		FROM point_transactions
		WHERE customer_id = $1
	`, customerID).Scan(&total)
	return total, err
}

func (r PointRepository) History(ctx context.Context, customerID int64, limit int) ([]domain.PointTransaction, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT id, customer_id, branch_id, points, note, created_at
		FROM point_transactions
		WHERE customer_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`, customerID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.PointTransaction
	for rows.Next() {
		var p domain.PointTransaction
		var bid pgtype.Int8
		if err := rows.Scan(&p.ID, &p.CustomerID, &bid, &p.Points, &p.Note, &p.CreatedAt); err != nil {
			return nil, err
		}
		if bid.Valid {
			p.BranchID = &bid.Int64
		}
		items = append(items, p)
	}
	return items, rows.Err()
}
