package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"kiosk/internal/model"
	"kiosk/internal/schedule"
)

// Snapshot loads everything needed to evaluate the kiosk.
// Inactive or unknown kiosks yield ErrKioskNotFound.
func (db *DB) Snapshot(ctx context.Context, kioskID int64) (model.Snapshot, error) {
	kiosk, err := db.GetKiosk(ctx, kioskID)
	if err != nil {
		return model.Snapshot{}, err
	}

	cfg, err := db.GlobalConfig(ctx)
	if err != nil {
		return model.Snapshot{}, err
	}

	products, err := db.Products(ctx)
	if err != nil {
		return model.Snapshot{}, err
	}

	activities, err := db.Activities(ctx)
	if err != nil {
		return model.Snapshot{}, err
	}

	return model.Snapshot{
		Config:     cfg,
		Kiosk:      kiosk,
		Products:   products,
		Activities: activities,
	}, nil
}

// GetKiosk returns an active kiosk with its enabled activities.
func (db *DB) GetKiosk(ctx context.Context, kioskID int64) (*model.Kiosk, error) {
	var (
		k     model.Kiosk
		until sql.NullTime
	)
	err := db.QueryRowContext(ctx, `
		SELECT id, name, language, manually_deactivated, deactivated_until
		FROM kiosks
		WHERE id = ? AND is_active = 1`, kioskID,
	).Scan(&k.ID, &k.Name, &k.Language, &k.ManuallyDeactivated, &until)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrKioskNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get kiosk %d: %w", kioskID, err)
	}
	if until.Valid {
		t := until.Time
		k.DeactivatedUntil = &t
	}

	ids, err := db.kioskActivityIDs(ctx, kioskID)
	if err != nil {
		return nil, err
	}
	k.EnabledActivityIDs = ids
	return &k, nil
}

// ListKiosks returns active kiosks ordered by id.
func (db *DB) ListKiosks(ctx context.Context) ([]model.Kiosk, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, name, language, manually_deactivated, deactivated_until
		FROM kiosks
		WHERE is_active = 1
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list kiosks: %w", err)
	}
	defer rows.Close()

	kiosks := make([]model.Kiosk, 0)
	for rows.Next() {
		var (
			k     model.Kiosk
			until sql.NullTime
		)
		if err := rows.Scan(&k.ID, &k.Name, &k.Language, &k.ManuallyDeactivated, &until); err != nil {
			return nil, err
		}
		if until.Valid {
			t := until.Time
			k.DeactivatedUntil = &t
		}
		kiosks = append(kiosks, k)
	}
	return kiosks, rows.Err()
}

// SetDeactivatedUntil stores or, with nil, clears the timed deactivation.
func (db *DB) SetDeactivatedUntil(ctx context.Context, kioskID int64, until *time.Time) error {
	var value sql.NullTime
	if until != nil {
		value = sql.NullTime{Time: until.UTC(), Valid: true}
	}

	res, err := db.ExecContext(ctx,
		`UPDATE kiosks SET deactivated_until = ?, updated_at = ? WHERE id = ? AND is_active = 1`,
		value, time.Now().UTC(), kioskID,
	)
	if err != nil {
		return fmt.Errorf("set deactivated_until of kiosk %d: %w", kioskID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrKioskNotFound
	}
	return nil
}

// GlobalConfig returns the disabled weekdays.
func (db *DB) GlobalConfig(ctx context.Context) (*model.GlobalConfig, error) {
	rows, err := db.QueryContext(ctx, `SELECT weekday FROM disabled_weekdays ORDER BY weekday`)
	if err != nil {
		return nil, fmt.Errorf("list disabled weekdays: %w", err)
	}
	defer rows.Close()

	cfg := &model.GlobalConfig{DisabledWeekdays: make([]time.Weekday, 0)}
	for rows.Next() {
		var d int
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		cfg.DisabledWeekdays = append(cfg.DisabledWeekdays, time.Weekday(d))
	}
	return cfg, rows.Err()
}

// Products returns every product ordered by id, inactive ones included.
func (db *DB) Products(ctx context.Context) ([]model.Product, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, name, is_active, window_from, window_to
		FROM products
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	products := make([]model.Product, 0)
	for rows.Next() {
		var (
			p        model.Product
			from, to sql.NullString
		)
		if err := rows.Scan(&p.ID, &p.Name, &p.IsActive, &from, &to); err != nil {
			return nil, err
		}
		if from.Valid && to.Valid {
			w, err := schedule.ParseWindow(from.String, to.String)
			if err != nil {
				db.logger.Warn().Err(err).Int64("product_id", p.ID).Msg("Ignoring malformed order window")
			} else {
				p.OrderWindow = &w
			}
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// Activities returns active activities with their exclusions, ordered by id.
func (db *DB) Activities(ctx context.Context) ([]model.Activity, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT a.id, a.name, e.product_id
		FROM activities a
		LEFT JOIN activity_exclusions e ON e.activity_id = a.id
		WHERE a.is_active = 1
		ORDER BY a.id, e.product_id`)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	defer rows.Close()

	activities := make([]model.Activity, 0)
	for rows.Next() {
		var (
			id       int64
			name     string
			excluded sql.NullInt64
		)
		if err := rows.Scan(&id, &name, &excluded); err != nil {
			return nil, err
		}
		if n := len(activities); n == 0 || activities[n-1].ID != id {
			activities = append(activities, model.Activity{ID: id, Name: name})
		}
		if excluded.Valid {
			last := &activities[len(activities)-1]
			last.ExcludedProductIDs = append(last.ExcludedProductIDs, excluded.Int64)
		}
	}
	return activities, rows.Err()
}

func (db *DB) kioskActivityIDs(ctx context.Context, kioskID int64) ([]int64, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT ka.activity_id
		FROM kiosk_activities ka
		JOIN activities a ON a.id = ka.activity_id
		WHERE ka.kiosk_id = ? AND a.is_active = 1
		ORDER BY ka.activity_id`, kioskID)
	if err != nil {
		return nil, fmt.Errorf("list activities of kiosk %d: %w", kioskID, err)
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
