package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"kiosk/internal/config"
	"kiosk/internal/model"
)

// SyncCatalog applies catalog.yaml to the database in one transaction.
// It upserts products, activities and kiosks, replaces their link tables and
// marks rows missing from the catalog inactive. A kiosk's runtime
// deactivated_until survives unless the catalog sets one.
func (db *DB) SyncCatalog(ctx context.Context, cat *config.CatalogConfig) (err error) {
	if cat == nil {
		return fmt.Errorf("catalog is nil")
	}

	kiosks := make([]model.Kiosk, 0, len(cat.Kiosks))
	for _, kc := range cat.Kiosks {
		k, err := kc.Kiosk()
		if err != nil {
			return err
		}
		kiosks = append(kiosks, k)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin catalog sync: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	now := time.Now().UTC()

	if err = syncWeekdays(ctx, tx, cat.GlobalConfig()); err != nil {
		return err
	}
	if err = syncProducts(ctx, tx, cat.ProductModels(), now); err != nil {
		return err
	}
	if err = syncActivities(ctx, tx, cat.ActivityModels(), now); err != nil {
		return err
	}
	if err = syncKiosks(ctx, tx, kiosks, now); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit catalog sync: %w", err)
	}

	db.logger.Info().
		Int("products", len(cat.Products)).
		Int("activities", len(cat.Activities)).
		Int("kiosks", len(kiosks)).
		Msg("Catalog synced")
	return nil
}

func syncWeekdays(ctx context.Context, tx *sql.Tx, cfg model.GlobalConfig) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM disabled_weekdays`); err != nil {
		return fmt.Errorf("clear disabled weekdays: %w", err)
	}
	for _, d := range cfg.DisabledWeekdays {
		if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO disabled_weekdays (weekday) VALUES (?)`, int(d)); err != nil {
			return fmt.Errorf("disable weekday %d: %w", d, err)
		}
	}
	return nil
}

func syncProducts(ctx context.Context, tx *sql.Tx, products []model.Product, now time.Time) error {
	seen := make(map[int64]struct{}, len(products))
	for _, p := range products {
		var from, to sql.NullString
		if p.OrderWindow != nil {
			from = sql.NullString{String: p.OrderWindow.From.String(), Valid: true}
			to = sql.NullString{String: p.OrderWindow.To.String(), Valid: true}
		}

		_, err := tx.ExecContext(ctx, `
			INSERT INTO products (id, name, is_active, window_from, window_to, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				name = excluded.name,
				is_active = excluded.is_active,
				window_from = excluded.window_from,
				window_to = excluded.window_to,
				updated_at = excluded.updated_at`,
			p.ID, p.Name, p.IsActive, from, to, now, now,
		)
		if err != nil {
			return fmt.Errorf("sync product %d: %w", p.ID, err)
		}
		seen[p.ID] = struct{}{}
	}
	return deactivateMissing(ctx, tx, "products", seen, now)
}

func syncActivities(ctx context.Context, tx *sql.Tx, activities []model.Activity, now time.Time) error {
	seen := make(map[int64]struct{}, len(activities))
	for _, a := range activities {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO activities (id, name, is_active, created_at, updated_at)
			VALUES (?, ?, 1, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				name = excluded.name,
				is_active = 1,
				updated_at = excluded.updated_at`,
			a.ID, a.Name, now, now,
		)
		if err != nil {
			return fmt.Errorf("sync activity %d: %w", a.ID, err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM activity_exclusions WHERE activity_id = ?`, a.ID); err != nil {
			return fmt.Errorf("clear exclusions of activity %d: %w", a.ID, err)
		}
		for _, pid := range a.ExcludedProductIDs {
			if _, err := tx.ExecContext(ctx,
				`INSERT OR IGNORE INTO activity_exclusions (activity_id, product_id) VALUES (?, ?)`, a.ID, pid,
			); err != nil {
				return fmt.Errorf("exclude product %d from activity %d: %w", pid, a.ID, err)
			}
		}
		seen[a.ID] = struct{}{}
	}
	return deactivateMissing(ctx, tx, "activities", seen, now)
}

func syncKiosks(ctx context.Context, tx *sql.Tx, kiosks []model.Kiosk, now time.Time) error {
	seen := make(map[int64]struct{}, len(kiosks))
	for _, k := range kiosks {
		var until sql.NullTime
		if k.DeactivatedUntil != nil {
			until = sql.NullTime{Time: k.DeactivatedUntil.UTC(), Valid: true}
		}

		_, err := tx.ExecContext(ctx, `
			INSERT INTO kiosks (id, name, language, is_active, manually_deactivated, deactivated_until, created_at, updated_at)
			VALUES (?, ?, ?, 1, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				name = excluded.name,
				language = excluded.language,
				is_active = 1,
				manually_deactivated = excluded.manually_deactivated,
				deactivated_until = COALESCE(excluded.deactivated_until, kiosks.deactivated_until),
				updated_at = excluded.updated_at`,
			k.ID, k.Name, k.Language, k.ManuallyDeactivated, until, now, now,
		)
		if err != nil {
			return fmt.Errorf("sync kiosk %d: %w", k.ID, err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM kiosk_activities WHERE kiosk_id = ?`, k.ID); err != nil {
			return fmt.Errorf("clear activities of kiosk %d: %w", k.ID, err)
		}
		for _, aid := range k.EnabledActivityIDs {
			if _, err := tx.ExecContext(ctx,
				`INSERT OR IGNORE INTO kiosk_activities (kiosk_id, activity_id) VALUES (?, ?)`, k.ID, aid,
			); err != nil {
				return fmt.Errorf("enable activity %d on kiosk %d: %w", aid, k.ID, err)
			}
		}
		seen[k.ID] = struct{}{}
	}
	return deactivateMissing(ctx, tx, "kiosks", seen, now)
}

// deactivateMissing marks rows of table that disappeared from the catalog inactive.
func deactivateMissing(ctx context.Context, tx *sql.Tx, table string, seen map[int64]struct{}, now time.Time) error {
	rows, err := tx.QueryContext(ctx, fmt.Sprintf(`SELECT id FROM %s WHERE is_active = 1`, table))
	if err != nil {
		return fmt.Errorf("list %s: %w", table, err)
	}

	var missing []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return err
		}
		if _, ok := seen[id]; !ok {
			missing = append(missing, id)
		}
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	rows.Close()

	for _, id := range missing {
		if _, err := tx.ExecContext(ctx,
			fmt.Sprintf(`UPDATE %s SET is_active = 0, updated_at = ? WHERE id = ?`, table), now, id,
		); err != nil {
			return fmt.Errorf("deactivate %s %d: %w", table, id, err)
		}
	}
	return nil
}
