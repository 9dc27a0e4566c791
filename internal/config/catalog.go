package config

import (
	"fmt"
	"os"
	"time"

	"kiosk/internal/model"
	"kiosk/internal/schedule"

	"gopkg.in/yaml.v3"
)

// DefaultCatalogPath is used when no catalog path is configured.
const DefaultCatalogPath = "configs/catalog.yaml"

// WindowConfig is a daily order window, "HH:MM" on both ends.
type WindowConfig struct {
	From string `yaml:"from"` // "08:00"
	To   string `yaml:"to"`   // "14:00"; earlier than from means the window spans midnight
}

// ProductConfig represents a single product.
type ProductConfig struct {
	ID          int64         `yaml:"id"`
	Name        string        `yaml:"name"`
	IsActive    bool          `yaml:"is_active"`
	OrderWindow *WindowConfig `yaml:"order_window,omitempty"`
}

// ActivityConfig groups products shown together on a kiosk.
type ActivityConfig struct {
	ID                 int64   `yaml:"id"`
	Name               string  `yaml:"name"`
	ExcludedProductIDs []int64 `yaml:"excluded_product_ids,omitempty"`
}

// KioskConfig represents a single kiosk.
type KioskConfig struct {
	ID                  int64   `yaml:"id"`
	Name                string  `yaml:"name"`
	Language            string  `yaml:"language,omitempty"`
	ManuallyDeactivated bool    `yaml:"manually_deactivated"`
	DeactivatedUntil    string  `yaml:"deactivated_until,omitempty"` // RFC3339
	ActivityIDs         []int64 `yaml:"activity_ids"`
}

// CatalogConfig is the root configuration for catalog.yaml.
type CatalogConfig struct {
	DisabledWeekdays []int            `yaml:"disabled_weekdays"` // 0=Sun, 6=Sat
	Products         []ProductConfig  `yaml:"products"`
	Activities       []ActivityConfig `yaml:"activities"`
	Kiosks           []KioskConfig    `yaml:"kiosks"`
}

// LoadCatalog loads and validates the catalog from a YAML file.
func LoadCatalog(path string) (*CatalogConfig, error) {
	if path == "" {
		path = DefaultCatalogPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	var cfg CatalogConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate catalog: %w", err)
	}

	return &cfg, nil
}

// Validate checks the catalog for errors.
func (c *CatalogConfig) Validate() error {
	if len(c.Kiosks) == 0 {
		return fmt.Errorf("no kiosks defined")
	}

	for i, d := range c.DisabledWeekdays {
		if d < 0 || d > 6 {
			return fmt.Errorf("disabled_weekdays[%d]: invalid day %d, must be 0-6 (0=Sun, 6=Sat)", i, d)
		}
	}

	productIDs := make(map[int64]bool)
	for i, p := range c.Products {
		if p.ID <= 0 {
			return fmt.Errorf("product[%d]: id must be positive, got %d", i, p.ID)
		}
		if productIDs[p.ID] {
			return fmt.Errorf("product[%d]: duplicate id %d", i, p.ID)
		}
		productIDs[p.ID] = true

		if p.Name == "" {
			return fmt.Errorf("product[%d]: name is required", i)
		}
		if p.OrderWindow != nil {
			if err := validateWindow(p.OrderWindow, fmt.Sprintf("product[%d].order_window", i)); err != nil {
				return err
			}
		}
	}

	activityIDs := make(map[int64]bool)
	for i, a := range c.Activities {
		if a.ID <= 0 {
			return fmt.Errorf("activity[%d]: id must be positive, got %d", i, a.ID)
		}
		if activityIDs[a.ID] {
			return fmt.Errorf("activity[%d]: duplicate id %d", i, a.ID)
		}
		activityIDs[a.ID] = true

		if a.Name == "" {
			return fmt.Errorf("activity[%d]: name is required", i)
		}
		for j, id := range a.ExcludedProductIDs {
			if !productIDs[id] {
				return fmt.Errorf("activity[%d].excluded_product_ids[%d]: unknown product %d", i, j, id)
			}
		}
	}

	kioskIDs := make(map[int64]bool)
	names := make(map[string]bool)
	for i, k := range c.Kiosks {
		if k.ID <= 0 {
			return fmt.Errorf("kiosk[%d]: id must be positive, got %d", i, k.ID)
		}
		if kioskIDs[k.ID] {
			return fmt.Errorf("kiosk[%d]: duplicate id %d", i, k.ID)
		}
		kioskIDs[k.ID] = true

		if k.Name == "" {
			return fmt.Errorf("kiosk[%d]: name is required", i)
		}
		if names[k.Name] {
			return fmt.Errorf("kiosk[%d]: duplicate name '%s'", i, k.Name)
		}
		names[k.Name] = true

		if k.DeactivatedUntil != "" {
			if _, err := time.Parse(time.RFC3339, k.DeactivatedUntil); err != nil {
				return fmt.Errorf("kiosk[%d]: invalid deactivated_until '%s', expected RFC3339", i, k.DeactivatedUntil)
			}
		}
		for j, id := range k.ActivityIDs {
			if !activityIDs[id] {
				return fmt.Errorf("kiosk[%d].activity_ids[%d]: unknown activity %d", i, j, id)
			}
		}
	}

	return nil
}

func validateWindow(w *WindowConfig, prefix string) error {
	if w.From == "" {
		return fmt.Errorf("%s.from is required", prefix)
	}
	if w.To == "" {
		return fmt.Errorf("%s.to is required", prefix)
	}
	if _, err := schedule.ParseWindow(w.From, w.To); err != nil {
		return fmt.Errorf("%s: %w", prefix, err)
	}
	return nil
}

// GlobalConfig converts the weekday settings.
func (c *CatalogConfig) GlobalConfig() model.GlobalConfig {
	days := make([]time.Weekday, 0, len(c.DisabledWeekdays))
	for _, d := range c.DisabledWeekdays {
		days = append(days, time.Weekday(d))
	}
	return model.GlobalConfig{DisabledWeekdays: days}
}

// Window converts the window; a nil config yields nil.
func (w *WindowConfig) Window() *schedule.Window {
	if w == nil {
		return nil
	}
	win, err := schedule.ParseWindow(w.From, w.To)
	if err != nil {
		return nil
	}
	return &win
}

// ProductModels converts every product in catalog order.
func (c *CatalogConfig) ProductModels() []model.Product {
	out := make([]model.Product, 0, len(c.Products))
	for _, p := range c.Products {
		out = append(out, model.Product{
			ID:          p.ID,
			Name:        p.Name,
			IsActive:    p.IsActive,
			OrderWindow: p.OrderWindow.Window(),
		})
	}
	return out
}

// ActivityModels converts every activity in catalog order.
func (c *CatalogConfig) ActivityModels() []model.Activity {
	out := make([]model.Activity, 0, len(c.Activities))
	for _, a := range c.Activities {
		out = append(out, model.Activity{
			ID:                 a.ID,
			Name:               a.Name,
			ExcludedProductIDs: a.ExcludedProductIDs,
		})
	}
	return out
}

// Kiosk converts the kiosk entry.
func (k KioskConfig) Kiosk() (model.Kiosk, error) {
	kiosk := model.Kiosk{
		ID:                  k.ID,
		Name:                k.Name,
		Language:            k.Language,
		ManuallyDeactivated: k.ManuallyDeactivated,
		EnabledActivityIDs:  k.ActivityIDs,
	}
	if k.DeactivatedUntil != "" {
		until, err := time.Parse(time.RFC3339, k.DeactivatedUntil)
		if err != nil {
			return model.Kiosk{}, fmt.Errorf("kiosk %d deactivated_until: %w", k.ID, err)
		}
		kiosk.DeactivatedUntil = &until
	}
	return kiosk, nil
}

// String returns a summary of the catalog.
func (c *CatalogConfig) String() string {
	active := 0
	for _, p := range c.Products {
		if p.IsActive {
			active++
		}
	}
	return fmt.Sprintf("CatalogConfig: %d products (%d active), %d activities, %d kiosks",
		len(c.Products), active, len(c.Activities), len(c.Kiosks))
}
