package config

import (
	"testing"
	"time"

	"kiosk/internal/schedule"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const catalogYAML = `
disabled_weekdays: [0]
products:
  - id: 1
    name: Croissant
    is_active: true
    order_window: {from: "07:00", to: "11:00"}
  - id: 2
    name: Soup
    is_active: true
    order_window: {from: "22:00", to: "02:00"}
  - id: 3
    name: Seasonal
    is_active: false
activities:
  - id: 10
    name: Breakfast
    excluded_product_ids: [2]
  - id: 11
    name: Late night
kiosks:
  - id: 100
    name: Lobby
    language: fr
    activity_ids: [10, 11]
  - id: 101
    name: Rooftop
    manually_deactivated: true
    deactivated_until: "2026-01-15T10:00:00Z"
    activity_ids: [11]
`

func TestLoadCatalog(t *testing.T) {
	path := writeFile(t, t.TempDir(), "catalog.yaml", catalogYAML)

	cat, err := LoadCatalog(path)
	require.NoError(t, err)

	assert.Equal(t, []time.Weekday{time.Sunday}, cat.GlobalConfig().DisabledWeekdays)

	products := cat.ProductModels()
	require.Len(t, products, 3)
	require.NotNil(t, products[0].OrderWindow)
	assert.Equal(t, schedule.MustParseWindow("07:00", "11:00"), *products[0].OrderWindow)
	assert.True(t, products[1].OrderWindow.SpansMidnight())
	assert.Nil(t, products[2].OrderWindow)
	assert.False(t, products[2].IsActive)

	activities := cat.ActivityModels()
	require.Len(t, activities, 2)
	assert.Equal(t, []int64{2}, activities[0].ExcludedProductIDs)

	lobby, err := cat.Kiosks[0].Kiosk()
	require.NoError(t, err)
	assert.Equal(t, "fr", lobby.Language)
	assert.Equal(t, []int64{10, 11}, lobby.EnabledActivityIDs)
	assert.Nil(t, lobby.DeactivatedUntil)

	rooftop, err := cat.Kiosks[1].Kiosk()
	require.NoError(t, err)
	assert.True(t, rooftop.ManuallyDeactivated)
	require.NotNil(t, rooftop.DeactivatedUntil)
	assert.True(t, rooftop.DeactivatedUntil.Equal(time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)))

	_, err = KioskConfig{ID: 7, DeactivatedUntil: "tomorrow"}.Kiosk()
	assert.ErrorContains(t, err, "kiosk 7 deactivated_until")
	assert.Equal(t, "CatalogConfig: 3 products (2 active), 2 activities, 2 kiosks", cat.String())
}

func TestCatalogConfig_Validate(t *testing.T) {
	valid := func() CatalogConfig {
		return CatalogConfig{
			Products:   []ProductConfig{{ID: 1, Name: "Tea", IsActive: true, OrderWindow: &WindowConfig{From: "08:00", To: "12:00"}}},
			Activities: []ActivityConfig{{ID: 1, Name: "Drinks"}},
			Kiosks:     []KioskConfig{{ID: 1, Name: "Hall", ActivityIDs: []int64{1}}},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *CatalogConfig)
		wantErr string
	}{
		{"valid", func(c *CatalogConfig) {}, ""},
		{"no kiosks", func(c *CatalogConfig) { c.Kiosks = nil }, "no kiosks defined"},
		{"weekday out of range", func(c *CatalogConfig) { c.DisabledWeekdays = []int{7} }, "disabled_weekdays[0]: invalid day 7, must be 0-6 (0=Sun, 6=Sat)"},
		{"product id", func(c *CatalogConfig) { c.Products[0].ID = 0 }, "product[0]: id must be positive, got 0"},
		{"duplicate product", func(c *CatalogConfig) { c.Products = append(c.Products, c.Products[0]) }, "product[1]: duplicate id 1"},
		{"product name", func(c *CatalogConfig) { c.Products[0].Name = "" }, "product[0]: name is required"},
		{"window from missing", func(c *CatalogConfig) { c.Products[0].OrderWindow.From = "" }, "product[0].order_window.from is required"},
		{"window to missing", func(c *CatalogConfig) { c.Products[0].OrderWindow.To = "" }, "product[0].order_window.to is required"},
		{"window malformed", func(c *CatalogConfig) { c.Products[0].OrderWindow.To = "25:00" }, "product[0].order_window: to: invalid time format '25:00', expected HH:MM"},
		{"overnight window", func(c *CatalogConfig) { c.Products[0].OrderWindow = &WindowConfig{From: "22:00", To: "02:00"} }, ""},
		{"zero length window", func(c *CatalogConfig) { c.Products[0].OrderWindow = &WindowConfig{From: "09:00", To: "09:00"} }, ""},
		{"no window", func(c *CatalogConfig) { c.Products[0].OrderWindow = nil }, ""},
		{"activity id", func(c *CatalogConfig) { c.Activities[0].ID = -1 }, "activity[0]: id must be positive, got -1"},
		{"duplicate activity", func(c *CatalogConfig) { c.Activities = append(c.Activities, c.Activities[0]) }, "activity[1]: duplicate id 1"},
		{"activity name", func(c *CatalogConfig) { c.Activities[0].Name = "" }, "activity[0]: name is required"},
		{"unknown excluded product", func(c *CatalogConfig) { c.Activities[0].ExcludedProductIDs = []int64{9} }, "activity[0].excluded_product_ids[0]: unknown product 9"},
		{"kiosk id", func(c *CatalogConfig) { c.Kiosks[0].ID = 0 }, "kiosk[0]: id must be positive, got 0"},
		{"duplicate kiosk", func(c *CatalogConfig) { c.Kiosks = append(c.Kiosks, KioskConfig{ID: 1, Name: "Other"}) }, "kiosk[1]: duplicate id 1"},
		{"kiosk name", func(c *CatalogConfig) { c.Kiosks[0].Name = "" }, "kiosk[0]: name is required"},
		{"duplicate kiosk name", func(c *CatalogConfig) { c.Kiosks = append(c.Kiosks, KioskConfig{ID: 2, Name: "Hall"}) }, "kiosk[1]: duplicate name 'Hall'"},
		{"bad deactivated_until", func(c *CatalogConfig) { c.Kiosks[0].DeactivatedUntil = "tomorrow" }, "kiosk[0]: invalid deactivated_until 'tomorrow', expected RFC3339"},
		{"unknown activity", func(c *CatalogConfig) { c.Kiosks[0].ActivityIDs = []int64{5} }, "kiosk[0].activity_ids[0]: unknown activity 5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.EqualError(t, err, tt.wantErr)
		})
	}
}

func TestLoadCatalog_Invalid(t *testing.T) {
	path := writeFile(t, t.TempDir(), "catalog.yaml", "kiosks: []\n")
	_, err := LoadCatalog(path)
	assert.EqualError(t, err, "validate catalog: no kiosks defined")
}
