package model

import "slices"

// Activity groups products offered by a kiosk, minus explicit exclusions.
type Activity struct {
	ID                 int64   `json:"id"`
	Name               string  `json:"name"`
	ExcludedProductIDs []int64 `json:"excluded_product_ids,omitempty"`
}

// Excludes reports whether the activity hides the product.
func (a Activity) Excludes(productID int64) bool {
	return slices.Contains(a.ExcludedProductIDs, productID)
}
