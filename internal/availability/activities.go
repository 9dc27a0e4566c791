package availability

import (
	"slices"
	"sync"

	"kiosk/internal/model"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Compare orders two display names.
type Compare func(a, b string) int

// NameCollator returns a locale-aware name comparison for lang (BCP 47).
// An empty or unknown tag falls back to the root collation.
func NameCollator(lang string) Compare {
	tag, err := language.Parse(lang)
	if err != nil {
		tag = language.Und
	}
	var mu sync.Mutex
	c := collate.New(tag)
	return func(a, b string) int {
		mu.Lock()
		defer mu.Unlock()
		return c.CompareString(a, b)
	}
}

// AvailableActivities keeps the activities the kiosk enables that still have at
// least one available product after exclusions, sorted by name with compare.
func AvailableActivities(activities []model.Activity, kiosk *model.Kiosk, available []model.Product, compare Compare) []model.Activity {
	if kiosk == nil {
		return []model.Activity{}
	}
	if compare == nil {
		compare = NameCollator("")
	}

	result := make([]model.Activity, 0, len(activities))
	for _, a := range activities {
		if !kiosk.EnablesActivity(a.ID) {
			continue
		}
		if !offersAny(a, available) {
			continue
		}
		result = append(result, a)
	}

	slices.SortStableFunc(result, func(x, y model.Activity) int {
		return compare(x.Name, y.Name)
	})
	return result
}

func offersAny(a model.Activity, available []model.Product) bool {
	for _, p := range available {
		if !a.Excludes(p.ID) {
			return true
		}
	}
	return false
}
