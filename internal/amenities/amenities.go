// Package amenities holds the canonical amenity catalogue listings may
// reference. The catalogue is static reference data, not persisted.
package amenities

// Amenity is one canonical amenity listings can offer.
type Amenity struct {
	Slug     string `json:"slug"`
	Label    string `json:"label"`
	Category string `json:"category"`
}

// Categories maps category slugs to display labels.
var Categories = map[string]string{
	"essentials": "Essentials",
	"comfort":    "Comfort",
	"outdoor":    "Outdoor",
	"safety":     "Safety",
	"services":   "Services",
}

// Catalogue is the full amenity list, grouped by category.
var Catalogue = []Amenity{
	{Slug: "wifi", Label: "Wifi", Category: "essentials"},
	{Slug: "kitchen", Label: "Kitchen", Category: "essentials"},
	{Slug: "heating", Label: "Heating", Category: "essentials"},
	{Slug: "washer", Label: "Washer", Category: "essentials"},
	{Slug: "dryer", Label: "Dryer", Category: "essentials"},
	{Slug: "air_conditioning", Label: "Air conditioning", Category: "comfort"},
	{Slug: "tv", Label: "TV", Category: "comfort"},
	{Slug: "iron", Label: "Iron", Category: "comfort"},
	{Slug: "pool", Label: "Pool", Category: "outdoor"},
	{Slug: "garden", Label: "Garden", Category: "outdoor"},
	{Slug: "bbq", Label: "BBQ grill", Category: "outdoor"},
	{Slug: "free_parking", Label: "Free parking", Category: "outdoor"},
	{Slug: "smoke_alarm", Label: "Smoke alarm", Category: "safety"},
	{Slug: "first_aid_kit", Label: "First aid kit", Category: "safety"},
	{Slug: "fire_extinguisher", Label: "Fire extinguisher", Category: "safety"},
	{Slug: "breakfast", Label: "Breakfast", Category: "services"},
	{Slug: "cleaning_service", Label: "Cleaning service", Category: "services"},
}

// Valid reports whether slug names a catalogued amenity.
func Valid(slug string) bool {
	for _, a := range Catalogue {
		if a.Slug == slug {
			return true
		}
	}
	return false
}
