package nac

// Product is a single published product from the NAC products endpoint.
// The upstream feed is untrusted and frequently sparse, so every field is
// optional: missing numbers decode to zero and missing arrays to nil.
type Product struct {
	Id            int           `json:"id"`
	ProductType   string        `json:"product_type"`
	DangerRating  int           `json:"danger_rating"`
	PublishedTime string        `json:"published_time"`
	CreatedAt     string        `json:"created_at"`
	ExpiresTime   string        `json:"expires_time"`
	Author        string        `json:"author"`
	BottomLine    string        `json:"bottom_line"`
	ForecastZone  []ProductZone `json:"forecast_zone"`
}

// ProductZone identifies the forecast zone a product was issued for.
type ProductZone struct {
	Id   int    `json:"id"`
	Name string `json:"name"`
	Url  string `json:"url"`
}

// ZoneName returns the display name of the first forecast zone, or "Unknown"
// when the product carries no zone at all.
func (p Product) ZoneName() string {
	if len(p.ForecastZone) == 0 || p.ForecastZone[0].Name == "" {
		return "Unknown"
	}
	return p.ForecastZone[0].Name
}

// IssuedTime returns published_time, falling back to created_at when the
// center omits it.
func (p Product) IssuedTime() string {
	if p.PublishedTime != "" {
		return p.PublishedTime
	}
	return p.CreatedAt
}
