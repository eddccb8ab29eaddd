package domain

// UnknownLocation marks a visitor whose location could not be resolved.
// Records written before location tracking have no location at all; both
// cases are treated the same.
const UnknownLocation = "Unknown"

// VisitorRecord is the persisted state of one fingerprint, stored as JSON
// under visitor:<fingerprint>
type VisitorRecord struct {
	IP         string `json:"ip"`
	UserAgent  string `json:"ua"`
	Location   string `json:"location,omitempty"`
	FirstSeen  int64  `json:"first"`          // unix millis, set once
	LastSeen   int64  `json:"last,omitempty"` // unix millis, absent until the second visit
	VisitCount int64  `json:"count"`
}

// HasKnownLocation reports whether the record carries a real location
func (r *VisitorRecord) HasKnownLocation() bool {
	return r.Location != "" && r.Location != UnknownLocation
}

// DisplayLocation returns the location or the Unknown sentinel
func (r *VisitorRecord) DisplayLocation() string {
	if r.Location == "" {
		return UnknownLocation
	}
	return r.Location
}

// Stats is the aggregated view returned by /api/stats
type Stats struct {
	Visitors int64    `json:"visitors"`
	Visits   int64    `json:"visits"`
	IPs      []IPStat `json:"ips"`
}

// IPStat is one entry of the per-IP list
type IPStat struct {
	IP       string `json:"ip"`
	Count    int64  `json:"count"`
	Location string `json:"location"`
}

// EmptyStats is what a deployment without a store reports
func EmptyStats() *Stats {
	return &Stats{IPs: []IPStat{}}
}

// CurrentVisitor describes the requesting client without touching the store
type CurrentVisitor struct {
	IP          string      `json:"ip"`
	Fingerprint string      `json:"fingerprint"`
	Location    string      `json:"location"`
	GeoDetails  *GeoDetails `json:"geoDetails,omitempty"`
}

// GeoDetails holds the coarse geo hints supplied by the edge proxy
type GeoDetails struct {
	Country   string `json:"country,omitempty"`
	City      string `json:"city,omitempty"`
	Region    string `json:"region,omitempty"`
	Continent string `json:"continent,omitempty"`
	Timezone  string `json:"timezone,omitempty"`
	Latitude  string `json:"latitude,omitempty"`
	Longitude string `json:"longitude,omitempty"`
}

// Label formats the location as "City, Country", "Country" or Unknown
func (g *GeoDetails) Label() string {
	if g == nil {
		return UnknownLocation
	}
	switch {
	case g.City != "" && g.Country != "":
		return g.City + ", " + g.Country
	case g.Country != "":
		return g.Country
	default:
		return UnknownLocation
	}
}
