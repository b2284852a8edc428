package zones

// ZoneID is a canonical forecast zone identifier.
type ZoneID string

const (
	// Northwest covers the Kebler Pass / Paradise Divide side of the forecast area.
	Northwest ZoneID = "northwest"
	// Southeast covers the Cement Creek / Brush Creek side of the forecast area.
	Southeast ZoneID = "southeast"
	// Unknown is the sentinel for upstream zone names we do not recognize.
	// Callers must treat it as a valid value, not a failure.
	Unknown ZoneID = "unknown"
)

// zoneNames maps avalanche.org forecast zone display names to canonical ids.
// Built once at init; never mutated at runtime.
var zoneNames = map[string]ZoneID{
	"Northwest Mountains": Northwest,
	"Southeast Mountains": Southeast,
}

// Resolve maps an upstream zone display name to a canonical ZoneID.
// Unrecognized names resolve to Unknown.
func Resolve(name string) ZoneID {
	if id, ok := zoneNames[name]; ok {
		return id
	}
	return Unknown
}

// Valid reports whether id is one of the two canonical zones.
func Valid(id ZoneID) bool {
	return id == Northwest || id == Southeast
}

// All returns the canonical zones in display order.
func All() []ZoneID {
	return []ZoneID{Northwest, Southeast}
}
