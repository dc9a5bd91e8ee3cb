package core

// Route is the closed set of screens. The fetch orchestrator switches
// exhaustively over it, so adding a screen forces a decision about
// what that screen loads.
type Route int

const (
	RouteOverview Route = iota
	RouteUniverseDetail
	RouteBestiary
	RouteAtlas
	RouteTimeline
	RouteForge
	RoutePmList
	RoutePmBoard
	RouteTrash
)

func (r Route) String() string {
	switch r {
	case RouteOverview:
		return "overview"
	case RouteUniverseDetail:
		return "universe"
	case RouteBestiary:
		return "bestiary"
	case RouteAtlas:
		return "atlas"
	case RouteTimeline:
		return "timeline"
	case RouteForge:
		return "forge"
	case RoutePmList:
		return "boards"
	case RoutePmBoard:
		return "board"
	case RouteTrash:
		return "trash"
	default:
		return "unknown"
	}
}

// UniverseScoped reports whether the route renders data belonging to
// the active universe.
func (r Route) UniverseScoped() bool {
	switch r {
	case RouteUniverseDetail, RouteBestiary, RouteAtlas, RouteTimeline, RouteForge:
		return true
	default:
		return false
	}
}
