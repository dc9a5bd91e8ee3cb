package core

// orchestrateFetches runs after every processed message. It refuses to
// issue reads while any write is queued or inflight, then requests the
// minimal set of collections the current route needs, subject to the
// ledger's gating and throttle.
func orchestrateFetches(s *State) []Effect {
	if len(s.Queue) > 0 || s.Inflight != nil {
		return nil
	}
	var effects []Effect

	// Top-level lists load on any screen once they are empty.
	if len(s.Universes) == 0 && s.Ledger.TryBeginGlobal(FetchUniverses, TreeThrottle) {
		effects = append(effects, FetchEffect{Kind: FetchUniverses})
	}
	switch s.Route {
	case RouteOverview, RoutePmList, RoutePmBoard:
		if len(s.Boards) == 0 && s.Ledger.TryBeginGlobal(FetchBoards, TreeThrottle) {
			effects = append(effects, FetchEffect{Kind: FetchBoards})
		}
	}

	switch s.Route {
	case RouteBestiary:
		effects = appendScoped(effects, s, FetchCreatures, s.ActiveUniverseID, s.LoadedCreaturesUniverse)
		effects = appendScoped(effects, s, FetchLocations, s.ActiveUniverseID, s.LoadedLocationsUniverse)
	case RouteAtlas:
		effects = appendScoped(effects, s, FetchLocations, s.ActiveUniverseID, s.LoadedLocationsUniverse)
	case RouteTimeline:
		effects = appendScoped(effects, s, FetchEras, s.ActiveUniverseID, s.LoadedErasUniverse)
		effects = appendScoped(effects, s, FetchEvents, s.ActiveUniverseID, s.LoadedEventsUniverse)
		effects = appendScoped(effects, s, FetchLocations, s.ActiveUniverseID, s.LoadedLocationsUniverse)
	case RouteUniverseDetail:
		effects = appendScoped(effects, s, FetchSnapshots, s.ActiveUniverseID, s.LoadedSnapshotsUniverse)
	case RouteForge:
		effects = appendScoped(effects, s, FetchNovels, s.ActiveUniverseID, s.LoadedNovelsUniverse)
		effects = appendTreeScoped(effects, s, FetchChapters, s.ActiveNovelID)
		effects = appendTreeScoped(effects, s, FetchScenes, s.ActiveChapterID)
	case RoutePmBoard:
		effects = appendScoped(effects, s, FetchBoardData, s.ActiveBoardID, s.LoadedBoardID)
	case RouteTrash:
		if !s.TrashLoaded && s.Ledger.TryBeginGlobal(FetchTrash, TreeThrottle) {
			effects = append(effects, FetchEffect{Kind: FetchTrash})
		}
	}
	return effects
}

// appendScoped requests kind for scope unless the collection is
// already loaded for exactly that scope. A loadedFor marker recorded
// under a different scope means a route change made the cache stale,
// regardless of how recently it loaded.
func appendScoped(effects []Effect, s *State, kind FetchKind, scope, loadedFor string) []Effect {
	if scope == "" {
		return effects
	}
	if loadedFor == scope {
		return effects
	}
	key := Key{Kind: kind, Scope: scope}
	if !s.Ledger.TryBeginScoped(key, TreeThrottle) {
		return effects
	}
	return append(effects, FetchEffect{Kind: kind, Scope: scope})
}

// appendTreeScoped requests tree collections (chapters, scenes) whose
// loaded marker lives in the ledger itself rather than a state field.
func appendTreeScoped(effects []Effect, s *State, kind FetchKind, scope string) []Effect {
	if scope == "" {
		return effects
	}
	key := Key{Kind: kind, Scope: scope}
	if _, loaded := s.Ledger.LoadedFor(key); loaded {
		return effects
	}
	if !s.Ledger.TryBeginScoped(key, TreeThrottle) {
		return effects
	}
	return append(effects, FetchEffect{Kind: kind, Scope: scope})
}
