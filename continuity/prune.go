package continuity

const (
	maxKnowsAbout   = 20
	maxHasItems     = 15
	maxInjuries     = 5
	maxKeyEvents    = 12
	maxQuestions    = 8
	maxTimeline     = 30
	timelineWindow  = 25
	resolvedGrace   = 5
	tensionStaleAge = 10
	maxWorldChanges = 50
	worldChangeWindow = 20
)

// prune enforces every numeric bound of spec §4.7 on state, as of
// currentChapter. Mirrors _prune_continuity_state exactly, including its
// "keep most recent" truncation direction for slices.
func prune(state *ContinuityState, currentChapter int) {
	for _, char := range state.CharacterStates {
		if len(char.KnowsAbout) > maxKnowsAbout {
			char.KnowsAbout = char.KnowsAbout[len(char.KnowsAbout)-maxKnowsAbout:]
		}
		if len(char.HasItems) > maxHasItems {
			char.HasItems = char.HasItems[len(char.HasItems)-maxHasItems:]
		}
		if len(char.InjuriesOrConditions) > maxInjuries {
			char.InjuriesOrConditions = char.InjuriesOrConditions[len(char.InjuriesOrConditions)-maxInjuries:]
		}
	}

	for id, thread := range state.PlotThreads {
		if thread.Status == ThreadResolved && currentChapter-thread.LastMentionedChapter > resolvedGrace {
			delete(state.PlotThreads, id)
			continue
		}
		if len(thread.KeyEvents) > maxKeyEvents {
			thread.KeyEvents = thread.KeyEvents[len(thread.KeyEvents)-maxKeyEvents:]
		}
		if len(thread.UnresolvedQuestions) > maxQuestions {
			thread.UnresolvedQuestions = thread.UnresolvedQuestions[len(thread.UnresolvedQuestions)-maxQuestions:]
		}
	}

	if len(state.Timeline) > maxTimeline {
		recentFloor := currentChapter - timelineWindow
		if recentFloor < 1 {
			recentFloor = 1
		}
		filtered := state.Timeline[:0:0]
		for _, marker := range state.Timeline {
			if marker.ChapterNumber >= recentFloor {
				filtered = append(filtered, marker)
			}
		}
		if len(filtered) > maxTimeline {
			filtered = filtered[len(filtered)-maxTimeline:]
		}
		state.Timeline = filtered
	}

	for id, tension := range state.UnresolvedTensions {
		if currentChapter-tension.LastEscalatedChapter > tensionStaleAge {
			delete(state.UnresolvedTensions, id)
		}
	}

	if len(state.WorldStateChanges) > maxWorldChanges {
		floor := currentChapter - worldChangeWindow
		if floor < 1 {
			floor = 1
		}
		var permanent, recentTemporary []WorldStateChange
		for _, change := range state.WorldStateChanges {
			if change.IsPermanent {
				permanent = append(permanent, change)
			} else if change.ChapterNumber >= floor {
				recentTemporary = append(recentTemporary, change)
			}
		}
		kept := append(permanent, recentTemporary...)
		if len(kept) > maxWorldChanges {
			kept = kept[len(kept)-maxWorldChanges:]
		}
		state.WorldStateChanges = kept
	}
}
