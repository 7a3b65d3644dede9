package continuity

// merge folds a normalised Patch into existing, in place, per spec §4.7's
// merge rules, then prunes the result. It is the Go counterpart of
// _merge_continuity_states + _prune_continuity_state.
func merge(existing *ContinuityState, patch Patch, chapterNumber int) *ContinuityState {
	for name, newChar := range patch.CharacterStates {
		if old, ok := existing.CharacterStates[name]; ok {
			existing.CharacterStates[name] = &CharacterState{
				CharacterName:        name,
				ChapterNumber:        chapterNumber,
				Location:             firstNonEmpty(newChar.Location, old.Location),
				EmotionalState:       firstNonEmpty(newChar.EmotionalState, old.EmotionalState),
				KnowsAbout:           unionStrings(old.KnowsAbout, newChar.KnowsAbout),
				Relationships:        mergeStringMaps(old.Relationships, newChar.Relationships),
				InjuriesOrConditions: orDefault(newChar.InjuriesOrConditions, old.InjuriesOrConditions),
				HasItems:             unionStrings(old.HasItems, newChar.HasItems),
			}
		} else {
			existing.CharacterStates[name] = &CharacterState{
				CharacterName:        name,
				ChapterNumber:        chapterNumber,
				Location:             newChar.Location,
				EmotionalState:       newChar.EmotionalState,
				KnowsAbout:           newChar.KnowsAbout,
				Relationships:        newChar.Relationships,
				InjuriesOrConditions: newChar.InjuriesOrConditions,
				HasItems:             newChar.HasItems,
			}
		}
	}

	for id, newThread := range patch.PlotThreads {
		if old, ok := existing.PlotThreads[id]; ok {
			var mergedQuestions []string
			if newThread.Status == ThreadResolved {
				mergedQuestions = newThread.UnresolvedQuestions
			} else {
				mergedQuestions = unionStrings(old.UnresolvedQuestions, newThread.UnresolvedQuestions)
			}
			existing.PlotThreads[id] = &PlotThread{
				ThreadID:                  id,
				ThreadName:                firstNonEmpty(newThread.ThreadName, old.ThreadName),
				Description:               firstNonEmpty(newThread.Description, old.Description),
				IntroducedChapter:         old.IntroducedChapter,
				LastMentionedChapter:      chapterNumber,
				Status:                    orDefaultStatus(newThread.Status, old.Status),
				KeyEvents:                 append(append([]string{}, old.KeyEvents...), newThread.KeyEvents...),
				UnresolvedQuestions:       mergedQuestions,
				ExpectedResolutionChapter: coalesceIntPtr(newThread.ExpectedResolutionChapter, old.ExpectedResolutionChapter),
			}
		} else {
			existing.PlotThreads[id] = &PlotThread{
				ThreadID:                  id,
				ThreadName:                newThread.ThreadName,
				Description:               newThread.Description,
				IntroducedChapter:         chapterNumber,
				LastMentionedChapter:      chapterNumber,
				Status:                    orDefaultStatus(newThread.Status, ThreadActive),
				KeyEvents:                 newThread.KeyEvents,
				UnresolvedQuestions:       newThread.UnresolvedQuestions,
				ExpectedResolutionChapter: newThread.ExpectedResolutionChapter,
			}
		}
	}

	existing.Timeline = append(existing.Timeline, patch.Timeline...)
	existing.WorldStateChanges = append(existing.WorldStateChanges, patch.WorldStateChanges...)

	for id, newTension := range patch.UnresolvedTensions {
		if old, ok := existing.UnresolvedTensions[id]; ok {
			existing.UnresolvedTensions[id] = &UnresolvedTension{
				TensionID:            id,
				Description:          firstNonEmpty(newTension.Description, old.Description),
				IntroducedChapter:    old.IntroducedChapter,
				LastEscalatedChapter: chapterNumber,
				TensionType:          newTension.TensionType,
				InvolvesCharacters:   unionStrings(old.InvolvesCharacters, newTension.InvolvesCharacters),
				Stakes:               firstNonEmpty(newTension.Stakes, old.Stakes),
			}
		} else {
			existing.UnresolvedTensions[id] = &UnresolvedTension{
				TensionID:            id,
				Description:          newTension.Description,
				IntroducedChapter:    chapterNumber,
				LastEscalatedChapter: chapterNumber,
				TensionType:          newTension.TensionType,
				InvolvesCharacters:   newTension.InvolvesCharacters,
				Stakes:               newTension.Stakes,
			}
		}
	}

	existing.LastAnalyzedChapter = chapterNumber
	if patch.CurrentChapterSummary != "" {
		existing.CurrentChapterSummary = patch.CurrentChapterSummary
	}

	prune(existing, chapterNumber)
	return existing
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

func orDefault(a, b []string) []string {
	if a != nil {
		return a
	}
	return b
}

func orDefaultStatus(a, b ThreadStatus) ThreadStatus {
	if a != "" {
		return a
	}
	return b
}

func coalesceIntPtr(a, b *int) *int {
	if a != nil {
		return a
	}
	return b
}

func unionStrings(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, s := range a {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	for _, s := range b {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

func mergeStringMaps(a, b map[string]string) map[string]string {
	out := make(map[string]string, len(a)+len(b))
	for k, v := range a {
		out[k] = v
	}
	for k, v := range b {
		out[k] = v
	}
	return out
}
