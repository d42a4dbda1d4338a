package domain

// Classify diffs a task's before and after state and returns the implied
// change events. The rules apply independently, so zero or more events may
// fire for one mutation. Reverse transitions (un-assignment, reopening) fire
// nothing.
func Classify(before Snapshot, after Task) []ChangeEvent {
	var events []ChangeEvent
	if before.SectionID != after.SectionID {
		events = append(events, TaskMoved{
			TaskID:        after.ID,
			FromSectionID: before.SectionID,
			ToSectionID:   after.SectionID,
			Order:         after.Order,
			AssigneeID:    after.AssigneeID,
		})
	}
	if after.AssigneeID != "" && after.AssigneeID != before.AssigneeID {
		events = append(events, TaskAssigned{
			TaskID:             after.ID,
			AssigneeID:         after.AssigneeID,
			PreviousAssigneeID: before.AssigneeID,
		})
	}
	if !before.Completed && after.Completed {
		events = append(events, TaskCompleted{TaskID: after.ID, AssigneeID: after.AssigneeID})
	}
	return events
}
