package domain

// Roster holds the three named operator groups used as escalation
// targets. It is re-read from settings on every escalation pass so
// membership edits take effect without a restart.
type Roster struct {
	Main  []int64
	All   []int64
	Admin []int64
}

// Contains reports whether the chat id belongs to any roster group.
func (r Roster) Contains(chatID int64) bool {
	for _, set := range [][]int64{r.Main, r.All, r.Admin} {
		for _, id := range set {
			if id == chatID {
				return true
			}
		}
	}
	return false
}

// Broadcast returns the union of the main and all groups, deduplicated,
// preserving first-seen order.
func (r Roster) Broadcast() []int64 {
	seen := make(map[int64]struct{}, len(r.Main)+len(r.All))
	out := make([]int64, 0, len(r.Main)+len(r.All))
	for _, id := range append(append([]int64{}, r.Main...), r.All...) {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// TriggerRule maps a comma-separated keyword list onto a canned answer.
// Used only in the triggers reply mode.
type TriggerRule struct {
	Triggers []string
	Answer   string
}
