package timeline

import (
	"sort"

	"github.com/flowmetrics/leadtime/internal/types"
)

// Normalize extracts the status transitions from an issue's changelog,
// ordered by ascending event time. Events without a usable status change
// are dropped. When one event carries several status changes the last one
// in the event's own item order wins.
func Normalize(issue types.Issue) []types.StatusTransition {
	out := make([]types.StatusTransition, 0, len(issue.Changelog))
	for _, event := range issue.Changelog {
		change, ok := lastStatusChange(event.Items)
		if !ok {
			continue
		}
		out = append(out, types.StatusTransition{
			At:          event.Created,
			From:        types.NormalizeStatus(change.FromString),
			To:          types.NormalizeStatus(change.ToString),
			FromDisplay: change.FromString,
			ToDisplay:   change.ToString,
		})
	}

	// Stable so equal timestamps keep fetch order.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].At.Before(out[j].At)
	})
	return out
}

// lastStatusChange returns the last qualifying status change in items.
func lastStatusChange(items []types.FieldChange) (types.FieldChange, bool) {
	for i := len(items) - 1; i >= 0; i-- {
		if isStatusChange(items[i]) {
			return items[i], true
		}
	}
	return types.FieldChange{}, false
}

// isStatusChange reports whether fc is a real status transition: field
// "status", both ends present, and the two ends differ.
func isStatusChange(fc types.FieldChange) bool {
	if fc.Field != types.StatusField {
		return false
	}
	if fc.From == nil || fc.To == nil || *fc.From == *fc.To {
		return false
	}
	if types.NormalizeStatus(fc.FromString) == "" || types.NormalizeStatus(fc.ToString) == "" {
		return false
	}
	return true
}
