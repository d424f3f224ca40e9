package activity

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/Marga-Ghale/ora-fabtrack/internal/repository"
	"github.com/Marga-Ghale/ora-fabtrack/internal/types"
)

// Entry is an activity log prepared for display.
type Entry struct {
	ID           string    `json:"id"`
	EntityType   string    `json:"entityType"`
	EntityID     string    `json:"entityId"`
	ActivityType string    `json:"activityType"`
	Summary      string    `json:"summary,omitempty"`
	Changes      []Change  `json:"changes"`
	Actor        string    `json:"actor"`
	CreatedAt    time.Time `json:"createdAt"`
}

// FormatEntry renders one log. Field changes come from FieldName/OldValue/NewValue, plus
// any extra pairs recorded under metadata["changes"] as {"field": {"old": .., "new": ..}}.
func FormatEntry(log *repository.ActivityLog) Entry {
	e := Entry{
		ID:           log.ID,
		EntityType:   log.EntityType,
		EntityID:     log.EntityID,
		ActivityType: log.ActivityType,
		Summary:      summary(log),
		Changes:      []Change{},
		Actor:        "System",
		CreatedAt:    log.CreatedAt,
	}
	if log.CreatedByName != nil && strings.TrimSpace(*log.CreatedByName) != "" {
		e.Actor = *log.CreatedByName
	}

	if log.FieldName != nil && *log.FieldName != "" {
		if c, ok := FormatChange(*log.FieldName, DecodeJSON(log.OldValue), DecodeJSON(log.NewValue)); ok {
			e.Changes = append(e.Changes, c)
		}
	}

	if extra, ok := log.Metadata["changes"].(map[string]interface{}); ok {
		pairs := Decode(extra)
		for _, field := range sortedKeys(pairs.Fields()) {
			pair := pairs.Field(field)
			if c, ok := FormatChange(field, pair.Field("old"), pair.Field("new")); ok {
				e.Changes = append(e.Changes, c)
			}
		}
	}
	return e
}

// FormatEntries formats logs in order, then drops change rows whose sides both read as
// empty and entries left with nothing to show.
func FormatEntries(logs []*repository.ActivityLog) []Entry {
	out := make([]Entry, 0, len(logs))
	for _, log := range logs {
		if log == nil {
			continue
		}
		e := FormatEntry(log)

		kept := e.Changes[:0]
		for _, c := range e.Changes {
			if IsEmptyText(c.Old) && IsEmptyText(c.New) {
				continue
			}
			kept = append(kept, c)
		}
		e.Changes = kept

		if len(e.Changes) == 0 && e.Summary == "" {
			continue
		}
		out = append(out, e)
	}
	return out
}

func summary(log *repository.ActivityLog) string {
	if s, ok := log.Metadata["summary"].(string); ok && strings.TrimSpace(s) != "" {
		return s
	}

	subject := strings.ToUpper(log.EntityType)
	if log.EntityType != types.EntityVDCR {
		subject = Label(log.EntityType)
	}
	if name, ok := log.Metadata["name"].(string); ok && name != "" {
		subject += " " + name
	}

	switch log.ActivityType {
	case types.ActivityCreated:
		return "Created " + subject
	case types.ActivityDeleted:
		return "Deleted " + subject
	case types.ActivityAssigned:
		return "Updated assignments for " + subject
	case types.ActivityInvited:
		return "Invited " + subject
	}
	return ""
}

// EncodeValue stores a Value as raw JSON for an ActivityLog. Empty values store nothing.
func EncodeValue(v Value) json.RawMessage {
	if v.IsEmpty() {
		return nil
	}
	b, err := v.MarshalJSON()
	if err != nil {
		return nil
	}
	return b
}
