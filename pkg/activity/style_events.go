package activity

import (
	"sort"
	"strings"
	"time"
)

// Verbs and object types emitted for style lifecycle events.
const (
	VerbStyleUpdated      = "userstyle.updated"
	VerbStyleRejected     = "userstyle.rejected"
	VerbStyleLayerApplied = "userstyle.layer.applied"

	ObjectTypeStyle      = "userstyle"
	ObjectTypeStyleLayer = "userstyle.layer"
)

// ScopeContext captures the layer a style snapshot came from.
type ScopeContext struct {
	Name       string
	Label      string
	Priority   int
	Metadata   map[string]any
	SnapshotID string
}

// StyleEventInput describes the common fields for style lifecycle events.
type StyleEventInput struct {
	ActorID    string
	UserID     string
	TenantID   string
	ObjectID   string
	Channel    string
	Metadata   map[string]any
	Schema     string
	Changed    []string
	ErrorCode  string
	Scope      ScopeContext
	OccurredAt time.Time
}

// BuildStyleUpdatedEvent reports an accepted style with the ids of the
// settings whose selection changed.
func BuildStyleUpdatedEvent(input StyleEventInput) Event {
	return buildStyleEvent(VerbStyleUpdated, ObjectTypeStyle, input)
}

// BuildStyleRejectedEvent reports an update refused by validation.
func BuildStyleRejectedEvent(input StyleEventInput) Event {
	return buildStyleEvent(VerbStyleRejected, ObjectTypeStyle, input)
}

// BuildStyleLayerAppliedEvent reports a stack layer contributing to a
// resolved style.
func BuildStyleLayerAppliedEvent(input StyleEventInput) Event {
	return buildStyleEvent(VerbStyleLayerApplied, ObjectTypeStyleLayer, input)
}

func buildStyleEvent(verb, objectType string, input StyleEventInput) Event {
	metadata := cloneMap(input.Metadata)
	set := func(key string, value any) {
		if metadata == nil {
			metadata = map[string]any{}
		}
		metadata[key] = value
	}

	if input.Schema != "" {
		set("schema", input.Schema)
	}
	if len(input.Changed) > 0 {
		changed := append([]string(nil), input.Changed...)
		sort.Strings(changed)
		set("changed_settings", changed)
	}
	if input.ErrorCode != "" {
		set("error_code", input.ErrorCode)
	}
	if input.Scope.Name != "" {
		set("scope_name", input.Scope.Name)
		set("scope_priority", input.Scope.Priority)
		if input.Scope.Label != "" {
			set("scope_label", input.Scope.Label)
		}
		if len(input.Scope.Metadata) > 0 {
			set("scope_metadata", cloneMap(input.Scope.Metadata))
		}
	}
	if input.Scope.SnapshotID != "" {
		set("snapshot_id", input.Scope.SnapshotID)
	}

	objectID := strings.TrimSpace(input.ObjectID)
	if objectID == "" {
		objectID = strings.TrimSpace(input.Scope.SnapshotID)
	}
	if objectID == "" {
		objectID = objectType
	}

	return Event{
		Verb:       verb,
		ActorID:    strings.TrimSpace(input.ActorID),
		UserID:     strings.TrimSpace(input.UserID),
		TenantID:   strings.TrimSpace(input.TenantID),
		ObjectType: objectType,
		ObjectID:   objectID,
		Channel:    strings.TrimSpace(input.Channel),
		Metadata:   metadata,
		OccurredAt: input.OccurredAt,
	}
}
