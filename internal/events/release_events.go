package events

import (
	"fmt"
	"time"
)

// NewReleaseEvent creates a release lifecycle event
func NewReleaseEvent(eventType EventType, releaseID, releaseName, actorID string) Event {
	return Event{
		Type:    eventType,
		Source:  "releasemodule",
		Message: fmt.Sprintf("release %q %s", releaseName, lifecycleVerb(eventType)),
		Data: map[string]interface{}{
			"release_id":   releaseID,
			"release_name": releaseName,
			"actor_id":     actorID,
		},
		Timestamp: time.Now(),
	}
}

// NewAssetUploadedEvent creates an asset upload event
func NewAssetUploadedEvent(bucket, path, releaseID string, size int64) Event {
	return Event{
		Type:    EventAssetUploaded,
		Source:  "assetmodule",
		Message: fmt.Sprintf("asset uploaded to %s/%s", bucket, path),
		Data: map[string]interface{}{
			"bucket":     bucket,
			"path":       path,
			"release_id": releaseID,
			"size":       size,
		},
		Timestamp: time.Now(),
	}
}

func lifecycleVerb(eventType EventType) string {
	switch eventType {
	case EventReleaseCreated:
		return "created"
	case EventReleaseSubmitted:
		return "submitted for moderation"
	case EventReleaseApproved:
		return "sent to stores"
	case EventReleaseRejected:
		return "rejected"
	case EventReleaseReopened:
		return "reopened for edit"
	case EventReleaseTakenDown:
		return "taken down"
	default:
		return string(eventType)
	}
}
