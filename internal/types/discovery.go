package types

import (
	"fmt"
	"time"
)

// SyncState tracks whether a discovery's remote mirror is up to date.
// The local record is authoritative either way; this only drives the
// manual reconciliation sweep.
type SyncState string

const (
	// SyncStatePending means the remote mirror has not been confirmed yet
	SyncStatePending SyncState = "pending"
	// SyncStateSynced means the remote row and image were written
	SyncStateSynced SyncState = "synced"
)

// IsValid checks if the sync state value is valid
func (s SyncState) IsValid() bool {
	return s == SyncStatePending || s == SyncStateSynced
}

// Discovery is a durably saved, user-curated record of one learned object.
// It outlives its originating session: the local copy is the authoritative
// store and the remote copy is a best-effort mirror only.
type Discovery struct {
	ID              string    `json:"id"`
	ObjectName      string    `json:"object_name"`
	Confidence      float64   `json:"confidence"`
	Category        Category  `json:"category"`
	ImageURI        string    `json:"image_uri"`
	FunFact         string    `json:"fun_fact"`
	ScienceInAction string    `json:"the_science_in_action"`
	WhyItMatters    string    `json:"why_it_matters_to_you"`
	TryThis         string    `json:"try_this"`
	ExploreFurther  []string  `json:"explore_further"`
	Timestamp       time.Time `json:"timestamp"`
	DateSaved       string    `json:"date_saved"`
	SyncState       SyncState `json:"sync_state"`

	// Optional backrefs to the originating session. The session may have
	// expired by the time anyone reads these.
	SessionID    string       `json:"session_id,omitempty"`
	FullImageURI string       `json:"full_image_uri,omitempty"`
	BoundingBox  *BoundingBox `json:"bounding_box,omitempty"`
}

// Validate checks if the discovery has valid field values
func (d *Discovery) Validate() error {
	if d.ID == "" {
		return fmt.Errorf("discovery id is required")
	}
	if d.ObjectName == "" {
		return fmt.Errorf("object_name is required")
	}
	if !d.Category.IsValid() {
		return fmt.Errorf("invalid category: %s", d.Category)
	}
	if d.ImageURI == "" {
		return fmt.Errorf("image_uri is required")
	}
	if !d.SyncState.IsValid() {
		return fmt.Errorf("invalid sync state: %s", d.SyncState)
	}
	return nil
}
