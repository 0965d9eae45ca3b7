package wizardmodule

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/soundfoundry/releasedesk/internal/database"
	"github.com/soundfoundry/releasedesk/internal/services"
	"github.com/soundfoundry/releasedesk/internal/types"
	"gorm.io/gorm"
)

// Service is the wizard controller: it owns the session draft store and the
// single code path that persists section edits to both the draft row and the
// release record, so the two channels cannot diverge.
type Service struct {
	db       *gorm.DB
	releases services.ReleaseService
}

// NewService creates the wizard service
func NewService(db *gorm.DB, releases services.ReleaseService) *Service {
	return &Service{db: db, releases: releases}
}

// State is the wizard view of one release for one session.
type State struct {
	ReleaseID string                 `json:"release_id"`
	Sections  []Section              `json:"sections"`
	Current   Section                `json:"current"`
	Snapshot  map[string]interface{} `json:"snapshot"`
}

// OverviewView is the terminal section: the fully merged release plus the
// accumulated validation errors. Submission is refused while Errors is
// non-empty.
type OverviewView struct {
	Release   map[string]interface{} `json:"release"`
	Tracks    []database.Track       `json:"tracks"`
	Errors    []string               `json:"errors"`
	CanSubmit bool                   `json:"can_submit"`
}

// GetState returns the ordered sections, the current pointer and the merged
// snapshot for a session.
func (s *Service) GetState(ctx context.Context, sessionID, releaseID string) (*State, error) {
	release, err := s.releases.GetRelease(ctx, releaseID)
	if err != nil {
		return nil, err
	}

	sections := SectionsFor(release.Type)
	current := sections[0]
	if cursor, err := s.readCursor(ctx, sessionID, releaseID); err == nil && cursor != "" {
		if ValidSection(release.Type, cursor) {
			current = cursor
		}
	}

	snapshot, err := s.mergedSnapshot(ctx, sessionID, release)
	if err != nil {
		return nil, err
	}

	return &State{
		ReleaseID: releaseID,
		Sections:  sections,
		Current:   current,
		Snapshot:  snapshot,
	}, nil
}

// PutDraft is the write-through path: called on every field change, no
// batching. The payload replaces the section's draft wholesale.
func (s *Service) PutDraft(ctx context.Context, sessionID, releaseID string, section Section, payload map[string]interface{}) error {
	if !DraftableSection(section) {
		return types.NewValidationError(fmt.Sprintf("section %q has no drafted state", section))
	}
	return s.writeDraft(ctx, sessionID, releaseID, string(section), payload)
}

// GetDraft returns the drafted fields of one section, read on mount.
func (s *Service) GetDraft(ctx context.Context, sessionID, releaseID string, section Section) (map[string]interface{}, error) {
	if !DraftableSection(section) {
		return nil, types.NewValidationError(fmt.Sprintf("section %q has no drafted state", section))
	}

	var draft database.WizardDraft
	err := s.db.WithContext(ctx).
		First(&draft, "session_id = ? AND release_id = ? AND section_key = ?", sessionID, releaseID, string(section)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return map[string]interface{}{}, nil
	}
	if err != nil {
		return nil, types.NewInternalError("failed to read draft", err)
	}

	var payload map[string]interface{}
	if err := json.Unmarshal([]byte(draft.Payload), &payload); err != nil {
		return nil, types.NewInternalError("corrupt draft payload", err)
	}
	return payload, nil
}

// SaveAndContinue merges a section's partial update into the release
// (shallow, last-write-wins field-by-field), persists the draft from the same
// code path, and advances the section pointer.
func (s *Service) SaveAndContinue(ctx context.Context, sessionID, releaseID string, section Section, fields map[string]interface{}) (*State, error) {
	release, err := s.releases.GetRelease(ctx, releaseID)
	if err != nil {
		return nil, err
	}
	if !ValidSection(release.Type, section) {
		return nil, types.NewValidationError(fmt.Sprintf("section %q is not part of this release's builder", section))
	}

	if len(fields) > 0 {
		if _, err := s.releases.ApplyFields(ctx, releaseID, fields); err != nil {
			return nil, err
		}
		if DraftableSection(section) {
			if err := s.writeDraft(ctx, sessionID, releaseID, string(section), fields); err != nil {
				return nil, err
			}
		}
	}

	next, _ := NextSection(release.Type, section)
	if err := s.writeCursor(ctx, sessionID, releaseID, next); err != nil {
		return nil, err
	}

	return s.GetState(ctx, sessionID, releaseID)
}

// Overview aggregates the fully merged view and its validation errors.
func (s *Service) Overview(ctx context.Context, sessionID, releaseID string) (*OverviewView, error) {
	release, err := s.releases.GetRelease(ctx, releaseID)
	if err != nil {
		return nil, err
	}

	merged, err := s.mergedSnapshot(ctx, sessionID, release)
	if err != nil {
		return nil, err
	}

	errs := validateForSubmission(release, merged)
	return &OverviewView{
		Release:   merged,
		Tracks:    release.Tracks,
		Errors:    errs,
		CanSubmit: len(errs) == 0,
	}, nil
}

// Submit refuses while validation errors remain, then transitions the
// release to Moderation and clears this session's drafts from the same code
// path.
func (s *Service) Submit(ctx context.Context, sessionID, releaseID, actorID string) (*database.Release, error) {
	overview, err := s.Overview(ctx, sessionID, releaseID)
	if err != nil {
		return nil, err
	}
	if len(overview.Errors) > 0 {
		return nil, types.NewValidationError("release is not ready for submission", overview.Errors[0])
	}

	release, err := s.releases.Submit(ctx, releaseID, actorID)
	if err != nil {
		return nil, err
	}

	if err := s.ClearDrafts(ctx, sessionID, releaseID); err != nil {
		return nil, err
	}
	return release, nil
}

// SectionDrafts implements services.DraftService.
func (s *Service) SectionDrafts(ctx context.Context, sessionID, releaseID string) (map[string]map[string]interface{}, error) {
	var drafts []database.WizardDraft
	err := s.db.WithContext(ctx).
		Where("session_id = ? AND release_id = ?", sessionID, releaseID).
		Find(&drafts).Error
	if err != nil {
		return nil, types.NewInternalError("failed to list drafts", err)
	}

	result := make(map[string]map[string]interface{}, len(drafts))
	for _, draft := range drafts {
		if draft.SectionKey == cursorKey {
			continue
		}
		var payload map[string]interface{}
		if err := json.Unmarshal([]byte(draft.Payload), &payload); err != nil {
			continue
		}
		result[draft.SectionKey] = payload
	}
	return result, nil
}

// ClearDrafts implements services.DraftService.
func (s *Service) ClearDrafts(ctx context.Context, sessionID, releaseID string) error {
	err := s.db.WithContext(ctx).
		Delete(&database.WizardDraft{}, "session_id = ? AND release_id = ?", sessionID, releaseID).Error
	if err != nil {
		return types.NewInternalError("failed to clear drafts", err)
	}
	return nil
}

// mergedSnapshot layers, lowest to highest precedence: the stored release
// row, then each drafted section. The most recently locally-edited value
// always wins display, even when its backend write failed.
func (s *Service) mergedSnapshot(ctx context.Context, sessionID string, release *database.Release) (map[string]interface{}, error) {
	data, err := json.Marshal(release)
	if err != nil {
		return nil, types.NewInternalError("failed to encode release", err)
	}
	var snapshot map[string]interface{}
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, types.NewInternalError("failed to decode release", err)
	}

	drafts, err := s.SectionDrafts(ctx, sessionID, release.ID)
	if err != nil {
		return nil, err
	}
	for _, section := range SectionsFor(release.Type) {
		payload, ok := drafts[string(section)]
		if !ok {
			continue
		}
		for key, value := range payload {
			snapshot[key] = value
		}
	}
	return snapshot, nil
}

func (s *Service) writeDraft(ctx context.Context, sessionID, releaseID, key string, payload map[string]interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return types.NewInternalError("failed to encode draft", err)
	}

	var existing database.WizardDraft
	err = s.db.WithContext(ctx).
		First(&existing, "session_id = ? AND release_id = ? AND section_key = ?", sessionID, releaseID, key).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		draft := database.WizardDraft{
			SessionID:  sessionID,
			ReleaseID:  releaseID,
			SectionKey: key,
			Payload:    string(data),
		}
		if err := s.db.WithContext(ctx).Create(&draft).Error; err != nil {
			return types.NewInternalError("failed to save draft", err)
		}
		return nil
	case err != nil:
		return types.NewInternalError("failed to look up draft", err)
	default:
		if err := s.db.WithContext(ctx).Model(&existing).Update("payload", string(data)).Error; err != nil {
			return types.NewInternalError("failed to save draft", err)
		}
		return nil
	}
}

func (s *Service) readCursor(ctx context.Context, sessionID, releaseID string) (Section, error) {
	var draft database.WizardDraft
	err := s.db.WithContext(ctx).
		First(&draft, "session_id = ? AND release_id = ? AND section_key = ?", sessionID, releaseID, cursorKey).Error
	if err != nil {
		return "", err
	}
	var payload struct {
		Section Section `json:"section"`
	}
	if err := json.Unmarshal([]byte(draft.Payload), &payload); err != nil {
		return "", err
	}
	return payload.Section, nil
}

func (s *Service) writeCursor(ctx context.Context, sessionID, releaseID string, section Section) error {
	payload := map[string]interface{}{"section": string(section)}
	return s.writeDraft(ctx, sessionID, releaseID, cursorKey, payload)
}
