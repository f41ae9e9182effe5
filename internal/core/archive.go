package core

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"lodgecore/internal/blob"
)

// RosterEntry is one line of an archived assignment roster.
type RosterEntry struct {
	RegistrationID string `json:"registration_id"`
	ParticipantID  string `json:"participant_id"`
	Name           string `json:"name"`
	Role           Role   `json:"role"`
	VillageCode    string `json:"village_code"`
	BungalowName   string `json:"bungalow_name"`
	BedID          string `json:"bed_id"`
	StartDate      string `json:"start_date"`
	EndDate        string `json:"end_date"`
	StageName      string `json:"stage_name"`
}

// RosterArchive is the document persisted by ArchiveAssignments.
type RosterArchive struct {
	StageID    string        `json:"stage_id"`
	StageName  string        `json:"stage_name"`
	ArchivedAt string        `json:"archived_at"`
	Entries    []RosterEntry `json:"entries"`
}

// ArchiveAssignments serializes a stage's assigned roster and stores it in
// the blob store under assignments/<stage>/<timestamp>.json.
func (s *Service) ArchiveAssignments(ctx context.Context, store blob.Store, stageID string) (blob.Info, error) {
	if store == nil {
		return blob.Info{}, fmt.Errorf("blob store required")
	}
	stage, ok := s.store.GetStage(stageID)
	if !ok {
		return blob.Info{}, ErrNotFound{Entity: EntityStage, ID: stageID}
	}

	bungalows := make(map[string]Bungalow)
	for _, b := range s.store.ListBungalows() {
		bungalows[b.ID] = b
	}

	archive := RosterArchive{
		StageID:    stageID,
		StageName:  stage.Name,
		ArchivedAt: s.clock.Now().UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
	for _, r := range s.store.ListRegistrations() {
		if r.StageID != stageID || r.Assignment == nil {
			continue
		}
		participant, ok := s.store.GetParticipant(r.ParticipantID)
		if !ok {
			continue
		}
		bungalow := bungalows[r.Assignment.BungalowID]
		period := r.EffectivePeriod(stage)
		archive.Entries = append(archive.Entries, RosterEntry{
			RegistrationID: r.ID,
			ParticipantID:  participant.ID,
			Name:           participant.FullName(),
			Role:           r.Role,
			VillageCode:    bungalow.VillageCode,
			BungalowName:   bungalow.Name,
			BedID:          r.Assignment.BedID,
			StartDate:      period.Start.Format(dateLayout),
			EndDate:        period.End.Format(dateLayout),
			StageName:      stage.Name,
		})
	}
	sort.Slice(archive.Entries, func(i, j int) bool {
		a, b := archive.Entries[i], archive.Entries[j]
		if a.VillageCode != b.VillageCode {
			return a.VillageCode < b.VillageCode
		}
		if a.BungalowName != b.BungalowName {
			return a.BungalowName < b.BungalowName
		}
		return a.BedID < b.BedID
	})

	payload, err := json.MarshalIndent(archive, "", "  ")
	if err != nil {
		return blob.Info{}, err
	}
	key := fmt.Sprintf("assignments/%s/%s.json", stageID, s.clock.Now().UTC().Format("20060102T150405"))
	info, err := store.Put(ctx, key, bytes.NewReader(payload), blob.PutOptions{
		ContentType: "application/json",
		Metadata:    map[string]string{"stage_id": stageID},
	})
	if err != nil {
		return blob.Info{}, err
	}
	s.logger.Info("assignment roster archived", "stage_id", stageID, "key", info.Key, "entries", len(archive.Entries))
	return info, nil
}
