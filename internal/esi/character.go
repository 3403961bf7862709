package esi

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// CharacterAPI wraps the character resource group. Methods that take a
// character id and a token belong to that same character; public methods say
// so explicitly.
type CharacterAPI struct {
	client *Client
}

// NewCharacterAPI creates the character endpoint wrapper.
func NewCharacterAPI(client *Client) *CharacterAPI {
	return &CharacterAPI{client: client}
}

// CharacterInfo is the public character sheet.
type CharacterInfo struct {
	Name           string    `json:"name"`
	CorporationID  int64     `json:"corporation_id"`
	AllianceID     int64     `json:"alliance_id,omitempty"`
	Birthday       time.Time `json:"birthday"`
	Gender         string    `json:"gender"`
	RaceID         int       `json:"race_id"`
	BloodlineID    int       `json:"bloodline_id"`
	SecurityStatus float64   `json:"security_status,omitempty"`
	Description    string    `json:"description,omitempty"`
	Title          string    `json:"title,omitempty"`
}

// Portrait holds character portrait URLs by size.
type Portrait struct {
	Px64  string `json:"px64x64"`
	Px128 string `json:"px128x128"`
	Px256 string `json:"px256x256"`
	Px512 string `json:"px512x512"`
}

// CorporationHistoryEntry is one employment record.
type CorporationHistoryEntry struct {
	CorporationID int64     `json:"corporation_id"`
	RecordID      int64     `json:"record_id"`
	StartDate     time.Time `json:"start_date"`
	IsDeleted     bool      `json:"is_deleted,omitempty"`
}

// Attributes are the character's neural attributes.
type Attributes struct {
	Charisma     int        `json:"charisma"`
	Intelligence int        `json:"intelligence"`
	Memory       int        `json:"memory"`
	Perception   int        `json:"perception"`
	Willpower    int        `json:"willpower"`
	BonusRemaps  int        `json:"bonus_remaps,omitempty"`
	LastRemap    *time.Time `json:"last_remap_date,omitempty"`
}

// Skill is one trained skill.
type Skill struct {
	SkillID            int64 `json:"skill_id"`
	ActiveSkillLevel   int   `json:"active_skill_level"`
	TrainedSkillLevel  int   `json:"trained_skill_level"`
	SkillpointsInSkill int64 `json:"skillpoints_in_skill"`
}

// Skills is the full skill sheet.
type Skills struct {
	Skills        []Skill `json:"skills"`
	TotalSP       int64   `json:"total_sp"`
	UnallocatedSP int64   `json:"unallocated_sp,omitempty"`
}

// SkillQueueEntry is one slot in the training queue.
type SkillQueueEntry struct {
	SkillID         int64      `json:"skill_id"`
	QueuePosition   int        `json:"queue_position"`
	FinishedLevel   int        `json:"finished_level"`
	StartDate       *time.Time `json:"start_date,omitempty"`
	FinishDate      *time.Time `json:"finish_date,omitempty"`
	TrainingStartSP int64      `json:"training_start_sp,omitempty"`
	LevelStartSP    int64      `json:"level_start_sp,omitempty"`
	LevelEndSP      int64      `json:"level_end_sp,omitempty"`
}

// Location is the character's current whereabouts.
type Location struct {
	SolarSystemID int64 `json:"solar_system_id"`
	StationID     int64 `json:"station_id,omitempty"`
	StructureID   int64 `json:"structure_id,omitempty"`
}

// Ship is the character's current ship.
type Ship struct {
	ShipItemID int64  `json:"ship_item_id"`
	ShipName   string `json:"ship_name"`
	ShipTypeID int64  `json:"ship_type_id"`
}

// Online is the character's online status.
type Online struct {
	Online     bool       `json:"online"`
	LastLogin  *time.Time `json:"last_login,omitempty"`
	LastLogout *time.Time `json:"last_logout,omitempty"`
	Logins     int        `json:"logins,omitempty"`
}

// Asset is one owned item.
type Asset struct {
	ItemID       int64  `json:"item_id"`
	TypeID       int64  `json:"type_id"`
	Quantity     int64  `json:"quantity"`
	LocationID   int64  `json:"location_id"`
	LocationFlag string `json:"location_flag"`
	LocationType string `json:"location_type"`
	IsSingleton  bool   `json:"is_singleton"`
}

// Contact is one entry in the character's contact list.
type Contact struct {
	ContactID   int64   `json:"contact_id"`
	ContactType string  `json:"contact_type"`
	Standing    float64 `json:"standing"`
	IsWatched   bool    `json:"is_watched,omitempty"`
	IsBlocked   bool    `json:"is_blocked,omitempty"`
	LabelIDs    []int64 `json:"label_ids,omitempty"`
}

// PublicInfo returns public information about any character. No token needed.
func (a *CharacterAPI) PublicInfo(ctx context.Context, characterID int64) (*CharacterInfo, error) {
	resp, err := a.client.Get(ctx, fmt.Sprintf("/characters/%d/", characterID))
	if err != nil {
		return nil, err
	}
	var info CharacterInfo
	if err := resp.UnmarshalData(&info); err != nil {
		return nil, err
	}
	return &info, nil
}

// Portrait returns portrait URLs for any character. No token needed.
func (a *CharacterAPI) Portrait(ctx context.Context, characterID int64) (*Portrait, error) {
	resp, err := a.client.Get(ctx, fmt.Sprintf("/characters/%d/portrait/", characterID))
	if err != nil {
		return nil, err
	}
	var p Portrait
	if err := resp.UnmarshalData(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

// CorporationHistory returns employment history for any character. No token
// needed.
func (a *CharacterAPI) CorporationHistory(ctx context.Context, characterID int64) ([]CorporationHistoryEntry, error) {
	resp, err := a.client.Get(ctx, fmt.Sprintf("/characters/%d/corporationhistory/", characterID))
	if err != nil {
		return nil, err
	}
	var history []CorporationHistoryEntry
	if err := resp.UnmarshalData(&history); err != nil {
		return nil, err
	}
	return history, nil
}

// Attributes returns the character's attributes.
func (a *CharacterAPI) Attributes(ctx context.Context, characterID int64) (*Attributes, error) {
	resp, err := a.client.Get(ctx, fmt.Sprintf("/characters/%d/attributes/", characterID), WithCharacter(characterID))
	if err != nil {
		return nil, err
	}
	var attrs Attributes
	if err := resp.UnmarshalData(&attrs); err != nil {
		return nil, err
	}
	return &attrs, nil
}

// Skills returns the character's skill sheet.
func (a *CharacterAPI) Skills(ctx context.Context, characterID int64) (*Skills, error) {
	resp, err := a.client.Get(ctx, fmt.Sprintf("/characters/%d/skills/", characterID), WithCharacter(characterID))
	if err != nil {
		return nil, err
	}
	var skills Skills
	if err := resp.UnmarshalData(&skills); err != nil {
		return nil, err
	}
	return &skills, nil
}

// SkillQueue returns the character's training queue.
func (a *CharacterAPI) SkillQueue(ctx context.Context, characterID int64) ([]SkillQueueEntry, error) {
	resp, err := a.client.Get(ctx, fmt.Sprintf("/characters/%d/skillqueue/", characterID), WithCharacter(characterID))
	if err != nil {
		return nil, err
	}
	var queue []SkillQueueEntry
	if err := resp.UnmarshalData(&queue); err != nil {
		return nil, err
	}
	return queue, nil
}

// Location returns the character's current location.
func (a *CharacterAPI) Location(ctx context.Context, characterID int64) (*Location, error) {
	resp, err := a.client.Get(ctx, fmt.Sprintf("/characters/%d/location/", characterID), WithCharacter(characterID))
	if err != nil {
		return nil, err
	}
	var loc Location
	if err := resp.UnmarshalData(&loc); err != nil {
		return nil, err
	}
	return &loc, nil
}

// Ship returns the character's current ship.
func (a *CharacterAPI) Ship(ctx context.Context, characterID int64) (*Ship, error) {
	resp, err := a.client.Get(ctx, fmt.Sprintf("/characters/%d/ship/", characterID), WithCharacter(characterID))
	if err != nil {
		return nil, err
	}
	var ship Ship
	if err := resp.UnmarshalData(&ship); err != nil {
		return nil, err
	}
	return &ship, nil
}

// Online returns the character's online status.
func (a *CharacterAPI) Online(ctx context.Context, characterID int64) (*Online, error) {
	resp, err := a.client.Get(ctx, fmt.Sprintf("/characters/%d/online/", characterID), WithCharacter(characterID))
	if err != nil {
		return nil, err
	}
	var online Online
	if err := resp.UnmarshalData(&online); err != nil {
		return nil, err
	}
	return &online, nil
}

// Implants returns the character's plugged-in implant type ids.
func (a *CharacterAPI) Implants(ctx context.Context, characterID int64) ([]int64, error) {
	resp, err := a.client.Get(ctx, fmt.Sprintf("/characters/%d/implants/", characterID), WithCharacter(characterID))
	if err != nil {
		return nil, err
	}
	var implants []int64
	if err := resp.UnmarshalData(&implants); err != nil {
		return nil, err
	}
	return implants, nil
}

// Assets returns one page of the character's assets.
func (a *CharacterAPI) Assets(ctx context.Context, characterID int64, page int) ([]Asset, error) {
	resp, err := a.client.Get(ctx, fmt.Sprintf("/characters/%d/assets/", characterID),
		WithCharacter(characterID), WithPage(page))
	if err != nil {
		return nil, err
	}
	var assets []Asset
	if err := resp.UnmarshalData(&assets); err != nil {
		return nil, err
	}
	return assets, nil
}

// Contacts returns one page of the character's contacts.
func (a *CharacterAPI) Contacts(ctx context.Context, characterID int64, page int) ([]Contact, error) {
	resp, err := a.client.Get(ctx, fmt.Sprintf("/characters/%d/contacts/", characterID),
		WithCharacter(characterID), WithPage(page))
	if err != nil {
		return nil, err
	}
	var contacts []Contact
	if err := resp.UnmarshalData(&contacts); err != nil {
		return nil, err
	}
	return contacts, nil
}

// AddContacts adds contacts at the given standing and returns the created
// contact ids.
func (a *CharacterAPI) AddContacts(ctx context.Context, characterID int64, contactIDs []int64, standing float64) ([]int64, error) {
	params := map[string][]string{"standing": {fmt.Sprintf("%g", standing)}}
	resp, err := a.client.Post(ctx, fmt.Sprintf("/characters/%d/contacts/", characterID), contactIDs,
		WithCharacter(characterID), WithParams(params))
	if err != nil {
		return nil, err
	}
	var created []int64
	if err := resp.UnmarshalData(&created); err != nil {
		return nil, err
	}
	return created, nil
}

// DeleteContacts removes the given contacts.
func (a *CharacterAPI) DeleteContacts(ctx context.Context, characterID int64, contactIDs []int64) error {
	params := map[string][]string{"contact_ids": {joinIDs(contactIDs)}}
	_, err := a.client.Delete(ctx, fmt.Sprintf("/characters/%d/contacts/", characterID), nil,
		WithCharacter(characterID), WithParams(params))
	return err
}

func joinIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ",")
}
