package esi

import (
	"context"
	"fmt"
	"time"
)

// FleetAPI wraps the fleet resource group. Every call requires fleet boss or
// appropriate fleet role on the acting character.
type FleetAPI struct {
	client *Client
}

// NewFleetAPI creates the fleet endpoint wrapper.
func NewFleetAPI(client *Client) *FleetAPI {
	return &FleetAPI{client: client}
}

// CharacterFleet identifies the fleet a character currently belongs to.
type CharacterFleet struct {
	FleetID int64  `json:"fleet_id"`
	Role    string `json:"role"`
	WingID  int64  `json:"wing_id"`
	SquadID int64  `json:"squad_id"`
}

// FleetInfo holds fleet-wide settings.
type FleetInfo struct {
	MOTD           string `json:"motd"`
	IsFreeMove     bool   `json:"is_free_move"`
	IsRegistered   bool   `json:"is_registered"`
	IsVoiceEnabled bool   `json:"is_voice_enabled"`
}

// FleetUpdate carries optional fleet setting changes. Nil fields are left
// untouched.
type FleetUpdate struct {
	MOTD       *string `json:"motd,omitempty"`
	IsFreeMove *bool   `json:"is_free_move,omitempty"`
}

// FleetMember is one pilot in the fleet composition.
type FleetMember struct {
	CharacterID    int64     `json:"character_id"`
	ShipTypeID     int64     `json:"ship_type_id"`
	SolarSystemID  int64     `json:"solar_system_id"`
	StationID      int64     `json:"station_id,omitempty"`
	Role           string    `json:"role"`
	RoleName       string    `json:"role_name"`
	WingID         int64     `json:"wing_id"`
	SquadID        int64     `json:"squad_id"`
	JoinTime       time.Time `json:"join_time"`
	TakesFleetWarp bool      `json:"takes_fleet_warp"`
}

// FleetInvitation describes an invite to send. Role is one of
// fleet_commander, wing_commander, squad_commander or squad_member; wing and
// squad IDs are required only for the commander and member roles that target
// a slot.
type FleetInvitation struct {
	CharacterID int64  `json:"character_id"`
	Role        string `json:"role"`
	WingID      int64  `json:"wing_id,omitempty"`
	SquadID     int64  `json:"squad_id,omitempty"`
}

// FleetMove repositions an existing member, same fields as an invitation
// minus the character.
type FleetMove struct {
	Role    string `json:"role"`
	WingID  int64  `json:"wing_id,omitempty"`
	SquadID int64  `json:"squad_id,omitempty"`
}

// FleetSquad is one squad inside a wing.
type FleetSquad struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// FleetWing is one wing with its squads.
type FleetWing struct {
	ID     int64        `json:"id"`
	Name   string       `json:"name"`
	Squads []FleetSquad `json:"squads"`
}

type newWingResponse struct {
	WingID int64 `json:"wing_id"`
}

type newSquadResponse struct {
	SquadID int64 `json:"squad_id"`
}

type renameBody struct {
	Name string `json:"name"`
}

// CharacterFleet returns the fleet the character is currently in. ESI
// answers 404 when the character is not in a fleet, which surfaces as an
// api_error.
func (a *FleetAPI) CharacterFleet(ctx context.Context, characterID int64) (*CharacterFleet, error) {
	resp, err := a.client.Get(ctx, fmt.Sprintf("/characters/%d/fleet/", characterID), WithCharacter(characterID))
	if err != nil {
		return nil, err
	}
	var fleet CharacterFleet
	if err := resp.UnmarshalData(&fleet); err != nil {
		return nil, err
	}
	return &fleet, nil
}

// Fleet returns fleet-wide settings.
func (a *FleetAPI) Fleet(ctx context.Context, fleetID, characterID int64) (*FleetInfo, error) {
	resp, err := a.client.Get(ctx, fmt.Sprintf("/fleets/%d/", fleetID), WithCharacter(characterID))
	if err != nil {
		return nil, err
	}
	var info FleetInfo
	if err := resp.UnmarshalData(&info); err != nil {
		return nil, err
	}
	return &info, nil
}

// Update changes the fleet MOTD and/or free-move setting.
func (a *FleetAPI) Update(ctx context.Context, fleetID, characterID int64, update FleetUpdate) error {
	_, err := a.client.Put(ctx, fmt.Sprintf("/fleets/%d/", fleetID), update, WithCharacter(characterID))
	return err
}

// Members returns the fleet composition.
func (a *FleetAPI) Members(ctx context.Context, fleetID, characterID int64) ([]FleetMember, error) {
	resp, err := a.client.Get(ctx, fmt.Sprintf("/fleets/%d/members/", fleetID), WithCharacter(characterID))
	if err != nil {
		return nil, err
	}
	var members []FleetMember
	if err := resp.UnmarshalData(&members); err != nil {
		return nil, err
	}
	return members, nil
}

// Invite sends a fleet invitation.
func (a *FleetAPI) Invite(ctx context.Context, fleetID, characterID int64, invitation FleetInvitation) error {
	_, err := a.client.Post(ctx, fmt.Sprintf("/fleets/%d/members/", fleetID), invitation, WithCharacter(characterID))
	return err
}

// Kick removes a member from the fleet.
func (a *FleetAPI) Kick(ctx context.Context, fleetID, characterID, memberID int64) error {
	_, err := a.client.Delete(ctx, fmt.Sprintf("/fleets/%d/members/%d/", fleetID, memberID), nil, WithCharacter(characterID))
	return err
}

// MoveMember moves a member to another slot or role.
func (a *FleetAPI) MoveMember(ctx context.Context, fleetID, characterID, memberID int64, move FleetMove) error {
	_, err := a.client.Put(ctx, fmt.Sprintf("/fleets/%d/members/%d/", fleetID, memberID), move, WithCharacter(characterID))
	return err
}

// Wings returns the fleet's wing and squad layout.
func (a *FleetAPI) Wings(ctx context.Context, fleetID, characterID int64) ([]FleetWing, error) {
	resp, err := a.client.Get(ctx, fmt.Sprintf("/fleets/%d/wings/", fleetID), WithCharacter(characterID))
	if err != nil {
		return nil, err
	}
	var wings []FleetWing
	if err := resp.UnmarshalData(&wings); err != nil {
		return nil, err
	}
	return wings, nil
}

// CreateWing adds a wing and returns its ID.
func (a *FleetAPI) CreateWing(ctx context.Context, fleetID, characterID int64) (int64, error) {
	resp, err := a.client.Post(ctx, fmt.Sprintf("/fleets/%d/wings/", fleetID), nil, WithCharacter(characterID))
	if err != nil {
		return 0, err
	}
	var created newWingResponse
	if err := resp.UnmarshalData(&created); err != nil {
		return 0, err
	}
	return created.WingID, nil
}

// DeleteWing removes an empty wing.
func (a *FleetAPI) DeleteWing(ctx context.Context, fleetID, characterID, wingID int64) error {
	_, err := a.client.Delete(ctx, fmt.Sprintf("/fleets/%d/wings/%d/", fleetID, wingID), nil, WithCharacter(characterID))
	return err
}

// RenameWing sets a wing's name.
func (a *FleetAPI) RenameWing(ctx context.Context, fleetID, characterID, wingID int64, name string) error {
	_, err := a.client.Put(ctx, fmt.Sprintf("/fleets/%d/wings/%d/", fleetID, wingID), renameBody{Name: name}, WithCharacter(characterID))
	return err
}

// CreateSquad adds a squad to a wing and returns its ID.
func (a *FleetAPI) CreateSquad(ctx context.Context, fleetID, characterID, wingID int64) (int64, error) {
	resp, err := a.client.Post(ctx, fmt.Sprintf("/fleets/%d/wings/%d/squads/", fleetID, wingID), nil, WithCharacter(characterID))
	if err != nil {
		return 0, err
	}
	var created newSquadResponse
	if err := resp.UnmarshalData(&created); err != nil {
		return 0, err
	}
	return created.SquadID, nil
}

// DeleteSquad removes an empty squad.
func (a *FleetAPI) DeleteSquad(ctx context.Context, fleetID, characterID, squadID int64) error {
	_, err := a.client.Delete(ctx, fmt.Sprintf("/fleets/%d/squads/%d/", fleetID, squadID), nil, WithCharacter(characterID))
	return err
}

// RenameSquad sets a squad's name.
func (a *FleetAPI) RenameSquad(ctx context.Context, fleetID, characterID, squadID int64, name string) error {
	_, err := a.client.Put(ctx, fmt.Sprintf("/fleets/%d/squads/%d/", fleetID, squadID), renameBody{Name: name}, WithCharacter(characterID))
	return err
}
