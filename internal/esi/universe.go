package esi

import (
	"context"
	"fmt"
)

// UniverseAPI wraps the public universe resource group.
type UniverseAPI struct {
	client *Client
}

// NewUniverseAPI creates the universe endpoint wrapper.
func NewUniverseAPI(client *Client) *UniverseAPI {
	return &UniverseAPI{client: client}
}

// Name resolves an ID to its name and category.
type Name struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
}

// TypeInfo describes an inventory type.
type TypeInfo struct {
	TypeID      int64   `json:"type_id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	GroupID     int64   `json:"group_id"`
	Published   bool    `json:"published"`
	Volume      float64 `json:"volume,omitempty"`
	Mass        float64 `json:"mass,omitempty"`
	Capacity    float64 `json:"capacity,omitempty"`
}

// Names resolves a batch of IDs (characters, corporations, types, systems
// and so on) to names. The endpoint is anonymous and accepts up to 1000 IDs.
func (a *UniverseAPI) Names(ctx context.Context, ids []int64) ([]Name, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	resp, err := a.client.Post(ctx, "/universe/names/", ids)
	if err != nil {
		return nil, err
	}
	var names []Name
	if err := resp.UnmarshalData(&names); err != nil {
		return nil, err
	}
	return names, nil
}

// Type returns public information about an inventory type.
func (a *UniverseAPI) Type(ctx context.Context, typeID int64) (*TypeInfo, error) {
	resp, err := a.client.Get(ctx, fmt.Sprintf("/universe/types/%d/", typeID))
	if err != nil {
		return nil, err
	}
	var info TypeInfo
	if err := resp.UnmarshalData(&info); err != nil {
		return nil, err
	}
	return &info, nil
}
