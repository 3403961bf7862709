package esi

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"
)

// WalletAPI wraps the wallet resource group for characters and corporations.
type WalletAPI struct {
	client *Client
}

// NewWalletAPI creates the wallet endpoint wrapper.
func NewWalletAPI(client *Client) *WalletAPI {
	return &WalletAPI{client: client}
}

// JournalEntry is one wallet journal row.
type JournalEntry struct {
	ID            int64     `json:"id"`
	Date          time.Time `json:"date"`
	RefType       string    `json:"ref_type"`
	Amount        float64   `json:"amount,omitempty"`
	Balance       float64   `json:"balance,omitempty"`
	Description   string    `json:"description"`
	Reason        string    `json:"reason,omitempty"`
	FirstPartyID  int64     `json:"first_party_id,omitempty"`
	SecondPartyID int64     `json:"second_party_id,omitempty"`
	ContextID     int64     `json:"context_id,omitempty"`
	ContextType   string    `json:"context_id_type,omitempty"`
	Tax           float64   `json:"tax,omitempty"`
	TaxReceiverID int64     `json:"tax_receiver_id,omitempty"`
}

// Transaction is one market transaction row.
type Transaction struct {
	TransactionID int64     `json:"transaction_id"`
	Date          time.Time `json:"date"`
	TypeID        int64     `json:"type_id"`
	Quantity      int64     `json:"quantity"`
	UnitPrice     float64   `json:"unit_price"`
	ClientID      int64     `json:"client_id"`
	LocationID    int64     `json:"location_id"`
	IsBuy         bool      `json:"is_buy"`
	IsPersonal    bool      `json:"is_personal,omitempty"`
	JournalRefID  int64     `json:"journal_ref_id"`
}

// CorporationWallet is one corporation wallet division.
type CorporationWallet struct {
	Division int     `json:"division"`
	Balance  float64 `json:"balance"`
}

// Balance returns the character's wallet balance in ISK.
func (a *WalletAPI) Balance(ctx context.Context, characterID int64) (float64, error) {
	resp, err := a.client.Get(ctx, fmt.Sprintf("/characters/%d/wallet/", characterID), WithCharacter(characterID))
	if err != nil {
		return 0, err
	}
	var balance float64
	if err := resp.UnmarshalData(&balance); err != nil {
		return 0, fmt.Errorf("wallet balance is not numeric: %w", err)
	}
	return balance, nil
}

// Journal returns one page of the character's wallet journal.
func (a *WalletAPI) Journal(ctx context.Context, characterID int64, page int) ([]JournalEntry, error) {
	resp, err := a.client.Get(ctx, fmt.Sprintf("/characters/%d/wallet/journal/", characterID),
		WithCharacter(characterID), WithPage(page))
	if err != nil {
		return nil, err
	}
	var entries []JournalEntry
	if err := resp.UnmarshalData(&entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// Transactions returns the character's market transactions, optionally only
// those older than fromID.
func (a *WalletAPI) Transactions(ctx context.Context, characterID, fromID int64) ([]Transaction, error) {
	opts := []RequestOption{WithCharacter(characterID)}
	if fromID > 0 {
		opts = append(opts, WithParams(url.Values{"from_id": {strconv.FormatInt(fromID, 10)}}))
	}
	resp, err := a.client.Get(ctx, fmt.Sprintf("/characters/%d/wallet/transactions/", characterID), opts...)
	if err != nil {
		return nil, err
	}
	var txns []Transaction
	if err := resp.UnmarshalData(&txns); err != nil {
		return nil, err
	}
	return txns, nil
}

// CorporationWallets returns the corporation's wallet divisions. The
// character must hold the Accountant or Junior Accountant role.
func (a *WalletAPI) CorporationWallets(ctx context.Context, corporationID, characterID int64) ([]CorporationWallet, error) {
	resp, err := a.client.Get(ctx, fmt.Sprintf("/corporations/%d/wallets/", corporationID), WithCharacter(characterID))
	if err != nil {
		return nil, err
	}
	var wallets []CorporationWallet
	if err := resp.UnmarshalData(&wallets); err != nil {
		return nil, err
	}
	return wallets, nil
}

// CorporationJournal returns one page of a corporation wallet division's
// journal (divisions 1-7).
func (a *WalletAPI) CorporationJournal(ctx context.Context, corporationID int64, division int, characterID int64, page int) ([]JournalEntry, error) {
	resp, err := a.client.Get(ctx, fmt.Sprintf("/corporations/%d/wallets/%d/journal/", corporationID, division),
		WithCharacter(characterID), WithPage(page))
	if err != nil {
		return nil, err
	}
	var entries []JournalEntry
	if err := resp.UnmarshalData(&entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// CorporationTransactions returns a corporation wallet division's market
// transactions.
func (a *WalletAPI) CorporationTransactions(ctx context.Context, corporationID int64, division int, characterID, fromID int64) ([]Transaction, error) {
	opts := []RequestOption{WithCharacter(characterID)}
	if fromID > 0 {
		opts = append(opts, WithParams(url.Values{"from_id": {strconv.FormatInt(fromID, 10)}}))
	}
	resp, err := a.client.Get(ctx, fmt.Sprintf("/corporations/%d/wallets/%d/transactions/", corporationID, division), opts...)
	if err != nil {
		return nil, err
	}
	var txns []Transaction
	if err := resp.UnmarshalData(&txns); err != nil {
		return nil, err
	}
	return txns, nil
}
