package models

import (
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
)

// BetStatus is the lifecycle state of a simulated bet.
type BetStatus string

const (
	BetPending   BetStatus = "pending"
	BetWon       BetStatus = "won"
	BetLost      BetStatus = "lost"
	BetCancelled BetStatus = "cancelled"
)

// Terminal reports whether no further transition is possible.
func (s BetStatus) Terminal() bool {
	return s == BetWon || s == BetLost || s == BetCancelled
}

// CanTransitionTo reports whether s -> next is allowed. Staying in the same
// state is always allowed.
func (s BetStatus) CanTransitionTo(next BetStatus) bool {
	if s == next {
		return true
	}
	return s == BetPending && next.Terminal()
}

// BetType selects the game a bet is placed on.
type BetType string

const (
	BetTypeBasic   BetType = "basic"
	BetTypeSuper   BetType = "super"
	BetTypeHighLow BetType = "high_low"
	BetTypeOddEven BetType = "odd_even"
)

// Bet is a simulated wager as reported by the backend.
type Bet struct {
	ID              int64           `json:"id"`
	BetType         BetType         `json:"bet_type"`
	StarLevel       *int            `json:"star_level"`
	SelectedNumbers []string        `json:"selected_numbers"`
	SelectedOption  string          `json:"selected_option,omitempty"`
	BetAmount       decimal.Decimal `json:"bet_amount"`
	Multiplier      int             `json:"multiplier"`
	TotalCost       decimal.Decimal `json:"total_cost"`
	TargetDrawTerm  string          `json:"target_draw_term"`
	Status          BetStatus       `json:"status"`
	SettledDrawTerm string          `json:"settled_draw_term,omitempty"`
	MatchedCount    *int            `json:"matched_count"`
	MatchedNumbers  []string        `json:"matched_numbers"`
	PrizeAmount     decimal.Decimal `json:"prize_amount"`
	NetProfit       decimal.Decimal `json:"net_profit"`
	CreatedAt       Timestamp       `json:"created_at"`
	SettledAt       Timestamp       `json:"settled_at"`
}

// PlaceBetRequest is a candidate bet. One bet is created per period.
type PlaceBetRequest struct {
	BetType         BetType  `json:"bet_type" validate:"required,oneof=basic super high_low odd_even"`
	StarLevel       *int     `json:"star_level,omitempty" validate:"omitempty,min=1,max=10"`
	SelectedNumbers []string `json:"selected_numbers,omitempty" validate:"omitempty,unique,dive,numeric"`
	SelectedOption  string   `json:"selected_option,omitempty" validate:"omitempty,oneof=大 小 單 雙"`
	Multiplier      int      `json:"multiplier" default:"1" validate:"min=1,max=50"`
	BetPeriods      int      `json:"bet_periods" default:"1" validate:"min=1,max=10"`
}

// CheckSelection validates the fields that depend on BetType.
func (r *PlaceBetRequest) CheckSelection() error {
	switch r.BetType {
	case BetTypeBasic:
		if r.StarLevel == nil {
			return fmt.Errorf("star_level is required for basic bets")
		}
		if len(r.SelectedNumbers) != *r.StarLevel {
			return fmt.Errorf("%d star bet needs %d numbers, got %d", *r.StarLevel, *r.StarLevel, len(r.SelectedNumbers))
		}
	case BetTypeSuper:
		if len(r.SelectedNumbers) != 1 {
			return fmt.Errorf("super number bet needs exactly 1 number")
		}
	case BetTypeHighLow, BetTypeOddEven:
		if r.SelectedOption == "" {
			return fmt.Errorf("selected_option is required for %s bets", r.BetType)
		}
		return nil
	default:
		return fmt.Errorf("unknown bet type %q", r.BetType)
	}
	for _, n := range r.SelectedNumbers {
		v, err := strconv.Atoi(n)
		if err != nil || v < 1 || v > 80 {
			return fmt.Errorf("number %q must be between 01 and 80", n)
		}
	}
	return nil
}

// BetQuery selects one page of bets.
type BetQuery struct {
	Status BetStatus `json:"status,omitempty" query:"status" validate:"omitempty,oneof=pending won lost cancelled"`
	Limit  int       `json:"limit" query:"limit" default:"50" validate:"min=1,max=200"`
	Offset int       `json:"offset" query:"offset" validate:"min=0"`
}

// BetPage is one page of bets plus the total matching the filter.
type BetPage struct {
	Total int64 `json:"total"`
	Bets  []Bet `json:"bets"`
}

// BetStats is the server computed aggregate over settled bets.
// WinRate is a percentage with one decimal.
type BetStats struct {
	TotalBets  int64           `json:"total_bets"`
	Wins       int64           `json:"wins"`
	Losses     int64           `json:"losses"`
	Pending    int64           `json:"pending"`
	WinRate    decimal.Decimal `json:"win_rate"`
	TotalCost  decimal.Decimal `json:"total_cost"`
	TotalPrize decimal.Decimal `json:"total_prize"`
	NetProfit  decimal.Decimal `json:"net_profit"`
}

// SettlementSummary is returned by a batch settlement.
type SettlementSummary struct {
	SettledCount int    `json:"settled_count"`
	DrawTerm     string `json:"draw_term"`
}

// CancelAck acknowledges a cancellation.
type CancelAck struct {
	OK bool  `json:"ok"`
	ID int64 `json:"id"`
}

// LedgerState is what the ledger store exposes. Stats is nil until the
// first successful stats read.
type LedgerState struct {
	Query    BetQuery  `json:"query"`
	Bets     []Bet     `json:"bets"`
	Total    int64     `json:"total"`
	Stats    *BetStats `json:"stats"`
	NextDraw *NextDraw `json:"next_draw,omitempty"`
	Loading  bool      `json:"loading"`
	Placing  bool      `json:"placing"`
	Settling bool      `json:"settling"`
	Error    string    `json:"error,omitempty"`
}
