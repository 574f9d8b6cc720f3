package domain

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLot_Validate(t *testing.T) {
	tests := []struct {
		name    string
		lot     Lot
		wantErr bool
		field   string
	}{
		{
			name:    "Valid lot should pass",
			lot:     Lot{ID: "a", Symbol: "BTC", Amount: decimal.NewFromInt(2), Cost: decimal.NewFromInt(20000)},
			wantErr: false,
		},
		{
			name:    "Zero cost is allowed (airdrop)",
			lot:     Lot{ID: "a", Symbol: "ETH", Amount: decimal.NewFromInt(1), Cost: decimal.Zero},
			wantErr: false,
		},
		{
			name:    "Empty symbol should fail",
			lot:     Lot{ID: "a", Symbol: "", Amount: decimal.NewFromInt(1), Cost: decimal.NewFromInt(1)},
			wantErr: true,
			field:   "symbol",
		},
		{
			name:    "Zero amount should fail",
			lot:     Lot{ID: "a", Symbol: "BTC", Amount: decimal.Zero, Cost: decimal.NewFromInt(1)},
			wantErr: true,
			field:   "amount",
		},
		{
			name:    "Negative amount should fail",
			lot:     Lot{ID: "a", Symbol: "BTC", Amount: decimal.NewFromInt(-1), Cost: decimal.NewFromInt(1)},
			wantErr: true,
			field:   "amount",
		},
		{
			name:    "Negative cost should fail",
			lot:     Lot{ID: "a", Symbol: "BTC", Amount: decimal.NewFromInt(1), Cost: decimal.NewFromInt(-5)},
			wantErr: true,
			field:   "cost",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.lot.Validate()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}

			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "expected a ValidationError, got %v", err)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestNewLot_NormalizesSymbolAndAssignsID(t *testing.T) {
	lot, err := NewLot("  btc ", decimal.NewFromInt(1), decimal.NewFromInt(100))

	require.NoError(t, err)
	assert.Equal(t, "BTC", lot.Symbol)
	assert.NotEmpty(t, lot.ID)
	assert.True(t, lot.CostBasis().Equal(decimal.NewFromInt(100)))
}

func TestNewLot_RejectsInvalidInput(t *testing.T) {
	lot, err := NewLot("BTC", decimal.Zero, decimal.NewFromInt(100))

	assert.Nil(t, lot)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "amount must be positive")
}

func TestLot_DecodesLegacyNumericJSON(t *testing.T) {
	// Ledgers written by the browser app store amount and cost as plain numbers
	raw := `[{"id":"1712-abc","symbol":"ETH","amount":1.5,"cost":1800}]`

	var lots []Lot
	require.NoError(t, json.Unmarshal([]byte(raw), &lots))
	require.Len(t, lots, 1)

	assert.Equal(t, "1712-abc", lots[0].ID)
	assert.True(t, lots[0].Amount.Equal(decimal.RequireFromString("1.5")))
	assert.True(t, lots[0].Cost.Equal(decimal.NewFromInt(1800)))
}

func TestNormalizeSymbols(t *testing.T) {
	got := NormalizeSymbols([]string{"btc", " ETH", "", "BTC", "sol ", "eth"})

	assert.Equal(t, []string{"BTC", "ETH", "SOL"}, got)
}
