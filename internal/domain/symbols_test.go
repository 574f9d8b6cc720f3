package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func symbolsOf(items []SymbolInfo) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.Symbol)
	}
	return out
}

func TestMatchSymbols(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{
			name:  "empty query returns the first entries",
			query: "",
			want:  []string{"BTC", "ETH", "SOL", "BNB", "XRP", "DOGE", "ADA", "AVAX"},
		},
		{
			name:  "prefix matches come before name matches",
			query: "et",
			want:  []string{"ETH", "ETC", "ICP"},
		},
		{
			name:  "name substring match",
			query: "graph",
			want:  []string{"GRT"},
		},
		{
			name:  "prefix on symbol then name containing the needle",
			query: "a",
			want:  []string{"ADA", "AVAX", "ATOM", "ARB", "AAVE", "APT", "ALGO", "SOL"},
		},
		{
			name:  "no match",
			query: "zzz",
			want:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, symbolsOf(MatchSymbols(tt.query)))
		})
	}
}
