package domain

import "strings"

// SymbolInfo is one entry of the built-in symbol library used for autocomplete
type SymbolInfo struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}

// MaxSymbolMatches caps the number of autocomplete suggestions
const MaxSymbolMatches = 8

// TrendingSymbols is the fixed market watchlist, independent of holdings
var TrendingSymbols = []string{"BTC", "ETH", "SOL", "BNB", "XRP", "DOGE", "ADA", "AVAX"}

// SymbolLibrary is the list of well-known assets offered as suggestions
var SymbolLibrary = []SymbolInfo{
	{Symbol: "BTC", Name: "Bitcoin"},
	{Symbol: "ETH", Name: "Ethereum"},
	{Symbol: "SOL", Name: "Solana"},
	{Symbol: "BNB", Name: "BNB"},
	{Symbol: "XRP", Name: "XRP"},
	{Symbol: "DOGE", Name: "Dogecoin"},
	{Symbol: "ADA", Name: "Cardano"},
	{Symbol: "AVAX", Name: "Avalanche"},
	{Symbol: "TRX", Name: "Tron"},
	{Symbol: "DOT", Name: "Polkadot"},
	{Symbol: "MATIC", Name: "Polygon"},
	{Symbol: "LINK", Name: "Chainlink"},
	{Symbol: "LTC", Name: "Litecoin"},
	{Symbol: "ATOM", Name: "Cosmos"},
	{Symbol: "XLM", Name: "Stellar"},
	{Symbol: "OP", Name: "Optimism"},
	{Symbol: "ARB", Name: "Arbitrum"},
	{Symbol: "ICP", Name: "Internet Computer"},
	{Symbol: "AAVE", Name: "Aave"},
	{Symbol: "SUI", Name: "Sui"},
	{Symbol: "APT", Name: "Aptos"},
	{Symbol: "NEAR", Name: "Near Protocol"},
	{Symbol: "FTM", Name: "Fantom"},
	{Symbol: "HBAR", Name: "Hedera"},
	{Symbol: "VET", Name: "VeChain"},
	{Symbol: "ALGO", Name: "Algorand"},
	{Symbol: "GRT", Name: "The Graph"},
	{Symbol: "UNI", Name: "Uniswap"},
	{Symbol: "ETC", Name: "Ethereum Classic"},
	{Symbol: "EGLD", Name: "MultiversX"},
}

// MatchSymbols returns autocomplete suggestions for query
// Logic:
//   - Empty query: the first MaxSymbolMatches library entries
//   - Otherwise: symbols starting with the query, then entries whose name contains it
//   - At most MaxSymbolMatches results
func MatchSymbols(query string) []SymbolInfo {
	needle := NormalizeSymbol(query)
	if needle == "" {
		return append([]SymbolInfo(nil), SymbolLibrary[:MaxSymbolMatches]...)
	}

	matches := make([]SymbolInfo, 0, MaxSymbolMatches)
	taken := make(map[string]bool)
	for _, item := range SymbolLibrary {
		if strings.HasPrefix(item.Symbol, needle) {
			matches = append(matches, item)
			taken[item.Symbol] = true
		}
	}
	for _, item := range SymbolLibrary {
		if !taken[item.Symbol] && strings.Contains(strings.ToUpper(item.Name), needle) {
			matches = append(matches, item)
		}
	}

	if len(matches) > MaxSymbolMatches {
		matches = matches[:MaxSymbolMatches]
	}
	return matches
}
