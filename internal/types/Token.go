package types

// Token identifies one leg of the pool pair.
type Token struct {
	Symbol   string `json:"symbol"`   // The display symbol (e.g. WETH)
	Decimals int    `json:"decimals"` // On-chain decimal precision of the raw unit
}
