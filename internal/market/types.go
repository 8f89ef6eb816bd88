package market

// Wire schema of the price-aggregation API. Numeric prices arrive as
// strings; windowed metrics arrive as nested objects. Absent fields
// decode to zero values and are normalized downstream.

type pairsResponse struct {
	SchemaVersion string `json:"schemaVersion"`
	Pairs         []pair `json:"pairs"`
}

type pair struct {
	ChainID     string      `json:"chainId"`
	DexID       string      `json:"dexId"`
	PairAddress string      `json:"pairAddress"`
	BaseToken   token       `json:"baseToken"`
	QuoteToken  token       `json:"quoteToken"`
	PriceNative string      `json:"priceNative"`
	PriceUSD    string      `json:"priceUsd"`
	Txns        txns        `json:"txns"`
	Volume      volume      `json:"volume"`
	PriceChange priceChange `json:"priceChange"`
	Liquidity   liquidity   `json:"liquidity"`
}

type token struct {
	Address string `json:"address"`
	Name    string `json:"name"`
	Symbol  string `json:"symbol"`
}

type txns struct {
	H1  buysSells `json:"h1"`
	H24 buysSells `json:"h24"`
}

type buysSells struct {
	Buys  int `json:"buys"`
	Sells int `json:"sells"`
}

type volume struct {
	H24 float64 `json:"h24"`
	H6  float64 `json:"h6"`
	H1  float64 `json:"h1"`
}

type priceChange struct {
	H1  float64 `json:"h1"`
	H6  float64 `json:"h6"`
	H24 float64 `json:"h24"`
}

type liquidity struct {
	USD   float64 `json:"usd"`
	Base  float64 `json:"base"`
	Quote float64 `json:"quote"`
}
