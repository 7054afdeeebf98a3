package strategy

// Bias is a strategy's directional or volatility assumption. The set is
// closed: scoring dispatches on it with an exhaustive switch.
type Bias int

const (
	BiasBullish Bias = iota
	BiasBullishRiskOff
	BiasBearish
	BiasBearishIncome
	BiasBullishIncome
	BiasRangeBound
	BiasRangeBoundTight
	BiasVolatilityExpansion
)

func (b Bias) String() string {
	switch b {
	case BiasBullish:
		return "bullish"
	case BiasBullishRiskOff:
		return "bullish_risk_off"
	case BiasBearish:
		return "bearish"
	case BiasBearishIncome:
		return "bearish_income"
	case BiasBullishIncome:
		return "bullish_income"
	case BiasRangeBound:
		return "range_bound"
	case BiasRangeBoundTight:
		return "range_bound_tight"
	case BiasVolatilityExpansion:
		return "volatility_expansion"
	}
	return "unknown"
}

// Leg describes one side of a multi-leg option structure.
type Leg struct {
	Action     string // BUY, SELL or HOLD
	Instrument string // CALL, PUT or STOCK
	Moneyness  string // ITM / ATM / OTM variants, or LONG for stock
	Quantity   int
	Note       string
}

// Definition is a static catalog entry. LongStockPenalty is subtracted
// from the score when the instrument has no long position, for
// structures that only make sense on top of held shares.
type Definition struct {
	Name             string
	RiskProfile      string
	Bias             Bias
	LongStockPenalty float64
	Legs             []Leg
}

// catalog is read-only configuration data; nothing mutates it.
var catalog = []Definition{
	{
		Name:             "Covered Call",
		RiskProfile:      "Moderate",
		Bias:             BiasBullish,
		LongStockPenalty: 50,
		Legs: []Leg{
			{Action: "HOLD", Instrument: "STOCK", Moneyness: "LONG", Quantity: 1, Note: "Existing long equity position"},
			{Action: "SELL", Instrument: "CALL", Moneyness: "OTM", Quantity: 1, Note: "Write 1 OTM call for income"},
		},
	},
	{
		Name:             "Protective Put",
		RiskProfile:      "Moderate",
		Bias:             BiasBullishRiskOff,
		LongStockPenalty: 15,
		Legs: []Leg{
			{Action: "HOLD", Instrument: "STOCK", Moneyness: "LONG", Quantity: 1, Note: "Maintain long equity exposure"},
			{Action: "BUY", Instrument: "PUT", Moneyness: "ATM", Quantity: 1, Note: "Buy ATM put as insurance"},
		},
	},
	{
		Name:        "Bull Call Spread",
		RiskProfile: "Moderate",
		Bias:        BiasBullish,
		Legs: []Leg{
			{Action: "BUY", Instrument: "CALL", Moneyness: "ATM", Quantity: 1, Note: "Buy ATM call"},
			{Action: "SELL", Instrument: "CALL", Moneyness: "OTM", Quantity: 1, Note: "Sell higher strike call"},
		},
	},
	{
		Name:        "Bear Put Spread",
		RiskProfile: "Moderate",
		Bias:        BiasBearish,
		Legs: []Leg{
			{Action: "BUY", Instrument: "PUT", Moneyness: "ATM", Quantity: 1, Note: "Buy ATM put"},
			{Action: "SELL", Instrument: "PUT", Moneyness: "OTM", Quantity: 1, Note: "Sell lower strike put"},
		},
	},
	{
		Name:        "Bull Put Spread",
		RiskProfile: "Moderate",
		Bias:        BiasBullishIncome,
		Legs: []Leg{
			{Action: "SELL", Instrument: "PUT", Moneyness: "OTM", Quantity: 1, Note: "Sell OTM put to collect premium"},
			{Action: "BUY", Instrument: "PUT", Moneyness: "lower_OTM", Quantity: 1, Note: "Buy further OTM put for protection"},
		},
	},
	{
		Name:        "Bear Call Spread",
		RiskProfile: "Moderate",
		Bias:        BiasBearishIncome,
		Legs: []Leg{
			{Action: "SELL", Instrument: "CALL", Moneyness: "OTM", Quantity: 1, Note: "Sell OTM call to collect premium"},
			{Action: "BUY", Instrument: "CALL", Moneyness: "higher_OTM", Quantity: 1, Note: "Buy further OTM call for protection"},
		},
	},
	{
		Name:        "Iron Condor",
		RiskProfile: "Neutral",
		Bias:        BiasRangeBound,
		Legs: []Leg{
			{Action: "SELL", Instrument: "CALL", Moneyness: "OTM", Quantity: 1, Note: "Sell OTM call spread"},
			{Action: "BUY", Instrument: "CALL", Moneyness: "higher_OTM", Quantity: 1, Note: "Buy further OTM call"},
			{Action: "SELL", Instrument: "PUT", Moneyness: "OTM", Quantity: 1, Note: "Sell OTM put spread"},
			{Action: "BUY", Instrument: "PUT", Moneyness: "lower_OTM", Quantity: 1, Note: "Buy further OTM put"},
		},
	},
	{
		Name:        "Iron Butterfly",
		RiskProfile: "Neutral",
		Bias:        BiasRangeBoundTight,
		Legs: []Leg{
			{Action: "SELL", Instrument: "CALL", Moneyness: "ATM", Quantity: 1, Note: "Sell ATM call"},
			{Action: "SELL", Instrument: "PUT", Moneyness: "ATM", Quantity: 1, Note: "Sell ATM put"},
			{Action: "BUY", Instrument: "CALL", Moneyness: "OTM", Quantity: 1, Note: "Buy higher strike call"},
			{Action: "BUY", Instrument: "PUT", Moneyness: "OTM", Quantity: 1, Note: "Buy lower strike put"},
		},
	},
	{
		Name:        "Long Straddle",
		RiskProfile: "Aggressive",
		Bias:        BiasVolatilityExpansion,
		Legs: []Leg{
			{Action: "BUY", Instrument: "CALL", Moneyness: "ATM", Quantity: 1, Note: "Buy ATM call"},
			{Action: "BUY", Instrument: "PUT", Moneyness: "ATM", Quantity: 1, Note: "Buy ATM put"},
		},
	},
	{
		Name:        "Long Strangle",
		RiskProfile: "Aggressive",
		Bias:        BiasVolatilityExpansion,
		Legs: []Leg{
			{Action: "BUY", Instrument: "CALL", Moneyness: "OTM", Quantity: 1, Note: "Buy slightly OTM call"},
			{Action: "BUY", Instrument: "PUT", Moneyness: "OTM", Quantity: 1, Note: "Buy slightly OTM put"},
		},
	},
}

// Catalog returns the fixed strategy catalog in stable order. Callers
// must treat the result as read-only.
func Catalog() []Definition {
	return catalog
}
