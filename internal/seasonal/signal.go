package seasonal

// SignalFor maps an up-probability to a categorical signal. The mapping is
// total: every probability yields exactly one signal, with BUY at the 0.53
// boundary and SELL at the 0.47 boundary.
func SignalFor(upProbability float64) Signal {
	switch {
	case upProbability >= BuyThreshold:
		return SignalBuy
	case upProbability <= SellThreshold:
		return SignalSell
	default:
		return SignalHold
	}
}
