package ingest

// niftyTickers is the NIFTY 100 universe, roughly ordered by market cap.
var niftyTickers = []string{
	"RELIANCE.NS", "TCS.NS", "HDFCBANK.NS", "ICICIBANK.NS", "INFY.NS", "BHARTIARTL.NS", "ITC.NS", "SBIN.NS", "LICI.NS", "HINDUNILVR.NS",
	"KOTAKBANK.NS", "LT.NS", "AXISBANK.NS", "HCLTECH.NS", "BAJFINANCE.NS", "ADANIENT.NS", "SUNPHARMA.NS", "MARUTE.NS", "TITAN.NS", "TATAMOTORS.NS",
	"ULTRACEMCO.NS", "ASIANPAINT.NS", "NTPC.NS", "BAJAJFINSV.NS", "POWERGRID.NS", "ONGC.NS", "M&M.NS", "TATASTEEL.NS", "ADANIGREEN.NS", "JSWSTEEL.NS",
	"COALINDIA.NS", "LTIM.NS", "SIEMENS.NS", "ADANIPORTS.NS", "PIDILITIND.NS", "SBILIFE.NS", "GRASIM.NS", "DMART.NS", "BEL.NS", "BAJAJ-AUTO.NS",
	"IOC.NS", "VBL.NS", "TECHM.NS", "DLF.NS", "HDFCLIFE.NS", "HINDALCO.NS", "BRITANNIA.NS", "INDIGO.NS", "HAL.NS", "GODREJCP.NS",
	"EICHERMOT.NS", "DIVISLAB.NS", "AMBUJACEM.NS", "CIPLA.NS", "TRENT.NS", "BPCL.NS", "DRREDDY.NS", "GAIL.NS", "TATAPOWER.NS", "ABB.NS",
	"VEDL.NS", "BANKBARODA.NS", "HAVELLS.NS", "TVSMOTOR.NS", "ADANIENSOL.NS", "HEROMOTOCO.NS", "INDUSINDBK.NS", "SHREECEM.NS", "MANKIND.NS", "JIOFIN.NS",
	"CHOLAFIN.NS", "ZYDUSLIFE.NS", "PNB.NS", "CANBK.NS", "UNITDSPR.NS", "MOTHERSON.NS", "NAUKRI.NS", "POLYCAB.NS", "LUPIN.NS", "TORNTPHARM.NS",
	"JSWENERGY.NS", "IRFC.NS", "ICICIPRULI.NS", "SBICARD.NS", "CUMMINSIND.NS", "MARICO.NS", "JINDALSTEL.NS", "BOSCHLTD.NS", "SRF.NS", "BERGEPAINT.NS",
	"COLPAL.NS", "ICICIGI.NS", "TIINDIA.NS", "ALEMBICLTD.NS", "MUTHOOTFIN.NS", "OBEROIRLTY.NS", "ALKEM.NS", "PIIND.NS", "PATANJALI.NS", "UNIONBANK.NS",
}

// Universe returns a window of the built-in ticker universe. A limit of
// zero means all tickers from offset onward. Out-of-range windows
// return an empty slice.
func Universe(limit, offset int) []string {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(niftyTickers) {
		return nil
	}

	rest := niftyTickers[offset:]
	if limit > 0 && limit < len(rest) {
		rest = rest[:limit]
	}

	out := make([]string, len(rest))
	copy(out, rest)
	return out
}
