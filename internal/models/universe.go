package models

// DefaultETFUniverse returns the tracked NSE ETF list. Prices and moving
// averages are filled in at ranking time from live quote data.
func DefaultETFUniverse() []*ETF {
	return []*ETF{
		{Symbol: "NSE:CPSEETF", Name: "CPSE ETF", Sector: "PSU"},
		{Symbol: "NSE:GOLDBEES", Name: "Gold Bees ETF", Sector: "Gold"},
		{Symbol: "NSE:GOLD1", Name: "Gold ETF", Sector: "Gold"},
		{Symbol: "NSE:SETFGOLD", Name: "SBI Gold ETF", Sector: "Gold"},
		{Symbol: "NSE:HNGSNGBEES", Name: "HDFC Gold ETF", Sector: "Gold"},
		{Symbol: "NSE:MAHKTECH", Name: "Mahindra Tech ETF", Sector: "Technology"},
		{Symbol: "NSE:MONQ50", Name: "Motilal Oswal Nifty 50 ETF", Sector: "Nifty 50"},
		{Symbol: "NSE:MON100", Name: "Motilal Oswal Nasdaq 100 ETF", Sector: "International"},
		{Symbol: "NSE:NIF100IETF", Name: "NIFTY 100 ETF", Sector: "Nifty 100"},
		{Symbol: "NSE:LOWVOL1", Name: "Low Volatility ETF", Sector: "Low Vol"},
		{Symbol: "NSE:LOWVOLIETF", Name: "Low Volatility ETF", Sector: "Low Vol"},
		{Symbol: "NSE:MOM30IETF", Name: "Momentum 30 ETF", Sector: "Momentum"},
		{Symbol: "NSE:MOMOMENTUM", Name: "Momentum ETF", Sector: "Momentum"},
		{Symbol: "NSE:NIFTYQLITY", Name: "NIFTY Quality ETF", Sector: "Quality"},
		{Symbol: "NSE:NIFTYIETF", Name: "NIFTY ETF", Sector: "Nifty 50"},
		{Symbol: "NSE:NIFTYBEES", Name: "NIFTY 50 ETF", Sector: "Nifty 50"},
		{Symbol: "NSE:SETFNIF50", Name: "SBI NIFTY 50 ETF", Sector: "Nifty 50"},
		{Symbol: "NSE:EQUAL50ADD", Name: "Equal Weight 50 ETF", Sector: "Equal Weight"},
		{Symbol: "NSE:ALPHA", Name: "Alpha ETF", Sector: "Alpha"},
		{Symbol: "NSE:AUTOBEES", Name: "Auto ETF", Sector: "Auto"},
		{Symbol: "NSE:BANKBEES", Name: "Bank ETF", Sector: "Bank"},
		{Symbol: "NSE:BANKIETF", Name: "Bank ETF", Sector: "Bank"},
		{Symbol: "NSE:SETFNIFBK", Name: "SBI Bank ETF", Sector: "Bank"},
		{Symbol: "NSE:DIVOPPBEES", Name: "Dividend Opportunities ETF", Sector: "Dividend"},
		{Symbol: "NSE:BFSI", Name: "BFSI ETF", Sector: "BFSI"},
		{Symbol: "NSE:FMCGIETF", Name: "FMCG ETF", Sector: "FMCG"},
		{Symbol: "NSE:HEALTHIETF", Name: "Healthcare ETF", Sector: "Healthcare"},
		{Symbol: "NSE:HEALTHY", Name: "Healthcare ETF", Sector: "Healthcare"},
		{Symbol: "NSE:CONSUMBEES", Name: "Consumer ETF", Sector: "Consumer"},
		{Symbol: "NSE:CONSUMIETF", Name: "Consumer ETF", Sector: "Consumer"},
		{Symbol: "NSE:TNIDETF", Name: "Tata NIFTY India Digital ETF", Sector: "Digital"},
		{Symbol: "NSE:MAKEINDIA", Name: "Make in India ETF", Sector: "Manufacturing"},
		{Symbol: "NSE:ITIETF", Name: "IT ETF", Sector: "IT"},
		{Symbol: "NSE:ITBEES", Name: "IT Bees ETF", Sector: "IT"},
		{Symbol: "NSE:IT", Name: "IT ETF", Sector: "IT"},
		{Symbol: "NSE:MOM100", Name: "Momentum 100 ETF", Sector: "Momentum"},
		{Symbol: "NSE:HDFCMID150", Name: "HDFC Midcap 150 ETF", Sector: "Midcap"},
		{Symbol: "NSE:MIDCAPIETF", Name: "Midcap ETF", Sector: "Midcap"},
		{Symbol: "NSE:MID150BEES", Name: "Midcap 150 Bees ETF", Sector: "Midcap"},
		{Symbol: "NSE:MIDQ50ADD", Name: "Midcap Q50 ETF", Sector: "Midcap"},
		{Symbol: "NSE:NEXT50IETF", Name: "Next 50 ETF", Sector: "Next 50"},
		{Symbol: "NSE:JUNIORBEES", Name: "Junior Bees ETF", Sector: "Next 50"},
		{Symbol: "NSE:UTINEXT50", Name: "UTI Next 50 ETF", Sector: "Next 50"},
		{Symbol: "NSE:PHARMABEES", Name: "Pharma Bees ETF", Sector: "Healthcare"},
		{Symbol: "NSE:HDFCPVTBAN", Name: "HDFC Private Bank ETF", Sector: "Bank"},
		{Symbol: "NSE:PSUBANK", Name: "PSU Bank ETF", Sector: "Bank"},
		{Symbol: "NSE:PSUBNKIETF", Name: "PSU Bank ETF", Sector: "Bank"},
		{Symbol: "NSE:PSUBNKBEES", Name: "PSU Bank Bees ETF", Sector: "Bank"},
		{Symbol: "NSE:HDFCSML250", Name: "HDFC Smallcap 250 ETF", Sector: "Smallcap"},
		{Symbol: "NSE:ESG", Name: "ESG ETF", Sector: "ESG"},
		{Symbol: "NSE:NV20", Name: "NIFTY 50 Value 20 ETF", Sector: "Value"},
		{Symbol: "NSE:NV20IETF", Name: "NIFTY 50 Value 20 ETF", Sector: "Value"},
		{Symbol: "NSE:MAFANG", Name: "NYSE FANG+ ETF", Sector: "International"},
		{Symbol: "NSE:MASPTOP50", Name: "S&P 500 Top 50 ETF", Sector: "International"},
		{Symbol: "NSE:BSE500IETF", Name: "BSE 500 ETF", Sector: "Broad Market"},
		{Symbol: "NSE:MIDSELIETF", Name: "Mid Select ETF", Sector: "Midcap"},
		{Symbol: "NSE:HDFCSILVER", Name: "HDFC Silver ETF", Sector: "Silver"},
		{Symbol: "NSE:SILVERIETF", Name: "Silver ETF", Sector: "Silver"},
		{Symbol: "NSE:SILVERBEES", Name: "Silver Bees ETF", Sector: "Silver"},
	}
}
