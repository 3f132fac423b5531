// Package airlines holds the static airline code tables: ICAO operator code
// to display name, and IATA designator prefix to the ICAO operator code used
// in transponder callsigns.
package airlines

import "strings"

// operatorNames maps ICAO operator codes to display names.
var operatorNames = map[string]string{
	"UAL": "United Airlines", "AAL": "American Airlines", "DAL": "Delta Air Lines",
	"SWA": "Southwest Airlines", "JBU": "JetBlue Airways", "ASA": "Alaska Airlines",
	"NKS": "Spirit Airlines", "FFT": "Frontier Airlines", "HAL": "Hawaiian Airlines",
	"BAW": "British Airways", "DLH": "Lufthansa", "AFR": "Air France", "KLM": "KLM",
	"UAE": "Emirates", "QTR": "Qatar Airways", "SIA": "Singapore Airlines",
	"CPA": "Cathay Pacific", "JAL": "Japan Airlines", "ANA": "All Nippon Airways",
	"KAL": "Korean Air", "QFA": "Qantas", "ANZ": "Air New Zealand", "THY": "Turkish Airlines",
	"ACA": "Air Canada", "WJA": "WestJet", "IBE": "Iberia", "RYR": "Ryanair",
	"EZY": "easyJet", "TAP": "TAP Air Portugal", "AAY": "Allegiant Air",
}

// transponderPrefixes maps IATA airline designators to the ICAO operator
// code aircraft squawk in their callsigns.
var transponderPrefixes = map[string]string{
	"UA": "UAL", "AA": "AAL", "DL": "DAL",
	"WN": "SWA", "B6": "JBU", "AS": "ASA",
	"NK": "NKS", "F9": "FFT", "HA": "HAL",
	"BA": "BAW", "LH": "DLH", "AF": "AFR", "KL": "KLM",
	"EK": "UAE", "QR": "QTR", "SQ": "SIA",
	"CX": "CPA", "JL": "JAL", "NH": "ANA",
	"KE": "KAL", "QF": "QFA", "NZ": "ANZ", "TK": "THY",
	"AC": "ACA", "WS": "WJA", "IB": "IBE", "FR": "RYR",
	"U2": "EZY", "TP": "TAP", "G4": "AAY",
}

// OperatorName returns the display name for an ICAO operator code.
func OperatorName(icao string) (string, bool) {
	name, ok := operatorNames[strings.ToUpper(icao)]
	return name, ok
}

// TransponderPrefix returns the ICAO callsign prefix for an IATA airline
// designator.
func TransponderPrefix(iata string) (string, bool) {
	prefix, ok := transponderPrefixes[strings.ToUpper(iata)]
	return prefix, ok
}

// SplitDesignator splits a normalized flight designator ("UA1", "BA178")
// into the two-character IATA airline code and the numeric suffix. Returns
// ok=false when the designator is too short to carry both parts.
func SplitDesignator(ident string) (airline, number string, ok bool) {
	ident = strings.ToUpper(strings.TrimSpace(ident))
	if len(ident) < 3 {
		return "", "", false
	}
	return ident[:2], ident[2:], true
}

// FormatDesignator renders a designator for display ("UA1" -> "UA 1").
// Unsplittable inputs pass through unchanged.
func FormatDesignator(ident string) string {
	airline, number, ok := SplitDesignator(ident)
	if !ok {
		return ident
	}
	return airline + " " + number
}

// callsignWidth is the tracker's callsign field width; expected callsigns
// are trimmed to it before prefix matching.
const callsignWidth = 8

// ExpectedCallsign builds the transponder callsign a flight designator
// should broadcast: ICAO operator prefix plus the numeric suffix, upper
// case, trimmed to the tracker field width. Returns "" when the airline
// has no known prefix.
func ExpectedCallsign(ident string) string {
	airline, number, ok := SplitDesignator(ident)
	if !ok {
		return ""
	}
	prefix, ok := TransponderPrefix(airline)
	if !ok {
		return ""
	}
	callsign := prefix + number
	if len(callsign) > callsignWidth {
		callsign = callsign[:callsignWidth]
	}
	return callsign
}
