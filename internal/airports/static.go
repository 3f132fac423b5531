package airports

import (
	"context"
	"strings"
)

// Static answers from a built-in table of major airports. It backs up the
// remote source so the common routes work without any API key.
type Static struct{}

func (Static) Airport(_ context.Context, iata string) (*Airport, error) {
	apt, ok := staticTable[strings.ToUpper(strings.TrimSpace(iata))]
	if !ok {
		return nil, nil
	}
	return &apt, nil
}

var staticTable = map[string]Airport{
	"LHR": {"LHR", "London Heathrow", "London", 51.477, -0.461},
	"JFK": {"JFK", "J.F. Kennedy Intl", "New York", 40.641, -73.778},
	"LAX": {"LAX", "Los Angeles Intl", "Los Angeles", 33.942, -118.408},
	"SFO": {"SFO", "San Francisco Intl", "San Francisco", 37.619, -122.374},
	"EWR": {"EWR", "Newark Liberty Intl", "Newark", 40.689, -74.174},
	"SYD": {"SYD", "Sydney Airport", "Sydney", -33.946, 151.177},
	"DXB": {"DXB", "Dubai International", "Dubai", 25.253, 55.365},
	"ORD": {"ORD", "Chicago O'Hare Intl", "Chicago", 41.974, -87.907},
	"ATL": {"ATL", "Hartsfield-Jackson Atlanta Intl", "Atlanta", 33.640, -84.427},
	"DFW": {"DFW", "Dallas/Fort Worth Intl", "Dallas", 32.897, -97.038},
	"DEN": {"DEN", "Denver Intl", "Denver", 39.862, -104.673},
	"SEA": {"SEA", "Seattle-Tacoma Intl", "Seattle", 47.450, -122.309},
	"MIA": {"MIA", "Miami Intl", "Miami", 25.795, -80.287},
	"BOS": {"BOS", "Boston Logan Intl", "Boston", 42.366, -71.010},
	"IAD": {"IAD", "Washington Dulles Intl", "Washington", 38.953, -77.447},
	"CDG": {"CDG", "Paris Charles de Gaulle", "Paris", 49.010, 2.548},
	"FRA": {"FRA", "Frankfurt Airport", "Frankfurt", 50.037, 8.562},
	"AMS": {"AMS", "Amsterdam Schiphol", "Amsterdam", 52.310, 4.768},
	"MAD": {"MAD", "Madrid-Barajas", "Madrid", 40.472, -3.561},
	"FCO": {"FCO", "Rome Fiumicino", "Rome", 41.800, 12.239},
	"ZRH": {"ZRH", "Zurich Airport", "Zurich", 47.458, 8.548},
	"IST": {"IST", "Istanbul Airport", "Istanbul", 41.275, 28.752},
	"SIN": {"SIN", "Singapore Changi", "Singapore", 1.359, 103.989},
	"HKG": {"HKG", "Hong Kong Intl", "Hong Kong", 22.308, 113.918},
	"NRT": {"NRT", "Tokyo Narita", "Tokyo", 35.765, 140.386},
	"HND": {"HND", "Tokyo Haneda", "Tokyo", 35.549, 139.780},
	"ICN": {"ICN", "Seoul Incheon Intl", "Seoul", 37.469, 126.451},
	"PEK": {"PEK", "Beijing Capital Intl", "Beijing", 40.080, 116.585},
	"PVG": {"PVG", "Shanghai Pudong Intl", "Shanghai", 31.144, 121.808},
	"YYZ": {"YYZ", "Toronto Pearson Intl", "Toronto", 43.677, -79.625},
	"YVR": {"YVR", "Vancouver Intl", "Vancouver", 49.194, -123.184},
	"GRU": {"GRU", "Sao Paulo-Guarulhos Intl", "Sao Paulo", -23.436, -46.473},
	"MEX": {"MEX", "Mexico City Intl", "Mexico City", 19.436, -99.072},
	"MEL": {"MEL", "Melbourne Airport", "Melbourne", -37.673, 144.843},
	"DOH": {"DOH", "Hamad Intl", "Doha", 25.273, 51.608},
}
