package airports

var builtin = []Airport{
	// Czech Republic
	{ICAO: "LKPR", IATA: "PRG", Name: "Prague Václav Havel Airport", Latitude: 50.1008, Longitude: 14.26, Country: "CZ"},
	{ICAO: "LKTB", IATA: "BRQ", Name: "Brno-Tuřany Airport", Latitude: 49.1513, Longitude: 16.6944, Country: "CZ"},
	{ICAO: "LKMT", IATA: "OSR", Name: "Ostrava Leoš Janáček Airport", Latitude: 49.6963, Longitude: 18.1111, Country: "CZ"},
	{ICAO: "LKCV", Name: "Čáslav Air Base", Latitude: 49.9394, Longitude: 15.3819, Country: "CZ"},
	{ICAO: "LKKV", IATA: "KLV", Name: "Karlovy Vary Airport", Latitude: 50.2029, Longitude: 12.9149, Country: "CZ"},
	{ICAO: "LKPD", IATA: "PED", Name: "Pardubice Airport", Latitude: 50.0134, Longitude: 15.7386, Country: "CZ"},

	// Europe
	{ICAO: "EGLL", IATA: "LHR", Name: "London Heathrow Airport", Latitude: 51.4775, Longitude: -0.4614, Country: "GB"},
	{ICAO: "EGKK", IATA: "LGW", Name: "London Gatwick Airport", Latitude: 51.1481, Longitude: -0.1903, Country: "GB"},
	{ICAO: "LFPG", IATA: "CDG", Name: "Paris Charles de Gaulle Airport", Latitude: 49.0097, Longitude: 2.5479, Country: "FR"},
	{ICAO: "LFPO", IATA: "ORY", Name: "Paris Orly Airport", Latitude: 48.7262, Longitude: 2.3652, Country: "FR"},
	{ICAO: "EDDF", IATA: "FRA", Name: "Frankfurt Airport", Latitude: 50.0379, Longitude: 8.5622, Country: "DE"},
	{ICAO: "EDDL", IATA: "DUS", Name: "Düsseldorf Airport", Latitude: 51.2895, Longitude: 6.7668, Country: "DE"},
	{ICAO: "EDDB", IATA: "BER", Name: "Berlin Brandenburg Airport", Latitude: 52.3667, Longitude: 13.5033, Country: "DE"},
	{ICAO: "EHAM", IATA: "AMS", Name: "Amsterdam Schiphol Airport", Latitude: 52.3086, Longitude: 4.7639, Country: "NL"},
	{ICAO: "LEMD", IATA: "MAD", Name: "Madrid Barajas Airport", Latitude: 40.4983, Longitude: -3.5676, Country: "ES"},
	{ICAO: "LIRF", IATA: "FCO", Name: "Rome Fiumicino Airport", Latitude: 41.8045, Longitude: 12.2508, Country: "IT"},
	{ICAO: "EDDM", IATA: "MUC", Name: "Munich Airport", Latitude: 48.3538, Longitude: 11.7861, Country: "DE"},
	{ICAO: "LOWW", IATA: "VIE", Name: "Vienna International Airport", Latitude: 48.1103, Longitude: 16.5697, Country: "AT"},
	{ICAO: "LSZH", IATA: "ZRH", Name: "Zurich Airport", Latitude: 47.4647, Longitude: 8.5492, Country: "CH"},
	{ICAO: "EKCH", IATA: "CPH", Name: "Copenhagen Airport", Latitude: 55.6180, Longitude: 12.6508, Country: "DK"},
	{ICAO: "ESSA", IATA: "ARN", Name: "Stockholm Arlanda Airport", Latitude: 59.6498, Longitude: 17.9237, Country: "SE"},
	{ICAO: "LEBL", IATA: "BCN", Name: "Barcelona El Prat Airport", Latitude: 41.2971, Longitude: 2.0785, Country: "ES"},
	{ICAO: "EPWA", IATA: "WAW", Name: "Warsaw Chopin Airport", Latitude: 52.1657, Longitude: 20.9671, Country: "PL"},
	{ICAO: "LHBP", IATA: "BUD", Name: "Budapest Ferenc Liszt International Airport", Latitude: 47.4298, Longitude: 19.2611, Country: "HU"},
	{ICAO: "LSGG", IATA: "GVA", Name: "Geneva Airport", Latitude: 46.2380, Longitude: 6.1089, Country: "CH"},
	{ICAO: "ENGM", IATA: "OSL", Name: "Oslo Gardermoen Airport", Latitude: 60.1976, Longitude: 11.0984, Country: "NO"},
	{ICAO: "EFHK", IATA: "HEL", Name: "Helsinki Airport", Latitude: 60.3183, Longitude: 24.9630, Country: "FI"},
	{ICAO: "EIDW", IATA: "DUB", Name: "Dublin Airport", Latitude: 53.4264, Longitude: -6.2499, Country: "IE"},
	{ICAO: "LPPT", IATA: "LIS", Name: "Lisbon Airport", Latitude: 38.7756, Longitude: -9.1354, Country: "PT"},
	{ICAO: "LGAV", IATA: "ATH", Name: "Athens International Airport", Latitude: 37.9364, Longitude: 23.9445, Country: "GR"},

	// North America
	{ICAO: "KJFK", IATA: "JFK", Name: "John F. Kennedy International Airport", Latitude: 40.6413, Longitude: -73.7781, Country: "US"},
	{ICAO: "KLAX", IATA: "LAX", Name: "Los Angeles International Airport", Latitude: 33.9416, Longitude: -118.4085, Country: "US"},
	{ICAO: "KORD", IATA: "ORD", Name: "O'Hare International Airport", Latitude: 41.9742, Longitude: -87.9073, Country: "US"},
	{ICAO: "KATL", IATA: "ATL", Name: "Hartsfield-Jackson Atlanta International Airport", Latitude: 33.6407, Longitude: -84.4277, Country: "US"},
	{ICAO: "KSFO", IATA: "SFO", Name: "San Francisco International Airport", Latitude: 37.6213, Longitude: -122.3790, Country: "US"},
	{ICAO: "KDFW", IATA: "DFW", Name: "Dallas/Fort Worth International Airport", Latitude: 32.8998, Longitude: -97.0403, Country: "US"},
	{ICAO: "KMIA", IATA: "MIA", Name: "Miami International Airport", Latitude: 25.7932, Longitude: -80.2906, Country: "US"},
	{ICAO: "KLAS", IATA: "LAS", Name: "Harry Reid International Airport", Latitude: 36.0840, Longitude: -115.1537, Country: "US"},
	{ICAO: "CYYZ", IATA: "YYZ", Name: "Toronto Pearson International Airport", Latitude: 43.6777, Longitude: -79.6248, Country: "CA"},
	{ICAO: "CYVR", IATA: "YVR", Name: "Vancouver International Airport", Latitude: 49.1967, Longitude: -123.1815, Country: "CA"},
	{ICAO: "MMMX", IATA: "MEX", Name: "Mexico City International Airport", Latitude: 19.4363, Longitude: -99.0721, Country: "MX"},

	// Asia and Middle East
	{ICAO: "RJAA", IATA: "NRT", Name: "Narita International Airport", Latitude: 35.7647, Longitude: 140.3864, Country: "JP"},
	{ICAO: "RJTT", IATA: "HND", Name: "Tokyo Haneda Airport", Latitude: 35.5494, Longitude: 139.7798, Country: "JP"},
	{ICAO: "RKSI", IATA: "ICN", Name: "Incheon International Airport", Latitude: 37.4602, Longitude: 126.4407, Country: "KR"},
	{ICAO: "VHHH", IATA: "HKG", Name: "Hong Kong International Airport", Latitude: 22.3080, Longitude: 113.9185, Country: "HK"},
	{ICAO: "ZBAA", IATA: "PEK", Name: "Beijing Capital International Airport", Latitude: 40.0799, Longitude: 116.6031, Country: "CN"},
	{ICAO: "ZSPD", IATA: "PVG", Name: "Shanghai Pudong International Airport", Latitude: 31.1443, Longitude: 121.8083, Country: "CN"},
	{ICAO: "WSSS", IATA: "SIN", Name: "Singapore Changi Airport", Latitude: 1.3644, Longitude: 103.9915, Country: "SG"},
	{ICAO: "VTBS", IATA: "BKK", Name: "Suvarnabhumi Airport", Latitude: 13.6900, Longitude: 100.7501, Country: "TH"},
	{ICAO: "VIDP", IATA: "DEL", Name: "Indira Gandhi International Airport", Latitude: 28.5562, Longitude: 77.1000, Country: "IN"},
	{ICAO: "VABB", IATA: "BOM", Name: "Chhatrapati Shivaji Maharaj International Airport", Latitude: 19.0896, Longitude: 72.8656, Country: "IN"},
	{ICAO: "OMDB", IATA: "DXB", Name: "Dubai International Airport", Latitude: 25.2528, Longitude: 55.3644, Country: "AE"},
	{ICAO: "OEJN", IATA: "JED", Name: "King Abdulaziz International Airport", Latitude: 21.6790, Longitude: 39.1225, Country: "SA"},
	{ICAO: "RKPC", IATA: "CJU", Name: "Jeju International Airport", Latitude: 33.5113, Longitude: 126.4930, Country: "KR"},

	// Oceania
	{ICAO: "YSSY", IATA: "SYD", Name: "Sydney Kingsford Smith Airport", Latitude: -33.9399, Longitude: 151.1753, Country: "AU"},
	{ICAO: "YMML", IATA: "MEL", Name: "Melbourne Airport", Latitude: -37.6690, Longitude: 144.8410, Country: "AU"},
	{ICAO: "YBBN", IATA: "BNE", Name: "Brisbane Airport", Latitude: -27.3842, Longitude: 153.1175, Country: "AU"},
	{ICAO: "NZAA", IATA: "AKL", Name: "Auckland Airport", Latitude: -37.0082, Longitude: 174.7850, Country: "NZ"},

	// South America
	{ICAO: "SBGR", IATA: "GRU", Name: "São Paulo-Guarulhos International Airport", Latitude: -23.4356, Longitude: -46.4731, Country: "BR"},
	{ICAO: "SAEZ", IATA: "EZE", Name: "Ezeiza International Airport", Latitude: -34.8222, Longitude: -58.5358, Country: "AR"},
	{ICAO: "SCEL", IATA: "SCL", Name: "Santiago International Airport", Latitude: -33.3898, Longitude: -70.7947, Country: "CL"},
	{ICAO: "SKBO", IATA: "BOG", Name: "El Dorado International Airport", Latitude: 4.7016, Longitude: -74.1469, Country: "CO"},

	// Africa
	{ICAO: "FACT", IATA: "CPT", Name: "Cape Town International Airport", Latitude: -33.9649, Longitude: 18.6027, Country: "ZA"},
	{ICAO: "FAJS", IATA: "JNB", Name: "O.R. Tambo International Airport", Latitude: -26.1392, Longitude: 28.2460, Country: "ZA"},
	{ICAO: "HECA", IATA: "CAI", Name: "Cairo International Airport", Latitude: 30.1219, Longitude: 31.4056, Country: "EG"},
	{ICAO: "DNMM", IATA: "LOS", Name: "Murtala Muhammed International Airport", Latitude: 6.5774, Longitude: 3.3215, Country: "NG"},
}
