package catalog

import "sort"

// Continental regions used by the enrichment stage.
const (
	RegionAfrica   = "Africa"
	RegionAmericas = "Americas"
	RegionAsia     = "Asia"
	RegionEurope   = "Europe"
	RegionOceania  = "Oceania"
)

// Entry describes one catalog entity: its canonical code, its display
// name, the region it belongs to, and the name variants sources are
// known to use for it.
type Entry struct {
	Code    string   `json:"code"`
	Name    string   `json:"name"`
	Region  string   `json:"region"`
	Aliases []string `json:"aliases,omitempty"`
}

// entries is the authoritative catalog. Codes follow ISO 3166-1
// alpha-3; names are the common English short forms; aliases cover the
// variants observed across the ingested sources.
var entries = []Entry{
	{Code: "AFG", Name: "Afghanistan", Region: RegionAsia},
	{Code: "AGO", Name: "Angola", Region: RegionAfrica},
	{Code: "ALB", Name: "Albania", Region: RegionEurope},
	{Code: "AND", Name: "Andorra", Region: RegionEurope},
	{Code: "ARE", Name: "United Arab Emirates", Region: RegionAsia, Aliases: []string{"UAE"}},
	{Code: "ARG", Name: "Argentina", Region: RegionAmericas},
	{Code: "ARM", Name: "Armenia", Region: RegionAsia},
	{Code: "AUS", Name: "Australia", Region: RegionOceania},
	{Code: "AUT", Name: "Austria", Region: RegionEurope},
	{Code: "AZE", Name: "Azerbaijan", Region: RegionAsia},
	{Code: "BDI", Name: "Burundi", Region: RegionAfrica},
	{Code: "BEL", Name: "Belgium", Region: RegionEurope},
	{Code: "BEN", Name: "Benin", Region: RegionAfrica},
	{Code: "BFA", Name: "Burkina Faso", Region: RegionAfrica},
	{Code: "BGD", Name: "Bangladesh", Region: RegionAsia},
	{Code: "BGR", Name: "Bulgaria", Region: RegionEurope},
	{Code: "BHR", Name: "Bahrain", Region: RegionAsia},
	{Code: "BHS", Name: "Bahamas", Region: RegionAmericas, Aliases: []string{"The Bahamas", "Bahamas, The"}},
	{Code: "BIH", Name: "Bosnia and Herzegovina", Region: RegionEurope},
	{Code: "BLR", Name: "Belarus", Region: RegionEurope},
	{Code: "BLZ", Name: "Belize", Region: RegionAmericas},
	{Code: "BOL", Name: "Bolivia", Region: RegionAmericas, Aliases: []string{"Bolivia (Plurinational State of)", "Bolivia, Plurinational State of"}},
	{Code: "BRA", Name: "Brazil", Region: RegionAmericas},
	{Code: "BRB", Name: "Barbados", Region: RegionAmericas},
	{Code: "BRN", Name: "Brunei Darussalam", Region: RegionAsia, Aliases: []string{"Brunei"}},
	{Code: "BTN", Name: "Bhutan", Region: RegionAsia},
	{Code: "BWA", Name: "Botswana", Region: RegionAfrica},
	{Code: "CAF", Name: "Central African Republic", Region: RegionAfrica},
	{Code: "CAN", Name: "Canada", Region: RegionAmericas},
	{Code: "CHE", Name: "Switzerland", Region: RegionEurope},
	{Code: "CHL", Name: "Chile", Region: RegionAmericas},
	{Code: "CHN", Name: "China", Region: RegionAsia, Aliases: []string{"People's Republic of China", "China, People's Republic of"}},
	{Code: "CIV", Name: "Côte d'Ivoire", Region: RegionAfrica, Aliases: []string{"Ivory Coast", "Cote d'Ivoire"}},
	{Code: "CMR", Name: "Cameroon", Region: RegionAfrica},
	{Code: "COD", Name: "Democratic Republic of the Congo", Region: RegionAfrica, Aliases: []string{"DR Congo", "DRC", "Congo, Dem. Rep.", "Congo (Kinshasa)"}},
	{Code: "COG", Name: "Congo", Region: RegionAfrica, Aliases: []string{"Republic of the Congo", "Congo, Rep.", "Congo (Brazzaville)"}},
	{Code: "COL", Name: "Colombia", Region: RegionAmericas},
	{Code: "COM", Name: "Comoros", Region: RegionAfrica},
	{Code: "CPV", Name: "Cabo Verde", Region: RegionAfrica, Aliases: []string{"Cape Verde"}},
	{Code: "CRI", Name: "Costa Rica", Region: RegionAmericas},
	{Code: "CUB", Name: "Cuba", Region: RegionAmericas},
	{Code: "CYP", Name: "Cyprus", Region: RegionEurope},
	{Code: "CZE", Name: "Czechia", Region: RegionEurope, Aliases: []string{"Czech Republic"}},
	{Code: "DEU", Name: "Germany", Region: RegionEurope},
	{Code: "DJI", Name: "Djibouti", Region: RegionAfrica},
	{Code: "DMA", Name: "Dominica", Region: RegionAmericas},
	{Code: "DNK", Name: "Denmark", Region: RegionEurope},
	{Code: "DOM", Name: "Dominican Republic", Region: RegionAmericas},
	{Code: "DZA", Name: "Algeria", Region: RegionAfrica},
	{Code: "ECU", Name: "Ecuador", Region: RegionAmericas},
	{Code: "EGY", Name: "Egypt", Region: RegionAfrica, Aliases: []string{"Egypt, Arab Rep."}},
	{Code: "ERI", Name: "Eritrea", Region: RegionAfrica},
	{Code: "ESP", Name: "Spain", Region: RegionEurope},
	{Code: "EST", Name: "Estonia", Region: RegionEurope},
	{Code: "ETH", Name: "Ethiopia", Region: RegionAfrica},
	{Code: "FIN", Name: "Finland", Region: RegionEurope},
	{Code: "FJI", Name: "Fiji", Region: RegionOceania},
	{Code: "FRA", Name: "France", Region: RegionEurope},
	{Code: "FSM", Name: "Micronesia", Region: RegionOceania, Aliases: []string{"Micronesia (Federated States of)", "Micronesia, Fed. Sts."}},
	{Code: "GAB", Name: "Gabon", Region: RegionAfrica},
	{Code: "GBR", Name: "United Kingdom", Region: RegionEurope, Aliases: []string{"UK", "Great Britain"}},
	{Code: "GEO", Name: "Georgia", Region: RegionAsia},
	{Code: "GHA", Name: "Ghana", Region: RegionAfrica},
	{Code: "GIN", Name: "Guinea", Region: RegionAfrica},
	{Code: "GMB", Name: "Gambia", Region: RegionAfrica, Aliases: []string{"The Gambia", "Gambia, The"}},
	{Code: "GNB", Name: "Guinea-Bissau", Region: RegionAfrica},
	{Code: "GNQ", Name: "Equatorial Guinea", Region: RegionAfrica},
	{Code: "GRC", Name: "Greece", Region: RegionEurope},
	{Code: "GRD", Name: "Grenada", Region: RegionAmericas},
	{Code: "GTM", Name: "Guatemala", Region: RegionAmericas},
	{Code: "GUY", Name: "Guyana", Region: RegionAmericas},
	{Code: "HKG", Name: "Hong Kong", Region: RegionAsia, Aliases: []string{"Hong Kong SAR", "Hong Kong SAR, China", "China, Hong Kong SAR"}},
	{Code: "HND", Name: "Honduras", Region: RegionAmericas},
	{Code: "HRV", Name: "Croatia", Region: RegionEurope},
	{Code: "HTI", Name: "Haiti", Region: RegionAmericas},
	{Code: "HUN", Name: "Hungary", Region: RegionEurope},
	{Code: "IDN", Name: "Indonesia", Region: RegionAsia},
	{Code: "IND", Name: "India", Region: RegionAsia},
	{Code: "IRL", Name: "Ireland", Region: RegionEurope},
	{Code: "IRN", Name: "Iran", Region: RegionAsia, Aliases: []string{"Iran (Islamic Republic of)", "Iran, Islamic Rep."}},
	{Code: "IRQ", Name: "Iraq", Region: RegionAsia},
	{Code: "ISL", Name: "Iceland", Region: RegionEurope},
	{Code: "ISR", Name: "Israel", Region: RegionAsia},
	{Code: "ITA", Name: "Italy", Region: RegionEurope},
	{Code: "JAM", Name: "Jamaica", Region: RegionAmericas},
	{Code: "JOR", Name: "Jordan", Region: RegionAsia},
	{Code: "JPN", Name: "Japan", Region: RegionAsia},
	{Code: "KAZ", Name: "Kazakhstan", Region: RegionAsia},
	{Code: "KEN", Name: "Kenya", Region: RegionAfrica},
	{Code: "KGZ", Name: "Kyrgyzstan", Region: RegionAsia, Aliases: []string{"Kyrgyz Republic"}},
	{Code: "KHM", Name: "Cambodia", Region: RegionAsia},
	{Code: "KIR", Name: "Kiribati", Region: RegionOceania},
	{Code: "KNA", Name: "Saint Kitts and Nevis", Region: RegionAmericas, Aliases: []string{"St. Kitts and Nevis"}},
	{Code: "KOR", Name: "South Korea", Region: RegionAsia, Aliases: []string{"Korea, Republic of", "Korea, Rep.", "Republic of Korea"}},
	{Code: "KWT", Name: "Kuwait", Region: RegionAsia},
	{Code: "LAO", Name: "Laos", Region: RegionAsia, Aliases: []string{"Lao PDR", "Lao People's Democratic Republic"}},
	{Code: "LBN", Name: "Lebanon", Region: RegionAsia},
	{Code: "LBR", Name: "Liberia", Region: RegionAfrica},
	{Code: "LBY", Name: "Libya", Region: RegionAfrica},
	{Code: "LCA", Name: "Saint Lucia", Region: RegionAmericas, Aliases: []string{"St. Lucia"}},
	{Code: "LIE", Name: "Liechtenstein", Region: RegionEurope},
	{Code: "LKA", Name: "Sri Lanka", Region: RegionAsia},
	{Code: "LSO", Name: "Lesotho", Region: RegionAfrica},
	{Code: "LTU", Name: "Lithuania", Region: RegionEurope},
	{Code: "LUX", Name: "Luxembourg", Region: RegionEurope},
	{Code: "LVA", Name: "Latvia", Region: RegionEurope},
	{Code: "MAC", Name: "Macao", Region: RegionAsia, Aliases: []string{"Macau", "Macao SAR, China", "China, Macao SAR"}},
	{Code: "MAR", Name: "Morocco", Region: RegionAfrica},
	{Code: "MCO", Name: "Monaco", Region: RegionEurope},
	{Code: "MDA", Name: "Moldova", Region: RegionEurope, Aliases: []string{"Republic of Moldova"}},
	{Code: "MDG", Name: "Madagascar", Region: RegionAfrica},
	{Code: "MDV", Name: "Maldives", Region: RegionAsia},
	{Code: "MEX", Name: "Mexico", Region: RegionAmericas},
	{Code: "MHL", Name: "Marshall Islands", Region: RegionOceania},
	{Code: "MLI", Name: "Mali", Region: RegionAfrica},
	{Code: "MLT", Name: "Malta", Region: RegionEurope},
	{Code: "MMR", Name: "Myanmar", Region: RegionAsia, Aliases: []string{"Burma"}},
	{Code: "MNE", Name: "Montenegro", Region: RegionEurope},
	{Code: "MNG", Name: "Mongolia", Region: RegionAsia},
	{Code: "MOZ", Name: "Mozambique", Region: RegionAfrica},
	{Code: "MRT", Name: "Mauritania", Region: RegionAfrica},
	{Code: "MUS", Name: "Mauritius", Region: RegionAfrica},
	{Code: "MWI", Name: "Malawi", Region: RegionAfrica},
	{Code: "MYS", Name: "Malaysia", Region: RegionAsia},
	{Code: "NAM", Name: "Namibia", Region: RegionAfrica},
	{Code: "NER", Name: "Niger", Region: RegionAfrica},
	{Code: "NGA", Name: "Nigeria", Region: RegionAfrica},
	{Code: "NIC", Name: "Nicaragua", Region: RegionAmericas},
	{Code: "NLD", Name: "Netherlands", Region: RegionEurope, Aliases: []string{"The Netherlands", "Holland"}},
	{Code: "NOR", Name: "Norway", Region: RegionEurope},
	{Code: "NPL", Name: "Nepal", Region: RegionAsia},
	{Code: "NRU", Name: "Nauru", Region: RegionOceania},
	{Code: "NZL", Name: "New Zealand", Region: RegionOceania},
	{Code: "OMN", Name: "Oman", Region: RegionAsia},
	{Code: "PAK", Name: "Pakistan", Region: RegionAsia},
	{Code: "PAN", Name: "Panama", Region: RegionAmericas},
	{Code: "PER", Name: "Peru", Region: RegionAmericas},
	{Code: "PHL", Name: "Philippines", Region: RegionAsia, Aliases: []string{"The Philippines"}},
	{Code: "PLW", Name: "Palau", Region: RegionOceania},
	{Code: "PNG", Name: "Papua New Guinea", Region: RegionOceania},
	{Code: "POL", Name: "Poland", Region: RegionEurope},
	{Code: "PRK", Name: "North Korea", Region: RegionAsia, Aliases: []string{"Korea, Dem. People's Rep.", "Democratic People's Republic of Korea", "Korea, Democratic People's Republic of"}},
	{Code: "PRT", Name: "Portugal", Region: RegionEurope},
	{Code: "PRY", Name: "Paraguay", Region: RegionAmericas},
	{Code: "PSE", Name: "Palestine", Region: RegionAsia, Aliases: []string{"West Bank and Gaza", "State of Palestine", "Palestine, State of", "Occupied Palestinian Territory"}},
	{Code: "QAT", Name: "Qatar", Region: RegionAsia},
	{Code: "ROU", Name: "Romania", Region: RegionEurope},
	{Code: "RUS", Name: "Russia", Region: RegionEurope, Aliases: []string{"Russian Federation"}},
	{Code: "RWA", Name: "Rwanda", Region: RegionAfrica},
	{Code: "SAU", Name: "Saudi Arabia", Region: RegionAsia},
	{Code: "SDN", Name: "Sudan", Region: RegionAfrica},
	{Code: "SEN", Name: "Senegal", Region: RegionAfrica},
	{Code: "SGP", Name: "Singapore", Region: RegionAsia},
	{Code: "SLB", Name: "Solomon Islands", Region: RegionOceania},
	{Code: "SLE", Name: "Sierra Leone", Region: RegionAfrica},
	{Code: "SLV", Name: "El Salvador", Region: RegionAmericas},
	{Code: "SMR", Name: "San Marino", Region: RegionEurope},
	{Code: "SOM", Name: "Somalia", Region: RegionAfrica},
	{Code: "SRB", Name: "Serbia", Region: RegionEurope},
	{Code: "SSD", Name: "South Sudan", Region: RegionAfrica},
	{Code: "STP", Name: "Sao Tome and Principe", Region: RegionAfrica, Aliases: []string{"São Tomé and Príncipe"}},
	{Code: "SUR", Name: "Suriname", Region: RegionAmericas},
	{Code: "SVK", Name: "Slovakia", Region: RegionEurope, Aliases: []string{"Slovak Republic"}},
	{Code: "SVN", Name: "Slovenia", Region: RegionEurope},
	{Code: "SWE", Name: "Sweden", Region: RegionEurope},
	{Code: "SWZ", Name: "Eswatini", Region: RegionAfrica, Aliases: []string{"Swaziland"}},
	{Code: "SYC", Name: "Seychelles", Region: RegionAfrica},
	{Code: "SYR", Name: "Syria", Region: RegionAsia, Aliases: []string{"Syrian Arab Republic"}},
	{Code: "TCD", Name: "Chad", Region: RegionAfrica},
	{Code: "TGO", Name: "Togo", Region: RegionAfrica},
	{Code: "THA", Name: "Thailand", Region: RegionAsia},
	{Code: "TJK", Name: "Tajikistan", Region: RegionAsia},
	{Code: "TKM", Name: "Turkmenistan", Region: RegionAsia},
	{Code: "TLS", Name: "Timor-Leste", Region: RegionAsia, Aliases: []string{"East Timor"}},
	{Code: "TON", Name: "Tonga", Region: RegionOceania},
	{Code: "TTO", Name: "Trinidad and Tobago", Region: RegionAmericas},
	{Code: "TUN", Name: "Tunisia", Region: RegionAfrica},
	{Code: "TUR", Name: "Turkey", Region: RegionAsia, Aliases: []string{"Türkiye", "Turkiye"}},
	{Code: "TUV", Name: "Tuvalu", Region: RegionOceania},
	{Code: "TWN", Name: "Taiwan", Region: RegionAsia, Aliases: []string{"Chinese Taipei", "Taiwan, China", "Taiwan Province of China"}},
	{Code: "TZA", Name: "Tanzania", Region: RegionAfrica, Aliases: []string{"United Republic of Tanzania"}},
	{Code: "UGA", Name: "Uganda", Region: RegionAfrica},
	{Code: "UKR", Name: "Ukraine", Region: RegionEurope},
	{Code: "URY", Name: "Uruguay", Region: RegionAmericas},
	{Code: "USA", Name: "United States", Region: RegionAmericas, Aliases: []string{"United States of America", "US"}},
	{Code: "UZB", Name: "Uzbekistan", Region: RegionAsia},
	{Code: "VCT", Name: "Saint Vincent and the Grenadines", Region: RegionAmericas, Aliases: []string{"St. Vincent and the Grenadines"}},
	{Code: "VEN", Name: "Venezuela", Region: RegionAmericas, Aliases: []string{"Venezuela (Bolivarian Republic of)", "Venezuela, RB"}},
	{Code: "VNM", Name: "Vietnam", Region: RegionAsia, Aliases: []string{"Viet Nam"}},
	{Code: "VUT", Name: "Vanuatu", Region: RegionOceania},
	{Code: "WSM", Name: "Samoa", Region: RegionOceania},
	{Code: "YEM", Name: "Yemen", Region: RegionAsia, Aliases: []string{"Yemen, Rep."}},
	{Code: "ZAF", Name: "South Africa", Region: RegionAfrica},
	{Code: "ZMB", Name: "Zambia", Region: RegionAfrica},
	{Code: "ZWE", Name: "Zimbabwe", Region: RegionAfrica},
}

// Lookup maps derived from entries, built once at package init.
var (
	byCode     map[string]Entry
	byExact    map[string]Entry
	byNormName map[string]Entry
)

func init() {
	byCode = make(map[string]Entry, len(entries))
	byExact = make(map[string]Entry, len(entries))
	byNormName = make(map[string]Entry, len(entries)*2)

	for _, e := range entries {
		byCode[e.Code] = e
		byExact[foldCase(e.Name)] = e
		byNormName[NormalizeName(e.Name)] = e
		for _, alias := range e.Aliases {
			byExact[foldCase(alias)] = e
			byNormName[NormalizeName(alias)] = e
		}
	}
}

// Lookup returns the catalog entry for a canonical 3-letter code.
func Lookup(code string) (Entry, bool) {
	e, ok := byCode[code]
	return e, ok
}

// RegionOf returns the region of a canonical code. Codes outside the
// catalog (historic or territorial codes some sources carry) resolve
// to an empty region and are still accepted by the pipeline.
func RegionOf(code string) (string, bool) {
	e, ok := byCode[code]
	if !ok {
		return "", false
	}
	return e.Region, true
}

// All returns every catalog entry sorted by code.
func All() []Entry {
	out := make([]Entry, len(entries))
	copy(out, entries)
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// Size returns the number of catalog entries.
func Size() int {
	return len(entries)
}
