package releasemodule

// Territories is the fixed list of distribution territories. An empty
// territory selection on a release means "all".
var Territories = []string{
	"Afghanistan", "Albania", "Algeria", "Andorra", "Angola",
	"Antigua and Barbuda", "Argentina", "Armenia", "Australia", "Austria",
	"Azerbaijan", "Bahamas", "Bahrain", "Bangladesh", "Barbados",
	"Belarus", "Belgium", "Belize", "Benin", "Bhutan",
	"Bolivia", "Bosnia and Herzegovina", "Botswana", "Brazil", "Brunei",
	"Bulgaria", "Burkina Faso", "Burundi", "Cabo Verde", "Cambodia",
	"Cameroon", "Canada", "Central African Republic", "Chad", "Chile",
	"China", "Colombia", "Comoros", "Congo", "Costa Rica",
	"Croatia", "Cuba", "Cyprus", "Czechia", "Denmark",
	"Djibouti", "Dominica", "Dominican Republic", "DR Congo", "Ecuador",
	"Egypt", "El Salvador", "Equatorial Guinea", "Eritrea", "Estonia",
	"Eswatini", "Ethiopia", "Fiji", "Finland", "France",
	"Gabon", "Gambia", "Georgia", "Germany", "Ghana",
	"Greece", "Grenada", "Guatemala", "Guinea", "Guinea-Bissau",
	"Guyana", "Haiti", "Honduras", "Hungary", "Iceland",
	"India", "Indonesia", "Iran", "Iraq", "Ireland",
	"Israel", "Italy", "Ivory Coast", "Jamaica", "Japan",
	"Jordan", "Kazakhstan", "Kenya", "Kiribati", "Kosovo",
	"Kuwait", "Kyrgyzstan", "Laos", "Latvia", "Lebanon",
	"Lesotho", "Liberia", "Libya", "Liechtenstein", "Lithuania",
	"Luxembourg", "Madagascar", "Malawi", "Malaysia", "Maldives",
	"Mali", "Malta", "Marshall Islands", "Mauritania", "Mauritius",
	"Mexico", "Micronesia", "Moldova", "Monaco", "Mongolia",
	"Montenegro", "Morocco", "Mozambique", "Myanmar", "Namibia",
	"Nauru", "Nepal", "Netherlands", "New Zealand", "Nicaragua",
	"Niger", "Nigeria", "North Korea", "North Macedonia", "Norway",
	"Oman", "Pakistan", "Palau", "Palestine", "Panama",
	"Papua New Guinea", "Paraguay", "Peru", "Philippines", "Poland",
	"Portugal", "Qatar", "Romania", "Russia", "Rwanda",
	"Saint Kitts and Nevis", "Saint Lucia", "Saint Vincent and the Grenadines",
	"Samoa", "San Marino", "Sao Tome and Principe", "Saudi Arabia",
	"Senegal", "Serbia", "Seychelles", "Sierra Leone", "Singapore",
	"Slovakia", "Slovenia", "Solomon Islands", "Somalia", "South Africa",
	"South Korea", "South Sudan", "Spain", "Sri Lanka", "Sudan",
	"Suriname", "Sweden", "Switzerland", "Syria", "Taiwan",
	"Tajikistan", "Tanzania", "Thailand", "Timor-Leste", "Togo",
	"Tonga", "Trinidad and Tobago", "Tunisia", "Turkey", "Turkmenistan",
	"Tuvalu", "Uganda", "Ukraine", "United Arab Emirates", "United Kingdom",
	"United States", "Uruguay", "Uzbekistan", "Vanuatu", "Vatican City",
	"Venezuela", "Vietnam", "Yemen", "Zambia", "Zimbabwe",
}

// StreamingServices is the fixed list of delivery targets. An empty service
// selection on a release means "all".
var StreamingServices = []string{
	"7digital", "Amazon Music", "Anghami", "Apple Music", "Audiomack",
	"AWA", "Beatport", "Boomplay", "Deezer", "Facebook/Instagram",
	"Gracenote", "iHeartRadio", "iTunes", "JioSaavn", "Joox",
	"KKBox", "Kuack", "LINE Music", "Melon", "Napster",
	"NetEase Cloud Music", "Pandora", "Peloton", "Qobuz", "Shazam",
	"SoundCloud", "Spotify", "Tencent", "Tidal", "TikTok",
	"TouchTunes", "YouTube Music",
}

var (
	territorySet = make(map[string]struct{}, len(Territories))
	serviceSet   = make(map[string]struct{}, len(StreamingServices))
)

func init() {
	for _, t := range Territories {
		territorySet[t] = struct{}{}
	}
	for _, s := range StreamingServices {
		serviceSet[s] = struct{}{}
	}
}

// ValidTerritory reports whether the name is in the territory catalog.
func ValidTerritory(name string) bool {
	_, ok := territorySet[name]
	return ok
}

// ValidService reports whether the name is in the service catalog.
func ValidService(name string) bool {
	_, ok := serviceSet[name]
	return ok
}
