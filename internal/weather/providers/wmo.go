package providers

// WMO weather interpretation codes as used by Open-Meteo.
var wmoDescriptions = map[string]map[int]string{
	"ru": {
		0:  "ясно",
		1:  "преимущественно ясно",
		2:  "переменная облачность",
		3:  "пасмурно",
		45: "туман",
		48: "туман с изморозью",
		51: "лёгкая морось",
		53: "морось",
		55: "сильная морось",
		56: "ледяная морось",
		57: "сильная ледяная морось",
		61: "небольшой дождь",
		63: "дождь",
		65: "сильный дождь",
		66: "ледяной дождь",
		67: "сильный ледяной дождь",
		71: "небольшой снег",
		73: "снег",
		75: "сильный снег",
		77: "снежная крупа",
		80: "небольшой ливень",
		81: "ливень",
		82: "сильный ливень",
		85: "слабый снегопад",
		86: "снегопад",
		95: "гроза",
		96: "гроза с градом",
		99: "сильная гроза с градом",
	},
	"en": {
		0:  "clear sky",
		1:  "mainly clear",
		2:  "partly cloudy",
		3:  "overcast",
		45: "fog",
		48: "depositing rime fog",
		51: "light drizzle",
		53: "drizzle",
		55: "dense drizzle",
		56: "freezing drizzle",
		57: "dense freezing drizzle",
		61: "slight rain",
		63: "rain",
		65: "heavy rain",
		66: "freezing rain",
		67: "heavy freezing rain",
		71: "slight snow",
		73: "snow",
		75: "heavy snow",
		77: "snow grains",
		80: "slight rain showers",
		81: "rain showers",
		82: "violent rain showers",
		85: "slight snow showers",
		86: "heavy snow showers",
		95: "thunderstorm",
		96: "thunderstorm with hail",
		99: "thunderstorm with heavy hail",
	},
}

var wmoUnknown = map[string]string{
	"ru": "неизвестно",
	"en": "unknown",
}

// DescribeWMOCode maps a WMO weather code to a description in lang ("ru" or
// "en"); other languages fall back to English.
func DescribeWMOCode(code int, lang string) string {
	table, ok := wmoDescriptions[lang]
	if !ok {
		lang = "en"
		table = wmoDescriptions[lang]
	}
	if desc, ok := table[code]; ok {
		return desc
	}
	return wmoUnknown[lang]
}
