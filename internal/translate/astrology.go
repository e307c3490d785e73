package translate

import "golang.org/x/text/language"

// NewAstrology returns the built-in Turkish to English astrology dictionary.
func NewAstrology() *Dictionary {
	return NewDictionary(language.Turkish, astrologyTerms)
}

var astrologyTerms = map[string]string{
	// signs
	"koç":      "aries",
	"boğa":     "taurus",
	"ikizler":  "gemini",
	"yengeç":   "cancer",
	"aslan":    "leo",
	"başak":    "virgo",
	"terazi":   "libra",
	"akrep":    "scorpio",
	"yay":      "sagittarius",
	"oğlak":    "capricorn",
	"kova":     "aquarius",
	"balık":    "pisces",
	"balıklar": "pisces",
	"burç":     "sign",
	"burcu":    "sign",
	"burcunun": "sign's",
	"burçlar":  "signs",
	"zodyak":   "zodiac",

	// planets and points
	"güneş":           "sun",
	"ay":              "moon",
	"merkür":          "mercury",
	"venüs":           "venus",
	"mars":            "mars",
	"jüpiter":         "jupiter",
	"satürn":          "saturn",
	"uranüs":          "uranus",
	"neptün":          "neptune",
	"plüton":          "pluto",
	"gezegen":         "planet",
	"gezegenler":      "planets",
	"yükselen":        "ascendant",
	"yükselen burç":   "rising sign",
	"ay düğümü":       "lunar node",
	"kuzey ay düğümü": "north node",
	"güney ay düğümü": "south node",
	"retro":           "retrograde",

	// houses
	"ev":            "house",
	"evler":         "houses",
	"birinci ev":    "first house",
	"ikinci ev":     "second house",
	"üçüncü ev":     "third house",
	"dördüncü ev":   "fourth house",
	"beşinci ev":    "fifth house",
	"altıncı ev":    "sixth house",
	"yedinci ev":    "seventh house",
	"sekizinci ev":  "eighth house",
	"dokuzuncu ev":  "ninth house",
	"onuncu ev":     "tenth house",
	"on birinci ev": "eleventh house",
	"on ikinci ev":  "twelfth house",

	// elements and qualities
	"ateş":     "fire",
	"toprak":   "earth",
	"hava":     "air",
	"su":       "water",
	"öncü":     "cardinal",
	"sabit":    "fixed",
	"değişken": "mutable",
	"element":  "element",

	// aspects and charts
	"açı":            "aspect",
	"kavuşum":        "conjunction",
	"karşıt":         "opposition",
	"kare":           "square",
	"üçgen":          "trine",
	"altmışlık":      "sextile",
	"doğum haritası": "birth chart",
	"harita":         "chart",
	"yönetici":       "ruler",
	"yöneticisi":     "ruler",
	"özellikleri":    "traits",
}
