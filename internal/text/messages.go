package text

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message/catalog"

	"github.com/DaanHessen/lifeline/internal/engine"
)

// Message keys are the English format strings.
const (
	msgHeader      = "%s, age %d"
	msgYear        = "Year %d"
	msgPhase       = "Phase: %s"
	msgStats       = "Stats"
	msgChoices     = "Choices"
	msgQuietYear   = "Nothing happens this year."
	msgYouChose    = "You chose: %s"
	msgNoChange    = "No change."
	msgOutlook     = "Well-being: %d | Life expectancy: %d"
	msgDied        = "%s died at the age of %d."
	msgCauseHealth = "Cause: poor health"
	msgCauseAge    = "Cause: old age"
	msgScore       = "Final score: %d"
	msgLocked      = "(not available)"
	msgChance      = "%d%% chance"
)

var turkish = map[string]string{
	msgHeader:      "%s, %d yaşında",
	msgYear:        "%d. yıl",
	msgPhase:       "Dönem: %s",
	msgStats:       "Özellikler",
	msgChoices:     "Seçenekler",
	msgQuietYear:   "Bu yıl sakin geçiyor.",
	msgYouChose:    "Seçimin: %s",
	msgNoChange:    "Değişiklik yok.",
	msgOutlook:     "İyi oluş: %d | Beklenen ömür: %d",
	msgDied:        "%s %d yaşında öldü.",
	msgCauseHealth: "Sebep: kötü sağlık",
	msgCauseAge:    "Sebep: yaşlılık",
	msgScore:       "Son puan: %d",
	msgLocked:      "(kullanılamaz)",
	msgChance:      "%%%d şans",

	"Health":       "Sağlık",
	"Happiness":    "Mutluluk",
	"Intelligence": "Zeka",
	"Wealth":       "Servet",
	"Social":       "Sosyallik",

	"Childhood":   "Çocukluk",
	"Adolescence": "Ergenlik",
	"Young adult": "Genç yetişkinlik",
	"Adult":       "Yetişkinlik",
	"Middle age":  "Orta yaş",
	"Senior":      "Yaşlılık",
}

var statLabels = map[engine.StatKey]string{
	engine.StatHealth:       "Health",
	engine.StatHappiness:    "Happiness",
	engine.StatIntelligence: "Intelligence",
	engine.StatWealth:       "Wealth",
	engine.StatSocial:       "Social",
}

var phaseLabels = map[engine.LifePhase]string{
	engine.PhaseChildhood:   "Childhood",
	engine.PhaseAdolescence: "Adolescence",
	engine.PhaseYoungAdult:  "Young adult",
	engine.PhaseAdult:       "Adult",
	engine.PhaseMiddleAge:   "Middle age",
	engine.PhaseSenior:      "Senior",
}

// newCatalog builds the message catalog. English messages are their own keys.
func newCatalog() (*catalog.Builder, error) {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for key, msg := range turkish {
		if err := b.SetString(language.English, key, key); err != nil {
			return nil, err
		}
		if err := b.SetString(language.Turkish, key, msg); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// Tag maps a game language onto a BCP 47 tag.
func Tag(l engine.Language) language.Tag {
	if l == engine.LanguageTurkish {
		return language.Turkish
	}
	return language.English
}
