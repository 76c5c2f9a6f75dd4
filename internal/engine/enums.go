package engine

// String backed enums for catalog files and save interoperability.

type StatKey string
type LifePhase string
type Rarity string
type Category string
type Difficulty string
type Language string

const (
	StatHealth       StatKey = "health"
	StatHappiness    StatKey = "happiness"
	StatIntelligence StatKey = "intelligence"
	StatWealth       StatKey = "wealth"
	StatSocial       StatKey = "social"
)

// AllStats is the canonical stat order used whenever output must be deterministic.
var AllStats = []StatKey{StatHealth, StatHappiness, StatIntelligence, StatWealth, StatSocial}

const (
	PhaseChildhood   LifePhase = "childhood"
	PhaseAdolescence LifePhase = "adolescence"
	PhaseYoungAdult  LifePhase = "young_adult"
	PhaseAdult       LifePhase = "adult"
	PhaseMiddleAge   LifePhase = "middle_age"
	PhaseSenior      LifePhase = "senior"
)

var AllPhases = []LifePhase{PhaseChildhood, PhaseAdolescence, PhaseYoungAdult, PhaseAdult, PhaseMiddleAge, PhaseSenior}

const (
	RarityCommon    Rarity = "common"
	RarityUncommon  Rarity = "uncommon"
	RarityRare      Rarity = "rare"
	RarityLegendary Rarity = "legendary"
)

var AllRarities = []Rarity{RarityCommon, RarityUncommon, RarityRare, RarityLegendary}

const (
	CategoryEducation    Category = "education"
	CategoryCareer       Category = "career"
	CategoryRelationship Category = "relationship"
	CategoryHealth       Category = "health"
	CategoryRandom       Category = "random"
	CategoryMajor        Category = "major"
)

var AllCategories = []Category{CategoryEducation, CategoryCareer, CategoryRelationship, CategoryHealth, CategoryRandom, CategoryMajor}

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyNormal Difficulty = "normal"
	DifficultyHard   Difficulty = "hard"
)

var AllDifficulties = []Difficulty{DifficultyEasy, DifficultyNormal, DifficultyHard}

const (
	LanguageEnglish Language = "en"
	LanguageTurkish Language = "tr"
)

var AllLanguages = []Language{LanguageEnglish, LanguageTurkish}

// Generic helpers
func contains[T ~string](list []T, v T) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

func (s StatKey) Validate() bool    { return contains(AllStats, s) }
func (p LifePhase) Validate() bool  { return contains(AllPhases, p) }
func (r Rarity) Validate() bool     { return contains(AllRarities, r) }
func (c Category) Validate() bool   { return contains(AllCategories, c) }
func (d Difficulty) Validate() bool { return contains(AllDifficulties, d) }
func (l Language) Validate() bool   { return contains(AllLanguages, l) }

// List helpers
func ListStats() []StatKey           { return append([]StatKey{}, AllStats...) }
func ListPhases() []LifePhase        { return append([]LifePhase{}, AllPhases...) }
func ListRarities() []Rarity         { return append([]Rarity{}, AllRarities...) }
func ListCategories() []Category     { return append([]Category{}, AllCategories...) }
func ListDifficulties() []Difficulty { return append([]Difficulty{}, AllDifficulties...) }
func ListLanguages() []Language      { return append([]Language{}, AllLanguages...) }
