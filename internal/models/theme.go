package models

type Theme string

const DefaultTheme Theme = "solo-leveling"

var AllThemes = []Theme{
	"solo-leveling",
	"dragon-ball",
	"one-punch",
	"baki",
	"attack-on-titan",
	"one-piece",
	"jujutsu-kaisen",
	"black-clover",
	"naruto",
}

func (t Theme) IsValid() bool {
	for _, v := range AllThemes {
		if t == v {
			return true
		}
	}
	return false
}
