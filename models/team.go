package models

import "github.com/google/uuid"

type Lang string

const (
	LangFR Lang = "fr"
	LangEN Lang = "en"

	DefaultLang = LangFR
)

func (l Lang) IsValid() bool {
	return l == LangFR || l == LangEN
}

type Team struct {
	ID            uuid.UUID `json:"id"`
	Code          string    `json:"code"`
	DescriptionFR string    `json:"description_fr"`
	DescriptionEN string    `json:"description_en"`
	FlagURL       string    `json:"flag_url"`
}

func (t *Team) Description(lang Lang) string {
	return localized(lang, t.DescriptionFR, t.DescriptionEN)
}

func localized(lang Lang, fr, en string) string {
	if lang == LangEN {
		return en
	}
	return fr
}
