package memory

import "trainvoc-room-service/internal/domain"

// SampleWords is the built-in word bank used when no Postgres is configured.
// It matches the rows seeded by the postgres migrations.
func SampleWords() []domain.Word {
	return []domain.Word{
		{ID: "w01", Term: "apple", Meaning: "elma", Level: "A1"},
		{ID: "w02", Term: "book", Meaning: "kitap", Level: "A1"},
		{ID: "w03", Term: "water", Meaning: "su", Level: "A1"},
		{ID: "w04", Term: "house", Meaning: "ev", Level: "A1"},
		{ID: "w05", Term: "friend", Meaning: "arkadaş", Level: "A1"},
		{ID: "w06", Term: "journey", Meaning: "yolculuk", Level: "A2"},
		{ID: "w07", Term: "borrow", Meaning: "ödünç almak", Level: "A2"},
		{ID: "w08", Term: "weather", Meaning: "hava durumu", Level: "A2"},
		{ID: "w09", Term: "island", Meaning: "ada", Level: "A2"},
		{ID: "w10", Term: "achieve", Meaning: "başarmak", Level: "B1"},
		{ID: "w11", Term: "improve", Meaning: "geliştirmek", Level: "B1"},
		{ID: "w12", Term: "opinion", Meaning: "fikir", Level: "B1"},
		{ID: "w13", Term: "resource", Meaning: "kaynak", Level: "B1"},
		{ID: "w14", Term: "abundant", Meaning: "bol", Level: "B2"},
		{ID: "w15", Term: "reluctant", Meaning: "isteksiz", Level: "B2"},
		{ID: "w16", Term: "consequence", Meaning: "sonuç", Level: "B2"},
		{ID: "w17", Term: "diligent", Meaning: "çalışkan", Level: "B2"},
		{ID: "w18", Term: "ubiquitous", Meaning: "her yerde bulunan", Level: "C1"},
		{ID: "w19", Term: "meticulous", Meaning: "titiz", Level: "C1"},
		{ID: "w20", Term: "candid", Meaning: "açık sözlü", Level: "C1"},
		{ID: "w21", Term: "ephemeral", Meaning: "geçici", Level: "C1"},
	}
}
