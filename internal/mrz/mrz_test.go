package mrz

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransliterate(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"BUTKO", "БУТКО"},
		{"ARTEM", "АРТЕМ"},
		{"MIKHAILOVICH", "МИХАИЛОВИЧ"},
		{"SHCHERBAKOV", "ЩЕРБАКОВ"},
		{"ZHUKOV", "ЖУКОВ"},
		{"IAKOVLEVA", "ЯКОВЛЕВА"},
		{"TSVETKOV", "ЦВЕТКОВ"},
		{"CHERNYY", "ЧЕРНЫЙ"},
		{"IURI", "ЮРИ"},
		{"BUTKO<<ARTEM", "БУТКО  АРТЕМ"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Transliterate(tt.in))
		})
	}
}

func TestDecodeFullBand(t *testing.T) {
	band := "P<RUSBUTKO<<ARTEM<MIKHAILOVICH<<<<<<<<<<<<<<\n1234567890RUS8505123M2506157<<<<<<<<<<<<<<04"

	set := Decode(band)

	assert.Equal(t, "БУТКО", set["lastName"])
	assert.Equal(t, "АРТЕМ", set["firstName"])
	assert.Equal(t, "МИХАИЛОВИЧ", set["middleName"])
	assert.Equal(t, "1234", set["series"])
	assert.Equal(t, "567890", set["number"])
}

func TestDecodeNameOnly(t *testing.T) {
	set := Decode("P<RUSIVANOV<<PETR<<<<<<<<<<<<<<<<<<<<<<<<<<<")

	assert.Equal(t, "ИВАНОВ", set["lastName"])
	assert.Equal(t, "ПЕТР", set["firstName"])
	_, ok := set["middleName"]
	assert.False(t, ok)
	_, ok = set["series"]
	assert.False(t, ok)
}

func TestDecodeGarbage(t *testing.T) {
	assert.Empty(t, Decode("никакой машиночитаемой зоны здесь нет"))
}
