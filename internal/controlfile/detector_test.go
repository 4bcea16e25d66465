package controlfile

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/joseph-ayodele/rental-ledger/internal/property"
)

func newDetector() *Detector {
	return NewDetector(property.DefaultSeries)
}

func TestIsControlFile(t *testing.T) {
	d := newDetector()
	tests := []struct {
		name string
		text string
		want bool
	}{
		{"controlo marker", "CONTROLO_AROEIRA_II\nGuest ...", true},
		{"mapa de reservas", "Mapa de Reservas 2025", true},
		{"exciting lisbon", "EXCITING LISBON Alfama Loft", true},
		{"check-in/check-out headers any order", "Nome  Check-out  Check-in  Valor", true},
		{"entrada/saída headers", "Hóspede | Entrada | Saída | Total", true},
		{"checkin/checkout", "guest checkin checkout", true},
		{"only one header", "Check-in instructions for your stay", false},
		{"invoice", "Invoice #42\nTotal due: 120 EUR", false},
		{"empty", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, d.IsControlFile(tt.text))
		})
	}
}

func TestPropertyNamePriority(t *testing.T) {
	d := newDetector()
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			"exciting lisbon wins over controlo",
			"Controlo_Other_Place\nEXCITING LISBON Alfama Loft\nCheck-in Check-out",
			"Alfama Loft",
		},
		{
			"controlo underscores become spaces",
			"Controlo_Casa_Azul\nCheck-in Check-out",
			"Casa Azul",
		},
		{
			"numbered family",
			"Mapa de reservas\nAroeira 2 - Julho\nCheck-in Check-out",
			"Aroeira II",
		},
		{
			"generic keyword",
			"Mapa de reservas\nPropriedade: Villa Sol     Ano 2025\n",
			"Villa Sol",
		},
		{
			"first short line fallback",
			"\n  Casa do Rio  \nCheck-in Check-out\n",
			"Casa do Rio",
		},
		{
			"long first line gives sentinel",
			"This is a very long first line of the document that goes on and on\nCheck-in Check-out",
			UnknownProperty,
		},
		{
			"bare family qualified from elsewhere",
			"Controlo_Aroeira\nCheck-in Check-out\nnotes: cleaning at Aroeira III on friday",
			"Aroeira III",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := d.Detect(tt.text)
			assert.True(t, got.IsControlFile)
			assert.Equal(t, tt.want, got.PropertyName)
		})
	}
}

func TestDetectNegative(t *testing.T) {
	got := newDetector().Detect("Receipt\nCoffee 2.50")
	assert.False(t, got.IsControlFile)
	assert.Empty(t, got.PropertyName)
}

func TestDetectIsIdempotent(t *testing.T) {
	d := newDetector()
	text := "EXCITING LISBON Aroeira I\nCheck-in Check-out\nAna 01/02/2025 05/02/2025"
	first := d.Detect(text)
	second := d.Detect(text)
	assert.Equal(t, first, second)
	assert.Equal(t, "Aroeira I", first.PropertyName)
}
