// ABOUTME: Tests for lead extraction
// ABOUTME: Covers marker matching, ordering, case folding, and custom markers

package lead

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtract_EmptyInput(t *testing.T) {
	info, ok := Extract("")
	assert.False(t, ok)
	assert.Empty(t, info)
}

func TestExtract_NoMarkers(t *testing.T) {
	info, ok := Extract("Bonjour, je voudrais un devis.\nMerci beaucoup.")
	assert.False(t, ok)
	assert.Empty(t, info)
}

func TestExtract_JoinsMatchesInOrder(t *testing.T) {
	text := "Bonjour !\nEmail: a@b.com\nSuper, merci.\nBesoin: hosting"

	info, ok := Extract(text)
	assert.True(t, ok)
	assert.Equal(t, "Email: a@b.com\nBesoin: hosting", info)
}

func TestExtract_CaseInsensitive(t *testing.T) {
	lower, ok := Extract("email: a@b.com\nbesoin: site vitrine")
	assert.True(t, ok)

	upper, ok := Extract("EMAIL: a@b.com\nBESOIN: site vitrine")
	assert.True(t, ok)

	mixed, ok := Extract("eMaIl: a@b.com\nBeSoIn: site vitrine")
	assert.True(t, ok)

	assert.Equal(t, "email: a@b.com\nbesoin: site vitrine", lower)
	assert.Equal(t, "EMAIL: a@b.com\nBESOIN: site vitrine", upper)
	assert.Equal(t, "eMaIl: a@b.com\nBeSoIn: site vitrine", mixed)
}

func TestExtract_AccentedMarkerCaseFolding(t *testing.T) {
	info, ok := Extract("PRÉNOM : Julie")
	assert.True(t, ok)
	assert.Equal(t, "PRÉNOM : Julie", info)
}

func TestExtract_MatchRunsToEndOfLineFromMarker(t *testing.T) {
	info, ok := Extract("Voici mon email : julie@example.com\nA bientot")
	assert.True(t, ok)
	assert.Equal(t, "email : julie@example.com", info)
}

func TestExtract_MarkerAloneDoesNotMatch(t *testing.T) {
	_, ok := Extract("email\nbesoin")
	assert.False(t, ok)
}

func TestExtract_EnglishMarkers(t *testing.T) {
	info, ok := Extract("First name: Ada\nLast name: Lovelace\nI need a website")
	assert.True(t, ok)
	assert.Equal(t, "First name: Ada\nLast name: Lovelace\nneed a website", info)
}

func TestExtract_StripsCarriageReturns(t *testing.T) {
	info, ok := Extract("Email: a@b.com\r\nBesoin: hosting\r\n")
	assert.True(t, ok)
	assert.Equal(t, "Email: a@b.com\nBesoin: hosting", info)
}

func TestExtract_Deterministic(t *testing.T) {
	text := "Prénom: Julie\nNom: Martin\nEmail: julie@example.com\nBesoin: boutique en ligne"

	first, ok1 := Extract(text)
	second, ok2 := Extract(text)
	assert.Equal(t, ok1, ok2)
	assert.Equal(t, first, second)
	assert.Equal(t, text, first)
}

func TestNew_CustomMarkers(t *testing.T) {
	e := New("phone", " ", "")
	info, ok := e.Extract("Email: a@b.com\nPhone: 0600000000")
	assert.True(t, ok)
	assert.Equal(t, "Phone: 0600000000", info)
}

func TestNew_NoMarkersFallsBackToDefaults(t *testing.T) {
	e := New()
	info, ok := e.Extract("Email: a@b.com")
	assert.True(t, ok)
	assert.Equal(t, "Email: a@b.com", info)
}

func TestNew_QuotesRegexpMetacharacters(t *testing.T) {
	e := New("e.mail")
	_, ok := e.Extract("eXmail: nope")
	assert.False(t, ok)

	info, ok := e.Extract("e.mail: yes")
	assert.True(t, ok)
	assert.Equal(t, "e.mail: yes", info)
}
