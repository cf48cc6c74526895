package filmography

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"filmography-crawler/pkg/models"
)

const actorURL = "https://example.test/person/12345-daniel-radcliffe"

func TestActorParser_ActingNotFirst(t *testing.T) {
	page := fetchedPage(t, actorURL, models.StageActor, actorHTML(
		creditCategory{heading: "Directing", titles: []string{"Directed One"}},
		creditCategory{heading: "Acting", titles: []string{"Movie A", "Movie B"}},
		creditCategory{heading: "Writing", titles: []string{"Written One"}},
	))

	got, err := NewActorParser().Parse(page)
	require.NoError(t, err)

	assert.Equal(t, 1, got.TableIndex)
	assert.Nil(t, got.Ambiguity)
	assert.Equal(t, "daniel radcliffe", got.Actor)
	assert.Equal(t, []models.CreditRecord{
		{ActorName: "daniel radcliffe", CreditTitle: "Movie A"},
		{ActorName: "daniel radcliffe", CreditTitle: "Movie B"},
	}, got.Records)
}

func TestActorParser_ActingFirst(t *testing.T) {
	page := fetchedPage(t, actorURL, models.StageActor, actorHTML(
		creditCategory{heading: "Acting", titles: []string{"Film X"}},
		creditCategory{heading: "Production", titles: []string{"Produced"}},
	))

	got, err := NewActorParser().Parse(page)
	require.NoError(t, err)
	assert.Equal(t, 0, got.TableIndex)
	assert.Nil(t, got.Ambiguity)
	assert.Equal(t, []string{"Film X"}, titlesOf(got.Records))
}

func TestActorParser_ActingAtLastProbedPosition(t *testing.T) {
	page := fetchedPage(t, actorURL, models.StageActor, actorHTML(
		creditCategory{heading: "Directing", titles: []string{"D"}},
		creditCategory{heading: "Production", titles: []string{"P"}},
		creditCategory{heading: "Writing", titles: []string{"W"}},
		creditCategory{heading: "Crew", titles: []string{"C"}},
		creditCategory{heading: "Sound", titles: []string{"S"}},
		creditCategory{heading: "Acting", titles: []string{"Sixth"}},
	))

	got, err := NewActorParser().Parse(page)
	require.NoError(t, err)
	assert.Equal(t, 5, got.TableIndex)
	assert.Equal(t, []string{"Sixth"}, titlesOf(got.Records))
}

// Acting at position 6 is past the probe range; the first table is used.
// This locks in the historical fallback.
func TestActorParser_ActingBeyondProbeFallsBackToFirstTable(t *testing.T) {
	page := fetchedPage(t, actorURL, models.StageActor, actorHTML(
		creditCategory{heading: "Directing", titles: []string{"Directed One", "Directed Two"}},
		creditCategory{heading: "Production", titles: []string{"P"}},
		creditCategory{heading: "Writing", titles: []string{"W"}},
		creditCategory{heading: "Crew", titles: []string{"C"}},
		creditCategory{heading: "Sound", titles: []string{"S"}},
		creditCategory{heading: "Editing", titles: []string{"E"}},
		creditCategory{heading: "Acting", titles: []string{"Never Reached"}},
	))

	got, err := NewActorParser().Parse(page)
	require.NoError(t, err)

	assert.Equal(t, 0, got.TableIndex)
	assert.Equal(t, []string{"Directed One", "Directed Two"}, titlesOf(got.Records))
	require.NotNil(t, got.Ambiguity)
	assert.Equal(t, actorURL, got.Ambiguity.URL)
	assert.Equal(t, 7, got.Ambiguity.Headings)
}

func TestActorParser_NoActingHeadingFallsBack(t *testing.T) {
	page := fetchedPage(t, actorURL, models.StageActor, actorHTML(
		creditCategory{heading: "Directing", titles: []string{"Directed"}},
	))

	got, err := NewActorParser().Parse(page)
	require.NoError(t, err)
	assert.Equal(t, []string{"Directed"}, titlesOf(got.Records))
	assert.NotNil(t, got.Ambiguity)
}

func TestActorParser_HeadingMustCarryOrdinalClass(t *testing.T) {
	body := `<html><body><div class="credits_list">
		<h3 class="zero">Production</h3>
		<table class="card credits"><tr><td><table class="credit_group"><tr><td><a class="tooltip"><bdi>Produced</bdi></a></td></tr></table></td></tr></table>
		<h3 class="two">Acting</h3>
		<table class="card credits"><tr><td><table class="credit_group"><tr><td><a class="tooltip"><bdi>Acted</bdi></a></td></tr></table></td></tr></table>
	</div></body></html>`
	page := fetchedPage(t, actorURL, models.StageActor, body)

	got, err := NewActorParser().Parse(page)
	require.NoError(t, err)
	assert.Equal(t, 0, got.TableIndex)
	assert.Equal(t, []string{"Produced"}, titlesOf(got.Records))
	assert.NotNil(t, got.Ambiguity)
}

func TestActorParser_HeadingTextMustMatchExactly(t *testing.T) {
	body := `<html><body><div class="credits_list">
		<h3 class="zero">Directing</h3><table class="card credits"></table>
		<h3 class="one">Acting (voice)</h3><table class="card credits"></table>
		<h3 class="two">Acting</h3>
		<table class="card credits"><tr><td><table class="credit_group"><tr><td><a class="tooltip"><bdi>Voiced</bdi></a></td></tr></table></td></tr></table>
	</div></body></html>`
	page := fetchedPage(t, actorURL, models.StageActor, body)

	got, err := NewActorParser().Parse(page)
	require.NoError(t, err)
	assert.Equal(t, 2, got.TableIndex)
	assert.Equal(t, []string{"Voiced"}, titlesOf(got.Records))
}

func TestActorParser_WellFormedNestedGroups(t *testing.T) {
	body := `<html><body><div class="credits_list">
		<h3 class="zero">Acting</h3>
		<table class="card credits"><tbody><tr><td>
			<table class="credit_group"><tr><td><a class="tooltip"><bdi>First</bdi></a></td></tr>
				<tr><td><a class="tooltip"><bdi>Second</bdi></a></td></tr></table>
		</td></tr></tbody></table>
		<h3 class="one">Writing</h3>
		<table class="card credits"><tbody><tr><td>
			<table class="credit_group"><tr><td><a class="tooltip"><bdi>Other</bdi></a></td></tr></table>
		</td></tr></tbody></table>
	</div></body></html>`
	page := fetchedPage(t, actorURL, models.StageActor, body)

	got, err := NewActorParser().Parse(page)
	require.NoError(t, err)
	assert.Equal(t, []string{"First", "Second"}, titlesOf(got.Records))
}

func TestActorParser_EmptyCreditsSection(t *testing.T) {
	page := fetchedPage(t, actorURL, models.StageActor,
		`<html><body><div class="credits_list"></div></body></html>`)

	got, err := NewActorParser().Parse(page)
	require.NoError(t, err)
	assert.Empty(t, got.Records)
}

func TestActorParser_HeadingsWithoutTables(t *testing.T) {
	page := fetchedPage(t, actorURL, models.StageActor,
		`<html><body><div class="credits_list"><h3 class="zero">Directing</h3><h3 class="one">Acting</h3></div></body></html>`)

	got, err := NewActorParser().Parse(page)
	assert.Empty(t, got.Records)
	assert.Equal(t, 1, got.TableIndex)

	var notFound *StructureNotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, "table.card.credits", notFound.Element)
}

func TestActorParser_SkipsWhitespaceOnlyTitles(t *testing.T) {
	body := `<html><body><div class="credits_list"><h3 class="zero">Acting</h3>
		<table class="card credits"><table class="credit_group"><tr><td>
		<a class="tooltip"><bdi>Film X</bdi></a>
		<a class="tooltip"><bdi> </bdi></a>
		<a class="tooltip"><bdi>Film Y<i>!</i> </bdi></a>
		</td></tr></table></table></div></body></html>`
	page := fetchedPage(t, actorURL, models.StageActor, body)

	got, err := NewActorParser().Parse(page)
	require.NoError(t, err)
	assert.Equal(t, []string{"Film X", "Film Y"}, titlesOf(got.Records))
}

func TestActorParser_MissingCreditsSection(t *testing.T) {
	page := fetchedPage(t, actorURL, models.StageActor,
		`<html><body><h2>Nobody</h2></body></html>`)

	got, err := NewActorParser().Parse(page)
	require.NoError(t, err)
	assert.Empty(t, got.Records)
	assert.Nil(t, got.Ambiguity)
}

func TestActorParser_SelectedTableOutOfRange(t *testing.T) {
	body := `<html><body><div class="credits_list">
		<h3 class="zero">Directing</h3>
		<h3 class="one">Acting</h3>
		<table class="card credits"><tr><td><table class="credit_group"><tr><td><a class="tooltip"><bdi>D</bdi></a></td></tr></table></td></tr></table>
	</div></body></html>`
	page := fetchedPage(t, actorURL, models.StageActor, body)

	got, err := NewActorParser().Parse(page)
	assert.Empty(t, got.Records)

	var notFound *StructureNotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, "table.card.credits", notFound.Element)
	assert.Equal(t, actorURL, notFound.URL)
}

func TestNameDerivationAmbiguity_Error(t *testing.T) {
	err := &NameDerivationAmbiguity{URL: actorURL, Headings: 7}
	assert.Contains(t, err.Error(), actorURL)
	assert.Contains(t, err.Error(), "7 headings")
}
