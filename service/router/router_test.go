package router

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/itinera/itinera/model/trip"
)

func kinds(targets []Target) []trip.SectionKind {
	var result []trip.SectionKind
	for _, target := range targets {
		result = append(result, target.Kind)
	}
	return result
}

func TestClassify_SingleSection(t *testing.T) {
	testCases := []struct {
		feedback string
		expect   trip.SectionKind
	}{
		{"need cheaper hotels", trip.KindAccommodation},
		{"avoid the highway, take the scenic road", trip.KindRoute},
		{"add a backwater tour on day two", trip.KindActivities},
		{"the travel time looks too long", trip.KindRoute},
		{"find a resort with a pool", trip.KindAccommodation},
	}
	for _, tc := range testCases {
		targets, err := Classify(tc.feedback)
		assert.NoError(t, err, tc.feedback)
		assert.Equal(t, []trip.SectionKind{tc.expect}, kinds(targets), tc.feedback)
		assert.Equal(t, tc.feedback, targets[0].Instruction)
	}
}

func TestClassify_MultiSection(t *testing.T) {
	targets, err := Classify("cheaper hotels and a shorter drive")
	assert.NoError(t, err)
	// section order, not mention order
	assert.Equal(t, []trip.SectionKind{trip.KindRoute, trip.KindAccommodation}, kinds(targets))
	for _, target := range targets {
		assert.Equal(t, "cheaper hotels and a shorter drive", target.Instruction)
	}

	targets, err = Classify("cheaper hotels and more outdoor activities")
	assert.NoError(t, err)
	assert.Equal(t, []trip.SectionKind{trip.KindAccommodation, trip.KindActivities}, kinds(targets))
}

func TestClassify_Unclassifiable(t *testing.T) {
	_, err := Classify("make it better overall")
	assert.ErrorIs(t, err, ErrUnclassifiable)
}

func TestClassify_HintPrecedence(t *testing.T) {
	targets, err := Classify("make it better overall", trip.KindActivities)
	assert.NoError(t, err)
	assert.Equal(t, []trip.SectionKind{trip.KindActivities}, kinds(targets))
	assert.Equal(t, "make it better overall", targets[0].Instruction)

	// an explicit hint names the section; keywords are not consulted
	targets, err = Classify("need cheaper hotels", trip.KindActivities)
	assert.NoError(t, err)
	assert.Equal(t, []trip.SectionKind{trip.KindActivities}, kinds(targets))
}

func TestClassify_TokenBoundaries(t *testing.T) {
	// "staying" must not trigger the "stay" keyword
	_, err := Classify("staying positive about this")
	assert.ErrorIs(t, err, ErrUnclassifiable)
}

func TestClassify_Deterministic(t *testing.T) {
	for i := 0; i < 5; i++ {
		targets, err := Classify("cheaper hotels and a shorter drive")
		assert.NoError(t, err)
		assert.Equal(t, []trip.SectionKind{trip.KindRoute, trip.KindAccommodation}, kinds(targets))
	}
}
