package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractToken(t *testing.T) {
	token, remainder := ExtractToken("[SESSION:abc-123] approve")
	assert.Equal(t, "abc-123", token)
	assert.Equal(t, "approve", remainder)

	token, remainder = ExtractToken("approve")
	assert.Equal(t, "", token)
	assert.Equal(t, "approve", remainder)
}

func TestEmbedExtract_RoundTrip(t *testing.T) {
	payload := EmbedToken("abc-123", "reject: need cheaper hotels")
	token, remainder := ExtractToken(payload)
	assert.Equal(t, "abc-123", token)
	assert.Equal(t, "reject: need cheaper hotels", remainder)
}

func TestParseTripRequest(t *testing.T) {
	request := ParseTripRequest("plan a 5-day trip from Bangalore to Kerala, we like scenic routes")
	assert.Equal(t, "Kerala", request.Destination)
	assert.Equal(t, "Bangalore", request.StartLocation)
	assert.Equal(t, 5, request.DurationDays)
	assert.Equal(t, "scenic routes", request.Preferences)
}

func TestParseTripRequest_MultiWordPlaces(t *testing.T) {
	request := ParseTripRequest("3 day trip from New Delhi to Alleppey Beach")
	assert.Equal(t, "Alleppey Beach", request.Destination)
	assert.Equal(t, "New Delhi", request.StartLocation)
	assert.Equal(t, 3, request.DurationDays)
}

func TestParseTripRequest_Defaults(t *testing.T) {
	request := ParseTripRequest("plan something nice")
	assert.Equal(t, "unknown destination", request.Destination)
	assert.Equal(t, "unknown", request.StartLocation)
	assert.Equal(t, 3, request.DurationDays)
	assert.Equal(t, "none", request.Preferences)
}
