package eventbus

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent_Success(t *testing.T) {
	data := map[string]interface{}{"demand": 65}

	event, err := NewEvent(SubjectDemandPredicted, "intelligence-service", data)
	require.NoError(t, err)
	require.NotNil(t, event)

	assert.Equal(t, SubjectDemandPredicted, event.Type)
	assert.Equal(t, "intelligence-service", event.Source)
	assert.NotEmpty(t, event.ID)
	assert.False(t, event.Timestamp.IsZero())

	// ID should be a valid UUID
	_, err = uuid.Parse(event.ID)
	assert.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(event.Data, &decoded))
	assert.Equal(t, float64(65), decoded["demand"])
}

func TestNewEvent_NilData(t *testing.T) {
	event, err := NewEvent(SubjectSafetyAlert, "intelligence-service", nil)
	require.NoError(t, err)
	assert.Equal(t, json.RawMessage("null"), event.Data)
}

func TestNewEvent_UnmarshalableData(t *testing.T) {
	_, err := NewEvent(SubjectRouteOptimized, "intelligence-service", make(chan int))
	assert.Error(t, err)
}

func TestNewEvent_RoundTrip(t *testing.T) {
	event, err := NewEvent(SubjectRouteOptimized, "intelligence-service", map[string]float64{
		"distance": 12.64,
	})
	require.NoError(t, err)

	payload, err := json.Marshal(event)
	require.NoError(t, err)

	var decoded Event
	require.NoError(t, json.Unmarshal(payload, &decoded))
	assert.Equal(t, event.ID, decoded.ID)
	assert.Equal(t, event.Type, decoded.Type)
	assert.JSONEq(t, string(event.Data), string(decoded.Data))
}
