package events

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	e := New(CardSettled, 7, map[string]interface{}{"settled": 3})

	assert.NotEmpty(t, e.ID)
	assert.Equal(t, CardSettled, e.Type)
	assert.Equal(t, uint(7), e.UserID)
	assert.False(t, e.OccurredAt.IsZero())

	body, err := e.JSON()
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &decoded))
	assert.Equal(t, "card.settled", decoded["type"])
	assert.Equal(t, float64(3), decoded["payload"].(map[string]interface{})["settled"])
}

func TestConnect_NoURL(t *testing.T) {
	p, err := Connect("", "exchange")
	require.NoError(t, err)
	assert.IsType(t, Nop{}, p)
	assert.NoError(t, p.Publish(context.Background(), New(CardSettled, 1, nil)))
}
