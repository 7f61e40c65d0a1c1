package notifications

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePriority(t *testing.T) {
	tests := []struct {
		input string
		want  Priority
		ok    bool
	}{
		{"low", PriorityLow, true},
		{"medium", PriorityMedium, true},
		{"high", PriorityHigh, true},
		{"urgent", PriorityUrgent, true},
		{"critical", PriorityLow, false},
		{"HIGH", PriorityLow, false},
		{"", PriorityLow, false},
	}

	for _, tt := range tests {
		t.Run("input_"+tt.input, func(t *testing.T) {
			got, ok := ParsePriority(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPriorityString(t *testing.T) {
	assert.Equal(t, "low", PriorityLow.String())
	assert.Equal(t, "medium", PriorityMedium.String())
	assert.Equal(t, "high", PriorityHigh.String())
	assert.Equal(t, "urgent", PriorityUrgent.String())
	assert.Equal(t, "unknown", Priority(42).String())
}

func TestPriorityJSON(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		for _, p := range []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent} {
			data, err := json.Marshal(p)
			require.NoError(t, err)
			assert.Equal(t, `"`+p.String()+`"`, string(data))

			var decoded Priority
			require.NoError(t, json.Unmarshal(data, &decoded))
			assert.Equal(t, p, decoded)
		}
	})

	t.Run("marshal rejects out-of-range value", func(t *testing.T) {
		_, err := json.Marshal(Priority(42))
		assert.Error(t, err)
	})

	t.Run("unmarshal rejects unknown level", func(t *testing.T) {
		var p Priority
		assert.Error(t, json.Unmarshal([]byte(`"critical"`), &p))
	})

	t.Run("unmarshal rejects non-string", func(t *testing.T) {
		var p Priority
		assert.Error(t, json.Unmarshal([]byte(`2`), &p))
	})
}

func TestNotificationJSON(t *testing.T) {
	n := Notification{
		ID:        "01890000-0000-7000-8000-000000000001",
		Type:      "deadline_reminder",
		Title:     "Deadline approaching",
		Message:   "Evaluation round closes in 2 hours",
		Priority:  PriorityHigh,
		Data:      map[string]any{"project_id": "prj_42"},
		Timestamp: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}

	data, err := json.Marshal(n)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"id": "01890000-0000-7000-8000-000000000001",
		"type": "deadline_reminder",
		"title": "Deadline approaching",
		"message": "Evaluation round closes in 2 hours",
		"priority": "high",
		"data": {"project_id": "prj_42"},
		"timestamp": "2025-06-01T12:00:00Z",
		"read": false
	}`, string(data))
}

func TestNewID(t *testing.T) {
	first := newID()
	second := newID()

	assert.Len(t, first, 36)
	assert.NotEqual(t, first, second)
}
