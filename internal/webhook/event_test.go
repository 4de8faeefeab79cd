package webhook

import (
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func TestParseEnvelopeSingle(t *testing.T) {
    raw := []byte(`{
        "type": "email.delivered",
        "created_at": "2025-11-04T10:00:00Z",
        "data": {"email_id": "msg-1", "to": "Someone@Example.com"}
    }`)

    events, err := ParseEnvelope(raw)
    require.NoError(t, err)
    require.Len(t, events, 1)

    assert.Equal(t, "email.delivered", events[0].Type)
    require.NotNil(t, events[0].OccurredAt)
    assert.Equal(t, time.Date(2025, 11, 4, 10, 0, 0, 0, time.UTC), events[0].OccurredAt.UTC())
    assert.Equal(t, "msg-1", events[0].Data["email_id"])
}

func TestParseEnvelopeBatch(t *testing.T) {
    raw := []byte(`{
        "events": [
            {"type": "email.sent", "created_at": "2025-11-04T10:00:00Z", "data": {"email_id": "msg-1"}},
            {"type": "email.delivered", "data": {"email_id": "msg-2"}}
        ]
    }`)

    events, err := ParseEnvelope(raw)
    require.NoError(t, err)
    require.Len(t, events, 2)

    assert.Equal(t, "email.sent", events[0].Type)
    assert.Equal(t, "email.delivered", events[1].Type)
    assert.Nil(t, events[1].OccurredAt)
}

func TestParseEnvelopeEmptyBatchYieldsNoEvents(t *testing.T) {
    events, err := ParseEnvelope([]byte(`{"events": []}`))
    require.NoError(t, err)
    assert.Empty(t, events)

    events, err = ParseEnvelope([]byte(`{}`))
    require.NoError(t, err)
    assert.Empty(t, events)
}

func TestParseEnvelopeInvalidJSON(t *testing.T) {
    _, err := ParseEnvelope([]byte(`{"type": `))
    assert.Error(t, err)

    _, err = ParseEnvelope([]byte(`[1, 2, 3]`))
    assert.Error(t, err)
}

func TestCoerceTime(t *testing.T) {
    parsed := CoerceTime("2025-11-04T10:00:00Z")
    require.NotNil(t, parsed)
    assert.Equal(t, time.Date(2025, 11, 4, 10, 0, 0, 0, time.UTC), parsed.UTC())

    parsed = CoerceTime("2025-11-04T10:00:00.123456+02:00")
    require.NotNil(t, parsed)

    parsed = CoerceTime("2025-11-04T10:00:00")
    require.NotNil(t, parsed)

    assert.Nil(t, CoerceTime("not a timestamp"))
    assert.Nil(t, CoerceTime(""))
    assert.Nil(t, CoerceTime(nil))
    assert.Nil(t, CoerceTime(12345))
}

func TestExtractMessageID(t *testing.T) {
    assert.Equal(t, "msg-1", ExtractMessageID(map[string]any{"email_id": "msg-1"}))
    assert.Equal(t, "msg-2", ExtractMessageID(map[string]any{"id": "msg-2"}))
    assert.Equal(t, "msg-3", ExtractMessageID(map[string]any{"message_id": "msg-3"}))

    // email_id wins over id
    assert.Equal(t, "msg-1", ExtractMessageID(map[string]any{"email_id": "msg-1", "id": "msg-2"}))

    // nested one level
    assert.Equal(t, "msg-4", ExtractMessageID(map[string]any{"email_id": map[string]any{"id": "msg-4"}}))

    assert.Equal(t, "", ExtractMessageID(map[string]any{}))
    assert.Equal(t, "", ExtractMessageID(map[string]any{"email_id": 42}))
}

func TestExtractAddressesShapes(t *testing.T) {
    data := map[string]any{
        "to": []any{
            "First@Example.com",
            map[string]any{"email": "second@example.com"},
        },
        "recipient": "first@example.com", // duplicate, different case
        "email":     map[string]any{"address": "third@example.com"},
    }

    addresses := ExtractAddresses(data)
    assert.Equal(t, []string{"first@example.com", "second@example.com", "third@example.com"}, addresses)
}

func TestExtractAddressesEmpty(t *testing.T) {
    assert.Empty(t, ExtractAddresses(map[string]any{}))
    assert.Empty(t, ExtractAddresses(map[string]any{"to": 7}))
}

func TestFlattenObjects(t *testing.T) {
    // {"data": [...]}
    flattened := FlattenObjects(map[string]any{
        "data": []any{
            map[string]any{"id": "a"},
            map[string]any{"id": "b"},
            "noise",
        },
    })
    require.Len(t, flattened, 2)
    assert.Equal(t, "a", flattened[0]["id"])

    // {"data": {...}}
    flattened = FlattenObjects(map[string]any{"data": map[string]any{"id": "c"}})
    require.Len(t, flattened, 1)
    assert.Equal(t, "c", flattened[0]["id"])

    // bare object without data
    flattened = FlattenObjects(map[string]any{"id": "d"})
    require.Len(t, flattened, 1)
    assert.Equal(t, "d", flattened[0]["id"])

    // bare list
    flattened = FlattenObjects([]any{map[string]any{"id": "e"}})
    require.Len(t, flattened, 1)

    assert.Empty(t, FlattenObjects("scalar"))
    assert.Empty(t, FlattenObjects(nil))
}
