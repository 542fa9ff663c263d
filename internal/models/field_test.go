package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestField_Unmarshal_PresenceAndNull(t *testing.T) {
	var ev LoginEvent
	body := `{"user_id":"u1","device_type":null,"ip":"1.2.3.4","locale":"en-US"}`
	require.NoError(t, json.Unmarshal([]byte(body), &ev))

	assert.Equal(t, "u1", ev.UserID)

	assert.True(t, ev.DeviceType.Present)
	assert.False(t, ev.DeviceType.Valid)
	assert.Nil(t, ev.DeviceType.Ptr())

	assert.Equal(t, NewField("1.2.3.4"), ev.IP)
	require.NotNil(t, ev.IP.Ptr())
	assert.Equal(t, "1.2.3.4", *ev.IP.Ptr())

	assert.False(t, ev.DeviceID.Present, "missing key must not be marked present")
	assert.False(t, ev.AppVersion.Present)
}

func TestField_Unmarshal_WrongType(t *testing.T) {
	var f Field
	assert.Error(t, json.Unmarshal([]byte(`12`), &f))
}

func TestField_Marshal(t *testing.T) {
	b, err := json.Marshal(struct {
		A Field `json:"a"`
		B Field `json:"b"`
	}{A: NewField("x"), B: NullField()})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":"x","b":null}`, string(b))
}

func TestField_PtrIsACopy(t *testing.T) {
	f := NewField("v")
	p := f.Ptr()
	*p = "changed"
	assert.Equal(t, "v", f.Value)
}
