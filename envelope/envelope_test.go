package envelope

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DHRUVXJANI/EdgeTune/errors"
)

func TestDecode_Telemetry(t *testing.T) {
	raw := []byte(`{
		"type": "telemetry",
		"data": {
			"timestamp": 1724668000.5,
			"gpu_util": 87.3,
			"vram_used": 7.42,
			"vram_total": 8.0,
			"cpu_util": 41.0,
			"ram_used": 12.6,
			"fps": 24.8,
			"latency_ms": 40.3
		}
	}`)

	env, err := Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, TypeTelemetry, env.Type)

	var snap Telemetry
	require.NoError(t, env.DecodeData(&snap))
	assert.Equal(t, 87.3, snap.GPUUtil)
	assert.Equal(t, 7.42, snap.VRAMUsed)
	assert.Equal(t, 24.8, snap.FPS)
}

func TestDecode_MalformedFrame(t *testing.T) {
	for _, raw := range [][]byte{
		[]byte(`not json at all`),
		[]byte(`{"type": 42}`),
		[]byte(``),
	} {
		_, err := Decode(raw)
		require.Error(t, err)
		assert.True(t, errors.IsInvalid(err), "decode failure must classify as invalid: %v", err)
		assert.True(t, stderrors.Is(err, errors.ErrParsingFailed) || stderrors.Is(err, errors.ErrInvalidData))
	}
}

func TestDecode_MissingTypeTag(t *testing.T) {
	_, err := Decode([]byte(`{"data": {"fps": 1}}`))
	require.Error(t, err)
	assert.True(t, errors.IsInvalid(err))
	assert.True(t, stderrors.Is(err, errors.ErrInvalidData))
}

func TestDecode_UnknownTypeIsWellFormed(t *testing.T) {
	// Unknown tags decode fine; ignoring them is the router's job.
	env, err := Decode([]byte(`{"type": "future_feature", "data": {}}`))
	require.NoError(t, err)
	assert.Equal(t, Type("future_feature"), env.Type)
}

func TestDecodeData_SourceProgress(t *testing.T) {
	env, err := Decode([]byte(`{"type":"source_progress","data":{"progress":0.25,"frame":250,"total":1000,"paused":false}}`))
	require.NoError(t, err)

	var prog SourceProgress
	require.NoError(t, env.DecodeData(&prog))
	assert.Equal(t, 0.25, prog.Progress)
	require.NotNil(t, prog.Total)
	assert.Equal(t, 1000, *prog.Total)

	// Live sources report total as null.
	env, err = Decode([]byte(`{"type":"source_progress","data":{"progress":0,"frame":42,"total":null,"paused":false}}`))
	require.NoError(t, err)
	prog = SourceProgress{}
	require.NoError(t, env.DecodeData(&prog))
	assert.Nil(t, prog.Total)
}

func TestDecodeData_EmptyBody(t *testing.T) {
	env, err := Decode([]byte(`{"type":"ping"}`))
	require.NoError(t, err)

	var ping Ping
	err = env.DecodeData(&ping)
	require.Error(t, err)
	assert.True(t, errors.IsInvalid(err))
}

func TestEncode_RoundTrip(t *testing.T) {
	raw, err := Encode(TypePong, Ping{Timestamp: 123.5})
	require.NoError(t, err)

	env, err := Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, TypePong, env.Type)

	var pong Ping
	require.NoError(t, env.DecodeData(&pong))
	assert.Equal(t, 123.5, pong.Timestamp)
}

func TestEncode_NoBody(t *testing.T) {
	raw, err := Encode(TypePing, nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"ping"}`, string(raw))
}

func TestDecodeData_StatusExtra(t *testing.T) {
	env, err := Decode([]byte(`{"type":"status","data":{"status":"completed","message":"done","extra":{"frames":900}}}`))
	require.NoError(t, err)

	var st Status
	require.NoError(t, env.DecodeData(&st))
	assert.Equal(t, "completed", st.Status)
	assert.Equal(t, "done", st.Message)
	assert.EqualValues(t, 900, st.Extra["frames"])
}
