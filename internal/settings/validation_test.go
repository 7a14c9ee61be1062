package settings

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validDoc = `{
	"sites": [{"url": "https://example.org", "rotationRate": 15}],
	"rotationRate": 45,
	"useGlobalRotationRate": false,
	"refreshRate": 300,
	"wakeLock": true,
	"extra": "ignored"
}`

func TestAssertSettings_Valid(t *testing.T) {
	v := AssertSettings([]byte(validDoc))
	require.True(t, v.Valid(), v.Reason())
	require.NoError(t, v.Err())

	s := v.Settings()
	assert.Equal(t, []Site{{URL: "https://example.org", RotationRate: 15}}, s.Sites)
	assert.Equal(t, float64(45), s.RotationRate)
	assert.False(t, s.UseGlobalRotationRate)
	assert.Equal(t, float64(300), s.RefreshRate)
	assert.True(t, s.WakeLock)
}

func TestAssertSettings_EmptySitesIsValid(t *testing.T) {
	v := AssertSettings([]byte(`{"sites":[],"rotationRate":1,"useGlobalRotationRate":true,"refreshRate":1,"wakeLock":false}`))
	assert.True(t, v.Valid(), v.Reason())
}

func TestAssertSettings_ExtraFieldsIgnored(t *testing.T) {
	tests := []struct {
		name  string
		extra string
	}{
		{"differently cased rotation", `"RotationRate": 99`},
		{"differently cased refresh of wrong type", `"RefreshRate": "fast"`},
		{"differently cased sites", `"SITES": [{"url": "https://other.example"}]`},
		{"unknown nested", `"display": {"brightness": 0.4}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := validDoc[:len(validDoc)-1] + ", " + tt.extra + "}"
			v := AssertSettings([]byte(doc))
			require.True(t, v.Valid(), v.Reason())
			assert.Equal(t, float64(45), v.Settings().RotationRate)
			assert.Equal(t, float64(300), v.Settings().RefreshRate)
			assert.Equal(t, []Site{{URL: "https://example.org", RotationRate: 15}}, v.Settings().Sites)
		})
	}
}

func TestAssertSettings_SiteFieldsOptional(t *testing.T) {
	v := AssertSettings([]byte(`{"sites":[{},{"url":"https://a.example"}],"rotationRate":1,"useGlobalRotationRate":true,"refreshRate":1,"wakeLock":false}`))
	require.True(t, v.Valid(), v.Reason())
	assert.Equal(t, []Site{{}, {URL: "https://a.example"}}, v.Settings().Sites)
}

func TestCheck(t *testing.T) {
	assert.NoError(t, Check(Defaults()))
	assert.ErrorIs(t, Check(Settings{}), ErrInvalidSettings)

	negative := Defaults()
	negative.RotationRate = -1
	assert.ErrorIs(t, Check(negative), ErrInvalidSettings)
}

func TestAssertSettings_Rejected(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		problem Problem
		target  error
	}{
		{"not json", `invalid`, ProblemParse, ErrUnparseable},
		{"truncated", `{"sites": [`, ProblemParse, ErrUnparseable},
		{"array root", `[1,2]`, ProblemSchema, ErrInvalidSettings},
		{"number root", `20`, ProblemSchema, ErrInvalidSettings},
		{"unrelated object", `{"someValue": 20}`, ProblemSchema, ErrInvalidSettings},
		{"missing wakeLock", `{"sites":[],"rotationRate":1,"useGlobalRotationRate":true,"refreshRate":1}`, ProblemSchema, ErrInvalidSettings},
		{"string rotation", `{"sites":[],"rotationRate":"60","useGlobalRotationRate":true,"refreshRate":1,"wakeLock":false}`, ProblemSchema, ErrInvalidSettings},
		{"sites object", `{"sites":{},"rotationRate":1,"useGlobalRotationRate":true,"refreshRate":1,"wakeLock":false}`, ProblemSchema, ErrInvalidSettings},
		{"numeric flag", `{"sites":[],"rotationRate":1,"useGlobalRotationRate":1,"refreshRate":1,"wakeLock":false}`, ProblemSchema, ErrInvalidSettings},
		{"negative refresh", `{"sites":[],"rotationRate":1,"useGlobalRotationRate":true,"refreshRate":-1,"wakeLock":false}`, ProblemSchema, ErrInvalidSettings},
		{"negative site rate", `{"sites":[{"url":"a","rotationRate":-3}],"rotationRate":1,"useGlobalRotationRate":true,"refreshRate":1,"wakeLock":false}`, ProblemSchema, ErrInvalidSettings},
		{"numeric url", `{"sites":[{"url":5}],"rotationRate":1,"useGlobalRotationRate":true,"refreshRate":1,"wakeLock":false}`, ProblemSchema, ErrInvalidSettings},
		{"string site rate", `{"sites":[{"url":"a","rotationRate":"5"}],"rotationRate":1,"useGlobalRotationRate":true,"refreshRate":1,"wakeLock":false}`, ProblemSchema, ErrInvalidSettings},
		{"site not object", `{"sites":["a"],"rotationRate":1,"useGlobalRotationRate":true,"refreshRate":1,"wakeLock":false}`, ProblemSchema, ErrInvalidSettings},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := AssertSettings([]byte(tt.doc))
			assert.False(t, v.Valid())
			assert.Equal(t, tt.problem, v.Problem())
			assert.NotEmpty(t, v.Reason())
			assert.True(t, errors.Is(v.Err(), tt.target), "got %v", v.Err())
			assert.True(t, IsInvalid(v.Err()))
		})
	}
}
