package user

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) Date {
	return Date(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
}

func TestAgeAt(t *testing.T) {
	now := time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name string
		dob  Date
		want int
	}{
		{"birthday today", date(1995, time.June, 15), 30},
		{"birthday tomorrow", date(1995, time.June, 16), 29},
		{"birthday yesterday", date(1995, time.June, 14), 30},
		{"birthday next month", date(1995, time.July, 1), 29},
		{"birthday last month", date(1995, time.May, 1), 30},
		{"born this year", date(2025, time.January, 1), 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, AgeAt(tc.dob, now))
		})
	}

	t.Run("leap day birthday", func(t *testing.T) {
		dob := date(2000, time.February, 29)
		// In a non-leap year the birthday counts from March 1.
		assert.Equal(t, 24, AgeAt(dob, time.Date(2025, time.February, 28, 0, 0, 0, 0, time.UTC)))
		assert.Equal(t, 25, AgeAt(dob, time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)))
	})
}

func TestDateJSON(t *testing.T) {
	raw, err := json.Marshal(date(1990, time.June, 15))
	require.NoError(t, err)
	assert.Equal(t, `"1990-06-15"`, string(raw))

	var d Date
	require.NoError(t, json.Unmarshal([]byte(`"1990-06-15"`), &d))
	assert.Equal(t, "1990-06-15", d.String())

	assert.Error(t, json.Unmarshal([]byte(`"15/06/1990"`), &d))
}

func TestOptionalTriState(t *testing.T) {
	type payload struct {
		City Optional[string] `json:"city"`
	}

	t.Run("absent", func(t *testing.T) {
		var p payload
		require.NoError(t, json.Unmarshal([]byte(`{}`), &p))
		assert.False(t, p.City.Set)
		assert.Nil(t, p.City.ValueOrNil())
	})

	t.Run("explicit null", func(t *testing.T) {
		var p payload
		require.NoError(t, json.Unmarshal([]byte(`{"city":null}`), &p))
		assert.True(t, p.City.Set)
		assert.True(t, p.City.Null)
		assert.Nil(t, p.City.ValueOrNil())
	})

	t.Run("value", func(t *testing.T) {
		var p payload
		require.NoError(t, json.Unmarshal([]byte(`{"city":"London"}`), &p))
		require.NotNil(t, p.City.ValueOrNil())
		assert.Equal(t, "London", *p.City.ValueOrNil())
	})
}

func TestRoleIsValid(t *testing.T) {
	for _, role := range []Role{RoleUnverified, RoleVerified, RoleAdmin} {
		assert.True(t, role.IsValid(), role)
	}
	assert.False(t, Role("superuser").IsValid())
}
