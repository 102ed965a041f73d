package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schoolsby-hub/daybook-bot/internal/domain/shared"
)

func parentRecord() *Record {
	return &Record{
		Token: "T1",
		Profile: Profile{
			ID:        100,
			FirstName: "Ольга",
			LastName:  "Иванова",
			Role:      RoleParent,
		},
		Pupils: []Pupil{
			{ID: 1, FirstName: "Маша"},
			{ID: 2, FirstName: "Петя"},
		},
	}
}

func TestEffectivePupilID(t *testing.T) {
	pupil := &Record{Token: "T", Profile: Profile{ID: 42, Role: RolePupil}}
	id, err := pupil.EffectivePupilID()
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	parent := parentRecord()
	_, err = parent.EffectivePupilID()
	assert.ErrorIs(t, err, shared.ErrPupilNotSelected)

	require.NoError(t, parent.SelectPupil(2))
	id, err = parent.EffectivePupilID()
	require.NoError(t, err)
	assert.Equal(t, int64(2), id)
}

func TestSelectPupilValidation(t *testing.T) {
	parent := parentRecord()
	err := parent.SelectPupil(99)
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
	assert.Zero(t, parent.CurrentPupilID)

	pupil := &Record{Profile: Profile{ID: 42, Role: RolePupil}}
	assert.ErrorIs(t, pupil.SelectPupil(1), shared.ErrNotAParent)
}

func TestCloneIsDeep(t *testing.T) {
	orig := parentRecord()
	cp := orig.Clone()

	require.NoError(t, orig.SelectPupil(1))
	orig.Pupils[0].FirstName = "changed"

	assert.Zero(t, cp.CurrentPupilID)
	assert.Equal(t, "Маша", cp.Pupils[0].FirstName)
}

func TestKeys(t *testing.T) {
	assert.Equal(t, Key("123"), UserKey(123))
	assert.Equal(t, Key("-100500"), ChatKey(-100500))
}
