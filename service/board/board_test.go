package board

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/quorly/model/party"
)

func TestNew(t *testing.T) {
	testCases := []struct {
		name        string
		members     []party.ID
		required    int
		expectedErr error
	}{
		{
			name:        "empty member list",
			members:     nil,
			required:    1,
			expectedErr: ErrNoOwners,
		},
		{
			name:        "zero threshold",
			members:     []party.ID{"alice", "bob"},
			required:    0,
			expectedErr: ErrInvalidThreshold,
		},
		{
			name:        "threshold above member count",
			members:     []party.ID{"alice", "bob"},
			required:    3,
			expectedErr: ErrInvalidThreshold,
		},
		{
			name:        "null identifier",
			members:     []party.ID{"alice", party.Zero},
			required:    1,
			expectedErr: ErrInvalidParty,
		},
		{
			name:        "duplicate identifier",
			members:     []party.ID{"alice", "bob", "alice"},
			required:    2,
			expectedErr: ErrDuplicateParty,
		},
		{
			name:     "valid board",
			members:  []party.ID{"alice", "bob", "carol"},
			required: 2,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			aBoard, err := New(tc.members, tc.required)
			if tc.expectedErr != nil {
				assert.ErrorIs(t, err, tc.expectedErr)
				assert.Nil(t, aBoard)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.members, aBoard.Owners())
			assert.Equal(t, tc.required, aBoard.Threshold())
			assert.Equal(t, len(tc.members), aBoard.Size())
		})
	}
}

func TestBoardAddOwner(t *testing.T) {
	aBoard, err := New([]party.ID{"alice", "bob"}, 2)
	require.NoError(t, err)

	assert.ErrorIs(t, aBoard.AddOwner(party.Zero), ErrInvalidParty)
	assert.ErrorIs(t, aBoard.AddOwner("alice"), ErrAlreadyAuthorized)

	require.NoError(t, aBoard.AddOwner("carol"))
	assert.True(t, aBoard.Authorized("carol"))
	assert.Equal(t, 3, aBoard.Size())
	assert.Equal(t, 2, aBoard.Threshold(), "adding an owner leaves the threshold alone")
}

func TestBoardRemoveOwner(t *testing.T) {
	aBoard, err := New([]party.ID{"alice", "bob", "carol"}, 3)
	require.NoError(t, err)

	assert.ErrorIs(t, aBoard.RemoveOwner("dave"), ErrNotAuthorized)

	// Swap-with-last: carol takes alice's slot
	require.NoError(t, aBoard.RemoveOwner("alice"))
	assert.Equal(t, []party.ID{"carol", "bob"}, aBoard.Owners())
	assert.False(t, aBoard.Authorized("alice"))

	// Threshold followed the shrinking member count down
	assert.Equal(t, 2, aBoard.Threshold())

	require.NoError(t, aBoard.RemoveOwner("carol"))
	assert.Equal(t, 1, aBoard.Threshold())

	// The board never empties
	err = aBoard.RemoveOwner("bob")
	assert.ErrorIs(t, err, ErrNoOwners)
	assert.True(t, aBoard.Authorized("bob"))
	assert.Equal(t, 1, aBoard.Size())
}

func TestBoardRemoveOwnerKeepsLowerThreshold(t *testing.T) {
	aBoard, err := New([]party.ID{"alice", "bob", "carol"}, 1)
	require.NoError(t, err)

	require.NoError(t, aBoard.RemoveOwner("carol"))
	assert.Equal(t, 1, aBoard.Threshold(), "threshold is lowered, never raised")
}

func TestBoardReplaceOwner(t *testing.T) {
	aBoard, err := New([]party.ID{"alice", "bob", "carol"}, 2)
	require.NoError(t, err)

	assert.ErrorIs(t, aBoard.ReplaceOwner("dave", "erin"), ErrNotAuthorized)
	assert.ErrorIs(t, aBoard.ReplaceOwner("alice", party.Zero), ErrInvalidParty)
	assert.ErrorIs(t, aBoard.ReplaceOwner("alice", "bob"), ErrAlreadyAuthorized)

	require.NoError(t, aBoard.ReplaceOwner("bob", "erin"))
	assert.Equal(t, []party.ID{"alice", "erin", "carol"}, aBoard.Owners(), "replacement is in place")
	assert.Equal(t, 2, aBoard.Threshold())
}

func TestBoardSetThreshold(t *testing.T) {
	aBoard, err := New([]party.ID{"alice", "bob", "carol"}, 2)
	require.NoError(t, err)

	assert.ErrorIs(t, aBoard.SetThreshold(0), ErrInvalidThreshold)
	assert.ErrorIs(t, aBoard.SetThreshold(4), ErrInvalidThreshold)
	assert.Equal(t, 2, aBoard.Threshold())

	require.NoError(t, aBoard.SetThreshold(3))
	assert.Equal(t, 3, aBoard.Threshold())
}

func TestBoardOwnersCopy(t *testing.T) {
	aBoard, err := New([]party.ID{"alice", "bob"}, 1)
	require.NoError(t, err)

	owners := aBoard.Owners()
	owners[0] = "mallory"
	assert.False(t, aBoard.Authorized("mallory"))
	assert.True(t, aBoard.Authorized("alice"))
}
