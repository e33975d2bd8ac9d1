package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscription_Matches(t *testing.T) {
	sub := &Subscription{Agent: "a", Types: []string{"idea", "movie"}}
	assert.True(t, sub.Matches("idea"))
	assert.True(t, sub.Matches("movie"))
	assert.False(t, sub.Matches("script"))
}

func TestSubscription_Validate(t *testing.T) {
	key := func(a *Artifact) (string, error) { return "", nil }

	tests := []struct {
		name    string
		sub     *Subscription
		wantErr bool
	}{
		{
			name: "plain subscription",
			sub:  &Subscription{Agent: "a", Types: []string{"idea"}},
		},
		{
			name:    "missing agent",
			sub:     &Subscription{Types: []string{"idea"}},
			wantErr: true,
		},
		{
			name:    "no types",
			sub:     &Subscription{Agent: "a"},
			wantErr: true,
		},
		{
			name:    "duplicate type",
			sub:     &Subscription{Agent: "a", Types: []string{"idea", "idea"}},
			wantErr: true,
		},
		{
			name: "valid join",
			sub: &Subscription{
				Agent: "a",
				Types: []string{"payment", "shipment"},
				Join:  &JoinSpec{By: key, Within: time.Minute},
			},
		},
		{
			name: "join with single type",
			sub: &Subscription{
				Agent: "a",
				Types: []string{"payment"},
				Join:  &JoinSpec{By: key, Within: time.Minute},
			},
			wantErr: true,
		},
		{
			name: "join without key function",
			sub: &Subscription{
				Agent: "a",
				Types: []string{"payment", "shipment"},
				Join:  &JoinSpec{Within: time.Minute},
			},
			wantErr: true,
		},
		{
			name: "join without window",
			sub: &Subscription{
				Agent: "a",
				Types: []string{"payment", "shipment"},
				Join:  &JoinSpec{By: key},
			},
			wantErr: true,
		},
		{
			name: "join and batch combined",
			sub: &Subscription{
				Agent: "a",
				Types: []string{"payment", "shipment"},
				Join:  &JoinSpec{By: key, Within: time.Minute},
				Batch: &BatchSpec{Size: 3},
			},
			wantErr: true,
		},
		{
			name: "batch with size only",
			sub:  &Subscription{Agent: "a", Types: []string{"order"}, Batch: &BatchSpec{Size: 3}},
		},
		{
			name: "batch with timeout only",
			sub:  &Subscription{Agent: "a", Types: []string{"order"}, Batch: &BatchSpec{Timeout: time.Second}},
		},
		{
			name:    "batch with neither threshold",
			sub:     &Subscription{Agent: "a", Types: []string{"order"}, Batch: &BatchSpec{}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.sub.Validate()
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
		})
	}
}
