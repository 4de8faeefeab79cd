package model

import (
    "testing"

    "github.com/stretchr/testify/assert"
)

func TestStatusRankOrdering(t *testing.T) {
    ordered := []Status{
        StatusQueued,
        StatusSending,
        StatusSent,
        StatusDelivered,
        StatusOpened,
        StatusClicked,
        StatusBounced,
        StatusComplained,
        StatusFailed,
    }

    for i := 1; i < len(ordered); i++ {
        assert.Greater(t, ordered[i].Rank(), ordered[i-1].Rank(),
            "%s should outrank %s", ordered[i], ordered[i-1])
    }
}

func TestStatusRankEdgeCases(t *testing.T) {
    assert.Equal(t, -1, Status("").Rank())
    assert.Equal(t, 0, Status("mystery").Rank())
    assert.Equal(t, 10, StatusQueued.Rank())
    assert.Equal(t, 90, StatusFailed.Rank())
}
