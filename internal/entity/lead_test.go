package entity_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/edustride/crm-backend/internal/entity"
)

func TestNewLead(t *testing.T) {
	lead, err := entity.NewLead("  Aarav  ")
	require.NoError(t, err)

	assert.Equal(t, "Aarav", lead.StudentName)
	assert.Equal(t, entity.StatusNew, lead.Status)
	assert.Equal(t, entity.StageCounselor, lead.OwnerStage)
	assert.NotEmpty(t, lead.ID)

	_, err = entity.NewLead("   ")
	assert.Error(t, err)
}

func TestStatusValidity(t *testing.T) {
	assert.True(t, entity.StatusNew.Valid())
	assert.True(t, entity.StatusDropped.Valid())
	assert.False(t, entity.LeadStatus("archived").Valid())

	assert.True(t, entity.StatusJoined.Terminal())
	assert.True(t, entity.StatusDropped.Terminal())
	assert.False(t, entity.StatusPaymentPending.Terminal())
}

func TestAdjacentTransition(t *testing.T) {
	tests := []struct {
		from, to entity.LeadStatus
		adjacent bool
	}{
		{entity.StatusNew, entity.StatusContacted, true},
		{entity.StatusContacted, entity.StatusDemoScheduled, true},
		{entity.StatusPaymentVerification, entity.StatusJoined, true},
		{entity.StatusNew, entity.StatusDropped, true},
		{entity.StatusDemoDone, entity.StatusDemoDone, true},
		{entity.StatusNew, entity.StatusDemoDone, false},
		{entity.StatusContacted, entity.StatusJoined, false},
		{entity.StatusJoined, entity.StatusContacted, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.adjacent, entity.AdjacentTransition(tt.from, tt.to),
			"%s -> %s", tt.from, tt.to)
	}
}
