package crossway

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, 10, config.PriorityThreshold)
	assert.Equal(t, 5, config.LowWaterThreshold)
	assert.Equal(t, []RoadID{RoadA, RoadB, RoadC, RoadD}, config.RoadOrder)
	assert.Empty(t, config.PriorityLanes)
	assert.NoError(t, config.Validate())

	// The default order must not alias the package variable
	config.RoadOrder[0] = RoadD
	assert.Equal(t, RoadA, DefaultRoadOrder[0])
}

func TestNewIntersection_InvalidConfiguration(t *testing.T) {
	testCases := []struct {
		name string
		opts []Option
	}{
		{"negative low water", []Option{WithLowWaterThreshold(-1)}},
		{"zero low water", []Option{WithLowWaterThreshold(0)}},
		{"zero thresholds", []Option{WithLowWaterThreshold(0), WithPriorityThreshold(0)}},
		{"priority below low water", []Option{WithPriorityThreshold(3)}},
		{"priority equal to low water", []Option{WithPriorityThreshold(5), WithLowWaterThreshold(5)}},
		{"too few roads", []Option{WithRoadOrder(RoadA, RoadB)}},
		{"duplicate road", []Option{WithRoadOrder(RoadA, RoadA, RoadB, RoadC)}},
		{"unknown road", []Option{WithRoadOrder(RoadA, RoadB, RoadC, "E")}},
		{"unknown priority lane", []Option{WithPriorityLanes("EL2")}},
		{"unlit priority lane", []Option{WithPriorityLanes("AL1")}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			i, err := NewIntersection(tc.opts...)
			require.Error(t, err)
			assert.Nil(t, i)
			assert.True(t, IsConfigurationError(err), "expected configuration error, got %T", err)
			assert.Equal(t, ErrCodeInvalidConfiguration, GetErrorCode(err))
		})
	}
}

func TestNewIntersection_SmallestThresholds(t *testing.T) {
	i, err := NewIntersection(WithPriorityThreshold(2), WithLowWaterThreshold(1))
	require.NoError(t, err)

	fillLane(t, i, "CL2", 3)
	report := i.Step()

	assert.Equal(t, ModePriority, report.Mode)
	assert.Equal(t, 2, report.ServedCount())
	assertLaneSize(t, i, "CL2", 1)
}

func TestNewIntersection_CustomThresholds(t *testing.T) {
	i, err := NewIntersection(WithPriorityThreshold(4), WithLowWaterThreshold(2))
	require.NoError(t, err)

	fillLane(t, i, "BL2", 5)
	report := i.Step()

	assert.Equal(t, ModePriority, report.Mode)
	assert.Equal(t, "BL2", report.PriorityLane)
	assert.Equal(t, 3, report.ServedCount())
	assertLaneSize(t, i, "BL2", 2)
}

func TestNewIntersection_PriorityLaneOrder(t *testing.T) {
	i, err := NewIntersection(WithPriorityLanes("DL2", "BL2", "DL2"))
	require.NoError(t, err)

	assert.Equal(t, []string{"DL2", "BL2"}, i.PriorityOrder())
	assert.Equal(t, []string{"DL2", "BL2"}, i.Config().PriorityLanes[:2])
}
