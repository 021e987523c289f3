package worker

import (
	"testing"

	"github.com/ohmynofan/drops-autoclaimer/internal/domain/model"
	"github.com/stretchr/testify/assert"
)

func TestParseProgress(t *testing.T) {
	cases := []struct {
		text    string
		percent int
		minutes int
	}{
		{"30% 45 minutes", 30, 45},
		{"55% 2 hours 10 minutes", 55, 130},
		{"0% 1 hour", 0, 60},
		{"100%", 100, 0},
		{"", -1, 0},
		{"almost done", -1, 0},
	}
	for _, tc := range cases {
		t.Run(tc.text, func(t *testing.T) {
			percent, minutes := parseProgress(tc.text)
			assert.Equal(t, tc.percent, percent)
			assert.Equal(t, tc.minutes, minutes)
		})
	}
}

func TestSampleFromUsesSlowestItem(t *testing.T) {
	sample := sampleFrom(inventoryScan{Blocks: []inventoryBlock{{Items: []inventoryItem{
		progressItem("Hat", "30% 45 minutes"),
		progressItem("Coat", "55% 2 hours 10 minutes"),
		{Name: "Boots", Claimed: true},
	}}}})

	assert.Equal(t, model.ProgressSample{
		RewardAvailable: true,
		LongestMinutes:  130,
		Percentage:      55,
		Claimed:         []string{"Boots"},
	}, sample)
}

func TestSampleFromKeepsFirstOnTies(t *testing.T) {
	sample := sampleFrom(inventoryScan{Blocks: []inventoryBlock{{Items: []inventoryItem{
		progressItem("Hat", "20% 1 hour"),
		progressItem("Coat", "40% 60 minutes"),
	}}}})
	assert.Equal(t, 20, sample.Percentage)
}

func TestSampleFromWithoutMeasurableItems(t *testing.T) {
	assert.False(t, sampleFrom(inventoryScan{}).RewardAvailable)

	sample := sampleFrom(inventoryScan{Blocks: []inventoryBlock{{Items: []inventoryItem{
		{Name: "Boots", Claimed: true},
	}}}})
	assert.False(t, sample.RewardAvailable)
	assert.Equal(t, []string{"Boots"}, sample.Claimed)
}
