package dto

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewNextBillingTimeResponseFormats(t *testing.T) {
	at := time.Date(2026, time.March, 15, 9, 30, 0, 0, time.UTC)

	resp := NewNextBillingTimeResponse(at)

	assert.Equal(t, "2026-03-15T09:30:00Z", resp.Zulu)
	assert.Equal(t, "March 15, 2026", resp.Human)
	assert.Equal(t, at.Unix(), resp.Raw)
	assert.Equal(t, "2026-03-15 09:30:00", resp.Ymdhis)
	assert.Equal(t, "will be billed on March 15, 2026", resp.WillBeBilledOn)
}

func TestNewNextBillingTimeResponseNormalizesToUTC(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*60*60)
	at := time.Date(2026, time.March, 15, 2, 0, 0, 0, loc)

	resp := NewNextBillingTimeResponse(at)

	assert.Equal(t, "2026-03-14T21:00:00Z", resp.Zulu)
	assert.Equal(t, "will be billed on March 14, 2026", resp.WillBeBilledOn)
}
