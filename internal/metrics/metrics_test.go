package metrics

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errAPI = errors.New("api down")

func TestRecordDonation(t *testing.T) {
	t.Parallel()
	m := New()

	m.RecordDonation("submitted")
	m.RecordDonation("rejected")
	m.RecordDonation("submitted")

	assert.InDelta(t, 2.0, testutil.ToFloat64(m.donationsTotal.WithLabelValues("submitted")), 0.001)
	assert.InDelta(t, 1.0, testutil.ToFloat64(m.donationsTotal.WithLabelValues("rejected")), 0.001)

	snap := m.Snapshot()
	assert.InDelta(t, 3.0, snap.DonationsTotal, 0.001)
	assert.InDelta(t, 2.0, snap.DonationsSubmitted, 0.001)
}

func TestRecordStageFailure(t *testing.T) {
	t.Parallel()
	m := New()

	m.RecordStageFailure("checking_network")
	assert.InDelta(t, 1.0, testutil.ToFloat64(m.stageFailures.WithLabelValues("checking_network")), 0.001)
}

func TestRecordProviderRequest(t *testing.T) {
	t.Parallel()
	m := New()

	m.RecordProviderRequest("eth_accounts", 100*time.Millisecond, ResultOK)
	m.RecordProviderRequest("eth_sendTransaction", 2*time.Second, ResultRPCError)
	m.RecordProviderRequest("net_version", 50*time.Millisecond, ResultError)

	snap := m.Snapshot()
	assert.InDelta(t, 3.0, snap.ProviderRequestsTotal, 0.001)
	assert.InDelta(t, 2.0, snap.ProviderRequestErrors, 0.001)
	assert.InDelta(t, 2.15, snap.ProviderLatencySeconds, 0.001)
}

func TestRecordAPIRequest(t *testing.T) {
	t.Parallel()
	m := New()

	m.RecordAPIRequest("quote", nil)
	m.RecordAPIRequest("verify", errAPI)

	snap := m.Snapshot()
	assert.InDelta(t, 2.0, snap.APIRequestsTotal, 0.001)
	assert.InDelta(t, 1.0, snap.APIRequestErrors, 0.001)
}

func TestSnapshotEmpty(t *testing.T) {
	t.Parallel()
	assert.Equal(t, Snapshot{}, New().Snapshot())
}

func TestWriteText(t *testing.T) {
	t.Parallel()
	m := New()
	m.RecordDonation("failed")

	var buf bytes.Buffer
	require.NoError(t, m.WriteText(&buf))
	assert.Contains(t, buf.String(), `ethpkg_donations_total{status="failed"} 1`)
}

func TestRegistryIsPrivate(t *testing.T) {
	t.Parallel()
	a, b := New(), New()
	a.RecordDonation("submitted")
	assert.InDelta(t, 0.0, b.Snapshot().DonationsTotal, 0.001)
	assert.NotNil(t, a.Registry())
}
