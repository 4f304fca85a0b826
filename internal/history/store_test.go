package history

import (
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khanhnv2901/seca-scan/internal/domain/scan"
)

func sampleResult(url string) scan.Result {
	return scan.Result{
		URL:       url,
		Findings:  []scan.Finding{{Type: scan.FindingExposedAdminLogin, Count: 1, Details: []string{"/admin or /login found in HTML"}}},
		RiskScore: 3,
		RiskLevel: scan.RiskMedium,
		Tips:      []string{"Restrict access to admin panels and hide them from public."},
	}
}

func TestNewStore_Empty(t *testing.T) {
	s := NewStore(0)
	assert.Equal(t, 0, s.Len())
	list := s.List()
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestStore_AppendAssignsIDAndTime(t *testing.T) {
	s := NewStore(0)
	fixed := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	rec := s.Append(sampleResult("https://example.com"))

	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, fixed, rec.ScannedAt)
	assert.Equal(t, "https://example.com", rec.URL)
	assert.Equal(t, 1, s.Len())
}

func TestStore_ListKeepsInsertionOrder(t *testing.T) {
	s := NewStore(0)
	for i := 0; i < 5; i++ {
		s.Append(sampleResult(fmt.Sprintf("https://example.com/%d", i)))
	}

	list := s.List()
	require.Len(t, list, 5)
	for i, rec := range list {
		assert.Equal(t, fmt.Sprintf("https://example.com/%d", i), rec.URL)
	}

	// the returned slice is a copy
	list[0].URL = "mutated"
	assert.Equal(t, "https://example.com/0", s.List()[0].URL)
}

func TestStore_MaxEntriesDropsOldest(t *testing.T) {
	s := NewStore(2)
	s.Append(sampleResult("https://a.example"))
	s.Append(sampleResult("https://b.example"))
	s.Append(sampleResult("https://c.example"))

	list := s.List()
	require.Len(t, list, 2)
	assert.Equal(t, "https://b.example", list[0].URL)
	assert.Equal(t, "https://c.example", list[1].URL)
}

func TestStore_UniqueIDs(t *testing.T) {
	s := NewStore(0)
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		rec := s.Append(sampleResult("https://example.com"))
		require.False(t, seen[rec.ID], "duplicate id %s", rec.ID)
		seen[rec.ID] = true
	}
}

func TestStore_ConcurrentAppend(t *testing.T) {
	s := NewStore(0)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.Append(sampleResult(fmt.Sprintf("https://example.com/%d", i)))
			_ = s.List()
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 20, s.Len())
}

func TestStore_Subscribe(t *testing.T) {
	s := NewStore(0)
	ch, unsubscribe := s.Subscribe()

	rec := s.Append(sampleResult("https://example.com"))

	select {
	case got := <-ch:
		assert.Equal(t, rec.ID, got.ID)
	case <-time.After(time.Second):
		t.Fatal("expected record on subscription channel")
	}

	unsubscribe()
	unsubscribe()
	_, open := <-ch
	assert.False(t, open, "channel should be closed after unsubscribe")

	// appends after unsubscribe must not panic
	s.Append(sampleResult("https://example.com/after"))
}

func TestStore_SlowSubscriberDoesNotBlock(t *testing.T) {
	s := NewStore(0)
	_, unsubscribe := s.Subscribe()
	defer unsubscribe()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 50; i++ {
			s.Append(sampleResult("https://example.com"))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("append blocked on a full subscriber")
	}
}

func TestRecord_JSONFlattensResult(t *testing.T) {
	rec := Record{
		ID:        "abc",
		ScannedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Result:    sampleResult("https://example.com"),
	}
	data, err := json.Marshal(rec)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	for _, key := range []string{"id", "scanned_at", "url", "vulnerabilities", "risk_score", "risk_level", "tips"} {
		assert.Contains(t, decoded, key)
	}
	assert.NotContains(t, decoded, "Result")
}
