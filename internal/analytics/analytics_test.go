package analytics

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestManager(t *testing.T) *AnalyticsManager {
	t.Helper()
	m, err := NewAnalyticsManager(filepath.Join(t.TempDir(), "analytics.db"), zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = m.Close()
	})
	return m
}

func TestNewEntryAndRecent(t *testing.T) {
	m := newTestManager(t)

	require.NoError(t, m.NewEntry(0, "I wan", "want", "I want "))
	require.NoError(t, m.NewEntry(2, "I want to go ho", "home", "I want to go home "))

	entries, err := m.GetRecentEntries(10)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// newest first
	assert.Equal(t, "home", entries[0].Prediction)
	assert.Equal(t, 2, entries[0].Slot)
	assert.Equal(t, "want", entries[1].Prediction)
	assert.Equal(t, m.SessionID(), entries[0].SessionID)
	assert.NotEmpty(t, m.SessionID())

	limited, err := m.GetRecentEntries(1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestCountBySlot(t *testing.T) {
	m := newTestManager(t)
	m.RecordAcceptance(0, "a", "and", "and ")
	m.RecordAcceptance(0, "t", "the", "the ")
	m.RecordAcceptance(1, "w", "with", "with ")

	counts, err := m.CountBySlot()
	require.NoError(t, err)
	assert.Equal(t, []SlotCount{{Slot: 0, Count: 2}, {Slot: 1, Count: 1}}, counts)

	total, err := m.GetTotalCount()
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
}

func TestDeleteAndReset(t *testing.T) {
	m := newTestManager(t)
	require.NoError(t, m.NewEntry(0, "a", "and", "and "))
	require.NoError(t, m.NewEntry(1, "b", "be", "be "))

	entries, err := m.GetRecentEntries(10)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	require.NoError(t, m.DeleteEntry(entries[0].ID))
	assert.ErrorIs(t, m.DeleteEntry(entries[0].ID), ErrEntryNotFound)

	total, err := m.GetTotalCount()
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	require.NoError(t, m.ResetAnalytics())
	total, err = m.GetTotalCount()
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestSessionsAreDistinct(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "analytics.db")

	first, err := NewAnalyticsManager(path, nil)
	require.NoError(t, err)
	defer first.Close()
	second, err := NewAnalyticsManager(path, nil)
	require.NoError(t, err)
	defer second.Close()

	assert.NotEqual(t, first.SessionID(), second.SessionID())
}

func TestPrintEntries(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, PrintEntries(&buf, nil, time.Now()))
		assert.Equal(t, "No analytics entries found.\n", buf.String())
	})

	t.Run("table", func(t *testing.T) {
		now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
		entries := []AnalyticsEntry{
			{ID: 7, CreatedAt: now.Add(-3 * time.Minute), Slot: 1, Input: "hello wor", Prediction: "world", Actual: "hello world "},
		}

		var buf bytes.Buffer
		require.NoError(t, PrintEntries(&buf, entries, now))

		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		require.Len(t, lines, 3)
		assert.Contains(t, lines[0], "PREDICTION")
		assert.Contains(t, lines[2], "3 minutes ago")
		assert.Contains(t, lines[2], "world")
		assert.Contains(t, lines[2], "hello world")
	})
}

func TestPrintSummary(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PrintSummary(&buf, 1200, []SlotCount{{Slot: 0, Count: 900}, {Slot: 2, Count: 300}}))

	out := buf.String()
	assert.Contains(t, out, "Total accepted suggestions: 1,200")
	assert.Contains(t, out, "slot 1: 900 (75%)")
	assert.Contains(t, out, "slot 3: 300 (25%)")
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in     string
		maxLen int
		want   string
	}{
		{"short", 10, "short"},
		{"line one\nline two", 40, "line one line two"},
		{"abcdefghij", 6, "abc..."},
		{"abcdef", 2, "ab"},
		{"日本語テキスト", 7, "日本..."},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, truncate(tt.in, tt.maxLen))
		})
	}
}
