package tracker

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aleister1102/pagewatch/internal/config"
	"github.com/aleister1102/pagewatch/internal/models"
)

// recordingNotifier captures page change notifications instead of
// delivering them.
type recordingNotifier struct {
	mu    sync.Mutex
	infos []models.PageChangeInfo
}

func (rn *recordingNotifier) SendPageChangeNotification(_ context.Context, info models.PageChangeInfo) {
	rn.mu.Lock()
	defer rn.mu.Unlock()
	rn.infos = append(rn.infos, info)
}

func (rn *recordingNotifier) sent() []models.PageChangeInfo {
	rn.mu.Lock()
	defer rn.mu.Unlock()
	return append([]models.PageChangeInfo(nil), rn.infos...)
}

// mutablePage is an httptest server whose embedded JSON payload can be
// swapped between runs.
type mutablePage struct {
	server  *httptest.Server
	mu      sync.Mutex
	payload string
}

func newMutablePage(t *testing.T, payload string) *mutablePage {
	t.Helper()
	page := &mutablePage{payload: payload}
	page.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page.mu.Lock()
		body := page.payload
		page.mu.Unlock()
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprintf(w, `<html><body><script id="__NEXT_DATA__" type="application/json">%s</script></body></html>`, body)
	}))
	t.Cleanup(page.server.Close)
	return page
}

func (mp *mutablePage) setPayload(payload string) {
	mp.mu.Lock()
	mp.payload = payload
	mp.mu.Unlock()
}

func newTestComponents(t *testing.T, pages []config.PageConfig, notifier ChangeNotifier) *Components {
	t.Helper()
	gCfg := config.NewDefaultGlobalConfig()
	gCfg.Pages = pages
	gCfg.StorageConfig.SnapshotDir = t.TempDir()
	gCfg.StorageConfig.ChangeLogDir = t.TempDir()
	gCfg.StorageConfig.HistoryDBPath = filepath.Join(t.TempDir(), "history.db")
	gCfg.TrackerConfig.MaxConcurrentChecks = 2

	components, err := Build(gCfg, zerolog.Nop(), notifier)
	require.NoError(t, err)
	t.Cleanup(components.Close)
	return components
}

func TestTracker_Run_FirstObservationStoresBaseline(t *testing.T) {
	page := newMutablePage(t, `{"props":{"title":"Hello"}}`)
	notifier := &recordingNotifier{}
	components := newTestComponents(t, []config.PageConfig{
		{ID: "landing", URL: page.server.URL},
	}, notifier)

	summary, err := components.Tracker.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, models.RunStatusCompleted, summary.Status)
	require.Len(t, summary.Outcomes, 1)
	assert.Equal(t, models.PageStatusBaseline, summary.Outcomes[0].Status)

	// The baseline produces no notification, but the snapshot must exist
	// so the next run has something to diff against.
	assert.Empty(t, notifier.sent())
	snapshot, err := components.SnapshotStore.Get("landing")
	require.NoError(t, err)
	assert.NotNil(t, snapshot.Data)
}

func TestTracker_Run_SecondRunReportsChanges(t *testing.T) {
	page := newMutablePage(t, `{"props":{"title":"Hello","price":10}}`)
	notifier := &recordingNotifier{}
	components := newTestComponents(t, []config.PageConfig{
		{ID: "shop", URL: page.server.URL},
	}, notifier)

	_, err := components.Tracker.Run(context.Background())
	require.NoError(t, err)

	page.setPayload(`{"props":{"title":"Hello","price":12}}`)
	summary, err := components.Tracker.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, models.RunStatusCompleted, summary.Status)
	require.Len(t, summary.Outcomes, 1)
	assert.Equal(t, models.PageStatusChanged, summary.Outcomes[0].Status)
	assert.Equal(t, 1, summary.Outcomes[0].ChangeCount)
	assert.Equal(t, 1, summary.PagesChanged)

	sent := notifier.sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "shop", sent[0].PageID)
	assert.Equal(t, 1, sent[0].ModifiedCount)
	assert.Contains(t, sent[0].ReportBody, "props.price: 10 -> 12")

	// The change is also appended to the change log.
	require.NotNil(t, components.ChangeLog)
	records, err := components.ChangeLog.GetRecordsForPage("shop", 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "props.price", records[0].Path)
}

func TestTracker_Run_UnchangedPageStaysQuiet(t *testing.T) {
	page := newMutablePage(t, `{"props":{"title":"Stable"}}`)
	notifier := &recordingNotifier{}
	components := newTestComponents(t, []config.PageConfig{
		{ID: "stable", URL: page.server.URL},
	}, notifier)

	_, err := components.Tracker.Run(context.Background())
	require.NoError(t, err)
	summary, err := components.Tracker.Run(context.Background())

	require.NoError(t, err)
	require.Len(t, summary.Outcomes, 1)
	assert.Equal(t, models.PageStatusUnchanged, summary.Outcomes[0].Status)
	assert.Empty(t, notifier.sent())
}

func TestTracker_Run_NotModifiedResponseSkipsPipeline(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		if r.Header.Get("If-None-Match") == `"v1"` {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("ETag", `"v1"`)
		fmt.Fprint(w, `<html><body><script id="__NEXT_DATA__" type="application/json">{"v":1}</script></body></html>`)
	}))
	defer server.Close()

	notifier := &recordingNotifier{}
	components := newTestComponents(t, []config.PageConfig{
		{ID: "cached", URL: server.URL},
	}, notifier)

	_, err := components.Tracker.Run(context.Background())
	require.NoError(t, err)
	summary, err := components.Tracker.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int32(2), requests.Load())
	require.Len(t, summary.Outcomes, 1)
	assert.Equal(t, models.PageStatusUnchanged, summary.Outcomes[0].Status)
	assert.Empty(t, notifier.sent())

	// The stored validators survive the 304 so the next fetch stays
	// conditional.
	snapshot, err := components.SnapshotStore.Get("cached")
	require.NoError(t, err)
	assert.Equal(t, `"v1"`, snapshot.ETag)
}

func TestTracker_Run_OneFailingPageDoesNotStopOthers(t *testing.T) {
	good := newMutablePage(t, `{"ok":true}`)
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusInternalServerError)
	}))
	defer bad.Close()

	notifier := &recordingNotifier{}
	components := newTestComponents(t, []config.PageConfig{
		{ID: "good", URL: good.server.URL},
		{ID: "bad", URL: bad.URL},
	}, notifier)

	summary, err := components.Tracker.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, models.RunStatusPartial, summary.Status)
	assert.Equal(t, 1, summary.PagesFailed)
	require.Len(t, summary.Outcomes, 2)

	outcomesByID := make(map[string]models.PageOutcome, len(summary.Outcomes))
	for _, outcome := range summary.Outcomes {
		outcomesByID[outcome.PageID] = outcome
	}
	assert.Equal(t, models.PageStatusBaseline, outcomesByID["good"].Status)
	assert.Equal(t, models.PageStatusFailed, outcomesByID["bad"].Status)
	assert.Equal(t, models.StageFetch, outcomesByID["bad"].FailedStage)
	assert.Contains(t, outcomesByID["bad"].Error, "500")
}

func TestTracker_Run_MissingDataScriptFailsAtExtract(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><p>no payload here</p></body></html>`)
	}))
	defer server.Close()

	components := newTestComponents(t, []config.PageConfig{
		{ID: "plain", URL: server.URL},
	}, &recordingNotifier{})

	summary, err := components.Tracker.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, models.RunStatusFailed, summary.Status)
	require.Len(t, summary.Outcomes, 1)
	assert.Equal(t, models.PageStatusFailed, summary.Outcomes[0].Status)
	assert.Equal(t, models.StageExtract, summary.Outcomes[0].FailedStage)
}

func TestTracker_Run_TextModeProducesDiffExcerpt(t *testing.T) {
	content := "Old price applies today"
	var mu sync.Mutex
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		body := content
		mu.Unlock()
		fmt.Fprintf(w, `<html><body><p>%s</p></body></html>`, body)
	}))
	defer server.Close()

	notifier := &recordingNotifier{}
	components := newTestComponents(t, []config.PageConfig{
		{ID: "prose", URL: server.URL, Mode: "text"},
	}, notifier)

	_, err := components.Tracker.Run(context.Background())
	require.NoError(t, err)

	mu.Lock()
	content = "New price applies today"
	mu.Unlock()
	summary, err := components.Tracker.Run(context.Background())

	require.NoError(t, err)
	require.Len(t, summary.Outcomes, 1)
	assert.Equal(t, models.PageStatusChanged, summary.Outcomes[0].Status)

	sent := notifier.sent()
	require.Len(t, sent, 1)
	assert.True(t, strings.HasPrefix(sent[0].DiffExcerpt, "```diff"))
	assert.Contains(t, sent[0].DiffExcerpt, "New")
}

func TestTracker_Run_ExtractionPathNarrowsPayload(t *testing.T) {
	page := newMutablePage(t, `{"props":{"pageProps":{"title":"Focus"},"junk":{"x":1}}}`)
	notifier := &recordingNotifier{}
	components := newTestComponents(t, []config.PageConfig{
		{ID: "narrow", URL: page.server.URL, ExtractionPaths: []string{"props.pageProps"}},
	}, notifier)

	_, err := components.Tracker.Run(context.Background())
	require.NoError(t, err)

	// Changes outside the extraction path are invisible.
	page.setPayload(`{"props":{"pageProps":{"title":"Focus"},"junk":{"x":2}}}`)
	summary, err := components.Tracker.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.PageStatusUnchanged, summary.Outcomes[0].Status)

	page.setPayload(`{"props":{"pageProps":{"title":"Shifted"},"junk":{"x":2}}}`)
	summary, err = components.Tracker.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.PageStatusChanged, summary.Outcomes[0].Status)

	sent := notifier.sent()
	require.Len(t, sent, 1)
	assert.Contains(t, sent[0].ReportBody, `title: "Focus" -> "Shifted"`)
}

func TestTracker_Run_RecordsRunHistory(t *testing.T) {
	page := newMutablePage(t, `{"n":1}`)
	components := newTestComponents(t, []config.PageConfig{
		{ID: "hist", URL: page.server.URL},
	}, &recordingNotifier{})

	_, err := components.Tracker.Run(context.Background())
	require.NoError(t, err)

	require.NotNil(t, components.RunHistory)
	entries, err := components.RunHistory.GetRecentRuns(5)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, string(models.RunStatusCompleted), entries[0].Status)
	assert.Equal(t, 1, entries[0].PagesChecked)
	assert.True(t, entries[0].CompletedAt.Valid)
}

func TestTracker_Run_NoPagesCompletesImmediately(t *testing.T) {
	components := newTestComponents(t, nil, &recordingNotifier{})

	summary, err := components.Tracker.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, models.RunStatusCompleted, summary.Status)
	assert.Empty(t, summary.Outcomes)
}

func TestTracker_Run_CancelledContextInterruptsRun(t *testing.T) {
	page := newMutablePage(t, `{"n":1}`)
	components := newTestComponents(t, []config.PageConfig{
		{ID: "a", URL: page.server.URL},
		{ID: "b", URL: page.server.URL},
	}, &recordingNotifier{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	summary, err := components.Tracker.Run(ctx)

	require.NoError(t, err)
	assert.Equal(t, models.RunStatusInterrupted, summary.Status)
}

func TestResolveRunStatus(t *testing.T) {
	ctx := context.Background()

	completed := &models.RunSummary{Outcomes: make([]models.PageOutcome, 3)}
	assert.Equal(t, models.RunStatusCompleted, resolveRunStatus(ctx, completed))

	partial := &models.RunSummary{PagesFailed: 1, Outcomes: make([]models.PageOutcome, 3)}
	assert.Equal(t, models.RunStatusPartial, resolveRunStatus(ctx, partial))

	failed := &models.RunSummary{PagesFailed: 2, Outcomes: make([]models.PageOutcome, 2)}
	assert.Equal(t, models.RunStatusFailed, resolveRunStatus(ctx, failed))

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Equal(t, models.RunStatusInterrupted, resolveRunStatus(cancelled, completed))
}
