package service

import (
	"encoding/base64"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workitem-resolver-backend/internal/cache"
	apperrors "workitem-resolver-backend/internal/errors"
	"workitem-resolver-backend/internal/session"
)

func newTestService(t *testing.T, f *fakePolarion) *WorkItemService {
	t.Helper()

	svc := NewWorkItemService(f.config(), session.NewNotifier())
	require.NoError(t, svc.InitializeSession())
	return svc
}

func (f *fakePolarion) addHydratedItem() {
	f.addItem("ABC-1", map[string]interface{}{
		"title":       "Fix bug",
		"type":        "task",
		"status":      "open",
		"author":      "u1",
		"project":     "P",
		"description": "Broken on save",
	})
	f.statusOptions = []map[string]interface{}{
		{"id": "open", "name": "Open", "color": "#00FF00", "iconURL": "/icons/open.svg"},
	}
	f.typeOptions = []map[string]interface{}{
		{"id": "task", "name": "Task"},
	}
	f.users["u1"] = map[string]interface{}{
		"id": "u1", "name": "User One", "email": "u1@example.com", "initials": "UO",
	}
	f.icons["/icons/open.svg"] = []byte("<svg/>")
}

func TestResolve_SessionNotReady(t *testing.T) {
	f := newFakePolarion()
	defer f.close()
	f.addHydratedItem()

	svc := NewWorkItemService(f.config(), session.NewNotifier())

	_, err := svc.Resolve("ABC-1")
	assert.ErrorIs(t, err, apperrors.ErrSessionNotReady)

	_, workItems, _, _, _, _, _ := f.counts()
	assert.Equal(t, 0, workItems)
}

func TestResolve_MissingID(t *testing.T) {
	f := newFakePolarion()
	defer f.close()

	svc := newTestService(t, f)

	_, err := svc.Resolve("")
	assert.ErrorIs(t, err, apperrors.ErrMissingWorkItemID)
}

func TestResolve_HydratesDisplayFields(t *testing.T) {
	f := newFakePolarion()
	defer f.close()
	f.addHydratedItem()

	svc := newTestService(t, f)

	item, err := svc.Resolve("ABC-1")
	require.NoError(t, err)

	assert.Equal(t, "ABC-1", item.ID)
	assert.Equal(t, "Fix bug", item.Title)
	assert.Equal(t, "P", item.Project.ID)

	assert.Equal(t, "open", item.Status.ID)
	assert.Equal(t, "Open", item.Status.Name)
	assert.Equal(t, "#00FF00", item.Status.Color)
	expectedIcon := "data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString([]byte("<svg/>"))
	assert.Equal(t, expectedIcon, item.Status.IconPath)

	assert.Equal(t, "task", item.Type.ID)
	assert.Equal(t, "Task", item.Type.Name)

	assert.Equal(t, "u1", item.Author.ID)
	assert.Equal(t, "User One", item.Author.Name)
	assert.Equal(t, "u1@example.com", item.Author.Email)
	assert.Equal(t, "UO", item.Author.Initials)

	require.NotNil(t, item.Description)
	assert.Equal(t, "Broken on save", item.Description.Content)
}

func TestResolve_SecondCallServedFromCache(t *testing.T) {
	f := newFakePolarion()
	defer f.close()
	f.addHydratedItem()

	svc := newTestService(t, f)

	first, err := svc.Resolve("ABC-1")
	require.NoError(t, err)
	second, err := svc.Resolve("ABC-1")
	require.NoError(t, err)

	assert.Equal(t, first, second)

	_, workItems, statuses, types, users, _, _ := f.counts()
	assert.Equal(t, 1, workItems)
	assert.Equal(t, 1, statuses)
	assert.Equal(t, 1, types)
	assert.Equal(t, 1, users)
}

func TestResolve_UnknownItemCachedAsAbsent(t *testing.T) {
	f := newFakePolarion()
	defer f.close()

	svc := newTestService(t, f)

	_, err := svc.Resolve("NOPE-404")
	assert.ErrorIs(t, err, apperrors.ErrWorkItemNotFound)

	_, err = svc.Resolve("NOPE-404")
	assert.ErrorIs(t, err, apperrors.ErrWorkItemNotFound)

	_, workItems, _, _, _, _, _ := f.counts()
	assert.Equal(t, 1, workItems)
	assert.Equal(t, 0, svc.ExceptionCount())
}

func TestResolve_StaleEntryTriggersRefetch(t *testing.T) {
	f := newFakePolarion()
	defer f.close()
	f.addHydratedItem()

	svc := newTestService(t, f)

	// Plant an already-aged entry in the session store
	b := svc.currentBundle()
	shortTier := cache.NewTierCache[WorkItem](b.sess.Store(), 10*time.Millisecond)
	shortTier.StoreValue(cache.WorkItemKey("ABC-1"), WorkItem{ID: "ABC-1", Title: "stale title"})

	time.Sleep(30 * time.Millisecond)

	item, err := svc.Resolve("ABC-1")
	require.NoError(t, err)
	assert.Equal(t, "Fix bug", item.Title)

	_, workItems, _, _, _, _, _ := f.counts()
	assert.Equal(t, 1, workItems)
}

func TestResolve_ConcurrentColdLookupsCoalesce(t *testing.T) {
	f := newFakePolarion()
	defer f.close()
	f.addHydratedItem()
	f.workItemDelay = 100 * time.Millisecond

	svc := newTestService(t, f)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			item, err := svc.Resolve("ABC-1")
			assert.NoError(t, err)
			assert.Equal(t, "Fix bug", item.Title)
		}()
	}
	wg.Wait()

	_, workItems, _, _, _, _, _ := f.counts()
	assert.Equal(t, 1, workItems)
}

func TestResolve_TransportFailureDegradesToAbsent(t *testing.T) {
	f := newFakePolarion()
	defer f.close()

	svc := newTestService(t, f)
	f.workItemStatus = http.StatusInternalServerError

	_, err := svc.Resolve("ABC-1")
	assert.ErrorIs(t, err, apperrors.ErrWorkItemNotFound)
	assert.Equal(t, 1, svc.ExceptionCount())

	// The absent result is cached: no refetch within the refresh window
	_, err = svc.Resolve("ABC-1")
	assert.ErrorIs(t, err, apperrors.ErrWorkItemNotFound)

	_, workItems, _, _, _, _, _ := f.counts()
	assert.Equal(t, 1, workItems)
	assert.Equal(t, 1, svc.ExceptionCount())
}

func TestResolve_AuthFailureNotExceptionCounted(t *testing.T) {
	f := newFakePolarion()
	defer f.close()

	svc := newTestService(t, f)
	f.workItemStatus = http.StatusUnauthorized

	_, err := svc.Resolve("ABC-1")
	assert.ErrorIs(t, err, apperrors.ErrWorkItemNotFound)
	assert.Equal(t, 0, svc.ExceptionCount())

	probes, _, _, _, _, _, _ := f.counts()
	assert.Equal(t, 1, probes)
}

func TestResolve_ThresholdRecreatesSession(t *testing.T) {
	f := newFakePolarion()
	defer f.close()

	cfg := f.config()
	cfg.RestartThreshold = 2

	svc := NewWorkItemService(cfg, session.NewNotifier())
	require.NoError(t, svc.InitializeSession())

	f.workItemStatus = http.StatusInternalServerError

	// Failures one and two only count
	_, err := svc.Resolve("X-1")
	assert.ErrorIs(t, err, apperrors.ErrWorkItemNotFound)
	_, err = svc.Resolve("X-2")
	assert.ErrorIs(t, err, apperrors.ErrWorkItemNotFound)
	assert.Equal(t, 2, svc.ExceptionCount())

	probes, _, _, _, _, _, _ := f.counts()
	assert.Equal(t, 1, probes)

	// The third consecutive failure crosses the threshold
	_, err = svc.Resolve("X-3")
	assert.ErrorIs(t, err, apperrors.ErrWorkItemNotFound)

	assert.Equal(t, 0, svc.ExceptionCount())
	assert.True(t, svc.SessionInitialized())

	probes, _, _, _, _, _, _ = f.counts()
	assert.Equal(t, 2, probes)
}

func TestResolve_RecreationStartsWithFreshCaches(t *testing.T) {
	f := newFakePolarion()
	defer f.close()
	f.addHydratedItem()

	cfg := f.config()
	cfg.RestartThreshold = 1

	svc := NewWorkItemService(cfg, session.NewNotifier())
	require.NoError(t, svc.InitializeSession())

	item, err := svc.Resolve("ABC-1")
	require.NoError(t, err)
	require.Equal(t, "Fix bug", item.Title)

	f.workItemStatus = http.StatusInternalServerError
	_, err = svc.Resolve("X-1")
	assert.ErrorIs(t, err, apperrors.ErrWorkItemNotFound)
	_, err = svc.Resolve("X-2")
	assert.ErrorIs(t, err, apperrors.ErrWorkItemNotFound)

	// The replacement session owns an empty store, so the previously
	// cached item is fetched again
	f.workItemStatus = 0
	_, err = svc.Resolve("ABC-1")
	require.NoError(t, err)

	_, workItems, _, _, _, _, _ := f.counts()
	assert.Equal(t, 4, workItems)
}

func TestResolveURL(t *testing.T) {
	f := newFakePolarion()
	defer f.close()
	f.addHydratedItem()

	svc := newTestService(t, f)

	itemURL, err := svc.ResolveURL("ABC-1")
	require.NoError(t, err)
	assert.Equal(t, f.server.URL+"/polarion/#/project/P/workitem?id=ABC-1", itemURL)

	_, err = svc.ResolveURL("NOPE-404")
	assert.ErrorIs(t, err, apperrors.ErrWorkItemNotFound)
}

func TestFetchAttachment(t *testing.T) {
	f := newFakePolarion()
	defer f.close()
	f.addHydratedItem()
	f.attachments["att1"] = []byte{0x89, 0x50, 0x4e, 0x47}

	svc := newTestService(t, f)

	payload, err := svc.FetchAttachment("ABC-1", "att1")
	require.NoError(t, err)
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte{0x89, 0x50, 0x4e, 0x47}), payload)

	// Cached on repeat
	_, err = svc.FetchAttachment("ABC-1", "att1")
	require.NoError(t, err)

	_, _, _, _, _, attachments, _ := f.counts()
	assert.Equal(t, 1, attachments)
}

func TestFetchAttachment_Errors(t *testing.T) {
	f := newFakePolarion()
	defer f.close()
	f.addHydratedItem()

	svc := newTestService(t, f)

	_, err := svc.FetchAttachment("ABC-1", "")
	assert.ErrorIs(t, err, apperrors.ErrMissingAttachmentID)

	_, err = svc.FetchAttachment("ABC-1", "no-such-attachment")
	assert.ErrorIs(t, err, apperrors.ErrAttachmentNotFound)

	_, err = svc.FetchAttachment("NOPE-404", "att1")
	assert.ErrorIs(t, err, apperrors.ErrWorkItemNotFound)
}

func TestClearCache(t *testing.T) {
	f := newFakePolarion()
	defer f.close()
	f.addHydratedItem()

	svc := newTestService(t, f)

	_, err := svc.Resolve("ABC-1")
	require.NoError(t, err)

	require.NoError(t, svc.ClearCache())

	_, err = svc.Resolve("ABC-1")
	require.NoError(t, err)

	_, workItems, _, _, _, _, _ := f.counts()
	assert.Equal(t, 2, workItems)
}
