package service

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"workitem-resolver-backend/internal/config"
)

// fakePolarion is an httptest-backed tracking service used across the
// service tests. It counts requests per endpoint so cache behavior can be
// asserted precisely.
type fakePolarion struct {
	server *httptest.Server

	mu                 sync.Mutex
	probeRequests      int
	workItemRequests   int
	statusRequests     int
	typeRequests       int
	userRequests       int
	attachmentRequests int
	iconRequests       int

	items         map[string]map[string]interface{}
	statusOptions []map[string]interface{}
	typeOptions   []map[string]interface{}
	users         map[string]map[string]interface{}
	attachments   map[string][]byte
	icons         map[string][]byte

	workItemStatus   int // force this HTTP status on work item lookups, 0 = serve normally
	statusEnumStatus int
	userStatus       int
	workItemDelay    time.Duration
}

func newFakePolarion() *fakePolarion {
	f := &fakePolarion{
		items:       make(map[string]map[string]interface{}),
		users:       make(map[string]map[string]interface{}),
		attachments: make(map[string][]byte),
		icons:       make(map[string][]byte),
	}
	f.server = httptest.NewServer(http.HandlerFunc(f.handle))
	return f
}

func (f *fakePolarion) handle(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path

	switch {
	case path == "/polarion/rest/v1/projects":
		f.count(&f.probeRequests)
		json.NewEncoder(w).Encode(map[string]interface{}{"data": []interface{}{}})

	case path == "/polarion/rest/v1/all/workitems":
		f.count(&f.workItemRequests)
		if f.workItemDelay > 0 {
			time.Sleep(f.workItemDelay)
		}
		if f.workItemStatus != 0 {
			w.WriteHeader(f.workItemStatus)
			return
		}
		id := strings.TrimPrefix(r.URL.Query().Get("query"), "id:")
		item, ok := f.items[id]
		if !ok {
			json.NewEncoder(w).Encode(map[string]interface{}{"data": []interface{}{}})
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"data": []interface{}{item}})

	case strings.Contains(path, "/fields/status/actions/getAvailableOptions"):
		f.count(&f.statusRequests)
		if f.statusEnumStatus != 0 {
			w.WriteHeader(f.statusEnumStatus)
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"data": f.statusOptions})

	case strings.Contains(path, "/enumerations/"):
		f.count(&f.typeRequests)
		json.NewEncoder(w).Encode(map[string]interface{}{"data": f.typeOptions})

	case strings.HasPrefix(path, "/polarion/rest/v1/users/"):
		f.count(&f.userRequests)
		if f.userStatus != 0 {
			w.WriteHeader(f.userStatus)
			return
		}
		id := strings.TrimPrefix(path, "/polarion/rest/v1/users/")
		user, ok := f.users[id]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"data": user})

	case strings.Contains(path, "/attachments/") && strings.HasSuffix(path, "/content"):
		f.count(&f.attachmentRequests)
		parts := strings.Split(path, "/")
		attachmentID := parts[len(parts)-2]
		data, ok := f.attachments[attachmentID]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write(data)

	case strings.HasPrefix(path, "/icons/"):
		f.count(&f.iconRequests)
		data, ok := f.icons[path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write(data)

	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (f *fakePolarion) count(counter *int) {
	f.mu.Lock()
	*counter++
	f.mu.Unlock()
}

func (f *fakePolarion) counts() (probe, workItems, statuses, types, users, attachments, icons int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.probeRequests, f.workItemRequests, f.statusRequests, f.typeRequests,
		f.userRequests, f.attachmentRequests, f.iconRequests
}

func (f *fakePolarion) addItem(id string, fields map[string]interface{}) {
	record := map[string]interface{}{"id": id}
	for k, v := range fields {
		record[k] = v
	}
	f.items[id] = record
}

func (f *fakePolarion) close() {
	f.server.Close()
}

func (f *fakePolarion) config() *config.Config {
	return &config.Config{
		ServiceURL:             f.server.URL,
		AuthMode:               config.AuthModeBasic,
		Username:               "testuser",
		Password:               "testpass",
		RefreshIntervalMinutes: 10,
		RestartThreshold:       5,
		NotificationBudget:     3,
		RequestTimeoutSeconds:  5,
	}
}
