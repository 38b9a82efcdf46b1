package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gridpoint/facilitymap-core/internal/infrastructure/config"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := config.BackendConfig{
		BaseURL: srv.URL,
		Timeout: 5,
		Endpoints: config.EndpointsConfig{
			Sitemap:        "/sitemap",
			Assets:         "/assets",
			AssetTypes:     "/asset_types",
			AssetTypeProps: "/asset_type_props",
			AssetIcons:     "/asset_icons",
			Rooms:          "/roomdata/{locationPath}",
			Sidebar:        "/sidebar/{locationPath}",
			Warnings:       "/faults/{locationPath}",
			User:           "/user",
			UserRights:     "/user_rights",
			DeskBooking:    "/book_desk",
		},
	}
	return NewClient(cfg, nil)
}

func jsonHandler(t *testing.T, wantPath, payload string) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if wantPath != "" && r.URL.Path != wantPath {
			t.Errorf("path = %q, want %q", r.URL.Path, wantPath)
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, payload)
	})
}

func TestSitemapFailureYieldsEmptyMap(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	raw, err := c.Sitemap(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if raw == nil || len(raw) != 0 {
		t.Errorf("raw = %v, want empty non-nil map", raw)
	}
}

func TestSitemapDecodes(t *testing.T) {
	c := newTestClient(t, jsonHandler(t, "/sitemap",
		`{"b1":{"id":"b1","name":"North","type":"Building"}}`))

	raw, err := c.Sitemap(context.Background())
	if err != nil {
		t.Fatalf("Sitemap: %v", err)
	}
	if raw["b1"] == nil || raw["b1"].Name != "North" {
		t.Errorf("raw = %v, want b1/North", raw)
	}
}

func TestRoomsValidPayload(t *testing.T) {
	c := newTestClient(t, jsonHandler(t, "/roomdata/b1/f1", `{
		"f1": {
			"room-1": {
				"name": "Boardroom",
				"type": "meeting",
				"unitId": "UNIT1",
				"polygon": [[4.1,52.1],[4.2,52.1],[4.2,52.2]]
			}
		}
	}`))

	rooms, err := c.Rooms(context.Background(), "b1/f1")
	if err != nil {
		t.Fatalf("Rooms: %v", err)
	}
	room, ok := rooms["f1"]["room-1"]
	if !ok {
		t.Fatal("room-1 missing")
	}
	if room.Type != "meeting" || room.UnitID != "UNIT1" || len(room.Polygon) != 3 {
		t.Errorf("room = %+v", room)
	}
}

func TestRoomsStrictRejection(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"missing type", `{"f1":{"r1":{"unitId":"u","polygon":[[1,2],[3,4],[5,6]]}}}`},
		{"empty unitId", `{"f1":{"r1":{"type":"office","unitId":"","polygon":[[1,2],[3,4],[5,6]]}}}`},
		{"short polygon", `{"f1":{"r1":{"type":"office","unitId":"u","polygon":[[1,2],[3,4]]}}}`},
		{"vertex not a pair", `{"f1":{"r1":{"type":"office","unitId":"u","polygon":[[1,2],[3,4],[5]]}}}`},
		{"type not a string", `{"f1":{"r1":{"type":7,"unitId":"u","polygon":[[1,2],[3,4],[5,6]]}}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, jsonHandler(t, "", tt.payload))

			rooms, err := c.Rooms(context.Background(), "b1/f1")
			if !errors.Is(err, ErrInvalidPayload) {
				t.Fatalf("err = %v, want ErrInvalidPayload", err)
			}
			if rooms != nil {
				t.Errorf("rooms = %v, want nil (wholesale rejection)", rooms)
			}
		})
	}
}

func TestWarningsValidPayload(t *testing.T) {
	c := newTestClient(t, jsonHandler(t, "/faults/b1", `{
		"f1": {
			"room-1": {
				"temperature": [
					{"title":"too hot","position":{"longitude":4.1,"latitude":52.1}},
					{"description":"sensor offline"}
				]
			}
		}
	}`))

	data, err := c.Warnings(context.Background(), "b1")
	if err != nil {
		t.Fatalf("Warnings: %v", err)
	}
	warnings := data["f1"]["room-1"]["temperature"]
	if len(warnings) != 2 {
		t.Fatalf("warnings = %d, want 2", len(warnings))
	}
	if warnings[0].Position == nil || warnings[0].Position.Longitude != 4.1 {
		t.Errorf("position = %+v", warnings[0].Position)
	}
	if warnings[1].Position != nil {
		t.Error("positionless warning grew a position")
	}
}

func TestWarningsStrictRejection(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"title not a string", `{"f1":{"r1":{"temperature":[{"title":5}]}}}`},
		{"position missing latitude", `{"f1":{"r1":{"temperature":[{"position":{"longitude":4.1}}]}}}`},
		{"list not a list", `{"f1":{"r1":{"temperature":{"title":"x"}}}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, jsonHandler(t, "", tt.payload))

			data, err := c.Warnings(context.Background(), "b1")
			if !errors.Is(err, ErrInvalidPayload) {
				t.Fatalf("err = %v, want ErrInvalidPayload", err)
			}
			if data != nil {
				t.Errorf("data = %v, want nil", data)
			}
		})
	}
}

func TestSidebarDropsMalformedEntries(t *testing.T) {
	c := newTestClient(t, jsonHandler(t, "/sidebar/b1/f1", `[
		{"id":"g1","name":"Meetings","items":[{"label":"Boardroom"}]},
		{"name":"no id","items":[]},
		{"id":"g2","name":"Null item","items":[null]},
		{"id":"g3","name":"Sensors","items":[]}
	]`))

	groups, err := c.Sidebar(context.Background(), "b1/f1")
	if err != nil {
		t.Fatalf("Sidebar: %v", err)
	}
	if len(groups) != 2 {
		t.Fatalf("groups = %d, want 2 (malformed dropped per-entry)", len(groups))
	}
	if groups[0].ID != "g1" || groups[1].ID != "g3" {
		t.Errorf("kept groups = %s, %s", groups[0].ID, groups[1].ID)
	}
}

func TestAssetsForLocation(t *testing.T) {
	c := newTestClient(t, jsonHandler(t, "/assets/location/b1/f1",
		`[{"type":"Stand-Up Desk","assetId":5,"Reserved":"true"}]`))

	assets, err := c.AssetsForLocation(context.Background(), "b1/f1")
	if err != nil {
		t.Fatalf("AssetsForLocation: %v", err)
	}
	if len(assets) != 1 || assets[0].AssetID != 5 {
		t.Fatalf("assets = %+v", assets)
	}
	if assets[0].Props["Reserved"] != "true" {
		t.Errorf("Reserved prop = %q", assets[0].Props["Reserved"])
	}
}

func TestUpdateAssetSendsPropertyList(t *testing.T) {
	var got struct {
		Properties []propertyKV `json:"properties"`
	}
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/assets/5" {
			t.Errorf("%s %s, want PUT /assets/5", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
	}))

	err := c.UpdateAsset(context.Background(), 5, map[string]string{"Reserved": "true"})
	if err != nil {
		t.Fatalf("UpdateAsset: %v", err)
	}
	if len(got.Properties) != 1 || got.Properties[0].Key != "Reserved" || got.Properties[0].Value != "true" {
		t.Errorf("properties = %+v", got.Properties)
	}
}

func TestDeleteAsset(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete || r.URL.Path != "/assets/9" {
			t.Errorf("%s %s, want DELETE /assets/9", r.Method, r.URL.Path)
		}
	}))

	if err := c.DeleteAsset(context.Background(), 9); err != nil {
		t.Fatalf("DeleteAsset: %v", err)
	}
}

func TestBookedDatesDropsUnparseableRows(t *testing.T) {
	c := newTestClient(t, jsonHandler(t, "/book_desk/5",
		`[{"booked_date":"3/9/2026"},{"booked_date":"not a date"},{"booked_date":"4/9/2026"}]`))

	dates, err := c.BookedDates(context.Background(), 5)
	if err != nil {
		t.Fatalf("BookedDates: %v", err)
	}
	if len(dates) != 2 {
		t.Fatalf("dates = %d, want 2", len(dates))
	}
	if dates[0].Day() != 3 || dates[1].Day() != 4 {
		t.Errorf("dates = %v", dates)
	}
}

func TestAuthenticate(t *testing.T) {
	c := newTestClient(t, jsonHandler(t, "/user/admin",
		`[{"password":"hunter2","email":"admin@example.com"}]`))

	claims, err := c.Authenticate(context.Background(), "admin", "hunter2")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	u := UserFromClaims(claims)
	if u.Name != "admin" || u.Email != "admin@example.com" {
		t.Errorf("user = %+v", u)
	}

	claims, err = c.Authenticate(context.Background(), "admin", "wrong")
	if err != nil {
		t.Fatalf("Authenticate wrong password: %v", err)
	}
	if len(claims) != 0 {
		t.Errorf("claims = %v, want none for wrong password", claims)
	}
}

func TestUserRights(t *testing.T) {
	c := newTestClient(t, jsonHandler(t, "/user_rights/admin",
		`{"canEdit":true,"canBook":true}`))

	rights, err := c.FetchUserRights(context.Background(), "admin")
	if err != nil {
		t.Fatalf("FetchUserRights: %v", err)
	}
	if !rights.CanEdit || !rights.CanBook {
		t.Errorf("rights = %+v", rights)
	}
}
