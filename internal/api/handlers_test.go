package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
)

func doJSON(t *testing.T, method, url string, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, bytes.NewReader([]byte(body)))
	if err != nil {
		t.Fatalf("building request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return resp
}

func TestListAliases(t *testing.T) {
	server, _ := setupTestServer(t)

	resp, err := http.Get(server.URL + "/api/device-aliases")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var entries []aliasEntryBody
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if len(entries) != 1 || entries[0].Name != "host1" {
		t.Errorf("entries = %+v", entries)
	}
}

func TestCreateAliases(t *testing.T) {
	server, mock := setupTestServer(t)

	resp := doJSON(t, http.MethodPost, server.URL+"/api/device-aliases",
		`[{"name":"host2","pwwn":"21:00:00:0e:1e:30:34:a6"}]`)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	sent := mock.sentCommands()
	if len(sent) != 1 || !strings.Contains(sent[0], "device-alias name host2 pwwn 21:00:00:0e:1e:30:34:a6") {
		t.Errorf("sent = %q", sent)
	}
}

func TestCreateAliasesRejectsBadPwwn(t *testing.T) {
	server, mock := setupTestServer(t)

	resp := doJSON(t, http.MethodPost, server.URL+"/api/device-aliases",
		`[{"name":"host2","pwwn":"not-a-wwn"}]`)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	if len(mock.sentCommands()) != 0 {
		t.Error("invalid request reached the switch")
	}
}

func TestDeleteAlias(t *testing.T) {
	server, mock := setupTestServer(t)

	resp := doJSON(t, http.MethodDelete, server.URL+"/api/device-aliases/host1", "")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	sent := mock.sentCommands()
	if len(sent) != 1 || sent[0] != "device-alias database ; no device-alias name host1" {
		t.Errorf("sent = %q", sent)
	}
}

func TestSetAliasModeInvalid(t *testing.T) {
	server, _ := setupTestServer(t)

	resp := doJSON(t, http.MethodPut, server.URL+"/api/device-alias-mode", `{"mode":"strict"}`)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestSetAliasDistributeRequiresBoolean(t *testing.T) {
	server, _ := setupTestServer(t)

	resp := doJSON(t, http.MethodPut, server.URL+"/api/device-alias-distribute", `{}`)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestGetZone(t *testing.T) {
	server, _ := setupTestServer(t)

	resp, err := http.Get(server.URL + "/api/vsans/1/zones/z1")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var body struct {
		Name    string `json:"name"`
		Vsan    int    `json:"vsan"`
		Members []struct {
			Type  string `json:"Type"`
			Value string `json:"Value"`
		} `json:"members"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if body.Name != "z1" || body.Vsan != 1 || len(body.Members) != 1 {
		t.Errorf("body = %+v", body)
	}
}

func TestGetZoneMissingVsan(t *testing.T) {
	server, _ := setupTestServer(t)

	resp, err := http.Get(server.URL + "/api/vsans/99/zones/z1")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func TestCreateZoneWhileLockedConflicts(t *testing.T) {
	server, mock := setupTestServer(t)
	mock.mu.Lock()
	mock.shows["show zone status vsan  1"] = `{"TABLE_zone_status":{"ROW_zone_status":{"mode":"basic","default_zone":"deny","smart_zoning":"disabled","session":"cli [admin]"}}}`
	mock.mu.Unlock()

	resp := doJSON(t, http.MethodPost, server.URL+"/api/vsans/1/zones/z2", "")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("status = %d, want 409", resp.StatusCode)
	}
	if len(mock.sentCommands()) != 0 {
		t.Error("locked fabric still received a command")
	}
}

func TestAddZoneMembers(t *testing.T) {
	server, mock := setupTestServer(t)

	resp := doJSON(t, http.MethodPost, server.URL+"/api/vsans/1/zones/z1/members",
		`{"members":["21:00:00:0e:1e:30:34:a6","host1"]}`)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	sent := mock.sentCommands()
	if len(sent) != 1 {
		t.Fatalf("sent = %q, want one combined command", sent)
	}
	want := "zone name z1 vsan 1 ; member pwwn 21:00:00:0e:1e:30:34:a6 ; member device-alias host1"
	if sent[0] != want {
		t.Errorf("command = %q, want %q", sent[0], want)
	}
}

func TestVsanParamValidation(t *testing.T) {
	server, _ := setupTestServer(t)

	resp, err := http.Get(server.URL + "/api/vsans/zero/status")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestAuditCommandListing(t *testing.T) {
	server, _ := setupTestServer(t)

	resp, err := http.Get(server.URL + "/api/audit/commands")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}
