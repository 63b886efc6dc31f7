package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/fabriclab/sanctl/internal/audit"
	"github.com/fabriclab/sanctl/internal/health"
	"github.com/fabriclab/sanctl/internal/log"
	"github.com/fabriclab/sanctl/internal/worker"
	"github.com/fabriclab/sanctl/pkg/mds"
)

// Handler handles HTTP requests
type Handler struct {
	sw     *mds.Switch
	exec   *worker.Executor
	store  audit.Store
	prober *health.Prober

	// Manager factories, replaceable in tests to shorten settle waits.
	newAlias func() *mds.DeviceAlias
	newZone  func(vsan int, name string) *mds.Zone
}

// NewHandler creates a new API handler. store and prober may be nil when
// auditing or health probing is disabled.
func NewHandler(sw *mds.Switch, exec *worker.Executor, store audit.Store, prober *health.Prober) *Handler {
	h := &Handler{sw: sw, exec: exec, store: store, prober: prober}
	h.newAlias = func() *mds.DeviceAlias { return mds.NewDeviceAlias(sw) }
	h.newZone = func(vsan int, name string) *mds.Zone {
		return mds.NewZone(sw, mds.NewVsan(sw, vsan), name)
	}
	return h
}

// RegisterRoutes registers all API routes
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	// Device-alias database
	mux.HandleFunc("GET /api/device-aliases", h.listAliases)
	mux.HandleFunc("POST /api/device-aliases", h.createAliases)
	mux.HandleFunc("DELETE /api/device-aliases/{name}", h.deleteAlias)
	mux.HandleFunc("POST /api/device-aliases/{name}/rename", h.renameAlias)
	mux.HandleFunc("GET /api/device-alias-status", h.aliasStatus)
	mux.HandleFunc("PUT /api/device-alias-mode", h.setAliasMode)
	mux.HandleFunc("PUT /api/device-alias-distribute", h.setAliasDistribute)
	mux.HandleFunc("POST /api/device-alias-clear-lock", h.clearAliasLock)

	// Zoning, scoped per VSAN
	mux.HandleFunc("GET /api/vsans/{vsan}/status", h.zoneStatus)
	mux.HandleFunc("PUT /api/vsans/{vsan}/mode", h.setZoneMode)
	mux.HandleFunc("PUT /api/vsans/{vsan}/default-zone", h.setDefaultZone)
	mux.HandleFunc("PUT /api/vsans/{vsan}/smart-zoning", h.setSmartZoning)
	mux.HandleFunc("POST /api/vsans/{vsan}/clear-lock", h.clearZoneLock)
	mux.HandleFunc("GET /api/vsans/{vsan}/zones/{name}", h.getZone)
	mux.HandleFunc("POST /api/vsans/{vsan}/zones/{name}", h.createZone)
	mux.HandleFunc("DELETE /api/vsans/{vsan}/zones/{name}", h.deleteZone)
	mux.HandleFunc("POST /api/vsans/{vsan}/zones/{name}/members", h.addZoneMembers)

	// Observability
	mux.HandleFunc("GET /api/health", h.getHealth)
	mux.HandleFunc("GET /api/audit/commands", h.listAuditCommands)
	mux.HandleFunc("GET /api/audit/snapshots", h.listAuditSnapshots)
}

type aliasEntryBody struct {
	Name string `json:"name"`
	PWWN string `json:"pwwn"`
}

// listAliases handles GET /api/device-aliases
func (h *Handler) listAliases(w http.ResponseWriter, r *http.Request) {
	alias := h.newAlias()
	db, err := alias.Database(r.Context())
	if err != nil {
		h.domainError(w, err)
		return
	}

	entries := []aliasEntryBody{}
	for name, pwwn := range db {
		entries = append(entries, aliasEntryBody{Name: name, PWWN: pwwn})
	}
	h.writeJSON(w, http.StatusOK, entries)
}

// createAliases handles POST /api/device-aliases
func (h *Handler) createAliases(w http.ResponseWriter, r *http.Request) {
	var body []aliasEntryBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(body) == 0 {
		h.writeError(w, http.StatusBadRequest, "at least one alias entry is required")
		return
	}

	entries := make([]mds.AliasEntry, 0, len(body))
	for _, e := range body {
		if e.Name == "" || !mds.IsWWN(e.PWWN) {
			h.writeError(w, http.StatusBadRequest, "each entry needs a name and a well-formed pwwn")
			return
		}
		entries = append(entries, mds.AliasEntry{Name: e.Name, PWWN: e.PWWN})
	}

	err := h.exec.Run("alias-create", func(ctx context.Context) error {
		return h.newAlias().Create(ctx, entries)
	})
	if err != nil {
		h.domainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, map[string]int{"created": len(entries)})
}

// deleteAlias handles DELETE /api/device-aliases/{name}
func (h *Handler) deleteAlias(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	err := h.exec.Run("alias-delete", func(ctx context.Context) error {
		return h.newAlias().Delete(ctx, name)
	})
	if err != nil {
		h.domainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// renameAlias handles POST /api/device-aliases/{name}/rename
func (h *Handler) renameAlias(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	var body struct {
		NewName string `json:"new_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.NewName == "" {
		h.writeError(w, http.StatusBadRequest, "new_name is required")
		return
	}

	err := h.exec.Run("alias-rename", func(ctx context.Context) error {
		return h.newAlias().Rename(ctx, name, body.NewName)
	})
	if err != nil {
		h.domainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// aliasStatus handles GET /api/device-alias-status
func (h *Handler) aliasStatus(w http.ResponseWriter, r *http.Request) {
	facts, err := h.newAlias().Facts(r.Context())
	if err != nil {
		h.domainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{
		"mode":         facts.Mode,
		"distribution": facts.Distribution,
		"locked_by":    facts.LockedBy,
	})
}

// setAliasMode handles PUT /api/device-alias-mode
func (h *Handler) setAliasMode(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Mode string `json:"mode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err := h.exec.Run("alias-set-mode", func(ctx context.Context) error {
		return h.newAlias().SetMode(ctx, body.Mode)
	})
	if err != nil {
		h.domainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// setAliasDistribute handles PUT /api/device-alias-distribute
func (h *Handler) setAliasDistribute(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Enabled *bool `json:"enabled"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Enabled == nil {
		h.writeError(w, http.StatusBadRequest, "enabled must be a boolean")
		return
	}

	err := h.exec.Run("alias-set-distribute", func(ctx context.Context) error {
		return h.newAlias().SetDistribute(ctx, *body.Enabled)
	})
	if err != nil {
		h.domainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// clearAliasLock handles POST /api/device-alias-clear-lock
func (h *Handler) clearAliasLock(w http.ResponseWriter, r *http.Request) {
	err := h.exec.Run("alias-clear-lock", func(ctx context.Context) error {
		return h.newAlias().ClearLock(ctx)
	})
	if err != nil {
		h.domainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// zoneStatus handles GET /api/vsans/{vsan}/status
func (h *Handler) zoneStatus(w http.ResponseWriter, r *http.Request) {
	vsan, ok := h.vsanParam(w, r)
	if !ok {
		return
	}
	zone := h.newZone(vsan, "")
	st, err := zone.Status(r.Context())
	if err != nil {
		h.domainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"vsan":         vsan,
		"mode":         st.Mode,
		"default_zone": st.DefaultZone,
		"smart_zoning": st.SmartZoning,
		"session":      st.Session,
	})
}

// setZoneMode handles PUT /api/vsans/{vsan}/mode
func (h *Handler) setZoneMode(w http.ResponseWriter, r *http.Request) {
	vsan, ok := h.vsanParam(w, r)
	if !ok {
		return
	}
	var body struct {
		Mode string `json:"mode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err := h.exec.Run("zone-set-mode", func(ctx context.Context) error {
		return h.newZone(vsan, "").SetMode(ctx, body.Mode)
	})
	if err != nil {
		h.domainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// setDefaultZone handles PUT /api/vsans/{vsan}/default-zone
func (h *Handler) setDefaultZone(w http.ResponseWriter, r *http.Request) {
	vsan, ok := h.vsanParam(w, r)
	if !ok {
		return
	}
	var body struct {
		Policy string `json:"policy"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err := h.exec.Run("zone-set-default-zone", func(ctx context.Context) error {
		return h.newZone(vsan, "").SetDefaultZone(ctx, body.Policy)
	})
	if err != nil {
		h.domainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// setSmartZoning handles PUT /api/vsans/{vsan}/smart-zoning
func (h *Handler) setSmartZoning(w http.ResponseWriter, r *http.Request) {
	vsan, ok := h.vsanParam(w, r)
	if !ok {
		return
	}
	var body struct {
		Enabled *bool `json:"enabled"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Enabled == nil {
		h.writeError(w, http.StatusBadRequest, "enabled must be a boolean")
		return
	}

	err := h.exec.Run("zone-set-smart-zoning", func(ctx context.Context) error {
		return h.newZone(vsan, "").SetSmartZone(ctx, *body.Enabled)
	})
	if err != nil {
		h.domainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// clearZoneLock handles POST /api/vsans/{vsan}/clear-lock
func (h *Handler) clearZoneLock(w http.ResponseWriter, r *http.Request) {
	vsan, ok := h.vsanParam(w, r)
	if !ok {
		return
	}
	err := h.exec.Run("zone-clear-lock", func(ctx context.Context) error {
		return h.newZone(vsan, "").ClearLock(ctx)
	})
	if err != nil {
		h.domainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// getZone handles GET /api/vsans/{vsan}/zones/{name}
func (h *Handler) getZone(w http.ResponseWriter, r *http.Request) {
	vsan, ok := h.vsanParam(w, r)
	if !ok {
		return
	}
	name := r.PathValue("name")
	zone := h.newZone(vsan, name)

	deviceName, err := zone.Name(r.Context())
	if err != nil {
		h.domainError(w, err)
		return
	}
	if deviceName == "" {
		h.writeError(w, http.StatusNotFound, "zone not found")
		return
	}
	members, err := zone.Members(r.Context())
	if err != nil {
		h.domainError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"name":    deviceName,
		"vsan":    vsan,
		"members": members,
	})
}

// createZone handles POST /api/vsans/{vsan}/zones/{name}
func (h *Handler) createZone(w http.ResponseWriter, r *http.Request) {
	vsan, ok := h.vsanParam(w, r)
	if !ok {
		return
	}
	name := r.PathValue("name")

	err := h.exec.Run("zone-create", func(ctx context.Context) error {
		return h.newZone(vsan, name).Create(ctx)
	})
	if err != nil {
		h.domainError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

// deleteZone handles DELETE /api/vsans/{vsan}/zones/{name}
func (h *Handler) deleteZone(w http.ResponseWriter, r *http.Request) {
	vsan, ok := h.vsanParam(w, r)
	if !ok {
		return
	}
	name := r.PathValue("name")

	err := h.exec.Run("zone-delete", func(ctx context.Context) error {
		return h.newZone(vsan, name).Delete(ctx)
	})
	if err != nil {
		h.domainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// addZoneMembers handles POST /api/vsans/{vsan}/zones/{name}/members
func (h *Handler) addZoneMembers(w http.ResponseWriter, r *http.Request) {
	vsan, ok := h.vsanParam(w, r)
	if !ok {
		return
	}
	name := r.PathValue("name")
	var body struct {
		Members []string `json:"members"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || len(body.Members) == 0 {
		h.writeError(w, http.StatusBadRequest, "members is required")
		return
	}

	err := h.exec.Run("zone-add-members", func(ctx context.Context) error {
		return h.newZone(vsan, name).AddMembers(ctx, body.Members)
	})
	if err != nil {
		h.domainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]int{"added": len(body.Members)})
}

// getHealth handles GET /api/health
func (h *Handler) getHealth(w http.ResponseWriter, r *http.Request) {
	if h.prober == nil {
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "probe disabled"})
		return
	}
	st := h.prober.Probe()
	status := http.StatusOK
	if !st.Reachable {
		status = http.StatusServiceUnavailable
	}
	h.writeJSON(w, status, st)
}

// listAuditCommands handles GET /api/audit/commands
func (h *Handler) listAuditCommands(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		h.writeError(w, http.StatusNotFound, "auditing is disabled")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	recs, err := h.store.ListCommands(limit)
	if err != nil {
		h.internalError(w, err)
		return
	}
	if recs == nil {
		recs = []audit.Record{}
	}
	h.writeJSON(w, http.StatusOK, recs)
}

// listAuditSnapshots handles GET /api/audit/snapshots
func (h *Handler) listAuditSnapshots(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		h.writeError(w, http.StatusNotFound, "auditing is disabled")
		return
	}
	vsan, _ := strconv.Atoi(r.URL.Query().Get("vsan"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	snaps, err := h.store.ListSnapshots(vsan, limit)
	if err != nil {
		h.internalError(w, err)
		return
	}
	if snaps == nil {
		snaps = []audit.Snapshot{}
	}
	h.writeJSON(w, http.StatusOK, snaps)
}

// vsanParam parses the {vsan} path value.
func (h *Handler) vsanParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	vsan, err := strconv.Atoi(r.PathValue("vsan"))
	if err != nil || vsan <= 0 {
		h.writeError(w, http.StatusBadRequest, "vsan must be a positive integer")
		return 0, false
	}
	return vsan, true
}

// domainError maps fabric errors onto HTTP status codes.
func (h *Handler) domainError(w http.ResponseWriter, err error) {
	var (
		vnp *mds.VsanNotPresentError
		ime *mds.InvalidModeError
		imb *mds.InvalidMemberError
		cle *mds.CLIError
	)
	switch {
	case errors.As(err, &vnp):
		h.writeError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &ime), errors.As(err, &imb):
		h.writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &cle):
		// The switch refused the command: not a client mistake and not a
		// server fault, the fabric state conflicts with the request.
		h.writeError(w, http.StatusConflict, err.Error())
	default:
		h.internalError(w, err)
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

func (h *Handler) internalError(w http.ResponseWriter, err error) {
	log.Error("Internal server error", "error", err)
	h.writeError(w, http.StatusInternalServerError, "Internal Server Error")
}
