package mcp

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/paularlott/mcp"

	"github.com/fabriclab/sanctl/internal/health"
	"github.com/fabriclab/sanctl/internal/log"
	"github.com/fabriclab/sanctl/internal/worker"
	"github.com/fabriclab/sanctl/pkg/mds"
)

// Server wraps the MCP server with the switch connection
type Server struct {
	mcpServer   *mcp.Server
	sw          *mds.Switch
	exec        *worker.Executor
	prober      *health.Prober
	bearerToken string
}

// NewServer creates a new MCP server for fabric management. Mutating tools
// run through exec so they serialize with the REST API. prober may be nil
// when SNMP health probing is disabled.
func NewServer(sw *mds.Switch, exec *worker.Executor, prober *health.Prober, bearerToken string) *Server {
	s := &Server{
		mcpServer:   mcp.NewServer("sanctl", "1.0.0"),
		sw:          sw,
		exec:        exec,
		prober:      prober,
		bearerToken: bearerToken,
	}
	s.registerTools()
	return s
}

// registerTools registers all fabric management tools
func (s *Server) registerTools() {
	// Device-alias tools

	s.mcpServer.RegisterTool(
		mcp.NewTool("alias_list", "List all device-aliases in the fabric device-alias database"),
		s.handleAliasList,
	)

	s.mcpServer.RegisterTool(
		mcp.NewTool("alias_create", "Create a device-alias mapping a name to a pWWN (format xx:xx:xx:xx:xx:xx:xx:xx)",
			mcp.String("name", "Alias name", mcp.Required()),
			mcp.String("pwwn", "Port world wide name, colon separated hex octets", mcp.Required()),
		),
		s.handleAliasCreate,
	)

	s.mcpServer.RegisterTool(
		mcp.NewTool("alias_delete", "Delete a device-alias from the fabric database",
			mcp.String("name", "Alias name", mcp.Required()),
		),
		s.handleAliasDelete,
	)

	s.mcpServer.RegisterTool(
		mcp.NewTool("alias_rename", "Rename a device-alias, keeping its pWWN mapping",
			mcp.String("name", "Current alias name", mcp.Required()),
			mcp.String("new_name", "New alias name", mcp.Required()),
		),
		s.handleAliasRename,
	)

	s.mcpServer.RegisterTool(
		mcp.NewTool("alias_status", "Show device-alias database mode, fabric distribution and lock holder"),
		s.handleAliasStatus,
	)

	// Zone tools

	s.mcpServer.RegisterTool(
		mcp.NewTool("zone_get", "Get a zone with its members",
			mcp.String("vsan", "VSAN the zone lives in", mcp.Required()),
			mcp.String("name", "Zone name", mcp.Required()),
		),
		s.handleZoneGet,
	)

	s.mcpServer.RegisterTool(
		mcp.NewTool("zone_create", "Create an empty zone in a VSAN",
			mcp.String("vsan", "VSAN to create the zone in", mcp.Required()),
			mcp.String("name", "Zone name", mcp.Required()),
		),
		s.handleZoneCreate,
	)

	s.mcpServer.RegisterTool(
		mcp.NewTool("zone_delete", "Delete a zone from a VSAN",
			mcp.String("vsan", "VSAN the zone lives in", mcp.Required()),
			mcp.String("name", "Zone name", mcp.Required()),
		),
		s.handleZoneDelete,
	)

	s.mcpServer.RegisterTool(
		mcp.NewTool("zone_add_members", "Add members to a zone. Members that look like pWWNs are added as pwwn members, everything else as device-alias members.",
			mcp.String("vsan", "VSAN the zone lives in", mcp.Required()),
			mcp.String("name", "Zone name", mcp.Required()),
			mcp.StringArray("members", "Members to add, pWWNs or device-alias names", mcp.Required()),
		),
		s.handleZoneAddMembers,
	)

	s.mcpServer.RegisterTool(
		mcp.NewTool("zone_status", "Show zoning mode, default-zone policy, smart-zoning state and session lock for a VSAN",
			mcp.String("vsan", "VSAN to inspect", mcp.Required()),
		),
		s.handleZoneStatus,
	)

	// Health tools

	s.mcpServer.RegisterTool(
		mcp.NewTool("fabric_health", "Probe the switch over SNMP and report reachability, system name and uptime"),
		s.handleFabricHealth,
	)
}

// HandleRequest handles MCP HTTP requests with optional bearer token authentication
func (s *Server) HandleRequest(w http.ResponseWriter, r *http.Request) {
	log.Debug("MCP request received", "method", r.Method, "path", r.URL.Path, "remote_addr", r.RemoteAddr)

	// Check bearer token if configured
	if s.bearerToken != "" {
		auth := r.Header.Get("Authorization")
		if auth == "" {
			log.Warn("MCP request missing Authorization header", "remote_addr", r.RemoteAddr)
			http.Error(w, "Unauthorized: Missing Authorization header", http.StatusUnauthorized)
			return
		}
		if !strings.HasPrefix(auth, "Bearer ") {
			log.Warn("MCP request invalid Authorization format", "remote_addr", r.RemoteAddr)
			http.Error(w, "Unauthorized: Invalid Authorization format", http.StatusUnauthorized)
			return
		}
		token := strings.TrimPrefix(auth, "Bearer ")
		if token != s.bearerToken {
			log.Warn("MCP request invalid token", "remote_addr", r.RemoteAddr)
			http.Error(w, "Unauthorized: Invalid token", http.StatusUnauthorized)
			return
		}
	}

	s.mcpServer.HandleRequest(w, r)
}

// Device-alias tool handlers

func (s *Server) handleAliasList(ctx context.Context, req *mcp.ToolRequest) (*mcp.ToolResponse, error) {
	db, err := mds.NewDeviceAlias(s.sw).Database(ctx)
	if err != nil {
		log.Error("MCP alias list failed", "error", err)
		return nil, mcp.NewToolErrorInternal("failed to read device-alias database: " + err.Error())
	}

	if len(db) == 0 {
		return mcp.NewToolResponseText("No device-aliases defined"), nil
	}

	var result strings.Builder
	result.WriteString(fmt.Sprintf("Found %d device-aliases:\n\n", len(db)))
	for name, pwwn := range db {
		result.WriteString(fmt.Sprintf("  %s -> %s\n", name, pwwn))
	}
	return mcp.NewToolResponseText(result.String()), nil
}

func (s *Server) handleAliasCreate(ctx context.Context, req *mcp.ToolRequest) (*mcp.ToolResponse, error) {
	name, err := req.String("name")
	if err != nil {
		return nil, mcp.NewToolErrorInvalidParams("name is required: " + err.Error())
	}
	pwwn, err := req.String("pwwn")
	if err != nil {
		return nil, mcp.NewToolErrorInvalidParams("pwwn is required: " + err.Error())
	}
	if !mds.IsWWN(pwwn) {
		return nil, mcp.NewToolErrorInvalidParams("pwwn must be eight colon separated hex octets: " + pwwn)
	}

	log.Debug("MCP alias create request", "name", name, "pwwn", pwwn)
	err = s.exec.Run("mcp-alias-create", func(ctx context.Context) error {
		return mds.NewDeviceAlias(s.sw).Create(ctx, []mds.AliasEntry{{Name: name, PWWN: pwwn}})
	})
	if err != nil {
		log.Error("MCP alias create failed", "error", err, "name", name)
		return nil, mcp.NewToolErrorInternal("failed to create device-alias: " + err.Error())
	}

	log.Info("MCP alias created", "name", name, "pwwn", pwwn)
	return mcp.NewToolResponseText(fmt.Sprintf("Device-alias created: %s -> %s", name, pwwn)), nil
}

func (s *Server) handleAliasDelete(ctx context.Context, req *mcp.ToolRequest) (*mcp.ToolResponse, error) {
	name, err := req.String("name")
	if err != nil {
		return nil, mcp.NewToolErrorInvalidParams("name is required: " + err.Error())
	}

	log.Debug("MCP alias delete request", "name", name)
	err = s.exec.Run("mcp-alias-delete", func(ctx context.Context) error {
		return mds.NewDeviceAlias(s.sw).Delete(ctx, name)
	})
	if err != nil {
		log.Error("MCP alias delete failed", "error", err, "name", name)
		return nil, mcp.NewToolErrorInternal("failed to delete device-alias: " + err.Error())
	}

	log.Info("MCP alias deleted", "name", name)
	return mcp.NewToolResponseText("Device-alias deleted: " + name), nil
}

func (s *Server) handleAliasRename(ctx context.Context, req *mcp.ToolRequest) (*mcp.ToolResponse, error) {
	name, err := req.String("name")
	if err != nil {
		return nil, mcp.NewToolErrorInvalidParams("name is required: " + err.Error())
	}
	newName, err := req.String("new_name")
	if err != nil {
		return nil, mcp.NewToolErrorInvalidParams("new_name is required: " + err.Error())
	}

	err = s.exec.Run("mcp-alias-rename", func(ctx context.Context) error {
		return mds.NewDeviceAlias(s.sw).Rename(ctx, name, newName)
	})
	if err != nil {
		log.Error("MCP alias rename failed", "error", err, "name", name, "new_name", newName)
		return nil, mcp.NewToolErrorInternal("failed to rename device-alias: " + err.Error())
	}

	log.Info("MCP alias renamed", "name", name, "new_name", newName)
	return mcp.NewToolResponseText(fmt.Sprintf("Device-alias renamed: %s -> %s", name, newName)), nil
}

func (s *Server) handleAliasStatus(ctx context.Context, req *mcp.ToolRequest) (*mcp.ToolResponse, error) {
	facts, err := mds.NewDeviceAlias(s.sw).Facts(ctx)
	if err != nil {
		log.Error("MCP alias status failed", "error", err)
		return nil, mcp.NewToolErrorInternal("failed to read device-alias status: " + err.Error())
	}

	var result strings.Builder
	result.WriteString("Device-alias status:\n")
	result.WriteString(fmt.Sprintf("  Mode: %s\n", facts.Mode))
	result.WriteString(fmt.Sprintf("  Distribution: %s\n", facts.Distribution))
	if facts.LockedBy != "" {
		result.WriteString(fmt.Sprintf("  Locked by: %s\n", facts.LockedBy))
	} else {
		result.WriteString("  Locked by: nobody\n")
	}
	return mcp.NewToolResponseText(result.String()), nil
}

// Zone tool handlers

func (s *Server) handleZoneGet(ctx context.Context, req *mcp.ToolRequest) (*mcp.ToolResponse, error) {
	vsan, name, toolErr := s.zoneParams(req)
	if toolErr != nil {
		return nil, toolErr
	}

	zone := mds.NewZone(s.sw, mds.NewVsan(s.sw, vsan), name)
	got, err := zone.Name(ctx)
	if err != nil {
		log.Error("MCP zone get failed", "error", err, "vsan", vsan, "name", name)
		return nil, mcp.NewToolErrorInternal("failed to read zone: " + err.Error())
	}
	if got == "" {
		return mcp.NewToolResponseText(fmt.Sprintf("Zone %s does not exist in VSAN %d", name, vsan)), nil
	}

	members, err := zone.Members(ctx)
	if err != nil {
		return nil, mcp.NewToolErrorInternal("failed to read zone members: " + err.Error())
	}

	var result strings.Builder
	result.WriteString(fmt.Sprintf("Zone %s in VSAN %d", name, vsan))
	if len(members) == 0 {
		result.WriteString(" has no members\n")
		return mcp.NewToolResponseText(result.String()), nil
	}
	result.WriteString(fmt.Sprintf(" has %d members:\n", len(members)))
	for _, m := range members {
		result.WriteString(fmt.Sprintf("  %s %s\n", m.Type, m.Value))
	}
	return mcp.NewToolResponseText(result.String()), nil
}

func (s *Server) handleZoneCreate(ctx context.Context, req *mcp.ToolRequest) (*mcp.ToolResponse, error) {
	vsan, name, toolErr := s.zoneParams(req)
	if toolErr != nil {
		return nil, toolErr
	}

	err := s.exec.Run("mcp-zone-create", func(ctx context.Context) error {
		return mds.NewZone(s.sw, mds.NewVsan(s.sw, vsan), name).Create(ctx)
	})
	if err != nil {
		log.Error("MCP zone create failed", "error", err, "vsan", vsan, "name", name)
		return nil, mcp.NewToolErrorInternal("failed to create zone: " + err.Error())
	}

	log.Info("MCP zone created", "vsan", vsan, "name", name)
	return mcp.NewToolResponseText(fmt.Sprintf("Zone created: %s in VSAN %d", name, vsan)), nil
}

func (s *Server) handleZoneDelete(ctx context.Context, req *mcp.ToolRequest) (*mcp.ToolResponse, error) {
	vsan, name, toolErr := s.zoneParams(req)
	if toolErr != nil {
		return nil, toolErr
	}

	err := s.exec.Run("mcp-zone-delete", func(ctx context.Context) error {
		return mds.NewZone(s.sw, mds.NewVsan(s.sw, vsan), name).Delete(ctx)
	})
	if err != nil {
		log.Error("MCP zone delete failed", "error", err, "vsan", vsan, "name", name)
		return nil, mcp.NewToolErrorInternal("failed to delete zone: " + err.Error())
	}

	log.Info("MCP zone deleted", "vsan", vsan, "name", name)
	return mcp.NewToolResponseText(fmt.Sprintf("Zone deleted: %s in VSAN %d", name, vsan)), nil
}

func (s *Server) handleZoneAddMembers(ctx context.Context, req *mcp.ToolRequest) (*mcp.ToolResponse, error) {
	vsan, name, toolErr := s.zoneParams(req)
	if toolErr != nil {
		return nil, toolErr
	}
	members, err := req.StringSlice("members")
	if err != nil || len(members) == 0 {
		return nil, mcp.NewToolErrorInvalidParams("members must be a non-empty array of strings")
	}

	err = s.exec.Run("mcp-zone-add-members", func(ctx context.Context) error {
		return mds.NewZone(s.sw, mds.NewVsan(s.sw, vsan), name).AddMembers(ctx, members)
	})
	if err != nil {
		log.Error("MCP zone add members failed", "error", err, "vsan", vsan, "name", name)
		return nil, mcp.NewToolErrorInternal("failed to add zone members: " + err.Error())
	}

	log.Info("MCP zone members added", "vsan", vsan, "name", name, "count", len(members))
	return mcp.NewToolResponseText(fmt.Sprintf("Added %d members to zone %s in VSAN %d", len(members), name, vsan)), nil
}

func (s *Server) handleZoneStatus(ctx context.Context, req *mcp.ToolRequest) (*mcp.ToolResponse, error) {
	vsan, toolErr := s.vsanParam(req)
	if toolErr != nil {
		return nil, toolErr
	}

	st, err := mds.NewZone(s.sw, mds.NewVsan(s.sw, vsan), "").Status(ctx)
	if err != nil {
		log.Error("MCP zone status failed", "error", err, "vsan", vsan)
		return nil, mcp.NewToolErrorInternal("failed to read zone status: " + err.Error())
	}

	var result strings.Builder
	result.WriteString(fmt.Sprintf("Zoning status for VSAN %d:\n", vsan))
	result.WriteString(fmt.Sprintf("  Mode: %s\n", st.Mode))
	result.WriteString(fmt.Sprintf("  Default-zone: %s\n", st.DefaultZone))
	result.WriteString(fmt.Sprintf("  Smart-zoning: %s\n", st.SmartZoning))
	result.WriteString(fmt.Sprintf("  Session: %s\n", st.Session))
	return mcp.NewToolResponseText(result.String()), nil
}

// Health tool handlers

func (s *Server) handleFabricHealth(ctx context.Context, req *mcp.ToolRequest) (*mcp.ToolResponse, error) {
	if s.prober == nil {
		return mcp.NewToolResponseText("SNMP health probing is not configured"), nil
	}

	st := s.prober.Probe()
	if !st.Reachable {
		return mcp.NewToolResponseText("Switch is unreachable over SNMP: " + st.Error), nil
	}

	var result strings.Builder
	result.WriteString("Switch is reachable over SNMP:\n")
	result.WriteString(fmt.Sprintf("  Name: %s\n", st.SysName))
	result.WriteString(fmt.Sprintf("  Description: %s\n", st.SysDescr))
	result.WriteString(fmt.Sprintf("  Uptime: %s\n", st.Uptime))
	return mcp.NewToolResponseText(result.String()), nil
}

// Utility functions

func (s *Server) vsanParam(req *mcp.ToolRequest) (int, error) {
	raw, err := req.String("vsan")
	if err != nil {
		return 0, mcp.NewToolErrorInvalidParams("vsan is required: " + err.Error())
	}
	vsan, err := strconv.Atoi(raw)
	if err != nil || vsan <= 0 {
		return 0, mcp.NewToolErrorInvalidParams("vsan must be a positive integer: " + raw)
	}
	return vsan, nil
}

func (s *Server) zoneParams(req *mcp.ToolRequest) (int, string, error) {
	vsan, err := s.vsanParam(req)
	if err != nil {
		return 0, "", err
	}
	name, err := req.String("name")
	if err != nil {
		return 0, "", mcp.NewToolErrorInvalidParams("name is required: " + err.Error())
	}
	return vsan, name, nil
}

// GetHTTPHandler returns the HTTP handler for the MCP server
func (s *Server) GetHTTPHandler() http.HandlerFunc {
	return s.HandleRequest
}

// LogStartup logs MCP server startup information
func (s *Server) LogStartup() {
	log.Info("MCP Server initialized", "version", "1.0.0")
	if s.bearerToken != "" {
		log.Info("MCP authentication enabled", "type", "Bearer token")
	} else {
		log.Info("MCP authentication disabled")
	}
	tools := s.mcpServer.ListTools()
	log.Info("MCP tools registered", "count", len(tools))
	for _, tool := range tools {
		log.Debug("MCP tool registered", "name", tool.Name, "description", tool.Description)
	}
}
