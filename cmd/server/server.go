package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/paularlott/cli"

	"github.com/fabriclab/sanctl/internal/api"
	"github.com/fabriclab/sanctl/internal/audit"
	"github.com/fabriclab/sanctl/internal/config"
	"github.com/fabriclab/sanctl/internal/fabric"
	"github.com/fabriclab/sanctl/internal/health"
	"github.com/fabriclab/sanctl/internal/log"
	"github.com/fabriclab/sanctl/internal/mcp"
	"github.com/fabriclab/sanctl/internal/monitor"
	"github.com/fabriclab/sanctl/internal/worker"
	"github.com/fabriclab/sanctl/pkg/mds"
)

// ServerConfig holds the wired pieces for running the server
type ServerConfig struct {
	Config     *config.Config
	Switch     *mds.Switch
	Store      audit.Store
	Executor   *worker.Executor
	Monitor    *monitor.Monitor
	MCPServer  *mcp.Server
	APIHandler *api.Handler
}

// RunServer starts the sanctl server with the given configuration
func RunServer(cfg *ServerConfig) error {
	// Setup HTTP routes
	mux := http.NewServeMux()

	// API routes
	cfg.APIHandler.RegisterRoutes(mux)

	// MCP endpoint
	mux.HandleFunc("/mcp", cfg.MCPServer.GetHTTPHandler())

	// Apply middleware
	var handler http.Handler = mux
	if cfg.Config.IsAPIAuthEnabled() {
		handler = api.AuthMiddleware(cfg.Config.APITokenHash, handler)
	}
	handler = api.SecurityHeadersMiddleware(handler)

	// Start server
	server := &http.Server{
		Addr:    cfg.Config.ListenAddr,
		Handler: handler,
	}

	// Handle shutdown gracefully
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan
		log.Info("Shutting down server...")
		server.Close()
	}()

	// Log startup info
	log.Info("Starting sanctl server", "addr", cfg.Config.ListenAddr)
	log.Info("API available", "url", "http://localhost"+cfg.Config.ListenAddr+"/api/")
	log.Info("MCP available", "url", "http://localhost"+cfg.Config.ListenAddr+"/mcp")
	if cfg.Config.IsAPIAuthEnabled() {
		log.Info("API authentication enabled")
	}
	if cfg.Config.IsMCPAuthEnabled() {
		log.Info("MCP authentication enabled")
	}
	cfg.MCPServer.LogStartup()

	// Start serving
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("Server error", "error", err)
		return err
	}

	log.Info("Server stopped")
	return nil
}

func Command() *cli.Command {
	flags := append(config.GetFlags(),
		&cli.StringFlag{
			Name:    "addr",
			Usage:   "Server listen address (e.g., :8080)",
			EnvVars: []string{"SANCTL_LISTEN_ADDR"},
		},
		&cli.StringFlag{
			Name:    "data-dir",
			Usage:   "Data directory for the audit database",
			EnvVars: []string{"SANCTL_DATA_DIR"},
		},
		&cli.StringFlag{
			Name:    "api-token-hash",
			Usage:   "bcrypt hash of the REST API bearer token",
			EnvVars: []string{"SANCTL_API_TOKEN_HASH"},
		},
		&cli.StringFlag{
			Name:    "mcp-token",
			Usage:   "MCP bearer token for authentication",
			EnvVars: []string{"SANCTL_MCP_TOKEN"},
		},
		&cli.StringFlag{
			Name:    "monitor-spec",
			Usage:   "Cron spec for the fabric monitor (e.g., @every 5m)",
			EnvVars: []string{"SANCTL_MONITOR_SPEC"},
		},
		&cli.StringFlag{
			Name:    "monitor-vsans",
			Usage:   "Comma-separated VSANs the monitor polls",
			EnvVars: []string{"SANCTL_MONITOR_VSANS"},
		},
		&cli.StringFlag{
			Name:    "snmp-community",
			Usage:   "SNMP community for health probes",
			EnvVars: []string{"SANCTL_SNMP_COMMUNITY"},
		},
	)

	return &cli.Command{
		Name:        "server",
		Usage:       "Start the sanctl server",
		Description: "Start the HTTP server with REST API, MCP endpoint and fabric monitor",
		Flags:       flags,
		Run: func(ctx context.Context, cmd *cli.Command) error {
			opts := config.FromCommand(cmd)
			opts.ListenAddr = cmd.GetString("addr")
			opts.DataDir = cmd.GetString("data-dir")
			opts.APITokenHash = cmd.GetString("api-token-hash")
			opts.MCPToken = cmd.GetString("mcp-token")
			opts.MonitorSpec = cmd.GetString("monitor-spec")
			opts.MonitorVsans = config.ParseVsanList(cmd.GetString("monitor-vsans"))
			opts.SNMPCommunity = cmd.GetString("snmp-community")
			cfg := config.Load(opts)

			log.Info("Configuration loaded", "source", cfg.String(), "switch", cfg.SwitchAddr, "listen_addr", cfg.ListenAddr)

			transport, err := fabric.NewTransport(cfg)
			if err != nil {
				log.Error("Failed to initialize switch transport", "error", err)
				return err
			}

			// Audit store wraps the transport so every command that reaches
			// the switch leaves a record.
			var store audit.Store
			if cfg.AuditEnabled {
				sqlStore, err := audit.NewSQLiteStore(cfg.DataDir)
				if err != nil {
					log.Error("Failed to initialize audit store", "error", err)
					return err
				}
				defer sqlStore.Close()
				log.Info("Audit store initialized", "path", sqlStore.GetDatabasePath())

				transport = audit.NewTransport(transport, sqlStore, cfg.SwitchAddr)
				store = sqlStore
			} else {
				log.Warn("Auditing disabled, switch commands will not be recorded")
			}

			sw := mds.NewSwitch(transport)

			// Single-worker executor serializes fabric mutations. CFS and
			// zone sessions are switch-global, so concurrent changes from
			// REST and MCP would trip over each other's locks.
			exec := worker.NewExecutor()
			exec.Start()
			defer exec.Stop()

			var prober *health.Prober
			if cfg.SwitchAddr != "" {
				prober = health.NewProber(cfg.SwitchAddr, cfg.SNMPCommunity, cfg.Timeout)
			}

			var mon *monitor.Monitor
			if store != nil && len(cfg.MonitorVsans) > 0 {
				mon = monitor.New(sw, store, cfg.SwitchAddr, cfg.MonitorSpec, cfg.MonitorVsans)
				if err := mon.Start(); err != nil {
					log.Error("Failed to start fabric monitor", "error", err)
					return err
				}
				defer mon.Stop()
			} else {
				log.Info("Fabric monitor disabled", "audit", cfg.AuditEnabled, "vsans", cfg.MonitorVsans)
			}

			apiHandler := api.NewHandler(sw, exec, store, prober)
			mcpServer := mcp.NewServer(sw, exec, prober, cfg.MCPToken)

			serverConfig := &ServerConfig{
				Config:     cfg,
				Switch:     sw,
				Store:      store,
				Executor:   exec,
				Monitor:    mon,
				MCPServer:  mcpServer,
				APIHandler: apiHandler,
			}

			return RunServer(serverConfig)
		},
	}
}
