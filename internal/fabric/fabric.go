package fabric

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/fabriclab/sanctl/internal/config"
	"github.com/fabriclab/sanctl/internal/registry"
	"github.com/fabriclab/sanctl/pkg/mds"

	// Register the NX-API transport.
	_ "github.com/fabriclab/sanctl/internal/nxapi"
)

// Connect opens a connection to the switch named in the configuration using
// the configured transport. Meant for interactive commands: a missing
// password is prompted for when stdin is a terminal.
func Connect(cfg *config.Config) (*mds.Switch, error) {
	if err := promptPassword(cfg); err != nil {
		return nil, err
	}
	transport, err := NewTransport(cfg)
	if err != nil {
		return nil, err
	}
	return mds.NewSwitch(transport), nil
}

func promptPassword(cfg *config.Config) error {
	if cfg.Password != "" || !term.IsTerminal(int(os.Stdin.Fd())) {
		return nil
	}
	fmt.Fprintf(os.Stderr, "Password for %s@%s: ", cfg.Username, cfg.SwitchAddr)
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}
	cfg.Password = string(raw)
	return nil
}

// NewTransport builds the raw transport for the configured switch. Callers
// that want to decorate the transport, for example with audit recording,
// use this instead of Connect.
func NewTransport(cfg *config.Config) (mds.Transport, error) {
	reg := registry.GetRegistry()
	factory, ok := reg.GetTransport(cfg.Transport)
	if !ok {
		return nil, fmt.Errorf("unknown transport %q, registered transports: %s",
			cfg.Transport, strings.Join(reg.Transports(), ", "))
	}
	return factory(registry.Options{
		Addr:     cfg.SwitchAddr,
		Scheme:   cfg.SwitchScheme,
		Port:     cfg.SwitchPort,
		Username: cfg.Username,
		Password: cfg.Password,
		Insecure: cfg.Insecure,
		Timeout:  cfg.Timeout,
	})
}
