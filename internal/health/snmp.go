// Package health probes a switch's management plane over SNMP. NX-API can
// hang or refuse while the supervisor is still up, so the probe goes
// through a second protocol to tell "switch down" apart from "API down".
package health

import (
	"fmt"
	"time"

	"github.com/gosnmp/gosnmp"

	"github.com/fabriclab/sanctl/internal/log"
)

// Standard MIB-II system OIDs.
const (
	oidSysDescr  = ".1.3.6.1.2.1.1.1.0"
	oidSysUpTime = ".1.3.6.1.2.1.1.3.0"
	oidSysName   = ".1.3.6.1.2.1.1.5.0"
)

// Status is the result of one probe.
type Status struct {
	Reachable   bool          `json:"reachable"`
	SysName     string        `json:"sys_name,omitempty"`
	SysDescr    string        `json:"sys_descr,omitempty"`
	Uptime      time.Duration `json:"uptime,omitempty"`
	ProbeTime   time.Time     `json:"probe_time"`
	ProbeTarget string        `json:"probe_target"`
	Error       string        `json:"error,omitempty"`
}

// Prober polls the switch system group over SNMP v2c.
type Prober struct {
	target    string
	community string
	timeout   time.Duration
}

// NewProber creates a prober for the switch at target.
func NewProber(target, community string, timeout time.Duration) *Prober {
	if community == "" {
		community = "public"
	}
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	return &Prober{target: target, community: community, timeout: timeout}
}

// Probe queries sysName, sysDescr and sysUpTime. An unreachable agent is
// not an error return; it is a Status with Reachable false, so callers can
// serve the result either way.
func (p *Prober) Probe() Status {
	st := Status{
		ProbeTime:   time.Now(),
		ProbeTarget: p.target,
	}

	snmp := &gosnmp.GoSNMP{
		Target:    p.target,
		Port:      161,
		Community: p.community,
		Version:   gosnmp.Version2c,
		Timeout:   p.timeout,
		Retries:   1,
	}

	if err := snmp.Connect(); err != nil {
		st.Error = fmt.Sprintf("connect: %v", err)
		log.Warn("SNMP probe failed", "target", p.target, "error", err)
		return st
	}
	defer snmp.Conn.Close()

	result, err := snmp.Get([]string{oidSysDescr, oidSysUpTime, oidSysName})
	if err != nil {
		st.Error = fmt.Sprintf("get: %v", err)
		log.Warn("SNMP probe failed", "target", p.target, "error", err)
		return st
	}

	st.Reachable = true
	for _, v := range result.Variables {
		switch v.Name {
		case oidSysDescr:
			st.SysDescr = pduString(v)
		case oidSysName:
			st.SysName = pduString(v)
		case oidSysUpTime:
			// sysUpTime is in hundredths of a second.
			st.Uptime = time.Duration(gosnmp.ToBigInt(v.Value).Int64()) * 10 * time.Millisecond
		}
	}

	log.Debug("SNMP probe succeeded", "target", p.target, "sys_name", st.SysName, "uptime", st.Uptime)
	return st
}

func pduString(v gosnmp.SnmpPDU) string {
	if b, ok := v.Value.([]byte); ok {
		return string(b)
	}
	return fmt.Sprintf("%v", v.Value)
}
