package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Node represents a single entry from /nodes.
type Node struct {
	Node   string  `json:"node"`
	Status string  `json:"status"`
	MaxMem FlexInt `json:"maxmem"`
	Mem    FlexInt `json:"mem"`
}

// NodeDNS represents the response from /nodes/{node}/dns.
type NodeDNS struct {
	Search string `json:"search"`
	DNS1   string `json:"dns1"`
}

// QemuVM represents a single guest entry from /nodes/{node}/qemu.
type QemuVM struct {
	VMID   FlexInt `json:"vmid"`
	Name   string  `json:"name"`
	Status string  `json:"status"`
	Mem    FlexInt `json:"mem"`
	MaxMem FlexInt `json:"maxmem"`
}

// QemuConfig holds the guest configuration keys the checks read.
// OnBoot is nil when the key is absent from the config.
type QemuConfig struct {
	OnBoot *FlexInt `json:"onboot,omitempty"`
	Name   string   `json:"name"`
}

// Autostart reports the onboot flag, treating an absent key as disabled.
func (q QemuConfig) Autostart() bool {
	return q.OnBoot != nil && *q.OnBoot == 1
}

// Task represents a single entry from /nodes/{node}/tasks.
// EndTime is zero for tasks that are still running.
type Task struct {
	UPID      string  `json:"upid"`
	Node      string  `json:"node"`
	Type      string  `json:"type"`
	ID        string  `json:"id"`
	User      string  `json:"user"`
	StartTime FlexInt `json:"starttime"`
	EndTime   FlexInt `json:"endtime"`
	Status    string  `json:"status"`
}

// Resource types found in /cluster/resources.
const (
	ResourceNode    = "node"
	ResourceQemu    = "qemu"
	ResourceLXC     = "lxc"
	ResourceStorage = "storage"
)

// ClusterResource represents a single entry from /cluster/resources.
// Memory fields are in bytes.
type ClusterResource struct {
	ID     string  `json:"id"`
	Type   string  `json:"type"`
	Node   string  `json:"node"`
	Name   string  `json:"name"`
	Status string  `json:"status"`
	VMID   FlexInt `json:"vmid"`
	Mem    FlexInt `json:"mem"`
	MaxMem FlexInt `json:"maxmem"`
}

// Ticket is the data member of a POST /access/ticket response.
type Ticket struct {
	Ticket              string `json:"ticket"`
	CSRFPreventionToken string `json:"CSRFPreventionToken"`
	Username            string `json:"username"`
}

// FlexInt is an integer that also decodes from numeric strings and booleans,
// since the API is not consistent about scalar types across versions.
type FlexInt int64

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		return nil
	case bytes.Equal(data, []byte("true")):
		*f = 1
		return nil
	case bytes.Equal(data, []byte("false")):
		*f = 0
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			*f = 0
			return nil
		}
		data = []byte(s)
	}

	if n, err := strconv.ParseInt(string(data), 10, 64); err == nil {
		*f = FlexInt(n)
		return nil
	}
	fl, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("FlexInt: cannot decode %s", data)
	}
	*f = FlexInt(int64(fl))
	return nil
}
