package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

const (
	endpointTicket    = "/access/ticket"
	endpointNodes     = "/nodes"
	endpointResources = "/cluster/resources"
)

func nodePath(node, suffix string) string {
	return "/nodes/" + url.PathEscape(node) + suffix
}

// GetNodes fetches the cluster members from /nodes.
func (c *DefaultClient) GetNodes(ctx context.Context) ([]Node, error) {
	var result []Node
	if err := c.getData(ctx, endpointNodes, nil, &result); err != nil {
		return nil, fmt.Errorf("GetNodes: %w", err)
	}
	return result, nil
}

// GetNodeDNS fetches the DNS settings of a node from /nodes/{node}/dns.
func (c *DefaultClient) GetNodeDNS(ctx context.Context, node string) (*NodeDNS, error) {
	var result NodeDNS
	if err := c.getData(ctx, nodePath(node, "/dns"), nil, &result); err != nil {
		return nil, fmt.Errorf("GetNodeDNS %s: %w", node, err)
	}
	return &result, nil
}

// GetQemuVMs fetches the QEMU guests of a node from /nodes/{node}/qemu.
func (c *DefaultClient) GetQemuVMs(ctx context.Context, node string) ([]QemuVM, error) {
	var result []QemuVM
	if err := c.getData(ctx, nodePath(node, "/qemu"), nil, &result); err != nil {
		return nil, fmt.Errorf("GetQemuVMs %s: %w", node, err)
	}
	return result, nil
}

// GetQemuConfig fetches the configuration of a single guest from
// /nodes/{node}/qemu/{vmid}/config.
func (c *DefaultClient) GetQemuConfig(ctx context.Context, node string, vmid int) (*QemuConfig, error) {
	var result QemuConfig
	path := nodePath(node, "/qemu/"+strconv.Itoa(vmid)+"/config")
	if err := c.getData(ctx, path, nil, &result); err != nil {
		return nil, fmt.Errorf("GetQemuConfig %s/%d: %w", node, vmid, err)
	}
	return &result, nil
}

// GetTasks fetches the task history of a node from /nodes/{node}/tasks.
// An empty typeFilter returns tasks of every type.
func (c *DefaultClient) GetTasks(ctx context.Context, node, typeFilter string) ([]Task, error) {
	var query url.Values
	if typeFilter != "" {
		query = url.Values{"typefilter": []string{typeFilter}}
	}
	var result []Task
	if err := c.getData(ctx, nodePath(node, "/tasks"), query, &result); err != nil {
		return nil, fmt.Errorf("GetTasks %s: %w", node, err)
	}
	return result, nil
}

// GetClusterResources fetches the flat resource list from /cluster/resources.
func (c *DefaultClient) GetClusterResources(ctx context.Context) ([]ClusterResource, error) {
	var result []ClusterResource
	if err := c.getData(ctx, endpointResources, nil, &result); err != nil {
		return nil, fmt.Errorf("GetClusterResources: %w", err)
	}
	return result, nil
}
