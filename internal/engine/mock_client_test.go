package engine

import (
	"context"
	"errors"

	"github.com/dm/pvecheck/internal/client"
)

// MockPVEClient implements client.PVEClient for testing.
type MockPVEClient struct {
	NodesFn     func(ctx context.Context) ([]client.Node, error)
	DNSFn       func(ctx context.Context, node string) (*client.NodeDNS, error)
	QemuFn      func(ctx context.Context, node string) ([]client.QemuVM, error)
	ConfigFn    func(ctx context.Context, node string, vmid int) (*client.QemuConfig, error)
	TasksFn     func(ctx context.Context, node, typeFilter string) ([]client.Task, error)
	ResourcesFn func(ctx context.Context) ([]client.ClusterResource, error)
}

func (m *MockPVEClient) GetNodes(ctx context.Context) ([]client.Node, error) {
	if m.NodesFn != nil {
		return m.NodesFn(ctx)
	}
	return []client.Node{{Node: "pve1", Status: "online"}}, nil
}

func (m *MockPVEClient) GetNodeDNS(ctx context.Context, node string) (*client.NodeDNS, error) {
	if m.DNSFn != nil {
		return m.DNSFn(ctx, node)
	}
	return &client.NodeDNS{Search: "example.com"}, nil
}

func (m *MockPVEClient) GetQemuVMs(ctx context.Context, node string) ([]client.QemuVM, error) {
	if m.QemuFn != nil {
		return m.QemuFn(ctx, node)
	}
	return nil, nil
}

func (m *MockPVEClient) GetQemuConfig(ctx context.Context, node string, vmid int) (*client.QemuConfig, error) {
	if m.ConfigFn != nil {
		return m.ConfigFn(ctx, node, vmid)
	}
	return &client.QemuConfig{}, nil
}

func (m *MockPVEClient) GetTasks(ctx context.Context, node, typeFilter string) ([]client.Task, error) {
	if m.TasksFn != nil {
		return m.TasksFn(ctx, node, typeFilter)
	}
	return nil, nil
}

func (m *MockPVEClient) GetClusterResources(ctx context.Context) ([]client.ClusterResource, error) {
	if m.ResourcesFn != nil {
		return m.ResourcesFn(ctx)
	}
	return []client.ClusterResource{
		{Type: client.ResourceNode, Node: "pve1", MaxMem: 1000, Mem: 100},
	}, nil
}

func (m *MockPVEClient) BaseURL() string {
	return "https://mock:8006/api2/json"
}

// onboot returns a pointer to an onboot value for QemuConfig fixtures.
func onboot(v int64) *client.FlexInt {
	f := client.FlexInt(v)
	return &f
}

var errMockFailure = errors.New("mock failure")
