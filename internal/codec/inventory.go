package codec

import (
	"fmt"
	"io"
	"sort"

	"graphio/internal/domain"
	"graphio/internal/progress"

	"gopkg.in/yaml.v3"
)

// Node and edge types produced by InventoryCodec.
const (
	InventoryGroup  domain.NodeType = "group"
	InventoryHost   domain.NodeType = "host"
	InventoryChild  domain.EdgeType = "child"
	InventoryMember domain.EdgeType = "member"
)

// InventoryCodec imports Ansible YAML inventories. It is read-only.
//
// Every group becomes a node of type "group" with a "child" edge from its
// parent group, and every host becomes a node of type "host" with a
// "member" edge from each group listing it. Group and host vars become
// attributes; ansible_host is stored as "address".
type InventoryCodec struct{}

// NewInventoryCodec creates a new inventory importer
func NewInventoryCodec() *InventoryCodec {
	return &InventoryCodec{}
}

// Format returns the codec format identifier
func (c *InventoryCodec) Format() string {
	return "inventory"
}

// inventoryGroup is one group of an Ansible YAML inventory
type inventoryGroup struct {
	Hosts    map[string]*inventoryHost  `yaml:"hosts,omitempty"`
	Vars     map[string]any             `yaml:"vars,omitempty"`
	Children map[string]*inventoryGroup `yaml:"children,omitempty"`
}

type inventoryHost struct {
	AnsibleHost string         `yaml:"ansible_host,omitempty"`
	Vars        map[string]any `yaml:",inline"`
}

// Read imports graph data from an Ansible inventory
func (c *InventoryCodec) Read(r io.Reader, g domain.Builder, n progress.Notifier) error {
	var inv map[string]*inventoryGroup
	if err := yaml.NewDecoder(r).Decode(&inv); err != nil {
		return fmt.Errorf("failed to parse Ansible inventory: %w", err)
	}
	// Top-level groups other than "all" are implicit children of "all".
	all := inv["all"]
	if all == nil {
		all = &inventoryGroup{}
	}
	for name, grp := range inv {
		if name == "all" {
			continue
		}
		if all.Children == nil {
			all.Children = make(map[string]*inventoryGroup)
		}
		if _, exists := all.Children[name]; !exists {
			all.Children[name] = grp
		}
	}

	b := &inventoryBuilder{
		graph:    g,
		groups:   make(map[string]bool),
		hosts:    make(map[string]bool),
		hostDefs: make(map[string]*inventoryHost),
	}
	b.collect(all, make(map[*inventoryGroup]bool))
	b.steps = progress.NewSteps(n, b.total)

	return b.group("all", "", all)
}

type inventoryBuilder struct {
	graph    domain.Builder
	groups   map[string]bool
	hosts    map[string]bool
	hostDefs map[string]*inventoryHost
	total    int
	steps    *progress.Steps
}

// collect merges host definitions spread over several groups and counts
// the work for progress reporting
func (b *inventoryBuilder) collect(grp *inventoryGroup, seen map[*inventoryGroup]bool) {
	b.total++
	if grp == nil || seen[grp] {
		return
	}
	seen[grp] = true
	b.total += len(grp.Hosts)

	for id, host := range grp.Hosts {
		def, ok := b.hostDefs[id]
		if !ok {
			def = &inventoryHost{Vars: make(map[string]any)}
			b.hostDefs[id] = def
		}
		if host == nil {
			continue
		}
		if host.AnsibleHost != "" {
			def.AnsibleHost = host.AnsibleHost
		}
		for k, v := range host.Vars {
			def.Vars[k] = v
		}
	}
	for _, child := range grp.Children {
		b.collect(child, seen)
	}
}

func (b *inventoryBuilder) group(name, parent string, grp *inventoryGroup) error {
	expanded := b.groups[name]
	if !expanded {
		if b.hosts[name] {
			return fmt.Errorf("group %q: %w", name, domain.ErrDuplicateNode)
		}
		node := domain.NewNode(name, InventoryGroup, name)
		if grp != nil {
			setVars(node, grp.Vars)
		}
		if err := b.graph.AddNode(*node); err != nil {
			return fmt.Errorf("add group %q: %w", name, err)
		}
		b.groups[name] = true
	}
	if parent != "" {
		if err := b.graph.AddEdge(*domain.NewEdge(parent, name, InventoryChild)); err != nil {
			return fmt.Errorf("link group %q to %q: %w", name, parent, err)
		}
	}
	b.steps.Tick()
	// A group listed under several parents is expanded once.
	if expanded || grp == nil {
		return nil
	}

	for _, hostID := range sortedNames(grp.Hosts) {
		if err := b.host(hostID, name, b.hostDefs[hostID]); err != nil {
			return err
		}
		b.steps.Tick()
	}
	for _, childName := range sortedNames(grp.Children) {
		if err := b.group(childName, name, grp.Children[childName]); err != nil {
			return err
		}
	}
	return nil
}

func (b *inventoryBuilder) host(id, group string, host *inventoryHost) error {
	if !b.hosts[id] {
		if b.groups[id] {
			return fmt.Errorf("host %q: %w", id, domain.ErrDuplicateNode)
		}
		node := domain.NewNode(id, InventoryHost, id)
		if host != nil {
			if host.AnsibleHost != "" {
				node.SetAttribute("address", host.AnsibleHost)
			}
			setVars(node, host.Vars)
		}
		if err := b.graph.AddNode(*node); err != nil {
			return fmt.Errorf("add host %q: %w", id, err)
		}
		b.hosts[id] = true
	}
	if err := b.graph.AddEdge(*domain.NewEdge(group, id, InventoryMember)); err != nil {
		return fmt.Errorf("add host %q to group %q: %w", id, group, err)
	}
	return nil
}

func setVars(node *domain.Node, vars map[string]any) {
	for key, value := range vars {
		node.SetAttribute(key, fmt.Sprint(value))
	}
}

func sortedNames[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
