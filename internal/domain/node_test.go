package domain

import (
	"testing"
)

func TestNewNode(t *testing.T) {
	node := NewNode("n1", "service", "Service One")

	if node.ID != "n1" {
		t.Errorf("expected ID 'n1', got %s", node.ID)
	}
	if node.Type != "service" {
		t.Errorf("expected Type 'service', got %s", node.Type)
	}
	if node.Label != "Service One" {
		t.Errorf("expected Label 'Service One', got %s", node.Label)
	}
	if node.Attributes == nil {
		t.Error("expected Attributes to be initialized")
	}
}

func TestNodeAttributes(t *testing.T) {
	tests := []struct {
		name  string
		node  Node
		key   string
		want  string
		found bool
	}{
		{"nil map", Node{ID: "a"}, "k", "", false},
		{"present", Node{ID: "a", Attributes: map[string]string{"k": "v"}}, "k", "v", true},
		{"absent", Node{ID: "a", Attributes: map[string]string{"k": "v"}}, "other", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.node.GetAttribute(tt.key)
			if ok != tt.found || got != tt.want {
				t.Errorf("GetAttribute(%q) = %q, %v; want %q, %v", tt.key, got, ok, tt.want, tt.found)
			}
		})
	}
}
