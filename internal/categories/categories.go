// internal/categories/categories.go
package categories

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/sacavia/sacavia-go/internal/apiclient"
)

// Category is one taxonomy node. Parent is either absent, an id, or an embedded
// category, depending on how deep the backend populated it.
type Category struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Slug        string     `json:"slug,omitempty"`
	Description string     `json:"description,omitempty"`
	Icon        string     `json:"icon,omitempty"`
	Color       string     `json:"color,omitempty"`
	Type        string     `json:"type,omitempty"`
	Parent      *ParentRef `json:"parent,omitempty"`
}

// ParentRef decodes "parent": "id" as well as "parent": {"id": ...}.
type ParentRef struct {
	ID string
}

func (p *ParentRef) UnmarshalJSON(b []byte) error {
	var id string
	if err := json.Unmarshal(b, &id); err == nil {
		p.ID = id
		return nil
	}
	var obj struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return err
	}
	p.ID = obj.ID
	return nil
}

func (p ParentRef) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.ID)
}

// Node is a category with its children attached.
type Node struct {
	Category
	Children []*Node `json:"children,omitempty"`
}

type Service struct {
	client *apiclient.Client
}

func NewService(client *apiclient.Client) *Service {
	return &Service{client: client}
}

// List fetches the whole taxonomy. Nothing is cached: every call hits the server.
// TODO: cache for the session lifetime once the backend exposes a version or ETag.
func (s *Service) List(ctx context.Context) ([]Category, error) {
	res, err := apiclient.Call[[]Category](ctx, s.client, apiclient.Request{
		Method: http.MethodGet,
		Path:   "/api/categories",
		Auth:   apiclient.AuthNone,
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Tree nests categories under their parents, keeping input order. Categories whose
// parent is not in the list become roots.
func Tree(list []Category) []*Node {
	nodes := make(map[string]*Node, len(list))
	for i := range list {
		nodes[list[i].ID] = &Node{Category: list[i]}
	}

	var roots []*Node
	for i := range list {
		n := nodes[list[i].ID]
		if n.Parent != nil && n.Parent.ID != n.ID {
			if parent, ok := nodes[n.Parent.ID]; ok && !isAncestor(n, parent, nodes) {
				parent.Children = append(parent.Children, n)
				continue
			}
		}
		roots = append(roots, n)
	}
	return roots
}

// isAncestor reports whether n is above candidate in the parent chain.
func isAncestor(n, candidate *Node, nodes map[string]*Node) bool {
	seen := map[string]bool{}
	for cur := candidate; cur != nil && cur.Parent != nil; {
		if cur.Parent.ID == n.ID {
			return true
		}
		if seen[cur.ID] {
			return false
		}
		seen[cur.ID] = true
		cur = nodes[cur.Parent.ID]
	}
	return false
}
