// Package ingest turns a raw Terraform plan document into the typed
// resource model the rest of PreApply analyzes.
package ingest

import "sort"

// ResourceAction is the closed variant of Terraform change verbs a
// resource can normalize to.
type ResourceAction string

const (
	ActionCreate ResourceAction = "CREATE"
	ActionUpdate ResourceAction = "UPDATE"
	ActionDelete ResourceAction = "DELETE"
	ActionRead   ResourceAction = "READ"
	ActionNoOp   ResourceAction = "NO_OP"
)

// NormalizeAction maps an ordered sequence of Terraform change verbs to a
// single ResourceAction, applying destructive precedence:
// any sequence containing "delete" normalizes to DELETE, else "update" to
// UPDATE, else "create" to CREATE, else "read" to READ, else NO_OP.
func NormalizeAction(verbs []string) ResourceAction {
	var hasCreate, hasUpdate, hasDelete, hasRead bool
	for _, v := range verbs {
		switch v {
		case "create":
			hasCreate = true
		case "update":
			hasUpdate = true
		case "delete":
			hasDelete = true
		case "read":
			hasRead = true
		}
	}
	switch {
	case hasDelete:
		return ActionDelete
	case hasUpdate:
		return ActionUpdate
	case hasCreate:
		return ActionCreate
	case hasRead:
		return ActionRead
	default:
		return ActionNoOp
	}
}

// IsChanged reports whether the action is one of {CREATE, UPDATE, DELETE},
// i.e. it participates in blast-radius computation.
func (a ResourceAction) IsChanged() bool {
	return a == ActionCreate || a == ActionUpdate || a == ActionDelete
}

// NormalizedResource is a single entry of the normalized plan.
type NormalizedResource struct {
	ID        string
	Module    string
	Type      string
	Address   string
	Action    ResourceAction
	DependsOn map[string]struct{}
	Before    map[string]interface{}
	After     map[string]interface{}
}

// SortedDependsOn returns DependsOn as a sorted slice (address ascending,
// case-sensitive, per I5).
func (r NormalizedResource) SortedDependsOn() []string {
	out := make([]string, 0, len(r.DependsOn))
	for addr := range r.DependsOn {
		out = append(out, addr)
	}
	sort.Strings(out)
	return out
}

// Component returns the blast-radius component label for this resource:
// its module path if non-empty, else the string before the first "." in
// its provider type.
func (r NormalizedResource) Component() string {
	if r.Module != "" {
		return r.Module
	}
	if idx := indexByte(r.Type, '.'); idx >= 0 {
		return r.Type[:idx]
	}
	return r.Type
}

func indexByte(s string, b byte) int {
	for i := 0; i < len(s); i++ {
		if s[i] == b {
			return i
		}
	}
	return -1
}

// NormalizedPlan is the ordered output of the normalizer, with an address
// index guaranteeing uniqueness.
type NormalizedPlan struct {
	Resources []NormalizedResource
	index     map[string]int
}

// NewNormalizedPlan builds a NormalizedPlan from an already-ordered slice,
// building the address index and erroring on duplicate addresses.
func NewNormalizedPlan(resources []NormalizedResource) (*NormalizedPlan, error) {
	idx := make(map[string]int, len(resources))
	for i, r := range resources {
		if _, exists := idx[r.Address]; exists {
			return nil, &DuplicateAddressError{Address: r.Address}
		}
		idx[r.Address] = i
	}
	return &NormalizedPlan{Resources: resources, index: idx}, nil
}

// ByAddress looks up a resource by its fully-qualified address.
func (p *NormalizedPlan) ByAddress(addr string) (*NormalizedResource, bool) {
	i, ok := p.index[addr]
	if !ok {
		return nil, false
	}
	return &p.Resources[i], true
}

// Addresses returns the set of all known addresses, used to discard
// dangling references during dependency extraction.
func (p *NormalizedPlan) Addresses() map[string]struct{} {
	out := make(map[string]struct{}, len(p.Resources))
	for _, r := range p.Resources {
		out[r.Address] = struct{}{}
	}
	return out
}

// Changed returns every resource whose action is CREATE, UPDATE, or DELETE.
func (p *NormalizedPlan) Changed() []NormalizedResource {
	out := make([]NormalizedResource, 0, len(p.Resources))
	for _, r := range p.Resources {
		if r.Action.IsChanged() {
			out = append(out, r)
		}
	}
	return out
}

// DuplicateAddressError signals that a plan contains two resource_changes
// entries with the same address, which violates NormalizedPlan's
// uniqueness guarantee.
type DuplicateAddressError struct {
	Address string
}

func (e *DuplicateAddressError) Error() string {
	return "duplicate resource address: " + e.Address
}
