package dispatch

import (
	"net/url"
	"strings"
)

// Kind tags which host effect a Result asks for.
type Kind string

const (
	KindNavigate              Kind = "navigate"
	KindCreateEntityPrefilled Kind = "createEntityPrefilled"
	KindFilterView            Kind = "filterView"
	KindNoOp                  Kind = "noop"
)

// Reason explains why a command degraded to a no-op.
type Reason string

const (
	ReasonUnknownAction   Reason = "unknown_action"
	ReasonEmptyTarget     Reason = "empty_target"
	ReasonEmptyCriteria   Reason = "empty_criteria"
	ReasonRouteNotAllowed Reason = "route_not_allowed"
	ReasonInvalidTarget   Reason = "invalid_target"
)

// EntityTypeProduct is the only entity a voice command can create.
const EntityTypeProduct = "product"

// ProductFormPath is where the host opens the product creation form.
const ProductFormPath = "/farmer/products"

// ProductNameParam is the query parameter that pre-fills the product name.
const ProductNameParam = "newProductName"

// FilterViewPrefix is prepended to a filter target to build the view path.
const FilterViewPrefix = "/farmer/"

// Result is exactly one of NavigateTo, CreateEntityPrefilled, FilterView or
// NoOp, selected by Kind. Fields that do not belong to the kind are empty.
type Result struct {
	Kind Kind `json:"kind"`

	// NavigateTo
	Path string `json:"path,omitempty"`

	// CreateEntityPrefilled
	EntityType string `json:"entityType,omitempty"`
	Name       string `json:"name,omitempty"`

	// FilterView
	ViewPath string            `json:"viewPath,omitempty"`
	Criteria map[string]string `json:"criteria,omitempty"`

	// NoOp
	Feedback string `json:"feedback,omitempty"`
	Reason   Reason `json:"reason,omitempty"`
}

// NavigateTo asks the host to route to path.
func NavigateTo(path string) Result {
	return Result{Kind: KindNavigate, Path: path}
}

// CreateEntityPrefilled opens the product form with name filled in.
func CreateEntityPrefilled(name string) Result {
	return Result{Kind: KindCreateEntityPrefilled, EntityType: EntityTypeProduct, Name: name}
}

// FilterView shows viewPath filtered by criteria.
func FilterView(viewPath string, criteria map[string]string) Result {
	return Result{Kind: KindFilterView, ViewPath: viewPath, Criteria: criteria}
}

// NoOp only displays feedback. reason is never shown to the user.
func NoOp(feedback string, reason Reason) Result {
	return Result{Kind: KindNoOp, Feedback: feedback, Reason: reason}
}

// IsNoOp reports whether the host should only display feedback.
func (r Result) IsNoOp() bool {
	return r.Kind == KindNoOp
}

// HostURL is the client-side location the host should move to, or "" for a
// no-op. Filter criteria are encoded as query parameters in key order.
func (r Result) HostURL() string {
	switch r.Kind {
	case KindNavigate:
		return r.Path
	case KindCreateEntityPrefilled:
		q := url.Values{}
		q.Set(ProductNameParam, r.Name)
		return ProductFormPath + "?" + q.Encode()
	case KindFilterView:
		if len(r.Criteria) == 0 {
			return r.ViewPath
		}
		q := url.Values{}
		for k, v := range r.Criteria {
			q.Set(k, v)
		}
		return r.ViewPath + "?" + q.Encode()
	default:
		return ""
	}
}

// Equal compares two results structurally.
func (r Result) Equal(o Result) bool {
	if r.Kind != o.Kind || r.Path != o.Path || r.EntityType != o.EntityType ||
		r.Name != o.Name || r.ViewPath != o.ViewPath || r.Feedback != o.Feedback ||
		r.Reason != o.Reason || len(r.Criteria) != len(o.Criteria) {
		return false
	}
	for k, v := range r.Criteria {
		if ov, ok := o.Criteria[k]; !ok || ov != v {
			return false
		}
	}
	return true
}

func (r Result) String() string {
	var b strings.Builder
	b.WriteString(string(r.Kind))
	if u := r.HostURL(); u != "" {
		b.WriteString(" ")
		b.WriteString(u)
	}
	if r.Reason != "" {
		b.WriteString(" (")
		b.WriteString(string(r.Reason))
		b.WriteString(")")
	}
	return b.String()
}
