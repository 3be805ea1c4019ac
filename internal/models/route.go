// internal/models/route.go
package models

// Role is the marketplace persona a page belongs to.
type Role string

const (
	RoleFarmer      Role = "farmer"
	RoleDistributor Role = "distributor"
	RoleRetailer    Role = "retailer"
	RoleConsumer    Role = "consumer"
)

// Route is one voice-navigable page of the host application.
type Route struct {
	Path  string `json:"path" yaml:"path"`
	Role  Role   `json:"role" yaml:"role"`
	Label string `json:"label" yaml:"label"`
}

// NavigationRoutes are the pages the classifier may name as a navigate target.
var NavigationRoutes = []Route{
	{Path: "/farmer", Role: RoleFarmer, Label: "Dashboard"},
	{Path: "/farmer/products", Role: RoleFarmer, Label: "My Products"},
	{Path: "/farmer/orders", Role: RoleFarmer, Label: "Orders"},
	{Path: "/farmer/payments", Role: RoleFarmer, Label: "Payments"},
	{Path: "/farmer/market", Role: RoleFarmer, Label: "Market Prices"},
	{Path: "/farmer/finances", Role: RoleFarmer, Label: "Finances"},
	{Path: "/farmer/schemes", Role: RoleFarmer, Label: "Govt. Schemes"},
	{Path: "/farmer/profile", Role: RoleFarmer, Label: "Profile"},
	{Path: "/distributor", Role: RoleDistributor, Label: "Distributor Dashboard"},
	{Path: "/retailer", Role: RoleRetailer, Label: "Retailer Dashboard"},
	{Path: "/consumer", Role: RoleConsumer, Label: "Consumer Dashboard"},
}

// RoutePaths returns the paths of routes in order.
func RoutePaths(routes []Route) []string {
	paths := make([]string, 0, len(routes))
	for _, r := range routes {
		paths = append(paths, r.Path)
	}
	return paths
}

// FindRoute looks a path up in NavigationRoutes.
func FindRoute(path string) (Route, bool) {
	for _, r := range NavigationRoutes {
		if r.Path == path {
			return r, true
		}
	}
	return Route{}, false
}
