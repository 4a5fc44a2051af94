package route

// Waypoint represents a geographical coordinate
type Waypoint struct {
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
}

// Route is an immutable ordered sequence of waypoints.
// It is safe for concurrent read access.
type Route struct {
	ID    string
	Name  string
	Color string

	points []Waypoint
}

// New creates a route; the points slice is copied
func New(id, name, color string, points []Waypoint) *Route {
	pts := make([]Waypoint, len(points))
	copy(pts, points)
	return &Route{ID: id, Name: name, Color: color, points: pts}
}

// Len returns the number of waypoints
func (r *Route) Len() int { return len(r.points) }

// At returns the i-th waypoint
func (r *Route) At(i int) Waypoint { return r.points[i] }

// First returns the first waypoint; the route must not be empty
func (r *Route) First() Waypoint { return r.points[0] }

// Last returns the last waypoint; the route must not be empty
func (r *Route) Last() Waypoint { return r.points[len(r.points)-1] }

// Points returns a copy of the waypoints
func (r *Route) Points() []Waypoint {
	pts := make([]Waypoint, len(r.points))
	copy(pts, r.points)
	return pts
}

// Reversed returns a new route with the point order reversed
func (r *Route) Reversed() *Route {
	pts := make([]Waypoint, len(r.points))
	for i, p := range r.points {
		pts[len(pts)-1-i] = p
	}
	return &Route{ID: r.ID, Name: r.Name, Color: r.Color, points: pts}
}
