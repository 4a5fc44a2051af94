package route

import (
	"archive/zip"
	"bytes"
	"encoding/csv"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// gtfsShapes collects the GTFS tables needed to turn shapes into routes
type gtfsShapes struct {
	routeShortNames map[string]string     // route_id -> short_name
	routeColors     map[string]string     // route_id -> route_color (hex, no #)
	shapeRoute      map[string]string     // shape_id -> route_id of the first trip using it
	shapePoints     map[string][]Waypoint // shape_id -> ordered points
	shapeOrder      []string              // shape ids in first-seen order
}

// ParseGTFS builds one route per shape_id of a GTFS static zip
func ParseGTFS(zipBytes []byte) ([]*Route, error) {
	zr, err := zip.NewReader(bytes.NewReader(zipBytes), int64(len(zipBytes)))
	if err != nil {
		return nil, fmt.Errorf("failed to open GTFS zip: %w", err)
	}
	g := &gtfsShapes{
		routeShortNames: map[string]string{},
		routeColors:     map[string]string{},
		shapeRoute:      map[string]string{},
		shapePoints:     map[string][]Waypoint{},
	}
	files := map[string]*zip.File{}
	for _, f := range zr.File {
		name := strings.ToLower(f.Name)
		if name == "routes.txt" || name == "trips.txt" || name == "shapes.txt" {
			files[name] = f
		}
	}
	if files["shapes.txt"] == nil {
		return nil, fmt.Errorf("GTFS zip has no shapes.txt")
	}
	for _, name := range []string{"routes.txt", "trips.txt", "shapes.txt"} {
		if f := files[name]; f != nil {
			if err := g.consumeCSV(f); err != nil {
				return nil, fmt.Errorf("%s: %w", name, err)
			}
		}
	}

	routes := make([]*Route, 0, len(g.shapeOrder))
	for _, shapeID := range g.shapeOrder {
		routeID := g.shapeRoute[shapeID]
		name := g.routeShortNames[routeID]
		if name == "" {
			name = shapeID
		}
		color := DefaultColor
		if c := g.routeColors[routeID]; c != "" {
			color = "#" + strings.TrimPrefix(c, "#")
		}
		routes = append(routes, New(shapeID, name, color, g.shapePoints[shapeID]))
	}
	return routes, nil
}

func (g *gtfsShapes) consumeCSV(f *zip.File) error {
	r, err := f.Open()
	if err != nil {
		return err
	}
	defer r.Close()
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1
	rec, err := csvr.ReadAll()
	if err != nil {
		return err
	}
	if len(rec) == 0 {
		return nil
	}
	head := rec[0]
	if len(head) > 0 {
		head[0] = strings.TrimPrefix(head[0], "\ufeff")
	}
	idx := func(col string) int {
		for i, h := range head {
			if strings.EqualFold(strings.TrimSpace(h), col) {
				return i
			}
		}
		return -1
	}
	cell := func(row []string, i int) string {
		if i < 0 || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}
	switch strings.ToLower(f.Name) {
	case "routes.txt":
		rID := idx("route_id")
		rSN := idx("route_short_name")
		rLN := idx("route_long_name")
		rColor := idx("route_color")
		for _, row := range rec[1:] {
			id := cell(row, rID)
			if id == "" {
				continue
			}
			name := cell(row, rSN)
			if name == "" {
				name = cell(row, rLN)
			}
			g.routeShortNames[id] = name
			g.routeColors[id] = cell(row, rColor)
		}
	case "trips.txt":
		rID := idx("route_id")
		sh := idx("shape_id")
		for _, row := range rec[1:] {
			shapeID := cell(row, sh)
			if shapeID == "" {
				continue
			}
			if _, ok := g.shapeRoute[shapeID]; !ok {
				g.shapeRoute[shapeID] = cell(row, rID)
			}
		}
	case "shapes.txt":
		sh := idx("shape_id")
		latIdx := idx("shape_pt_lat")
		lonIdx := idx("shape_pt_lon")
		seqIdx := idx("shape_pt_sequence")
		if sh < 0 || latIdx < 0 || lonIdx < 0 || seqIdx < 0 {
			return fmt.Errorf("missing shape columns")
		}
		tmp := map[string][]struct {
			lon, lat float64
			seq      int
		}{}
		for _, row := range rec[1:] {
			shapeID := cell(row, sh)
			lat, errLat := strconv.ParseFloat(cell(row, latIdx), 64)
			lon, errLon := strconv.ParseFloat(cell(row, lonIdx), 64)
			if shapeID == "" || errLat != nil || errLon != nil {
				continue
			}
			seq, _ := strconv.Atoi(cell(row, seqIdx))
			if _, seen := tmp[shapeID]; !seen {
				g.shapeOrder = append(g.shapeOrder, shapeID)
			}
			tmp[shapeID] = append(tmp[shapeID], struct {
				lon, lat float64
				seq      int
			}{lon, lat, seq})
		}
		for shapeID, arr := range tmp {
			sort.SliceStable(arr, func(i, j int) bool { return arr[i].seq < arr[j].seq })
			pts := make([]Waypoint, len(arr))
			for i, p := range arr {
				pts[i] = Waypoint{Longitude: p.lon, Latitude: p.lat}
			}
			g.shapePoints[shapeID] = pts
		}
	}
	return nil
}
