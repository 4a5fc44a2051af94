package busanim

import (
	"math"
	"net/url"
	"strconv"
	"strings"
)

type QueryError struct{ Msg string }

func (e *QueryError) Error() string { return e.Msg }

// vmFilters are the SIRI VehicleMonitoring request filters
type vmFilters struct {
	LineRef      string
	VehicleRef   string
	DirectionRef string
}

func (f vmFilters) key() string {
	return memoKey(f.LineRef, f.VehicleRef, f.DirectionRef)
}

// lowerParams flattens query values to their first value with lower-case keys,
// so SIRI parameters match regardless of case
func lowerParams(q url.Values) map[string]string {
	m := map[string]string{}
	for k, v := range q {
		if len(v) > 0 {
			m[strings.ToLower(k)] = strings.TrimSpace(v[0])
		}
	}
	return m
}

func parseVehicleMonitoring(q url.Values) (vmFilters, error) {
	m := lowerParams(q)
	if dr := m["directionref"]; dr != "" && dr != "0" && dr != "1" {
		return vmFilters{}, &QueryError{Msg: "DirectionRef must be either 0 or 1."}
	}
	return vmFilters{
		LineRef:      m["lineref"],
		VehicleRef:   m["vehicleref"],
		DirectionRef: m["directionref"],
	}, nil
}

// parseFloatParam returns ok=false when the parameter is absent
func parseFloatParam(q url.Values, name string) (float64, bool, error) {
	s := strings.TrimSpace(q.Get(name))
	if s == "" {
		return 0, false, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, true, &QueryError{Msg: name + " must be a finite number."}
	}
	return v, true, nil
}
