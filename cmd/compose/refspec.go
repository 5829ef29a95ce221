package main

import (
	"fmt"
	"strconv"
	"strings"

	"pico-compositor/pkg/geometry"
)

// placement is one -reference argument: path@x,y[,sx[,sy]].
type placement struct {
	Path     string
	Position geometry.Point2D
	ScaleX   float64
	ScaleY   float64
}

func parsePlacement(s string) (placement, error) {
	at := strings.LastIndex(s, "@")
	if at <= 0 || at == len(s)-1 {
		return placement{}, fmt.Errorf("reference %q: want path@x,y[,sx[,sy]]", s)
	}
	p := placement{Path: s[:at], ScaleX: 1, ScaleY: 1}

	fields := strings.Split(s[at+1:], ",")
	if len(fields) < 2 || len(fields) > 4 {
		return placement{}, fmt.Errorf("reference %q: want 2 to 4 numbers after @, got %d", s, len(fields))
	}
	nums := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return placement{}, fmt.Errorf("reference %q: %w", s, err)
		}
		nums[i] = v
	}

	p.Position = geometry.NewPoint2D(nums[0], nums[1])
	switch len(nums) {
	case 3:
		p.ScaleX, p.ScaleY = nums[2], nums[2]
	case 4:
		p.ScaleX, p.ScaleY = nums[2], nums[3]
	}
	return p, nil
}

// placementList collects repeated -reference flags.
type placementList []placement

func (l *placementList) String() string {
	parts := make([]string, len(*l))
	for i, p := range *l {
		parts[i] = fmt.Sprintf("%s@%g,%g,%g,%g", p.Path, p.Position.X, p.Position.Y, p.ScaleX, p.ScaleY)
	}
	return strings.Join(parts, " ")
}

func (l *placementList) Set(s string) error {
	p, err := parsePlacement(s)
	if err != nil {
		return err
	}
	*l = append(*l, p)
	return nil
}
