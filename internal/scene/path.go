package scene

import (
	"fmt"
	"strconv"
	"strings"
)

// Path is parsed icon or free-draw path data: one or more subpaths, each a
// polyline that may be closed.
type Path struct {
	Subpaths []Subpath
}

// Subpath is a run of connected points.
type Subpath struct {
	Points []Point
	Closed bool
}

// Empty reports whether the path has no drawable subpath.
func (p Path) Empty() bool {
	for _, sp := range p.Subpaths {
		if len(sp.Points) > 0 {
			return false
		}
	}
	return true
}

// Bounds returns the extent of the path in its own coordinate space.
func (p Path) Bounds() (w, h float64) {
	first := true
	var minX, minY, maxX, maxY float64
	for _, sp := range p.Subpaths {
		for _, pt := range sp.Points {
			if first {
				minX, maxX = pt.X, pt.X
				minY, maxY = pt.Y, pt.Y
				first = false
				continue
			}
			if pt.X < minX {
				minX = pt.X
			}
			if pt.X > maxX {
				maxX = pt.X
			}
			if pt.Y < minY {
				minY = pt.Y
			}
			if pt.Y > maxY {
				maxY = pt.Y
			}
		}
	}
	if first {
		return 0, 0
	}
	return maxX - minX, maxY - minY
}

// ParsePath reads the M/L/Z subset of SVG path syntax the icon library uses.
// Commands are absolute; coordinates are separated by spaces or commas.
func ParsePath(data string) (Path, error) {
	var path Path
	var current *Subpath

	tokens := tokenizePath(data)
	i := 0
	readPoint := func(cmd string) (Point, error) {
		if i+1 >= len(tokens) {
			return Point{}, fmt.Errorf("path: %s needs two coordinates", cmd)
		}
		x, err := strconv.ParseFloat(tokens[i], 64)
		if err != nil {
			return Point{}, fmt.Errorf("path: bad coordinate %q", tokens[i])
		}
		y, err := strconv.ParseFloat(tokens[i+1], 64)
		if err != nil {
			return Point{}, fmt.Errorf("path: bad coordinate %q", tokens[i+1])
		}
		i += 2
		return Pt(x, y), nil
	}

	for i < len(tokens) {
		tok := tokens[i]
		switch tok {
		case "M", "m":
			i++
			pt, err := readPoint("M")
			if err != nil {
				return Path{}, err
			}
			path.Subpaths = append(path.Subpaths, Subpath{Points: []Point{pt}})
			current = &path.Subpaths[len(path.Subpaths)-1]
		case "L", "l":
			i++
			if current == nil {
				return Path{}, fmt.Errorf("path: L before any M")
			}
			pt, err := readPoint("L")
			if err != nil {
				return Path{}, err
			}
			current.Points = append(current.Points, pt)
		case "Z", "z":
			i++
			if current == nil {
				return Path{}, fmt.Errorf("path: Z before any M")
			}
			current.Closed = true
			current = nil
		default:
			// A bare coordinate pair continues the current subpath, which
			// is how repeated L coordinates are commonly written.
			if current == nil {
				return Path{}, fmt.Errorf("path: unexpected token %q", tok)
			}
			pt, err := readPoint("L")
			if err != nil {
				return Path{}, err
			}
			current.Points = append(current.Points, pt)
		}
	}
	if path.Empty() {
		return Path{}, fmt.Errorf("path: no drawable subpath")
	}
	return path, nil
}

func tokenizePath(data string) []string {
	data = strings.NewReplacer(",", " ", "\n", " ", "\t", " ").Replace(data)
	var tokens []string
	for _, field := range strings.Fields(data) {
		// Split glued command letters like "M40" into "M" "40".
		for len(field) > 0 {
			switch field[0] {
			case 'M', 'm', 'L', 'l', 'Z', 'z':
				tokens = append(tokens, string(field[0]))
				field = field[1:]
			default:
				tokens = append(tokens, field)
				field = ""
			}
		}
	}
	return tokens
}
