// Package atlas parses packed texture atlases and looks up their regions.
//
// The text format is the one written by the libGDX/Spine texture packer:
//
//	page.png
//	size: 256,128
//	format: RGBA8888
//	filter: Linear,Linear
//	repeat: none
//	head
//	  rotate: false
//	  xy: 2, 2
//	  size: 64, 64
//	  orig: 64, 64
//	  offset: 0, 0
//	  index: -1
//
// Pages are separated by blank lines. The newer "bounds"/"offsets" region
// fields are accepted as well.
package atlas

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

// Atlas parse errors.
var (
	ErrMalformed   = errors.New("malformed atlas")
	ErrMissingPage = errors.New("atlas region declared before any page")
)

// Atlas is a parsed texture atlas.
type Atlas struct {
	pages   []*Page
	regions []*Region
	byName  map[string][]*Region
}

// Pages returns the atlas pages in file order.
func (a *Atlas) Pages() []*Page {
	return a.pages
}

// Regions returns every region in file order.
func (a *Atlas) Regions() []*Region {
	return a.regions
}

// FindRegion returns the first region with the given name, or nil.
// For sequences this is the frame with the lowest index.
func (a *Atlas) FindRegion(name string) *Region {
	regions := a.byName[name]
	if len(regions) == 0 {
		return nil
	}
	return regions[0]
}

// FindRegions returns all regions with the given name ordered by index.
// The returned slice is shared and must not be modified.
func (a *Atlas) FindRegions(name string) []*Region {
	return a.byName[name]
}

// Names returns the distinct region names in file order.
func (a *Atlas) Names() []string {
	names := make([]string, 0, len(a.byName))
	seen := make(map[string]bool, len(a.byName))
	for _, r := range a.regions {
		if !seen[r.Name] {
			seen[r.Name] = true
			names = append(names, r.Name)
		}
	}
	return names
}

// Parse parses an atlas description.
func Parse(r io.Reader) (*Atlas, error) {
	p := parser{
		atlas: &Atlas{byName: make(map[string][]*Region)},
	}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		p.line++
		if err := p.feed(scanner.Text()); err != nil {
			return nil, fmt.Errorf("line %d: %w", p.line, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading atlas: %w", err)
	}
	if err := p.finishRegion(); err != nil {
		return nil, fmt.Errorf("line %d: %w", p.line, err)
	}

	for name, regions := range p.atlas.byName {
		sort.SliceStable(regions, func(i, j int) bool {
			return regions[i].Index < regions[j].Index
		})
		p.atlas.byName[name] = regions
	}

	for _, page := range p.atlas.pages {
		for _, region := range page.regions {
			region.updateUVs(page.Width, page.Height)
		}
	}

	return p.atlas, nil
}

// ParseString parses an atlas held in memory.
func ParseString(s string) (*Atlas, error) {
	return Parse(strings.NewReader(s))
}

type parser struct {
	atlas  *Atlas
	page   *Page
	region *Region
	fields map[string]string
	line   int
}

func (p *parser) feed(raw string) error {
	line := strings.TrimRight(raw, " \t\r")
	if strings.TrimSpace(line) == "" {
		if err := p.finishRegion(); err != nil {
			return err
		}
		p.page = nil
		return nil
	}

	indented := line[0] == ' ' || line[0] == '\t'
	line = strings.TrimSpace(line)
	key, value, isField := strings.Cut(line, ":")

	switch {
	case p.page == nil:
		if isField && p.atlas.pages == nil {
			// Header fields before the first page are ignored.
			return nil
		}
		if isField {
			return ErrMissingPage
		}
		p.page = &Page{Name: line, MinFilter: "Nearest", MagFilter: "Nearest"}
		p.atlas.pages = append(p.atlas.pages, p.page)
		return nil

	case isField && (indented || p.region != nil):
		if p.region == nil {
			return ErrMissingPage
		}
		p.fields[strings.TrimSpace(key)] = strings.TrimSpace(value)
		return nil

	case isField:
		return p.pageField(strings.TrimSpace(key), strings.TrimSpace(value))

	default:
		if err := p.finishRegion(); err != nil {
			return err
		}
		p.region = &Region{Name: line, Index: -1, Page: p.page}
		p.fields = make(map[string]string, 8)
		return nil
	}
}

func (p *parser) pageField(key, value string) error {
	switch key {
	case "size":
		w, h, err := parsePair(value)
		if err != nil {
			return fmt.Errorf("page size: %w", err)
		}
		p.page.Width, p.page.Height = int(w), int(h)
	case "format":
		p.page.Format = value
	case "filter":
		minF, magF, _ := strings.Cut(value, ",")
		p.page.MinFilter = strings.TrimSpace(minF)
		p.page.MagFilter = strings.TrimSpace(magF)
		if p.page.MagFilter == "" {
			p.page.MagFilter = p.page.MinFilter
		}
	case "repeat":
		p.page.RepeatX = strings.Contains(value, "x")
		p.page.RepeatY = strings.Contains(value, "y")
	case "pma":
		p.page.PMA = value == "true"
	}
	return nil
}

func (p *parser) finishRegion() error {
	r := p.region
	if r == nil {
		return nil
	}
	p.region = nil

	var width, height float64
	if v, ok := p.fields["bounds"]; ok {
		nums, err := parseInts(v, 4)
		if err != nil {
			return fmt.Errorf("region %q bounds: %w", r.Name, err)
		}
		r.X, r.Y = nums[0], nums[1]
		width, height = float64(nums[2]), float64(nums[3])
	} else {
		x, y, err := parsePair(p.fields["xy"])
		if err != nil {
			return fmt.Errorf("region %q xy: %w", r.Name, err)
		}
		r.X, r.Y = int(x), int(y)
		width, height, err = parsePair(p.fields["size"])
		if err != nil {
			return fmt.Errorf("region %q size: %w", r.Name, err)
		}
	}

	switch v := p.fields["rotate"]; v {
	case "", "false", "0":
	case "true":
		r.Rotate = true
	default:
		deg, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: region %q rotate %q", ErrMalformed, r.Name, v)
		}
		r.Rotate = deg%360 != 0
	}

	// The file stores the unrotated size; the packed rectangle is swapped.
	r.PackedWidth, r.PackedHeight = int(width), int(height)
	if r.Rotate {
		r.PackedWidth, r.PackedHeight = int(height), int(width)
	}
	r.OriginalWidth, r.OriginalHeight = int(width), int(height)

	if v, ok := p.fields["offsets"]; ok {
		nums, err := parseInts(v, 4)
		if err != nil {
			return fmt.Errorf("region %q offsets: %w", r.Name, err)
		}
		r.OffsetX, r.OffsetY = float32(nums[0]), float32(nums[1])
		r.OriginalWidth, r.OriginalHeight = nums[2], nums[3]
	} else {
		if v, ok := p.fields["orig"]; ok {
			w, h, err := parsePair(v)
			if err != nil {
				return fmt.Errorf("region %q orig: %w", r.Name, err)
			}
			r.OriginalWidth, r.OriginalHeight = int(w), int(h)
		}
		if v, ok := p.fields["offset"]; ok {
			x, y, err := parsePair(v)
			if err != nil {
				return fmt.Errorf("region %q offset: %w", r.Name, err)
			}
			r.OffsetX, r.OffsetY = float32(x), float32(y)
		}
	}

	if v, ok := p.fields["index"]; ok {
		idx, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: region %q index %q", ErrMalformed, r.Name, v)
		}
		r.Index = idx
	}

	p.page.regions = append(p.page.regions, r)
	p.atlas.regions = append(p.atlas.regions, r)
	p.atlas.byName[r.Name] = append(p.atlas.byName[r.Name], r)
	return nil
}

func parsePair(value string) (float64, float64, error) {
	a, b, ok := strings.Cut(value, ",")
	if !ok {
		return 0, 0, fmt.Errorf("%w: expected pair, got %q", ErrMalformed, value)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(a), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrMalformed, value)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(b), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrMalformed, value)
	}
	return x, y, nil
}

func parseInts(value string, n int) ([]int, error) {
	parts := strings.Split(value, ",")
	if len(parts) != n {
		return nil, fmt.Errorf("%w: expected %d values, got %q", ErrMalformed, n, value)
	}
	nums := make([]int, n)
	for i, part := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrMalformed, value)
		}
		nums[i] = v
	}
	return nums, nil
}
