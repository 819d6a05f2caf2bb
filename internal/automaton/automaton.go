package automaton

import "fmt"

type layer struct {
	spec  LayerSpec
	slots [2][]Cell
}

type Automaton struct {
	width, height int
	layers        []layer
	feedback      int
	parity        int
	steps         uint64

	// neighbour index tables keyed by radius, row-major per cell
	tables map[int][]int32
	counts [3][]uint32
}

// New builds an automaton with the default rule chain and a uniform modulus.
func New(width, height, layerCount int, modulus uint64) (*Automaton, error) {
	return NewWithConfig(DefaultConfig(width, height, layerCount, modulus))
}

// NewWithConfig validates cfg and builds a zeroed automaton with the seed cell
// set on every channel.
func NewWithConfig(cfg Config) (*Automaton, error) {
	if err := validate(cfg); err != nil {
		return nil, err
	}

	area := cfg.Width * cfg.Height
	a := &Automaton{
		width:    cfg.Width,
		height:   cfg.Height,
		layers:   make([]layer, len(cfg.Layers)),
		feedback: cfg.FeedbackLayer,
		tables:   make(map[int][]int32),
	}

	// fashion counters are indexed by source values
	var counts [3]uint64
	for i, spec := range cfg.Layers {
		a.layers[i] = layer{
			spec:  spec,
			slots: [2][]Cell{make([]Cell, area), make([]Cell, area)},
		}
		if spec.Rule == RuleSum || spec.Rule == RuleFashion {
			if _, ok := a.tables[spec.Radius]; !ok {
				a.tables[spec.Radius] = a.buildTable(spec.Radius)
			}
		}
		if spec.Rule == RuleFashion {
			src := cfg.Layers[a.source(i)].Modulus
			for ch := range counts {
				counts[ch] = max(counts[ch], src[ch])
			}
		}
	}
	for ch := range a.counts {
		a.counts[ch] = make([]uint32, counts[ch])
	}

	seed := cfg.Seed
	m := cfg.Layers[seed.Layer].Modulus
	a.layers[seed.Layer].slots[a.parity][a.index(seed.X, seed.Y)] = Cell{
		Color:      seed.Value % m[0],
		Saturation: seed.Value % m[1],
		Brightness: seed.Value % m[2],
	}
	return a, nil
}

func validate(cfg Config) error {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrGridSize, cfg.Width, cfg.Height)
	}
	if len(cfg.Layers) == 0 {
		return ErrNoLayers
	}
	for i, spec := range cfg.Layers {
		if _, ok := ruleNames[spec.Rule]; !ok {
			return fmt.Errorf("layer %d: %w: %d", i, ErrUnknownRule, int(spec.Rule))
		}
		for ch, m := range spec.Modulus {
			if m < 2 || m > MaxModulus {
				return fmt.Errorf("layer %d %s: %w (got %d)", i, Channel(ch), ErrModulus, m)
			}
		}
		if spec.Rule == RuleSum || spec.Rule == RuleFashion {
			if err := checkRadius(spec.Radius, cfg.Width, cfg.Height); err != nil {
				return fmt.Errorf("layer %d: %w", i, err)
			}
		}
	}
	if cfg.FeedbackLayer < 0 || cfg.FeedbackLayer >= len(cfg.Layers) {
		return fmt.Errorf("%w: %d", ErrFeedbackLayer, cfg.FeedbackLayer)
	}
	s := cfg.Seed
	if s.Layer < 0 || s.Layer >= len(cfg.Layers) || s.X < 0 || s.X >= cfg.Width || s.Y < 0 || s.Y >= cfg.Height {
		return fmt.Errorf("seed: %w: layer %d at (%d,%d)", ErrOutOfBounds, s.Layer, s.X, s.Y)
	}
	return nil
}

func checkRadius(radius, width, height int) error {
	if radius < 0 {
		return fmt.Errorf("%w: %d", ErrNegativeRadius, radius)
	}
	if radius >= width || radius >= height {
		return fmt.Errorf("%w: radius %d on %dx%d", ErrRadiusTooLarge, radius, width, height)
	}
	return nil
}

// source is the layer that layer k reads from during a step.
func (a *Automaton) source(k int) int {
	if k == 0 {
		return a.feedback
	}
	return k - 1
}

func (a *Automaton) index(x, y int) int { return y*a.width + x }

func wrap(v, n int) int {
	v %= n
	if v < 0 {
		v += n
	}
	return v
}

func (a *Automaton) buildTable(radius int) []int32 {
	side := 2*radius + 1
	table := make([]int32, 0, a.width*a.height*side*side)
	for y := 0; y < a.height; y++ {
		for x := 0; x < a.width; x++ {
			for dy := -radius; dy <= radius; dy++ {
				ny := wrap(y+dy, a.height)
				for dx := -radius; dx <= radius; dx++ {
					table = append(table, int32(a.index(wrap(x+dx, a.width), ny)))
				}
			}
		}
	}
	return table
}

// Neighborhood returns the wrapped square of side 2*radius+1 centred on
// (x, y), row-major from the top-left corner.
func (a *Automaton) Neighborhood(x, y, radius int) ([]Point, error) {
	if x < 0 || x >= a.width || y < 0 || y >= a.height {
		return nil, fmt.Errorf("%w: (%d,%d)", ErrOutOfBounds, x, y)
	}
	if err := checkRadius(radius, a.width, a.height); err != nil {
		return nil, err
	}
	side := 2*radius + 1
	points := make([]Point, 0, side*side)
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			points = append(points, Point{X: wrap(x+dx, a.width), Y: wrap(y+dy, a.height)})
		}
	}
	return points, nil
}

// Step advances every layer once.
func (a *Automaton) Step() {
	front, back := a.parity, a.parity^1
	for k := range a.layers {
		l := &a.layers[k]
		from := &a.layers[a.source(k)]
		src := from.slots[back]
		if k == 0 {
			src = from.slots[front]
		}
		srcMod := from.spec.Modulus
		dst := l.slots[back]
		m := l.spec.Modulus

		switch l.spec.Rule {
		case RuleCopy:
			for i, c := range src {
				dst[i] = Cell{c.Color % m[0], c.Saturation % m[1], c.Brightness % m[2]}
			}
		case RuleSum:
			a.sum(dst, src, l.spec.Radius, m)
		case RuleFlip:
			flip(dst, l.slots[front], src, m)
		case RuleFashion:
			a.fashion(dst, src, l.spec.Radius, m, srcMod)
		}
	}
	a.parity = back
	a.steps++
}

func (a *Automaton) sum(dst, src []Cell, radius int, m [3]uint64) {
	side := 2*radius + 1
	n := side * side
	table := a.tables[radius]
	for i := range dst {
		var c, s, b uint64
		for _, j := range table[i*n : (i+1)*n] {
			nc := src[j]
			c += nc.Color
			s += nc.Saturation
			b += nc.Brightness
		}
		dst[i] = Cell{c % m[0], s % m[1], b % m[2]}
	}
}

func flip(dst, prev, src []Cell, m [3]uint64) {
	for i, p := range prev {
		c := p
		if src[i].Color == 0 {
			c.Color = (c.Color + 1) % m[0]
		}
		if src[i].Saturation == 0 {
			c.Saturation = (c.Saturation + 1) % m[1]
		}
		if src[i].Brightness == 0 {
			c.Brightness = (c.Brightness + 1) % m[2]
		}
		dst[i] = c
	}
}

func (a *Automaton) fashion(dst, src []Cell, radius int, m, srcMod [3]uint64) {
	side := 2*radius + 1
	n := side * side
	table := a.tables[radius]
	for i := range dst {
		for ch := range a.counts {
			clear(a.counts[ch][:srcMod[ch]])
		}
		for _, j := range table[i*n : (i+1)*n] {
			nc := src[j]
			a.counts[0][nc.Color]++
			a.counts[1][nc.Saturation]++
			a.counts[2][nc.Brightness]++
		}
		dst[i] = Cell{
			Color:      mode(a.counts[0][:srcMod[0]]) % m[0],
			Saturation: mode(a.counts[1][:srcMod[1]]) % m[1],
			Brightness: mode(a.counts[2][:srcMod[2]]) % m[2],
		}
	}
}

// mode returns the value with the strictly greatest count; ties keep the
// lowest value.
func mode(counts []uint32) uint64 {
	best := 0
	for v := 1; v < len(counts); v++ {
		if counts[v] > counts[best] {
			best = v
		}
	}
	return uint64(best)
}

// At returns the current value of a cell. Coordinates wrap.
func (a *Automaton) At(layer, x, y int) Cell {
	return a.layers[layer].slots[a.parity][a.index(wrap(x, a.width), wrap(y, a.height))]
}

// Layer returns a copy of the current cells of layer k, row-major.
func (a *Automaton) Layer(k int) []Cell {
	cells := make([]Cell, len(a.layers[k].slots[a.parity]))
	copy(cells, a.layers[k].slots[a.parity])
	return cells
}

// Top is the index of the last layer, the one that is sampled and rendered.
func (a *Automaton) Top() int { return len(a.layers) - 1 }

func (a *Automaton) LayerCount() int { return len(a.layers) }

func (a *Automaton) Size() (width, height int) { return a.width, a.height }

// Modulus returns the per-channel modulus of layer k.
func (a *Automaton) Modulus(k int) [3]uint64 { return a.layers[k].spec.Modulus }

// Steps reports how many times Step has run.
func (a *Automaton) Steps() uint64 { return a.steps }

// Right moves one cell east, wrapping at the edge.
func (a *Automaton) Right(p Point) Point { return Point{X: wrap(p.X+1, a.width), Y: p.Y} }

// Down moves one cell south, wrapping at the edge.
func (a *Automaton) Down(p Point) Point { return Point{X: p.X, Y: wrap(p.Y+1, a.height)} }

// Clone returns an independent deep copy.
func (a *Automaton) Clone() *Automaton {
	c := &Automaton{
		width:    a.width,
		height:   a.height,
		layers:   make([]layer, len(a.layers)),
		feedback: a.feedback,
		parity:   a.parity,
		steps:    a.steps,
		tables:   a.tables,
	}
	for i, l := range a.layers {
		c.layers[i] = layer{spec: l.spec}
		for s := range l.slots {
			c.layers[i].slots[s] = append([]Cell(nil), l.slots[s]...)
		}
	}
	for ch := range a.counts {
		c.counts[ch] = make([]uint32, len(a.counts[ch]))
	}
	return c
}
