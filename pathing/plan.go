package pathing

// Waypoint is one step of a plan.
type Waypoint struct {
	Node     NodeID   `json:"node"`
	Position Vector3i `json:"position"`
}

// Plan is a finished route from start to goal, start included.
//
// The content never changes once the search returns it; only the cursor
// moves. A new plan's cursor sits past the end, so Reset must be called
// before stepping through it.
type Plan struct {
	steps  []Waypoint
	cost   float64
	cursor int
}

func newPlan() *Plan {
	return &Plan{}
}

// addNode appends a step while the search is assembling the plan.
func (p *Plan) addNode(step Waypoint) {
	p.steps = append(p.steps, step)
	p.cursor = len(p.steps)
}

// HasNext reports whether Next will return a step.
func (p *Plan) HasNext() bool {
	return p.cursor < len(p.steps)
}

// Reset moves the cursor to the first step.
func (p *Plan) Reset() {
	p.cursor = 0
}

// Next returns the step under the cursor and advances past it.
func (p *Plan) Next() (Waypoint, error) {
	if !p.HasNext() {
		return Waypoint{}, ErrCursorExhausted
	}
	step := p.steps[p.cursor]
	p.cursor++
	return step, nil
}

// Current returns the step under the cursor, which is what Next returns next.
func (p *Plan) Current() (Waypoint, bool) {
	if !p.HasNext() {
		return Waypoint{}, false
	}
	return p.steps[p.cursor], true
}

// Goal returns the last step.
func (p *Plan) Goal() (Waypoint, bool) {
	if len(p.steps) == 0 {
		return Waypoint{}, false
	}
	return p.steps[len(p.steps)-1], true
}

// Len returns the number of steps.
func (p *Plan) Len() int { return len(p.steps) }

// Cost returns the summed edge weight along the plan.
func (p *Plan) Cost() float64 { return p.cost }

// Steps returns a copy of all steps.
func (p *Plan) Steps() []Waypoint {
	return append([]Waypoint(nil), p.steps...)
}

// Nodes returns the node ids of all steps.
func (p *Plan) Nodes() []NodeID {
	ids := make([]NodeID, len(p.steps))
	for i, s := range p.steps {
		ids[i] = s.Node
	}
	return ids
}

// Positions returns the positions of all steps.
func (p *Plan) Positions() []Vector3i {
	positions := make([]Vector3i, len(p.steps))
	for i, s := range p.steps {
		positions[i] = s.Position
	}
	return positions
}
