package data

// Multipliers applied by the type chart.
const (
	SuperEffective   = 2.0
	NotVeryEffective = 0.5
	NoEffect         = 0.0
)

// TypeMatchups is one attacking type's row of the chart, loaded from YAML.
type TypeMatchups struct {
	Attack string   `yaml:"attack"`
	Super  []string `yaml:"super"`
	Weak   []string `yaml:"weak"`
	Immune []string `yaml:"immune"`
}

// TypeChart maps attacking type → defending type → multiplier.
// Absent pairs are neutral.
type TypeChart struct {
	rows map[string]map[string]float64
}

// NewTypeChart builds a chart from matchup rows; later rows override earlier ones.
func NewTypeChart(rows []TypeMatchups) *TypeChart {
	c := &TypeChart{rows: make(map[string]map[string]float64)}
	for _, r := range rows {
		row := c.rows[r.Attack]
		if row == nil {
			row = make(map[string]float64)
			c.rows[r.Attack] = row
		}
		for _, d := range r.Super {
			row[d] = SuperEffective
		}
		for _, d := range r.Weak {
			row[d] = NotVeryEffective
		}
		for _, d := range r.Immune {
			row[d] = NoEffect
		}
	}
	return c
}

// Effectiveness multiplies the attacking type's multiplier against each
// defending type.
//
// Postcondition: result is 1 when no pair is listed.
func (c *TypeChart) Effectiveness(attack string, defend []string) float64 {
	m := 1.0
	row := c.rows[attack]
	for _, d := range defend {
		if v, ok := row[d]; ok {
			m *= v
		}
	}
	return m
}
