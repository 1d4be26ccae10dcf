package subtitle

// partial update of a cue. nil fields are left untouched
type Patch struct {
	Start           *float64
	End             *float64
	Text            *string
	X               *float64
	Y               *float64
	FontSize        *int
	Color           *string
	BackgroundColor *string
	FontFamily      *string
	Visible         *bool
}

// returns c with every set field of p written over it
func (p Patch) Apply(c Cue) Cue {
	if p.Start != nil {
		c.Start = *p.Start
	}
	if p.End != nil {
		c.End = *p.End
	}
	if p.Text != nil {
		c.Text = *p.Text
	}
	if p.X != nil {
		c.X = *p.X
	}
	if p.Y != nil {
		c.Y = *p.Y
	}
	if p.FontSize != nil {
		c.FontSize = *p.FontSize
	}
	if p.Color != nil {
		c.Color = *p.Color
	}
	if p.BackgroundColor != nil {
		c.BackgroundColor = *p.BackgroundColor
	}
	if p.FontFamily != nil {
		c.FontFamily = *p.FontFamily
	}
	if p.Visible != nil {
		c.Visible = *p.Visible
	}
	return c
}

func (p Patch) Empty() bool {
	return p == Patch{}
}

func Float(v float64) *float64 { return &v }

func Int(v int) *int { return &v }

func String(v string) *string { return &v }

func Bool(v bool) *bool { return &v }
