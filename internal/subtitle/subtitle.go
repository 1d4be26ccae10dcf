package subtitle

// represents a single subtitle cue positioned over the video frame
type Cue struct {
	ID              int     `json:"id"`
	Start           float64 `json:"start"` // seconds
	End             float64 `json:"end"`   // seconds
	Text            string  `json:"text"`
	X               float64 `json:"x"` // percent of frame width
	Y               float64 `json:"y"` // percent of frame height
	FontSize        int     `json:"fontSize"`
	Color           string  `json:"color"`
	BackgroundColor string  `json:"backgroundColor"`
	FontFamily      string  `json:"fontFamily"`
	Visible         bool    `json:"visible"`
}

// style attributes applied to cues that do not carry their own
type Style struct {
	X               float64
	Y               float64
	FontSize        int
	Color           string
	BackgroundColor string
	FontFamily      string
}

const (
	MinFontSize = 12
	MaxFontSize = 72

	// length of a cue created by hand
	DefaultDuration = 3.0
	DefaultText     = "New subtitle"
)

var DefaultStyle = Style{
	X:               50,
	Y:               80,
	FontSize:        24,
	Color:           "#FFFFFF",
	BackgroundColor: "rgba(0,0,0,0.7)",
	FontFamily:      "Arial",
}

// font families offered by the editor. other names are accepted as free text
var FontFamilies = []string{
	"Arial",
	"Helvetica",
	"Times New Roman",
	"Georgia",
	"Verdana",
	"Courier New",
}

// builds a visible cue carrying the given style
func NewCue(id int, start, end float64, text string, style Style) Cue {
	return Cue{
		ID:              id,
		Start:           start,
		End:             end,
		Text:            text,
		X:               style.X,
		Y:               style.Y,
		FontSize:        style.FontSize,
		Color:           style.Color,
		BackgroundColor: style.BackgroundColor,
		FontFamily:      style.FontFamily,
		Visible:         true,
	}
}

// reports whether the cue is shown at t. both bounds are inclusive
func (c Cue) ActiveAt(t float64) bool {
	return c.Visible && t >= c.Start && t <= c.End
}

// an inverted cue ends before it starts and can never be active
func (c Cue) Inverted() bool {
	return c.Start > c.End
}

func IsKnownFontFamily(name string) bool {
	for _, f := range FontFamilies {
		if f == name {
			return true
		}
	}
	return false
}

// represents supported subtitle formats
type Format string

const (
	FormatSRT Format = "srt"
	FormatVTT Format = "vtt"
	FormatASS Format = "ass"
)

// a loaded subtitle file. Raw keeps the original text for the overlay renderer
type Track struct {
	Path   string
	Format Format
	Raw    string
	Cues   []Cue

	// ASS Dialogue lines dropped for having too few fields
	Skipped int
}
