package netlist

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/edp1096/femspice/pkg/engine"
	"github.com/edp1096/femspice/pkg/util"
)

type AnalysisMode string

const (
	AnalysisOP   AnalysisMode = "op"
	AnalysisTran AnalysisMode = "tran"
)

type Analysis struct {
	Mode AnalysisMode
	Step float64 // s, transient only
	End  float64 // s, transient only
}

// Deck is a SPICE-style netlist of engine-ready elements.
type Deck struct {
	Title    string
	Elements []engine.Element
	Analysis Analysis
}

// WriteDeck renders elements as a SPICE deck followed by the analysis card.
func WriteDeck(w io.Writer, title string, elements []engine.Element, an Analysis) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "* %s\n", title)
	for _, e := range elements {
		line, err := deckLine(e)
		if err != nil {
			return err
		}
		fmt.Fprintln(bw, line)
	}

	switch an.Mode {
	case AnalysisTran:
		fmt.Fprintf(bw, ".tran %s %s\n", util.FormatSpice(an.Step), util.FormatSpice(an.End))
	case AnalysisOP, "":
		fmt.Fprintln(bw, ".op")
	default:
		return fmt.Errorf("unsupported analysis %q", an.Mode)
	}
	fmt.Fprintln(bw, ".end")

	return bw.Flush()
}

func deckLine(e engine.Element) (string, error) {
	f := util.FormatSpice
	switch e.Kind {
	case engine.Resistor, engine.Capacitor, engine.Inductor:
		return fmt.Sprintf("%s %s %s %s", e.Name, e.Node1, e.Node2, f(e.Value)), nil
	case engine.VoltageSource, engine.CurrentSource:
		return fmt.Sprintf("%s %s %s DC %s", e.Name, e.Node1, e.Node2, f(e.Value)), nil
	case engine.PulseVoltageSource:
		p := e.Pulse
		if p == nil {
			p = &engine.Pulse{Initial: e.Value, Pulsed: e.Value}
		}
		return fmt.Sprintf("%s %s %s PULSE(%s %s %s %s %s %s %s)", e.Name, e.Node1, e.Node2,
			f(p.Initial), f(p.Pulsed), f(p.Delay), f(p.Rise), f(p.Fall), f(p.Width), f(p.Period)), nil
	}
	return "", &ElementError{Element: e.Name, Reason: fmt.Sprintf("unsupported type %q", e.Kind)}
}

// ParseDeck reads the subset of SPICE written by WriteDeck: R, C, L, V and I
// cards, PULSE(...) voltage sources, "+" continuation lines, "*" comments
// and the .op, .tran and .end controls. The first line is the title.
func ParseDeck(r io.Reader) (*Deck, error) {
	scanner := bufio.NewScanner(r)
	deck := &Deck{Analysis: Analysis{Mode: AnalysisOP}}

	// Title or comment
	if scanner.Scan() {
		deck.Title = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(scanner.Text()), "*"))
	}

	var currentLine string
	lineNo, startLine := 1, 1
	flush := func() error {
		if currentLine == "" {
			return nil
		}
		err := parseDeckLine(deck, currentLine)
		currentLine = ""
		if err != nil {
			return fmt.Errorf("line %d: %w", startLine, err)
		}
		return nil
	}

	ended := false
	for !ended && scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())

		// Inline comment
		if idx := strings.IndexAny(line, ";$"); idx >= 0 {
			line = strings.TrimSpace(line[:idx])
		}
		if line == "" || strings.HasPrefix(line, "*") {
			continue
		}

		if strings.HasPrefix(line, "+") { // Line continue
			if currentLine == "" {
				return nil, fmt.Errorf("line %d: continuation without a card", lineNo)
			}
			currentLine += " " + strings.TrimSpace(line[1:])
			continue
		}

		if err := flush(); err != nil {
			return nil, err
		}
		if strings.EqualFold(line, ".end") {
			ended = true
			continue
		}
		currentLine = line
		startLine = lineNo
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading deck: %w", err)
	}
	if err := flush(); err != nil {
		return nil, err
	}

	return deck, nil
}

func parseDeckLine(deck *Deck, line string) error {
	if strings.HasPrefix(line, ".") {
		return parseControl(deck, line)
	}

	elem, err := parseCard(line)
	if err != nil {
		return err
	}
	for _, existing := range deck.Elements {
		if strings.EqualFold(existing.Name, elem.Name) {
			return &ElementError{Element: elem.Name, Reason: "duplicate element name"}
		}
	}
	deck.Elements = append(deck.Elements, *elem)
	return nil
}

func parseControl(deck *Deck, line string) error {
	fields := strings.Fields(line)
	switch strings.ToLower(fields[0]) {
	case ".op":
		deck.Analysis = Analysis{Mode: AnalysisOP}

	case ".tran":
		if len(fields) < 3 {
			return fmt.Errorf("insufficient tran parameters, need tstep and tstop")
		}
		step, err := ParseValue(fields[1])
		if err != nil {
			return fmt.Errorf("invalid tstep: %w", err)
		}
		end, err := ParseValue(fields[2])
		if err != nil {
			return fmt.Errorf("invalid tstop: %w", err)
		}
		deck.Analysis = Analysis{Mode: AnalysisTran, Step: step, End: end}

	default:
		return fmt.Errorf("unsupported control card: %s", fields[0])
	}
	return nil
}

func parseCard(line string) (*engine.Element, error) {
	// Treat parentheses as separators: PULSE(0 5 ...) and PULSE (0 5 ...)
	line = strings.NewReplacer("(", " ( ", ")", " ) ", ",", " ").Replace(line)
	fields := strings.Fields(line)
	if len(fields) < 4 {
		return nil, &ElementError{Element: fields[0], Reason: "need name, two nodes and a value"}
	}

	elem := &engine.Element{Name: fields[0], Node1: fields[1], Node2: fields[2]}
	args := fields[3:]
	name := strings.ToUpper(elem.Name)

	switch {
	case strings.HasPrefix(name, "PV"), strings.HasPrefix(name, "V"):
		elem.Kind = engine.VoltageSource
	case strings.HasPrefix(name, "I"):
		elem.Kind = engine.CurrentSource
	case strings.HasPrefix(name, "R"):
		elem.Kind = engine.Resistor
	case strings.HasPrefix(name, "C"):
		elem.Kind = engine.Capacitor
	case strings.HasPrefix(name, "L"):
		elem.Kind = engine.Inductor
	default:
		return nil, &ElementError{Element: elem.Name, Reason: "unsupported element type"}
	}

	if elem.Kind == engine.VoltageSource || elem.Kind == engine.CurrentSource {
		switch strings.ToUpper(args[0]) {
		case "DC":
			args = args[1:]
		case "PULSE":
			if elem.Kind != engine.VoltageSource {
				return nil, &ElementError{Element: elem.Name, Reason: "PULSE is only supported on voltage sources"}
			}
			pulse, err := parsePulseParams(args[1:])
			if err != nil {
				return nil, &ElementError{Element: elem.Name, Reason: err.Error()}
			}
			elem.Kind = engine.PulseVoltageSource
			elem.Pulse = pulse
			elem.Value = pulse.Initial
			return elem, nil
		}
	}
	if strings.HasPrefix(name, "PV") {
		return nil, &ElementError{Element: elem.Name, Reason: "pulse source without PULSE(...)"}
	}

	if len(args) != 1 {
		return nil, &ElementError{Element: elem.Name, Reason: fmt.Sprintf("expected one value, got %q", strings.Join(args, " "))}
	}
	value, err := ParseValue(args[0])
	if err != nil {
		return nil, &ElementError{Element: elem.Name, Reason: err.Error()}
	}
	elem.Value = value

	return elem, nil
}

// parsePulseParams reads "( v1 v2 td tr tf pw per )". Trailing timings may be
// omitted and default to zero.
func parsePulseParams(words []string) (*engine.Pulse, error) {
	if len(words) == 0 || words[0] != "(" {
		return nil, fmt.Errorf("PULSE parameters must be parenthesized")
	}
	words = words[1:]
	if len(words) == 0 || words[len(words)-1] != ")" {
		return nil, fmt.Errorf("unterminated PULSE parameters")
	}
	words = words[:len(words)-1]
	if len(words) < 2 || len(words) > 7 {
		return nil, fmt.Errorf("PULSE needs 2 to 7 parameters, got %d", len(words))
	}

	values := make([]float64, 7)
	labels := []string{"V1", "V2", "delay", "rise", "fall", "width", "period"}
	for i, w := range words {
		v, err := ParseValue(w)
		if err != nil {
			return nil, fmt.Errorf("invalid PULSE %s: %v", labels[i], err)
		}
		values[i] = v
	}

	return &engine.Pulse{
		Initial: values[0],
		Pulsed:  values[1],
		Delay:   values[2],
		Rise:    values[3],
		Fall:    values[4],
		Width:   values[5],
		Period:  values[6],
	}, nil
}

var scaleFactors = map[string]float64{
	"t":   1e12,  // tera
	"g":   1e9,   // giga
	"meg": 1e6,   // mega
	"k":   1e3,   // kilo
	"m":   1e-3,  // milli
	"u":   1e-6,  // micro
	"n":   1e-9,  // nano
	"p":   1e-12, // pico
	"f":   1e-15, // femto
}

var valuePattern = regexp.MustCompile(`^([-+]?(?:\d+\.?\d*|\.\d+)(?:[eE][-+]?\d+)?)(meg|[tgkmunpf])?([a-z]*)$`)

// ParseValue - Parse value and scale factor. 1k -> 1000, 50us -> 5e-05
// Suffixes are case-insensitive as in SPICE, so "M" is milli and mega is "meg".
// Letters after the suffix are a unit name and ignored.
func ParseValue(val string) (float64, error) {
	matches := valuePattern.FindStringSubmatch(strings.ToLower(strings.TrimSpace(val)))
	if matches == nil {
		return 0, fmt.Errorf("invalid value format: %s", val)
	}

	num, err := strconv.ParseFloat(matches[1], 64)
	if err != nil {
		return 0, err
	}

	// factor
	if matches[2] != "" {
		num *= scaleFactors[matches[2]]
	}

	return num, nil
}

// FromEngine lifts normalized elements back into elements with empty
// prefixes, so that decks pass through the same assembly as diagrams.
func FromEngine(elements []engine.Element) []Element {
	out := make([]Element, 0, len(elements))
	for _, e := range elements {
		elem := Element{
			Kind:  e.Kind,
			Name:  e.Name,
			Node1: e.Node1,
			Node2: e.Node2,
			Value: e.Value,
			Unit:  UnitFor(e.Kind),
		}
		if p := e.Pulse; p != nil {
			elem.Pulse = &Pulse{
				Initial: volts(p.Initial, ""),
				Pulsed:  volts(p.Pulsed, ""),
				Delay:   seconds(p.Delay, ""),
				Rise:    seconds(p.Rise, ""),
				Fall:    seconds(p.Fall, ""),
				Width:   seconds(p.Width, ""),
				Period:  seconds(p.Period, ""),
			}
		}
		out = append(out, elem)
	}
	return out
}
