package collab

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/Garsondee/breach-planner/internal/scenario"
)

// LayoutDocument is the editor state exchanged with the assistant. Fields
// are pointers so a missing key is distinguishable from a zero value.
type LayoutDocument struct {
	AttackerParams *scenario.FactionParams `json:"attacker_params"`
	DefenderParams *scenario.FactionParams `json:"defender_params"`
	Columns        *int                    `json:"columns"`
	Rows           *int                    `json:"rows"`
	Grid           [][]scenario.Cell       `json:"grid"`
}

// NewLayoutDocument snapshots the editor state.
func NewLayoutDocument(g *scenario.Grid, attacker, defender scenario.FactionParams) LayoutDocument {
	rows, cols := g.Rows(), g.Cols()
	return LayoutDocument{
		AttackerParams: &attacker,
		DefenderParams: &defender,
		Columns:        &cols,
		Rows:           &rows,
		Grid:           g.Layout(),
	}
}

type paramsWire struct {
	VisionRange *float64 `json:"vision_range"`
	SoundRadius *float64 `json:"sound_radius"`
	Reaction    *float64 `json:"reaction"`
}

func (w *paramsWire) params(side string) (*scenario.FactionParams, error) {
	switch {
	case w.VisionRange == nil:
		return nil, malformed("%s: missing vision_range", side)
	case w.SoundRadius == nil:
		return nil, malformed("%s: missing sound_radius", side)
	case w.Reaction == nil:
		return nil, malformed("%s: missing reaction", side)
	}
	return &scenario.FactionParams{VisionRange: *w.VisionRange, SoundRadius: *w.SoundRadius, Reaction: *w.Reaction}, nil
}

// UnmarshalJSON decodes a document, rejecting parameter objects with
// missing fields instead of defaulting them to zero.
func (d *LayoutDocument) UnmarshalJSON(data []byte) error {
	var w struct {
		AttackerParams *paramsWire       `json:"attacker_params"`
		DefenderParams *paramsWire       `json:"defender_params"`
		Columns        *int              `json:"columns"`
		Rows           *int              `json:"rows"`
		Grid           [][]scenario.Cell `json:"grid"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	out := LayoutDocument{Columns: w.Columns, Rows: w.Rows, Grid: w.Grid}
	var err error
	if w.AttackerParams != nil {
		if out.AttackerParams, err = w.AttackerParams.params("attacker_params"); err != nil {
			return err
		}
	}
	if w.DefenderParams != nil {
		if out.DefenderParams, err = w.DefenderParams.params("defender_params"); err != nil {
			return err
		}
	}
	*d = out
	return nil
}

// Validate rejects documents that cannot be applied verbatim: missing
// fields, out-of-range parameters or dimensions, or a grid whose shape
// disagrees with rows and columns.
func (d *LayoutDocument) Validate() error {
	switch {
	case d.AttackerParams == nil:
		return malformed("missing attacker_params")
	case d.DefenderParams == nil:
		return malformed("missing defender_params")
	case d.Rows == nil:
		return malformed("missing rows")
	case d.Columns == nil:
		return malformed("missing columns")
	case d.Grid == nil:
		return malformed("missing grid")
	}
	if err := d.AttackerParams.Validate(); err != nil {
		return malformed("attacker_params: %v", err)
	}
	if err := d.DefenderParams.Validate(); err != nil {
		return malformed("defender_params: %v", err)
	}
	rows, cols := *d.Rows, *d.Columns
	if rows < scenario.MinDim || rows > scenario.MaxDim || cols < scenario.MinDim || cols > scenario.MaxDim {
		return malformed("dimensions %dx%d outside [%d,%d]", rows, cols, scenario.MinDim, scenario.MaxDim)
	}
	if len(d.Grid) != rows {
		return malformed("grid has %d rows, document says %d", len(d.Grid), rows)
	}
	for i, row := range d.Grid {
		if len(row) != cols {
			return malformed("grid row %d has %d cells, document says %d", i, len(row), cols)
		}
	}
	return nil
}

// Apply replaces g's dimensions and content with the document. The
// document must have passed Validate.
func (d *LayoutDocument) Apply(g *scenario.Grid) {
	g.ReplaceLayout(*d.Rows, *d.Columns, d.Grid)
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("collab: %s: %w", fmt.Sprintf(format, args...), ErrMalformedResponse)
}

const instructionPrompt = `The current JSON representation of our grid state looks like this:
%s

The user has asked for the following changes:
%s

Perform these changes and reply with just a JSON object of this shape:
{
  "attacker_params": {"vision_range": number (0-20), "sound_radius": number (0-20), "reaction": number (0.5-2.0)},
  "defender_params": {"vision_range": number (0-20), "sound_radius": number (0-20), "reaction": number (0.5-2.0)},
  "columns": number (5-40),
  "rows": number (5-40),
  "grid": [[null, {"type": "player"|"defender"|"wall", "orientation": radians}, ...], ...]
}

Keep everything from the original layout that the user did not ask to change.
grid has "rows" entries, each with "columns" cells; null is an empty cell.
Reply with the JSON object only.`

// InstructionPrompt embeds the current layout and the operator's request.
func InstructionPrompt(doc LayoutDocument, instruction string) (string, error) {
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("collab: encode layout: %w", err)
	}
	return fmt.Sprintf(instructionPrompt, b, strings.TrimSpace(instruction)), nil
}

type askRequest struct {
	Prompt string `json:"prompt"`
}

type askResponse struct {
	Response *string `json:"response"`
}

// Assistant is the generative-text collaborator at <base>/ask-claude.
type Assistant struct {
	c client
}

// NewAssistant returns a client for base.
func NewAssistant(base string, timeout time.Duration) *Assistant {
	return &Assistant{c: newClient(base, timeout)}
}

// Ask sends a raw prompt and returns the response text.
func (a *Assistant) Ask(ctx context.Context, prompt string) (string, error) {
	var resp askResponse
	if err := a.c.postJSON(ctx, "/ask-claude", askRequest{Prompt: prompt}, &resp); err != nil {
		return "", err
	}
	if resp.Response == nil {
		return "", malformed("missing response field")
	}
	return *resp.Response, nil
}

// Instruct asks for doc to be changed per instruction and returns the
// validated replacement.
func (a *Assistant) Instruct(ctx context.Context, doc LayoutDocument, instruction string) (*LayoutDocument, error) {
	prompt, err := InstructionPrompt(doc, instruction)
	if err != nil {
		return nil, err
	}
	text, err := a.Ask(ctx, prompt)
	if err != nil {
		return nil, err
	}
	var out LayoutDocument
	if err := decodeEmbedded(text, &out); err != nil {
		return nil, err
	}
	if err := out.Validate(); err != nil {
		return nil, err
	}
	return &out, nil
}

// decodeEmbedded parses a JSON document out of assistant text, tolerating a
// surrounding markdown code fence.
func decodeEmbedded(text string, v any) error {
	s := strings.TrimSpace(text)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimPrefix(s, "json")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	if err := json.Unmarshal([]byte(s), v); err != nil {
		return malformed("decode embedded document: %v", err)
	}
	return nil
}
