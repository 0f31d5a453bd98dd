package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/odvcencio/furrykit/form"
	"github.com/odvcencio/furrykit/runtime"
)

func newFormCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "form SCHEMA",
		Short: "Edit a YAML-declared form interactively with live validation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			schema, data, err := loadForm(args[0])
			if err != nil {
				return err
			}
			return runForm(cmd.Context(), e, schema, data)
		},
	}
}

func runForm(ctx context.Context, e *env, schema *form.Schema, data *form.Data) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("open terminal: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("init terminal: %w", err)
	}
	defer screen.Fini()

	// Log output would corrupt the screen.
	quiet := zerolog.Nop()
	view := newFormView(schema, data, screen)
	app := runtime.NewApp(runtime.AppConfig{
		Logger:   &quiet,
		TickRate: e.cfg.TickRate,
		Update:   view.update,
		Render:   view.draw,
	})
	view.attach(form.New(data, form.WithScheduler(app.StateScheduler())))
	defer view.validator.Stop()

	go pumpEvents(screen, app.Services())

	if err := app.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

type keyInput struct {
	key tcell.Key
	r   rune
}

type keyMsg struct {
	keyInput
}

func (keyMsg) Message() {}

// pumpEvents forwards terminal events until the screen is finalized.
func pumpEvents(screen tcell.Screen, services runtime.Services) {
	for {
		switch ev := screen.PollEvent().(type) {
		case nil:
			return
		case *tcell.EventKey:
			services.Post(keyMsg{keyInput{key: ev.Key(), r: ev.Rune()}})
		case *tcell.EventResize:
			w, h := ev.Size()
			services.Post(runtime.ResizeMsg{Width: w, Height: h})
		}
	}
}

// surface is the part of tcell.Screen the view draws on.
type surface interface {
	Size() (int, int)
	Clear()
	SetContent(x, y int, primary rune, combining []rune, style tcell.Style)
	ShowCursor(x, y int)
	HideCursor()
	Show()
}

type formView struct {
	schema    *form.Schema
	data      *form.Data
	validator *form.Validator
	out       surface
	focus     int
}

func newFormView(schema *form.Schema, data *form.Data, out surface) *formView {
	return &formView{schema: schema, data: data, out: out}
}

func (v *formView) attach(validator *form.Validator) {
	v.validator = validator
}

func (v *formView) update(app *runtime.App, msg runtime.Message) bool {
	switch m := msg.(type) {
	case keyMsg:
		if v.handleKey(m.keyInput) {
			return true
		}
		app.ExecuteCommand(runtime.Quit{})
		return false
	case runtime.ResizeMsg:
		if s, ok := v.out.(interface{ Sync() }); ok {
			s.Sync()
		}
		return true
	default:
		return runtime.DefaultUpdate(app, msg)
	}
}

// handleKey applies one key press and returns false when the view should close.
func (v *formView) handleKey(in keyInput) bool {
	keys := v.data.Keys()
	if len(keys) == 0 {
		return in.key != tcell.KeyEscape && in.key != tcell.KeyCtrlC
	}
	v.focus = clamp(v.focus, len(keys))
	name := keys[v.focus]

	switch in.key {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return false
	case tcell.KeyTab, tcell.KeyDown:
		v.focus = (v.focus + 1) % len(keys)
	case tcell.KeyBacktab, tcell.KeyUp:
		v.focus = (v.focus - 1 + len(keys)) % len(keys)
	case tcell.KeyEnter:
		v.validator.ValidateForm()
	case tcell.KeyCtrlR:
		v.validator.ResetValidation()
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		text := []rune(valueText(v.data.Value(name)))
		if len(text) > 0 {
			_ = v.data.SetValue(name, string(text[:len(text)-1]))
		}
	case tcell.KeyRune:
		_ = v.data.SetValue(name, valueText(v.data.Value(name))+string(in.r))
	}
	return true
}

var (
	styleDefault = tcell.StyleDefault
	styleTitle   = tcell.StyleDefault.Bold(true)
	styleValue   = tcell.StyleDefault.Underline(true)
	styleError   = tcell.StyleDefault.Foreground(tcell.ColorRed)
	styleValid   = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	styleHelp    = tcell.StyleDefault.Dim(true)
)

const helpLine = "Tab/Shift-Tab move  Enter submit  Ctrl-R reset  Esc quit"

func (v *formView) draw() {
	out := v.out
	width, height := out.Size()
	out.Clear()
	out.HideCursor()

	title := v.schema.Name
	if title == "" {
		title = "form"
	}
	verdict, verdictStyle := "valid", styleValid
	if v.validator != nil && !v.validator.IsFormValid().Get() {
		verdict, verdictStyle = "invalid", styleError
	}
	x := drawText(out, 0, 0, width, title+"  ", styleTitle)
	x = drawText(out, x, 0, width, verdict, verdictStyle)
	if v.validator != nil && v.validator.Submitted().Get() {
		drawText(out, x, 0, width, "  (submitted)", styleHelp)
	}

	keys := v.data.Keys()
	v.focus = clamp(v.focus, len(keys))
	labelWidth := 0
	for _, key := range keys {
		labelWidth = max(labelWidth, runewidth.StringWidth(v.schema.Label(key)))
	}
	labelWidth += 2

	y := 2
	for i, key := range keys {
		if y >= height-1 {
			break
		}
		marker := "  "
		if i == v.focus {
			marker = "> "
		}
		x := drawText(out, 0, y, width, marker+runewidth.FillRight(v.schema.Label(key), labelWidth), styleDefault)
		value := runewidth.Truncate(valueText(v.data.Value(key)), max(width-x-1, 0), "…")
		end := drawText(out, x, y, width, value, styleValue)
		if i == v.focus {
			out.ShowCursor(end, y)
		}
		y++
		if v.validator == nil {
			continue
		}
		if fv, ok := v.validator.Validity(key); ok && !fv.IsValid && y < height-1 {
			drawText(out, x, y, width, fv.ErrorMessage, styleError)
			y++
		}
	}

	if height > 0 {
		drawText(out, 0, height-1, width, helpLine, styleHelp)
	}
	out.Show()
}

// drawText writes s from (x, y), clipped at width, and returns the next column.
func drawText(out surface, x, y, width int, s string, style tcell.Style) int {
	for _, r := range s {
		w := runewidth.RuneWidth(r)
		if w == 0 {
			continue
		}
		if x+w > width {
			break
		}
		out.SetContent(x, y, r, nil, style)
		x += w
	}
	return x
}

func valueText(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}

func clamp(i, n int) int {
	if n == 0 || i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
