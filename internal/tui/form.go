package tui

import (
	"github.com/jesseduffield/gocui"

	"github.com/Joseda-hg/lazycal/internal/model"
	"github.com/Joseda-hg/lazycal/internal/session"
)

type formField struct {
	Label string
	Field model.Field
}

var createFormFields = []formField{
	{Label: "Title", Field: model.FieldTitle},
	{Label: "Location", Field: model.FieldLocation},
}

func draftValue(state session.Creating, field model.Field) string {
	switch field {
	case model.FieldLocation:
		return state.DraftLocation
	default:
		return state.DraftTitle
	}
}

// formEditor feeds keystrokes of the create dialog into the session draft.
type formEditor struct {
	ui *UI
}

func (e *formEditor) Edit(view *gocui.View, key gocui.Key, ch rune, mod gocui.Modifier) bool {
	ui := e.ui
	if ui == nil || ui.session == nil {
		return false
	}
	state, ok := ui.session.State().(session.Creating)
	if !ok {
		return false
	}
	field := createFormFields[ui.formIndex]
	value := draftValue(state, field.Field)

	switch {
	case key == gocui.KeyBackspace || key == gocui.KeyBackspace2:
		runes := []rune(value)
		if len(runes) > 0 {
			value = string(runes[:len(runes)-1])
		}
	case key == gocui.KeySpace:
		value += " "
	case key == gocui.KeyCtrlU:
		value = ""
	case ch != 0 && ch != '\n' && ch != '\r' && mod == gocui.ModNone:
		value += string(ch)
	default:
		return false
	}

	if err := ui.session.SetField(field.Field, value); err != nil {
		ui.report(err)
	}
	ui.renderCreate(view)
	return true
}
