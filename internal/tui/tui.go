package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	goerrors "github.com/go-errors/errors"
	"github.com/jesseduffield/gocui"
	"github.com/robfig/cron/v3"

	"github.com/Joseda-hg/lazycal/internal/calendar"
	"github.com/Joseda-hg/lazycal/internal/db"
	"github.com/Joseda-hg/lazycal/internal/ics"
	"github.com/Joseda-hg/lazycal/internal/model"
	"github.com/Joseda-hg/lazycal/internal/session"
)

const (
	viewHeader  = "header"
	viewFooter  = "footer"
	viewMonth   = "month"
	viewDay     = "day"
	viewHistory = "history"
	viewCreate  = "create"
	viewDetail  = "detail"
	viewEdit    = "edit"
	viewHelp    = "help"
)

type Options struct {
	WeekStart  time.Weekday
	Month      time.Time
	ExportPath string
	Logger     *slog.Logger
}

type UI struct {
	session *session.Session
	journal *db.Journal
	gui     *gocui.Gui
	logger  *slog.Logger

	weekStart  time.Weekday
	month      time.Time
	cursor     time.Time
	grid       calendar.Month
	metrics    gridMetrics
	exportPath string

	dayEvents       []model.Event
	selectedEvent   int
	history         []model.HistoryEntry
	selectedHistory int
	focus           string

	formIndex  int
	formEditor *formEditor
	editActive bool
	helpActive bool
	status     string
}

func newUI(sess *session.Session, journal *db.Journal, opts Options) *UI {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	now := sess.Now()
	cursor := calendar.StartOfDay(now)
	month := calendar.FirstOfMonth(now)
	if !opts.Month.IsZero() {
		month = calendar.FirstOfMonth(opts.Month)
		if !calendar.SameDay(calendar.FirstOfMonth(cursor), month) {
			cursor = month
		}
	}

	ui := &UI{
		session:    sess,
		journal:    journal,
		logger:     logger,
		weekStart:  opts.WeekStart,
		month:      month,
		cursor:     cursor,
		exportPath: opts.ExportPath,
		focus:      viewMonth,
		metrics:    gridMetrics{cellWidth: 10, cellHeight: 4},
	}
	ui.formEditor = &formEditor{ui: ui}
	return ui
}

func Run(sess *session.Session, journal *db.Journal, opts Options) error {
	gui, err := gocui.NewGui(gocui.NewGuiOpts{OutputMode: gocui.OutputNormal})
	if err != nil {
		return err
	}
	defer gui.Close()

	ui := newUI(sess, journal, opts)
	ui.gui = gui
	gui.Mouse = true

	gui.SetManagerFunc(ui.layout)
	if err := ui.bindKeys(gui); err != nil {
		return err
	}
	if err := ui.load(); err != nil {
		return err
	}

	// Classification depends on the current day, so redraw when it changes.
	scheduler := cron.New()
	if _, err := scheduler.AddFunc("@midnight", func() {
		gui.Update(func(*gocui.Gui) error {
			ui.logger.Info("day changed, reloading")
			return ui.load()
		})
	}); err != nil {
		return err
	}
	scheduler.Start()
	defer scheduler.Stop()

	if err := gui.MainLoop(); err != nil && err != gocui.ErrQuit {
		return err
	}

	return nil
}

func (u *UI) bindKeys(gui *gocui.Gui) error {
	bindings := []struct {
		view    string
		key     any
		handler func(*gocui.Gui, *gocui.View) error
	}{
		{"", gocui.KeyCtrlC, u.quit},
		{"", 'q', u.quit},
		{"", 'r', u.reload},
		{"", '?', u.toggleHelp},
		{"", gocui.KeyTab, u.switchFocus},
		{"", '1', u.filterAll},
		{"", '2', u.filterPast},
		{"", '3', u.filterUpcoming},
		{"", 'x', u.exportVisible},
		{"", '[', u.prevMonth},
		{"", ']', u.nextMonth},
		{"", 't', u.jumpToday},
		{viewMonth, gocui.KeyArrowLeft, u.moveLeft},
		{viewMonth, 'h', u.moveLeft},
		{viewMonth, gocui.KeyArrowRight, u.moveRight},
		{viewMonth, 'l', u.moveRight},
		{viewMonth, gocui.KeyArrowUp, u.moveUp},
		{viewMonth, 'k', u.moveUp},
		{viewMonth, gocui.KeyArrowDown, u.moveDown},
		{viewMonth, 'j', u.moveDown},
		{viewMonth, gocui.KeyEnter, u.selectSlot},
		{viewMonth, 'a', u.selectSlot},
		{viewDay, gocui.KeyArrowUp, u.moveUp},
		{viewDay, 'k', u.moveUp},
		{viewDay, gocui.KeyArrowDown, u.moveDown},
		{viewDay, 'j', u.moveDown},
		{viewDay, gocui.KeyEnter, u.selectEvent},
		{viewDay, 'a', u.selectSlot},
		{viewHistory, gocui.KeyArrowUp, u.moveUp},
		{viewHistory, 'k', u.moveUp},
		{viewHistory, gocui.KeyArrowDown, u.moveDown},
		{viewHistory, 'j', u.moveDown},
		{viewCreate, gocui.KeyEnter, u.confirmCreate},
		{viewCreate, gocui.KeyCtrlJ, u.confirmCreate},
		{viewCreate, gocui.KeyTab, u.nextFormField},
		{viewCreate, gocui.KeyBacktab, u.prevFormField},
		{viewCreate, gocui.KeyArrowDown, u.nextFormField},
		{viewCreate, gocui.KeyArrowUp, u.prevFormField},
		{viewCreate, gocui.KeyEsc, u.cancelCreate},
		{viewDetail, 'e', u.openEdit},
		{viewDetail, 'd', u.confirmDelete},
		{viewDetail, gocui.KeyEsc, u.closeDetail},
		{viewDetail, 'q', u.closeDetail},
		{viewEdit, gocui.KeyEnter, u.submitEdit},
		{viewEdit, gocui.KeyEsc, u.cancelEdit},
		{viewHelp, gocui.KeyEsc, u.closeHelp},
		{viewHelp, 'q', u.closeHelp},
		{viewHelp, '?', u.closeHelp},
	}
	for _, binding := range bindings {
		if err := gui.SetKeybinding(binding.view, binding.key, gocui.ModNone, binding.handler); err != nil {
			return err
		}
	}

	if err := gui.SetViewClickBinding(&gocui.ViewMouseBinding{ViewName: viewMonth, Key: gocui.MouseLeft, Handler: func(opts gocui.ViewMouseBindingOpts) error {
		return u.onMonthClick(gui, opts)
	}}); err != nil {
		return err
	}
	if err := gui.SetViewClickBinding(&gocui.ViewMouseBinding{ViewName: viewDay, Key: gocui.MouseLeft, Handler: func(opts gocui.ViewMouseBindingOpts) error {
		return u.onDayClick(gui, opts)
	}}); err != nil {
		return err
	}
	return nil
}

func (u *UI) layout(gui *gocui.Gui) error {
	maxX, maxY := gui.Size()
	if maxX <= 0 || maxY <= 0 {
		return nil
	}

	headerView, err := gui.SetView(viewHeader, 0, 0, maxX-1, 0, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	headerView.Frame = false
	headerView.FgColor = gocui.ColorDefault
	u.renderHeader(headerView)

	footerY1 := max(maxY-2, 1)
	footerY0 := max(footerY1-2, 1)
	footerView, err := gui.SetView(viewFooter, 0, footerY0, maxX-1, footerY1, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	footerView.Frame = false
	footerView.Wrap = true
	footerView.FgColor = gocui.ColorDefault | gocui.AttrDim
	u.renderFooter(footerView)

	bodyTop := 1
	bodyBottom := footerY0 - 1
	if bodyBottom < bodyTop {
		return nil
	}

	layout := computeLayout(maxX, bodyBottom-bodyTop+1)
	monthX1 := layout.monthWidth - 1
	sideX0 := monthX1 + 1
	if sideX0 >= maxX {
		sideX0 = monthX1
	}
	dayY1 := bodyTop + layout.dayHeight - 1

	monthView, err := gui.SetView(viewMonth, 0, bodyTop, monthX1, bodyBottom, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	monthView.Title = u.grid.Title()
	monthView.TitleColor = gocui.ColorCyan
	applyViewStyle(monthView, u.focus == viewMonth)
	u.metrics = computeGridMetrics(monthX1-1, bodyBottom-bodyTop-1, len(u.grid.Weeks))
	u.renderMonth(monthView)

	dayView, err := gui.SetView(viewDay, sideX0, bodyTop, maxX-1, dayY1, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	dayView.Title = u.cursor.Format("Mon, January 02")
	applyViewStyle(dayView, u.focus == viewDay)
	u.renderDay(dayView)

	historyView, err := gui.SetView(viewHistory, sideX0, dayY1+1, maxX-1, bodyBottom, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	historyView.Title = "History"
	applyViewStyle(historyView, u.focus == viewHistory)
	u.renderHistory(historyView)

	_, _ = gui.SetViewOnTop(viewHeader)
	_, _ = gui.SetViewOnTop(viewFooter)

	switch u.session.State().(type) {
	case session.Creating:
		if err := u.showCreate(gui); err != nil {
			return err
		}
	default:
		_ = gui.DeleteView(viewCreate)
	}

	if _, ok := u.session.State().(session.Viewing); ok {
		if err := u.showDetail(gui); err != nil {
			return err
		}
	} else {
		u.editActive = false
		_ = gui.DeleteView(viewDetail)
	}

	if u.editActive {
		if err := u.showEdit(gui); err != nil {
			return err
		}
	} else {
		_ = gui.DeleteView(viewEdit)
	}

	if u.helpActive {
		if err := u.showHelp(gui); err != nil {
			return err
		}
	} else {
		_ = gui.DeleteView(viewHelp)
	}

	if !u.inputActive() {
		if current := gui.CurrentView(); current == nil || current.Name() != u.focus {
			_, _ = gui.SetCurrentView(u.focus)
		}
	}

	gui.Cursor = u.editActive || u.isCreating()
	return nil
}

type layout struct {
	monthWidth int
	dayHeight  int
}

func computeLayout(width, height int) layout {
	safeWidth := max(width, 40)
	safeHeight := max(height, 8)

	sideWidth := max(safeWidth/4, 24)
	if sideWidth > safeWidth-28 {
		sideWidth = safeWidth / 3
	}

	dayHeight := max(int(float64(safeHeight)*0.55), 4)
	if dayHeight > safeHeight-3 {
		dayHeight = safeHeight - 3
	}

	return layout{monthWidth: safeWidth - sideWidth, dayHeight: dayHeight}
}

func (u *UI) load() error {
	visible := u.session.VisibleEvents()
	u.grid = calendar.BuildMonth(u.month, u.weekStart, visible, u.session.Now())
	if w, d, ok := u.grid.Find(u.cursor); ok {
		u.dayEvents = append([]model.Event(nil), u.grid.Weeks[w][d].Events...)
	} else {
		u.dayEvents = eventsOn(visible, u.cursor)
	}
	if u.selectedEvent >= len(u.dayEvents) {
		u.selectedEvent = max(len(u.dayEvents)-1, 0)
	}
	return u.loadHistory()
}

func (u *UI) loadHistory() error {
	if u.journal == nil {
		u.history = nil
		return nil
	}

	var history []model.HistoryEntry
	var err error
	if selected := u.selectedDayEvent(); selected != nil && u.focus == viewDay {
		history, err = u.journal.ListHistory(context.Background(), selected.ID)
	} else {
		history, err = u.journal.ListAll(context.Background())
	}
	if err != nil {
		return err
	}
	u.history = history
	if u.selectedHistory >= len(u.history) {
		u.selectedHistory = max(len(u.history)-1, 0)
	}
	return nil
}

func (u *UI) renderHeader(view *gocui.View) {
	view.Clear()
	labels := make([]string, 0, 3)
	for _, mode := range []model.FilterMode{model.FilterAll, model.FilterPast, model.FilterUpcoming} {
		label := mode.Label()
		if mode == u.session.FilterMode() {
			label = "[" + label + "]"
		}
		labels = append(labels, label)
	}
	fmt.Fprintf(view, "%s | Filter: %s | Today: %s | Visible: %d",
		u.grid.Title(),
		strings.Join(labels, " "),
		u.session.Now().Format(calendar.DateLayout),
		len(u.session.VisibleEvents()),
	)
}

func (u *UI) renderFooter(view *gocui.View) {
	view.Clear()
	view.SetOrigin(0, 0)
	view.SetCursor(0, 0)

	fmt.Fprintln(view, "arrows/hjkl move | enter/a new event | tab pane | enter open (day) | [ ] month | t today")
	fmt.Fprintln(view, "1 all | 2 past | 3 upcoming | x export ics | r reload | ? help | q quit")
	if u.status != "" {
		fmt.Fprint(view, u.status)
	}
}

func (u *UI) renderMonth(view *gocui.View) {
	view.Clear()
	lines := formatMonth(u.grid, u.cursor, u.metrics, u.weekStart, u.session.StyleFor)
	fmt.Fprint(view, strings.Join(lines, "\n"))
}

func (u *UI) renderDay(view *gocui.View) {
	view.Clear()
	if len(u.dayEvents) == 0 {
		fmt.Fprint(view, "No events")
		return
	}
	focused := u.focus == viewDay
	for i, event := range u.dayEvents {
		prefix := " "
		if i == u.selectedEvent {
			if focused {
				prefix = ">"
			} else {
				prefix = "*"
			}
		}
		fmt.Fprintf(view, "%s %s\n", prefix, colorize(formatEventSummary(event), u.session.StyleFor(event)))
	}
	if focused {
		view.SetCursor(0, min(u.selectedEvent, len(u.dayEvents)-1))
	}
}

func (u *UI) renderHistory(view *gocui.View) {
	view.Clear()
	focused := u.focus == viewHistory
	for index, entry := range u.history {
		prefix := " "
		if index == u.selectedHistory && focused {
			prefix = ">"
		}
		fmt.Fprintf(view, "%s %s | %s\n", prefix, entry.CreatedAt.Local().Format("15:04:05"), entry.Details)
	}
	if focused {
		view.SetCursor(0, min(u.selectedHistory, len(u.history)-1))
	}
}

func (u *UI) selectedDayEvent() *model.Event {
	if u.selectedEvent >= 0 && u.selectedEvent < len(u.dayEvents) {
		return &u.dayEvents[u.selectedEvent]
	}
	return nil
}

func (u *UI) onMonthClick(gui *gocui.Gui, opts gocui.ViewMouseBindingOpts) error {
	if u.inputActive() {
		return nil
	}
	view, err := gui.View(viewMonth)
	if err != nil {
		return nil
	}

	x0, y0, _, _ := view.Dimensions()
	col := (opts.X - x0 - 1) / max(u.metrics.cellWidth, 1)
	row := (opts.Y - y0 - 2) / max(u.metrics.cellHeight, 1)
	if err := u.setCursorCell(row, col); err != nil {
		return err
	}
	return u.setFocus(gui, viewMonth)
}

func (u *UI) setCursorCell(row, col int) error {
	if row < 0 || row >= len(u.grid.Weeks) || col < 0 || col > 6 {
		return nil
	}
	return u.moveCursorTo(u.grid.Weeks[row][col].Date)
}

func (u *UI) onDayClick(gui *gocui.Gui, opts gocui.ViewMouseBindingOpts) error {
	if u.inputActive() {
		return nil
	}
	view, err := gui.View(viewDay)
	if err != nil {
		return nil
	}

	_, y0, _, _ := view.Dimensions()
	_, oy := view.Origin()
	row := max(opts.Y-y0-1+oy, 0)
	u.selectedEvent = min(row, max(len(u.dayEvents)-1, 0))
	return u.setFocus(gui, viewDay)
}

func (u *UI) moveCursorTo(date time.Time) error {
	u.cursor = calendar.StartOfDay(date)
	if first := calendar.FirstOfMonth(u.cursor); !first.Equal(u.month) {
		u.month = first
	}
	u.selectedEvent = 0
	return u.load()
}

func (u *UI) moveLeft(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	return u.moveCursorTo(u.cursor.AddDate(0, 0, -1))
}

func (u *UI) moveRight(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	return u.moveCursorTo(u.cursor.AddDate(0, 0, 1))
}

func (u *UI) moveUp(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	switch u.focus {
	case viewDay:
		if u.selectedEvent > 0 {
			u.selectedEvent--
			return u.loadHistory()
		}
	case viewHistory:
		if u.selectedHistory > 0 {
			u.selectedHistory--
		}
	default:
		return u.moveCursorTo(u.cursor.AddDate(0, 0, -7))
	}
	return nil
}

func (u *UI) moveDown(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	switch u.focus {
	case viewDay:
		if u.selectedEvent < len(u.dayEvents)-1 {
			u.selectedEvent++
			return u.loadHistory()
		}
	case viewHistory:
		if u.selectedHistory < len(u.history)-1 {
			u.selectedHistory++
		}
	default:
		return u.moveCursorTo(u.cursor.AddDate(0, 0, 7))
	}
	return nil
}

func (u *UI) prevMonth(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	return u.moveCursorTo(u.month.AddDate(0, -1, 0))
}

func (u *UI) nextMonth(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	return u.moveCursorTo(u.month.AddDate(0, 1, 0))
}

func (u *UI) jumpToday(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	return u.moveCursorTo(u.session.Now())
}

func (u *UI) switchFocus(gui *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}

	switch u.focus {
	case viewMonth:
		u.focus = viewDay
	case viewDay:
		u.focus = viewHistory
	default:
		u.focus = viewMonth
	}
	return u.setFocus(gui, u.focus)
}

func (u *UI) setFocus(gui *gocui.Gui, name string) error {
	if u.inputActive() {
		return nil
	}
	u.focus = name
	if gui != nil {
		_, _ = gui.SetCurrentView(name)
	}
	return u.loadHistory()
}

func (u *UI) reload(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	u.status = ""
	return u.load()
}

func (u *UI) setFilter(mode model.FilterMode) error {
	if u.inputActive() {
		return nil
	}
	u.session.SetFilterMode(mode)
	u.status = ""
	return u.load()
}

func (u *UI) filterAll(_ *gocui.Gui, _ *gocui.View) error {
	return u.setFilter(model.FilterAll)
}

func (u *UI) filterPast(_ *gocui.Gui, _ *gocui.View) error {
	return u.setFilter(model.FilterPast)
}

func (u *UI) filterUpcoming(_ *gocui.Gui, _ *gocui.View) error {
	return u.setFilter(model.FilterUpcoming)
}

func (u *UI) exportVisible(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	events := u.session.VisibleEvents()
	if err := ics.WriteFile(u.exportPath, events, u.session.Now()); err != nil {
		u.logger.Error("ics export failed", "path", u.exportPath, "err", err)
		u.report(err)
		return nil
	}
	u.logger.Info("ics export written", "path", u.exportPath, "event_count", len(events))
	u.status = fmt.Sprintf("exported %d events to %s", len(events), u.exportPath)
	return nil
}

func (u *UI) selectSlot(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	if err := u.session.SelectSlot(u.cursor); err != nil {
		u.report(err)
		return nil
	}
	u.formIndex = 0
	u.status = ""
	return nil
}

func (u *UI) selectEvent(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	selected := u.selectedDayEvent()
	if selected == nil {
		return nil
	}
	if err := u.session.SelectEvent(selected.ID); err != nil {
		u.report(err)
		return nil
	}
	u.status = ""
	return nil
}

func (u *UI) showCreate(gui *gocui.Gui) error {
	maxX, maxY := gui.Size()
	width := max(50, maxX/3)
	height := 5
	x0 := (maxX - width) / 2
	y0 := (maxY - height) / 2

	view, err := gui.SetView(viewCreate, x0, y0, x0+width, y0+height, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	if state, ok := u.session.State().(session.Creating); ok {
		view.Title = "Create Event: " + state.TargetDate.Format("January 02, 2006")
	}
	view.Wrap = true
	view.Editable = true
	view.KeybindOnEdit = true
	view.Editor = u.formEditor
	u.renderCreate(view)
	_, _ = gui.SetCurrentView(viewCreate)
	return nil
}

func (u *UI) renderCreate(view *gocui.View) {
	state, ok := u.session.State().(session.Creating)
	if !ok || view == nil {
		return
	}
	view.Clear()
	for index, field := range createFormFields {
		prefix := "  "
		if index == u.formIndex {
			prefix = "> "
		}
		fmt.Fprintf(view, "%s%s: %s\n", prefix, field.Label, draftValue(state, field.Field))
	}
	fmt.Fprint(view, "\n  enter save | esc cancel | tab next field")

	current := createFormFields[u.formIndex]
	label := current.Label + ": "
	cursorX := len([]rune(label)) + len([]rune(draftValue(state, current.Field))) + 2
	view.SetCursor(cursorX, u.formIndex)
}

func (u *UI) nextFormField(_ *gocui.Gui, view *gocui.View) error {
	if !u.isCreating() {
		return nil
	}
	if u.formIndex < len(createFormFields)-1 {
		u.formIndex++
	}
	u.renderCreate(view)
	return nil
}

func (u *UI) prevFormField(_ *gocui.Gui, view *gocui.View) error {
	if !u.isCreating() {
		return nil
	}
	if u.formIndex > 0 {
		u.formIndex--
	}
	u.renderCreate(view)
	return nil
}

func (u *UI) confirmCreate(_ *gocui.Gui, _ *gocui.View) error {
	if !u.isCreating() {
		return nil
	}
	created, err := u.session.ConfirmCreate()
	u.formIndex = 0
	if err != nil {
		u.report(err)
		return u.load()
	}
	u.status = fmt.Sprintf("created %q on %s", created.Title, created.Start.Format(calendar.DateLayout))
	return u.load()
}

func (u *UI) cancelCreate(_ *gocui.Gui, _ *gocui.View) error {
	if !u.isCreating() {
		return nil
	}
	u.formIndex = 0
	if err := u.session.CancelCreate(); err != nil {
		u.report(err)
	}
	return nil
}

func (u *UI) showDetail(gui *gocui.Gui) error {
	state, ok := u.session.State().(session.Viewing)
	if !ok {
		return nil
	}

	maxX, maxY := gui.Size()
	width := max(50, maxX/3)
	height := 6
	x0 := (maxX - width) / 2
	y0 := (maxY - height) / 2

	view, err := gui.SetView(viewDetail, x0, y0, x0+width, y0+height, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	view.Title = state.TargetEvent.Title
	view.Wrap = true
	view.Clear()
	fmt.Fprint(view, strings.Join(detailLines(state.TargetEvent), "\n"))
	if !u.editActive {
		_, _ = gui.SetCurrentView(viewDetail)
	}
	return nil
}

func detailLines(event model.Event) []string {
	location := event.Location
	if location == "" {
		location = "location"
	}
	return []string{
		"Date: " + event.Start.Format("January 02, 2006"),
		"Location: " + location,
		"",
		"e edit | d delete | esc close",
	}
}

func (u *UI) closeDetail(_ *gocui.Gui, _ *gocui.View) error {
	if u.editActive {
		return nil
	}
	if err := u.session.CloseView(); err != nil {
		u.report(err)
	}
	return nil
}

func (u *UI) confirmDelete(_ *gocui.Gui, _ *gocui.View) error {
	if u.editActive {
		return nil
	}
	state, ok := u.session.State().(session.Viewing)
	if !ok {
		return nil
	}
	if err := u.session.ConfirmDelete(); err != nil {
		u.report(err)
		return u.load()
	}
	u.status = fmt.Sprintf("deleted %q", state.TargetEvent.Title)
	return u.load()
}

func (u *UI) openEdit(_ *gocui.Gui, _ *gocui.View) error {
	if _, ok := u.session.State().(session.Viewing); !ok {
		return nil
	}
	u.editActive = true
	return nil
}

func (u *UI) showEdit(gui *gocui.Gui) error {
	state, ok := u.session.State().(session.Viewing)
	if !ok {
		return nil
	}

	maxX, maxY := gui.Size()
	width := max(40, maxX/3)
	height := 2
	x0 := (maxX - width) / 2
	y0 := (maxY-height)/2 + 4

	view, err := gui.SetView(viewEdit, x0, y0, x0+width, y0+height, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	if goerrors.Is(err, gocui.ErrUnknownView) {
		view.Title = "Edit title"
		view.Wrap = true
		view.Clear()
		fmt.Fprint(view, state.DraftTitle)
		view.SetCursor(len([]rune(state.DraftTitle)), 0)
	}
	view.Editable = true
	view.Editor = gocui.DefaultEditor
	_, _ = gui.SetCurrentView(viewEdit)
	return nil
}

func (u *UI) submitEdit(_ *gocui.Gui, view *gocui.View) error {
	if view == nil {
		return nil
	}
	return u.applyEdit(view.Buffer())
}

func (u *UI) applyEdit(value string) error {
	if !u.editActive {
		return nil
	}
	u.editActive = false
	updated, err := u.session.ConfirmEdit(value)
	if err != nil {
		u.report(err)
		return u.load()
	}
	u.status = fmt.Sprintf("renamed to %q", updated.Title)
	return u.load()
}

func (u *UI) cancelEdit(_ *gocui.Gui, _ *gocui.View) error {
	u.editActive = false
	return nil
}

func (u *UI) toggleHelp(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() && !u.helpActive {
		return nil
	}
	u.helpActive = !u.helpActive
	return nil
}

func (u *UI) closeHelp(_ *gocui.Gui, _ *gocui.View) error {
	u.helpActive = false
	return nil
}

func (u *UI) showHelp(gui *gocui.Gui) error {
	maxX, maxY := gui.Size()
	width := max(60, maxX/2)
	height := 16
	x0 := (maxX - width) / 2
	y0 := (maxY - height) / 2

	view, err := gui.SetView(viewHelp, x0, y0, x0+width, y0+height, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	if goerrors.Is(err, gocui.ErrUnknownView) {
		view.Title = "Help"
		view.Wrap = true
	}
	view.Clear()
	fmt.Fprint(view, helpText())
	_, _ = gui.SetCurrentView(viewHelp)
	return nil
}

// report turns an error from the session into the footer status line.
func (u *UI) report(err error) {
	switch {
	case errors.Is(err, session.ErrEmptyTitle):
		u.status = "title is required, nothing was saved"
	case errors.Is(err, session.ErrInvariant):
		u.status = "internal error: " + err.Error()
	default:
		u.status = err.Error()
	}
}

func (u *UI) isCreating() bool {
	_, ok := u.session.State().(session.Creating)
	return ok
}

func (u *UI) inputActive() bool {
	_, idle := u.session.State().(session.Idle)
	return !idle || u.helpActive || u.editActive
}

func (u *UI) quit(_ *gocui.Gui, _ *gocui.View) error {
	return gocui.ErrQuit
}

func helpText() string {
	return strings.Join([]string{
		"Navigation:",
		"  arrows or h/j/k/l move the day cursor",
		"  [ previous month | ] next month | t today",
		"  tab cycle panes (month/day/history)",
		"  mouse click selects a day or an event",
		"",
		"Events:",
		"  enter or a on a day opens the create dialog",
		"  enter on the day pane opens the selected event",
		"  e edit title | d delete | esc close (event dialog)",
		"",
		"Filter:",
		"  1 all | 2 past | 3 upcoming",
		"  green events are upcoming, red are past",
		"",
		"Other:",
		"  x export visible events as iCalendar | r reload | ? help | q quit",
	}, "\n")
}

func applyViewStyle(view *gocui.View, focused bool) {
	view.Frame = true
	view.Highlight = false
	view.SelBgColor = gocui.ColorBlue
	view.SelFgColor = gocui.ColorBlack
	if focused {
		view.FrameColor = gocui.ColorCyan
	} else {
		view.FrameColor = gocui.ColorDefault
	}
}
